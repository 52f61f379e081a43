package dirac

import (
	"fmt"
	"math"
)

func (s *Solver) checkState(n, kappa int) error {
	switch {
	case kappa == 0:
		return &DomainError{N: n, Kappa: kappa, Reason: "kappa must be nonzero"}
	case n < 1:
		return &DomainError{N: n, Kappa: kappa, Reason: "n must be positive"}
	case kappa >= n || -kappa > n:
		l := QuantumState{N: n, Kappa: kappa}.L()
		return &DomainError{N: n, Kappa: kappa, Reason: fmt.Sprintf("orbital l=%d requires n > l", l)}
	}
	if za := s.zAlpha; za*za >= float64(kappa*kappa) {
		return &DomainError{N: n, Kappa: kappa, Reason: "Z alpha >= |kappa|, gamma is not real"}
	}
	return nil
}

// Sommerfeld returns the closed-form fine-structure energy of the level
// (n, kappa): the total energy [J] and the binding energy [eV].
func (s *Solver) Sommerfeld(n, kappa int) (float64, float64, error) {
	if err := s.checkState(n, kappa); err != nil {
		return 0, 0, err
	}
	za2 := s.zAlpha * s.zAlpha
	denom := float64(n) - math.Abs(float64(kappa)) + s.gamma(kappa)
	energy := s.rest * math.Pow(1+za2/(denom*denom), -0.5)
	return energy, s.BindingEV(energy), nil
}
