package dirac

import "fmt"

// DomainError reports a quantum state that has no Dirac level for the
// solver's nuclear charge. It is raised before any integration runs.
type DomainError struct {
	N      int
	Kappa  int
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("dirac: no bound level for n=%d kappa=%d: %s", e.N, e.Kappa, e.Reason)
}

// NoBoundStateError is returned when an inward integration is requested at
// a total energy at or above the rest energy.
type NoBoundStateError struct {
	Energy     float64
	RestEnergy float64
}

func (e *NoBoundStateError) Error() string {
	return fmt.Sprintf("dirac: E=%.12e J is not below m_r c²=%.12e J, no decaying solution", e.Energy, e.RestEnergy)
}

// RootFindingError carries the last iterate of a search that ran out of
// iterations.
type RootFindingError struct {
	Iterations int
	Energy     float64
	Delta      float64
}

func (e *RootFindingError) Error() string {
	return fmt.Sprintf("dirac: root finder did not converge in %d iterations (E=%.12e J, delta=%+.3e)",
		e.Iterations, e.Energy, e.Delta)
}

// NormalizationError reports a joined wavefunction whose norm is zero,
// non-finite, or whose legs cannot be matched at r_match.
type NormalizationError struct {
	Norm float64
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("dirac: cannot normalize wavefunction (norm=%g)", e.Norm)
}
