package dirac

import (
	"fmt"
	"math"

	"github.com/ZAKI1905/muAlphaSim/internal/constants"
	"github.com/ZAKI1905/muAlphaSim/internal/dynamo"
	"github.com/ZAKI1905/muAlphaSim/internal/integrators"
)

// QuantumState selects a level by its principal quantum number and the
// relativistic angular quantum number κ.
type QuantumState struct {
	N     int
	Kappa int
}

var orbitalLetters = "spdfghiklmnoqrtuv"

// L returns the orbital angular momentum of the large component.
func (q QuantumState) L() int {
	if q.Kappa > 0 {
		return q.Kappa
	}
	return -q.Kappa - 1
}

// TwoJ returns 2j, j = |κ| - 1/2.
func (q QuantumState) TwoJ() int {
	k := q.Kappa
	if k < 0 {
		k = -k
	}
	return 2*k - 1
}

// String renders spectroscopic notation, e.g. "2p3/2".
func (q QuantumState) String() string {
	l := q.L()
	if q.Kappa == 0 || l >= len(orbitalLetters) {
		return fmt.Sprintf("n=%d,kappa=%d", q.N, q.Kappa)
	}
	return fmt.Sprintf("%d%c%d/2", q.N, orbitalLetters[l], q.TwoJ())
}

// Solver holds the physical parameters of one hydrogenic system. It is
// immutable and may be shared between goroutines.
type Solver struct {
	z       int
	mass    float64
	rest    float64
	zAlpha  float64
	sampler dynamo.Sampler
	tol     dynamo.Tolerance
}

// New returns a solver for nuclear charge z and reduced mass mr [kg]. The
// integrations use Dormand-Prince 5(4) unless replaced with WithSampler.
func New(z int, mr float64) (*Solver, error) {
	if z < 1 {
		return nil, fmt.Errorf("dirac: %w: Z must be a positive integer, got %d", dynamo.ErrParameterBounds, z)
	}
	if !constants.IsPositiveFinite(mr) {
		return nil, fmt.Errorf("dirac: %w: reduced mass must be positive and finite, got %g", dynamo.ErrParameterBounds, mr)
	}
	return &Solver{
		z:       z,
		mass:    mr,
		rest:    constants.RestEnergy(mr),
		zAlpha:  float64(z) * constants.FineStructure,
		sampler: integrators.NewDormandPrince(),
		tol:     dynamo.DefaultTolerance(),
	}, nil
}

// WithSampler returns a copy of s that integrates with sm.
func (s *Solver) WithSampler(sm dynamo.Sampler) *Solver {
	c := *s
	c.sampler = sm
	return &c
}

// WithTolerance returns a copy of s with different integration tolerances.
// Abs is taken relative to the magnitude of the boundary values.
func (s *Solver) WithTolerance(tol dynamo.Tolerance) *Solver {
	c := *s
	c.tol = tol
	return &c
}

func (s *Solver) Z() int { return s.z }

func (s *Solver) ReducedMass() float64 { return s.mass }

// RestEnergy returns m_r c² [J].
func (s *Solver) RestEnergy() float64 { return s.rest }

// LengthScale returns a = ħ/(m_r c Z α), the Bohr radius of the system.
func (s *Solver) LengthScale() float64 { return constants.BohrRadius(s.z, s.mass) }

// BindingEV converts a total energy to a binding energy in eV.
func (s *Solver) BindingEV(energy float64) float64 {
	return constants.ToEV(energy - s.rest)
}

func (s *Solver) gamma(kappa int) float64 {
	return math.Sqrt(float64(kappa*kappa) - s.zAlpha*s.zAlpha)
}

func (s *Solver) model(energy float64, kappa int) *RadialModel {
	return &RadialModel{
		Kappa:      float64(kappa),
		Energy:     energy,
		RestEnergy: s.rest,
		ZAlpha:     s.zAlpha,
	}
}

// scaledTolerance applies the absolute tolerance relative to y0. The radial
// system is linear and homogeneous, so this matches integrating a
// unit-magnitude start.
func (s *Solver) scaledTolerance(y0 dynamo.State) dynamo.Tolerance {
	return dynamo.Tolerance{Rel: s.tol.Rel, Abs: s.tol.Abs * y0.MaxAbs()}
}
