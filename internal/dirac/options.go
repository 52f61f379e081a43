package dirac

import (
	"fmt"

	"github.com/ZAKI1905/muAlphaSim/internal/dynamo"
)

const (
	DefaultRMin         = 1e-21 // m
	DefaultRMax         = 5e-9  // m
	DefaultRMatchFactor = 5.0
	DefaultNPoints      = 1000
	DefaultTolDelta     = 1e-8
	DefaultMaxIter      = 200
	DefaultDerivOrder   = 4
)

// Options tunes one Solve call. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	RMin float64
	RMax float64
	// RMaxFactor, when positive, replaces RMax with RMaxFactor * a.
	RMaxFactor   float64
	RMatchFactor float64
	NPoints      int

	TolDelta  float64
	TolStepEV float64
	MaxIter   int

	// Central slope step: max(MinSlopeStepEV, SlopeStepFraction*|bind|).
	MinSlopeStepEV    float64
	SlopeStepFraction float64
	// Below FlatSlope the Newton step is replaced by a secant step.
	FlatSlope      float64
	FallbackStepEV float64
	MaxStepEV      float64

	// DerivOrder is the accuracy order of the one-sided difference used
	// for G'/G at the matching radius: 1, 2 or 4.
	DerivOrder    int
	ParallelSlope bool

	Trace TraceFunc
}

func DefaultOptions() Options {
	return Options{
		RMin:              DefaultRMin,
		RMax:              DefaultRMax,
		RMatchFactor:      DefaultRMatchFactor,
		NPoints:           DefaultNPoints,
		TolDelta:          DefaultTolDelta,
		TolStepEV:         1e-9,
		MaxIter:           DefaultMaxIter,
		MinSlopeStepEV:    1e-6,
		SlopeStepFraction: 1e-4,
		FlatSlope:         1e-12,
		FallbackStepEV:    1e-3,
		MaxStepEV:         1e3,
		DerivOrder:        DefaultDerivOrder,
	}
}

func (o Options) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"r_min", o.RMin},
		{"r_match_factor", o.RMatchFactor},
		{"tol_delta", o.TolDelta},
		{"tol_step_ev", o.TolStepEV},
		{"min_slope_step_ev", o.MinSlopeStepEV},
		{"fallback_step_ev", o.FallbackStepEV},
		{"max_step_ev", o.MaxStepEV},
	}
	for _, p := range positive {
		if !(p.v > 0) {
			return fmt.Errorf("dirac: %w: %s must be positive, got %g", dynamo.ErrParameterBounds, p.name, p.v)
		}
	}
	if o.RMaxFactor < 0 {
		return fmt.Errorf("dirac: %w: r_max_factor must not be negative", dynamo.ErrParameterBounds)
	}
	if o.RMaxFactor == 0 && !(o.RMax > o.RMin) {
		return fmt.Errorf("dirac: %w: r_max %g must exceed r_min %g", dynamo.ErrParameterBounds, o.RMax, o.RMin)
	}
	if o.SlopeStepFraction < 0 || o.FlatSlope < 0 {
		return fmt.Errorf("dirac: %w: slope settings must not be negative", dynamo.ErrParameterBounds)
	}
	if o.NPoints < 2 {
		return fmt.Errorf("dirac: %w: n_points must be at least 2, got %d", dynamo.ErrParameterBounds, o.NPoints)
	}
	if o.MaxIter < 0 {
		return fmt.Errorf("dirac: %w: max_iter must not be negative", dynamo.ErrParameterBounds)
	}
	switch o.DerivOrder {
	case 1, 2, 4:
	default:
		return fmt.Errorf("dirac: %w: deriv_order must be 1, 2 or 4, got %d", dynamo.ErrParameterBounds, o.DerivOrder)
	}
	return nil
}

// Geometry resolves the radial domain of opts for this solver:
// r_match = RMatchFactor * a and, with RMaxFactor set, r_max = RMaxFactor * a.
func (s *Solver) Geometry(opts Options) (Geometry, error) {
	a := s.LengthScale()
	geo := Geometry{
		RMin:    opts.RMin,
		RMatch:  opts.RMatchFactor * a,
		RMax:    opts.RMax,
		NPoints: opts.NPoints,
	}
	if opts.RMaxFactor > 0 {
		geo.RMax = opts.RMaxFactor * a
	}
	if !(geo.RMin < geo.RMatch && geo.RMatch < geo.RMax) {
		return geo, fmt.Errorf("dirac: %w: need r_min < r_match < r_max, got %.3e, %.3e, %.3e",
			dynamo.ErrParameterBounds, geo.RMin, geo.RMatch, geo.RMax)
	}
	return geo, nil
}
