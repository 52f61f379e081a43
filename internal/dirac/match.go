package dirac

import (
	"context"
	"fmt"
	"math"

	"github.com/ZAKI1905/muAlphaSim/internal/dynamo"
)

// Geometry fixes the radial domain of one shot: the outward piece covers
// [RMin, RMatch] and the inward piece [RMatch, RMax], each with NPoints
// samples.
type Geometry struct {
	RMin    float64
	RMatch  float64
	RMax    float64
	NPoints int
}

// edgeDerivative returns the one-sided derivative at x[0] of samples on a
// uniform grid. x may run in either direction. order is 1, 2 or 4 and is
// lowered when there are too few samples.
func edgeDerivative(x, y []float64, order int) float64 {
	n := len(x)
	if order >= 4 && n >= 5 {
		return (-25*y[0] + 48*y[1] - 36*y[2] + 16*y[3] - 3*y[4]) / (3 * (x[4] - x[0]))
	}
	if order >= 2 && n >= 3 {
		return (-3*y[0] + 4*y[1] - y[2]) / (x[2] - x[0])
	}
	return (y[1] - y[0]) / (x[1] - x[0])
}

func tail(s []float64, k int) []float64 {
	if k > len(s) {
		k = len(s)
	}
	out := make([]float64, k)
	for i := range out {
		out[i] = s[len(s)-1-i]
	}
	return out
}

// LogDerivativeAtEnd returns G'/G at the last sample of rs.
func LogDerivativeAtEnd(rs *RadialSolution, order int) float64 {
	g := rs.G[len(rs.G)-1]
	return edgeDerivative(tail(rs.R, 5), tail(rs.G, 5), order) / g
}

// LogDerivativeAtStart returns G'/G at the first sample of rs.
func LogDerivativeAtStart(rs *RadialSolution, order int) float64 {
	return edgeDerivative(rs.R, rs.G, order) / rs.G[0]
}

// Mismatch shoots both pieces at the trial energy and returns the
// difference of their logarithmic derivatives at RMatch, together with the
// two solutions.
func (s *Solver) Mismatch(ctx context.Context, energy float64, kappa int, geo Geometry, order int) (float64, *RadialSolution, *RadialSolution, error) {
	out, err := s.Outward(ctx, energy, kappa, geo.RMin, geo.RMatch, geo.NPoints)
	if err != nil {
		return 0, nil, nil, err
	}
	in, err := s.Inward(ctx, energy, kappa, geo.RMatch, geo.RMax, geo.NPoints)
	if err != nil {
		return 0, nil, nil, err
	}
	delta := LogDerivativeAtEnd(out, order) - LogDerivativeAtStart(in, order)
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return 0, nil, nil, fmt.Errorf("dirac: log-derivative mismatch at r=%.3e is not finite: %w", geo.RMatch, dynamo.ErrInvalidState)
	}
	return delta, out, in, nil
}
