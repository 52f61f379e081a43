package dirac

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// Assemble joins the outward and inward pieces at their shared radius and
// normalizes the result to ∫(G² + F²) dr = 1. The inward piece is rescaled
// so that G is continuous at the join and its first sample is dropped.
func Assemble(out, in *RadialSolution) (*RadialSolution, error) {
	last := out.Len() - 1
	scale := out.G[last] / in.G[0]
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale == 0 {
		return nil, &NormalizationError{Norm: math.NaN()}
	}

	n := out.Len() + in.Len() - 1
	wf := &RadialSolution{
		R: make([]float64, 0, n),
		G: make([]float64, 0, n),
		F: make([]float64, 0, n),
	}
	wf.R = append(append(wf.R, out.R...), in.R[1:]...)
	wf.G = append(wf.G, out.G...)
	wf.F = append(wf.F, out.F...)
	for i := 1; i < in.Len(); i++ {
		wf.G = append(wf.G, scale*in.G[i])
		wf.F = append(wf.F, scale*in.F[i])
	}

	norm := integrate.Trapezoidal(wf.R, wf.Density())
	if !(norm > 0) || math.IsInf(norm, 0) {
		return nil, &NormalizationError{Norm: norm}
	}
	inv := 1 / math.Sqrt(norm)
	floats.Scale(inv, wf.G)
	floats.Scale(inv, wf.F)
	return wf, nil
}
