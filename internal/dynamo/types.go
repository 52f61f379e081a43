package dynamo

import (
	"context"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// MaxAbs returns the infinity norm of s.
func (s State) MaxAbs() float64 {
	m := 0.0
	for _, v := range s {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

// System is a first-order ODE system dX/dt = Derive(X, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Tolerance is the error target of an adaptive step: a component is
// accepted when |err| <= Abs + Rel*|x|.
type Tolerance struct {
	Rel float64
	Abs float64
}

func DefaultTolerance() Tolerance {
	return Tolerance{Rel: 1e-8, Abs: 1e-10}
}

// Trajectory holds the solution reported at the requested sample points.
type Trajectory struct {
	Times  []float64
	States []State
	Stats  Stats
}

// Column extracts component i of every sampled state.
func (tr *Trajectory) Column(i int) []float64 {
	out := make([]float64, len(tr.States))
	for k, s := range tr.States {
		out[k] = s[i]
	}
	return out
}

// Stats counts the work done by one integration.
type Stats struct {
	Accepted    int
	Rejected    int
	Evaluations int
}

// Sampler integrates sys from samples[0] with initial state y0 and reports
// the solution at every sample point. samples must be strictly monotonic in
// either direction.
type Sampler interface {
	Sample(ctx context.Context, sys System, y0 State, samples []float64, tol Tolerance) (*Trajectory, error)
}
