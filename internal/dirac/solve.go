package dirac

import (
	"context"
)

// Result is a converged bound state. The inward leg is rescaled so that G
// is continuous at Geometry.RMatch; F may jump there by the residual
// mismatch.
type Result struct {
	State     QuantumState
	BindingEV float64
	GuessEV   float64
	Energy    float64 // total energy [J]
	Geometry  Geometry

	RadialSolution

	Iterations   int
	Evaluations  int // mismatch evaluations
	Integrations int
	Reason       Reason
	Trace        []Iteration
}

// Solve finds the level q and returns its binding energy and the
// normalized radial functions on the joined outward/inward grid.
func (s *Solver) Solve(ctx context.Context, q QuantumState, opts Options) (*Result, error) {
	guess, guessEV, err := s.Sommerfeld(q.N, q.Kappa)
	if err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	geo, err := s.Geometry(opts)
	if err != nil {
		return nil, err
	}

	rf := &rootFinder{s: s, kappa: q.Kappa, geo: geo, opts: opts}
	energy, reason, err := rf.run(ctx, guess)
	if err != nil {
		return nil, err
	}
	wf, err := Assemble(rf.out, rf.in)
	if err != nil {
		return nil, err
	}

	return &Result{
		State:          q,
		BindingEV:      s.BindingEV(energy),
		GuessEV:        guessEV,
		Energy:         energy,
		Geometry:       geo,
		RadialSolution: *wf,
		Iterations:     rf.iterations,
		Evaluations:    rf.evaluations,
		Integrations:   2 * rf.evaluations,
		Reason:         reason,
		Trace:          rf.history,
	}, nil
}
