package dirac

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/ZAKI1905/muAlphaSim/internal/constants"
	"github.com/ZAKI1905/muAlphaSim/internal/dynamo"
)

type StepMethod string

const (
	MethodGuess    StepMethod = "guess"
	MethodNewton   StepMethod = "newton"
	MethodSecant   StepMethod = "secant"
	MethodFallback StepMethod = "fallback"
)

// Iteration records one accepted trial energy. Index 0 is the Sommerfeld
// start; Slope, StepEV and Method describe the step that led to Energy.
type Iteration struct {
	Index     int
	Energy    float64
	BindingEV float64
	Delta     float64
	Slope     float64
	StepEV    float64
	Method    StepMethod
}

// TraceFunc observes root finder progress. It is called synchronously from
// the solving goroutine.
type TraceFunc func(Iteration)

type Reason string

const (
	ReasonDelta Reason = "mismatch below tolerance"
	ReasonStep  Reason = "step below tolerance"
)

type rootFinder struct {
	s     *Solver
	kappa int
	geo   Geometry
	opts  Options

	history     []Iteration
	evaluations int
	iterations  int

	// Solutions of the most recent evaluation at the iterate itself.
	out, in *RadialSolution
}

func (rf *rootFinder) delta(ctx context.Context, energy float64) (float64, *RadialSolution, *RadialSolution, error) {
	d, out, in, err := rf.s.Mismatch(ctx, energy, rf.kappa, rf.geo, rf.opts.DerivOrder)
	if err != nil {
		return 0, nil, nil, err
	}
	rf.evaluations++
	return d, out, in, nil
}

func (rf *rootFinder) at(ctx context.Context, energy float64) (float64, error) {
	d, out, in, err := rf.delta(ctx, energy)
	if err != nil {
		return 0, err
	}
	rf.out, rf.in = out, in
	return d, nil
}

// slopePair evaluates the mismatch at energy ± dE. Results land in fixed
// slots, so the outcome does not depend on scheduling.
func (rf *rootFinder) slopePair(ctx context.Context, energy, dE float64) (float64, float64, error) {
	if !rf.opts.ParallelSlope {
		plus, _, _, err := rf.delta(ctx, energy+dE)
		if err != nil {
			return 0, 0, err
		}
		minus, _, _, err := rf.delta(ctx, energy-dE)
		if err != nil {
			return 0, 0, err
		}
		return plus, minus, nil
	}

	var vals [2]float64
	var errs [2]error
	var g errgroup.Group
	for i, e := range [2]float64{energy + dE, energy - dE} {
		g.Go(func() error {
			vals[i], _, _, errs[i] = rf.s.Mismatch(ctx, e, rf.kappa, rf.geo, rf.opts.DerivOrder)
			return errs[i]
		})
	}
	if err := g.Wait(); err != nil {
		if errs[0] != nil {
			return 0, 0, errs[0]
		}
		return 0, 0, errs[1]
	}
	rf.evaluations += 2
	return vals[0], vals[1], nil
}

func (rf *rootFinder) record(it Iteration) {
	rf.history = append(rf.history, it)
	if rf.opts.Trace != nil {
		rf.opts.Trace(it)
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// run drives the mismatch to zero starting from energy. It stops when
// |Δ| < TolDelta or when a step shrinks below TolStepEV.
func (rf *rootFinder) run(ctx context.Context, energy float64) (float64, Reason, error) {
	o := rf.opts
	d, err := rf.at(ctx, energy)
	if err != nil {
		return 0, "", err
	}
	rf.record(Iteration{Energy: energy, BindingEV: rf.s.BindingEV(energy), Delta: d, Method: MethodGuess})

	for it := 1; it <= o.MaxIter; it++ {
		if math.Abs(d) < o.TolDelta {
			return energy, ReasonDelta, nil
		}
		if err := ctx.Err(); err != nil {
			return 0, "", fmt.Errorf("dirac: iteration %d: %w: %w", it, dynamo.ErrContextCanceled, err)
		}

		dE := constants.EV(math.Max(o.MinSlopeStepEV, o.SlopeStepFraction*math.Abs(rf.s.BindingEV(energy))))
		plus, minus, err := rf.slopePair(ctx, energy, dE)
		if err != nil {
			return 0, "", err
		}
		slope := (plus - minus) / (2 * dE)

		var step float64
		var method StepMethod
		n := len(rf.history)
		switch {
		case math.Abs(slope) >= o.FlatSlope:
			step, method = -d/slope, MethodNewton
		case n >= 2 && rf.history[n-2].Delta != d:
			prev := rf.history[n-2]
			step, method = -d*(energy-prev.Energy)/(d-prev.Delta), MethodSecant
		default:
			step, method = -sign(d)*constants.EV(o.FallbackStepEV), MethodFallback
		}
		if maxStep := constants.EV(o.MaxStepEV); math.Abs(step) > maxStep {
			step = math.Copysign(maxStep, step)
		}

		// Near m_r c² the float64 spacing of E can exceed TolStepEV, so the
		// stopping rule uses the change actually applied.
		prevEnergy := energy
		energy += step
		step = energy - prevEnergy
		d, err = rf.at(ctx, energy)
		if err != nil {
			return 0, "", err
		}
		rf.iterations = it
		stepEV := constants.ToEV(step)
		rf.record(Iteration{
			Index:     it,
			Energy:    energy,
			BindingEV: rf.s.BindingEV(energy),
			Delta:     d,
			Slope:     slope,
			StepEV:    stepEV,
			Method:    method,
		})

		if math.Abs(stepEV) < o.TolStepEV {
			return energy, ReasonStep, nil
		}
	}
	return 0, "", &RootFindingError{Iterations: rf.iterations, Energy: energy, Delta: d}
}
