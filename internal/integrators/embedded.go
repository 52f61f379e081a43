package integrators

import (
	"context"
	"fmt"
	"math"

	"github.com/ZAKI1905/muAlphaSim/internal/dynamo"
)

const defaultMaxSteps = 1_000_000

// EmbeddedRK is an adaptive explicit Runge-Kutta integrator driven by an
// embedded pair. It holds no per-call state.
type EmbeddedRK struct {
	tab      *Tableau
	safety   float64
	minScale float64
	maxScale float64
	maxSteps int
}

func NewEmbeddedRK(tab *Tableau) *EmbeddedRK {
	return &EmbeddedRK{
		tab:      tab,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
		maxSteps: defaultMaxSteps,
	}
}

// WithMaxSteps returns a copy of r with a different step budget per Sample call.
func (r *EmbeddedRK) WithMaxSteps(n int) *EmbeddedRK {
	c := *r
	c.maxSteps = n
	return &c
}

func (r *EmbeddedRK) Name() string { return r.tab.Name }

type workspace struct {
	k    []dynamo.State
	tmp  dynamo.State
	xNew dynamo.State
	kOK  bool
}

func newWorkspace(stages, n int) *workspace {
	w := &workspace{
		k:    make([]dynamo.State, stages),
		tmp:  make(dynamo.State, n),
		xNew: make(dynamo.State, n),
	}
	for i := range w.k {
		w.k[i] = make(dynamo.State, n)
	}
	return w
}

// Step advances x by dt and returns the new state together with the scaled
// error norm; the step is acceptable when the norm is <= 1.
func (r *EmbeddedRK) Step(sys dynamo.System, x dynamo.State, t, dt float64, tol dynamo.Tolerance) (dynamo.State, float64) {
	w := newWorkspace(r.tab.Stages(), len(x))
	errNorm, _ := r.step(sys, w, x, t, dt, tol)
	return w.xNew.Clone(), errNorm
}

func (r *EmbeddedRK) step(sys dynamo.System, w *workspace, x dynamo.State, t, dt float64, tol dynamo.Tolerance) (float64, int) {
	tab := r.tab
	n := len(x)
	evals := 0

	if !w.kOK {
		copy(w.k[0], sys.Derive(x, t))
		evals++
	}
	for s := 1; s < tab.Stages(); s++ {
		row := tab.A[s]
		for i := 0; i < n; i++ {
			acc := 0.0
			for j, a := range row {
				if a != 0 {
					acc += a * w.k[j][i]
				}
			}
			w.tmp[i] = x[i] + dt*acc
		}
		copy(w.k[s], sys.Derive(w.tmp, t+tab.C[s]*dt))
		evals++
	}

	for i := 0; i < n; i++ {
		acc := 0.0
		for s, b := range tab.B {
			if b != 0 {
				acc += b * w.k[s][i]
			}
		}
		w.xNew[i] = x[i] + dt*acc
	}

	errMax := 0.0
	for i := 0; i < n; i++ {
		errEst := 0.0
		for s, e := range tab.E {
			if e != 0 {
				errEst += e * w.k[s][i]
			}
		}
		errEst *= dt
		scale := tol.Abs + tol.Rel*math.Max(math.Abs(x[i]), math.Abs(w.xNew[i]))
		errMax = math.Max(errMax, math.Abs(errEst)/scale)
	}
	return errMax, evals
}

func (r *EmbeddedRK) grow(errNorm float64) float64 {
	if errNorm == 0 {
		return r.maxScale
	}
	return math.Min(r.maxScale, r.safety*math.Pow(errNorm, -1.0/float64(r.tab.ErrOrder+1)))
}

func (r *EmbeddedRK) shrink(errNorm float64) float64 {
	return math.Max(r.minScale, r.safety*math.Pow(errNorm, -1.0/float64(r.tab.ErrOrder+1)))
}

// initialStep estimates the first step size from the local derivative scale.
func (r *EmbeddedRK) initialStep(sys dynamo.System, x dynamo.State, t, dir, span float64, tol dynamo.Tolerance) (float64, int) {
	f0 := sys.Derive(x, t)
	d0, d1 := 0.0, 0.0
	for i := range x {
		sc := tol.Abs + tol.Rel*math.Abs(x[i])
		d0 = math.Max(d0, math.Abs(x[i])/sc)
		d1 = math.Max(d1, math.Abs(f0[i])/sc)
	}

	var h0 float64
	if d0 < 1e-5 || d1 < 1e-5 {
		h0 = 1e-6 * span
	} else {
		h0 = 0.01 * d0 / d1
	}
	h0 = math.Min(h0, span)

	x1 := make(dynamo.State, len(x))
	for i := range x {
		x1[i] = x[i] + dir*h0*f0[i]
	}
	f1 := sys.Derive(x1, t+dir*h0)
	d2 := 0.0
	for i := range x {
		sc := tol.Abs + tol.Rel*math.Abs(x[i])
		d2 = math.Max(d2, math.Abs(f1[i]-f0[i])/sc/h0)
	}

	var h1 float64
	if d1 <= 1e-15 && d2 <= 1e-15 {
		h1 = math.Max(1e-6*span, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 1.0/float64(r.tab.ErrOrder+1))
	}
	return math.Min(math.Min(100*h0, h1), span), 2
}

func validateGrid(samples []float64) (float64, error) {
	if len(samples) < 2 {
		return 0, dynamo.ErrGrid
	}
	dir := math.Copysign(1, samples[1]-samples[0])
	for i := 1; i < len(samples); i++ {
		d := samples[i] - samples[i-1]
		if d == 0 || math.Copysign(1, d) != dir || math.IsNaN(d) {
			return 0, dynamo.ErrGrid
		}
	}
	return dir, nil
}

func minStep(t float64) float64 {
	return 16 * math.Abs(math.Nextafter(t, math.Inf(1))-t)
}

// Sample integrates sys from samples[0] and reports the state at every sample
// point. Steps are clipped so that each sample is hit exactly.
func (r *EmbeddedRK) Sample(ctx context.Context, sys dynamo.System, y0 dynamo.State, samples []float64, tol dynamo.Tolerance) (*dynamo.Trajectory, error) {
	dir, err := validateGrid(samples)
	if err != nil {
		return nil, err
	}
	if len(y0) != sys.StateDim() {
		return nil, dynamo.ErrDimensionMismatch
	}
	if !y0.IsValid() {
		return nil, &dynamo.IntegrationError{Time: samples[0], State: y0.Clone(), Wrapped: dynamo.ErrInvalidState}
	}

	traj := &dynamo.Trajectory{
		Times:  make([]float64, len(samples)),
		States: make([]dynamo.State, len(samples)),
	}
	copy(traj.Times, samples)
	traj.States[0] = y0.Clone()

	w := newWorkspace(r.tab.Stages(), len(y0))
	x := y0.Clone()
	t := samples[0]
	span := math.Abs(samples[len(samples)-1] - samples[0])

	hNext, evals := r.initialStep(sys, x, t, dir, span, tol)
	traj.Stats.Evaluations += evals
	steps := 0

	for k := 1; k < len(samples); k++ {
		target := samples[k]
		for t != target {
			select {
			case <-ctx.Done():
				return nil, &dynamo.IntegrationError{
					Step: steps, Time: t, State: x.Clone(),
					Wrapped: fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err()),
				}
			default:
			}
			if steps >= r.maxSteps {
				return nil, &dynamo.IntegrationError{Step: steps, Time: t, State: x.Clone(), Wrapped: dynamo.ErrStepBudget}
			}
			steps++

			remaining := math.Abs(target - t)
			h := hNext
			last := false
			if h >= remaining*(1-1e-12) {
				h = remaining
				last = true
			}

			errNorm, n := r.step(sys, w, x, t, dir*h, tol)
			traj.Stats.Evaluations += n

			if !w.xNew.IsValid() {
				return nil, &dynamo.IntegrationError{Step: steps, Time: t, State: x.Clone(), Wrapped: dynamo.ErrInvalidState}
			}

			if errNorm <= 1 {
				traj.Stats.Accepted++
				if last {
					t = target
					hNext = math.Max(hNext, h*r.grow(errNorm))
				} else {
					t += dir * h
					hNext = h * r.grow(errNorm)
				}
				copy(x, w.xNew)
				// The last FSAL stage is the derivative at the new point.
				if r.tab.FSAL {
					li := r.tab.Stages() - 1
					w.k[0], w.k[li] = w.k[li], w.k[0]
					w.kOK = true
				} else {
					w.kOK = false
				}
				continue
			}

			traj.Stats.Rejected++
			w.kOK = true
			hNext = h * r.shrink(errNorm)
			if hNext < minStep(t) {
				return nil, &dynamo.IntegrationError{Step: steps, Time: t, State: x.Clone(), Wrapped: dynamo.ErrStepTooSmall}
			}
		}
		traj.States[k] = x.Clone()
	}

	return traj, nil
}
