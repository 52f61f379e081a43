package dirac_test

import (
	"context"
	"errors"
	"math"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/integrate"

	"github.com/ZAKI1905/muAlphaSim/internal/constants"
	"github.com/ZAKI1905/muAlphaSim/internal/dirac"
	"github.com/ZAKI1905/muAlphaSim/internal/dynamo"
	"github.com/ZAKI1905/muAlphaSim/internal/integrators"
)

type countingSampler struct {
	inner dynamo.Sampler
	calls atomic.Int64
}

func (c *countingSampler) Sample(ctx context.Context, sys dynamo.System, y0 dynamo.State, samples []float64, tol dynamo.Tolerance) (*dynamo.Trajectory, error) {
	c.calls.Add(1)
	return c.inner.Sample(ctx, sys, y0, samples, tol)
}

// linearSampler ignores the model. Outward legs get G = r and inward legs a
// constant G, so the mismatch is 1/r_match at every energy.
type linearSampler struct{}

func (linearSampler) Sample(_ context.Context, _ dynamo.System, _ dynamo.State, samples []float64, _ dynamo.Tolerance) (*dynamo.Trajectory, error) {
	traj := &dynamo.Trajectory{Times: append([]float64(nil), samples...), States: make([]dynamo.State, len(samples))}
	outward := samples[1] > samples[0]
	for i, r := range samples {
		g := 1.0
		if outward {
			g = r
		}
		traj.States[i] = dynamo.State{g, 0}
	}
	return traj, nil
}

func hydrogen() *dirac.Solver {
	s, err := dirac.New(1, constants.ReducedMassMeV(constants.ElectronMassMeV, constants.ProtonMassMeV))
	Expect(err).NotTo(HaveOccurred())
	return s
}

func muonicHelium() *dirac.Solver {
	s, err := dirac.New(2, constants.ReducedMassMeV(constants.MuonMassMeV, constants.AlphaMassMeV))
	Expect(err).NotTo(HaveOccurred())
	return s
}

func relErr(got, want float64) float64 {
	return math.Abs(got-want) / math.Abs(want)
}

var _ = Describe("Solver", func() {
	ctx := context.Background()

	Describe("New", func() {
		It("rejects a non-positive charge", func() {
			_, err := dirac.New(0, 1e-30)
			Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
		})

		It("rejects a non-finite mass", func() {
			_, err := dirac.New(1, math.Inf(1))
			Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
		})
	})

	Describe("hydrogen 1s", func() {
		var (
			res    *dirac.Result
			traced []dirac.Iteration
		)

		BeforeEach(func() {
			opts := dirac.DefaultOptions()
			traced = nil
			opts.Trace = func(it dirac.Iteration) { traced = append(traced, it) }
			var err error
			res, err = hydrogen().Solve(ctx, dirac.QuantumState{N: 1, Kappa: -1}, opts)
			Expect(err).NotTo(HaveOccurred())
		})

		It("converges to the Sommerfeld energy", func() {
			_, want, err := hydrogen().Sommerfeld(1, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.BindingEV).To(BeNumerically("<", 0))
			Expect(relErr(res.BindingEV, want)).To(BeNumerically("<", 1e-6))
			Expect(res.GuessEV).To(Equal(want))
		})

		It("returns a normalized density", func() {
			norm := integrate.Trapezoidal(res.R, res.Density())
			Expect(norm).To(BeNumerically("~", 1, 1e-6))
		})

		It("returns equal length, strictly ascending arrays spanning the domain", func() {
			Expect(res.Len()).To(BeNumerically(">=", 2))
			Expect(res.G).To(HaveLen(res.Len()))
			Expect(res.F).To(HaveLen(res.Len()))
			Expect(res.Len()).To(Equal(2*dirac.DefaultNPoints - 1))
			for i := 1; i < res.Len(); i++ {
				Expect(res.R[i]).To(BeNumerically(">", res.R[i-1]))
			}
			Expect(res.R[0]).To(Equal(dirac.DefaultRMin))
			Expect(res.R[res.Len()-1]).To(Equal(dirac.DefaultRMax))
		})

		It("reports its work and a consistent trace", func() {
			Expect(res.Reason).NotTo(BeEmpty())
			Expect(res.Trace).To(HaveLen(res.Iterations + 1))
			Expect(traced).To(Equal(res.Trace))
			Expect(res.Trace[0].Method).To(Equal(dirac.MethodGuess))
			Expect(res.Evaluations).To(Equal(1 + 3*res.Iterations))
			Expect(res.Integrations).To(Equal(2 * res.Evaluations))
			Expect(res.Trace[res.Iterations].Energy).To(Equal(res.Energy))
		})

		It("places the peak of the density near the Bohr radius", func() {
			p := res.Density()
			peak := 0
			for i := range p {
				if p[i] > p[peak] {
					peak = i
				}
			}
			a := hydrogen().LengthScale()
			Expect(res.R[peak] / a).To(BeNumerically("~", 1, 0.1))
		})
	})

	Describe("excited and muonic levels", func() {
		DescribeTable("agree with the Sommerfeld energy",
			func(solver func() *dirac.Solver, n, kappa int, rMaxFactor float64) {
				s := solver()
				opts := dirac.DefaultOptions()
				opts.RMaxFactor = rMaxFactor
				res, err := s.Solve(ctx, dirac.QuantumState{N: n, Kappa: kappa}, opts)
				Expect(err).NotTo(HaveOccurred())
				_, want, _ := s.Sommerfeld(n, kappa)
				Expect(res.BindingEV).To(BeNumerically("<", 0))
				Expect(relErr(res.BindingEV, want)).To(BeNumerically("<", 1e-5))
			},
			Entry("hydrogen 2s1/2", hydrogen, 2, -1, 0.0),
			Entry("hydrogen 2p1/2", hydrogen, 2, 1, 0.0),
			Entry("hydrogen 2p3/2", hydrogen, 2, -2, 0.0),
			Entry("muonic helium 1s1/2", muonicHelium, 1, -1, 60.0),
			Entry("muonic helium 2s1/2", muonicHelium, 2, -1, 60.0),
			Entry("muonic helium 2p3/2", muonicHelium, 2, -2, 60.0),
		)

		It("fails fast when exp(-kr) underflows at r_max", func() {
			_, err := muonicHelium().Solve(ctx, dirac.QuantumState{N: 1, Kappa: -1}, dirac.DefaultOptions())
			Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())
		})
	})

	Describe("domain errors", func() {
		DescribeTable("are raised before any integration",
			func(z, n, kappa int) {
				sampler := &countingSampler{inner: integrators.NewDormandPrince()}
				s, err := dirac.New(z, constants.MassFromMeV(constants.MuonMassMeV))
				Expect(err).NotTo(HaveOccurred())

				_, err = s.WithSampler(sampler).Solve(ctx, dirac.QuantumState{N: n, Kappa: kappa}, dirac.DefaultOptions())
				var de *dirac.DomainError
				Expect(errors.As(err, &de)).To(BeTrue())
				Expect(de.N).To(Equal(n))
				Expect(de.Kappa).To(Equal(kappa))
				Expect(sampler.calls.Load()).To(BeZero())
			},
			Entry("super-critical charge", 138, 1, -1),
			Entry("kappa zero", 1, 1, 0),
			Entry("n zero", 1, 0, -1),
			Entry("l not below n", 1, 1, 1),
			Entry("|kappa| above n", 1, 2, -3),
		)
	})

	Describe("iteration budget", func() {
		It("fails after the initial evaluation when MaxIter is zero", func() {
			sampler := &countingSampler{inner: integrators.NewDormandPrince()}
			opts := dirac.DefaultOptions()
			opts.MaxIter = 0

			_, err := hydrogen().WithSampler(sampler).Solve(ctx, dirac.QuantumState{N: 1, Kappa: -1}, opts)
			var rfe *dirac.RootFindingError
			Expect(errors.As(err, &rfe)).To(BeTrue())
			Expect(rfe.Iterations).To(BeZero())
			Expect(rfe.Delta).NotTo(BeZero())
			Expect(sampler.calls.Load()).To(Equal(int64(2)))
		})

		It("reports the last iterate when the budget runs out", func() {
			opts := dirac.DefaultOptions()
			opts.MaxIter = 1
			opts.TolStepEV = 1e-30

			_, err := hydrogen().Solve(ctx, dirac.QuantumState{N: 1, Kappa: -1}, opts)
			var rfe *dirac.RootFindingError
			Expect(errors.As(err, &rfe)).To(BeTrue())
			Expect(rfe.Iterations).To(Equal(1))
		})
	})

	Describe("step selection", func() {
		It("falls back, then takes secant steps when the slope is flat", func() {
			opts := dirac.DefaultOptions()
			opts.FlatSlope = math.MaxFloat64
			res, err := hydrogen().Solve(ctx, dirac.QuantumState{N: 1, Kappa: -1}, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(len(res.Trace)).To(BeNumerically(">=", 3))

			Expect(res.Trace[1].Method).To(Equal(dirac.MethodFallback))
			Expect(math.Abs(res.Trace[1].StepEV)).To(BeNumerically("~", opts.FallbackStepEV, 1e-9))
			Expect(res.Trace[2].Method).To(Equal(dirac.MethodSecant))
			for _, it := range res.Trace[1:] {
				Expect(it.Method).NotTo(Equal(dirac.MethodNewton))
			}

			_, want, _ := hydrogen().Sommerfeld(1, -1)
			Expect(relErr(res.BindingEV, want)).To(BeNumerically("<", 1e-6))
		})

		It("falls back when the secant denominator vanishes", func() {
			var traced []dirac.Iteration
			opts := dirac.DefaultOptions()
			opts.FlatSlope = math.MaxFloat64
			opts.MaxIter = 4
			opts.Trace = func(it dirac.Iteration) { traced = append(traced, it) }

			_, err := hydrogen().WithSampler(linearSampler{}).Solve(ctx, dirac.QuantumState{N: 1, Kappa: -1}, opts)
			var rfe *dirac.RootFindingError
			Expect(errors.As(err, &rfe)).To(BeTrue())
			Expect(rfe.Delta).To(BeNumerically(">", 0))

			Expect(traced).To(HaveLen(opts.MaxIter + 1))
			for _, it := range traced[1:] {
				Expect(it.Method).To(Equal(dirac.MethodFallback))
				Expect(it.Delta).To(Equal(traced[0].Delta))
				Expect(it.StepEV).To(BeNumerically("~", -opts.FallbackStepEV, 1e-9))
			}
		})

		It("clamps steps to MaxStepEV and keeps their sign", func() {
			var traced []dirac.Iteration
			opts := dirac.DefaultOptions()
			opts.FlatSlope = math.MaxFloat64
			opts.MaxIter = 3
			opts.FallbackStepEV = 1e-3
			opts.MaxStepEV = 1e-4
			opts.Trace = func(it dirac.Iteration) { traced = append(traced, it) }

			_, err := hydrogen().WithSampler(linearSampler{}).Solve(ctx, dirac.QuantumState{N: 1, Kappa: -1}, opts)
			Expect(err).To(HaveOccurred())

			Expect(traced).To(HaveLen(opts.MaxIter + 1))
			for _, it := range traced[1:] {
				Expect(it.StepEV).To(BeNumerically("<", 0))
				Expect(math.Abs(it.StepEV)).To(BeNumerically("<=", opts.MaxStepEV*(1+1e-5)))
				Expect(it.StepEV).To(BeNumerically("~", -opts.MaxStepEV, 1e-9))
			}
			for i := 2; i < len(traced); i++ {
				Expect(traced[i].BindingEV).To(BeNumerically("<", traced[i-1].BindingEV))
			}
		})

		It("stops on the applied step when E is too coarse to move", func() {
			opts := dirac.DefaultOptions()
			opts.RMaxFactor = 60
			res, err := muonicHelium().Solve(ctx, dirac.QuantumState{N: 2, Kappa: -1}, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Iterations).To(BeNumerically("<", opts.MaxIter))
			last := res.Trace[len(res.Trace)-1]
			if res.Reason == dirac.ReasonStep {
				Expect(math.Abs(last.StepEV)).To(BeNumerically("<", opts.TolStepEV))
			}
		})
	})

	Describe("determinism", func() {
		It("reproduces identical results with and without parallel slopes", func() {
			q := dirac.QuantumState{N: 1, Kappa: -1}
			opts := dirac.DefaultOptions()
			a, err := hydrogen().Solve(ctx, q, opts)
			Expect(err).NotTo(HaveOccurred())
			b, err := hydrogen().Solve(ctx, q, opts)
			Expect(err).NotTo(HaveOccurred())

			opts.ParallelSlope = true
			c, err := hydrogen().Solve(ctx, q, opts)
			Expect(err).NotTo(HaveOccurred())

			for _, other := range []*dirac.Result{b, c} {
				Expect(other.BindingEV).To(Equal(a.BindingEV))
				Expect(other.Iterations).To(Equal(a.Iterations))
				Expect(other.Evaluations).To(Equal(a.Evaluations))
				Expect(other.G).To(Equal(a.G))
				Expect(other.F).To(Equal(a.F))
			}
		})
	})

	Describe("cancellation", func() {
		It("stops when the context is done", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := hydrogen().Solve(cctx, dirac.QuantumState{N: 1, Kappa: -1}, dirac.DefaultOptions())
			Expect(errors.Is(err, dynamo.ErrContextCanceled)).To(BeTrue())
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})
	})

	Describe("options", func() {
		It("rejects an inverted radial domain", func() {
			opts := dirac.DefaultOptions()
			opts.RMax = 1e-12
			_, err := hydrogen().Solve(ctx, dirac.QuantumState{N: 1, Kappa: -1}, opts)
			Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
		})

		It("rejects an unsupported derivative order", func() {
			opts := dirac.DefaultOptions()
			opts.DerivOrder = 3
			Expect(errors.Is(opts.Validate(), dynamo.ErrParameterBounds)).To(BeTrue())
		})
	})
})
