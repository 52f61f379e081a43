// Package dynamo provides the integration primitives shared by the solver.
//
// The package defines the fundamental interfaces and types for numerical
// integration of first-order ordinary differential equations dX/dt = f(X, t):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems
//   - [Sampler]: adaptive integrator that reports the solution on a fixed grid
//   - [Tolerance]: relative/absolute error targets of a [Sampler]
//   - [Trajectory]: the sampled solution
//
// # Example
//
//	samples := make([]float64, 1000)
//	floats.Span(samples, rMin, rMatch)
//	traj, err := integrators.NewDormandPrince().Sample(ctx, model, y0, samples, dynamo.DefaultTolerance())
//
// # Thread Safety
//
// Samplers keep no state between calls and may be shared between goroutines
// as long as the [System] they integrate is safe for concurrent reads.
package dynamo
