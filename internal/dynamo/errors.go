package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration operations.
var (
	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrContextCanceled indicates the integration was interrupted.
	ErrContextCanceled = errors.New("dynamo: integration canceled by context")

	// ErrStepTooSmall indicates adaptive step became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive step below minimum")

	// ErrStepBudget indicates the integration used up its step budget.
	ErrStepBudget = errors.New("dynamo: step budget exhausted")

	// ErrDimensionMismatch indicates mismatched state dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrGrid indicates a sample grid that is too short or not monotonic.
	ErrGrid = errors.New("dynamo: sample grid must be monotonic with at least two points")
)

// IntegrationError wraps an error with integration context.
type IntegrationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("step %d (t=%.6e): %v", e.Step, e.Time, e.Wrapped)
}

func (e *IntegrationError) Unwrap() error {
	return e.Wrapped
}
