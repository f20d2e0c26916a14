package ode

import (
	"errors"
	"fmt"
)

// Domain errors for integration.
var (
	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("ode: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates the adaptive step fell below the minimum.
	ErrStepTooSmall = errors.New("ode: adaptive step below minimum")

	// ErrStepRejected indicates an adaptive step exceeded the error tolerance.
	ErrStepRejected = errors.New("ode: step rejected by error control")

	// ErrDimensionMismatch indicates a state of the wrong length.
	ErrDimensionMismatch = errors.New("ode: dimension mismatch between state and system")
)

// IntegrationError wraps an error with the position where it happened.
type IntegrationError struct {
	Step     int
	Position float64
	Wrapped  error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("step %d (z=%.4f): %v", e.Step, e.Position, e.Wrapped)
}

func (e *IntegrationError) Unwrap() error {
	return e.Wrapped
}
