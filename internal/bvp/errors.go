package bvp

import (
	"errors"
	"fmt"
)

var (
	// ErrDivergence indicates the Newton iteration failed to reduce the residual.
	ErrDivergence = errors.New("bvp: newton iteration diverged")

	// ErrSingularJacobian indicates the shooting Jacobian could not be factorized.
	ErrSingularJacobian = errors.New("bvp: singular shooting jacobian")

	// ErrMesh indicates a mesh that is too short or not strictly increasing.
	ErrMesh = errors.New("bvp: invalid mesh")
)

// SolveError wraps a solver failure with the Newton iteration it happened in.
type SolveError struct {
	Iteration int
	Residual  float64
	Wrapped   error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("iteration %d (residual %.3e): %v", e.Iteration, e.Residual, e.Wrapped)
}

func (e *SolveError) Unwrap() error {
	return e.Wrapped
}
