package material

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSolverDivergence indicates the boundary-value solve failed at one energy.
	ErrSolverDivergence = errors.New("material: boundary-value solver diverged")

	// ErrSingular indicates a normalization matrix (I − g·g̃)⁻¹ that does not
	// exist, or an interface model that would divide by zero.
	ErrSingular = errors.New("material: numerical singularity")

	// ErrConfiguration indicates a missing or invalid layer parameter.
	ErrConfiguration = errors.New("material: invalid configuration")
)

// EnergyError is a failed solve at a single energy. The layer keeps the
// previous state at that energy and marks it stale.
type EnergyError struct {
	Index  int
	Energy float64
	Err    error
}

func (e *EnergyError) Error() string {
	return fmt.Sprintf("energy %d (E=%.4g): %v", e.Index, e.Energy, e.Err)
}

func (e *EnergyError) Unwrap() error {
	return e.Err
}

// UpdateError collects the per-energy failures of one layer update.
type UpdateError struct {
	Layer    string
	Failures []*EnergyError
}

func (e *UpdateError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d energies failed", e.Layer, len(e.Failures))
	for i, f := range e.Failures {
		if i == 3 {
			fmt.Fprintf(&b, "; ...")
			break
		}
		fmt.Fprintf(&b, "; %v", f)
	}
	return b.String()
}

func (e *UpdateError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
