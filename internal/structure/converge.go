package structure

import (
	"context"
	"fmt"
	"math"
)

// Hook is called with the 1-based iteration number.
type Hook func(iteration int, st *Structure)

type ConvergeOptions struct {
	Threshold  float64
	Iterations int
	Bootstrap  bool
	Prehook    Hook
	Posthook   Hook
}

func DefaultConvergeOptions() ConvergeOptions {
	return ConvergeOptions{
		Threshold:  1e-4,
		Iterations: 100,
		Bootstrap:  true,
	}
}

func (o ConvergeOptions) Validate() error {
	if !(o.Threshold > 0) {
		return fmt.Errorf("%w: threshold %g must be positive", ErrConfiguration, o.Threshold)
	}
	if o.Iterations <= 0 {
		return fmt.Errorf("%w: iteration cap %d must be positive", ErrConfiguration, o.Iterations)
	}
	return nil
}

// Result describes a self-consistency run. Running out of iterations is
// not an error: Converged is false and Difference holds the last value.
type Result struct {
	Converged  bool
	Iterations int

	// Bootstrap is the number of iterations spent in the bootstrap phase.
	Bootstrap  int
	Difference float64

	// Errors holds the non-fatal errors of every iteration that had
	// failed energies.
	Errors []error
}

// Converge iterates Update until the difference drops below the threshold
// or the iteration cap is reached. The cap counts every Update, bootstrap
// phase included.
func (s *Structure) Converge(ctx context.Context, opts ConvergeOptions) (*Result, error) {
	if len(s.layers) == 0 {
		return nil, ErrEmpty
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	res := &Result{Difference: math.Inf(1)}
	bootstrap := opts.Bootstrap
	s.setBootstrap(bootstrap)
	defer s.setBootstrap(false)

	for res.Iterations < opts.Iterations {
		it := res.Iterations + 1
		if opts.Prehook != nil {
			opts.Prehook(it, s)
		}

		err := s.Update(ctx)
		if cerr := ctx.Err(); cerr != nil {
			return res, cerr
		}
		partial := false
		if err != nil {
			if !isPartial(err) {
				return res, err
			}
			res.Errors = append(res.Errors, err)
			partial = true
		}

		res.Iterations = it
		res.Difference = s.Difference()
		if opts.Posthook != nil {
			opts.Posthook(it, s)
		}

		// An iteration with failed energies never converges, whatever the
		// measured difference.
		if !partial && res.Difference < opts.Threshold {
			if bootstrap {
				bootstrap = false
				s.setBootstrap(false)
				res.Bootstrap = it
				continue
			}
			res.Converged = true
			break
		}
	}
	return res, nil
}
