package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/usadel/internal/material"
	"github.com/san-kum/usadel/internal/structure"
)

type CriticalOptions struct {
	Lower, Upper float64
	Bisections   int

	// InitialGap is the seed gap of every bisection step. It must be small
	// enough for the gap equation to be linear.
	InitialGap float64

	// Settle bounds the iterations spent relaxing the transport state with
	// the gap held fixed.
	Settle int

	// Converge is used once, before bisecting.
	Converge structure.ConvergeOptions
}

func DefaultCriticalOptions() CriticalOptions {
	return CriticalOptions{
		Lower:      0.1,
		Upper:      1.5,
		Bisections: 10,
		InitialGap: 1e-3,
		Settle:     20,
		Converge:   structure.DefaultConvergeOptions(),
	}
}

func (o CriticalOptions) Validate() error {
	if !(o.Lower >= 0) || !(o.Upper > o.Lower) {
		return fmt.Errorf("%w: bracket [%g, %g]", structure.ErrConfiguration, o.Lower, o.Upper)
	}
	if o.Bisections <= 0 || o.Settle <= 0 {
		return fmt.Errorf("%w: bisections and settle iterations must be positive", structure.ErrConfiguration)
	}
	if !(o.InitialGap > 0) {
		return fmt.Errorf("%w: initial gap %g must be positive", structure.ErrConfiguration, o.InitialGap)
	}
	return o.Converge.Validate()
}

// CriticalStep is one bisection probe.
type CriticalStep struct {
	Temperature     float64
	Gap             float64
	Superconducting bool
}

type CriticalResult struct {
	// Temperature is the midpoint of the final bracket. It equals Upper or
	// Lower when Tc lies outside the initial bracket.
	Temperature  float64
	Lower, Upper float64
	Steps        []CriticalStep
}

// CriticalTemperature bisects for Tc. The structure is restored to its
// converged state and original temperature on return.
func CriticalTemperature(ctx context.Context, st *structure.Structure, opts CriticalOptions) (*CriticalResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	scs := st.Superconductors()
	if len(scs) == 0 {
		return nil, fmt.Errorf("%w: no superconducting layer", structure.ErrConfiguration)
	}

	if _, err := st.Converge(ctx, opts.Converge); err != nil {
		return nil, err
	}
	snap := st.Save()
	original := scs[0].Temperature
	locked := make([]bool, len(scs))
	for i, sc := range scs {
		locked[i] = sc.Locked
	}
	defer func() {
		for i, sc := range scs {
			sc.Locked = locked[i]
		}
		st.SetTemperature(original)
		_ = st.Load(snap)
	}()

	res := &CriticalResult{Lower: opts.Lower, Upper: opts.Upper}
	for b := 0; b < opts.Bisections; b++ {
		t := (res.Lower + res.Upper) / 2
		step, err := probe(ctx, st, scs, snap, t, opts)
		if err != nil {
			return nil, err
		}
		res.Steps = append(res.Steps, step)
		if step.Superconducting {
			res.Lower = t
		} else {
			res.Upper = t
		}
	}
	res.Temperature = (res.Lower + res.Upper) / 2
	return res, nil
}

func probe(ctx context.Context, st *structure.Structure, scs []*material.Superconductor, snap structure.Snapshot, t float64, opts CriticalOptions) (CriticalStep, error) {
	if err := st.Load(snap); err != nil {
		return CriticalStep{}, err
	}
	st.SetTemperature(t)
	for _, sc := range scs {
		sc.ScaleGap(opts.InitialGap)
		sc.Locked = true
	}

	settle := structure.ConvergeOptions{Threshold: opts.Converge.Threshold, Iterations: opts.Settle}
	if _, err := st.Converge(ctx, settle); err != nil {
		return CriticalStep{}, err
	}

	for _, sc := range scs {
		sc.Locked = false
	}
	before := st.MaxGap()
	if err := st.Update(ctx); err != nil {
		var ue *material.UpdateError
		if !errors.As(err, &ue) {
			return CriticalStep{}, err
		}
	}
	after := st.MaxGap()

	return CriticalStep{
		Temperature:     t,
		Gap:             after,
		Superconducting: after > before,
	}, nil
}
