// Package experiment turns a configuration into a structure and runs it to
// self-consistency.
package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/usadel/internal/config"
	"github.com/san-kum/usadel/internal/metrics"
	"github.com/san-kum/usadel/internal/structure"
)

type Result struct {
	*structure.Result
	Duration time.Duration
	Metrics  map[string]float64
}

type Experiment struct {
	cfg       *config.Config
	energies  []float64
	structure *structure.Structure
	metrics   []metrics.Metric
	observers []structure.Hook
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup validates the configuration and builds the layer stack.
func (e *Experiment) Setup(reg *Registry, ms []metrics.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	energies, err := e.cfg.EnergyGrid()
	if err != nil {
		return err
	}

	st := structure.New()
	for i, l := range e.cfg.Layers {
		m, err := reg.Build(l.Kind, energies, e.cfg.Options(i), l)
		if err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		if err := st.PushBack(m); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	e.energies = energies
	e.structure = st
	e.metrics = ms
	return nil
}

// Observe registers a hook called after every iteration.
func (e *Experiment) Observe(h structure.Hook) {
	e.observers = append(e.observers, h)
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.structure == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	for _, m := range e.metrics {
		m.Reset()
	}

	opts := e.ConvergeOptions()
	opts.Posthook = func(it int, st *structure.Structure) {
		for _, m := range e.metrics {
			m.Observe(it, st)
		}
		for _, h := range e.observers {
			h(it, st)
		}
	}

	start := time.Now()
	res, err := e.structure.Converge(ctx, opts)
	if err != nil {
		return nil, err
	}

	out := &Result{
		Result:   res,
		Duration: time.Since(start),
		Metrics:  make(map[string]float64, len(e.metrics)),
	}
	for _, m := range e.metrics {
		out.Metrics[m.Name()] = m.Value()
	}
	return out, nil
}

// ConvergeOptions returns the configured convergence settings without hooks.
func (e *Experiment) ConvergeOptions() structure.ConvergeOptions {
	return structure.ConvergeOptions{
		Threshold:  e.cfg.Converge.Threshold,
		Iterations: e.cfg.Converge.Iterations,
		Bootstrap:  e.cfg.Converge.Bootstrap,
	}
}

func (e *Experiment) Structure() *structure.Structure { return e.structure }

func (e *Experiment) Energies() []float64 { return e.energies }

func (e *Experiment) Config() *config.Config { return e.cfg }
