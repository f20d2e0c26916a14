package experiment

import (
	"fmt"
	"math/cmplx"
	"sort"

	"github.com/san-kum/usadel/internal/config"
	"github.com/san-kum/usadel/internal/material"
	"github.com/san-kum/usadel/internal/metrics"
)

// Builder constructs one layer kind from its configuration.
type Builder func(energies []float64, opts material.Options, l config.LayerConfig) (material.Material, error)

type Registry struct {
	kinds map[string]Builder
}

func NewRegistry() *Registry {
	r := &Registry{kinds: make(map[string]Builder)}

	r.kinds["conductor"] = func(energies []float64, opts material.Options, _ config.LayerConfig) (material.Material, error) {
		return material.NewConductor(energies, opts)
	}
	r.kinds["ferromagnet"] = func(energies []float64, opts material.Options, l config.LayerConfig) (material.Material, error) {
		h, err := config.Vector(l.Exchange)
		if err != nil {
			return nil, err
		}
		return material.NewFerromagnet(energies, opts, h)
	}
	r.kinds["superconductor"] = func(energies []float64, opts material.Options, l config.LayerConfig) (material.Material, error) {
		return material.NewSuperconductor(energies, opts, cmplx.Rect(l.Gap, l.Phase), l.Coupling)
	}

	return r
}

// Register adds or replaces a layer kind.
func (r *Registry) Register(kind string, b Builder) {
	r.kinds[kind] = b
}

func (r *Registry) Build(kind string, energies []float64, opts material.Options, l config.LayerConfig) (material.Material, error) {
	fn, ok := r.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown layer kind: %s", kind)
	}
	return fn(energies, opts, l)
}

func (r *Registry) ListKinds() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []metrics.Metric {
	return []metrics.Metric{
		metrics.NewGap(),
		metrics.NewDifference(),
		metrics.NewFailures(),
	}
}
