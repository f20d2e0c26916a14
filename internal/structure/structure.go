// Package structure assembles layers into a heterostructure and drives it
// to self-consistency.
//
// A [Structure] owns the ordered stack of layers. [Structure.PushBack]
// keeps the neighbor chain consistent: every layer's MaterialB is the next
// layer and every layer's MaterialA the previous one, with vacuum at both
// ends. Frozen layers take part in the wiring but are never updated, which
// is how external bulk reservoirs are modeled.
//
// [Structure.Converge] repeats [Structure.Update] until the largest layer
// difference drops below a threshold. With bootstrapping enabled, gap
// updates and second-order interface terms are switched off until the
// first convergence, then switched on for the refinement phase.
//
// # Thread Safety
//
// A Structure is NOT thread-safe. Parallelism happens inside each layer
// update, across energies.
package structure

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/usadel/internal/material"
)

var (
	// ErrConfiguration indicates an invalid stack or invalid options.
	ErrConfiguration = material.ErrConfiguration

	// ErrEmpty indicates an operation that needs at least one layer.
	ErrEmpty = fmt.Errorf("%w: empty structure", ErrConfiguration)
)

type Structure struct {
	layers   []material.Material
	energies []float64
}

func New() *Structure {
	return &Structure{}
}

// PushBack appends m below the current bottom layer and rewires the stack.
func (s *Structure) PushBack(m material.Material) error {
	if m == nil {
		return fmt.Errorf("%w: nil layer", ErrConfiguration)
	}
	base := m.Base()
	if len(base.Energies()) == 0 {
		return fmt.Errorf("%w: layer %s has no energies", ErrConfiguration, base.Name)
	}
	if s.energies == nil {
		s.energies = base.Energies()
	} else if !slices.Equal(s.energies, base.Energies()) {
		return fmt.Errorf("%w: layer %s uses a different energy grid", ErrConfiguration, base.Name)
	}
	s.layers = append(s.layers, m)
	s.relink()
	return nil
}

func (s *Structure) relink() {
	for i, m := range s.layers {
		b := m.Base()
		b.MaterialA, b.MaterialB = nil, nil
		if i > 0 {
			b.MaterialA = s.layers[i-1]
		}
		if i < len(s.layers)-1 {
			b.MaterialB = s.layers[i+1]
		}
	}
}

func (s *Structure) Layers() []material.Material { return s.layers }

func (s *Structure) Len() int { return len(s.layers) }

func (s *Structure) Energies() []float64 { return s.energies }

// Superconductors returns the superconducting layers, top to bottom.
func (s *Structure) Superconductors() []*material.Superconductor {
	var out []*material.Superconductor
	for _, m := range s.layers {
		if sc, ok := m.(*material.Superconductor); ok {
			out = append(out, sc)
		}
	}
	return out
}

// Update sweeps the stack top to bottom and then bottom to top. Per-energy
// failures do not stop the sweep; they are joined into the returned error.
// A canceled context stops it between layers.
func (s *Structure) Update(ctx context.Context) error {
	if len(s.layers) == 0 {
		return ErrEmpty
	}
	var errs []error
	order := make([]int, 0, 2*len(s.layers))
	for i := range s.layers {
		order = append(order, i)
	}
	for i := len(s.layers) - 1; i >= 0; i-- {
		order = append(order, i)
	}

	for _, i := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.layers[i].Update(); err != nil {
			var ue *material.UpdateError
			if !errors.As(err, &ue) {
				return fmt.Errorf("layer %d: %w", i, err)
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Difference is the largest difference of any updated layer.
func (s *Structure) Difference() float64 {
	d := 0.0
	for _, m := range s.layers {
		if m.Base().Frozen {
			continue
		}
		d = math.Max(d, m.Difference())
	}
	return d
}

// Failed counts stale energies over all layers.
func (s *Structure) Failed() int {
	n := 0
	for _, m := range s.layers {
		n += m.Base().Failed()
	}
	return n
}

// MaxGap is the largest |Δ| over all superconductors.
func (s *Structure) MaxGap() float64 {
	g := 0.0
	for _, sc := range s.Superconductors() {
		g = math.Max(g, sc.MaxGap())
	}
	return g
}

func (s *Structure) SetTemperature(t float64) {
	for _, m := range s.layers {
		m.Base().SetTemperature(t)
	}
}

func (s *Structure) setBootstrap(on bool) {
	for _, m := range s.layers {
		m.Base().Bootstrap = on
	}
}

// Snapshot is the saved state of every layer.
type Snapshot struct {
	Layers []material.Snapshot `json:"layers"`
}

func (s *Structure) Save() Snapshot {
	snap := Snapshot{Layers: make([]material.Snapshot, len(s.layers))}
	for i, m := range s.layers {
		snap.Layers[i] = m.Save()
	}
	return snap
}

// Load restores a snapshot taken from a structure with the same layers.
func (s *Structure) Load(snap Snapshot) error {
	if len(snap.Layers) != len(s.layers) {
		return fmt.Errorf("%w: snapshot has %d layers, structure %d", ErrConfiguration, len(snap.Layers), len(s.layers))
	}
	for i, m := range s.layers {
		if err := m.Load(snap.Layers[i]); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return nil
}
