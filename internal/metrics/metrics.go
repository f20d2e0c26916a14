// Package metrics observes a structure after each self-consistency
// iteration.
package metrics

import (
	"github.com/san-kum/usadel/internal/structure"
)

type Metric interface {
	Name() string
	Observe(iteration int, st *structure.Structure)
	Value() float64
	Reset()
}

// Gap tracks the largest |Δ| of the last observed iteration.
type Gap struct {
	name  string
	value float64
}

func NewGap() *Gap {
	return &Gap{name: "max_gap"}
}

func (g *Gap) Name() string { return g.name }

func (g *Gap) Observe(_ int, st *structure.Structure) {
	g.value = st.MaxGap()
}

func (g *Gap) Value() float64 { return g.value }

func (g *Gap) Reset() { g.value = 0 }

// Difference tracks the last difference and the iteration it belongs to.
type Difference struct {
	name      string
	value     float64
	iteration int
}

func NewDifference() *Difference {
	return &Difference{name: "difference"}
}

func (d *Difference) Name() string { return d.name }

func (d *Difference) Observe(iteration int, st *structure.Structure) {
	d.value = st.Difference()
	d.iteration = iteration
}

func (d *Difference) Value() float64 { return d.value }

func (d *Difference) Iteration() int { return d.iteration }

func (d *Difference) Reset() {
	d.value = 0
	d.iteration = 0
}

// Failures tracks the number of stale energies summed over layers. Peak
// keeps the worst iteration.
type Failures struct {
	name  string
	value int
	peak  int
}

func NewFailures() *Failures {
	return &Failures{name: "failed_energies"}
}

func (f *Failures) Name() string { return f.name }

func (f *Failures) Observe(_ int, st *structure.Structure) {
	f.value = st.Failed()
	f.peak = max(f.peak, f.value)
}

func (f *Failures) Value() float64 { return float64(f.value) }

func (f *Failures) Peak() int { return f.peak }

func (f *Failures) Reset() {
	f.value = 0
	f.peak = 0
}
