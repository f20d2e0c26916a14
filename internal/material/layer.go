package material

import (
	"fmt"
	"math"

	"github.com/san-kum/usadel/internal/bvp"
	"github.com/san-kum/usadel/internal/numeric"
	"github.com/san-kum/usadel/internal/ode"
	"github.com/san-kum/usadel/internal/riccati"
	"github.com/san-kum/usadel/internal/spin"
)

// Layer holds what every layer kind shares: grids, transport state,
// interface parameters and neighbor links.
type Layer struct {
	Name        string
	Length      float64
	Thouless    float64
	Scattering  float64
	Temperature float64

	A, B                 Interface
	MaterialA, MaterialB Material

	// Frozen layers are never updated. They model bulk reservoirs.
	Frozen bool

	// Bootstrap disables the expensive parts of an update: gap updates
	// and second-order spin-active terms.
	Bootstrap bool

	// Stale marks energies whose last solve failed.
	Stale []bool

	Solver  bvp.Options
	Workers int

	energies   []float64
	positions  []float64
	states     [][]riccati.Propagator
	difference float64

	// rate is the largest coefficient of the linearized equation, set by
	// the prehooks and used to size the shooting segments.
	rate float64
}

func newLayer(energies []float64, opts Options) (*Layer, error) {
	if len(energies) == 0 {
		return nil, fmt.Errorf("%w: empty energy grid", ErrConfiguration)
	}
	for i := 1; i < len(energies); i++ {
		if !(energies[i] > energies[i-1]) {
			return nil, fmt.Errorf("%w: energies not strictly increasing at %d", ErrConfiguration, i)
		}
	}
	if opts.Points < 2 {
		return nil, fmt.Errorf("%w: %d positions, need at least 2", ErrConfiguration, opts.Points)
	}
	if !(opts.Length > 0) {
		return nil, fmt.Errorf("%w: length %g must be positive", ErrConfiguration, opts.Length)
	}
	if opts.Scattering < 0 {
		return nil, fmt.Errorf("%w: negative scattering %g", ErrConfiguration, opts.Scattering)
	}
	if err := opts.A.Validate(); err != nil {
		return nil, fmt.Errorf("interface a: %w", err)
	}
	if err := opts.B.Validate(); err != nil {
		return nil, fmt.Errorf("interface b: %w", err)
	}
	if _, err := bvp.New(opts.Solver); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	l := &Layer{
		Name:        opts.Name,
		Length:      opts.Length,
		Thouless:    1 / (opts.Length * opts.Length),
		Scattering:  opts.Scattering,
		Temperature: opts.Temperature,
		A:           opts.A,
		B:           opts.B,
		Frozen:      opts.Frozen,
		Stale:       make([]bool, len(energies)),
		Solver:      opts.Solver,
		Workers:     opts.Workers,
		energies:    energies,
		positions:   numeric.Linspace(opts.Points, 0, 1),
		states:      make([][]riccati.Propagator, len(energies)),
	}
	for i := range l.states {
		l.states[i] = make([]riccati.Propagator, opts.Points)
	}
	if l.Name == "" {
		l.Name = "layer"
	}
	return l, nil
}

func (l *Layer) Base() *Layer { return l }

// Energies returns the shared energy grid. It must not be modified.
func (l *Layer) Energies() []float64 { return l.energies }

// Positions returns the normalized position grid.
func (l *Layer) Positions() []float64 { return l.positions }

// State returns the propagator at energy index i and position index j.
func (l *Layer) State(i, j int) *riccati.Propagator { return &l.states[i][j] }

// First returns the state at z = 0 for energy index i.
func (l *Layer) First(i int) *riccati.Propagator { return &l.states[i][0] }

// Last returns the state at z = 1 for energy index i.
func (l *Layer) Last(i int) *riccati.Propagator { return &l.states[i][len(l.positions)-1] }

func (l *Layer) Difference() float64 { return l.difference }

func (l *Layer) SetTemperature(t float64) { l.Temperature = t }

// Failed counts the stale energies.
func (l *Layer) Failed() int {
	n := 0
	for _, s := range l.Stale {
		if s {
			n++
		}
	}
	return n
}

// Save deep-copies the transport state.
func (l *Layer) Save() Snapshot {
	states := make([][]riccati.Propagator, len(l.states))
	for i := range l.states {
		states[i] = append([]riccati.Propagator(nil), l.states[i]...)
	}
	return Snapshot{States: states}
}

// Load restores a snapshot taken from a layer of the same shape.
func (l *Layer) Load(s Snapshot) error {
	if len(s.States) != len(l.states) {
		return fmt.Errorf("%w: snapshot has %d energies, layer %d", ErrConfiguration, len(s.States), len(l.states))
	}
	for i := range s.States {
		if len(s.States[i]) != len(l.positions) {
			return fmt.Errorf("%w: snapshot has %d positions at energy %d, layer %d",
				ErrConfiguration, len(s.States[i]), i, len(l.positions))
		}
	}
	for i := range s.States {
		copy(l.states[i], s.States[i])
		l.Stale[i] = false
	}
	l.difference = math.Inf(1)
	return nil
}

// WriteDensityOfStates emits (position, energy, dos) for every position and
// energy, positions mapped linearly onto [left, right]. A grid without
// negative energies is mirrored using particle-hole symmetry.
func (l *Layer) WriteDensityOfStates(sink Sink, left, right float64) error {
	mirror := l.energies[0] >= 0
	for j, z := range l.positions {
		x := left + (right-left)*z
		if mirror {
			for i := len(l.energies) - 1; i >= 0; i-- {
				if l.energies[i] == 0 {
					continue
				}
				if err := sink.Record(x, -l.energies[i], l.states[i][j].DOS()); err != nil {
					return err
				}
			}
		}
		for i, e := range l.energies {
			if err := sink.Record(x, e, l.states[i][j].DOS()); err != nil {
				return err
			}
		}
	}
	return nil
}

// neighborA returns the facing state of the side-a neighbor at energy i.
func (l *Layer) neighborA(i int) *riccati.Propagator {
	if l.MaterialA == nil {
		return nil
	}
	return l.MaterialA.Base().Last(i)
}

func (l *Layer) neighborB(i int) *riccati.Propagator {
	if l.MaterialB == nil {
		return nil
	}
	return l.MaterialB.Base().First(i)
}

// solve runs the prehook of m and then the per-energy boundary-value
// problems. m must be the concrete layer embedding l.
func (l *Layer) solve(m Material) error {
	if l.Frozen {
		l.difference = 0
		return nil
	}
	if err := m.UpdatePrehook(); err != nil {
		return err
	}

	n := len(l.energies)
	next := make([][]riccati.Propagator, n)
	failures := make([]error, n)
	ode.ParallelFor(n, l.Workers, func(i int) {
		next[i], failures[i] = l.solveEnergy(m, i)
	})

	diff := 0.0
	var failed []*EnergyError
	for i := range next {
		if failures[i] != nil {
			l.Stale[i] = true
			failed = append(failed, &EnergyError{Index: i, Energy: l.energies[i], Err: failures[i]})
			continue
		}
		for j := range next[i] {
			diff = math.Max(diff, l.states[i][j].Difference(&next[i][j]))
		}
		l.states[i] = next[i]
		l.Stale[i] = false
	}
	l.difference = diff

	if len(failed) > 0 {
		// A stale energy has no measured change, so the layer cannot count
		// as converged.
		l.difference = math.Inf(1)
		return &UpdateError{Layer: l.Name, Failures: failed}
	}
	return nil
}

func (l *Layer) solveEnergy(m Material, i int) ([]riccati.Propagator, error) {
	solver, err := bvp.New(l.Solver)
	if err != nil {
		return nil, err
	}
	p := &transport{
		m:     m,
		layer: l,
		index: i,
		e:     complex(l.energies[i], l.Scattering),
	}

	guess := make([]ode.State, len(l.positions))
	for j := range guess {
		guess[j] = l.states[i][j].State()
	}

	sol, err := solver.Solve(p, l.positions, guess)
	if err != nil {
		if p.singular {
			return nil, fmt.Errorf("%w: %w", ErrSingular, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrSolverDivergence, err)
	}

	out := make([]riccati.Propagator, len(sol.States))
	for j, y := range sol.States {
		if !y.IsValid() {
			return nil, fmt.Errorf("%w: %w", ErrSolverDivergence, ode.ErrInvalidState)
		}
		out[j] = riccati.Unpack(y)
	}
	return out, nil
}

// transport adapts a layer at one energy to the boundary-value solver.
type transport struct {
	m        Material
	layer    *Layer
	index    int
	e        complex128
	singular bool
}

func (p *transport) StateDim() int { return riccati.Dim }

func (p *transport) Derive(y ode.State, z float64) ode.State {
	s := riccati.Unpack(y)
	out := make(ode.State, riccati.Dim)
	if !riccati.Regular(s.G, s.Gt) {
		p.singular = true
		for k := range out {
			out[k] = math.NaN()
		}
		return out
	}
	d2g, d2gt := p.m.DiffusionEquation(p.e, z, s.G, s.Gt, s.DG, s.DGt)
	riccati.PackMatrix(out[0:], s.DG)
	riccati.PackMatrix(out[riccati.MatrixDim:], s.DGt)
	riccati.PackMatrix(out[2*riccati.MatrixDim:], d2g)
	riccati.PackMatrix(out[3*riccati.MatrixDim:], d2gt)
	return out
}

func (p *transport) ResidualA(y ode.State) []float64 {
	s := riccati.Unpack(y)
	if !riccati.Regular(s.G, s.Gt) {
		p.singular = true
		return nanResidual()
	}
	n := p.layer.neighborA(p.index)
	r, rt := p.m.InterfaceEquationA(n, s.G, s.Gt, s.DG, s.DGt)
	return p.residual(n, r, rt)
}

func (p *transport) ResidualB(y ode.State) []float64 {
	s := riccati.Unpack(y)
	if !riccati.Regular(s.G, s.Gt) {
		p.singular = true
		return nanResidual()
	}
	n := p.layer.neighborB(p.index)
	r, rt := p.m.InterfaceEquationB(n, s.G, s.Gt, s.DG, s.DGt)
	return p.residual(n, r, rt)
}

// residual packs r and r̃. A non-finite result against a singular neighbor
// state marks the solve as singular.
func (p *transport) residual(n *riccati.Propagator, r, rt spin.Matrix) []float64 {
	out := packResidual(r, rt)
	if n != nil && !ode.State(out).IsValid() && !riccati.Regular(n.G, n.Gt) {
		p.singular = true
	}
	return out
}

// Stiffness bounds the growth rate of the linearized equation,
// sqrt(2·max coefficient).
func (p *transport) Stiffness() float64 {
	k := math.Hypot(real(p.e), imag(p.e)) / p.layer.Thouless
	return math.Sqrt(2 * math.Max(k, p.layer.rate))
}

func packResidual(r, rt spin.Matrix) []float64 {
	out := make([]float64, 2*riccati.MatrixDim)
	riccati.PackMatrix(out, r)
	riccati.PackMatrix(out[riccati.MatrixDim:], rt)
	return out
}

func nanResidual() []float64 {
	out := make([]float64, 2*riccati.MatrixDim)
	for k := range out {
		out[k] = math.NaN()
	}
	return out
}
