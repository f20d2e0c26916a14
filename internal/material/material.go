// Package material implements the layers of a superconducting
// heterostructure and the diffusion equation each of them contributes.
//
// Every layer kind satisfies [Material]. The shared bookkeeping lives in
// [Layer]; [Conductor] embeds it and adds the Usadel equation of a normal
// metal, while [Ferromagnet] and [Superconductor] embed Conductor and add
// the exchange field and the self-consistent pair potential.
//
// # Update protocol
//
// A call to Update runs the layer's UpdatePrehook, then solves one
// boundary-value problem per energy on the layer's position grid. The
// state vector is
//
//	y = [g, g̃, dg, dg̃],  y' = [dg, dg̃, d²g, d²g̃]
//
// with the second derivatives taken from DiffusionEquation and the 16
// residuals at each end taken from InterfaceEquationA/B. Energies are
// solved concurrently; a failure at one energy is reported through
// [UpdateError] and leaves the other energies untouched.
//
// # Neighbors
//
// MaterialA and MaterialB point at the layers on each side, nil meaning
// vacuum. Side a reads the neighbor's last position, side b its first.
// Neighbors are only read during an update, so the caller must not update
// two adjacent layers at the same time.
package material

import (
	"github.com/san-kum/usadel/internal/bvp"
	"github.com/san-kum/usadel/internal/riccati"
	"github.com/san-kum/usadel/internal/spin"
)

var (
	_ Material = (*Conductor)(nil)
	_ Material = (*Ferromagnet)(nil)
	_ Material = (*Superconductor)(nil)
)

// Material is the contract shared by every layer kind.
type Material interface {
	Base() *Layer

	// DiffusionEquation returns d²g and d²g̃ at the complex energy e (real
	// part the energy, imaginary part the inelastic scattering rate) and
	// normalized position z.
	DiffusionEquation(e complex128, z float64, g, gt, dg, dgt spin.Matrix) (d2g, d2gt spin.Matrix)

	// InterfaceEquationA returns the boundary residuals at z = 0. a is the
	// neighbor's state at its last position, or nil for vacuum.
	InterfaceEquationA(a *riccati.Propagator, g, gt, dg, dgt spin.Matrix) (r, rt spin.Matrix)

	// InterfaceEquationB returns the boundary residuals at z = 1. b is the
	// neighbor's state at its first position, or nil for vacuum.
	InterfaceEquationB(b *riccati.Propagator, g, gt, dg, dgt spin.Matrix) (r, rt spin.Matrix)

	UpdatePrehook() error
	Update() error
	Difference() float64
	WriteDensityOfStates(sink Sink, left, right float64) error
	Save() Snapshot
	Load(Snapshot) error
}

// Sink receives output records: (position, energy, dos) for densities of
// states and (position, Re Δ, Im Δ) for gaps.
type Sink interface {
	Record(a, b, c float64) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(a, b, c float64) error

func (f SinkFunc) Record(a, b, c float64) error { return f(a, b, c) }

// Snapshot is a deep copy of a layer's state.
type Snapshot struct {
	States [][]riccati.Propagator `json:"states"`
	Gap    [][2]float64           `json:"gap,omitempty"`
}

// Options configures a layer.
type Options struct {
	Name        string
	Length      float64
	Points      int
	Scattering  float64
	Temperature float64
	A, B        Interface
	SpinOrbit   SpinOrbit
	Frozen      bool
	Solver      bvp.Options
	Workers     int
}

const (
	DefaultLength     = 1.0
	DefaultPoints     = 20
	DefaultScattering = 0.01
)

func DefaultOptions() Options {
	return Options{
		Length:     DefaultLength,
		Points:     DefaultPoints,
		Scattering: DefaultScattering,
		Solver:     bvp.DefaultOptions(),
	}
}
