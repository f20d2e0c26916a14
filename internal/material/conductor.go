package material

import (
	"github.com/san-kum/usadel/internal/riccati"
	"github.com/san-kum/usadel/internal/spin"
)

// Conductor is a diffusive normal metal, optionally with spin-orbit
// coupling.
type Conductor struct {
	Layer
	SpinOrbit SpinOrbit

	gauge            *gauge
	activeA, activeB *SpinActive
}

// NewConductor returns a conductor in the normal state.
func NewConductor(energies []float64, opts Options) (*Conductor, error) {
	l, err := newLayer(energies, opts)
	if err != nil {
		return nil, err
	}
	return &Conductor{Layer: *l, SpinOrbit: opts.SpinOrbit}, nil
}

// UpdatePrehook rebuilds the spin-orbit matrices and the spin-active
// interface models.
func (c *Conductor) UpdatePrehook() error {
	c.gauge = newGauge(c.SpinOrbit, c.Length)
	c.rate = c.gauge.rate()

	c.activeA, c.activeB = nil, nil
	if c.A.SpinActive() {
		var far *spin.Vector
		if c.MaterialA != nil {
			far = c.MaterialA.Base().B.Misalignment
		}
		model, err := NewSpinActive(c.A, far)
		if err != nil {
			return err
		}
		c.activeA = model
	}
	if c.B.SpinActive() {
		var far *spin.Vector
		if c.MaterialB != nil {
			far = c.MaterialB.Base().A.Misalignment
		}
		model, err := NewSpinActive(c.B, far)
		if err != nil {
			return err
		}
		c.activeB = model
	}
	return nil
}

// DiffusionEquation is the Usadel equation of a normal metal,
//
//	d²g = −2·dg·Ñ·g̃·dg − 2iε·g
//	d²g̃ = −2·dg̃·N·g·dg̃ − 2iε·g̃
//
// with ε the energy in units of the Thouless energy, plus the gauge-field
// terms if spin-orbit coupling is present.
func (c *Conductor) DiffusionEquation(e complex128, z float64, g, gt, dg, dgt spin.Matrix) (spin.Matrix, spin.Matrix) {
	n, _ := spin.Identity.Sub(g.Mul(gt)).Inv()
	nt, _ := spin.Identity.Sub(gt.Mul(g)).Inv()
	eps := e / complex(c.Thouless, 0)

	d2g := spin.Mul3(dg, nt, gt).Mul(dg).Scale(-2).Sub(g.Scale(2i * eps))
	d2gt := spin.Mul3(dgt, n, g).Mul(dgt).Scale(-2).Sub(gt.Scale(2i * eps))

	if c.gauge != nil {
		so, sot := c.gauge.diffusion(g, gt, dg, dgt, n, nt)
		d2g = d2g.Add(so)
		d2gt = d2gt.Add(sot)
	}
	return d2g, d2gt
}

func (c *Conductor) InterfaceEquationA(a *riccati.Propagator, g, gt, dg, dgt spin.Matrix) (spin.Matrix, spin.Matrix) {
	return c.boundary(c.activeA, c.A, a, g, gt, dg, dgt, 1)
}

func (c *Conductor) InterfaceEquationB(b *riccati.Propagator, g, gt, dg, dgt spin.Matrix) (spin.Matrix, spin.Matrix) {
	return c.boundary(c.activeB, c.B, b, g, gt, dg, dgt, -1)
}

func (c *Conductor) boundary(model *SpinActive, f Interface, n *riccati.Propagator, g, gt, dg, dgt spin.Matrix, sign float64) (spin.Matrix, spin.Matrix) {
	var r, rt spin.Matrix
	switch {
	case model != nil:
		r, rt = spinActive(model, n, g, gt, dg, dgt, sign, !c.Bootstrap)
	case n != nil:
		r, rt = tunnel(f.Conductance, n, g, gt, dg, dgt, sign)
	default:
		r, rt = dg, dgt
	}

	if c.gauge != nil {
		so, sot := c.gauge.boundary(g, gt, sign)
		r = r.Add(so)
		rt = rt.Add(sot)
	}
	return r, rt
}

func (c *Conductor) Update() error {
	return c.solve(c)
}
