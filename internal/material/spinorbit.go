package material

import "github.com/san-kum/usadel/internal/spin"

// SpinOrbit is an SU(2) gauge field A = (Ax·σ, Ay·σ, Az·σ) in units of the
// inverse coherence length. Az is along the layer normal.
type SpinOrbit struct {
	Ax, Ay, Az spin.Vector
}

func (s SpinOrbit) IsZero() bool {
	return s.Ax.IsZero() && s.Ay.IsZero() && s.Az.IsZero()
}

// gauge caches the spin-orbit matrices of a layer, scaled by its length.
type gauge struct {
	a, at   [3]spin.Matrix
	a2, at2 spin.Matrix
}

func newGauge(s SpinOrbit, length float64) *gauge {
	if s.IsZero() {
		return nil
	}
	gg := &gauge{}
	for k, v := range []spin.Vector{s.Ax, s.Ay, s.Az} {
		gg.a[k] = v.Matrix().Scale(complex(length, 0))
		gg.at[k] = gg.a[k].Conj()
		gg.a2 = gg.a2.Add(gg.a[k].Mul(gg.a[k]))
		gg.at2 = gg.at2.Add(gg.at[k].Mul(gg.at[k]))
	}
	return gg
}

// rate is the size of the quadratic term, for stiffness estimates.
func (gg *gauge) rate() float64 {
	if gg == nil {
		return 0
	}
	return gg.a2.Norm()
}

// diffusion returns the gauge-field terms added to d²g and d²g̃.
func (gg *gauge) diffusion(g, gt, dg, dgt, n, nt spin.Matrix) (spin.Matrix, spin.Matrix) {
	d2g := gg.a2.Mul(g).Sub(g.Mul(gg.at2))
	d2gt := gg.at2.Mul(gt).Sub(gt.Mul(gg.a2))

	for k := 0; k < 3; k++ {
		a, at := gg.a[k], gg.at[k]
		d2g = d2g.Add(spin.Mul3(a.Mul(g).Add(g.Mul(at)), nt, at.Add(spin.Mul3(gt, a, g))).Scale(2))
		d2gt = d2gt.Add(spin.Mul3(at.Mul(gt).Add(gt.Mul(a)), n, a.Add(spin.Mul3(g, at, gt))).Scale(2))
	}

	az, atz := gg.a[2], gg.at[2]
	d2g = d2g.Add(spin.Mul3(dg, nt, atz.Add(spin.Mul3(gt, az, g))).
		Add(spin.Mul3(az.Add(spin.Mul3(g, atz, gt)), n, dg)).Scale(2i))
	d2gt = d2gt.Sub(spin.Mul3(dgt, n, az.Add(spin.Mul3(g, atz, gt))).
		Add(spin.Mul3(atz.Add(spin.Mul3(gt, az, g)), nt, dgt)).Scale(2i))
	return d2g, d2gt
}

// boundary returns the correction to the interface residuals. sign is +1
// on side a and -1 on side b.
func (gg *gauge) boundary(g, gt spin.Matrix, sign float64) (spin.Matrix, spin.Matrix) {
	az, atz := gg.a[2], gg.at[2]
	k := complex(0, sign)
	r := az.Mul(g).Add(g.Mul(atz)).Scale(-k)
	rt := atz.Mul(gt).Add(gt.Mul(az)).Scale(k)
	return r, rt
}
