package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/usadel/internal/spin"
)

func TestSpinOrbitDiffusionScalarState(t *testing.T) {
	const alpha = 0.7
	c, ct := complex(0.3, 0.2), complex(-0.1, 0.4)
	d, dt := complex(0.5, -0.2), complex(0.1, 0.3)

	gg := newGauge(SpinOrbit{Az: spin.Vector{0, 0, alpha / 2}}, 2)
	require.NotNil(t, gg)

	g, gt := spin.Identity.Scale(c), spin.Identity.Scale(ct)
	n := spin.Identity.Scale(1 / (1 - c*ct))
	d2g, d2gt := gg.diffusion(g, gt, spin.Identity.Scale(d), spin.Identity.Scale(dt), n, n)

	// The quadratic terms cancel for a scalar state. What remains is
	// 4α²c(1+cc̃)/(1−cc̃) from the sum and ±4iα·d(1+cc̃)/(1−cc̃)σz from
	// the gradient coupling.
	k := (1 + c*ct) / (1 - c*ct)
	wantG := spin.Identity.Scale(4 * alpha * alpha * c * k).Add(spin.SigmaZ.Scale(4i * alpha * d * k))
	wantGt := spin.Identity.Scale(4 * alpha * alpha * ct * k).Sub(spin.SigmaZ.Scale(4i * alpha * dt * k))
	assert.Less(t, d2g.Sub(wantG).Norm(), 1e-13)
	assert.Less(t, d2gt.Sub(wantGt).Norm(), 1e-13)
}

func TestSpinOrbitDiffusionGenericState(t *testing.T) {
	this, _ := samplePair()
	g, gt, dg, dgt := this.G, this.Gt, this.DG, this.DGt
	n, nt, ok := this.Normalization()
	require.True(t, ok)

	// length 2 doubles the field: ax = 0.5σy, az = 0.7σx
	gg := newGauge(SpinOrbit{Ax: spin.Vector{0, 0.25, 0}, Az: spin.Vector{0.35, 0, 0}}, 2)
	require.NotNil(t, gg)

	ax := spin.Matrix{{0, -0.5i}, {0.5i, 0}}
	axt := spin.Matrix{{0, 0.5i}, {-0.5i, 0}}
	az := spin.Matrix{{0, 0.7}, {0.7, 0}}
	azt := az

	var wantG, wantGt spin.Matrix
	for _, a := range [][2]spin.Matrix{{ax, axt}, {az, azt}} {
		a, at := a[0], a[1]
		wantG = wantG.
			Add(spin.Mul3(a, g, nt).Mul(at)).
			Add(spin.Mul3(a, g, nt).Mul(spin.Mul3(gt, a, g))).
			Add(spin.Mul3(g, at, nt).Mul(at)).
			Add(spin.Mul3(g, at, nt).Mul(spin.Mul3(gt, a, g)))
		wantGt = wantGt.
			Add(spin.Mul3(at, gt, n).Mul(a)).
			Add(spin.Mul3(at, gt, n).Mul(spin.Mul3(g, at, gt))).
			Add(spin.Mul3(gt, a, n).Mul(a)).
			Add(spin.Mul3(gt, a, n).Mul(spin.Mul3(g, at, gt)))
	}
	wantG = wantG.Scale(2)
	wantGt = wantGt.Scale(2)

	// (ax² + az²) = 0.74 on both sides, so the quadratic terms cancel.
	grad := spin.Mul3(dg, nt, azt).
		Add(spin.Mul3(dg, nt, gt).Mul(az.Mul(g))).
		Add(spin.Mul3(az, n, dg)).
		Add(spin.Mul3(g, azt, gt).Mul(n.Mul(dg)))
	gradt := spin.Mul3(dgt, n, az).
		Add(spin.Mul3(dgt, n, g).Mul(azt.Mul(gt))).
		Add(spin.Mul3(azt, nt, dgt)).
		Add(spin.Mul3(gt, az, g).Mul(nt.Mul(dgt)))
	wantG = wantG.Add(grad.Scale(2i))
	wantGt = wantGt.Sub(gradt.Scale(2i))

	d2g, d2gt := gg.diffusion(g, gt, dg, dgt, n, nt)
	assert.Less(t, d2g.Sub(wantG).Norm(), 1e-13)
	assert.Less(t, d2gt.Sub(wantGt).Norm(), 1e-13)
	assert.Greater(t, wantG.Norm(), 1e-3)
	assert.Greater(t, wantGt.Norm(), 1e-3)
}

func TestSpinOrbitConductorAddsGaugeTerms(t *testing.T) {
	this, _ := samplePair()
	n, nt, ok := this.Normalization()
	require.True(t, ok)

	opts := testOptions(3)
	plain, err := NewConductor([]float64{0.5}, opts)
	require.NoError(t, err)
	require.NoError(t, plain.UpdatePrehook())

	so := SpinOrbit{Ax: spin.Vector{0.2, 0, 0.1}, Az: spin.Vector{0, 0.3, 0}}
	opts.SpinOrbit = so
	c, err := NewConductor([]float64{0.5}, opts)
	require.NoError(t, err)
	require.NoError(t, c.UpdatePrehook())

	base, baset := plain.DiffusionEquation(0.5, 0.3, this.G, this.Gt, this.DG, this.DGt)
	extra, extrat := newGauge(so, opts.Length).diffusion(this.G, this.Gt, this.DG, this.DGt, n, nt)
	got, gott := c.DiffusionEquation(0.5, 0.3, this.G, this.Gt, this.DG, this.DGt)
	assert.Less(t, got.Sub(base.Add(extra)).Norm(), 1e-12)
	assert.Less(t, gott.Sub(baset.Add(extrat)).Norm(), 1e-12)
}
