package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinspace(t *testing.T) {
	for _, n := range []int{2, 3, 10, 101} {
		xs := Linspace(n, -1.5, 2.5)
		require.Len(t, xs, n)
		assert.Equal(t, -1.5, xs[0])
		assert.Equal(t, 2.5, xs[n-1])

		step := 4.0 / float64(n-1)
		for i := 1; i < n; i++ {
			assert.InDelta(t, step, xs[i]-xs[i-1], 1e-12)
		}
	}
}

func TestLinspacePanicsBelowTwo(t *testing.T) {
	assert.Panics(t, func() { Linspace(1, 0, 1) })
}

func TestDifferentiateIdentity(t *testing.T) {
	x := []float64{0, 0.1, 0.15, 0.4, 0.41, 0.9, 1.3}
	d := Differentiate(x, x)
	require.Len(t, d, len(x))
	for i := range d {
		assert.InDelta(t, 1, d[i], 1e-12)
	}
}

func TestDifferentiateQuadraticInterior(t *testing.T) {
	x := Linspace(21, 0, 2)
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = v * v
	}
	d := Differentiate(x, y)

	// central differences are exact for quadratics on a uniform grid
	for i := 1; i < len(x)-1; i++ {
		assert.InDelta(t, 2*x[i], d[i], 1e-12)
	}
}

func TestIntegrateTrapezoidPiecewiseLinear(t *testing.T) {
	x := []float64{0, 0.5, 1, 2, 4}
	y := []float64{1, 3, -1, 0, 2}

	want := 0.5*(1+3)*0.5 + 0.5*(3-1)*0.5 + 0.5*(-1+0)*1 + 0.5*(0+2)*2
	assert.InDelta(t, want, IntegrateTrapezoid(x, y), 1e-14)
}

func TestIntegrateTrapezoidConverges(t *testing.T) {
	prev := math.Inf(1)
	for _, n := range []int{5, 11, 51, 201} {
		x := Linspace(n, 0, 1)
		y := make([]float64, n)
		for i, v := range x {
			y[i] = v * v
		}
		err := math.Abs(IntegrateTrapezoid(x, y) - 1.0/3)
		assert.Less(t, err, prev)
		prev = err
	}
	assert.Less(t, prev, 1e-5)
}

func TestSplineInterpolatesKnots(t *testing.T) {
	x := []float64{0, 0.3, 0.7, 1.2, 2}
	y := []float64{0, 0.5, 0.6, 1.5, 1.7}

	got := InterpolateSpline(x, y, x)
	for i := range x {
		assert.InDelta(t, y[i], got[i], 1e-12)
	}
}

func TestSplineIntegralLinearIsExact(t *testing.T) {
	x := []float64{0, 0.2, 0.9, 1.5, 3}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 2*v - 1
	}

	// ∫ (2x - 1) dx over [0.1, 2.5] = x² - x
	want := (2.5*2.5 - 2.5) - (0.01 - 0.1)
	assert.InDelta(t, want, IntegrateSpline(x, y, 0.1, 2.5), 1e-12)
	assert.InDelta(t, -want, IntegrateSpline(x, y, 2.5, 0.1), 1e-12)
}

func TestSplineIntegralQuadratic(t *testing.T) {
	x := Linspace(201, 0, 1)
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = v * v
	}
	assert.InDelta(t, 1.0/3, IntegrateSpline(x, y, 0, 1), 1e-6)
}

func TestSplineConstantExtension(t *testing.T) {
	s, err := NewSpline([]float64{0, 1}, []float64{2, 2})
	require.NoError(t, err)
	assert.InDelta(t, 8, s.Integral(-1, 3), 1e-12)
	assert.InDelta(t, 2, s.At(5), 1e-12)
}

func TestSplineRejectsBadSamples(t *testing.T) {
	_, err := NewSpline([]float64{0}, []float64{1})
	assert.ErrorIs(t, err, ErrTooFewPoints)

	_, err = NewSpline([]float64{0, 1, 1}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrNotIncreasing)
}

func TestComplexVariantsSplitParts(t *testing.T) {
	x := Linspace(11, 0, 1)
	y := make([]complex128, len(x))
	re := make([]float64, len(x))
	im := make([]float64, len(x))
	for i, v := range x {
		y[i] = complex(v, 3-v)
		re[i] = v
		im[i] = 3 - v
	}

	got := IntegrateTrapezoidComplex(x, y)
	assert.InDelta(t, IntegrateTrapezoid(x, re), real(got), 1e-14)
	assert.InDelta(t, IntegrateTrapezoid(x, im), imag(got), 1e-14)

	gs := IntegrateSplineComplex(x, y, 0, 1)
	assert.InDelta(t, 0.5, real(gs), 1e-12)
	assert.InDelta(t, 2.5, imag(gs), 1e-12)

	p := InterpolateSplineComplex(x, y, []float64{0.55})
	assert.InDelta(t, 0.55, real(p[0]), 1e-12)
	assert.InDelta(t, 2.45, imag(p[0]), 1e-12)

	d := DifferentiateComplex(x, y)
	for i := range d {
		assert.InDelta(t, 1, real(d[i]), 1e-12)
		assert.InDelta(t, -1, imag(d[i]), 1e-12)
	}
}
