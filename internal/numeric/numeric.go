// Package numeric implements the sampled-curve utilities used by the
// self-consistency loop: linear spaces, finite differences, trapezoid and
// monotone-spline integration, and spline interpolation.
//
// Every function has a complex counterpart that applies the real
// operation to the real and imaginary parts independently.
package numeric

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// Linspace returns n evenly spaced values from first to last inclusive.
// It panics if n < 2.
func Linspace(n int, first, last float64) []float64 {
	if n < 2 {
		panic("numeric: linspace needs at least two points")
	}
	xs := floats.Span(make([]float64, n), first, last)
	xs[n-1] = last
	return xs
}

// Differentiate returns dy/dx using central differences at interior
// points and one-sided differences at both ends. The grid may be
// non-uniform.
func Differentiate(x, y []float64) []float64 {
	n := len(x)
	if n != len(y) {
		panic("numeric: slice length mismatch")
	}
	d := make([]float64, n)
	if n < 2 {
		return d
	}
	d[0] = (y[1] - y[0]) / (x[1] - x[0])
	d[n-1] = (y[n-1] - y[n-2]) / (x[n-1] - x[n-2])
	for i := 1; i < n-1; i++ {
		d[i] = (y[i+1] - y[i-1]) / (x[i+1] - x[i-1])
	}
	return d
}

// IntegrateTrapezoid returns the trapezoid rule estimate of the integral
// of the samples y over x.
func IntegrateTrapezoid(x, y []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return integrate.Trapezoidal(x, y)
}

// DifferentiateComplex is the complex counterpart of Differentiate.
func DifferentiateComplex(x []float64, y []complex128) []complex128 {
	re, im := split(y)
	return join(Differentiate(x, re), Differentiate(x, im))
}

// IntegrateTrapezoidComplex is the complex counterpart of IntegrateTrapezoid.
func IntegrateTrapezoidComplex(x []float64, y []complex128) complex128 {
	re, im := split(y)
	return complex(IntegrateTrapezoid(x, re), IntegrateTrapezoid(x, im))
}

func split(y []complex128) ([]float64, []float64) {
	re := make([]float64, len(y))
	im := make([]float64, len(y))
	for i, v := range y {
		re[i] = real(v)
		im[i] = imag(v)
	}
	return re, im
}

func join(re, im []float64) []complex128 {
	out := make([]complex128, len(re))
	for i := range re {
		out[i] = complex(re[i], im[i])
	}
	return out
}
