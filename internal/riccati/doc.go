// Package riccati holds the quasiclassical propagator at one energy and
// position in the Riccati parametrization.
//
// A [Propagator] stores the two Riccati matrices g and g̃ together with
// their position derivatives. The full retarded Green's function is
// recovered through the normalization matrices
//
//	N = (I − g·g̃)⁻¹,  Ñ = (I − g̃·g)⁻¹
//
// which exist only while g·g̃ has spectral radius below one. [Regular]
// tests that condition and every derived quantity reports failure instead
// of returning NaN.
//
// # Packing
//
// The boundary-value solver works on real vectors. [Propagator.Pack] lays
// out g, g̃, dg and dg̃ in that order, each matrix row major with the real
// part before the imaginary part, for a total of [Dim] entries.
package riccati
