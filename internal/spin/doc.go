// Package spin provides the small complex matrices used throughout the
// quasiclassical transport code.
//
//   - [Matrix]: 2x2 complex matrix in spin space
//   - [Vector]: real 3-vector, mapped to spin space as v·σ
//   - [Nambu]: 4x4 complex matrix in spin-Nambu space, built from 2x2 blocks
//
// All types are plain arrays with value semantics, so they can be passed
// between goroutines freely and never alias each other.
//
// # Example
//
//	m := spin.Vector{0, 0, 1}.Matrix() // σz
//	inv, ok := spin.Identity.Sub(m.Scale(0.5)).Inv()
package spin
