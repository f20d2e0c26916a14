package spin

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Matrix is a 2x2 complex matrix, row major.
type Matrix [2][2]complex128

// Pauli basis.
var (
	Identity = Matrix{{1, 0}, {0, 1}}
	SigmaX   = Matrix{{0, 1}, {1, 0}}
	SigmaY   = Matrix{{0, -1i}, {1i, 0}}
	SigmaZ   = Matrix{{1, 0}, {0, -1}}
)

// singularFloor is the smallest determinant magnitude Inv accepts.
const singularFloor = 1e-14

func (a Matrix) Add(b Matrix) Matrix {
	return Matrix{
		{a[0][0] + b[0][0], a[0][1] + b[0][1]},
		{a[1][0] + b[1][0], a[1][1] + b[1][1]},
	}
}

func (a Matrix) Sub(b Matrix) Matrix {
	return Matrix{
		{a[0][0] - b[0][0], a[0][1] - b[0][1]},
		{a[1][0] - b[1][0], a[1][1] - b[1][1]},
	}
}

func (a Matrix) Mul(b Matrix) Matrix {
	return Matrix{
		{a[0][0]*b[0][0] + a[0][1]*b[1][0], a[0][0]*b[0][1] + a[0][1]*b[1][1]},
		{a[1][0]*b[0][0] + a[1][1]*b[1][0], a[1][0]*b[0][1] + a[1][1]*b[1][1]},
	}
}

// Mul3 returns a·b·c.
func Mul3(a, b, c Matrix) Matrix {
	return a.Mul(b).Mul(c)
}

func (a Matrix) Scale(c complex128) Matrix {
	return Matrix{
		{c * a[0][0], c * a[0][1]},
		{c * a[1][0], c * a[1][1]},
	}
}

// Conj returns the elementwise complex conjugate, which is the tilde
// conjugation of spin-space operators.
func (a Matrix) Conj() Matrix {
	return Matrix{
		{cmplx.Conj(a[0][0]), cmplx.Conj(a[0][1])},
		{cmplx.Conj(a[1][0]), cmplx.Conj(a[1][1])},
	}
}

// Dagger returns the conjugate transpose.
func (a Matrix) Dagger() Matrix {
	return Matrix{
		{cmplx.Conj(a[0][0]), cmplx.Conj(a[1][0])},
		{cmplx.Conj(a[0][1]), cmplx.Conj(a[1][1])},
	}
}

func (a Matrix) Trace() complex128 {
	return a[0][0] + a[1][1]
}

func (a Matrix) Det() complex128 {
	return a[0][0]*a[1][1] - a[0][1]*a[1][0]
}

// Inv returns the inverse of a. The second result is false when a is
// singular to working precision, in which case the returned matrix is Zero.
func (a Matrix) Inv() (Matrix, bool) {
	det := a.Det()
	if cmplx.Abs(det) < singularFloor || cmplx.IsNaN(det) || cmplx.IsInf(det) {
		return Matrix{}, false
	}
	inv := 1 / det
	return Matrix{
		{a[1][1] * inv, -a[0][1] * inv},
		{-a[1][0] * inv, a[0][0] * inv},
	}, true
}

// Norm returns the largest entry magnitude.
func (a Matrix) Norm() float64 {
	n := 0.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			n = math.Max(n, cmplx.Abs(a[i][j]))
		}
	}
	return n
}

func (a Matrix) IsValid() bool {
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if cmplx.IsNaN(a[i][j]) || cmplx.IsInf(a[i][j]) {
				return false
			}
		}
	}
	return true
}

// Distance returns the largest entry magnitude of a-b.
func (a Matrix) Distance(b Matrix) float64 {
	return a.Sub(b).Norm()
}

// Commutator returns [a, b] = ab - ba.
func (a Matrix) Commutator(b Matrix) Matrix {
	return a.Mul(b).Sub(b.Mul(a))
}

func (a Matrix) String() string {
	return fmt.Sprintf("[[%v %v] [%v %v]]", a[0][0], a[0][1], a[1][0], a[1][1])
}
