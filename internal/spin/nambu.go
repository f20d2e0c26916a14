package spin

import (
	"math"
	"math/cmplx"
)

// Nambu is a 4x4 complex matrix in spin-Nambu space. The upper left block
// acts on particles, the lower right block on holes.
type Nambu [4][4]complex128

// NewNambu assembles a Nambu matrix from its 2x2 blocks.
func NewNambu(a, b, c, d Matrix) Nambu {
	var n Nambu
	n.setBlock(0, 0, a)
	n.setBlock(0, 1, b)
	n.setBlock(1, 0, c)
	n.setBlock(1, 1, d)
	return n
}

// NambuDiag returns diag(a, b).
func NambuDiag(a, b Matrix) Nambu {
	return NewNambu(a, Matrix{}, Matrix{}, b)
}

func (n *Nambu) setBlock(i, j int, m Matrix) {
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			n[2*i+r][2*j+c] = m[r][c]
		}
	}
}

// Block returns the 2x2 block (i, j), i and j in {0, 1}.
func (n Nambu) Block(i, j int) Matrix {
	var m Matrix
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			m[r][c] = n[2*i+r][2*j+c]
		}
	}
	return m
}

func (n Nambu) Add(m Nambu) Nambu {
	var out Nambu
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = n[i][j] + m[i][j]
		}
	}
	return out
}

func (n Nambu) Sub(m Nambu) Nambu {
	var out Nambu
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = n[i][j] - m[i][j]
		}
	}
	return out
}

func (n Nambu) Mul(m Nambu) Nambu {
	var out Nambu
	for i := 0; i < 4; i++ {
		for k := 0; k < 4; k++ {
			if n[i][k] == 0 {
				continue
			}
			for j := 0; j < 4; j++ {
				out[i][j] += n[i][k] * m[k][j]
			}
		}
	}
	return out
}

func (n Nambu) Scale(c complex128) Nambu {
	var out Nambu
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = c * n[i][j]
		}
	}
	return out
}

// Commutator returns [n, m] = nm - mn.
func (n Nambu) Commutator(m Nambu) Nambu {
	return n.Mul(m).Sub(m.Mul(n))
}

// Norm returns the largest entry magnitude.
func (n Nambu) Norm() float64 {
	v := 0.0
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			v = math.Max(v, cmplx.Abs(n[i][j]))
		}
	}
	return v
}

// NambuIdentity is the 4x4 identity.
var NambuIdentity = NambuDiag(Identity, Identity)
