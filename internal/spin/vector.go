package spin

import "math"

// Vector is a real 3-vector such as a magnetization direction or an
// exchange field.
type Vector [3]float64

// Matrix returns v·σ.
func (v Vector) Matrix() Matrix {
	return SigmaX.Scale(complex(v[0], 0)).
		Add(SigmaY.Scale(complex(v[1], 0))).
		Add(SigmaZ.Scale(complex(v[2], 0)))
}

func (v Vector) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Unit returns v scaled to unit length, or the zero vector if v is zero.
func (v Vector) Unit() Vector {
	n := v.Norm()
	if n == 0 {
		return Vector{}
	}
	return Vector{v[0] / n, v[1] / n, v[2] / n}
}

func (v Vector) IsZero() bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

// Lerp interpolates linearly between v and w, t in [0, 1].
func (v Vector) Lerp(w Vector, t float64) Vector {
	return Vector{
		v[0] + t*(w[0]-v[0]),
		v[1] + t*(w[1]-v[1]),
		v[2] + t*(w[2]-v[2]),
	}
}
