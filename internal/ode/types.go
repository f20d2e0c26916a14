package ode

import "math"

// State is the packed vector of real unknowns at one position.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	return math.Sqrt(s.dot(s))
}

func (s State) dot(o State) float64 {
	sum := 0.0
	for i, v := range s {
		sum += v * o[i]
	}
	return sum
}

// MaxAbs returns the infinity norm.
func (s State) MaxAbs() float64 {
	m := 0.0
	for _, v := range s {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

// Combine stores y + h·Σ w[j]·k[j] in dst, allocating it when its length
// does not match y, and returns it. Zero weights are skipped.
func Combine(dst, y State, h float64, w []float64, k []State) State {
	if len(dst) != len(y) {
		dst = make(State, len(y))
	}
	copy(dst, y)
	for j, wj := range w {
		if wj == 0 {
			continue
		}
		c := h * wj
		for i, v := range k[j] {
			dst[i] += c * v
		}
	}
	return dst
}

// System is a first-order system dy/dz = f(y, z).
type System interface {
	Derive(y State, z float64) State
	StateDim() int
}

type Integrator interface {
	Step(sys System, y State, z, dz float64) State
}

// AdaptiveIntegrator advances one step with error control. It returns the
// new state and a proposal for the next step size. A step whose error
// exceeds tol returns ErrStepRejected together with a smaller proposal.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, y State, z, dz, tol float64) (State, float64, error)
}
