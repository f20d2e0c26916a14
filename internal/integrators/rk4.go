package integrators

import "github.com/san-kum/usadel/internal/ode"

var rk4Weights = []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6}

// RK4 is the classical fourth-order method. Stage storage is reused between
// steps, so an RK4 value must not be shared between goroutines.
type RK4 struct {
	k       []ode.State
	scratch ode.State
}

func NewRK4() *RK4 {
	return &RK4{k: make([]ode.State, 4)}
}

func (r *RK4) Step(sys ode.System, y ode.State, z, dz float64) ode.State {
	half := dz / 2
	r.k[0] = append(r.k[0][:0], sys.Derive(y, z)...)

	r.scratch = ode.Combine(r.scratch, y, half, []float64{1}, r.k[:1])
	r.k[1] = append(r.k[1][:0], sys.Derive(r.scratch, z+half)...)

	r.scratch = ode.Combine(r.scratch, y, half, []float64{0, 1}, r.k[:2])
	r.k[2] = append(r.k[2][:0], sys.Derive(r.scratch, z+half)...)

	r.scratch = ode.Combine(r.scratch, y, dz, []float64{0, 0, 1}, r.k[:3])
	r.k[3] = append(r.k[3][:0], sys.Derive(r.scratch, z+dz)...)

	return ode.Combine(nil, y, dz, rk4Weights, r.k)
}
