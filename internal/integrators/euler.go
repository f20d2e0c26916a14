package integrators

import "github.com/san-kum/usadel/internal/ode"

// Euler is the explicit first-order method. It is only useful for quick,
// coarse previews of a stack.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (Euler) Step(sys ode.System, y ode.State, z, dz float64) ode.State {
	return ode.Combine(nil, y, dz, []float64{1}, []ode.State{sys.Derive(y, z)})
}
