package integrators

import (
	"errors"
	"math"

	"github.com/san-kum/usadel/internal/ode"
)

// Dormand-Prince 5(4) tableau. The seventh stage is evaluated at the new
// state and only enters the error estimate.
var (
	dpNodes = [6]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1}

	dpStages = [6][]float64{
		nil,
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
	}

	dpFifth  = []float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84}
	dpFourth = []float64{5179.0 / 57600, 0, 7571.0 / 16695, 393.0 / 640, -92097.0 / 339200, 187.0 / 2100, 1.0 / 40}
)

// RK45 is the adaptive Dormand-Prince method.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
	floor    float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10,
		floor:    1e-6,
	}
}

// Step advances by exactly dz, subdividing internally until every substep
// meets the default tolerance. A state that turns invalid is returned as is.
func (r *RK45) Step(sys ode.System, y ode.State, z, dz float64) ode.State {
	end := z + dz
	h := dz
	for z < end {
		h = math.Min(h, end-z)
		next, proposal, err := r.StepAdaptive(sys, y, z, h, 1e-8)
		switch {
		case errors.Is(err, ode.ErrInvalidState):
			return next
		case err != nil && h > dz*1e-6:
			h = proposal
			continue
		}
		y, z, h = next, z+h, proposal
	}
	return y
}

// StepAdaptive takes one Dormand-Prince step of size dz. The error of each
// component is measured against |y| + |dz·f| + floor. Rejected steps still
// return the computed state so callers may force progress.
func (r *RK45) StepAdaptive(sys ode.System, y ode.State, z, dz, tol float64) (ode.State, float64, error) {
	k := make([]ode.State, 7)
	k[0] = sys.Derive(y, z)
	var stage ode.State
	for s := 1; s < 6; s++ {
		stage = ode.Combine(stage, y, dz, dpStages[s], k[:s])
		k[s] = sys.Derive(stage, z+dpNodes[s]*dz)
	}

	next := ode.Combine(nil, y, dz, dpFifth, k[:6])
	if !next.IsValid() {
		return next, dz * r.minScale, ode.ErrInvalidState
	}
	k[6] = sys.Derive(next, z+dz)

	low := ode.Combine(nil, y, dz, dpFourth, k)
	worst := 0.0
	for i := range y {
		scale := math.Abs(y[i]) + math.Abs(dz*k[0][i]) + r.floor
		worst = math.Max(worst, math.Abs(next[i]-low[i])/scale)
	}

	ratio := worst / tol
	if ratio > 1 {
		return next, dz * math.Max(r.minScale, r.safety*math.Pow(ratio, -0.25)), ode.ErrStepRejected
	}
	if ratio == 0 {
		return next, dz * r.maxScale, nil
	}
	return next, dz * math.Min(r.maxScale, r.safety*math.Pow(ratio, -0.2)), nil
}
