package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/usadel/internal/ode"
)

func TestRK45_Step(t *testing.T) {
	integrator := NewRK45()
	sys := &oscillator{}
	y := ode.State{1.0, 0.0}
	dz := 0.1

	for i := 0; i < 100; i++ {
		y = integrator.Step(sys, y, float64(i)*dz, dz)
	}

	if !y.IsValid() {
		t.Fatal("RK45 produced invalid state")
	}
	if math.Abs(y[0]-math.Cos(10)) > 1e-5 {
		t.Errorf("RK45 error too large: got %.8f, want %.8f", y[0], math.Cos(10))
	}
}

func TestRK45_AdaptiveStep(t *testing.T) {
	integrator := NewRK45()
	sys := &oscillator{}
	y0 := ode.State{1.0, 0.0}

	y, newDz, err := integrator.StepAdaptive(sys, y0, 0, 0.1, 1e-8)

	if err != nil {
		t.Errorf("StepAdaptive returned error: %v", err)
	}
	if !y.IsValid() {
		t.Error("StepAdaptive produced invalid state")
	}
	if newDz <= 0 {
		t.Errorf("StepAdaptive returned invalid step: %f", newDz)
	}
}

func TestRK45_RejectsLargeStep(t *testing.T) {
	integrator := NewRK45()
	sys := &decay{k: 30}

	_, newDz, err := integrator.StepAdaptive(sys, ode.State{1, 30}, 0, 0.5, 1e-10)
	if !errors.Is(err, ode.ErrStepRejected) {
		t.Fatalf("expected ErrStepRejected, got %v", err)
	}
	if newDz >= 0.5 {
		t.Errorf("rejected step should shrink, got %f", newDz)
	}
}

func TestRK45_VsRK4_Accuracy(t *testing.T) {
	rk4 := NewRK4()
	rk45 := NewRK45()
	sys := &oscillator{}

	y4 := ode.State{1.0, 0.0}
	y45 := ode.State{1.0, 0.0}
	dz := 0.1

	for i := 0; i < 100; i++ {
		y4 = rk4.Step(sys, y4, float64(i)*dz, dz)
		y45 = rk45.Step(sys, y45, float64(i)*dz, dz)
	}

	e4 := math.Abs(y4[0] - math.Cos(10))
	e45 := math.Abs(y45[0] - math.Cos(10))
	if e45 > e4 {
		t.Errorf("RK45 (%e) should beat fixed-step RK4 (%e) at dz=0.1", e45, e4)
	}
}
