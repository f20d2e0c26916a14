// Package ode provides the primitives shared by the position integrators
// and the boundary-value solver.
//
// The package defines the fundamental types for integrating first-order
// systems dy/dz = f(y, z) along a layer:
//
//   - [State]: real vector holding the packed unknowns
//   - [Combine]: the stage update y + h·Σ wⱼkⱼ shared by the integrators
//   - [System]: right-hand side of the system
//   - [Integrator]: fixed-step integrator interface
//   - [AdaptiveIntegrator]: integrator with error control
//   - [ParallelFor]: worker pool used for the per-energy solves
//
// # Example
//
//	integ := integrators.NewRK4()
//	y := y0.Clone()
//	for z := 0.0; z < 1; z += dz {
//		y = integ.Step(sys, y, z, dz)
//	}
//
// # Thread Safety
//
// Integrators keep scratch buffers and are NOT thread-safe. Each goroutine
// started by [ParallelFor] must construct its own integrator.
package ode
