// Package bvp solves two-point boundary-value problems
//
//	y' = f(y, z),  rA(y(a)) = 0,  rB(y(b)) = 0
//
// by multiple shooting. The interval is split into segments at mesh nodes;
// each segment is integrated with an [ode.Integrator] from an unknown
// starting state, and a damped Newton iteration drives the boundary
// residuals and the continuity mismatches between segments to zero. The
// Jacobian is built by forward differences, one segment at a time, and
// solved with a dense LU factorization from gonum.
//
// Problems with exponentially growing modes can report their largest
// growth rate through [Stiff]; the solver then sizes the segments so that
// no segment amplifies errors by more than exp(Growth), and limits the
// integration step to StepFactor/rate.
//
// # Thread Safety
//
// A [Solver] owns its integrator scratch space and is NOT thread-safe.
// Construct one per goroutine.
package bvp
