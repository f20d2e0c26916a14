// Package analysis runs parameter studies on a converged structure.
//
//   - [CriticalTemperature]: bisection for the temperature at which the
//     pair potential stops growing
//   - [TemperatureSweep]: self-consistent solutions along a temperature
//     path, each started from the previous one
//
// # Critical Temperature
//
// Near Tc the gap equation is linear in Δ. Each bisection step seeds a
// small gap, lets the transport state settle with the gap held fixed, and
// then applies one free update: the structure is superconducting at that
// temperature iff the gap grew.
//
//	res, err := analysis.CriticalTemperature(ctx, st, analysis.DefaultCriticalOptions())
//	fmt.Printf("Tc = %.3f\n", res.Temperature)
package analysis
