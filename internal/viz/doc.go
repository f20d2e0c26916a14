// Package viz presents runs: styled console output, terminal charts,
// PNG and HTML charts, and a live convergence view.
//
//   - [Console]: lipgloss-styled status lines, summaries and tables
//   - [GapChart], [DOSChart], [SweepChart]: asciigraph terminal charts
//   - [SaveGapPNG], [SaveDOSPNG], [SaveSweepPNG]: gonum/plot images
//   - [RenderHTML], [RenderSweepHTML]: go-echarts pages
//   - [RunLive]: Bubble Tea progress view for a running convergence
//
// # Key Bindings
//
//	q, ctrl+c - stop the run
package viz
