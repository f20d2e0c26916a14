package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/usadel/internal/analysis"
	"github.com/san-kum/usadel/internal/storage"
)

// GapChart plots Re Δ along the stack, and Im Δ when it is not zero.
func GapChart(gap *storage.Table, width, height int) string {
	if gap == nil || gap.Len() == 0 {
		return ""
	}
	series := [][]float64{gap.Column(1)}
	im := gap.Column(2)
	for _, v := range im {
		if v != 0 {
			series = append(series, im)
			break
		}
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Yellow),
		asciigraph.Caption("pair potential along the stack"),
	)
}

// DOSChart plots the density of states against energy at the stored
// position closest to position.
func DOSChart(dos *storage.Table, position float64, width, height int) string {
	if dos == nil || dos.Len() == 0 {
		return ""
	}
	x := NearestPosition(dos, position)
	slice := dos.Slice(x)
	energies := slice.Column(1)
	return asciigraph.Plot(slice.Column(2),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("dos at x = %.3f, E from %.2f to %.2f", x, energies[0], energies[len(energies)-1])),
	)
}

// SweepChart plots max |Δ| against the sweep temperatures.
func SweepChart(points []analysis.SweepPoint, width, height int) string {
	if len(points) == 0 {
		return ""
	}
	gaps := make([]float64, len(points))
	for i, p := range points {
		gaps[i] = p.MaxGap
	}
	return asciigraph.Plot(gaps,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("max |gap| for T from %.3f to %.3f", points[0].Temperature, points[len(points)-1].Temperature)),
	)
}

// Positions returns the distinct positions of a table in order.
func Positions(t *storage.Table) []float64 {
	var out []float64
	for _, r := range t.Rows {
		if len(out) == 0 || out[len(out)-1] != r[0] {
			out = append(out, r[0])
		}
	}
	return out
}

// NearestPosition returns the stored position closest to x.
func NearestPosition(t *storage.Table, x float64) float64 {
	best, dist := math.NaN(), math.Inf(1)
	for _, p := range Positions(t) {
		if d := math.Abs(p - x); d < dist {
			best, dist = p, d
		}
	}
	return best
}
