package viz

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/san-kum/usadel/internal/analysis"
	"github.com/san-kum/usadel/internal/storage"
)

func newLine(title, x, y string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "1100px",
			Height: "450px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "5%"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: x}),
		charts.WithYAxisOpts(opts.YAxis{Name: y, Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	return line
}

func labels(xs []float64) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = strconv.FormatFloat(x, 'g', 4, 64)
	}
	return out
}

func lineData(ys []float64) []opts.LineData {
	out := make([]opts.LineData, len(ys))
	for i, y := range ys {
		out[i] = opts.LineData{Value: y}
	}
	return out
}

// RenderHTML writes a page with the gap profile and the density of states
// at the requested positions. Either table may be nil.
func RenderHTML(w io.Writer, title string, gap, dos *storage.Table, positions []float64) error {
	page := components.NewPage()
	page.PageTitle = title

	if gap != nil && gap.Len() > 0 {
		line := newLine("Pair potential", "position", "gap")
		line.SetXAxis(labels(gap.Column(0))).
			AddSeries("Re", lineData(gap.Column(1))).
			AddSeries("Im", lineData(gap.Column(2)))
		page.AddCharts(line)
	}

	if dos != nil && dos.Len() > 0 && len(positions) > 0 {
		line := newLine("Density of states", "energy", "dos")
		for i, want := range positions {
			slice := dos.Slice(NearestPosition(dos, want))
			if i == 0 {
				line.SetXAxis(labels(slice.Column(1)))
			}
			line.AddSeries(fmt.Sprintf("x = %.3g", slice.Rows[0][0]), lineData(slice.Column(2)))
		}
		page.AddCharts(line)
	}

	return page.Render(w)
}

// RenderSweepHTML writes a page with max |Δ| against temperature.
func RenderSweepHTML(w io.Writer, points []analysis.SweepPoint) error {
	page := components.NewPage()
	page.PageTitle = "Temperature sweep"

	temps := make([]float64, len(points))
	gaps := make([]float64, len(points))
	for i, p := range points {
		temps[i] = p.Temperature
		gaps[i] = p.MaxGap
	}
	line := newLine("Temperature sweep", "T / Tc", "max gap")
	line.SetXAxis(labels(temps)).AddSeries("max gap", lineData(gaps))
	page.AddCharts(line)
	return page.Render(w)
}
