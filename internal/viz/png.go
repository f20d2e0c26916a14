package viz

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/usadel/internal/analysis"
	"github.com/san-kum/usadel/internal/storage"
)

var palette = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
}

func addLine(p *plot.Plot, name string, pts plotter.XYs, i int) error {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	line.Width = vg.Points(1)
	line.Color = palette[i%len(palette)]
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

func newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p
}

// SaveGapPNG draws Re Δ and Im Δ against position.
func SaveGapPNG(path string, gap *storage.Table) error {
	p := newPlot("Pair potential", "position", "gap")

	re := make(plotter.XYs, gap.Len())
	im := make(plotter.XYs, gap.Len())
	for i, r := range gap.Rows {
		re[i] = plotter.XY{X: r[0], Y: r[1]}
		im[i] = plotter.XY{X: r[0], Y: r[2]}
	}
	if err := addLine(p, "Re", re, 0); err != nil {
		return err
	}
	if err := addLine(p, "Im", im, 1); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

// SaveDOSPNG draws one density-of-states curve per requested position,
// each snapped to the nearest stored position.
func SaveDOSPNG(path string, dos *storage.Table, positions []float64) error {
	p := newPlot("Density of states", "energy", "dos")

	for i, want := range positions {
		x := NearestPosition(dos, want)
		slice := dos.Slice(x)
		pts := make(plotter.XYs, slice.Len())
		for k, r := range slice.Rows {
			pts[k] = plotter.XY{X: r[1], Y: r[2]}
		}
		if err := addLine(p, fmt.Sprintf("x = %.3g", x), pts, i); err != nil {
			return err
		}
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

// SaveSweepPNG draws max |Δ| against temperature.
func SaveSweepPNG(path string, points []analysis.SweepPoint) error {
	p := newPlot("Temperature sweep", "T / Tc", "max gap")

	pts := make(plotter.XYs, len(points))
	for i, sp := range points {
		pts[i] = plotter.XY{X: sp.Temperature, Y: sp.MaxGap}
	}
	if err := addLine(p, "max gap", pts, 0); err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
