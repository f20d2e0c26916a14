package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/san-kum/usadel/internal/material"
	"github.com/san-kum/usadel/internal/structure"
)

// SweepPoint is the self-consistent solution at one temperature.
type SweepPoint struct {
	Temperature float64
	MaxGap      float64
	Converged   bool
	Iterations  int
	Failed      int

	// Positions and Gap hold the gap profile along the stack.
	Positions []float64
	Gap       []complex128
}

// TemperatureSweep converges the structure at each temperature in order,
// starting every run from the previous solution. It leaves the structure
// at the last temperature.
func TemperatureSweep(ctx context.Context, st *structure.Structure, temperatures []float64, opts structure.ConvergeOptions) ([]SweepPoint, error) {
	if len(temperatures) == 0 {
		return nil, fmt.Errorf("%w: no temperatures", structure.ErrConfiguration)
	}
	for _, t := range temperatures {
		if !(t >= 0) {
			return nil, fmt.Errorf("%w: temperature %g", structure.ErrConfiguration, t)
		}
	}

	points := make([]SweepPoint, 0, len(temperatures))
	for _, t := range temperatures {
		st.SetTemperature(t)
		res, err := st.Converge(ctx, opts)
		if err != nil {
			return points, err
		}

		p := SweepPoint{
			Temperature: t,
			MaxGap:      st.MaxGap(),
			Converged:   res.Converged,
			Iterations:  res.Iterations,
			Failed:      st.Failed(),
		}
		err = st.WriteGap(material.SinkFunc(func(x, re, im float64) error {
			p.Positions = append(p.Positions, x)
			p.Gap = append(p.Gap, complex(re, im))
			return nil
		}))
		if err != nil {
			return points, err
		}
		points = append(points, p)
	}
	return points, nil
}

// SweepToASCII plots max |Δ| against temperature on a character canvas.
func SweepToASCII(data []SweepPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	maxVal := 0.0
	for _, p := range data {
		maxVal = max(maxVal, p.MaxGap)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := i * width / len(data)
		if col >= width {
			col = width - 1
		}
		row := height - 1 - int(p.MaxGap/maxVal*float64(height-1))
		if row >= 0 && row < height {
			canvas[row][col] = '*'
		}
	}

	var b strings.Builder
	for _, row := range canvas {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}
