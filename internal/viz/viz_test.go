package viz

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/usadel/internal/analysis"
	"github.com/san-kum/usadel/internal/storage"
)

func sampleTables() (gap, dos *storage.Table) {
	gap = storage.NewGapTable()
	dos = storage.NewDOSTable()
	for _, x := range []float64{0, 0.5, 1} {
		_ = gap.Record(x, 1-0.5*x, 0.1*x)
		for _, e := range []float64{0, 0.5, 1, 1.5, 2} {
			_ = dos.Record(x, e, e*(1+x))
		}
	}
	return gap, dos
}

func samplePoints() []analysis.SweepPoint {
	return []analysis.SweepPoint{
		{Temperature: 0.2, MaxGap: 1.76},
		{Temperature: 0.6, MaxGap: 1.5},
		{Temperature: 1.0, MaxGap: 0.1},
		{Temperature: 1.2, MaxGap: 0},
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)
	c.Header("run")
	c.Status(3, 1e-3, 0.9, 2)
	c.Summary(true, 3, 1e-5, map[string]float64{"max_gap": 0.9, "difference": 1e-5})

	out := buf.String()
	assert.Contains(t, out, "run")
	assert.Contains(t, out, "2 failed")
	assert.Contains(t, out, "converged")
	assert.Contains(t, out, "max_gap")
	assert.Less(t, strings.Index(out, "difference"), strings.Index(out, "max_gap"))
}

func TestConsoleQuiet(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true)
	c.Info("hidden %d", 1)
	c.Status(1, 1, 1, 0)
	assert.Empty(t, buf.String())

	c.Warn("shown %d", 2)
	c.Error(errors.New("boom"))
	assert.Contains(t, buf.String(), "shown 2")
	assert.Contains(t, buf.String(), "boom")
}

func TestConsoleTable(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)
	require.NoError(t, c.Table([]string{"NAME", "VALUE"}, [][]string{{"a", "1"}, {"long-name", "2"}}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Index(lines[0], "VALUE"), strings.Index(lines[2], "2"))
}

func TestCharts(t *testing.T) {
	gap, dos := sampleTables()
	assert.NotEmpty(t, GapChart(gap, 30, 5))
	assert.Contains(t, DOSChart(dos, 0.4, 30, 5), "x = 0.500")
	assert.NotEmpty(t, SweepChart(samplePoints(), 30, 5))

	assert.Empty(t, GapChart(storage.NewGapTable(), 30, 5))
	assert.Empty(t, DOSChart(nil, 0, 30, 5))
	assert.Empty(t, SweepChart(nil, 30, 5))
}

func TestPositions(t *testing.T) {
	_, dos := sampleTables()
	assert.Equal(t, []float64{0, 0.5, 1}, Positions(dos))
	assert.Equal(t, 1.0, NearestPosition(dos, 5))
	assert.Equal(t, 0.0, NearestPosition(dos, -1))
}

func TestSparklineAndProgress(t *testing.T) {
	assert.Equal(t, "───", SparklineChart(nil, 3))
	assert.NotEmpty(t, SparklineChart([]float64{1, 2, 3, 4, 5}, 3))
	assert.Contains(t, ProgressBar(0.5, 10), "█")
	assert.Contains(t, ProgressBar(-1, 4), "░░░░")
}

func TestSavePNG(t *testing.T) {
	gap, dos := sampleTables()
	dir := t.TempDir()

	files := map[string]func(string) error{
		"gap.png":   func(p string) error { return SaveGapPNG(p, gap) },
		"dos.png":   func(p string) error { return SaveDOSPNG(p, dos, []float64{0, 1}) },
		"sweep.png": func(p string) error { return SaveSweepPNG(p, samplePoints()) },
	}
	for name, save := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, save(path), name)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), name)
	}
}

func TestRenderHTML(t *testing.T) {
	gap, dos := sampleTables()

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, "sn", gap, dos, []float64{0, 1}))
	assert.Contains(t, buf.String(), "Pair potential")
	assert.Contains(t, buf.String(), "Density of states")

	buf.Reset()
	require.NoError(t, RenderSweepHTML(&buf, samplePoints()))
	assert.Contains(t, buf.String(), "Temperature sweep")
}

func TestLiveModel(t *testing.T) {
	canceled := false
	var m tea.Model = NewLive("sn", 10, func() { canceled = true })

	m, _ = m.Update(ProgressMsg{Iteration: 4, Difference: 1e-3, Gap: 0.8, Failed: 1})
	m, _ = m.Update(ProgressMsg{Iteration: 5, Difference: 1e-4, Gap: 0.9})
	view := m.View()
	assert.Contains(t, view, "5/10")
	assert.Contains(t, view, "Difference")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.NotNil(t, cmd)
	assert.True(t, canceled)

	m, cmd = m.Update(DoneMsg{Err: errors.New("stopped")})
	assert.NotNil(t, cmd)
	assert.EqualError(t, m.(Live).Err(), "stopped")
	assert.Contains(t, m.View(), "failed: stopped")
}
