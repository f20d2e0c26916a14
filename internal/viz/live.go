package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

const historyCapacity = 200

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

// ProgressMsg reports one finished iteration.
type ProgressMsg struct {
	Iteration  int
	Difference float64
	Gap        float64
	Failed     int
}

// DoneMsg ends the live view.
type DoneMsg struct {
	Err error
}

type TickMsg time.Time

// Live shows convergence progress while a run executes in the background.
type Live struct {
	title      string
	cap        int
	cancel     func()
	progress   ProgressMsg
	difference []float64
	gap        []float64
	frame      int
	start      time.Time
	done       bool
	err        error
}

// NewLive returns a live view for a run capped at iterations. cancel is
// called when the user quits early.
func NewLive(title string, iterations int, cancel func()) Live {
	return Live{
		title:      title,
		cap:        iterations,
		cancel:     cancel,
		difference: make([]float64, 0, historyCapacity),
		gap:        make([]float64, 0, historyCapacity),
		start:      time.Now(),
	}
}

func (m Live) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/10, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case ProgressMsg:
		m.progress = msg
		m.difference = appendCapped(m.difference, math.Log10(math.Min(math.Max(msg.Difference, 1e-16), 1e16)))
		m.gap = appendCapped(m.gap, msg.Gap)
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	case TickMsg:
		m.frame++
		return m, tick()
	}
	return m, nil
}

func appendCapped(xs []float64, v float64) []float64 {
	if len(xs) == historyCapacity {
		xs = append(xs[:0], xs[1:]...)
	}
	return append(xs, v)
}

func (m Live) View() string {
	var s strings.Builder
	status := AnimatedSpinner(m.frame) + " running"
	if m.done {
		status = StatusConverged.Render("done")
		if m.err != nil {
			status = StatusError.Render("failed: " + m.err.Error())
		}
	}
	s.WriteString(GradientTitle.Render(strings.ToUpper(m.title)) + "  " + status + "\n\n")

	fraction := 0.0
	if m.cap > 0 {
		fraction = float64(m.progress.Iteration) / float64(m.cap)
	}
	s.WriteString(ProgressBar(fraction, 40) + fmt.Sprintf(" %d/%d\n\n", m.progress.Iteration, m.cap))

	if len(m.difference) > 1 {
		chart := asciigraph.Plot(m.difference, asciigraph.Height(6), asciigraph.Width(50), asciigraph.Caption("log10 difference"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(labelStyle.Render("Difference") + valueStyle.Render(fmt.Sprintf("%.3e", m.progress.Difference)) + "\n")
	s.WriteString(labelStyle.Render("Max gap") + valueStyle.Render(fmt.Sprintf("%.6f", m.progress.Gap)) + "  " + SparklineChart(m.gap, 30) + "\n")
	if m.progress.Failed > 0 {
		s.WriteString(labelStyle.Render("Failed") + StatusWarning.Render(fmt.Sprintf("%d energies", m.progress.Failed)) + "\n")
	}
	s.WriteString(labelStyle.Render("Elapsed") + valueStyle.Render(time.Since(m.start).Round(time.Second).String()) + "\n")
	s.WriteString("\n" + KeyHint.Render("q: stop"))
	return GlassPanel.Render(s.String())
}

// Err returns the error the run finished with.
func (m Live) Err() error { return m.err }

// RunLive runs work in the background and shows its progress. work reports
// progress through the callback it is given. RunLive returns once work has
// returned, with work's error.
func RunLive(title string, iterations int, cancel func(), work func(progress func(ProgressMsg)) error) error {
	p := tea.NewProgram(NewLive(title, iterations, cancel))
	errc := make(chan error, 1)
	go func() {
		err := work(func(msg ProgressMsg) { p.Send(msg) })
		errc <- err
		p.Send(DoneMsg{Err: err})
	}()

	if _, err := p.Run(); err != nil {
		if cancel != nil {
			cancel()
		}
		<-errc
		return err
	}
	return <-errc
}
