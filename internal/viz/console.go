package viz

import (
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"
)

// Console writes styled progress and summaries. A quiet console only
// prints warnings and errors.
type Console struct {
	w     io.Writer
	quiet bool
}

func NewConsole(w io.Writer, quiet bool) *Console {
	return &Console{w: w, quiet: quiet}
}

func (c *Console) Header(title string) {
	if c.quiet {
		return
	}
	fmt.Fprintln(c.w, HeaderStyle.Render(title))
}

func (c *Console) Info(format string, args ...any) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.w, format+"\n", args...)
}

func (c *Console) Warn(format string, args ...any) {
	fmt.Fprintln(c.w, StatusWarning.Render("warning:")+" "+fmt.Sprintf(format, args...))
}

func (c *Console) Error(err error) {
	fmt.Fprintln(c.w, StatusError.Render("error:")+" "+err.Error())
}

// Status prints one convergence line.
func (c *Console) Status(iteration int, difference, gap float64, failed int) {
	if c.quiet {
		return
	}
	line := MetricLabel.Render(fmt.Sprintf("%4d", iteration)) + "  " +
		MetricLabel.Render("diff ") + MetricValue.Render(fmt.Sprintf("%-10.3e", difference)) + "  " +
		MetricLabel.Render("gap ") + MetricValue.Render(fmt.Sprintf("%.6f", gap))
	if failed > 0 {
		line += "  " + StatusWarning.Render(fmt.Sprintf("%d failed", failed))
	}
	fmt.Fprintln(c.w, line)
}

// Summary prints the outcome of a run and its metrics in name order.
func (c *Console) Summary(converged bool, iterations int, difference float64, metrics map[string]float64) {
	if c.quiet {
		return
	}
	fmt.Fprintln(c.w, Separator(40))
	if converged {
		fmt.Fprintln(c.w, StatusConverged.Render("converged")+Subtle.Render(fmt.Sprintf(" after %d iterations", iterations)))
	} else {
		fmt.Fprintln(c.w, StatusWarning.Render("not converged")+Subtle.Render(fmt.Sprintf(" after %d iterations (difference %.3e)", iterations, difference)))
	}

	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := metrics[name]
		s := fmt.Sprintf("%.6f", v)
		if math.Abs(v) < 1e-3 && v != 0 {
			s = fmt.Sprintf("%.3e", v)
		}
		fmt.Fprintf(c.w, "  %s %s\n", MetricLabel.Render(fmt.Sprintf("%-16s", name)), MetricValue.Render(s))
	}
}

// Table prints rows under a header, tab aligned.
func (c *Console) Table(header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(c.w, 0, 0, 2, ' ', 0)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func (c *Console) Print(s string) {
	if c.quiet {
		return
	}
	fmt.Fprint(c.w, s)
}
