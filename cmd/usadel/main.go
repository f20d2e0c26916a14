package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/usadel/internal/analysis"
	"github.com/san-kum/usadel/internal/config"
	"github.com/san-kum/usadel/internal/experiment"
	"github.com/san-kum/usadel/internal/storage"
	"github.com/san-kum/usadel/internal/structure"
	"github.com/san-kum/usadel/internal/viz"
)

var (
	dataDir     string
	configFile  string
	presetName  string
	temperature float64
	iterations  int
	quiet       bool
	live        bool
	noSave      bool
	resume      string
	plotDir     string
	outFile     string
	positions   []float64
	// Critical temperature bracket
	lower      float64
	upper      float64
	bisections int
	// Sweep range
	from  float64
	to    float64
	steps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "usadel",
		Short:         "quasiclassical transport in superconducting heterostructures",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".usadel", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&presetName, "preset", "", "use preset configuration (category/name)")
	rootCmd.PersistentFlags().Float64Var(&temperature, "temperature", 0, "override the temperature")
	rootCmd.PersistentFlags().IntVar(&iterations, "iterations", 0, "override the iteration cap")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only print warnings and errors")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "converge a structure and store the result",
		Args:  cobra.NoArgs,
		RunE:  runStructure,
	}
	runCmd.Flags().BoolVar(&live, "live", false, "show a live convergence view")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVar(&resume, "resume", "", "start from the snapshot of a stored run")
	runCmd.Flags().StringVar(&plotDir, "plot", "", "write gap.png and dos.png into this directory")
	runCmd.Flags().Float64SliceVar(&positions, "at", []float64{0}, "positions of the plotted densities of states")

	criticalCmd := &cobra.Command{
		Use:   "critical",
		Short: "find the critical temperature by bisection",
		Args:  cobra.NoArgs,
		RunE:  criticalTemperature,
	}
	criticalCmd.Flags().Float64Var(&lower, "lower", 0.1, "lower end of the temperature bracket")
	criticalCmd.Flags().Float64Var(&upper, "upper", 1.5, "upper end of the temperature bracket")
	criticalCmd.Flags().IntVar(&bisections, "bisections", 10, "number of bisection steps")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "converge over a range of temperatures",
		Args:  cobra.NoArgs,
		RunE:  temperatureSweep,
	}
	sweepCmd.Flags().Float64Var(&from, "from", 0.1, "first temperature")
	sweepCmd.Flags().Float64Var(&to, "to", 1.2, "last temperature")
	sweepCmd.Flags().IntVar(&steps, "steps", 12, "number of temperatures")
	sweepCmd.Flags().StringVar(&plotDir, "plot", "", "write sweep.png and sweep.html into this directory")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().Float64SliceVar(&positions, "at", []float64{0}, "position of the plotted density of states")

	chartCmd := &cobra.Command{
		Use:   "chart [run_id]",
		Short: "write PNG charts of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  chartRun,
	}
	chartCmd.Flags().StringVar(&plotDir, "out", ".", "output directory")
	chartCmd.Flags().Float64SliceVar(&positions, "at", []float64{0}, "positions of the plotted densities of states")

	htmlCmd := &cobra.Command{
		Use:   "html [run_id]",
		Short: "write an interactive HTML report of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  htmlRun,
	}
	htmlCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default <run_id>.html)")
	htmlCmd.Flags().Float64SliceVar(&positions, "at", []float64{0}, "positions of the plotted densities of states")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}

	rootCmd.AddCommand(runCmd, criticalCmd, sweepCmd, listCmd, showCmd, chartCmd, htmlCmd, exportCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		viz.NewConsole(os.Stderr, false).Error(err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration: defaults, then a preset, then a
// config file, then flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if presetName != "" {
		category, name, ok := strings.Cut(presetName, "/")
		if !ok {
			return nil, fmt.Errorf("preset must be category/name, got %q", presetName)
		}
		cfg = config.GetPreset(category, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", presetName, config.ListPresets(category))
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("temperature") {
		cfg.Temperature = temperature
	}
	if cmd.Flags().Changed("iterations") {
		cfg.Converge.Iterations = iterations
	}
	return cfg, cfg.Validate()
}

func setup(cmd *cobra.Command) (*experiment.Experiment, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	registry := experiment.NewRegistry()
	exp := experiment.New(cfg)
	if err := exp.Setup(registry, registry.DefaultMetrics()); err != nil {
		return nil, err
	}
	return exp, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runStructure(cmd *cobra.Command, args []string) error {
	exp, err := setup(cmd)
	if err != nil {
		return err
	}
	cfg := exp.Config()
	out := viz.NewConsole(os.Stdout, quiet || live)
	st := storage.New(dataDir)

	if resume != "" {
		snap, err := st.LoadSnapshot(resume)
		if err != nil {
			return fmt.Errorf("resume %s: %w", resume, err)
		}
		if err := exp.Structure().Load(*snap); err != nil {
			return fmt.Errorf("resume %s: %w", resume, err)
		}
	}

	out.Header(fmt.Sprintf("%s  T = %g  %d layers  %d energies", cfg.Name, cfg.Temperature, len(cfg.Layers), len(exp.Energies())))

	ctx, cancel := signalContext()
	defer cancel()

	var result *experiment.Result
	if live {
		ctx, stop := context.WithCancel(ctx)
		defer stop()
		err = viz.RunLive(cfg.Name, cfg.Converge.Iterations, stop, func(progress func(viz.ProgressMsg)) error {
			exp.Observe(func(it int, s *structure.Structure) {
				progress(viz.ProgressMsg{Iteration: it, Difference: s.Difference(), Gap: s.MaxGap(), Failed: s.Failed()})
			})
			var err error
			result, err = exp.Run(ctx)
			return err
		})
	} else {
		exp.Observe(func(it int, s *structure.Structure) {
			out.Status(it, s.Difference(), s.MaxGap(), s.Failed())
		})
		result, err = exp.Run(ctx)
	}
	if err != nil {
		return err
	}

	out = viz.NewConsole(os.Stdout, quiet)
	out.Summary(result.Converged, result.Iterations, result.Difference, result.Metrics)
	if n := len(result.Errors); n > 0 {
		out.Warn("%d iterations had failed energies: %v", n, result.Errors[len(result.Errors)-1])
	}

	s := exp.Structure()
	dos := storage.NewDOSTable()
	if err := s.WriteDensityOfStates(dos); err != nil {
		return err
	}
	gap := storage.NewGapTable()
	if err := s.WriteGap(gap); err != nil {
		return err
	}
	out.Print(viz.GapChart(gap, 60, 8))

	if plotDir != "" {
		if err := os.MkdirAll(plotDir, 0755); err != nil {
			return err
		}
		if err := viz.SaveGapPNG(filepath.Join(plotDir, "gap.png"), gap); err != nil {
			return err
		}
		if err := viz.SaveDOSPNG(filepath.Join(plotDir, "dos.png"), dos, positions); err != nil {
			return err
		}
		out.Info("charts written to %s", plotDir)
	}

	if noSave {
		return nil
	}
	if err := st.Init(); err != nil {
		return err
	}
	snap := s.Save()
	runID, err := st.Save(storage.RunMetadata{
		Name:        cfg.Name,
		Temperature: cfg.Temperature,
		Layers:      layerNames(cfg),
		Converged:   result.Converged,
		Iterations:  result.Iterations,
		Difference:  result.Difference,
		Seconds:     result.Duration.Seconds(),
		Metrics:     result.Metrics,
		Config:      cfg,
	}, dos, gap, &snap)
	if err != nil {
		return err
	}
	out.Info("run id: %s", runID)
	return nil
}

func layerNames(cfg *config.Config) []string {
	names := make([]string, len(cfg.Layers))
	for i := range cfg.Layers {
		names[i] = cfg.Options(i).Name
	}
	return names
}

func criticalTemperature(cmd *cobra.Command, args []string) error {
	exp, err := setup(cmd)
	if err != nil {
		return err
	}
	out := viz.NewConsole(os.Stdout, quiet)
	out.Header(fmt.Sprintf("%s  critical temperature in [%g, %g]", exp.Config().Name, lower, upper))

	opts := analysis.DefaultCriticalOptions()
	opts.Lower, opts.Upper, opts.Bisections = lower, upper, bisections
	opts.Converge = exp.ConvergeOptions()

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	res, err := analysis.CriticalTemperature(ctx, exp.Structure(), opts)
	if err != nil {
		return err
	}

	rows := make([][]string, len(res.Steps))
	for i, s := range res.Steps {
		state := "normal"
		if s.Superconducting {
			state = "superconducting"
		}
		rows[i] = []string{strconv.Itoa(i + 1), fmt.Sprintf("%.6f", s.Temperature), fmt.Sprintf("%.3e", s.Gap), state}
	}
	if !quiet {
		if err := out.Table([]string{"STEP", "T", "GAP", "STATE"}, rows); err != nil {
			return err
		}
	}
	fmt.Printf("Tc = %.6f  (bracket [%.6f, %.6f], %v)\n", res.Temperature, res.Lower, res.Upper, time.Since(start).Round(time.Millisecond))
	return nil
}

func temperatureSweep(cmd *cobra.Command, args []string) error {
	if steps < 2 {
		return fmt.Errorf("need at least 2 steps, got %d", steps)
	}
	exp, err := setup(cmd)
	if err != nil {
		return err
	}
	out := viz.NewConsole(os.Stdout, quiet)
	out.Header(fmt.Sprintf("%s  sweep T from %g to %g", exp.Config().Name, from, to))

	temps := make([]float64, steps)
	for i := range temps {
		temps[i] = from + (to-from)*float64(i)/float64(steps-1)
	}

	ctx, cancel := signalContext()
	defer cancel()

	points, err := analysis.TemperatureSweep(ctx, exp.Structure(), temps, exp.ConvergeOptions())
	if err != nil {
		return err
	}

	rows := make([][]string, len(points))
	for i, p := range points {
		rows[i] = []string{
			fmt.Sprintf("%.4f", p.Temperature),
			fmt.Sprintf("%.6f", p.MaxGap),
			strconv.Itoa(p.Iterations),
			strconv.FormatBool(p.Converged),
			strconv.Itoa(p.Failed),
		}
	}
	if err := out.Table([]string{"T", "MAX GAP", "ITER", "CONVERGED", "FAILED"}, rows); err != nil {
		return err
	}
	out.Print(viz.SweepChart(points, 60, 10))

	if plotDir != "" {
		if err := os.MkdirAll(plotDir, 0755); err != nil {
			return err
		}
		if err := viz.SaveSweepPNG(filepath.Join(plotDir, "sweep.png"), points); err != nil {
			return err
		}
		f, err := os.Create(filepath.Join(plotDir, "sweep.html"))
		if err != nil {
			return err
		}
		defer f.Close()
		if err := viz.RenderSweepHTML(f, points); err != nil {
			return err
		}
		out.Info("charts written to %s", plotDir)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	rows := make([][]string, len(runs))
	for i, run := range runs {
		rows[i] = []string{
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(run.Temperature, 'g', 4, 64),
			strings.Join(run.Layers, "/"),
			strconv.FormatBool(run.Converged),
			strconv.Itoa(run.Iterations),
			fmt.Sprintf("%.2fs", run.Seconds),
		}
	}
	return viz.NewConsole(os.Stdout, false).Table([]string{"ID", "TIME", "T", "LAYERS", "CONVERGED", "ITER", "DURATION"}, rows)
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	out := viz.NewConsole(os.Stdout, false)
	out.Header(fmt.Sprintf("%s  T = %g  %s", meta.ID, meta.Temperature, strings.Join(meta.Layers, "/")))
	out.Summary(meta.Converged, meta.Iterations, meta.Difference, meta.Metrics)

	if gap, err := st.LoadTable(meta.ID, storage.GapFile); err == nil {
		out.Print(viz.GapChart(gap, 60, 8))
	}
	if dos, err := st.LoadTable(meta.ID, storage.DOSFile); err == nil {
		for _, x := range positions {
			out.Print(viz.DOSChart(dos, x, 60, 8))
		}
	}
	return nil
}

func loadTables(st *storage.Store, runID string) (gap, dos *storage.Table, err error) {
	if gap, err = st.LoadTable(runID, storage.GapFile); err != nil {
		return nil, nil, err
	}
	if dos, err = st.LoadTable(runID, storage.DOSFile); err != nil {
		return nil, nil, err
	}
	return gap, dos, nil
}

func chartRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	gap, dos, err := loadTables(st, args[0])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(plotDir, 0755); err != nil {
		return err
	}

	gapPath := filepath.Join(plotDir, args[0]+"_gap.png")
	if err := viz.SaveGapPNG(gapPath, gap); err != nil {
		return err
	}
	dosPath := filepath.Join(plotDir, args[0]+"_dos.png")
	if err := viz.SaveDOSPNG(dosPath, dos, positions); err != nil {
		return err
	}
	fmt.Printf("wrote %s and %s\n", gapPath, dosPath)
	return nil
}

func htmlRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	gap, dos, err := loadTables(st, args[0])
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = args[0] + ".html"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := viz.RenderHTML(f, args[0], gap, dos, positions); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}
	if outFile == "" {
		return storage.WriteJSON(os.Stdout, data)
	}
	if err := storage.ExportJSON(outFile, data); err != nil {
		return err
	}
	fmt.Printf("exported %d dos and %d gap records to %s\n", len(data.DOS), len(data.Gap), outFile)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	var rows [][]string
	for _, category := range config.ListCategories() {
		for _, name := range config.ListPresets(category) {
			cfg := config.GetPreset(category, name)
			kinds := make([]string, len(cfg.Layers))
			for i, l := range cfg.Layers {
				kinds[i] = l.Kind
			}
			rows = append(rows, []string{category + "/" + name, strconv.FormatFloat(cfg.Temperature, 'g', 4, 64), strings.Join(kinds, " | ")})
		}
	}
	return viz.NewConsole(os.Stdout, false).Table([]string{"PRESET", "T", "LAYERS"}, rows)
}

func initConfig(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(args[0]); err == nil {
		return fmt.Errorf("%s already exists", args[0])
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s (cutoff %.1f, %d energies)\n", args[0], cfg.Energies.Cutoff, cfg.Energies.Points)
	return nil
}
