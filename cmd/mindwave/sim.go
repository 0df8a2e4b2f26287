package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mindwave/internal/analysis"
	"github.com/san-kum/mindwave/internal/automation"
	"github.com/san-kum/mindwave/internal/config"
	"github.com/san-kum/mindwave/internal/dynamo"
	"github.com/san-kum/mindwave/internal/experiment"
	"github.com/san-kum/mindwave/internal/export"
	"github.com/san-kum/mindwave/internal/frame"
	"github.com/san-kum/mindwave/internal/games"
	"github.com/san-kum/mindwave/internal/notify"
	"github.com/san-kum/mindwave/internal/optim"
	"github.com/san-kum/mindwave/internal/runs"
	"github.com/san-kum/mindwave/internal/viz"
)

var (
	frames   int
	dt       float64
	preset   string
	params   map[string]string
	preMood  int
	label    string
	svgOut   string
	xLabel   string
	yLabel   string
	sweeps   []string
	metric   string
	maximize bool
	workers  int
	save     bool

	snapFrames int
	trials     int
)

func simCommands() []*cobra.Command {
	playCmd := &cobra.Command{
		Use:   "play [game]",
		Short: "play a relaxation game in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			game := ""
			if len(args) > 0 {
				game = args[0]
			}
			return playGames(cmd.Context(), game)
		},
	}
	playCmd.Flags().IntVar(&preMood, "mood", 0, "mood before playing (1-10), enables session tracking")

	runCmd := &cobra.Command{
		Use:   "run [game]",
		Short: "run a game headless and save the trace",
		Args:  cobra.ExactArgs(1),
		RunE:  runGame,
	}
	runCmd.Flags().IntVar(&frames, "frames", 0, "number of frames")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "seconds per frame")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset parameters")
	runCmd.Flags().StringToStringVar(&params, "set", nil, "parameter overrides, e.g. --set amplitude=20")

	listCmd := &cobra.Command{
		Use:   "runs",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot one observable of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&label, "label", "", "observable to plot (default: the game's primary one)")
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "also write the plot as svg")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and phase analysis of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&xLabel, "x", "", "phase plot x observable")
	analyzeCmd.Flags().StringVar(&yLabel, "y", "", "phase plot y observable")
	analyzeCmd.Flags().StringVar(&svgOut, "svg", "", "also write the phase portrait as svg")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "write run data as json to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := runs.New(cfg.Run.Dir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			trace, err := st.LoadTrace(args[0])
			if err != nil {
				return err
			}
			return runs.WriteJSON(os.Stdout, *meta, trace)
		},
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [game] [out.svg]",
		Short: "advance a game and draw its scene as svg",
		Args:  cobra.ExactArgs(2),
		RunE:  snapshot,
	}
	snapshotCmd.Flags().IntVar(&snapFrames, "frames", 120, "frames to advance before drawing")

	presetsCmd := &cobra.Command{
		Use:   "presets [game]",
		Short: "list available presets for a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for game: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %-8s %s\n", p, formatParams(config.GetPreset(args[0], p)))
			}
			return nil
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [game]",
		Short: "grid search game parameters against a run metric",
		Args:  cobra.ExactArgs(1),
		RunE:  sweep,
	}
	sweepCmd.Flags().StringArrayVar(&sweeps, "param", nil, "name=lo:hi:n or name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&metric, "metric", "", "metric to optimize (default: frame metric of the primary observable)")
	sweepCmd.Flags().BoolVar(&maximize, "maximize", false, "keep the largest value instead of the smallest")
	sweepCmd.Flags().IntVar(&workers, "workers", 4, "parallel runs")
	sweepCmd.Flags().IntVar(&frames, "frames", 0, "frames per run")
	sweepCmd.Flags().BoolVar(&save, "save", false, "save the best run")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run a scripted sequence of games",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [game]",
		Short: "run a game over many seeds and summarize its metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnsemble,
	}
	ensembleCmd.Flags().IntVar(&trials, "trials", 10, "number of seeds")
	ensembleCmd.Flags().IntVar(&frames, "frames", 0, "frames per run")
	ensembleCmd.Flags().StringVar(&preset, "preset", "", "use preset parameters")

	return []*cobra.Command{playCmd, runCmd, listCmd, plotCmd, analyzeCmd, exportCmd, snapshotCmd, presetsCmd, sweepCmd, scenarioCmd, ensembleCmd}
}

func formatParams(p map[string]float64) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, p[k])
	}
	return strings.Join(parts, " ")
}

func vizOptions(registry *experiment.Registry) func(string) viz.Options {
	return func(name string) viz.Options {
		return viz.Options{
			Clock:    frame.RealClock{},
			Interval: cfg.FrameInterval(),
			Chart:    registry.Primary(name),
			Logger:   logger,
		}
	}
}

// playGames runs the terminal games. With a pre-game mood and a user the
// session is tracked and a post-game mood is asked for on exit.
func playGames(ctx context.Context, game string) error {
	registry := experiment.NewRegistry()
	factory := func(name string) (dynamo.Simulation, error) {
		return registry.New(name, cfg)
	}

	var tracker *games.Tracker
	if preMood != 0 {
		userID, err := requireUser()
		if err != nil {
			return err
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		svc := games.NewService(st, logger)
		if !games.ValidMood(preMood) {
			return fmt.Errorf("%w: %d", games.ErrInvalidMood, preMood)
		}
		tracker = games.NewTracker(svc, userID, notify.NewConsole(os.Stdout))
	}
	track := func(name string) {
		if tracker == nil {
			return
		}
		gt, err := games.ParseGameType(name)
		if err != nil {
			logger.Warn("untracked game", "game", name)
			return
		}
		if err := tracker.Select(ctx, gt, preMood); err != nil {
			logger.Error("tracking game", "game", gt, "err", err)
		}
	}

	var model tea.Model
	var closeModel func()
	if game != "" {
		sim, err := factory(game)
		if err != nil {
			return err
		}
		track(game)
		live := viz.NewModel(sim, vizOptions(registry)(game))
		model, closeModel = live, live.Close
	} else {
		app := viz.NewApp(registry.Games(), factory, vizOptions(registry))
		app.OnSelect = track
		model = *app
	}

	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if closeModel != nil {
		closeModel()
	}
	if a, ok := final.(viz.App); ok {
		a.Close()
	}
	if err != nil {
		return err
	}

	if tracker == nil || !tracker.End() {
		return nil
	}
	post, ok := askMood(fmt.Sprintf("how do you feel after %s? (1-10, blank to skip): ", tracker.Game()))
	if !ok {
		return nil
	}
	_, _, err = tracker.Save(ctx, post)
	return err
}

func askMood(prompt string) (int, bool) {
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(prompt)
		if !in.Scan() {
			return 0, false
		}
		text := strings.TrimSpace(in.Text())
		if text == "" {
			return 0, false
		}
		n, err := strconv.Atoi(text)
		if err == nil && games.ValidMood(n) {
			return n, true
		}
		fmt.Println(viz.ErrorText().Render("enter a whole number from 1 to 10"))
	}
}

func runParams(game string) (map[string]float64, error) {
	out := map[string]float64{}
	if preset != "" {
		p := config.GetPreset(game, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(game))
		}
		for k, v := range p {
			out[k] = v
		}
	}
	for k, s := range params {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

func runGame(cmd *cobra.Command, args []string) error {
	game := args[0]
	if !cmd.Flags().Changed("frames") {
		frames = cfg.Run.Frames
	}
	if !cmd.Flags().Changed("dt") {
		dt = cfg.Run.Dt
	}
	p, err := runParams(game)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	sim, err := registry.New(game, cfg)
	if err != nil {
		return err
	}
	exp := experiment.New(experiment.Config{Game: game, Frames: frames, Dt: dt, Params: p})
	if err := exp.Setup(sim, registry.DefaultMetrics(game)); err != nil {
		return err
	}

	fmt.Printf("running %s...\n", game)
	start := time.Now()
	trace, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	st := runs.New(cfg.Run.Dir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(runs.RunMetadata{Game: game, Seed: cfg.Seed, Dt: dt, Params: p}, trace)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", len(trace.Samples))
	printMetrics(trace.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	list, err := runs.New(cfg.Run.Dir).List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("no runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGAME\tFRAMES\tDT\tPARAMS\tTIME")
	for _, r := range list {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.4f\t%s\t%s\n", r.ID, r.Game, r.Frames, r.Dt, formatParams(r.Params), r.Timestamp.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func loadSeries(runID, want string) (*runs.RunMetadata, []float64, string, error) {
	st := runs.New(cfg.Run.Dir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, "", err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return nil, nil, "", err
	}
	if want == "" {
		want = experiment.NewRegistry().Primary(meta.Game)
	}
	series := trace.Series(want)
	if len(series) == 0 {
		return nil, nil, "", fmt.Errorf("run %s has no observable %q (have %v)", runID, want, trace.Labels)
	}
	return meta, series, want, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, series, name, err := loadSeries(args[0], label)
	if err != nil {
		return err
	}

	graph := asciigraph.Plot(downsample(series, 120),
		asciigraph.Height(15),
		asciigraph.Caption(fmt.Sprintf("%s %s", meta.Game, name)),
		asciigraph.SeriesColors(asciigraph.Cyan),
	)
	fmt.Println(graph)

	if svgOut != "" {
		if err := os.WriteFile(svgOut, []byte(export.SeriesToSVG(series, 800, 300, "#0d9488")), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
	}
	return nil
}

func downsample(data []float64, n int) []float64 {
	if len(data) <= n {
		return data
	}
	out := make([]float64, n)
	step := float64(len(data)) / float64(n)
	for i := range out {
		out[i] = data[int(float64(i)*step)]
	}
	return out
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, series, name, err := loadSeries(args[0], label)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%s)\n", meta.ID, meta.Game)
	fmt.Printf("dominant frequency of %s: %.4f Hz\n", name, analysis.DominantFrequency(series, meta.Dt))

	trace, err := runs.New(cfg.Run.Dir).LoadTrace(args[0])
	if err != nil {
		return err
	}
	xs, ys := xLabel, yLabel
	if xs == "" && len(trace.Labels) > 0 {
		xs = trace.Labels[0]
	}
	if ys == "" && len(trace.Labels) > 1 {
		ys = trace.Labels[1]
	}
	points := analysis.PhasePortrait(trace.Series(xs), trace.Series(ys))
	if len(points) == 0 {
		return nil
	}
	fmt.Printf("\nphase portrait (%s vs %s):\n", ys, xs)
	fmt.Println(analysis.PhasePortraitToASCII(points, 60, 20))

	if svgOut != "" {
		if err := os.WriteFile(svgOut, []byte(export.TrajectoryToSVG(points, 600, 600, "#4f46e5")), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
	}
	return nil
}

func snapshot(cmd *cobra.Command, args []string) error {
	sim, err := experiment.NewRegistry().New(args[0], cfg)
	if err != nil {
		return err
	}

	clock := frame.NewManualClock(time.Unix(0, 0))
	pump := frame.NewPump(1)
	for i := 0; i < snapFrames; i++ {
		sim.Advance(pump.Tick(clock.Now()))
		clock.Advance(cfg.FrameInterval())
	}

	scene := dynamo.NewScene(dynamo.DefaultSize())
	sim.Draw(scene)
	if err := os.WriteFile(args[1], []byte(export.SceneToSVG(scene)), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[1])
	return nil
}

// parseSweep reads name=lo:hi:n or name=v1,v2,...
func parseSweep(s string) (string, []float64, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok || name == "" || spec == "" {
		return "", nil, fmt.Errorf("bad --param %q", s)
	}
	if parts := strings.Split(spec, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || n < 1 {
			return "", nil, fmt.Errorf("bad range in --param %q", s)
		}
		return name, optim.Linspace(lo, hi, n), nil
	}
	var values []float64
	for _, f := range strings.Split(spec, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad value in --param %q: %w", s, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

func sweep(cmd *cobra.Command, args []string) error {
	game := args[0]
	if len(sweeps) == 0 {
		return fmt.Errorf("at least one --param is required")
	}
	if !cmd.Flags().Changed("frames") {
		frames = cfg.Run.Frames
	}
	registry := experiment.NewRegistry()
	if metric == "" {
		metric = "peak_" + registry.Primary(game)
		if game == "pendulum" {
			metric = "energy_decay"
		}
	}

	var names []string
	var ranges [][]float64
	for _, s := range sweeps {
		name, values, err := parseSweep(s)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	build := func(p map[string]float64) (*experiment.Experiment, error) {
		sim, err := registry.New(game, cfg)
		if err != nil {
			return nil, err
		}
		exp := experiment.New(experiment.Config{Game: game, Frames: frames, Dt: cfg.Run.Dt, Params: p})
		if err := exp.Setup(sim, registry.DefaultMetrics(game)); err != nil {
			return nil, err
		}
		return exp, nil
	}

	g := optim.NewGridSearch(names, ranges).Maximize(maximize).Workers(workers)
	fmt.Printf("sweeping %d points of %s on %s...\n", len(g.Points()), game, metric)
	best, value, results, err := g.Search(cmd.Context(), build, metric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RANK\tPARAMS\t%s\n", strings.ToUpper(metric))
	for i, r := range optim.Ranked(results, maximize) {
		fmt.Fprintf(w, "%d\t%s\t%.6f\n", i+1, formatParams(r.Params), r.Value)
	}
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "-\t%s\t%v\n", formatParams(r.Params), r.Err)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nbest: %s (%s = %.6f)\n", formatParams(best), metric, value)

	if !save {
		return nil
	}
	exp, err := build(best)
	if err != nil {
		return err
	}
	trace, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	st := runs.New(cfg.Run.Dir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(runs.RunMetadata{Game: game, Seed: cfg.Seed, Dt: cfg.Run.Dt, Params: best}, trace)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func newRunner() (*automation.Runner, error) {
	st := runs.New(cfg.Run.Dir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return &automation.Runner{
		Registry: experiment.NewRegistry(),
		Config:   cfg,
		Store:    st,
		Logger:   logger,
	}, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	runner, err := newRunner()
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("  %s\n", scenario.Description)
	}
	results, err := runner.RunScenario(cmd.Context(), scenario)
	for i, r := range results {
		fmt.Printf("\nstep %d: %s (%d frames)", i+1, r.Step.Game, len(r.Trace.Samples))
		if r.RunID != "" {
			fmt.Printf(" saved as %s", r.RunID)
		}
		fmt.Println()
		printMetrics(r.Trace.Metrics)
	}
	return err
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	runner, err := newRunner()
	if err != nil {
		return err
	}
	step := automation.ScenarioStep{Game: args[0], Frames: frames, Preset: preset}

	stats, err := runner.Ensemble(cmd.Context(), step, trials, cfg.Seed)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV\tMIN\tMAX")
	for _, name := range names {
		s := stats[name]
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n", name, s.Mean, s.StdDev, s.Min, s.Max)
	}
	return w.Flush()
}
