// Package automation runs scripted sequences of headless games and seed
// ensembles.
package automation

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mindwave/internal/config"
	"github.com/san-kum/mindwave/internal/experiment"
	"github.com/san-kum/mindwave/internal/runs"
)

// Scenario is a named list of steps read from YAML.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

type ScenarioStep struct {
	Game   string             `yaml:"game"`
	Frames int                `yaml:"frames"`
	Dt     float64            `yaml:"dt"`
	Preset string             `yaml:"preset"`
	Params map[string]float64 `yaml:"params"`
	// SaveAs stores the trace when set; the value is logged with the run id.
	SaveAs string `yaml:"save_as"`
}

type StepResult struct {
	Step  ScenarioStep
	Trace *runs.Trace
	RunID string
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Runner executes scenarios against one config. Store may be nil, in
// which case SaveAs is ignored.
type Runner struct {
	Registry *experiment.Registry
	Config   *config.Config
	Store    *runs.Store
	Logger   *log.Logger
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}

// params merges the step preset under its explicit params.
func (r *Runner) params(step ScenarioStep) (map[string]float64, error) {
	out := map[string]float64{}
	if step.Preset != "" {
		p := config.GetPreset(step.Game, step.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s/%s", step.Game, step.Preset)
		}
		for k, v := range p {
			out[k] = v
		}
	}
	for k, v := range step.Params {
		out[k] = v
	}
	return out, nil
}

func (r *Runner) build(step ScenarioStep, seed int64) (*experiment.Experiment, map[string]float64, error) {
	cfg := *r.Config
	cfg.Seed = seed
	if step.Frames <= 0 {
		step.Frames = cfg.Run.Frames
	}
	if step.Dt <= 0 {
		step.Dt = cfg.Run.Dt
	}

	p, err := r.params(step)
	if err != nil {
		return nil, nil, err
	}
	sim, err := r.Registry.New(step.Game, &cfg)
	if err != nil {
		return nil, nil, err
	}
	exp := experiment.New(experiment.Config{Game: step.Game, Frames: step.Frames, Dt: step.Dt, Params: p})
	if err := exp.Setup(sim, r.Registry.DefaultMetrics(step.Game)); err != nil {
		return nil, nil, err
	}
	return exp, p, nil
}

// RunScenario runs the steps in order and stops at the first failure,
// returning the results so far.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		r.logger().Info("running step", "step", i+1, "of", len(scenario.Steps), "game", step.Game)

		exp, p, err := r.build(step, r.Config.Seed)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		trace, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		res := StepResult{Step: step, Trace: trace}
		if step.SaveAs != "" && r.Store != nil {
			dt := step.Dt
			if dt <= 0 {
				dt = r.Config.Run.Dt
			}
			id, err := r.Store.Save(runs.RunMetadata{Game: step.Game, Seed: r.Config.Seed, Dt: dt, Params: p}, trace)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			res.RunID = id
			r.logger().Info("saved step", "name", step.SaveAs, "run", id)
		}
		results = append(results, res)
	}

	return results, nil
}

// Stats summarizes one metric across an ensemble.
type Stats struct {
	Metric string
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Runs   int
}

// Ensemble runs step once per seed in [seedStart, seedStart+n) in
// parallel and summarizes every recorded metric.
func (r *Runner) Ensemble(ctx context.Context, step ScenarioStep, n int, seedStart int64) (map[string]Stats, error) {
	if n < 1 {
		return nil, fmt.Errorf("ensemble needs at least one run, got %d", n)
	}
	traces := make([]*runs.Trace, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			exp, _, err := r.build(step, seedStart+int64(idx))
			if err != nil {
				errs[idx] = err
				return
			}
			traces[idx], errs[idx] = exp.Run(ctx)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	values := map[string][]float64{}
	for _, t := range traces {
		for name, v := range t.Metrics {
			values[name] = append(values[name], v)
		}
	}
	out := make(map[string]Stats, len(values))
	for name, vs := range values {
		out[name] = summarize(name, vs)
	}
	return out, nil
}

func summarize(name string, vs []float64) Stats {
	s := Stats{Metric: name, Runs: len(vs), Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range vs {
		s.Mean += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean /= float64(len(vs))
	for _, v := range vs {
		s.StdDev += (v - s.Mean) * (v - s.Mean)
	}
	s.StdDev = math.Sqrt(s.StdDev / float64(len(vs)))
	return s
}
