// Package experiment runs games headless with a fixed frame step.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/mindwave/internal/dynamo"
	"github.com/san-kum/mindwave/internal/frame"
	"github.com/san-kum/mindwave/internal/runs"
)

type Config struct {
	Game   string
	Frames int
	Dt     float64
	Params map[string]float64
}

type Experiment struct {
	cfg     Config
	sim     dynamo.Simulation
	metrics []dynamo.Metric
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup attaches the simulation and applies the configured parameters.
func (e *Experiment) Setup(sim dynamo.Simulation, metrics []dynamo.Metric) error {
	if len(e.cfg.Params) > 0 {
		c, ok := sim.(dynamo.Configurable)
		if !ok {
			return fmt.Errorf("%s has no parameters", sim.Name())
		}
		for k, v := range e.cfg.Params {
			if err := c.SetParam(k, v); err != nil {
				return err
			}
		}
	}
	e.sim = sim
	e.metrics = metrics
	return nil
}

// Run drives the simulation with a synthetic clock. The first frame only
// records a baseline, as in the live loop.
func (e *Experiment) Run(ctx context.Context) (*runs.Trace, error) {
	if e.sim == nil {
		return nil, errors.New("experiment not setup")
	}
	if e.cfg.Frames <= 0 || e.cfg.Dt <= 0 {
		return nil, fmt.Errorf("%w: frames=%d dt=%g", dynamo.ErrParameterBounds, e.cfg.Frames, e.cfg.Dt)
	}

	trace := &runs.Trace{Metrics: make(map[string]float64)}
	obs, _ := e.sim.(dynamo.Observable)
	if obs != nil {
		trace.Labels = obs.Labels()
	}

	start := time.Unix(0, 0)
	clock := frame.NewManualClock(start)
	pump := frame.NewPump(1)
	step := time.Duration(e.cfg.Dt * float64(time.Second))

	for _, m := range e.metrics {
		m.Reset()
	}

	for i := 0; i < e.cfg.Frames; i++ {
		if i%100 == 0 {
			if err := ctx.Err(); err != nil {
				return trace, err
			}
		}

		f := pump.Tick(clock.Now())
		e.sim.Advance(f)

		if obs != nil {
			sample := obs.Sample()
			if !sample.IsValid() {
				return trace, &dynamo.SimulationError{Game: e.sim.Name(), Frame: f.Seq, Wrapped: dynamo.ErrInvalidState}
			}
			trace.Times = append(trace.Times, f.Now.Sub(start).Seconds())
			trace.Samples = append(trace.Samples, sample.Clone())
		}
		for _, m := range e.metrics {
			m.Observe(f, e.sim)
		}
		clock.Advance(step)
	}

	for _, m := range e.metrics {
		trace.Metrics[m.Name()] = m.Value()
	}
	return trace, nil
}
