package experiment

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/mindwave/internal/config"
	"github.com/san-kum/mindwave/internal/dynamo"
	"github.com/san-kum/mindwave/internal/metrics"
	"github.com/san-kum/mindwave/internal/physics"
)

type factory func(cfg *config.Config, rng *rand.Rand) dynamo.Simulation

type Registry struct {
	order   []string
	games   map[string]factory
	primary map[string]string
}

func NewRegistry() *Registry {
	r := &Registry{
		games:   make(map[string]factory),
		primary: make(map[string]string),
	}

	r.add(physics.PendulumName, "energy", func(cfg *config.Config, _ *rand.Rand) dynamo.Simulation {
		return physics.NewPendulum(cfg.Pendulum)
	})
	r.add(physics.ParticlesName, "links", func(cfg *config.Config, rng *rand.Rand) dynamo.Simulation {
		return physics.NewParticleFlow(rng, cfg.Particles.Count)
	})
	r.add(physics.WavesName, "center", func(cfg *config.Config, _ *rand.Rand) dynamo.Simulation {
		return physics.NewWave(cfg.Waves)
	})

	return r
}

func (r *Registry) add(name, primary string, fn factory) {
	r.order = append(r.order, name)
	r.games[name] = fn
	r.primary[name] = primary
}

// New builds the named game sized to the configured display.
func (r *Registry) New(name string, cfg *config.Config) (dynamo.Simulation, error) {
	fn, ok := r.games[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownGame, name)
	}
	sim := fn(cfg, rand.New(rand.NewSource(cfg.Seed)))
	if cfg.Display.Width > 0 && cfg.Display.Height > 0 {
		sim.Resize(cfg.Display.Width, cfg.Display.Height)
	}
	return sim, nil
}

// Games lists game names in menu order.
func (r *Registry) Games() []string {
	return append([]string(nil), r.order...)
}

// Primary names the observable that best summarizes a game.
func (r *Registry) Primary(name string) string {
	return r.primary[name]
}

func (r *Registry) DefaultMetrics(name string) []dynamo.Metric {
	ms := []dynamo.Metric{metrics.NewFrameRate()}
	switch name {
	case physics.PendulumName:
		ms = append(ms, metrics.NewEnergy(), metrics.NewEnergyDecay(), metrics.NewPeak("angle"))
	case physics.ParticlesName:
		ms = append(ms, metrics.NewPeak("links"))
	case physics.WavesName:
		ms = append(ms, metrics.NewPeak("center"))
	}
	return ms
}
