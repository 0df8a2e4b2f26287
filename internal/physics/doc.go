// Package physics provides the relaxation simulations.
//
// Each simulation implements [dynamo.Simulation] and [dynamo.Configurable]:
//
//   - [Pendulum]: damped simple pendulum, semi-implicit Euler on wall time
//   - [ParticleFlow]: bouncing particles linked by proximity
//   - [Wave]: two superposed sine waves on a fixed per-frame time step
//
// The update rules are exported as pure functions ([StepPendulum],
// [StepParticle], [WaveHeight]) so they can be tested without a scheduler.
package physics

import "github.com/san-kum/mindwave/internal/dynamo"

const hintColor = dynamo.Color("#475569")

func hintAnchor(size dynamo.Size) dynamo.Point {
	return dynamo.Point{X: size.Width / 2, Y: size.Height - 30}
}
