// Package dynamo provides the core primitives shared by the relaxation
// simulations.
//
// The package defines the contract between the frame scheduler, the
// simulations and the renderers:
//
//   - [Frame]: one scheduled callback with its timestamp and elapsed time
//   - [Simulation]: owned state advanced once per frame and drawn to a [Scene]
//   - [Configurable]: live parameter controls with bounds
//   - [Scene]: vector display list rebuilt every frame
//
// # Example
//
//	sim := physics.NewPendulum(physics.DefaultPendulumConfig())
//	sim.Resize(800, 500)
//	pump := frame.NewPump(1)
//	sim.Advance(pump.Tick(time.Now()))
//	sim.Draw(scene)
//
// # Thread Safety
//
// Simulations are NOT thread-safe. A single goroutine (the frame loop or
// the TUI event loop) owns each instance.
package dynamo
