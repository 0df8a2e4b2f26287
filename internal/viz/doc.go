// Package viz provides terminal rendering for the relaxation games.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [App]: game picker that hands off to a live model
//   - [Model]: one running simulation fed by a [frame.Scheduler]
//   - [Canvas]: Braille-based pixel canvas that rasterizes a [dynamo.Scene]
//
// # Key Bindings
//
//	Space - Pause/Play
//	R     - Reset to initial state
//	Tab   - Cycle parameter
//	Up/Dn - Adjust parameter by one step
//	T     - Cycle color themes
//	?     - Show help overlay
//	Esc   - Back to the game picker
package viz
