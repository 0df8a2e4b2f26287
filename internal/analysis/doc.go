// Package analysis inspects recorded run traces.
//
//   - [DominantFrequency]: strongest oscillation in a sampled series
//   - [PowerSpectrum]: magnitude spectrum of a mean-removed, padded series
//   - [PhasePortrait]: pairs two observables, e.g. angle against angular velocity
//
// A damped pendulum of length L swings at roughly sqrt(g/L)/(2π) cycles
// per second:
//
//	f := analysis.DominantFrequency(trace.Series("angle"), dt)
package analysis
