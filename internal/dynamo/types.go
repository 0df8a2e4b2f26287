package dynamo

import (
	"math"
	"time"
)

// State is a flat observable vector sampled from a simulation.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Frame is one scheduled callback.
type Frame struct {
	Now   time.Time
	Delta time.Duration
	// First is set on the first frame of a loop generation. Delta is zero.
	First bool
	Seq   uint64
	Gen   uint64
}

// Seconds returns the elapsed time since the previous frame in seconds.
func (f Frame) Seconds() float64 {
	return f.Delta.Seconds()
}

type Simulation interface {
	Name() string
	Advance(f Frame)
	Reset()
	Resize(width, height float64)
	Draw(s *Scene)
	Playing() bool
	SetPlaying(playing bool)
}

type Hamiltonian interface {
	Energy() float64
}

// Observable exposes a per-frame sample for traces and charts.
type Observable interface {
	Labels() []string
	Sample() State
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// ParamSpec describes a live control.
type ParamSpec struct {
	Name string
	Min  float64
	Max  float64
	Step float64
	// Restart is set when a change reinitializes the simulation.
	Restart bool
}

// Described is implemented by simulations that publish their control bounds.
type Described interface {
	Params() []ParamSpec
}

// CheckBounds returns a ParamError when v falls outside spec.
func CheckBounds(spec ParamSpec, v float64) error {
	if math.IsNaN(v) || v < spec.Min || v > spec.Max {
		return &ParamError{Name: spec.Name, Value: v, Min: spec.Min, Max: spec.Max, Wrapped: ErrParameterBounds}
	}
	return nil
}

type Metric interface {
	Name() string
	Observe(f Frame, sim Simulation)
	Value() float64
	Reset()
}

// Size is the drawing surface in logical pixels.
type Size struct {
	Width  float64
	Height float64
}

func DefaultSize() Size {
	return Size{Width: 800, Height: 500}
}
