package metrics

import (
	"math"
	"slices"
	"time"

	"github.com/san-kum/mindwave/internal/dynamo"
)

// FrameRate reports frames per second of frame time.
type FrameRate struct {
	frames  int
	elapsed time.Duration
}

func NewFrameRate() *FrameRate { return &FrameRate{} }

func (r *FrameRate) Name() string { return "frame_rate" }

func (r *FrameRate) Observe(f dynamo.Frame, _ dynamo.Simulation) {
	r.frames++
	r.elapsed += f.Delta
}

func (r *FrameRate) Value() float64 {
	if r.elapsed <= 0 {
		return 0
	}
	// the first frame carries no elapsed time
	return float64(r.frames-1) / r.elapsed.Seconds()
}

func (r *FrameRate) Reset() {
	r.frames = 0
	r.elapsed = 0
}

// Peak tracks the largest absolute value of one observable.
type Peak struct {
	label string
	peak  float64
}

func NewPeak(label string) *Peak {
	return &Peak{label: label}
}

func (p *Peak) Name() string { return "peak_" + p.label }

func (p *Peak) Observe(_ dynamo.Frame, sim dynamo.Simulation) {
	o, ok := sim.(dynamo.Observable)
	if !ok {
		return
	}
	idx := slices.Index(o.Labels(), p.label)
	if idx < 0 {
		return
	}
	if s := o.Sample(); idx < len(s) {
		p.peak = math.Max(p.peak, math.Abs(s[idx]))
	}
}

func (p *Peak) Value() float64 { return p.peak }

func (p *Peak) Reset() { p.peak = 0 }
