package frame

import (
	"time"

	"github.com/san-kum/mindwave/internal/dynamo"
)

// Pump turns timestamps into frames without a goroutine. The scheduler
// uses one per loop generation, headless runs drive one directly.
type Pump struct {
	gen     uint64
	seq     uint64
	last    time.Time
	started bool
}

func NewPump(gen uint64) *Pump {
	return &Pump{gen: gen}
}

func (p *Pump) Gen() uint64 { return p.gen }

// Tick returns the next frame. The first tick after construction or
// Restart has First set and a zero Delta. A clock that steps backwards
// yields a zero Delta.
func (p *Pump) Tick(now time.Time) dynamo.Frame {
	p.seq++
	f := dynamo.Frame{Now: now, Seq: p.seq, Gen: p.gen}
	if !p.started {
		f.First = true
	} else if d := now.Sub(p.last); d > 0 {
		f.Delta = d
	}
	p.last = now
	p.started = true
	return f
}

// Restart drops the time baseline and opens the next generation.
func (p *Pump) Restart() {
	p.gen++
	p.seq = 0
	p.started = false
}
