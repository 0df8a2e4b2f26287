// Package frame drives simulations with a cancellable frame loop.
package frame

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/mindwave/internal/dynamo"
)

const DefaultInterval = time.Second / 60

type Handler func(f dynamo.Frame)

type loop struct {
	gen  uint64
	stop chan struct{}
	done chan struct{}
}

// Scheduler owns at most one in-flight frame loop. Handler calls never
// overlap and a stopped loop never calls the handler again.
type Scheduler struct {
	clock    Clock
	interval time.Duration
	handler  Handler

	mu      sync.Mutex
	loop    *loop
	gen     uint64
	current atomic.Uint64
}

func NewScheduler(clock Clock, interval time.Duration, handler Handler) *Scheduler {
	if clock == nil {
		clock = RealClock{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{clock: clock, interval: interval, handler: handler}
}

// Start begins a new loop generation. It is a no-op while running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loop != nil {
		return
	}
	s.gen++
	l := &loop{gen: s.gen, stop: make(chan struct{}), done: make(chan struct{})}
	s.loop = l
	s.current.Store(l.gen)
	go s.run(l)
}

// Stop cancels the in-flight loop and waits for it to exit. It is
// idempotent. It must not be called from inside the handler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loop == nil {
		return
	}
	s.current.Store(0)
	close(s.loop.stop)
	<-s.loop.done
	s.loop = nil
}

// Current returns the running generation, or 0 when stopped.
func (s *Scheduler) Current() uint64 {
	return s.current.Load()
}

func (s *Scheduler) Running() bool {
	return s.current.Load() != 0
}

func (s *Scheduler) run(l *loop) {
	defer close(l.done)

	pump := NewPump(l.gen)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		default:
		}
		s.handler(pump.Tick(s.clock.Now()))

		select {
		case <-l.stop:
			return
		case <-ticker.C:
		}
	}
}
