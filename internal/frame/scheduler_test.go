package frame_test

import (
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mindwave/internal/dynamo"
	"github.com/san-kum/mindwave/internal/frame"
)

type recorder struct {
	mu      sync.Mutex
	frames  []dynamo.Frame
	active  int
	overlap bool
}

func (r *recorder) handle(f dynamo.Frame) {
	r.mu.Lock()
	r.active++
	if r.active > 1 {
		r.overlap = true
	}
	r.frames = append(r.frames, f)
	r.mu.Unlock()

	time.Sleep(100 * time.Microsecond)

	r.mu.Lock()
	r.active--
	r.mu.Unlock()
}

func (r *recorder) snapshot() []dynamo.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]dynamo.Frame(nil), r.frames...)
}

func (r *recorder) count() int {
	return len(r.snapshot())
}

var _ = Describe("Pump", func() {
	var (
		pump  *frame.Pump
		start time.Time
	)

	BeforeEach(func() {
		pump = frame.NewPump(1)
		start = time.Unix(100, 0)
	})

	It("marks the first frame and records no elapsed time", func() {
		f := pump.Tick(start)
		Expect(f.First).To(BeTrue())
		Expect(f.Delta).To(BeZero())
		Expect(f.Seq).To(Equal(uint64(1)))
		Expect(f.Gen).To(Equal(uint64(1)))
	})

	It("reports elapsed time between ticks", func() {
		pump.Tick(start)
		f := pump.Tick(start.Add(16 * time.Millisecond))
		Expect(f.First).To(BeFalse())
		Expect(f.Delta).To(Equal(16 * time.Millisecond))
	})

	It("clamps a backwards clock to zero", func() {
		pump.Tick(start)
		f := pump.Tick(start.Add(-time.Second))
		Expect(f.Delta).To(BeZero())
	})

	It("drops the baseline on restart", func() {
		pump.Tick(start)
		pump.Tick(start.Add(time.Second))
		pump.Restart()

		f := pump.Tick(start.Add(time.Hour))
		Expect(f.First).To(BeTrue())
		Expect(f.Delta).To(BeZero())
		Expect(f.Gen).To(Equal(uint64(2)))
		Expect(f.Seq).To(Equal(uint64(1)))
	})
})

var _ = Describe("Scheduler", func() {
	var (
		rec   *recorder
		clock *frame.ManualClock
		sched *frame.Scheduler
	)

	BeforeEach(func() {
		rec = &recorder{}
		clock = frame.NewManualClock(time.Unix(0, 0))
		sched = frame.NewScheduler(clock, time.Millisecond, rec.handle)
	})

	AfterEach(func() {
		sched.Stop()
	})

	It("allows Stop before Start", func() {
		Expect(sched.Stop).NotTo(Panic())
		Expect(sched.Running()).To(BeFalse())
		Expect(sched.Current()).To(BeZero())
	})

	It("delivers frames once started", func() {
		sched.Start()
		Eventually(rec.count).Should(BeNumerically(">=", 3))

		frames := rec.snapshot()
		Expect(frames[0].First).To(BeTrue())
		for _, f := range frames[1:] {
			Expect(f.First).To(BeFalse())
			Expect(f.Gen).To(Equal(frames[0].Gen))
		}
	})

	It("treats Start while running as a no-op", func() {
		sched.Start()
		gen := sched.Current()
		sched.Start()
		Expect(sched.Current()).To(Equal(gen))
	})

	It("never calls the handler after Stop returns", func() {
		sched.Start()
		Eventually(rec.count).Should(BeNumerically(">=", 2))

		sched.Stop()
		sched.Stop()
		n := rec.count()
		Consistently(rec.count, 50*time.Millisecond, 5*time.Millisecond).Should(Equal(n))
		Expect(sched.Running()).To(BeFalse())
	})

	It("opens a new generation on restart", func() {
		sched.Start()
		Eventually(rec.count).Should(BeNumerically(">=", 1))
		first := sched.Current()
		sched.Stop()

		sched.Start()
		second := sched.Current()
		Expect(second).To(BeNumerically(">", first))

		Eventually(func() bool {
			frames := rec.snapshot()
			return frames[len(frames)-1].Gen == second
		}).Should(BeTrue())

		var restarted *dynamo.Frame
		for _, f := range rec.snapshot() {
			if f.Gen == second {
				restarted = &f
				break
			}
		}
		Expect(restarted).NotTo(BeNil())
		Expect(restarted.First).To(BeTrue())
	})

	It("never overlaps handler calls under concurrent Start and Stop", func() {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				for j := 0; j < 20; j++ {
					sched.Start()
					clock.Advance(time.Millisecond)
					sched.Stop()
				}
			}()
		}
		wg.Wait()

		rec.mu.Lock()
		defer rec.mu.Unlock()
		Expect(rec.overlap).To(BeFalse())
	})

	It("stamps frames from the clock", func() {
		clock.Set(time.Unix(50, 0))
		sched.Start()
		Eventually(rec.count).Should(BeNumerically(">=", 1))
		Expect(rec.snapshot()[0].Now).To(Equal(time.Unix(50, 0)))
	})
})
