package physics

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/san-kum/mindwave/internal/dynamo"
)

const frameDt = time.Second / 60

func frames(n int) []dynamo.Frame {
	start := time.Unix(0, 0)
	out := make([]dynamo.Frame, n)
	for i := range out {
		f := dynamo.Frame{Now: start.Add(time.Duration(i) * frameDt), Seq: uint64(i + 1), Gen: 1}
		if i == 0 {
			f.First = true
		} else {
			f.Delta = frameDt
		}
		out[i] = f
	}
	return out
}

func TestPendulumEquilibrium(t *testing.T) {
	for _, dt := range []float64{0, 1.0 / 60, 0.5, 2} {
		s := StepPendulum(PendulumState{Angle: 0, AngularVelocity: 1}, 100, 9.8, 0.995, dt)
		if math.Abs(s.AngularVelocity) >= 1 {
			t.Errorf("dt=%v: expected |omega| < 1, got %f", dt, s.AngularVelocity)
		}
	}
}

func TestPendulumGravity(t *testing.T) {
	s := StepPendulum(PendulumState{Angle: math.Pi / 2}, 100, 9.8, 0.995, 1)
	expected := -9.8 / 100 * 0.995
	if math.Abs(s.AngularVelocity-expected) > 1e-12 {
		t.Errorf("expected omega %f, got %f", expected, s.AngularVelocity)
	}
	if math.Abs(s.Angle-(math.Pi/2+expected)) > 1e-12 {
		t.Errorf("expected angle to use the updated omega, got %f", s.Angle)
	}
}

func TestPendulumFirstFrameRecordsBaseline(t *testing.T) {
	p := NewPendulum(DefaultPendulumConfig())
	before := p.State()

	fs := frames(2)
	p.Advance(fs[0])
	if p.State() != before {
		t.Fatalf("first frame changed state: %+v", p.State())
	}

	p.Advance(fs[1])
	if p.State() == before {
		t.Error("second frame should advance the pendulum")
	}
}

func TestPendulumDecays(t *testing.T) {
	p := NewPendulum(DefaultPendulumConfig())
	e0 := p.Energy()

	peak := 0.0
	for i, f := range frames(900) {
		p.Advance(f)
		if i >= 840 {
			peak = math.Max(peak, math.Abs(p.State().Angle))
		}
	}

	if peak >= math.Pi/4 {
		t.Errorf("expected amplitude below pi/4 after 15s, got %f", peak)
	}
	if p.Energy() >= e0 {
		t.Errorf("expected energy to decay from %f, got %f", e0, p.Energy())
	}
}

func TestPendulumPauseDropsBaseline(t *testing.T) {
	p := NewPendulum(DefaultPendulumConfig())
	fs := frames(3)
	p.Advance(fs[0])
	p.Advance(fs[1])

	p.SetPlaying(false)
	p.SetPlaying(true)
	held := p.State()

	// A resumed frame with a large gap must not integrate the gap.
	late := dynamo.Frame{Now: fs[2].Now.Add(time.Hour), Delta: time.Hour, Seq: 3, Gen: 1}
	p.Advance(late)
	if p.State() != held {
		t.Errorf("resume frame integrated the paused interval: %+v", p.State())
	}
}

func TestPendulumLengthBounds(t *testing.T) {
	p := NewPendulum(DefaultPendulumConfig())

	tests := []struct {
		value float64
		ok    bool
	}{
		{50, true},
		{150, true},
		{120, true},
		{49.9, false},
		{151, false},
		{math.NaN(), false},
	}

	for _, tt := range tests {
		before := p.GetParams()["length"]
		err := p.SetParam("length", tt.value)
		if tt.ok && err != nil {
			t.Errorf("length=%v: unexpected error %v", tt.value, err)
		}
		if !tt.ok {
			if !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("length=%v: expected ErrParameterBounds, got %v", tt.value, err)
			}
			if p.GetParams()["length"] != before {
				t.Errorf("length=%v: rejected value changed the parameter", tt.value)
			}
		}
	}

	if err := p.SetParam("mass", 1); !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestPendulumLengthChangeKeepsState(t *testing.T) {
	p := NewPendulum(DefaultPendulumConfig())
	fs := frames(10)
	for _, f := range fs {
		p.Advance(f)
	}
	held := p.State()
	if err := p.SetParam("length", 60); err != nil {
		t.Fatal(err)
	}
	if p.State() != held {
		t.Error("length change reset the pendulum state")
	}
}

func TestPendulumDraw(t *testing.T) {
	p := NewPendulum(DefaultPendulumConfig())
	p.Resize(800, 600)
	scene := dynamo.NewScene(dynamo.DefaultSize())
	p.Draw(scene)

	if len(scene.Lines) != 1 || len(scene.Circles) != 1 {
		t.Fatalf("expected one string and one bob, got %d lines %d circles", len(scene.Lines), len(scene.Circles))
	}
	pivot := scene.Lines[0].From
	if pivot.X != 400 || pivot.Y != 200 {
		t.Errorf("expected pivot at (400,200), got %+v", pivot)
	}
	bob := scene.Circles[0]
	want := dynamo.Point{X: 400 + 100*math.Sin(math.Pi/4), Y: 200 + 100*math.Cos(math.Pi/4)}
	if math.Abs(bob.Center.X-want.X) > 1e-9 || math.Abs(bob.Center.Y-want.Y) > 1e-9 {
		t.Errorf("expected bob at %+v, got %+v", want, bob.Center)
	}
	if bob.Radius != 20 {
		t.Errorf("expected bob radius 20, got %f", bob.Radius)
	}
}

func TestPendulumSkippedFrameKeepsElapsedTime(t *testing.T) {
	fs := frames(3)
	cfg := DefaultPendulumConfig()
	p := NewPendulum(cfg)
	p.Advance(fs[0])
	// fs[1] never reaches the pendulum; fs[2] still reports one frame of Delta.
	p.Advance(fs[2])

	want := StepPendulum(PendulumState{Angle: cfg.InitialAngle}, cfg.Length, cfg.Gravity, cfg.Damping, 2*frameDt.Seconds())
	if math.Abs(p.State().Angle-want.Angle) > 1e-12 {
		t.Errorf("angle %v, want %v from two frames of elapsed time", p.State().Angle, want.Angle)
	}
}
