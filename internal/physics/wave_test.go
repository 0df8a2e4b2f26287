package physics

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/san-kum/mindwave/internal/dynamo"
)

func TestWavePeriodicity(t *testing.T) {
	for _, x := range []float64{0, 17, 250, 799} {
		for _, tm := range []float64{0, 0.35, 3} {
			a := WaveHeight(x, tm, 500, 0.02, 50)
			b := WaveHeight(x, tm+4*math.Pi, 500, 0.02, 50)
			if math.Abs(a-b) > 1e-9 {
				t.Errorf("x=%v t=%v: expected period 4pi, got %f vs %f", x, tm, a, b)
			}
		}
	}
}

func TestCompanionMirrorsPrimary(t *testing.T) {
	const h = 500.0
	for _, x := range []float64{0, 100, 401} {
		for _, tm := range []float64{0, 1.25, 9} {
			sum := WaveHeight(x, tm, h, 0.03, 70) + CompanionHeight(x, tm, h, 0.03, 70)
			if math.Abs(sum-h) > 1e-9 {
				t.Errorf("x=%v t=%v: expected curves to mirror about h/2, sum %f", x, tm, sum)
			}
		}
	}
}

func TestWaveTimeIgnoresDelta(t *testing.T) {
	w := NewWave(DefaultWaveConfig())
	deltas := []time.Duration{0, time.Millisecond, time.Second, time.Minute}
	for i, d := range deltas {
		w.Advance(dynamo.Frame{Delta: d, Seq: uint64(i + 1)})
	}
	want := WaveTimeStep * float64(len(deltas))
	if math.Abs(w.Time()-want) > 1e-12 {
		t.Errorf("expected time %f, got %f", want, w.Time())
	}

	w.SetPlaying(false)
	w.Advance(dynamo.Frame{Seq: 9})
	if math.Abs(w.Time()-want) > 1e-12 {
		t.Error("paused wave advanced time")
	}

	w.Reset()
	if w.Time() != 0 {
		t.Errorf("expected reset time 0, got %f", w.Time())
	}
}

func TestWaveParams(t *testing.T) {
	w := NewWave(DefaultWaveConfig())

	if err := w.SetParam("frequency", 0.06); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
	if err := w.SetParam("amplitude", 5); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
	if got := w.GetParams(); got["frequency"] != 0.02 || got["amplitude"] != 50 {
		t.Errorf("rejected values changed params: %v", got)
	}

	if err := w.SetParam("amplitude", 80); err != nil {
		t.Fatal(err)
	}
	w.Resize(100, 400)
	w.Advance(dynamo.Frame{Seq: 1})

	scene := dynamo.NewScene(dynamo.DefaultSize())
	w.Draw(scene)
	if len(scene.Polylines) != 2 {
		t.Fatalf("expected two curves, got %d", len(scene.Polylines))
	}
	if len(scene.Polylines[0].Points) != 100 {
		t.Errorf("expected one point per column, got %d", len(scene.Polylines[0].Points))
	}
	y0 := scene.Polylines[0].Points[10].Y
	if want := WaveHeight(10, 0, 400, 0.02, 80); math.Abs(y0-want) > 1e-9 {
		t.Errorf("expected sampled height %f, got %f", want, y0)
	}
}
