package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/san-kum/mindwave/internal/dynamo"
	"github.com/san-kum/mindwave/internal/physics"
)

func TestEnergyMean(t *testing.T) {
	m := NewEnergy()
	p := physics.NewPendulum(physics.DefaultPendulumConfig())

	m.Observe(dynamo.Frame{}, p)
	expected := 9.8 * 100 * (1 - math.Cos(math.Pi/4))
	if math.Abs(m.Value()-expected) > 1e-9 {
		t.Errorf("expected energy %f, got %f", expected, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyIgnoresNonHamiltonian(t *testing.T) {
	m := NewEnergy()
	m.Observe(dynamo.Frame{}, physics.NewWave(physics.DefaultWaveConfig()))
	if m.Value() != 0 {
		t.Errorf("expected no samples, got %f", m.Value())
	}
}

func TestEnergyDecay(t *testing.T) {
	m := NewEnergyDecay()
	p := physics.NewPendulum(physics.DefaultPendulumConfig())
	start := time.Unix(0, 0)

	for i := 0; i < 600; i++ {
		f := dynamo.Frame{Now: start.Add(time.Duration(i) * time.Second / 60), First: i == 0}
		if i > 0 {
			f.Delta = time.Second / 60
		}
		p.Advance(f)
		m.Observe(f, p)
	}

	if v := m.Value(); v <= 0.5 || v > 1 {
		t.Errorf("expected most energy lost after 10s, got decay %f", v)
	}
}

func TestFrameRate(t *testing.T) {
	r := NewFrameRate()
	r.Observe(dynamo.Frame{First: true}, nil)
	for i := 0; i < 60; i++ {
		r.Observe(dynamo.Frame{Delta: time.Second / 60}, nil)
	}
	if math.Abs(r.Value()-60) > 1e-6 {
		t.Errorf("expected 60 fps, got %f", r.Value())
	}
}

func TestPeak(t *testing.T) {
	m := NewPeak("angle")
	p := physics.NewPendulum(physics.DefaultPendulumConfig())
	m.Observe(dynamo.Frame{}, p)
	if math.Abs(m.Value()-math.Pi/4) > 1e-12 {
		t.Errorf("expected peak pi/4, got %f", m.Value())
	}
	if m.Name() != "peak_angle" {
		t.Errorf("unexpected name %s", m.Name())
	}
}
