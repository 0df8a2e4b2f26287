package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/mindwave/internal/dynamo"
)

const (
	WavesName = "waves"

	WaveTimeStep = 0.05

	waveColor      = dynamo.Color("#0d9488")
	companionColor = dynamo.Color("#0891b2")
	waveHint       = "Breathe in rhythm with the waves. Feel the harmony of the oscillations."
)

var (
	waveFrequency = dynamo.ParamSpec{Name: "frequency", Min: 0.005, Max: 0.05, Step: 0.005}
	waveAmplitude = dynamo.ParamSpec{Name: "amplitude", Min: 10, Max: 100, Step: 5}
)

type WaveConfig struct {
	Frequency float64 `yaml:"frequency"`
	Amplitude float64 `yaml:"amplitude"`
}

func DefaultWaveConfig() WaveConfig {
	return WaveConfig{Frequency: 0.02, Amplitude: 50}
}

// WaveHeight is the primary wave at column x and time t.
func WaveHeight(x, t, height, freq, amp float64) float64 {
	return height/2 + amp*math.Sin(x*freq+t) + (amp/2)*math.Sin(x*freq*0.5+t*1.5)
}

// CompanionHeight is the primary wave with both phase terms shifted by pi.
func CompanionHeight(x, t, height, freq, amp float64) float64 {
	return height/2 + amp*math.Sin(x*freq+t+math.Pi) + (amp/2)*math.Sin(x*freq*0.5+t*1.5+math.Pi)
}

type Wave struct {
	cfg       WaveConfig
	time      float64
	size      dynamo.Size
	playing   bool
	primary   []dynamo.Point
	companion []dynamo.Point
}

func NewWave(cfg WaveConfig) *Wave {
	def := DefaultWaveConfig()
	if cfg.Frequency == 0 {
		cfg.Frequency = def.Frequency
	}
	if cfg.Amplitude == 0 {
		cfg.Amplitude = def.Amplitude
	}
	w := &Wave{cfg: cfg, size: dynamo.DefaultSize(), playing: true}
	w.sample()
	return w
}

func (w *Wave) Name() string { return WavesName }

func (w *Wave) Time() float64 { return w.time }

// Advance samples both curves at the current time, then moves time on by
// one fixed step. Elapsed wall time is ignored.
func (w *Wave) Advance(f dynamo.Frame) {
	if !w.playing {
		return
	}
	w.sample()
	w.time += WaveTimeStep
}

func (w *Wave) sample() {
	n := int(w.size.Width)
	w.primary = w.primary[:0]
	w.companion = w.companion[:0]
	for x := 0; x < n; x++ {
		fx := float64(x)
		w.primary = append(w.primary, dynamo.Point{X: fx, Y: WaveHeight(fx, w.time, w.size.Height, w.cfg.Frequency, w.cfg.Amplitude)})
		w.companion = append(w.companion, dynamo.Point{X: fx, Y: CompanionHeight(fx, w.time, w.size.Height, w.cfg.Frequency, w.cfg.Amplitude)})
	}
}

func (w *Wave) Reset() {
	w.time = 0
	w.sample()
}

func (w *Wave) Resize(width, height float64) {
	w.size = dynamo.Size{Width: width, Height: height}
	w.sample()
}

func (w *Wave) Playing() bool { return w.playing }

func (w *Wave) SetPlaying(playing bool) { w.playing = playing }

func (w *Wave) Draw(s *dynamo.Scene) {
	s.Clear()
	s.Size = w.size
	s.AddPolyline(dynamo.Polyline{Points: append([]dynamo.Point(nil), w.primary...), Color: waveColor, Width: 3})
	s.AddPolyline(dynamo.Polyline{Points: append([]dynamo.Point(nil), w.companion...), Color: companionColor, Width: 3})
	s.AddText(dynamo.Text{At: hintAnchor(w.size), Content: waveHint, Color: hintColor})
}

// Labels samples the center column of both curves.
func (w *Wave) Labels() []string {
	return []string{"time", "center", "companion_center"}
}

func (w *Wave) Sample() dynamo.State {
	x := w.size.Width / 2
	return dynamo.State{
		w.time,
		WaveHeight(x, w.time, w.size.Height, w.cfg.Frequency, w.cfg.Amplitude),
		CompanionHeight(x, w.time, w.size.Height, w.cfg.Frequency, w.cfg.Amplitude),
	}
}

func (w *Wave) Params() []dynamo.ParamSpec {
	return []dynamo.ParamSpec{waveFrequency, waveAmplitude}
}

func (w *Wave) GetParams() map[string]float64 {
	return map[string]float64{"frequency": w.cfg.Frequency, "amplitude": w.cfg.Amplitude}
}

func (w *Wave) SetParam(name string, value float64) error {
	switch name {
	case "frequency":
		if err := dynamo.CheckBounds(waveFrequency, value); err != nil {
			return err
		}
		w.cfg.Frequency = value
	case "amplitude":
		if err := dynamo.CheckBounds(waveAmplitude, value); err != nil {
			return err
		}
		w.cfg.Amplitude = value
	default:
		return &dynamo.ParamError{Name: name, Wrapped: fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)}
	}
	return nil
}
