package physics

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/mindwave/internal/dynamo"
)

const (
	PendulumName  = "pendulum"
	pendulumBob   = 20.0
	pendulumColor = dynamo.Color("#0d9488")

	pendulumHint = "Focus on the pendulum's motion. Breathe in as it swings one way, out as it returns."
)

var pendulumLength = dynamo.ParamSpec{Name: "length", Min: 50, Max: 150, Step: 5}

type PendulumState struct {
	Angle           float64
	AngularVelocity float64
}

type PendulumConfig struct {
	Length       float64 `yaml:"length"`
	Gravity      float64 `yaml:"gravity"`
	Damping      float64 `yaml:"damping"`
	InitialAngle float64 `yaml:"initial_angle"`
}

func DefaultPendulumConfig() PendulumConfig {
	return PendulumConfig{
		Length:       100,
		Gravity:      9.8,
		Damping:      0.995,
		InitialAngle: math.Pi / 4,
	}
}

// StepPendulum advances one frame with semi-implicit Euler. Damping is
// applied once per call, independent of dt.
func StepPendulum(s PendulumState, length, gravity, damping, dt float64) PendulumState {
	alpha := -(gravity / length) * math.Sin(s.Angle)
	s.AngularVelocity += alpha * dt
	s.AngularVelocity *= damping
	s.Angle += s.AngularVelocity * dt
	return s
}

type Pendulum struct {
	cfg     PendulumConfig
	state   PendulumState
	size    dynamo.Size
	playing bool
	// hasBase is false until a frame has recorded the time baseline.
	hasBase bool
	last    time.Time
}

func NewPendulum(cfg PendulumConfig) *Pendulum {
	def := DefaultPendulumConfig()
	if cfg.Length == 0 {
		cfg.Length = def.Length
	}
	if cfg.Gravity == 0 {
		cfg.Gravity = def.Gravity
	}
	if cfg.Damping <= 0 || cfg.Damping >= 1 {
		cfg.Damping = def.Damping
	}
	p := &Pendulum{cfg: cfg, size: dynamo.DefaultSize(), playing: true}
	p.Reset()
	return p
}

func (p *Pendulum) Name() string { return PendulumName }

func (p *Pendulum) State() PendulumState { return p.state }

func (p *Pendulum) Advance(f dynamo.Frame) {
	if !p.playing {
		return
	}
	if f.First || !p.hasBase {
		p.hasBase = true
		p.last = f.Now
		return
	}
	// integrate from the last frame seen here, so frames dropped upstream
	// do not lose time
	dt := f.Seconds()
	if !f.Now.IsZero() && !p.last.IsZero() {
		dt = f.Now.Sub(p.last).Seconds()
	}
	p.last = f.Now
	p.state = StepPendulum(p.state, p.cfg.Length, p.cfg.Gravity, p.cfg.Damping, dt)
}

func (p *Pendulum) Reset() {
	p.state = PendulumState{Angle: p.cfg.InitialAngle}
	p.hasBase = false
}

func (p *Pendulum) Resize(width, height float64) {
	p.size = dynamo.Size{Width: width, Height: height}
}

func (p *Pendulum) Playing() bool { return p.playing }

// SetPlaying pauses or resumes. Pausing drops the time baseline so the
// first frame after resume does not integrate the paused interval.
func (p *Pendulum) SetPlaying(playing bool) {
	p.playing = playing
	if !playing {
		p.hasBase = false
	}
}

func (p *Pendulum) Pivot() dynamo.Point {
	return dynamo.Point{X: p.size.Width / 2, Y: p.size.Height / 3}
}

func (p *Pendulum) Bob() dynamo.Point {
	pivot := p.Pivot()
	return dynamo.Point{
		X: pivot.X + p.cfg.Length*math.Sin(p.state.Angle),
		Y: pivot.Y + p.cfg.Length*math.Cos(p.state.Angle),
	}
}

func (p *Pendulum) Draw(s *dynamo.Scene) {
	s.Clear()
	s.Size = p.size
	bob := p.Bob()
	s.AddLine(dynamo.Line{From: p.Pivot(), To: bob, Color: pendulumColor, Width: 2})
	s.AddCircle(dynamo.Circle{Center: bob, Radius: pendulumBob, Color: pendulumColor, Filled: true})
	s.AddText(dynamo.Text{At: hintAnchor(p.size), Content: pendulumHint, Color: hintColor})
}

// Energy is per unit mass.
func (p *Pendulum) Energy() float64 {
	v := p.cfg.Length * p.state.AngularVelocity
	return 0.5*v*v + p.cfg.Gravity*p.cfg.Length*(1-math.Cos(p.state.Angle))
}

func (p *Pendulum) Labels() []string {
	return []string{"angle", "angular_velocity", "energy"}
}

func (p *Pendulum) Sample() dynamo.State {
	return dynamo.State{p.state.Angle, p.state.AngularVelocity, p.Energy()}
}

func (p *Pendulum) Params() []dynamo.ParamSpec {
	return []dynamo.ParamSpec{pendulumLength}
}

func (p *Pendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"length":  p.cfg.Length,
		"gravity": p.cfg.Gravity,
		"damping": p.cfg.Damping,
	}
}

func (p *Pendulum) SetParam(name string, value float64) error {
	switch name {
	case "length":
		if err := dynamo.CheckBounds(pendulumLength, value); err != nil {
			return err
		}
		p.cfg.Length = value
	case "gravity":
		if value <= 0 {
			return &dynamo.ParamError{Name: name, Value: value, Min: 0, Max: math.Inf(1), Wrapped: dynamo.ErrParameterBounds}
		}
		p.cfg.Gravity = value
	case "damping":
		if value <= 0 || value >= 1 {
			return &dynamo.ParamError{Name: name, Value: value, Min: 0, Max: 1, Wrapped: dynamo.ErrParameterBounds}
		}
		p.cfg.Damping = value
	default:
		return &dynamo.ParamError{Name: name, Wrapped: fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)}
	}
	return nil
}
