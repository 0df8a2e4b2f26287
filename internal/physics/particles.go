package physics

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/mindwave/internal/dynamo"
)

const (
	ParticlesName = "particles"

	DefaultParticleCount = 50
	LinkDistance         = 100.0

	linkColor    = dynamo.Color("#0d9488")
	particleHint = "Watch the particles flow. Focus on their movement and connections."
)

// Palette is the fixed set of particle colors.
var Palette = []dynamo.Color{"#0d9488", "#0891b2", "#0284c7", "#4f46e5", "#7c3aed"}

var particleCount = dynamo.ParamSpec{Name: "count", Min: 10, Max: 100, Step: 5, Restart: true}

type Particle struct {
	X, Y   float64
	VX, VY float64
	Radius float64
	Color  dynamo.Color
}

type Link struct {
	A, B  int
	Alpha float64
}

// SpawnParticles creates n particles uniformly inside a w by h surface.
func SpawnParticles(rng *rand.Rand, n int, w, h float64) []Particle {
	ps := make([]Particle, n)
	for i := range ps {
		ps[i] = Particle{
			X:      rng.Float64() * w,
			Y:      rng.Float64() * h,
			VX:     (rng.Float64() - 0.5) * 2,
			VY:     (rng.Float64() - 0.5) * 2,
			Radius: rng.Float64()*5 + 2,
			Color:  Palette[rng.Intn(len(Palette))],
		}
	}
	return ps
}

// StepParticle moves p by one velocity step and reflects it off the walls.
// A component is only negated while the particle is outside [r, extent-r]
// and still heading outward, so one crossing flips the sign once.
func StepParticle(p Particle, w, h float64) Particle {
	p.X += p.VX
	p.Y += p.VY
	if (p.X < p.Radius && p.VX < 0) || (p.X > w-p.Radius && p.VX > 0) {
		p.VX = -p.VX
	}
	if (p.Y < p.Radius && p.VY < 0) || (p.Y > h-p.Radius && p.VY > 0) {
		p.VY = -p.VY
	}
	return p
}

// Links returns every unordered pair closer than maxDist.
func Links(ps []Particle, maxDist float64) []Link {
	var links []Link
	for i := 0; i < len(ps); i++ {
		for j := i + 1; j < len(ps); j++ {
			d := math.Hypot(ps[i].X-ps[j].X, ps[i].Y-ps[j].Y)
			if d < maxDist {
				links = append(links, Link{A: i, B: j, Alpha: 1 - d/maxDist})
			}
		}
	}
	return links
}

type ParticleFlow struct {
	rng       *rand.Rand
	count     int
	particles []Particle
	links     []Link
	size      dynamo.Size
	playing   bool
}

func NewParticleFlow(rng *rand.Rand, count int) *ParticleFlow {
	if count == 0 {
		count = DefaultParticleCount
	}
	pf := &ParticleFlow{rng: rng, count: count, size: dynamo.DefaultSize(), playing: true}
	pf.Reset()
	return pf
}

func (pf *ParticleFlow) Name() string { return ParticlesName }

func (pf *ParticleFlow) Particles() []Particle { return pf.particles }

func (pf *ParticleFlow) Links() []Link { return pf.links }

func (pf *ParticleFlow) Advance(f dynamo.Frame) {
	if !pf.playing {
		return
	}
	for i := range pf.particles {
		pf.particles[i] = StepParticle(pf.particles[i], pf.size.Width, pf.size.Height)
	}
	pf.links = Links(pf.particles, LinkDistance)
}

// Reset replaces the whole set.
func (pf *ParticleFlow) Reset() {
	pf.particles = SpawnParticles(pf.rng, pf.count, pf.size.Width, pf.size.Height)
	pf.links = Links(pf.particles, LinkDistance)
}

func (pf *ParticleFlow) Resize(width, height float64) {
	pf.size = dynamo.Size{Width: width, Height: height}
	pf.Reset()
}

func (pf *ParticleFlow) Playing() bool { return pf.playing }

// SetPlaying toggles motion. Every toggle respawns the set.
func (pf *ParticleFlow) SetPlaying(playing bool) {
	if pf.playing != playing {
		pf.playing = playing
		pf.Reset()
	}
}

func (pf *ParticleFlow) Draw(s *dynamo.Scene) {
	s.Clear()
	s.Size = pf.size
	for _, p := range pf.particles {
		s.AddCircle(dynamo.Circle{Center: dynamo.Point{X: p.X, Y: p.Y}, Radius: p.Radius, Color: p.Color, Filled: true})
	}
	for _, l := range pf.links {
		a, b := pf.particles[l.A], pf.particles[l.B]
		s.AddLine(dynamo.Line{
			From:  dynamo.Point{X: a.X, Y: a.Y},
			To:    dynamo.Point{X: b.X, Y: b.Y},
			Color: linkColor,
			Alpha: l.Alpha,
			Width: 0.5,
		})
	}
	s.AddText(dynamo.Text{At: hintAnchor(pf.size), Content: particleHint, Color: hintColor})
}

// Labels reports aggregate motion since individual particles are not traced.
func (pf *ParticleFlow) Labels() []string {
	return []string{"links", "mean_speed"}
}

func (pf *ParticleFlow) Sample() dynamo.State {
	if len(pf.particles) == 0 {
		return dynamo.State{0, 0}
	}
	speed := 0.0
	for _, p := range pf.particles {
		speed += math.Hypot(p.VX, p.VY)
	}
	return dynamo.State{float64(len(pf.links)), speed / float64(len(pf.particles))}
}

func (pf *ParticleFlow) Params() []dynamo.ParamSpec {
	return []dynamo.ParamSpec{particleCount}
}

func (pf *ParticleFlow) GetParams() map[string]float64 {
	return map[string]float64{"count": float64(pf.count)}
}

func (pf *ParticleFlow) SetParam(name string, value float64) error {
	switch name {
	case "count":
		if err := dynamo.CheckBounds(particleCount, value); err != nil {
			return err
		}
		pf.count = int(math.Round(value))
		pf.Reset()
	default:
		return &dynamo.ParamError{Name: name, Wrapped: fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)}
	}
	return nil
}
