package viz

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mindwave/internal/dynamo"
	"github.com/san-kum/mindwave/internal/frame"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 300
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	graphStyle  = lipgloss.NewStyle().Padding(1, 0)
)

// FrameMsg carries a scheduler frame into the bubbletea event loop.
type FrameMsg dynamo.Frame

type Options struct {
	Clock    frame.Clock
	Interval time.Duration
	// Chart names the observable plotted beside the canvas.
	Chart  string
	Logger *log.Logger
}

// Model renders one simulation. The scheduler runs on its own goroutine
// and forwards frames through a one-slot channel; the bubbletea loop is
// the only goroutine that touches the simulation.
type Model struct {
	sim      dynamo.Simulation
	sched    *frame.Scheduler
	frames   chan dynamo.Frame
	canvas   *Canvas
	scene    *dynamo.Scene
	params   []dynamo.ParamSpec
	selected int
	chart    string
	history  []float64
	status   string
	logger   *log.Logger
	showHelp bool
	frameN   uint64
	started  time.Time
	lastNow  time.Time
}

func NewModel(sim dynamo.Simulation, opts Options) Model {
	frames := make(chan dynamo.Frame, 1)
	handler := func(f dynamo.Frame) {
		select {
		case frames <- f:
		default:
		}
	}
	var params []dynamo.ParamSpec
	if d, ok := sim.(dynamo.Described); ok {
		params = d.Params()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := Model{
		sim:     sim,
		sched:   frame.NewScheduler(opts.Clock, opts.Interval, handler),
		frames:  frames,
		canvas:  NewCanvas(width, height),
		scene:   dynamo.NewScene(dynamo.DefaultSize()),
		params:  params,
		chart:   opts.Chart,
		history: make([]float64, 0, historyCapacity),
		logger:  logger,
	}
	m.redraw()
	return m
}

func (m Model) Sim() dynamo.Simulation { return m.sim }

func (m Model) Init() tea.Cmd {
	if m.sim.Playing() {
		m.sched.Start()
	}
	return waitFrame(m.frames)
}

// Close stops the frame loop. Safe to call more than once.
func (m Model) Close() {
	m.sched.Stop()
}

func waitFrame(ch <-chan dynamo.Frame) tea.Cmd {
	return func() tea.Msg {
		return FrameMsg(<-ch)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Close()
			return m, tea.Quit
		case " ", "space":
			m.togglePlaying()
		case "r":
			m.restart(func() { m.sim.Reset() })
			m.history = m.history[:0]
			m.status = "reset"
		case "tab":
			if len(m.params) > 0 {
				m.selected = (m.selected + 1) % len(m.params)
			}
		case "up", "k":
			m.adjustParam(1)
		case "down", "j":
			m.adjustParam(-1)
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
		m.redraw()
	case FrameMsg:
		f := dynamo.Frame(msg)
		if f.Gen == m.sched.Current() {
			m.onFrame(f)
		}
		return m, waitFrame(m.frames)
	}
	return m, nil
}

func (m *Model) onFrame(f dynamo.Frame) {
	if f.First {
		m.started = f.Now
	}
	m.lastNow = f.Now
	m.frameN++
	m.sim.Advance(f)
	m.record()
	m.redraw()
}

func (m *Model) togglePlaying() {
	playing := !m.sim.Playing()
	m.sched.Stop()
	m.sim.SetPlaying(playing)
	if playing {
		m.sched.Start()
		m.status = "playing"
	} else {
		m.status = "paused"
	}
}

// restart runs change with the loop stopped, then opens a new generation
// so no frame from the old loop reaches the new state.
func (m *Model) restart(change func()) {
	m.sched.Stop()
	change()
	if m.sim.Playing() {
		m.sched.Start()
	}
}

func (m *Model) adjustParam(dir float64) {
	if len(m.params) == 0 {
		return
	}
	c, ok := m.sim.(dynamo.Configurable)
	if !ok {
		return
	}
	spec := m.params[m.selected]
	next := c.GetParams()[spec.Name] + dir*spec.Step
	next = math.Round(next/spec.Step) * spec.Step

	var err error
	if spec.Restart {
		m.restart(func() { err = c.SetParam(spec.Name, next) })
	} else {
		err = c.SetParam(spec.Name, next)
	}
	if err != nil {
		m.status = err.Error()
		m.logger.Debug("param rejected", "param", spec.Name, "value", next, "err", err)
		return
	}
	m.status = fmt.Sprintf("%s = %g", spec.Name, next)
}

func (m *Model) record() {
	o, ok := m.sim.(dynamo.Observable)
	if !ok || m.chart == "" {
		return
	}
	idx := slices.Index(o.Labels(), m.chart)
	if idx < 0 {
		return
	}
	sample := o.Sample()
	if idx >= len(sample) {
		return
	}
	m.history = append(m.history, sample[idx])
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func (m *Model) redraw() {
	m.sim.Draw(m.scene)
	m.canvas.Rasterize(m.scene)
}

func (m Model) hint() string {
	if len(m.scene.Texts) == 0 {
		return ""
	}
	return m.scene.Texts[0].Content
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(Title().MarginBottom(1).Render(strings.ToUpper(m.sim.Name())) + "\n")
	if m.sim.Playing() {
		s.WriteString(StatusRunning().Render("PLAYING") + "\n\n")
	} else {
		s.WriteString(StatusPaused().Render("PAUSED") + "\n\n")
	}

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption(m.chart))
		s.WriteString(graphStyle.Foreground(CurrentTheme.Accent).Render(chart) + "\n\n")
	}

	elapsed := 0.0
	if !m.started.IsZero() {
		elapsed = m.lastNow.Sub(m.started).Seconds()
	}
	s.WriteString(Label().Render("Frames") + Value().Render(fmt.Sprintf("%d", m.frameN)) + "\n")
	s.WriteString(Label().Render("Elapsed") + Value().Render(fmt.Sprintf("%.1fs", elapsed)) + "\n")

	s.WriteString("\nPARAMETERS\n")
	if c, ok := m.sim.(dynamo.Configurable); ok && len(m.params) > 0 {
		values := c.GetParams()
		for i, p := range m.params {
			v := values[p.Name]
			ratio := (v - p.Min) / (p.Max - p.Min)
			line := fmt.Sprintf("%-10s %s %g", p.Name, ProgressBar(ratio, 10), v)
			if i == m.selected {
				s.WriteString(Selected().Render("> ") + line + "\n")
			} else {
				s.WriteString("  " + line + "\n")
			}
		}
	} else {
		s.WriteString(Subtle.Render("  (none)") + "\n")
	}
	if m.status != "" {
		s.WriteString("\n" + Subtle.Render(m.status) + "\n")
	}
	s.WriteString(KeyHint.Render("\nSP:Pause R:Reset Q:Quit\nTab:Param ↑↓:Tune T:Theme ?:Help"))

	canvasView := canvasStyle.Render(m.canvas.String() + "\n" + Subtle.Render(m.hint()))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Play               ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter       ║
║  Down/J   - Decrease parameter       ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`
