package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/mindwave/internal/dynamo"
)

var gameInfo = map[string]string{
	"pendulum":  "breathe with the swing",
	"particles": "watch the flow and connections",
	"waves":     "breathe in rhythm with the waves",
}

// Factory builds a simulation by game name.
type Factory func(name string) (dynamo.Simulation, error)

const (
	stateMenu = iota
	stateSim
)

// App is the game picker. Leaving a game with esc returns to the menu;
// picking another game reports the switch through OnSelect.
type App struct {
	state    int
	cursor   int
	games    []string
	factory  Factory
	opts     func(name string) Options
	live     Model
	err      error
	OnSelect func(name string)
}

func NewApp(games []string, factory Factory, opts func(name string) Options) *App {
	return &App{games: games, factory: factory, opts: opts}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.state == stateSim {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			a.live.Close()
			a.state = stateMenu
			return a, nil
		}
		next, cmd := a.live.Update(msg)
		a.live = next.(Model)
		return a, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}
	switch k.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.games)-1 {
			a.cursor++
		}
	case "enter", " ":
		return a.start(a.games[a.cursor])
	}
	return a, nil
}

func (a App) start(name string) (App, tea.Cmd) {
	sim, err := a.factory(name)
	if err != nil {
		a.err = err
		return a, nil
	}
	a.err = nil
	var opts Options
	if a.opts != nil {
		opts = a.opts(name)
	}
	if a.OnSelect != nil {
		a.OnSelect(name)
	}
	a.live = NewModel(sim, opts)
	a.state = stateSim
	return a, a.live.Init()
}

// Selected returns the game under the cursor.
func (a App) Selected() string {
	return a.games[a.cursor]
}

func (a App) View() string {
	if a.state == stateSim {
		return a.live.View()
	}
	var b strings.Builder
	b.WriteString("\n\n    " + Title().Render("MINDWAVE") + "\n    " + Subtle.Render("relaxation games") + "\n    " + Subtle.Render("─────────────────────────") + "\n\n")
	for i, name := range a.games {
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", Selected().Render("▸"), lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%-12s", name)), Value().Render(gameInfo[name])))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", Subtle.Render(fmt.Sprintf("%-12s", name)), Subtle.Render(gameInfo[name])))
		}
	}
	if a.err != nil {
		b.WriteString("\n    " + ErrorText().Render(a.err.Error()) + "\n")
	}
	b.WriteString("\n    " + KeyHint.Render("j/k navigate  enter play  esc back  q quit") + "\n")
	return b.String()
}

// Close stops any running game loop.
func (a App) Close() {
	if a.state == stateSim {
		a.live.Close()
	}
}
