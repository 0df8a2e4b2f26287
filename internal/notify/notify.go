// Package notify delivers short user-facing notices, the terminal
// counterpart of a toast.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

type Variant int

const (
	Default Variant = iota
	Destructive
)

type Notice struct {
	Title       string
	Description string
	Variant     Variant
}

func Error(description string) Notice {
	return Notice{Title: "Error", Description: description, Variant: Destructive}
}

type Notifier interface {
	Notify(n Notice)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0d9488"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#dc2626"))
	descStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
)

// Console prints one styled line per notice.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Notify(n Notice) {
	style := titleStyle
	if n.Variant == Destructive {
		style = errorStyle
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%s %s\n", style.Render(n.Title), descStyle.Render(n.Description))
}

// Recorder keeps every notice. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Last returns the newest notice, or false when none arrived.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

type discard struct{}

func (discard) Notify(Notice) {}

var Discard Notifier = discard{}
