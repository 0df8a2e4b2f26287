package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mindwave/internal/viz"
)

const (
	EmptyMood     = "No mood data available yet"
	EmptyActivity = "No activity data available yet"
	EmptySessions = "No game sessions recorded yet"
	recentRows    = 5
)

var (
	positive = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	negative = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
)

// MoodChart plots mood on a fixed 0..10 axis.
func MoodChart(points []MoodPoint, width int) string {
	if len(points) == 0 {
		return viz.Subtle.Render(EmptyMood)
	}
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = float64(p.Value)
	}
	if len(values) == 1 {
		values = append(values, values[0])
	}
	chart := asciigraph.Plot(values,
		asciigraph.Height(8),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(10),
		asciigraph.Precision(0),
	)
	days := make([]string, len(points))
	for i, p := range points {
		days[i] = p.Day
	}
	return chart + "\n" + viz.Subtle.Render(points[0].Date+" .. "+points[len(points)-1].Date+"  "+strings.Join(days, " "))
}

func ActivityBars(acts []Activity, width int) string {
	if len(acts) == 0 {
		return viz.Subtle.Render(EmptyActivity)
	}
	var b strings.Builder
	for _, a := range acts {
		fmt.Fprintf(&b, "%-10s %s %3.0f%%  %s\n",
			a.Name, viz.ProgressBar(a.Percent, width), a.Percent*100, FormatDuration(a.Seconds))
	}
	return strings.TrimRight(b.String(), "\n")
}

func deltaCell(d Delta) string {
	cell := fmt.Sprintf("%-6s", d.String())
	if !d.Known {
		return cell
	}
	if d.Positive() {
		return positive.Render(cell)
	}
	return negative.Render(cell)
}

func moodCell(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}

// SessionsTable lists the newest sessions.
func SessionsTable(d Dashboard) string {
	if len(d.Sessions) == 0 {
		return viz.Subtle.Render(EmptySessions)
	}
	var b strings.Builder
	b.WriteString(viz.Title().Render(fmt.Sprintf("%-13s %-10s %-9s %-7s %-7s %s", "Date", "Game", "Duration", "Before", "After", "Change")))
	b.WriteString("\n")
	for i, s := range d.Sessions {
		if i == recentRows {
			break
		}
		fmt.Fprintf(&b, "%-13s %-10s %-9s %-7s %-7s %s\n",
			s.CreatedAt.Format("Jan 2, 2006"),
			capitalize(s.GameType),
			FormatDuration(s.DurationSeconds),
			moodCell(s.PreGameMood),
			moodCell(s.PostGameMood),
			deltaCell(MoodDelta(s)),
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

func InsightList(insights []Insight) string {
	var b strings.Builder
	for _, in := range insights {
		b.WriteString(viz.Selected().Render(in.Title))
		b.WriteString("\n")
		b.WriteString(viz.Value().Render(in.Description))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Render lays out every dashboard section for a terminal of width columns.
func Render(d Dashboard, width int) string {
	if width < 40 {
		width = 40
	}
	inner := width - 8
	sections := []string{
		viz.Title().Render("Mood Trends"),
		MoodChart(d.Moods, inner),
		"",
		viz.Title().Render("Activity Breakdown"),
		ActivityBars(d.Activity, inner/2),
		"",
		viz.Title().Render("Recent Sessions"),
		SessionsTable(d),
		"",
		viz.Title().Render("Insights"),
		InsightList(d.Insights),
	}
	return viz.Panel.Width(width).Render(strings.Join(sections, "\n"))
}
