package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var (
	ThemeTeal = Theme{
		Name:    "teal",
		Primary: lipgloss.Color("#0d9488"),
		Accent:  lipgloss.Color("#0891b2"),
		Text:    lipgloss.Color("#e2e8f0"),
		Muted:   lipgloss.Color("#475569"),
		Success: lipgloss.Color("#16a34a"),
		Warning: lipgloss.Color("#d97706"),
		Error:   lipgloss.Color("#dc2626"),
	}

	ThemeIndigo = Theme{
		Name:    "indigo",
		Primary: lipgloss.Color("#4f46e5"),
		Accent:  lipgloss.Color("#7c3aed"),
		Text:    lipgloss.Color("#eef2ff"),
		Muted:   lipgloss.Color("#6366f1"),
		Success: lipgloss.Color("#22c55e"),
		Warning: lipgloss.Color("#f59e0b"),
		Error:   lipgloss.Color("#ef4444"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Success: lipgloss.Color("#00ff00"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff0000"),
	}

	CurrentTheme = ThemeTeal

	Themes = []Theme{
		ThemeTeal,
		ThemeIndigo,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeTeal
}

// SetTheme changes the current theme
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme cycles to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = ThemeTeal
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
