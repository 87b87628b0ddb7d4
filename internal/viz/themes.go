package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the viewer
type Theme struct {
	Name     string
	Graph    lipgloss.Color
	Accent   lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Running  lipgloss.Color
	Paused   lipgloss.Color
	Selected lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:     "cyberpunk",
		Graph:    lipgloss.Color("#00ffff"),
		Accent:   lipgloss.Color("#ff00ff"),
		Text:     lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#666688"),
		Running:  lipgloss.Color("#00ff88"),
		Paused:   lipgloss.Color("#ffaa00"),
		Selected: lipgloss.Color("#ffff00"),
	}

	ThemeRetroGreen = Theme{
		Name:     "retro",
		Graph:    lipgloss.Color("#00ff00"),
		Accent:   lipgloss.Color("#88ff88"),
		Text:     lipgloss.Color("#00ff00"),
		Muted:    lipgloss.Color("#005500"),
		Running:  lipgloss.Color("#88ff88"),
		Paused:   lipgloss.Color("#ffff00"),
		Selected: lipgloss.Color("#ffffff"),
	}

	ThemeMinimal = Theme{
		Name:     "minimal",
		Graph:    lipgloss.Color("#cccccc"),
		Accent:   lipgloss.Color("#0088ff"),
		Text:     lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#888888"),
		Running:  lipgloss.Color("#00ff00"),
		Paused:   lipgloss.Color("#ffaa00"),
		Selected: lipgloss.Color("#ff4444"),
	}

	ThemeOcean = Theme{
		Name:     "ocean",
		Graph:    lipgloss.Color("#00a8cc"),
		Accent:   lipgloss.Color("#ffd700"),
		Text:     lipgloss.Color("#e0f0ff"),
		Muted:    lipgloss.Color("#4488aa"),
		Running:  lipgloss.Color("#00ff88"),
		Paused:   lipgloss.Color("#ffcc00"),
		Selected: lipgloss.Color("#ff4444"),
	}

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
