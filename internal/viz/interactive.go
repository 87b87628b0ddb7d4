package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/forcelayout/internal/config"
	"github.com/san-kum/forcelayout/internal/graphio"
	"github.com/san-kum/forcelayout/internal/sim"
)

var generatorInfo = map[string]string{
	"ba":   "scale-free tree",
	"ba2":  "scale-free, two links per node",
	"ring": "single cycle",
	"grid": "n x n lattice",
	"star": "hub and spokes",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var (
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	descStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
)

// launcher picks a generated graph and a preset, then hands over to Model.
type launcher struct {
	state       int
	cursor      int
	generators  []string
	selected    string
	presets     []string
	preset      int
	size, seed  int
	paramCursor int
	opts        []sim.Option
	live        Model
	err         error
}

func newLauncher(opts ...sim.Option) launcher {
	presets := config.ListPresets()
	preset := 0
	for i, p := range presets {
		if p == "default" {
			preset = i
		}
	}
	return launcher{
		generators: graphio.ListGenerators(),
		presets:    presets,
		preset:     preset,
		size:       100,
		seed:       1,
		opts:       opts,
	}
}

func (m launcher) Init() tea.Cmd { return nil }

func (m launcher) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		live, cmd := m.live.Update(msg)
		m.live = live.(Model)
		return m, cmd
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.state == stateMenu {
			return m.menuKey(msg)
		}
		return m.configKey(msg)
	}
	return m, nil
}

func (m launcher) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.generators)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.generators[m.cursor]
		m.state, m.paramCursor = stateConfig, 0
	}
	return m, nil
}

var configParams = []string{"size", "seed", "preset"}

func (m launcher) configKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q":
		m.state, m.err = stateMenu, nil
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(configParams)-1 {
			m.paramCursor++
		}
	case "left", "h":
		m.adjust(-1)
	case "right", "l":
		m.adjust(1)
	case "enter", "s":
		return m.start()
	}
	return m, nil
}

func (m *launcher) adjust(dir int) {
	switch configParams[m.paramCursor] {
	case "size":
		if dir > 0 {
			m.size *= 2
		} else {
			m.size = max(1, m.size/2)
		}
	case "seed":
		m.seed = max(0, m.seed+dir)
	case "preset":
		m.preset = (m.preset + dir + len(m.presets)) % len(m.presets)
	}
}

func (m launcher) start() (tea.Model, tea.Cmd) {
	spec, err := graphio.Generate(m.selected, m.size, int64(m.seed))
	if err != nil {
		m.err = err
		return m, nil
	}
	cfg := config.GetPreset(m.presets[m.preset])
	cfg.Layout.Seed = int64(m.seed)
	s, err := sim.New(spec, cfg.Builder(), m.opts...)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.live = NewModel(s, fmt.Sprintf("%s %d", m.selected, m.size))
	m.state = stateSim
	return m, m.live.Init()
}

func (m launcher) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	}
	return m.live.View()
}

func (m launcher) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render("FORCELAYOUT") + "\n    " + subStyle.Render("barnes-hut graph layout") + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, name := range m.generators {
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), activeStyle.Render(fmt.Sprintf("%-8s", name)), descStyle.Render(generatorInfo[name])))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", dimStyle.Render(fmt.Sprintf("%-8s", name)), dimStyle.Render(generatorInfo[name])))
		}
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m launcher) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render(strings.ToUpper(m.selected)) + "\n    " + subStyle.Render(generatorInfo[m.selected]) + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	values := []string{fmt.Sprint(m.size), fmt.Sprint(m.seed), m.presets[m.preset]}
	for i, name := range configParams {
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursorStyle.Render("▸"), activeStyle.Render(fmt.Sprintf("%-10s", name)), descStyle.Bold(true).Render(values[i])))
		} else {
			b.WriteString(fmt.Sprintf("      %s %s\n", dimStyle.Render(fmt.Sprintf("%-10s", name)), dimStyle.Render(values[i])))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + SparkLow.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyStyle.Render(pairs[i]) + dimStyle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

// RunInteractive opens the graph picker and then the live view.
func RunInteractive(opts ...sim.Option) error {
	_, err := tea.NewProgram(newLauncher(opts...), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
