package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/metrics"
	"github.com/san-kum/forcelayout/internal/sim"
)

const (
	width           = 80
	height          = 24
	statsWidth      = 46
	historyCapacity = 600
	maxStepsPerTick = 32

	// sub-pixels moved per key press
	panStep  = 8
	dragStep = 4

	// terminal cells between the screen origin and the canvas
	canvasPadX = 2
	canvasPadY = 1
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model drives a simulator from the Bubble Tea event loop. Each frame runs
// stepsPerTick ticks and redraws the canvas from the latest snapshot.
type Model struct {
	sim          *sim.Simulator
	graph        *layout.Graph
	rec          *metrics.Recorder
	title        string
	canvas       *Canvas
	cam          Camera
	pinned       []bool
	selected     int
	stepsPerTick int
	theme        int
	showHelp     bool
	err          error
}

// NewModel attaches a metrics recorder to s. The caller keeps ownership of s.
func NewModel(s *sim.Simulator, title string) Model {
	g := s.Graph()
	rec := metrics.NewRecorder(historyCapacity, metrics.Defaults()...)
	s.AddObserver(rec)

	pinned := make([]bool, g.Len())
	for i := range pinned {
		pinned[i] = g.Pinned(i)
	}
	m := Model{
		sim:          s,
		graph:        g,
		rec:          rec,
		title:        title,
		canvas:       NewCanvas(width-statsWidth, height),
		cam:          NewCamera(),
		pinned:       pinned,
		selected:     -1,
		stepsPerTick: 1,
	}
	m.follow()
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		for i := 0; i < m.stepsPerTick; i++ {
			if !m.sim.Step() {
				break
			}
		}
		m.follow()
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.sim.SetRunning(!m.sim.Running())
	case "tab":
		m.cycleSelection(1)
	case "shift+tab":
		m.cycleSelection(-1)
	case "esc":
		m.selected = -1
	case "h":
		m.drag(-dragStep, 0)
	case "l":
		m.drag(dragStep, 0)
	case "k":
		m.drag(0, -dragStep)
	case "j":
		m.drag(0, dragStep)
	case "p":
		m.togglePin()
	case "left":
		m.cam.Pan(-panStep, 0)
	case "right":
		m.cam.Pan(panStep, 0)
	case "up":
		m.cam.Pan(0, -panStep)
	case "down":
		m.cam.Pan(0, panStep)
	case "+", "=":
		m.cam.Zoom(1.25)
	case "-", "_":
		m.cam.Zoom(0.8)
	case "c":
		m.cam.Follow = true
		m.follow()
	case "[":
		m.stepsPerTick = max(1, m.stepsPerTick/2)
	case "]":
		m.stepsPerTick = min(maxStepsPerTick, m.stepsPerTick*2)
	case "t":
		m.theme = (m.theme + 1) % len(Themes)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	cw := max(10, w-statsWidth-6)
	ch := max(5, h-3)
	m.canvas = NewCanvas(cw, ch)
	m.follow()
}

// follow refits the camera while it is tracking the layout.
func (m *Model) follow() {
	if m.cam.Follow {
		w, h := m.canvas.Dots()
		m.cam.Fit(m.sim.Snapshot(), w, h)
	}
}

func (m *Model) cycleSelection(dir int) {
	n := m.graph.Len()
	if n == 0 {
		return
	}
	if m.selected < 0 {
		if dir > 0 {
			m.selected = 0
		} else {
			m.selected = n - 1
		}
		return
	}
	m.selected = (m.selected + dir + n) % n
}

// drag moves the selected node by (dx, dy) canvas sub-pixels.
func (m *Model) drag(dx, dy int) {
	if m.selected < 0 {
		return
	}
	p := m.sim.Snapshot().Point(m.selected)
	p.X += float64(dx) / m.cam.Scale
	p.Y -= float64(dy) / m.cam.Scale
	m.err = m.sim.SetNodePosition(m.graph.ID(m.selected), p.X, p.Y)
}

// handleMouse selects the node nearest a left click and drags it while the
// button is held.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.showHelp || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	w, h := m.canvas.Dots()
	x := (msg.X-canvasPadX)*2 + 1
	y := (msg.Y-canvasPadY)*4 + 2
	if offscreen(x, y, w, h) {
		return m, nil
	}
	p := m.cam.Unproject(x, y, w, h)
	switch msg.Action {
	case tea.MouseActionPress:
		m.selected = nearest(m.sim.Snapshot(), p)
	case tea.MouseActionMotion:
		if m.selected >= 0 {
			m.err = m.sim.SetNodePosition(m.graph.ID(m.selected), p.X, p.Y)
		}
	}
	return m, nil
}

// nearest returns the index of the node closest to p, or -1.
func nearest(snap *layout.Snapshot, p layout.Vec2) int {
	best, bestDist := -1, 0.0
	for i := range snap.Nodes {
		if d := snap.Point(i).Dist(p); best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func (m *Model) togglePin() {
	if m.selected < 0 {
		return
	}
	pin := !m.pinned[m.selected]
	m.err = m.sim.SetPinned(m.graph.ID(m.selected), pin)
	if m.err == nil {
		m.pinned[m.selected] = pin
	}
}

// draw renders snap onto the canvas, fitting the camera first when it is
// following the layout.
func (m *Model) draw(snap *layout.Snapshot) {
	w, h := m.canvas.Dots()
	if m.cam.Follow {
		m.cam.Fit(snap, w, h)
	}
	m.canvas.Clear()
	for _, l := range m.graph.Links() {
		if l.A == l.B {
			continue
		}
		x0, y0 := m.cam.Project(snap.Point(l.A), w, h)
		x1, y1 := m.cam.Project(snap.Point(l.B), w, h)
		if offscreen(x0, y0, w, h) && offscreen(x1, y1, w, h) {
			continue
		}
		m.canvas.DrawLine(x0, y0, x1, y1)
	}
	for i := range snap.Nodes {
		x, y := m.cam.Project(snap.Point(i), w, h)
		if m.pinned[i] {
			m.canvas.Box(x, y, 1)
		} else {
			m.canvas.Dot(x, y)
		}
	}
	if m.selected >= 0 && m.selected < snap.Len() {
		x, y := m.cam.Project(snap.Point(m.selected), w, h)
		m.canvas.Cross(x, y, 3)
	}
}

func offscreen(x, y, w, h int) bool {
	return x < 0 || y < 0 || x >= w || y >= h
}

func (m Model) View() string {
	theme := Themes[m.theme]
	snap := m.sim.Snapshot()
	m.draw(snap)

	canvasView := canvasStyle.Render(fg(theme.Graph).Render(m.canvas.String()))

	var s strings.Builder
	s.WriteString(fg(theme.Accent).Bold(true).Render(strings.ToUpper(m.title)) + "\n")
	status := fg(theme.Running).Bold(true).Render("RUNNING")
	if !m.sim.Running() {
		status = fg(theme.Paused).Bold(true).Render("PAUSED")
	}
	s.WriteString(fmt.Sprintf("%s  %s\n\n", status, fg(theme.Muted).Render(m.sim.State().String())))

	ke := m.rec.Series("kinetic_energy")
	if len(ke) > 1 {
		chart := asciigraph.Plot(ke, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	values := m.rec.Values()
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	avg := m.sim.SmoothedAveragePosition()
	row("Tick", fmt.Sprintf("%d (x%d)", snap.Tick, m.stepsPerTick))
	row("Nodes", fmt.Sprintf("%d / %d edges", m.graph.Len(), len(m.graph.Links())))
	row("Center", fmt.Sprintf("(%.2f, %.2f)", avg.X, avg.Y))
	row("Spread", fmt.Sprintf("%.2f", values["spread"]))
	row("Speed", fmt.Sprintf("%.3f %s", values["mean_speed"], SparklineChart(m.rec.Series("mean_speed"), 16)))
	row("Frozen", fmt.Sprintf("%.0f%%", values["frozen_fraction"]*100))
	row("Settled", ProgressBar(1-values["settling"], 20))

	if m.selected >= 0 {
		s.WriteString("\n" + fg(theme.Selected).Bold(true).Render("SELECTED") + "\n")
		id := m.graph.ID(m.selected)
		p := snap.Point(m.selected)
		name := m.graph.Label(m.selected)
		if name == "" {
			name = fmt.Sprint(id)
		}
		row("Node", name)
		row("Position", fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y))
		if f, err := m.sim.Force(id); err == nil {
			row("Force", fmt.Sprintf("%.3f", f.Len()))
		}
		if m.pinned[m.selected] {
			row("Pinned", "yes")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + SparkLow.Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("─────────────────────\nSP:Pause Q:Quit ?:Help\nTab:Select HJKL:Drag P:Pin"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  Tab      - Select next node         ║
║  H/J/K/L  - Drag selected node       ║
║  P        - Pin/unpin selected node  ║
║  Mouse    - Click to select, drag    ║
║  Esc      - Clear selection          ║
║  Arrows   - Pan                      ║
║  +/-      - Zoom                     ║
║  C        - Follow the layout        ║
║  [ ]      - Ticks per frame          ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// Run shows s full-screen until the user quits.
func Run(s *sim.Simulator, title string) error {
	_, err := tea.NewProgram(NewModel(s, title), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
