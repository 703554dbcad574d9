package viz

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dronesim/internal/camera"
	"github.com/san-kum/dronesim/internal/control"
	"github.com/san-kum/dronesim/internal/physics"
	"github.com/san-kum/dronesim/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 22
	panelWidth      = 46
	trailCapacity   = 200
	historyCapacity = 300

	// side view scale in sub-pixels per meter
	sideScale = 4.0
)

type TickMsg time.Time

// ViewMode selects what the canvas shows.
type ViewMode int

const (
	SideView ViewMode = iota
	CameraView
)

func (v ViewMode) String() string {
	if v == CameraView {
		return "camera"
	}
	return "side"
}

type Options struct {
	FPS    int
	Theme  string
	Camera camera.Config
	// Spawn is where reset puts the drone back.
	Spawn physics.Pose
}

// Model is the terminal flight view. Each TickMsg runs one loop tick with
// the wall-clock time since the previous one.
type Model struct {
	loop *sim.Loop
	keys *Keyboard
	opts Options

	canvas  *Canvas
	theme   Theme
	st      styles
	view    ViewMode
	camMode camera.Mode

	frame    sim.Frame
	trail    []mgl64.Vec3
	altitude []float64
	speed    []float64

	paused   bool
	showHelp bool
	last     time.Time
	err      error
}

func NewModel(loop *sim.Loop, keys *Keyboard, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	theme := GetTheme(opts.Theme)
	m := Model{
		loop:     loop,
		keys:     keys,
		opts:     opts,
		canvas:   NewCanvas(canvasWidth, canvasHeight),
		theme:    theme,
		st:       newStyles(theme),
		trail:    make([]mgl64.Vec3, 0, trailCapacity),
		altitude: make([]float64, 0, historyCapacity),
		speed:    make([]float64, 0, historyCapacity),
	}
	m.frame = m.snapshot()
	return m
}

// Err returns the step error that ended the session, if any.
func (m Model) Err() error { return m.err }

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
			m.last = time.Time{}
		case "r":
			m.reset()
		case "v":
			m.view = (m.view + 1) % 2
		case "c":
			m.camMode = m.camMode.Next()
		case "t":
			m.theme = NextTheme(m.theme)
			m.st = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		default:
			if m.loop.Mixer().Config().Keys.Bound(control.Key(key)) {
				m.keys.Press(control.Key(key))
			}
		}
	case tea.WindowSizeMsg:
		m.canvas.Resize(max(msg.Width-panelWidth-4, 20), max(msg.Height-2, 8))
	case TickMsg:
		now := time.Time(msg)
		if m.paused {
			return m, m.tick()
		}
		if m.last.IsZero() {
			m.last = now
			return m, m.tick()
		}
		dt := now.Sub(m.last).Seconds()
		m.last = now
		f, err := m.loop.Tick(dt)
		if err != nil {
			m.err = err
			return m, tea.Quit
		}
		m.record(f)
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) record(f sim.Frame) {
	m.frame = f
	m.trail = pushVec(m.trail, f.Position, trailCapacity)
	m.altitude = pushFloat(m.altitude, f.Position.Y(), historyCapacity)
	m.speed = pushFloat(m.speed, f.LinearVelocity.Len(), historyCapacity)
}

func (m *Model) reset() {
	if err := m.loop.Simulation().Reset(m.opts.Spawn); err != nil {
		m.err = err
		return
	}
	m.loop.Mixer().Reset()
	m.keys.ReleaseAll()
	m.trail = m.trail[:0]
	m.altitude = m.altitude[:0]
	m.speed = m.speed[:0]
	m.last = time.Time{}
	m.frame = m.snapshot()
}

// snapshot builds a frame from the current simulation state without
// stepping it.
func (m *Model) snapshot() sim.Frame {
	s := m.loop.Simulation()
	pose := s.Pose()
	return sim.Frame{
		T:               m.loop.Time(),
		Position:        pose.Position,
		Orientation:     pose.Orientation,
		LinearVelocity:  s.LinearVelocity(),
		AngularVelocity: s.AngularVelocity(),
		Channels:        m.loop.Mixer().Channels(),
		Contact:         s.InContact(),
		Energy:          s.Energy(),
	}
}

func pushVec(s []mgl64.Vec3, v mgl64.Vec3, capacity int) []mgl64.Vec3 {
	if len(s) >= capacity {
		s = append(s[:0], s[1:]...)
	}
	return append(s, v)
}

func pushFloat(s []float64, v float64, capacity int) []float64 {
	if len(s) >= capacity {
		s = append(s[:0], s[1:]...)
	}
	return append(s, v)
}

func (m Model) View() string {
	m.draw()
	canvasView := m.st.canvas.Render(m.canvas.String())
	panel := m.st.panel.Render(m.panel())
	layout := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panel)
	if m.showHelp {
		return helpText + "\n" + layout
	}
	return layout
}

func (m Model) panel() string {
	f := m.frame
	var s strings.Builder

	status := m.st.running.Render("FLYING")
	switch {
	case m.err != nil:
		status = m.st.warning.Render("ERROR " + m.err.Error())
	case m.paused:
		status = m.st.paused.Render("PAUSED")
	case f.Contact:
		status = m.st.paused.Render("LANDED")
	}
	s.WriteString(m.st.header.Render("DRONESIM") + "  " + status + "\n")

	row := func(label, value string) {
		s.WriteString(m.st.label.Render(label) + m.st.value.Render(value) + "\n")
	}
	heading := camera.Heading(f.Orientation)
	row("Time", fmt.Sprintf("%.2fs", f.T))
	row("Position", fmt.Sprintf("%7.2f %7.2f %7.2f", f.Position.X(), f.Position.Y(), f.Position.Z()))
	row("Speed", fmt.Sprintf("%.2f m/s", f.LinearVelocity.Len()))
	row("Heading", fmt.Sprintf("%03.0f° %s", heading, camera.Cardinal(heading)))
	row("Tilt", fmt.Sprintf("%.1f°", tiltDeg(f.Pose())))

	input := "keyboard"
	if m.loop.Mixer().GamepadActive() {
		input = "gamepad"
	}
	row("Input", m.st.accent.Render(input))
	row("View", fmt.Sprintf("%s / %s", m.view, m.camMode))

	s.WriteString("\n" + m.st.Separator(panelWidth-6) + "\n")
	ch := f.Channels
	mcfg := m.loop.Mixer().Config()
	for _, a := range control.Axes {
		r := mcfg.Range(a)
		bar := m.st.ChannelBar(ch.Normalized.Get(a), r.Centered, 16)
		s.WriteString(m.st.label.Render(a.String()) + bar + m.st.value.Render(fmt.Sprintf(" %5.0f", ch.Raw.Get(a))) + "\n")
	}

	if len(m.altitude) > 1 {
		chart := asciigraph.Plot(m.altitude, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("altitude"))
		s.WriteString("\n" + m.st.graph.Render(chart) + "\n")
	}
	if len(m.speed) > 1 {
		s.WriteString(m.st.label.Render("speed") + m.st.SparklineChart(m.speed, 30) + "\n")
	}

	stats := m.loop.Simulation().Stats()
	if stats.PoseDiscards > 0 || stats.LinearClamps > 0 || stats.AngularClamps > 0 {
		s.WriteString(m.st.paused.Render(fmt.Sprintf("\ndiscards %d  clamps %d/%d", stats.PoseDiscards, stats.LinearClamps, stats.AngularClamps)) + "\n")
	}

	s.WriteString(m.st.help.Render("W/S throttle  ←/→ pitch  ↑/↓ roll  A/D yaw\nSP pause  R reset  V view  C camera  T theme  ? help  Q quit"))
	return s.String()
}

func tiltDeg(p physics.Pose) float64 {
	cos := math.Max(-1, math.Min(1, p.Up().Dot(physics.AxisUp)))
	return mgl64.RadToDeg(math.Acos(cos))
}

const helpText = `
╔══════════════════════════════════════╗
║            FLIGHT CONTROLS            ║
╠══════════════════════════════════════╣
║  W / S      - Throttle up / down      ║
║  Up / Down  - Roll                    ║
║  Right/Left - Pitch                   ║
║  A / D      - Yaw                     ║
║  Space      - Pause / resume          ║
║  R          - Reset to spawn          ║
║  V          - Side / camera view      ║
║  C          - Chase / FPV camera      ║
║  T          - Cycle themes            ║
║  Q          - Quit                    ║
╚══════════════════════════════════════╝`

// Run drives the model until the user quits or ctx is done.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
