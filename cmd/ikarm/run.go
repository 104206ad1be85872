package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/gwillem/ikarm/pkg/kinematics"
	"github.com/gwillem/ikarm/pkg/logging"
	"github.com/gwillem/ikarm/pkg/plot"
	"github.com/gwillem/ikarm/pkg/robot"
	"github.com/gwillem/ikarm/pkg/viz"
)

type RunCommand struct {
	Config   string  `long:"config" default:"ikarm.json" description:"Configuration file (optional)"`
	L1       float64 `long:"l1" description:"Length of the first link"`
	L2       float64 `long:"l2" description:"Length of the second link"`
	Hz       int     `long:"hz" description:"Repaint frequency"`
	Target   string  `long:"target" description:"Initial target as x,y"`
	Port     string  `long:"port" description:"Serial port of a servo arm that mirrors the pose"`
	LogFile  string  `long:"log-file" description:"Write a JSON log to this file"`
	LogLevel string  `long:"log-level" default:"info" description:"Log level (debug, info, warn, error)"`
}

const (
	headerHeight = 2 // title + blank line
	statusHeight = 1 // pose line
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
	axisWidth    = 6 // y labels and axis
	axisHeight   = 2 // x labels and axis
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	poseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

type runModel struct {
	ctx      context.Context
	state    *viz.State
	plot     *plot.Plot
	snap     viz.Snapshot
	interval time.Duration
	width    int      // terminal width
	height   int      // terminal height
	logs     []string // last N log messages
	quitting bool
}

type tickMsg time.Time

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func newRunModel(ctx context.Context, state *viz.State, hz int) runModel {
	links := state.Links()
	m := runModel{
		ctx:      ctx,
		state:    state,
		plot:     plot.New(80, 40, plot.BoundsFor(links), links),
		interval: time.Second / time.Duration(hz),
	}
	m.snap = state.Tick(ctx, time.Now())
	m.plot.Draw(m.snap.Pose, m.snap.Target)
	return m
}

func (m *runModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// chartSize calculates the plot size so that the graph area keeps a 1:1
// aspect ratio in world units. Terminal cells are about twice as tall as
// wide, so the graph gets two columns per row.
func (m *runModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 40 // default size before we know terminal size
	}
	width = m.width - borderSize
	height = m.height - headerHeight - statusHeight - footerHeight - borderSize

	graphW := width - axisWidth
	graphH := height - axisHeight
	if graphW > 2*graphH {
		graphW = 2 * graphH
	} else {
		graphH = graphW / 2
	}
	if graphH < 8 {
		graphH = 8
		graphW = 16
	}
	return graphW + axisWidth, graphH + axisHeight
}

func (m *runModel) resizeChart() {
	w, h := m.chartSize()
	m.plot.Resize(w, h)
	m.plot.Draw(m.snap.Pose, m.snap.Target)
}

// pressTarget converts a terminal cell to a world point. The chart starts
// below the header, inside its border.
func (m *runModel) pressTarget(x, y int) (kinematics.Point, bool) {
	col := x - 1
	row := y - headerHeight - 1
	return m.plot.Viewport().CellToWorld(col, row)
}

func (m runModel) Init() tea.Cmd {
	return tick(m.interval)
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		target, ok := m.pressTarget(msg.X, msg.Y)
		if !ok {
			return m, nil
		}
		snap, line := m.state.Dispatch(m.ctx, viz.Press{At: time.Now(), Target: target})
		m.snap = snap
		m.plot.Draw(snap.Pose, snap.Target)
		m.addLog(line)
		return m, tea.Println(line)

	case tickMsg:
		snap, _ := m.state.Dispatch(m.ctx, viz.Tick{At: time.Time(msg)})
		if snap.Error != nil {
			m.addLog(fmt.Sprintf("[%s] Follower error: %v", snap.Timestamp.Format("15:04:05"), snap.Error))
		}
		m.snap = snap
		m.plot.Draw(snap.Pose, snap.Target)
		return m, tick(m.interval)
	}

	return m, nil
}

func (m runModel) View() string {
	if m.quitting {
		return "Visualizer stopped.\n"
	}

	var sb strings.Builder

	// Header
	links := m.state.Links()
	sb.WriteString(titleStyle.Render("ikarm"))
	sb.WriteString(fmt.Sprintf(" - L1 = %.2f, L2 = %.2f", links.L1, links.L2))
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")

	// Chart
	sb.WriteString(chartStyle.Render(m.plot.View()))
	sb.WriteString("\n")

	// Pose
	d1, d2 := m.snap.Pose.Angles.Degrees()
	sb.WriteString(poseStyle.Render(fmt.Sprintf("θ₁ = %6.1f°  θ₂ = %6.1f°  end = (%.2f, %.2f)",
		d1, d2, m.snap.Pose.End.X, m.snap.Pose.End.Y)))
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(m.width-4, 20))

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Click inside the plot to set the target, 'q' to quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))

	// Fill the terminal so mouse rows match view rows
	if m.height > 0 {
		return lipgloss.PlaceVertical(m.height, lipgloss.Top, sb.String())
	}
	return sb.String()
}

func (c *RunCommand) config() (*robot.Config, error) {
	cfg, err := robot.LoadConfigOrDefault(c.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if c.L1 != 0 {
		cfg.L1 = c.L1
	}
	if c.L2 != 0 {
		cfg.L2 = c.L2
	}
	if c.Hz != 0 {
		cfg.Hz = c.Hz
	}
	if c.Port != "" {
		cfg.Follower.Port = c.Port
	}
	if c.Target != "" {
		p, err := parseTarget(c.Target)
		if err != nil {
			return nil, err
		}
		cfg.Target = &robot.Target{X: p.X, Y: p.Y}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseTarget(s string) (kinematics.Point, error) {
	var p kinematics.Point
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%g,%g", &p.X, &p.Y); err != nil {
		return p, fmt.Errorf("invalid target %q, want x,y: %w", s, err)
	}
	return p, nil
}

func (c *RunCommand) Execute(args []string) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(logging.Config{File: c.LogFile, Level: c.LogLevel})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	vcfg := viz.Config{
		Links:  cfg.Links(),
		Target: cfg.InitialTarget(),
		Logger: logger,
	}

	if cfg.Follower.Enabled() {
		cal := cfg.Follower.Calibration
		if !cfg.Follower.IsCalibrated() {
			cal = robot.DefaultCalibration()
		}
		arm, err := robot.NewArm(cfg.Follower.Port, cal)
		if err != nil {
			return fmt.Errorf("connect follower on %s: %w", cfg.Follower.Port, err)
		}
		defer arm.Close()

		if err := arm.Enable(ctx); err != nil {
			return fmt.Errorf("enable follower: %w", err)
		}
		defer func() {
			if err := arm.Disable(context.Background()); err != nil {
				logger.Warn("disable follower", zap.Error(err))
			}
		}()
		start, err := arm.ReadAngles(ctx)
		if err != nil {
			logger.Warn("read follower pose", zap.Error(err))
		} else {
			logger.Info("follower connected",
				zap.String("port", cfg.Follower.Port),
				zap.Float64("theta1", start.Theta1),
				zap.Float64("theta2", start.Theta2),
			)
		}
		vcfg.Follower = arm
	}

	state, err := viz.New(vcfg)
	if err != nil {
		return err
	}

	logger.Info("visualizer started",
		zap.Float64("l1", cfg.L1),
		zap.Float64("l2", cfg.L2),
		zap.Int("hz", cfg.Hz),
	)

	p := tea.NewProgram(newRunModel(ctx, state, cfg.Hz), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run visualizer: %w", err)
	}

	logger.Info("visualizer stopped")
	return nil
}
