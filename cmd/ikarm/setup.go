package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"

	"github.com/gwillem/ikarm/pkg/robot"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var errNoArm = errors.New("no two-joint servo arm found")

type SetupCommand struct {
	Config string `long:"config" default:"ikarm.json" description:"Configuration file to write"`
}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("ikarm Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━"))
	fmt.Println()

	cfg, err := robot.LoadConfigOrDefault(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Step 1: Link lengths
	if err := askLinks(cfg); err != nil {
		return err
	}
	if err := cfg.SaveTo(c.Config); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	// Step 2: Optional servo arm
	var withServos bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Mirror the pose onto a servo arm?").
				Description("Two Feetech STS servos with IDs 1 (shoulder) and 2 (elbow)").
				Value(&withServos),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if withServos {
		port, err := selectArm()
		if err != nil {
			return err
		}
		cfg.Follower.Port = port

		fmt.Println()
		fmt.Println(subHeaderStyle.Render("━━━ Calibrating Servo Arm ━━━"))
		fmt.Println()
		cal, err := calibrateArm(port)
		if err != nil {
			return err
		}
		cfg.Follower.Calibration = cal
	} else {
		cfg.Follower = robot.ArmConfig{}
	}

	if err := cfg.SaveTo(c.Config); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", c.Config)
	fmt.Println()
	fmt.Println("Start the visualizer with: " + headerStyle.Render("ikarm run"))

	return nil
}

func askLinks(cfg *robot.Config) error {
	l1 := strconv.FormatFloat(cfg.L1, 'g', -1, 64)
	l2 := strconv.FormatFloat(cfg.L2, 'g', -1, 64)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Length of the first link").
				Value(&l1).
				Validate(validateLength),
			huh.NewInput().
				Title("Length of the second link").
				Value(&l2).
				Validate(validateLength),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	// Both values passed validation
	cfg.L1, _ = parseLength(l1)
	cfg.L2, _ = parseLength(l2)
	return nil
}

func parseLength(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("length must be positive")
	}
	return v, nil
}

func validateLength(s string) error {
	_, err := parseLength(s)
	return err
}

// selectArm scans serial ports for two-joint arms and asks which one to use.
func selectArm() (string, error) {
	fmt.Println("Scanning for servo arms...")
	fmt.Println()

	ports := findArms()
	if len(ports) == 0 {
		fmt.Println("Make sure your arm is connected and powered on.")
		return "", errNoArm
	}
	if len(ports) == 1 {
		return ports[0], nil
	}

	options := make([]huh.Option[string], 0, len(ports))
	for _, port := range ports {
		options = append(options, huh.NewOption(port, port))
	}

	var port string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which port is the arm on?").
				Options(options...).
				Value(&port),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}
	return port, nil
}

func findArms() []string {
	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Printf("Error listing ports: %v\n", err)
		return nil
	}

	var found []string

	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}

		bus, servos, err := connectToArm(port)
		if err != nil {
			continue
		}
		bus.Close()

		fmt.Printf("  Found arm on %s (%d servos)\n", port, len(servos))
		found = append(found, port)
	}

	return found
}

func isTwoJointArm(servos []feetech.FoundServo) bool {
	ids := make(map[int]bool)
	for _, s := range servos {
		ids[s.ID] = true
	}
	return len(servos) == 2 && ids[1] && ids[2]
}

func connectToArm(port string) (*feetech.Bus, []feetech.FoundServo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, nil, err
	}

	servos, err := bus.Scan(ctx, 1, 2)
	if err != nil {
		bus.Close()
		return nil, nil, err
	}

	if !isTwoJointArm(servos) {
		bus.Close()
		return nil, nil, fmt.Errorf("not a two-joint arm (expected servos with IDs 1-2)")
	}

	return bus, servos, nil
}

func calibrateArm(port string) (robot.Calibration, error) {
	bus, servos, err := connectToArm(port)
	if err != nil {
		return nil, fmt.Errorf("connect to arm: %w", err)
	}
	defer bus.Close()

	servoMap := make(map[int]*feetech.Servo)
	for _, s := range servos {
		servoMap[s.ID] = feetech.NewServo(bus, s.ID, s.Model)
	}

	// Disable all servos so user can move arm freely
	ctx := context.Background()
	for _, servo := range servoMap {
		servo.Disable(ctx)
	}

	joints := robot.AllJoints()

	fmt.Println(subHeaderStyle.Render("Record range of motion"))
	fmt.Println("Move each joint to its minimum AND maximum positions.")
	fmt.Println()

	curPositions := make(map[robot.JointName]int)
	minPositions := make(map[robot.JointName]int)
	maxPositions := make(map[robot.JointName]int)
	for i, name := range joints {
		// Joints that cannot be read yet are seeded by the first tick
		pos, err := servoMap[i+1].Position(ctx)
		if err != nil {
			continue
		}
		curPositions[name] = pos
		minPositions[name] = pos
		maxPositions[name] = pos
	}

	model := newCalibrationModel(joints, servoMap, curPositions, minPositions, maxPositions)
	finalModel, err := tea.NewProgram(model).Run()
	if err != nil {
		return nil, fmt.Errorf("run calibration: %w", err)
	}
	cm := finalModel.(calibrationModel)

	// Zero pose
	fmt.Println()
	waitForUser("Stretch the arm straight along the +X axis, then continue.")
	cal := make(robot.Calibration, len(joints))
	for i, name := range joints {
		if _, ok := cm.curPositions[name]; !ok {
			return nil, fmt.Errorf("no position recorded for %s", name)
		}
		zero, err := servoMap[i+1].Position(ctx)
		if err != nil {
			return nil, fmt.Errorf("read %s zero position: %w", name, err)
		}
		cal[name] = robot.NewJointCalibration(i+1, cm.minPositions[name], cm.maxPositions[name], zero)
	}

	fmt.Println("Arm calibrated.")
	return cal, nil
}

func waitForUser(prompt string) {
	fmt.Println(prompt)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("").
				Affirmative("Continue").
				Negative("").
				Value(new(bool)),
		),
	)
	// An aborted prompt reads the zero pose as-is
	_ = form.Run()
}

// Calibration TUI model
type calibrationModel struct {
	joints       []robot.JointName
	servoMap     map[int]*feetech.Servo
	curPositions map[robot.JointName]int
	minPositions map[robot.JointName]int
	maxPositions map[robot.JointName]int
	quitting     bool
}

type calibrationTickMsg time.Time

func calibrationTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return calibrationTickMsg(t)
	})
}

func newCalibrationModel(
	joints []robot.JointName,
	servoMap map[int]*feetech.Servo,
	curPositions, minPositions, maxPositions map[robot.JointName]int,
) calibrationModel {
	return calibrationModel{
		joints:       joints,
		servoMap:     servoMap,
		curPositions: curPositions,
		minPositions: minPositions,
		maxPositions: maxPositions,
	}
}

func (m calibrationModel) Init() tea.Cmd {
	return calibrationTick()
}

func (m calibrationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case calibrationTickMsg:
		ctx := context.Background()
		for i, name := range m.joints {
			servo := m.servoMap[i+1]
			pos, err := servo.Position(ctx)
			if err != nil {
				continue
			}
			m.record(name, pos)
		}
		return m, calibrationTick()
	}

	return m, nil
}

func (m calibrationModel) record(name robot.JointName, pos int) {
	if _, seen := m.curPositions[name]; !seen {
		m.minPositions[name] = pos
		m.maxPositions[name] = pos
	}
	m.curPositions[name] = pos
	if pos < m.minPositions[name] {
		m.minPositions[name] = pos
	}
	if pos > m.maxPositions[name] {
		m.maxPositions[name] = pos
	}
}

func (m calibrationModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder

	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableJointStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableCurrentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Padding(0, 1)
	tableRangeGoodStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
	tableRangeLowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)

	rows := make([][]string, 0, len(m.joints))
	ranges := make([]int, 0, len(m.joints))
	for _, name := range m.joints {
		rangeSize := m.maxPositions[name] - m.minPositions[name]
		ranges = append(ranges, rangeSize)
		rows = append(rows, []string{
			string(name),
			fmt.Sprintf("%d", m.curPositions[name]),
			fmt.Sprintf("%d", m.minPositions[name]),
			fmt.Sprintf("%d", m.maxPositions[name]),
			fmt.Sprintf("%d", rangeSize),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Joint", "Current", "Min", "Max", "Range").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			switch col {
			case 0:
				return tableJointStyle
			case 1:
				return tableCurrentStyle
			case 4:
				if row >= 0 && row < len(ranges) && ranges[row] > 500 {
					return tableRangeGoodStyle
				}
				return tableRangeLowStyle
			default:
				return tableCellStyle
			}
		})

	sb.WriteString(t.Render())
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Press Enter when done"))

	return sb.String()
}
