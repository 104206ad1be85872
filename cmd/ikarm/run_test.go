package main

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/gwillem/ikarm/pkg/kinematics"
	"github.com/gwillem/ikarm/pkg/viz"
)

func newTestModel(t *testing.T) runModel {
	t.Helper()
	state, err := viz.New(viz.Config{
		Links:  kinematics.Links{L1: 1, L2: 1},
		Target: kinematics.Point{X: 1.2, Y: 0.8},
	})
	if err != nil {
		t.Fatalf("viz.New: %v", err)
	}
	m := newRunModel(context.Background(), state, 25)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	return next.(runModel)
}

// screenCell returns the terminal cell that shows world point p.
func screenCell(m runModel, p kinematics.Point) (x, y int) {
	col, row := m.plot.Viewport().WorldToCell(p)
	return col + 1, row + headerHeight + 1
}

func TestRunModel_PressSetsTarget(t *testing.T) {
	m := newTestModel(t)

	x, y := screenCell(m, kinematics.Point{X: 0.5, Y: -1})
	next, cmd := m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = next.(runModel)

	if cmd == nil {
		t.Error("press should print a console line")
	}
	target := m.state.Target()
	if d := (kinematics.Point{X: target.X - 0.5, Y: target.Y + 1}).Norm(); d > 0.25 {
		t.Errorf("target = %+v, want near (0.5, -1)", target)
	}
	if len(m.logs) != 1 || !strings.HasPrefix(m.logs[0], "Target: (") {
		t.Errorf("logs = %q", m.logs)
	}
	if m.snap.Target != target {
		t.Errorf("snapshot target %+v does not match state %+v", m.snap.Target, target)
	}
}

// findMarker returns the terminal cell of the first r in the rendered view.
func findMarker(view string, r rune) (x, y int, ok bool) {
	for y, line := range strings.Split(ansi.Strip(view), "\n") {
		runes := []rune(line)
		for i, c := range runes {
			if c == r {
				return ansi.StringWidth(string(runes[:i])), y, true
			}
		}
	}
	return 0, 0, false
}

func TestRunModel_PressOnDrawnTarget(t *testing.T) {
	targets := []kinematics.Point{
		{X: 1.2, Y: 0.8},
		{X: -1, Y: -0.1}, // shoulder angle below -pi
		{X: 0.3, Y: 1.7},
		{X: -1.6, Y: 1.1},
		{X: 0.9, Y: -1.5},
	}

	for _, target := range targets {
		m := newTestModel(t)
		snap, _ := m.state.Press(context.Background(), target, time.Now())
		m.snap = snap
		m.plot.Draw(snap.Pose, snap.Target)

		x, y, ok := findMarker(m.View(), '✕')
		if !ok {
			t.Fatalf("target %+v: marker not found in view", target)
		}

		next, _ := m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
		m = next.(runModel)

		v := m.plot.Viewport()
		cellW := (v.Bounds.MaxX - v.Bounds.MinX) / float64(v.Width)
		cellH := (v.Bounds.MaxY - v.Bounds.MinY) / float64(v.Height)
		// Cell center plus one cell of rounding
		got := m.state.Target()
		if math.Abs(got.X-target.X) > 1.5*cellW || math.Abs(got.Y-target.Y) > 1.5*cellH {
			t.Errorf("click on marker of %+v at (%d, %d) set target %+v, want within (%.3f, %.3f)",
				target, x, y, got, 1.5*cellW, 1.5*cellH)
		}
	}
}

func TestRunModel_IgnoresOutsideAndOtherButtons(t *testing.T) {
	m := newTestModel(t)
	before := m.state.Target()

	msgs := []tea.MouseMsg{
		{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},  // header
		{X: 2, Y: 49, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}, // log box
	}
	x, y := screenCell(m, kinematics.Point{X: 1, Y: 1})
	msgs = append(msgs,
		tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonRight},
		tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone},
	)

	for _, msg := range msgs {
		next, cmd := m.Update(msg)
		m = next.(runModel)
		if cmd != nil {
			t.Errorf("%+v produced a command", msg)
		}
	}
	if m.state.Target() != before {
		t.Errorf("target changed to %+v", m.state.Target())
	}
	if len(m.logs) != 0 {
		t.Errorf("logs = %q, want none", m.logs)
	}
}

func TestRunModel_TickReschedules(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("tick should schedule the next tick")
	}
	if next.(runModel).snap.Target != (kinematics.Point{X: 1.2, Y: 0.8}) {
		t.Errorf("unexpected snapshot %+v", next.(runModel).snap)
	}
}

func TestRunModel_Quit(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if !next.(runModel).quitting {
		t.Error("model not marked as quitting")
	}
	if v := next.(runModel).View(); v != "Visualizer stopped.\n" {
		t.Errorf("View() = %q", v)
	}
}

func TestRunModel_ViewFillsTerminal(t *testing.T) {
	m := newTestModel(t)

	lines := strings.Split(m.View(), "\n")
	if len(lines) != 50 {
		t.Errorf("View() has %d lines, want 50", len(lines))
	}
	if !strings.Contains(lines[0], "L1 = 1.00, L2 = 1.00") {
		t.Errorf("header = %q", lines[0])
	}
}

func TestRunModel_ChartSizeKeepsAspect(t *testing.T) {
	tests := []struct {
		width, height int
	}{
		{100, 50},
		{200, 50},
		{60, 60},
	}

	for _, tt := range tests {
		m := runModel{width: tt.width, height: tt.height}
		w, h := m.chartSize()
		if gw, gh := w-axisWidth, h-axisHeight; gw != 2*gh && gw != 2*gh+1 {
			t.Errorf("chartSize() for %dx%d = %dx%d, graph %dx%d not 2:1", tt.width, tt.height, w, h, gw, gh)
		}
		if w+borderSize > tt.width || h+headerHeight+statusHeight+footerHeight+borderSize > tt.height {
			t.Errorf("chartSize() for %dx%d = %dx%d does not fit", tt.width, tt.height, w, h)
		}
	}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    kinematics.Point
		wantErr bool
	}{
		{"1.2,0.8", kinematics.Point{X: 1.2, Y: 0.8}, false},
		{" -1, 0.5 ", kinematics.Point{X: -1, Y: 0.5}, false},
		{"1.2", kinematics.Point{}, true},
		{"a,b", kinematics.Point{}, true},
	}

	for _, tt := range tests {
		got, err := parseTarget(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseTarget(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseTarget(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestRunCommand_Config(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ikarm.json")
	if err := os.WriteFile(path, []byte(`{"l1": 1.5, "l2": 0.5, "hz": 10}`), 0644); err != nil {
		t.Fatal(err)
	}

	c := RunCommand{Config: path, L2: 0.75, Target: "0.3,0.4"}
	cfg, err := c.config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.L1 != 1.5 || cfg.L2 != 0.75 || cfg.Hz != 10 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if p := cfg.InitialTarget(); p != (kinematics.Point{X: 0.3, Y: 0.4}) {
		t.Errorf("InitialTarget() = %+v", p)
	}

	c = RunCommand{Config: path, L1: -1}
	if _, err := c.config(); err == nil {
		t.Error("negative link length should be rejected")
	}
}
