package plot

import (
	"math"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/lipgloss"

	"github.com/gwillem/ikarm/pkg/kinematics"
)

// reachSegments is the number of chords used to draw a reach circle.
const reachSegments = 72

var (
	armStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))  // blue
	jointStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	baseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true)
	targetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red
	reachStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// Plot draws the arm pose and the target on a linechart.
type Plot struct {
	chart  linechart.Model
	bounds Bounds
	links  kinematics.Links
}

// New creates a plot of the given size in cells.
func New(w, h int, b Bounds, links kinematics.Links) *Plot {
	chart := linechart.New(w, h, b.MinX, b.MaxX, b.MinY, b.MaxY,
		linechart.WithXYSteps(4, 4),
	)
	return &Plot{chart: chart, bounds: b, links: links}
}

// Resize changes the plot size in cells.
func (p *Plot) Resize(w, h int) {
	p.chart.Resize(w, h)
}

// Viewport returns the cell mapping of the current graph area.
func (p *Plot) Viewport() Viewport {
	origin := p.chart.Origin()
	return Viewport{
		Bounds: p.bounds,
		Left:   origin.X + 1,
		Bottom: origin.Y - 1,
		Width:  p.chart.GraphWidth(),
		Height: p.chart.GraphHeight(),
	}
}

// Draw redraws the whole plot for one pose and target.
func (p *Plot) Draw(pose kinematics.Pose, target kinematics.Point) {
	p.chart.Clear()
	p.chart.DrawXYAxisAndLabel()

	min, max := p.links.Reach()
	p.drawCircle(max)
	if min > 0 {
		p.drawCircle(min)
	}

	pts := pose.Points()
	for i := 1; i < len(pts); i++ {
		p.chart.DrawBrailleLineWithStyle(point(pts[i-1]), point(pts[i]), armStyle)
	}

	p.chart.DrawRuneWithStyle(point(pose.Elbow), '●', jointStyle)
	p.chart.DrawRuneWithStyle(point(pose.End), '●', jointStyle)
	p.chart.DrawRuneWithStyle(point(pose.Base), '■', baseStyle)
	if p.bounds.Contains(target) {
		p.chart.DrawRuneWithStyle(point(target), '✕', targetStyle)
	}
}

// View renders the plot.
func (p *Plot) View() string {
	return p.chart.View()
}

func (p *Plot) drawCircle(r float64) {
	prev := point(kinematics.Point{X: r, Y: 0})
	for i := 1; i <= reachSegments; i++ {
		phi := 2 * math.Pi * float64(i) / reachSegments
		next := point(kinematics.Point{X: r * math.Cos(phi), Y: r * math.Sin(phi)})
		p.chart.DrawBrailleLineWithStyle(prev, next, reachStyle)
		prev = next
	}
}

func point(p kinematics.Point) canvas.Float64Point {
	return canvas.Float64Point{X: p.X, Y: p.Y}
}
