// Package plot draws the arm on a terminal chart and maps terminal cells
// back to world coordinates.
package plot

import (
	"math"

	"github.com/gwillem/ikarm/pkg/kinematics"
)

// Bounds is the visible world rectangle.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// DefaultBounds is the square [-2.1, 2.1] x [-2.1, 2.1].
var DefaultBounds = Bounds{MinX: -2.1, MaxX: 2.1, MinY: -2.1, MaxY: 2.1}

// BoundsFor returns a square view around the base that leaves a 5% margin
// beyond the arm's full reach. Unit links give DefaultBounds.
func BoundsFor(links kinematics.Links) Bounds {
	r := 1.05 * (links.L1 + links.L2)
	return Bounds{MinX: -r, MaxX: r, MinY: -r, MaxY: r}
}

// Contains reports whether p is inside b, edges included.
func (b Bounds) Contains(p kinematics.Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Viewport maps the graph area of a chart, in terminal cells, onto Bounds.
// Columns grow to the right from Left, rows grow downwards and the bottom
// graph row is Bottom.
type Viewport struct {
	Bounds Bounds
	Left   int
	Bottom int
	Width  int
	Height int
}

// CellToWorld returns the world point at the center of the given cell.
// ok is false when the cell lies outside the graph area.
func (v Viewport) CellToWorld(col, row int) (p kinematics.Point, ok bool) {
	if v.Width <= 0 || v.Height <= 0 {
		return kinematics.Point{}, false
	}
	dx := col - v.Left
	dy := v.Bottom - row
	if dx < 0 || dx >= v.Width || dy < 0 || dy >= v.Height {
		return kinematics.Point{}, false
	}
	b := v.Bounds
	p.X = b.MinX + (float64(dx)+0.5)/float64(v.Width)*(b.MaxX-b.MinX)
	p.Y = b.MinY + (float64(dy)+0.5)/float64(v.Height)*(b.MaxY-b.MinY)
	return p, true
}

// WorldToCell returns the cell containing p. Points on the upper edges
// belong to the last column/row.
func (v Viewport) WorldToCell(p kinematics.Point) (col, row int) {
	b := v.Bounds
	fx := (p.X - b.MinX) / (b.MaxX - b.MinX) * float64(v.Width)
	fy := (p.Y - b.MinY) / (b.MaxY - b.MinY) * float64(v.Height)
	dx := min(int(math.Floor(fx)), v.Width-1)
	dy := min(int(math.Floor(fy)), v.Height-1)
	return v.Left + dx, v.Bottom - dy
}
