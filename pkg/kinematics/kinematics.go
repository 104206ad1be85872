// Package kinematics provides closed-form inverse and forward kinematics
// for a two-link planar arm.
package kinematics

import "math"

// Point is a position in the arm's plane, in the same unit as the link lengths.
type Point struct {
	X float64
	Y float64
}

// Norm returns the distance from the base.
func (p Point) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// Angles holds the joint angles in radians.
// Theta1 is the first link relative to the base, Theta2 the second link relative to the first.
type Angles struct {
	Theta1 float64
	Theta2 float64
}

// Degrees returns both angles converted to degrees.
func (a Angles) Degrees() (theta1, theta2 float64) {
	return a.Theta1 * 180 / math.Pi, a.Theta2 * 180 / math.Pi
}

// Pose is the drawn configuration of the arm.
type Pose struct {
	Angles Angles
	Base   Point
	Elbow  Point
	End    Point
}

// Points returns base, elbow and end-effector in drawing order.
func (p Pose) Points() []Point {
	return []Point{p.Base, p.Elbow, p.End}
}

// Links holds the two link lengths.
type Links struct {
	L1 float64
	L2 float64
}

// Reach returns the inner and outer radius of the reachable annulus.
func (l Links) Reach() (min, max float64) {
	return math.Abs(l.L1 - l.L2), l.L1 + l.L2
}

// Reachable reports whether p lies inside the reachable annulus.
func (l Links) Reachable(p Point) bool {
	min, max := l.Reach()
	d := p.Norm()
	return d >= min && d <= max
}

// ElbowCos returns the cosine of the elbow angle for target p, clamped to [-1, 1].
// Targets outside the annulus clamp to the fully stretched or fully folded arm.
func (l Links) ElbowCos(p Point) float64 {
	r2 := p.X*p.X + p.Y*p.Y
	c := (r2 - l.L1*l.L1 - l.L2*l.L2) / (2 * l.L1 * l.L2)
	return math.Max(-1, math.Min(1, c))
}

// Inverse returns the elbow-down joint angles that place the end-effector
// at p, or as close to p as the arm can get.
func (l Links) Inverse(p Point) Angles {
	c := l.ElbowCos(p)
	theta2 := math.Acos(c)

	k1 := l.L1 + l.L2*c
	k2 := l.L2 * math.Sin(theta2)
	theta1 := math.Atan2(p.Y, p.X) - math.Atan2(k2, k1)

	return Angles{Theta1: theta1, Theta2: theta2}
}

// Forward returns the pose for the given joint angles. The base is at the origin.
func (l Links) Forward(a Angles) Pose {
	elbow := Point{
		X: l.L1 * math.Cos(a.Theta1),
		Y: l.L1 * math.Sin(a.Theta1),
	}
	end := Point{
		X: elbow.X + l.L2*math.Cos(a.Theta1+a.Theta2),
		Y: elbow.Y + l.L2*math.Sin(a.Theta1+a.Theta2),
	}
	return Pose{Angles: a, Elbow: elbow, End: end}
}

// Solve runs Inverse then Forward for p.
func (l Links) Solve(p Point) Pose {
	return l.Forward(l.Inverse(p))
}
