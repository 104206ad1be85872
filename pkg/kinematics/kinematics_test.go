package kinematics

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const eps = 1e-9

var unit = Links{L1: 1, L2: 1}

func TestLinks_InverseForwardRoundTrip(t *testing.T) {
	arms := []Links{
		{L1: 1, L2: 1},
		{L1: 1.5, L2: 0.5},
		{L1: 0.7, L2: 1.3},
	}

	for _, l := range arms {
		min, max := l.Reach()
		// Sweep the annulus in polar coordinates
		for i := 0; i <= 10; i++ {
			r := min + (max-min)*float64(i)/10
			for j := 0; j < 24; j++ {
				phi := 2 * math.Pi * float64(j) / 24
				target := Point{X: r * math.Cos(phi), Y: r * math.Sin(phi)}
				if target.Norm() < eps {
					continue
				}
				got := l.Solve(target).End
				if diff := cmp.Diff(target, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
					t.Errorf("%+v: Solve(%+v) end mismatch (-want +got):\n%s", l, target, diff)
				}
			}
		}
	}
}

func TestLinks_InverseElbowDown(t *testing.T) {
	for x := -3.0; x <= 3.0; x += 0.25 {
		for y := -3.0; y <= 3.0; y += 0.25 {
			a := unit.Inverse(Point{X: x, Y: y})
			if a.Theta2 < 0 || a.Theta2 > math.Pi {
				t.Errorf("Inverse(%f, %f).Theta2 = %f, want in [0, pi]", x, y, a.Theta2)
			}
		}
	}
}

func TestLinks_InverseKnownTargets(t *testing.T) {
	tests := []struct {
		name   string
		target Point
		want   Angles
	}{
		{"fully extended along x", Point{X: 2, Y: 0}, Angles{Theta1: 0, Theta2: 0}},
		{"fully extended along y", Point{X: 0, Y: 2}, Angles{Theta1: math.Pi / 2, Theta2: 0}},
		{"right angle elbow", Point{X: 1, Y: 1}, Angles{Theta1: 0, Theta2: math.Pi / 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := unit.Inverse(tt.target)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, eps)); diff != "" {
				t.Errorf("Inverse(%+v) mismatch (-want +got):\n%s", tt.target, diff)
			}
		})
	}
}

func TestLinks_InverseUnreachable(t *testing.T) {
	tests := []struct {
		name    string
		links   Links
		target  Point
		wantCos float64
	}{
		{"outside outer radius", unit, Point{X: 10, Y: 10}, 1},
		{"inside inner radius", Links{L1: 1.5, L2: 0.5}, Point{X: 0.1, Y: 0.2}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.links.Reachable(tt.target) {
				t.Fatalf("Reachable(%+v) = true, want false", tt.target)
			}
			if c := tt.links.ElbowCos(tt.target); c != tt.wantCos {
				t.Errorf("ElbowCos(%+v) = %f, want %f", tt.target, c, tt.wantCos)
			}
			a := tt.links.Inverse(tt.target)
			if math.IsNaN(a.Theta1) || math.IsNaN(a.Theta2) || math.IsInf(a.Theta1, 0) || math.IsInf(a.Theta2, 0) {
				t.Errorf("Inverse(%+v) = %+v, want finite angles", tt.target, a)
			}
		})
	}
}

func TestLinks_InverseUnreachablePointsAtTarget(t *testing.T) {
	target := Point{X: 10, Y: 10}
	end := unit.Solve(target).End

	// Stretched arm lies on the ray towards the target
	want := Point{X: math.Sqrt2, Y: math.Sqrt2}
	if diff := cmp.Diff(want, end, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Solve(%+v).End mismatch (-want +got):\n%s", target, diff)
	}
}

func TestLinks_Forward(t *testing.T) {
	pose := unit.Forward(Angles{Theta1: 0, Theta2: math.Pi / 2})
	want := []Point{{0, 0}, {1, 0}, {1, 1}}

	if diff := cmp.Diff(want, pose.Points(), cmpopts.EquateApprox(0, eps)); diff != "" {
		t.Errorf("Forward points mismatch (-want +got):\n%s", diff)
	}
}

func TestLinks_Reach(t *testing.T) {
	min, max := Links{L1: 0.5, L2: 1.5}.Reach()
	if min != 1 || max != 2 {
		t.Errorf("Reach() = (%f, %f), want (1, 2)", min, max)
	}
}

func TestAngles_Degrees(t *testing.T) {
	d1, d2 := Angles{Theta1: math.Pi / 2, Theta2: -math.Pi}.Degrees()
	if math.Abs(d1-90) > eps || math.Abs(d2+180) > eps {
		t.Errorf("Degrees() = (%f, %f), want (90, -180)", d1, d2)
	}
}
