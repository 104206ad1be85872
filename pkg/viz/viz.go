// Package viz holds the visualizer's application state and dispatches
// timer ticks and pointer presses against it.
//
// All handlers run on the caller's event loop and must not be called
// concurrently.
package viz

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gwillem/ikarm/pkg/kinematics"
)

// singularRadius is the distance from the base below which the
// direction to the target is undefined and the last pose is held.
const singularRadius = 1e-9

// Follower receives every new pose, e.g. a servo arm.
type Follower interface {
	WriteAngles(ctx context.Context, angles kinematics.Angles) error
}

// Snapshot is an immutable view of the arm at one instant.
type Snapshot struct {
	Target    kinematics.Point
	Pose      kinematics.Pose
	Reachable bool
	Held      bool // pose carried over from the previous target
	Timestamp time.Time
	Error     error
}

// Event is either a Tick or a Press.
type Event interface {
	event()
}

// Tick asks for a repaint of the current target.
type Tick struct {
	At time.Time
}

// Press replaces the target.
type Press struct {
	At     time.Time
	Target kinematics.Point
}

func (Tick) event()  {}
func (Press) event() {}

// Config holds configuration for the state.
type Config struct {
	Links    kinematics.Links
	Target   kinematics.Point
	Follower Follower    // optional
	Logger   *zap.Logger // optional
}

// State owns the single mutable target and the last computed pose.
type State struct {
	links    kinematics.Links
	follower Follower
	logger   *zap.Logger

	target  kinematics.Point
	last    kinematics.Pose
	hasPose bool
	synced  bool // follower has seen the current target
}

// New creates a new state.
func New(cfg Config) (*State, error) {
	if cfg.Links.L1 <= 0 || cfg.Links.L2 <= 0 {
		return nil, fmt.Errorf("invalid link lengths %g, %g", cfg.Links.L1, cfg.Links.L2)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &State{
		links:    cfg.Links,
		follower: cfg.Follower,
		logger:   logger,
		target:   cfg.Target,
	}, nil
}

// Links returns the link lengths.
func (s *State) Links() kinematics.Links {
	return s.links
}

// Target returns the current target.
func (s *State) Target() kinematics.Point {
	return s.target
}

// Dispatch routes ev to its handler. The returned line is non-empty for presses.
func (s *State) Dispatch(ctx context.Context, ev Event) (Snapshot, string) {
	switch ev := ev.(type) {
	case Press:
		return s.Press(ctx, ev.Target, ev.At)
	case Tick:
		return s.Tick(ctx, ev.At), ""
	}
	return s.snapshot(time.Now()), ""
}

// Tick recomputes the pose for the current target. The follower is only
// written when the target changed since its last write.
func (s *State) Tick(ctx context.Context, now time.Time) Snapshot {
	snap := s.snapshot(now)
	if s.follower != nil && !s.synced {
		if err := s.follower.WriteAngles(ctx, snap.Pose.Angles); err != nil {
			s.logger.Warn("follower write failed", zap.Error(err))
			snap.Error = err
		}
		// Failed writes are not retried until the next target
		s.synced = true
	}
	return snap
}

// Press replaces the target and returns the new snapshot with its console line.
func (s *State) Press(ctx context.Context, target kinematics.Point, now time.Time) (Snapshot, string) {
	s.target = target
	s.synced = false

	snap := s.snapshot(now)
	line := FormatTarget(target, snap.Pose.Angles)

	s.logger.Info("target set",
		zap.Float64("x", target.X),
		zap.Float64("y", target.Y),
		zap.Float64("theta1", snap.Pose.Angles.Theta1),
		zap.Float64("theta2", snap.Pose.Angles.Theta2),
		zap.Bool("reachable", snap.Reachable),
		zap.Bool("held", snap.Held),
	)
	return snap, line
}

func (s *State) snapshot(now time.Time) Snapshot {
	snap := Snapshot{
		Target:    s.target,
		Reachable: s.links.Reachable(s.target),
		Timestamp: now,
	}
	if s.hasPose && s.target.Norm() < singularRadius {
		snap.Pose = s.last
		snap.Held = true
		return snap
	}
	snap.Pose = s.links.Solve(s.target)
	s.last = snap.Pose
	s.hasPose = true
	return snap
}

// FormatTarget renders the console line for a target and its joint angles.
func FormatTarget(target kinematics.Point, a kinematics.Angles) string {
	d1, d2 := a.Degrees()
	return fmt.Sprintf("Target: (%.2f, %.2f) → θ₁ = %5.1f°, θ₂ = %5.1f°", target.X, target.Y, d1, d2)
}
