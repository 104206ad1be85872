// Package ikarm visualizes closed-form inverse kinematics for a two-link
// planar arm in the terminal.
//
// Click anywhere inside the plot and the arm reaches for that point using
// the elbow-down solution. Targets outside the reachable annulus are
// clamped to the closest pose the arm can take.
//
// # Installation
//
//	go install github.com/gwillem/ikarm/cmd/ikarm@latest
//
// # Usage
//
// Start the visualizer with unit links:
//
//	ikarm run
//
// Optionally set link lengths and calibrate a two-servo arm that mirrors
// every pose:
//
//	ikarm setup
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/ikarm: CLI with run and setup commands
//   - pkg/kinematics: inverse and forward kinematics
//   - pkg/plot: terminal plot and cell-to-world mapping
//   - pkg/viz: application state, tick and press handlers
//   - pkg/robot: servo arm control, calibration, and configuration
//   - pkg/logging: structured file logging
package ikarm
