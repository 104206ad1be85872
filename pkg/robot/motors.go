// Package robot provides abstractions for driving a two-joint servo arm.
package robot

// JointName identifies a joint in the arm.
type JointName string

// Joint names for the planar arm.
const (
	Shoulder JointName = "shoulder"
	Elbow    JointName = "elbow"
)

// AllJoints returns all joint names in order (matching servo IDs 1-2).
func AllJoints() []JointName {
	return []JointName{
		Shoulder,
		Elbow,
	}
}
