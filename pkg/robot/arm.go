package robot

import (
	"context"
	"fmt"

	"github.com/hipsterbrown/feetech-servo/feetech"

	"github.com/gwillem/ikarm/pkg/kinematics"
)

// Arm represents a two-joint servo arm.
type Arm struct {
	bus         *feetech.Bus
	group       *feetech.ServoGroup
	calibration Calibration
}

// NewArm creates and initializes an arm connection.
func NewArm(port string, cal Calibration) (*Arm, error) {
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}

	ids := cal.JointIDs()
	group := feetech.NewServoGroupByIDs(bus, ids...)

	return &Arm{
		bus:         bus,
		group:       group,
		calibration: cal,
	}, nil
}

// Close closes the arm's bus connection.
func (a *Arm) Close() error {
	return a.bus.Close()
}

// Enable enables torque on all servos.
func (a *Arm) Enable(ctx context.Context) error {
	return a.group.EnableAll(ctx)
}

// Disable disables torque on all servos.
func (a *Arm) Disable(ctx context.Context) error {
	return a.group.DisableAll(ctx)
}

// ReadAngles reads the current joint angles in radians.
func (a *Arm) ReadAngles(ctx context.Context) (kinematics.Angles, error) {
	rawPositions, err := a.group.Positions(ctx)
	if err != nil {
		return kinematics.Angles{}, fmt.Errorf("read positions: %w", err)
	}
	return a.calibration.Angles(rawPositions), nil
}

// WriteAngles moves both joints to the given angles.
func (a *Arm) WriteAngles(ctx context.Context, angles kinematics.Angles) error {
	if err := a.group.SetPositions(ctx, a.calibration.RawPositions(angles)); err != nil {
		return fmt.Errorf("write positions: %w", err)
	}
	return nil
}

// RawPositions converts joint angles to raw servo positions keyed by servo ID.
func (c Calibration) RawPositions(angles kinematics.Angles) feetech.PositionMap {
	raw := make(feetech.PositionMap, len(c))
	if jc, ok := c[Shoulder]; ok {
		raw[jc.ID] = jc.ToRaw(jc.Wrap(angles.Theta1))
	}
	if jc, ok := c[Elbow]; ok {
		raw[jc.ID] = jc.ToRaw(jc.Wrap(angles.Theta2))
	}
	return raw
}

// Angles converts raw servo positions keyed by servo ID to joint angles.
// Unknown IDs are ignored.
func (c Calibration) Angles(raw feetech.PositionMap) kinematics.Angles {
	var angles kinematics.Angles
	for id, pos := range raw {
		name, jc, ok := c.ByID(id)
		if !ok {
			continue
		}
		switch name {
		case Shoulder:
			angles.Theta1 = jc.ToAngle(pos)
		case Elbow:
			angles.Theta2 = jc.ToAngle(pos)
		}
	}
	return angles
}
