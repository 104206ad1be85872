package robot

import "math"

// JointCalibration maps a joint angle range onto a raw servo position range.
type JointCalibration struct {
	ID       int     `json:"id"`
	RangeMin int     `json:"range_min"`
	RangeMax int     `json:"range_max"`
	AngleMin float64 `json:"angle_min"` // radians at RangeMin
	AngleMax float64 `json:"angle_max"` // radians at RangeMax
}

// StepsPerRevolution is the resolution of an STS servo.
const StepsPerRevolution = 4096

// NewJointCalibration builds a calibration from a recorded raw range and the
// raw position at which the joint angle is zero.
func NewJointCalibration(id, rangeMin, rangeMax, zero int) JointCalibration {
	toAngle := func(raw int) float64 {
		return float64(raw-zero) * 2 * math.Pi / StepsPerRevolution
	}
	return JointCalibration{
		ID:       id,
		RangeMin: rangeMin,
		RangeMax: rangeMax,
		AngleMin: toAngle(rangeMin),
		AngleMax: toAngle(rangeMax),
	}
}

// Calibration holds calibration data for all joints, keyed by joint name.
type Calibration map[JointName]JointCalibration

// DefaultCalibration returns a calibration for STS servos mounted with
// their center at angle 0, covering [-pi, pi] over the full 0-4095 range.
func DefaultCalibration() Calibration {
	cal := make(Calibration, 2)
	for i, name := range AllJoints() {
		cal[name] = JointCalibration{
			ID:       i + 1,
			RangeMin: 0,
			RangeMax: 4095,
			AngleMin: -math.Pi,
			AngleMax: math.Pi,
		}
	}
	return cal
}

// Wrap returns the angle equivalent to angle (modulo a full turn) that lies
// inside the calibrated angle range. Angles with no equivalent in range are
// returned wrapped into [-pi, pi].
func (c JointCalibration) Wrap(angle float64) float64 {
	lo, hi := math.Min(c.AngleMin, c.AngleMax), math.Max(c.AngleMin, c.AngleMax)
	a := math.Remainder(angle, 2*math.Pi)
	for _, cand := range []float64{a, a + 2*math.Pi, a - 2*math.Pi} {
		if cand >= lo && cand <= hi {
			return cand
		}
	}
	return a
}

// ToRaw converts a joint angle in radians to a raw servo position.
// Angles outside the calibrated range are clamped to its ends.
func (c JointCalibration) ToRaw(angle float64) int {
	span := c.AngleMax - c.AngleMin
	if span == 0 {
		return c.RangeMin
	}
	frac := (angle - c.AngleMin) / span
	frac = math.Max(0, math.Min(1, frac))
	return c.RangeMin + int(math.Round(frac*float64(c.RangeMax-c.RangeMin)))
}

// ToAngle converts a raw servo position to a joint angle in radians.
func (c JointCalibration) ToAngle(raw int) float64 {
	rangeSize := float64(c.RangeMax - c.RangeMin)
	if rangeSize == 0 {
		return c.AngleMin
	}
	return c.AngleMin + float64(raw-c.RangeMin)/rangeSize*(c.AngleMax-c.AngleMin)
}

// JointIDs returns the servo IDs for all joints in the calibration.
func (c Calibration) JointIDs() []int {
	ids := make([]int, 0, len(c))
	// Use AllJoints() to ensure consistent ordering
	for _, name := range AllJoints() {
		if jc, ok := c[name]; ok {
			ids = append(ids, jc.ID)
		}
	}
	return ids
}

// ByID returns joint name and calibration for a given servo ID.
func (c Calibration) ByID(id int) (JointName, JointCalibration, bool) {
	for name, jc := range c {
		if jc.ID == id {
			return name, jc, true
		}
	}
	return "", JointCalibration{}, false
}
