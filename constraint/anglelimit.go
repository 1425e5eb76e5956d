package constraint

import (
	"math"

	"github.com/akmonengine/hinge/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// AngleLimit bounds the relative angle of two bodies about a joint axis, in radians.
// Both bounds are allowed values: an angle exactly on a bound is not corrected.
type AngleLimit struct {
	Min float64
	Max float64
}

// NewAngleLimit validates min <= max
func NewAngleLimit(min, max float64) (AngleLimit, error) {
	if math.IsNaN(min) || math.IsNaN(max) || min > max {
		return AngleLimit{}, &InvalidConfigError{
			Field:  "angle_limit",
			Value:  [2]float64{min, max},
			Reason: "min must not exceed max",
		}
	}

	return AngleLimit{Min: min, Max: max}, nil
}

// SignedAngle measures the rotation from `from` to `to` about axis, in (-π, π].
// Both vectors are projected onto the plane perpendicular to axis first.
func SignedAngle(axis, from, to mgl64.Vec3) float64 {
	axis = axis.Normalize()
	from = from.Sub(axis.Mul(from.Dot(axis)))
	to = to.Sub(axis.Mul(to.Dot(axis)))

	return math.Atan2(from.Cross(to).Dot(axis), from.Dot(to))
}

// WrapAngle maps an angle into (-π, π]
func WrapAngle(angle float64) float64 {
	wrapped := math.Mod(angle+math.Pi, 2*math.Pi)
	if wrapped <= 0 {
		wrapped += 2 * math.Pi
	}

	return wrapped - math.Pi
}

// Unwrap moves the angle into the turn centred on the limit range, so that the
// ±π discontinuity sits opposite to the allowed range.
func (l AngleLimit) Unwrap(angle float64) float64 {
	center := (l.Min + l.Max) / 2

	return center + WrapAngle(angle-center)
}

// Deviation returns how far the angle lies outside [Min, Max] and whether the
// limit is active.
func (l AngleLimit) Deviation(angle float64) (float64, bool) {
	angle = l.Unwrap(angle)

	switch {
	case angle < l.Min:
		return angle - l.Min, true
	case angle > l.Max:
		return angle - l.Max, true
	}

	return 0, false
}

// Solve corrects the angle of bodyB relative to bodyA about the world axis.
// The effective inertia is the projection of both inverse inertia tensors on axis.
// Returns the multiplier increment and whether the limit was active.
func (l AngleLimit) Solve(bodyA, bodyB *actor.RigidBody, axis mgl64.Vec3, angle, compliance, h float64) (float64, bool) {
	deviation, active := l.Deviation(angle)
	if !active {
		return 0, false
	}

	// bodyB is past the bound by deviation, so bodyA is ahead by -deviation
	return ApplyAngularCorrection(bodyA, bodyB, axis.Mul(-deviation), compliance, h), true
}
