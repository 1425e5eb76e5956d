package constraint

import (
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/hinge/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Compliance (inverse stiffness, m/N) of common materials, for joints that
// should give a little.
const (
	CONCRETE_COMPLIANCE = 0.04e-9
	WOOD_COMPLIANCE     = 0.16e-9
	LEATHER_COMPLIANCE  = 14e-8
	TENDON_COMPLIANCE   = 0.2e-7
	RUBBER_COMPLIANCE   = 1e-6
	MUSCLE_COMPLIANCE   = 0.2e-3
	FAT_COMPLIANCE      = 1e-3
)

// Constraint is implemented by the closed set of joint and contact types.
// The world owns the bodies and hands them to the constraint on every call,
// a constraint never keeps a reference to a body.
type Constraint interface {
	// Attach freezes the rest configuration from the current poses
	Attach(bodyA, bodyB *actor.RigidBody)
	// ResetLambda clears the accumulated multipliers, once per tick
	ResetLambda()
	// SolvePosition applies the XPBD position correction for a substep of duration h
	SolvePosition(bodyA, bodyB *actor.RigidBody, h float64)
	// SolveVelocity applies the once-per-tick velocity corrections (restitution, friction, damping)
	SolveVelocity(bodyA, bodyB *actor.RigidBody, dt float64)
}

// ErrInvalidConfig is matched by every *InvalidConfigError through errors.Is
var ErrInvalidConfig = errors.New("invalid config")

// InvalidConfigError reports a malformed solver or joint parameter
type InvalidConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidConfigError) Unwrap() error {
	return ErrInvalidConfig
}

func ComputeRestitution(matA, matB actor.Material) float64 {
	// Average of both materials
	return (matA.Restitution + matB.Restitution) / 2.0
}

func ComputeStaticFriction(matA, matB actor.Material) float64 {
	// Geometric mean
	return math.Sqrt(matA.StaticFriction * matB.StaticFriction)
}

func ComputeDynamicFriction(matA, matB actor.Material) float64 {
	return math.Sqrt(matA.DynamicFriction * matB.DynamicFriction)
}

// ForceFromLambda converts a multiplier accumulated over a tick of duration dt,
// made of substeps of duration h, into the average constraint force (or torque).
func ForceFromLambda(lambda, h, dt float64) float64 {
	if h <= 0 || dt <= 0 {
		return 0
	}
	return lambda / (h * dt)
}

func clampSmallVelocities(rb *actor.RigidBody) {
	const velocityThreshold = 1e-5

	if rb.BodyType != actor.BodyTypeDynamic {
		return
	}
	if rb.Velocity.Len() < velocityThreshold {
		rb.Velocity = mgl64.Vec3{0, 0, 0}
	}
	if rb.AngularVelocity.Len() < velocityThreshold {
		rb.AngularVelocity = mgl64.Vec3{0, 0, 0}
	}
}
