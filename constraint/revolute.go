package constraint

import (
	"github.com/akmonengine/hinge/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// RevoluteJoint pins two bodies together at an anchor and lets them rotate
// relative to each other about a single hinge axis, optionally within an angle limit.
type RevoluteJoint struct {
	// Anchors in each body's local space (relative to the body origin)
	LocalAnchorA mgl64.Vec3
	LocalAnchorB mgl64.Vec3

	// Hinge axis in each body's local space. LocalAxisB is derived from the
	// poses at Attach time when left zero.
	LocalAxisA mgl64.Vec3
	LocalAxisB mgl64.Vec3

	// Reference directions orthogonal to the axis, the joint angle is the
	// rotation from the first to the second. Derived at Attach time when zero.
	LocalReferenceA mgl64.Vec3
	LocalReferenceB mgl64.Vec3

	Limit *AngleLimit

	Compliance      float64 // anchor (point-to-point) compliance
	AlignCompliance float64 // hinge axis alignment compliance
	LimitCompliance float64

	DampingLinear  float64
	DampingAngular float64

	// LimitActive is true when the limit corrected the angle during the last substep
	LimitActive bool

	positionLambda float64
	alignLambda    float64
	limitLambda    float64
}

// NewRevoluteJoint creates a hinge about axis, given in bodyA's local frame
func NewRevoluteJoint(localAnchorA, localAnchorB, axis mgl64.Vec3) *RevoluteJoint {
	return &RevoluteJoint{
		LocalAnchorA: localAnchorA,
		LocalAnchorB: localAnchorB,
		LocalAxisA:   axis,
	}
}

// SetAngleLimits enables the angle limit, min must not exceed max
func (j *RevoluteJoint) SetAngleLimits(min, max float64) error {
	limit, err := NewAngleLimit(min, max)
	if err != nil {
		return err
	}
	j.Limit = &limit

	return nil
}

func (j *RevoluteJoint) Attach(bodyA, bodyB *actor.RigidBody) {
	if j.LocalAxisA.Len() <= epsilon {
		j.LocalAxisA = mgl64.Vec3{0, 0, 1}
	}
	j.LocalAxisA = j.LocalAxisA.Normalize()

	// bodyA local frame -> bodyB local frame, at the current relative pose
	toB := bodyB.Transform.InverseRotation.Mul(bodyA.Transform.Rotation)

	if j.LocalAxisB.Len() <= epsilon {
		j.LocalAxisB = toB.Rotate(j.LocalAxisA)
	}
	j.LocalAxisB = j.LocalAxisB.Normalize()

	if j.LocalReferenceA.Len() <= epsilon {
		j.LocalReferenceA = perpendicular(j.LocalAxisA)
	}
	if j.LocalReferenceB.Len() <= epsilon {
		j.LocalReferenceB = toB.Rotate(j.LocalReferenceA)
	}
}

func (j *RevoluteJoint) ResetLambda() {
	j.positionLambda = 0
	j.alignLambda = 0
	j.limitLambda = 0
}

// SolvePosition aligns the hinge axes, joins the anchors, then applies the
// angle limit on the already corrected orientation.
func (j *RevoluteJoint) SolvePosition(bodyA, bodyB *actor.RigidBody, h float64) {
	axisA := bodyA.Transform.Rotation.Rotate(j.LocalAxisA)
	axisB := bodyB.Transform.Rotation.Rotate(j.LocalAxisB)
	j.alignLambda += ApplyAngularCorrection(bodyA, bodyB, axisB.Cross(axisA), j.AlignCompliance, h)

	j.positionLambda += solvePoint(bodyA, bodyB, j.LocalAnchorA, j.LocalAnchorB, j.Compliance, h)

	j.LimitActive = false
	if j.Limit == nil {
		return
	}

	axis := bodyA.Transform.Rotation.Rotate(j.LocalAxisA)
	deltaLambda, active := j.Limit.Solve(bodyA, bodyB, axis, j.Angle(bodyA, bodyB), j.LimitCompliance, h)
	j.LimitActive = active
	j.limitLambda += deltaLambda
}

func (j *RevoluteJoint) SolveVelocity(bodyA, bodyB *actor.RigidBody, dt float64) {
	rA := anchorOffset(bodyA, j.LocalAnchorA)
	rB := anchorOffset(bodyB, j.LocalAnchorB)

	dampLinear(bodyA, bodyB, rA, rB, j.DampingLinear, dt)
	dampAngular(bodyA, bodyB, j.DampingAngular, dt)
}

// Angle returns the signed rotation of bodyB relative to bodyA about the hinge axis
func (j *RevoluteJoint) Angle(bodyA, bodyB *actor.RigidBody) float64 {
	axis := bodyA.Transform.Rotation.Rotate(j.LocalAxisA)
	referenceA := bodyA.Transform.Rotation.Rotate(j.LocalReferenceA)
	referenceB := bodyB.Transform.Rotation.Rotate(j.LocalReferenceB)

	return SignedAngle(axis, referenceA, referenceB)
}

// AnchorError is the world distance between both anchors
func (j *RevoluteJoint) AnchorError(bodyA, bodyB *actor.RigidBody) float64 {
	return bodyA.Transform.ToWorld(j.LocalAnchorA).Sub(bodyB.Transform.ToWorld(j.LocalAnchorB)).Len()
}

// Lambdas returns the multipliers accumulated since the start of the tick
func (j *RevoluteJoint) Lambdas() (position, align, limit float64) {
	return j.positionLambda, j.alignLambda, j.limitLambda
}

// solvePoint is the point-to-point constraint shared by the anchored joints
func solvePoint(bodyA, bodyB *actor.RigidBody, localAnchorA, localAnchorB mgl64.Vec3, compliance, h float64) float64 {
	rA := anchorOffset(bodyA, localAnchorA)
	rB := anchorOffset(bodyB, localAnchorB)
	delta := bodyA.CenterOfMassWorld().Add(rA).Sub(bodyB.CenterOfMassWorld().Add(rB))

	return ApplyPositionalCorrection(bodyA, bodyB, delta, rA, rB, compliance, h)
}
