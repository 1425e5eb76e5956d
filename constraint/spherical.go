package constraint

import (
	"github.com/akmonengine/hinge/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// SphericalJoint (ball and socket) keeps two anchors together and leaves the
// relative rotation free.
type SphericalJoint struct {
	LocalAnchorA mgl64.Vec3
	LocalAnchorB mgl64.Vec3
	Compliance   float64

	DampingLinear  float64
	DampingAngular float64

	lambda float64
}

func NewSphericalJoint(localAnchorA, localAnchorB mgl64.Vec3) *SphericalJoint {
	return &SphericalJoint{
		LocalAnchorA: localAnchorA,
		LocalAnchorB: localAnchorB,
	}
}

func (j *SphericalJoint) Attach(bodyA, bodyB *actor.RigidBody) {}

func (j *SphericalJoint) ResetLambda() {
	j.lambda = 0
}

func (j *SphericalJoint) SolvePosition(bodyA, bodyB *actor.RigidBody, h float64) {
	j.lambda += solvePoint(bodyA, bodyB, j.LocalAnchorA, j.LocalAnchorB, j.Compliance, h)
}

func (j *SphericalJoint) SolveVelocity(bodyA, bodyB *actor.RigidBody, dt float64) {
	rA := anchorOffset(bodyA, j.LocalAnchorA)
	rB := anchorOffset(bodyB, j.LocalAnchorB)

	dampLinear(bodyA, bodyB, rA, rB, j.DampingLinear, dt)
	dampAngular(bodyA, bodyB, j.DampingAngular, dt)
}

func (j *SphericalJoint) Lambda() float64 {
	return j.lambda
}
