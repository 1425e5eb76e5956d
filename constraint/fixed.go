package constraint

import (
	"github.com/akmonengine/hinge/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// FixedJoint welds two bodies: anchors joined and relative orientation locked
// to the one they had when attached.
type FixedJoint struct {
	LocalAnchorA mgl64.Vec3
	LocalAnchorB mgl64.Vec3

	Compliance      float64
	AlignCompliance float64

	// rest orientation of bodyB expressed in bodyA's frame
	restRotation mgl64.Quat

	positionLambda float64
	alignLambda    float64
}

func NewFixedJoint(localAnchorA, localAnchorB mgl64.Vec3) *FixedJoint {
	return &FixedJoint{
		LocalAnchorA: localAnchorA,
		LocalAnchorB: localAnchorB,
		restRotation: mgl64.QuatIdent(),
	}
}

func (j *FixedJoint) Attach(bodyA, bodyB *actor.RigidBody) {
	j.restRotation = bodyA.Transform.InverseRotation.Mul(bodyB.Transform.Rotation).Normalize()
}

func (j *FixedJoint) ResetLambda() {
	j.positionLambda = 0
	j.alignLambda = 0
}

func (j *FixedJoint) SolvePosition(bodyA, bodyB *actor.RigidBody, h float64) {
	// rotation by which bodyA's target frame is ahead of bodyB
	dq := bodyA.Transform.Rotation.Mul(j.restRotation).Mul(bodyB.Transform.Rotation.Conjugate()).Normalize()
	delta := dq.V.Mul(2)
	if dq.W < 0 {
		delta = delta.Mul(-1)
	}
	j.alignLambda += ApplyAngularCorrection(bodyA, bodyB, delta, j.AlignCompliance, h)

	j.positionLambda += solvePoint(bodyA, bodyB, j.LocalAnchorA, j.LocalAnchorB, j.Compliance, h)
}

func (j *FixedJoint) SolveVelocity(bodyA, bodyB *actor.RigidBody, dt float64) {}

func (j *FixedJoint) Lambdas() (position, align float64) {
	return j.positionLambda, j.alignLambda
}
