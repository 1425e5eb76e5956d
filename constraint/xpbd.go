package constraint

import (
	"math"

	"github.com/akmonengine/hinge/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-10

// DeltaLambda returns the XPBD multiplier increment of a substep:
//
//	Δλ = -c / (w1 + w2 + α/h²)
//
// c is the constraint error, w1 and w2 the generalized inverse masses along the
// gradient and α the compliance (inverse stiffness).
func DeltaLambda(c, w1, w2, compliance, h float64) float64 {
	alphaTilde := compliance / (h * h)
	w := w1 + w2 + alphaTilde
	if w <= epsilon {
		return 0
	}

	return -c / w
}

// PositionalInverseMass is the generalized inverse mass of a body for a
// correction along n applied at the offset r from its centre of mass.
func PositionalInverseMass(body *actor.RigidBody, r, n mgl64.Vec3) float64 {
	if !body.IsDynamic() {
		return 0
	}

	rCrossN := r.Cross(n)
	return body.InverseMass() + body.GetInverseInertiaWorld().Mul3x1(rCrossN).Dot(rCrossN)
}

// AngularInverseMass projects the world inverse inertia onto the axis n
func AngularInverseMass(body *actor.RigidBody, n mgl64.Vec3) float64 {
	if !body.IsDynamic() {
		return 0
	}

	return body.GetInverseInertiaWorld().Mul3x1(n).Dot(n)
}

// ApplyPositionalCorrection resolves the positional error delta = anchorA - anchorB.
// The error is |delta| and the gradient its direction. rA and rB are the anchor
// offsets from each centre of mass. Returns the multiplier increment.
func ApplyPositionalCorrection(bodyA, bodyB *actor.RigidBody, delta, rA, rB mgl64.Vec3, compliance, h float64) float64 {
	c := delta.Len()
	if c <= epsilon {
		return 0
	}
	n := delta.Mul(1.0 / c)

	wA := PositionalInverseMass(bodyA, rA, n)
	wB := PositionalInverseMass(bodyB, rB, n)
	deltaLambda := DeltaLambda(c, wA, wB, compliance, h)
	if deltaLambda == 0 {
		return 0
	}

	p := n.Mul(deltaLambda)
	bodyA.ApplyPositionCorrection(p, rA)
	bodyB.ApplyPositionCorrection(p.Mul(-1), rB)

	return deltaLambda
}

// ApplyAngularCorrection resolves the rotation error delta, the small rotation
// by which bodyA is ahead of bodyB. Returns the multiplier increment.
func ApplyAngularCorrection(bodyA, bodyB *actor.RigidBody, delta mgl64.Vec3, compliance, h float64) float64 {
	theta := delta.Len()
	if theta <= epsilon {
		return 0
	}
	n := delta.Mul(1.0 / theta)

	inverseInertiaA := bodyA.GetInverseInertiaWorld()
	inverseInertiaB := bodyB.GetInverseInertiaWorld()
	wA := inverseInertiaA.Mul3x1(n).Dot(n)
	wB := inverseInertiaB.Mul3x1(n).Dot(n)
	deltaLambda := DeltaLambda(theta, wA, wB, compliance, h)
	if deltaLambda == 0 {
		return 0
	}

	p := n.Mul(deltaLambda)
	bodyA.ApplyRotationCorrection(inverseInertiaA.Mul3x1(p))
	bodyB.ApplyRotationCorrection(inverseInertiaB.Mul3x1(p).Mul(-1))

	return deltaLambda
}

// anchorOffset returns the world offset of a body-local anchor from the centre of mass
func anchorOffset(body *actor.RigidBody, localAnchor mgl64.Vec3) mgl64.Vec3 {
	return body.Transform.Rotation.Rotate(localAnchor.Sub(body.Mass.CenterOfMass))
}

// dampLinear removes a fraction min(damping*dt, 1) of the relative velocity of
// two anchors, shared by the inverse masses.
func dampLinear(bodyA, bodyB *actor.RigidBody, rA, rB mgl64.Vec3, damping, dt float64) {
	if damping <= 0 {
		return
	}

	relative := bodyB.VelocityAt(rB).Sub(bodyA.VelocityAt(rA))
	speed := relative.Len()
	if speed <= epsilon {
		return
	}
	n := relative.Mul(1.0 / speed)

	w := PositionalInverseMass(bodyA, rA, n) + PositionalInverseMass(bodyB, rB, n)
	if w <= epsilon {
		return
	}

	impulse := n.Mul(speed * math.Min(damping*dt, 1.0) / w)
	bodyA.ApplyImpulse(impulse, rA)
	bodyB.ApplyImpulse(impulse.Mul(-1), rB)
}

// dampAngular is dampLinear for the relative angular velocity
func dampAngular(bodyA, bodyB *actor.RigidBody, damping, dt float64) {
	if damping <= 0 {
		return
	}

	relative := bodyB.AngularVelocity.Sub(bodyA.AngularVelocity)
	speed := relative.Len()
	if speed <= epsilon {
		return
	}
	n := relative.Mul(1.0 / speed)

	w := AngularInverseMass(bodyA, n) + AngularInverseMass(bodyB, n)
	if w <= epsilon {
		return
	}

	impulse := n.Mul(speed * math.Min(damping*dt, 1.0) / w)
	bodyA.ApplyAngularImpulse(impulse)
	bodyB.ApplyAngularImpulse(impulse.Mul(-1))
}

// perpendicular returns a deterministic unit vector orthogonal to v
func perpendicular(v mgl64.Vec3) mgl64.Vec3 {
	var tangent mgl64.Vec3
	if math.Abs(v.X()) > 0.9 {
		tangent = mgl64.Vec3{0, 1, 0}
	} else {
		tangent = mgl64.Vec3{1, 0, 0}
	}

	return tangent.Sub(v.Mul(tangent.Dot(v))).Normalize()
}
