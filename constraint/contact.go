package constraint

import (
	"math"

	"github.com/akmonengine/hinge/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultContactCompliance controls soft constraint stiffness for contact resolution.
	// Lower values = stiffer contacts (less penetration, potential jitter)
	// Higher values = softer contacts (more penetration, smoother)
	// Typical range: 1e-10 (very stiff) to 1e-6 (soft)
	DefaultContactCompliance = 1e-7
)

// ContactPoint is produced by an external narrow phase: the deepest point of
// bodyB inside bodyA and the depth along the contact normal.
type ContactPoint struct {
	Position    mgl64.Vec3
	Penetration float64
}

type contactAnchor struct {
	localA mgl64.Vec3
	localB mgl64.Vec3
	lambda float64
}

// ContactConstraint keeps two bodies from interpenetrating along Normal,
// which points from bodyA towards bodyB.
type ContactConstraint struct {
	Points     []ContactPoint
	Normal     mgl64.Vec3
	Compliance float64

	anchors []contactAnchor
	substep float64
}

func NewContactConstraint(normal mgl64.Vec3, points []ContactPoint) *ContactConstraint {
	return &ContactConstraint{
		Points:     points,
		Normal:     normal.Normalize(),
		Compliance: DefaultContactCompliance,
	}
}

// Attach freezes each contact point in both bodies' local spaces, so that the
// penetration can be measured again after every substep.
func (c *ContactConstraint) Attach(bodyA, bodyB *actor.RigidBody) {
	c.anchors = c.anchors[:0]
	for _, point := range c.Points {
		surfaceA := point.Position.Add(c.Normal.Mul(point.Penetration))
		c.anchors = append(c.anchors, contactAnchor{
			localA: bodyA.Transform.ToLocal(surfaceA),
			localB: bodyB.Transform.ToLocal(point.Position),
		})
	}
}

func (c *ContactConstraint) ResetLambda() {
	for i := range c.anchors {
		c.anchors[i].lambda = 0
	}
}

// SolvePosition pushes the bodies apart along the normal, never pulls them together
func (c *ContactConstraint) SolvePosition(bodyA, bodyB *actor.RigidBody, h float64) {
	c.substep = h
	for i := range c.anchors {
		anchor := &c.anchors[i]

		rA := anchorOffset(bodyA, anchor.localA)
		rB := anchorOffset(bodyB, anchor.localB)
		pointA := bodyA.CenterOfMassWorld().Add(rA)
		pointB := bodyB.CenterOfMassWorld().Add(rB)

		penetration := pointA.Sub(pointB).Dot(c.Normal)
		if penetration <= 1e-8 {
			continue
		}

		anchor.lambda += ApplyPositionalCorrection(bodyA, bodyB, c.Normal.Mul(penetration), rA, rB, c.Compliance, h)
	}
}

// SolveVelocity applies restitution and Coulomb friction, once per tick, on
// the points that were resolved during the substeps.
func (c *ContactConstraint) SolveVelocity(bodyA, bodyB *actor.RigidBody, dt float64) {
	restitution := ComputeRestitution(bodyA.Material, bodyB.Material)
	staticFriction := ComputeStaticFriction(bodyA.Material, bodyB.Material)
	dynamicFriction := ComputeDynamicFriction(bodyA.Material, bodyB.Material)

	for _, anchor := range c.anchors {
		if anchor.lambda == 0 {
			continue
		}

		rA := anchorOffset(bodyA, anchor.localA)
		rB := anchorOffset(bodyB, anchor.localB)

		relativeVel := bodyB.VelocityAt(rB).Sub(bodyA.VelocityAt(rA))
		normalVel := relativeVel.Dot(c.Normal)
		relativeVelPrev := bodyB.PresolveVelocityAt(rB).Sub(bodyA.PresolveVelocityAt(rA))
		normalVelPrev := relativeVelPrev.Dot(c.Normal)

		// ========== NORMAL IMPULSE (restitution) ==========
		effectiveMassNormal := PositionalInverseMass(bodyA, rA, c.Normal) + PositionalInverseMass(bodyB, rB, c.Normal)
		if effectiveMassNormal < epsilon {
			continue
		}

		lambdaNormal := 0.0
		if normalVelPrev < 0 {
			targetVel := -restitution * normalVelPrev
			lambdaNormal = math.Max(0, (targetVel-normalVel)/effectiveMassNormal)
		}

		normalImpulse := c.Normal.Mul(lambdaNormal)
		bodyA.ApplyImpulse(normalImpulse.Mul(-1), rA)
		bodyB.ApplyImpulse(normalImpulse, rB)

		// ========== TANGENTIAL IMPULSE (friction) ==========
		// Normal impulse over the tick: position multipliers plus restitution
		totalNormalImpulse := lambdaNormal
		if c.substep > 0 {
			totalNormalImpulse += math.Abs(anchor.lambda) / c.substep
		}

		relativeVel = bodyB.VelocityAt(rB).Sub(bodyA.VelocityAt(rA))
		tangentVel := relativeVel.Sub(c.Normal.Mul(relativeVel.Dot(c.Normal)))
		tangentSpeed := tangentVel.Len()
		if tangentSpeed <= 1e-6 {
			continue
		}
		tangentDir := tangentVel.Mul(1.0 / tangentSpeed)

		effectiveMassTangent := PositionalInverseMass(bodyA, rA, tangentDir) + PositionalInverseMass(bodyB, rB, tangentDir)
		if effectiveMassTangent < epsilon {
			continue
		}

		// Impulse cancelling the tangential velocity
		lambdaTangent := tangentSpeed / effectiveMassTangent

		// Coulomb's law: |F_friction| ≤ μ * |F_normal|
		if lambdaTangent > staticFriction*totalNormalImpulse {
			lambdaTangent = math.Min(lambdaTangent, dynamicFriction*totalNormalImpulse)
		}

		frictionImpulse := tangentDir.Mul(-lambdaTangent)
		bodyA.ApplyImpulse(frictionImpulse.Mul(-1), rA)
		bodyB.ApplyImpulse(frictionImpulse, rB)
	}

	clampSmallVelocities(bodyA)
	clampSmallVelocities(bodyB)
}

// NormalLambda returns the multiplier accumulated over all points since the start of the tick
func (c *ContactConstraint) NormalLambda() float64 {
	total := 0.0
	for _, anchor := range c.anchors {
		total += anchor.lambda
	}

	return total
}
