package constraint

import (
	"math"

	"github.com/akmonengine/hinge/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// DistanceJoint keeps the anchors at RestLength from each other, or within
// [MinLength, MaxLength] when HasLimits is set.
type DistanceJoint struct {
	LocalAnchorA mgl64.Vec3
	LocalAnchorB mgl64.Vec3

	RestLength float64
	MinLength  float64
	MaxLength  float64
	HasLimits  bool

	Compliance    float64
	DampingLinear float64

	lambda float64
}

func NewDistanceJoint(localAnchorA, localAnchorB mgl64.Vec3, restLength float64) (*DistanceJoint, error) {
	if restLength < 0 || math.IsNaN(restLength) {
		return nil, &InvalidConfigError{Field: "rest_length", Value: restLength, Reason: "must not be negative"}
	}

	return &DistanceJoint{
		LocalAnchorA: localAnchorA,
		LocalAnchorB: localAnchorB,
		RestLength:   restLength,
	}, nil
}

// SetLengthLimits replaces the rest length with an allowed range
func (j *DistanceJoint) SetLengthLimits(min, max float64) error {
	if min < 0 || min > max || math.IsNaN(min) || math.IsNaN(max) {
		return &InvalidConfigError{Field: "length_limits", Value: [2]float64{min, max}, Reason: "expected 0 <= min <= max"}
	}
	j.MinLength, j.MaxLength, j.HasLimits = min, max, true

	return nil
}

func (j *DistanceJoint) Attach(bodyA, bodyB *actor.RigidBody) {}

func (j *DistanceJoint) ResetLambda() {
	j.lambda = 0
}

func (j *DistanceJoint) SolvePosition(bodyA, bodyB *actor.RigidBody, h float64) {
	rA := anchorOffset(bodyA, j.LocalAnchorA)
	rB := anchorOffset(bodyB, j.LocalAnchorB)
	separation := bodyA.CenterOfMassWorld().Add(rA).Sub(bodyB.CenterOfMassWorld().Add(rB))

	length := separation.Len()
	if length <= epsilon {
		// direction undefined
		return
	}

	target := j.RestLength
	if j.HasLimits {
		target = math.Max(j.MinLength, math.Min(j.MaxLength, length))
	}

	c := length - target
	if math.Abs(c) <= epsilon {
		return
	}

	delta := separation.Mul(c / length)
	j.lambda += ApplyPositionalCorrection(bodyA, bodyB, delta, rA, rB, j.Compliance, h)
}

func (j *DistanceJoint) SolveVelocity(bodyA, bodyB *actor.RigidBody, dt float64) {
	dampLinear(bodyA, bodyB, anchorOffset(bodyA, j.LocalAnchorA), anchorOffset(bodyB, j.LocalAnchorB), j.DampingLinear, dt)
}

func (j *DistanceJoint) Lambda() float64 {
	return j.lambda
}
