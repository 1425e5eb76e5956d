package constraint

import (
	"math"
	"testing"

	"github.com/akmonengine/hinge/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func TestRevoluteJoint_SetAngleLimits(t *testing.T) {
	joint := NewRevoluteJoint(mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})

	if err := joint.SetAngleLimits(1, -1); err == nil {
		t.Error("inverted limits should be rejected")
	}
	if joint.Limit != nil {
		t.Error("a rejected limit should not be stored")
	}
	if err := joint.SetAngleLimits(-1, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *joint.Limit != (AngleLimit{Min: -1, Max: 1}) {
		t.Errorf("Limit = %v", *joint.Limit)
	}
}

func TestRevoluteJoint_Attach(t *testing.T) {
	bodyA := createBody(t, actor.BodyTypeKinematic, mgl64.Vec3{})
	bodyB := createBody(t, actor.BodyTypeDynamic, mgl64.Vec3{0, -2, 0})
	bodyB.Transform.SetRotation(mgl64.QuatRotate(0.7, mgl64.Vec3{0, 1, 0}))

	joint := NewRevoluteJoint(mgl64.Vec3{}, mgl64.Vec3{0, 2, 0}, mgl64.Vec3{})
	joint.Attach(bodyA, bodyB)

	if joint.LocalAxisA != (mgl64.Vec3{0, 0, 1}) {
		t.Errorf("default axis = %v, want Z", joint.LocalAxisA)
	}
	// both axes are the same world direction at creation
	axisA := bodyA.Transform.Rotation.Rotate(joint.LocalAxisA)
	axisB := bodyB.Transform.Rotation.Rotate(joint.LocalAxisB)
	if !vec3AlmostEqual(axisA, axisB, 1e-12) {
		t.Errorf("world axes differ: %v / %v", axisA, axisB)
	}
	if angle := joint.Angle(bodyA, bodyB); math.Abs(angle) > 1e-12 {
		t.Errorf("Angle() = %v at creation, want 0", angle)
	}
}

func TestRevoluteJoint_Angle(t *testing.T) {
	bodyA := createBody(t, actor.BodyTypeStatic, mgl64.Vec3{})
	bodyB := createBody(t, actor.BodyTypeDynamic, mgl64.Vec3{})

	joint := NewRevoluteJoint(mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})
	joint.Attach(bodyA, bodyB)

	bodyB.Transform.SetRotation(mgl64.QuatRotate(0.4, mgl64.Vec3{0, 0, 1}))
	if angle := joint.Angle(bodyA, bodyB); math.Abs(angle-0.4) > 1e-12 {
		t.Errorf("Angle() = %v, want 0.4", angle)
	}

	bodyB.Transform.SetRotation(mgl64.QuatRotate(-2.0, mgl64.Vec3{0, 0, 1}))
	if angle := joint.Angle(bodyA, bodyB); math.Abs(angle+2.0) > 1e-12 {
		t.Errorf("Angle() = %v, want -2", angle)
	}
}

func TestRevoluteJoint_SolvePosition_JoinsAnchors(t *testing.T) {
	bodyA := createBody(t, actor.BodyTypeKinematic, mgl64.Vec3{})
	bodyB := createBody(t, actor.BodyTypeDynamic, mgl64.Vec3{0, -2, 0})

	joint := NewRevoluteJoint(mgl64.Vec3{}, mgl64.Vec3{0, 2, 0}, mgl64.Vec3{0, 0, 1})
	joint.Attach(bodyA, bodyB)

	// pulled away along the arm
	bodyB.Transform.Position = mgl64.Vec3{0, -2.5, 0}
	if err := joint.AnchorError(bodyA, bodyB); math.Abs(err-0.5) > 1e-12 {
		t.Fatalf("AnchorError() = %v, want 0.5", err)
	}

	joint.ResetLambda()
	joint.SolvePosition(bodyA, bodyB, 1.0/600.0)

	if err := joint.AnchorError(bodyA, bodyB); err > 1e-9 {
		t.Errorf("AnchorError() = %v after a rigid solve, want 0", err)
	}
	if bodyA.Transform.Position != (mgl64.Vec3{}) {
		t.Errorf("kinematic anchor moved to %v", bodyA.Transform.Position)
	}
	position, _, _ := joint.Lambdas()
	if position == 0 {
		t.Error("position multiplier should accumulate")
	}
}

func TestRevoluteJoint_SolvePosition_Compliance(t *testing.T) {
	solve := func(compliance float64) float64 {
		bodyA := createBody(t, actor.BodyTypeStatic, mgl64.Vec3{})
		bodyB := createBody(t, actor.BodyTypeDynamic, mgl64.Vec3{0, 0, 0})
		joint := NewRevoluteJoint(mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})
		joint.Compliance = compliance
		joint.Attach(bodyA, bodyB)

		bodyB.Transform.Position = mgl64.Vec3{0.1, 0, 0}
		joint.SolvePosition(bodyA, bodyB, 0.01)
		return joint.AnchorError(bodyA, bodyB)
	}

	rigid, soft := solve(0), solve(1e-3)
	if rigid > 1e-12 {
		t.Errorf("rigid joint left an error of %v", rigid)
	}
	if soft <= rigid || soft >= 0.1 {
		t.Errorf("soft joint error = %v, want between %v and 0.1", soft, rigid)
	}
}

func TestRevoluteJoint_SolvePosition_AlignsAxes(t *testing.T) {
	bodyA := createBody(t, actor.BodyTypeStatic, mgl64.Vec3{})
	bodyB := createBody(t, actor.BodyTypeDynamic, mgl64.Vec3{})

	joint := NewRevoluteJoint(mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})
	joint.Attach(bodyA, bodyB)

	// tilt out of the hinge plane
	bodyB.Transform.SetRotation(mgl64.QuatRotate(0.2, mgl64.Vec3{1, 0, 0}))

	for i := 0; i < 20; i++ {
		joint.SolvePosition(bodyA, bodyB, 0.01)
	}

	axisB := bodyB.Transform.Rotation.Rotate(joint.LocalAxisB)
	if !vec3AlmostEqual(axisB, mgl64.Vec3{0, 0, 1}, 1e-6) {
		t.Errorf("axis of bodyB = %v, want Z", axisB)
	}
}

func TestRevoluteJoint_SolvePosition_FreeRotation(t *testing.T) {
	bodyA := createBody(t, actor.BodyTypeStatic, mgl64.Vec3{})
	bodyB := createBody(t, actor.BodyTypeDynamic, mgl64.Vec3{})

	joint := NewRevoluteJoint(mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})
	joint.Attach(bodyA, bodyB)

	bodyB.Transform.SetRotation(mgl64.QuatRotate(2.5, mgl64.Vec3{0, 0, 1}))
	before := bodyB.Transform

	joint.SolvePosition(bodyA, bodyB, 0.01)

	if !vec3AlmostEqual(bodyB.Transform.Position, before.Position, 1e-12) || joint.LimitActive {
		t.Error("rotation about the hinge axis should not be corrected without a limit")
	}
	if angle := joint.Angle(bodyA, bodyB); math.Abs(angle-2.5) > 1e-9 {
		t.Errorf("Angle() = %v, want 2.5", angle)
	}
}

func TestRevoluteJoint_SolvePosition_Limit(t *testing.T) {
	tests := []struct {
		name       string
		angle      float64
		wantAngle  float64
		wantActive bool
	}{
		{"inside the range", 0.5, 0.5, false},
		{"just inside the bound", 0.99, 0.99, false},
		{"past max", 1.5, 1.0, true},
		{"past min", -1.3, -1.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bodyA := createBody(t, actor.BodyTypeKinematic, mgl64.Vec3{})
			bodyB := createBody(t, actor.BodyTypeDynamic, mgl64.Vec3{})

			joint := NewRevoluteJoint(mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})
			if err := joint.SetAngleLimits(-1, 1); err != nil {
				t.Fatal(err)
			}
			joint.Attach(bodyA, bodyB)
			bodyB.Transform.SetRotation(mgl64.QuatRotate(tt.angle, mgl64.Vec3{0, 0, 1}))

			joint.SolvePosition(bodyA, bodyB, 0.01)
			if joint.LimitActive != tt.wantActive {
				t.Errorf("LimitActive = %v, want %v", joint.LimitActive, tt.wantActive)
			}
			_, _, limitLambda := joint.Lambdas()
			if (limitLambda != 0) != tt.wantActive {
				t.Errorf("limit multiplier = %v, active %v", limitLambda, tt.wantActive)
			}

			// the quaternion update is first order, a few passes converge
			for i := 0; i < 10; i++ {
				joint.SolvePosition(bodyA, bodyB, 0.01)
			}
			if angle := joint.Angle(bodyA, bodyB); math.Abs(angle-tt.wantAngle) > 1e-6 {
				t.Errorf("Angle() = %v, want %v", angle, tt.wantAngle)
			}
		})
	}
}

func TestRevoluteJoint_ResetLambda(t *testing.T) {
	bodyA := createBody(t, actor.BodyTypeStatic, mgl64.Vec3{})
	bodyB := createBody(t, actor.BodyTypeDynamic, mgl64.Vec3{0.1, 0, 0})

	joint := NewRevoluteJoint(mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})
	joint.Attach(bodyA, bodyB)
	bodyB.Transform.Position = mgl64.Vec3{0.2, 0, 0}
	joint.SolvePosition(bodyA, bodyB, 0.01)

	joint.ResetLambda()
	position, align, limit := joint.Lambdas()
	if position != 0 || align != 0 || limit != 0 {
		t.Errorf("Lambdas() = %v, %v, %v after reset", position, align, limit)
	}
}

func TestRevoluteJoint_SolveVelocity_Damping(t *testing.T) {
	bodyA := createBody(t, actor.BodyTypeStatic, mgl64.Vec3{})
	bodyB := createBody(t, actor.BodyTypeDynamic, mgl64.Vec3{})

	joint := NewRevoluteJoint(mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})
	joint.DampingAngular = 10
	joint.Attach(bodyA, bodyB)

	bodyB.AngularVelocity = mgl64.Vec3{0, 0, 2}
	joint.SolveVelocity(bodyA, bodyB, 0.05)

	// half of the relative spin is removed
	if !vec3AlmostEqual(bodyB.AngularVelocity, mgl64.Vec3{0, 0, 1}, 1e-9) {
		t.Errorf("AngularVelocity = %v, want {0, 0, 1}", bodyB.AngularVelocity)
	}
}
