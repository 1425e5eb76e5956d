package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity and constraints
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., ground, walls)
	BodyTypeStatic

	// BodyTypeKinematic bodies follow the velocity assigned by the host
	// They have infinite mass for the solver and are never pushed by constraints
	BodyTypeKinematic
)

func (t BodyType) String() string {
	switch t {
	case BodyTypeDynamic:
		return "dynamic"
	case BodyTypeStatic:
		return "static"
	case BodyTypeKinematic:
		return "kinematic"
	}
	return "unknown"
}

type Material struct {
	Restitution float64 // 0= no rebound, 1= perfect restitution

	StaticFriction  float64
	DynamicFriction float64
	LinearDamping   float64 // 1/s, typical: 0.01
	AngularDamping  float64 // 1/s, typical: 0.05
}

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	// Spatial properties
	TickTransform     Transform // pose at the start of the current tick
	PreviousTransform Transform // pose at the start of the current substep
	Transform         Transform

	// Linear motion, of the centre of mass
	PresolveVelocity mgl64.Vec3
	Velocity         mgl64.Vec3 // m/s

	// Angular motion
	PresolveAngularVelocity mgl64.Vec3
	AngularVelocity         mgl64.Vec3 // rad/s

	Mass         MassProperties
	GravityScale float64

	accumulatedForce  mgl64.Vec3
	accumulatedTorque mgl64.Vec3

	Material Material
	BodyType BodyType

	Shape ShapeInterface

	IsSleeping bool
	SleepTimer float64 // time spent under the sleep velocity threshold
}

// NewRigidBody creates a new rigid body, mass properties are derived from the
// shape and the MassSpec for dynamic bodies and forced to infinite otherwise.
func NewRigidBody(transform Transform, shape ShapeInterface, bodyType BodyType, spec MassSpec) (*RigidBody, error) {
	mass, err := MassPropertiesFor(bodyType, shape, spec)
	if err != nil {
		return nil, err
	}

	if transform.Rotation.Len() == 0 {
		transform.Rotation = mgl64.QuatIdent()
	}
	transform.SetRotation(transform.Rotation)

	return &RigidBody{
		TickTransform:     transform,
		PreviousTransform: transform,
		Transform:         transform,
		Shape:             shape,
		BodyType:          bodyType,
		Mass:              mass,
		GravityScale:      1.0,
	}, nil
}

// IsDynamic reports whether constraints may displace the body
func (rb *RigidBody) IsDynamic() bool {
	return rb.BodyType == BodyTypeDynamic
}

// InverseMass is zero for Static and Kinematic bodies
func (rb *RigidBody) InverseMass() float64 {
	if rb.BodyType != BodyTypeDynamic {
		return 0
	}
	return rb.Mass.InverseMass
}

// CenterOfMassWorld returns the centre of mass in world space
func (rb *RigidBody) CenterOfMassWorld() mgl64.Vec3 {
	return rb.Transform.ToWorld(rb.Mass.CenterOfMass)
}

// Inertia in world space
func (rb *RigidBody) GetInertiaWorld() mgl64.Mat3 {
	// I_world = R * I_local * R^T
	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.Mass.Inertia).Mul3(R.Transpose())
}

// Inverse inertia in world space
func (rb *RigidBody) GetInverseInertiaWorld() mgl64.Mat3 {
	if rb.BodyType != BodyTypeDynamic {
		return mgl64.Mat3{}
	}

	// I_world^(-1) = R * I_local^(-1) * R^T
	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.Mass.InverseInertia).Mul3(R.Transpose())
}

// BeginTick snapshots the state needed by the once-per-tick velocity pass
func (rb *RigidBody) BeginTick() {
	rb.TickTransform = rb.Transform
	rb.PresolveVelocity = rb.Velocity
	rb.PresolveAngularVelocity = rb.AngularVelocity
}

// TrySleep accumulates the time spent under velocityThreshold and reports
// whether the body has rested for timeThreshold. Moving resets the timer.
func (rb *RigidBody) TrySleep(dt float64, timeThreshold float64, velocityThreshold float64) bool {
	if rb.BodyType != BodyTypeDynamic {
		return false
	}
	if rb.Velocity.Len() >= velocityThreshold || rb.AngularVelocity.Len() >= velocityThreshold {
		rb.SleepTimer = 0.0
		return false
	}

	rb.SleepTimer += dt
	return rb.SleepTimer >= timeThreshold
}

// Sleep freezes the body until Awake is called
func (rb *RigidBody) Sleep() {
	rb.IsSleeping = true
	rb.SleepTimer = 0.0

	rb.ClearForces()
	rb.Velocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
}

func (rb *RigidBody) Awake() {
	rb.IsSleeping = false
	rb.SleepTimer = 0.0
}

// Integrate predicts the pose at the end of the substep h
func (rb *RigidBody) Integrate(h float64, gravity mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic || rb.IsSleeping {
		return
	}

	rb.PreviousTransform = rb.Transform

	if rb.BodyType == BodyTypeDynamic {
		acceleration := gravity.Mul(rb.GravityScale).Add(rb.accumulatedForce.Mul(rb.Mass.InverseMass))
		rb.Velocity = rb.Velocity.Add(acceleration.Mul(h))

		angularAcceleration := rb.GetInverseInertiaWorld().Mul3x1(rb.accumulatedTorque)
		rb.AngularVelocity = rb.AngularVelocity.Add(angularAcceleration.Mul(h))
	}

	center := rb.CenterOfMassWorld().Add(rb.Velocity.Mul(h))
	rb.rotateAbout(center, rb.AngularVelocity.Mul(h))
}

// ApplyPositionCorrection displaces the body by a positional impulse p applied at
// the world offset r from the centre of mass.
func (rb *RigidBody) ApplyPositionCorrection(p, r mgl64.Vec3) {
	if rb.BodyType != BodyTypeDynamic {
		return
	}

	center := rb.CenterOfMassWorld().Add(p.Mul(rb.Mass.InverseMass))
	rb.rotateAbout(center, rb.GetInverseInertiaWorld().Mul3x1(r.Cross(p)))
}

// ApplyRotationCorrection rotates the body by a small rotation vector about its centre of mass
func (rb *RigidBody) ApplyRotationCorrection(rotation mgl64.Vec3) {
	if rb.BodyType != BodyTypeDynamic {
		return
	}

	rb.rotateAbout(rb.CenterOfMassWorld(), rotation)
}

// rotateAbout places the centre of mass at center and applies the small rotation
// through the quaternion derivative, renormalizing to keep a unit quaternion.
func (rb *RigidBody) rotateAbout(center, rotation mgl64.Vec3) {
	if rotation.Len() > 0 {
		qDot := mgl64.Quat{W: 0, V: rotation}.Mul(rb.Transform.Rotation).Scale(0.5)
		rb.Transform.SetRotation(rb.Transform.Rotation.Add(qDot))
	}

	rb.Transform.Position = center.Sub(rb.Transform.Rotation.Rotate(rb.Mass.CenterOfMass))
}

// DeriveVelocity rebuilds the velocities from the net displacement and rotation
// of the tick, measured from TickTransform over the full tick duration dt.
// Kinematic velocities are owned by the host and left untouched.
func (rb *RigidBody) DeriveVelocity(dt float64) {
	if rb.BodyType != BodyTypeDynamic || rb.IsSleeping {
		return
	}

	startCenter := rb.TickTransform.ToWorld(rb.Mass.CenterOfMass)
	rb.Velocity = rb.CenterOfMassWorld().Sub(startCenter).Mul(1.0 / dt)

	qDelta := rb.Transform.Rotation.Mul(rb.TickTransform.Rotation.Conjugate())
	qDelta = qDelta.Normalize()
	if qDelta.W >= 0.0 {
		rb.AngularVelocity = qDelta.V.Mul(2.0 / dt)
	} else {
		rb.AngularVelocity = qDelta.V.Mul(-2.0 / dt)
	}
}

// ApplyDamping attenuates the velocities over dt
func (rb *RigidBody) ApplyDamping(dt float64) {
	if rb.BodyType != BodyTypeDynamic {
		return
	}

	rb.Velocity = rb.Velocity.Mul(math.Exp(-rb.Material.LinearDamping * dt))
	rb.AngularVelocity = rb.AngularVelocity.Mul(math.Exp(-rb.Material.AngularDamping * dt))
}

// ApplyImpulse changes the velocities by an impulse applied at the world offset r
func (rb *RigidBody) ApplyImpulse(impulse, r mgl64.Vec3) {
	if rb.BodyType != BodyTypeDynamic {
		return
	}

	rb.Velocity = rb.Velocity.Add(impulse.Mul(rb.Mass.InverseMass))
	rb.AngularVelocity = rb.AngularVelocity.Add(rb.GetInverseInertiaWorld().Mul3x1(r.Cross(impulse)))
}

// ApplyAngularImpulse changes the angular velocity by a pure angular impulse
func (rb *RigidBody) ApplyAngularImpulse(impulse mgl64.Vec3) {
	if rb.BodyType != BodyTypeDynamic {
		return
	}

	rb.AngularVelocity = rb.AngularVelocity.Add(rb.GetInverseInertiaWorld().Mul3x1(impulse))
}

// VelocityAt returns the velocity of a body point given by its offset from the centre of mass
func (rb *RigidBody) VelocityAt(r mgl64.Vec3) mgl64.Vec3 {
	return rb.Velocity.Add(rb.AngularVelocity.Cross(r))
}

// PresolveVelocityAt is VelocityAt using the velocities from the start of the tick
func (rb *RigidBody) PresolveVelocityAt(r mgl64.Vec3) mgl64.Vec3 {
	return rb.PresolveVelocity.Add(rb.PresolveAngularVelocity.Cross(r))
}

// AddForce in N, applied during the next tick. A non-zero force wakes the body.
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.BodyType == BodyTypeDynamic {
		rb.accumulatedForce = rb.accumulatedForce.Add(force)
		if force != (mgl64.Vec3{}) {
			rb.Awake()
		}
	}
}

// AddTorque in N⋅m, applied during the next tick. A non-zero torque wakes the body.
func (rb *RigidBody) AddTorque(torque mgl64.Vec3) {
	if rb.BodyType == BodyTypeDynamic {
		rb.accumulatedTorque = rb.accumulatedTorque.Add(torque)
		if torque != (mgl64.Vec3{}) {
			rb.Awake()
		}
	}
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{0, 0, 0}
	rb.accumulatedTorque = mgl64.Vec3{0, 0, 0}
}
