package hinge

import (
	"fmt"

	"github.com/akmonengine/hinge/actor"
	"github.com/akmonengine/hinge/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DEFAULT_WORKERS  = 1
	DEFAULT_SUBSTEPS = 12

	// An island falls asleep once all its dynamic bodies stayed under
	// DEFAULT_SLEEP_VELOCITY (m/s and rad/s) for DEFAULT_SLEEP_TIME (s)
	DEFAULT_SLEEP_TIME     = 0.5
	DEFAULT_SLEEP_VELOCITY = 0.05
)

// BodyHandle is a stable reference to a body of a World. The zero value is
// the fixed world anchor, usable as one side of a joint.
type BodyHandle struct {
	index      uint32
	generation uint32
}

// WorldAnchor attaches a joint to a fixed point of the world
var WorldAnchor = BodyHandle{}

func (h BodyHandle) String() string {
	if h == WorldAnchor {
		return "body(world)"
	}
	return fmt.Sprintf("body(%d#%d)", h.index, h.generation)
}

// ConstraintHandle is a stable reference to a joint or to a contact of the
// next tick, ids are never reused
type ConstraintHandle struct {
	id uint64
}

func (h ConstraintHandle) String() string {
	return fmt.Sprintf("constraint(%d)", h.id)
}

// BodySpec describes a body to add
type BodySpec struct {
	Type     actor.BodyType
	Shape    actor.ShapeInterface
	Mass     actor.MassSpec
	Pose     actor.Transform
	Material actor.Material

	// Initial velocities; for Kinematic bodies, the driven velocities
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
}

// JointSpec connects two bodies with one of the joint types of the constraint package
type JointSpec struct {
	BodyA BodyHandle
	BodyB BodyHandle
	Joint constraint.Constraint
}

// ContactSpec is a contact manifold computed by an external narrow phase for the next tick
type ContactSpec struct {
	BodyA  BodyHandle
	BodyB  BodyHandle
	Normal mgl64.Vec3 // from BodyA towards BodyB
	Points []constraint.ContactPoint
	// Compliance of the contact, DefaultContactCompliance when zero
	Compliance float64
}

type bodySlot struct {
	body       *actor.RigidBody
	generation uint32
}

// contactPair identifies the bodies of a contact, lowest handle first
type contactPair struct {
	a, b BodyHandle
}

func newContactPair(a, b BodyHandle) contactPair {
	if b.index < a.index {
		a, b = b, a
	}
	return contactPair{a: a, b: b}
}

type constraintEntry struct {
	handle     ConstraintHandle
	bodyA      BodyHandle
	bodyB      BodyHandle
	constraint constraint.Constraint
	invalid    error

	// resolved for the current tick
	a, b *actor.RigidBody
}

// World holds the bodies and constraints of one simulation. It is not safe
// for concurrent use: mutate it between ticks, read it after a tick.
type World struct {
	// Gravity acceleration (m/s², or N/kg)
	Gravity mgl64.Vec3
	// Workers solving independent islands in parallel
	Workers int

	// SleepTime is the rest duration before an island sleeps, zero disables sleeping
	SleepTime float64
	// SleepVelocity is the linear (m/s) and angular (rad/s) rest threshold
	SleepVelocity float64

	Events Events

	substeps int

	bodies     []bodySlot
	freeBodies []uint32
	ground     *actor.RigidBody

	constraints    []*constraintEntry // insertion order is the solve order
	nextConstraint uint64
	contacts       []*constraintEntry // cleared after every tick

	// bodies in contact during the current and the previous tick
	contactPairs         map[contactPair]bool
	previousContactPairs map[contactPair]bool

	lastSubstep float64
	lastTick    float64
}

// NewWorld creates an empty world with earth gravity along -Y
func NewWorld() *World {
	ground, _ := actor.NewRigidBody(actor.NewTransform(), nil, actor.BodyTypeStatic, actor.MassSpec{})

	return &World{
		Gravity:              mgl64.Vec3{0, -9.81, 0},
		Workers:              DEFAULT_WORKERS,
		SleepTime:            DEFAULT_SLEEP_TIME,
		SleepVelocity:        DEFAULT_SLEEP_VELOCITY,
		Events:               NewEvents(),
		substeps:             DEFAULT_SUBSTEPS,
		ground:               ground,
		contactPairs:         make(map[contactPair]bool),
		previousContactPairs: make(map[contactPair]bool),
	}
}

// SetSubstepCount sets the number of substeps per tick
func (w *World) SetSubstepCount(substeps int) error {
	if substeps <= 0 {
		return &InvalidConfigError{Field: "substeps", Value: substeps, Reason: "must be a positive integer"}
	}
	w.substeps = substeps

	return nil
}

func (w *World) SubstepCount() int {
	return w.substeps
}

// AddBody creates a body; mass errors leave the world untouched
func (w *World) AddBody(spec BodySpec) (BodyHandle, error) {
	body, err := actor.NewRigidBody(spec.Pose, spec.Shape, spec.Type, spec.Mass)
	if err != nil {
		return BodyHandle{}, err
	}
	body.Material = spec.Material
	if spec.Type != actor.BodyTypeStatic {
		body.Velocity = spec.Velocity
		body.AngularVelocity = spec.AngularVelocity
	}

	if n := len(w.freeBodies); n > 0 {
		index := w.freeBodies[n-1]
		w.freeBodies = w.freeBodies[:n-1]
		w.bodies[index].body = body
		return BodyHandle{index: index + 1, generation: w.bodies[index].generation}, nil
	}

	w.bodies = append(w.bodies, bodySlot{body: body, generation: 1})
	return BodyHandle{index: uint32(len(w.bodies)), generation: 1}, nil
}

// RemoveBody removes a body and invalidates every constraint referencing it
func (w *World) RemoveBody(handle BodyHandle) error {
	if _, err := w.resolve(handle); err != nil || handle == WorldAnchor {
		return &DanglingReferenceError{Body: handle}
	}

	slot := &w.bodies[handle.index-1]
	slot.body = nil
	slot.generation++
	w.freeBodies = append(w.freeBodies, handle.index-1)

	w.wakeLinked(handle)
	for _, entries := range [][]*constraintEntry{w.constraints, w.contacts} {
		for _, entry := range entries {
			if entry.invalid == nil && (entry.bodyA == handle || entry.bodyB == handle) {
				entry.invalid = &DanglingReferenceError{Body: handle, Constraint: entry.handle}
			}
		}
	}
	w.Events.forgetBody(handle)

	return nil
}

// AddJoint registers a joint, it is attached at the current poses of its bodies
func (w *World) AddJoint(spec JointSpec) (ConstraintHandle, error) {
	if err := validateJoint(spec.Joint); err != nil {
		return ConstraintHandle{}, err
	}

	a, err := w.resolve(spec.BodyA)
	if err != nil {
		return ConstraintHandle{}, err
	}
	b, err := w.resolve(spec.BodyB)
	if err != nil {
		return ConstraintHandle{}, err
	}
	if a == b {
		return ConstraintHandle{}, &InvalidConfigError{Field: "bodies", Value: spec.BodyA, Reason: "a joint needs two distinct bodies"}
	}

	spec.Joint.Attach(a, b)
	a.Awake()
	b.Awake()

	w.nextConstraint++
	entry := &constraintEntry{
		handle:     ConstraintHandle{id: w.nextConstraint},
		bodyA:      spec.BodyA,
		bodyB:      spec.BodyB,
		constraint: spec.Joint,
	}
	w.constraints = append(w.constraints, entry)

	return entry.handle, nil
}

// RemoveJoint removes a joint, keeping the order of the others
func (w *World) RemoveJoint(handle ConstraintHandle) error {
	for i, entry := range w.constraints {
		if entry.handle == handle {
			w.constraints = append(w.constraints[:i], w.constraints[i+1:]...)
			w.Events.forget(handle)
			for _, body := range []BodyHandle{entry.bodyA, entry.bodyB} {
				if rb, err := w.resolve(body); err == nil {
					rb.Awake()
				}
			}
			return nil
		}
	}

	return &DanglingReferenceError{Constraint: handle}
}

// Joint returns the joint registered under handle
func (w *World) Joint(handle ConstraintHandle) (constraint.Constraint, error) {
	for _, entry := range w.constraints {
		if entry.handle == handle {
			return entry.constraint, nil
		}
	}

	return nil, &DanglingReferenceError{Constraint: handle}
}

// JointBodies returns the bodies of a joint as they are right now
func (w *World) JointBodies(handle ConstraintHandle) (*actor.RigidBody, *actor.RigidBody, error) {
	for _, entry := range w.constraints {
		if entry.handle != handle {
			continue
		}
		if entry.invalid != nil {
			return nil, nil, entry.invalid
		}
		a, err := w.resolve(entry.bodyA)
		if err != nil {
			return nil, nil, err
		}
		b, err := w.resolve(entry.bodyB)
		if err != nil {
			return nil, nil, err
		}
		return a, b, nil
	}

	return nil, nil, &DanglingReferenceError{Constraint: handle}
}

// AddContact queues a contact manifold for the next tick only. The handle
// identifies the contact in the events of that tick. A pair of bodies that
// was not in contact during the previous tick wakes up.
func (w *World) AddContact(spec ContactSpec) (ConstraintHandle, error) {
	a, err := w.resolve(spec.BodyA)
	if err != nil {
		return ConstraintHandle{}, err
	}
	b, err := w.resolve(spec.BodyB)
	if err != nil {
		return ConstraintHandle{}, err
	}
	if a == b {
		return ConstraintHandle{}, &InvalidConfigError{Field: "bodies", Value: spec.BodyA, Reason: "a contact needs two distinct bodies"}
	}
	if spec.Normal.Len() == 0 {
		return ConstraintHandle{}, &InvalidConfigError{Field: "normal", Value: spec.Normal, Reason: "contact normal must not be zero"}
	}

	contact := constraint.NewContactConstraint(spec.Normal, spec.Points)
	if spec.Compliance > 0 {
		contact.Compliance = spec.Compliance
	}
	contact.Attach(a, b)

	pair := newContactPair(spec.BodyA, spec.BodyB)
	if !w.previousContactPairs[pair] {
		a.Awake()
		b.Awake()
	}
	w.contactPairs[pair] = true

	w.nextConstraint++
	entry := &constraintEntry{
		handle:     ConstraintHandle{id: w.nextConstraint},
		bodyA:      spec.BodyA,
		bodyB:      spec.BodyB,
		constraint: contact,
	}
	w.contacts = append(w.contacts, entry)

	return entry.handle, nil
}

// Body returns the body for read access, or to tune its material between ticks
func (w *World) Body(handle BodyHandle) (*actor.RigidBody, error) {
	if handle == WorldAnchor {
		return nil, &DanglingReferenceError{Body: handle}
	}
	return w.resolve(handle)
}

// Pose returns the position and rotation of a body
func (w *World) Pose(handle BodyHandle) (actor.Transform, error) {
	body, err := w.Body(handle)
	if err != nil {
		return actor.Transform{}, err
	}
	return body.Transform, nil
}

// Velocity returns the linear and angular velocity of a body
func (w *World) Velocity(handle BodyHandle) (mgl64.Vec3, mgl64.Vec3, error) {
	body, err := w.Body(handle)
	if err != nil {
		return mgl64.Vec3{}, mgl64.Vec3{}, err
	}
	return body.Velocity, body.AngularVelocity, nil
}

// IsSleeping reports whether a body is asleep
func (w *World) IsSleeping(handle BodyHandle) (bool, error) {
	body, err := w.Body(handle)
	if err != nil {
		return false, err
	}
	return body.IsSleeping, nil
}

// SetKinematicVelocity drives a Kinematic body for the next ticks, waking
// the bodies it is linked to
func (w *World) SetKinematicVelocity(handle BodyHandle, linear, angular mgl64.Vec3) error {
	body, err := w.kinematic(handle)
	if err != nil {
		return err
	}
	body.Velocity = linear
	body.AngularVelocity = angular
	w.wakeLinked(handle)

	return nil
}

// SetKinematicPose teleports a Kinematic body, its velocities are kept
func (w *World) SetKinematicPose(handle BodyHandle, pose actor.Transform) error {
	body, err := w.kinematic(handle)
	if err != nil {
		return err
	}
	body.Transform = actor.NewPose(pose.Position, pose.Rotation)
	body.PreviousTransform = body.Transform
	body.TickTransform = body.Transform
	w.wakeLinked(handle)

	return nil
}

// Bodies returns the handles of all live bodies, in slot order
func (w *World) Bodies() []BodyHandle {
	handles := make([]BodyHandle, 0, len(w.bodies))
	for i, slot := range w.bodies {
		if slot.body != nil {
			handles = append(handles, BodyHandle{index: uint32(i + 1), generation: slot.generation})
		}
	}
	return handles
}

// Joints returns the handles of all joints, in solve order
func (w *World) Joints() []ConstraintHandle {
	handles := make([]ConstraintHandle, 0, len(w.constraints))
	for _, entry := range w.constraints {
		handles = append(handles, entry.handle)
	}
	return handles
}

// LastSubstep is the substep duration used by the last Step, for force reconstruction
func (w *World) LastSubstep() float64 {
	return w.lastSubstep
}

// Step advances the world by one tick of duration dt
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}

	w.Workers = max(DEFAULT_WORKERS, w.Workers)
	h := dt / float64(w.substeps)
	w.lastSubstep, w.lastTick = h, dt

	entries := w.prepareConstraints()
	islands := wakeIslands(buildIslands(entries))

	bodies := w.awakeBodies()
	for _, body := range bodies {
		body.BeginTick()
	}

	for range w.substeps {
		w.integrate(h, bodies)

		// Only one iteration is required thanks to substeps
		w.solvePosition(h, islands)
	}

	// Velocities are derived once, from the whole tick
	w.deriveVelocity(dt, bodies)

	w.solveVelocity(dt, islands)
	for _, body := range bodies {
		body.ApplyDamping(dt)
		body.ClearForces()
	}

	w.trySleep(dt, islands, bodies)

	w.contacts = w.contacts[:0]
	w.previousContactPairs, w.contactPairs = w.contactPairs, w.previousContactPairs
	clear(w.contactPairs)

	w.Events.processSleepEvents(w.sleepStates())
	w.Events.flush(w.recordLimits())
}

func (w *World) integrate(h float64, bodies []*actor.RigidBody) {
	task(w.Workers, bodies, func(body *actor.RigidBody) {
		body.Integrate(h, w.Gravity)
	})
}

// solvePosition relaxes every constraint once, Gauss-Seidel style, island by island
func (w *World) solvePosition(h float64, islands []*island) {
	task(w.Workers, islands, func(island *island) {
		for _, entry := range island.constraints {
			entry.constraint.SolvePosition(entry.a, entry.b, h)
		}
	})
}

func (w *World) deriveVelocity(dt float64, bodies []*actor.RigidBody) {
	task(w.Workers, bodies, func(body *actor.RigidBody) {
		body.DeriveVelocity(dt)
	})
}

func (w *World) solveVelocity(dt float64, islands []*island) {
	task(w.Workers, islands, func(island *island) {
		for _, entry := range island.constraints {
			entry.constraint.SolveVelocity(entry.a, entry.b, dt)
		}
	})
}

// trySleep puts to sleep the islands whose dynamic bodies all rested for
// SleepTime, and the resting bodies bound to no constraint.
// this method is too simple to use a task, it slows down in multiple goroutines
func (w *World) trySleep(dt float64, islands []*island, bodies []*actor.RigidBody) {
	if w.SleepTime <= 0 {
		return
	}

	resting := make(map[*actor.RigidBody]bool, len(bodies))
	for _, body := range bodies {
		resting[body] = body.TrySleep(dt, w.SleepTime, w.SleepVelocity)
	}

	bound := make(map[*actor.RigidBody]bool)
	for _, island := range islands {
		asleep := len(island.bodies) > 0
		for _, body := range island.bodies {
			bound[body] = true
			asleep = asleep && resting[body]
		}
		for _, entry := range island.constraints {
			if drives(entry.a) || drives(entry.b) {
				asleep = false
			}
		}
		if asleep {
			for _, body := range island.bodies {
				body.Sleep()
			}
		}
	}

	for _, body := range bodies {
		if resting[body] && !bound[body] {
			body.Sleep()
		}
	}
}

// wakeIslands wakes every body of the islands holding an awake body or driven
// by a moving kinematic body, and returns the islands to simulate
func wakeIslands(islands []*island) []*island {
	awake := islands[:0]
	for _, island := range islands {
		if island.awake() {
			island.wake()
			awake = append(awake, island)
		}
	}
	return awake
}

// wakeLinked wakes the bodies sharing a joint or a contact with handle
func (w *World) wakeLinked(handle BodyHandle) {
	for _, entries := range [][]*constraintEntry{w.constraints, w.contacts} {
		for _, entry := range entries {
			var other BodyHandle
			switch handle {
			case entry.bodyA:
				other = entry.bodyB
			case entry.bodyB:
				other = entry.bodyA
			default:
				continue
			}
			if body, err := w.resolve(other); err == nil {
				body.Awake()
			}
		}
	}
}

func (w *World) sleepStates() []bodyState {
	states := make([]bodyState, 0, len(w.bodies))
	for i, slot := range w.bodies {
		if slot.body != nil && slot.body.IsDynamic() {
			handle := BodyHandle{index: uint32(i + 1), generation: slot.generation}
			states = append(states, bodyState{body: handle, sleeping: slot.body.IsSleeping})
		}
	}
	return states
}

// prepareConstraints resolves the bodies of joints then contacts, skips and
// reports the dangling ones and resets the multipliers of the others.
func (w *World) prepareConstraints() []*constraintEntry {
	entries := make([]*constraintEntry, 0, len(w.constraints)+len(w.contacts))

	for _, group := range [][]*constraintEntry{w.constraints, w.contacts} {
		for _, entry := range group {
			entry.a, entry.b = nil, nil
			if entry.invalid == nil {
				entry.a, entry.invalid = w.resolveFor(entry, entry.bodyA)
			}
			if entry.invalid == nil {
				entry.b, entry.invalid = w.resolveFor(entry, entry.bodyB)
			}
			if entry.invalid != nil {
				w.Events.emitDangling(entry.handle, entry.invalid)
				continue
			}

			entry.constraint.ResetLambda()
			entries = append(entries, entry)
		}
	}

	return entries
}

// recordLimits feeds the limit state of the revolute joints to the event tracker
func (w *World) recordLimits() []ConstraintHandle {
	var handles []ConstraintHandle

	for _, entry := range w.constraints {
		joint, ok := entry.constraint.(*constraint.RevoluteJoint)
		if !ok || joint.Limit == nil || entry.invalid != nil || entry.a == nil {
			continue
		}

		_, _, limitLambda := joint.Lambdas()
		w.Events.recordLimit(entry.handle, joint.LimitActive || limitLambda != 0, joint.Angle(entry.a, entry.b))
		handles = append(handles, entry.handle)
	}

	return handles
}

func (w *World) resolveFor(entry *constraintEntry, handle BodyHandle) (*actor.RigidBody, error) {
	body, err := w.resolve(handle)
	if err != nil {
		return nil, &DanglingReferenceError{Body: handle, Constraint: entry.handle}
	}
	return body, nil
}

func (w *World) resolve(handle BodyHandle) (*actor.RigidBody, error) {
	if handle == WorldAnchor {
		return w.ground, nil
	}
	if handle.index == 0 || int(handle.index) > len(w.bodies) {
		return nil, &DanglingReferenceError{Body: handle}
	}

	slot := w.bodies[handle.index-1]
	if slot.body == nil || slot.generation != handle.generation {
		return nil, &DanglingReferenceError{Body: handle}
	}

	return slot.body, nil
}

func (w *World) kinematic(handle BodyHandle) (*actor.RigidBody, error) {
	body, err := w.Body(handle)
	if err != nil {
		return nil, err
	}
	if body.BodyType != actor.BodyTypeKinematic {
		return nil, &InvalidConfigError{Field: "body_type", Value: body.BodyType, Reason: "only kinematic bodies can be driven"}
	}
	return body, nil
}

// awakeBodies returns the live bodies to simulate, in slot order
func (w *World) awakeBodies() []*actor.RigidBody {
	bodies := make([]*actor.RigidBody, 0, len(w.bodies))
	for _, slot := range w.bodies {
		if slot.body != nil && !slot.body.IsSleeping {
			bodies = append(bodies, slot.body)
		}
	}
	return bodies
}

// validateJoint restricts AddJoint to the joint types, contacts go through AddContact
func validateJoint(joint constraint.Constraint) error {
	switch j := joint.(type) {
	case *constraint.RevoluteJoint:
		if j.Limit != nil {
			if _, err := constraint.NewAngleLimit(j.Limit.Min, j.Limit.Max); err != nil {
				return err
			}
		}
	case *constraint.SphericalJoint, *constraint.FixedJoint:
	case *constraint.DistanceJoint:
		if j.HasLimits && j.MinLength > j.MaxLength {
			return &InvalidConfigError{Field: "length_limits", Value: [2]float64{j.MinLength, j.MaxLength}, Reason: "min must not exceed max"}
		}
	case nil:
		return &InvalidConfigError{Field: "joint", Value: nil, Reason: "missing joint"}
	default:
		return &InvalidConfigError{Field: "joint", Value: fmt.Sprintf("%T", joint), Reason: "unsupported joint type"}
	}

	return nil
}
