package scene

import (
	"fmt"
	"math"

	"github.com/akmonengine/hinge"
	"github.com/akmonengine/hinge/actor"
	"github.com/akmonengine/hinge/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// Scene is a world built from a Config, with its bodies and joints by name
type Scene struct {
	Config *Config
	World  *hinge.World
	Bodies map[string]hinge.BodyHandle
	Joints map[string]hinge.ConstraintHandle

	tick int
}

// Build creates the world described by cfg. Bodies are added in order, then joints.
func Build(cfg *Config) (*Scene, error) {
	world := hinge.NewWorld()
	world.Gravity = mgl64.Vec3(cfg.Gravity)
	world.Workers = max(cfg.Workers, hinge.DEFAULT_WORKERS)
	if cfg.SleepTime != nil {
		world.SleepTime = *cfg.SleepTime
	}

	substeps := cfg.Substeps
	if substeps == 0 {
		substeps = DefaultSubsteps
	}
	if err := world.SetSubstepCount(substeps); err != nil {
		return nil, err
	}

	s := &Scene{
		Config: cfg,
		World:  world,
		Bodies: make(map[string]hinge.BodyHandle, len(cfg.Bodies)),
		Joints: make(map[string]hinge.ConstraintHandle, len(cfg.Joints)),
	}

	for _, body := range cfg.Bodies {
		if _, ok := s.Bodies[body.Name]; ok || body.Name == WorldBody || body.Name == "" {
			return nil, &hinge.InvalidConfigError{Field: "bodies.name", Value: body.Name, Reason: "body names must be unique and not empty"}
		}

		spec, err := bodySpec(body, cfg.Material)
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", body.Name, err)
		}
		handle, err := world.AddBody(spec)
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", body.Name, err)
		}
		s.Bodies[body.Name] = handle
	}

	for _, joint := range cfg.Joints {
		if _, ok := s.Joints[joint.Name]; ok {
			return nil, &hinge.InvalidConfigError{Field: "joints.name", Value: joint.Name, Reason: "joint names must be unique"}
		}

		spec, err := s.jointSpec(joint)
		if err != nil {
			return nil, fmt.Errorf("joint %q: %w", joint.Name, err)
		}
		handle, err := world.AddJoint(spec)
		if err != nil {
			return nil, fmt.Errorf("joint %q: %w", joint.Name, err)
		}
		s.Joints[joint.Name] = handle
	}

	return s, nil
}

// Step advances the world by one tick of the configured duration
func (s *Scene) Step() {
	s.World.Step(s.Config.Dt)
	s.tick++
}

func (s *Scene) Tick() int {
	return s.tick
}

// Time elapsed in the simulation, in seconds
func (s *Scene) Time() float64 {
	return float64(s.tick) * s.Config.Dt
}

func bodySpec(cfg BodyConfig, defaultMaterial MaterialConfig) (hinge.BodySpec, error) {
	bodyType, err := parseBodyType(cfg.Type)
	if err != nil {
		return hinge.BodySpec{}, err
	}
	shape, err := parseShape(cfg.Shape)
	if err != nil {
		return hinge.BodySpec{}, err
	}

	mass := actor.Density(cfg.Density)
	if cfg.Mass > 0 {
		mass = actor.Mass(cfg.Mass)
	}

	rotation := mgl64.QuatIdent()
	if axis := mgl64.Vec3(cfg.RotationAxis); axis.Len() > 0 && cfg.RotationAngle != 0 {
		rotation = mgl64.QuatRotate(cfg.RotationAngle, axis.Normalize())
	}

	material := defaultMaterial
	if cfg.Material != nil {
		material = *cfg.Material
	}

	return hinge.BodySpec{
		Type:            bodyType,
		Shape:           shape,
		Mass:            mass,
		Pose:            actor.NewPose(mgl64.Vec3(cfg.Position), rotation),
		Material:        actor.Material(material),
		Velocity:        mgl64.Vec3(cfg.Velocity),
		AngularVelocity: mgl64.Vec3(cfg.AngularVelocity),
	}, nil
}

func (s *Scene) jointSpec(cfg JointConfig) (hinge.JointSpec, error) {
	bodyA, err := s.lookup(cfg.BodyA)
	if err != nil {
		return hinge.JointSpec{}, err
	}
	bodyB, err := s.lookup(cfg.BodyB)
	if err != nil {
		return hinge.JointSpec{}, err
	}

	anchorA, anchorB := mgl64.Vec3(cfg.AnchorA), mgl64.Vec3(cfg.AnchorB)
	limits, err := parseLimits(cfg.Limits)
	if err != nil {
		return hinge.JointSpec{}, err
	}

	var joint constraint.Constraint
	switch cfg.Type {
	case "revolute":
		revolute := constraint.NewRevoluteJoint(anchorA, anchorB, mgl64.Vec3(cfg.Axis))
		if limits != nil {
			if err := revolute.SetAngleLimits(limits[0], limits[1]); err != nil {
				return hinge.JointSpec{}, err
			}
		}
		revolute.Compliance = cfg.Compliance
		revolute.AlignCompliance = cfg.AlignCompliance
		revolute.LimitCompliance = cfg.LimitCompliance
		revolute.DampingLinear = cfg.DampingLinear
		revolute.DampingAngular = cfg.DampingAngular
		joint = revolute
	case "spherical":
		spherical := constraint.NewSphericalJoint(anchorA, anchorB)
		spherical.Compliance = cfg.Compliance
		spherical.DampingLinear = cfg.DampingLinear
		spherical.DampingAngular = cfg.DampingAngular
		joint = spherical
	case "distance":
		distance, err := constraint.NewDistanceJoint(anchorA, anchorB, cfg.RestLength)
		if err != nil {
			return hinge.JointSpec{}, err
		}
		if limits != nil {
			if err := distance.SetLengthLimits(limits[0], limits[1]); err != nil {
				return hinge.JointSpec{}, err
			}
		}
		distance.Compliance = cfg.Compliance
		distance.DampingLinear = cfg.DampingLinear
		joint = distance
	case "fixed":
		fixed := constraint.NewFixedJoint(anchorA, anchorB)
		fixed.Compliance = cfg.Compliance
		fixed.AlignCompliance = cfg.AlignCompliance
		joint = fixed
	default:
		return hinge.JointSpec{}, &hinge.InvalidConfigError{Field: "joints.type", Value: cfg.Type, Reason: "expected revolute, spherical, distance or fixed"}
	}

	return hinge.JointSpec{BodyA: bodyA, BodyB: bodyB, Joint: joint}, nil
}

func (s *Scene) lookup(name string) (hinge.BodyHandle, error) {
	if name == "" || name == WorldBody {
		return hinge.WorldAnchor, nil
	}
	handle, ok := s.Bodies[name]
	if !ok {
		return hinge.BodyHandle{}, &hinge.InvalidConfigError{Field: "joints.body", Value: name, Reason: "unknown body"}
	}
	return handle, nil
}

func parseLimits(limits []float64) ([]float64, error) {
	switch len(limits) {
	case 0:
		return nil, nil
	case 2:
		return limits, nil
	}
	return nil, &hinge.InvalidConfigError{Field: "joints.limits", Value: limits, Reason: "expected [min, max]"}
}

func parseBodyType(name string) (actor.BodyType, error) {
	switch name {
	case "", "dynamic":
		return actor.BodyTypeDynamic, nil
	case "static":
		return actor.BodyTypeStatic, nil
	case "kinematic":
		return actor.BodyTypeKinematic, nil
	}
	return 0, &hinge.InvalidConfigError{Field: "bodies.type", Value: name, Reason: "expected dynamic, static or kinematic"}
}

func parseShape(cfg ShapeConfig) (actor.ShapeInterface, error) {
	switch cfg.Type {
	case "box":
		return &actor.Box{HalfExtents: mgl64.Vec3(cfg.HalfExtents)}, nil
	case "sphere":
		return &actor.Sphere{Radius: cfg.Radius}, nil
	case "capsule":
		return &actor.Capsule{Radius: cfg.Radius, HalfHeight: cfg.HalfHeight}, nil
	case "cylinder":
		return &actor.Cylinder{Radius: cfg.Radius, HalfHeight: cfg.HalfHeight}, nil
	case "plane":
		normal := mgl64.Vec3(cfg.Normal)
		if normal.Len() == 0 {
			normal = mgl64.Vec3{0, 1, 0}
		}
		return &actor.Plane{Normal: normal.Normalize(), Distance: cfg.Distance}, nil
	}
	return nil, &hinge.InvalidConfigError{Field: "bodies.shape.type", Value: cfg.Type, Reason: "expected box, sphere, capsule, cylinder or plane"}
}

// JointAngle returns the current angle of a revolute joint, NaN for other joints
func (s *Scene) JointAngle(name string) (float64, error) {
	handle, ok := s.Joints[name]
	if !ok {
		return 0, &hinge.InvalidConfigError{Field: "joint", Value: name, Reason: "unknown joint"}
	}
	joint, err := s.World.Joint(handle)
	if err != nil {
		return 0, err
	}
	revolute, ok := joint.(*constraint.RevoluteJoint)
	if !ok {
		return math.NaN(), nil
	}

	bodyA, bodyB, err := s.World.JointBodies(handle)
	if err != nil {
		return 0, err
	}
	return revolute.Angle(bodyA, bodyB), nil
}
