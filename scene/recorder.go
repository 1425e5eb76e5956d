package scene

import (
	"fmt"

	"github.com/akmonengine/hinge/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// Sample is the state of the recorded bodies and joints after a tick
type Sample struct {
	Tick   int
	Time   float64
	Bodies map[string]BodySample
	Joints map[string]JointSample
}

type BodySample struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
}

type JointSample struct {
	// Angle is only measured for revolute joints
	Angle       float64
	AnchorError float64
	// Force is the average constraint force of the anchor over the tick, in N
	Force float64
}

// Recorder samples a scene after each tick, following cfg.Record
type Recorder struct {
	scene   *Scene
	every   int
	bodies  []string
	joints  []string
	Samples []Sample
}

func NewRecorder(s *Scene) (*Recorder, error) {
	record := s.Config.Record

	for _, name := range record.Bodies {
		if _, ok := s.Bodies[name]; !ok {
			return nil, fmt.Errorf("record: unknown body %q", name)
		}
	}
	for _, name := range record.Joints {
		if _, ok := s.Joints[name]; !ok {
			return nil, fmt.Errorf("record: unknown joint %q", name)
		}
	}

	return &Recorder{
		scene:  s,
		every:  max(record.Every, 1),
		bodies: record.Bodies,
		joints: record.Joints,
	}, nil
}

// Run steps the scene for its whole duration and records it
func (r *Recorder) Run() error {
	if err := r.Sample(); err != nil {
		return err
	}

	for range r.scene.Config.Ticks() {
		r.scene.Step()
		if r.scene.Tick()%r.every != 0 {
			continue
		}
		if err := r.Sample(); err != nil {
			return err
		}
	}

	return nil
}

// Sample appends the current state
func (r *Recorder) Sample() error {
	sample := Sample{
		Tick:   r.scene.Tick(),
		Time:   r.scene.Time(),
		Bodies: make(map[string]BodySample, len(r.bodies)),
		Joints: make(map[string]JointSample, len(r.joints)),
	}

	for _, name := range r.bodies {
		pose, err := r.scene.World.Pose(r.scene.Bodies[name])
		if err != nil {
			return err
		}
		linear, angular, err := r.scene.World.Velocity(r.scene.Bodies[name])
		if err != nil {
			return err
		}
		sample.Bodies[name] = BodySample{
			Position:        pose.Position,
			Rotation:        pose.Rotation,
			Velocity:        linear,
			AngularVelocity: angular,
		}
	}

	for _, name := range r.joints {
		joint, err := r.jointSample(name)
		if err != nil {
			return err
		}
		sample.Joints[name] = joint
	}

	r.Samples = append(r.Samples, sample)
	return nil
}

func (r *Recorder) jointSample(name string) (JointSample, error) {
	world := r.scene.World
	handle := r.scene.Joints[name]

	joint, err := world.Joint(handle)
	if err != nil {
		return JointSample{}, err
	}
	bodyA, bodyB, err := world.JointBodies(handle)
	if err != nil {
		return JointSample{}, err
	}

	var sample JointSample
	var lambda float64
	switch j := joint.(type) {
	case *constraint.RevoluteJoint:
		sample.Angle = j.Angle(bodyA, bodyB)
		sample.AnchorError = j.AnchorError(bodyA, bodyB)
		lambda, _, _ = j.Lambdas()
	case *constraint.SphericalJoint:
		sample.AnchorError = bodyA.Transform.ToWorld(j.LocalAnchorA).Sub(bodyB.Transform.ToWorld(j.LocalAnchorB)).Len()
		lambda = j.Lambda()
	case *constraint.DistanceJoint:
		lambda = j.Lambda()
	case *constraint.FixedJoint:
		sample.AnchorError = bodyA.Transform.ToWorld(j.LocalAnchorA).Sub(bodyB.Transform.ToWorld(j.LocalAnchorB)).Len()
		lambda, _ = j.Lambdas()
	}

	sample.Force = constraint.ForceFromLambda(lambda, world.LastSubstep(), r.scene.Config.Dt)
	return sample, nil
}

// Series extracts one value per sample, for plotting
func (r *Recorder) Series(value func(Sample) float64) []float64 {
	series := make([]float64, len(r.Samples))
	for i, sample := range r.Samples {
		series[i] = value(sample)
	}
	return series
}
