package scene

import (
	"sort"

	"github.com/akmonengine/hinge/constraint"
)

var Presets = map[string]*Config{
	// A kinematic box spinning about Z drags a dynamic box hanging 2m below it,
	// the hinge limited to one radian each way.
	"revolute": {
		Name: "revolute", Dt: DefaultDt, Duration: 10.0, Substeps: 50, Workers: 1,
		Gravity: [3]float64{0, DefaultGravity, 0},
		Bodies: []BodyConfig{
			{
				Name: "anchor", Type: "kinematic",
				Shape:           ShapeConfig{Type: "box", HalfExtents: [3]float64{0.5, 0.5, 0.5}},
				AngularVelocity: [3]float64{0, 0, 1.5},
			},
			{
				Name: "object", Type: "dynamic", Density: 1,
				Shape:    ShapeConfig{Type: "box", HalfExtents: [3]float64{0.5, 0.5, 0.5}},
				Position: [3]float64{0, -2, 0},
			},
		},
		Joints: []JointConfig{
			{
				Name: "hinge", Type: "revolute", BodyA: "anchor", BodyB: "object",
				AnchorB: [3]float64{0, 2, 0},
				Axis:    [3]float64{0, 0, 1},
				Limits:  []float64{-1, 1},
			},
		},
		Record: RecordConfig{Bodies: []string{"object"}, Joints: []string{"hinge"}, Every: 1},
	},
	"pendulum": {
		Name: "pendulum", Dt: DefaultDt, Duration: 10.0, Substeps: 20, Workers: 1,
		Gravity: [3]float64{0, DefaultGravity, 0},
		Bodies: []BodyConfig{
			{
				Name: "bob", Type: "dynamic", Mass: 1,
				Shape:    ShapeConfig{Type: "sphere", Radius: 0.2},
				Position: [3]float64{1.5, 0, 0},
			},
		},
		Joints: []JointConfig{
			{
				Name: "pivot", Type: "revolute", BodyA: WorldBody, BodyB: "bob",
				AnchorB: [3]float64{-1.5, 0, 0},
				Axis:    [3]float64{0, 0, 1},
			},
		},
		Record: RecordConfig{Bodies: []string{"bob"}, Joints: []string{"pivot"}, Every: 1},
	},
	"chain": {
		Name: "chain", Dt: DefaultDt, Duration: 10.0, Substeps: 20, Workers: 2,
		Gravity: [3]float64{0, DefaultGravity, 0},
		Bodies: []BodyConfig{
			{Name: "link1", Type: "dynamic", Density: 500, Shape: ShapeConfig{Type: "capsule", Radius: 0.1, HalfHeight: 0.4}, Position: [3]float64{0, -0.5, 0}},
			{Name: "link2", Type: "dynamic", Density: 500, Shape: ShapeConfig{Type: "capsule", Radius: 0.1, HalfHeight: 0.4}, Position: [3]float64{0, -1.5, 0}},
			{Name: "link3", Type: "dynamic", Density: 500, Shape: ShapeConfig{Type: "capsule", Radius: 0.1, HalfHeight: 0.4}, Position: [3]float64{0, -2.5, 0}, Velocity: [3]float64{2, 0, 0}},
		},
		Joints: []JointConfig{
			{Name: "top", Type: "spherical", BodyA: WorldBody, BodyB: "link1", AnchorB: [3]float64{0, 0.5, 0}},
			{Name: "middle", Type: "spherical", BodyA: "link1", BodyB: "link2", AnchorA: [3]float64{0, -0.5, 0}, AnchorB: [3]float64{0, 0.5, 0}, DampingAngular: 0.5},
			{Name: "bottom", Type: "revolute", BodyA: "link2", BodyB: "link3", AnchorA: [3]float64{0, -0.5, 0}, AnchorB: [3]float64{0, 0.5, 0}, Axis: [3]float64{0, 0, 1}, Limits: []float64{-0.5, 0.5}},
		},
		Record: RecordConfig{Bodies: []string{"link3"}, Joints: []string{"bottom"}, Every: 1},
	},
	"rope": {
		Name: "rope", Dt: DefaultDt, Duration: 10.0, Substeps: 12, Workers: 1,
		Gravity: [3]float64{0, DefaultGravity, 0},
		Bodies: []BodyConfig{
			{Name: "weight", Type: "dynamic", Mass: 2, Shape: ShapeConfig{Type: "cylinder", Radius: 0.2, HalfHeight: 0.1}, Position: [3]float64{1, -1, 0}},
		},
		Joints: []JointConfig{
			{Name: "rope", Type: "distance", BodyA: WorldBody, BodyB: "weight", Limits: []float64{0, 2}, Compliance: constraint.TENDON_COMPLIANCE},
		},
		Record: RecordConfig{Bodies: []string{"weight"}, Every: 1},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

// ListPresets returns the preset names, sorted
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
