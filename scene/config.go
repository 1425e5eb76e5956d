package scene

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 1.0 / 60.0
	DefaultDuration = 10.0
	DefaultSubsteps = 12
	DefaultWorkers  = 1
	DefaultGravity  = -9.81
)

// WorldBody is the name joints use to attach to the fixed world anchor
const WorldBody = "world"

type Config struct {
	Name     string     `yaml:"name"`
	Dt       float64    `yaml:"dt"`
	Duration float64    `yaml:"duration"`
	Substeps int        `yaml:"substeps"`
	Workers  int        `yaml:"workers"`
	Gravity  [3]float64 `yaml:"gravity"`
	// SleepTime overrides the world rest duration before sleeping, 0 disables it
	SleepTime *float64       `yaml:"sleep_time,omitempty"`
	Bodies    []BodyConfig   `yaml:"bodies"`
	Joints    []JointConfig  `yaml:"joints"`
	Record    RecordConfig   `yaml:"record"`
	Material  MaterialConfig `yaml:"default_material"`
}

type BodyConfig struct {
	Name string `yaml:"name"`
	// dynamic, static or kinematic
	Type  string      `yaml:"type"`
	Shape ShapeConfig `yaml:"shape"`
	// Mass overrides Density when positive
	Density float64 `yaml:"density"`
	Mass    float64 `yaml:"mass"`

	Position [3]float64 `yaml:"position"`
	// Axis-angle orientation, angle in radians
	RotationAxis    [3]float64      `yaml:"rotation_axis"`
	RotationAngle   float64         `yaml:"rotation_angle"`
	Velocity        [3]float64      `yaml:"velocity"`
	AngularVelocity [3]float64      `yaml:"angular_velocity"`
	Material        *MaterialConfig `yaml:"material,omitempty"`
}

type ShapeConfig struct {
	// box, sphere, capsule, cylinder or plane
	Type        string     `yaml:"type"`
	HalfExtents [3]float64 `yaml:"half_extents,omitempty"`
	Radius      float64    `yaml:"radius,omitempty"`
	HalfHeight  float64    `yaml:"half_height,omitempty"`
	Normal      [3]float64 `yaml:"normal,omitempty"`
	Distance    float64    `yaml:"distance,omitempty"`
}

type MaterialConfig struct {
	Restitution     float64 `yaml:"restitution"`
	StaticFriction  float64 `yaml:"static_friction"`
	DynamicFriction float64 `yaml:"dynamic_friction"`
	LinearDamping   float64 `yaml:"linear_damping"`
	AngularDamping  float64 `yaml:"angular_damping"`
}

type JointConfig struct {
	Name string `yaml:"name"`
	// revolute, spherical, distance or fixed
	Type  string `yaml:"type"`
	BodyA string `yaml:"body_a"`
	BodyB string `yaml:"body_b"`

	AnchorA [3]float64 `yaml:"anchor_a"`
	AnchorB [3]float64 `yaml:"anchor_b"`
	Axis    [3]float64 `yaml:"axis,omitempty"`

	// [min, max] radians for revolute, meters for distance
	Limits     []float64 `yaml:"limits,omitempty"`
	RestLength float64   `yaml:"rest_length,omitempty"`

	Compliance      float64 `yaml:"compliance"`
	AlignCompliance float64 `yaml:"align_compliance"`
	LimitCompliance float64 `yaml:"limit_compliance"`
	DampingLinear   float64 `yaml:"damping_linear"`
	DampingAngular  float64 `yaml:"damping_angular"`
}

// RecordConfig selects what the recorder samples every tick
type RecordConfig struct {
	Bodies []string `yaml:"bodies"`
	Joints []string `yaml:"joints"`
	// sample every N ticks
	Every int `yaml:"every"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:     "empty",
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Substeps: DefaultSubsteps,
		Workers:  DefaultWorkers,
		Gravity:  [3]float64{0, DefaultGravity, 0},
		Record:   RecordConfig{Every: 1},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Ticks is the number of steps covering Duration
func (c *Config) Ticks() int {
	if c.Dt <= 0 {
		return 0
	}
	return int(c.Duration/c.Dt + 0.5)
}
