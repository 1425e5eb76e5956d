package scene_test

import (
	"math"
	"path/filepath"

	"github.com/akmonengine/hinge"
	"github.com/akmonengine/hinge/scene"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	It("has usable defaults", func() {
		cfg := scene.DefaultConfig()
		Expect(cfg.Dt).To(BeNumerically(">", 0))
		Expect(cfg.Substeps).To(Equal(scene.DefaultSubsteps))
		Expect(cfg.Gravity[1]).To(Equal(scene.DefaultGravity))
		Expect(cfg.Ticks()).To(Equal(600))
	})

	It("round-trips through YAML", func() {
		path := filepath.Join(GinkgoT().TempDir(), "revolute.yaml")
		Expect(scene.Save(path, scene.GetPreset("revolute"))).To(Succeed())

		cfg, err := scene.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Substeps).To(Equal(50))
		Expect(cfg.Bodies).To(HaveLen(2))
		Expect(cfg.Joints[0].Limits).To(Equal([]float64{-1, 1}))
		Expect(cfg.Bodies[0].AngularVelocity).To(Equal([3]float64{0, 0, 1.5}))
	})

	It("fails on a missing file", func() {
		_, err := scene.Load(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
		Expect(err).To(HaveOccurred())
	})

	It("lists presets in order", func() {
		Expect(scene.ListPresets()).To(Equal([]string{"chain", "pendulum", "revolute", "rope"}))
		Expect(scene.GetPreset("nonexistent")).To(BeNil())
	})
})

var _ = Describe("Build", func() {
	It("builds every preset", func() {
		for _, name := range scene.ListPresets() {
			s, err := scene.Build(scene.GetPreset(name))
			Expect(err).NotTo(HaveOccurred(), name)
			Expect(s.Bodies).To(HaveLen(len(scene.GetPreset(name).Bodies)))
			Expect(s.Joints).To(HaveLen(len(scene.GetPreset(name).Joints)))
		}
	})

	It("keeps the world sleep time unless configured", func() {
		s, err := scene.Build(scene.GetPreset("pendulum"))
		Expect(err).NotTo(HaveOccurred())
		Expect(s.World.SleepTime).To(Equal(hinge.DEFAULT_SLEEP_TIME))

		cfg := *scene.GetPreset("pendulum")
		disabled := 0.0
		cfg.SleepTime = &disabled
		s, err = scene.Build(&cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.World.SleepTime).To(BeZero())
	})

	It("rejects a density-based zero-volume body", func() {
		cfg := scene.DefaultConfig()
		cfg.Bodies = []scene.BodyConfig{{Name: "flat", Density: 1, Shape: scene.ShapeConfig{Type: "box", HalfExtents: [3]float64{1, 0, 1}}}}

		_, err := scene.Build(cfg)
		Expect(err).To(MatchError(hinge.ErrInvalidMass))
	})

	It("accepts an explicit mass on a zero-volume body", func() {
		cfg := scene.DefaultConfig()
		cfg.Bodies = []scene.BodyConfig{{Name: "flat", Mass: 2, Shape: scene.ShapeConfig{Type: "box", HalfExtents: [3]float64{1, 0, 1}}}}

		s, err := scene.Build(cfg)
		Expect(err).NotTo(HaveOccurred())
		body, err := s.World.Body(s.Bodies["flat"])
		Expect(err).NotTo(HaveOccurred())
		Expect(body.Mass.Mass).To(Equal(2.0))
	})

	It("rejects inverted limits", func() {
		cfg := scene.DefaultConfig()
		cfg.Bodies = []scene.BodyConfig{{Name: "b", Density: 1, Shape: scene.ShapeConfig{Type: "sphere", Radius: 1}}}
		cfg.Joints = []scene.JointConfig{{Name: "j", Type: "revolute", BodyB: "b", Limits: []float64{1, -1}}}

		_, err := scene.Build(cfg)
		Expect(err).To(MatchError(hinge.ErrInvalidConfig))
	})

	DescribeTable("rejects malformed entries",
		func(mutate func(cfg *scene.Config)) {
			cfg := scene.DefaultConfig()
			cfg.Bodies = []scene.BodyConfig{{Name: "b", Density: 1, Shape: scene.ShapeConfig{Type: "sphere", Radius: 1}}}
			mutate(cfg)

			_, err := scene.Build(cfg)
			Expect(err).To(MatchError(hinge.ErrInvalidConfig))
		},
		Entry("unknown body type", func(cfg *scene.Config) { cfg.Bodies[0].Type = "ghost" }),
		Entry("unknown shape", func(cfg *scene.Config) { cfg.Bodies[0].Shape.Type = "torus" }),
		Entry("duplicate body", func(cfg *scene.Config) { cfg.Bodies = append(cfg.Bodies, cfg.Bodies[0]) }),
		Entry("reserved body name", func(cfg *scene.Config) { cfg.Bodies[0].Name = scene.WorldBody }),
		Entry("unknown joint type", func(cfg *scene.Config) {
			cfg.Joints = []scene.JointConfig{{Name: "j", Type: "prismatic", BodyB: "b"}}
		}),
		Entry("unknown joint body", func(cfg *scene.Config) {
			cfg.Joints = []scene.JointConfig{{Name: "j", Type: "spherical", BodyB: "c"}}
		}),
		Entry("single limit", func(cfg *scene.Config) {
			cfg.Joints = []scene.JointConfig{{Name: "j", Type: "distance", BodyB: "b", Limits: []float64{1}}}
		}),
		Entry("zero substeps", func(cfg *scene.Config) { cfg.Substeps = -1 }),
	)
})

var _ = Describe("Recorder", func() {
	It("samples the revolute preset within its limits", func() {
		cfg := *scene.GetPreset("revolute")
		cfg.Duration = 2

		s, err := scene.Build(&cfg)
		Expect(err).NotTo(HaveOccurred())
		recorder, err := scene.NewRecorder(s)
		Expect(err).NotTo(HaveOccurred())
		Expect(recorder.Run()).To(Succeed())

		Expect(recorder.Samples).To(HaveLen(cfg.Ticks() + 1))
		for _, sample := range recorder.Samples {
			joint := sample.Joints["hinge"]
			Expect(math.Abs(joint.Angle)).To(BeNumerically("<=", 1+1e-3))
			Expect(joint.AnchorError).To(BeNumerically("<", 0.05))
		}

		angles := recorder.Series(func(sample scene.Sample) float64 { return sample.Joints["hinge"].Angle })
		Expect(angles).To(HaveLen(len(recorder.Samples)))
	})

	It("keeps the pendulum bob on its circle", func() {
		cfg := *scene.GetPreset("pendulum")
		cfg.Duration = 1

		s, err := scene.Build(&cfg)
		Expect(err).NotTo(HaveOccurred())
		recorder, err := scene.NewRecorder(s)
		Expect(err).NotTo(HaveOccurred())
		Expect(recorder.Run()).To(Succeed())

		last := recorder.Samples[len(recorder.Samples)-1].Bodies["bob"]
		Expect(last.Position.Len()).To(BeNumerically("~", 1.5, 0.01))
		Expect(last.Position.Y()).To(BeNumerically("<", 0))
	})

	It("rejects unknown names", func() {
		cfg := *scene.GetPreset("pendulum")
		cfg.Record = scene.RecordConfig{Bodies: []string{"nope"}}

		s, err := scene.Build(&cfg)
		Expect(err).NotTo(HaveOccurred())
		_, err = scene.NewRecorder(s)
		Expect(err).To(HaveOccurred())
	})
})
