package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/akmonengine/hinge"
	"github.com/akmonengine/hinge/scene"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
)

var (
	configFile string
	dt         float64
	duration   float64
	substeps   int
	workers    int
	// Plot
	series string
	height int
	width  int
	// Bench
	substepList []int
	// Live
	frameRate int
	// Save
	output string
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("hinge: ")

	rootCmd := &cobra.Command{
		Use:          "hinge",
		Short:        "substepped XPBD rigid body scenes",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "scene file (yaml), overrides the preset")
	rootCmd.PersistentFlags().Float64Var(&dt, "dt", 0, "tick duration (s)")
	rootCmd.PersistentFlags().Float64Var(&duration, "time", 0, "duration (s)")
	rootCmd.PersistentFlags().IntVar(&substeps, "substeps", 0, "substeps per tick")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "workers solving islands")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scene and print its final state",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [preset]",
		Short: "plot joint angles and anchor errors over time",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotScene,
	}
	plotCmd.Flags().StringVar(&series, "series", "angle", "angle, error, force, speed or height")
	plotCmd.Flags().IntVar(&height, "height", 10, "graph height")
	plotCmd.Flags().IntVar(&width, "width", 80, "graph width")

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "measure tick throughput and joint error per substep count",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	benchCmd.Flags().IntSliceVar(&substepList, "counts", []int{1, 4, 12, 50}, "substep counts to compare")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a scene with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range scene.ListPresets() {
				cfg := scene.GetPreset(name)
				fmt.Printf("  %-10s %d bodies, %d joints, %d substeps\n", name, len(cfg.Bodies), len(cfg.Joints), cfg.Substeps)
			}
			return nil
		},
	}

	saveCmd := &cobra.Command{
		Use:   "save [preset]",
		Short: "write a preset as a scene file to edit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			if output == "" {
				output = args[0] + ".yaml"
			}
			if err := scene.Save(output, cfg); err != nil {
				return err
			}
			log.Printf("saved %s", output)
			return nil
		},
	}
	saveCmd.Flags().StringVarP(&output, "output", "o", "", "output path")

	rootCmd.AddCommand(runCmd, plotCmd, benchCmd, liveCmd, presetsCmd, saveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the scene: preset argument, then config file, then flags
func loadConfig(cmd *cobra.Command, args []string) (*scene.Config, error) {
	cfg := scene.DefaultConfig()

	if len(args) > 0 {
		preset := scene.GetPreset(args[0])
		if preset == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], scene.ListPresets())
		}
		copied := *preset
		cfg = &copied
	}

	if configFile != "" {
		loaded, err := scene.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("substeps") {
		cfg.Substeps = substeps
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}

	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("dt must be positive, got %g", cfg.Dt)
	}

	return cfg, nil
}

// build also reports skipped constraints through the standard logger
func build(cfg *scene.Config) (*scene.Scene, error) {
	s, err := scene.Build(cfg)
	if err != nil {
		return nil, err
	}

	s.World.Events.Subscribe(hinge.DANGLING_REFERENCE, func(event hinge.Event) {
		log.Print(warnStyle.Render(fmt.Sprintf("skipped constraint: %v", event.(hinge.DanglingReferenceEvent).Err)))
	})

	return s, nil
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	s, err := build(cfg)
	if err != nil {
		return err
	}

	limitHits := 0
	s.World.Events.Subscribe(hinge.LIMIT_ENTER, func(event hinge.Event) {
		limitHits++
	})

	recorder, err := scene.NewRecorder(s)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("running %s", cfg.Name)))
	start := time.Now()
	if err := recorder.Run(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("%s %v\n", labelStyle.Render("completed in"), elapsed)
	fmt.Printf("%s %d x %d substeps\n", labelStyle.Render("ticks:"), s.Tick(), s.World.SubstepCount())
	fmt.Printf("%s %d\n\n", labelStyle.Render("limit hits:"), limitHits)

	if len(recorder.Samples) == 0 {
		return nil
	}
	last := recorder.Samples[len(recorder.Samples)-1]

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tPOSITION\tVELOCITY\tANGULAR")
	for _, name := range cfg.Record.Bodies {
		body := last.Bodies[name]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, formatVec(body.Position), formatVec(body.Velocity), formatVec(body.AngularVelocity))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "JOINT\tANGLE\tANCHOR ERROR\tFORCE")
	for _, name := range cfg.Record.Joints {
		joint := last.Joints[name]
		fmt.Fprintf(w, "%s\t%.4f\t%.2e\t%.3f\n", name, joint.Angle, joint.AnchorError, joint.Force)
	}

	return w.Flush()
}

func plotScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	s, err := build(cfg)
	if err != nil {
		return err
	}
	recorder, err := scene.NewRecorder(s)
	if err != nil {
		return err
	}
	if err := recorder.Run(); err != nil {
		return err
	}

	fmt.Printf("scene: %s\n", cfg.Name)
	fmt.Printf("samples: %d\n\n", len(recorder.Samples))

	jointTypes := make(map[string]string, len(cfg.Joints))
	for _, joint := range cfg.Joints {
		jointTypes[joint.Name] = joint.Type
	}

	switch series {
	case "angle", "error", "force":
		for _, name := range cfg.Record.Joints {
			if series == "angle" && jointTypes[name] != "revolute" {
				continue
			}
			data := recorder.Series(func(sample scene.Sample) float64 {
				joint := sample.Joints[name]
				switch series {
				case "error":
					return joint.AnchorError
				case "force":
					return joint.Force
				}
				return joint.Angle
			})
			printGraph(data, fmt.Sprintf("%s %s", name, series))
		}
	case "speed", "height":
		for _, name := range cfg.Record.Bodies {
			data := recorder.Series(func(sample scene.Sample) float64 {
				body := sample.Bodies[name]
				if series == "height" {
					return body.Position.Y()
				}
				return body.Velocity.Len()
			})
			printGraph(data, fmt.Sprintf("%s %s", name, series))
		}
	default:
		return fmt.Errorf("unknown series: %s", series)
	}

	return nil
}

func printGraph(data []float64, caption string) {
	graph := asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	fmt.Println()
}

func benchScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SUBSTEPS\tTICKS/S\tMAX ANCHOR ERROR\tMAX LIMIT OVERSHOOT")

	for _, count := range substepList {
		run := *cfg
		run.Substeps = count

		s, err := build(&run)
		if err != nil {
			return err
		}
		recorder, err := scene.NewRecorder(s)
		if err != nil {
			return err
		}

		start := time.Now()
		if err := recorder.Run(); err != nil {
			return err
		}
		elapsed := time.Since(start)

		maxError, maxOvershoot := 0.0, 0.0
		for _, sample := range recorder.Samples {
			for _, joint := range run.Joints {
				recorded, ok := sample.Joints[joint.Name]
				if !ok {
					continue
				}
				maxError = math.Max(maxError, recorded.AnchorError)
				if joint.Type == "revolute" && len(joint.Limits) == 2 {
					overshoot := math.Max(joint.Limits[0]-recorded.Angle, recorded.Angle-joint.Limits[1])
					maxOvershoot = math.Max(maxOvershoot, overshoot)
				}
			}
		}

		rate := float64(s.Tick()) / elapsed.Seconds()
		fmt.Fprintf(w, "%d\t%.0f\t%.3e\t%.3e\n", count, rate, maxError, maxOvershoot)
	}

	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	s, err := build(cfg)
	if err != nil {
		return err
	}

	m, err := newLiveModel(s, frameRate)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	return nil
}

func formatVec(v [3]float64) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v[0], v[1], v[2])
}
