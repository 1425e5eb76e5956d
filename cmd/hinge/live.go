package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/akmonengine/hinge"
	"github.com/akmonengine/hinge/scene"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

const historyCapacity = 240

var (
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type tickMsg time.Time

// liveModel steps a scene at the frame rate and shows the recorded joints
type liveModel struct {
	scene    *scene.Scene
	recorder *scene.Recorder
	frame    time.Duration
	running  bool
	selected int
	joints   []string
	bodies   []string
	history  []float64
	limits   map[string]bool
}

func newLiveModel(s *scene.Scene, fps int) (liveModel, error) {
	recorder, err := scene.NewRecorder(s)
	if err != nil {
		return liveModel{}, err
	}

	m := liveModel{
		scene:    s,
		recorder: recorder,
		frame:    time.Second / time.Duration(max(fps, 1)),
		running:  true,
		joints:   append([]string(nil), s.Config.Record.Joints...),
		bodies:   append([]string(nil), s.Config.Record.Bodies...),
		history:  make([]float64, 0, historyCapacity),
		limits:   make(map[string]bool),
	}
	sort.Strings(m.joints)

	names := make(map[hinge.ConstraintHandle]string, len(s.Joints))
	for name, handle := range s.Joints {
		names[handle] = name
	}
	s.World.Events.Subscribe(hinge.LIMIT_ENTER, func(event hinge.Event) {
		m.limits[names[event.(hinge.LimitEnterEvent).Joint]] = true
	})
	s.World.Events.Subscribe(hinge.LIMIT_EXIT, func(event hinge.Event) {
		delete(m.limits, names[event.(hinge.LimitExitEvent).Joint])
	})

	return m, nil
}

func (m liveModel) Init() tea.Cmd {
	return m.tick()
}

func (m liveModel) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "tab":
			if len(m.joints) > 0 {
				m.selected = (m.selected + 1) % len(m.joints)
				m.history = m.history[:0]
			}
		case "+", "=":
			m.setSubsteps(m.scene.World.SubstepCount() * 2)
		case "-", "_":
			m.setSubsteps(m.scene.World.SubstepCount() / 2)
		}
	case tickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}

	return m, nil
}

func (m *liveModel) setSubsteps(substeps int) {
	// SetSubstepCount rejects zero, the count just stays at 1
	_ = m.scene.World.SetSubstepCount(substeps)
}

// step advances as many ticks as fit in a frame
func (m *liveModel) step() {
	ticks := max(int(m.frame.Seconds()/m.scene.Config.Dt+0.5), 1)
	for range ticks {
		m.scene.Step()
	}
	if err := m.recorder.Sample(); err != nil {
		return
	}
	// the recorder is only a buffer for the current frame here
	sample := m.recorder.Samples[len(m.recorder.Samples)-1]
	m.recorder.Samples = m.recorder.Samples[:0]

	if len(m.joints) == 0 {
		return
	}
	m.history = append(m.history, sample.Joints[m.joints[m.selected]].Angle)
	if len(m.history) > historyCapacity {
		m.history = m.history[len(m.history)-historyCapacity:]
	}
}

func (m liveModel) View() string {
	var stats strings.Builder
	stats.WriteString(headerStyle.Render(m.scene.Config.Name))
	stats.WriteString("\n")
	fmt.Fprintf(&stats, "time      %s\n", valueStyle.Render(fmt.Sprintf("%.2fs", m.scene.Time())))
	fmt.Fprintf(&stats, "substeps  %s\n", valueStyle.Render(fmt.Sprint(m.scene.World.SubstepCount())))

	for _, name := range m.bodies {
		pose, err := m.scene.World.Pose(m.scene.Bodies[name])
		if err != nil {
			continue
		}
		fmt.Fprintf(&stats, "%-9s %s\n", name, valueStyle.Render(formatVec(pose.Position)))
	}

	for i, name := range m.joints {
		angle, err := m.scene.JointAngle(name)
		if err != nil {
			continue
		}
		line := fmt.Sprintf("%-9s %+.3f rad", name, angle)
		if m.limits[name] {
			line += " [limit]"
		}
		if i == m.selected {
			line = activeStyle.Render(line)
		}
		stats.WriteString(line + "\n")
	}

	graph := ""
	if len(m.history) > 1 {
		graph = graphStyle.Render(asciigraph.Plot(m.history,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(m.joints[m.selected]+" angle"),
		))
	}

	help := helpStyle.Render("space: pause  tab: next joint  +/-: substeps  q: quit")
	if !m.running {
		help = helpStyle.Render("paused  ") + help
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, panelStyle.Render(stats.String()), graph),
		help,
	)
}
