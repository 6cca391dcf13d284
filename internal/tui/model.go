// Package tui hosts the three visualizations in a terminal.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"neuroviz/internal/frameclock"
	"neuroviz/internal/platform"
	"neuroviz/internal/render/cells"
	"neuroviz/internal/topology"
)

const (
	GridCols = 44
	GridRows = 16
)

var (
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	selectedStyle = panelStyle.BorderForeground(lipgloss.Color("205"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	reportStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(GridCols)
	inputStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameclock.DefaultInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model drives the lab's manual clocks once per terminal frame.
type Model struct {
	lab    *platform.Lab
	clocks map[topology.Kind]*frameclock.Manual
	grids  map[topology.Kind]*cells.Grid

	selected int
	// editing is the input field being typed into, 0 when none.
	editing int
	buffer  string
	err     error
}

func NewModel(lab *platform.Lab, clocks map[topology.Kind]*frameclock.Manual, grids map[topology.Kind]*cells.Grid) Model {
	return Model{lab: lab, clocks: clocks, grids: grids}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing != 0 {
			return m.updateEditing(msg), nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "right", "l":
			m.selected = (m.selected + 1) % len(topology.Kinds())
		case "shift+tab", "left", "h":
			m.selected = (m.selected + len(topology.Kinds()) - 1) % len(topology.Kinds())
		case " ", "s":
			m.apply(func(kind topology.Kind) error {
				v, err := m.lab.Visualization(kind)
				if err == nil {
					v.Start()
				}
				return err
			})
		case "x":
			m.apply(func(kind topology.Kind) error {
				v, err := m.lab.Visualization(kind)
				if err == nil {
					v.Stop()
				}
				return err
			})
		case "r":
			m.apply(func(kind topology.Kind) error {
				v, err := m.lab.Visualization(kind)
				if err != nil {
					return err
				}
				return v.Reset()
			})
		case "a":
			for _, kind := range topology.Kinds() {
				if v, err := m.lab.Visualization(kind); err == nil {
					v.Start()
				}
			}
		case "1", "2":
			m.editing = int(msg.Runes[0] - '0')
			m.buffer = m.field(m.editing)
		}
	case tickMsg:
		for _, kind := range topology.Kinds() {
			if clock, ok := m.clocks[kind]; ok {
				clock.Flush()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) Model {
	switch msg.Type {
	case tea.KeyEnter:
		raw1, raw2 := m.field(1), m.field(2)
		if m.editing == 1 {
			raw1 = m.buffer
		} else {
			raw2 = m.buffer
		}
		m.lab.SetInputs(raw1, raw2)
		m.editing, m.buffer = 0, ""
	case tea.KeyEsc:
		m.editing, m.buffer = 0, ""
	case tea.KeyBackspace:
		if len(m.buffer) > 0 {
			m.buffer = m.buffer[:len(m.buffer)-1]
		}
	case tea.KeyRunes:
		m.buffer += string(msg.Runes)
	}
	return m
}

func (m *Model) apply(fn func(kind topology.Kind) error) {
	m.err = fn(topology.Kinds()[m.selected])
}

func (m Model) field(n int) string {
	inputs := m.lab.Inputs()
	if n == 1 {
		return inputs.Input1.Raw()
	}
	return inputs.Input2.Raw()
}

func (m Model) View() string {
	panels := make([]string, 0, len(topology.Kinds()))
	for i, kind := range topology.Kinds() {
		panels = append(panels, m.panel(kind, i == m.selected))
	}
	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...))
	b.WriteString("\n")

	for n := 1; n <= 2; n++ {
		value := m.field(n)
		label := fmt.Sprintf("Input %d: ", n)
		if m.editing == n {
			b.WriteString(inputStyle.Render(label + m.buffer + "_"))
		} else {
			b.WriteString(label + value)
		}
		b.WriteString("   ")
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()))
	}
	b.WriteString(helpStyle.Render("\nTAB:Select  S/SPACE:Start  X:Stop  R:Reset  A:Start all  1/2:Edit input  Q:Quit"))
	return b.String()
}

func (m Model) panel(kind topology.Kind, selected bool) string {
	style := panelStyle
	if selected {
		style = selectedStyle
	}
	v, err := m.lab.Visualization(kind)
	if err != nil {
		return style.Render(headerStyle.Render(string(kind)) + "\n" + errorStyle.Render(err.Error()))
	}
	state := v.State()
	status := fmt.Sprintf("%s  stage %d  %s  tick %d", state.Status, state.Stage, state.Phase, state.Ticks)

	var b strings.Builder
	b.WriteString(headerStyle.Render(string(kind)) + "\n")
	if grid, ok := m.grids[kind]; ok {
		b.WriteString(grid.Styled() + "\n")
	}
	b.WriteString(statusStyle.Render(status) + "\n\n")
	b.WriteString(reportStyle.Render(v.Report().Text()))
	return style.Render(b.String())
}
