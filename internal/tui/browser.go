// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"

	"sigbench/internal/dispatch"
	"sigbench/internal/method"
	"sigbench/internal/registry"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ScreenType defines which screen is currently active
type ScreenType int

const (
	ListScreen ScreenType = iota
	ParamsScreen
)

var (
	quitKeys  = key.NewBinding(key.WithKeys("q", "ctrl+c"))
	upKeys    = key.NewBinding(key.WithKeys("up", "k"))
	downKeys  = key.NewBinding(key.WithKeys("down", "j"))
	enterKeys = key.NewBinding(key.WithKeys("enter"))
	backKeys  = key.NewBinding(key.WithKeys("esc"))
)

// MethodListModel is the Bubble Tea model for browsing registered methods
// and their parameter grids.
type MethodListModel struct {
	registry      *registry.Registry
	task          method.Task // Filter; empty lists every task.
	methods       []method.Method
	selectedIndex int
	viewport      viewport.Model
	ready         bool
	err           error
	activeScreen  ScreenType
}

type methodsMsg struct {
	methods []method.Method
}

type errMsg struct {
	err error
}

// NewMethodListModel creates a browser over reg, optionally limited to task.
func NewMethodListModel(reg *registry.Registry, task method.Task) MethodListModel {
	return MethodListModel{
		registry:     reg,
		task:         task,
		activeScreen: ListScreen,
	}
}

// Init loads the methods from the registry.
func (m MethodListModel) Init() tea.Cmd {
	reg, task := m.registry, m.task
	return func() tea.Msg {
		if task != "" && !task.Valid() {
			return errMsg{fmt.Errorf("%w: %q", method.ErrInvalidTask, task)}
		}
		if task != "" {
			return methodsMsg{reg.ByTask(task)}
		}
		return methodsMsg{reg.All()}
	}
}

func (m MethodListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.viewport.Style = lipgloss.NewStyle()
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.refresh()

	case methodsMsg:
		m.methods = msg.methods
		m.refresh()

	case errMsg:
		m.err = msg.err

	case tea.KeyMsg:
		if key.Matches(msg, quitKeys) {
			return m, tea.Quit
		}

		switch m.activeScreen {
		case ListScreen:
			switch {
			case key.Matches(msg, upKeys):
				if m.selectedIndex > 0 {
					m.selectedIndex--
				}
			case key.Matches(msg, downKeys):
				if m.selectedIndex < len(m.methods)-1 {
					m.selectedIndex++
				}
			case key.Matches(msg, enterKeys):
				if len(m.methods) > 0 {
					m.activeScreen = ParamsScreen
					m.viewport.GotoTop()
				}
			}
		case ParamsScreen:
			if key.Matches(msg, backKeys) {
				m.activeScreen = ListScreen
			}
		}
		m.refresh()
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// refresh re-renders the active screen into the viewport.
func (m *MethodListModel) refresh() {
	if !m.ready {
		return
	}
	if m.activeScreen == ParamsScreen {
		m.viewport.SetContent(m.renderParams())
		return
	}
	m.viewport.SetContent(m.renderMethods())
}

// Selected returns the highlighted method, or nil before methods load.
func (m MethodListModel) Selected() method.Method {
	if m.selectedIndex < len(m.methods) {
		return m.methods[m.selectedIndex]
	}
	return nil
}

// View renders the UI
func (m MethodListModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to exit.", m.err)
	}
	if !m.ready {
		return "Initializing..."
	}

	var title, help string
	if m.activeScreen == ListScreen {
		title = titleStyle.Render("Methods")
		help = infoStyle.Render("↑/↓: Navigate • Enter: Parameters • q: Quit")
	} else {
		title = titleStyle.Render("Parameter Sweep")
		help = infoStyle.Render("Esc: Back • q: Quit")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

func (m MethodListModel) renderMethods() string {
	if len(m.methods) == 0 {
		return "No methods registered."
	}

	var sb strings.Builder
	for i, mt := range m.methods {
		line := fmt.Sprintf("%s %-20s %-10s sweep: %s\n",
			cursor(i == m.selectedIndex), mt.ID(), mt.Task(), sweepSize(dispatch.Parameters(mt)))
		if i == m.selectedIndex {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
	}
	return sb.String()
}

func (m MethodListModel) renderParams() string {
	selected := m.Selected()
	if selected == nil {
		return ""
	}
	return ParamsTable(selected)
}

func cursor(selected bool) string {
	if selected {
		return "▶"
	}
	return " "
}

// StartMethodBrowser launches the interactive method browser.
func StartMethodBrowser(reg *registry.Registry, task method.Task) error {
	p := tea.NewProgram(
		NewMethodListModel(reg, task),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
