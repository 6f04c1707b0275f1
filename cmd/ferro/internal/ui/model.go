// Package ui implements the interactive project creation wizard.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ferroui/ferro/cmd/ferro/internal/scaffold"
)

// Step is the current screen of the wizard.
type Step int

const (
	StepName Step = iota
	StepTemplate
	StepPort
	StepGit
	StepSummary
	StepComplete
)

// KeyMap defines the wizard keyboard shortcuts.
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Back  key.Binding
	Quit  key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginBottom(1)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Model is the wizard state.
type Model struct {
	step Step
	keys KeyMap

	nameInput textinput.Model
	portInput textinput.Model

	templates    []string
	selectedItem int
	gitInit      bool

	errorMessage string
	quitting     bool
}

// NewModel creates a wizard model, optionally pre-filled with a project name.
func NewModel(projectName string) Model {
	nameInput := textinput.New()
	nameInput.Placeholder = "my-ferro-app"
	nameInput.Focus()
	nameInput.CharLimit = 50
	nameInput.Width = 40
	if projectName != "" {
		nameInput.SetValue(projectName)
	}

	portInput := textinput.New()
	portInput.Placeholder = "5173"
	portInput.CharLimit = 5
	portInput.Width = 10
	portInput.SetValue("5173")

	return Model{
		step:      StepName,
		keys:      DefaultKeyMap,
		nameInput: nameInput,
		portInput: portInput,
		templates: scaffold.Templates(),
		gitInit:   true,
	}
}

// Cancelled reports whether the user quit before finishing.
func (m Model) Cancelled() bool {
	return m.quitting && m.step != StepComplete
}

// Config builds the scaffold configuration from the wizard answers.
func (m Model) Config() *scaffold.ProjectConfig {
	port, err := strconv.Atoi(m.portInput.Value())
	if err != nil || port <= 0 || port > 65535 {
		port = 5173
	}
	name := strings.TrimSpace(m.nameInput.Value())
	return &scaffold.ProjectConfig{
		Name:     name,
		Template: m.templates[m.selectedItem],
		Port:     port,
		GitInit:  m.gitInit,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateInputs(msg)
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		if m.step == StepName || m.step == StepPort {
			// q is a legal character in text fields
			if keyMsg.String() != "ctrl+c" {
				return m.updateInputs(msg)
			}
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Back):
		if m.step > StepName && m.step < StepComplete {
			m.step--
			m.errorMessage = ""
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Enter):
		return m.advance()
	}

	switch m.step {
	case StepTemplate:
		switch {
		case key.Matches(keyMsg, m.keys.Up):
			if m.selectedItem > 0 {
				m.selectedItem--
			}
		case key.Matches(keyMsg, m.keys.Down):
			if m.selectedItem < len(m.templates)-1 {
				m.selectedItem++
			}
		}
		return m, nil
	case StepGit:
		if key.Matches(keyMsg, m.keys.Up) || key.Matches(keyMsg, m.keys.Down) {
			m.gitInit = !m.gitInit
		}
		return m, nil
	}

	return m.updateInputs(msg)
}

func (m Model) advance() (tea.Model, tea.Cmd) {
	m.errorMessage = ""
	switch m.step {
	case StepName:
		if strings.TrimSpace(m.nameInput.Value()) == "" {
			m.errorMessage = "a project name is required"
			return m, nil
		}
		m.step = StepTemplate
	case StepTemplate:
		m.step = StepPort
		m.portInput.Focus()
	case StepPort:
		if _, err := strconv.Atoi(m.portInput.Value()); err != nil {
			m.errorMessage = "the port must be a number"
			return m, nil
		}
		m.step = StepGit
	case StepGit:
		m.step = StepSummary
	case StepSummary:
		m.step = StepComplete
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.step {
	case StepName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case StepPort:
		m.portInput, cmd = m.portInput.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	if m.quitting && m.step != StepComplete {
		return "cancelled\n"
	}

	var body strings.Builder
	switch m.step {
	case StepName:
		body.WriteString(titleStyle.Render("Project name"))
		body.WriteString("\n" + m.nameInput.View() + "\n")
	case StepTemplate:
		body.WriteString(titleStyle.Render("Template"))
		body.WriteString("\n")
		for i, tmpl := range m.templates {
			cursor := "  "
			line := tmpl
			if i == m.selectedItem {
				cursor = selectedStyle.Render("> ")
				line = selectedStyle.Render(tmpl)
			}
			body.WriteString(cursor + line + "\n")
		}
	case StepPort:
		body.WriteString(titleStyle.Render("Dev server port"))
		body.WriteString("\n" + m.portInput.View() + "\n")
	case StepGit:
		body.WriteString(titleStyle.Render("Initialize git repository?"))
		choice := "no"
		if m.gitInit {
			choice = "yes"
		}
		body.WriteString("\n" + selectedStyle.Render(choice) + dimStyle.Render("  (↑/↓ to toggle)") + "\n")
	case StepSummary:
		cfg := m.Config()
		body.WriteString(titleStyle.Render("Summary"))
		body.WriteString(fmt.Sprintf("\nname:     %s\ntemplate: %s\nport:     %d\ngit:      %v\n",
			cfg.Name, cfg.Template, cfg.Port, cfg.GitInit))
		body.WriteString(dimStyle.Render("\npress enter to create the project"))
	case StepComplete:
		return ""
	}

	if m.errorMessage != "" {
		body.WriteString("\n" + errStyle.Render(m.errorMessage) + "\n")
	}
	body.WriteString("\n" + dimStyle.Render("enter confirm · esc back · ctrl+c quit"))

	return boxStyle.Render(body.String()) + "\n"
}
