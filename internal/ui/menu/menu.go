// Package menu provides interactive terminal menu components.
package menu

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tfevents/internal/ui"
)

// ErrNoSelection is returned when the menu is left without picking an option.
var ErrNoSelection = errors.New("no option selected")

// Option represents a single menu option.
type Option struct {
	Name        string
	Description string
	Value       string
}

// String implements the fmt.Stringer interface.
func (o Option) String() string {
	if o.Description != "" {
		return fmt.Sprintf("%s - %s", o.Name, o.Description)
	}
	return o.Name
}

// model represents the menu state.
type model struct {
	title    string
	options  []Option
	cursor   int
	selected *Option
	quitting bool
	styles   styles
}

type styles struct {
	active      lipgloss.Style
	cursor      lipgloss.Style
	name        lipgloss.Style
	description lipgloss.Style
}

// newStyles builds the menu styles from the configured colors.
func newStyles() styles {
	highlightColor := lipgloss.Color(ui.GetHexColorByName("highlight"))
	faintColor := lipgloss.Color(ui.GetHexColorByName("faint"))

	return styles{
		active:      lipgloss.NewStyle().Foreground(highlightColor).Bold(true),
		cursor:      lipgloss.NewStyle().Foreground(highlightColor),
		name:        lipgloss.NewStyle().Foreground(faintColor),
		description: lipgloss.NewStyle().Foreground(faintColor),
	}
}

func newModel(title string, options []Option) model {
	return model{
		title:   title,
		options: options,
		styles:  newStyles(),
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		} else {
			m.cursor = len(m.options) - 1
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		} else {
			m.cursor = 0
		}
	case "enter", " ":
		m.selected = &m.options[m.cursor]
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m model) View() string {
	if m.quitting || m.selected != nil {
		return ""
	}

	var s strings.Builder
	s.WriteString(m.title + "\n\n")

	for i, option := range m.options {
		cursor := " "
		nameStyle := m.styles.name
		if m.cursor == i {
			cursor = m.styles.cursor.Render(">")
			nameStyle = m.styles.active
		}

		s.WriteString(fmt.Sprintf("%s %s", cursor, nameStyle.Render(option.Name)))
		if option.Description != "" {
			s.WriteString(fmt.Sprintf(" - %s", m.styles.description.Render(option.Description)))
		}
		s.WriteString("\n")
	}

	return s.String()
}

// Show displays the options under title and returns the one picked.
func Show(title string, options []Option, opts ...tea.ProgramOption) (Option, error) {
	if len(options) == 0 {
		return Option{}, ErrNoSelection
	}

	finalModel, err := tea.NewProgram(newModel(title, options), opts...).Run()
	if err != nil {
		return Option{}, err
	}

	m := finalModel.(model)
	if m.selected == nil {
		return Option{}, ErrNoSelection
	}
	return *m.selected, nil
}
