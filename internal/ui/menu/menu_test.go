package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func options() []Option {
	return []Option{
		{Name: "run-a", Description: "2024-01-01", Value: "a"},
		{Name: "run-b", Value: "b"},
		{Name: "run-c", Value: "c"},
	}
}

func TestModel_NavigateAndSelect(t *testing.T) {
	m := press(newModel("Select run", options()), "down", "j", "enter").(model)

	require.NotNil(t, m.selected)
	assert.Equal(t, "c", m.selected.Value)
}

func TestModel_CursorWraps(t *testing.T) {
	m := press(newModel("Select run", options()), "up").(model)
	assert.Equal(t, 2, m.cursor)

	m = press(m, "down").(model)
	assert.Equal(t, 0, m.cursor)
}

func TestModel_QuitWithoutSelection(t *testing.T) {
	m := press(newModel("Select run", options()), "q").(model)

	assert.True(t, m.quitting)
	assert.Nil(t, m.selected)
	assert.Empty(t, m.View())
}

func TestModel_View(t *testing.T) {
	view := newModel("Select run", options()).View()

	assert.Contains(t, view, "Select run")
	assert.Contains(t, view, "run-a")
	assert.Contains(t, view, "2024-01-01")
}

func TestShow_NoOptions(t *testing.T) {
	_, err := Show("Select run", nil)
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestOptionString(t *testing.T) {
	assert.Equal(t, "run-a - 2024-01-01", options()[0].String())
	assert.Equal(t, "run-b", options()[1].String())
}
