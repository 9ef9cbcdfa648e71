package spinner

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"
)

func TestModel_UpdateMessageAndQuit(t *testing.T) {
	s := New("init", &bytes.Buffer{})

	next, cmd := s.model.Update(updateMsg{message: "apply - total: 2, running: 1, done: 0"})
	assert.Nil(t, cmd)
	assert.Contains(t, next.View(), "apply - total: 2, running: 1, done: 0")

	next, cmd = next.Update(quitMsg{})
	assert.NotNil(t, cmd)
	assert.Empty(t, next.View())
}

func TestNew_DefaultSpinnerType(t *testing.T) {
	s := New("x", &bytes.Buffer{})
	assert.Equal(t, spinner.MiniDot.Frames, s.model.spinner.Spinner.Frames)
}

func TestPrintlnBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	s := New("x", &buf)

	s.Println("hello")
	s.Stop()

	assert.Equal(t, "hello\n", buf.String())
}
