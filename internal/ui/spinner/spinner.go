// Package spinner provides an animated terminal spinner for long-running operations.
package spinner

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"tfevents/internal/ui"
)

// spinnerMap maps string names to spinner types
// (the values accepted for ui.spinner_type in the config file)
var spinnerMap = map[string]spinner.Spinner{
	"MiniDot": spinner.MiniDot,
	"Dot":     spinner.Dot,
	"Line":    spinner.Line,
	"Jump":    spinner.Jump,
	"Pulse":   spinner.Pulse,
	"Points":  spinner.Points,
	"Globe":   spinner.Globe,
	"Moon":    spinner.Moon,
	"Monkey":  spinner.Monkey,
	"Meter":   spinner.Meter,
}

// quitMsg is sent when the spinner should stop
type quitMsg struct{}

// updateMsg is sent when the spinner message should be updated
type updateMsg struct {
	message string
}

// model represents the spinner state
type model struct {
	spinner   spinner.Model
	textStyle lipgloss.Style
	message   string
	quitting  bool
}

// Spinner provides a terminal spinner with a message. Lines printed through
// Println appear above the spinner.
type Spinner struct {
	model   model
	out     io.Writer
	program *tea.Program
	wg      sync.WaitGroup
}

// New creates a new bubbletea-based spinner that draws on out.
func New(message string, out io.Writer) *Spinner {
	s := spinner.New()

	// Get the configured spinner type
	if spin, ok := spinnerMap[ui.GetSpinnerType()]; ok {
		s.Spinner = spin
	} else {
		// Fallback to default if spinner type not recognized
		s.Spinner = spinner.MiniDot
	}
	// Use the highlight color for the spinner
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ui.GetHexColorByName("highlight")))

	return &Spinner{
		model: model{
			spinner:   s,
			textStyle: lipgloss.NewStyle(), // Default color for text
			message:   message,
		},
		out: out,
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case quitMsg:
		m.quitting = true
		return m, tea.Quit
	case updateMsg:
		m.message = msg.message
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m model) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.textStyle.Render(m.message))
}

// Start begins the spinner animation. Interrupts are left to the caller.
func (s *Spinner) Start() {
	s.wg.Add(1)
	// Input and signals stay with the caller; the spinner only draws.
	p := tea.NewProgram(s.model,
		tea.WithOutput(s.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
		tea.WithoutCatchPanics(),
	)
	s.program = p

	go func() {
		defer s.wg.Done()
		if _, err := p.Run(); err != nil {
			log.Error().Err(err).Msg("spinner stopped")
		}
	}()
}

// UpdateMessage updates the spinner's message text while it's running.
func (s *Spinner) UpdateMessage(message string) {
	if s.program != nil {
		s.program.Send(updateMsg{message: message})
	}
}

// Println prints a line above the spinner.
func (s *Spinner) Println(line string) {
	if s.program != nil {
		s.program.Println(line)
		return
	}
	// Not started yet, nothing to draw around
	fmt.Fprintln(s.out, line)
}

// Stop ends the spinner animation.
func (s *Spinner) Stop() {
	if s.program == nil {
		return
	}
	s.program.Send(quitMsg{})

	// Wait for cleanup with timeout
	cleanup := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(cleanup)
	}()

	select {
	case <-cleanup:
		// Normal cleanup completed
	case <-time.After(500 * time.Millisecond):
		// Timeout - force quit
		s.program.Kill()
		fmt.Fprint(s.out, "\r") // Clear the spinner line
	}
}
