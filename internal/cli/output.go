package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"tfevents/internal/models"
	"tfevents/internal/process"
	"tfevents/internal/progress"
	"tfevents/internal/ui"
	"tfevents/internal/ui/spinner"
)

type outputMode int

const (
	modePlain outputMode = iota
	modeTTY
	modeJSON
)

// Printer is the event sink that writes to the user's terminal. On a
// terminal it keeps a spinner with the progress counts below the output.
type Printer struct {
	mu      sync.Mutex
	out     io.Writer
	mode    outputMode
	encoder *json.Encoder
	spinner *spinner.Spinner
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer, mode outputMode) *Printer {
	return &Printer{
		out:     out,
		mode:    mode,
		encoder: json.NewEncoder(out),
	}
}

// Emit implements models.EventSink.
func (p *Printer) Emit(event models.TerraformEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.mode {
	case modeJSON:
		if err := p.encoder.Encode(event); err != nil {
			log.Warn().Err(err).Msg("failed to write event")
		}
	case modeTTY:
		if p.spinner != nil {
			p.spinner.Println(ui.FormatEvent(event))
			return
		}
		fmt.Fprintln(p.out, ui.FormatEvent(event))
	default:
		fmt.Fprintln(p.out, ui.FormatEvent(event))
	}
}

// Progress updates the spinner with new counts.
func (p *Printer) Progress(command string, counts progress.Counts) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.spinner != nil {
		p.spinner.UpdateMessage(progress.Format(command, counts))
	}
}

// Begin announces a command.
func (p *Printer) Begin(command string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mode != modeTTY {
		return
	}
	p.spinner = spinner.New(fmt.Sprintf("terraform %s", command), p.out)
	p.spinner.Start()
}

// End stops the spinner and prints how the command ended.
func (p *Printer) End(command string, duration time.Duration, result *process.Result, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.spinner != nil {
		p.spinner.Stop()
		p.spinner = nil
	}
	if p.mode == modeJSON {
		return
	}

	duration = duration.Round(100 * time.Millisecond)
	switch {
	case err == nil && result.Success():
		fmt.Fprintln(p.out, ui.Emphasize(ui.ColorSuccess, fmt.Sprintf("%s finished in %s", command, duration)))
	case err == nil:
		fmt.Fprintln(p.out, ui.Emphasize(ui.ColorError, fmt.Sprintf("%s %s after %s", command, describeExit(result), duration)))
	default:
		fmt.Fprintln(p.out, ui.Emphasize(ui.ColorWarning, fmt.Sprintf("%s stopped after %s", command, duration)))
	}
}

// describeExit says how a finished child ended.
func describeExit(result *process.Result) string {
	switch {
	case result == nil:
		return "did not run"
	case result.ExitCode != nil:
		return fmt.Sprintf("exited with status %d", *result.ExitCode)
	case result.Signal != nil:
		return fmt.Sprintf("was killed by signal %d", *result.Signal)
	default:
		return "ended without an exit status"
	}
}

var _ models.EventSink = (*Printer)(nil)
