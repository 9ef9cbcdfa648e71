package terraform

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"tfevents/internal/models"
	"tfevents/internal/process"
)

// classifyFunc turns a stdout line into an event.
type classifyFunc func(line string) models.TerraformEvent

// run executes one terraform command and emits an event per output line as
// the lines arrive. Stdout goes through classify when it is set; stderr is
// never classified. A non-zero exit is not an error: callers inspect the
// returned result.
func (t *Terraform) run(ctx context.Context, command string, args []string, classify classifyFunc) (*process.Result, error) {
	logger := log.With().Str("command", command).Logger()
	logger.Debug().Strs("args", args).Msg("running terraform")

	h, err := t.process.Spawn(args...)
	if err != nil {
		return nil, fmt.Errorf("error starting terraform %s: %w", command, err)
	}

	result, err := h.Wait(ctx,
		func(line process.Line) { t.emit(command, models.Stdout, line, classify) },
		func(line process.Line) { t.emit(command, models.Stderr, line, nil) },
	)
	if err != nil {
		logger.Warn().Err(err).Int("stdout_lines", len(result.Stdout)).Msg("terraform did not finish")
		return result, fmt.Errorf("error executing terraform %s: %w", command, err)
	}

	event := logger.Debug().Dur("duration", result.Duration)
	if result.ExitCode != nil {
		event = event.Int("exit_code", *result.ExitCode)
	}
	if result.Signal != nil {
		event = event.Int("signal", *result.Signal)
	}
	event.Msg("terraform finished")

	return result, nil
}

func (t *Terraform) emit(command string, stream models.SourceStream, line process.Line, classify classifyFunc) {
	var event models.TerraformEvent
	switch {
	case line.Err != nil:
		log.Debug().Err(line.Err).Str("command", command).Msg("unreadable output line")
		event = models.TerraformEvent{Source: process.UnreadablePlaceholder}
	case classify != nil:
		event = classify(line.Text)
	default:
		event = models.TerraformEvent{Source: line.Text}
	}

	event.Command = command
	event.SourceStream = stream
	t.sink.Emit(event)
}
