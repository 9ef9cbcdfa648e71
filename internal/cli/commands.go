package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/rs/zerolog/log"

	"tfevents/internal/config"
	apperrors "tfevents/internal/errors"
	"tfevents/internal/journal"
	"tfevents/internal/metrics"
	"tfevents/internal/models"
	"tfevents/internal/process"
	"tfevents/internal/progress"
	"tfevents/internal/terraform"
	"tfevents/internal/ui/confirm"
)

// journalBatchSize is how many events are buffered before a journal write.
const journalBatchSize = 64

// App runs terraform commands and fans their events out to the terminal,
// the progress tracker, the metrics recorder and the journal.
type App struct {
	cfg      *config.Config
	tf       *terraform.Terraform
	prompter confirm.Prompter
	printer  *Printer
	tracker  *progress.Tracker

	// optional
	metricsProvider *metrics.Provider
	recorder        *metrics.Recorder
	journal         *journal.Journal
	journalSink     *journal.Sink
	runID           string
}

// NewApp wires an App from configuration. Close must be called when done.
func NewApp(cfg *config.Config, printer *Printer, prompter confirm.Prompter) (*App, error) {
	a := &App{
		cfg:      cfg,
		prompter: prompter,
		printer:  printer,
	}
	a.tracker = progress.NewTracker(printer.Progress)

	sinks := []models.EventSink{printer, a.tracker}

	if cfg.Metrics.Listen != "" {
		provider, err := metrics.Setup()
		if err != nil {
			return nil, err
		}
		recorder, err := metrics.NewRecorder(provider.Meter())
		if err != nil {
			_ = provider.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
		a.metricsProvider = provider
		a.recorder = recorder
		sinks = append(sinks, recorder)
	}

	if cfg.Journal.Enabled {
		// The journal is an observer: if it cannot be opened the run goes on
		// without it.
		if err := a.openJournal(); err != nil {
			log.Warn().Err(err).Str("path", cfg.Journal.Path).Msg("journal disabled")
		} else {
			sinks = append(sinks, a.journalSink)
		}
	}

	tf, err := terraform.New(
		cfg.Terraform.Binary,
		cfg.Terraform.WorkingDir,
		cfg.Terraform.Env,
		time.Duration(cfg.Terraform.Timeout),
		models.NewMultiSink(sinks...),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.tf = tf

	return a, nil
}

func (a *App) openJournal() error {
	j, err := journal.Open(a.cfg.Journal.Path)
	if err != nil {
		return err
	}
	r, err := j.BeginRun(workingDirLabel(a.cfg))
	if err != nil {
		j.Close()
		return err
	}

	a.journal = j
	a.runID = r.ID
	a.journalSink = j.Sink(r.ID, journalBatchSize)
	log.Debug().Str("run", r.ID).Msg("recording run")
	return nil
}

// RunID returns the journal run ID, or "" without a journal.
func (a *App) RunID() string {
	return a.runID
}

// Close finishes the journal run and releases the metrics provider.
func (a *App) Close() {
	if a.journal != nil {
		a.journalSink.Flush()
		if err := a.journal.FinishRun(a.runID); err != nil {
			log.Warn().Err(err).Msg("failed to finish journal run")
		}
		if err := a.journal.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close journal")
		}
		a.journal = nil
	}
	if a.metricsProvider != nil {
		if err := a.metricsProvider.Shutdown(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to shut down metrics")
		}
		a.metricsProvider = nil
	}
}

// Run executes steps in order until one fails. Interrupts and SIGTERM cancel
// the running command; the metrics endpoint is served for as long as the
// steps run.
func (a *App) Run(ctx context.Context, steps []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g run.Group

	g.Add(func() error {
		return a.lifecycle(ctx, steps)
	}, func(error) {
		cancel()
	})

	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	if a.metricsProvider != nil {
		server, err := a.metricsProvider.Listen(a.cfg.Metrics.Listen)
		if err != nil {
			return err
		}
		g.Add(server.Serve, func(error) {
			server.Stop()
		})
	}

	err := g.Run()

	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		return fmt.Errorf("received %s: %w", sigErr.Signal, apperrors.ErrUserAborted)
	}
	return err
}

func (a *App) lifecycle(ctx context.Context, steps []string) error {
	for _, step := range steps {
		if err := a.step(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) step(ctx context.Context, command string) error {
	if label := confirmationLabel(command, a.cfg); label != "" {
		if err := a.prompter.Confirm(label); err != nil {
			return err
		}
	}

	a.printer.Begin(command)
	start := time.Now()
	result, err := a.execute(ctx, command)
	duration := time.Since(start)
	a.printer.End(command, duration, result, err)
	a.record(ctx, command, duration, result, err)

	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("terraform %s %s", command, describeExit(result))
	}
	return nil
}

func (a *App) execute(ctx context.Context, command string) (*process.Result, error) {
	planFile := a.cfg.Terraform.PlanFile
	switch command {
	case models.CommandInit:
		return a.tf.Init(ctx)
	case models.CommandPlan:
		return a.tf.Plan(ctx, planFile)
	case models.CommandApply:
		return a.tf.Apply(ctx, planFile)
	case models.CommandDestroy:
		return a.tf.Destroy(ctx)
	}
	return nil, apperrors.NewValidationError("command", fmt.Sprintf("unknown command %q", command), apperrors.ErrInvalidInput)
}

// record reports a finished command to metrics and the journal.
func (a *App) record(ctx context.Context, command string, duration time.Duration, result *process.Result, err error) {
	if a.recorder != nil {
		a.recorder.RecordCommand(ctx, command, duration, result, err)
	}
	if a.journal == nil {
		return
	}

	a.journalSink.Flush()
	rec := journal.CommandRecord{
		Command:  command,
		Outcome:  metrics.Outcome(result, err),
		Duration: duration,
	}
	if result != nil {
		rec.ExitCode = result.ExitCode
		rec.Signal = result.Signal
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if err := a.journal.RecordCommand(a.runID, rec); err != nil {
		log.Warn().Err(err).Str("command", command).Msg("failed to record command")
	}
}

// confirmationLabel returns the question asked before command, or "" when
// command needs no confirmation.
func confirmationLabel(command string, cfg *config.Config) string {
	switch command {
	case models.CommandApply:
		return fmt.Sprintf("Apply plan %s", cfg.Terraform.PlanFile)
	case models.CommandDestroy:
		return fmt.Sprintf("Destroy every resource managed in %s", workingDirLabel(cfg))
	}
	return ""
}

// promptFor picks how confirmations are answered.
func promptFor(flags *Flags, stdin *os.File, stdout io.Writer) confirm.Prompter {
	if flags.Yes {
		return confirm.Always{}
	}
	out, ok := stdout.(*os.File)
	if !ok || !isTerminal(stdin) || !isTerminal(out) {
		return confirm.Never{Reason: "cannot ask for confirmation without a terminal, pass --yes"}
	}
	return confirm.Terminal{Stdin: stdin, Stdout: out}
}
