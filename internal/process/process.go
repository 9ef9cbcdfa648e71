// Package process supervises a single child process: it spawns the binary,
// drains stdout and stderr concurrently, enforces a deadline and reports how
// the child ended.
//
// Lines reach the caller through callbacks invoked from Wait, on the caller's
// goroutine, while the child is still running:
//
//	p := process.New("terraform", "./infra", nil, 30*time.Minute)
//	h, err := p.Spawn("plan", "-no-color")
//	if err != nil {
//	    return err
//	}
//	result, err := h.Wait(ctx, printLine, printLine)
package process

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "tfevents/internal/errors"
)

const (
	// UnreadablePlaceholder stands in for a line that could not be read.
	UnreadablePlaceholder = "<error retrieving stream content>"

	defaultPollInterval  = 20 * time.Millisecond
	defaultDrainGrace    = 2 * time.Second
	defaultShutdownGrace = 5 * time.Second
)

// LineHandler is called once per line, in stream order. line.Err is set
// when the line could not be read.
type LineHandler func(line Line)

// Result holds everything captured from one run of a child process.
// A run that exited has exactly one of ExitCode or Signal set; a run that
// timed out or was cancelled has neither.
type Result struct {
	Stdout   []string
	Stderr   []string
	ExitCode *int
	Signal   *int
	Duration time.Duration
}

// Success reports whether the child exited normally with status 0.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode != nil && *r.ExitCode == 0
}

// Process describes how to launch the binary. It holds no per-run state and
// may spawn any number of children, one Handle each.
type Process struct {
	binaryPath    string
	workingDir    string
	env           map[string]string
	timeout       time.Duration
	pollInterval  time.Duration
	drainGrace    time.Duration
	shutdownGrace time.Duration
}

// Option customises a Process.
type Option func(*Process)

// WithPollInterval sets how often Wait checks on the child and drains output.
func WithPollInterval(d time.Duration) Option {
	return func(p *Process) {
		if d > 0 {
			p.pollInterval = d
		}
	}
}

// WithDrainGrace bounds how long Wait keeps reading after the child ended.
// Descendants that inherited the pipes can otherwise hold them open forever.
func WithDrainGrace(d time.Duration) Option {
	return func(p *Process) {
		if d > 0 {
			p.drainGrace = d
		}
	}
}

// WithShutdownGrace sets how long a cancelled child has to exit after an
// interrupt before it is killed.
func WithShutdownGrace(d time.Duration) Option {
	return func(p *Process) {
		if d > 0 {
			p.shutdownGrace = d
		}
	}
}

// New creates a Process. env is merged over the inherited environment.
// A timeout of zero or less disables the deadline.
func New(binaryPath, workingDir string, env map[string]string, timeout time.Duration, opts ...Option) *Process {
	p := &Process{
		binaryPath:    binaryPath,
		workingDir:    workingDir,
		env:           env,
		timeout:       timeout,
		pollInterval:  defaultPollInterval,
		drainGrace:    defaultDrainGrace,
		shutdownGrace: defaultShutdownGrace,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Timeout returns the per-run deadline.
func (p *Process) Timeout() time.Duration {
	return p.timeout
}

// Spawn starts the binary with args, stdout and stderr redirected to pipes.
// The returned Handle must be waited on.
func (p *Process) Spawn(args ...string) (*Handle, error) {
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, apperrors.NewIOError("stdout pipe", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		closeAll(stdoutR, stdoutW)
		return nil, apperrors.NewIOError("stderr pipe", err)
	}

	cmd := exec.Command(p.binaryPath, args...)
	cmd.Dir = p.workingDir
	cmd.Env = mergeEnv(os.Environ(), p.env)
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	start := time.Now()
	if err := cmd.Start(); err != nil {
		closeAll(stdoutR, stdoutW, stderrR, stderrW)
		return nil, apperrors.NewIOError("spawn "+p.binaryPath, err)
	}
	// The child owns the write ends now; keeping ours open would hide EOF.
	closeAll(stdoutW, stderrW)

	log.Debug().
		Str("binary", p.binaryPath).
		Strs("args", args).
		Str("dir", p.workingDir).
		Int("pid", cmd.Process.Pid).
		Msg("process started")

	return &Handle{
		cmd:           cmd,
		args:          args,
		start:         start,
		timeout:       p.timeout,
		pollInterval:  p.pollInterval,
		drainGrace:    p.drainGrace,
		shutdownGrace: p.shutdownGrace,
		stdout:        stdoutR,
		stderr:        stderrR,
	}, nil
}

// runState is the position of the wait loop.
type runState int

const (
	stateRunning runState = iota
	stateExited
	stateTimedOut
	stateCancelled
)

// Handle is one running child process.
type Handle struct {
	cmd           *exec.Cmd
	args          []string
	start         time.Time
	timeout       time.Duration
	pollInterval  time.Duration
	drainGrace    time.Duration
	shutdownGrace time.Duration
	stdout        *os.File
	stderr        *os.File
	result        Result
}

// StartedAt returns when the child was spawned.
func (h *Handle) StartedAt() time.Time {
	return h.start
}

// Pid returns the child's process id.
func (h *Handle) Pid() int {
	return h.cmd.Process.Pid
}

// Wait supervises the child until it exits, its deadline passes or ctx is
// done. onStdout and onStderr are invoked from this goroutine for every line
// as it becomes available; either may be nil.
//
// On timeout the child is killed and the error wraps errors.ErrTimeout; on
// cancellation it wraps ctx.Err(). In both cases the returned Result still
// holds every line the child wrote before it died.
func (h *Handle) Wait(ctx context.Context, onStdout, onStderr LineHandler) (*Result, error) {
	out := newStreamer(h.stdout)
	errs := newStreamer(h.stderr)
	go out.stream()
	go errs.stream()

	exited := make(chan error, 1)
	go func() {
		exited <- h.cmd.Wait()
	}()

	var deadline <-chan time.Time
	if h.timeout > 0 {
		timer := time.NewTimer(max(h.timeout-time.Since(h.start), 0))
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	var outLines, errLines <-chan Line = out.lines, errs.lines
	state := stateRunning
	var waitErr error
	for state == stateRunning {
		select {
		case waitErr = <-exited:
			state = stateExited
		case <-deadline:
			state = stateTimedOut
		case <-ctx.Done():
			state = stateCancelled
		case <-ticker.C:
			outLines = drain(outLines, &h.result.Stdout, onStdout)
			errLines = drain(errLines, &h.result.Stderr, onStderr)
		}
	}

	switch state {
	case stateTimedOut:
		log.Warn().Int("pid", h.Pid()).Dur("timeout", h.timeout).Msg("process timed out, killing")
		h.kill()
		<-exited
	case stateCancelled:
		h.terminate(exited)
	}

	h.finish(outLines, errLines, onStdout, onStderr)
	h.result.Duration = time.Since(h.start)

	switch state {
	case stateTimedOut:
		return &h.result, fmt.Errorf("%s exceeded %s: %w", h.describe(), h.timeout, apperrors.ErrTimeout)
	case stateCancelled:
		return &h.result, fmt.Errorf("%s cancelled: %w", h.describe(), ctx.Err())
	}

	h.recordExit(waitErr)
	return &h.result, nil
}

// drain hands over the lines queued when it is called without blocking. A
// child that writes faster than handler runs cannot keep it looping, so the
// wait loop still sees its deadline. It returns nil once the streamer has
// finished so later drains skip it.
func drain(lines <-chan Line, buf *[]string, handler LineHandler) <-chan Line {
	// At least one receive, to notice a closed queue.
	for n := max(len(lines), 1); n > 0; n-- {
		select {
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			record(line, buf, handler)
		default:
			return lines
		}
	}
	return lines
}

func record(line Line, buf *[]string, handler LineHandler) {
	if line.Err != nil {
		*buf = append(*buf, UnreadablePlaceholder)
	} else {
		*buf = append(*buf, line.Text)
	}
	if handler != nil {
		handler(line)
	}
}

// finish reads both streams to the end, so lines written just before the
// child ended are not lost. If a stream stays open past the drain grace
// period, the read ends are closed to release the streamers.
func (h *Handle) finish(outLines, errLines <-chan Line, onStdout, onStderr LineHandler) {
	grace := time.NewTimer(h.drainGrace)
	defer grace.Stop()

	for outLines != nil || errLines != nil {
		select {
		case line, ok := <-outLines:
			if !ok {
				outLines = nil
				continue
			}
			record(line, &h.result.Stdout, onStdout)
		case line, ok := <-errLines:
			if !ok {
				errLines = nil
				continue
			}
			record(line, &h.result.Stderr, onStderr)
		case <-grace.C:
			log.Warn().Int("pid", h.Pid()).Msg("output still open after exit, closing pipes")
			h.closePipes()
		}
	}
	h.closePipes()
}

func (h *Handle) kill() {
	if err := h.cmd.Process.Kill(); err != nil && err != os.ErrProcessDone {
		log.Error().Err(err).Int("pid", h.Pid()).Msg("failed to kill process")
	}
}

// terminate asks the child to stop and kills it if it is still running
// after the shutdown grace period.
func (h *Handle) terminate(exited <-chan error) {
	if err := interrupt(h.cmd.Process); err != nil {
		h.kill()
		<-exited
		return
	}

	select {
	case <-exited:
	case <-time.After(h.shutdownGrace):
		log.Warn().Int("pid", h.Pid()).Dur("grace", h.shutdownGrace).Msg("process ignored interrupt, killing")
		h.kill()
		<-exited
	}
}

func (h *Handle) recordExit(waitErr error) {
	state := h.cmd.ProcessState
	if state == nil {
		log.Error().Err(waitErr).Int("pid", h.Pid()).Msg("process status unavailable")
		return
	}

	if sig, ok := exitSignal(state); ok {
		h.result.Signal = &sig
	} else {
		code := state.ExitCode()
		h.result.ExitCode = &code
	}

	event := log.Debug().Int("pid", h.Pid()).Dur("duration", h.result.Duration)
	if h.result.ExitCode != nil {
		event = event.Int("exit_code", *h.result.ExitCode)
	}
	if h.result.Signal != nil {
		event = event.Int("signal", *h.result.Signal)
	}
	event.Msg("process exited")
}

func (h *Handle) closePipes() {
	_ = h.stdout.Close()
	_ = h.stderr.Close()
}

func (h *Handle) describe() string {
	return strings.TrimSpace(h.cmd.Path + " " + strings.Join(h.args, " "))
}

// mergeEnv appends overlay to base. Later entries win when exec resolves
// duplicate keys, so the overlay overrides inherited values.
func mergeEnv(base []string, overlay map[string]string) []string {
	env := make([]string, 0, len(base)+len(overlay))
	env = append(env, base...)

	keys := make([]string, 0, len(overlay))
	for k := range overlay {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		env = append(env, k+"="+overlay[k])
	}
	return env
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
