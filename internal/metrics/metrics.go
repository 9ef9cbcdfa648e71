// Package metrics records terraform events as OpenTelemetry metrics and
// serves them in the Prometheus exposition format.
package metrics

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apperrors "tfevents/internal/errors"
	"tfevents/internal/models"
	"tfevents/internal/process"
)

// Recorder is an EventSink that counts events and records command outcomes.
type Recorder struct {
	// Counters
	Events    metric.Int64Counter
	Resources metric.Int64Counter
	Summary   metric.Int64Counter

	// Histograms
	CommandDuration metric.Float64Histogram
}

// NewRecorder creates every instrument on meter.
func NewRecorder(meter metric.Meter) (*Recorder, error) {
	r := &Recorder{}
	var err error

	r.Events, err = meter.Int64Counter(
		"tfevents.events",
		metric.WithDescription("Lines of terraform output by command, status and stream"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	r.Resources, err = meter.Int64Counter(
		"tfevents.resources.completed",
		metric.WithDescription("Resource operations terraform reported as complete"),
		metric.WithUnit("{resource}"),
	)
	if err != nil {
		return nil, err
	}

	r.Summary, err = meter.Int64Counter(
		"tfevents.summary.changes",
		metric.WithDescription("Changes counted by plan, apply and destroy summaries"),
		metric.WithUnit("{change}"),
	)
	if err != nil {
		return nil, err
	}

	r.CommandDuration, err = meter.Float64Histogram(
		"tfevents.command.duration",
		metric.WithDescription("Wall time of terraform commands"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return r, nil
}

// Emit implements models.EventSink.
func (r *Recorder) Emit(event models.TerraformEvent) {
	ctx := context.Background()

	r.Events.Add(ctx, 1, metric.WithAttributeSet(attribute.NewSet(
		attribute.String("command", event.Command),
		attribute.String("status", event.Status.String()),
		attribute.String("stream", event.SourceStream.String()),
	)))

	switch event.Status {
	case models.StatusDone:
		r.Resources.Add(ctx, 1, metric.WithAttributeSet(attribute.NewSet(
			attribute.String("command", event.Command),
			attribute.String("change", changeName(event.Change)),
		)))
	case models.StatusCompleted:
		for _, c := range []struct {
			kind  string
			count *uint32
		}{
			{"create", event.CreateCount},
			{"update", event.UpdateCount},
			{"delete", event.DeleteCount},
		} {
			if c.count == nil {
				continue
			}
			r.Summary.Add(ctx, int64(*c.count), metric.WithAttributeSet(attribute.NewSet(
				attribute.String("command", event.Command),
				attribute.String("kind", c.kind),
			)))
		}
	}
}

// RecordCommand records how long a command ran and how it ended.
func (r *Recorder) RecordCommand(ctx context.Context, command string, duration time.Duration, result *process.Result, err error) {
	r.CommandDuration.Record(ctx, duration.Seconds(), metric.WithAttributeSet(attribute.NewSet(
		attribute.String("command", command),
		attribute.String("outcome", Outcome(result, err)),
	)))
}

// Outcome names how a command ended: success, failed, timeout, cancelled
// or error.
func Outcome(result *process.Result, err error) string {
	switch {
	case err == nil && result.Success():
		return "success"
	case err == nil:
		return "failed"
	case apperrors.IsTimeout(err):
		return "timeout"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

func changeName(changes []models.ResourceChange) string {
	if len(changes) == 0 {
		return "none"
	}
	return changes[0].String()
}

var _ models.EventSink = (*Recorder)(nil)
