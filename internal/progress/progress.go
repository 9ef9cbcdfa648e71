// Package progress keeps running totals of resource operations across the
// terraform lifecycle.
package progress

import (
	"fmt"
	"sync"

	"tfevents/internal/models"
)

// Counts is the progress of one command.
type Counts struct {
	Total   int
	Running int
	Done    int
}

// Tracker is an EventSink that counts resources started and finished per
// command. The apply total comes from the plan summary and the destroy
// total from the number of resources apply finished.
type Tracker struct {
	mu       sync.Mutex
	counts   map[string]*Counts
	onChange func(command string, counts Counts)
}

// NewTracker creates a Tracker. onChange, if not nil, is called with the new
// counts after every event that changes them.
func NewTracker(onChange func(command string, counts Counts)) *Tracker {
	return &Tracker{
		counts: map[string]*Counts{
			models.CommandPlan:    {},
			models.CommandApply:   {},
			models.CommandDestroy: {},
		},
		onChange: onChange,
	}
}

// Emit implements models.EventSink.
func (t *Tracker) Emit(event models.TerraformEvent) {
	t.mu.Lock()
	command, changed := t.apply(event)
	var snapshot Counts
	if changed {
		snapshot = *t.counts[command]
	}
	t.mu.Unlock()

	if changed && t.onChange != nil {
		t.onChange(command, snapshot)
	}
}

// apply updates the counts for event and returns the command whose counts
// changed.
func (t *Tracker) apply(event models.TerraformEvent) (string, bool) {
	if event.SourceStream == models.Stderr {
		return "", false
	}

	switch event.Command {
	case models.CommandPlan:
		plan := t.counts[models.CommandPlan]
		switch {
		case event.Status == models.StatusCompleted:
			plan.Total = int(event.TotalChanges())
			t.counts[models.CommandApply].Total = plan.Total
			return models.CommandPlan, true
		case event.Status == models.StatusPlanned && len(event.Change) > 0:
			plan.Done++
			return models.CommandPlan, true
		}

	case models.CommandApply, models.CommandDestroy:
		c := t.counts[event.Command]
		switch event.Status {
		case models.StatusStarted:
			c.Running++
		case models.StatusDone:
			if c.Running > 0 {
				c.Running--
			}
			c.Done++
			if event.Command == models.CommandApply {
				t.counts[models.CommandDestroy].Total = c.Done
			}
		default:
			return "", false
		}
		return event.Command, true
	}

	return "", false
}

// Snapshot returns the current counts of command.
func (t *Tracker) Snapshot(command string) Counts {
	t.mu.Lock()
	defer t.mu.Unlock()

	if c, ok := t.counts[command]; ok {
		return *c
	}
	return Counts{}
}

// Format renders counts the way the progress line shows them.
func Format(command string, c Counts) string {
	return fmt.Sprintf("%s - total: %d, running: %d, done: %d", command, c.Total, c.Running, c.Done)
}

var _ models.EventSink = (*Tracker)(nil)
