package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"tfevents/internal/models"
)

func event(command string, status models.ResourceStatus) models.TerraformEvent {
	return models.TerraformEvent{
		Command:      command,
		Status:       status,
		Change:       []models.ResourceChange{models.ChangeCreate},
		SourceStream: models.Stdout,
	}
}

func TestTracker_Lifecycle(t *testing.T) {
	var updates []string
	tracker := NewTracker(func(command string, c Counts) {
		updates = append(updates, Format(command, c))
	})

	tracker.Emit(event(models.CommandPlan, models.StatusPlanned))
	tracker.Emit(event(models.CommandPlan, models.StatusPlanned))
	tracker.Emit(models.TerraformEvent{
		Command:      models.CommandPlan,
		Status:       models.StatusCompleted,
		CreateCount:  models.Count(2),
		UpdateCount:  models.Count(0),
		DeleteCount:  models.Count(0),
		SourceStream: models.Stdout,
	})

	tracker.Emit(event(models.CommandApply, models.StatusStarted))
	tracker.Emit(event(models.CommandApply, models.StatusStarted))
	tracker.Emit(event(models.CommandApply, models.StatusInProgress))
	tracker.Emit(event(models.CommandApply, models.StatusDone))
	tracker.Emit(event(models.CommandApply, models.StatusDone))

	tracker.Emit(event(models.CommandDestroy, models.StatusStarted))
	tracker.Emit(event(models.CommandDestroy, models.StatusDone))

	assert.Equal(t, Counts{Total: 2, Done: 2}, tracker.Snapshot(models.CommandPlan))
	assert.Equal(t, Counts{Total: 2, Running: 0, Done: 2}, tracker.Snapshot(models.CommandApply))
	assert.Equal(t, Counts{Total: 2, Running: 0, Done: 1}, tracker.Snapshot(models.CommandDestroy))

	assert.Equal(t, []string{
		"plan - total: 0, running: 0, done: 1",
		"plan - total: 0, running: 0, done: 2",
		"plan - total: 2, running: 0, done: 2",
		"apply - total: 2, running: 1, done: 0",
		"apply - total: 2, running: 2, done: 0",
		"apply - total: 2, running: 1, done: 1",
		"apply - total: 2, running: 0, done: 2",
		"destroy - total: 2, running: 1, done: 0",
		"destroy - total: 2, running: 0, done: 1",
	}, updates)
}

func TestTracker_IgnoresNoise(t *testing.T) {
	calls := 0
	tracker := NewTracker(func(string, Counts) { calls++ })

	tracker.Emit(models.TerraformEvent{Command: models.CommandInit, Source: "Initializing..."})
	tracker.Emit(models.TerraformEvent{Command: models.CommandPlan, Status: models.StatusPlanned, Source: "noise"})
	tracker.Emit(models.TerraformEvent{Command: models.CommandApply, Source: "Warning"})
	stderr := event(models.CommandApply, models.StatusStarted)
	stderr.SourceStream = models.Stderr
	tracker.Emit(stderr)

	assert.Zero(t, calls)
	assert.Equal(t, Counts{}, tracker.Snapshot(models.CommandApply))
	assert.Equal(t, Counts{}, tracker.Snapshot("unknown"))
}

func TestTracker_DoneWithoutStartDoesNotGoNegative(t *testing.T) {
	tracker := NewTracker(nil)

	tracker.Emit(event(models.CommandDestroy, models.StatusDone))

	assert.Equal(t, Counts{Done: 1}, tracker.Snapshot(models.CommandDestroy))
}

func TestTracker_ConcurrentEmit(t *testing.T) {
	tracker := NewTracker(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Emit(event(models.CommandApply, models.StatusStarted))
			tracker.Emit(event(models.CommandApply, models.StatusDone))
		}()
	}
	wg.Wait()

	assert.Equal(t, Counts{Done: 50}, tracker.Snapshot(models.CommandApply))
}
