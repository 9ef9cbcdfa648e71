package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tfevents/internal/models"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournal_RunLifecycle(t *testing.T) {
	j := openTestJournal(t)

	run, err := j.BeginRun("/work/infra")
	require.NoError(t, err)
	assert.Len(t, run.ID, 36)

	events := []models.TerraformEvent{
		{Command: models.CommandPlan, Status: models.StatusPlanned, Change: []models.ResourceChange{models.ChangeCreate}, ResourcePath: "aws_instance.web", Source: "  # aws_instance.web will be created", SourceStream: models.Stdout},
		{Command: models.CommandPlan, Status: models.StatusCompleted, CreateCount: models.Count(1), UpdateCount: models.Count(0), DeleteCount: models.Count(0), Source: "Plan: 1 to add, 0 to change, 0 to destroy.", SourceStream: models.Stdout},
		{Command: models.CommandPlan, Source: "Warning: something", SourceStream: models.Stderr},
	}
	require.NoError(t, j.Append(run.ID, events[:2]...))
	require.NoError(t, j.Append(run.ID, events[2]))

	zero := 0
	require.NoError(t, j.RecordCommand(run.ID, CommandRecord{
		Command:  models.CommandPlan,
		Outcome:  "success",
		ExitCode: &zero,
		Duration: 3 * time.Second,
	}))
	require.NoError(t, j.FinishRun(run.ID))

	got, err := j.Events(run.ID)
	require.NoError(t, err)
	assert.Equal(t, events, got)

	stored, err := j.Run(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "/work/infra", stored.WorkingDir)
	assert.Equal(t, 3, stored.Events)
	require.Len(t, stored.Commands, 1)
	assert.Equal(t, 0, *stored.Commands[0].ExitCode)
	assert.False(t, stored.FinishedAt.IsZero())
}

func TestJournal_RunsMostRecentFirst(t *testing.T) {
	j := openTestJournal(t)

	first, err := j.BeginRun("a")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := j.BeginRun("b")
	require.NoError(t, err)

	runs, err := j.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)
}

func TestJournal_UnknownRun(t *testing.T) {
	j := openTestJournal(t)

	_, err := j.Events("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, j.Append("missing", models.TerraformEvent{}), ErrRunNotFound)
	assert.ErrorIs(t, j.FinishRun("missing"), ErrRunNotFound)
	_, err = j.Run("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestJournal_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	run, err := j.BeginRun("dir")
	require.NoError(t, err)
	require.NoError(t, j.Append(run.ID, models.TerraformEvent{Command: models.CommandInit, Source: "hi", SourceStream: models.Stdout}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	events, err := j.Events(run.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "hi", events[0].Source)
}

func TestSink_BatchesAndFlushes(t *testing.T) {
	j := openTestJournal(t)
	run, err := j.BeginRun("dir")
	require.NoError(t, err)

	sink := j.Sink(run.ID, 3)
	for i := 0; i < 4; i++ {
		sink.Emit(models.TerraformEvent{Command: models.CommandApply, Source: "line", SourceStream: models.Stdout})
	}

	events, err := j.Events(run.ID)
	require.NoError(t, err)
	assert.Len(t, events, 3, "one full batch written")

	sink.Flush()
	events, err = j.Events(run.ID)
	require.NoError(t, err)
	assert.Len(t, events, 4)
}

func TestSink_WriteFailureIsSwallowed(t *testing.T) {
	j := openTestJournal(t)
	sink := j.Sink("no-such-run", 1)

	assert.NotPanics(t, func() {
		sink.Emit(models.TerraformEvent{Source: "x"})
	})
}
