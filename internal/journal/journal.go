// Package journal persists the events of every run in a bbolt database so
// past runs can be listed and replayed.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"

	"tfevents/internal/models"
)

// Bucket names in bbolt. Events live in one nested bucket per run.
var (
	bucketRuns   = []byte("runs")
	bucketEvents = []byte("events")
)

// ErrRunNotFound is returned for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Run describes one invocation of the tool.
type Run struct {
	ID         string          `json:"id"`
	WorkingDir string          `json:"working_dir"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Commands   []CommandRecord `json:"commands,omitempty"`
	Events     int             `json:"events"`
}

// CommandRecord is how one terraform command of a run ended.
type CommandRecord struct {
	Command  string        `json:"command"`
	Outcome  string        `json:"outcome"`
	ExitCode *int          `json:"exit_code,omitempty"`
	Signal   *int          `json:"signal,omitempty"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Journal is a bbolt-backed event store.
type Journal struct {
	db *bbolt.DB
}

// Open opens or creates the journal at path, creating missing directories.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketRuns, bucketEvents} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialise journal: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the journal.
func (j *Journal) Close() error {
	return j.db.Close()
}

// BeginRun stores a new run and returns it.
func (j *Journal) BeginRun(workingDir string) (*Run, error) {
	run := &Run{
		ID:         uuid.NewString(),
		WorkingDir: workingDir,
		StartedAt:  time.Now().UTC(),
	}

	err := j.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.Bucket(bucketEvents).CreateBucket([]byte(run.ID)); err != nil {
			return err
		}
		return putRun(tx, run)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin run: %w", err)
	}
	return run, nil
}

// RecordCommand appends the outcome of a command to a run.
func (j *Journal) RecordCommand(runID string, record CommandRecord) error {
	return j.updateRun(runID, func(run *Run) {
		run.Commands = append(run.Commands, record)
	})
}

// FinishRun marks a run as finished.
func (j *Journal) FinishRun(runID string) error {
	return j.updateRun(runID, func(run *Run) {
		run.FinishedAt = time.Now().UTC()
	})
}

// Append stores events at the end of a run, in order.
func (j *Journal) Append(runID string, events ...models.TerraformEvent) error {
	if len(events) == 0 {
		return nil
	}

	return j.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketEvents).Bucket([]byte(runID))
		if bucket == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}

		for i, event := range events {
			seq, err := bucket.NextSequence()
			if err != nil {
				return err
			}
			value, err := json.Marshal(event)
			if err != nil {
				return fmt.Errorf("failed to marshal event at index %d: %w", i, err)
			}
			if err := bucket.Put(sequenceKey(seq), value); err != nil {
				return fmt.Errorf("failed to put event at index %d: %w", i, err)
			}
		}

		run, err := getRun(tx, runID)
		if err != nil {
			return err
		}
		run.Events += len(events)
		return putRun(tx, run)
	})
}

// Run returns a stored run.
func (j *Journal) Run(runID string) (*Run, error) {
	var run *Run
	err := j.db.View(func(tx *bbolt.Tx) error {
		var err error
		run, err = getRun(tx, runID)
		return err
	})
	return run, err
}

// Runs returns every stored run, most recent first.
func (j *Journal) Runs() ([]Run, error) {
	var runs []Run
	err := j.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRuns).ForEach(func(k, v []byte) error {
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("failed to decode run %s: %w", k, err)
			}
			runs = append(runs, run)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(runs, func(a, b int) bool {
		return runs[a].StartedAt.After(runs[b].StartedAt)
	})
	return runs, nil
}

// Events returns the events of a run in the order they were recorded.
func (j *Journal) Events(runID string) ([]models.TerraformEvent, error) {
	var events []models.TerraformEvent
	err := j.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketEvents).Bucket([]byte(runID))
		if bucket == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return bucket.ForEach(func(k, v []byte) error {
			var event models.TerraformEvent
			if err := json.Unmarshal(v, &event); err != nil {
				return fmt.Errorf("failed to decode event %d: %w", binary.BigEndian.Uint64(k), err)
			}
			events = append(events, event)
			return nil
		})
	})
	return events, err
}

func (j *Journal) updateRun(runID string, mutate func(*Run)) error {
	return j.db.Update(func(tx *bbolt.Tx) error {
		run, err := getRun(tx, runID)
		if err != nil {
			return err
		}
		mutate(run)
		return putRun(tx, run)
	})
}

func getRun(tx *bbolt.Tx, runID string) (*Run, error) {
	data := tx.Bucket(bucketRuns).Get([]byte(runID))
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", runID, err)
	}
	return &run, nil
}

func putRun(tx *bbolt.Tx, run *Run) error {
	value, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketRuns).Put([]byte(run.ID), value)
}

// sequenceKey encodes seq big-endian so keys sort in insertion order.
func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// Sink buffers events of one run and writes them to the journal in batches.
// Write failures are logged; they never fail the run being recorded.
type Sink struct {
	journal   *Journal
	runID     string
	batchSize int

	mu      sync.Mutex
	pending []models.TerraformEvent
}

// Sink returns an EventSink for runID that writes every batchSize events.
func (j *Journal) Sink(runID string, batchSize int) *Sink {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Sink{journal: j, runID: runID, batchSize: batchSize}
}

// Emit implements models.EventSink.
func (s *Sink) Emit(event models.TerraformEvent) {
	s.mu.Lock()
	s.pending = append(s.pending, event)
	full := len(s.pending) >= s.batchSize
	s.mu.Unlock()

	if full {
		s.Flush()
	}
}

// Flush writes every buffered event.
func (s *Sink) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return
	}
	if err := s.journal.Append(s.runID, s.pending...); err != nil {
		log.Warn().Err(err).Str("run", s.runID).Int("events", len(s.pending)).Msg("failed to write journal")
	}
	s.pending = s.pending[:0]
}

var _ models.EventSink = (*Sink)(nil)
