package model

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is the merged output of one collection cycle: one Result per
// declared task, keyed by task name. The collector owns the map while the
// cycle runs; once Collect returns the snapshot is treated as immutable.
type Snapshot struct {
	ID         string            `json:"id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Results    map[string]Result `json:"results"`
}

// NewSnapshot allocates an empty snapshot for a new cycle.
func NewSnapshot(now time.Time) *Snapshot {
	return &Snapshot{
		ID:        uuid.NewString(),
		StartedAt: now,
		Results:   make(map[string]Result),
	}
}

// Get returns the result for a task, or an Absent result if the task never
// reported (a scheduler bug rather than a data gap, but callers must not care).
func (s *Snapshot) Get(task string) Result {
	if r, ok := s.Results[task]; ok {
		return r
	}
	return Absent(ReasonNone, "task not scheduled")
}

// ValueOf returns the task's value when present.
func (s *Snapshot) ValueOf(task string) (any, bool) {
	r := s.Get(task)
	if !r.Present() {
		return nil, false
	}
	return r.Value, true
}

// Duration is the wall time the cycle took.
func (s *Snapshot) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
