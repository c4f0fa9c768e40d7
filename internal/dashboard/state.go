// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dashboard

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

// ErrRunInProgress is returned when a run is started while another is active.
var ErrRunInProgress = errors.New("an analysis run is already in progress")

// RunStatus is the lifecycle state of a dashboard run.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// RunSnapshot is a point-in-time copy of the current run.
type RunSnapshot struct {
	ID         string     `json:"id"`
	Filename   string     `json:"filename"`
	Status     RunStatus  `json:"status"`
	Total      int        `json:"total"`
	Done       int        `json:"done"`
	Failed     int        `json:"failed"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type run struct {
	snap  RunSnapshot
	parts []types.AnalyzedPart
}

// State owns the last run. A new run replaces the previous one wholesale;
// results are never merged across runs.
type State struct {
	mu  sync.Mutex
	cur *run
	now func() time.Time
}

// NewState returns an empty State.
func NewState() *State {
	return &State{now: time.Now}
}

// Begin starts a new run over total parts and returns its ID.
func (s *State) Begin(filename string, total int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur != nil && s.cur.snap.Status == StatusRunning {
		return "", ErrRunInProgress
	}
	id := uuid.NewString()
	s.cur = &run{
		snap: RunSnapshot{
			ID:        id,
			Filename:  filename,
			Status:    StatusRunning,
			Total:     total,
			StartedAt: s.now(),
		},
		parts: make([]types.AnalyzedPart, 0, total),
	}
	return id, nil
}

// Record appends one analyzed part to run id. Calls for a replaced run are ignored.
func (s *State) Record(id string, p types.AnalyzedPart) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur == nil || s.cur.snap.ID != id {
		return
	}
	s.cur.parts = append(s.cur.parts, p)
	s.cur.snap.Done = len(s.cur.parts)
	if p.Result.Failed() {
		s.cur.snap.Failed++
	}
}

// Finish marks run id completed, or failed when err is non-nil.
func (s *State) Finish(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur == nil || s.cur.snap.ID != id {
		return
	}
	now := s.now()
	s.cur.snap.FinishedAt = &now
	s.cur.snap.Status = StatusCompleted
	if err != nil {
		s.cur.snap.Status = StatusFailed
		s.cur.snap.Error = err.Error()
	}
}

// Current returns a snapshot of the current run. ok is false before the first run.
func (s *State) Current() (snap RunSnapshot, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur == nil {
		return RunSnapshot{}, false
	}
	snap = s.cur.snap
	if snap.FinishedAt != nil {
		t := *snap.FinishedAt
		snap.FinishedAt = &t
	}
	return snap, true
}

// Results returns a copy of the parts recorded so far for the current run.
func (s *State) Results() (RunSnapshot, []types.AnalyzedPart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur == nil {
		return RunSnapshot{}, nil, false
	}
	return s.cur.snap, slices.Clone(s.cur.parts), true
}
