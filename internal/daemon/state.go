package daemon

import (
	"slices"
	"sync"
	"time"

	"ingestmon/internal/model"
)

// MonitorState is the last published result of a poll cycle. A cycle replaces
// it wholesale; readers get copies.
type MonitorState struct {
	mu        sync.RWMutex
	lines     []string
	logErr    error
	derived   model.State
	syncing   bool
	errMsg    string
	updatedAt *time.Time
}

func NewMonitorState() *MonitorState {
	return &MonitorState{
		derived: model.State{Recent: []model.CompletedEntry{}},
	}
}

// Derived is the parser output of the last successful cycle.
func (s *MonitorState) Derived() model.State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.derived.Clone()
}

type cycleResult struct {
	lines   []string
	logErr  error
	derived *model.State
	syncing bool
	errMsg  string
	at      time.Time
}

func (s *MonitorState) publish(r cycleResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A failed read keeps the previous window on display.
	if r.logErr == nil {
		s.lines = r.lines
	}
	s.logErr = r.logErr

	if r.derived != nil {
		s.derived = *r.derived
	}

	s.syncing = r.syncing
	s.errMsg = r.errMsg
	s.updatedAt = new(r.at)
}

// Logs returns the last window read and the error of the latest read, if any.
func (s *MonitorState) Logs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.lines), s.logErr
}

func (s *MonitorState) Status() model.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := s.derived.Clone()
	return model.Status{
		Syncing:   s.syncing,
		Current:   d.Current,
		Recent:    d.Recent,
		Error:     s.errMsg,
		UpdatedAt: s.updatedAt,
	}
}
