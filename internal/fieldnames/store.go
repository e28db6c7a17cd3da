package fieldnames

import (
	"errors"
	"sync"
	"time"

	"github.com/crowdsourcing/surveyadmin/internal/surveys/domain"
)

// ErrNotLoaded is reported by Err while the store has not been populated yet
var ErrNotLoaded = errors.New("suggestions not loaded")

// State of the suggestion store
type State string

const (
	StateEmpty     State = "empty"
	StatePopulated State = "populated"
	StateFailed    State = "failed"
)

// Store owns the shared suggestion list. The loader writes it, the tag source reads it.
type Store struct {
	mu        sync.RWMutex
	items     []domain.Suggestion
	state     State
	lastErr   error
	updatedAt time.Time
}

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{
		items: []domain.Suggestion{},
		state: StateEmpty,
	}
}

// Get returns a copy of the current list. An unloaded store yields an empty list.
func (s *Store) Get() []domain.Suggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Suggestion, len(s.items))
	copy(out, s.items)
	return out
}

// Set replaces the whole list and marks the store populated
func (s *Store) Set(items []domain.Suggestion) {
	next := make([]domain.Suggestion, len(items))
	copy(next, items)

	s.mu.Lock()
	s.items = next
	s.state = StatePopulated
	s.lastErr = nil
	s.updatedAt = time.Now().UTC()
	s.mu.Unlock()
}

// Fail records a failed load. The list keeps its contents; a populated store stays populated.
func (s *Store) Fail(err error) {
	if err == nil {
		return
	}

	s.mu.Lock()
	s.lastErr = err
	if s.state != StatePopulated {
		s.state = StateFailed
	}
	s.mu.Unlock()
}

// State reports where the store is in its lifecycle
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Err returns the last load error, or ErrNotLoaded while the store is still empty
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastErr != nil {
		return s.lastErr
	}
	if s.state == StateEmpty {
		return ErrNotLoaded
	}
	return nil
}

// Snapshot describes the store for status reporting
type Snapshot struct {
	State     State     `json:"state"`
	Count     int       `json:"count"`
	LastError string    `json:"last_error,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		State:     s.state,
		Count:     len(s.items),
		UpdatedAt: s.updatedAt,
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	return snap
}
