package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/KaramelBytes/hospimap-cli/internal/dashboard"
)

// Sessions keeps the selection of each dashboard client in memory.
type Sessions struct {
	mu sync.Mutex
	m  map[string]dashboard.Selection
}

// NewSessions returns an empty store.
func NewSessions() *Sessions {
	return &Sessions{m: make(map[string]dashboard.Selection)}
}

// Create registers a session with the default selection and returns its id.
func (s *Sessions) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.m[id] = dashboard.DefaultSelection()
	s.mu.Unlock()
	return id
}

// Get returns a copy of the session's selection.
func (s *Sessions) Get(id string) (dashboard.Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.m[id]
	if !ok {
		return sel, false
	}
	return cloneSelection(sel), true
}

// Put replaces the selection of an existing session.
func (s *Sessions) Put(id string, sel dashboard.Selection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return false
	}
	s.m[id] = cloneSelection(sel)
	return true
}

// Delete drops a session. It reports whether it existed.
func (s *Sessions) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[id]
	delete(s.m, id)
	return ok
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

func cloneSelection(sel dashboard.Selection) dashboard.Selection {
	if sel.Overrides != nil {
		ov := make(map[string]string, len(sel.Overrides))
		for k, v := range sel.Overrides {
			ov[k] = v
		}
		sel.Overrides = ov
	}
	return sel
}
