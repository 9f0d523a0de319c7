// internal/store/sessions.go
//
// Live session registry for the HTTP layer.
// Characteristics:
//   - Stores *chain.Orchestrator values keyed by session ID in a map.
//   - The map is guarded by an RWMutex; each entry carries its own mutex so
//     requests for one session are serialized without blocking the others.
//   - State is lost when the process restarts (finished rounds and sessions are
//     persisted separately through a chain.Repository).

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/hurdle/internal/chain"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("store: session not found")

type entry struct {
	mu      sync.Mutex
	orch    *chain.Orchestrator
	touched time.Time
}

// Sessions maps session IDs to live orchestrators.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	now      func() time.Time
}

// NewSessions constructs an empty registry.
func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]*entry), now: time.Now}
}

// Put adds or replaces the orchestrator stored under id.
func (s *Sessions) Put(id string, o *chain.Orchestrator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &entry{orch: o, touched: s.now()}
}

// With runs fn while holding the session's lock.
func (s *Sessions) With(ctx context.Context, id string, fn func(*chain.Orchestrator) error) error {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.touched = s.now()
	return fn(e.orch)
}

// Delete forgets a session. Unknown IDs are ignored.
func (s *Sessions) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports how many sessions are live.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Prune drops sessions idle for longer than maxIdle and returns how many were removed.
func (s *Sessions) Prune(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.sessions {
		e.mu.Lock()
		idle := e.touched.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}
