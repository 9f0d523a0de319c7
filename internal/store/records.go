// internal/store/records.go
//
// In-memory statistics repository and the leaderboard contract.
// Sessions are ranked by total score, then hurdles completed, then earliest end.

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/robalobadob/hurdle/internal/chain"
)

// DefaultLeaderboardLimit applies when a caller asks for limit <= 0.
const DefaultLeaderboardLimit = 20

// Leaderboard ranks closed sessions.
type Leaderboard interface {
	TopSessions(ctx context.Context, limit int) ([]chain.SessionRecord, error)
}

// Repository is a chain.Repository that can also rank sessions.
type Repository interface {
	chain.Repository
	Leaderboard
}

// Memory keeps records in process. Useful for development and tests.
type Memory struct {
	mu       sync.RWMutex
	rounds   []chain.RoundRecord
	sessions []chain.SessionRecord
}

// NewMemory constructs an empty in-memory repository.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) SaveRound(_ context.Context, r chain.RoundRecord) error {
	r.Guesses = append([]string(nil), r.Guesses...)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds = append(m.rounds, r)
	return nil
}

func (m *Memory) SaveSession(_ context.Context, s chain.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sessions {
		if m.sessions[i].SessionID == s.SessionID {
			m.sessions[i] = s
			return nil
		}
	}
	m.sessions = append(m.sessions, s)
	return nil
}

// Rounds returns the rounds recorded for sessionID in insertion order.
func (m *Memory) Rounds(sessionID string) []chain.RoundRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []chain.RoundRecord
	for _, r := range m.rounds {
		if r.SessionID == sessionID {
			r.Guesses = append([]string(nil), r.Guesses...)
			out = append(out, r)
		}
	}
	return out
}

// TopSessions orders by total score desc, hurdles desc, then earliest end.
func (m *Memory) TopSessions(_ context.Context, limit int) ([]chain.SessionRecord, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	m.mu.RLock()
	out := append([]chain.SessionRecord(nil), m.sessions...)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return ranksBefore(out[i], out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func ranksBefore(a, b chain.SessionRecord) bool {
	if a.TotalScore != b.TotalScore {
		return a.TotalScore > b.TotalScore
	}
	if a.HurdlesCompleted != b.HurdlesCompleted {
		return a.HurdlesCompleted > b.HurdlesCompleted
	}
	return a.EndedAt.Before(b.EndedAt)
}
