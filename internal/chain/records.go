// internal/chain/records.go
//
// Persistence contract for finished rounds and closed sessions.
// The orchestrator writes through Repository; concrete stores live in
// internal/store.

package chain

import (
	"context"
	"time"
)

// RoundRecord is a finished round (won or lost) in the shape a statistics store wants.
type RoundRecord struct {
	SessionID    string        `json:"sessionId"`
	HurdleNumber int           `json:"hurdleNumber"`
	TargetWord   string        `json:"targetWord"`
	Guesses      []string      `json:"guesses"`
	AttemptsUsed int           `json:"attemptsUsed"`
	Won          bool          `json:"won"`
	Duration     time.Duration `json:"duration"`
	FinishedAt   time.Time     `json:"finishedAt"`
}

// SessionRecord is a closed session.
type SessionRecord struct {
	SessionID        string    `json:"sessionId"`
	StartedAt        time.Time `json:"startedAt"`
	EndedAt          time.Time `json:"endedAt"`
	HurdlesCompleted int       `json:"hurdlesCompleted"`
	TotalScore       int       `json:"totalScore"`
	EndReason        EndReason `json:"endReason"`
	FinalAnswer      string    `json:"finalAnswer,omitempty"`
	HardMode         bool      `json:"hardMode"`
	MaxAttempts      int       `json:"maxAttempts"`
}

// Repository receives finished rounds and sessions. Implementations live outside
// this package; the engine never depends on how (or whether) they persist.
type Repository interface {
	SaveRound(ctx context.Context, r RoundRecord) error
	SaveSession(ctx context.Context, s SessionRecord) error
}

// Discard is a Repository that drops everything.
type Discard struct{}

func (Discard) SaveRound(context.Context, RoundRecord) error     { return nil }
func (Discard) SaveSession(context.Context, SessionRecord) error { return nil }
