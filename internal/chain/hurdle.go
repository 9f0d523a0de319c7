// internal/chain/hurdle.go
//
// Immutable records of finished hurdles and the session they belong to.

package chain

import (
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/hurdle/internal/game"
	"github.com/robalobadob/hurdle/internal/score"
)

var (
	ErrInvalidHurdle    = errors.New("chain: invalid completed hurdle")
	ErrInvalidEndReason = errors.New("chain: end reason must be failure or manual_stop")
	ErrSessionClosed    = errors.New("chain: session already closed")
)

// CompletedHurdle is a snapshot of one solved round plus its score.
type CompletedHurdle struct {
	HurdleNumber int          `json:"hurdleNumber"`
	TargetWord   string       `json:"targetWord"`
	GuessCount   int          `json:"guessCount"`
	Score        int          `json:"score"`
	Multiplier   float64      `json:"multiplier"`
	Guesses      []game.Guess `json:"guesses"`
	CompletedAt  time.Time    `json:"completedAt"`
}

// NewCompletedHurdle scores a solve and validates the record.
// guesses must be the full history of the round, in order.
func NewCompletedHurdle(hurdleNumber int, target string, guesses []game.Guess, maxAttempts int, at time.Time) (CompletedHurdle, error) {
	if hurdleNumber < 1 {
		return CompletedHurdle{}, fmt.Errorf("%w: hurdle number %d", ErrInvalidHurdle, hurdleNumber)
	}
	if !game.IsWord(target) {
		return CompletedHurdle{}, fmt.Errorf("%w: target %q", ErrInvalidHurdle, target)
	}
	n := len(guesses)
	if n < 1 || n > maxAttempts {
		return CompletedHurdle{}, fmt.Errorf("%w: guess count %d outside 1..%d", ErrInvalidHurdle, n, maxAttempts)
	}
	mult, err := score.Multiplier(n)
	if err != nil {
		return CompletedHurdle{}, err
	}
	pts, err := score.Score(hurdleNumber, n)
	if err != nil {
		return CompletedHurdle{}, err
	}

	gs := make([]game.Guess, n)
	copy(gs, guesses)
	h := CompletedHurdle{
		HurdleNumber: hurdleNumber,
		TargetWord:   game.Normalize(target),
		GuessCount:   n,
		Score:        pts,
		Multiplier:   mult,
		Guesses:      gs,
		CompletedAt:  at,
	}
	return h, h.Validate()
}

// Validate checks the record's internal consistency.
func (h CompletedHurdle) Validate() error {
	switch {
	case h.HurdleNumber < 1:
		return fmt.Errorf("%w: hurdle number %d", ErrInvalidHurdle, h.HurdleNumber)
	case h.Score < 0:
		return fmt.Errorf("%w: negative score %d", ErrInvalidHurdle, h.Score)
	case len(h.Guesses) != h.GuessCount:
		return fmt.Errorf("%w: %d guesses recorded for guess count %d", ErrInvalidHurdle, len(h.Guesses), h.GuessCount)
	}
	return nil
}

// Points implements score.Scored.
func (h CompletedHurdle) Points() int { return h.Score }

func (h CompletedHurdle) clone() CompletedHurdle {
	h.Guesses = append([]game.Guess(nil), h.Guesses...)
	return h
}

func cloneHurdles(in []CompletedHurdle) []CompletedHurdle {
	out := make([]CompletedHurdle, len(in))
	for i, h := range in {
		out[i] = h.clone()
	}
	return out
}

// ---------------------------------------------------------------------------

// EndReason says why a session closed.
type EndReason string

const (
	EndReasonNone       EndReason = ""
	EndReasonFailure    EndReason = "failure"
	EndReasonManualStop EndReason = "manual_stop"
)

// Valid reports whether r is one of the two closing reasons.
func (r EndReason) Valid() bool {
	return r == EndReasonFailure || r == EndReasonManualStop
}

// Session aggregates every hurdle completed in one play session.
type Session struct {
	ID                  string            `json:"id"`
	StartTime           time.Time         `json:"startTime"`
	EndTime             *time.Time        `json:"endTime,omitempty"`
	CurrentHurdleNumber int               `json:"currentHurdleNumber"`
	CompletedHurdles    []CompletedHurdle `json:"completedHurdles"`
	TotalScore          int               `json:"totalScore"`
	EndReason           EndReason         `json:"endReason,omitempty"`
	FinalAnswer         string            `json:"finalAnswer,omitempty"`
	HardMode            bool              `json:"hardMode"`
	MaxAttempts         int               `json:"maxAttempts"`
}

// NewSession opens a session at hurdle 1.
func NewSession(id string, start time.Time, maxAttempts int, hardMode bool) *Session {
	return &Session{
		ID:                  id,
		StartTime:           start,
		CurrentHurdleNumber: 1,
		CompletedHurdles:    []CompletedHurdle{},
		MaxAttempts:         maxAttempts,
		HardMode:            hardMode,
	}
}

// Closed reports whether End has been called.
func (s *Session) Closed() bool { return s.EndTime != nil }

// AddHurdle appends h and keeps the totals derived from the list.
func (s *Session) AddHurdle(h CompletedHurdle) error {
	if s.Closed() {
		return ErrSessionClosed
	}
	s.CompletedHurdles = append(s.CompletedHurdles, h.clone())
	s.TotalScore = score.Final(s.CompletedHurdles)
	s.CurrentHurdleNumber = len(s.CompletedHurdles) + 1
	return nil
}

// End closes the session. A closed session is never reopened.
func (s *Session) End(reason EndReason, finalAnswer string, at time.Time) error {
	if !reason.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEndReason, reason)
	}
	if s.Closed() {
		return ErrSessionClosed
	}
	s.EndTime = &at
	s.EndReason = reason
	s.FinalAnswer = game.Normalize(finalAnswer)
	return nil
}

// Copy returns a deep copy safe to hand to callers.
func (s *Session) Copy() Session {
	out := *s
	out.CompletedHurdles = cloneHurdles(s.CompletedHurdles)
	if s.EndTime != nil {
		t := *s.EndTime
		out.EndTime = &t
	}
	return out
}
