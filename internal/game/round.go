// internal/game/round.go
//
// Single-round state machine.
// Responsibilities:
//   - Hold the target word, the guess history and the attempt budget.
//   - Apply guesses and transition in_progress → won/lost.
//   - Hand out copies so callers cannot rewrite history.
//
// Round does no validation of player input; that is the Controller's job.

package game

import (
	"fmt"
	"time"
)

// Round is the state of one hurdle.
type Round struct {
	target      string
	guesses     []Guess
	maxAttempts int
	status      RoundStatus
	startedAt   time.Time
	endedAt     time.Time
}

// NewRound constructs a round for target with the given attempt budget.
// A malformed target or budget is a programming error and is reported as such.
func NewRound(target string, maxAttempts int) (*Round, error) {
	return newRoundAt(target, maxAttempts, time.Now())
}

func newRoundAt(target string, maxAttempts int, now time.Time) (*Round, error) {
	t := Normalize(target)
	if !IsWord(t) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}
	if maxAttempts < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxAttempts, maxAttempts)
	}
	return &Round{
		target:      t,
		guesses:     []Guess{},
		maxAttempts: maxAttempts,
		status:      RoundInProgress,
		startedAt:   now,
	}, nil
}

// AddGuess appends g and moves the round forward.
//
// State transitions:
//   - If g matches the target → won.
//   - Else if the number of guesses reaches maxAttempts → lost.
func (r *Round) AddGuess(g Guess) error {
	return r.addGuessAt(g, time.Now())
}

func (r *Round) addGuessAt(g Guess, now time.Time) error {
	if r.status.IsTerminal() {
		return ErrRoundOver
	}
	r.guesses = append(r.guesses, g)

	switch {
	case g.Word() == r.target:
		r.status = RoundWon
		r.endedAt = now
	case len(r.guesses) >= r.maxAttempts:
		r.status = RoundLost
		r.endedAt = now
	}
	return nil
}

// Target returns the answer. Callers facing the player should check IsOver first.
func (r *Round) Target() string { return r.target }

// Guesses returns a copy of the guess history, oldest first.
func (r *Round) Guesses() []Guess {
	out := make([]Guess, len(r.guesses))
	copy(out, r.guesses)
	return out
}

func (r *Round) GuessCount() int     { return len(r.guesses) }
func (r *Round) MaxAttempts() int    { return r.maxAttempts }
func (r *Round) Status() RoundStatus { return r.status }
func (r *Round) IsOver() bool        { return r.status.IsTerminal() }

// RemainingAttempts is never negative.
func (r *Round) RemainingAttempts() int {
	if n := r.maxAttempts - len(r.guesses); n > 0 {
		return n
	}
	return 0
}

// HasGuessed reports whether word (any case) was already played this round.
func (r *Round) HasGuessed(word string) bool {
	w := Normalize(word)
	for _, g := range r.guesses {
		if g.Word() == w {
			return true
		}
	}
	return false
}

func (r *Round) StartedAt() time.Time { return r.startedAt }

// Duration is the time from start to the final guess, or zero while in progress.
func (r *Round) Duration() time.Duration {
	if r.endedAt.IsZero() {
		return 0
	}
	return r.endedAt.Sub(r.startedAt)
}
