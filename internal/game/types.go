// internal/game/types.go
//
// Core type definitions for the round engine.
// Defines:
//   - Status: per-letter result of a guess (correct/present/absent).
//   - LetterFeedback: one evaluated tile.
//   - RoundStatus: lifecycle of a single round (in_progress → won/lost).
//   - Sentinel errors for integrity violations (caller bugs, not player mistakes).

package game

import "errors"

// WordLength is the number of letters in every target and guess.
const WordLength = 5

// Status represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "correct": letter is in the answer at this position.
//   - "present": letter exists in the answer but in a different position.
//   - "absent":  letter is not in the answer (or all its occurrences are used up).
type Status string

const (
	StatusCorrect Status = "correct"
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// LetterFeedback pairs a guessed letter with its evaluation.
type LetterFeedback struct {
	Letter string `json:"letter"`
	Status Status `json:"status"`
}

// RoundStatus is the coarse state of a round. It only moves forward.
type RoundStatus string

const (
	RoundInProgress RoundStatus = "in_progress"
	RoundWon        RoundStatus = "won"
	RoundLost       RoundStatus = "lost"
)

// IsTerminal reports whether no further guesses can be accepted.
func (s RoundStatus) IsTerminal() bool {
	return s == RoundWon || s == RoundLost
}

var (
	ErrLengthMismatch     = errors.New("game: guess and target differ in length")
	ErrInvalidTarget      = errors.New("game: target must be exactly 5 letters a-z")
	ErrInvalidMaxAttempts = errors.New("game: max attempts must be at least 1")
	ErrRoundOver          = errors.New("game: round is already over")
	ErrFeedbackMismatch   = errors.New("game: word and feedback differ in length")
)
