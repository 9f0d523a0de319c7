// internal/game/guess.go
//
// Immutable guess record: the submitted word and its feedback.
// Accessors hand out copies; JSON uses {"word", "feedback"}.

package game

import (
	"encoding/json"
	"fmt"
)

// Guess is an immutable pairing of a normalized word with its feedback.
// The zero value is an empty guess; build real ones with NewGuess.
type Guess struct {
	word     string
	feedback []LetterFeedback
}

// NewGuess copies feedback so later mutation by the caller cannot leak in.
func NewGuess(word string, feedback []LetterFeedback) (Guess, error) {
	word = Normalize(word)
	if len([]rune(word)) != len(feedback) {
		return Guess{}, fmt.Errorf("%w: %q has %d feedback entries", ErrFeedbackMismatch, word, len(feedback))
	}
	fb := make([]LetterFeedback, len(feedback))
	copy(fb, feedback)
	return Guess{word: word, feedback: fb}, nil
}

// Word returns the lowercase guessed word.
func (g Guess) Word() string { return g.word }

// Feedback returns a copy of the per-letter feedback.
func (g Guess) Feedback() []LetterFeedback {
	out := make([]LetterFeedback, len(g.feedback))
	copy(out, g.feedback)
	return out
}

// Solved reports whether every letter was correct.
func (g Guess) Solved() bool { return allCorrect(g.feedback) }

type guessJSON struct {
	Word     string           `json:"word"`
	Feedback []LetterFeedback `json:"feedback"`
}

func (g Guess) MarshalJSON() ([]byte, error) {
	return json.Marshal(guessJSON{Word: g.word, Feedback: g.feedback})
}

func (g *Guess) UnmarshalJSON(b []byte) error {
	var raw guessJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := NewGuess(raw.Word, raw.Feedback)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
