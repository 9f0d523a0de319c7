// internal/game/hardmode.go
//
// Hard-mode constraint tracker.
// Responsibilities:
//   - Fold feedback into known positions, required letters and excluded letters.
//   - Validate a candidate guess against them, positions first, with
//     player-facing messages ("1st letter must be C", "Guess must contain R").
//
// One tracker belongs to one Controller and is reset at every new round.

package game

import (
	"fmt"
	"sort"
	"strings"
)

// Constraints accumulates the clues revealed during a round and checks that
// later guesses honour them.
type Constraints struct {
	correct  map[int]string
	included map[string]struct{}
	excluded map[string]struct{}
}

// NewConstraints returns an empty tracker.
func NewConstraints() *Constraints {
	c := &Constraints{}
	c.Reset()
	return c
}

// Reset clears all clues for a new round.
func (c *Constraints) Reset() {
	c.correct = make(map[int]string)
	c.included = make(map[string]struct{})
	c.excluded = make(map[string]struct{})
}

// UpdateFromFeedback folds one guess into the running constraint set.
// Correct and present tiles are applied before absent ones, so a letter that is
// both present and absent in the same guess (a duplicate) stays included.
func (c *Constraints) UpdateFromFeedback(word string, feedback []LetterFeedback) {
	for i, f := range feedback {
		l := strings.ToLower(f.Letter)
		switch f.Status {
		case StatusCorrect:
			c.correct[i] = l
			c.include(l)
		case StatusPresent:
			c.include(l)
		}
	}
	for _, f := range feedback {
		l := strings.ToLower(f.Letter)
		if f.Status != StatusAbsent {
			continue
		}
		if _, ok := c.included[l]; ok {
			continue
		}
		c.excluded[l] = struct{}{}
	}
}

func (c *Constraints) include(l string) {
	c.included[l] = struct{}{}
	delete(c.excluded, l)
}

// Validate returns nil when candidate respects every recorded clue.
// Positional clues are checked first (lowest position first), then required letters
// in alphabetical order, so the reported error is deterministic.
func (c *Constraints) Validate(candidate string) error {
	w := []rune(Normalize(candidate))

	positions := make([]int, 0, len(c.correct))
	for p := range c.correct {
		positions = append(positions, p)
	}
	sort.Ints(positions)
	for _, p := range positions {
		want := c.correct[p]
		if p >= len(w) || string(w[p]) != want {
			return fmt.Errorf("%s letter must be %s", Ordinal(p+1), strings.ToUpper(want))
		}
	}

	word := string(w)
	for _, l := range c.IncludedLetters() {
		if !strings.Contains(word, l) {
			return fmt.Errorf("Guess must contain %s", strings.ToUpper(l))
		}
	}
	return nil
}

// CorrectPositions returns a copy of position → letter (0-based).
func (c *Constraints) CorrectPositions() map[int]string {
	out := make(map[int]string, len(c.correct))
	for k, v := range c.correct {
		out[k] = v
	}
	return out
}

// IncludedLetters returns the required letters, sorted.
func (c *Constraints) IncludedLetters() []string { return sortedKeys(c.included) }

// ExcludedLetters returns the letters known to be absent, sorted.
func (c *Constraints) ExcludedLetters() []string { return sortedKeys(c.excluded) }

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Ordinal renders n with its English suffix: 1st, 2nd, 3rd, 4th, 11th, 12th, 13th, 21st…
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
