// internal/game/feedback.go
//
// Per-letter feedback for a guess against a target.
// Responsibilities:
//   - Two-pass scoring (exact matches first, then present letters bounded by
//     the remaining target letter counts).
//   - Word shape helpers shared by the round and the controller.

package game

import (
	"fmt"
	"strings"
)

// GenerateFeedback compares guess against target and returns one LetterFeedback
// per position. Comparison is case-insensitive.
//
// Pass 1:
//   - Mark exact matches as correct.
//   - Count remaining (non-correct) target letters.
//
// Pass 2:
//   - For each non-correct guess letter: if there is remaining count for that letter,
//     mark present and decrement the count; otherwise leave it absent.
//
// Running pass 1 to completion first is what keeps repeated letters honest: a letter
// is never marked correct+present more times than it occurs in the target.
func GenerateFeedback(guess, target string) ([]LetterFeedback, error) {
	guessRunes := []rune(strings.ToLower(guess))
	targetRunes := []rune(strings.ToLower(target))
	if len(guessRunes) != len(targetRunes) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(guessRunes), len(targetRunes))
	}

	n := len(guessRunes)
	res := make([]LetterFeedback, n)
	counts := make(map[rune]int, n)

	for i := 0; i < n; i++ {
		res[i] = LetterFeedback{Letter: string(guessRunes[i]), Status: StatusAbsent}
		if guessRunes[i] == targetRunes[i] {
			res[i].Status = StatusCorrect
		} else {
			counts[targetRunes[i]]++
		}
	}

	for i := 0; i < n; i++ {
		if res[i].Status == StatusCorrect {
			continue
		}
		if r := guessRunes[i]; counts[r] > 0 {
			res[i].Status = StatusPresent
			counts[r]--
		}
	}
	return res, nil
}

// allCorrect returns true if every tile is correct.
func allCorrect(fb []LetterFeedback) bool {
	for _, f := range fb {
		if f.Status != StatusCorrect {
			return false
		}
	}
	return len(fb) > 0
}

// IsWord reports whether s is exactly WordLength ASCII letters (either case).
func IsWord(s string) bool {
	if len(s) != WordLength {
		return false
	}
	return isAlpha(strings.ToLower(s))
}

// isAlpha checks that a string consists only of lowercase a–z.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// Normalize trims and lowercases a word.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
