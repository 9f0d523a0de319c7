// internal/words/list.go
//
// In-memory word lists.
//
// Word Lists:
//   - "answers": words eligible as targets (exactly 5 lowercase letters).
//   - "allowed": valid guesses (always includes answers).
//
// Loading behavior (LoadList):
//   1. If answersPath and allowedPath are both set,
//      load answers from the first and allowed guesses from the second.
//   2. If only allowedPath is set,
//      load that file and use it for both answers and allowed guesses.
//   3. If neither is set,
//      fall back to the lists embedded in the assets package.
//
// Constraints:
//   • Words must be 5 alphabetic letters (a–z); anything else is dropped.
//   • Lists are normalized to lowercase and de-duplicated.

package words

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"os"
	"strings"

	"github.com/robalobadob/hurdle/assets"
)

// List is a Provider backed by fixed lists. It is read-only after construction
// and safe for concurrent use.
type List struct {
	answers    []string
	answersSet map[string]struct{}
	allowedSet map[string]struct{} // answers ∪ guesses
}

// NewList builds a List; invalid entries are silently skipped.
func NewList(answers, allowed []string) (*List, error) {
	ans := normalize(answers)
	if len(ans) == 0 {
		return nil, errors.New("words: answers list is empty")
	}
	l := &List{
		answers:    ans,
		answersSet: toSet(ans),
		allowedSet: toSet(ans),
	}
	for _, w := range normalize(allowed) {
		l.allowedSet[w] = struct{}{}
	}
	return l, nil
}

// DefaultList returns the embedded lists.
func DefaultList() (*List, error) {
	ans, err := assets.Answers()
	if err != nil {
		return nil, err
	}
	all, err := assets.Allowed()
	if err != nil {
		return nil, err
	}
	return NewList(ans, all)
}

// LoadList resolves the lists from files, falling back to embedded defaults.
func LoadList(answersPath, allowedPath string) (*List, error) {
	switch {
	case answersPath != "" && allowedPath != "":
		ans, err := readWordFile(answersPath)
		if err != nil {
			return nil, err
		}
		all, err := readWordFile(allowedPath)
		if err != nil {
			return nil, err
		}
		return NewList(ans, all)

	case allowedPath != "":
		all, err := readWordFile(allowedPath)
		if err != nil {
			return nil, err
		}
		return NewList(all, nil)

	default:
		return DefaultList()
	}
}

// readWordFile loads a list file in the same format as the embedded lists.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return assets.ParseWordLines(f)
}

// normalize lowercases, trims, drops non-words and duplicates, keeping order.
func normalize(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, line := range in {
		w := strings.TrimSpace(strings.ToLower(line))
		if len(w) != 5 || !isAlpha(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// IsValidWord reports whether w is an accepted guess. It never fails.
func (l *List) IsValidWord(_ context.Context, w string) (bool, error) {
	_, ok := l.allowedSet[strings.ToLower(strings.TrimSpace(w))]
	return ok, nil
}

// RandomWord returns a cryptographically random answer. Lists carry no
// frequency data, so the difficulty range is ignored.
func (l *List) RandomWord(_ context.Context, _ DifficultyRange) (string, error) {
	return l.pick(l.answers)
}

// RandomExcept returns a random answer different from exclude.
func (l *List) RandomExcept(exclude string) (string, error) {
	exclude = strings.ToLower(exclude)
	candidates := make([]string, 0, len(l.answers))
	for _, w := range l.answers {
		if w != exclude {
			candidates = append(candidates, w)
		}
	}
	return l.pick(candidates)
}

func (l *List) pick(from []string) (string, error) {
	if len(from) == 0 {
		return "", ErrNoWords
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(from))))
	if err != nil {
		return "", err
	}
	return from[n.Int64()], nil
}

// IsAnswer reports whether w is an answer word.
func (l *List) IsAnswer(w string) bool {
	_, ok := l.answersSet[strings.ToLower(w)]
	return ok
}

// Answers returns a copy of the answer list.
func (l *List) Answers() []string {
	out := make([]string, len(l.answers))
	copy(out, l.answers)
	return out
}

// Stats returns counts of loaded words: (answers, allowed).
func (l *List) Stats() (answersCount int, allowedCount int) {
	return len(l.answers), len(l.allowedSet)
}
