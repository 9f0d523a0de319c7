// Package words supplies target words and answers "is this a word?".
//
// The engine only depends on the Provider contract. Implementations here:
//   - List: in-memory answers/allowed lists (embedded defaults or files).
//   - Dictionary: HTTP client for a remote dictionary service.
//
// Selector layers an ordered fallback chain on top so a session is never left
// without a playable target.
package words

import (
	"context"
	"errors"
)

// Provider is the external word source consumed by the engine. Both calls may
// fail (network, service errors); callers decide how to degrade.
type Provider interface {
	IsValidWord(ctx context.Context, word string) (bool, error)
	RandomWord(ctx context.Context, difficulty DifficultyRange) (string, error)
}

// DifficultyRange bounds word frequency for random picks. The zero value means
// no constraint.
type DifficultyRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// IsZero reports whether no bounds were requested.
func (d DifficultyRange) IsZero() bool { return d.Min == 0 && d.Max == 0 }

var (
	ErrNoWords     = errors.New("words: no candidate words")
	ErrBadResponse = errors.New("words: unexpected provider response")
)
