// internal/words/selector.go
//
// Target selection as an ordered strategy chain.
//
//   1. ProviderStrategy  - ask the Provider, retrying a bounded number of times.
//   2. ListStrategy      - pick from a secondary in-memory list.
//   3. EmergencyStrategy - pick from a small hardcoded list.
//
// Every strategy must return a 5-letter word different from the excluded one.
// The chain stops at the first strategy that succeeds.

package words

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Strategy produces one candidate target.
type Strategy interface {
	Name() string
	Pick(ctx context.Context, exclude string, difficulty DifficultyRange) (string, error)
}

// Selector runs strategies in order.
type Selector struct {
	strategies []Strategy
	log        zerolog.Logger
}

// NewSelector builds a chain. An EmergencyStrategy is appended when the caller
// did not end the chain with one.
func NewSelector(strategies ...Strategy) *Selector {
	chain := append([]Strategy{}, strategies...)
	if len(chain) == 0 {
		chain = append(chain, NewEmergencyStrategy())
	} else if _, ok := chain[len(chain)-1].(*EmergencyStrategy); !ok {
		chain = append(chain, NewEmergencyStrategy())
	}
	return &Selector{strategies: chain, log: log.Logger}
}

// WithLogger replaces the default global logger.
func (s *Selector) WithLogger(l zerolog.Logger) *Selector {
	s.log = l
	return s
}

// Select returns a target different from exclude (case-insensitive).
func (s *Selector) Select(ctx context.Context, exclude string, difficulty DifficultyRange) (string, error) {
	exclude = strings.ToLower(strings.TrimSpace(exclude))
	var errs []error
	for i, st := range s.strategies {
		w, err := st.Pick(ctx, exclude, difficulty)
		if err == nil {
			w, err = checkCandidate(w, exclude)
		}
		if err == nil {
			if i > 0 {
				s.log.Info().Str("strategy", st.Name()).Msg("target selected by fallback strategy")
			}
			return w, nil
		}
		s.log.Warn().Err(err).Str("strategy", st.Name()).Msg("word strategy failed")
		errs = append(errs, fmt.Errorf("%s: %w", st.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("%w: %w", ErrNoWords, errors.Join(errs...))
}

// Strategies returns the chain names in order.
func (s *Selector) Strategies() []string {
	out := make([]string, len(s.strategies))
	for i, st := range s.strategies {
		out[i] = st.Name()
	}
	return out
}

var errSameAsExcluded = errors.New("words: candidate equals excluded word")

// checkCandidate normalizes w and rejects malformed or excluded words.
func checkCandidate(w, exclude string) (string, error) {
	w = strings.ToLower(strings.TrimSpace(w))
	if len(w) != 5 || !isAlpha(w) {
		return "", fmt.Errorf("%w: %q", ErrBadResponse, w)
	}
	if w == exclude {
		return "", errSameAsExcluded
	}
	return w, nil
}

// ---------------------------------------------------------------------------

// ProviderStrategy asks a Provider, retrying up to Attempts times.
type ProviderStrategy struct {
	provider Provider
	attempts uint
	backoff  backoff.BackOff
}

// NewProviderStrategy retries with a short constant pause between attempts.
func NewProviderStrategy(p Provider, attempts int) *ProviderStrategy {
	if attempts < 1 {
		attempts = 1
	}
	return &ProviderStrategy{
		provider: p,
		attempts: uint(attempts),
		backoff:  backoff.NewConstantBackOff(100 * time.Millisecond),
	}
}

// WithBackOff swaps the pause policy (tests use &backoff.ZeroBackOff{}).
func (p *ProviderStrategy) WithBackOff(b backoff.BackOff) *ProviderStrategy {
	p.backoff = b
	return p
}

func (p *ProviderStrategy) Name() string { return "provider" }

func (p *ProviderStrategy) Pick(ctx context.Context, exclude string, difficulty DifficultyRange) (string, error) {
	op := func() (string, error) {
		w, err := p.provider.RandomWord(ctx, difficulty)
		if err != nil {
			return "", err
		}
		return checkCandidate(w, exclude)
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(p.backoff),
		backoff.WithMaxTries(p.attempts),
	)
}

// ---------------------------------------------------------------------------

// ListStrategy picks from an in-memory List.
type ListStrategy struct {
	list *List
}

func NewListStrategy(l *List) *ListStrategy { return &ListStrategy{list: l} }

func (s *ListStrategy) Name() string { return "list" }

func (s *ListStrategy) Pick(_ context.Context, exclude string, _ DifficultyRange) (string, error) {
	if s.list == nil {
		return "", ErrNoWords
	}
	w, err := s.list.RandomExcept(exclude)
	if err != nil {
		return "", err
	}
	return checkCandidate(w, exclude)
}

// ---------------------------------------------------------------------------

// emergencyWords is the last line of defence; keep at least two entries.
var emergencyWords = []string{
	"crane", "slate", "trace", "crate", "stare",
	"raise", "arise", "house", "plant", "audio",
}

// EmergencyStrategy walks a hardcoded list and cannot fail while the list holds a
// word other than the excluded one.
type EmergencyStrategy struct {
	words []string
	next  int
}

func NewEmergencyStrategy() *EmergencyStrategy {
	return &EmergencyStrategy{words: append([]string{}, emergencyWords...)}
}

func (s *EmergencyStrategy) Name() string { return "emergency" }

// Pick rotates through the list so consecutive emergencies do not repeat a word.
func (s *EmergencyStrategy) Pick(_ context.Context, exclude string, _ DifficultyRange) (string, error) {
	for range s.words {
		w := s.words[s.next%len(s.words)]
		s.next++
		if w != exclude {
			return w, nil
		}
	}
	return "", ErrNoWords
}
