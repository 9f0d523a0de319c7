// internal/chain/state.go
//
// Chain state: the authoritative running total of a session.
//
// Invariants (checked after every mutation):
//   - completedCount == len(completedHurdles)
//   - totalScore == Σ completedHurdles[i].Score
//   - completedHurdles[i].HurdleNumber == i+1
//   - len(solvedWords) == len(completedHurdles), solvedWords[i] == completedHurdles[i].TargetWord
//   - currentHurdleNumber == len(completedHurdles)+1, or len(completedHurdles) while an
//     advance is pending (between AddCompletedHurdle and IncrementHurdleNumber)
//
// Mutations are transactional: snapshot → mutate → validate → recover or restore.

package chain

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hurdle/internal/score"
)

// SnapshotVersion is bumped whenever Snapshot changes shape.
const SnapshotVersion = 1

var (
	ErrSequenceViolation = errors.New("chain: hurdle number out of sequence")
	ErrNoPendingAdvance  = errors.New("chain: no completed hurdle awaiting advance")
	ErrCorrupt           = errors.New("chain: state invariant violated")
	ErrUnrecoverable     = errors.New("chain: state corrupt and recovery failed")
	ErrSnapshotVersion   = errors.New("chain: unsupported snapshot version")
)

// Snapshot is an immutable, versioned copy of State.
type Snapshot struct {
	Version             int               `json:"version"`
	CurrentHurdleNumber int               `json:"currentHurdleNumber"`
	CompletedCount      int               `json:"completedCount"`
	TotalScore          int               `json:"totalScore"`
	CompletedHurdles    []CompletedHurdle `json:"completedHurdles"`
	SolvedWords         []string          `json:"solvedWords"`
	PendingAdvance      bool              `json:"pendingAdvance"`
	TakenAt             time.Time         `json:"takenAt"`
}

// State tracks hurdle progress for one session.
type State struct {
	currentHurdleNumber int
	completedCount      int
	totalScore          int
	completed           []CompletedHurdle
	solvedWords         []string
	pendingAdvance      bool

	log zerolog.Logger
	now func() time.Time
}

// NewState returns a state at session-start defaults.
func NewState() *State {
	s := &State{log: log.Logger, now: time.Now}
	s.Reset()
	return s
}

// WithLogger replaces the default global logger.
func (s *State) WithLogger(l zerolog.Logger) *State {
	s.log = l
	return s
}

// Reset returns every field to session-start defaults.
func (s *State) Reset() {
	s.currentHurdleNumber = 1
	s.completedCount = 0
	s.totalScore = 0
	s.completed = []CompletedHurdle{}
	s.solvedWords = []string{}
	s.pendingAdvance = false
}

func (s *State) CurrentHurdleNumber() int { return s.currentHurdleNumber }
func (s *State) CompletedCount() int      { return s.completedCount }
func (s *State) TotalScore() int          { return s.totalScore }

// CompletedHurdles returns a deep copy.
func (s *State) CompletedHurdles() []CompletedHurdle { return cloneHurdles(s.completed) }

// SolvedWords returns a copy, in hurdle order.
func (s *State) SolvedWords() []string { return append([]string{}, s.solvedWords...) }

// AddCompletedHurdle records h. h.HurdleNumber must equal CurrentHurdleNumber.
// Callers must follow it with IncrementHurdleNumber: until then the pointer stays
// on the hurdle just recorded and no further hurdle can be added.
func (s *State) AddCompletedHurdle(h CompletedHurdle) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if s.pendingAdvance || h.HurdleNumber != s.currentHurdleNumber {
		return fmt.Errorf("%w: got hurdle %d, expected %d", ErrSequenceViolation, h.HurdleNumber, s.expectedNext())
	}

	backup := s.Snapshot()

	s.completed = append(s.completed, h.clone())
	s.completedCount++
	s.totalScore += h.Score
	s.solvedWords = append(s.solvedWords, h.TargetWord)
	s.pendingAdvance = true

	return s.settle(backup)
}

// IncrementHurdleNumber advances the pointer past the most recently recorded hurdle.
func (s *State) IncrementHurdleNumber() error {
	if !s.pendingAdvance {
		return ErrNoPendingAdvance
	}
	backup := s.Snapshot()
	s.currentHurdleNumber++
	s.pendingAdvance = false
	return s.settle(backup)
}

func (s *State) expectedNext() int {
	if s.pendingAdvance {
		return s.currentHurdleNumber + 1
	}
	return s.currentHurdleNumber
}

// settle validates after a mutation, recovering or rolling back as needed.
func (s *State) settle(backup Snapshot) error {
	err := s.Validate()
	if err == nil {
		return nil
	}
	s.log.Info().Err(err).Msg("chain state invalid after mutation; recovering")
	if rerr := s.Recover(); rerr != nil {
		_ = s.Restore(backup)
		return fmt.Errorf("%w: %w", ErrUnrecoverable, rerr)
	}
	return nil
}

// Validate checks every invariant and reports the first violation.
func (s *State) Validate() error {
	n := len(s.completed)
	if s.completedCount != n {
		return fmt.Errorf("%w: completedCount %d, %d hurdles recorded", ErrCorrupt, s.completedCount, n)
	}
	if total := score.Final(s.completed); s.totalScore != total {
		return fmt.Errorf("%w: totalScore %d, hurdles sum to %d", ErrCorrupt, s.totalScore, total)
	}
	for i, h := range s.completed {
		if h.HurdleNumber != i+1 {
			return fmt.Errorf("%w: hurdle at index %d has number %d", ErrCorrupt, i, h.HurdleNumber)
		}
	}
	if len(s.solvedWords) != n {
		return fmt.Errorf("%w: %d solved words for %d hurdles", ErrCorrupt, len(s.solvedWords), n)
	}
	for i, w := range s.solvedWords {
		if w != s.completed[i].TargetWord {
			return fmt.Errorf("%w: solved word %d is %q, hurdle says %q", ErrCorrupt, i, w, s.completed[i].TargetWord)
		}
	}
	if want := s.pointerFor(n); s.currentHurdleNumber != want {
		return fmt.Errorf("%w: current hurdle %d, expected %d", ErrCorrupt, s.currentHurdleNumber, want)
	}
	return nil
}

func (s *State) pointerFor(n int) int {
	if s.pendingAdvance {
		return n
	}
	return n + 1
}

// Recover rebuilds every derived field from the completed-hurdle list, then
// re-validates. The list itself is never modified.
func (s *State) Recover() error {
	n := len(s.completed)
	ev := s.log.Info()
	if s.completedCount != n {
		ev = ev.Int("completedCountWas", s.completedCount)
		s.completedCount = n
	}
	if total := score.Final(s.completed); s.totalScore != total {
		ev = ev.Int("totalScoreWas", s.totalScore)
		s.totalScore = total
	}
	words := make([]string, n)
	for i, h := range s.completed {
		words[i] = h.TargetWord
	}
	s.solvedWords = words
	if want := s.pointerFor(n); s.currentHurdleNumber != want {
		ev = ev.Int("currentHurdleWas", s.currentHurdleNumber)
		s.currentHurdleNumber = want
	}
	ev.Int("completedCount", n).Int("totalScore", s.totalScore).Msg("chain state recovered")

	return s.Validate()
}

// Snapshot returns a deep copy of the current state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Version:             SnapshotVersion,
		CurrentHurdleNumber: s.currentHurdleNumber,
		CompletedCount:      s.completedCount,
		TotalScore:          s.totalScore,
		CompletedHurdles:    cloneHurdles(s.completed),
		SolvedWords:         append([]string{}, s.solvedWords...),
		PendingAdvance:      s.pendingAdvance,
		TakenAt:             s.now(),
	}
}

// Restore replaces the state with snap. The snapshot is copied, not aliased.
func (s *State) Restore(snap Snapshot) error {
	if snap.Version != SnapshotVersion {
		return fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}
	s.currentHurdleNumber = snap.CurrentHurdleNumber
	s.completedCount = snap.CompletedCount
	s.totalScore = snap.TotalScore
	s.completed = cloneHurdles(snap.CompletedHurdles)
	s.solvedWords = append([]string{}, snap.SolvedWords...)
	s.pendingAdvance = snap.PendingAdvance
	return nil
}
