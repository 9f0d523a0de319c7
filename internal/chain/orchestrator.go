// internal/chain/orchestrator.go
//
// Chain orchestration: sequences rounds into a session.
// Responsibilities:
//   - Start sessions (fresh State + Session, first target via the Selector).
//   - Route guesses to the round Controller; complete won rounds, close the
//     session on a lost one.
//   - Start the next hurdle with the previous answer submitted as its first guess.
//   - Hand finished rounds/sessions to the injected Repository (best effort).
//
// One Orchestrator drives one session at a time and is not safe for concurrent
// use; callers serialize access (see store.Sessions).

package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hurdle/internal/game"
	"github.com/robalobadob/hurdle/internal/score"
	"github.com/robalobadob/hurdle/internal/words"
)

// DefaultProviderAttempts bounds provider retries when no Selector is supplied.
const DefaultProviderAttempts = 3

var (
	ErrNoSession         = errors.New("chain: no session started")
	ErrInvalidOptions    = errors.New("chain: invalid session options")
	ErrInconsistentRound = errors.New("chain: new round does not have a full attempt budget")
	ErrRoundNotWon       = errors.New("chain: round is not won")
	ErrAlreadyCompleted  = errors.New("chain: round already completed")
	ErrRoundInProgress   = errors.New("chain: current round has not been completed")
	ErrInvalidPrevious   = errors.New("chain: previous answer must be a 5-letter word")
)

// Options configures a session.
type Options struct {
	MaxAttempts int                   `json:"maxAttempts"`
	Difficulty  words.DifficultyRange `json:"difficulty"`
	HardMode    bool                  `json:"hardMode"`
}

func (o Options) normalized() (Options, error) {
	if o.MaxAttempts == 0 {
		o.MaxAttempts = score.MaxGuesses
	}
	if o.MaxAttempts < 1 || o.MaxAttempts > score.MaxGuesses {
		return o, fmt.Errorf("%w: max attempts must be 1..%d, got %d", ErrInvalidOptions, score.MaxGuesses, o.MaxAttempts)
	}
	if o.Difficulty.Min > o.Difficulty.Max {
		return o, fmt.Errorf("%w: difficulty min %.2f above max %.2f", ErrInvalidOptions, o.Difficulty.Min, o.Difficulty.Max)
	}
	return o, nil
}

// Transition describes the step from a just-solved hurdle to the next one.
type Transition struct {
	Completed        CompletedHurdle `json:"completed"`
	NextHurdleNumber int             `json:"nextHurdleNumber"`
	AutoGuess        string          `json:"autoGuess"`
	TotalScore       int             `json:"totalScore"`
}

// Outcome is the result of a guess at the chain level.
type Outcome struct {
	game.GuessResult
	Transition   *Transition `json:"transition,omitempty"`
	SessionEnded bool        `json:"sessionEnded"`
}

// NextRound is the result of StartNextRound.
type NextRound struct {
	AutoGuess    game.GuessResult `json:"autoGuess"`
	Transition   *Transition      `json:"transition,omitempty"`
	SessionEnded bool             `json:"sessionEnded"`
}

// Orchestrator is the top-level controller of a play session.
type Orchestrator struct {
	selector   *words.Selector
	repo       Repository
	controller *game.Controller
	state      *State
	session    *Session
	opts       Options

	// lastCompleted is the round most recently fed to CompleteRound.
	lastCompleted *game.Round

	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

// NewOrchestrator wires an orchestrator. selector may be nil (provider-only chain
// with emergency fallback); repo may be nil (records are dropped).
func NewOrchestrator(provider words.Provider, selector *words.Selector, repo Repository) *Orchestrator {
	if selector == nil {
		selector = words.NewSelector(words.NewProviderStrategy(provider, DefaultProviderAttempts))
	}
	if repo == nil {
		repo = Discard{}
	}
	return &Orchestrator{
		selector:   selector,
		repo:       repo,
		controller: game.NewController(provider),
		state:      NewState(),
		log:        log.Logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// WithLogger replaces the default global logger on the orchestrator and its parts.
func (o *Orchestrator) WithLogger(l zerolog.Logger) *Orchestrator {
	o.log = l
	o.controller.WithLogger(l)
	o.state.WithLogger(l)
	return o
}

// WithClock overrides time.Now.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	o.state.now = now
	return o
}

// StartSession discards any previous session and starts hurdle 1.
func (o *Orchestrator) StartSession(ctx context.Context, opts Options) (View, error) {
	opts, err := opts.normalized()
	if err != nil {
		return View{}, err
	}

	// A failed selection leaves the previous session untouched.
	target, err := o.selector.Select(ctx, "", opts.Difficulty)
	if err != nil {
		return View{}, fmt.Errorf("chain: select first target: %w", err)
	}
	round, err := o.controller.StartRound(target, opts.MaxAttempts, opts.HardMode)
	if err != nil {
		return View{}, err
	}
	if got := round.RemainingAttempts(); got != opts.MaxAttempts {
		return View{}, fmt.Errorf("%w: %d remaining, %d expected", ErrInconsistentRound, got, opts.MaxAttempts)
	}
	o.state.Reset()
	o.lastCompleted = nil
	o.opts = opts
	o.session = NewSession(o.newID(), o.now(), opts.MaxAttempts, opts.HardMode)

	o.log.Info().
		Str("session", o.session.ID).
		Int("maxAttempts", opts.MaxAttempts).
		Bool("hardMode", opts.HardMode).
		Msg("session started")
	return o.View(), nil
}

// SubmitGuess plays word in the current round. Player mistakes come back in the
// Outcome; the error is reserved for integrity failures.
func (o *Orchestrator) SubmitGuess(ctx context.Context, word string) (Outcome, error) {
	if o.session != nil && o.session.Closed() {
		status := game.RoundStatus("")
		if r := o.controller.Round(); r != nil {
			status = r.Status()
		}
		return Outcome{GuessResult: game.GuessResult{Error: game.MsgGameOver, Status: status}, SessionEnded: true}, nil
	}

	res := o.controller.SubmitGuess(ctx, word)
	out := Outcome{GuessResult: res}
	if !res.Success {
		return out, nil
	}
	return o.afterGuess(ctx, out)
}

// afterGuess completes or closes the round when the guess ended it.
func (o *Orchestrator) afterGuess(ctx context.Context, out Outcome) (Outcome, error) {
	round := o.controller.Round()
	switch round.Status() {
	case game.RoundWon:
		tr, err := o.CompleteRound(ctx, round)
		if err != nil {
			return out, err
		}
		out.Transition = &tr
	case game.RoundLost:
		o.recordRound(ctx, round, o.state.CurrentHurdleNumber())
		if err := o.EndSession(ctx, EndReasonFailure, round.Target()); err != nil {
			return out, err
		}
		out.SessionEnded = true
	}
	return out, nil
}

// CompleteRound scores a won round and records it in the chain.
func (o *Orchestrator) CompleteRound(ctx context.Context, round *game.Round) (Transition, error) {
	if o.session == nil {
		return Transition{}, ErrNoSession
	}
	if o.session.Closed() {
		return Transition{}, ErrSessionClosed
	}
	if round == nil || round.Status() != game.RoundWon {
		return Transition{}, ErrRoundNotWon
	}
	if round == o.lastCompleted {
		return Transition{}, ErrAlreadyCompleted
	}

	h, err := NewCompletedHurdle(o.state.CurrentHurdleNumber(), round.Target(), round.Guesses(), round.MaxAttempts(), o.now())
	if err != nil {
		return Transition{}, err
	}
	if err := o.state.AddCompletedHurdle(h); err != nil {
		return Transition{}, err
	}
	if err := o.session.AddHurdle(h); err != nil {
		return Transition{}, err
	}
	if err := o.state.IncrementHurdleNumber(); err != nil {
		return Transition{}, err
	}
	o.lastCompleted = round
	o.recordRound(ctx, round, h.HurdleNumber)

	o.log.Info().
		Str("session", o.session.ID).
		Int("hurdle", h.HurdleNumber).
		Int("guesses", h.GuessCount).
		Int("score", h.Score).
		Int("total", o.state.TotalScore()).
		Msg("hurdle completed")

	return Transition{
		Completed:        h,
		NextHurdleNumber: o.state.CurrentHurdleNumber(),
		AutoGuess:        h.TargetWord,
		TotalScore:       o.state.TotalScore(),
	}, nil
}

// StartNextRound picks a new target different from previousAnswer, starts the
// round and submits previousAnswer as its first guess without a dictionary
// lookup. That guess uses an attempt like any other. If it ends the round, the round is completed (scored as a
// 1-guess solve) or the session is closed right away.
func (o *Orchestrator) StartNextRound(ctx context.Context, previousAnswer string) (NextRound, error) {
	if o.session == nil {
		return NextRound{}, ErrNoSession
	}
	if o.session.Closed() {
		return NextRound{}, ErrSessionClosed
	}
	if cur := o.controller.Round(); cur != nil && cur != o.lastCompleted {
		return NextRound{}, ErrRoundInProgress
	}
	prev := game.Normalize(previousAnswer)
	if !game.IsWord(prev) {
		return NextRound{}, fmt.Errorf("%w: %q", ErrInvalidPrevious, previousAnswer)
	}

	target, err := o.selector.Select(ctx, prev, o.opts.Difficulty)
	if err != nil {
		return NextRound{}, fmt.Errorf("chain: select next target: %w", err)
	}
	if _, err := o.controller.StartRound(target, o.opts.MaxAttempts, o.opts.HardMode); err != nil {
		return NextRound{}, err
	}

	// prev was served as a target, so it skips the dictionary; a lookup failure
	// must not cost the carried guess.
	res := o.controller.AutoGuess(prev)
	next := NextRound{AutoGuess: res}
	if !res.Success {
		o.log.Warn().Str("session", o.session.ID).Str("word", prev).Str("reason", res.Error).Msg("auto-guess rejected")
		return next, nil
	}

	out, err := o.afterGuess(ctx, Outcome{GuessResult: res})
	next.Transition = out.Transition
	next.SessionEnded = out.SessionEnded
	return next, err
}

// EndSession closes the session. reason must be EndReasonFailure or EndReasonManualStop.
func (o *Orchestrator) EndSession(ctx context.Context, reason EndReason, finalAnswer string) error {
	if !reason.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEndReason, reason)
	}
	if o.session == nil {
		return ErrNoSession
	}
	if err := o.session.End(reason, finalAnswer, o.now()); err != nil {
		return err
	}

	rec := SessionRecord{
		SessionID:        o.session.ID,
		StartedAt:        o.session.StartTime,
		EndedAt:          *o.session.EndTime,
		HurdlesCompleted: len(o.session.CompletedHurdles),
		TotalScore:       o.session.TotalScore,
		EndReason:        reason,
		FinalAnswer:      o.session.FinalAnswer,
		HardMode:         o.session.HardMode,
		MaxAttempts:      o.session.MaxAttempts,
	}
	if err := o.repo.SaveSession(ctx, rec); err != nil {
		o.log.Warn().Err(err).Str("session", rec.SessionID).Msg("save session")
	}
	o.log.Info().
		Str("session", rec.SessionID).
		Str("reason", string(reason)).
		Int("hurdles", rec.HurdlesCompleted).
		Int("total", rec.TotalScore).
		Msg("session ended")
	return nil
}

// recordRound hands a finished round to the repository; failures are logged only.
func (o *Orchestrator) recordRound(ctx context.Context, r *game.Round, hurdle int) {
	gs := r.Guesses()
	played := make([]string, len(gs))
	for i, g := range gs {
		played[i] = g.Word()
	}
	rec := RoundRecord{
		SessionID:    o.session.ID,
		HurdleNumber: hurdle,
		TargetWord:   r.Target(),
		Guesses:      played,
		AttemptsUsed: r.GuessCount(),
		Won:          r.Status() == game.RoundWon,
		Duration:     r.Duration(),
		FinishedAt:   o.now(),
	}
	if err := o.repo.SaveRound(ctx, rec); err != nil {
		o.log.Warn().Err(err).Str("session", rec.SessionID).Int("hurdle", hurdle).Msg("save round")
	}
}

// CurrentRound returns the active (or just finished) round, or nil.
func (o *Orchestrator) CurrentRound() *game.Round { return o.controller.Round() }

// State returns a snapshot of the chain state.
func (o *Orchestrator) State() Snapshot { return o.state.Snapshot() }

// Session returns a copy of the session record, or false before StartSession.
func (o *Orchestrator) Session() (Session, bool) {
	if o.session == nil {
		return Session{}, false
	}
	return o.session.Copy(), true
}

// LastAnswer is the word to carry into the next round, or "" when there is none.
func (o *Orchestrator) LastAnswer() string {
	if o.lastCompleted == nil {
		return ""
	}
	return o.lastCompleted.Target()
}
