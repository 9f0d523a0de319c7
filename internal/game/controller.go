// internal/game/controller.go
//
// Round orchestration: the single entry point for player guesses.
// Responsibilities:
//   - Run the validation pipeline (active round, terminal state, length,
//     dictionary, duplicate, hard mode) and stop at the first failure.
//   - Score accepted guesses, fold them into the hard-mode tracker and
//     append them to the active Round.
//   - Apply carried-over auto-guesses without a dictionary round trip.
//
// Rejected guesses never touch the Round; they come back as a GuessResult with
// Success=false and a player-facing message.

package game

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Player-facing rejection messages.
const (
	MsgNoGame          = "No game in progress."
	MsgGameOver        = "Game is over."
	MsgWrongLength     = "Word must be exactly 5 letters."
	MsgNotAWord        = "Not a valid word."
	MsgAlreadyGuessed  = "You have already guessed this word."
	MsgDictionaryError = "Unable to check word. Please try again."
)

// Dictionary is the slice of the word provider the controller needs.
type Dictionary interface {
	IsValidWord(ctx context.Context, word string) (bool, error)
}

// GuessResult is the outcome of SubmitGuess.
type GuessResult struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Guess   *Guess      `json:"guess,omitempty"`
	Status  RoundStatus `json:"status"`
}

// Controller drives one round at a time.
type Controller struct {
	dict        Dictionary
	constraints *Constraints
	round       *Round
	hardMode    bool
	log         zerolog.Logger
}

// NewController builds a controller with no active round.
func NewController(dict Dictionary) *Controller {
	return &Controller{
		dict:        dict,
		constraints: NewConstraints(),
		log:         log.Logger,
	}
}

// WithLogger replaces the default global logger.
func (c *Controller) WithLogger(l zerolog.Logger) *Controller {
	c.log = l
	return c
}

// StartRound discards any current round and begins a fresh one.
// The hard-mode tracker is cleared as well: clues from the previous target are meaningless.
func (c *Controller) StartRound(target string, maxAttempts int, hardMode bool) (*Round, error) {
	r, err := NewRound(target, maxAttempts)
	if err != nil {
		return nil, err
	}
	c.round = r
	c.hardMode = hardMode
	c.constraints.Reset()
	return r, nil
}

// Round returns the active round, or nil.
func (c *Controller) Round() *Round { return c.round }

// HardMode reports whether the active round enforces revealed clues.
func (c *Controller) HardMode() bool { return c.hardMode }

// Constraints exposes the tracker (read-only use intended).
func (c *Controller) Constraints() *Constraints { return c.constraints }

// SubmitGuess validates word and, if accepted, applies it to the active round.
func (c *Controller) SubmitGuess(ctx context.Context, word string) GuessResult {
	if c.round == nil {
		return GuessResult{Error: MsgNoGame}
	}
	if c.round.IsOver() {
		return c.reject(MsgGameOver)
	}

	w := Normalize(word)
	if !IsWord(w) {
		return c.reject(MsgWrongLength)
	}

	ok, err := c.dict.IsValidWord(ctx, w)
	if err != nil {
		c.log.Warn().Err(err).Str("word", w).Msg("dictionary lookup failed")
		return c.reject(MsgDictionaryError)
	}
	if !ok {
		return c.reject(MsgNotAWord)
	}
	return c.apply(w)
}

// AutoGuess submits a word that is already known to be valid (the previous
// hurdle's answer). The dictionary is skipped; every other step still applies
// and the guess uses an attempt like any other.
func (c *Controller) AutoGuess(word string) GuessResult {
	if c.round == nil {
		return GuessResult{Error: MsgNoGame}
	}
	if c.round.IsOver() {
		return c.reject(MsgGameOver)
	}
	w := Normalize(word)
	if !IsWord(w) {
		return c.reject(MsgWrongLength)
	}
	return c.apply(w)
}

// apply runs the duplicate and hard-mode checks, then scores and records w.
func (c *Controller) apply(w string) GuessResult {
	if c.round.HasGuessed(w) {
		return c.reject(MsgAlreadyGuessed)
	}

	if c.hardMode {
		if err := c.constraints.Validate(w); err != nil {
			return c.reject(err.Error())
		}
	}

	fb, err := GenerateFeedback(w, c.round.Target())
	if err != nil {
		// Unreachable after the length check; keep the round intact regardless.
		return c.reject(MsgWrongLength)
	}
	g, err := NewGuess(w, fb)
	if err != nil {
		return c.reject(MsgWrongLength)
	}
	if c.hardMode {
		c.constraints.UpdateFromFeedback(w, fb)
	}
	if err := c.round.AddGuess(g); err != nil {
		return c.reject(MsgGameOver)
	}
	return GuessResult{Success: true, Guess: &g, Status: c.round.Status()}
}

func (c *Controller) reject(msg string) GuessResult {
	return GuessResult{Error: msg, Status: c.round.Status()}
}
