// internal/httpserver/routes_hurdle.go
//
// HTTP routes for endless-mode play.
// Exposes five endpoints under /hurdle:
//   - POST /hurdle/new   → start a session, returns a session token
//   - POST /hurdle/guess → submit a guess in the current round
//   - POST /hurdle/next  → start the next hurdle (previous answer auto-guessed)
//   - POST /hurdle/stop  → end the session manually
//   - GET  /hurdle/state → current session view
//
// Sessions live in memory (store.Sessions); finished rounds and sessions are
// persisted by the orchestrator's repository.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/hurdle/internal/chain"
	"github.com/robalobadob/hurdle/internal/store"
	"github.com/robalobadob/hurdle/internal/words"
)

// mountHurdle registers all /hurdle routes.
func (s *Server) mountHurdle(r chi.Router) {
	r.Route("/hurdle", func(r chi.Router) {
		r.Post("/new", s.handleNew)
		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Post("/guess", s.handleGuess)
			r.Post("/next", s.handleNext)
			r.Post("/stop", s.handleStop)
			r.Get("/state", s.handleState)
		})
	})
}

// -----------------------------------------------------------------------------
// /hurdle/new

// newReq is the optional body of /hurdle/new. Missing fields use server defaults.
type newReq struct {
	MaxAttempts *int                   `json:"maxAttempts"`
	HardMode    *bool                  `json:"hardMode"`
	Difficulty  *words.DifficultyRange `json:"difficulty"`
}

type newRes struct {
	SessionID string     `json:"sessionId"`
	Token     string     `json:"token"`
	State     chain.View `json:"state"`
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	var req newReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	opts := s.defaults
	if req.MaxAttempts != nil {
		opts.MaxAttempts = *req.MaxAttempts
	}
	if req.HardMode != nil {
		opts.HardMode = *req.HardMode
	}
	if req.Difficulty != nil {
		opts.Difficulty = *req.Difficulty
	}

	o := s.newOrch()
	view, err := o.StartSession(r.Context(), opts)
	if err != nil {
		if errors.Is(err, chain.ErrInvalidOptions) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error().Err(err).Msg("start session")
		writeError(w, http.StatusServiceUnavailable, "start_failed")
		return
	}

	tok, exp, err := s.tokens.sign(view.SessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.sessions.Put(view.SessionID, o)
	s.tokens.setCookie(w, tok, exp)
	writeJSON(w, http.StatusOK, newRes{SessionID: view.SessionID, Token: tok, State: view})
}

// -----------------------------------------------------------------------------
// /hurdle/guess

type guessReq struct {
	Word string `json:"word"`
}

type guessRes struct {
	chain.Outcome
	State chain.View `json:"state"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	var res guessRes
	err := s.withSession(r, func(ctx context.Context, o *chain.Orchestrator) error {
		out, err := o.SubmitGuess(ctx, req.Word)
		if err != nil {
			return err
		}
		res = guessRes{Outcome: out, State: o.View()}
		return nil
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// -----------------------------------------------------------------------------
// /hurdle/next

type nextRes struct {
	chain.NextRound
	State chain.View `json:"state"`
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	var res nextRes
	err := s.withSession(r, func(ctx context.Context, o *chain.Orchestrator) error {
		next, err := o.StartNextRound(ctx, o.LastAnswer())
		if err != nil {
			return err
		}
		res = nextRes{NextRound: next, State: o.View()}
		return nil
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// -----------------------------------------------------------------------------
// /hurdle/stop and /hurdle/state

type stateRes struct {
	State chain.View `json:"state"`
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	var res stateRes
	err := s.withSession(r, func(ctx context.Context, o *chain.Orchestrator) error {
		if err := o.EndSession(ctx, chain.EndReasonManualStop, ""); err != nil {
			return err
		}
		res.State = o.View()
		return nil
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var res stateRes
	err := s.withSession(r, func(_ context.Context, o *chain.Orchestrator) error {
		res.State = o.View()
		return nil
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// -----------------------------------------------------------------------------

// withSession runs fn against the caller's orchestrator under its session lock.
func (s *Server) withSession(r *http.Request, fn func(context.Context, *chain.Orchestrator) error) error {
	id, err := sessionID(r)
	if err != nil {
		return err
	}
	ctx := r.Context()
	return s.sessions.With(ctx, id, func(o *chain.Orchestrator) error { return fn(ctx, o) })
}

// fail maps engine errors to status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNoToken):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "session_not_found")
	case errors.Is(err, chain.ErrSessionClosed):
		writeError(w, http.StatusConflict, "session_closed")
	case errors.Is(err, chain.ErrRoundInProgress):
		writeError(w, http.StatusConflict, "round_in_progress")
	case errors.Is(err, chain.ErrInvalidPrevious):
		writeError(w, http.StatusConflict, "no_completed_round")
	case errors.Is(err, chain.ErrNoSession):
		writeError(w, http.StatusConflict, "no_session")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "timeout")
	default:
		s.log.Error().Err(err).Msg("hurdle request")
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}
