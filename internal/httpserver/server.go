// internal/httpserver/server.go
//
// HTTP server wiring for the Hurdle backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/leaderboard", "/debug/words".
//   - Hurdle endpoints mounted under /hurdle (see routes_hurdle.go).
//   - Graceful shutdown when the serving context is cancelled.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so the token cookie works).
//   - Every /hurdle route except /hurdle/new requires a session token.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hurdle/internal/chain"
	"github.com/robalobadob/hurdle/internal/store"
)

const maxLeaderboardLimit = 100

// WordStats reports the sizes of the local word lists.
type WordStats interface {
	Stats() (answersCount int, allowedCount int)
}

// Options bundles the server's collaborators.
type Options struct {
	Sessions *store.Sessions
	Records  store.Leaderboard
	// NewOrchestrator builds a fresh orchestrator for each /hurdle/new.
	NewOrchestrator func() *chain.Orchestrator
	Defaults        chain.Options
	Tokens          TokenConfig
	ClientOrigin    string
	Words           WordStats
	Logger          *zerolog.Logger
}

// Server bundles router, live sessions and the statistics store.
type Server struct {
	r        *chi.Mux
	sessions *store.Sessions
	records  store.Leaderboard
	newOrch  func() *chain.Orchestrator
	defaults chain.Options
	tokens   *tokenIssuer
	words    WordStats
	log      zerolog.Logger
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		sessions: opts.Sessions,
		records:  opts.Records,
		newOrch:  opts.NewOrchestrator,
		defaults: opts.Defaults,
		tokens:   newTokenIssuer(opts.Tokens),
		words:    opts.Words,
		log:      log.Logger,
	}
	if opts.Logger != nil {
		s.log = *opts.Logger
	}
	if s.sessions == nil {
		s.sessions = store.NewSessions()
	}
	if s.records == nil {
		s.records = store.NewMemory()
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(cors(opts.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"hurdle","endpoints":["/health","/leaderboard","POST /hurdle/new","POST /hurdle/guess","POST /hurdle/next","POST /hurdle/stop","/hurdle/state"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		if s.words == nil {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		a, g := s.words.Stats()
		writeJSON(w, http.StatusOK, map[string]int{"answers": a, "allowed": g})
	})

	s.r.Get("/leaderboard", s.handleLeaderboard)
	s.mountHurdle(s.r)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- hs.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ---------------------------- leaderboard ----------------------------------

type leaderboardRes struct {
	Top []chain.SessionRecord `json:"top"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultLeaderboardLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid_limit")
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}
	top, err := s.records.TopSessions(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if top == nil {
		top = []chain.SessionRecord{}
	}
	writeJSON(w, http.StatusOK, leaderboardRes{Top: top})
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
