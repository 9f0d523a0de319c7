// internal/store/sqlite.go
//
// SQLite-backed statistics repository.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying embedded migrations (idempotent, recorded in _migrations).
//   - Persisting finished rounds and closed sessions; serving the leaderboard.

package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hurdle/internal/chain"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const timeLayout = time.RFC3339Nano

// SQLite is a Repository on top of database/sql.
type SQLite struct {
	db  *sql.DB
	log zerolog.Logger
}

// OpenSQLite opens (creating if missing) the database at path and migrates it.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	s := &SQLite{db: db, log: log.Logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// WithLogger replaces the default global logger.
func (s *SQLite) WithLogger(l zerolog.Logger) *SQLite {
	s.log = l
	return s
}

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

// DB exposes the handle for diagnostics.
func (s *SQLite) DB() *sql.DB { return s.db }

func openDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	// One writer keeps SQLite happy under concurrent HTTP requests.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// migrate applies migrations/*.sql in lexical order, each in its own transaction.
func (s *SQLite) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			s.log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := migrationFS.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		s.log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

func (s *SQLite) SaveRound(ctx context.Context, r chain.RoundRecord) error {
	guesses, err := json.Marshal(r.Guesses)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO rounds
            (session_id, hurdle_number, target_word, guesses, attempts_used, won, duration_ms, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.HurdleNumber, r.TargetWord, string(guesses), r.AttemptsUsed,
		r.Won, r.Duration.Milliseconds(), r.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert round: %w", err)
	}
	return nil
}

// SaveSession upserts by session ID.
func (s *SQLite) SaveSession(ctx context.Context, rec chain.SessionRecord) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO sessions
            (id, started_at, ended_at, hurdles_completed, total_score, end_reason, final_answer, hard_mode, max_attempts)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            ended_at=excluded.ended_at,
            hurdles_completed=excluded.hurdles_completed,
            total_score=excluded.total_score,
            end_reason=excluded.end_reason,
            final_answer=excluded.final_answer`,
		rec.SessionID,
		rec.StartedAt.UTC().Format(timeLayout),
		rec.EndedAt.UTC().Format(timeLayout),
		rec.HurdlesCompleted, rec.TotalScore, string(rec.EndReason), rec.FinalAnswer,
		rec.HardMode, rec.MaxAttempts,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// TopSessions orders by total score desc, hurdles desc, then earliest end.
func (s *SQLite) TopSessions(ctx context.Context, limit int) ([]chain.SessionRecord, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, started_at, ended_at, hurdles_completed, total_score, end_reason, final_answer, hard_mode, max_attempts
        FROM sessions
        ORDER BY total_score DESC, hurdles_completed DESC, ended_at ASC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]chain.SessionRecord, 0, limit)
	for rows.Next() {
		var (
			rec            chain.SessionRecord
			started, ended string
			reason         string
		)
		if err := rows.Scan(&rec.SessionID, &started, &ended, &rec.HurdlesCompleted, &rec.TotalScore,
			&reason, &rec.FinalAnswer, &rec.HardMode, &rec.MaxAttempts); err != nil {
			return nil, err
		}
		rec.EndReason = chain.EndReason(reason)
		if rec.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("session %s started_at: %w", rec.SessionID, err)
		}
		if rec.EndedAt, err = time.Parse(timeLayout, ended); err != nil {
			return nil, fmt.Errorf("session %s ended_at: %w", rec.SessionID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Rounds returns the rounds recorded for sessionID ordered by hurdle number.
func (s *SQLite) Rounds(ctx context.Context, sessionID string) ([]chain.RoundRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT hurdle_number, target_word, guesses, attempts_used, won, duration_ms, finished_at
        FROM rounds
        WHERE session_id=?
        ORDER BY hurdle_number ASC, id ASC`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []chain.RoundRecord
	for rows.Next() {
		var (
			r          chain.RoundRecord
			guesses    string
			durationMs int64
			finished   string
		)
		if err := rows.Scan(&r.HurdleNumber, &r.TargetWord, &guesses, &r.AttemptsUsed, &r.Won, &durationMs, &finished); err != nil {
			return nil, err
		}
		r.SessionID = sessionID
		if err := json.Unmarshal([]byte(guesses), &r.Guesses); err != nil {
			return nil, fmt.Errorf("round %d guesses: %w", r.HurdleNumber, err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		if r.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("round %d finished_at: %w", r.HurdleNumber, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
