// internal/history/sqlite.go
//
// SQLite-backed history store.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying embedded migrations from sql/*.sql (idempotent, recorded in _migrations).
//   - Saving finished transcripts and reading them back for the history command.

package history

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
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/xunhualing/internal/verse"
)

//go:embed sql/*.sql
var migrations embed.FS

// ErrNotFound is returned by Load for an unknown session ID.
var ErrNotFound = errors.New("history: session not found")

// Store persists transcripts in SQLite.
type Store struct {
	db *sql.DB
}

// Summary is one row of the session listing.
type Summary struct {
	ID        string
	Length    int
	Reason    Reason
	Answer    verse.Verse
	StartedAt time.Time
	Guesses   int
}

// OpenStore opens (and creates if missing) the SQLite database at dsn and
// applies pending migrations.
func OpenStore(dsn string) (*Store, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// openDB ensures the parent directory exists and configures busy timeout,
// WAL journaling and foreign keys.
func openDB(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// migrate applies the embedded migrations in lexical order, each inside its
// own transaction, skipping those already recorded in _migrations.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "sql/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Debug().Str("migration", f).Msg("applied")
	}
	return nil
}

// Save inserts the session and all its guesses in one transaction. Saving
// the same session ID again replaces it.
func (s *Store) Save(ctx context.Context, t Transcript) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM guesses WHERE session_id=?`, t.SessionID); err != nil {
		return fmt.Errorf("clear guesses: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT OR REPLACE INTO sessions (id, length, reason, answer, started_at, ended_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		t.SessionID, t.Length, string(t.Reason), string(t.Answer),
		t.StartedAt.UTC().Format(time.RFC3339Nano), t.EndedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	for i, r := range t.Records {
		status, err := json.Marshal(r.Status)
		if err != nil {
			return fmt.Errorf("encode status: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO guesses (session_id, seq, guess, attempt, cycle, outcome, status, at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.SessionID, i, string(r.Guess), r.Attempt, r.Cycle, string(r.Outcome), string(status),
			r.At.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert guess %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Load reads a session back with its guesses in turn order.
func (s *Store) Load(ctx context.Context, id string) (Transcript, error) {
	var t Transcript
	var reason, answer, started, ended string
	err := s.db.QueryRowContext(ctx, `
        SELECT id, length, reason, answer, started_at, ended_at
        FROM sessions WHERE id=?`, id,
	).Scan(&t.SessionID, &t.Length, &reason, &answer, &started, &ended)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}
	t.Reason, t.Answer = Reason(reason), verse.Verse(answer)
	t.StartedAt, t.EndedAt = parseTime(started), parseTime(ended)

	rows, err := s.db.QueryContext(ctx, `
        SELECT guess, attempt, cycle, outcome, status, at
        FROM guesses WHERE session_id=? ORDER BY seq ASC`, id)
	if err != nil {
		return t, err
	}
	defer rows.Close()

	t.Records = []Record{}
	for rows.Next() {
		var r Record
		var guess, outcome, status, at string
		if err := rows.Scan(&guess, &r.Attempt, &r.Cycle, &outcome, &status, &at); err != nil {
			return t, err
		}
		if err := json.Unmarshal([]byte(status), &r.Status); err != nil {
			return t, fmt.Errorf("decode status: %w", err)
		}
		r.Guess, r.Outcome, r.At = verse.Verse(guess), Outcome(outcome), parseTime(at)
		t.Records = append(t.Records, r)
	}
	return t, rows.Err()
}

// Sessions lists the most recent sessions first. limit <= 0 means 20.
func (s *Store) Sessions(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT s.id, s.length, s.reason, s.answer, s.started_at, COUNT(g.seq)
        FROM sessions s LEFT JOIN guesses g ON g.session_id = s.id
        GROUP BY s.id
        ORDER BY s.started_at DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Summary, 0, limit)
	for rows.Next() {
		var sm Summary
		var reason, answer, started string
		if err := rows.Scan(&sm.ID, &sm.Length, &reason, &answer, &started, &sm.Guesses); err != nil {
			return nil, err
		}
		sm.Reason, sm.Answer, sm.StartedAt = Reason(reason), verse.Verse(answer), parseTime(started)
		out = append(out, sm)
	}
	return out, rows.Err()
}

// parseTime parses RFC3339 timestamps; on error returns zero time.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	return t
}
