package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "history: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "history: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	version         TEXT NOT NULL,
	provider        TEXT NOT NULL,
	used_fallback   INTEGER NOT NULL DEFAULT 0,
	entries         TEXT NOT NULL,
	degraded        INTEGER NOT NULL DEFAULT 0,
	mean_confidence INTEGER NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_runs_version ON runs(version);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "history: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordRun inserts a run, assigning ID and CreatedAt when unset.
func (s *SQLiteStore) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	entriesJSON, err := json.Marshal(run.Entries)
	if err != nil {
		return eris.Wrap(err, "history: marshal entries")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, version, provider, used_fallback, entries, degraded, mean_confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Version, run.Provider, boolToInt(run.UsedFallback),
		string(entriesJSON), boolToInt(run.Degraded), run.MeanConfidence, run.CreatedAt,
	)
	return eris.Wrap(err, "history: insert run")
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, version, provider, used_fallback, entries, degraded, mean_confidence, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "history: list runs")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var (
			run         Run
			fallback    int
			degraded    int
			entriesJSON string
		)
		if err := rows.Scan(&run.ID, &run.Version, &run.Provider, &fallback,
			&entriesJSON, &degraded, &run.MeanConfidence, &run.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "history: scan run")
		}
		if err := json.Unmarshal([]byte(entriesJSON), &run.Entries); err != nil {
			return nil, eris.Wrapf(err, "history: unmarshal entries for run %s", run.ID)
		}
		run.UsedFallback = fallback != 0
		run.Degraded = degraded != 0
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "history: iterate runs")
	}
	return runs, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
