// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger keeps a SQLite record of each run and the per-item outcome
// of every stage, so failures can be listed after the console has scrolled
// away.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Stage names a pipeline stage in the ledger.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageRender    Stage = "render"
	StageNormalize Stage = "normalize"
)

// Status is the outcome of one item in one stage.
type Status string

const (
	StatusDone    Status = "done"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
	StatusBroken  Status = "broken"
)

// ErrNoRuns is returned by Latest when the ledger is empty.
var ErrNoRuns = errors.New("no runs recorded")

// Recorder receives per-item outcomes from the stages.
type Recorder interface {
	Record(ctx context.Context, stage Stage, item string, status Status, detail string)
}

type discard struct{}

func (discard) Record(context.Context, Stage, string, Status, string) {}

// Discard is a Recorder that drops every event.
var Discard Recorder = discard{}

// Store is an open ledger database.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens or creates the ledger at path, creating parent directories and
// the schema as needed.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	s := &Store{db: db, log: log}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			endpoint TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			stage TEXT NOT NULL,
			item TEXT NOT NULL,
			status TEXT NOT NULL,
			detail TEXT,
			at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_run_id ON events(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Run is one pipeline invocation in the ledger. It implements Recorder.
type Run struct {
	ID    string
	store *Store
}

// Begin records the start of a new run.
func (s *Store) Begin(ctx context.Context) (*Run, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		id, now())
	if err != nil {
		return nil, fmt.Errorf("recording run start: %w", err)
	}
	return &Run{ID: id, store: s}, nil
}

// SetEndpoint records which endpoint the run downloads from.
func (r *Run) SetEndpoint(ctx context.Context, name string) {
	if _, err := r.store.db.ExecContext(ctx,
		`UPDATE runs SET endpoint = ? WHERE id = ?`, name, r.ID); err != nil {
		r.store.log.Warn("ledger: recording endpoint", zap.Error(err))
	}
}

// Record implements Recorder. Write failures are logged, never returned:
// the ledger must not stop a run.
func (r *Run) Record(ctx context.Context, stage Stage, item string, status Status, detail string) {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO events (run_id, stage, item, status, detail, at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, string(stage), item, string(status), detail, now())
	if err != nil {
		r.store.log.Warn("ledger: recording event",
			zap.String("stage", string(stage)),
			zap.String("item", item),
			zap.Error(err))
	}
}

// Finish stamps the run's completion time.
func (r *Run) Finish(ctx context.Context) {
	if _, err := r.store.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ? WHERE id = ?`, now(), r.ID); err != nil {
		r.store.log.Warn("ledger: recording run finish", zap.Error(err))
	}
}

// timeFormat has fixed width so stored timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

func now() string {
	return time.Now().UTC().Format(timeFormat)
}
