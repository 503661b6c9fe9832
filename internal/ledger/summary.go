// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Event is one recorded per-item outcome.
type Event struct {
	Stage  Stage
	Item   string
	Status Status
	Detail string
}

// Summary describes one run: its counts per stage and status, and every
// failed or broken item in recording order.
type Summary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Endpoint   string
	Counts     map[Stage]map[Status]int
	Problems   []Event
}

// Finished reports whether the run reached its end.
func (s Summary) Finished() bool {
	return !s.FinishedAt.IsZero()
}

// Latest summarizes the most recently started run.
func (s *Store) Latest(ctx context.Context) (Summary, error) {
	var (
		sum      Summary
		started  string
		finished sql.NullString
		endpoint sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, endpoint FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`,
	).Scan(&sum.RunID, &started, &finished, &endpoint)
	if errors.Is(err, sql.ErrNoRows) {
		return Summary{}, ErrNoRuns
	}
	if err != nil {
		return Summary{}, fmt.Errorf("querying latest run: %w", err)
	}
	sum.StartedAt, _ = time.Parse(timeFormat, started)
	if finished.Valid {
		sum.FinishedAt, _ = time.Parse(timeFormat, finished.String)
	}
	sum.Endpoint = endpoint.String

	if err := s.loadEvents(ctx, &sum); err != nil {
		return Summary{}, err
	}
	return sum, nil
}

func (s *Store) loadEvents(ctx context.Context, sum *Summary) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stage, item, status, COALESCE(detail, '') FROM events WHERE run_id = ? ORDER BY rowid`,
		sum.RunID)
	if err != nil {
		return fmt.Errorf("querying run events: %w", err)
	}
	defer rows.Close()

	sum.Counts = make(map[Stage]map[Status]int)
	for rows.Next() {
		var (
			e             Event
			stage, status string
		)
		if err := rows.Scan(&stage, &e.Item, &status, &e.Detail); err != nil {
			return fmt.Errorf("scanning run event: %w", err)
		}
		e.Stage, e.Status = Stage(stage), Status(status)
		if sum.Counts[e.Stage] == nil {
			sum.Counts[e.Stage] = make(map[Status]int)
		}
		sum.Counts[e.Stage][e.Status]++
		if e.Status == StatusFailed || e.Status == StatusBroken {
			sum.Problems = append(sum.Problems, e)
		}
	}
	return rows.Err()
}
