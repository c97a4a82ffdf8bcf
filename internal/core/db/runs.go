package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNoRuns is returned by LastFetchRun when a platform was never fetched.
var ErrNoRuns = errors.New("no fetch runs recorded")

// SaveFetchRun records the outcome of a fetch and returns its id.
// Emits a FetchRunSavedEvent after a successful save.
func (db *DB) SaveFetchRun(ctx context.Context, run FetchRun) (int64, error) {
	if run.Status != RunStatusOK && run.Status != RunStatusError {
		return 0, fmt.Errorf("invalid fetch run status %q", run.Status)
	}

	res, err := db.db.ExecContext(ctx, `
		INSERT INTO fetch_runs (platform, started_at, finished_at, status, item_count, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.Platform,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.Status,
		run.Count,
		run.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save fetch run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	run.ID = id
	db.emit(FetchRunSavedEvent{Run: run})
	return id, nil
}

// LastFetchRun returns the most recent run for platform.
func (db *DB) LastFetchRun(ctx context.Context, platform string) (FetchRun, error) {
	row := db.db.QueryRowContext(ctx, `
		SELECT id, platform, started_at, finished_at, status, item_count, error
		FROM fetch_runs
		WHERE platform = ?
		ORDER BY finished_at DESC, id DESC
		LIMIT 1
	`, platform)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return FetchRun{}, fmt.Errorf("%w for %s", ErrNoRuns, platform)
	}
	if err != nil {
		return FetchRun{}, fmt.Errorf("failed to get last fetch run: %w", err)
	}
	return run, nil
}

// ListFetchRuns returns runs newest first. A limit <= 0 returns all of them.
func (db *DB) ListFetchRuns(ctx context.Context, limit int) ([]FetchRun, error) {
	query := `
		SELECT id, platform, started_at, finished_at, status, item_count, error
		FROM fetch_runs
		ORDER BY finished_at DESC, id DESC
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = db.db.QueryContext(ctx, query+" LIMIT ?", limit)
	} else {
		rows, err = db.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list fetch runs: %w", err)
	}
	defer rows.Close()

	var out []FetchRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fetch run: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (FetchRun, error) {
	var run FetchRun
	var started, finished string
	if err := s.Scan(&run.ID, &run.Platform, &started, &finished, &run.Status, &run.Count, &run.Error); err != nil {
		return FetchRun{}, err
	}
	var err error
	if run.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
		return FetchRun{}, fmt.Errorf("bad started_at %q: %w", started, err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339, finished); err != nil {
		return FetchRun{}, fmt.Errorf("bad finished_at %q: %w", finished, err)
	}
	return run, nil
}
