package sqlite

import (
	"context"
	"strings"

	"github.com/fwojciec/warn"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ warn.RunService = (*RunService)(nil)

// RunService implements warn.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun records a run, assigning an ID if it has none.
func (s *RunService) CreateRun(ctx context.Context, run *warn.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = run.StartedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, source, started_at, finished_at, row_count, empty_pages, malformed, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Source, timestamp(run.StartedAt), timestamp(run.FinishedAt),
		run.Rows, run.EmptyPages, run.Malformed, run.Error)

	return err
}

// FindRuns retrieves runs matching the filter, newest first.
func (s *RunService) FindRuns(ctx context.Context, filter warn.RunFilter) ([]*warn.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, source, started_at, finished_at, row_count, empty_pages, malformed, error FROM runs WHERE 1=1")

	if filter.Source != nil {
		query.WriteString(" AND source = ?")
		args = append(args, *filter.Source)
	}

	query.WriteString(" ORDER BY started_at DESC")
	switch {
	case filter.Limit > 0:
		query.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, filter.Limit, max(filter.Offset, 0))
	case filter.Offset > 0:
		// SQLite accepts OFFSET only after LIMIT; -1 means no limit.
		query.WriteString(" LIMIT -1 OFFSET ?")
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*warn.Run
	for rows.Next() {
		var run warn.Run
		if err := rows.Scan(&run.ID, &run.Source,
			(*timestamp)(&run.StartedAt), (*timestamp)(&run.FinishedAt),
			&run.Rows, &run.EmptyPages, &run.Malformed, &run.Error); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}

	return runs, rows.Err()
}
