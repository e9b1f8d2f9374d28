package warn

import (
	"context"
	"time"
)

// Report summarizes the harvest of one source.
type Report struct {
	RunID         string        `json:"runId"`
	Source        string        `json:"source"`
	Path          string        `json:"path"`
	Documents     int           `json:"documents"`
	Pages         int           `json:"pages"`
	Bytes         int           `json:"bytes"`
	Rows          int           `json:"rows"`
	HeaderRows    int           `json:"headerRows"`
	Continuations int           `json:"continuations"`
	EmptyPages    int           `json:"emptyPages"`
	MalformedRows int           `json:"malformedRows"`
	Elapsed       time.Duration `json:"elapsed"`
}

// Run is a recorded harvest attempt.
type Run struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Rows       int       `json:"rows"`
	EmptyPages int       `json:"emptyPages"`
	Malformed  int       `json:"malformed"`
	Error      string    `json:"error"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.Source == "" {
		return Errorf(EINVALID, "run source required")
	}
	if r.StartedAt.IsZero() {
		return Errorf(EINVALID, "run start time required")
	}
	return nil
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	Source *string `json:"source"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}

// RunService records harvest runs.
type RunService interface {
	// CreateRun records a run and assigns its ID if empty.
	CreateRun(ctx context.Context, run *Run) error

	// FindRuns returns runs matching the filter, newest first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
}
