package mock

import (
	"context"

	"github.com/fwojciec/warn"
)

var (
	_ warn.RowWriter        = (*RowWriter)(nil)
	_ warn.RowReconstructor = (*RowReconstructor)(nil)
	_ warn.RunService       = (*RunService)(nil)
)

// RowWriter is a mock implementation of warn.RowWriter.
type RowWriter struct {
	WriteRowsFn func(path string, rows [][]string) error
}

func (w *RowWriter) WriteRows(path string, rows [][]string) error {
	return w.WriteRowsFn(path, rows)
}

// RowReconstructor is a mock implementation of warn.RowReconstructor.
type RowReconstructor struct {
	ReconstructFn func(pages []warn.PageGrid) (*warn.Reconstruction, error)
}

func (r *RowReconstructor) Reconstruct(pages []warn.PageGrid) (*warn.Reconstruction, error) {
	return r.ReconstructFn(pages)
}

// RunService is a mock implementation of warn.RunService.
type RunService struct {
	CreateRunFn func(ctx context.Context, run *warn.Run) error
	FindRunsFn  func(ctx context.Context, filter warn.RunFilter) ([]*warn.Run, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *warn.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRuns(ctx context.Context, filter warn.RunFilter) ([]*warn.Run, error) {
	return s.FindRunsFn(ctx, filter)
}
