package warn_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/warn"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := warn.Errorf(warn.ENOTFOUND, "cache entry %q not found", "fl/2020_page_1")

	assert.Equal(t, warn.ENOTFOUND, warn.ErrorCode(err))
	assert.Equal(t, "cache entry \"fl/2020_page_1\" not found", warn.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, warn.ErrorCode(nil))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("reading cache: %w", warn.Errorf(warn.ENOTFOUND, "missing"))

	assert.Equal(t, warn.ENOTFOUND, warn.ErrorCode(err))
	assert.Equal(t, "missing", warn.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, warn.EINTERNAL, warn.ErrorCode(err))
	assert.Equal(t, "Internal error", warn.ErrorMessage(err))
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	transient := fmt.Errorf("page 2: %w", &warn.TransientError{URL: "https://example.com", StatusCode: 503})
	permanent := &warn.PermanentError{URL: "https://example.com", StatusCode: 404}

	assert.True(t, warn.IsTransient(transient))
	assert.False(t, warn.IsTransient(permanent))
	assert.True(t, warn.IsPermanent(permanent))
	assert.False(t, warn.IsPermanent(transient))
}

func TestFetchExhaustedError_UnwrapsLastError(t *testing.T) {
	t.Parallel()

	last := &warn.TransientError{URL: "https://example.com", StatusCode: 502}
	err := &warn.FetchExhaustedError{URL: "https://example.com", Attempts: 3, Err: last}

	assert.True(t, warn.IsTransient(err))
	assert.Contains(t, err.Error(), "3 attempts")
}

func TestPaginationOverflowError_Message(t *testing.T) {
	t.Parallel()

	err := &warn.PaginationOverflowError{Seed: "https://example.com/list", MaxHops: 5, NextURL: "https://example.com/list?page=6"}

	assert.Contains(t, err.Error(), "exceeded 5 hops")
	assert.Contains(t, err.Error(), "page=6")
}
