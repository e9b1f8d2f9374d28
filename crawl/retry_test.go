package crawl_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/fwojciec/warn"
	"github.com/fwojciec/warn/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) warn.RetryPolicy {
	return warn.RetryPolicy{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2,
	}
}

func transient(url string) error {
	return &warn.TransientError{URL: url, StatusCode: 503}
}

func TestFetchWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("returns result on first success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(_ context.Context, url string) (*warn.FetchResult, error) {
			calls++
			return &warn.FetchResult{URL: url, StatusCode: 200, Body: []byte("ok")}, nil
		}

		res, err := crawl.FetchWithRetry(context.Background(), "https://example.com", fetch, fastPolicy(4), nil)

		require.NoError(t, err)
		assert.Equal(t, []byte("ok"), res.Body)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient errors with increasing delays", func(t *testing.T) {
		t.Parallel()

		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))

		calls := 0
		fetch := func(_ context.Context, url string) (*warn.FetchResult, error) {
			calls++
			if calls < 3 {
				return nil, transient(url)
			}
			return &warn.FetchResult{URL: url, StatusCode: 200}, nil
		}

		var attempts []int
		var delays []time.Duration
		notify := func(attempt int, delay time.Duration, _ error) {
			attempts = append(attempts, attempt)
			delays = append(delays, delay)
		}

		_, err := crawl.FetchWithRetryNotify(context.Background(), "https://example.com", fetch, fastPolicy(4), logger, notify)

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []int{2, 3}, attempts)
		assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, delays)
		assert.Contains(t, logs.String(), "retrying fetch")
		assert.Contains(t, logs.String(), "attempt=2")
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(_ context.Context, url string) (*warn.FetchResult, error) {
			calls++
			return nil, transient(url)
		}

		_, err := crawl.FetchWithRetry(context.Background(), "https://example.com/x", fetch, fastPolicy(3), nil)

		require.Error(t, err)
		assert.Equal(t, 3, calls)
		var exhausted *warn.FetchExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, 3, exhausted.Attempts)
		assert.Equal(t, "https://example.com/x", exhausted.URL)
		assert.True(t, warn.IsTransient(err))
		assert.Contains(t, err.Error(), "gave up after 3 attempts")
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(_ context.Context, url string) (*warn.FetchResult, error) {
			calls++
			return nil, &warn.PermanentError{URL: url, StatusCode: 404}
		}

		_, err := crawl.FetchWithRetry(context.Background(), "https://example.com", fetch, fastPolicy(4), nil)

		assert.Equal(t, 1, calls)
		assert.True(t, warn.IsPermanent(err))
		var exhausted *warn.FetchExhaustedError
		assert.False(t, errors.As(err, &exhausted))
	})

	t.Run("treats unclassified errors as transient", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(_ context.Context, _ string) (*warn.FetchResult, error) {
			calls++
			return nil, errors.New("connection reset")
		}

		_, err := crawl.FetchWithRetry(context.Background(), "https://example.com", fetch, fastPolicy(2), nil)

		assert.Equal(t, 2, calls)
		var exhausted *warn.FetchExhaustedError
		assert.ErrorAs(t, err, &exhausted)
	})

	t.Run("returns context error when canceled during backoff", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		fetch := func(_ context.Context, url string) (*warn.FetchResult, error) {
			return nil, transient(url)
		}
		policy := warn.RetryPolicy{MaxAttempts: 4, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 2}
		notify := func(int, time.Duration, error) { cancel() }

		_, err := crawl.FetchWithRetryNotify(ctx, "https://example.com", fetch, policy, nil, notify)

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("caps delays at max delay", func(t *testing.T) {
		t.Parallel()

		policy := warn.RetryPolicy{MaxAttempts: 5, InitialDelay: time.Second, MaxDelay: 3 * time.Second, Multiplier: 2}
		b := crawl.NewBackOff(policy)

		assert.Equal(t, time.Second, b.NextBackOff())
		assert.Equal(t, 2*time.Second, b.NextBackOff())
		assert.Equal(t, 3*time.Second, b.NextBackOff())
		assert.Equal(t, 3*time.Second, b.NextBackOff())
	})
}
