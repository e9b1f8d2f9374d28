package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fwojciec/warn"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (*warn.FetchResult, error)

// RetryNotifyFunc is called before each retry with the number of the attempt
// about to be made, the delay before it and the error that caused it.
type RetryNotifyFunc func(attempt int, delay time.Duration, err error)

// NewBackOff returns the backoff schedule for policy: exponential, without
// jitter, bounded by MaxAttempts and MaxElapsed.
func NewBackOff(policy warn.RetryPolicy) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.InitialDelay
	b.RandomizationFactor = 0
	b.Multiplier = policy.Multiplier
	if b.Multiplier < 1 {
		b.Multiplier = warn.DefaultRetryMultiplier
	}
	b.MaxInterval = policy.MaxDelay
	if b.MaxInterval < b.InitialInterval {
		b.MaxInterval = max(b.InitialInterval, warn.DefaultMaxDelay)
	}
	b.MaxElapsedTime = policy.MaxElapsed
	b.Reset()

	attempts := max(policy.MaxAttempts, 1)
	return backoff.WithMaxRetries(b, uint64(attempts-1))
}

// FetchWithRetry fetches url, retrying transient failures according to
// policy. Permanent errors are returned immediately. When every attempt
// fails the result is a *warn.FetchExhaustedError carrying the last error.
// If ctx is canceled the context error is returned.
func FetchWithRetry(ctx context.Context, url string, fetch FetchFunc, policy warn.RetryPolicy, logger *slog.Logger) (*warn.FetchResult, error) {
	return FetchWithRetryNotify(ctx, url, fetch, policy, logger, nil)
}

// FetchWithRetryNotify is like FetchWithRetry but also reports each retry
// to notify.
func FetchWithRetryNotify(ctx context.Context, url string, fetch FetchFunc, policy warn.RetryPolicy, logger *slog.Logger, notify RetryNotifyFunc) (*warn.FetchResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	start := time.Now()
	var (
		attempts int
		result   *warn.FetchResult
	)
	op := func() error {
		attempts++
		res, err := fetch(ctx, url)
		if err == nil {
			result = res
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if warn.IsPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	onRetry := func(err error, delay time.Duration) {
		logger.Warn("retrying fetch", "url", url, "attempt", attempts+1, "delay", delay, "error", err)
		if notify != nil {
			notify(attempts+1, delay, err)
		}
	}

	err := backoff.RetryNotify(op, backoff.WithContext(NewBackOff(policy), ctx), onRetry)
	if err == nil {
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if warn.IsPermanent(err) {
		return nil, err
	}
	return nil, &warn.FetchExhaustedError{
		URL:      url,
		Attempts: attempts,
		Elapsed:  time.Since(start),
		Err:      err,
	}
}
