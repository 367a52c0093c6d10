package translation

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// retrying retries retryable failures with linear backoff: the n-th retry
// waits n units.
type retrying struct {
	next       Backend
	maxRetries uint64
	unit       time.Duration
}

// WithRetry decorates next so that retryable failures are retried up to
// maxRetries times. Once exhausted the failure becomes permanent and wraps
// ErrRetriesExhausted.
func WithRetry(next Backend, maxRetries int, unit time.Duration) Backend {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &retrying{next: next, maxRetries: uint64(maxRetries), unit: unit}
}

// Name implements Backend.
func (r *retrying) Name() string { return r.next.Name() }

// Translate implements Backend.
func (r *retrying) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	var retries uint64
	linear := retry.BackoffFunc(func() (time.Duration, bool) {
		retries++
		return time.Duration(retries) * r.unit, false
	})

	var translation string
	err := retry.Do(ctx, retry.WithMaxRetries(r.maxRetries, linear), func(ctx context.Context) error {
		out, err := r.next.Translate(ctx, text, sourceLang, targetLang)
		if err != nil {
			if IsRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		translation = out
		return nil
	})
	if err != nil {
		if IsRetryable(err) {
			return "", Permanent(r.next.Name(), fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, retries+1, err))
		}
		return "", err
	}
	return translation, nil
}
