package translation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// breaking stops calling a vendor after too many consecutive transient
// failures. While open every call fails permanently with ErrCircuitOpen.
type breaking struct {
	next Backend
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker decorates next with a circuit breaker that opens after
// failures consecutive retryable errors and probes again after timeout.
// Permanent errors do not count as breaker failures.
func WithBreaker(next Backend, failures uint32, timeout time.Duration) Backend {
	settings := gobreaker.Settings{
		Name:    next.Name(),
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsRetryable(err)
		},
	}
	return &breaking{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

// Name implements Backend.
func (b *breaking) Name() string { return b.next.Name() }

// State returns the breaker state.
func (b *breaking) State() gobreaker.State { return b.cb.State() }

// Translate implements Backend.
func (b *breaking) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Translate(ctx, text, sourceLang, targetLang)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", Permanent(b.next.Name(), fmt.Errorf("%w: %w", ErrCircuitOpen, err))
		}
		return "", err
	}
	return out.(string), nil
}
