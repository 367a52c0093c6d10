package translation

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceUnavailable marks transient vendor failures that are safe to retry.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrRetriesExhausted is wrapped into the permanent error returned once
	// all retry attempts failed.
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrCircuitOpen is returned while the circuit breaker rejects calls.
	ErrCircuitOpen = errors.New("circuit breaker open")
	// ErrEmptyTranslation is returned when a vendor answers without output.
	ErrEmptyTranslation = errors.New("empty translation")
	// ErrUnknownModel is wrapped into the ConfigError for unregistered models.
	ErrUnknownModel = errors.New("unknown translation model")
)

// ConfigError reports invalid backend configuration. It is fatal and
// always surfaces before any translation request is sent.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration (%s): %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// BackendError is a failed translation call.
type BackendError struct {
	Backend   string
	Retryable bool
	Err       error
}

func (e *BackendError) Error() string {
	kind := "permanent"
	if e.Retryable {
		kind = "retryable"
	}
	return fmt.Sprintf("%s backend (%s): %v", e.Backend, kind, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Retryable wraps err as a transient failure of backend.
func Retryable(backend string, err error) error {
	return &BackendError{Backend: backend, Retryable: true, Err: err}
}

// Permanent wraps err as a non-retryable failure of backend.
func Permanent(backend string, err error) error {
	return &BackendError{Backend: backend, Err: err}
}

// IsRetryable reports whether err may succeed when retried.
func IsRetryable(err error) bool {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Retryable
	}
	return errors.Is(err, ErrServiceUnavailable)
}

// IsPermanent reports whether err is a backend failure that must not be retried.
func IsPermanent(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && !be.Retryable
}

// IsConfigError reports whether err is a configuration failure.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// statusError classifies an HTTP status: 408, 429 and 5xx are retryable,
// everything else permanent.
func statusError(backend string, status int, body string) error {
	err := fmt.Errorf("HTTP %d: %s", status, body)
	if status == 408 || status == 429 || status >= 500 {
		return Retryable(backend, fmt.Errorf("%w: %w", ErrServiceUnavailable, err))
	}
	return Permanent(backend, err)
}

// LoadError reports a cache that could not be loaded. The cache returned
// alongside it is empty but usable.
type LoadError struct {
	Location string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("could not load translation cache %s: %v", e.Location, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
