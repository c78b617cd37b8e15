package cache

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for caching operations.
var (
	// ErrCacheMiss is returned when an item is not found in cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrUnavailable is returned when a remote backend cannot be reached.
	ErrUnavailable = errors.New("cache backend unavailable")

	// ErrUnknownBackend is returned by Open for unsupported backend names.
	ErrUnknownBackend = errors.New("unknown cache backend")
)

// RetryableError marks a transient failure, such as a refused connection
// or a 5xx response, that RetryWithBackoff may try again.
type RetryableError struct{ Err error }

// Retryable marks err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff settings of RetryWithBackoff. Tests shorten RetryDelay.
var (
	RetryDelay    = time.Second
	RetryAttempts = 3
)

// RetryWithBackoff calls fn until it succeeds, returns a permanent error,
// or RetryAttempts calls have failed. The delay doubles after each
// transient failure. The last transient error is returned unwrapped.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := RetryDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) {
			return err
		}
		if attempt >= RetryAttempts {
			return re.Err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
