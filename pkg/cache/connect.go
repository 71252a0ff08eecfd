package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable is returned when a backend cannot be reached at startup.
var ErrUnavailable = errors.New("cache backend unavailable")

// Connection retry policy for the network backends.
var (
	connectAttempts = 3
	connectDelay    = time.Second
	connectTimeout  = 5 * time.Second
)

// permanentError marks a connection error that retrying cannot fix, such
// as a malformed URI.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return &permanentError{err: err}
}

// connect runs fn until it succeeds, with a timeout per attempt and a
// doubling delay between attempts. Errors are retried unless wrapped with
// permanent.
func connect(ctx context.Context, backend string, fn func(ctx context.Context) error) error {
	delay := connectDelay
	var last error
	for attempt := 1; ; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		err := fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}

		var p *permanentError
		if errors.As(err, &p) {
			return fmt.Errorf("%s: %w", backend, p.err)
		}
		last = err
		if attempt >= connectAttempts {
			return fmt.Errorf("%s: %w after %d attempts: %v", backend, ErrUnavailable, attempt, last)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
}
