package openfda

import (
	"context"
	"errors"
	"time"
)

// permanentError stops retry early.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return &permanentError{err: err}
}

// retry runs fn up to attempts times with exponential backoff between
// attempts, capped at max. Errors wrapped with permanent are not retried.
func retry(ctx context.Context, attempts int, initial, max time.Duration, fn func() error) error {
	d := initial
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return ctx.Err()
			}
			d *= 2
			if d > max {
				d = max
			}
		}

		err = fn()
		if err == nil {
			return nil
		}

		var pe *permanentError
		if errors.As(err, &pe) {
			return pe.err
		}
	}
	return err
}
