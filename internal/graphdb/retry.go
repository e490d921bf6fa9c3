package graphdb

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// RetryPolicy is a bounded retry with a fixed delay between attempts.
// Sleep and IsRetryable are swappable so tests never wait or need a server.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Sleep       func(ctx context.Context, d time.Duration) error
	IsRetryable func(err error) bool
}

// DefaultRetryPolicy is 5 attempts, 3 seconds apart, retrying only while the
// database is unreachable.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		Delay:       3 * time.Second,
	}
}

// RetryExhaustedError is returned by Do when every attempt failed with a
// retryable error. Err is the last failure.
type RetryExhaustedError struct {
	Attempts int
	Err      error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Err }

// Do runs op until it succeeds, fails with a non-retryable error, or
// MaxAttempts is reached. notify, if set, is called after each retryable
// failure that will be followed by another attempt.
func (p RetryPolicy) Do(ctx context.Context, op func(attempt int) error, notify func(attempt int, err error)) error {
	attempts := max(p.MaxAttempts, 1)
	var lastErr error

	for i := 1; i <= attempts; i++ {
		err := op(i)
		if err == nil {
			return nil
		}
		if !p.retryable(err) {
			return err
		}
		lastErr = err

		if i == attempts {
			break
		}
		if notify != nil {
			notify(i, err)
		}
		if err := p.sleep(ctx, p.Delay); err != nil {
			return err
		}
	}

	return &RetryExhaustedError{Attempts: attempts, Err: lastErr}
}

func (p RetryPolicy) retryable(err error) bool {
	if p.IsRetryable != nil {
		return p.IsRetryable(err)
	}
	return IsUnavailable(err)
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return sleepContext(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsUnavailable reports whether err means the server could not be reached,
// as opposed to a rejected login or a malformed URI.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if neo4j.IsConnectivityError(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
