// Package retry provides bounded retries with exponential backoff for the
// remote calls the enrichment pipeline makes. Failures are split into
// transient (worth another attempt) and permanent (retrying cannot help);
// only transient ones consume retry budget.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"time"

	"github.com/roostaq/irasutoya-images-english/internal/logging"
)

const (
	// DefaultMaxRetries bounds attempts per operation: one try plus this
	// many retries.
	DefaultMaxRetries = 3

	defaultBaseDelay = 1 * time.Second
	defaultMaxDelay  = 30 * time.Second
)

// TransientError marks failures that may succeed on a later attempt. Error
// types across the pipeline implement it to opt into retrying.
type TransientError interface {
	error
	Transient() bool
}

// ExhaustedError wraps the final failure after the retry budget ran out.
type ExhaustedError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Policy drives retry behavior. The zero value is not usable; construct with
// NewPolicy.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	logger *slog.Logger
}

// NewPolicy returns a policy allowing maxRetries retries after the first
// attempt. Values below zero fall back to DefaultMaxRetries.
func NewPolicy(maxRetries int, logger *slog.Logger) *Policy {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Policy{
		MaxRetries: maxRetries,
		BaseDelay:  defaultBaseDelay,
		MaxDelay:   defaultMaxDelay,
		logger:     logger,
	}
}

// Do runs op, retrying transient failures with exponential backoff until it
// succeeds, a permanent failure occurs, the context is done, or the retry
// budget is spent. The returned error on exhaustion is an *ExhaustedError
// wrapping the last failure.
func (p *Policy) Do(ctx context.Context, name string, op func() error) error {
	var lastErr error
	attempts := p.MaxRetries + 1

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return &ExhaustedError{Op: name, Attempts: attempt - 1, Err: lastErr}
			}
			return err
		}

		err := op()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsTransient(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		delay := p.backoff(attempt)
		p.logger.Warn("transient failure, will retry",
			"op", name,
			"attempt", attempt,
			"max_attempts", attempts,
			"delay", delay,
			"error", err)

		if err := sleepContext(ctx, delay); err != nil {
			return &ExhaustedError{Op: name, Attempts: attempt, Err: lastErr}
		}
	}

	return &ExhaustedError{Op: name, Attempts: attempts, Err: lastErr}
}

// backoff computes the delay before the next attempt: base doubled per
// attempt, capped, with up to 25% random jitter so parallel workers do not
// retry in lockstep.
func (p *Policy) backoff(attempt int) time.Duration {
	delay := p.BaseDelay * time.Duration(1<<uint(attempt-1))
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(delay)/4 + 1))
	return delay + jitter
}

// IsTransient reports whether err is worth retrying. Context cancellation is
// never transient: the run is shutting down.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var transient TransientError
	if errors.As(err, &transient) {
		return transient.Transient()
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
