package retry

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/roostaq/irasutoya-images-english/internal/logging"
)

// Breaker guards one remote service. When the service keeps failing the
// breaker opens and calls fail fast instead of burning the retry budget
// against a host that is down. An open breaker is a permanent failure from
// the caller's point of view; the next run picks the records up again.
type Breaker struct {
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// NewBreaker creates a breaker named after the service it protects. It trips
// after five consecutive transient failures and probes again after the
// cooldown.
func NewBreaker(name string, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = logging.NewNop()
	}
	b := &Breaker{logger: logger}
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Only failures that look like service trouble count toward
		// tripping; a 404 on one image says nothing about the host.
		IsSuccessful: func(err error) bool {
			return err == nil || !IsTransient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"service", name,
				"from", from.String(),
				"to", to.String())
		},
	})
	return b
}

// Execute runs op through the breaker. When the breaker is open the
// operation is not attempted and ErrOpenState is returned, which IsTransient
// classifies as permanent so retry loops stop immediately.
func (b *Breaker) Execute(op func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, op()
	})
	return err
}

// IsOpen reports whether err came from an open or overloaded breaker rather
// than the operation itself.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
