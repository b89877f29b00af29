package pipeline

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/mdchapter/internal/pathstore"
)

const MaxRetries = 3

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// retry runs fn up to MaxRetries times while it fails with a retryable
// pathstore error. onRetry is called before each wait.
func retry(ctx context.Context, log *slog.Logger, backoff func(int) time.Duration, op string, onRetry func(), fn func() error) error {
	var err error
	for attempt := range MaxRetries {
		err = fn()
		if err == nil || !pathstore.IsRetryable(err) || attempt == MaxRetries-1 {
			return err
		}
		log.Warn("retryable store error", "op", op, "attempt", attempt, "error", err)
		if onRetry != nil {
			onRetry()
		}
		select {
		case <-time.After(backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
