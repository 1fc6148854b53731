package indexer

import (
	"context"
	"fmt"
	"time"

	"governorIndexer/internal/storage"
)

const (
	defaultRetryBackoff = 100 * time.Millisecond
	maxRetryBackoff     = 30 * time.Second
)

// retryPolicy bounds how often a store session is requested for one ledger.
// Store calls themselves are never retried.
type retryPolicy struct {
	maxRetries int
	backoff    time.Duration
}

func newRetryPolicy(maxRetries int, backoff time.Duration) retryPolicy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	return retryPolicy{maxRetries: maxRetries, backoff: backoff}
}

// wait returns the pause before the given retry (1-based), doubling each time.
func (p retryPolicy) wait(retry int) time.Duration {
	d := p.backoff
	for i := 1; i < retry && d < maxRetryBackoff; i++ {
		d *= 2
	}
	if d > maxRetryBackoff {
		d = maxRetryBackoff
	}
	return d
}

// acquire requests a session from backend until one is granted, the attempts run
// out, or ctx is done. onFailure sees every failed attempt.
func (p retryPolicy) acquire(ctx context.Context, backend storage.Backend, onFailure func(attempt int, err error)) (storage.Session, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		session, err := backend.Acquire(ctx)
		if err == nil {
			return session, nil
		}
		if onFailure != nil {
			onFailure(attempt, err)
		}
		if attempt > p.maxRetries {
			return nil, fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		}

		timer := time.NewTimer(p.wait(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
