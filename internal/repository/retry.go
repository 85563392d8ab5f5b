package repository

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/spec-kit/ecomarket-assistant/pkg/util/errorutil"
)

// RetryPolicy bounds write attempts against a contended store.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetryPolicy matches the store defaults.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Backoff: 100 * time.Millisecond}

// WithRetry runs fn up to the configured number of attempts, backing off
// between tries. pgx.ErrNoRows is terminal and never retried. When every
// attempt fails the error surfaces as STORE_CONTENTION.
func WithRetry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error) error {
	attempts := policy.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var last error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoffDelay(policy.Backoff, i)):
			}
		}
		last = fn(ctx)
		if last == nil {
			return nil
		}
		if errors.Is(last, pgx.ErrNoRows) {
			return last
		}
	}
	return apperrors.NewStoreContention(last)
}

// backoffDelay grows linearly with the attempt number and jitters up to half
// a base interval so concurrent writers desynchronize.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	delay := base * time.Duration(attempt)
	if base <= 0 {
		return delay
	}
	return delay + time.Duration(rand.Int63n(int64(base)/2+1))
}
