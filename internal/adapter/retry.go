package adapter

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// retryable reports whether a request outcome warrants another attempt:
// transport-level failures (connection refused, reset, timeout) and the
// statuses mapped to ErrServerUnavailable. Everything else, including auth
// and decode failures, fails fast.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, ErrServerUnavailable) || errors.Is(err, errTransport)
}

var errTransport = errors.New("transport failure")

// backoffDelay returns the pause before the given retry (attempt counts
// from 1): exponential growth from base, bounded by cap, with half-range
// jitter so replicas recovering from the same outage do not stampede.
func backoffDelay(attempt int, base, limit time.Duration) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	delay := base << (attempt - 1)
	if limit > 0 && (delay > limit || delay <= 0) {
		delay = limit
	}
	half := delay / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}

// sleepCtx pauses for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
