// Package resilience wraps external operations with a result cache and a
// bounded retry loop. Composition order is fixed: the cache is consulted
// before the retry loop runs, and only a successful (possibly retried) result
// is written back. Errors are never cached.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tripflow/tripflow-api/internal/engine/rescache"
	"github.com/tripflow/tripflow-api/internal/types"
	"github.com/tripflow/tripflow-api/pkg/observability"
)

// Operation is one attempt of the wrapped call. Implementations carry their
// own network timeout; the retry loop only adds backoff between attempts.
type Operation[T any] func(ctx context.Context) (T, error)

// Caller executes operations under one stable name with a shared result
// cache and a retry policy. Build one per wrapped operation.
type Caller[T any] struct {
	name   string
	policy Policy
	cache  *rescache.Cache
	ttl    time.Duration
	logger *slog.Logger

	// sleep is swapped in tests to avoid real backoff waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewCaller wires a resilient caller. cache may be nil to disable caching
// (retries still apply). ttl <= 0 falls back to the cache default.
func NewCaller[T any](name string, policy Policy, cache *rescache.Cache, ttl time.Duration, logger *slog.Logger) *Caller[T] {
	if ttl <= 0 {
		ttl = rescache.DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Caller[T]{
		name:   name,
		policy: policy.normalized(),
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		sleep:  sleepCtx,
	}
}

// Do runs op under the caller's policy. args identify the logical call for
// cache key derivation; equal argument sets share one cache entry within the
// TTL window. Transient failures are retried with exponential backoff up to
// MaxAttempts and then surfaced unmodified. Configuration and validation
// failures surface immediately without consuming retries.
func (c *Caller[T]) Do(ctx context.Context, args map[string]any, op Operation[T]) (T, error) {
	var zero T

	key := rescache.Key(c.name, args)
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			if typed, ok := v.(T); ok {
				observability.CacheHits.WithLabelValues(c.name).Inc()
				return typed, nil
			}
			// A foreign value under our key means the key scheme collided;
			// drop it and refetch.
			c.cache.Delete(key)
		}
		observability.CacheMisses.WithLabelValues(c.name).Inc()
	}

	for attempt := 1; ; attempt++ {
		observability.RetryAttempts.WithLabelValues(c.name).Inc()

		result, err := op(ctx)
		if err == nil {
			if c.cache != nil {
				c.cache.SetWithTTL(key, result, c.ttl)
			}
			return result, nil
		}

		if !errors.Is(err, types.ErrTransient) {
			return zero, err
		}
		if attempt >= c.policy.MaxAttempts {
			c.logger.WarnContext(ctx, "retries exhausted",
				slog.String("operation", c.name),
				slog.Int("attempts", attempt),
				slog.Any("error", err))
			return zero, err
		}

		delay := c.policy.Delay(attempt)
		c.logger.DebugContext(ctx, "transient failure, backing off",
			slog.String("operation", c.name),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.Any("error", err))

		if serr := c.sleep(ctx, delay); serr != nil {
			return zero, fmt.Errorf("%s: %w", c.name, serr)
		}
	}
}

// sleepCtx blocks the calling goroutine only; a canceled context cuts the
// backoff short.
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
