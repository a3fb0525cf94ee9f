// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package retry

import (
	"context"
	"math/rand"
	"time"
)

// Config controls retry behaviour.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	Jitter      float64 // fraction of the delay added at random, e.g. 0.1 for up to 10%
}

// withDefaults fills zero fields with the engine-wide defaults.
func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Second
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 8 * time.Second
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	if c.Jitter < 0 {
		c.Jitter = 0
	}
	return c
}

// Delay returns the backoff delay before the given 1-indexed retry:
// base * multiplier^(attempt-1), capped at MaxDelay, plus jitter.
func (c Config) Delay(attempt int) time.Duration {
	c = c.withDefaults()
	d := c.BaseDelay
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * c.Multiplier)
		if d >= c.MaxDelay {
			d = c.MaxDelay
			break
		}
	}
	if d > c.MaxDelay {
		d = c.MaxDelay
	}
	if c.Jitter > 0 {
		d += time.Duration(rand.Float64() * c.Jitter * float64(d))
	}
	return d
}

// Do runs op up to cfg.MaxAttempts times, sleeping between attempts
// with exponential backoff. It stops early when op succeeds, when
// retryable reports the failure as permanent, or when ctx is done
// during a backoff sleep. The last error from op is returned.
func Do(ctx context.Context, cfg Config, op func(ctx context.Context) error, retryable func(error) bool) error {
	cfg = cfg.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == cfg.MaxAttempts {
			break
		}
		if retryable != nil && !retryable(err) {
			break
		}

		if err := sleep(ctx, cfg.Delay(attempt)); err != nil {
			return lastErr
		}
	}
	return lastErr
}

// sleep blocks for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
