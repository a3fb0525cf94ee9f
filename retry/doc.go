// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package retry is the single shared retry/backoff primitive.

Do runs an operation with exponential backoff and jitter:

	err := retry.Do(ctx, retry.Config{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    8 * time.Second,
		Jitter:      0.1,
	}, op, isTransient)

The retryable predicate decides which failures are worth another
attempt; anything it rejects is returned immediately. Jitter randomizes
each delay upward by up to the configured fraction to avoid
synchronized retry storms. Sleeps respect context cancellation.

All retrying in the repository (transaction attempts included) routes
through this package; nothing else implements its own backoff loop.
*/
package retry
