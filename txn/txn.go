// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package txn

import (
	"context"
	"errors"
	"time"

	"github.com/danielhkuo/one-vote/retry"
)

// Options controls the transaction attempt loop.
type Options struct {
	MaxAttempts int           // default 3
	BaseDelay   time.Duration // default 1s
	MaxDelay    time.Duration // default 8s
	Timeout     time.Duration // per-attempt deadline, default 15s
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = time.Second
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 8 * time.Second
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	return o
}

// Execute runs attempt under the retry schedule, re-running the whole
// closure from scratch on transient failures (transactions cannot be
// partially replayed). Each attempt races a per-attempt timeout; on
// expiry the attempt is abandoned and the call fails with TimeoutError.
//
// When an attempt fails with an uncertain commit outcome, verify is
// consulted instead of a blind retry: if it confirms the intended
// effect already landed, the attempt counts as a success. verify may be
// nil when the caller has no way to check (the uncertain outcome is
// then treated as a failure).
//
// Non-timeout failures that survive the retry schedule come back
// wrapped in TransactionError with the attempt count.
func Execute(ctx context.Context, opts Options, attempt func(ctx context.Context) error, verify func(ctx context.Context) (bool, error)) error {
	opts = opts.withDefaults()

	attempts := 0
	err := retry.Do(ctx, retry.Config{
		MaxAttempts: opts.MaxAttempts,
		BaseDelay:   opts.BaseDelay,
		MaxDelay:    opts.MaxDelay,
		Jitter:      0.1,
	}, func(ctx context.Context) error {
		attempts++
		return runAttempt(ctx, opts.Timeout, attempt, verify)
	}, IsTransient)

	if err == nil {
		return nil
	}
	var te *TimeoutError
	if errors.As(err, &te) {
		return err
	}
	return &TransactionError{Attempts: attempts, Err: err}
}

// runAttempt races one attempt against the per-attempt deadline. The
// underlying datastore may still complete a write after the deadline
// fires, which is why uncertain-commit verification exists at all.
func runAttempt(ctx context.Context, timeout time.Duration, attempt func(ctx context.Context) error, verify func(ctx context.Context) (bool, error)) error {
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- attempt(actx)
	}()

	var err error
	select {
	case err = <-done:
	case <-actx.Done():
		// Abandoned; the closure's own deferred cleanup still runs when
		// the canceled context unblocks it.
		return &TimeoutError{Timeout: timeout, Err: actx.Err()}
	}

	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Timeout: timeout, Err: err}
	}
	if IsUncertainCommit(err) && verify != nil {
		// Detached context: the commit may have landed even though the
		// caller's attempt window is spent.
		vctx, vcancel := context.WithTimeout(context.Background(), timeout)
		defer vcancel()
		if landed, verr := verify(vctx); verr == nil && landed {
			return nil
		}
	}
	return err
}
