// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package txn

import (
	"fmt"
	"time"
)

// TransactionError is a commit/abort failure that survived the retry
// schedule. It carries the attempt count so callers can distinguish
// "gave up after retries" from "failed outright".
type TransactionError struct {
	Attempts int
	Err      error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// TimeoutError means the per-attempt deadline expired before the
// datastore answered. Distinct from TransactionError so callers can
// tell "the datastore said no" from "we gave up waiting".
type TimeoutError struct {
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("transaction timed out after %s", e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Err }
