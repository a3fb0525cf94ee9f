// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package txn

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// Server error codes treated as transient.
const (
	codeHostUnreachable = 6
	codeNetworkTimeout  = 89
	codeWriteConflict   = 112
)

// Error labels the server attaches to transaction failures.
const (
	labelTransientTransaction = "TransientTransactionError"
	labelRetryableWrite       = "RetryableWriteError"
	labelUncertainCommit      = "UnknownTransactionCommitResult"
)

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// MarkTransient wraps err so IsTransient reports it retryable. For
// callers whose failures carry no driver labels.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err belongs to the retryable failure
// class: write conflicts, transient-transaction and retryable-write
// labels, host-unreachable, network timeouts, and duplicate-key hits on
// the confirmed-vote constraint (the losing attempt re-runs and records
// a clean rejection). Per-attempt timeouts and context cancellation are
// fatal, never retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TimeoutError
	if errors.As(err, &te) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var marked *transientError
	if errors.As(err, &marked) {
		return true
	}

	var se mongo.ServerError
	if errors.As(err, &se) {
		if se.HasErrorLabel(labelTransientTransaction) || se.HasErrorLabel(labelRetryableWrite) {
			return true
		}
		if se.HasErrorCode(codeWriteConflict) ||
			se.HasErrorCode(codeHostUnreachable) ||
			se.HasErrorCode(codeNetworkTimeout) {
			return true
		}
	}

	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	return false
}

// IsUncertainCommit reports whether the driver could not tell if the
// commit landed. Blind retry is wrong here; the caller must verify the
// intended effect instead.
func IsUncertainCommit(err error) bool {
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorLabel(labelUncertainCommit)
	}
	return false
}
