// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package txn orchestrates datastore transaction attempts.

Execute wraps an attempt closure in the engine's retry schedule
(exponential backoff, 10% jitter, defaults of 3 attempts / 1s base / 8s
cap) with a 15s per-attempt timeout raced against the in-flight
attempt:

	err := txn.Execute(ctx, txn.Options{}, attempt, verify)

Failure classification:

  - Transient failures (write conflicts, transient-transaction and
    retryable-write labels, host-unreachable, network timeouts,
    duplicate-key losses on the confirmed-vote constraint) re-run the
    entire closure from scratch.
  - Uncertain commit outcomes are never blindly retried: the verify
    callback re-queries the datastore, and a confirmed effect turns the
    attempt into a success.
  - Timeouts surface as TimeoutError, everything else that exhausts the
    schedule as TransactionError with the attempt count.

Session acquisition and release belong to the caller's attempt closure
(see votedb); this package only decides when to run it again.
MarkTransient lets non-mongo callers opt a failure into the retryable
class.
*/
package txn
