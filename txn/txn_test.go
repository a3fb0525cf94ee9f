// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package txn

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

func fastOptions() Options {
	return Options{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    4 * time.Millisecond,
		Timeout:     time.Second,
	}
}

func TestExecuteSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Execute(context.Background(), fastOptions(), func(ctx context.Context) error {
		calls++
		return nil
	}, nil)

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 attempt, got %d", calls)
	}
}

func TestExecuteRetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	err := Execute(context.Background(), fastOptions(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return MarkTransient(errors.New("write conflict"))
		}
		return nil
	}, nil)

	if err != nil {
		t.Fatalf("expected success on attempt 3, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestExecuteExhaustsRetriesWithAttemptCount(t *testing.T) {
	calls := 0
	err := Execute(context.Background(), fastOptions(), func(ctx context.Context) error {
		calls++
		return MarkTransient(errors.New("still conflicting"))
	}, nil)

	var txErr *TransactionError
	if !errors.As(err, &txErr) {
		t.Fatalf("expected TransactionError, got %v", err)
	}
	if txErr.Attempts != 3 {
		t.Errorf("expected 3 attempts reported, got %d", txErr.Attempts)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts run, got %d", calls)
	}
}

func TestExecuteFatalErrorNotRetried(t *testing.T) {
	fatal := errors.New("document validation failed")
	calls := 0
	err := Execute(context.Background(), fastOptions(), func(ctx context.Context) error {
		calls++
		return fatal
	}, nil)

	var txErr *TransactionError
	if !errors.As(err, &txErr) {
		t.Fatalf("expected TransactionError, got %v", err)
	}
	if !errors.Is(err, fatal) {
		t.Errorf("expected wrapped fatal error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 attempt for a fatal error, got %d", calls)
	}
}

func TestExecuteTimeout(t *testing.T) {
	opts := fastOptions()
	opts.Timeout = 50 * time.Millisecond

	start := time.Now()
	err := Execute(context.Background(), opts, func(ctx context.Context) error {
		<-ctx.Done() // never resolves on its own
		return ctx.Err()
	}, nil)
	elapsed := time.Since(start)

	var toErr *TimeoutError
	if !errors.As(err, &toErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if elapsed < 40*time.Millisecond {
		t.Errorf("timed out too early: %v", elapsed)
	}
	if elapsed > time.Second {
		t.Errorf("timed out too late: %v", elapsed)
	}
}

func TestExecuteTimeoutNotRetried(t *testing.T) {
	opts := fastOptions()
	opts.Timeout = 20 * time.Millisecond

	calls := 0
	err := Execute(context.Background(), opts, func(ctx context.Context) error {
		calls++
		<-ctx.Done()
		return ctx.Err()
	}, nil)

	var toErr *TimeoutError
	if !errors.As(err, &toErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a timeout to end the operation, got %d attempts", calls)
	}
}

func TestExecuteUncertainCommitVerified(t *testing.T) {
	uncertain := mongo.CommandError{
		Code:    189,
		Name:    "PrimarySteppedDown",
		Labels:  []string{labelUncertainCommit},
		Message: "primary stepped down during commit",
	}

	calls := 0
	verified := 0
	err := Execute(context.Background(), fastOptions(), func(ctx context.Context) error {
		calls++
		return uncertain
	}, func(ctx context.Context) (bool, error) {
		verified++
		return true, nil
	})

	if err != nil {
		t.Fatalf("expected verified commit to count as success, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected no blind retry after verification, got %d attempts", calls)
	}
	if verified != 1 {
		t.Errorf("expected 1 verification call, got %d", verified)
	}
}

func TestExecuteUncertainCommitNotVerified(t *testing.T) {
	uncertain := mongo.CommandError{
		Code:   189,
		Labels: []string{labelUncertainCommit},
	}

	err := Execute(context.Background(), fastOptions(), func(ctx context.Context) error {
		return uncertain
	}, func(ctx context.Context) (bool, error) {
		return false, nil
	})

	var txErr *TransactionError
	if !errors.As(err, &txErr) {
		t.Fatalf("expected TransactionError when the effect never landed, got %v", err)
	}
}
