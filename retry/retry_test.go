// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient")
var errPermanent = errors.New("permanent")

func fastConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    4 * time.Millisecond,
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	}, func(err error) bool { return errors.Is(err, errTransient) })

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		return errPermanent
	}, func(err error) bool { return errors.Is(err, errTransient) })

	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 attempt for a permanent error, got %d", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		return errTransient
	}, func(err error) bool { return true })

	if !errors.Is(err, errTransient) {
		t.Fatalf("expected last transient error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestDoNilPredicateRetriesEverything(t *testing.T) {
	calls := 0
	_ = Do(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		return errPermanent
	}, nil)

	if calls != 3 {
		t.Errorf("expected 3 attempts with nil predicate, got %d", calls)
	}
}

func TestDoStopsWhenContextCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := Config{MaxAttempts: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Do(ctx, cfg, func(ctx context.Context) error {
			calls++
			return errTransient
		}, func(err error) bool { return true })
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, errTransient) {
			t.Fatalf("expected last attempt error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Do did not return after context cancellation")
	}
	if calls != 1 {
		t.Errorf("expected 1 attempt before cancellation, got %d", calls)
	}
}

func TestDelayDoublesAndCaps(t *testing.T) {
	cfg := Config{BaseDelay: time.Second, MaxDelay: 8 * time.Second, Multiplier: 2}

	expected := []time.Duration{
		time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		8 * time.Second, // capped
	}
	for i, want := range expected {
		if got := cfg.Delay(i + 1); got != want {
			t.Errorf("Delay(%d) = %v, want %v", i+1, got, want)
		}
	}
}

func TestDelayJitterBounds(t *testing.T) {
	cfg := Config{BaseDelay: time.Second, MaxDelay: 8 * time.Second, Multiplier: 2, Jitter: 0.1}

	for i := 0; i < 100; i++ {
		d := cfg.Delay(2)
		if d < 2*time.Second || d > 2200*time.Millisecond {
			t.Fatalf("jittered delay %v outside [2s, 2.2s]", d)
		}
	}
}
