// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package txn

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"marked transient", MarkTransient(errors.New("boom")), true},
		{"wrapped marked transient", fmt.Errorf("attempt: %w", MarkTransient(errors.New("boom"))), true},
		{"transient transaction label", mongo.CommandError{Code: 251, Labels: []string{labelTransientTransaction}}, true},
		{"retryable write label", mongo.CommandError{Code: 11602, Labels: []string{labelRetryableWrite}}, true},
		{"write conflict code", mongo.CommandError{Code: codeWriteConflict, Name: "WriteConflict"}, true},
		{"host unreachable code", mongo.CommandError{Code: codeHostUnreachable, Name: "HostUnreachable"}, true},
		{"network timeout code", mongo.CommandError{Code: codeNetworkTimeout, Name: "NetworkTimeout"}, true},
		{"unlabeled server error", mongo.CommandError{Code: 121, Name: "DocumentValidationFailure"}, false},
		{
			"duplicate key write exception",
			mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}}},
			true,
		},
		{"context canceled", context.Canceled, false},
		{"context deadline", context.DeadlineExceeded, false},
		{"timeout error", &TimeoutError{Err: context.DeadlineExceeded}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.transient {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.transient)
			}
		})
	}
}

func TestIsUncertainCommit(t *testing.T) {
	uncertain := mongo.CommandError{Code: 189, Labels: []string{labelUncertainCommit}}
	if !IsUncertainCommit(uncertain) {
		t.Error("expected UnknownTransactionCommitResult label to read as uncertain")
	}
	if IsUncertainCommit(mongo.CommandError{Code: 112}) {
		t.Error("write conflict is not an uncertain commit")
	}
	if IsUncertainCommit(errors.New("boom")) {
		t.Error("plain error is not an uncertain commit")
	}
}

func TestMarkTransientNil(t *testing.T) {
	if MarkTransient(nil) != nil {
		t.Error("MarkTransient(nil) should stay nil")
	}
}
