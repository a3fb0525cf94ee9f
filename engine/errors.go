// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by store loads for absent documents.
var ErrNotFound = errors.New("not found")

// ValidationError is a malformed or inadmissible input, rejected before
// (or instead of) any datastore write. Not retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Rejection reason shown for duplicate votes. The dominant expected
// error in practice, so the wording is user-facing.
const ReasonAlreadyVoted = "already voted for this item"

// Sentinels raised inside the transaction closure and translated into
// ValidationError at the pipeline boundary.
var (
	errSelfVote     = errors.New("submitter cannot vote for their own item")
	errItemNotFound = errors.New("item not found")
	errItemInactive = errors.New("item is not active")
)

// translateSubmitErr maps in-transaction sentinels to field-level
// validation errors and lets everything else (TransactionError,
// TimeoutError, driver failures) pass through untouched.
func translateSubmitErr(err error) error {
	switch {
	case errors.Is(err, errSelfVote):
		return &ValidationError{Field: "owner_id", Reason: "matches voter: a submitter cannot vote for their own item"}
	case errors.Is(err, errItemNotFound):
		return &ValidationError{Field: "item_id", Reason: "does not reference a known item"}
	case errors.Is(err, errItemInactive):
		return &ValidationError{Field: "item_id", Reason: "references an inactive item"}
	}
	return err
}
