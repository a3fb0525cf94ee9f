// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielhkuo/one-vote/models"
)

// Resolution is the conflict resolver's verdict on a candidate vote.
type Resolution struct {
	Resolved bool
	Action   string       // empty to proceed, models.ResolutionReject to reject
	Original *models.Vote // the already-confirmed vote when rejecting
}

// ResolveConflict decides whether candidate may confirm: it queries for
// any other confirmed vote by the same voter for the same item. This
// read-then-decide step runs inside the same transaction as the
// eventual write; the partial unique index on confirmed votes remains
// the backstop, the resolver just avoids relying on a late
// constraint-violation error.
func ResolveConflict(ctx context.Context, tx TxStore, candidate *models.Vote) (Resolution, error) {
	original, err := tx.ConfirmedVote(ctx, candidate.VoterID, candidate.ItemID, candidate.ID)
	if errors.Is(err, ErrNotFound) {
		return Resolution{Resolved: true}, nil
	}
	if err != nil {
		return Resolution{}, fmt.Errorf("query confirmed vote: %w", err)
	}
	return Resolution{Resolved: true, Action: models.ResolutionReject, Original: original}, nil
}
