// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/one-vote/cache"
	"github.com/danielhkuo/one-vote/identity"
	"github.com/danielhkuo/one-vote/models"
)

// Engine is the transactional vote pipeline plus its cache-backed read
// paths. Construct one at startup and inject it; the cache instance has
// no lifecycle beyond process start/stop.
type Engine struct {
	store   Store
	results *cache.Cache
}

func New(store Store, results *cache.Cache) *Engine {
	if results == nil {
		results = cache.New(0)
	}
	return &Engine{store: store, results: results}
}

// SubmitVote casts one vote by voterID (a display name; the identity
// key is derived from it) for itemID. ownerID, when the caller knows
// it, enables the self-vote check before any transaction is opened;
// otherwise the item's recorded owner is used inside the transaction.
//
// The outcome is a tagged result: confirmed and rejected are both
// terminal business outcomes, never errors. Errors mean validation
// failures or datastore failures that survived the retry schedule.
func (e *Engine) SubmitVote(ctx context.Context, voterID, itemID, ownerID string) (models.SubmitResult, error) {
	displayName := strings.TrimSpace(voterID)
	if displayName == "" {
		return models.SubmitResult{}, &ValidationError{Field: "voter_id", Reason: "is required"}
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return models.SubmitResult{}, &ValidationError{Field: "item_id", Reason: "is required"}
	}
	voterKey := identity.NormalizeKey(displayName)
	if voterKey == "" {
		return models.SubmitResult{}, &ValidationError{Field: "voter_id", Reason: "contains no usable characters"}
	}
	if ownerID != "" && identity.NormalizeKey(ownerID) == voterKey {
		return models.SubmitResult{}, translateSubmitErr(errSelfVote)
	}

	var (
		result models.SubmitResult
		voteID string
	)
	work := func(ctx context.Context, tx TxStore) error {
		// The whole closure re-runs from a clean slate on retry.
		result = models.SubmitResult{}
		voteID = ""

		item, err := tx.Item(ctx, itemID)
		if errors.Is(err, ErrNotFound) {
			return errItemNotFound
		}
		if err != nil {
			return fmt.Errorf("load item: %w", err)
		}
		if item.Status == models.ItemStatusInactive {
			return errItemInactive
		}
		owner := ownerID
		if owner == "" {
			owner = item.OwnerID
		}
		if owner != "" && identity.NormalizeKey(owner) == voterKey {
			return errSelfVote
		}

		voter, err := tx.Voter(ctx, voterKey)
		switch {
		case errors.Is(err, ErrNotFound):
			voter = &models.Voter{ID: voterKey, DisplayName: displayName, VotedItems: []string{}}
			if err := tx.CreateVoter(ctx, voter); err != nil {
				return fmt.Errorf("create voter: %w", err)
			}
		case err != nil:
			return fmt.Errorf("load voter: %w", err)
		}

		// Fast-path duplicate check on the denormalized set, ahead of
		// the resolver's query.
		if voter.HasVoted(itemID) {
			result = models.SubmitResult{Status: models.VoteStatusRejected, Reason: ReasonAlreadyVoted}
			return nil
		}

		now := time.Now().UTC()
		vote := &models.Vote{
			ID:        uuid.NewString(),
			VoterID:   voterKey,
			ItemID:    itemID,
			OwnerID:   owner,
			Timestamp: now,
			Status:    models.VoteStatusPending,
			Version:   1,
		}
		if err := tx.InsertVote(ctx, vote); err != nil {
			return fmt.Errorf("insert vote: %w", err)
		}

		res, err := ResolveConflict(ctx, tx, vote)
		if err != nil {
			return err
		}
		if res.Action == models.ResolutionReject {
			// A rejected vote is a legitimate terminal state; the
			// transaction still commits so the audit record persists.
			cr := &models.ConflictResolution{
				OriginalVoteID: res.Original.ID,
				ResolutionType: models.ResolutionReject,
				Reason:         ReasonAlreadyVoted,
				ResolvedAt:     now,
			}
			if err := tx.SetVoteStatus(ctx, vote.ID, vote.Version, models.VoteStatusRejected, cr); err != nil {
				return fmt.Errorf("reject vote: %w", err)
			}
			voteID = vote.ID
			result = models.SubmitResult{Status: models.VoteStatusRejected, VoteID: vote.ID, Reason: ReasonAlreadyVoted}
			return nil
		}

		if err := tx.SetVoteStatus(ctx, vote.ID, vote.Version, models.VoteStatusConfirmed, nil); err != nil {
			return fmt.Errorf("confirm vote: %w", err)
		}
		if err := tx.ApplyVoterVote(ctx, voterKey, itemID, now); err != nil {
			return fmt.Errorf("update voter tally: %w", err)
		}
		if err := tx.ApplyItemVote(ctx, itemID, now); err != nil {
			return fmt.Errorf("update item tally: %w", err)
		}
		voteID = vote.ID
		result = models.SubmitResult{Status: models.VoteStatusConfirmed, VoteID: vote.ID}
		return nil
	}

	verify := func(ctx context.Context) (bool, error) {
		if voteID == "" {
			// Nothing was written; an empty transaction is trivially durable.
			return true, nil
		}
		v, err := e.store.VoteByID(ctx, voteID)
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return v.Status == result.Status, nil
	}

	if err := e.store.RunTransaction(ctx, work, verify); err != nil {
		return models.SubmitResult{}, translateSubmitErr(err)
	}

	if result.Status == models.VoteStatusConfirmed {
		e.invalidateAfterConfirm(voterKey, itemID)
	}
	return result, nil
}

// invalidateAfterConfirm drops every cache entry a confirmed vote
// affects, so reads reflect the new tally ahead of TTL expiry.
func (e *Engine) invalidateAfterConfirm(voterKey, itemID string) {
	e.results.Delete(keyUserVotes(voterKey))
	e.results.Delete(keyItemStats(itemID))
	e.results.Delete(keyAllItemStats)
	e.results.Delete(keyHistory)
}
