// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"time"

	"github.com/danielhkuo/one-vote/models"
)

// Store is the datastore contract the engine runs against. votedb
// implements it over MongoDB; testutil provides an in-memory
// implementation.
type Store interface {
	// RunTransaction executes work inside one datastore transaction,
	// re-running the whole closure on transient failures. verify is
	// consulted on uncertain commit outcomes to check whether the
	// intended effect already landed.
	RunTransaction(ctx context.Context, work func(ctx context.Context, tx TxStore) error, verify func(ctx context.Context) (bool, error)) error

	// Non-transactional reads.
	VoteByID(ctx context.Context, voteID string) (*models.Vote, error)
	ItemByID(ctx context.Context, itemID string) (*models.Item, error)
	AllItemStats(ctx context.Context) ([]models.ItemStats, error)
	VoteHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error)
	UserVotes(ctx context.Context, voterID string) ([]models.UserVote, error)
}

// TxStore routes all reads and writes of one transaction attempt
// through the attempt's session. Loads return ErrNotFound when the
// document is absent.
type TxStore interface {
	Voter(ctx context.Context, voterID string) (*models.Voter, error)
	CreateVoter(ctx context.Context, v *models.Voter) error
	Item(ctx context.Context, itemID string) (*models.Item, error)
	InsertVote(ctx context.Context, v *models.Vote) error

	// SetVoteStatus transitions a vote out of pending with a
	// compare-and-swap on the version field.
	SetVoteStatus(ctx context.Context, voteID string, fromVersion int, status string, res *models.ConflictResolution) error

	// ConfirmedVote returns the confirmed vote for (voterID, itemID)
	// other than excludeVoteID, or ErrNotFound.
	ConfirmedVote(ctx context.Context, voterID, itemID, excludeVoteID string) (*models.Vote, error)

	// ApplyVoterVote adds itemID to the voter's voted set and bumps the
	// counter; set-add semantics make a replay a no-op.
	ApplyVoterVote(ctx context.Context, voterID, itemID string, at time.Time) error

	// ApplyItemVote bumps the item's totalVotes/uniqueVoters and stamps
	// lastVoteAt.
	ApplyItemVote(ctx context.Context, itemID string, at time.Time) error
}
