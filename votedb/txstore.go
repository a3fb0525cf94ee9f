// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votedb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/danielhkuo/one-vote/engine"
	"github.com/danielhkuo/one-vote/models"
	"github.com/danielhkuo/one-vote/txn"
)

// txStore routes one attempt's reads and writes through the session
// bound to the contexts the engine passes in. Driver errors are
// returned unwrapped (or %w-wrapped) so txn's classifier sees their
// labels and codes.
type txStore struct {
	db *mongo.Database
}

var _ engine.TxStore = (*txStore)(nil)

func (t *txStore) Voter(ctx context.Context, voterID string) (*models.Voter, error) {
	var voter models.Voter
	err := t.db.Collection(CollVoters).FindOne(ctx, bson.D{{Key: "_id", Value: voterID}}).Decode(&voter)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, engine.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &voter, nil
}

func (t *txStore) CreateVoter(ctx context.Context, v *models.Voter) error {
	if v.VotedItems == nil {
		v.VotedItems = []string{}
	}
	_, err := t.db.Collection(CollVoters).InsertOne(ctx, v)
	return err
}

func (t *txStore) Item(ctx context.Context, itemID string) (*models.Item, error) {
	var item models.Item
	err := t.db.Collection(CollItems).FindOne(ctx, bson.D{{Key: "_id", Value: itemID}}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, engine.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (t *txStore) InsertVote(ctx context.Context, v *models.Vote) error {
	_, err := t.db.Collection(CollVotes).InsertOne(ctx, v)
	return err
}

func (t *txStore) SetVoteStatus(ctx context.Context, voteID string, fromVersion int, status string, res *models.ConflictResolution) error {
	set := bson.D{{Key: "status", Value: status}}
	if res != nil {
		set = append(set, bson.E{Key: "conflictResolution", Value: res})
	}
	result, err := t.db.Collection(CollVotes).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: voteID}, {Key: "version", Value: fromVersion}},
		bson.D{
			{Key: "$set", Value: set},
			{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}},
		})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// CAS miss: someone moved the version under us. Retrying the
		// whole closure resolves it from a clean slate.
		return txn.MarkTransient(fmt.Errorf("vote %s: version %d no longer current", voteID, fromVersion))
	}
	return nil
}

func (t *txStore) ConfirmedVote(ctx context.Context, voterID, itemID, excludeVoteID string) (*models.Vote, error) {
	var vote models.Vote
	err := t.db.Collection(CollVotes).FindOne(ctx, bson.D{
		{Key: "voterId", Value: voterID},
		{Key: "itemId", Value: itemID},
		{Key: "status", Value: models.VoteStatusConfirmed},
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: excludeVoteID}}},
	}).Decode(&vote)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, engine.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (t *txStore) ApplyVoterVote(ctx context.Context, voterID, itemID string, at time.Time) error {
	// The filter keeps counter and set in lockstep: if the item is
	// already in the set, the whole update is a no-op, so a replay never
	// double-counts.
	_, err := t.db.Collection(CollVoters).UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: voterID},
			{Key: "votedItems", Value: bson.D{{Key: "$ne", Value: itemID}}},
		},
		bson.D{
			{Key: "$addToSet", Value: bson.D{{Key: "votedItems", Value: itemID}}},
			{Key: "$inc", Value: bson.D{{Key: "voteCount", Value: 1}}},
			{Key: "$set", Value: bson.D{{Key: "lastVoteAt", Value: at}}},
		})
	return err
}

func (t *txStore) ApplyItemVote(ctx context.Context, itemID string, at time.Time) error {
	result, err := t.db.Collection(CollItems).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: itemID}},
		bson.D{
			{Key: "$inc", Value: bson.D{
				{Key: "totalVotes", Value: 1},
				{Key: "uniqueVoters", Value: 1},
			}},
			{Key: "$set", Value: bson.D{{Key: "lastVoteAt", Value: at}}},
		})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return engine.ErrNotFound
	}
	return nil
}
