// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votedb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/danielhkuo/one-vote/models"
)

// Collection names
const (
	CollVoters = "voters"
	CollItems  = "items"
	CollVotes  = "votes"
)

// Connect opens a client with majority read/write concern and primary
// read preference, and verifies connectivity with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetReadConcern(readconcern.Majority()).
		SetWriteConcern(writeconcern.Majority()).
		SetReadPreference(readpref.Primary())

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates all collection indexes. Safe to call on every
// startup; existing indexes are left alone.
//
// The partial unique index on confirmed (voterId, itemId) pairs is the
// at-most-one-vote backstop: rejected and pending attempts stay behind
// as audit records, so the constraint is scoped to confirmed status
// rather than being a global unique pair constraint.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollVotes).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "voterId", Value: 1}, {Key: "itemId", Value: 1}},
			Options: options.Index().
				SetName("uniq_confirmed_pair").
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "status", Value: models.VoteStatusConfirmed}}),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("status_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "voterId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("voter_status"),
		},
		{
			Keys:    bson.D{{Key: "itemId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("item_status"),
		},
	})
	if err != nil {
		return fmt.Errorf("create vote indexes: %w", err)
	}

	_, err = db.Collection(CollItems).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}},
		Options: options.Index().SetName("status"),
	})
	if err != nil {
		return fmt.Errorf("create item indexes: %w", err)
	}
	return nil
}

// DatabaseError is a connectivity-level failure from the driver on the
// non-transactional read path, surfaced after its own retry schedule.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database %s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }
