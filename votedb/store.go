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
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/danielhkuo/one-vote/engine"
	"github.com/danielhkuo/one-vote/models"
	"github.com/danielhkuo/one-vote/retry"
	"github.com/danielhkuo/one-vote/sweep"
	"github.com/danielhkuo/one-vote/txn"
)

// readRetry is the schedule for non-transactional reads; faster than
// the transaction schedule since reads are cheap to re-issue.
var readRetry = retry.Config{
	MaxAttempts: 3,
	BaseDelay:   100 * time.Millisecond,
	MaxDelay:    time.Second,
	Jitter:      0.1,
}

// Store implements engine.Store and sweep.Store over MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	opts   txn.Options
}

var (
	_ engine.Store = (*Store)(nil)
	_ sweep.Store  = (*Store)(nil)
)

func NewStore(client *mongo.Client, dbName string, opts txn.Options) *Store {
	return &Store{
		client: client,
		db:     client.Database(dbName),
		opts:   opts,
	}
}

func sessionOptions() *options.SessionOptions {
	return options.Session().
		SetDefaultReadConcern(readconcern.Majority()).
		SetDefaultWriteConcern(writeconcern.Majority()).
		SetDefaultReadPreference(readpref.Primary())
}

func transactionOptions() *options.TransactionOptions {
	return options.Transaction().
		SetReadConcern(readconcern.Majority()).
		SetWriteConcern(writeconcern.Majority()).
		SetReadPreference(readpref.Primary())
}

// RunTransaction executes work inside one session-scoped transaction
// attempt, with txn.Execute providing retry, per-attempt timeout and
// uncertain-commit verification. Every attempt acquires a dedicated
// session and releases it on every exit path; the deferred EndSession
// uses a background context so teardown survives a dead attempt
// context.
func (s *Store) RunTransaction(ctx context.Context, work func(ctx context.Context, tx engine.TxStore) error, verify func(ctx context.Context) (bool, error)) error {
	return txn.Execute(ctx, s.opts, func(ctx context.Context) error {
		sess, err := s.client.StartSession(sessionOptions())
		if err != nil {
			return fmt.Errorf("start session: %w", err)
		}
		defer sess.EndSession(context.Background())

		return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
			if err := sess.StartTransaction(transactionOptions()); err != nil {
				return fmt.Errorf("start transaction: %w", err)
			}
			if err := work(sc, &txStore{db: s.db}); err != nil {
				_ = sess.AbortTransaction(context.Background())
				return err
			}
			return sess.CommitTransaction(sc)
		})
	}, verify)
}

// Non-transactional reads

func (s *Store) VoteByID(ctx context.Context, voteID string) (*models.Vote, error) {
	var vote models.Vote
	err := s.read(ctx, "vote by id", func(ctx context.Context) error {
		return s.db.Collection(CollVotes).FindOne(ctx, bson.D{{Key: "_id", Value: voteID}}).Decode(&vote)
	})
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (s *Store) ItemByID(ctx context.Context, itemID string) (*models.Item, error) {
	var item models.Item
	err := s.read(ctx, "item by id", func(ctx context.Context) error {
		return s.db.Collection(CollItems).FindOne(ctx, bson.D{{Key: "_id", Value: itemID}}).Decode(&item)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) AllItemStats(ctx context.Context) ([]models.ItemStats, error) {
	var stats []models.ItemStats
	err := s.read(ctx, "all item stats", func(ctx context.Context) error {
		opts := options.Find().
			SetProjection(bson.D{{Key: "totalVotes", Value: 1}}).
			SetSort(bson.D{{Key: "totalVotes", Value: -1}, {Key: "_id", Value: 1}})
		cur, err := s.db.Collection(CollItems).Find(ctx, bson.D{}, opts)
		if err != nil {
			return err
		}
		stats = stats[:0]
		return cur.All(ctx, &stats)
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) VoteHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	var history []models.HistoryEntry
	err := s.read(ctx, "vote history", func(ctx context.Context) error {
		opts := options.Find().
			SetProjection(bson.D{
				{Key: "voterId", Value: 1},
				{Key: "itemId", Value: 1},
				{Key: "timestamp", Value: 1},
			}).
			SetSort(bson.D{{Key: "timestamp", Value: -1}}).
			SetLimit(int64(limit))
		cur, err := s.db.Collection(CollVotes).Find(ctx,
			bson.D{{Key: "status", Value: models.VoteStatusConfirmed}}, opts)
		if err != nil {
			return err
		}
		history = history[:0]
		return cur.All(ctx, &history)
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

func (s *Store) UserVotes(ctx context.Context, voterID string) ([]models.UserVote, error) {
	var votes []models.UserVote
	err := s.read(ctx, "user votes", func(ctx context.Context) error {
		opts := options.Find().
			SetProjection(bson.D{{Key: "itemId", Value: 1}, {Key: "timestamp", Value: 1}}).
			SetSort(bson.D{{Key: "timestamp", Value: -1}})
		cur, err := s.db.Collection(CollVotes).Find(ctx, bson.D{
			{Key: "voterId", Value: voterID},
			{Key: "status", Value: models.VoteStatusConfirmed},
		}, opts)
		if err != nil {
			return err
		}
		votes = votes[:0]
		return cur.All(ctx, &votes)
	})
	if err != nil {
		return nil, err
	}
	return votes, nil
}

// read runs a read op under the read retry schedule, mapping
// no-document to engine.ErrNotFound and wrapping final driver failures
// in DatabaseError.
func (s *Store) read(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := retry.Do(ctx, readRetry, fn, txn.IsTransient)
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return engine.ErrNotFound
	}
	return &DatabaseError{Op: op, Err: err}
}

// sweep.Store

func (s *Store) Voters(ctx context.Context) ([]models.Voter, error) {
	var voters []models.Voter
	err := s.read(ctx, "voters", func(ctx context.Context) error {
		cur, err := s.db.Collection(CollVoters).Find(ctx, bson.D{})
		if err != nil {
			return err
		}
		voters = voters[:0]
		return cur.All(ctx, &voters)
	})
	if err != nil {
		return nil, err
	}
	return voters, nil
}

func (s *Store) Items(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	err := s.read(ctx, "items", func(ctx context.Context) error {
		cur, err := s.db.Collection(CollItems).Find(ctx, bson.D{})
		if err != nil {
			return err
		}
		items = items[:0]
		return cur.All(ctx, &items)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ConfirmedVotes(ctx context.Context) ([]models.Vote, error) {
	var votes []models.Vote
	err := s.read(ctx, "confirmed votes", func(ctx context.Context) error {
		cur, err := s.db.Collection(CollVotes).Find(ctx,
			bson.D{{Key: "status", Value: models.VoteStatusConfirmed}})
		if err != nil {
			return err
		}
		votes = votes[:0]
		return cur.All(ctx, &votes)
	})
	if err != nil {
		return nil, err
	}
	return votes, nil
}

// RejectVote marks a confirmed vote rejected with a resolution reason.
// Used only by the consistency sweep for orphaned votes.
func (s *Store) RejectVote(ctx context.Context, voteID, reason string) error {
	res, err := s.db.Collection(CollVotes).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: voteID}, {Key: "status", Value: models.VoteStatusConfirmed}},
		bson.D{
			{Key: "$set", Value: bson.D{
				{Key: "status", Value: models.VoteStatusRejected},
				{Key: "conflictResolution", Value: models.ConflictResolution{
					ResolutionType: models.ResolutionReject,
					Reason:         reason,
					ResolvedAt:     time.Now().UTC(),
				}},
			}},
			{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}},
		})
	if err != nil {
		return &DatabaseError{Op: "reject vote", Err: err}
	}
	if res.MatchedCount == 0 {
		return engine.ErrNotFound
	}
	return nil
}

// SetVoterTally overwrites a voter's denormalized tally with the
// recomputed truth.
func (s *Store) SetVoterTally(ctx context.Context, voterID string, votedItems []string, count int) error {
	if votedItems == nil {
		votedItems = []string{}
	}
	res, err := s.db.Collection(CollVoters).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: voterID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "votedItems", Value: votedItems},
			{Key: "voteCount", Value: count},
		}}})
	if err != nil {
		return &DatabaseError{Op: "set voter tally", Err: err}
	}
	if res.MatchedCount == 0 {
		return engine.ErrNotFound
	}
	return nil
}

// SetItemTally overwrites an item's aggregate counters with the
// recomputed truth.
func (s *Store) SetItemTally(ctx context.Context, itemID string, total, unique int) error {
	res, err := s.db.Collection(CollItems).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: itemID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "totalVotes", Value: total},
			{Key: "uniqueVoters", Value: unique},
		}}})
	if err != nil {
		return &DatabaseError{Op: "set item tally", Err: err}
	}
	if res.MatchedCount == 0 {
		return engine.ErrNotFound
	}
	return nil
}
