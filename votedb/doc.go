// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package votedb implements the engine's datastore contracts over
MongoDB.

# Bootstrap

Connect opens a client with majority read/write concern and primary
read preference; EnsureIndexes creates the collection indexes and is
safe to call on every startup:

	client, err := votedb.Connect(ctx, cfg.MongoURI)
	...
	err = votedb.EnsureIndexes(ctx, client.Database(cfg.Database))

# Collections and indexes

  - voters: keyed by identity key (_id)
  - items: keyed by item id, indexed on status
  - votes: partial UNIQUE index on (voterId, itemId) scoped to
    status="confirmed" - the at-most-one-vote backstop - plus
    status/timestamp and per-voter, per-item lookup indexes

# Transactions

Store.RunTransaction acquires a dedicated session per attempt and
releases it unconditionally on every exit path. Attempt orchestration
(retry, per-attempt timeout, uncertain-commit verification) lives in
the txn package; this package contributes only the session mechanics
and the document operations.

Vote status transitions use a compare-and-swap on the version field.
Non-transactional reads run under a lighter retry schedule and surface
terminal driver failures as DatabaseError.
*/
package votedb
