// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package engine implements the transactional vote consistency core: the
vote submission pipeline, the conflict resolver, and the cache-backed
read paths.

# Submission

SubmitVote runs one multi-document transaction per attempt:

 1. Load (or create) the voter; the identity key is derived from the
    display name.
 2. Fast-path duplicate check against the voter's denormalized
    voted-item set.
 3. Insert a pending Vote, ask the conflict resolver for a verdict.
 4. Rejected: persist the rejection with its conflictResolution audit
    record and still commit - a duplicate vote is a business outcome,
    not a transaction failure.
 5. Confirmed: persist the confirmation, then atomically bump the
    voter's counter/set and the item's aggregates.
 6. After commit, invalidate every cache key the vote affects.

Self-vote and malformed input fail validation before any transaction is
opened. All datastore access goes through the Store/TxStore contracts;
retry, backoff and uncertain-commit verification live behind
Store.RunTransaction.

# At-most-one-vote

The resolver's in-transaction query is an optimization; the partial
unique index on confirmed (voterId, itemId) pairs is the true source of
truth. An attempt that loses that race retries and self-detects,
recording a clean rejection.

# Reads

AllItemStats, ItemStats, VoteHistory and UserVotes are shielded by the
injected result cache with per-pool TTLs (30s / 30s / 15s / 60s).
Write-path invalidation, not TTL expiry, keeps them fresh after
confirmed votes.
*/
package engine
