// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain documents and the request/response
types shared across the engine and the HTTP layer.

# Documents

Three document types map to the three datastore collections:

  - Voter: identity key, display name, denormalized voted-item set,
    monotonic vote counter
  - Item: ownership, active/inactive status, aggregate vote counters
  - Vote: one record per vote attempt with a pending/confirmed/rejected
    lifecycle and an optional conflict-resolution audit record

# Invariants

For every voter, VoteCount equals the size of VotedItems. For every
(voter, item) pair, at most one Vote is confirmed at any time; the
partial unique index on confirmed votes is the backstop. For every
item, TotalVotes equals the count of confirmed votes referencing it
(one voter contributes exactly one vote, so TotalVotes and UniqueVoters
track together).

# Lifecycle

A Vote is inserted pending inside a transaction and transitions exactly
once, to confirmed or rejected. Rejected and pending attempts are kept
as audit records; a correction is always a new record.

SubmitResult is the tagged outcome type for submissions: rejected votes
are an expected business outcome and are returned as values, never as
errors.
*/
package models
