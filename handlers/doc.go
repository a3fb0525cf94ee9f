// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the one-vote API.

# Handler Types

Each handler is a struct wrapping the vote engine:

  - VoteHandler: Vote submission
  - StatsHandler: Tallies, history, and per-voter reads

Handlers are created via constructor functions that accept *engine.Engine:

	voteHandler := handlers.NewVoteHandler(eng)

# Vote Submission

	POST /votes → SubmitVote

The request body carries voter_id (a display name), item_id, and
optionally owner_id. Status codes:

	201 → vote confirmed
	200 → vote rejected (duplicate or resolved conflict; body explains)
	400 → validation failure (field named in the response)
	504 → the submission attempt timed out
	500 → retries exhausted or datastore failure

A rejected vote is a successful request: the submission was processed
and the exactly-once rule held.

# Read Endpoints

	GET /items/stats        → AllItemStats
	GET /items/{id}/stats   → ItemStats
	GET /votes/recent       → RecentVotes (?limit=N, capped)
	GET /voters/{id}/votes  → VoterVotes

Reads are served from the engine's result cache when fresh.
*/
package handlers
