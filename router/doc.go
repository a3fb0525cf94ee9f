// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the one-vote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(eng)

# Endpoints

Health:

	GET /health

Voting:

	POST /votes - Submit a vote

Reads (public):

	GET /items/stats       - Vote counts for every item
	GET /items/{id}/stats  - One item's vote count
	GET /votes/recent      - Recent confirmed votes (?limit=N)
	GET /voters/{id}/votes - Items a voter has voted for

# Handler Initialization

The router creates handler instances with dependency injection:

	voteHandler := handlers.NewVoteHandler(eng)
	statsHandler := handlers.NewStatsHandler(eng)

All handlers receive the vote engine.
*/
package router
