// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the one-vote API server.

one-vote is a transactional vote service enforcing an exactly-once rule:
each voter gets at most one confirmed vote per item, held under
concurrent submissions, retries, and partial failures.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	MONGO_URI=mongodb://... go run main.go

Or with flags:

	go run main.go -p 3319 -m "mongodb://..."

# Configuration

Required settings:

  - MONGO_URI (-m): MongoDB connection URI (replica set; transactions
    require one)

Optional settings:

  - PORT (-p): Server port (default: 3319)
  - DATABASE (-db): Database name (default: onevote)
  - SWEEP_INTERVAL (-sweep): Consistency sweep interval (default: 5m)

A .env file in the working directory is loaded if present.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (vote submission, stats reads)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Document and request/response types
  - engine: Vote submission pipeline and cached reads
  - txn: Transaction retry orchestration and error classification
  - votedb: MongoDB sessions, collections, and indexes
  - sweep: Background consistency validator
  - identity: Display-name to identity-key derivation
  - retry, cache: Backoff schedules and the TTL result cache
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
