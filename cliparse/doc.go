// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3319)
  - MongoURI: MongoDB connection URI (required)
  - Database: Database name (default: onevote)
  - SweepInterval: Background consistency sweep interval (default: 5m)

# CLI Flags

	-p      Server port
	-m      MongoDB connection URI
	-db     Database name
	-sweep  Consistency sweep interval

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	MONGO_URI      → -m
	DATABASE       → -db
	SWEEP_INTERVAL → -sweep

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing or malformed:

  - MONGO_URI must be provided
  - PORT and SWEEP_INTERVAL must parse if set

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	client, err := votedb.Connect(ctx, cfg.MongoURI)
	// ...
	mux := router.NewRouter(eng)
*/
package cliparse
