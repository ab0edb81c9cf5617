// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Grade process.

Quickly Grade stores majority judgment elections: each voter gives every
candidate a grade on the election's scale. Elections, votes and tokens are
validated before they are written, so the database only ever holds records
that passed the rules in package models.

# Starting the Process

The process requires environment variables or CLI flags for configuration:

	DATABASE_URL=file:grade.db go run .

Or against PostgreSQL:

	go run . -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite DSN or PostgreSQL connection string

Optional settings:

  - PORT (-p): Operations listener port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - MAX_NUM_GRADES (-max-grades): Largest grading scale (default: 7)
  - LANGUAGE_AVAILABLE (-languages): Election languages (default: en,fr)
  - ELECTION_ID_SCHEME, TOKEN_ID_SCHEME: hex, token, ulid or uuid
  - LOG_LEVEL (-log-level): debug, info, warn, error

A .env file in the working directory is loaded first if present.

# Architecture

  - models: Election, Vote, Token and their validation rules
  - elections: Save path (validate then persist), ID assignment
  - store: SQL persistence for SQLite and PostgreSQL
  - db: Connection setup and schema creation
  - ids: Random ID generators
  - metrics: Prometheus counters for saves and rejections
  - router, middleware: /health and /metrics listener
  - logging: JSON slog setup
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
