// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens database connections and creates the schema.

# Connecting

Two database types are supported:

	conn, err := db.Open(ctx, db.TypePostgres, "postgres://...")
	conn, err := db.Open(ctx, db.TypeSQLite, "file:elections.db")

PostgreSQL uses lib/pq. SQLite uses the pure-Go modernc.org/sqlite driver,
with foreign keys switched on so deletes cascade.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn, db.TypePostgres); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - election: title, candidates, grading scale, voting window
  - vote: one ballot, one grade per candidate (auto-increment id)
  - token: single-use voting credentials

PostgreSQL stores candidates as TEXT[] and grades as SMALLINT[]. SQLite
stores both as JSON arrays in TEXT columns.

# Relationships

	election 1──* vote
	election 1──* token

All foreign keys use ON DELETE CASCADE.
*/
package db
