// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dbType string) error {
	var ddl string
	switch dbType {
	case TypePostgres:
		ddl = postgresSchema
	case TypeSQLite:
		ddl = sqliteSchema
	default:
		return fmt.Errorf("unsupported database type %q", dbType)
	}

	_, err := db.Exec(ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const postgresSchema = `
-- Elections
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    candidates TEXT[] NOT NULL,
    on_invitation_only BOOLEAN NOT NULL DEFAULT FALSE,
    num_grades SMALLINT NOT NULL CHECK (num_grades > 0),
    start_at BIGINT NOT NULL,
    finish_at BIGINT NOT NULL,
    select_language VARCHAR(2) NOT NULL DEFAULT 'en',
    restrict_results BOOLEAN NOT NULL DEFAULT FALSE
);

-- Votes
CREATE TABLE IF NOT EXISTS vote (
    id BIGSERIAL PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    grades_by_candidate SMALLINT[] NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_vote_election_id ON vote(election_id);

-- Tokens
CREATE TABLE IF NOT EXISTS token (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    used BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_token_election_id ON token(election_id);
`

// SQLite has no array type: candidates and grades are JSON arrays in TEXT.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    candidates TEXT NOT NULL,
    on_invitation_only INTEGER NOT NULL DEFAULT 0,
    num_grades INTEGER NOT NULL CHECK (num_grades > 0),
    start_at INTEGER NOT NULL,
    finish_at INTEGER NOT NULL,
    select_language TEXT NOT NULL DEFAULT 'en',
    restrict_results INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS vote (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    grades_by_candidate TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_vote_election_id ON vote(election_id);

CREATE TABLE IF NOT EXISTS token (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    used INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_token_election_id ON token(election_id);
`
