// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists elections, votes and tokens.

The store writes what it is given. Validation happens before, in the
elections service.

# Construction

	st, err := store.New(conn, db.TypePostgres)

The same queries run on PostgreSQL and SQLite. Placeholders are rebound for
SQLite, arrays are encoded as TEXT[]/SMALLINT[] (lib/pq) or JSON text, and
row locks only apply on PostgreSQL.

# Keys

Elections and tokens are inserted with caller-chosen IDs. A taken ID
returns ErrDuplicateID so the caller can retry with a fresh one. Votes get
the database's auto-increment ID from InsertVote.

# Transactions

RunInTx carries the transaction in the context:

	err := st.RunInTx(ctx, func(ctx context.Context) error {
		e, err := st.GetElectionForUpdate(ctx, id)
		...
		_, err = st.InsertVote(ctx, vote)
		return err
	})

# Errors

  - ErrNotFound: missing row, or a vote/token naming an unknown election
  - ErrDuplicateID: primary key already taken

DeleteElection cascades to the election's votes and tokens.
*/
package store
