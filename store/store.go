// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/quickly-grade/models"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicateID = errors.New("duplicate record id")
)

// Store persists elections, votes and tokens with database/sql.
// It does no validation: callers validate before writing.
type Store struct {
	db *sql.DB
	d  dialect
}

// New returns a store for a connection opened with db.Open.
func New(conn *sql.DB, dbType string) (*Store, error) {
	d, err := dialectFor(dbType)
	if err != nil {
		return nil, err
	}
	return &Store{db: conn, d: d}, nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.conn(ctx).ExecContext(ctx, s.d.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.conn(ctx).QueryRowContext(ctx, s.d.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.conn(ctx).QueryContext(ctx, s.d.rebind(query), args...)
}

// mapWriteErr turns constraint violations into store sentinels.
func (s *Store) mapWriteErr(op string, err error) error {
	switch {
	case s.d.isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicateID)
	case s.d.isForeignKeyViolation(err):
		return fmt.Errorf("%s: election %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Elections

const electionColumns = `id, title, candidates, on_invitation_only, num_grades,
	start_at, finish_at, select_language, restrict_results`

// InsertElection inserts a new election row with e.ID.
// Returns ErrDuplicateID if the ID is taken.
func (s *Store) InsertElection(ctx context.Context, e *models.Election) error {
	_, err := s.exec(ctx, `
		INSERT INTO election (`+electionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.Title, s.d.array(candidates(e)), e.OnInvitationOnly, e.NumGrades,
		e.StartAt, e.FinishAt, e.SelectLanguage, e.RestrictResults)
	if err != nil {
		return s.mapWriteErr("insert election", err)
	}
	return nil
}

// UpdateElection overwrites the row with e.ID.
// Reports false when no such row exists.
func (s *Store) UpdateElection(ctx context.Context, e *models.Election) (bool, error) {
	res, err := s.exec(ctx, `
		UPDATE election
		SET title = $2, candidates = $3, on_invitation_only = $4, num_grades = $5,
		    start_at = $6, finish_at = $7, select_language = $8, restrict_results = $9
		WHERE id = $1
	`, e.ID, e.Title, s.d.array(candidates(e)), e.OnInvitationOnly, e.NumGrades,
		e.StartAt, e.FinishAt, e.SelectLanguage, e.RestrictResults)
	if err != nil {
		return false, s.mapWriteErr("update election", err)
	}
	return affected(res)
}

// GetElection returns the election with id, or ErrNotFound.
func (s *Store) GetElection(ctx context.Context, id string) (models.Election, error) {
	return s.getElection(ctx, id, "")
}

// GetElectionForUpdate is GetElection with a row lock held until the
// surrounding transaction ends. Only meaningful inside RunInTx.
func (s *Store) GetElectionForUpdate(ctx context.Context, id string) (models.Election, error) {
	return s.getElection(ctx, id, s.d.forUpdate())
}

func (s *Store) getElection(ctx context.Context, id, suffix string) (models.Election, error) {
	var e models.Election
	var numGrades int
	err := s.queryRow(ctx, `SELECT `+electionColumns+` FROM election WHERE id = $1`+suffix, id).Scan(
		&e.ID, &e.Title, s.d.scanArray(&e.Candidates), &e.OnInvitationOnly, &numGrades,
		&e.StartAt, &e.FinishAt, &e.SelectLanguage, &e.RestrictResults,
	)
	if err == sql.ErrNoRows {
		return models.Election{}, fmt.Errorf("election %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("get election: %w", err)
	}
	e.NumGrades = &numGrades
	return e, nil
}

// DeleteElection removes an election. Its votes and tokens go with it
// through ON DELETE CASCADE.
func (s *Store) DeleteElection(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM election WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete election: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("election %s: %w", id, ErrNotFound)
	}
	return nil
}

// Votes

// InsertVote inserts a ballot and returns its auto-increment ID.
func (s *Store) InsertVote(ctx context.Context, v *models.Vote) (int64, error) {
	grades := make([]int64, len(v.GradesByCandidate))
	for i, g := range v.GradesByCandidate {
		grades[i] = int64(g)
	}

	var id int64
	err := s.queryRow(ctx, `
		INSERT INTO vote (election_id, grades_by_candidate)
		VALUES ($1, $2)
		RETURNING id
	`, v.ElectionID, s.d.array(grades)).Scan(&id)
	if err != nil {
		return 0, s.mapWriteErr("insert vote", err)
	}
	return id, nil
}

// ListVotes returns an election's ballots in insertion order.
func (s *Store) ListVotes(ctx context.Context, electionID string) ([]models.Vote, error) {
	rows, err := s.query(ctx, `
		SELECT id, election_id, grades_by_candidate
		FROM vote
		WHERE election_id = $1
		ORDER BY id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		var grades []int64
		if err := rows.Scan(&v.ID, &v.ElectionID, s.d.scanArray(&grades)); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		v.GradesByCandidate = make([]int, len(grades))
		for i, g := range grades {
			v.GradesByCandidate[i] = int(g)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	return votes, nil
}

// Tokens

// InsertToken inserts a new token with t.ID.
// Returns ErrDuplicateID if the ID is taken, ErrNotFound if the election is missing.
func (s *Store) InsertToken(ctx context.Context, t *models.Token) error {
	_, err := s.exec(ctx, `
		INSERT INTO token (id, election_id, used)
		VALUES ($1, $2, $3)
	`, t.ID, t.ElectionID, t.Used)
	if err != nil {
		return s.mapWriteErr("insert token", err)
	}
	return nil
}

// UpdateToken overwrites the row with t.ID.
// Reports false when no such row exists.
func (s *Store) UpdateToken(ctx context.Context, t *models.Token) (bool, error) {
	res, err := s.exec(ctx, `
		UPDATE token SET election_id = $2, used = $3 WHERE id = $1
	`, t.ID, t.ElectionID, t.Used)
	if err != nil {
		return false, s.mapWriteErr("update token", err)
	}
	return affected(res)
}

// GetToken returns the token with id, or ErrNotFound.
func (s *Store) GetToken(ctx context.Context, id string) (models.Token, error) {
	var t models.Token
	err := s.queryRow(ctx, `SELECT id, election_id, used FROM token WHERE id = $1`, id).
		Scan(&t.ID, &t.ElectionID, &t.Used)
	if err == sql.ErrNoRows {
		return models.Token{}, fmt.Errorf("token %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Token{}, fmt.Errorf("get token: %w", err)
	}
	return t, nil
}

// ListTokens returns an election's tokens ordered by ID.
func (s *Store) ListTokens(ctx context.Context, electionID string) ([]models.Token, error) {
	rows, err := s.query(ctx, `
		SELECT id, election_id, used FROM token WHERE election_id = $1 ORDER BY id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	tokens := []models.Token{}
	for rows.Next() {
		var t models.Token
		if err := rows.Scan(&t.ID, &t.ElectionID, &t.Used); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	return tokens, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func candidates(e *models.Election) []string {
	if e.Candidates == nil {
		return []string{}
	}
	return e.Candidates
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
