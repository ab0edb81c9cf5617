// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package elections_test

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-grade/db"
	"github.com/danielhkuo/quickly-grade/elections"
	"github.com/danielhkuo/quickly-grade/ids"
	"github.com/danielhkuo/quickly-grade/metrics"
	"github.com/danielhkuo/quickly-grade/models"
	"github.com/danielhkuo/quickly-grade/store"
	"github.com/danielhkuo/quickly-grade/testutil"
)

func newService(t *testing.T, opts ...elections.Option) (*elections.Service, *sql.DB) {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	st, err := store.New(conn, db.TypeSQLite)
	require.NoError(t, err)

	opts = append([]elections.Option{elections.WithClock(testutil.Clock())}, opts...)
	svc, err := elections.NewService(st, testutil.Settings(), opts...)
	require.NoError(t, err)
	return svc, conn
}

// TestBestPizza walks the basic flow: one election, one valid ballot, two rejected ones.
func TestBestPizza(t *testing.T) {
	svc, conn := newService(t)
	ctx := context.Background()

	election := svc.NewElection("Best Pizza", []string{"Margherita", "Pepperoni"}, 3)
	election.FinishAt = testutil.Now.Add(time.Hour).Unix()
	require.NoError(t, svc.SaveElection(ctx, election))
	require.NotEmpty(t, election.ID)

	vote := &models.Vote{ElectionID: election.ID, GradesByCandidate: []int{2, 0}}
	require.NoError(t, svc.SaveVote(ctx, vote))
	assert.NotZero(t, vote.ID)

	err := svc.SaveVote(ctx, &models.Vote{ElectionID: election.ID, GradesByCandidate: []int{3, 0}})
	require.ErrorIs(t, err, models.ErrGradeOutOfRange)
	assert.EqualError(t, err, "grades have to be between 0 and 2")

	err = svc.SaveVote(ctx, &models.Vote{ElectionID: election.ID, GradesByCandidate: []int{1}})
	require.ErrorIs(t, err, models.ErrGradeCountMismatch)
	assert.EqualError(t, err, "number of grades (1) differs from number of candidates (2)")

	assert.Equal(t, 1, testutil.CountRows(t, conn, "vote"))
}

func TestSaveElection(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(e *models.Election)
		wantKind error
	}{
		{"valid", func(e *models.Election) {}, nil},
		{"max grades", func(e *models.Election) { e.NumGrades = models.Grades(7) }, nil},
		{"missing grades", func(e *models.Election) { e.NumGrades = nil }, models.ErrMissingGradeCount},
		{"zero grades", func(e *models.Election) { e.NumGrades = models.Grades(0) }, models.ErrGradeCountOutOfBounds},
		{"too many grades", func(e *models.Election) { e.NumGrades = models.Grades(8) }, models.ErrGradeCountOutOfBounds},
		{"empty title", func(e *models.Election) { e.Title = "" }, models.ErrEmptyTitle},
		{"unsupported language", func(e *models.Election) { e.SelectLanguage = "es" }, models.ErrUnsupportedLanguage},
		{"finish now", func(e *models.Election) { e.StartAt = 0; e.FinishAt = testutil.Now.Unix() }, models.ErrEndDateInPast},
		{"end before start", func(e *models.Election) { e.StartAt = e.FinishAt + 60 }, models.ErrEndBeforeStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, conn := newService(t)
			e := testutil.NewElection("Best Pizza")
			tt.mutate(e)

			err := svc.SaveElection(context.Background(), e)
			if tt.wantKind == nil {
				require.NoError(t, err)
				assert.NotEmpty(t, e.ID)
				assert.Equal(t, 1, testutil.CountRows(t, conn, "election"))
				return
			}

			require.ErrorIs(t, err, tt.wantKind)
			require.ErrorIs(t, err, models.ErrValidation)
			assert.Empty(t, e.ID, "rejected election must not get an ID")
			assert.Equal(t, 0, testutil.CountRows(t, conn, "election"), "nothing written")
		})
	}
}

func TestSaveElectionUniqueIDs(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		e := testutil.NewElection("Election")
		require.NoError(t, svc.SaveElection(ctx, e))
		assert.False(t, seen[e.ID], "duplicate ID %s", e.ID)
		seen[e.ID] = true
	}
}

func TestNewElectionDefaults(t *testing.T) {
	svc, _ := newService(t)

	e := svc.NewElection("Defaults", []string{"A", "B"}, 4)
	assert.Equal(t, testutil.Now.Unix(), e.StartAt)
	assert.Equal(t, testutil.Now.Unix(), e.FinishAt)
	assert.Equal(t, "en", e.SelectLanguage)
	assert.Equal(t, 4, *e.NumGrades)

	// The default window has already closed
	err := svc.SaveElection(context.Background(), e)
	assert.ErrorIs(t, err, models.ErrEndDateInPast)
}

func TestResaveElection(t *testing.T) {
	now := testutil.Now
	clock := func() time.Time { return now }
	svc, conn := newService(t, elections.WithClock(clock))
	ctx := context.Background()

	e := testutil.NewElection("Best Pizza")
	require.NoError(t, svc.SaveElection(ctx, e))
	id := e.ID

	t.Run("unchanged resave succeeds", func(t *testing.T) {
		require.NoError(t, svc.SaveElection(ctx, e))
		require.NoError(t, svc.SaveElection(ctx, e))
		assert.Equal(t, id, e.ID)
		assert.Equal(t, 1, testutil.CountRows(t, conn, "election"))
	})

	t.Run("update persists", func(t *testing.T) {
		e.Title = "Best Pizza in Town"
		require.NoError(t, svc.SaveElection(ctx, e))

		stored, err := svc.GetElection(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Best Pizza in Town", stored.Title)
	})

	t.Run("resave is revalidated", func(t *testing.T) {
		now = now.Add(2 * time.Hour)
		e.Title = "Too Late"
		err := svc.SaveElection(ctx, e)
		require.ErrorIs(t, err, models.ErrEndDateInPast)

		stored, err := svc.GetElection(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Best Pizza in Town", stored.Title, "rejected update must not be written")
	})
}

func TestSaveElectionWithCallerID(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	e := testutil.NewElection("Imported")
	e.ID = "imported-1"
	require.NoError(t, svc.SaveElection(ctx, e))

	stored, err := svc.GetElection(ctx, "imported-1")
	require.NoError(t, err)
	assert.Equal(t, "Imported", stored.Title)
}

func TestSaveElectionIDCollision(t *testing.T) {
	t.Run("retries with a fresh ID", func(t *testing.T) {
		gen := &testutil.SequenceIDs{IDs: []string{"a", "a", "b"}}
		svc, _ := newService(t, elections.WithElectionIDs(gen))
		ctx := context.Background()

		first := testutil.NewElection("First")
		require.NoError(t, svc.SaveElection(ctx, first))
		assert.Equal(t, "a", first.ID)

		second := testutil.NewElection("Second")
		require.NoError(t, svc.SaveElection(ctx, second))
		assert.Equal(t, "b", second.ID)
		assert.Equal(t, 3, gen.Calls())
	})

	t.Run("gives up after repeated collisions", func(t *testing.T) {
		gen := &testutil.SequenceIDs{IDs: []string{"same"}}
		svc, conn := newService(t, elections.WithElectionIDs(gen))
		ctx := context.Background()

		require.NoError(t, svc.SaveElection(ctx, testutil.NewElection("First")))

		second := testutil.NewElection("Second")
		err := svc.SaveElection(ctx, second)
		require.ErrorIs(t, err, store.ErrDuplicateID)
		assert.Empty(t, second.ID)
		assert.Equal(t, 6, gen.Calls())
		assert.Equal(t, 1, testutil.CountRows(t, conn, "election"))
	})
}

func TestSaveVote(t *testing.T) {
	svc, conn := newService(t)
	ctx := context.Background()

	e := testutil.NewElection("Best Pizza", "Margherita", "Pepperoni", "Napoletana")
	require.NoError(t, svc.SaveElection(ctx, e))

	tests := []struct {
		name     string
		grades   []int
		wantKind error
	}{
		{"all lowest", []int{0, 0, 0}, nil},
		{"all highest", []int{2, 2, 2}, nil},
		{"mixed", []int{0, 1, 2}, nil},
		{"negative", []int{0, -1, 2}, models.ErrGradeOutOfRange},
		{"too high", []int{0, 1, 3}, models.ErrGradeOutOfRange},
		{"too short", []int{0, 1}, models.ErrGradeCountMismatch},
		{"too long", []int{0, 1, 2, 0}, models.ErrGradeCountMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.CountRows(t, conn, "vote")
			v := &models.Vote{ElectionID: e.ID, GradesByCandidate: tt.grades}

			err := svc.SaveVote(ctx, v)
			if tt.wantKind == nil {
				require.NoError(t, err)
				assert.NotZero(t, v.ID)
				assert.Equal(t, before+1, testutil.CountRows(t, conn, "vote"))
				return
			}
			require.ErrorIs(t, err, tt.wantKind)
			assert.Zero(t, v.ID)
			assert.Equal(t, before, testutil.CountRows(t, conn, "vote"))
		})
	}

	votes, err := svc.ListVotes(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, votes, 3)
}

func TestSaveVoteMismatchMessage(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	e := testutil.NewElection("Five", "A", "B", "C", "D", "E")
	require.NoError(t, svc.SaveElection(ctx, e))

	err := svc.SaveVote(ctx, &models.Vote{ElectionID: e.ID, GradesByCandidate: []int{0, 1, 2}})
	assert.EqualError(t, err, "number of grades (3) differs from number of candidates (5)")
}

func TestSaveVoteUnknownElection(t *testing.T) {
	svc, _ := newService(t)

	err := svc.SaveVote(context.Background(), &models.Vote{ElectionID: "ghost", GradesByCandidate: []int{0}})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// TestSaveVoteUsesStoredElection checks votes are validated against the
// stored grading scale, whatever the caller holds in memory.
func TestSaveVoteUsesStoredElection(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	e := testutil.NewElection("Scale")
	require.NoError(t, svc.SaveElection(ctx, e))

	stale := *e
	e.NumGrades = models.Grades(5)
	require.NoError(t, svc.SaveElection(ctx, e))

	// stale still says 3 grades, the stored row says 5
	require.Equal(t, 3, *stale.NumGrades)
	require.NoError(t, svc.SaveVote(ctx, &models.Vote{ElectionID: stale.ID, GradesByCandidate: []int{4, 0}}))

	err := svc.SaveVote(ctx, &models.Vote{ElectionID: stale.ID, GradesByCandidate: []int{5, 0}})
	require.ErrorIs(t, err, models.ErrGradeOutOfRange)
	assert.EqualError(t, err, "grades have to be between 0 and 4")
}

func TestSaveVoteLogsBeforeValidation(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	svc, _ := newService(t, elections.WithLogger(log))
	ctx := context.Background()

	e := testutil.NewElection("Logged", "Margherita", "Pepperoni")
	require.NoError(t, svc.SaveElection(ctx, e))
	buf.Reset()

	err := svc.SaveVote(ctx, &models.Vote{ElectionID: e.ID, GradesByCandidate: []int{9}})
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "saving vote")
	assert.Contains(t, out, "grades=[9]")
	assert.Contains(t, out, "candidates=\"[Margherita Pepperoni]\"")
}

func TestSaveToken(t *testing.T) {
	svc, conn := newService(t)
	ctx := context.Background()

	e := testutil.NewElection("Invitation Only")
	e.OnInvitationOnly = true
	require.NoError(t, svc.SaveElection(ctx, e))

	tok := &models.Token{ElectionID: e.ID}
	require.NoError(t, svc.SaveToken(ctx, tok))
	assert.Len(t, tok.ID, 32, "default token IDs are 24 random bytes in base64")
	assert.False(t, tok.Used)

	tok.Used = true
	require.NoError(t, svc.SaveToken(ctx, tok))

	stored, err := svc.GetToken(ctx, tok.ID)
	require.NoError(t, err)
	assert.True(t, stored.Used)
	assert.Equal(t, 1, testutil.CountRows(t, conn, "token"))

	orphan := &models.Token{ElectionID: "ghost"}
	err = svc.SaveToken(ctx, orphan)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, orphan.ID)
}

func TestTokenIDScheme(t *testing.T) {
	svc, _ := newService(t, elections.WithTokenIDs(ids.UUID{}))
	ctx := context.Background()

	e := testutil.NewElection("UUID tokens")
	require.NoError(t, svc.SaveElection(ctx, e))

	tok := &models.Token{ElectionID: e.ID}
	require.NoError(t, svc.SaveToken(ctx, tok))
	assert.Len(t, tok.ID, 36)
}

func TestDeleteElection(t *testing.T) {
	svc, conn := newService(t)
	ctx := context.Background()

	e := testutil.NewElection("Doomed")
	require.NoError(t, svc.SaveElection(ctx, e))
	require.NoError(t, svc.SaveVote(ctx, &models.Vote{ElectionID: e.ID, GradesByCandidate: []int{1, 2}}))
	require.NoError(t, svc.SaveToken(ctx, &models.Token{ElectionID: e.ID}))

	require.NoError(t, svc.DeleteElection(ctx, e.ID))

	assert.Equal(t, 0, testutil.CountRows(t, conn, "election"))
	assert.Equal(t, 0, testutil.CountRows(t, conn, "vote"))
	assert.Equal(t, 0, testutil.CountRows(t, conn, "token"))

	assert.ErrorIs(t, svc.DeleteElection(ctx, e.ID), store.ErrNotFound)
}

func TestSaveMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc, _ := newService(t, elections.WithMetrics(m))
	ctx := context.Background()

	e := testutil.NewElection("Counted")
	require.NoError(t, svc.SaveElection(ctx, e))

	bad := testutil.NewElection("")
	require.Error(t, svc.SaveElection(ctx, bad))

	require.Error(t, svc.SaveVote(ctx, &models.Vote{ElectionID: e.ID, GradesByCandidate: []int{7, 7}}))
	require.Error(t, svc.SaveVote(ctx, &models.Vote{ElectionID: "ghost", GradesByCandidate: []int{0, 0}}))

	assert.Equal(t, 1.0, promtest.ToFloat64(m.Saves.WithLabelValues("election", metrics.OutcomeSaved)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Saves.WithLabelValues("election", metrics.OutcomeInvalid)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.ValidationFailures.WithLabelValues("election", models.ErrEmptyTitle.Error())))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.ValidationFailures.WithLabelValues("vote", models.ErrGradeOutOfRange.Error())))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Saves.WithLabelValues("vote", metrics.OutcomeError)))
}

func TestNewService(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st, err := store.New(conn, db.TypeSQLite)
	require.NoError(t, err)

	_, err = elections.NewService(nil, testutil.Settings())
	assert.Error(t, err, "store is required")

	_, err = elections.NewService(st, models.Settings{MaxNumGrades: 0, Languages: []string{"en"}})
	assert.Error(t, err, "settings are checked")

	_, err = elections.NewService(st, testutil.Settings(), elections.WithClock(nil))
	assert.Error(t, err)

	_, err = elections.NewService(st, testutil.Settings(), elections.WithElectionIDs(nil))
	assert.Error(t, err)

	svc, err := elections.NewService(st, testutil.Settings(), nil, elections.WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, testutil.Settings(), svc.Settings())
}
