// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package elections saves elections, votes and tokens.

Each save validates the record first and only then writes it. A rejected
record leaves the database untouched.

# Setup

	svc, err := elections.NewService(st, cfg.Settings(),
		elections.WithLogger(logger),
		elections.WithMetrics(m),
		elections.WithElectionIDs(ids.ULID{}),
	)

Options:

  - WithClock: time source for the end-date check (default time.Now)
  - WithElectionIDs / WithTokenIDs: random ID strategies (default hex / token)
  - WithLogger: slog logger (default slog.Default())
  - WithMetrics: Prometheus save counters

# Elections

	e := svc.NewElection("Best Pizza", []string{"Margherita", "Pepperoni"}, 3)
	e.FinishAt = time.Now().Add(time.Hour).Unix()
	err := svc.SaveElection(ctx, e) // e.ID is set

SaveElection re-runs every check on every call, updates included.

# Votes

	err := svc.SaveVote(ctx, &models.Vote{ElectionID: e.ID, GradesByCandidate: []int{2, 0}})

The election is re-read under a row lock in the vote's transaction. The
vote is checked against the stored candidates and grading scale, never
against the caller's copy.

# Tokens

	err := svc.SaveToken(ctx, &models.Token{ElectionID: e.ID})

Tokens carry no checks of their own. Marking a token used is the caller's
business: set Used and save again.
*/
package elections
