// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the election records and their validation rules.

# Records

  - Election: title, candidates, grading scale, voting window, language
  - Vote: one grade per candidate for one election
  - Token: single-use voting credential for one election

# Settings

Validation never reads process state. Limits are passed in:

	settings := models.Settings{MaxNumGrades: 7, Languages: []string{"en", "fr"}}
	err := election.Validate(settings, time.Now().Unix())

# Election Checks

Checks run in this order and the first failure is returned:

  - ErrMissingGradeCount: NumGrades is nil
  - ErrGradeCountOutOfBounds: NumGrades not in (0, MaxNumGrades]
  - ErrEmptyTitle: Title is empty
  - ErrUnsupportedLanguage: SelectLanguage not in Languages
  - ErrEndDateInPast: FinishAt <= now
  - ErrEndBeforeStart: StartAt > FinishAt

# Vote Checks

Votes are checked against their election:

  - ErrGradeCountMismatch: one grade per candidate is required
  - ErrGradeOutOfRange: every grade must be in [0, NumGrades)

# Errors

Every failure is a *ValidationError:

	if errors.Is(err, models.ErrValidation) {
		// bad input, safe to show err.Error() to the user
	}
	if errors.Is(err, models.ErrEndDateInPast) {
		// a specific rule
	}
*/
package models
