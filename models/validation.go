// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrValidation matches every validation failure.
var ErrValidation = errors.New("validation failed")

// Validation failure kinds, in the order the checks run.
var (
	ErrMissingGradeCount     = errors.New("missing grade count")
	ErrGradeCountOutOfBounds = errors.New("grade count out of bounds")
	ErrEmptyTitle            = errors.New("empty title")
	ErrUnsupportedLanguage   = errors.New("unsupported language")
	ErrEndDateInPast         = errors.New("end date in the past")
	ErrEndBeforeStart        = errors.New("end before start")

	ErrGradeCountMismatch = errors.New("grade count mismatch")
	ErrGradeOutOfRange    = errors.New("grade out of range")
)

// ValidationError reports the first rule a record broke.
// Kind is one of the sentinel kinds above; Msg is shown to users.
type ValidationError struct {
	Kind error
	Msg  string
}

func (e *ValidationError) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// Is makes errors.Is(err, ErrValidation) hold for every kind.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(kind error, format string, args ...any) error {
	return &ValidationError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a validation error, or nil.
func KindOf(err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return nil
}

// Validate checks settings at startup
func (s Settings) Validate() error {
	if s.MaxNumGrades <= 0 {
		return fmt.Errorf("max number of grades must be positive, got %d", s.MaxNumGrades)
	}
	if len(s.Languages) == 0 {
		return errors.New("at least one language must be available")
	}
	return nil
}

// Validate runs the election checks in order and returns the first failure.
// now is the current time in seconds since the epoch.
func (e *Election) Validate(s Settings, now int64) error {
	if e.NumGrades == nil {
		return invalid(ErrMissingGradeCount, "election requires a positive number of grades")
	}

	if *e.NumGrades <= 0 || *e.NumGrades > s.MaxNumGrades {
		return invalid(ErrGradeCountOutOfBounds,
			"max number of grades is %d, asked for %d grades", s.MaxNumGrades, *e.NumGrades)
	}

	if e.Title == "" {
		return invalid(ErrEmptyTitle, "election requires a proper title")
	}

	if !slices.Contains(s.Languages, e.SelectLanguage) {
		return invalid(ErrUnsupportedLanguage,
			"election is only available in %s", strings.Join(s.Languages, ", "))
	}

	if e.FinishAt <= now {
		return invalid(ErrEndDateInPast, "the election cannot be over in the past")
	}

	if e.StartAt > e.FinishAt {
		return invalid(ErrEndBeforeStart, "the election can't end until it has started")
	}

	return nil
}

// Validate checks the ballot against the election it belongs to.
func (v *Vote) Validate(e *Election) error {
	if len(v.GradesByCandidate) != len(e.Candidates) {
		return invalid(ErrGradeCountMismatch,
			"number of grades (%d) differs from number of candidates (%d)",
			len(v.GradesByCandidate), len(e.Candidates))
	}

	numGrades := 0
	if e.NumGrades != nil {
		numGrades = *e.NumGrades
	}
	for _, g := range v.GradesByCandidate {
		if g < 0 || g >= numGrades {
			return invalid(ErrGradeOutOfRange, "grades have to be between 0 and %d", numGrades-1)
		}
	}

	return nil
}
