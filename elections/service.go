// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package elections

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/quickly-grade/ids"
	"github.com/danielhkuo/quickly-grade/metrics"
	"github.com/danielhkuo/quickly-grade/models"
	"github.com/danielhkuo/quickly-grade/store"
)

// Entity names used in logs and metrics
const (
	entityElection = "election"
	entityVote     = "vote"
	entityToken    = "token"
)

// Attempts at finding a free random ID before giving up
const maxIDAttempts = 5

// Clock returns the current time.
type Clock func() time.Time

// Service validates records and hands them to the store.
// Nothing is written when validation fails.
type Service struct {
	store       *store.Store
	settings    models.Settings
	clock       Clock
	electionIDs ids.Generator
	tokenIDs    ids.Generator
	log         *slog.Logger
	metrics     *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service) error

// WithClock sets the time source used for date checks and defaults.
func WithClock(clock Clock) Option {
	return func(s *Service) error {
		if clock == nil {
			return errors.New("clock is required")
		}
		s.clock = clock
		return nil
	}
}

// WithElectionIDs sets the ID strategy for new elections (default ids.Hex).
func WithElectionIDs(gen ids.Generator) Option {
	return func(s *Service) error {
		if gen == nil {
			return errors.New("election ID generator is required")
		}
		s.electionIDs = gen
		return nil
	}
}

// WithTokenIDs sets the ID strategy for new tokens (default ids.Token).
func WithTokenIDs(gen ids.Generator) Option {
	return func(s *Service) error {
		if gen == nil {
			return errors.New("token ID generator is required")
		}
		s.tokenIDs = gen
		return nil
	}
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) error {
		if log != nil {
			s.log = log
		}
		return nil
	}
}

// WithMetrics records save outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) error {
		s.metrics = m
		return nil
	}
}

// NewService builds a Service. settings are checked once here.
func NewService(st *store.Store, settings models.Settings, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid election settings: %w", err)
	}

	s := &Service{
		store:       st,
		settings:    settings,
		clock:       time.Now,
		electionIDs: ids.Hex{},
		tokenIDs:    ids.Token{},
		log:         slog.Default(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Settings returns the limits elections are validated against.
func (s *Service) Settings() models.Settings {
	return s.settings
}

// now is the clock in whole seconds, rounded to the nearest second.
func (s *Service) now() int64 {
	return s.clock().Round(time.Second).Unix()
}

// NewElection returns an unsaved election with the defaults a caller would
// otherwise have to fill: voting window starting and ending now, English.
// FinishAt must be moved into the future before SaveElection accepts it.
func (s *Service) NewElection(title string, candidates []string, numGrades int) *models.Election {
	now := s.now()
	return &models.Election{
		Title:          title,
		Candidates:     candidates,
		NumGrades:      models.Grades(numGrades),
		StartAt:        now,
		FinishAt:       now,
		SelectLanguage: models.DefaultLanguage,
	}
}

// SaveElection validates e and creates or updates it.
// Every call re-runs every check, updates included.
// An election without an ID gets a fresh random one.
func (s *Service) SaveElection(ctx context.Context, e *models.Election) (err error) {
	start := time.Now()
	defer func() { s.observe(entityElection, start, err) }()

	if err := e.Validate(s.settings, s.now()); err != nil {
		return err
	}

	if e.ID != "" {
		var created bool
		err := s.store.RunInTx(ctx, func(ctx context.Context) error {
			ok, err := s.store.UpdateElection(ctx, e)
			if err != nil || ok {
				return err
			}
			created = true
			return s.store.InsertElection(ctx, e)
		})
		if err != nil {
			return err
		}
		s.log.Info("election saved", "election_id", e.ID, "created", created)
		return nil
	}

	id, err := s.insertWithRandomID(s.electionIDs, func(id string) error {
		e.ID = id
		return s.store.InsertElection(ctx, e)
	})
	if err != nil {
		e.ID = ""
		return err
	}

	s.log.Info("election saved", "election_id", id, "created", true)
	return nil
}

// SaveVote validates v against the stored election and inserts it.
// The election row is locked for the duration, so its grading scale cannot
// change between the check and the insert. Sets v.ID on success.
func (s *Service) SaveVote(ctx context.Context, v *models.Vote) (err error) {
	start := time.Now()
	defer func() { s.observe(entityVote, start, err) }()

	var id int64
	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		e, err := s.store.GetElectionForUpdate(ctx, v.ElectionID)
		if err != nil {
			return err
		}

		s.log.Debug("saving vote",
			"election_id", v.ElectionID,
			"grades", v.GradesByCandidate,
			"candidates", e.Candidates,
		)

		if err := v.Validate(&e); err != nil {
			return err
		}

		id, err = s.store.InsertVote(ctx, v)
		return err
	})
	if err != nil {
		return err
	}

	v.ID = id
	s.log.Info("vote saved", "election_id", v.ElectionID, "vote_id", id)
	return nil
}

// SaveToken creates or updates a token. There are no checks beyond the
// store's reference to an existing election.
func (s *Service) SaveToken(ctx context.Context, t *models.Token) (err error) {
	start := time.Now()
	defer func() { s.observe(entityToken, start, err) }()

	if t.ID != "" {
		return s.store.RunInTx(ctx, func(ctx context.Context) error {
			ok, err := s.store.UpdateToken(ctx, t)
			if err != nil || ok {
				return err
			}
			return s.store.InsertToken(ctx, t)
		})
	}

	_, err = s.insertWithRandomID(s.tokenIDs, func(id string) error {
		t.ID = id
		return s.store.InsertToken(ctx, t)
	})
	if err != nil {
		t.ID = ""
		return err
	}

	s.log.Info("token created", "election_id", t.ElectionID)
	return nil
}

// GetElection returns a stored election.
func (s *Service) GetElection(ctx context.Context, id string) (models.Election, error) {
	return s.store.GetElection(ctx, id)
}

// DeleteElection removes an election with its votes and tokens.
func (s *Service) DeleteElection(ctx context.Context, id string) error {
	if err := s.store.DeleteElection(ctx, id); err != nil {
		return err
	}
	s.log.Info("election deleted", "election_id", id)
	return nil
}

// ListVotes returns the ballots cast in an election.
func (s *Service) ListVotes(ctx context.Context, electionID string) ([]models.Vote, error) {
	return s.store.ListVotes(ctx, electionID)
}

// GetToken returns a stored token.
func (s *Service) GetToken(ctx context.Context, id string) (models.Token, error) {
	return s.store.GetToken(ctx, id)
}

// insertWithRandomID draws IDs from gen until insert stops reporting a
// duplicate key.
func (s *Service) insertWithRandomID(gen ids.Generator, insert func(id string) error) (string, error) {
	var err error
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		var id string
		id, err = gen.NewID()
		if err != nil {
			return "", err
		}

		err = insert(id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, store.ErrDuplicateID) {
			return "", err
		}
		s.log.Warn("random ID collision, retrying", "attempt", attempt)
	}
	return "", fmt.Errorf("no free ID after %d attempts: %w", maxIDAttempts, err)
}

func (s *Service) observe(entity string, start time.Time, err error) {
	switch kind := models.KindOf(err); {
	case err == nil:
		s.metrics.ObserveSave(entity, metrics.OutcomeSaved, "", start)
	case kind != nil:
		s.log.Info("save rejected", "entity", entity, "reason", err.Error())
		s.metrics.ObserveSave(entity, metrics.OutcomeInvalid, kind.Error(), start)
	default:
		s.log.Error("save failed", "entity", entity, "error", err)
		s.metrics.ObserveSave(entity, metrics.OutcomeError, "", start)
	}
}
