package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/league-engine/internal/bracket"
	"github.com/AdamBeresnev/league-engine/internal/metrics"
	"github.com/AdamBeresnev/league-engine/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type MatchService struct {
	db      *sqlx.DB
	store   *store.LeagueStore
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	watcher *completionWatcher
}

func NewMatchService(db *sqlx.DB, store *store.LeagueStore, logger *slog.Logger, m *metrics.Metrics, tracer trace.Tracer) *MatchService {
	return &MatchService{
		db:      db,
		store:   store,
		logger:  logger,
		metrics: m,
		tracer:  tracer,
		watcher: &completionWatcher{store: store, logger: logger},
	}
}

// CompletionOutcome is returned to stat entry after a result is recorded.
type CompletionOutcome struct {
	Match               *bracket.Match `json:"match"`
	BracketResetCreated bool           `json:"bracket_reset_created"`
	EventCompleted      bool           `json:"event_completed"`
}

func (s *MatchService) ListMatches(ctx context.Context, bracketID uuid.UUID, includeHidden bool) ([]bracket.Match, error) {
	if _, err := s.store.GetBracket(ctx, s.db, bracketID); err != nil {
		return nil, notFound(err, "bracket", bracketID)
	}
	return s.store.ListMatches(ctx, s.db, bracketID, includeHidden)
}

func (s *MatchService) GetMatch(ctx context.Context, id uuid.UUID) (*bracket.Match, error) {
	m, err := s.store.GetMatch(ctx, s.db, id)
	if err != nil {
		return nil, notFound(err, "match", id)
	}
	return m, nil
}

// StartMatch moves a scheduled match to ongoing.
func (s *MatchService) StartMatch(ctx context.Context, id uuid.UUID) (*bracket.Match, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	m, err := s.store.GetMatch(ctx, tx, id)
	if err != nil {
		return nil, notFound(err, "match", id)
	}
	from := m.Status
	if err := m.Transition(bracket.MatchOngoing); err != nil {
		return nil, err
	}
	ok, err := s.store.SetStatus(ctx, tx, id, from, m.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to start match: %w", err)
	}
	if !ok {
		return nil, bracket.NewConflictError(id, "match changed status while starting")
	}

	return m, tx.Commit()
}

// AssignSchedule attaches schedule metadata to a match. Progression never
// reads it.
func (s *MatchService) AssignSchedule(ctx context.Context, id uuid.UUID, at *time.Time) (*bracket.Match, error) {
	ok, err := s.store.SetScheduledAt(ctx, s.db, id, at)
	if err != nil {
		return nil, fmt.Errorf("failed to assign schedule: %w", err)
	}
	if !ok {
		return nil, bracket.NewNotFoundError("match", id)
	}
	return s.GetMatch(ctx, id)
}

// CompleteMatch records a result and applies everything that follows from
// it in one transaction: the match row, the downstream slot writes and the
// event status. Submitting the same result again changes nothing.
func (s *MatchService) CompleteMatch(ctx context.Context, id uuid.UUID, in bracket.ResultInput) (outcome *CompletionOutcome, err error) {
	ctx, span := s.tracer.Start(ctx, "MatchService.CompleteMatch", trace.WithAttributes(attribute.String("match.id", id.String())))
	defer span.End()
	defer s.metrics.ObserveCompleteMatch(time.Now())
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logFailure(id, err)
		}
	}()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	m, err := s.store.GetMatch(ctx, tx, id)
	if err != nil {
		return nil, notFound(err, "match", id)
	}
	b, err := s.store.GetBracket(ctx, tx, m.BracketID)
	if err != nil {
		return nil, notFound(err, "bracket", m.BracketID)
	}
	span.SetAttributes(
		attribute.String("bracket.id", b.ID.String()),
		attribute.String("bracket.elimination_type", string(b.EliminationType)),
	)

	topo, err := bracket.Resolve(b.EliminationType, b.TeamCount)
	if err != nil {
		return nil, bracket.NewInvariantViolation("stored bracket %s does not resolve: %v", b.ID, err)
	}

	if !bracket.CanTransition(m.Status, bracket.MatchCompleted) {
		return nil, bracket.NewValidationError("status", "match %s is %s and cannot be completed", m.ID, m.Status)
	}
	result, err := bracket.NewResult(b.EliminationType, m, in)
	if err != nil {
		return nil, err
	}
	score1, score2 := result.Scores()
	winner := result.Winner()

	previous := *m
	editing := m.Status == bracket.MatchCompleted
	if editing && sameResult(&previous, score1, score2, winner) {
		return &CompletionOutcome{Match: m}, nil
	}

	adv := &advancer{store: s.store, q: tx, bracket: b, topo: topo, logger: s.logger}
	if editing {
		if err := adv.checkEditable(ctx, m); err != nil {
			return nil, err
		}
	}

	m.Score1, m.Score2, m.WinnerID = score1, score2, winner
	if err := m.Transition(bracket.MatchCompleted); err != nil {
		return nil, err
	}
	if err := s.store.SaveResult(ctx, tx, m); err != nil {
		return nil, fmt.Errorf("failed to save result: %w", err)
	}

	var prev *bracket.Match
	if editing {
		prev = &previous
	}
	resetCreated, err := adv.advance(ctx, m, prev)
	if err != nil {
		return nil, err
	}

	eventCompleted, err := s.watcher.evaluate(ctx, tx, b.EventID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.metrics.MatchCompleted(string(b.EliminationType))
	if resetCreated {
		s.metrics.BracketReset()
	}
	if eventCompleted {
		s.metrics.EventCompleted()
	}
	s.logger.Info("match completed",
		"match_id", m.ID,
		"bracket_id", b.ID,
		"coord", m.Coord().String(),
		"score", fmt.Sprintf("%d-%d", score1, score2),
		"edit", editing,
		"bracket_reset_created", resetCreated,
		"event_completed", eventCompleted,
	)

	return &CompletionOutcome{Match: m, BracketResetCreated: resetCreated, EventCompleted: eventCompleted}, nil
}

func sameResult(m *bracket.Match, score1, score2 int, winner *uuid.UUID) bool {
	if m.Score1 != score1 || m.Score2 != score2 {
		return false
	}
	if m.WinnerID == nil || winner == nil {
		return m.WinnerID == nil && winner == nil
	}
	return *m.WinnerID == *winner
}

func (s *MatchService) logFailure(id uuid.UUID, err error) {
	var conflict *bracket.ConflictError
	var invariant *bracket.InvariantViolation
	switch {
	case errors.As(err, &conflict):
		s.metrics.Conflict()
		s.logger.Warn("match result rejected", "match_id", id, "error", err)
	case errors.As(err, &invariant):
		s.logger.Error("bracket invariant violated", "match_id", id, "error", err)
	}
}
