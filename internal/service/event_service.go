package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AdamBeresnev/league-engine/internal/bracket"
	"github.com/AdamBeresnev/league-engine/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type EventService struct {
	db     *sqlx.DB
	store  *store.LeagueStore
	logger *slog.Logger
}

func NewEventService(db *sqlx.DB, store *store.LeagueStore, logger *slog.Logger) *EventService {
	return &EventService{db: db, store: store, logger: logger}
}

type EventInput struct {
	Name     string     `json:"name"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
}

type EventData struct {
	Event    *bracket.Event    `json:"event"`
	Brackets []bracket.Bracket `json:"brackets"`
}

func (s *EventService) CreateEvent(ctx context.Context, in EventInput) (*bracket.Event, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, bracket.NewValidationError("name", "event name is required")
	}
	if in.StartsAt != nil && in.EndsAt != nil && in.EndsAt.Before(*in.StartsAt) {
		return nil, bracket.NewValidationError("ends_at", "event cannot end before it starts")
	}

	event := &bracket.Event{
		ID:        uuid.New(),
		Name:      name,
		StartsAt:  in.StartsAt,
		EndsAt:    in.EndsAt,
		Status:    bracket.EventOngoing,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateEvent(ctx, s.db, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.logger.Info("event created", "event_id", event.ID, "name", event.Name)
	return event, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uuid.UUID) (*EventData, error) {
	event, err := s.store.GetEvent(ctx, s.db, id)
	if err != nil {
		return nil, notFound(err, "event", id)
	}

	brackets, err := s.store.ListBrackets(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list brackets: %w", err)
	}

	return &EventData{Event: event, Brackets: brackets}, nil
}

type TeamService struct {
	db    *sqlx.DB
	store *store.LeagueStore
}

func NewTeamService(db *sqlx.DB, store *store.LeagueStore) *TeamService {
	return &TeamService{db: db, store: store}
}

type TeamInput struct {
	Name  string `json:"name"`
	Sport string `json:"sport"`
}

// RegisterTeam stores a reference row for a roster team so brackets can
// point at it.
func (s *TeamService) RegisterTeam(ctx context.Context, in TeamInput) (*bracket.Team, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, bracket.NewValidationError("name", "team name is required")
	}
	if len(name) > 100 {
		return nil, bracket.NewValidationError("name", "team name exceeds 100 characters")
	}

	team := &bracket.Team{ID: uuid.New(), Name: name, Sport: strings.TrimSpace(in.Sport)}
	if err := s.store.CreateTeam(ctx, s.db, team); err != nil {
		return nil, fmt.Errorf("failed to register team: %w", err)
	}
	return team, nil
}

func (s *TeamService) GetTeam(ctx context.Context, id uuid.UUID) (*bracket.Team, error) {
	team, err := s.store.GetTeam(ctx, s.db, id)
	if err != nil {
		return nil, notFound(err, "team", id)
	}
	return team, nil
}
