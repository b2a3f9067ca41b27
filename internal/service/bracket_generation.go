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

type BracketService struct {
	db      *sqlx.DB
	store   *store.LeagueStore
	logger  *slog.Logger
	watcher *completionWatcher
}

func NewBracketService(db *sqlx.DB, store *store.LeagueStore, logger *slog.Logger) *BracketService {
	return &BracketService{
		db:      db,
		store:   store,
		logger:  logger,
		watcher: &completionWatcher{store: store, logger: logger},
	}
}

type BracketInput struct {
	EventID         uuid.UUID               `json:"-"`
	Name            string                  `json:"name"`
	SportType       string                  `json:"sport_type"`
	EliminationType bracket.EliminationType `json:"elimination_type"`
	// Seed order, best first.
	TeamIDs []uuid.UUID `json:"team_ids"`
}

type BracketData struct {
	Bracket *bracket.Bracket `json:"bracket"`
	Teams   []bracket.Team   `json:"teams"`
	Matches []bracket.Match  `json:"matches"`
}

// CreateBracket generates a bracket and every one of its match slots in a
// single transaction.
func (s *BracketService) CreateBracket(ctx context.Context, in BracketInput) (*BracketData, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, bracket.NewValidationError("name", "bracket name is required")
	}
	seen := make(map[uuid.UUID]bool, len(in.TeamIDs))
	for _, id := range in.TeamIDs {
		if seen[id] {
			return nil, bracket.NewValidationError("team_ids", "team %s is listed twice", id)
		}
		seen[id] = true
	}

	topo, err := bracket.Resolve(in.EliminationType, len(in.TeamIDs))
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := s.store.GetEvent(ctx, tx, in.EventID); err != nil {
		return nil, notFound(err, "event", in.EventID)
	}
	known, err := s.store.CountTeams(ctx, tx, in.TeamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to look up teams: %w", err)
	}
	if known != len(in.TeamIDs) {
		return nil, bracket.NewValidationError("team_ids", "%d of %d teams are not registered", len(in.TeamIDs)-known, len(in.TeamIDs))
	}

	b := &bracket.Bracket{
		ID:              uuid.New(),
		EventID:         in.EventID,
		Name:            name,
		SportType:       strings.TrimSpace(in.SportType),
		EliminationType: in.EliminationType,
		TeamCount:       len(in.TeamIDs),
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.store.CreateBracket(ctx, tx, b); err != nil {
		return nil, fmt.Errorf("failed to create bracket: %w", err)
	}

	entries := make([]bracket.BracketTeam, len(in.TeamIDs))
	for i, id := range in.TeamIDs {
		entries[i] = bracket.BracketTeam{BracketID: b.ID, TeamID: id, Seed: i + 1}
	}
	if err := s.store.CreateBracketTeams(ctx, tx, entries); err != nil {
		return nil, fmt.Errorf("failed to seed teams: %w", err)
	}

	matches := generateMatches(b.ID, topo, in.TeamIDs)
	if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
		return nil, fmt.Errorf("failed to create matches: %w", err)
	}

	// A new bracket reopens an event that had already finished.
	if _, err := s.watcher.evaluate(ctx, tx, in.EventID); err != nil {
		return nil, err
	}

	teams, err := s.store.ListBracketTeams(ctx, tx, b.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("bracket created",
		"bracket_id", b.ID,
		"event_id", b.EventID,
		"elimination_type", b.EliminationType,
		"teams", b.TeamCount,
		"matches", len(matches),
	)
	return &BracketData{Bracket: b, Teams: teams, Matches: matches}, nil
}

func (s *BracketService) GetBracket(ctx context.Context, id uuid.UUID, includeHidden bool) (*BracketData, error) {
	b, err := s.store.GetBracket(ctx, s.db, id)
	if err != nil {
		return nil, notFound(err, "bracket", id)
	}

	teams, err := s.store.ListBracketTeams(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	matches, err := s.store.ListMatches(ctx, s.db, id, includeHidden)
	if err != nil {
		return nil, err
	}

	return &BracketData{Bracket: b, Teams: teams, Matches: matches}, nil
}

// generateMatches lays out one match row per topology slot, seeds round one
// and walks teams over the byes whose team is already known. Byes further
// down are settled when their upstream result arrives.
func generateMatches(bracketID uuid.UUID, topo *bracket.Topology, teamIDs []uuid.UUID) []bracket.Match {
	matches := make([]bracket.Match, len(topo.Slots))
	index := make(map[bracket.Coord]int, len(topo.Slots))

	for i, slot := range topo.Slots {
		m := bracket.Match{
			ID:          uuid.New(),
			BracketID:   bracketID,
			RoundNumber: slot.Round,
			MatchOrder:  slot.Order,
			Side:        slot.Side,
			Status:      slot.Status,
		}
		for p, in := range slot.Inputs {
			if in.Kind == bracket.InputSeed && !in.Phantom {
				id := teamIDs[in.Seed]
				m.SetTeam(p+1, &id)
			}
		}
		matches[i] = m
		index[slot.Coord] = i
	}

	// Slots come upstream first, so a team walking over consecutive byes
	// is carried all the way in one pass.
	for i, slot := range topo.Slots {
		m := &matches[i]
		if !slot.IsBye() || slot.PhantomWinner {
			continue
		}
		winner := m.Team1ID
		if winner == nil {
			winner = m.Team2ID
		}
		if winner == nil {
			continue
		}
		m.WinnerID = winner

		next := topo.Successor(slot.Coord).Winner
		if next == nil {
			continue
		}
		target := &matches[index[next.Coord]]
		target.SetTeam(next.Position, winner)
		if target.Status == bracket.MatchPending && target.HasBothTeams() {
			target.Status = bracket.MatchScheduled
		}
	}

	return matches
}
