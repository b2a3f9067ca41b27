package service

import (
	"context"

	"github.com/AdamBeresnev/league-engine/internal/bracket"
	"github.com/AdamBeresnev/league-engine/internal/standings"
	"github.com/AdamBeresnev/league-engine/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

type StandingsService struct {
	db    *sqlx.DB
	store *store.LeagueStore
}

func NewStandingsService(db *sqlx.DB, store *store.LeagueStore) *StandingsService {
	return &StandingsService{db: db, store: store}
}

type Standings struct {
	BracketID  uuid.UUID           `json:"bracket_id"`
	Rows       []standings.Row     `json:"rows"`
	Placements []bracket.Placement `json:"placements"`
	Teams      []bracket.Team      `json:"-"`
}

// GetStandings recomputes the table of a round robin bracket. Reads are not
// isolated from concurrent results.
func (s *StandingsService) GetStandings(ctx context.Context, bracketID uuid.UUID) (*Standings, error) {
	b, err := s.store.GetBracket(ctx, s.db, bracketID)
	if err != nil {
		return nil, notFound(err, "bracket", bracketID)
	}
	if !b.EliminationType.HasStandings() {
		return nil, bracket.NewValidationError("bracket_id", "%s brackets have no standings", b.EliminationType)
	}

	var (
		matches    []bracket.Match
		teams      []bracket.Team
		placements []bracket.Placement
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = s.store.ListMatches(gctx, s.db, bracketID, false)
		return err
	})
	g.Go(func() error {
		var err error
		teams, err = s.store.ListBracketTeams(gctx, s.db, bracketID)
		return err
	})
	g.Go(func() error {
		var err error
		placements, err = s.store.ListPlacements(gctx, s.db, bracketID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	rows := standings.Merge(standings.Compute(ids, matches), placements)
	if placements == nil {
		placements = []bracket.Placement{}
	}

	return &Standings{BracketID: bracketID, Rows: rows, Placements: placements, Teams: teams}, nil
}
