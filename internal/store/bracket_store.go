package store

import (
	"context"

	"github.com/AdamBeresnev/league-engine/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (s *LeagueStore) CreateBracket(ctx context.Context, q sqlx.ExtContext, b *bracket.Bracket) error {
	_, err := sqlx.NamedExecContext(ctx, q, `INSERT INTO brackets (id, event_id, name, sport_type, elimination_type, team_count, created_at)
		VALUES (:id, :event_id, :name, :sport_type, :elimination_type, :team_count, :created_at)`, b)
	return err
}

func (s *LeagueStore) GetBracket(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (*bracket.Bracket, error) {
	var b bracket.Bracket
	if err := sqlx.GetContext(ctx, q, &b, q.Rebind("SELECT * FROM brackets WHERE id = ?"), id); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *LeagueStore) ListBrackets(ctx context.Context, q sqlx.ExtContext, eventID uuid.UUID) ([]bracket.Bracket, error) {
	var brackets []bracket.Bracket
	err := sqlx.SelectContext(ctx, q, &brackets, q.Rebind("SELECT * FROM brackets WHERE event_id = ? ORDER BY created_at ASC, id ASC"), eventID)
	return brackets, err
}

func (s *LeagueStore) CreateBracketTeams(ctx context.Context, q sqlx.ExtContext, teams []bracket.BracketTeam) error {
	if len(teams) == 0 {
		return nil
	}
	_, err := sqlx.NamedExecContext(ctx, q, `INSERT INTO bracket_teams (bracket_id, team_id, seed)
		VALUES (:bracket_id, :team_id, :seed)`, teams)
	return err
}

// ListBracketTeams returns the teams of a bracket in seed order.
func (s *LeagueStore) ListBracketTeams(ctx context.Context, q sqlx.ExtContext, bracketID uuid.UUID) ([]bracket.Team, error) {
	var teams []bracket.Team
	err := sqlx.SelectContext(ctx, q, &teams, q.Rebind(`SELECT t.id, t.name, t.sport FROM teams t
		JOIN bracket_teams bt ON bt.team_id = t.id
		WHERE bt.bracket_id = ?
		ORDER BY bt.seed ASC`), bracketID)
	return teams, err
}

// ReplacePlacements swaps the knockout placements of a bracket for a new set.
func (s *LeagueStore) ReplacePlacements(ctx context.Context, q sqlx.ExtContext, bracketID uuid.UUID, placements []bracket.Placement) error {
	if _, err := q.ExecContext(ctx, q.Rebind("DELETE FROM placements WHERE bracket_id = ?"), bracketID); err != nil {
		return err
	}
	if len(placements) == 0 {
		return nil
	}
	_, err := sqlx.NamedExecContext(ctx, q, `INSERT INTO placements (bracket_id, team_id, rank)
		VALUES (:bracket_id, :team_id, :rank)`, placements)
	return err
}

func (s *LeagueStore) ListPlacements(ctx context.Context, q sqlx.ExtContext, bracketID uuid.UUID) ([]bracket.Placement, error) {
	var placements []bracket.Placement
	err := sqlx.SelectContext(ctx, q, &placements, q.Rebind("SELECT * FROM placements WHERE bracket_id = ? ORDER BY rank ASC"), bracketID)
	return placements, err
}
