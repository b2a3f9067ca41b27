package store

import (
	"context"

	"github.com/AdamBeresnev/league-engine/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (s *LeagueStore) CreateEvent(ctx context.Context, q sqlx.ExtContext, event *bracket.Event) error {
	_, err := sqlx.NamedExecContext(ctx, q, `INSERT INTO events (id, name, starts_at, ends_at, status, created_at)
		VALUES (:id, :name, :starts_at, :ends_at, :status, :created_at)`, event)
	return err
}

func (s *LeagueStore) GetEvent(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (*bracket.Event, error) {
	var event bracket.Event
	if err := sqlx.GetContext(ctx, q, &event, q.Rebind("SELECT * FROM events WHERE id = ?"), id); err != nil {
		return nil, err
	}
	return &event, nil
}

// SetEventStatus reports whether the status actually changed.
func (s *LeagueStore) SetEventStatus(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, status bracket.EventStatus) (bool, error) {
	res, err := q.ExecContext(ctx, q.Rebind("UPDATE events SET status = ? WHERE id = ? AND status <> ?"), status, id, status)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (s *LeagueStore) CreateTeam(ctx context.Context, q sqlx.ExtContext, team *bracket.Team) error {
	_, err := sqlx.NamedExecContext(ctx, q, `INSERT INTO teams (id, name, sport) VALUES (:id, :name, :sport)`, team)
	return err
}

func (s *LeagueStore) GetTeam(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (*bracket.Team, error) {
	var team bracket.Team
	if err := sqlx.GetContext(ctx, q, &team, q.Rebind("SELECT * FROM teams WHERE id = ?"), id); err != nil {
		return nil, err
	}
	return &team, nil
}

// CountTeams returns how many of the given ids exist.
func (s *LeagueStore) CountTeams(ctx context.Context, q sqlx.ExtContext, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In("SELECT COUNT(*) FROM teams WHERE id IN (?)", ids)
	if err != nil {
		return 0, err
	}
	var n int
	err = sqlx.GetContext(ctx, q, &n, q.Rebind(query), args...)
	return n, err
}
