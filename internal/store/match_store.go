package store

import (
	"context"
	"fmt"
	"time"

	"github.com/AdamBeresnev/league-engine/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (s *LeagueStore) CreateMatches(ctx context.Context, q sqlx.ExtContext, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}
	_, err := sqlx.NamedExecContext(ctx, q, `INSERT INTO matches (id, bracket_id, round_number, match_order, bracket_type, team1_id, team2_id, score_team1, score_team2, winner_id, status, scheduled_at)
		VALUES (:id, :bracket_id, :round_number, :match_order, :bracket_type, :team1_id, :team2_id, :score_team1, :score_team2, :winner_id, :status, :scheduled_at)`, matches)
	return err
}

func (s *LeagueStore) GetMatch(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (*bracket.Match, error) {
	var match bracket.Match
	if err := sqlx.GetContext(ctx, q, &match, q.Rebind("SELECT * FROM matches WHERE id = ?"), id); err != nil {
		return nil, err
	}
	return &match, nil
}

// GetMatchAt loads the match stored at a bracket coordinate.
func (s *LeagueStore) GetMatchAt(ctx context.Context, q sqlx.ExtContext, bracketID uuid.UUID, c bracket.Coord) (*bracket.Match, error) {
	var match bracket.Match
	err := sqlx.GetContext(ctx, q, &match, q.Rebind(`SELECT * FROM matches
		WHERE bracket_id = ? AND bracket_type = ? AND round_number = ? AND match_order = ?`),
		bracketID, c.Side, c.Round, c.Order)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// ListMatches returns the matches of a bracket by round, then match order.
// Hidden matches are left out unless asked for.
func (s *LeagueStore) ListMatches(ctx context.Context, q sqlx.ExtContext, bracketID uuid.UUID, includeHidden bool) ([]bracket.Match, error) {
	query := "SELECT * FROM matches WHERE bracket_id = ?"
	args := []any{bracketID}
	if !includeHidden {
		query += " AND status <> ?"
		args = append(args, bracket.MatchHidden)
	}
	query += " ORDER BY round_number ASC, match_order ASC, bracket_type ASC"

	var matches []bracket.Match
	err := sqlx.SelectContext(ctx, q, &matches, q.Rebind(query), args...)
	return matches, err
}

// ListEventMatchStatuses returns the status of every match in every bracket
// of an event.
func (s *LeagueStore) ListEventMatchStatuses(ctx context.Context, q sqlx.ExtContext, eventID uuid.UUID) ([]bracket.MatchStatus, error) {
	var statuses []bracket.MatchStatus
	err := sqlx.SelectContext(ctx, q, &statuses, q.Rebind(`SELECT m.status FROM matches m
		JOIN brackets b ON b.id = m.bracket_id
		WHERE b.event_id = ?`), eventID)
	return statuses, err
}

// SaveResult writes the scores, winner and status of a match.
func (s *LeagueStore) SaveResult(ctx context.Context, q sqlx.ExtContext, m *bracket.Match) error {
	_, err := q.ExecContext(ctx, q.Rebind(`UPDATE matches SET score_team1 = ?, score_team2 = ?, winner_id = ?, status = ? WHERE id = ?`),
		m.Score1, m.Score2, m.WinnerID, m.Status, m.ID)
	return err
}

// SetStatus moves a match from one status to another. It reports false if
// the match was no longer in the expected status.
func (s *LeagueStore) SetStatus(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, from, to bracket.MatchStatus) (bool, error) {
	res, err := q.ExecContext(ctx, q.Rebind("UPDATE matches SET status = ? WHERE id = ? AND status = ?"), to, id, from)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func teamColumn(position int) (string, error) {
	switch position {
	case 1:
		return "team1_id", nil
	case 2:
		return "team2_id", nil
	}
	return "", fmt.Errorf("invalid team position %d", position)
}

// FillSlot sets a team position only while it is empty. Two results racing
// for the same match each fill their own position, and a second write to
// the same position reports false instead of overwriting.
func (s *LeagueStore) FillSlot(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, position int, teamID uuid.UUID) (bool, error) {
	col, err := teamColumn(position)
	if err != nil {
		return false, err
	}
	res, err := q.ExecContext(ctx, q.Rebind(fmt.Sprintf("UPDATE matches SET %[1]s = ? WHERE id = ? AND %[1]s IS NULL", col)), teamID, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// ReplaceSlot swaps the team in a position, but only while it still holds
// previous and the match has not started.
func (s *LeagueStore) ReplaceSlot(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, position int, previous, teamID uuid.UUID) (bool, error) {
	col, err := teamColumn(position)
	if err != nil {
		return false, err
	}
	res, err := q.ExecContext(ctx, q.Rebind(fmt.Sprintf(
		"UPDATE matches SET %[1]s = ?, winner_id = NULL WHERE id = ? AND %[1]s = ? AND status NOT IN (?, ?)", col)),
		teamID, id, previous, bracket.MatchOngoing, bracket.MatchCompleted)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// ScheduleIfReady flips a waiting match to scheduled once both teams are known.
func (s *LeagueStore) ScheduleIfReady(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (bool, error) {
	res, err := q.ExecContext(ctx, q.Rebind(`UPDATE matches SET status = ?
		WHERE id = ? AND team1_id IS NOT NULL AND team2_id IS NOT NULL AND status IN (?, ?)`),
		bracket.MatchScheduled, id, bracket.MatchHidden, bracket.MatchPending)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// SetByeWinner records the team that walks over a bye.
func (s *LeagueStore) SetByeWinner(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, winnerID *uuid.UUID) error {
	_, err := q.ExecContext(ctx, q.Rebind("UPDATE matches SET winner_id = ? WHERE id = ? AND status = ?"), winnerID, id, bracket.MatchBye)
	return err
}

// SetTeams overwrites both positions of a match that has not started and
// schedules it.
func (s *LeagueStore) SetTeams(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, team1, team2 uuid.UUID) (bool, error) {
	res, err := q.ExecContext(ctx, q.Rebind(`UPDATE matches
		SET team1_id = ?, team2_id = ?, score_team1 = 0, score_team2 = 0, winner_id = NULL, status = ?
		WHERE id = ? AND status IN (?, ?, ?)`),
		team1, team2, bracket.MatchScheduled, id, bracket.MatchHidden, bracket.MatchPending, bracket.MatchScheduled)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// Hide empties an unstarted match and takes it out of public lists.
func (s *LeagueStore) Hide(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (bool, error) {
	res, err := q.ExecContext(ctx, q.Rebind(`UPDATE matches
		SET team1_id = NULL, team2_id = NULL, score_team1 = 0, score_team2 = 0, winner_id = NULL, status = ?
		WHERE id = ? AND status IN (?, ?)`),
		bracket.MatchHidden, id, bracket.MatchPending, bracket.MatchScheduled)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (s *LeagueStore) SetScheduledAt(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, at *time.Time) (bool, error) {
	res, err := q.ExecContext(ctx, q.Rebind("UPDATE matches SET scheduled_at = ? WHERE id = ?"), at, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}
