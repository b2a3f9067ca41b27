package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/league-engine/internal/bracket"
	"github.com/AdamBeresnev/league-engine/internal/standings"
	"github.com/AdamBeresnev/league-engine/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// advancer propagates one match result through its bracket. It lives for a
// single transaction.
type advancer struct {
	store   *store.LeagueStore
	q       sqlx.ExtContext
	bracket *bracket.Bracket
	topo    *bracket.Topology
	logger  *slog.Logger
}

// matchAt loads the match stored at a topology coordinate. A missing row
// means generation and topology disagree.
func (a *advancer) matchAt(ctx context.Context, c bracket.Coord) (*bracket.Match, error) {
	m, err := a.store.GetMatchAt(ctx, a.q, a.bracket.ID, c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, bracket.NewInvariantViolation("bracket %s has no match at %s", a.bracket.ID, c)
	}
	return m, err
}

// advance applies the result now stored on m. previous is the match as it
// was before an edit, nil on a first completion. It reports whether a
// bracket reset was revealed.
func (a *advancer) advance(ctx context.Context, m, previous *bracket.Match) (bool, error) {
	c := m.Coord()

	switch {
	case m.Side == bracket.RoundRobinSide:
		if a.topo.Type == bracket.RoundRobinKnockout {
			return false, a.seedKnockout(ctx)
		}
		return false, nil
	case c.IsGrandFinal():
		return a.resolveGrandFinal(ctx, m)
	case c.IsBracketReset():
		return false, nil
	}

	var prevWinner, prevLoser *uuid.UUID
	if previous != nil && previous.Status == bracket.MatchCompleted {
		prevWinner, prevLoser = previous.WinnerID, previous.LoserID()
	}

	succ := a.topo.Successor(c)
	if succ.Winner != nil && m.WinnerID != nil {
		if err := a.place(ctx, *succ.Winner, *m.WinnerID, prevWinner); err != nil {
			return false, err
		}
	}
	if succ.Loser != nil && m.LoserID() != nil {
		if err := a.place(ctx, *succ.Loser, *m.LoserID(), prevLoser); err != nil {
			return false, err
		}
	}

	if m.Side == bracket.KnockoutFinal || m.Side == bracket.KnockoutThirdPlace {
		return false, a.writePlacements(ctx)
	}
	return false, nil
}

// place writes team into a downstream position. The write is a no-op when
// the team is already there, replaces previous only while the target has
// not started, and is a conflict in every other case.
func (a *advancer) place(ctx context.Context, target bracket.Target, team uuid.UUID, previous *uuid.UUID) error {
	tm, err := a.matchAt(ctx, target.Coord)
	if err != nil {
		return err
	}

	current := tm.Team(target.Position)
	switch {
	case current == nil:
		ok, err := a.store.FillSlot(ctx, a.q, tm.ID, target.Position, team)
		if err != nil {
			return fmt.Errorf("failed to fill %s: %w", target, err)
		}
		if !ok {
			// Someone filled it between our read and write.
			fresh, err := a.store.GetMatch(ctx, a.q, tm.ID)
			if err != nil {
				return err
			}
			if got := fresh.Team(target.Position); got == nil || *got != team {
				return bracket.NewConflictError(tm.ID, "%s was filled concurrently with another team", target)
			}
		}
	case *current == team:
	case previous != nil && *current == *previous:
		if tm.Status.Started() {
			return bracket.NewConflictError(tm.ID, "%s has already started with %s", target, *previous)
		}
		ok, err := a.store.ReplaceSlot(ctx, a.q, tm.ID, target.Position, *previous, team)
		if err != nil {
			return fmt.Errorf("failed to replace %s: %w", target, err)
		}
		if !ok {
			return bracket.NewConflictError(tm.ID, "%s changed while being replaced", target)
		}
	default:
		return bracket.NewConflictError(tm.ID, "%s already holds %s, refusing to write %s", target, *current, team)
	}

	if tm.Status == bracket.MatchBye {
		if err := a.store.SetByeWinner(ctx, a.q, tm.ID, &team); err != nil {
			return fmt.Errorf("failed to settle bye %s: %w", target.Coord, err)
		}
		if next := a.topo.Successor(target.Coord).Winner; next != nil {
			return a.place(ctx, *next, team, previous)
		}
		return nil
	}

	if _, err := a.store.ScheduleIfReady(ctx, a.q, tm.ID); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", target.Coord, err)
	}
	return nil
}

// resolveGrandFinal reveals the bracket reset when the team from the loser
// bracket (position 2) wins, and hides it again when the winner bracket
// champion wins.
func (a *advancer) resolveGrandFinal(ctx context.Context, gf *bracket.Match) (bool, error) {
	reset, err := a.matchAt(ctx, bracket.BracketReset())
	if err != nil {
		return false, err
	}

	if gf.Position(*gf.WinnerID) == 2 {
		if reset.Status != bracket.MatchHidden {
			return false, nil
		}
		ok, err := a.store.SetTeams(ctx, a.q, reset.ID, *gf.Team1ID, *gf.Team2ID)
		if err != nil {
			return false, fmt.Errorf("failed to reveal bracket reset: %w", err)
		}
		if ok {
			a.logger.Info("bracket reset revealed", "bracket_id", a.bracket.ID, "match_id", reset.ID)
		}
		return ok, nil
	}

	if reset.Status == bracket.MatchHidden {
		return false, nil
	}
	if reset.Status.Started() {
		return false, bracket.NewConflictError(reset.ID, "bracket reset has already started")
	}
	if _, err := a.store.Hide(ctx, a.q, reset.ID); err != nil {
		return false, fmt.Errorf("failed to hide bracket reset: %w", err)
	}
	return false, nil
}

// seedKnockout fills the semifinals from the standings once every round
// robin match is completed. An edit before the semifinals start re-seeds
// them.
func (a *advancer) seedKnockout(ctx context.Context) error {
	matches, err := a.store.ListMatches(ctx, a.q, a.bracket.ID, true)
	if err != nil {
		return err
	}
	semis := make(map[bracket.Coord]*bracket.Match, 2)
	for i := range matches {
		m := &matches[i]
		if m.Side == bracket.RoundRobinSide && m.Status != bracket.MatchCompleted {
			return nil
		}
		if m.Side == bracket.KnockoutSemifinal {
			semis[m.Coord()] = m
		}
	}

	teams, err := a.store.ListBracketTeams(ctx, a.q, a.bracket.ID)
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	rows := standings.Compute(ids, matches)

	for o := 1; o <= 2; o++ {
		c := a.topo.SemifinalCoord(o)
		slot, _ := a.topo.Slot(c)
		semi, ok := semis[c]
		if !ok {
			return bracket.NewInvariantViolation("bracket %s has no match at %s", a.bracket.ID, c)
		}

		home, away := rows[slot.Inputs[0].Rank-1].TeamID, rows[slot.Inputs[1].Rank-1].TeamID
		if semi.Status == bracket.MatchScheduled && semi.Position(home) == 1 && semi.Position(away) == 2 {
			continue
		}
		if semi.Status.Started() {
			return bracket.NewConflictError(semi.ID, "semifinal has already started")
		}
		if _, err := a.store.SetTeams(ctx, a.q, semi.ID, home, away); err != nil {
			return fmt.Errorf("failed to seed %s: %w", c, err)
		}
	}

	a.logger.Info("knockout seeded from standings", "bracket_id", a.bracket.ID)
	return nil
}

// writePlacements records ranks 1 to 3 once both the final and the third
// place match are completed.
func (a *advancer) writePlacements(ctx context.Context) error {
	final, err := a.matchAt(ctx, a.topo.FinalCoord())
	if err != nil {
		return err
	}
	third, err := a.matchAt(ctx, a.topo.ThirdPlaceCoord())
	if err != nil {
		return err
	}
	if final.Status != bracket.MatchCompleted || third.Status != bracket.MatchCompleted {
		return nil
	}

	placements := []bracket.Placement{
		{BracketID: a.bracket.ID, TeamID: *final.WinnerID, Rank: bracket.RankChampion},
		{BracketID: a.bracket.ID, TeamID: *final.LoserID(), Rank: bracket.RankRunnerUp},
		{BracketID: a.bracket.ID, TeamID: *third.WinnerID, Rank: bracket.RankThirdPlace},
	}
	if err := a.store.ReplacePlacements(ctx, a.q, a.bracket.ID, placements); err != nil {
		return fmt.Errorf("failed to write placements: %w", err)
	}
	return nil
}

// checkEditable rejects a changed result for m when any match that consumed
// its old result has already started. Byes are followed through, the
// bracket reset consumes the grand final, and the whole knockout stage
// consumes the round robin.
func (a *advancer) checkEditable(ctx context.Context, m *bracket.Match) error {
	c := m.Coord()

	if m.Side == bracket.RoundRobinSide {
		if a.topo.Type != bracket.RoundRobinKnockout {
			return nil
		}
		for _, kc := range []bracket.Coord{a.topo.SemifinalCoord(1), a.topo.SemifinalCoord(2), a.topo.FinalCoord(), a.topo.ThirdPlaceCoord()} {
			km, err := a.matchAt(ctx, kc)
			if err != nil {
				return err
			}
			if km.Status.Started() {
				return bracket.NewConflictError(m.ID, "knockout match %s has already started", kc)
			}
		}
		return nil
	}

	if c.IsGrandFinal() {
		reset, err := a.matchAt(ctx, bracket.BracketReset())
		if err != nil {
			return err
		}
		if reset.Status.Started() {
			return bracket.NewConflictError(m.ID, "bracket reset has already started")
		}
		return nil
	}

	return a.checkConsumers(ctx, m.ID, c)
}

func (a *advancer) checkConsumers(ctx context.Context, matchID uuid.UUID, c bracket.Coord) error {
	succ := a.topo.Successor(c)
	for _, target := range []*bracket.Target{succ.Winner, succ.Loser} {
		if target == nil {
			continue
		}
		tm, err := a.matchAt(ctx, target.Coord)
		if err != nil {
			return err
		}
		if tm.Status.Started() {
			return bracket.NewConflictError(matchID, "downstream match %s has already started", target.Coord)
		}
		if tm.Status == bracket.MatchBye {
			if err := a.checkConsumers(ctx, matchID, target.Coord); err != nil {
				return err
			}
		}
	}
	return nil
}
