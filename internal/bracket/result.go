package bracket

import "github.com/google/uuid"

// ResultInput is a result as submitted by stat entry.
type ResultInput struct {
	Team1Score int        `json:"team1_score"`
	Team2Score int        `json:"team2_score"`
	WinnerID   *uuid.UUID `json:"winner_id,omitempty"`
}

// Result is a validated match result. The concrete type depends on the
// bracket format, see NewResult.
type Result interface {
	Scores() (team1, team2 int)
	// Winner is nil for a draw.
	Winner() *uuid.UUID
	isResult()
}

type SingleElimResult struct {
	Team1Score int
	Team2Score int
	WinnerID   uuid.UUID
}

type DoubleElimResult struct {
	Team1Score int
	Team2Score int
	WinnerID   uuid.UUID
}

// RoundRobinResult carries the winner implied by the scores, nil on a draw.
type RoundRobinResult struct {
	Team1Score int
	Team2Score int
	WinnerID   *uuid.UUID
}

// HybridResult belongs to a round robin with knockout. Draws are only
// possible in the round robin stage.
type HybridResult struct {
	Stage      BracketSide
	Team1Score int
	Team2Score int
	WinnerID   *uuid.UUID
}

func (r SingleElimResult) Scores() (int, int) { return r.Team1Score, r.Team2Score }
func (r SingleElimResult) Winner() *uuid.UUID { return &r.WinnerID }
func (SingleElimResult) isResult() {}

func (r DoubleElimResult) Scores() (int, int) { return r.Team1Score, r.Team2Score }
func (r DoubleElimResult) Winner() *uuid.UUID { return &r.WinnerID }
func (DoubleElimResult) isResult() {}

func (r RoundRobinResult) Scores() (int, int) { return r.Team1Score, r.Team2Score }
func (r RoundRobinResult) Winner() *uuid.UUID { return r.WinnerID }
func (RoundRobinResult) isResult() {}

func (r HybridResult) Scores() (int, int) { return r.Team1Score, r.Team2Score }
func (r HybridResult) Winner() *uuid.UUID { return r.WinnerID }
func (HybridResult) isResult() {}

// NewResult validates a submitted result against the match it is for.
func NewResult(t EliminationType, m *Match, in ResultInput) (Result, error) {
	if in.Team1Score < 0 || in.Team2Score < 0 {
		return nil, NewValidationError("score", "scores cannot be negative")
	}
	if !m.HasBothTeams() {
		return nil, NewValidationError("match_id", "match %s does not have both teams yet", m.ID)
	}

	switch t {
	case SingleElimination:
		winner, err := eliminationWinner(m, in)
		if err != nil {
			return nil, err
		}
		return SingleElimResult{Team1Score: in.Team1Score, Team2Score: in.Team2Score, WinnerID: winner}, nil
	case DoubleElimination:
		winner, err := eliminationWinner(m, in)
		if err != nil {
			return nil, err
		}
		return DoubleElimResult{Team1Score: in.Team1Score, Team2Score: in.Team2Score, WinnerID: winner}, nil
	case RoundRobin:
		winner, err := roundRobinWinner(m, in)
		if err != nil {
			return nil, err
		}
		return RoundRobinResult{Team1Score: in.Team1Score, Team2Score: in.Team2Score, WinnerID: winner}, nil
	case RoundRobinKnockout:
		var winner *uuid.UUID
		if m.Side.IsKnockout() {
			w, err := eliminationWinner(m, in)
			if err != nil {
				return nil, err
			}
			winner = &w
		} else {
			w, err := roundRobinWinner(m, in)
			if err != nil {
				return nil, err
			}
			winner = w
		}
		return HybridResult{Stage: m.Side, Team1Score: in.Team1Score, Team2Score: in.Team2Score, WinnerID: winner}, nil
	}

	return nil, NewValidationError("elimination_type", "unsupported format %q", t)
}

func eliminationWinner(m *Match, in ResultInput) (uuid.UUID, error) {
	if in.WinnerID == nil {
		return uuid.Nil, NewValidationError("winner_id", "elimination matches require a winner")
	}
	if m.Position(*in.WinnerID) == 0 {
		return uuid.Nil, NewValidationError("winner_id", "team %s is not playing match %s", *in.WinnerID, m.ID)
	}
	if implied := scoreLeader(m, in); implied != nil && *implied != *in.WinnerID {
		return uuid.Nil, NewValidationError("winner_id", "winner %s contradicts the score %d-%d", *in.WinnerID, in.Team1Score, in.Team2Score)
	}
	return *in.WinnerID, nil
}

func roundRobinWinner(m *Match, in ResultInput) (*uuid.UUID, error) {
	implied := scoreLeader(m, in)
	if in.WinnerID != nil {
		if implied == nil {
			return nil, NewValidationError("winner_id", "a level score %d-%d is a draw", in.Team1Score, in.Team2Score)
		}
		if *implied != *in.WinnerID {
			return nil, NewValidationError("winner_id", "winner %s contradicts the score %d-%d", *in.WinnerID, in.Team1Score, in.Team2Score)
		}
	}
	return implied, nil
}

// scoreLeader returns the team ahead on score, nil when level.
func scoreLeader(m *Match, in ResultInput) *uuid.UUID {
	switch {
	case in.Team1Score > in.Team2Score:
		id := *m.Team1ID
		return &id
	case in.Team2Score > in.Team1Score:
		id := *m.Team2ID
		return &id
	}
	return nil
}
