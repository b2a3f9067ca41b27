package bracket

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchHidden    MatchStatus = "hidden"
	MatchPending   MatchStatus = "pending"
	MatchScheduled MatchStatus = "scheduled"
	MatchOngoing   MatchStatus = "ongoing"
	MatchCompleted MatchStatus = "completed"
	MatchBye       MatchStatus = "bye"
)

// Started reports whether the match has been played or is being played.
func (s MatchStatus) Started() bool {
	return s == MatchOngoing || s == MatchCompleted
}

// Settled reports whether the match needs no further play.
func (s MatchStatus) Settled() bool {
	return s == MatchCompleted || s == MatchBye
}

var transitions = map[MatchStatus][]MatchStatus{
	MatchHidden:    {MatchPending, MatchScheduled},
	MatchPending:   {MatchScheduled},
	MatchScheduled: {MatchOngoing, MatchCompleted},
	MatchOngoing:   {MatchCompleted},
	MatchCompleted: {MatchCompleted},
}

// CanTransition reports whether a match may move from one status to another.
// scheduled -> completed is the stat-entry shortcut through ongoing, and
// completed -> completed is an edit of an existing result.
func CanTransition(from, to MatchStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type BracketSide string

const (
	WinnerSide         BracketSide = "winner"
	LoserSide          BracketSide = "loser"
	ChampionshipSide   BracketSide = "championship"
	RoundRobinSide     BracketSide = "round_robin"
	KnockoutSemifinal  BracketSide = "knockout_semifinal"
	KnockoutFinal      BracketSide = "knockout_final"
	KnockoutThirdPlace BracketSide = "knockout_third_place"
)

// IsKnockout reports whether the side belongs to the knockout stage layered
// on top of a round robin.
func (s BracketSide) IsKnockout() bool {
	return s == KnockoutSemifinal || s == KnockoutFinal || s == KnockoutThirdPlace
}

type Match struct {
	ID        uuid.UUID `db:"id" json:"id"`
	BracketID uuid.UUID `db:"bracket_id" json:"bracket_id"`

	// Position in the bracket, see Coord for the addressing scheme
	RoundNumber int         `db:"round_number" json:"round_number"`
	MatchOrder  int         `db:"match_order" json:"match_order"`
	Side        BracketSide `db:"bracket_type" json:"bracket_type"`

	Team1ID *uuid.UUID `db:"team1_id" json:"team1_id"`
	Team2ID *uuid.UUID `db:"team2_id" json:"team2_id"`

	Score1   int         `db:"score_team1" json:"score_team1"`
	Score2   int         `db:"score_team2" json:"score_team2"`
	WinnerID *uuid.UUID  `db:"winner_id" json:"winner_id"`
	Status   MatchStatus `db:"status" json:"status"`

	// Set by the schedule assigner, never read by progression
	ScheduledAt *time.Time `db:"scheduled_at" json:"scheduled_at,omitempty"`
}

func (m *Match) Coord() Coord {
	return Coord{Side: m.Side, Round: m.RoundNumber, Order: m.MatchOrder}
}

// Team returns the team in position 1 or 2.
func (m *Match) Team(position int) *uuid.UUID {
	if position == 1 {
		return m.Team1ID
	}
	return m.Team2ID
}

func (m *Match) SetTeam(position int, id *uuid.UUID) {
	if position == 1 {
		m.Team1ID = id
	} else {
		m.Team2ID = id
	}
}

// Position returns the slot the team occupies, or 0 if it is not in the match.
func (m *Match) Position(teamID uuid.UUID) int {
	switch {
	case m.Team1ID != nil && *m.Team1ID == teamID:
		return 1
	case m.Team2ID != nil && *m.Team2ID == teamID:
		return 2
	}
	return 0
}

func (m *Match) HasBothTeams() bool {
	return m.Team1ID != nil && m.Team2ID != nil
}

// LoserID is the participant that is not the winner. It is nil for draws,
// unfinished matches and byes.
func (m *Match) LoserID() *uuid.UUID {
	if m.WinnerID == nil || !m.HasBothTeams() {
		return nil
	}
	if *m.WinnerID == *m.Team1ID {
		return m.Team2ID
	}
	return m.Team1ID
}

func (m *Match) IsWinner(slot int) bool {
	w := m.Team(slot)
	return m.Status == MatchCompleted && m.WinnerID != nil && w != nil && *w == *m.WinnerID
}

func (m *Match) IsLoser(slot int) bool {
	return m.Status == MatchCompleted && m.WinnerID != nil && m.Team(slot) != nil && !m.IsWinner(slot)
}

// Transition moves the match to the given status if the state machine allows it.
func (m *Match) Transition(to MatchStatus) error {
	if !CanTransition(m.Status, to) {
		return NewValidationError("status", "match %s cannot move from %s to %s", m.ID, m.Status, to)
	}
	m.Status = to
	return nil
}
