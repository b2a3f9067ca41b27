package bracket

import (
	"time"

	"github.com/google/uuid"
)

type EliminationType string

const (
	SingleElimination  EliminationType = "single"
	DoubleElimination  EliminationType = "double"
	RoundRobin         EliminationType = "round_robin"
	RoundRobinKnockout EliminationType = "round_robin_knockout"
)

func (t EliminationType) Valid() bool {
	switch t {
	case SingleElimination, DoubleElimination, RoundRobin, RoundRobinKnockout:
		return true
	}
	return false
}

// HasStandings reports whether the format produces a round-robin table.
func (t EliminationType) HasStandings() bool {
	return t == RoundRobin || t == RoundRobinKnockout
}

type Bracket struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	EventID         uuid.UUID       `db:"event_id" json:"event_id"`
	Name            string          `db:"name" json:"name"`
	SportType       string          `db:"sport_type" json:"sport_type"`
	EliminationType EliminationType `db:"elimination_type" json:"elimination_type"`
	TeamCount       int             `db:"team_count" json:"team_count"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// Placement is a final rank assigned by a knockout stage.
type Placement struct {
	BracketID uuid.UUID `db:"bracket_id" json:"-"`
	TeamID    uuid.UUID `db:"team_id" json:"team_id"`
	Rank      int       `db:"rank" json:"rank"`
}

const (
	RankChampion   = 1
	RankRunnerUp   = 2
	RankThirdPlace = 3
)
