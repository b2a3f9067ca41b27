package bracket

import "github.com/google/uuid"

// Team is a reference to a roster team. The engine never mutates it.
type Team struct {
	ID    uuid.UUID `db:"id" json:"id"`
	Name  string    `db:"name" json:"name"`
	Sport string    `db:"sport" json:"sport"`
}

// BracketTeam places a team into a bracket at a given seed (1-based).
type BracketTeam struct {
	BracketID uuid.UUID `db:"bracket_id" json:"bracket_id"`
	TeamID    uuid.UUID `db:"team_id" json:"team_id"`
	Seed      int       `db:"seed" json:"seed"`
}
