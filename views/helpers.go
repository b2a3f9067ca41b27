package views

import (
	"fmt"

	"github.com/AdamBeresnev/league-engine/internal/bracket"
	"github.com/a-h/templ"
	"github.com/google/uuid"
)

func roundLabel(m bracket.Match) string {
	c := m.Coord()
	switch {
	case c.IsGrandFinal():
		return "Grand final"
	case c.IsBracketReset():
		return "Bracket reset"
	}

	switch m.Side {
	case bracket.LoserSide:
		return fmt.Sprintf("Loser round %d", bracket.LoserRoundIndex(m.RoundNumber))
	case bracket.RoundRobinSide:
		return fmt.Sprintf("Matchday %d", m.RoundNumber)
	case bracket.KnockoutSemifinal:
		return "Semifinals"
	case bracket.KnockoutFinal, bracket.KnockoutThirdPlace:
		return "Final and third place"
	}
	return fmt.Sprintf("Round %d", m.RoundNumber)
}

// teamName returns the escaped display name, or a placeholder while the
// slot is waiting for an upstream result.
func teamName(teams map[uuid.UUID]bracket.Team, id *uuid.UUID) string {
	if id == nil {
		return "TBD"
	}
	if t, ok := teams[*id]; ok {
		return templ.EscapeString(t.Name)
	}
	return templ.EscapeString(id.String())
}

func scoreLine(m bracket.Match) string {
	switch m.Status {
	case bracket.MatchCompleted, bracket.MatchOngoing:
		return fmt.Sprintf("%d - %d", m.Score1, m.Score2)
	case bracket.MatchBye:
		return "bye"
	}
	return "vs"
}
