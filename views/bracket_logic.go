package views

import (
	"sort"

	"github.com/AdamBeresnev/league-engine/internal/bracket"
	"github.com/google/uuid"
)

type Round struct {
	Label   string
	Matches []bracket.Match
}

type Section struct {
	Title  string
	Rounds []Round
}

type BracketView struct {
	Bracket  *bracket.Bracket
	Sections []Section
	TeamMap  map[uuid.UUID]bracket.Team
}

var sectionOrder = []struct {
	title string
	sides []bracket.BracketSide
}{
	{"Winner bracket", []bracket.BracketSide{bracket.WinnerSide}},
	{"Loser bracket", []bracket.BracketSide{bracket.LoserSide}},
	{"Finals", []bracket.BracketSide{bracket.ChampionshipSide}},
	{"Group stage", []bracket.BracketSide{bracket.RoundRobinSide}},
	{"Knockout", []bracket.BracketSide{bracket.KnockoutSemifinal, bracket.KnockoutFinal, bracket.KnockoutThirdPlace}},
}

// PrepareBracketView groups matches into sections and rounds for display.
// Hidden matches are dropped even if the caller passed them in.
func PrepareBracketView(b *bracket.Bracket, teams []bracket.Team, matches []bracket.Match) BracketView {
	teamMap := make(map[uuid.UUID]bracket.Team, len(teams))
	for _, t := range teams {
		teamMap[t.ID] = t
	}

	bySide := make(map[bracket.BracketSide][]bracket.Match)
	for _, m := range matches {
		if m.Status == bracket.MatchHidden {
			continue
		}
		bySide[m.Side] = append(bySide[m.Side], m)
	}

	var sections []Section
	for _, s := range sectionOrder {
		var ms []bracket.Match
		for _, side := range s.sides {
			ms = append(ms, bySide[side]...)
		}
		if len(ms) == 0 {
			continue
		}
		sections = append(sections, Section{Title: s.title, Rounds: groupRounds(ms)})
	}

	return BracketView{Bracket: b, Sections: sections, TeamMap: teamMap}
}

func groupRounds(matches []bracket.Match) []Round {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].RoundNumber != matches[j].RoundNumber {
			return matches[i].RoundNumber < matches[j].RoundNumber
		}
		return matches[i].MatchOrder < matches[j].MatchOrder
	})

	var rounds []Round
	for _, m := range matches {
		label := roundLabel(m)
		if n := len(rounds); n > 0 && rounds[n-1].Label == label {
			rounds[n-1].Matches = append(rounds[n-1].Matches, m)
			continue
		}
		rounds = append(rounds, Round{Label: label, Matches: []bracket.Match{m}})
	}
	return rounds
}
