package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/AdamBeresnev/league-engine/internal/bracket"
	"github.com/AdamBeresnev/league-engine/internal/standings"
	"github.com/AdamBeresnev/league-engine/internal/utils"
	"github.com/a-h/templ"
	"github.com/google/uuid"
)

// MatchList renders the public schedule of a bracket.
func MatchList(v BracketView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, buildMatchListHTML(v))
		return err
	})
}

func buildMatchListHTML(v BracketView) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="bracket" data-bracket-id="%s">`, v.Bracket.ID)
	fmt.Fprintf(&b, `<h2 class="text-xl font-semibold">%s</h2>`, templ.EscapeString(v.Bracket.Name))

	if len(v.Sections) == 0 {
		b.WriteString(`<p class="text-sm text-gray-500">No matches yet.</p></div>`)
		return b.String()
	}

	for _, s := range v.Sections {
		fmt.Fprintf(&b, `<section><h3 class="text-lg font-medium">%s</h3>`, templ.EscapeString(s.Title))
		for _, r := range s.Rounds {
			fmt.Fprintf(&b, `<div class="round"><h4 class="text-sm text-gray-600">%s</h4><ul>`, templ.EscapeString(r.Label))
			for _, m := range r.Matches {
				b.WriteString(buildMatchHTML(m, v.TeamMap))
			}
			b.WriteString(`</ul></div>`)
		}
		b.WriteString(`</section>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func buildMatchHTML(m bracket.Match, teams map[uuid.UUID]bracket.Team) string {
	cls := func(slot int) string {
		switch {
		case m.IsWinner(slot):
			return "font-bold"
		case m.IsLoser(slot):
			return "text-gray-400"
		}
		return ""
	}
	return fmt.Sprintf(
		`<li class="match" data-match-id="%s" data-status="%s"><span class="%s">%s</span> <span class="score">%s</span> <span class="%s">%s</span></li>`,
		m.ID, m.Status,
		cls(1), teamName(teams, m.Team1ID),
		scoreLine(m),
		cls(2), teamName(teams, m.Team2ID),
	)
}

// StandingsTable renders a round robin table. The rank column shows the
// placement once the knockout has finished and the table position before.
func StandingsTable(rows []standings.Row, teams []bracket.Team) templ.Component {
	teamMap := make(map[uuid.UUID]bracket.Team, len(teams))
	for _, t := range teams {
		teamMap[t.ID] = t
	}

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<table class="standings"><thead><tr>`)
		b.WriteString(`<th>#</th><th>Team</th><th>P</th><th>W</th><th>D</th><th>L</th><th>GF</th><th>GA</th><th>GD</th><th>Pts</th>`)
		b.WriteString(`</tr></thead><tbody>`)
		for i, row := range rows {
			rank := i + 1
			if placed := utils.OrZero(row.PlacementRank); placed > 0 {
				rank = placed
			}
			id := row.TeamID
			fmt.Fprintf(&b,
				`<tr data-team-id="%s"><td>%d</td><td>%s</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td><td>%+d</td><td>%d</td></tr>`,
				row.TeamID, rank, teamName(teamMap, &id),
				row.Played, row.Won, row.Drawn, row.Lost,
				row.GoalsFor, row.GoalsAgainst, row.GoalDifference, row.Points,
			)
		}
		b.WriteString(`</tbody></table>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
