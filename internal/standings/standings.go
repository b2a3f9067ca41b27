// Package standings derives round robin tables from completed matches.
// Nothing here is persisted; tables are recomputed on every read.
package standings

import (
	"bytes"
	"sort"

	"github.com/AdamBeresnev/league-engine/internal/bracket"
	"github.com/google/uuid"
)

const (
	PointsWin  = 3
	PointsDraw = 1
	PointsLoss = 0
)

type Row struct {
	TeamID         uuid.UUID `json:"team_id"`
	Played         int       `json:"played"`
	Won            int       `json:"won"`
	Drawn          int       `json:"drawn"`
	Lost           int       `json:"lost"`
	GoalsFor       int       `json:"goals_for"`
	GoalsAgainst   int       `json:"goals_against"`
	GoalDifference int       `json:"goal_difference"`
	Points         int       `json:"points"`
	// Set only once a knockout stage has finished.
	PlacementRank *int `json:"placement_rank"`
}

// Compute builds the table for the given teams from the completed round
// robin matches. Teams without a result still get a row. Rows are ordered by
// points, goal difference and goals for, all descending, then by team id so
// the order is total.
func Compute(teamIDs []uuid.UUID, matches []bracket.Match) []Row {
	rows := make([]Row, len(teamIDs))
	byTeam := make(map[uuid.UUID]*Row, len(teamIDs))
	for i, id := range teamIDs {
		rows[i].TeamID = id
		byTeam[id] = &rows[i]
	}

	for _, m := range matches {
		if m.Side != bracket.RoundRobinSide || m.Status != bracket.MatchCompleted || !m.HasBothTeams() {
			continue
		}
		home, away := byTeam[*m.Team1ID], byTeam[*m.Team2ID]
		if home == nil || away == nil {
			continue
		}
		home.record(m.Score1, m.Score2)
		away.record(m.Score2, m.Score1)
	}

	sort.Slice(rows, func(i, j int) bool {
		return less(rows[i], rows[j])
	})

	return rows
}

func (r *Row) record(scored, conceded int) {
	r.Played++
	r.GoalsFor += scored
	r.GoalsAgainst += conceded
	r.GoalDifference = r.GoalsFor - r.GoalsAgainst

	switch {
	case scored > conceded:
		r.Won++
		r.Points += PointsWin
	case scored == conceded:
		r.Drawn++
		r.Points += PointsDraw
	default:
		r.Lost++
		r.Points += PointsLoss
	}
}

func less(a, b Row) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.GoalDifference != b.GoalDifference {
		return a.GoalDifference > b.GoalDifference
	}
	if a.GoalsFor != b.GoalsFor {
		return a.GoalsFor > b.GoalsFor
	}
	// Team id is the last-resort key so the order is total.
	return bytes.Compare(a.TeamID[:], b.TeamID[:]) < 0
}

// Merge applies knockout placements to a computed table. Placed teams take
// their rank and the rest follow in table order from rank 4. Without
// placements the rows are returned unranked.
func Merge(rows []Row, placements []bracket.Placement) []Row {
	merged := make([]Row, 0, len(rows))
	if len(placements) == 0 {
		return append(merged, rows...)
	}

	placed := make(map[uuid.UUID]int, len(placements))
	for _, p := range placements {
		placed[p.TeamID] = p.Rank
	}

	var rest []Row
	for _, r := range rows {
		if rank, ok := placed[r.TeamID]; ok {
			r.PlacementRank = &rank
			merged = append(merged, r)
		} else {
			rest = append(rest, r)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return *merged[i].PlacementRank < *merged[j].PlacementRank
	})

	next := len(merged) + 1
	for _, r := range rest {
		rank := next
		r.PlacementRank = &rank
		merged = append(merged, r)
		next++
	}

	return merged
}
