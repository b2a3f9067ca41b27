package standings

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/AdamBeresnev/league-engine/internal/bracket"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	teamA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	teamB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	teamC = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
	teamD = uuid.MustParse("00000000-0000-0000-0000-00000000000d")
)

func played(home, away uuid.UUID, homeScore, awayScore int) bracket.Match {
	return bracket.Match{
		ID:      uuid.New(),
		Side:    bracket.RoundRobinSide,
		Team1ID: &home,
		Team2ID: &away,
		Score1:  homeScore,
		Score2:  awayScore,
		Status:  bracket.MatchCompleted,
	}
}

// A, B and C all finish on 6 points. A and C are level on goal difference
// but C scored more.
func tieBreakMatches() []bracket.Match {
	return []bracket.Match{
		played(teamA, teamB, 2, 1),
		played(teamB, teamC, 2, 1),
		played(teamC, teamA, 3, 1),
		played(teamA, teamD, 5, 1),
		played(teamB, teamD, 2, 1),
		played(teamC, teamD, 6, 4),
	}
}

func TestComputeTieBreak(t *testing.T) {
	rows := Compute([]uuid.UUID{teamA, teamB, teamC, teamD}, tieBreakMatches())
	require.Len(t, rows, 4)

	order := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		order[i] = r.TeamID
	}
	assert.Equal(t, []uuid.UUID{teamC, teamA, teamB, teamD}, order)

	assert.Equal(t, Row{
		TeamID: teamC, Played: 3, Won: 2, Lost: 1,
		GoalsFor: 10, GoalsAgainst: 7, GoalDifference: 3, Points: 6,
	}, rows[0])
	assert.Equal(t, Row{
		TeamID: teamA, Played: 3, Won: 2, Lost: 1,
		GoalsFor: 8, GoalsAgainst: 5, GoalDifference: 3, Points: 6,
	}, rows[1])
	assert.Equal(t, 1, rows[2].GoalDifference)
	assert.Equal(t, 0, rows[3].Points)
}

func TestComputeIsDeterministic(t *testing.T) {
	teams := []uuid.UUID{teamD, teamB, teamA, teamC}
	first := Compute(teams, tieBreakMatches())

	shuffled := tieBreakMatches()
	rand.New(rand.NewSource(42)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	second := Compute([]uuid.UUID{teamC, teamA, teamD, teamB}, shuffled)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("standings differ between runs (-first +second):\n%s", diff)
	}

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestComputeDrawsAndIgnoredMatches(t *testing.T) {
	unfinished := played(teamA, teamB, 9, 0)
	unfinished.Status = bracket.MatchOngoing

	knockout := played(teamA, teamB, 9, 0)
	knockout.Side = bracket.KnockoutFinal

	matches := []bracket.Match{
		played(teamB, teamA, 0, 0),
		unfinished,
		knockout,
	}

	rows := Compute([]uuid.UUID{teamB, teamA, teamC}, matches)
	require.Len(t, rows, 3)

	// Level on everything, so the lower id ranks first.
	assert.Equal(t, teamA, rows[0].TeamID)
	assert.Equal(t, teamB, rows[1].TeamID)
	assert.Equal(t, Row{TeamID: teamA, Played: 1, Drawn: 1, Points: 1}, rows[0])

	assert.Equal(t, Row{TeamID: teamC}, rows[2])
}

func TestMerge(t *testing.T) {
	rows := Compute([]uuid.UUID{teamA, teamB, teamC, teamD}, tieBreakMatches())

	t.Run("without placements", func(t *testing.T) {
		merged := Merge(rows, nil)
		assert.Equal(t, rows, merged)
		for _, r := range merged {
			assert.Nil(t, r.PlacementRank)
		}
	})

	t.Run("knockout finished", func(t *testing.T) {
		placements := []bracket.Placement{
			{TeamID: teamB, Rank: bracket.RankThirdPlace},
			{TeamID: teamD, Rank: bracket.RankChampion},
			{TeamID: teamA, Rank: bracket.RankRunnerUp},
		}
		merged := Merge(rows, placements)
		require.Len(t, merged, 4)

		want := []struct {
			team uuid.UUID
			rank int
		}{
			{teamD, 1},
			{teamA, 2},
			{teamB, 3},
			{teamC, 4},
		}
		for i, w := range want {
			assert.Equal(t, w.team, merged[i].TeamID)
			require.NotNil(t, merged[i].PlacementRank)
			assert.Equal(t, w.rank, *merged[i].PlacementRank)
		}

		// The input table is left alone.
		assert.Nil(t, rows[0].PlacementRank)
	})
}
