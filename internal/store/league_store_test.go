package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/AdamBeresnev/league-engine/internal/bracket"
	"github.com/AdamBeresnev/league-engine/internal/config"
	"github.com/AdamBeresnev/league-engine/internal/db"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a file backed SQLite database in a temp dir and
// applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"
	database, err := db.Open(config.DatabaseConfig{Driver: config.DriverSQLite, DSN: dsn})
	require.NoError(t, err, "Failed to connect to test DB")

	require.NoError(t, db.RunMigrations(database), "Failed to apply migrations")
	return database
}

type fixture struct {
	event   *bracket.Event
	bracket *bracket.Bracket
	teams   []bracket.Team
}

func seedFixture(t *testing.T, database *sqlx.DB, s *LeagueStore, teamCount int) fixture {
	t.Helper()
	ctx := context.Background()

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	event := &bracket.Event{ID: uuid.New(), Name: "Spring Cup", Status: bracket.EventOngoing, CreatedAt: time.Now().UTC()}
	require.NoError(t, s.CreateEvent(ctx, tx, event))

	b := &bracket.Bracket{
		ID:              uuid.New(),
		EventID:         event.ID,
		Name:            "Main",
		SportType:       "football",
		EliminationType: bracket.SingleElimination,
		TeamCount:       teamCount,
		CreatedAt:       time.Now().UTC(),
	}
	require.NoError(t, s.CreateBracket(ctx, tx, b))

	var teams []bracket.Team
	var entries []bracket.BracketTeam
	for i := 0; i < teamCount; i++ {
		team := bracket.Team{ID: uuid.New(), Name: "Team " + string(rune('A'+i)), Sport: "football"}
		require.NoError(t, s.CreateTeam(ctx, tx, &team))
		teams = append(teams, team)
		entries = append(entries, bracket.BracketTeam{BracketID: b.ID, TeamID: team.ID, Seed: i + 1})
	}
	require.NoError(t, s.CreateBracketTeams(ctx, tx, entries))

	require.NoError(t, tx.Commit())
	return fixture{event: event, bracket: b, teams: teams}
}

func TestEventRoundTrip(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewLeagueStore()
	ctx := context.Background()

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	event := &bracket.Event{
		ID:        uuid.New(),
		Name:      "Summer League",
		StartsAt:  &start,
		Status:    bracket.EventOngoing,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.CreateEvent(ctx, database, event))

	fetched, err := s.GetEvent(ctx, database, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.Name, fetched.Name)
	assert.Equal(t, bracket.EventOngoing, fetched.Status)
	require.NotNil(t, fetched.StartsAt)
	assert.True(t, start.Equal(*fetched.StartsAt))
	assert.Nil(t, fetched.EndsAt)

	changed, err := s.SetEventStatus(ctx, database, event.ID, bracket.EventCompleted)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.SetEventStatus(ctx, database, event.ID, bracket.EventCompleted)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = s.GetEvent(ctx, database, uuid.New())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestBracketTeams(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewLeagueStore()
	ctx := context.Background()
	f := seedFixture(t, database, s, 3)

	teams, err := s.ListBracketTeams(ctx, database, f.bracket.ID)
	require.NoError(t, err)
	assert.Equal(t, f.teams, teams)

	n, err := s.CountTeams(ctx, database, []uuid.UUID{f.teams[0].ID, f.teams[2].ID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	brackets, err := s.ListBrackets(ctx, database, f.event.ID)
	require.NoError(t, err)
	require.Len(t, brackets, 1)
	assert.Equal(t, bracket.SingleElimination, brackets[0].EliminationType)
}

func TestMatchSlots(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewLeagueStore()
	ctx := context.Background()
	f := seedFixture(t, database, s, 4)
	a, b, c := f.teams[0].ID, f.teams[1].ID, f.teams[2].ID

	final := bracket.Match{
		ID:          uuid.New(),
		BracketID:   f.bracket.ID,
		RoundNumber: 2,
		MatchOrder:  1,
		Side:        bracket.WinnerSide,
		Status:      bracket.MatchPending,
	}
	reset := bracket.Match{
		ID:          uuid.New(),
		BracketID:   f.bracket.ID,
		RoundNumber: bracket.BracketResetRound,
		MatchOrder:  1,
		Side:        bracket.ChampionshipSide,
		Status:      bracket.MatchHidden,
	}
	require.NoError(t, s.CreateMatches(ctx, database, []bracket.Match{reset, final}))

	t.Run("fill only when empty", func(t *testing.T) {
		ok, err := s.FillSlot(ctx, database, final.ID, 1, a)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.FillSlot(ctx, database, final.ID, 1, b)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = s.ScheduleIfReady(ctx, database, final.ID)
		require.NoError(t, err)
		assert.False(t, ok, "one team is not enough")
	})

	t.Run("replace only the previous team", func(t *testing.T) {
		ok, err := s.ReplaceSlot(ctx, database, final.ID, 1, b, c)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = s.ReplaceSlot(ctx, database, final.ID, 1, a, c)
		require.NoError(t, err)
		assert.True(t, ok)

		m, err := s.GetMatch(ctx, database, final.ID)
		require.NoError(t, err)
		assert.Equal(t, c, *m.Team1ID)
	})

	t.Run("schedule once both teams are in", func(t *testing.T) {
		_, err := s.FillSlot(ctx, database, final.ID, 2, b)
		require.NoError(t, err)

		ok, err := s.ScheduleIfReady(ctx, database, final.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.ScheduleIfReady(ctx, database, final.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		m, err := s.GetMatchAt(ctx, database, f.bracket.ID, final.Coord())
		require.NoError(t, err)
		assert.Equal(t, bracket.MatchScheduled, m.Status)
	})

	t.Run("hidden matches stay out of lists", func(t *testing.T) {
		visible, err := s.ListMatches(ctx, database, f.bracket.ID, false)
		require.NoError(t, err)
		require.Len(t, visible, 1)
		assert.Equal(t, final.ID, visible[0].ID)

		all, err := s.ListMatches(ctx, database, f.bracket.ID, true)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, reset.ID, all[1].ID)

		statuses, err := s.ListEventMatchStatuses(ctx, database, f.event.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []bracket.MatchStatus{bracket.MatchScheduled, bracket.MatchHidden}, statuses)
	})

	t.Run("reveal and hide", func(t *testing.T) {
		ok, err := s.SetTeams(ctx, database, reset.ID, a, b)
		require.NoError(t, err)
		assert.True(t, ok)

		m, err := s.GetMatch(ctx, database, reset.ID)
		require.NoError(t, err)
		assert.Equal(t, bracket.MatchScheduled, m.Status)

		ok, err = s.Hide(ctx, database, reset.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		m, err = s.GetMatch(ctx, database, reset.ID)
		require.NoError(t, err)
		assert.Equal(t, bracket.MatchHidden, m.Status)
		assert.Nil(t, m.Team1ID)
		assert.Nil(t, m.Team2ID)
	})

	t.Run("result and schedule metadata", func(t *testing.T) {
		m, err := s.GetMatch(ctx, database, final.ID)
		require.NoError(t, err)
		m.Score1, m.Score2, m.WinnerID, m.Status = 2, 1, m.Team1ID, bracket.MatchCompleted
		require.NoError(t, s.SaveResult(ctx, database, m))

		at := time.Date(2026, 6, 1, 18, 30, 0, 0, time.UTC)
		ok, err := s.SetScheduledAt(ctx, database, final.ID, &at)
		require.NoError(t, err)
		assert.True(t, ok)

		fetched, err := s.GetMatch(ctx, database, final.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, fetched.Score1)
		assert.Equal(t, c, *fetched.WinnerID)
		require.NotNil(t, fetched.ScheduledAt)
		assert.True(t, at.Equal(*fetched.ScheduledAt))

		ok, err = s.SetStatus(ctx, database, final.ID, bracket.MatchScheduled, bracket.MatchOngoing)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("winner must be a participant", func(t *testing.T) {
		m, err := s.GetMatch(ctx, database, final.ID)
		require.NoError(t, err)
		outsider := f.teams[3].ID
		m.WinnerID = &outsider
		assert.Error(t, s.SaveResult(ctx, database, m))
	})
}

func TestPlacements(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewLeagueStore()
	ctx := context.Background()
	f := seedFixture(t, database, s, 4)

	first := []bracket.Placement{
		{BracketID: f.bracket.ID, TeamID: f.teams[1].ID, Rank: bracket.RankRunnerUp},
		{BracketID: f.bracket.ID, TeamID: f.teams[0].ID, Rank: bracket.RankChampion},
	}
	require.NoError(t, s.ReplacePlacements(ctx, database, f.bracket.ID, first))

	second := []bracket.Placement{
		{BracketID: f.bracket.ID, TeamID: f.teams[2].ID, Rank: bracket.RankChampion},
		{BracketID: f.bracket.ID, TeamID: f.teams[0].ID, Rank: bracket.RankRunnerUp},
		{BracketID: f.bracket.ID, TeamID: f.teams[1].ID, Rank: bracket.RankThirdPlace},
	}
	require.NoError(t, s.ReplacePlacements(ctx, database, f.bracket.ID, second))

	placements, err := s.ListPlacements(ctx, database, f.bracket.ID)
	require.NoError(t, err)
	require.Len(t, placements, 3)
	assert.Equal(t, f.teams[2].ID, placements[0].TeamID)
	assert.Equal(t, bracket.RankThirdPlace, placements[2].Rank)
}
