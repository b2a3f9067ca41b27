package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/AdamBeresnev/league-engine/internal/bracket"
	"github.com/AdamBeresnev/league-engine/internal/config"
	"github.com/AdamBeresnev/league-engine/internal/db"
	"github.com/AdamBeresnev/league-engine/internal/metrics"
	"github.com/AdamBeresnev/league-engine/internal/store"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

// setupTestDB creates a file backed SQLite database in a temp dir and
// applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"
	database, err := db.Open(config.DatabaseConfig{Driver: config.DriverSQLite, DSN: dsn})
	require.NoError(t, err, "Failed to connect to test DB")
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database), "Failed to apply migrations")
	return database
}

type testEnv struct {
	db        *sqlx.DB
	store     *store.LeagueStore
	events    *EventService
	teams     *TeamService
	brackets  *BracketService
	matches   *MatchService
	standings *StandingsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database := setupTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewLeagueStore()

	return &testEnv{
		db:        database,
		store:     st,
		events:    NewEventService(database, st, logger),
		teams:     NewTeamService(database, st),
		brackets:  NewBracketService(database, st, logger),
		matches:   NewMatchService(database, st, logger, metrics.New(prometheus.NewRegistry()), otel.Tracer("league-engine-test")),
		standings: NewStandingsService(database, st),
	}
}

func (e *testEnv) newEvent(t *testing.T) *bracket.Event {
	t.Helper()
	event, err := e.events.CreateEvent(context.Background(), EventInput{Name: gofakeit.Company() + " Cup"})
	require.NoError(t, err)
	return event
}

func (e *testEnv) registerTeams(t *testing.T, n int) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, n)
	for i := range ids {
		team, err := e.teams.RegisterTeam(context.Background(), TeamInput{Name: gofakeit.Company(), Sport: "football"})
		require.NoError(t, err)
		ids[i] = team.ID
	}
	return ids
}

func (e *testEnv) newBracket(t *testing.T, eventID uuid.UUID, format bracket.EliminationType, teamIDs []uuid.UUID) *bracket.Bracket {
	t.Helper()
	data, err := e.brackets.CreateBracket(context.Background(), BracketInput{
		EventID:         eventID,
		Name:            "Main draw",
		SportType:       "football",
		EliminationType: format,
		TeamIDs:         teamIDs,
	})
	require.NoError(t, err)
	return data.Bracket
}

func (e *testEnv) matchAt(t *testing.T, bracketID uuid.UUID, c bracket.Coord) *bracket.Match {
	t.Helper()
	m, err := e.store.GetMatchAt(context.Background(), e.db, bracketID, c)
	require.NoError(t, err, "no match at %s", c)
	return m
}

// win completes a match 2-1 for the given team.
func (e *testEnv) win(t *testing.T, m *bracket.Match, winner uuid.UUID) *CompletionOutcome {
	t.Helper()
	fresh, err := e.store.GetMatch(context.Background(), e.db, m.ID)
	require.NoError(t, err)

	in := bracket.ResultInput{Team1Score: 2, Team2Score: 1, WinnerID: &winner}
	if fresh.Position(winner) == 2 {
		in.Team1Score, in.Team2Score = 1, 2
	}
	outcome, err := e.matches.CompleteMatch(context.Background(), m.ID, in)
	require.NoError(t, err)
	return outcome
}

func (e *testEnv) eventStatus(t *testing.T, id uuid.UUID) bracket.EventStatus {
	t.Helper()
	event, err := e.store.GetEvent(context.Background(), e.db, id)
	require.NoError(t, err)
	return event.Status
}

func wb(round, order int) bracket.Coord {
	return bracket.Coord{Side: bracket.WinnerSide, Round: round, Order: order}
}

func lb(round, order int) bracket.Coord {
	return bracket.Coord{Side: bracket.LoserSide, Round: bracket.LoserRound(round), Order: order}
}

func TestGenerateMatchesSeedsAndByes(t *testing.T) {
	topo, err := bracket.Resolve(bracket.SingleElimination, 5)
	require.NoError(t, err)

	teams := make([]uuid.UUID, 5)
	for i := range teams {
		teams[i] = uuid.New()
	}
	bracketID := uuid.New()
	matches := generateMatches(bracketID, topo, teams)
	require.Len(t, matches, len(topo.Slots))

	byCoord := make(map[bracket.Coord]bracket.Match)
	for _, m := range matches {
		assert.Equal(t, bracketID, m.BracketID)
		byCoord[m.Coord()] = m
	}

	testCases := []struct {
		name   string
		coord  bracket.Coord
		team1  *uuid.UUID
		team2  *uuid.UUID
		winner *uuid.UUID
		status bracket.MatchStatus
	}{
		{"seed 1 walks over", wb(1, 1), &teams[0], nil, &teams[0], bracket.MatchBye},
		{"seeds 4 and 5 play", wb(1, 2), &teams[3], &teams[4], nil, bracket.MatchScheduled},
		{"seed 2 walks over", wb(1, 3), &teams[1], nil, &teams[1], bracket.MatchBye},
		{"seed 3 walks over", wb(1, 4), &teams[2], nil, &teams[2], bracket.MatchBye},
		{"seed 1 waits", wb(2, 1), &teams[0], nil, nil, bracket.MatchPending},
		{"seeds 2 and 3 meet early", wb(2, 2), &teams[1], &teams[2], nil, bracket.MatchScheduled},
		{"final", wb(3, 1), nil, nil, nil, bracket.MatchPending},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, ok := byCoord[tc.coord]
			require.True(t, ok)
			assert.Equal(t, tc.team1, m.Team1ID)
			assert.Equal(t, tc.team2, m.Team2ID)
			assert.Equal(t, tc.winner, m.WinnerID)
			assert.Equal(t, tc.status, m.Status)
		})
	}
}

func TestCreateBracket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.newEvent(t)

	testCases := []struct {
		name     string
		format   bracket.EliminationType
		teams    int
		matches  int
		playable int
	}{
		{"single elimination", bracket.SingleElimination, 6, 7, 5},
		{"double elimination", bracket.DoubleElimination, 6, 15, 10},
		{"round robin", bracket.RoundRobin, 5, 10, 10},
		{"round robin with knockout", bracket.RoundRobinKnockout, 4, 10, 6},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			teamIDs := env.registerTeams(t, tc.teams)
			data, err := env.brackets.CreateBracket(ctx, BracketInput{
				EventID:         event.ID,
				Name:            tc.name,
				EliminationType: tc.format,
				TeamIDs:         teamIDs,
			})
			require.NoError(t, err)
			assert.Len(t, data.Matches, tc.matches)

			stored, err := env.brackets.GetBracket(ctx, data.Bracket.ID, true)
			require.NoError(t, err)
			assert.Len(t, stored.Matches, tc.matches)
			require.Len(t, stored.Teams, tc.teams)
			for i, team := range stored.Teams {
				assert.Equal(t, teamIDs[i], team.ID, "seed %d", i+1)
			}

			playable := 0
			for _, m := range stored.Matches {
				if m.Status != bracket.MatchBye && m.Status != bracket.MatchHidden {
					playable++
				}
			}
			assert.Equal(t, tc.playable, playable)
		})
	}
}

func TestCreateBracketValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.newEvent(t)
	teams := env.registerTeams(t, 3)

	testCases := []struct {
		name  string
		input BracketInput
		check func(t *testing.T, err error)
	}{
		{
			name:  "single team",
			input: BracketInput{EventID: event.ID, Name: "Solo", EliminationType: bracket.SingleElimination, TeamIDs: teams[:1]},
			check: func(t *testing.T, err error) {
				var verr *bracket.ValidationError
				require.ErrorAs(t, err, &verr)
			},
		},
		{
			name:  "duplicate team",
			input: BracketInput{EventID: event.ID, Name: "Twice", EliminationType: bracket.RoundRobin, TeamIDs: []uuid.UUID{teams[0], teams[0]}},
			check: func(t *testing.T, err error) {
				var verr *bracket.ValidationError
				require.ErrorAs(t, err, &verr)
			},
		},
		{
			name:  "unregistered team",
			input: BracketInput{EventID: event.ID, Name: "Ghost", EliminationType: bracket.SingleElimination, TeamIDs: []uuid.UUID{teams[0], uuid.New()}},
			check: func(t *testing.T, err error) {
				var verr *bracket.ValidationError
				require.ErrorAs(t, err, &verr)
			},
		},
		{
			name:  "unknown event",
			input: BracketInput{EventID: uuid.New(), Name: "Orphan", EliminationType: bracket.SingleElimination, TeamIDs: teams},
			check: func(t *testing.T, err error) {
				var nf *bracket.NotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, "event", nf.Resource)
			},
		},
		{
			name:  "knockout too small",
			input: BracketInput{EventID: event.ID, Name: "Tiny", EliminationType: bracket.RoundRobinKnockout, TeamIDs: teams},
			check: func(t *testing.T, err error) {
				var verr *bracket.ValidationError
				require.ErrorAs(t, err, &verr)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.brackets.CreateBracket(ctx, tc.input)
			tc.check(t, err)
		})
	}

	data, err := env.events.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Empty(t, data.Brackets, "failed generation must not leave a bracket behind")
}
