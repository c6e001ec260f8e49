package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chessdb/db"
	"chessdb/models"
	"chessdb/repositories"
)

type testEnv struct {
	conn           *sql.DB
	players        PlayerService
	tournaments    TournamentService
	participations ParticipationService
	games          GameService
}

// newTestEnv wires the full service stack over a fresh database in a
// temporary directory, loaded with the sample dataset.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := db.Connect(filepath.Join(t.TempDir(), "chess.db"), 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	seeded, err := db.Seed(context.Background(), conn)
	require.NoError(t, err)
	require.True(t, seeded)

	playerRepo := repositories.NewSQLitePlayerRepository(conn)
	tournamentRepo := repositories.NewSQLiteTournamentRepository(conn)
	participationRepo := repositories.NewSQLiteParticipationRepository(conn)
	gameRepo := repositories.NewSQLiteGameRepository(conn)
	ratingRepo := repositories.NewSQLiteRatingHistoryRepository(conn)

	return &testEnv{
		conn:           conn,
		players:        NewPlayerService(conn, playerRepo, ratingRepo),
		tournaments:    NewTournamentService(tournamentRepo),
		participations: NewParticipationService(participationRepo, playerRepo, tournamentRepo),
		games:          NewGameService(gameRepo, playerRepo, tournamentRepo),
	}
}

func TestStandingsOrderAndContent(t *testing.T) {
	env := newTestEnv(t)

	rows, err := env.participations.Standings(context.Background(), "Sinquefield Cup")
	require.NoError(t, err)
	require.Len(t, rows, 5)

	wantNames := []string{
		"Magnus Carlsen", "Hikaru Nakamura", "Fabiano Caruana",
		"Alireza Firouzja", "Ian Nepomniachtchi",
	}
	wantPoints := []float64{7.0, 6.0, 5.5, 4.5, 4.0}
	for i, row := range rows {
		require.Equal(t, wantNames[i], row.PlayerName)
		require.NotNil(t, row.Points)
		require.Equal(t, wantPoints[i], *row.Points)
		require.NotNil(t, row.FinalRank)
		require.Equal(t, i+1, *row.FinalRank)
	}
}

func TestStandingsUnknownTournament(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.participations.Standings(context.Background(), "No Such Open")
	require.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestTopPerformersMeansAndOrder(t *testing.T) {
	env := newTestEnv(t)

	rows, err := env.participations.TopPerformers(context.Background(), 2024, 10)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	want := []struct {
		name   string
		events int
		mean   float64
	}{
		{"Magnus Carlsen", 1, 2890},
		{"Hikaru Nakamura", 2, 2872.5},
		{"Fabiano Caruana", 1, 2810},
		{"Alireza Firouzja", 2, 2800},
		{"Ian Nepomniachtchi", 2, 2770},
	}
	for i, w := range want {
		require.Equal(t, w.name, rows[i].PlayerName)
		require.Equal(t, w.events, rows[i].Events)
		require.InDelta(t, w.mean, rows[i].MeanPerformance, 0.001)
	}
}

func TestTopPerformersHonorsLimit(t *testing.T) {
	env := newTestEnv(t)

	rows, err := env.participations.TopPerformers(context.Background(), 2024, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Magnus Carlsen", rows[0].PlayerName)
	require.Equal(t, "Hikaru Nakamura", rows[1].PlayerName)
}

func TestTopPerformersEmptyYear(t *testing.T) {
	env := newTestEnv(t)

	rows, err := env.participations.TopPerformers(context.Background(), 2019, 10)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestTopPerformersRejectsBadArguments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.participations.TopPerformers(ctx, 1453, 10)
	require.ErrorIs(t, err, ErrInvalidYear)

	_, err = env.participations.TopPerformers(ctx, 2024, 0)
	require.ErrorIs(t, err, ErrInvalidLimit)
}

func TestGamesBetweenIsSymmetric(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ab, err := env.games.GamesBetween(ctx, "Magnus Carlsen", "Fabiano Caruana")
	require.NoError(t, err)
	ba, err := env.games.GamesBetween(ctx, "Fabiano Caruana", "Magnus Carlsen")
	require.NoError(t, err)

	require.Len(t, ab, 1)
	require.Equal(t, ab, ba)
	require.Equal(t, "Magnus Carlsen", ab[0].WhiteName)
	require.Equal(t, "Fabiano Caruana", ab[0].BlackName)
}

func TestGamesBetweenUnknownPlayer(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.games.GamesBetween(context.Background(), "Magnus Carlsen", "Nobody Here")
	require.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestHeadToHeadEmptyPairing(t *testing.T) {
	env := newTestEnv(t)

	tally, err := env.games.HeadToHead(context.Background(), "Magnus Carlsen", "Hikaru Nakamura")
	require.NoError(t, err)
	require.Equal(t, &models.HeadToHead{}, tally)
}

func TestHeadToHeadCountsFromFirstPlayersSide(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Carlsen beat Caruana with white in round 1.
	tally, err := env.games.HeadToHead(ctx, "Magnus Carlsen", "Fabiano Caruana")
	require.NoError(t, err)
	require.Equal(t, &models.HeadToHead{WinsA: 1}, tally)

	reversed, err := env.games.HeadToHead(ctx, "Fabiano Caruana", "Magnus Carlsen")
	require.NoError(t, err)
	require.Equal(t, &models.HeadToHead{WinsB: 1}, reversed)
}

func TestHeadToHeadSkipsUnfinishedGames(t *testing.T) {
	env := newTestEnv(t)

	// The round 7 Caruana vs Nepomniachtchi game has no recorded result.
	games, err := env.games.GamesBetween(context.Background(), "Fabiano Caruana", "Ian Nepomniachtchi")
	require.NoError(t, err)
	require.Len(t, games, 1)
	require.Nil(t, games[0].Result)

	tally, err := env.games.HeadToHead(context.Background(), "Fabiano Caruana", "Ian Nepomniachtchi")
	require.NoError(t, err)
	require.Equal(t, &models.HeadToHead{}, tally)
}

func TestOpeningFrequencyOrderAndLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rows, err := env.games.OpeningFrequency(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	require.Equal(t, models.OpeningCount{OpeningName: "Ruy Lopez: Berlin Defence", Games: 2}, rows[0])
	for i := 1; i < len(rows); i++ {
		if rows[i].Games == rows[i-1].Games {
			require.Less(t, rows[i-1].OpeningName, rows[i].OpeningName)
		} else {
			require.Less(t, rows[i].Games, rows[i-1].Games)
		}
	}

	top, err := env.games.OpeningFrequency(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, rows[0], top[0])

	_, err = env.games.OpeningFrequency(ctx, 0)
	require.ErrorIs(t, err, ErrInvalidLimit)
}

func TestRatingTrendOrderedOldestFirst(t *testing.T) {
	env := newTestEnv(t)

	trend, err := env.players.RatingTrend(context.Background(), "Magnus Carlsen")
	require.NoError(t, err)
	require.Len(t, trend, 2)
	require.True(t, trend[0].Date.Before(trend[1].Date))

	require.NotNil(t, trend[1].Classical)
	require.Equal(t, 2839, *trend[1].Classical)
	require.Nil(t, trend[1].Rapid)
}

func TestRecordRatingSnapshotUpdatesPeak(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	player, err := env.players.CreatePlayer(ctx, CreatePlayerInput{FullName: "Vincent Keymer", Country: "GER"})
	require.NoError(t, err)
	require.Nil(t, player.PeakRating)

	classical := 2720
	_, err = env.players.RecordRatingSnapshot(ctx, RecordRatingInput{
		PlayerName: "Vincent Keymer",
		Date:       "2024-06-01",
		Classical:  &classical,
	})
	require.NoError(t, err)

	got, err := env.players.ResolvePlayer(ctx, "Vincent Keymer")
	require.NoError(t, err)
	require.NotNil(t, got.PeakRating)
	require.Equal(t, 2720, *got.PeakRating)
	require.NotNil(t, got.PeakRatingDate)
	require.Equal(t, "2024-06-01", got.PeakRatingDate.Format("2006-01-02"))

	// A lower snapshot leaves the peak alone.
	lower := 2700
	_, err = env.players.RecordRatingSnapshot(ctx, RecordRatingInput{
		PlayerName: "Vincent Keymer",
		Date:       "2024-07-01",
		Classical:  &lower,
	})
	require.NoError(t, err)

	got, err = env.players.ResolvePlayer(ctx, "Vincent Keymer")
	require.NoError(t, err)
	require.Equal(t, 2720, *got.PeakRating)
}

func TestRecordRatingSnapshotDuplicateDate(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.players.RecordRatingSnapshot(context.Background(), RecordRatingInput{
		PlayerName: "Magnus Carlsen",
		Date:       "2024-08-01",
	})
	require.ErrorIs(t, err, ErrDuplicateSnapshot)
}

func TestRecordRatingSnapshotMalformedDate(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.players.RecordRatingSnapshot(context.Background(), RecordRatingInput{
		PlayerName: "Magnus Carlsen",
		Date:       "01/08/2024",
	})
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestResolvePlayerAmbiguousName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.players.CreatePlayer(ctx, CreatePlayerInput{FullName: "Anna Muzychuk"})
	require.NoError(t, err)
	_, err = env.players.CreatePlayer(ctx, CreatePlayerInput{FullName: "Anna Muzychuk"})
	require.NoError(t, err)

	_, err = env.players.ResolvePlayer(ctx, "Anna Muzychuk")
	require.ErrorIs(t, err, ErrAmbiguousName)

	var ambiguous *AmbiguousNameError
	require.ErrorAs(t, err, &ambiguous)
	require.Len(t, ambiguous.Candidates, 2)

	_, err = env.players.ResolvePlayer(ctx, "Nobody Here")
	require.ErrorIs(t, err, ErrPlayerNotFound)
	require.NotErrorIs(t, err, ErrAmbiguousName)
}

func TestResolveTournamentAmbiguousName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.tournaments.CreateTournament(ctx, CreateTournamentInput{
		Name:      "Sinquefield Cup",
		StartDate: "2025-08-18",
	})
	require.NoError(t, err)

	_, err = env.participations.Standings(ctx, "Sinquefield Cup")
	require.ErrorIs(t, err, ErrAmbiguousName)

	var ambiguous *AmbiguousNameError
	require.ErrorAs(t, err, &ambiguous)
	require.Len(t, ambiguous.Candidates, 2)

	_, err = env.tournaments.ResolveTournament(ctx, "No Such Open")
	require.ErrorIs(t, err, ErrTournamentNotFound)
	require.NotErrorIs(t, err, ErrAmbiguousName)
}

func TestCreatePlayerValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.players.CreatePlayer(ctx, CreatePlayerInput{FullName: "   "})
	require.ErrorIs(t, err, ErrPlayerNameRequired)

	_, err = env.players.CreatePlayer(ctx, CreatePlayerInput{FullName: "Impostor", FIDEID: "1503014"})
	require.ErrorIs(t, err, ErrFIDEIDConflict)
}

func TestCreateTournamentValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.tournaments.CreateTournament(ctx, CreateTournamentInput{
		Name:      "Backwards Open",
		StartDate: "2024-08-29",
		EndDate:   "2024-08-19",
	})
	require.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = env.tournaments.CreateTournament(ctx, CreateTournamentInput{
		Name:     "Bullet Arena",
		Category: "Bullet",
	})
	require.ErrorIs(t, err, ErrInvalidCategory)

	_, err = env.tournaments.CreateTournament(ctx, CreateTournamentInput{
		Name:      "Sloppy Open",
		StartDate: "19.08.2024",
	})
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestRecordGameRejectsSamePlayer(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.games.RecordGame(context.Background(), RecordGameInput{
		TournamentName: "Sinquefield Cup",
		WhiteName:      "Magnus Carlsen",
		BlackName:      "Magnus Carlsen",
		Result:         "1-0",
	})
	require.ErrorIs(t, err, ErrSamePlayers)
}

func TestRecordGameRejectsBadResult(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.games.RecordGame(context.Background(), RecordGameInput{
		TournamentName: "Sinquefield Cup",
		WhiteName:      "Magnus Carlsen",
		BlackName:      "Hikaru Nakamura",
		Result:         "2-0",
	})
	require.ErrorIs(t, err, ErrInvalidResult)
}

func TestRecordParticipationDuplicate(t *testing.T) {
	env := newTestEnv(t)

	rank := 6
	points := 3.5
	_, err := env.participations.RecordParticipation(context.Background(), RecordParticipationInput{
		PlayerName:     "Magnus Carlsen",
		TournamentName: "Sinquefield Cup",
		FinalRank:      &rank,
		Points:         &points,
	})
	require.ErrorIs(t, err, ErrDuplicateParticipation)
}

func TestRecordParticipationValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	badRank := 0
	_, err := env.participations.RecordParticipation(ctx, RecordParticipationInput{
		PlayerName:     "Magnus Carlsen",
		TournamentName: "Saint Louis Rapid & Blitz",
		FinalRank:      &badRank,
	})
	require.ErrorIs(t, err, ErrInvalidRank)

	badPoints := -1.0
	_, err = env.participations.RecordParticipation(ctx, RecordParticipationInput{
		PlayerName:     "Magnus Carlsen",
		TournamentName: "Saint Louis Rapid & Blitz",
		Points:         &badPoints,
	})
	require.ErrorIs(t, err, ErrInvalidPoints)
}
