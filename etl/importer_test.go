package etl

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chessdb/db"
	"chessdb/models"
	"chessdb/repositories"
)

const samplePGN = `[Event "Test Open"]
[Site "Oslo"]
[Date "2024.01.10"]
[Round "1"]
[White "Alice Smith"]
[Black "Bob Jones"]
[Result "0-1"]
[ECO "A02"]
[Opening "Bird Opening"]

1. f3 e5 2. g4 Qh4# 0-1

[Event "Test Open"]
[Site "Oslo"]
[Date "2024.01.11"]
[Round "2"]
[White "Bob Jones"]
[Black "Alice Smith"]
[Result "1/2-1/2"]

1. e4 e5 1/2-1/2
`

type importFixture struct {
	conn           *sql.DB
	importer       *Importer
	players        repositories.PlayerRepository
	tournaments    repositories.TournamentRepository
	participations repositories.ParticipationRepository
	games          repositories.GameRepository
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()

	conn, err := db.Connect(filepath.Join(t.TempDir(), "chess.db"), 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	players := repositories.NewSQLitePlayerRepository(conn)
	tournaments := repositories.NewSQLiteTournamentRepository(conn)
	participations := repositories.NewSQLiteParticipationRepository(conn)
	games := repositories.NewSQLiteGameRepository(conn)

	return &importFixture{
		conn:           conn,
		importer:       NewImporter(conn, logger, players, tournaments, participations, games),
		players:        players,
		tournaments:    tournaments,
		participations: participations,
		games:          games,
	}
}

func writePGN(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "games.pgn")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportCreatesPlayersTournamentAndGames(t *testing.T) {
	fx := newImportFixture(t)
	ctx := context.Background()

	summary, err := fx.importer.Import(ctx, []string{writePGN(t, samplePGN)})
	require.NoError(t, err)
	require.Equal(t, 2, summary.Games)
	require.Equal(t, 0, summary.Skipped)
	require.Equal(t, 2, summary.NewPlayers)
	require.Equal(t, 1, summary.NewTournaments)

	events, err := fx.tournaments.FindByName(ctx, "Test Open")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].StartDate)
	require.Equal(t, "2024-01-10", events[0].StartDate.Format("2006-01-02"))
	require.NotNil(t, events[0].Location)
	require.Equal(t, "Oslo", *events[0].Location)

	alice, err := fx.players.FindByName(ctx, "Alice Smith")
	require.NoError(t, err)
	require.Len(t, alice, 1)
	bob, err := fx.players.FindByName(ctx, "Bob Jones")
	require.NoError(t, err)
	require.Len(t, bob, 1)

	games, err := fx.games.ListByTournament(ctx, events[0].ID)
	require.NoError(t, err)
	require.Len(t, games, 2)

	first := games[0]
	require.NotNil(t, first.RoundNumber)
	require.Equal(t, 1, *first.RoundNumber)
	require.Equal(t, alice[0].ID, first.WhitePlayerID)
	require.Equal(t, bob[0].ID, first.BlackPlayerID)
	require.NotNil(t, first.Result)
	require.Equal(t, models.ResultBlackWin, *first.Result)
	require.NotNil(t, first.OpeningName)
	require.Equal(t, "Bird Opening", *first.OpeningName)

	second := games[1]
	require.NotNil(t, second.Result)
	require.Equal(t, models.ResultDraw, *second.Result)
	require.Nil(t, second.OpeningName)
}

func TestImportRebuildsStandingsFromResults(t *testing.T) {
	fx := newImportFixture(t)
	ctx := context.Background()

	_, err := fx.importer.Import(ctx, []string{writePGN(t, samplePGN)})
	require.NoError(t, err)

	events, err := fx.tournaments.FindByName(ctx, "Test Open")
	require.NoError(t, err)
	require.Len(t, events, 1)

	// Bob won game one and drew game two: 1.5 against Alice's 0.5.
	rows, err := fx.participations.StandingsByTournament(ctx, events[0].ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, "Bob Jones", rows[0].PlayerName)
	require.NotNil(t, rows[0].Points)
	require.Equal(t, 1.5, *rows[0].Points)
	require.NotNil(t, rows[0].FinalRank)
	require.Equal(t, 1, *rows[0].FinalRank)

	require.Equal(t, "Alice Smith", rows[1].PlayerName)
	require.Equal(t, 0.5, *rows[1].Points)
	require.Equal(t, 2, *rows[1].FinalRank)
}

func TestImportIsIdempotent(t *testing.T) {
	fx := newImportFixture(t)
	ctx := context.Background()

	path := writePGN(t, samplePGN)
	_, err := fx.importer.Import(ctx, []string{path})
	require.NoError(t, err)

	// A second run inserts nothing and leaves the standings untouched.
	summary, err := fx.importer.Import(ctx, []string{path})
	require.NoError(t, err)
	require.Equal(t, 0, summary.Games)
	require.Equal(t, 2, summary.Skipped)
	require.Equal(t, 0, summary.NewPlayers)
	require.Equal(t, 0, summary.NewTournaments)

	all, err := fx.players.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	events, err := fx.tournaments.FindByName(ctx, "Test Open")
	require.NoError(t, err)
	require.Len(t, events, 1)

	games, err := fx.games.ListByTournament(ctx, events[0].ID)
	require.NoError(t, err)
	require.Len(t, games, 2)

	rows, err := fx.participations.StandingsByTournament(ctx, events[0].ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 1.5, *rows[0].Points)
	require.Equal(t, 0.5, *rows[1].Points)
}

func TestImportFromHTTPSource(t *testing.T) {
	fx := newImportFixture(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, samplePGN)
	}))
	defer srv.Close()

	summary, err := fx.importer.Import(ctx, []string{srv.URL + "/games.pgn"})
	require.NoError(t, err)
	require.Equal(t, 2, summary.Games)
	require.Equal(t, 0, summary.FailedSources)

	events, err := fx.tournaments.FindByName(ctx, "Test Open")
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestImportSkipsUnreadableSource(t *testing.T) {
	fx := newImportFixture(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	// One good file, one missing file, one 404 URL: the good one still
	// lands and the failures are counted, not fatal.
	summary, err := fx.importer.Import(ctx, []string{
		writePGN(t, samplePGN),
		filepath.Join(t.TempDir(), "missing.pgn"),
		srv.URL + "/gone.pgn",
	})
	require.NoError(t, err)
	require.Equal(t, 2, summary.Games)
	require.Equal(t, 2, summary.FailedSources)
}
