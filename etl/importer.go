package etl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/notnil/chess"
	"golang.org/x/sync/errgroup"

	"chessdb/models"
	"chessdb/repositories"
)

// Importer loads tournament games from PGN sources: players and
// tournaments are created on first sight from the game tags, games are
// inserted, and the participations of every touched tournament are
// rebuilt from the full set of its recorded games.
type Importer struct {
	db                *sql.DB
	logger            *slog.Logger
	playerRepo        repositories.PlayerRepository
	tournamentRepo    repositories.TournamentRepository
	participationRepo repositories.ParticipationRepository
	gameRepo          repositories.GameRepository
}

func NewImporter(
	db *sql.DB,
	logger *slog.Logger,
	playerRepo repositories.PlayerRepository,
	tournamentRepo repositories.TournamentRepository,
	participationRepo repositories.ParticipationRepository,
	gameRepo repositories.GameRepository,
) *Importer {
	return &Importer{
		db:                db,
		logger:            logger,
		playerRepo:        playerRepo,
		tournamentRepo:    tournamentRepo,
		participationRepo: participationRepo,
		gameRepo:          gameRepo,
	}
}

// Summary reports what one Import run did. Skipped counts games already
// recorded or unusable; FailedSources counts inputs that could not be
// read or parsed at all.
type Summary struct {
	Games          int
	Skipped        int
	NewPlayers     int
	NewTournaments int
	FailedSources  int
}

type parsedGame struct {
	source  string
	event   string
	site    string
	date    *time.Time
	round   *int
	white   string
	black   string
	result  *models.GameResult
	eco     *string
	opening *string
	moves   *int
}

// Import parses the given PGN sources (local files or http(s) URLs)
// concurrently, then writes the results over the single database
// connection. A source that cannot be read or parsed is logged and
// skipped, not fatal; so are games with a missing player name or with
// white equal to black. A game identical to one already recorded is
// counted as skipped, so re-importing a file changes nothing.
func (i *Importer) Import(ctx context.Context, sources []string) (*Summary, error) {
	parsed := make([][]parsedGame, len(sources))
	failures := make([]error, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for idx, source := range sources {
		idx, source := idx, source
		g.Go(func() error {
			games, err := parseSource(source)
			if err != nil {
				failures[idx] = err
				return gctx.Err()
			}
			parsed[idx] = games
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{}
	for idx, err := range failures {
		if err != nil {
			i.logger.Warn("skipping unreadable source",
				slog.String("source", sources[idx]), slog.Any("error", err))
			summary.FailedSources++
		}
	}

	touched := make(map[int]struct{})
	playerIDs := make(map[string]int)
	tournamentIDs := make(map[string]int)

	for _, games := range parsed {
		for _, pg := range games {
			if pg.white == "" || pg.black == "" {
				summary.Skipped++
				continue
			}
			if pg.white == pg.black {
				i.logger.Warn("skipping game with identical players",
					slog.String("source", pg.source), slog.String("player", pg.white))
				summary.Skipped++
				continue
			}

			tournamentID, err := i.ensureTournament(ctx, tournamentIDs, summary, pg)
			if err != nil {
				return nil, err
			}
			whiteID, err := i.ensurePlayer(ctx, playerIDs, summary, pg.white)
			if err != nil {
				return nil, err
			}
			blackID, err := i.ensurePlayer(ctx, playerIDs, summary, pg.black)
			if err != nil {
				return nil, err
			}

			game := &models.Game{
				TournamentID:  tournamentID,
				RoundNumber:   pg.round,
				WhitePlayerID: whiteID,
				BlackPlayerID: blackID,
				Result:        pg.result,
				ECOCode:       pg.eco,
				OpeningName:   pg.opening,
				MovesCount:    pg.moves,
			}
			dup, err := i.gameRepo.ExistsDuplicate(ctx, game)
			if err != nil {
				return nil, fmt.Errorf("failed to check for duplicate game from %s: %w", pg.source, err)
			}
			if dup {
				summary.Skipped++
				continue
			}
			if err := i.gameRepo.Create(ctx, nil, game); err != nil {
				return nil, fmt.Errorf("failed to insert game from %s: %w", pg.source, err)
			}
			summary.Games++
			touched[tournamentID] = struct{}{}
		}
	}

	for tournamentID := range touched {
		if err := i.rebuildParticipations(ctx, tournamentID); err != nil {
			return nil, err
		}
	}

	return summary, nil
}

func parseSource(source string) ([]parsedGame, error) {
	r, err := openSource(source)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return parsePGN(source, r)
}

// openSource opens a local file or fetches a remote PGN over http(s).
func openSource(source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := http.Get(source)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return resp.Body, nil
	}
	return os.Open(source)
}

func parsePGN(source string, r io.Reader) ([]parsedGame, error) {
	var games []parsedGame
	scanner := chess.NewScanner(r)
	for scanner.Scan() {
		game := scanner.Next()
		if game == nil {
			continue
		}
		games = append(games, parseGame(source, game))
	}
	// The scanner reports io.EOF at the end of a well-formed input.
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return games, nil
}

func parseGame(source string, game *chess.Game) parsedGame {
	tag := func(key string) string {
		if pair := game.GetTagPair(key); pair != nil {
			return strings.TrimSpace(pair.Value)
		}
		return ""
	}

	pg := parsedGame{
		source: source,
		event:  tag("Event"),
		site:   tag("Site"),
		white:  tag("White"),
		black:  tag("Black"),
	}
	if pg.event == "" {
		pg.event = "Unknown Event"
	}

	// PGN dates use dots and may be partially unknown ("2024.??.??").
	if raw := tag("Date"); raw != "" && !strings.Contains(raw, "?") {
		if d, err := time.ParseInLocation("2006.01.02", raw, time.UTC); err == nil {
			pg.date = &d
		}
	}

	// Round tags may be dotted ("4.2"); only the leading number matters.
	if raw := tag("Round"); raw != "" {
		if n, err := strconv.Atoi(strings.SplitN(raw, ".", 2)[0]); err == nil && n > 0 {
			pg.round = &n
		}
	}

	if eco := tag("ECO"); eco != "" {
		pg.eco = &eco
	}
	if opening := tag("Opening"); opening != "" {
		pg.opening = &opening
	}

	switch game.Outcome() {
	case chess.WhiteWon:
		r := models.ResultWhiteWin
		pg.result = &r
	case chess.BlackWon:
		r := models.ResultBlackWin
		pg.result = &r
	case chess.Draw:
		r := models.ResultDraw
		pg.result = &r
	}

	if halfMoves := len(game.Moves()); halfMoves > 0 {
		full := (halfMoves + 1) / 2
		pg.moves = &full
	}

	return pg
}

// ensurePlayer resolves a name to an id, creating the player on first
// sight. When a name matches several registered players the oldest row
// is used; the tags carry nothing to disambiguate with.
func (i *Importer) ensurePlayer(ctx context.Context, cache map[string]int, summary *Summary, name string) (int, error) {
	if id, ok := cache[name]; ok {
		return id, nil
	}

	matches, err := i.playerRepo.FindByName(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to look up player %q: %w", name, err)
	}
	if len(matches) > 0 {
		if len(matches) > 1 {
			i.logger.Warn("player name is ambiguous, using first match",
				slog.String("player", name), slog.Int("matches", len(matches)))
		}
		cache[name] = matches[0].ID
		return matches[0].ID, nil
	}

	player := &models.Player{FullName: name}
	if err := i.playerRepo.Create(ctx, player); err != nil {
		return 0, fmt.Errorf("failed to create player %q: %w", name, err)
	}
	summary.NewPlayers++
	cache[name] = player.ID
	return player.ID, nil
}

func (i *Importer) ensureTournament(ctx context.Context, cache map[string]int, summary *Summary, pg parsedGame) (int, error) {
	if id, ok := cache[pg.event]; ok {
		return id, nil
	}

	matches, err := i.tournamentRepo.FindByName(ctx, pg.event)
	if err != nil {
		return 0, fmt.Errorf("failed to look up tournament %q: %w", pg.event, err)
	}
	if len(matches) > 0 {
		cache[pg.event] = matches[0].ID
		return matches[0].ID, nil
	}

	tournament := &models.Tournament{
		Name:      pg.event,
		StartDate: pg.date,
	}
	if pg.site != "" {
		tournament.Location = &pg.site
	}
	if err := i.tournamentRepo.Create(ctx, tournament); err != nil {
		return 0, fmt.Errorf("failed to create tournament %q: %w", pg.event, err)
	}
	summary.NewTournaments++
	i.logger.Info("created tournament from PGN tags",
		slog.String("tournament", pg.event), slog.String("site", pg.site))
	cache[pg.event] = tournament.ID
	return tournament.ID, nil
}

// rebuildParticipations recomputes points and ranks for one tournament
// from all of its recorded games, replacing the old rows in a single
// transaction. Performance and average-opponent ratings are left unset;
// they are not derivable from results alone.
func (i *Importer) rebuildParticipations(ctx context.Context, tournamentID int) error {
	games, err := i.gameRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to list games for tournament %d: %w", tournamentID, err)
	}

	points := make(map[int]float64)
	for _, g := range games {
		points[g.WhitePlayerID] += 0
		points[g.BlackPlayerID] += 0
		if g.Result == nil {
			continue
		}
		switch *g.Result {
		case models.ResultWhiteWin:
			points[g.WhitePlayerID]++
		case models.ResultBlackWin:
			points[g.BlackPlayerID]++
		case models.ResultDraw:
			points[g.WhitePlayerID] += 0.5
			points[g.BlackPlayerID] += 0.5
		}
	}

	type entry struct {
		playerID int
		points   float64
	}
	entries := make([]entry, 0, len(points))
	for playerID, p := range points {
		entries = append(entries, entry{playerID: playerID, points: p})
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].points != entries[b].points {
			return entries[a].points > entries[b].points
		}
		return entries[a].playerID < entries[b].playerID
	})

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin rebuild transaction: %w", err)
	}
	defer tx.Rollback()

	if err := i.participationRepo.DeleteByTournament(ctx, tx, tournamentID); err != nil {
		return err
	}

	rank := 0
	for idx, e := range entries {
		// Equal scores share the better rank.
		if idx == 0 || entries[idx-1].points != e.points {
			rank = idx + 1
		}
		r := rank
		p := e.points
		participation := &models.Participation{
			PlayerID:     e.playerID,
			TournamentID: tournamentID,
			FinalRank:    &r,
			Points:       &p,
		}
		if err := i.participationRepo.Create(ctx, tx, participation); err != nil {
			return fmt.Errorf("failed to rebuild participation for player %d: %w", e.playerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rebuilt participations: %w", err)
	}
	return nil
}
