package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"chessdb/db"
	"chessdb/services"
)

const shellHelp = `Commands:
  help
  list players
  list tournaments
  standings <tournament name>
  h2h <player A> vs <player B>
  games <player full name>
  top <year> [limit]
  openings [limit]
  trend <player full name>
  add player
  add tournament
  add game
  add participation
  add rating
  quit
`

func newShellCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive query shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Match the historical behavior: a fresh database starts
			// with the sample dataset.
			seeded, err := db.Seed(cmd.Context(), app.DB)
			if err != nil {
				return err
			}
			if seeded {
				app.Logger.Info("empty database, sample data loaded")
			}
			return runShell(cmd.Context(), app, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runShell(ctx context.Context, app *App, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, `chessdb shell. Type "help" for commands.`)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		if err := dispatch(ctx, app, scanner, out, line); err != nil {
			if isUserError(err) {
				fmt.Fprintln(out, err)
				continue
			}
			app.Logger.Error("command failed", slog.Any("error", err))
			fmt.Fprintln(out, "internal error, see log")
		}
	}
	return scanner.Err()
}

// isUserError reports whether err belongs to the expected outcome
// taxonomy (not found, ambiguous, malformed input, constraint
// conflict); those print at the prompt and the loop continues.
func isUserError(err error) bool {
	for _, known := range []error{
		services.ErrPlayerNotFound,
		services.ErrTournamentNotFound,
		services.ErrAmbiguousName,
		services.ErrPlayerNameRequired,
		services.ErrTournamentNameRequired,
		services.ErrInvalidCategory,
		services.ErrInvalidResult,
		services.ErrInvalidDate,
		services.ErrInvalidDateRange,
		services.ErrInvalidYear,
		services.ErrInvalidLimit,
		services.ErrInvalidRank,
		services.ErrInvalidPoints,
		services.ErrSamePlayers,
		services.ErrFIDEIDConflict,
		services.ErrDuplicateParticipation,
		services.ErrDuplicateSnapshot,
		errBadArgument,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}

var errBadArgument = errors.New("bad argument")

func dispatch(ctx context.Context, app *App, scanner *bufio.Scanner, out io.Writer, line string) error {
	switch {
	case line == "help":
		fmt.Fprint(out, shellHelp)
		return nil
	case line == "list players":
		return listPlayers(ctx, app, out)
	case line == "list tournaments":
		return listTournaments(ctx, app, out)
	case strings.HasPrefix(line, "standings "):
		return standings(ctx, app, out, strings.TrimPrefix(line, "standings "))
	case strings.HasPrefix(line, "h2h "):
		return headToHead(ctx, app, out, strings.TrimPrefix(line, "h2h "))
	case strings.HasPrefix(line, "games "):
		return gamesOf(ctx, app, out, strings.TrimPrefix(line, "games "))
	case strings.HasPrefix(line, "top "):
		return topPerformers(ctx, app, out, strings.TrimPrefix(line, "top "))
	case line == "openings" || strings.HasPrefix(line, "openings "):
		return openings(ctx, app, out, strings.TrimPrefix(line, "openings"))
	case strings.HasPrefix(line, "trend "):
		return ratingTrend(ctx, app, out, strings.TrimPrefix(line, "trend "))
	case line == "add player":
		return addPlayer(ctx, app, scanner, out)
	case line == "add tournament":
		return addTournament(ctx, app, scanner, out)
	case line == "add game":
		return addGame(ctx, app, scanner, out)
	case line == "add participation":
		return addParticipation(ctx, app, scanner, out)
	case line == "add rating":
		return addRating(ctx, app, scanner, out)
	default:
		fmt.Fprintln(out, `Unknown command. Type "help".`)
		return nil
	}
}

func listPlayers(ctx context.Context, app *App, out io.Writer) error {
	players, err := app.Players.ListPlayers(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(players))
	for _, p := range players {
		rows = append(rows, []string{
			strconv.Itoa(p.ID), p.FullName, optStr(p.Country), optStr(p.Title),
			optInt(p.BirthYear), optInt(p.PeakRating), optDate(p.PeakRatingDate),
		})
	}
	renderTable(out, []string{"ID", "Name", "Country", "Title", "Born", "Peak", "Peak date"}, rows)
	return nil
}

func listTournaments(ctx context.Context, app *App, out io.Writer) error {
	tournaments, err := app.Tournaments.ListTournaments(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(tournaments))
	for _, t := range tournaments {
		rows = append(rows, []string{
			strconv.Itoa(t.ID), t.Name, optStr(t.Location),
			optDate(t.StartDate), optDate(t.EndDate), optCategory(t.Category),
		})
	}
	renderTable(out, []string{"ID", "Name", "Location", "Start", "End", "Category"}, rows)
	return nil
}

func standings(ctx context.Context, app *App, out io.Writer, name string) error {
	standings, err := app.Participations.Standings(ctx, name)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(standings))
	for _, s := range standings {
		rows = append(rows, []string{
			s.PlayerName, optFloat(s.Points), optInt(s.FinalRank), optInt(s.PerformanceRating),
		})
	}
	renderTable(out, []string{"Player", "Points", "Rank", "Perf"}, rows)
	return nil
}

// splitPair separates the two player names of an h2h query. A " vs "
// separator (or a comma) keeps multi-word names intact; without one the
// first word is player A and the rest is player B.
func splitPair(args string) (string, string, error) {
	lower := strings.ToLower(args)
	if i := strings.Index(lower, " vs "); i >= 0 {
		return strings.TrimSpace(args[:i]), strings.TrimSpace(args[i+4:]), nil
	}
	if i := strings.Index(args, ","); i >= 0 {
		return strings.TrimSpace(args[:i]), strings.TrimSpace(args[i+1:]), nil
	}
	fields := strings.SplitN(strings.TrimSpace(args), " ", 2)
	if len(fields) == 2 {
		return fields[0], strings.TrimSpace(fields[1]), nil
	}
	return "", "", fmt.Errorf("%w: usage: h2h <player A> vs <player B>", errBadArgument)
}

func headToHead(ctx context.Context, app *App, out io.Writer, args string) error {
	nameA, nameB, err := splitPair(args)
	if err != nil {
		return err
	}

	games, err := app.Games.GamesBetween(ctx, nameA, nameB)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(games))
	for _, g := range games {
		rows = append(rows, []string{
			g.TournamentName, optInt(g.RoundNumber), g.WhiteName, g.BlackName,
			optResult(g.Result), optStr(g.OpeningName),
		})
	}
	renderTable(out, []string{"Tournament", "Round", "White", "Black", "Result", "Opening"}, rows)

	tally, err := app.Games.HeadToHead(ctx, nameA, nameB)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Score: %s %d, draws %d, %s %d\n", nameA, tally.WinsA, tally.Draws, nameB, tally.WinsB)
	return nil
}

func gamesOf(ctx context.Context, app *App, out io.Writer, name string) error {
	games, err := app.Games.GamesOfPlayer(ctx, name)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(games))
	for _, g := range games {
		rows = append(rows, []string{
			g.TournamentName, optInt(g.RoundNumber), g.WhiteName, g.BlackName,
			optResult(g.Result), optStr(g.OpeningName),
		})
	}
	renderTable(out, []string{"Tournament", "Round", "White", "Black", "Result", "Opening"}, rows)
	return nil
}

func topPerformers(ctx context.Context, app *App, out io.Writer, args string) error {
	fields := strings.Fields(args)
	if len(fields) < 1 || len(fields) > 2 {
		return fmt.Errorf("%w: usage: top <year> [limit]", errBadArgument)
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("%w: year %q is not a number", errBadArgument, fields[0])
	}
	limit := 10
	if len(fields) == 2 {
		if limit, err = strconv.Atoi(fields[1]); err != nil {
			return fmt.Errorf("%w: limit %q is not a number", errBadArgument, fields[1])
		}
	}

	performers, err := app.Participations.TopPerformers(ctx, year, limit)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(performers))
	for _, p := range performers {
		rows = append(rows, []string{
			p.PlayerName, strconv.Itoa(p.Events), strconv.FormatFloat(p.MeanPerformance, 'f', 1, 64),
		})
	}
	renderTable(out, []string{"Player", "Events", "Avg perf"}, rows)
	return nil
}

func openings(ctx context.Context, app *App, out io.Writer, args string) error {
	limit := 5
	if trimmed := strings.TrimSpace(args); trimmed != "" {
		var err error
		if limit, err = strconv.Atoi(trimmed); err != nil {
			return fmt.Errorf("%w: limit %q is not a number", errBadArgument, trimmed)
		}
	}

	counts, err := app.Games.OpeningFrequency(ctx, limit)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.OpeningName, strconv.Itoa(c.Games)})
	}
	renderTable(out, []string{"Opening", "Games"}, rows)
	return nil
}

func ratingTrend(ctx context.Context, app *App, out io.Writer, name string) error {
	trend, err := app.Players.RatingTrend(ctx, name)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(trend))
	for _, s := range trend {
		rows = append(rows, []string{
			s.Date.Format(dateLayout), optInt(s.Classical), optInt(s.Rapid), optInt(s.Blitz),
		})
	}
	renderTable(out, []string{"Date", "Classical", "Rapid", "Blitz"}, rows)
	return nil
}

func prompt(out io.Writer, scanner *bufio.Scanner, label string) string {
	fmt.Fprintf(out, "%s: ", label)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

func promptOptInt(out io.Writer, scanner *bufio.Scanner, label string) (*int, error) {
	value := prompt(out, scanner, label)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", errBadArgument, value)
	}
	return &n, nil
}

func promptOptFloat(out io.Writer, scanner *bufio.Scanner, label string) (*float64, error) {
	value := prompt(out, scanner, label)
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", errBadArgument, value)
	}
	return &f, nil
}

func addPlayer(ctx context.Context, app *App, scanner *bufio.Scanner, out io.Writer) error {
	input := services.CreatePlayerInput{
		FullName: prompt(out, scanner, "Full name"),
		Country:  strings.ToUpper(prompt(out, scanner, "Country (3-letter)")),
		FIDEID:   prompt(out, scanner, "FIDE ID"),
		Title:    strings.ToUpper(prompt(out, scanner, "Title (GM/IM/FM)")),
	}
	birth, err := promptOptInt(out, scanner, "Birth year")
	if err != nil {
		return err
	}
	input.BirthYear = birth

	player, err := app.Players.CreatePlayer(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Added player #%d.\n", player.ID)
	return nil
}

func addTournament(ctx context.Context, app *App, scanner *bufio.Scanner, out io.Writer) error {
	input := services.CreateTournamentInput{
		Name:      prompt(out, scanner, "Name"),
		Location:  prompt(out, scanner, "Location"),
		StartDate: prompt(out, scanner, "Start date (YYYY-MM-DD)"),
		EndDate:   prompt(out, scanner, "End date (YYYY-MM-DD)"),
		Organizer: prompt(out, scanner, "Organizer"),
		Category:  prompt(out, scanner, "Category (Classical/Rapid/Blitz/Mixed)"),
	}

	tournament, err := app.Tournaments.CreateTournament(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Added tournament #%d.\n", tournament.ID)
	return nil
}

func addGame(ctx context.Context, app *App, scanner *bufio.Scanner, out io.Writer) error {
	input := services.RecordGameInput{
		TournamentName: prompt(out, scanner, "Tournament name"),
	}
	round, err := promptOptInt(out, scanner, "Round number")
	if err != nil {
		return err
	}
	input.RoundNumber = round
	input.WhiteName = prompt(out, scanner, "White player full name")
	input.BlackName = prompt(out, scanner, "Black player full name")
	input.Result = prompt(out, scanner, "Result (1-0/0-1/1/2-1/2, empty if unfinished)")
	input.ECOCode = strings.ToUpper(prompt(out, scanner, "ECO code"))
	input.OpeningName = prompt(out, scanner, "Opening name")
	moves, err := promptOptInt(out, scanner, "Moves count")
	if err != nil {
		return err
	}
	input.MovesCount = moves

	game, err := app.Games.RecordGame(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Added game #%d.\n", game.ID)
	return nil
}

func addParticipation(ctx context.Context, app *App, scanner *bufio.Scanner, out io.Writer) error {
	input := services.RecordParticipationInput{
		PlayerName:     prompt(out, scanner, "Player full name"),
		TournamentName: prompt(out, scanner, "Tournament name"),
	}
	var err error
	if input.FinalRank, err = promptOptInt(out, scanner, "Final rank"); err != nil {
		return err
	}
	if input.Points, err = promptOptFloat(out, scanner, "Points"); err != nil {
		return err
	}
	if input.AvgOpponentRating, err = promptOptInt(out, scanner, "Average opponent rating"); err != nil {
		return err
	}
	if input.PerformanceRating, err = promptOptInt(out, scanner, "Performance rating"); err != nil {
		return err
	}

	participation, err := app.Participations.RecordParticipation(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Added participation #%d.\n", participation.ID)
	return nil
}

func addRating(ctx context.Context, app *App, scanner *bufio.Scanner, out io.Writer) error {
	input := services.RecordRatingInput{
		PlayerName: prompt(out, scanner, "Player full name"),
		Date:       prompt(out, scanner, "Date (YYYY-MM-DD)"),
	}
	var err error
	if input.Classical, err = promptOptInt(out, scanner, "Classical rating"); err != nil {
		return err
	}
	if input.Rapid, err = promptOptInt(out, scanner, "Rapid rating"); err != nil {
		return err
	}
	if input.Blitz, err = promptOptInt(out, scanner, "Blitz rating"); err != nil {
		return err
	}

	snapshot, err := app.Players.RecordRatingSnapshot(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Added rating snapshot #%d.\n", snapshot.ID)
	return nil
}
