package cli

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"chessdb/db"
	"chessdb/etl"
	"chessdb/services"
)

// App carries the wired services the commands run against.
type App struct {
	Logger         *slog.Logger
	DB             *sql.DB
	Players        services.PlayerService
	Tournaments    services.TournamentService
	Participations services.ParticipationService
	Games          services.GameService
	Importer       *etl.Importer
}

// NewRootCommand builds the chessdb command tree.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "chessdb",
		Short:         "Relational store of chess players, tournaments, games and ratings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newShellCommand(app),
		newSeedCommand(app),
		newImportCommand(app),
	)
	return root
}

func newSeedCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the bundled sample dataset into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seeded, err := db.Seed(cmd.Context(), app.DB)
			if err != nil {
				return err
			}
			if seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "Sample data loaded.")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Database already contains players; nothing to do.")
			}
			return nil
		},
	}
}

func newImportCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.pgn|url>...",
		Short: "Import games, players and tournaments from PGN files or URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := app.Importer.Import(cmd.Context(), args)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"Imported %d games (%d skipped), %d new players, %d new tournaments.\n",
				summary.Games, summary.Skipped, summary.NewPlayers, summary.NewTournaments)
			if summary.FailedSources > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d source(s) could not be read, see log.\n", summary.FailedSources)
			}
			return nil
		},
	}
}
