package main

import (
	"log/slog"
	"os"
	"time"

	"chessdb/cli"
	"chessdb/config"
	"chessdb/db"
	"chessdb/etl"
	"chessdb/repositories"
	"chessdb/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	dbConn, err := db.Connect(cfg.DatabasePath, 5*time.Second)
	if err != nil {
		logger.Error("failed to open database", slog.String("path", cfg.DatabasePath), slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()
	logger.Debug("database opened", slog.String("path", cfg.DatabasePath))

	playerRepo := repositories.NewSQLitePlayerRepository(dbConn)
	tournamentRepo := repositories.NewSQLiteTournamentRepository(dbConn)
	participationRepo := repositories.NewSQLiteParticipationRepository(dbConn)
	gameRepo := repositories.NewSQLiteGameRepository(dbConn)
	ratingRepo := repositories.NewSQLiteRatingHistoryRepository(dbConn)

	app := &cli.App{
		Logger:         logger,
		DB:             dbConn,
		Players:        services.NewPlayerService(dbConn, playerRepo, ratingRepo),
		Tournaments:    services.NewTournamentService(tournamentRepo),
		Participations: services.NewParticipationService(participationRepo, playerRepo, tournamentRepo),
		Games:          services.NewGameService(gameRepo, playerRepo, tournamentRepo),
		Importer:       etl.NewImporter(dbConn, logger, playerRepo, tournamentRepo, participationRepo, gameRepo),
	}

	if err := cli.NewRootCommand(app).Execute(); err != nil {
		logger.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}
