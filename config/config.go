package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration parameters of the application.
type Config struct {
	DatabasePath string
	LogLevel     slog.Level
}

// Load reads configuration from environment variables, optionally
// loading a .env file first. Every variable has a sensible default, so
// a plain `chessdb shell` works out of the box.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("CHESSDB_PATH")
	if path == "" {
		path = "chess.db"
	}

	level := slog.LevelInfo
	switch value := os.Getenv("CHESSDB_LOG_LEVEL"); value {
	case "", "info":
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid CHESSDB_LOG_LEVEL %q (want debug, info, warn or error)", value)
	}

	return &Config{
		DatabasePath: path,
		LogLevel:     level,
	}, nil
}
