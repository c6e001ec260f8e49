package db

import (
	"context"
	"database/sql"
)

// Schema is the full DDL for the five tables. Every foreign-key column
// and every name/date column used as a lookup predicate is indexed. No
// FK declares a cascade action, so deleting a referenced player or
// tournament is blocked while child rows exist.
const Schema = `
CREATE TABLE IF NOT EXISTS players (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	full_name TEXT NOT NULL,
	country TEXT,
	birth_year INTEGER,
	fide_id TEXT UNIQUE,
	title TEXT,
	peak_rating INTEGER,
	peak_rating_date DATE
);

CREATE INDEX IF NOT EXISTS idx_players_full_name ON players(full_name);

CREATE TABLE IF NOT EXISTS tournaments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	location TEXT,
	start_date DATE,
	end_date DATE,
	organizer TEXT,
	category TEXT,
	CONSTRAINT chk_tournaments_category
		CHECK (category IS NULL OR category IN ('Classical', 'Rapid', 'Blitz', 'Mixed')),
	CONSTRAINT chk_tournaments_date_range
		CHECK (start_date IS NULL OR end_date IS NULL OR start_date <= end_date)
);

CREATE INDEX IF NOT EXISTS idx_tournaments_name ON tournaments(name);
CREATE INDEX IF NOT EXISTS idx_tournaments_start_date ON tournaments(start_date);

CREATE TABLE IF NOT EXISTS participations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	player_id INTEGER NOT NULL REFERENCES players(id),
	tournament_id INTEGER NOT NULL REFERENCES tournaments(id),
	final_rank INTEGER,
	points REAL,
	avg_opponent_rating INTEGER,
	performance_rating INTEGER,
	CONSTRAINT chk_participations_final_rank
		CHECK (final_rank IS NULL OR final_rank > 0),
	CONSTRAINT chk_participations_points
		CHECK (points IS NULL OR points >= 0),
	UNIQUE (player_id, tournament_id)
);

CREATE INDEX IF NOT EXISTS idx_participations_player_id ON participations(player_id);
CREATE INDEX IF NOT EXISTS idx_participations_tournament_id ON participations(tournament_id);

CREATE TABLE IF NOT EXISTS games (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tournament_id INTEGER NOT NULL REFERENCES tournaments(id),
	round_number INTEGER,
	white_player_id INTEGER NOT NULL REFERENCES players(id),
	black_player_id INTEGER NOT NULL REFERENCES players(id),
	result TEXT,
	eco_code TEXT,
	opening_name TEXT,
	moves_count INTEGER,
	CONSTRAINT chk_games_result
		CHECK (result IS NULL OR result IN ('1-0', '0-1', '1/2-1/2')),
	CONSTRAINT chk_games_distinct_players
		CHECK (white_player_id <> black_player_id)
);

CREATE INDEX IF NOT EXISTS idx_games_tournament_id ON games(tournament_id);
CREATE INDEX IF NOT EXISTS idx_games_white_player_id ON games(white_player_id);
CREATE INDEX IF NOT EXISTS idx_games_black_player_id ON games(black_player_id);

CREATE TABLE IF NOT EXISTS rating_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	player_id INTEGER NOT NULL REFERENCES players(id),
	rating_date DATE NOT NULL,
	classical INTEGER,
	rapid INTEGER,
	blitz INTEGER,
	UNIQUE (player_id, rating_date)
);

CREATE INDEX IF NOT EXISTS idx_rating_history_player_id ON rating_history(player_id);
CREATE INDEX IF NOT EXISTS idx_rating_history_rating_date ON rating_history(rating_date);
`

// Migrate applies the schema. All statements are idempotent, so it is
// safe to run on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}
