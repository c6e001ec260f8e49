package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chessdb/models"
)

var (
	ErrGameNotFound        = errors.New("game not found")
	ErrGameSamePlayers     = errors.New("game white and black player must differ")
	ErrGameResultViolation = errors.New("game result is not one of the declared values")
	ErrGameRefInvalid      = errors.New("game tournament or player reference invalid")
)

type GameRepository interface {
	Create(ctx context.Context, exec SQLExecutor, game *models.Game) error
	GetByID(ctx context.Context, id int) (*models.Game, error)
	ExistsDuplicate(ctx context.Context, game *models.Game) (bool, error)
	ListBetween(ctx context.Context, playerAID, playerBID int) ([]models.GameRow, error)
	ListByPlayer(ctx context.Context, playerID int) ([]models.GameRow, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Game, error)
	OpeningCounts(ctx context.Context, limit int) ([]models.OpeningCount, error)
}

type sqliteGameRepository struct {
	db *sql.DB
}

func NewSQLiteGameRepository(db *sql.DB) GameRepository {
	return &sqliteGameRepository{db: db}
}

func (r *sqliteGameRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqliteGameRepository) Create(ctx context.Context, exec SQLExecutor, g *models.Game) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO games (tournament_id, round_number, white_player_id, black_player_id, result, eco_code, opening_name, moves_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := executor.ExecContext(ctx, query,
		g.TournamentID, g.RoundNumber, g.WhitePlayerID, g.BlackPlayerID,
		g.Result, g.ECOCode, g.OpeningName, g.MovesCount,
	)
	if err != nil {
		switch {
		case isCheckViolation(err, "chk_games_distinct_players"):
			return ErrGameSamePlayers
		case isCheckViolation(err, "chk_games_result"):
			return ErrGameResultViolation
		case isForeignKeyViolation(err):
			return ErrGameRefInvalid
		}
		return fmt.Errorf("failed to create game: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new game id: %w", err)
	}
	g.ID = int(id)
	return nil
}

func (r *sqliteGameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	query := `
		SELECT id, tournament_id, round_number, white_player_id, black_player_id, result, eco_code, opening_name, moves_count
		FROM games WHERE id = ?`

	var g models.Game
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.TournamentID, &g.RoundNumber, &g.WhitePlayerID, &g.BlackPlayerID,
		&g.Result, &g.ECOCode, &g.OpeningName, &g.MovesCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &g, nil
}

// ExistsDuplicate reports whether a game with the same tournament,
// round, players and result is already recorded. The IS comparisons are
// null-safe, so an unset round or result matches an unset one.
func (r *sqliteGameRepository) ExistsDuplicate(ctx context.Context, g *models.Game) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM games
			WHERE tournament_id = ?
			  AND round_number IS ?
			  AND white_player_id = ?
			  AND black_player_id = ?
			  AND result IS ?
		)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query,
		g.TournamentID, g.RoundNumber, g.WhitePlayerID, g.BlackPlayerID, g.Result,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check for duplicate game: %w", err)
	}
	return exists, nil
}

const gameRowSelect = `
	SELECT g.id, t.name, t.start_date, g.round_number,
	       w.full_name, b.full_name, g.white_player_id, g.black_player_id,
	       g.result, g.opening_name
	FROM games g
	JOIN players w ON g.white_player_id = w.id
	JOIN players b ON g.black_player_id = b.id
	JOIN tournaments t ON g.tournament_id = t.id`

func (r *sqliteGameRepository) collectGameRows(rows *sql.Rows) ([]models.GameRow, error) {
	games := make([]models.GameRow, 0)
	for rows.Next() {
		var row models.GameRow
		if scanErr := rows.Scan(
			&row.GameID, &row.TournamentName, &row.TournamentStart, &row.RoundNumber,
			&row.WhiteName, &row.BlackName, &row.WhitePlayerID, &row.BlackPlayerID,
			&row.Result, &row.OpeningName,
		); scanErr != nil {
			return nil, scanErr
		}
		games = append(games, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}

// ListBetween returns every game of the unordered pair {a, b}, in either
// color assignment, ordered by tournament start date then round. The
// order does not depend on the argument order.
func (r *sqliteGameRepository) ListBetween(ctx context.Context, playerAID, playerBID int) ([]models.GameRow, error) {
	query := gameRowSelect + `
	WHERE (g.white_player_id = ? AND g.black_player_id = ?)
	   OR (g.white_player_id = ? AND g.black_player_id = ?)
	ORDER BY t.start_date ASC, g.round_number ASC, g.id ASC`

	rows, err := r.db.QueryContext(ctx, query, playerAID, playerBID, playerBID, playerAID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectGameRows(rows)
}

func (r *sqliteGameRepository) ListByPlayer(ctx context.Context, playerID int) ([]models.GameRow, error) {
	query := gameRowSelect + `
	WHERE g.white_player_id = ? OR g.black_player_id = ?
	ORDER BY t.start_date ASC, g.round_number ASC, g.id ASC`

	rows, err := r.db.QueryContext(ctx, query, playerID, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectGameRows(rows)
}

func (r *sqliteGameRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Game, error) {
	query := `
		SELECT id, tournament_id, round_number, white_player_id, black_player_id, result, eco_code, opening_name, moves_count
		FROM games WHERE tournament_id = ? ORDER BY round_number ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	for rows.Next() {
		var g models.Game
		if scanErr := rows.Scan(
			&g.ID, &g.TournamentID, &g.RoundNumber, &g.WhitePlayerID, &g.BlackPlayerID,
			&g.Result, &g.ECOCode, &g.OpeningName, &g.MovesCount,
		); scanErr != nil {
			return nil, scanErr
		}
		games = append(games, g)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}

// OpeningCounts groups games by opening name, most frequent first, name
// ascending as the tie-break. Games without a recorded opening are left
// out rather than grouped under an empty name.
func (r *sqliteGameRepository) OpeningCounts(ctx context.Context, limit int) ([]models.OpeningCount, error) {
	query := `
		SELECT opening_name, COUNT(*) AS games
		FROM games
		WHERE opening_name IS NOT NULL
		GROUP BY opening_name
		ORDER BY games DESC, opening_name ASC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]models.OpeningCount, 0)
	for rows.Next() {
		var c models.OpeningCount
		if scanErr := rows.Scan(&c.OpeningName, &c.Games); scanErr != nil {
			return nil, scanErr
		}
		counts = append(counts, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
