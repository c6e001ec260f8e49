package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chessdb/models"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerFIDEConflict = errors.New("player FIDE id already registered")
	ErrPlayerInUse        = errors.New("player is in use (participations/games/ratings exist)")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	FindByName(ctx context.Context, fullName string) ([]models.Player, error)
	List(ctx context.Context) ([]models.Player, error)
	UpdatePeakRating(ctx context.Context, exec SQLExecutor, id int, rating int, date time.Time) error
	Delete(ctx context.Context, id int) error
}

type sqlitePlayerRepository struct {
	db *sql.DB
}

func NewSQLitePlayerRepository(db *sql.DB) PlayerRepository {
	return &sqlitePlayerRepository{db: db}
}

func (r *sqlitePlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlitePlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (full_name, country, birth_year, fide_id, title, peak_rating, peak_rating_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		p.FullName, p.Country, p.BirthYear, p.FIDEID, p.Title, p.PeakRating, p.PeakRatingDate,
	)
	if err != nil {
		if isUniqueViolation(err, "players.fide_id") {
			return ErrPlayerFIDEConflict
		}
		return fmt.Errorf("failed to create player: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new player id: %w", err)
	}
	p.ID = int(id)
	return nil
}

const playerColumns = `id, full_name, country, birth_year, fide_id, title, peak_rating, peak_rating_date`

func (r *sqlitePlayerRepository) scanPlayer(rowScanner interface{ Scan(...interface{}) error }) (*models.Player, error) {
	var p models.Player
	err := rowScanner.Scan(
		&p.ID, &p.FullName, &p.Country, &p.BirthYear, &p.FIDEID, &p.Title,
		&p.PeakRating, &p.PeakRatingDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *sqlitePlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = ?`
	return r.scanPlayer(r.db.QueryRowContext(ctx, query, id))
}

// FindByName returns every player whose full name matches exactly. The
// caller decides how to treat zero or multiple matches.
func (r *sqlitePlayerRepository) FindByName(ctx context.Context, fullName string) ([]models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE full_name = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, fullName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectPlayers(rows)
}

func (r *sqlitePlayerRepository) List(ctx context.Context) ([]models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY full_name, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectPlayers(rows)
}

func (r *sqlitePlayerRepository) collectPlayers(rows *sql.Rows) ([]models.Player, error) {
	players := make([]models.Player, 0)
	for rows.Next() {
		p, err := r.scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

// UpdatePeakRating is the only mutation allowed on a player after
// registration.
func (r *sqlitePlayerRepository) UpdatePeakRating(ctx context.Context, exec SQLExecutor, id int, rating int, date time.Time) error {
	executor := r.getExecutor(exec)
	query := `UPDATE players SET peak_rating = ?, peak_rating_date = ? WHERE id = ?`
	result, err := executor.ExecContext(ctx, query, rating, date, id)
	if err != nil {
		return fmt.Errorf("failed to update player peak rating: %w", err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *sqlitePlayerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrPlayerInUse
		}
		return fmt.Errorf("failed to delete player: %w", err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
