package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chessdb/models"
)

var (
	ErrRatingSnapshotConflict = errors.New("rating snapshot already exists for this player and date")
	ErrRatingPlayerInvalid    = errors.New("rating snapshot player reference invalid")
)

type RatingHistoryRepository interface {
	Create(ctx context.Context, exec SQLExecutor, snapshot *models.RatingSnapshot) error
	ListByPlayer(ctx context.Context, playerID int) ([]models.RatingSnapshot, error)
}

type sqliteRatingHistoryRepository struct {
	db *sql.DB
}

func NewSQLiteRatingHistoryRepository(db *sql.DB) RatingHistoryRepository {
	return &sqliteRatingHistoryRepository{db: db}
}

func (r *sqliteRatingHistoryRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqliteRatingHistoryRepository) Create(ctx context.Context, exec SQLExecutor, s *models.RatingSnapshot) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO rating_history (player_id, rating_date, classical, rapid, blitz)
		VALUES (?, ?, ?, ?, ?)`

	result, err := executor.ExecContext(ctx, query,
		s.PlayerID, s.Date, s.Classical, s.Rapid, s.Blitz,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "rating_history.player_id"):
			return ErrRatingSnapshotConflict
		case isForeignKeyViolation(err):
			return ErrRatingPlayerInvalid
		}
		return fmt.Errorf("failed to create rating snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new rating snapshot id: %w", err)
	}
	s.ID = int(id)
	return nil
}

// ListByPlayer returns the full rating series of one player, oldest
// first.
func (r *sqliteRatingHistoryRepository) ListByPlayer(ctx context.Context, playerID int) ([]models.RatingSnapshot, error) {
	query := `
		SELECT id, player_id, rating_date, classical, rapid, blitz
		FROM rating_history
		WHERE player_id = ?
		ORDER BY rating_date ASC`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]models.RatingSnapshot, 0)
	for rows.Next() {
		var s models.RatingSnapshot
		if scanErr := rows.Scan(&s.ID, &s.PlayerID, &s.Date, &s.Classical, &s.Rapid, &s.Blitz); scanErr != nil {
			return nil, scanErr
		}
		snapshots = append(snapshots, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return snapshots, nil
}
