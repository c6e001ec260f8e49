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
	ErrParticipationNotFound        = errors.New("participation not found")
	ErrParticipationConflict        = errors.New("player already has a participation in this tournament")
	ErrParticipationRefInvalid      = errors.New("participation player or tournament reference invalid")
	ErrParticipationRankViolation   = errors.New("participation final rank must be positive")
	ErrParticipationPointsViolation = errors.New("participation points must not be negative")
)

type ParticipationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, participation *models.Participation) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Participation, error)
	ListByPlayer(ctx context.Context, playerID int) ([]models.Participation, error)
	StandingsByTournament(ctx context.Context, tournamentID int) ([]models.StandingRow, error)
	TopPerformers(ctx context.Context, from, to time.Time, limit int) ([]models.PerformanceRow, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type sqliteParticipationRepository struct {
	db *sql.DB
}

func NewSQLiteParticipationRepository(db *sql.DB) ParticipationRepository {
	return &sqliteParticipationRepository{db: db}
}

func (r *sqliteParticipationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqliteParticipationRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Participation) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO participations (player_id, tournament_id, final_rank, points, avg_opponent_rating, performance_rating)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := executor.ExecContext(ctx, query,
		p.PlayerID, p.TournamentID, p.FinalRank, p.Points, p.AvgOpponentRating, p.PerformanceRating,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "participations.player_id"):
			return ErrParticipationConflict
		case isForeignKeyViolation(err):
			return ErrParticipationRefInvalid
		case isCheckViolation(err, "chk_participations_final_rank"):
			return ErrParticipationRankViolation
		case isCheckViolation(err, "chk_participations_points"):
			return ErrParticipationPointsViolation
		}
		return fmt.Errorf("failed to create participation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new participation id: %w", err)
	}
	p.ID = int(id)
	return nil
}

const participationColumns = `id, player_id, tournament_id, final_rank, points, avg_opponent_rating, performance_rating`

func (r *sqliteParticipationRepository) listBy(ctx context.Context, column string, id int) ([]models.Participation, error) {
	query := `SELECT ` + participationColumns + ` FROM participations WHERE ` + column + ` = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participations := make([]models.Participation, 0)
	for rows.Next() {
		var p models.Participation
		if scanErr := rows.Scan(
			&p.ID, &p.PlayerID, &p.TournamentID, &p.FinalRank, &p.Points,
			&p.AvgOpponentRating, &p.PerformanceRating,
		); scanErr != nil {
			return nil, scanErr
		}
		participations = append(participations, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return participations, nil
}

func (r *sqliteParticipationRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Participation, error) {
	return r.listBy(ctx, "tournament_id", tournamentID)
}

func (r *sqliteParticipationRepository) ListByPlayer(ctx context.Context, playerID int) ([]models.Participation, error) {
	return r.listBy(ctx, "player_id", playerID)
}

// StandingsByTournament returns the crosstable of one tournament: points
// descending, final rank ascending as the tie-break. SQLite sorts NULL
// points after every real score on a descending sort.
func (r *sqliteParticipationRepository) StandingsByTournament(ctx context.Context, tournamentID int) ([]models.StandingRow, error) {
	query := `
		SELECT p.full_name, pt.points, pt.final_rank, pt.performance_rating
		FROM participations pt
		JOIN players p ON pt.player_id = p.id
		WHERE pt.tournament_id = ?
		ORDER BY pt.points DESC, pt.final_rank ASC, p.full_name ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]models.StandingRow, 0)
	for rows.Next() {
		var row models.StandingRow
		if scanErr := rows.Scan(&row.PlayerName, &row.Points, &row.FinalRank, &row.PerformanceRating); scanErr != nil {
			return nil, scanErr
		}
		standings = append(standings, row)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}

// TopPerformers aggregates the arithmetic mean of performance ratings
// per player over tournaments starting in [from, to). Players without a
// single rated participation in the window are excluded entirely.
func (r *sqliteParticipationRepository) TopPerformers(ctx context.Context, from, to time.Time, limit int) ([]models.PerformanceRow, error) {
	query := `
		SELECT p.id, p.full_name, COUNT(pt.performance_rating), AVG(pt.performance_rating)
		FROM participations pt
		JOIN players p ON pt.player_id = p.id
		JOIN tournaments t ON pt.tournament_id = t.id
		WHERE t.start_date >= ? AND t.start_date < ?
		GROUP BY p.id, p.full_name
		HAVING COUNT(pt.performance_rating) > 0
		ORDER BY AVG(pt.performance_rating) DESC, p.full_name ASC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	performers := make([]models.PerformanceRow, 0)
	for rows.Next() {
		var row models.PerformanceRow
		if scanErr := rows.Scan(&row.PlayerID, &row.PlayerName, &row.Events, &row.MeanPerformance); scanErr != nil {
			return nil, scanErr
		}
		performers = append(performers, row)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return performers, nil
}

// DeleteByTournament clears the participations of one tournament. The
// PGN importer uses it before rebuilding scores from imported games.
func (r *sqliteParticipationRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM participations WHERE tournament_id = ?`, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete participations for tournament %d: %w", tournamentID, err)
	}
	return nil
}
