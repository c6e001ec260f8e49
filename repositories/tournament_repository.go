package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chessdb/models"
)

var (
	ErrTournamentNotFound           = errors.New("tournament not found")
	ErrTournamentInUse              = errors.New("tournament is in use (participations/games exist)")
	ErrTournamentDateRangeViolation = errors.New("tournament start date must not be after end date")
	ErrTournamentCategoryViolation  = errors.New("tournament category is not one of the declared values")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	FindByName(ctx context.Context, name string) ([]models.Tournament, error)
	List(ctx context.Context) ([]models.Tournament, error)
	Delete(ctx context.Context, id int) error
}

type sqliteTournamentRepository struct {
	db *sql.DB
}

func NewSQLiteTournamentRepository(db *sql.DB) TournamentRepository {
	return &sqliteTournamentRepository{db: db}
}

func (r *sqliteTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, location, start_date, end_date, organizer, category)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		t.Name, t.Location, t.StartDate, t.EndDate, t.Organizer, t.Category,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new tournament id: %w", err)
	}
	t.ID = int(id)
	return nil
}

const tournamentColumns = `id, name, location, start_date, end_date, organizer, category`

func (r *sqliteTournamentRepository) scanTournament(rowScanner interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	var t models.Tournament
	err := rowScanner.Scan(
		&t.ID, &t.Name, &t.Location, &t.StartDate, &t.EndDate, &t.Organizer, &t.Category,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *sqliteTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = ?`
	return r.scanTournament(r.db.QueryRowContext(ctx, query, id))
}

// FindByName returns every tournament whose name matches exactly; the
// caller treats more than one match as ambiguous.
func (r *sqliteTournamentRepository) FindByName(ctx context.Context, name string) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE name = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectTournaments(rows)
}

func (r *sqliteTournamentRepository) List(ctx context.Context) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY start_date, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectTournaments(rows)
}

func (r *sqliteTournamentRepository) collectTournaments(rows *sql.Rows) ([]models.Tournament, error) {
	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, err := r.scanTournament(rows)
		if err != nil {
			return nil, err
		}
		tournaments = append(tournaments, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *sqliteTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrTournamentInUse
		}
		return fmt.Errorf("failed to delete tournament: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *sqliteTournamentRepository) handleTournamentError(err error) error {
	switch {
	case isCheckViolation(err, "chk_tournaments_date_range"):
		return ErrTournamentDateRangeViolation
	case isCheckViolation(err, "chk_tournaments_category"):
		return ErrTournamentCategoryViolation
	default:
		return fmt.Errorf("failed to write tournament: %w", err)
	}
}
