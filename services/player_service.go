package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"chessdb/models"
	"chessdb/repositories"
)

type PlayerService interface {
	CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
	ResolvePlayer(ctx context.Context, fullName string) (*models.Player, error)
	RatingTrend(ctx context.Context, fullName string) ([]models.RatingSnapshot, error)
	RecordRatingSnapshot(ctx context.Context, input RecordRatingInput) (*models.RatingSnapshot, error)
}

type CreatePlayerInput struct {
	FullName  string
	Country   string
	BirthYear *int
	FIDEID    string
	Title     string
}

// RecordRatingInput is one published rating point. Ratings left nil are
// recorded as absent, not as zero.
type RecordRatingInput struct {
	PlayerName string
	Date       string
	Classical  *int
	Rapid      *int
	Blitz      *int
}

type playerService struct {
	db         *sql.DB
	playerRepo repositories.PlayerRepository
	ratingRepo repositories.RatingHistoryRepository
}

func NewPlayerService(db *sql.DB, playerRepo repositories.PlayerRepository, ratingRepo repositories.RatingHistoryRepository) PlayerService {
	return &playerService{
		db:         db,
		playerRepo: playerRepo,
		ratingRepo: ratingRepo,
	}
}

func (s *playerService) CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error) {
	name := strings.TrimSpace(input.FullName)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}

	player := &models.Player{
		FullName:  name,
		Country:   optionalString(input.Country),
		BirthYear: input.BirthYear,
		FIDEID:    optionalString(input.FIDEID),
		Title:     optionalString(input.Title),
	}

	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerFIDEConflict) {
			return nil, ErrFIDEIDConflict
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context) ([]models.Player, error) {
	return s.playerRepo.List(ctx)
}

func (s *playerService) ResolvePlayer(ctx context.Context, fullName string) (*models.Player, error) {
	return resolvePlayer(ctx, s.playerRepo, fullName)
}

// RatingTrend returns the player's full rating series, oldest snapshot
// first.
func (s *playerService) RatingTrend(ctx context.Context, fullName string) ([]models.RatingSnapshot, error) {
	player, err := resolvePlayer(ctx, s.playerRepo, fullName)
	if err != nil {
		return nil, err
	}
	return s.ratingRepo.ListByPlayer(ctx, player.ID)
}

// RecordRatingSnapshot appends one snapshot and, when the new classical
// rating exceeds the player's recorded peak, updates the peak fields in
// the same transaction.
func (s *playerService) RecordRatingSnapshot(ctx context.Context, input RecordRatingInput) (*models.RatingSnapshot, error) {
	player, err := resolvePlayer(ctx, s.playerRepo, input.PlayerName)
	if err != nil {
		return nil, err
	}

	date, err := parseDate(input.Date)
	if err != nil {
		return nil, err
	}

	snapshot := &models.RatingSnapshot{
		PlayerID:  player.ID,
		Date:      date,
		Classical: input.Classical,
		Rapid:     input.Rapid,
		Blitz:     input.Blitz,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.ratingRepo.Create(ctx, tx, snapshot); err != nil {
		if errors.Is(err, repositories.ErrRatingSnapshotConflict) {
			return nil, ErrDuplicateSnapshot
		}
		return nil, fmt.Errorf("failed to record rating snapshot: %w", err)
	}

	if input.Classical != nil && (player.PeakRating == nil || *input.Classical > *player.PeakRating) {
		if err := s.playerRepo.UpdatePeakRating(ctx, tx, player.ID, *input.Classical, date); err != nil {
			return nil, fmt.Errorf("failed to update peak rating: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rating snapshot: %w", err)
	}
	return snapshot, nil
}
