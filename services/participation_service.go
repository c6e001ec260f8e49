package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chessdb/models"
	"chessdb/repositories"
)

type ParticipationService interface {
	RecordParticipation(ctx context.Context, input RecordParticipationInput) (*models.Participation, error)
	Standings(ctx context.Context, tournamentName string) ([]models.StandingRow, error)
	TopPerformers(ctx context.Context, year, limit int) ([]models.PerformanceRow, error)
}

type RecordParticipationInput struct {
	PlayerName        string
	TournamentName    string
	FinalRank         *int
	Points            *float64
	AvgOpponentRating *int
	PerformanceRating *int
}

type participationService struct {
	participationRepo repositories.ParticipationRepository
	playerRepo        repositories.PlayerRepository
	tournamentRepo    repositories.TournamentRepository
}

func NewParticipationService(
	participationRepo repositories.ParticipationRepository,
	playerRepo repositories.PlayerRepository,
	tournamentRepo repositories.TournamentRepository,
) ParticipationService {
	return &participationService{
		participationRepo: participationRepo,
		playerRepo:        playerRepo,
		tournamentRepo:    tournamentRepo,
	}
}

func (s *participationService) RecordParticipation(ctx context.Context, input RecordParticipationInput) (*models.Participation, error) {
	if input.FinalRank != nil && *input.FinalRank <= 0 {
		return nil, ErrInvalidRank
	}
	if input.Points != nil && *input.Points < 0 {
		return nil, ErrInvalidPoints
	}

	player, err := resolvePlayer(ctx, s.playerRepo, input.PlayerName)
	if err != nil {
		return nil, err
	}
	tournament, err := resolveTournament(ctx, s.tournamentRepo, input.TournamentName)
	if err != nil {
		return nil, err
	}

	participation := &models.Participation{
		PlayerID:          player.ID,
		TournamentID:      tournament.ID,
		FinalRank:         input.FinalRank,
		Points:            input.Points,
		AvgOpponentRating: input.AvgOpponentRating,
		PerformanceRating: input.PerformanceRating,
	}

	if err := s.participationRepo.Create(ctx, nil, participation); err != nil {
		if errors.Is(err, repositories.ErrParticipationConflict) {
			return nil, ErrDuplicateParticipation
		}
		return nil, fmt.Errorf("failed to record participation: %w", err)
	}
	return participation, nil
}

// Standings returns the crosstable of the named tournament, points
// descending, final rank breaking ties.
func (s *participationService) Standings(ctx context.Context, tournamentName string) ([]models.StandingRow, error) {
	tournament, err := resolveTournament(ctx, s.tournamentRepo, tournamentName)
	if err != nil {
		return nil, err
	}
	return s.participationRepo.StandingsByTournament(ctx, tournament.ID)
}

// TopPerformers ranks players by their mean performance rating over
// tournaments starting in the given year. Players with no rated
// participation that year are excluded rather than returned with an
// empty mean.
func (s *participationService) TopPerformers(ctx context.Context, year, limit int) ([]models.PerformanceRow, error) {
	if year < 1800 || year > 9999 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	return s.participationRepo.TopPerformers(ctx, from, to, limit)
}
