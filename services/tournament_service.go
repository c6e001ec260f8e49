package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chessdb/models"
	"chessdb/repositories"
)

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]models.Tournament, error)
	ResolveTournament(ctx context.Context, name string) (*models.Tournament, error)
}

type CreateTournamentInput struct {
	Name      string
	Location  string
	StartDate string
	EndDate   string
	Organizer string
	Category  string
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
}

func NewTournamentService(tournamentRepo repositories.TournamentRepository) TournamentService {
	return &tournamentService{tournamentRepo: tournamentRepo}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}

	start, err := optionalDate(input.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := optionalDate(input.EndDate)
	if err != nil {
		return nil, err
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, ErrInvalidDateRange
	}

	var category *models.TournamentCategory
	if c := strings.TrimSpace(input.Category); c != "" {
		value := models.TournamentCategory(c)
		if !value.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, c)
		}
		category = &value
	}

	tournament := &models.Tournament{
		Name:      name,
		Location:  optionalString(input.Location),
		StartDate: start,
		EndDate:   end,
		Organizer: optionalString(input.Organizer),
		Category:  category,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentDateRangeViolation) {
			return nil, ErrInvalidDateRange
		}
		if errors.Is(err, repositories.ErrTournamentCategoryViolation) {
			return nil, ErrInvalidCategory
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx)
}

func (s *tournamentService) ResolveTournament(ctx context.Context, name string) (*models.Tournament, error) {
	return resolveTournament(ctx, s.tournamentRepo, name)
}
