package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chessdb/models"
	"chessdb/repositories"
)

type GameService interface {
	RecordGame(ctx context.Context, input RecordGameInput) (*models.Game, error)
	GamesBetween(ctx context.Context, playerA, playerB string) ([]models.GameRow, error)
	GamesOfPlayer(ctx context.Context, playerName string) ([]models.GameRow, error)
	HeadToHead(ctx context.Context, playerA, playerB string) (*models.HeadToHead, error)
	OpeningFrequency(ctx context.Context, limit int) ([]models.OpeningCount, error)
}

// RecordGameInput identifies the tournament and both players by display
// name. An empty Result records an unfinished or unknown outcome.
type RecordGameInput struct {
	TournamentName string
	RoundNumber    *int
	WhiteName      string
	BlackName      string
	Result         string
	ECOCode        string
	OpeningName    string
	MovesCount     *int
}

type gameService struct {
	gameRepo       repositories.GameRepository
	playerRepo     repositories.PlayerRepository
	tournamentRepo repositories.TournamentRepository
}

func NewGameService(
	gameRepo repositories.GameRepository,
	playerRepo repositories.PlayerRepository,
	tournamentRepo repositories.TournamentRepository,
) GameService {
	return &gameService{
		gameRepo:       gameRepo,
		playerRepo:     playerRepo,
		tournamentRepo: tournamentRepo,
	}
}

func (s *gameService) RecordGame(ctx context.Context, input RecordGameInput) (*models.Game, error) {
	tournament, err := resolveTournament(ctx, s.tournamentRepo, input.TournamentName)
	if err != nil {
		return nil, err
	}
	white, err := resolvePlayer(ctx, s.playerRepo, input.WhiteName)
	if err != nil {
		return nil, err
	}
	black, err := resolvePlayer(ctx, s.playerRepo, input.BlackName)
	if err != nil {
		return nil, err
	}
	if white.ID == black.ID {
		return nil, ErrSamePlayers
	}

	var result *models.GameResult
	if value := strings.TrimSpace(input.Result); value != "" {
		r := models.GameResult(value)
		if !r.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidResult, value)
		}
		result = &r
	}

	game := &models.Game{
		TournamentID:  tournament.ID,
		RoundNumber:   input.RoundNumber,
		WhitePlayerID: white.ID,
		BlackPlayerID: black.ID,
		Result:        result,
		ECOCode:       optionalString(input.ECOCode),
		OpeningName:   optionalString(input.OpeningName),
		MovesCount:    input.MovesCount,
	}

	if err := s.gameRepo.Create(ctx, nil, game); err != nil {
		if errors.Is(err, repositories.ErrGameSamePlayers) {
			return nil, ErrSamePlayers
		}
		if errors.Is(err, repositories.ErrGameResultViolation) {
			return nil, ErrInvalidResult
		}
		return nil, fmt.Errorf("failed to record game: %w", err)
	}
	return game, nil
}

// GamesBetween lists every game of the unordered pair, in either color
// assignment, ordered by tournament start date then round; it is
// symmetric in its two arguments.
func (s *gameService) GamesBetween(ctx context.Context, playerA, playerB string) ([]models.GameRow, error) {
	a, err := resolvePlayer(ctx, s.playerRepo, playerA)
	if err != nil {
		return nil, err
	}
	b, err := resolvePlayer(ctx, s.playerRepo, playerB)
	if err != nil {
		return nil, err
	}
	return s.gameRepo.ListBetween(ctx, a.ID, b.ID)
}

func (s *gameService) GamesOfPlayer(ctx context.Context, playerName string) ([]models.GameRow, error) {
	player, err := resolvePlayer(ctx, s.playerRepo, playerName)
	if err != nil {
		return nil, err
	}
	return s.gameRepo.ListByPlayer(ctx, player.ID)
}

// HeadToHead tallies the pair's score from A's point of view. Games
// without a recorded result count toward none of the three columns.
func (s *gameService) HeadToHead(ctx context.Context, playerA, playerB string) (*models.HeadToHead, error) {
	a, err := resolvePlayer(ctx, s.playerRepo, playerA)
	if err != nil {
		return nil, err
	}
	b, err := resolvePlayer(ctx, s.playerRepo, playerB)
	if err != nil {
		return nil, err
	}

	games, err := s.gameRepo.ListBetween(ctx, a.ID, b.ID)
	if err != nil {
		return nil, err
	}

	tally := &models.HeadToHead{}
	for _, g := range games {
		if g.Result == nil {
			continue
		}
		switch *g.Result {
		case models.ResultDraw:
			tally.Draws++
		case models.ResultWhiteWin:
			if g.WhitePlayerID == a.ID {
				tally.WinsA++
			} else {
				tally.WinsB++
			}
		case models.ResultBlackWin:
			if g.BlackPlayerID == a.ID {
				tally.WinsA++
			} else {
				tally.WinsB++
			}
		}
	}
	return tally, nil
}

func (s *gameService) OpeningFrequency(ctx context.Context, limit int) ([]models.OpeningCount, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	return s.gameRepo.OpeningCounts(ctx, limit)
}
