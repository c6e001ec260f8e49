package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chessdb/models"
	"chessdb/repositories"
)

const dateLayout = "2006-01-02"

// parseDate rejects malformed dates before any storage access. Dates
// are calendar dates, carried as midnight UTC.
func parseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// optionalDate is parseDate for fields that may be left empty.
func optionalDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func optionalString(value string) *string {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	return &v
}

// resolvePlayer turns a display name into exactly one player: NotFound
// for zero matches, AmbiguousNameError for more than one. No match is
// ever substituted silently.
func resolvePlayer(ctx context.Context, repo repositories.PlayerRepository, fullName string) (*models.Player, error) {
	name := strings.TrimSpace(fullName)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}

	matches, err := repo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up player %q: %w", name, err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
	case 1:
		return &matches[0], nil
	}

	candidates := make([]string, 0, len(matches))
	for _, m := range matches {
		label := fmt.Sprintf("#%d %s", m.ID, m.FullName)
		if m.FIDEID != nil {
			label += " (FIDE " + *m.FIDEID + ")"
		}
		candidates = append(candidates, label)
	}
	return nil, &AmbiguousNameError{Name: name, Candidates: candidates}
}

// resolveTournament is resolvePlayer for tournaments.
func resolveTournament(ctx context.Context, repo repositories.TournamentRepository, name string) (*models.Tournament, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrTournamentNameRequired
	}

	matches, err := repo.FindByName(ctx, trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to look up tournament %q: %w", trimmed, err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrTournamentNotFound, trimmed)
	case 1:
		return &matches[0], nil
	}

	candidates := make([]string, 0, len(matches))
	for _, m := range matches {
		label := fmt.Sprintf("#%d %s", m.ID, m.Name)
		if m.StartDate != nil {
			label += " (" + m.StartDate.Format(dateLayout) + ")"
		}
		candidates = append(candidates, label)
	}
	return nil, &AmbiguousNameError{Name: trimmed, Candidates: candidates}
}
