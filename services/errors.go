package services

import (
	"errors"
	"fmt"
	"strings"
)

// Shared errors used across services and the CLI's outcome branching.
var (
	// Lookups
	ErrPlayerNotFound     = errors.New("player not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrAmbiguousName      = errors.New("name matches more than one row")

	// Validation and business rules (rejected before touching storage)
	ErrPlayerNameRequired     = errors.New("player full name is required")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrInvalidCategory        = errors.New("category must be Classical, Rapid, Blitz or Mixed")
	ErrInvalidResult          = errors.New("result must be 1-0, 0-1 or 1/2-1/2")
	ErrInvalidDate            = errors.New("date must be in YYYY-MM-DD form")
	ErrInvalidDateRange       = errors.New("start date must not be after end date")
	ErrInvalidYear            = errors.New("year is out of range")
	ErrInvalidLimit           = errors.New("limit must be positive")
	ErrInvalidRank            = errors.New("final rank must be a positive integer")
	ErrInvalidPoints          = errors.New("points must not be negative")
	ErrSamePlayers            = errors.New("white and black must be different players")

	// Constraint conflicts surfaced from the storage layer
	ErrFIDEIDConflict         = errors.New("FIDE id is already registered")
	ErrDuplicateParticipation = errors.New("player already has a participation in this tournament")
	ErrDuplicateSnapshot      = errors.New("player already has a rating snapshot for this date")
)

// AmbiguousNameError reports a name-based lookup that matched more than
// one row. It unwraps to ErrAmbiguousName so callers can branch with
// errors.Is while the CLI lists the candidates for disambiguation.
type AmbiguousNameError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousNameError) Error() string {
	return fmt.Sprintf("name %q matches %d rows: %s", e.Name, len(e.Candidates), strings.Join(e.Candidates, "; "))
}

func (e *AmbiguousNameError) Unwrap() error {
	return ErrAmbiguousName
}
