package models

import "time"

// TournamentCategory mirrors the CHECK constraint on tournaments.category.
type TournamentCategory string

const (
	CategoryClassical TournamentCategory = "Classical"
	CategoryRapid     TournamentCategory = "Rapid"
	CategoryBlitz     TournamentCategory = "Blitz"
	CategoryMixed     TournamentCategory = "Mixed"
)

// Valid reports whether the category is one of the enumerated values.
func (c TournamentCategory) Valid() bool {
	switch c {
	case CategoryClassical, CategoryRapid, CategoryBlitz, CategoryMixed:
		return true
	}
	return false
}

// Tournament is a single event. It is immutable once games or
// participations have been recorded against it.
type Tournament struct {
	ID        int                 `json:"id" db:"id"`
	Name      string              `json:"name" db:"name"`
	Location  *string             `json:"location,omitempty" db:"location"`
	StartDate *time.Time          `json:"start_date,omitempty" db:"start_date"`
	EndDate   *time.Time          `json:"end_date,omitempty" db:"end_date"`
	Organizer *string             `json:"organizer,omitempty" db:"organizer"`
	Category  *TournamentCategory `json:"category,omitempty" db:"category"`
}
