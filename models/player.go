package models

import "time"

// Player is a registered chess player. Everything except the peak rating
// fields is immutable after creation.
type Player struct {
	ID             int        `json:"id" db:"id"`
	FullName       string     `json:"full_name" db:"full_name"`
	Country        *string    `json:"country,omitempty" db:"country"`
	BirthYear      *int       `json:"birth_year,omitempty" db:"birth_year"`
	FIDEID         *string    `json:"fide_id,omitempty" db:"fide_id"`
	Title          *string    `json:"title,omitempty" db:"title"`
	PeakRating     *int       `json:"peak_rating,omitempty" db:"peak_rating"`
	PeakRatingDate *time.Time `json:"peak_rating_date,omitempty" db:"peak_rating_date"`
}
