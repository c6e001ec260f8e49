package models

import "time"

// RatingSnapshot is one published rating point for a player. At most one
// snapshot may exist per player per calendar date; the series is
// append-only. Each rating is optional and a missing value is distinct
// from a zero rating.
type RatingSnapshot struct {
	ID        int       `json:"id" db:"id"`
	PlayerID  int       `json:"player_id" db:"player_id"`
	Date      time.Time `json:"date" db:"rating_date"`
	Classical *int      `json:"classical,omitempty" db:"classical"`
	Rapid     *int      `json:"rapid,omitempty" db:"rapid"`
	Blitz     *int      `json:"blitz,omitempty" db:"blitz"`
}
