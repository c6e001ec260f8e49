package models

// Participation links one player to one tournament. The (player,
// tournament) pair is unique.
type Participation struct {
	ID                int      `json:"id" db:"id"`
	PlayerID          int      `json:"player_id" db:"player_id"`
	TournamentID      int      `json:"tournament_id" db:"tournament_id"`
	FinalRank         *int     `json:"final_rank,omitempty" db:"final_rank"`
	Points            *float64 `json:"points,omitempty" db:"points"`
	AvgOpponentRating *int     `json:"avg_opponent_rating,omitempty" db:"avg_opponent_rating"`
	PerformanceRating *int     `json:"performance_rating,omitempty" db:"performance_rating"`
}

// StandingRow is one line of a tournament crosstable, ordered by points
// descending then final rank ascending.
type StandingRow struct {
	PlayerName        string   `json:"player_name"`
	Points            *float64 `json:"points,omitempty"`
	FinalRank         *int     `json:"final_rank,omitempty"`
	PerformanceRating *int     `json:"performance_rating,omitempty"`
}

// PerformanceRow is one line of the top-performers report: a player and
// the arithmetic mean of their performance ratings over one year.
type PerformanceRow struct {
	PlayerID        int     `json:"player_id"`
	PlayerName      string  `json:"player_name"`
	Events          int     `json:"events"`
	MeanPerformance float64 `json:"mean_performance"`
}
