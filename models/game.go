package models

import "time"

// GameResult is the closed set of recorded game outcomes. A game with no
// recorded result carries a nil *GameResult, which is distinct from any
// of the three values here.
type GameResult string

const (
	ResultWhiteWin GameResult = "1-0"
	ResultBlackWin GameResult = "0-1"
	ResultDraw     GameResult = "1/2-1/2"
)

// Valid reports whether the result is one of the enumerated values.
func (r GameResult) Valid() bool {
	switch r {
	case ResultWhiteWin, ResultBlackWin, ResultDraw:
		return true
	}
	return false
}

// Game is a single recorded game. White and black must be different
// players; rows are immutable once recorded.
type Game struct {
	ID            int         `json:"id" db:"id"`
	TournamentID  int         `json:"tournament_id" db:"tournament_id"`
	RoundNumber   *int        `json:"round_number,omitempty" db:"round_number"`
	WhitePlayerID int         `json:"white_player_id" db:"white_player_id"`
	BlackPlayerID int         `json:"black_player_id" db:"black_player_id"`
	Result        *GameResult `json:"result,omitempty" db:"result"`
	ECOCode       *string     `json:"eco_code,omitempty" db:"eco_code"`
	OpeningName   *string     `json:"opening_name,omitempty" db:"opening_name"`
	MovesCount    *int        `json:"moves_count,omitempty" db:"moves_count"`
}

// GameRow is a game joined with its tournament and player names, as
// listed by the games/h2h queries.
type GameRow struct {
	GameID          int         `json:"game_id"`
	TournamentName  string      `json:"tournament_name"`
	TournamentStart *time.Time  `json:"tournament_start,omitempty"`
	RoundNumber     *int        `json:"round_number,omitempty"`
	WhiteName       string      `json:"white_name"`
	BlackName       string      `json:"black_name"`
	WhitePlayerID   int         `json:"white_player_id"`
	BlackPlayerID   int         `json:"black_player_id"`
	Result          *GameResult `json:"result,omitempty"`
	OpeningName     *string     `json:"opening_name,omitempty"`
}

// OpeningCount is one line of the opening-frequency report.
type OpeningCount struct {
	OpeningName string `json:"opening_name"`
	Games       int    `json:"games"`
}

// HeadToHead is the aggregate score between two players. Games without a
// recorded result are excluded from all three tallies.
type HeadToHead struct {
	WinsA int `json:"wins_a"`
	Draws int `json:"draws"`
	WinsB int `json:"wins_b"`
}
