package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Seed loads the bundled sample dataset (players, the 2024 Saint Louis
// events, participations, games, rating history) into an empty database.
// It is a no-op when players already exist, so it is safe to call on
// every startup; the returned bool reports whether anything was written.
func Seed(ctx context.Context, db *sql.DB) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check for existing players: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	players := []struct {
		name, country, fide, title string
		birth, peak                int
		peakDate                   time.Time
	}{
		{"Magnus Carlsen", "NOR", "1503014", "GM", 1990, 2882, date(2014, time.May, 1)},
		{"Hikaru Nakamura", "USA", "2016192", "GM", 1987, 2816, date(2015, time.October, 1)},
		{"Fabiano Caruana", "USA", "2020009", "GM", 1992, 2844, date(2014, time.October, 1)},
		{"Alireza Firouzja", "FRA", "12573981", "GM", 2003, 2804, date(2021, time.December, 1)},
		{"Ian Nepomniachtchi", "FID", "4168119", "GM", 1990, 2795, date(2021, time.May, 1)},
	}
	playerIDs := make(map[string]int64, len(players))
	for _, p := range players {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO players (full_name, country, birth_year, fide_id, title, peak_rating, peak_rating_date)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.name, p.country, p.birth, p.fide, p.title, p.peak, p.peakDate)
		if err != nil {
			return false, fmt.Errorf("failed to seed player %q: %w", p.name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return false, err
		}
		playerIDs[p.name] = id
	}

	tournaments := []struct {
		name, location, organizer, category string
		start, end                          time.Time
	}{
		{"Sinquefield Cup", "Saint Louis", "Grand Chess Tour", "Classical",
			date(2024, time.August, 19), date(2024, time.August, 29)},
		{"Saint Louis Rapid & Blitz", "Saint Louis", "Grand Chess Tour", "Mixed",
			date(2024, time.August, 10), date(2024, time.August, 14)},
	}
	tournamentIDs := make(map[string]int64, len(tournaments))
	for _, t := range tournaments {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO tournaments (name, location, start_date, end_date, organizer, category)
			VALUES (?, ?, ?, ?, ?, ?)`,
			t.name, t.location, t.start, t.end, t.organizer, t.category)
		if err != nil {
			return false, fmt.Errorf("failed to seed tournament %q: %w", t.name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return false, err
		}
		tournamentIDs[t.name] = id
	}

	participations := []struct {
		player, tournament string
		rank               int
		points             float64
		aor, perf          int
	}{
		{"Magnus Carlsen", "Sinquefield Cup", 1, 7.0, 2780, 2890},
		{"Hikaru Nakamura", "Sinquefield Cup", 2, 6.0, 2785, 2845},
		{"Fabiano Caruana", "Sinquefield Cup", 3, 5.5, 2790, 2810},
		{"Alireza Firouzja", "Sinquefield Cup", 4, 4.5, 2795, 2750},
		{"Ian Nepomniachtchi", "Sinquefield Cup", 5, 4.0, 2798, 2720},
		{"Hikaru Nakamura", "Saint Louis Rapid & Blitz", 1, 9.0, 2760, 2900},
		{"Alireza Firouzja", "Saint Louis Rapid & Blitz", 2, 8.0, 2765, 2850},
		{"Ian Nepomniachtchi", "Saint Louis Rapid & Blitz", 3, 7.5, 2770, 2820},
	}
	for _, pt := range participations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO participations (player_id, tournament_id, final_rank, points, avg_opponent_rating, performance_rating)
			VALUES (?, ?, ?, ?, ?, ?)`,
			playerIDs[pt.player], tournamentIDs[pt.tournament], pt.rank, pt.points, pt.aor, pt.perf)
		if err != nil {
			return false, fmt.Errorf("failed to seed participation %s/%s: %w", pt.player, pt.tournament, err)
		}
	}

	// No Carlsen-Nakamura pairing on purpose: the sample head-to-head
	// between them is the empty tally.
	games := []struct {
		round        int
		white, black string
		result       any // nil for an unfinished game
		eco, opening string
		moves        any
	}{
		{1, "Magnus Carlsen", "Fabiano Caruana", "1-0", "C65", "Ruy Lopez: Berlin Defence", 41},
		{2, "Hikaru Nakamura", "Alireza Firouzja", "1/2-1/2", "B33", "Sicilian Defence: Sveshnikov", 34},
		{3, "Ian Nepomniachtchi", "Magnus Carlsen", "0-1", "C88", "Ruy Lopez: Closed", 52},
		{4, "Fabiano Caruana", "Hikaru Nakamura", "1/2-1/2", "C65", "Ruy Lopez: Berlin Defence", 30},
		{5, "Alireza Firouzja", "Ian Nepomniachtchi", "1-0", "E20", "Nimzo-Indian Defence", 44},
		{6, "Magnus Carlsen", "Alireza Firouzja", "1/2-1/2", "D37", "Queen's Gambit Declined", 61},
		{7, "Fabiano Caruana", "Ian Nepomniachtchi", nil, "A07", "King's Indian Attack", nil},
	}
	sinquefield := tournamentIDs["Sinquefield Cup"]
	for _, g := range games {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO games (tournament_id, round_number, white_player_id, black_player_id, result, eco_code, opening_name, moves_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			sinquefield, g.round, playerIDs[g.white], playerIDs[g.black], g.result, g.eco, g.opening, g.moves)
		if err != nil {
			return false, fmt.Errorf("failed to seed game round %d: %w", g.round, err)
		}
	}

	snapshots := []struct {
		player                  string
		date                    time.Time
		classical, rapid, blitz any
	}{
		{"Magnus Carlsen", date(2024, time.July, 1), 2832, 2823, 2887},
		{"Magnus Carlsen", date(2024, time.August, 1), 2839, nil, 2877},
		{"Hikaru Nakamura", date(2024, time.July, 1), 2802, 2750, 2874},
		{"Hikaru Nakamura", date(2024, time.August, 1), 2794, 2746, 2886},
		{"Fabiano Caruana", date(2024, time.August, 1), 2793, 2711, nil},
	}
	for _, s := range snapshots {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO rating_history (player_id, rating_date, classical, rapid, blitz)
			VALUES (?, ?, ?, ?, ?)`,
			playerIDs[s.player], s.date, s.classical, s.rapid, s.blitz)
		if err != nil {
			return false, fmt.Errorf("failed to seed rating snapshot for %s: %w", s.player, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	return true, nil
}
