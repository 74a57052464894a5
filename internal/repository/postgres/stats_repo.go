package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"broadside/internal/model"
)

// StatsRepo handles per-game summary database operations.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo creates a StatsRepo.
func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// Insert records the summary of one finished game.
func (r *StatsRepo) Insert(ctx context.Context, stats *model.GameStats) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO game_stats
		   (game_id, difficulty, player_won, total_turns, player_shots, player_hits,
		    ai_shots, ai_hits, ships_sunk_by_player, ships_sunk_by_ai, duration_seconds)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		stats.GameID, stats.Difficulty, stats.PlayerWon, stats.TotalTurns,
		stats.PlayerShots, stats.PlayerHits, stats.AIShots, stats.AIHits,
		stats.ShipsSunkByPlayer, stats.ShipsSunkByAI, stats.DurationSeconds)
	if err != nil {
		return fmt.Errorf("insert game stats: %w", err)
	}
	return nil
}

// SummaryByDifficulty aggregates finished games per AI tier.
func (r *StatsRepo) SummaryByDifficulty(ctx context.Context) ([]model.DifficultySummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT difficulty,
		        COUNT(*),
		        COUNT(*) FILTER (WHERE player_won),
		        COUNT(*) FILTER (WHERE NOT player_won),
		        COALESCE(AVG(CASE WHEN player_shots > 0 THEN player_hits::float / player_shots END), 0),
		        COALESCE(AVG(CASE WHEN ai_shots > 0 THEN ai_hits::float / ai_shots END), 0),
		        COALESCE(AVG(total_turns), 0)
		 FROM game_stats
		 GROUP BY difficulty
		 ORDER BY difficulty`)
	if err != nil {
		return nil, fmt.Errorf("summary by difficulty: %w", err)
	}
	defer rows.Close()

	var out []model.DifficultySummary
	for rows.Next() {
		var d model.DifficultySummary
		if err := rows.Scan(&d.Difficulty, &d.GamesPlayed, &d.PlayerWins, &d.AIWins,
			&d.AvgPlayerAccuracy, &d.AvgAIAccuracy, &d.AvgTurns); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// RecentGames returns the most recently recorded game summaries.
func (r *StatsRepo) RecentGames(ctx context.Context, limit int) ([]model.GameStats, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT game_id, difficulty, player_won, total_turns, player_shots, player_hits,
		        ai_shots, ai_hits, ships_sunk_by_player, ships_sunk_by_ai, duration_seconds, created_at
		 FROM game_stats ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent games: %w", err)
	}
	defer rows.Close()

	var out []model.GameStats
	for rows.Next() {
		var s model.GameStats
		if err := rows.Scan(&s.GameID, &s.Difficulty, &s.PlayerWon, &s.TotalTurns,
			&s.PlayerShots, &s.PlayerHits, &s.AIShots, &s.AIHits,
			&s.ShipsSunkByPlayer, &s.ShipsSunkByAI, &s.DurationSeconds, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan game stats: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
