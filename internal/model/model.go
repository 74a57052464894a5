package model

import "time"

// User represents a guest session identity.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Game represents one match against an AI opponent or a remote player.
type Game struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	CreatorID  string     `json:"creator_id"`
	Status     string     `json:"status"` // placing, active, finished
	Mode       string     `json:"mode"`   // ai, network
	Difficulty string     `json:"difficulty,omitempty"`
	GridSize   int        `json:"grid_size"`
	Winner     string     `json:"winner,omitempty"` // player, ai, opponent
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Shot is one resolved shot within a game, in firing order.
type Shot struct {
	GameID     string    `json:"game_id"`
	Seq        int       `json:"seq"`
	ByPlayer   bool      `json:"by_player"`
	Row        int       `json:"row"`
	Col        int       `json:"col"`
	Result     string    `json:"result"` // miss, hit, sunk
	ShipLength int       `json:"ship_length,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// GameStats summarizes one finished game for the performance tracker.
type GameStats struct {
	GameID            string    `json:"game_id"`
	Difficulty        string    `json:"difficulty"`
	PlayerWon         bool      `json:"player_won"`
	TotalTurns        int       `json:"total_turns"`
	PlayerShots       int       `json:"player_shots"`
	PlayerHits        int       `json:"player_hits"`
	AIShots           int       `json:"ai_shots"`
	AIHits            int       `json:"ai_hits"`
	ShipsSunkByPlayer int       `json:"ships_sunk_by_player"`
	ShipsSunkByAI     int       `json:"ships_sunk_by_ai"`
	DurationSeconds   float64   `json:"duration_seconds"`
	CreatedAt         time.Time `json:"created_at"`
}

// PlayerAccuracy returns hits over shots, or 0 with no shots.
func (s *GameStats) PlayerAccuracy() float64 {
	if s.PlayerShots == 0 {
		return 0
	}
	return float64(s.PlayerHits) / float64(s.PlayerShots)
}

// AIAccuracy returns AI hits over AI shots, or 0 with no shots.
func (s *GameStats) AIAccuracy() float64 {
	if s.AIShots == 0 {
		return 0
	}
	return float64(s.AIHits) / float64(s.AIShots)
}

// DifficultySummary aggregates finished games for one AI tier.
type DifficultySummary struct {
	Difficulty        string  `json:"difficulty"`
	GamesPlayed       int     `json:"games_played"`
	PlayerWins        int     `json:"player_wins"`
	AIWins            int     `json:"ai_wins"`
	AvgPlayerAccuracy float64 `json:"avg_player_accuracy"`
	AvgAIAccuracy     float64 `json:"avg_ai_accuracy"`
	AvgTurns          float64 `json:"avg_turns"`
}

// WinRate is the player's win rate against this tier.
func (d *DifficultySummary) WinRate() float64 {
	if d.GamesPlayed == 0 {
		return 0
	}
	return float64(d.PlayerWins) / float64(d.GamesPlayed)
}
