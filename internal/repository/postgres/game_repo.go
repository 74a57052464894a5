package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"broadside/internal/model"
)

// GameRepo handles game and shot database operations.
type GameRepo struct {
	db *sql.DB
}

// NewGameRepo creates a GameRepo.
func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{db: db}
}

// Create inserts a new game in the placing state.
func (r *GameRepo) Create(ctx context.Context, name, creatorID, mode, difficulty string, gridSize int) (*model.Game, error) {
	var g model.Game
	var diff sql.NullString
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO games (name, creator_id, mode, difficulty, grid_size)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		 RETURNING id, name, creator_id, status, mode, difficulty, grid_size, created_at`,
		name, creatorID, mode, difficulty, gridSize,
	).Scan(&g.ID, &g.Name, &g.CreatorID, &g.Status, &g.Mode, &diff, &g.GridSize, &g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	g.Difficulty = diff.String
	return &g, nil
}

// FindByID returns a game by ID.
func (r *GameRepo) FindByID(ctx context.Context, id string) (*model.Game, error) {
	var g model.Game
	var diff, winner sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, creator_id, status, mode, difficulty, grid_size, winner,
		        created_at, started_at, finished_at
		 FROM games WHERE id = $1`, id,
	).Scan(&g.ID, &g.Name, &g.CreatorID, &g.Status, &g.Mode, &diff, &g.GridSize, &winner,
		&g.CreatedAt, &g.StartedAt, &g.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find game: %w", err)
	}
	g.Difficulty = diff.String
	g.Winner = winner.String
	return &g, nil
}

// ListByUser returns the most recent games created by the user.
func (r *GameRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.Game, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, creator_id, status, mode, difficulty, grid_size, winner,
		        created_at, started_at, finished_at
		 FROM games WHERE creator_id = $1
		 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list games by user: %w", err)
	}
	defer rows.Close()
	return scanGames(rows)
}

func scanGames(rows *sql.Rows) ([]model.Game, error) {
	var games []model.Game
	for rows.Next() {
		var g model.Game
		var diff, winner sql.NullString
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatorID, &g.Status, &g.Mode, &diff, &g.GridSize,
			&winner, &g.CreatedAt, &g.StartedAt, &g.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		g.Difficulty = diff.String
		g.Winner = winner.String
		games = append(games, g)
	}
	return games, rows.Err()
}

// SetStatus updates the game status.
func (r *GameRepo) SetStatus(ctx context.Context, gameID, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET status = $1 WHERE id = $2`, status, gameID)
	if err != nil {
		return fmt.Errorf("set game status: %w", err)
	}
	return nil
}

// SetStarted marks the game active and stamps started_at.
func (r *GameRepo) SetStarted(ctx context.Context, gameID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET status = 'active', started_at = now() WHERE id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("set game started: %w", err)
	}
	return nil
}

// SetFinished marks the game finished with a winner and stamps finished_at.
func (r *GameRepo) SetFinished(ctx context.Context, gameID, winner string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET status = 'finished', winner = $1, finished_at = now() WHERE id = $2`,
		winner, gameID)
	if err != nil {
		return fmt.Errorf("set game finished: %w", err)
	}
	return nil
}

// AppendShot records one resolved shot.
func (r *GameRepo) AppendShot(ctx context.Context, shot *model.Shot) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO shots (game_id, seq, by_player, row_idx, col_idx, result, ship_length)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, 0))`,
		shot.GameID, shot.Seq, shot.ByPlayer, shot.Row, shot.Col, shot.Result, shot.ShipLength)
	if err != nil {
		return fmt.Errorf("append shot: %w", err)
	}
	return nil
}

// ListShots returns a game's shots in firing order.
func (r *GameRepo) ListShots(ctx context.Context, gameID string) ([]model.Shot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT game_id, seq, by_player, row_idx, col_idx, result, COALESCE(ship_length, 0), created_at
		 FROM shots WHERE game_id = $1 ORDER BY seq`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list shots: %w", err)
	}
	defer rows.Close()

	var shots []model.Shot
	for rows.Next() {
		var s model.Shot
		if err := rows.Scan(&s.GameID, &s.Seq, &s.ByPlayer, &s.Row, &s.Col, &s.Result,
			&s.ShipLength, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan shot: %w", err)
		}
		shots = append(shots, s)
	}
	return shots, rows.Err()
}

// Delete removes a game and its shots.
func (r *GameRepo) Delete(ctx context.Context, gameID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return nil
}
