package repository

import (
	"context"
	"encoding/json"
	"time"

	"broadside/internal/model"
)

// UserRepository defines guest identity data operations.
type UserRepository interface {
	Create(ctx context.Context, displayName string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) error
}

// GameRepository defines game and shot history data operations.
type GameRepository interface {
	Create(ctx context.Context, name, creatorID, mode, difficulty string, gridSize int) (*model.Game, error)
	FindByID(ctx context.Context, id string) (*model.Game, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]model.Game, error)
	SetStatus(ctx context.Context, gameID, status string) error
	SetStarted(ctx context.Context, gameID string) error
	SetFinished(ctx context.Context, gameID, winner string) error
	AppendShot(ctx context.Context, shot *model.Shot) error
	ListShots(ctx context.Context, gameID string) ([]model.Shot, error)
	Delete(ctx context.Context, gameID string) error
}

// StatsRepository defines performance tracking data operations.
type StatsRepository interface {
	Insert(ctx context.Context, stats *model.GameStats) error
	SummaryByDifficulty(ctx context.Context) ([]model.DifficultySummary, error)
	RecentGames(ctx context.Context, limit int) ([]model.GameStats, error)
}

// GameCache defines live game state operations (Redis).
type GameCache interface {
	SetGameState(ctx context.Context, gameID string, state json.RawMessage, ttl time.Duration) error
	GetGameState(ctx context.Context, gameID string) (json.RawMessage, error)
	DeleteGameData(ctx context.Context, gameID string) error
}
