package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key patterns for Redis live game state.
func stateKey(gameID string) string { return "game:" + gameID + ":state" }

// SetGameState stores the live game snapshot JSON with a TTL so abandoned
// games eventually expire on their own.
func (c *Client) SetGameState(ctx context.Context, gameID string, state json.RawMessage, ttl time.Duration) error {
	return c.rdb.Set(ctx, stateKey(gameID), []byte(state), ttl).Err()
}

// GetGameState retrieves the live game snapshot JSON, or nil when absent.
func (c *Client) GetGameState(ctx context.Context, gameID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, stateKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game state: %w", err)
	}
	return json.RawMessage(data), nil
}

// DeleteGameData removes all live state for a finished or abandoned game.
func (c *Client) DeleteGameData(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, stateKey(gameID)).Err()
}
