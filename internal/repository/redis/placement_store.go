package redis

import (
	"context"
	"fmt"
	"strconv"

	"broadside/internal/ai"
)

const placementModelKey = "ai:placement_model"

// LoadPlacementCounts reads the shared placement frequency table. Unparseable
// fields are skipped so a corrupt entry cannot take the model down.
func (c *Client) LoadPlacementCounts(ctx context.Context) (map[ai.ModelKey]int64, error) {
	fields, err := c.rdb.HGetAll(ctx, placementModelKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load placement model: %w", err)
	}
	counts := make(map[ai.ModelKey]int64, len(fields))
	for field, raw := range fields {
		key, err := ai.ParseModelKey(field)
		if err != nil {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		counts[key] = n
	}
	return counts, nil
}

// AddPlacementCounts increments the shared table by the given deltas.
// HIncrBy keeps concurrent flushes from different processes additive.
func (c *Client) AddPlacementCounts(ctx context.Context, counts map[ai.ModelKey]int64) error {
	pipe := c.rdb.Pipeline()
	for key, delta := range counts {
		pipe.HIncrBy(ctx, placementModelKey, key.String(), delta)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add placement counts: %w", err)
	}
	return nil
}

// PlacementStore adapts the client to the opponent model's store interface.
type PlacementStore struct {
	client *Client
}

// NewPlacementStore creates a PlacementStore.
func NewPlacementStore(client *Client) *PlacementStore {
	return &PlacementStore{client: client}
}

// Load implements ai.ModelStore.
func (s *PlacementStore) Load(ctx context.Context) (map[ai.ModelKey]int64, error) {
	return s.client.LoadPlacementCounts(ctx)
}

// Add implements ai.ModelStore.
func (s *PlacementStore) Add(ctx context.Context, counts map[ai.ModelKey]int64) error {
	return s.client.AddPlacementCounts(ctx, counts)
}
