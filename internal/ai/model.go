package ai

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"broadside/pkg/battleship"
)

// BiasStrength scales how hard the Hard tier leans on historical
// placement frequencies relative to uniform sampling. 0 disables the
// bias entirely.
var BiasStrength = 2.0

// modelZones is the bucketing resolution per axis: a ship's start cell
// is normalized into a modelZones x modelZones zone so the table stays
// small and transfers across grid sizes.
const modelZones = 3

// ModelKey identifies one bucket of the placement frequency table.
type ModelKey struct {
	Length   int
	Bucket   int
	Vertical bool
}

func (k ModelKey) String() string {
	o := "h"
	if k.Vertical {
		o = "v"
	}
	return fmt.Sprintf("L%d:b%d:%s", k.Length, k.Bucket, o)
}

// ParseModelKey parses the string form produced by ModelKey.String.
func ParseModelKey(s string) (ModelKey, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || !strings.HasPrefix(parts[0], "L") || !strings.HasPrefix(parts[1], "b") {
		return ModelKey{}, fmt.Errorf("malformed placement model key %q", s)
	}
	length, err := strconv.Atoi(parts[0][1:])
	if err != nil {
		return ModelKey{}, fmt.Errorf("malformed placement model key %q: %w", s, err)
	}
	bucket, err := strconv.Atoi(parts[1][1:])
	if err != nil {
		return ModelKey{}, fmt.Errorf("malformed placement model key %q: %w", s, err)
	}
	return ModelKey{Length: length, Bucket: bucket, Vertical: parts[2] == "v"}, nil
}

// ModelStore persists the frequency table. Counts merge by summation,
// so concurrent processes can flush independently.
type ModelStore interface {
	Load(ctx context.Context) (map[ModelKey]int64, error)
	Add(ctx context.Context, counts map[ModelKey]int64) error
}

// Model is the process-wide table of historical opponent ship
// placements, used to bias the placement sampler. Reads at turn start
// may run concurrently; the end-of-game write takes the exclusive lock.
type Model struct {
	mu       sync.RWMutex
	gridSize int
	counts   map[ModelKey]int64
	dirty    map[ModelKey]int64
	total    int64
}

// NewModel creates an empty model for the given grid size. An empty
// model weights all positions uniformly.
func NewModel(gridSize int) *Model {
	return &Model{
		gridSize: gridSize,
		counts:   make(map[ModelKey]int64),
		dirty:    make(map[ModelKey]int64),
	}
}

// bucket maps a start cell into its normalized zone index.
func (m *Model) bucket(c battleship.Cell) int {
	zr := c.Row * modelZones / m.gridSize
	zc := c.Col * modelZones / m.gridSize
	return zr*modelZones + zc
}

// ObserveFleet records one completed game's opponent placement.
func (m *Model) ObserveFleet(ships []*battleship.Ship) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range ships {
		key := ModelKey{
			Length:   s.Length,
			Bucket:   m.bucket(s.Start),
			Vertical: s.Orient == battleship.Vertical,
		}
		m.counts[key]++
		m.dirty[key]++
		m.total++
	}
}

// Merge folds externally loaded counts into the table by summation.
// Merged counts are not re-flushed.
func (m *Model) Merge(counts map[ModelKey]int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, n := range counts {
		m.counts[k] += n
		m.total += n
	}
}

// Weight returns the sampling weight for a candidate position. With no
// observations every position weighs 1 (uniform); otherwise observed
// buckets are boosted in proportion to their frequency relative to the
// mean bucket, scaled by BiasStrength.
func (m *Model) Weight(length int, start battleship.Cell, orient battleship.Orientation) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.total == 0 || len(m.counts) == 0 || BiasStrength == 0 {
		return 1
	}
	key := ModelKey{Length: length, Bucket: m.bucket(start), Vertical: orient == battleship.Vertical}
	mean := float64(m.total) / float64(len(m.counts))
	return 1 + BiasStrength*float64(m.counts[key])/mean
}

// TotalObservations returns the number of recorded ship placements.
func (m *Model) TotalObservations() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.total
}

// LoadFrom replaces pending state with the store's persisted counts.
func (m *Model) LoadFrom(ctx context.Context, store ModelStore) error {
	counts, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load placement model: %w", err)
	}
	m.Merge(counts)
	return nil
}

// Flush writes observations recorded since the last flush to the store.
func (m *Model) Flush(ctx context.Context, store ModelStore) error {
	m.mu.Lock()
	pending := m.dirty
	m.dirty = make(map[ModelKey]int64)
	m.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}
	if err := store.Add(ctx, pending); err != nil {
		// Put the counts back so a later flush retries them.
		m.mu.Lock()
		for k, n := range pending {
			m.dirty[k] += n
		}
		m.mu.Unlock()
		return fmt.Errorf("flush placement model: %w", err)
	}
	return nil
}
