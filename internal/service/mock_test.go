package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"broadside/internal/model"
)

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, displayName string) (*model.User, error) {
	u := &model.User{
		ID:          fmt.Sprintf("user-%d", len(m.users)+1),
		DisplayName: displayName,
		CreatedAt:   time.Now(),
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepo) UpdateDisplayName(_ context.Context, id, displayName string) error {
	if u, ok := m.users[id]; ok {
		u.DisplayName = displayName
	}
	return nil
}

type mockGameRepo struct {
	mu    sync.Mutex
	games map[string]*model.Game
	shots map[string][]model.Shot
	// ctx.Err() as observed by each SetFinished call, so tests can
	// assert writes reach the store on a live context.
	finishCtxErrs []error
}

func newMockGameRepo() *mockGameRepo {
	return &mockGameRepo{
		games: make(map[string]*model.Game),
		shots: make(map[string][]model.Shot),
	}
}

func (m *mockGameRepo) Create(_ context.Context, name, creatorID, mode, difficulty string, gridSize int) (*model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := &model.Game{
		ID:         fmt.Sprintf("game-%d", len(m.games)+1),
		Name:       name,
		CreatorID:  creatorID,
		Status:     "placing",
		Mode:       mode,
		Difficulty: difficulty,
		GridSize:   gridSize,
		CreatedAt:  time.Now(),
	}
	m.games[g.ID] = g
	return g, nil
}

func (m *mockGameRepo) FindByID(_ context.Context, id string) (*model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (m *mockGameRepo) ListByUser(_ context.Context, userID string, limit int) ([]model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Game
	for _, g := range m.games {
		if g.CreatorID == userID && len(result) < limit {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGameRepo) SetStatus(_ context.Context, gameID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.games[gameID]; ok {
		g.Status = status
	}
	return nil
}

func (m *mockGameRepo) SetStarted(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.games[gameID]; ok {
		g.Status = "active"
		now := time.Now()
		g.StartedAt = &now
	}
	return nil
}

func (m *mockGameRepo) SetFinished(ctx context.Context, gameID, winner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finishCtxErrs = append(m.finishCtxErrs, ctx.Err())
	if g, ok := m.games[gameID]; ok {
		g.Status = "finished"
		g.Winner = winner
		now := time.Now()
		g.FinishedAt = &now
	}
	return nil
}

func (m *mockGameRepo) AppendShot(_ context.Context, shot *model.Shot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shots[shot.GameID] = append(m.shots[shot.GameID], *shot)
	return nil
}

func (m *mockGameRepo) ListShots(_ context.Context, gameID string) ([]model.Shot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Shot(nil), m.shots[gameID]...), nil
}

func (m *mockGameRepo) Delete(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, gameID)
	delete(m.shots, gameID)
	return nil
}

type mockStatsRepo struct {
	mu            sync.Mutex
	entries       []model.GameStats
	insertCtxErrs []error
}

func (m *mockStatsRepo) Insert(ctx context.Context, stats *model.GameStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertCtxErrs = append(m.insertCtxErrs, ctx.Err())
	m.entries = append(m.entries, *stats)
	return nil
}

func (m *mockStatsRepo) SummaryByDifficulty(_ context.Context) ([]model.DifficultySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byDiff := make(map[string]*model.DifficultySummary)
	for _, e := range m.entries {
		d, ok := byDiff[e.Difficulty]
		if !ok {
			d = &model.DifficultySummary{Difficulty: e.Difficulty}
			byDiff[e.Difficulty] = d
		}
		d.GamesPlayed++
		if e.PlayerWon {
			d.PlayerWins++
		} else {
			d.AIWins++
		}
	}
	var out []model.DifficultySummary
	for _, d := range byDiff {
		out = append(out, *d)
	}
	return out, nil
}

func (m *mockStatsRepo) RecentGames(_ context.Context, limit int) ([]model.GameStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.entries)
	if n > limit {
		n = limit
	}
	return append([]model.GameStats(nil), m.entries[len(m.entries)-n:]...), nil
}

func (m *mockStatsRepo) snapshotEntries() []model.GameStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.GameStats(nil), m.entries...)
}

type mockCache struct {
	mu     sync.Mutex
	states map[string]json.RawMessage
}

func newMockCache() *mockCache {
	return &mockCache{states: make(map[string]json.RawMessage)}
}

func (m *mockCache) SetGameState(_ context.Context, gameID string, state json.RawMessage, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[gameID] = state
	return nil
}

func (m *mockCache) GetGameState(_ context.Context, gameID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[gameID], nil
}

func (m *mockCache) DeleteGameData(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, gameID)
	return nil
}

// recordingBroadcaster captures events so tests can wait on async AI turns.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	gameID    string
	eventType string
	data      any
}

func (b *recordingBroadcaster) BroadcastGameEvent(gameID string, eventType string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{gameID: gameID, eventType: eventType, data: data})
}

func (b *recordingBroadcaster) countOf(eventType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.eventType == eventType {
			n++
		}
	}
	return n
}
