package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"broadside/internal/ai"
	"broadside/internal/model"
	"broadside/internal/repository"
	"broadside/pkg/battleship"
)

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrNotYourGame       = errors.New("you are not in this game")
	ErrGameNotPlacing    = errors.New("game is not in placing status")
	ErrGameNotActive     = errors.New("game is not active")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrInvalidPlacement  = errors.New("invalid fleet placement")
	ErrInvalidShot       = errors.New("invalid shot")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
)

// liveGameTTL bounds how long an abandoned game lingers in Redis.
const liveGameTTL = 24 * time.Hour

// ShipPlacement is one ship of the player's fleet as submitted by the client.
type ShipPlacement struct {
	Length   int  `json:"length"`
	Row      int  `json:"row"`
	Col      int  `json:"col"`
	Vertical bool `json:"vertical"`
}

// ShotResult is what the client sees after a shot resolves.
type ShotResult struct {
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Result     string `json:"result"`
	ShipLength int    `json:"ship_length,omitempty"`
	GameOver   bool   `json:"game_over"`
	Winner     string `json:"winner,omitempty"`
}

// liveGame holds the in-memory state of one active match. All access goes
// through its mutex; the AI turn runs on its own goroutine.
type liveGame struct {
	mu sync.Mutex

	game        *model.Game
	playerBoard *battleship.Board
	aiBoard     *battleship.Board

	// opponentView is what the AI knows about the player's board,
	// playerView is what the player knows about the AI's board.
	opponentView *ai.Knowledge
	playerView   *ai.Knowledge

	strategy ai.Strategy
	turn     string // player, ai
	seq      int

	playerShots, playerHits int
	aiShots, aiHits         int
	sunkByPlayer, sunkByAI  int

	startedAt time.Time
	cancel    context.CancelFunc
}

// GameService runs matches against the AI opponent.
type GameService struct {
	userRepo  repository.UserRepository
	gameRepo  repository.GameRepository
	statsRepo repository.StatsRepository
	cache     repository.GameCache

	aiCfg       ai.Config
	opponentMdl *ai.Model
	modelStore  ai.ModelStore
	broadcaster Broadcaster

	mu    sync.Mutex
	games map[string]*liveGame
}

// NewGameService creates a GameService. A nil broadcaster falls back to a no-op.
func NewGameService(
	userRepo repository.UserRepository,
	gameRepo repository.GameRepository,
	statsRepo repository.StatsRepository,
	cache repository.GameCache,
	aiCfg ai.Config,
	opponentMdl *ai.Model,
	modelStore ai.ModelStore,
	broadcaster Broadcaster,
) *GameService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &GameService{
		userRepo:    userRepo,
		gameRepo:    gameRepo,
		statsRepo:   statsRepo,
		cache:       cache,
		aiCfg:       aiCfg,
		opponentMdl: opponentMdl,
		modelStore:  modelStore,
		broadcaster: broadcaster,
		games:       make(map[string]*liveGame),
	}
}

// CreateGame creates a game in "placing" status. The AI fleet is placed
// immediately; the game starts once the player submits theirs.
func (s *GameService) CreateGame(ctx context.Context, name, creatorID, difficulty string) (*model.Game, error) {
	diff, err := ai.ParseDifficulty(difficulty)
	if err != nil {
		return nil, ErrInvalidDifficulty
	}

	game, err := s.gameRepo.Create(ctx, name, creatorID, "ai", string(diff), s.aiCfg.GridSize)
	if err != nil {
		return nil, err
	}

	aiBoard, err := battleship.RandomBoard(s.aiCfg.GridSize, s.aiCfg.Fleet, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return nil, fmt.Errorf("place ai fleet: %w", err)
	}

	lg := &liveGame{
		game:         game,
		aiBoard:      aiBoard,
		opponentView: ai.NewKnowledge(s.aiCfg.GridSize, s.aiCfg.Fleet),
		playerView:   ai.NewKnowledge(s.aiCfg.GridSize, s.aiCfg.Fleet),
		strategy:     ai.StrategyForDifficulty(diff, s.aiCfg, s.opponentMdl),
		turn:         "player",
	}

	s.mu.Lock()
	s.games[game.ID] = lg
	s.mu.Unlock()

	return game, nil
}

// PlaceFleet validates and records the player's fleet, then starts the game.
func (s *GameService) PlaceFleet(ctx context.Context, gameID, userID string, placements []ShipPlacement) (*model.Game, error) {
	lg, err := s.live(gameID)
	if err != nil {
		return nil, err
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()

	if lg.game.CreatorID != userID {
		return nil, ErrNotYourGame
	}
	if lg.game.Status != "placing" {
		return nil, ErrGameNotPlacing
	}

	ships := make([]*battleship.Ship, 0, len(placements))
	lengths := make([]int, 0, len(placements))
	for _, p := range placements {
		orient := battleship.Horizontal
		if p.Vertical {
			orient = battleship.Vertical
		}
		ships = append(ships, battleship.NewShip(p.Length, battleship.Cell{Row: p.Row, Col: p.Col}, orient))
		lengths = append(lengths, p.Length)
	}
	if !fleetMatches(lengths, s.aiCfg.Fleet) {
		return nil, fmt.Errorf("%w: fleet must be %v", ErrInvalidPlacement, s.aiCfg.Fleet)
	}
	if err := battleship.ValidatePlacement(ships, s.aiCfg.GridSize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlacement, err)
	}

	board, err := battleship.NewBoard(s.aiCfg.GridSize, ships)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlacement, err)
	}
	lg.playerBoard = board
	lg.startedAt = time.Now()
	lg.game.Status = "active"

	if err := s.gameRepo.SetStarted(ctx, gameID); err != nil {
		return nil, err
	}
	s.snapshot(ctx, lg)

	s.broadcaster.BroadcastGameEvent(gameID, "game_started", map[string]any{
		"turn": lg.turn,
	})
	return lg.game, nil
}

// FireShot resolves a player shot. When the game continues, the AI's reply
// runs asynchronously and is delivered over the broadcaster.
func (s *GameService) FireShot(ctx context.Context, gameID, userID string, row, col int) (*ShotResult, error) {
	lg, err := s.live(gameID)
	if err != nil {
		return nil, err
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()

	if lg.game.CreatorID != userID {
		return nil, ErrNotYourGame
	}
	if lg.game.Status != "active" {
		return nil, ErrGameNotActive
	}
	if lg.turn != "player" {
		return nil, ErrNotYourTurn
	}

	cell := battleship.Cell{Row: row, Col: col}
	if !cell.InBounds(s.aiCfg.GridSize) {
		return nil, fmt.Errorf("%w: cell out of bounds", ErrInvalidShot)
	}
	outcome, err := lg.aiBoard.ApplyShot(cell)
	if errors.Is(err, battleship.ErrRepeatShot) {
		return nil, fmt.Errorf("%w: cell already shot", ErrInvalidShot)
	}
	if err != nil {
		return nil, err
	}

	lg.playerShots++
	if outcome.Result != battleship.Miss {
		lg.playerHits++
	}
	if outcome.Result == battleship.Sunk {
		lg.sunkByPlayer++
	}
	if err := lg.playerView.RecordResult(cell, outcome); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("Failed to track player view")
	}

	lg.seq++
	s.persistShot(ctx, lg, true, cell, outcome)

	res := &ShotResult{
		Row:        row,
		Col:        col,
		Result:     outcome.Result.String(),
		ShipLength: outcome.ShipLength,
	}
	s.broadcaster.BroadcastGameEvent(gameID, "shot_fired", map[string]any{
		"by":          "player",
		"row":         row,
		"col":         col,
		"result":      res.Result,
		"ship_length": outcome.ShipLength,
	})

	if lg.aiBoard.AllSunk() {
		res.GameOver = true
		res.Winner = "player"
		s.endGame(ctx, lg, "player")
		return res, nil
	}

	lg.turn = "ai"
	s.snapshot(ctx, lg)

	aiCtx, cancel := context.WithCancel(context.Background())
	lg.cancel = cancel
	go s.aiTurn(aiCtx, lg)

	return res, nil
}

// aiTurn runs the opponent engine for one shot and hands the turn back.
func (s *GameService) aiTurn(ctx context.Context, lg *liveGame) {
	lg.mu.Lock()
	if lg.game.Status != "active" || lg.turn != "ai" {
		lg.mu.Unlock()
		return
	}
	gameID := lg.game.ID
	strat := lg.strategy
	view := lg.opponentView.Clone()
	lg.mu.Unlock()

	// The search can take seconds on the upper tiers, so it runs against
	// a snapshot of the tracker without holding the game lock.
	cell, err := strat.SelectTarget(ctx, view)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error().Err(err).Str("gameId", gameID).Str("strategy", strat.Name()).
			Msg("Opponent engine failed to select a target")
		return
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()

	// The game may have ended or been cancelled while searching.
	if lg.game.Status != "active" || lg.turn != "ai" || ctx.Err() != nil {
		return
	}

	outcome, err := lg.playerBoard.ApplyShot(cell)
	if err != nil {
		log.Error().Err(err).Str("gameId", gameID).Msg("Opponent shot rejected by board")
		return
	}

	lg.aiShots++
	if outcome.Result != battleship.Miss {
		lg.aiHits++
	}
	if outcome.Result == battleship.Sunk {
		lg.sunkByAI++
	}
	if err := lg.opponentView.RecordResult(cell, outcome); err != nil {
		log.Error().Err(err).Str("gameId", gameID).Msg("Failed to record opponent result")
	}

	lg.seq++
	s.persistShot(ctx, lg, false, cell, outcome)

	s.broadcaster.BroadcastGameEvent(gameID, "shot_fired", map[string]any{
		"by":          "ai",
		"row":         cell.Row,
		"col":         cell.Col,
		"result":      outcome.Result.String(),
		"ship_length": outcome.ShipLength,
	})

	if lg.playerBoard.AllSunk() {
		s.endGame(ctx, lg, "ai")
		return
	}

	lg.turn = "player"
	s.snapshot(ctx, lg)
	s.broadcaster.BroadcastGameEvent(gameID, "turn", map[string]any{"turn": "player"})
}

// Hint returns the shot probability heatmap for the player's view of the
// AI board, with the best cell called out.
func (s *GameService) Hint(ctx context.Context, gameID, userID string) (*ai.Heatmap, battleship.Cell, error) {
	lg, err := s.live(gameID)
	if err != nil {
		return nil, battleship.Cell{}, err
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()

	if lg.game.CreatorID != userID {
		return nil, battleship.Cell{}, ErrNotYourGame
	}
	if lg.game.Status != "active" {
		return nil, battleship.Cell{}, ErrGameNotActive
	}

	placements, err := ai.SamplePlacements(lg.playerView, s.aiCfg.HeatmapSamples, nil)
	if err != nil {
		return nil, battleship.Cell{}, fmt.Errorf("hint: %w", err)
	}
	heat := ai.BuildHeatmap(lg.playerView, placements)
	best, ok := heat.BestCell(lg.playerView)
	if !ok {
		return nil, battleship.Cell{}, fmt.Errorf("hint: %w", ai.ErrSamplingExhausted)
	}
	return heat, best, nil
}

// GetGame returns a game by ID, preferring live in-memory state.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	s.mu.Lock()
	lg, ok := s.games[gameID]
	s.mu.Unlock()
	if ok {
		lg.mu.Lock()
		defer lg.mu.Unlock()
		g := *lg.game
		return &g, nil
	}

	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// ListGames returns the user's recent games.
func (s *GameService) ListGames(ctx context.Context, userID string, limit int) ([]model.Game, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.gameRepo.ListByUser(ctx, userID, limit)
}

// ListShots returns a game's shot history in firing order.
func (s *GameService) ListShots(ctx context.Context, gameID string) ([]model.Shot, error) {
	return s.gameRepo.ListShots(ctx, gameID)
}

// Stats returns the per-difficulty performance summary.
func (s *GameService) Stats(ctx context.Context) ([]model.DifficultySummary, error) {
	return s.statsRepo.SummaryByDifficulty(ctx)
}

// RecentGames returns the most recently finished game summaries.
func (s *GameService) RecentGames(ctx context.Context, limit int) ([]model.GameStats, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.statsRepo.RecentGames(ctx, limit)
}

// Shutdown cancels all in-flight AI turns.
func (s *GameService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, lg := range s.games {
		if lg.cancel != nil {
			lg.cancel()
		}
	}
}

func (s *GameService) live(gameID string) (*liveGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lg, ok := s.games[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	return lg, nil
}

// endGame is called with lg.mu held.
func (s *GameService) endGame(ctx context.Context, lg *liveGame, winner string) {
	// On an AI win the caller is the AI goroutine, whose context is the
	// one lg.cancel tears down. Detach before cancelling so the final
	// writes still go through.
	ctx = context.WithoutCancel(ctx)

	gameID := lg.game.ID
	lg.game.Status = "finished"
	lg.game.Winner = winner
	if lg.cancel != nil {
		lg.cancel()
	}

	if err := s.gameRepo.SetFinished(ctx, gameID, winner); err != nil {
		log.Error().Err(err).Str("gameId", gameID).Msg("Failed to persist game result")
	}

	stats := &model.GameStats{
		GameID:            gameID,
		Difficulty:        lg.game.Difficulty,
		PlayerWon:         winner == "player",
		TotalTurns:        lg.seq,
		PlayerShots:       lg.playerShots,
		PlayerHits:        lg.playerHits,
		AIShots:           lg.aiShots,
		AIHits:            lg.aiHits,
		ShipsSunkByPlayer: lg.sunkByPlayer,
		ShipsSunkByAI:     lg.sunkByAI,
		DurationSeconds:   time.Since(lg.startedAt).Seconds(),
	}
	if err := s.statsRepo.Insert(ctx, stats); err != nil {
		log.Error().Err(err).Str("gameId", gameID).Msg("Failed to record game stats")
	}

	// Learn from how the player hid their fleet.
	if s.opponentMdl != nil && lg.playerBoard != nil {
		s.opponentMdl.ObserveFleet(lg.playerBoard.Ships)
		if s.modelStore != nil {
			if err := s.opponentMdl.Flush(ctx, s.modelStore); err != nil {
				log.Warn().Err(err).Msg("Failed to flush placement model")
			}
		}
	}

	if err := s.cache.DeleteGameData(ctx, gameID); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("Failed to clear live game state")
	}

	s.broadcaster.BroadcastGameEvent(gameID, "game_ended", map[string]any{
		"winner": winner,
		"turns":  lg.seq,
	})
	log.Info().Str("gameId", gameID).Str("winner", winner).Int("turns", lg.seq).Msg("Game finished")

	s.mu.Lock()
	delete(s.games, gameID)
	s.mu.Unlock()
}

// persistShot is called with lg.mu held.
func (s *GameService) persistShot(ctx context.Context, lg *liveGame, byPlayer bool, cell battleship.Cell, outcome battleship.Outcome) {
	shot := &model.Shot{
		GameID:     lg.game.ID,
		Seq:        lg.seq,
		ByPlayer:   byPlayer,
		Row:        cell.Row,
		Col:        cell.Col,
		Result:     outcome.Result.String(),
		ShipLength: outcome.ShipLength,
	}
	if err := s.gameRepo.AppendShot(ctx, shot); err != nil {
		log.Error().Err(err).Str("gameId", lg.game.ID).Int("seq", lg.seq).Msg("Failed to persist shot")
	}
}

// liveSnapshot is the JSON shape cached in Redis for reconnecting clients.
type liveSnapshot struct {
	Turn         string `json:"turn"`
	Seq          int    `json:"seq"`
	PlayerShots  int    `json:"player_shots"`
	PlayerHits   int    `json:"player_hits"`
	AIShots      int    `json:"ai_shots"`
	AIHits       int    `json:"ai_hits"`
	SunkByPlayer int    `json:"sunk_by_player"`
	SunkByAI     int    `json:"sunk_by_ai"`
}

// snapshot is called with lg.mu held.
func (s *GameService) snapshot(ctx context.Context, lg *liveGame) {
	snap := liveSnapshot{
		Turn:         lg.turn,
		Seq:          lg.seq,
		PlayerShots:  lg.playerShots,
		PlayerHits:   lg.playerHits,
		AIShots:      lg.aiShots,
		AIHits:       lg.aiHits,
		SunkByPlayer: lg.sunkByPlayer,
		SunkByAI:     lg.sunkByAI,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := s.cache.SetGameState(ctx, lg.game.ID, data, liveGameTTL); err != nil {
		log.Warn().Err(err).Str("gameId", lg.game.ID).Msg("Failed to cache live game state")
	}
}

func fleetMatches(got, want []int) bool {
	if len(got) != len(want) {
		return false
	}
	counts := make(map[int]int, len(want))
	for _, l := range want {
		counts[l]++
	}
	for _, l := range got {
		counts[l]--
		if counts[l] < 0 {
			return false
		}
	}
	return true
}
