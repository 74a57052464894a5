package ai

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"broadside/pkg/battleship"
)

// ArenaConfig configures a single AI-vs-AI game.
type ArenaConfig struct {
	DifficultyA Difficulty
	DifficultyB Difficulty
	AI          Config
	Seed        int64 // 0 = random
	MaxTurns    int   // cap before declaring a draw; 0 = grid-size based default
}

// ArenaSide holds one player's totals for a finished arena game.
type ArenaSide struct {
	Difficulty Difficulty
	Shots      int
	Hits       int
	ShipsSunk  int
}

// ArenaResult describes the outcome of a completed arena game.
type ArenaResult struct {
	Winner   string // "a", "b" or "" for a draw
	Turns    int
	A, B     ArenaSide
	Duration time.Duration
}

// RunGame plays one full game between two AI tiers. Both fleets are
// placed uniformly at random. model biases the Hard tier's sampling and
// learns both final placements when the game completes; pass nil to
// play without history.
func RunGame(ctx context.Context, cfg ArenaConfig, model *Model) (*ArenaResult, error) {
	if cfg.MaxTurns == 0 {
		cfg.MaxTurns = cfg.AI.GridSize * cfg.AI.GridSize
	}

	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
		SeedRng(cfg.Seed)
		defer ResetRng()
	}

	boardA, err := battleship.RandomBoard(cfg.AI.GridSize, cfg.AI.Fleet, rng)
	if err != nil {
		return nil, fmt.Errorf("place fleet A: %w", err)
	}
	boardB, err := battleship.RandomBoard(cfg.AI.GridSize, cfg.AI.Fleet, rng)
	if err != nil {
		return nil, fmt.Errorf("place fleet B: %w", err)
	}

	stratA := StrategyForDifficulty(cfg.DifficultyA, cfg.AI, model)
	stratB := StrategyForDifficulty(cfg.DifficultyB, cfg.AI, model)
	knowA := NewKnowledge(cfg.AI.GridSize, cfg.AI.Fleet) // A's view of B's board
	knowB := NewKnowledge(cfg.AI.GridSize, cfg.AI.Fleet)

	result := &ArenaResult{
		A: ArenaSide{Difficulty: cfg.DifficultyA},
		B: ArenaSide{Difficulty: cfg.DifficultyB},
	}
	start := time.Now()

	for result.Turns = 1; result.Turns <= cfg.MaxTurns; result.Turns++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if done, err := playShot(ctx, stratA, knowA, boardB, &result.A); err != nil {
			return nil, fmt.Errorf("player A turn %d: %w", result.Turns, err)
		} else if done {
			result.Winner = "a"
			break
		}

		if done, err := playShot(ctx, stratB, knowB, boardA, &result.B); err != nil {
			return nil, fmt.Errorf("player B turn %d: %w", result.Turns, err)
		} else if done {
			result.Winner = "b"
			break
		}
	}
	result.Duration = time.Since(start)

	if model != nil {
		model.ObserveFleet(boardA.Ships)
		model.ObserveFleet(boardB.Ships)
	}

	log.Debug().
		Str("a", string(cfg.DifficultyA)).
		Str("b", string(cfg.DifficultyB)).
		Str("winner", result.Winner).
		Int("turns", result.Turns).
		Dur("duration", result.Duration).
		Msg("Arena game finished")
	return result, nil
}

// playShot runs one attacker turn: pick a target, resolve it against
// the defender's board, and feed the outcome back into the tracker.
// It reports whether the defender's fleet is now fully sunk.
func playShot(ctx context.Context, strat Strategy, know *Knowledge, defender *battleship.Board, side *ArenaSide) (bool, error) {
	cell, err := strat.SelectTarget(ctx, know)
	if err != nil {
		return false, err
	}
	outcome, err := defender.ApplyShot(cell)
	if err != nil {
		return false, err
	}
	if err := know.RecordResult(cell, outcome); err != nil {
		return false, err
	}

	side.Shots++
	if outcome.Result != battleship.Miss {
		side.Hits++
	}
	if outcome.Result == battleship.Sunk {
		side.ShipsSunk++
	}
	return defender.AllSunk(), nil
}
