package ai

import (
	"context"
	"fmt"
	"time"

	"broadside/pkg/battleship"
)

// Strategy selects the next attack coordinate for an automated player.
type Strategy interface {
	Name() string
	SelectTarget(ctx context.Context, k *Knowledge) (battleship.Cell, error)
}

// Difficulty selects one of the six targeting tiers. Fixed for the
// duration of one game.
type Difficulty string

const (
	Easy      Difficulty = "easy"
	Medium    Difficulty = "medium"
	Hard      Difficulty = "hard"
	Expert    Difficulty = "expert"
	Master    Difficulty = "master"
	Nightmare Difficulty = "nightmare"
)

// Difficulties lists all tiers in ascending strength.
func Difficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard, Expert, Master, Nightmare}
}

// ParseDifficulty validates a difficulty string.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	for _, known := range Difficulties() {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Config supplies everything the engine consumes. The engine hides no
// defaults of its own; callers start from DefaultConfig and override.
type Config struct {
	GridSize int
	Fleet    []int

	// HeatmapSamples is the placement batch size for heatmap tiers.
	HeatmapSamples int

	// Search budgets per tier.
	ExpertSimulations    int
	NightmareSimulations int
	NightmareTimeLimit   time.Duration

	// ModelPath points at the Master tier's ONNX policy file. Empty or
	// missing means the Master tier falls back to Expert.
	ModelPath string
}

// DefaultConfig returns the classic game setup.
func DefaultConfig() Config {
	return Config{
		GridSize:             battleship.DefaultGridSize,
		Fleet:                append([]int(nil), battleship.DefaultFleet...),
		HeatmapSamples:       64,
		ExpertSimulations:    200,
		NightmareSimulations: 500,
		NightmareTimeLimit:   5 * time.Second,
	}
}

// StrategyForDifficulty returns the strategy for a difficulty tier.
// model may be nil; the Hard tier then samples without historical bias.
func StrategyForDifficulty(d Difficulty, cfg Config, model *Model) Strategy {
	switch d {
	case Easy:
		return &RandomStrategy{}
	case Hard:
		return &AdaptiveStrategy{cfg: cfg, model: model}
	case Expert:
		return &MCTSStrategy{Simulations: cfg.ExpertSimulations}
	case Master:
		return newNeuralOrFallback(cfg)
	case Nightmare:
		return &MCTSStrategy{Simulations: cfg.NightmareSimulations, TimeLimit: cfg.NightmareTimeLimit}
	default:
		return &HuntTargetStrategy{}
	}
}
