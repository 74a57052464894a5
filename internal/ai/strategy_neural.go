package ai

import (
	"context"
	"fmt"
	"log"

	"broadside/internal/ai/neural"
	"broadside/pkg/battleship"
)

// newNeuralOrFallback attempts to create the Master tier's neural
// strategy. If the model path is unset or the model fails to load, it
// falls back to the Expert strategy unchanged. The fallback is normal
// behavior, never surfaced to the caller as an error.
func newNeuralOrFallback(cfg Config) Strategy {
	expert := &MCTSStrategy{Simulations: cfg.ExpertSimulations}
	if cfg.ModelPath == "" {
		log.Printf("ai: master tier requested but no policy model configured; falling back to expert")
		return expert
	}
	policy, err := neural.LoadPolicy(cfg.ModelPath)
	if err != nil {
		log.Printf("ai: master tier policy load failed: %v; falling back to expert", err)
		return expert
	}
	return &NeuralStrategy{cfg: cfg, policy: policy, fallback: expert}
}

// NeuralStrategy scores every cell with the ONNX policy network and
// fires at the highest-scoring valid target. Inference failures at
// runtime degrade to the Expert fallback for that turn.
type NeuralStrategy struct {
	cfg      Config
	policy   *neural.Policy
	fallback Strategy
}

func (s *NeuralStrategy) Name() string { return "master" }

func (s *NeuralStrategy) SelectTarget(ctx context.Context, k *Knowledge) (battleship.Cell, error) {
	targets := k.ValidTargets()
	if len(targets) == 0 {
		return battleship.Cell{}, fmt.Errorf("no valid targets remain")
	}

	scores, err := s.policy.Scores(s.encode(k), k.Size())
	if err != nil {
		log.Printf("ai: master tier inference failed: %v; using expert for this turn", err)
		return s.fallback.SelectTarget(ctx, k)
	}

	best := targets[0]
	bestScore := scores[best.Row*k.Size()+best.Col]
	for _, c := range targets[1:] {
		if sc := scores[c.Row*k.Size()+c.Col]; sc > bestScore {
			best, bestScore = c, sc
		}
	}
	return best, nil
}

// encode prepares the network input: hit and miss planes from the
// tracker plus an unbiased heatmap as a prior; a sampler failure just
// leaves the heat plane empty.
func (s *NeuralStrategy) encode(k *Knowledge) []float32 {
	size := k.Size()
	var hits, misses []battleship.Cell
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			cell := battleship.Cell{Row: r, Col: c}
			switch k.StatusAt(cell) {
			case StatusHit, StatusSunkPart:
				hits = append(hits, cell)
			case StatusMiss:
				misses = append(misses, cell)
			}
		}
	}

	var heat [][]float64
	if placements, err := SamplePlacements(k, s.cfg.HeatmapSamples, nil); err == nil {
		heat = BuildHeatmap(k, placements).Prob
	}
	return neural.Encode(size, hits, misses, heat)
}
