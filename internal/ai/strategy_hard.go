package ai

import (
	"context"
	"fmt"

	"broadside/pkg/battleship"
)

// AdaptiveStrategy keeps the hunt/target core of the medium tier but
// replaces checkerboard scanning with a probability heatmap built from
// placements sampled under the historical opponent placement model.
type AdaptiveStrategy struct {
	cfg   Config
	model *Model
}

func (s *AdaptiveStrategy) Name() string { return "hard" }

func (s *AdaptiveStrategy) SelectTarget(_ context.Context, k *Knowledge) (battleship.Cell, error) {
	if hits := k.UnresolvedHits(); len(hits) > 0 {
		if c, ok := targetShot(k, hits); ok {
			return c, nil
		}
	}

	placements, err := SamplePlacements(k, s.cfg.HeatmapSamples, s.model)
	if err != nil {
		return battleship.Cell{}, err
	}
	heat := BuildHeatmap(k, placements)
	if c, ok := heat.BestCell(k); ok {
		return c, nil
	}
	return battleship.Cell{}, fmt.Errorf("no valid targets remain")
}
