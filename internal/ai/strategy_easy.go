package ai

import (
	"context"
	"fmt"

	"broadside/pkg/battleship"
)

// RandomStrategy fires uniformly at random among all valid targets.
type RandomStrategy struct{}

func (RandomStrategy) Name() string { return "easy" }

func (RandomStrategy) SelectTarget(_ context.Context, k *Knowledge) (battleship.Cell, error) {
	targets := k.ValidTargets()
	if len(targets) == 0 {
		return battleship.Cell{}, fmt.Errorf("no valid targets remain")
	}
	return targets[aiIntn(len(targets))], nil
}
