package ai

import (
	"testing"
	"time"
)

func TestParseDifficulty(t *testing.T) {
	for _, d := range Difficulties() {
		got, err := ParseDifficulty(string(d))
		if err != nil {
			t.Errorf("ParseDifficulty(%q) failed: %v", d, err)
		}
		if got != d {
			t.Errorf("ParseDifficulty(%q) = %q", d, got)
		}
	}
	if _, err := ParseDifficulty("brutal"); err == nil {
		t.Error("expected error for unknown difficulty")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.GridSize != 10 {
		t.Errorf("expected grid size 10, got %d", cfg.GridSize)
	}
	if len(cfg.Fleet) != 5 {
		t.Errorf("expected 5 ships, got %d", len(cfg.Fleet))
	}
	if cfg.HeatmapSamples <= 0 || cfg.ExpertSimulations <= 0 || cfg.NightmareSimulations <= 0 {
		t.Error("budgets must be positive")
	}
	if cfg.NightmareTimeLimit <= 0 {
		t.Errorf("expected positive nightmare time limit, got %v", cfg.NightmareTimeLimit)
	}
}

func TestStrategyForDifficultyNames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NightmareTimeLimit = time.Second
	model := NewModel(cfg.GridSize)

	for _, d := range Difficulties() {
		s := StrategyForDifficulty(d, cfg, model)
		if s == nil {
			t.Fatalf("%s: nil strategy", d)
		}
		want := string(d)
		if d == Master {
			// No policy model configured, so the master tier falls back
			// to the expert search.
			want = string(Expert)
		}
		if s.Name() != want {
			t.Errorf("%s: strategy name %q, want %q", d, s.Name(), want)
		}
	}
}

func TestStrategyForDifficultyTiers(t *testing.T) {
	cfg := DefaultConfig()

	if _, ok := StrategyForDifficulty(Easy, cfg, nil).(*RandomStrategy); !ok {
		t.Error("easy tier is not the random strategy")
	}
	if _, ok := StrategyForDifficulty(Medium, cfg, nil).(*HuntTargetStrategy); !ok {
		t.Error("medium tier is not the hunt/target strategy")
	}
	if _, ok := StrategyForDifficulty(Hard, cfg, nil).(*AdaptiveStrategy); !ok {
		t.Error("hard tier is not the adaptive strategy")
	}

	expert, ok := StrategyForDifficulty(Expert, cfg, nil).(*MCTSStrategy)
	if !ok {
		t.Fatal("expert tier is not the search strategy")
	}
	if expert.Simulations != cfg.ExpertSimulations || expert.TimeLimit != 0 {
		t.Errorf("expert budget = (%d, %v), want (%d, 0)", expert.Simulations, expert.TimeLimit, cfg.ExpertSimulations)
	}

	nightmare, ok := StrategyForDifficulty(Nightmare, cfg, nil).(*MCTSStrategy)
	if !ok {
		t.Fatal("nightmare tier is not the search strategy")
	}
	if nightmare.Simulations != cfg.NightmareSimulations || nightmare.TimeLimit != cfg.NightmareTimeLimit {
		t.Errorf("nightmare budget = (%d, %v), want (%d, %v)",
			nightmare.Simulations, nightmare.TimeLimit, cfg.NightmareSimulations, cfg.NightmareTimeLimit)
	}
}
