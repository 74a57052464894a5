package ai

import (
	"context"
	"testing"

	"broadside/pkg/battleship"
)

func BenchmarkSamplePlacements(b *testing.B) {
	SeedRng(1)
	defer ResetRng()

	k := NewKnowledge(10, battleship.DefaultFleet)
	for _, c := range []battleship.Cell{{Row: 3, Col: 3}, {Row: 3, Col: 4}} {
		if err := k.RecordResult(c, battleship.Outcome{Result: battleship.Hit}); err != nil {
			b.Fatalf("RecordResult failed: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := SamplePlacements(k, 64, nil); err != nil {
			b.Fatalf("SamplePlacements failed: %v", err)
		}
	}
}

func BenchmarkMCTSSelectTarget(b *testing.B) {
	SeedRng(2)
	defer ResetRng()

	s := &MCTSStrategy{Simulations: 200}
	k := NewKnowledge(10, battleship.DefaultFleet)
	if err := k.RecordResult(battleship.Cell{Row: 5, Col: 5}, battleship.Outcome{Result: battleship.Hit}); err != nil {
		b.Fatalf("RecordResult failed: %v", err)
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.SelectTarget(ctx, k); err != nil {
			b.Fatalf("SelectTarget failed: %v", err)
		}
	}
}

func BenchmarkArenaGame(b *testing.B) {
	cfg := ArenaConfig{
		DifficultyA: Medium,
		DifficultyB: Medium,
		AI:          DefaultConfig(),
		Seed:        9,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := RunGame(context.Background(), cfg, nil); err != nil {
			b.Fatalf("RunGame failed: %v", err)
		}
	}
}
