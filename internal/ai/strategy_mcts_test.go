package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"broadside/pkg/battleship"
)

func TestMCTSStrategyName(t *testing.T) {
	if got := (&MCTSStrategy{Simulations: 200}).Name(); got != "expert" {
		t.Errorf("expected 'expert' without a time limit, got %s", got)
	}
	if got := (&MCTSStrategy{Simulations: 500, TimeLimit: time.Second}).Name(); got != "nightmare" {
		t.Errorf("expected 'nightmare' with a time limit, got %s", got)
	}
}

func TestMCTSPicksValidCell(t *testing.T) {
	SeedRng(21)
	defer ResetRng()

	s := &MCTSStrategy{Simulations: 50}
	k := NewKnowledge(10, battleship.DefaultFleet)

	c, err := s.SelectTarget(context.Background(), k)
	if err != nil {
		t.Fatalf("SelectTarget failed: %v", err)
	}
	if !k.IsValidTarget(c) {
		t.Errorf("selected invalid cell %s", c)
	}
}

func TestMCTSDeterministicWithSeed(t *testing.T) {
	// The budget deliberately exceeds the number of open cells so that
	// selection descends into expanded children, where tie handling has
	// to stay deterministic.
	run := func(seed int64) battleship.Cell {
		SeedRng(seed)
		defer ResetRng()
		s := &MCTSStrategy{Simulations: 300}
		k := NewKnowledge(5, []int{3, 2})
		if err := k.RecordResult(battleship.Cell{Row: 2, Col: 2}, battleship.Outcome{Result: battleship.Hit}); err != nil {
			t.Fatalf("RecordResult failed: %v", err)
		}
		c, err := s.SelectTarget(context.Background(), k)
		if err != nil {
			t.Fatalf("SelectTarget failed: %v", err)
		}
		return c
	}

	for _, seed := range []int64{1, 2, 55} {
		a := run(seed)
		b := run(seed)
		if a != b {
			t.Errorf("seed %d: identical seeds picked different cells: %s vs %s", seed, a, b)
		}
	}
}

func TestMCTSNoTargets(t *testing.T) {
	k := NewKnowledge(1, []int{1})
	if err := k.RecordResult(battleship.Cell{Row: 0, Col: 0}, battleship.Outcome{Result: battleship.Miss}); err != nil {
		t.Fatalf("RecordResult failed: %v", err)
	}
	s := &MCTSStrategy{Simulations: 10}
	if _, err := s.SelectTarget(context.Background(), k); err == nil {
		t.Error("expected error with no valid targets")
	}
}

func TestMCTSPropagatesSamplingError(t *testing.T) {
	SeedRng(22)
	defer ResetRng()

	k := NewKnowledge(10, []int{3})
	if err := k.RecordResult(battleship.Cell{Row: 0, Col: 0}, battleship.Outcome{Result: battleship.Hit}); err != nil {
		t.Fatalf("RecordResult failed: %v", err)
	}
	for _, c := range []battleship.Cell{{Row: 0, Col: 1}, {Row: 1, Col: 0}} {
		if err := k.RecordResult(c, battleship.Outcome{Result: battleship.Miss}); err != nil {
			t.Fatalf("RecordResult failed: %v", err)
		}
	}

	s := &MCTSStrategy{Simulations: 10}
	_, err := s.SelectTarget(context.Background(), k)
	if !errors.Is(err, ErrSamplingExhausted) {
		t.Errorf("expected ErrSamplingExhausted, got %v", err)
	}
}

func TestMCTSExpiredTimeLimitStillAnswers(t *testing.T) {
	s := &MCTSStrategy{Simulations: 1000, TimeLimit: time.Nanosecond}
	k := NewKnowledge(10, battleship.DefaultFleet)

	start := time.Now()
	c, err := s.SelectTarget(context.Background(), k)
	if err != nil {
		t.Fatalf("SelectTarget failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("budget of 1ns took %v", elapsed)
	}
	if !k.IsValidTarget(c) {
		t.Errorf("selected invalid cell %s", c)
	}
}

func TestMCTSTimeBudgetOverrunBounded(t *testing.T) {
	SeedRng(24)
	defer ResetRng()

	k := NewKnowledge(10, battleship.DefaultFleet)
	ctx := context.Background()

	// Price one simulation so the overrun bound scales with the machine.
	single := &MCTSStrategy{Simulations: 1}
	start := time.Now()
	if _, err := single.SelectTarget(ctx, k); err != nil {
		t.Fatalf("SelectTarget failed: %v", err)
	}
	simCost := time.Since(start)

	budget := 50 * time.Millisecond
	s := &MCTSStrategy{Simulations: 1 << 20, TimeLimit: budget}
	start = time.Now()
	if _, err := s.SelectTarget(ctx, k); err != nil {
		t.Fatalf("SelectTarget failed: %v", err)
	}
	elapsed := time.Since(start)

	// The clock is checked between simulations, so the overrun is at
	// most one simulation; the slack covers scheduling jitter.
	maxOverrun := 20*simCost + 50*time.Millisecond
	if elapsed > budget+maxOverrun {
		t.Errorf("budget %v overran to %v (one simulation costs about %v)", budget, elapsed, simCost)
	}
}

func TestMCTSCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &MCTSStrategy{Simulations: 1000}
	k := NewKnowledge(10, battleship.DefaultFleet)
	c, err := s.SelectTarget(ctx, k)
	if err != nil {
		t.Fatalf("SelectTarget failed: %v", err)
	}
	if !k.IsValidTarget(c) {
		t.Errorf("selected invalid cell %s", c)
	}
}

func TestMCTSSinksFleet(t *testing.T) {
	SeedRng(23)
	defer ResetRng()

	board, err := battleship.RandomBoard(10, battleship.DefaultFleet, nil)
	if err != nil {
		t.Fatalf("RandomBoard failed: %v", err)
	}
	s := &MCTSStrategy{Simulations: 30}
	k := NewKnowledge(10, battleship.DefaultFleet)
	ctx := context.Background()

	for shots := 0; shots < 100; shots++ {
		c, err := s.SelectTarget(ctx, k)
		if err != nil {
			t.Fatalf("SelectTarget failed after %d shots: %v", shots, err)
		}
		outcome, err := board.ApplyShot(c)
		if err != nil {
			t.Fatalf("ApplyShot %s failed: %v", c, err)
		}
		if err := k.RecordResult(c, outcome); err != nil {
			t.Fatalf("RecordResult failed: %v", err)
		}
		if board.AllSunk() {
			return
		}
	}
	t.Error("fleet not sunk within 100 shots")
}
