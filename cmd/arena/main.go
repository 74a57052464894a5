package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"broadside/internal/ai"
	redisrepo "broadside/internal/repository/redis"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var (
		matchup   string
		numGames  int
		workers   int
		maxTurns  int
		seed      int64
		redisURL  string
		modelPath string
		dryRun    bool
		jsonOut   bool
	)

	flag.StringVar(&matchup, "matchup", "medium-vs-easy", "Tier-vs-tier matchup (e.g. nightmare-vs-hard)")
	flag.IntVar(&numGames, "n", 1, "Number of games to run")
	flag.IntVar(&workers, "workers", 1, "Concurrency (parallel games)")
	flag.IntVar(&maxTurns, "max-turns", 0, "Max turns per side before draw (0 = grid default)")
	flag.Int64Var(&seed, "seed", 0, "Base seed (0 = random)")
	flag.StringVar(&redisURL, "redis", "", "Redis URL for the placement model (or REDIS_URL env)")
	flag.StringVar(&modelPath, "model", "", "ONNX policy path for the master tier")
	flag.BoolVar(&dryRun, "dry-run", false, "Skip placement model reads and writes")
	flag.BoolVar(&jsonOut, "json", false, "Output results as JSON")

	flag.Parse()

	diffA, diffB, err := parseMatchup(matchup)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid matchup")
	}

	aiCfg := ai.DefaultConfig()
	aiCfg.ModelPath = modelPath

	// Seeded games share the package RNG, so they must run one at a time
	// to stay reproducible.
	if seed != 0 && workers > 1 {
		log.Warn().Msg("Seeded runs are sequential, ignoring -workers")
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	// The shared placement model biases the hard tier and learns from
	// every completed game, mirroring what the server does.
	var model *ai.Model
	var store *redisrepo.PlacementStore
	if !dryRun {
		if redisURL == "" {
			redisURL = os.Getenv("REDIS_URL")
		}
		if redisURL == "" {
			redisURL = "redis://localhost:6379/0"
		}
		client, err := redisrepo.NewClient(redisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer client.Close()
		store = redisrepo.NewPlacementStore(client)
		model = ai.NewModel(aiCfg.GridSize)
		if err := model.LoadFrom(ctx, store); err != nil {
			log.Warn().Err(err).Msg("Failed to load placement model, starting empty")
		}
	}

	results := make([]*ai.ArenaResult, numGames)
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	errCount := 0

	for i := 0; i < numGames; i++ {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			gameSeed := seed
			if seed != 0 {
				gameSeed = seed + int64(idx)
			}

			cfg := ai.ArenaConfig{
				DifficultyA: diffA,
				DifficultyB: diffB,
				AI:          aiCfg,
				Seed:        gameSeed,
				MaxTurns:    maxTurns,
			}

			result, err := ai.RunGame(ctx, cfg, model)
			if err != nil {
				log.Error().Err(err).Int("game", idx+1).Msg("Game failed")
				mu.Lock()
				errCount++
				mu.Unlock()
				return
			}

			mu.Lock()
			results[idx] = result
			mu.Unlock()

			log.Info().Int("game", idx+1).Str("winner", result.Winner).
				Int("turns", result.Turns).Dur("took", result.Duration).Msg("Game completed")
		}(i)
	}

	wg.Wait()

	if model != nil && store != nil {
		if err := model.Flush(context.Background(), store); err != nil {
			log.Warn().Err(err).Msg("Failed to flush placement model")
		}
	}

	if jsonOut {
		printJSON(results, numGames, errCount)
	} else {
		printSummary(results, diffA, diffB, errCount)
	}
}

// parseMatchup splits "hard-vs-easy" style strings; a bare tier name
// plays against itself.
func parseMatchup(s string) (ai.Difficulty, ai.Difficulty, error) {
	parts := strings.SplitN(s, "-vs-", 2)
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}
	a, err := ai.ParseDifficulty(parts[0])
	if err != nil {
		return "", "", err
	}
	b, err := ai.ParseDifficulty(parts[1])
	if err != nil {
		return "", "", err
	}
	return a, b, nil
}

func printSummary(results []*ai.ArenaResult, diffA, diffB ai.Difficulty, errCount int) {
	type stats struct {
		wins, draws, shots, hits, games int
	}
	var a, b stats

	completed := 0
	totalTurns := 0
	for _, r := range results {
		if r == nil {
			continue
		}
		completed++
		totalTurns += r.Turns
		switch r.Winner {
		case "a":
			a.wins++
		case "b":
			b.wins++
		default:
			a.draws++
			b.draws++
		}
		a.games++
		a.shots += r.A.Shots
		a.hits += r.A.Hits
		b.games++
		b.shots += r.B.Shots
		b.hits += r.B.Hits
	}

	fmt.Printf("\nResults (%d games):\n", completed)
	if errCount > 0 {
		fmt.Printf("  (%d games failed)\n", errCount)
	}
	for _, side := range []struct {
		label string
		diff  ai.Difficulty
		s     stats
	}{
		{"A", diffA, a},
		{"B", diffB, b},
	} {
		acc := 0.0
		if side.s.shots > 0 {
			acc = float64(side.s.hits) / float64(side.s.shots) * 100
		}
		fmt.Printf("  %s (%-9s):  %d wins, %d draws  -- accuracy: %.1f%%\n",
			side.label, side.diff, side.s.wins, side.s.draws, acc)
	}
	if completed > 0 {
		fmt.Printf("  avg turns per game: %.1f\n", float64(totalTurns)/float64(completed))
	}
}

func printJSON(results []*ai.ArenaResult, total, errCount int) {
	out := struct {
		Total   int               `json:"total"`
		Errors  int               `json:"errors"`
		Results []*ai.ArenaResult `json:"results"`
	}{
		Total:   total,
		Errors:  errCount,
		Results: results,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(out)
}
