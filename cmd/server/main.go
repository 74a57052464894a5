package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"broadside/internal/ai"
	"broadside/internal/auth"
	"broadside/internal/config"
	"broadside/internal/handler"
	"broadside/internal/logger"
	"broadside/internal/middleware"
	"broadside/internal/repository/postgres"
	redisrepo "broadside/internal/repository/redis"
	"broadside/internal/service"
)

func main() {
	logger.Init()
	cfg := config.Load()
	log.Info().Str("databaseURL", cfg.DatabaseURL).Msg("Config loaded")

	// Database
	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()

	// Redis
	redisClient, err := redisrepo.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()

	// Repos
	userRepo := postgres.NewUserRepo(db)
	gameRepo := postgres.NewGameRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	// Opponent engine
	aiCfg := ai.DefaultConfig()
	aiCfg.HeatmapSamples = cfg.HeatmapSamples
	aiCfg.ExpertSimulations = cfg.ExpertSimulations
	aiCfg.NightmareSimulations = cfg.NightmareSimulations
	aiCfg.NightmareTimeLimit = cfg.NightmareTimeLimit
	aiCfg.ModelPath = cfg.AIModelPath

	placementStore := redisrepo.NewPlacementStore(redisClient)
	opponentMdl := ai.NewModel(aiCfg.GridSize)
	if err := opponentMdl.LoadFrom(context.Background(), placementStore); err != nil {
		log.Warn().Err(err).Msg("Failed to load placement model, starting empty")
	} else {
		log.Info().Int64("observations", opponentMdl.TotalObservations()).Msg("Placement model loaded")
	}

	// Auth
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)

	// WebSocket hub
	wsHub := handler.NewHub()

	// Services
	gameSvc := service.NewGameService(userRepo, gameRepo, statsRepo, redisClient, aiCfg, opponentMdl, placementStore, wsHub)

	// Handlers
	authHandler := handler.NewAuthHandler(jwtMgr, userRepo)
	userHandler := handler.NewUserHandler(userRepo)
	gameHandler := handler.NewGameHandler(gameSvc)
	wsHandler := handler.NewWSHandler(wsHub, jwtMgr)

	// Router
	mux := http.NewServeMux()
	authMw := auth.Middleware(jwtMgr)

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth (public)
	mux.HandleFunc("POST /auth/guest", authHandler.GuestLogin)
	mux.HandleFunc("POST /auth/refresh", authHandler.RefreshToken)

	// Protected API routes
	api := http.NewServeMux()
	api.HandleFunc("GET /users/me", userHandler.GetMe)
	api.HandleFunc("PATCH /users/me", userHandler.UpdateMe)
	api.HandleFunc("GET /users/{id}", userHandler.GetUser)
	api.HandleFunc("POST /games", gameHandler.CreateGame)
	api.HandleFunc("GET /games", gameHandler.ListGames)
	api.HandleFunc("GET /games/{id}", gameHandler.GetGame)
	api.HandleFunc("POST /games/{id}/fleet", gameHandler.PlaceFleet)
	api.HandleFunc("POST /games/{id}/shots", gameHandler.FireShot)
	api.HandleFunc("GET /games/{id}/shots", gameHandler.ListShots)
	api.HandleFunc("GET /games/{id}/hint", gameHandler.Hint)
	api.HandleFunc("GET /stats", gameHandler.Stats)
	api.HandleFunc("GET /stats/recent", gameHandler.RecentGames)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", authMw(api)))

	// WebSocket (auth via query param, not middleware)
	mux.HandleFunc("GET /api/v1/ws", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Logger, middleware.CORS("*"), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	gameSvc.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
