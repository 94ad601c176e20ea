package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nexium-server/internal/combat"
	"nexium-server/internal/economy"
	"nexium-server/internal/events"
	"nexium-server/internal/exploration"
	"nexium-server/internal/game"
	"nexium-server/internal/inventory"
	"nexium-server/internal/market"
	"nexium-server/internal/middleware"
	"nexium-server/internal/player"
	"nexium-server/internal/rng"
	"nexium-server/internal/server"
	"nexium-server/internal/shared/config"
	"nexium-server/internal/shared/database"
	"nexium-server/internal/shared/logger"
	"nexium-server/internal/shared/redis"
	"nexium-server/internal/ship"
	"nexium-server/internal/universe"
)

func main() {
	if err := config.Init(); err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	logger.Init()
	log := slog.With("component", "main")

	db, err := database.Connect()
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}()

	if err := db.RunMigrations(); err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.Connect()
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis client", "error", err)
		}
	}()

	publisher := events.NewNopPublisher()
	if redisClient != nil {
		publisher = events.NewRedisPublisher(redisClient, config.GlobalConfig.Redis.Channel)
	}

	gameCfg := config.GlobalConfig.Game
	seed := gameCfg.Seed
	if seed == 0 {
		generated, err := rng.NewSeed()
		if err != nil {
			log.Error("Failed to generate universe seed", "error", err)
			os.Exit(1)
		}
		seed = generated
	}
	src := rng.New(seed)
	log.Info("Universe random source initialized", "seeded_from_config", gameCfg.Seed != 0)

	playerRepo := player.NewRepository(db.DB)
	shipRepo := ship.NewRepository(db.DB)
	inventoryRepo := inventory.NewRepository(db.DB)
	sectorRepo := universe.NewRepository(db.DB)
	marketRepo := market.NewRepository(db)
	battleRepo := combat.NewRepository(db.DB)

	explorer := exploration.NewEngine(sectorRepo)
	econ := economy.NewEngine(gameCfg.ListingTTL)

	gameService := game.NewService(
		playerRepo, shipRepo, inventoryRepo, marketRepo, battleRepo,
		explorer, econ, publisher, src, gameCfg,
	)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go gameService.SweepExpiredListings(sweepCtx)

	routes := server.NewRoutes(db, sectorRepo, gameService)
	mux := routes.Setup()

	rateLimiter := middleware.NewRateLimiter(config.GlobalConfig.RateLimit)
	corsMiddleware := middleware.NewCORS()
	handler := corsMiddleware.Middleware(rateLimiter.Middleware(mux))

	serverCfg := config.GlobalConfig.Server
	srv := &http.Server{
		Addr:         ":" + serverCfg.Port,
		Handler:      handler,
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
		IdleTimeout:  serverCfg.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", "port", serverCfg.Port, "environment", serverCfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped")
}
