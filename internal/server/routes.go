package server

import (
	"log/slog"
	"net/http"

	"nexium-server/internal/game"
	"nexium-server/internal/middleware"
	serverHandlers "nexium-server/internal/server/handlers"
	"nexium-server/internal/shared/database"
	"nexium-server/internal/universe"
)

type Routes struct {
	db          *database.DB
	sectors     *universe.Repository
	gameService *game.Service
}

func NewRoutes(db *database.DB, sectors *universe.Repository, gameService *game.Service) *Routes {
	return &Routes{
		db:          db,
		sectors:     sectors,
		gameService: gameService,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.db)
	sectorsHandler := serverHandlers.NewSectorsHandler(r.sectors)
	marketHandler := serverHandlers.NewMarketHandler(r.gameService)
	actionsHandler := serverHandlers.NewActionsHandler(r.gameService)

	// Public endpoints
	mux.Handle("/api/server/health", healthHandler)
	mux.Handle("/api/sectors", sectorsHandler)
	mux.HandleFunc("/api/market", marketHandler.Overview)

	// Session-guarded action endpoints
	mux.Handle("/api/players/me", middleware.Session(http.HandlerFunc(actionsHandler.Profile)))
	mux.Handle("/api/actions/explore", middleware.Session(http.HandlerFunc(actionsHandler.Explore)))
	mux.Handle("/api/actions/scan", middleware.Session(http.HandlerFunc(actionsHandler.Scan)))
	mux.Handle("/api/actions/jump", middleware.Session(http.HandlerFunc(actionsHandler.Jump)))
	mux.Handle("/api/actions/battle", middleware.Session(http.HandlerFunc(actionsHandler.Battle)))
	mux.Handle("/api/actions/daily", middleware.Session(http.HandlerFunc(actionsHandler.Daily)))
	mux.Handle("/api/market/sell", middleware.Session(http.HandlerFunc(marketHandler.Sell)))
	mux.Handle("/api/market/buy", middleware.Session(http.HandlerFunc(marketHandler.Buy)))
	mux.Handle("/api/market/cancel", middleware.Session(http.HandlerFunc(marketHandler.Cancel)))

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"/api/server/health", "/api/sectors", "/api/market"},
		"protected_endpoints", []string{
			"/api/players/me", "/api/actions/explore", "/api/actions/scan",
			"/api/actions/jump", "/api/actions/battle", "/api/actions/daily",
			"/api/market/sell", "/api/market/buy", "/api/market/cancel",
		},
	)

	return mux
}
