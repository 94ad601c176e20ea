package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"nexium-server/internal/auth"
	"nexium-server/internal/game"
	"nexium-server/internal/middleware"
	"nexium-server/internal/shared/errors"
	"nexium-server/internal/shared/response"
)

// ActionsHandler exposes the session player's game actions.
type ActionsHandler struct {
	service *game.Service
}

func NewActionsHandler(service *game.Service) *ActionsHandler {
	return &ActionsHandler{service: service}
}

func (h *ActionsHandler) Explore(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "explore")

	session, ok := requirePost(w, r, logger)
	if !ok {
		return
	}

	report, err := h.service.Explore(r.Context(), session.PlayerID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, report)
}

func (h *ActionsHandler) Scan(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "scan")

	session, ok := requirePost(w, r, logger)
	if !ok {
		return
	}

	report, err := h.service.Scan(r.Context(), session.PlayerID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, report)
}

type jumpRequest struct {
	Coordinate string `json:"coordinate"`
}

func (h *ActionsHandler) Jump(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "jump")

	session, ok := requirePost(w, r, logger)
	if !ok {
		return
	}

	var req jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	report, err := h.service.Jump(r.Context(), session.PlayerID, req.Coordinate)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, report)
}

type battleRequest struct {
	DefenderID int64 `json:"defender_id"`
}

func (h *ActionsHandler) Battle(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "battle")

	session, ok := requirePost(w, r, logger)
	if !ok {
		return
	}

	var req battleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	report, err := h.service.Battle(r.Context(), session.PlayerID, req.DefenderID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, report)
}

func (h *ActionsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "daily")

	session, ok := requirePost(w, r, logger)
	if !ok {
		return
	}

	report, err := h.service.ClaimDaily(r.Context(), session.PlayerID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, report)
}

// Profile returns the session player's assembled state.
func (h *ActionsHandler) Profile(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "profile")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	session := middleware.SessionFromContext(r)
	if session == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	profile, err := h.service.Profile(r.Context(), session.PlayerID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, profile)
}

func requirePost(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*auth.Claims, bool) {
	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return nil, false
	}

	session := middleware.SessionFromContext(r)
	if session == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return nil, false
	}

	return session, true
}
