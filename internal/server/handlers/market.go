package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"nexium-server/internal/game"
	"nexium-server/internal/middleware"
	"nexium-server/internal/shared/errors"
	"nexium-server/internal/shared/response"
)

// MarketHandler serves the market dashboard and the buy/sell action routes.
type MarketHandler struct {
	service *game.Service
}

func NewMarketHandler(service *game.Service) *MarketHandler {
	return &MarketHandler{service: service}
}

// Overview is the public read-only dashboard: a page of listings plus
// trends and popular items.
func (h *MarketHandler) Overview(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "market_overview")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Error(w, r, logger, errors.Validation("page must be a non-negative integer"))
			return
		}
		page = parsed
	}

	overview, err := h.service.MarketOverview(r.Context(), page)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, overview)
}

type sellRequest struct {
	ItemID       int64  `json:"item_id"`
	Quantity     int    `json:"quantity"`
	PricePerUnit string `json:"price_per_unit"`
}

// Sell creates a listing from the session player's inventory.
func (h *MarketHandler) Sell(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "market_sell")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	session := middleware.SessionFromContext(r)
	if session == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	var req sellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	price, err := decimal.NewFromString(req.PricePerUnit)
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid price_per_unit", err))
		return
	}

	listing, err := h.service.SellItem(r.Context(), session.PlayerID, req.ItemID, req.Quantity, price)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, listing)
}

type cancelRequest struct {
	ListingID int64 `json:"listing_id"`
}

// Cancel pulls the session player's own listing and refunds the held items.
func (h *MarketHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "market_cancel")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	session := middleware.SessionFromContext(r)
	if session == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	listing, err := h.service.CancelListing(r.Context(), session.PlayerID, req.ListingID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, listing)
}

type buyRequest struct {
	ListingID int64 `json:"listing_id"`
}

// Buy purchases a listing whole for the session player.
func (h *MarketHandler) Buy(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "market_buy")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	session := middleware.SessionFromContext(r)
	if session == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	var req buyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	settlement, err := h.service.BuyListing(r.Context(), session.PlayerID, req.ListingID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, settlement)
}
