package handlers

import (
	"log/slog"
	"net/http"

	"nexium-server/internal/shared/errors"
	"nexium-server/internal/shared/response"
	"nexium-server/internal/universe"
)

// SectorsHandler serves read-only sector lookups by coordinate.
type SectorsHandler struct {
	sectors *universe.Repository
}

func NewSectorsHandler(sectors *universe.Repository) *SectorsHandler {
	return &SectorsHandler{sectors: sectors}
}

func (h *SectorsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "sectors")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	raw := r.URL.Query().Get("coordinate")
	if raw == "" {
		response.Error(w, r, logger, errors.Validation("coordinate query parameter is required"))
		return
	}

	coord, err := universe.ParseCoordinate(raw)
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid coordinate", err))
		return
	}

	sector, err := h.sectors.GetByCoordinate(coord.String())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if sector == nil {
		response.Error(w, r, logger, errors.NotFoundf("sector %s has not been charted", coord))
		return
	}

	response.Success(w, http.StatusOK, sector)
}
