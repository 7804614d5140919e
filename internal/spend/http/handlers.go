// Package spendhttp serves the customer spend summary endpoint.
package spendhttp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fleetview/fleetview/internal/lookup"
	"github.com/fleetview/fleetview/internal/platform/httpx"
	"github.com/fleetview/fleetview/internal/spend"
)

// Handler serves the spend summary.
type Handler struct {
	logger  *slog.Logger
	service *spend.Service
}

// NewHandler constructs the spend HTTP handler.
func NewHandler(logger *slog.Logger, service *spend.Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// Routes mounts the spend endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/summary", h.handleSummary)
	return r
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		if errors.Is(err, lookup.ErrNotLoaded) {
			httpx.Problem(w, http.StatusServiceUnavailable, "Not Loaded", "record store has not finished loading")
			return
		}
		h.logger.Error("spend summary failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Upstream Unavailable", err.Error())
		return
	}
	httpx.OK(w, summary)
}
