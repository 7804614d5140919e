// Package invoicehttp serves aggregated invoice detail views.
package invoicehttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fleetview/fleetview/internal/invoice"
	"github.com/fleetview/fleetview/internal/lookup"
	"github.com/fleetview/fleetview/internal/platform/httpx"
)

// Handler serves the invoice detail endpoint.
type Handler struct {
	logger  *slog.Logger
	service *invoice.Service
	cache   *Cache
}

// NewHandler constructs the invoice HTTP handler. The cache may be nil, in
// which case every request aggregates from the snapshot directly.
func NewHandler(logger *slog.Logger, service *invoice.Service, cache *Cache) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, cache: cache}
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	number := strings.TrimSpace(chi.URLParam(r, "number"))
	if number == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Error", "invoice number required")
		return
	}

	key, err := h.cache.Key(r.Context(), "invoice", "detail", number)
	if err != nil {
		// Cache outage must not take the endpoint down.
		h.logger.Warn("invoice cache key failed", slog.Any("error", err))
		key = "invoice:detail:" + number
	}

	value, err, _ := singleflightDetail(r.Context(), key, func(ctx context.Context) (interface{}, error) {
		var detail invoice.Detail
		loadErr := h.cache.FetchJSON(ctx, key, &detail, func(context.Context) (interface{}, error) {
			d, _, err := h.service.Detail(number)
			if err != nil {
				return nil, err
			}
			return d, nil
		})
		if loadErr != nil {
			return nil, loadErr
		}
		return detail, nil
	})
	if err != nil {
		h.respondError(w, number, err)
		return
	}

	httpx.OK(w, value)
}

func (h *Handler) respondError(w http.ResponseWriter, number string, err error) {
	switch {
	case errors.Is(err, invoice.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no records for invoice "+number)
	case errors.Is(err, lookup.ErrNotLoaded):
		httpx.Problem(w, http.StatusServiceUnavailable, "Not Loaded", "record store has not finished loading")
	default:
		h.logger.Error("invoice detail failed", slog.String("invoice", number), slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Upstream Unavailable", err.Error())
	}
}
