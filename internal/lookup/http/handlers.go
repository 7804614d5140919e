// Package lookuphttp exposes the lookup engine over HTTP for the dashboard.
package lookuphttp

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fleetview/fleetview/internal/lookup"
	"github.com/fleetview/fleetview/internal/observability"
	"github.com/fleetview/fleetview/internal/platform/httpx"
)

// Handler serves facet, record, and status queries.
type Handler struct {
	logger   *slog.Logger
	service  *lookup.Service
	store    *lookup.Store
	metrics  *observability.Metrics
	validate *validator.Validate
}

// NewHandler constructs the lookup HTTP handler.
func NewHandler(logger *slog.Logger, service *lookup.Service, store *lookup.Store, metrics *observability.Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		service:  service,
		store:    store,
		metrics:  metrics,
		validate: validator.New(),
	}
}

// queryDTO carries the raw query string values prior to validation.
type queryDTO struct {
	Mode        string `validate:"omitempty,oneof=service-order parts"`
	From        string `validate:"omitempty,datetime=2006-01-02"`
	To          string `validate:"omitempty,datetime=2006-01-02"`
	Search      string `validate:"omitempty,max=200"`
	SearchField string `validate:"omitempty,oneof=description partNumber"`
	SortBy      string `validate:"omitempty,max=64"`
	Dir         string `validate:"omitempty,oneof=asc desc"`
	Page        int    `validate:"omitempty,gte=1"`
	PerPage     int    `validate:"omitempty,gte=1,lte=200"`
}

func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	q, state, err := h.parseQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	started := time.Now()
	result, err := h.service.Search(lookup.Query{
		Mode:    q.mode,
		State:   state,
		SortBy:  q.sortBy,
		Dir:     q.dir,
		Page:    q.page,
		PerPage: q.perPage,
	})
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.metrics.ObserveSearch(time.Since(started))

	httpx.OK(w, recordsViewModel(result, q.mode))
}

func (h *Handler) handleFacets(w http.ResponseWriter, r *http.Request) {
	_, state, err := h.parseQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if dim := r.URL.Query().Get("dimension"); dim != "" {
		facet, ok := parseFacet(dim)
		if !ok {
			httpx.RespondError(w, errValidation("unknown dimension "+dim))
			return
		}
		result, err := h.service.FacetOptions(facet, state)
		if err != nil {
			h.respondStoreError(w, err)
			return
		}
		httpx.OK(w, result)
		return
	}
	options, snapshotID, err := h.service.AllFacetOptions(state)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	httpx.OK(w, facetsViewModel(options, snapshotID))
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, loadErr := h.store.Status()
	vm := statusViewModel{Status: string(status), Stats: h.store.Stats()}
	if loadErr != nil {
		vm.Error = loadErr.Error()
	}
	httpx.OK(w, vm)
}

// respondStoreError distinguishes "not loaded yet" from a failed load; both
// are 503 but the UI messages them differently.
func (h *Handler) respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, lookup.ErrNotLoaded) {
		httpx.Problem(w, http.StatusServiceUnavailable, "Not Loaded", "record store has not finished loading")
		return
	}
	h.logger.Error("lookup query failed", slog.Any("error", err))
	httpx.RespondError(w, errUnavailable(err))
}

func errValidation(detail string) error {
	return &wrappedError{sentinel: httpx.ErrValidation, detail: detail}
}

func errUnavailable(err error) error {
	return &wrappedError{sentinel: httpx.ErrUnavailable, detail: err.Error()}
}

type wrappedError struct {
	sentinel error
	detail   string
}

func (e *wrappedError) Error() string { return e.detail }
func (e *wrappedError) Unwrap() error { return e.sentinel }
