// Package admin exposes the operator refresh endpoint.
package admin

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/fleetview/fleetview/internal/platform/httpx"
	"github.com/fleetview/fleetview/jobs"
)

// Handler guards the manual dataset refresh behind a bearer token.
type Handler struct {
	logger    *slog.Logger
	tokenHash []byte
	refresher *jobs.Refresher
}

// NewHandler constructs the admin handler. An empty token hash disables the
// endpoint entirely.
func NewHandler(logger *slog.Logger, tokenHash string, refresher *jobs.Refresher) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, tokenHash: []byte(tokenHash), refresher: refresher}
}

// Routes mounts the admin endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/refresh", h.handleRefresh)
	return r
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if len(h.tokenHash) == 0 {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "admin endpoints are disabled")
		return
	}
	token := bearerToken(r)
	if token == "" || bcrypt.CompareHashAndPassword(h.tokenHash, []byte(token)) != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid admin token")
		return
	}

	if err := h.refresher.Run(r.Context()); err != nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Upstream Unavailable", err.Error())
		return
	}
	h.logger.Info("manual dataset refresh", slog.String("remote", r.RemoteAddr))
	httpx.OK(w, map[string]string{"status": "refreshed"})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
