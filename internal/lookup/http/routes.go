package lookuphttp

import "github.com/go-chi/chi/v5"

// Routes mounts the lookup endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/records", h.handleRecords)
	r.Get("/facets", h.handleFacets)
	r.Get("/status", h.handleStatus)
	return r
}
