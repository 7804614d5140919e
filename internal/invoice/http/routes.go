package invoicehttp

import "github.com/go-chi/chi/v5"

// Routes mounts the invoice endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{number}", h.handleDetail)
	return r
}
