package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fleetview/fleetview/internal/admin"
	invoicehttp "github.com/fleetview/fleetview/internal/invoice/http"
	lookuphttp "github.com/fleetview/fleetview/internal/lookup/http"
	"github.com/fleetview/fleetview/internal/observability"
	spendhttp "github.com/fleetview/fleetview/internal/spend/http"
	"github.com/fleetview/fleetview/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Metrics        *observability.Metrics
	LookupHandler  *lookuphttp.Handler
	InvoiceHandler *invoicehttp.Handler
	SpendHandler   *spendhttp.Handler
	AdminHandler   *admin.Handler
	JobHandler     *jobs.Handler
}

// NewRouter constructs the chi.Router with FleetView defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		if params.LookupHandler != nil {
			api.Mount("/lookup", params.LookupHandler.Routes())
		}
		if params.InvoiceHandler != nil {
			api.Mount("/invoices", params.InvoiceHandler.Routes())
		}
		if params.SpendHandler != nil {
			api.Mount("/spend", params.SpendHandler.Routes())
		}
		if params.AdminHandler != nil {
			api.Mount("/admin", params.AdminHandler.Routes())
		}
		if params.JobHandler != nil {
			api.Route("/jobs", func(jr chi.Router) {
				params.JobHandler.MountRoutes(jr)
			})
		}
	})

	return r
}
