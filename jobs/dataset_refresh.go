package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/fleetview/fleetview/internal/lookup"
	"github.com/fleetview/fleetview/internal/observability"
	"github.com/fleetview/fleetview/internal/spend"
)

// InvoiceCache is the slice of the invoice cache the refresher needs.
type InvoiceCache interface {
	Bump(ctx context.Context) error
}

// Refresher reloads the record snapshot and invalidates derived caches. It
// backs both the nightly cron task and the admin refresh endpoint.
type Refresher struct {
	logger  *slog.Logger
	store   *lookup.Store
	source  lookup.RecordSource
	cache   InvoiceCache
	spend   *spend.Service
	metrics *observability.Metrics
}

// NewRefresher wires the refresh pipeline. Cache, spend, and metrics are
// optional.
func NewRefresher(logger *slog.Logger, store *lookup.Store, source lookup.RecordSource, cache InvoiceCache, spendSvc *spend.Service, metrics *observability.Metrics) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		logger:  logger,
		store:   store,
		source:  source,
		cache:   cache,
		spend:   spendSvc,
		metrics: metrics,
	}
}

// Run reloads the snapshot, bumps the invoice cache version, and recomputes
// the spend summary. Cache invalidation failures are logged, not fatal; the
// versioned keys expire on their TTL anyway.
func (r *Refresher) Run(ctx context.Context) error {
	started := time.Now()
	snap, err := r.store.Reload(ctx, r.source)
	if err != nil {
		r.logger.Error("dataset refresh failed", slog.Any("error", err))
		return err
	}
	if r.metrics != nil {
		r.metrics.SetRecordsLoaded(len(snap.Records))
	}
	if r.cache != nil {
		if err := r.cache.Bump(ctx); err != nil {
			r.logger.Warn("invoice cache bump failed", slog.Any("error", err))
		}
	}
	if r.spend != nil {
		if _, err := r.spend.Refresh(ctx); err != nil {
			r.logger.Warn("spend refresh failed", slog.Any("error", err))
		}
	}
	r.logger.Info("dataset refreshed",
		slog.String("snapshot", snap.ID),
		slog.Int("records", len(snap.Records)),
		slog.Duration("took", time.Since(started)),
	)
	return nil
}

// TaskHandler adapts the refresher for the worker mux.
func (r *Refresher) TaskHandler() asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		return r.Run(ctx)
	}
}

// SpendTaskHandler recomputes only the spend summary, leaving the snapshot
// in place.
func (r *Refresher) SpendTaskHandler() asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		if r.spend == nil {
			return nil
		}
		_, err := r.spend.Refresh(ctx)
		return err
	}
}
