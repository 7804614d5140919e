package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/fleetview/fleetview/internal/admin"
	"github.com/fleetview/fleetview/internal/app"
	"github.com/fleetview/fleetview/internal/invoice"
	invoicehttp "github.com/fleetview/fleetview/internal/invoice/http"
	"github.com/fleetview/fleetview/internal/lookup"
	lookuphttp "github.com/fleetview/fleetview/internal/lookup/http"
	"github.com/fleetview/fleetview/internal/observability"
	"github.com/fleetview/fleetview/internal/platform/cache"
	"github.com/fleetview/fleetview/internal/platform/db"
	"github.com/fleetview/fleetview/internal/source"
	"github.com/fleetview/fleetview/internal/spend"
	spendhttp "github.com/fleetview/fleetview/internal/spend/http"
	"github.com/fleetview/fleetview/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// Caching degrades gracefully; the dashboard stays up without Redis.
		logger.Warn("redis unavailable", slog.Any("error", err))
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var recordSource lookup.RecordSource
	switch cfg.Source {
	case "postgres":
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		recordSource = source.NewPostgresSource(pool, logger)
	default:
		recordSource = source.NewHTTPSource(cfg.UpstreamURL, nil, logger)
	}

	metrics := observability.NewMetrics()
	store := lookup.NewStore(logger)

	// Warm the snapshot in the background so startup is not gated on the
	// upstream feed. Requests arriving before the load finishes get 503.
	go func() {
		loadCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		snap, err := store.Load(loadCtx, recordSource)
		if err != nil {
			logger.Error("initial load failed", slog.Any("error", err))
			return
		}
		metrics.SetRecordsLoaded(len(snap.Records))
		logger.Info("initial load complete", slog.Int("records", len(snap.Records)))
	}()

	lookupService := lookup.NewService(store)
	lookupHandler := lookuphttp.NewHandler(logger, lookupService, store, metrics)

	invoiceService := invoice.NewService(store)
	invoiceCache := invoicehttp.NewCache(redisClient, cfg.InvoiceCacheTTL)
	invoiceHandler := invoicehttp.NewHandler(logger, invoiceService, invoiceCache)

	spendService := spend.NewService(logger, store, redisClient, cfg.SpendCacheTTL, cfg.SpendFixedCosts)
	spendHandler := spendhttp.NewHandler(logger, spendService)

	refresher := jobs.NewRefresher(logger, store, recordSource, invoiceCache, spendService, metrics)
	adminHandler := admin.NewHandler(logger, cfg.AdminTokenHash, refresher)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Metrics:        metrics,
		LookupHandler:  lookupHandler,
		InvoiceHandler: invoiceHandler,
		SpendHandler:   spendHandler,
		AdminHandler:   adminHandler,
		JobHandler:     jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
