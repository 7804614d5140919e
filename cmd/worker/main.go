package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/fleetview/fleetview/internal/app"
	invoicehttp "github.com/fleetview/fleetview/internal/invoice/http"
	"github.com/fleetview/fleetview/internal/lookup"
	"github.com/fleetview/fleetview/internal/observability"
	"github.com/fleetview/fleetview/internal/platform/cache"
	"github.com/fleetview/fleetview/internal/platform/db"
	"github.com/fleetview/fleetview/internal/source"
	"github.com/fleetview/fleetview/internal/spend"
	"github.com/fleetview/fleetview/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	// The worker keeps its own snapshot so spend refreshes do not depend on
	// the API process being up.
	loadCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	if _, err := store.Load(loadCtx, recordSource); err != nil {
		logger.Warn("initial load failed", slog.Any("error", err))
	}
	cancel()

	invoiceCache := invoicehttp.NewCache(redisClient, cfg.InvoiceCacheTTL)
	spendService := spend.NewService(logger, store, redisClient, cfg.SpendCacheTTL, cfg.SpendFixedCosts)
	refresher := jobs.NewRefresher(logger, store, recordSource, invoiceCache, spendService, metrics)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDatasetRefresh, Handler: refresher.TaskHandler()},
			{Type: jobs.TaskSpendRefresh, Handler: refresher.SpendTaskHandler()},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 6 * * *", Task: jobs.NewDatasetRefreshTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 6 * * *", Task: jobs.NewSpendRefreshTask(), Options: []asynq.Option{asynq.MaxRetry(2)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
