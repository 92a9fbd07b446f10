package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/loomhouse/fabricdesk/internal/app"
	"github.com/loomhouse/fabricdesk/internal/catalog"
	"github.com/loomhouse/fabricdesk/internal/inventoryapi"
	jobmetrics "github.com/loomhouse/fabricdesk/internal/jobs"
	"github.com/loomhouse/fabricdesk/internal/platform/cache"
	"github.com/loomhouse/fabricdesk/internal/platform/db"
	"github.com/loomhouse/fabricdesk/internal/sale"
	"github.com/loomhouse/fabricdesk/jobs"
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
	if cfg.RedisAddr == "" {
		logger.Error("worker requires REDIS_ADDR")
		os.Exit(1)
	}

	redisClient, err := cache.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := jobmetrics.NewMetrics(nil)
	apiClient := inventoryapi.NewClient(cfg.InventoryAPIURL, cfg.InventoryAPITimeout)
	catalogService := catalog.NewService(apiClient, catalog.NewCache(redisClient, cfg.CatalogCacheTTL), nil, logger)
	refreshJob := jobs.NewCatalogRefreshJob(catalogService, logger, metrics)

	handlers := []jobs.TaskHandler{
		{Type: jobs.TaskCatalogRefresh, Handler: refreshJob.Handle},
	}
	var cron []jobs.CronRegistration

	if cfg.PGDSN != "" {
		pool, err := db.Connect(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect database", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		journal := sale.NewPGJournal(pool)
		if err := journal.EnsureSchema(ctx); err != nil {
			logger.Error("commit journal schema", slog.Any("error", err))
			os.Exit(1)
		}
		cleanupJob := jobs.NewJournalCleanupJob(journal, logger, metrics)
		cleanupTask, err := jobs.NewJournalCleanupTask(cfg.JournalRetentionHours)
		if err != nil {
			logger.Error("build cleanup task", slog.Any("error", err))
			os.Exit(1)
		}
		handlers = append(handlers, jobs.TaskHandler{Type: jobs.TaskJournalCleanup, Handler: cleanupJob.Handle})
		cron = append(cron, jobs.CronRegistration{Spec: "0 * * * *", Task: cleanupTask, Options: []asynq.Option{asynq.MaxRetry(3)}})
	}

	refreshTask, err := jobs.NewCatalogRefreshTask("scheduled")
	if err != nil {
		logger.Error("build refresh task", slog.Any("error", err))
		os.Exit(1)
	}
	cron = append(cron, jobs.CronRegistration{Spec: "*/30 * * * *", Task: refreshTask, Options: []asynq.Option{asynq.MaxRetry(3)}})

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers:  handlers,
		Cron:      cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
