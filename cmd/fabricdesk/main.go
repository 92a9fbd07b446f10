package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/loomhouse/fabricdesk/cmd/fabricdesk/cli"
	"github.com/loomhouse/fabricdesk/internal/app"
	"github.com/loomhouse/fabricdesk/internal/catalog"
	"github.com/loomhouse/fabricdesk/internal/inventoryapi"
	"github.com/loomhouse/fabricdesk/internal/observability"
	"github.com/loomhouse/fabricdesk/internal/platform/cache"
	"github.com/loomhouse/fabricdesk/internal/platform/db"
	"github.com/loomhouse/fabricdesk/internal/sale"
	"github.com/loomhouse/fabricdesk/internal/stock"
	"github.com/loomhouse/fabricdesk/jobs"
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
	apiClient := inventoryapi.NewClient(cfg.InventoryAPIURL, cfg.InventoryAPITimeout)

	if len(os.Args) > 1 {
		os.Exit(runCommand(ctx, cfg, apiClient, os.Args[1:]))
	}

	if err := serve(ctx, cfg, logger, apiClient); err != nil {
		logger.Error("server", slog.Any("error", err))
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, cfg *app.Config, apiClient *inventoryapi.Client, args []string) int {
	switch args[0] {
	case "export":
		opts, err := cli.ParseExportArgs(args[1:], os.Stderr)
		if err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			return 2
		}
		return cli.NewExportCLI(apiClient).Run(ctx, opts)
	case "jobs":
		if cfg.RedisAddr == "" {
			_, _ = fmt.Fprintln(os.Stderr, "jobs: REDIS_ADDR is not configured")
			return 1
		}
		jobsCLI := cli.NewJobsCLI(cfg.RedisAddr, cfg.JournalRetentionHours)
		defer func() {
			_ = jobsCLI.Close()
		}()
		return jobsCLI.Command(ctx, args[1:], os.Stdout, os.Stderr)
	default:
		_, _ = fmt.Fprintf(os.Stderr, "unknown command %q (expected export or jobs)\n", args[0])
		return 2
	}
}

func serve(ctx context.Context, cfg *app.Config, logger *slog.Logger, apiClient *inventoryapi.Client) error {
	metrics := observability.NewMetrics()

	var (
		redisClient *redis.Client
		enqueuer    catalog.Enqueuer
		inspector   *asynq.Inspector
		store       sale.Store = sale.NewMemoryStore(cfg.SaleSessionTTL)
		journal     sale.Journal = sale.NewMemoryJournal()
	)

	if cfg.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		redisClient = client
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		store = sale.NewRedisStore(redisClient, cfg.SaleSessionTTL, cfg.SaleLockTTL)

		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		queue, err := jobs.NewClient(redisOpts)
		if err != nil {
			return err
		}
		defer func() {
			_ = queue.Close()
		}()
		enqueuer = queue
		inspector = asynq.NewInspector(redisOpts)
		defer func() {
			_ = inspector.Close()
		}()
	} else {
		logger.Warn("REDIS_ADDR not set, sale sessions are kept in memory")
	}

	if cfg.PGDSN != "" {
		pool, err := db.Connect(ctx, cfg.PGDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		pgJournal := sale.NewPGJournal(pool)
		if err := pgJournal.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("commit journal schema: %w", err)
		}
		journal = pgJournal
	}

	catalogService := catalog.NewService(apiClient, catalog.NewCache(redisClient, cfg.CatalogCacheTTL), enqueuer, logger)
	backend := sale.NewAPIBackend(apiClient)
	saleService := sale.NewService(sale.ServiceParams{
		Store:         store,
		Dispatcher:    sale.NewDispatcher(backend, journal, metrics, logger),
		Catalog:       catalogService,
		Lookups:       backend,
		OnCommit:      catalogService.Refresh,
		Recorder:      metrics,
		Logger:        logger,
		CloseDelay:    cfg.SaleCloseDelay,
		CommitTimeout: cfg.SaleCommitTimeout,
	})
	stockService := stock.NewService(apiClient, catalogService, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		SaleHandler:  sale.NewHandler(saleService, logger),
		StockHandler: stock.NewHandler(stockService, logger),
		JobHandler:   jobs.NewHandler(inspector, logger),
		Metrics:      metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("inventory_api", cfg.InventoryAPIURL),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
