package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aurelioventura/healthscan-backend/api/controllers"
	"github.com/aurelioventura/healthscan-backend/api/routes"
	"github.com/aurelioventura/healthscan-backend/internal/notifications"
	productsvc "github.com/aurelioventura/healthscan-backend/internal/products"
	statsvc "github.com/aurelioventura/healthscan-backend/internal/stats"
	syncsvc "github.com/aurelioventura/healthscan-backend/internal/sync"
	"github.com/aurelioventura/healthscan-backend/pkg/bigquery"
	"github.com/aurelioventura/healthscan-backend/pkg/config"
	"github.com/aurelioventura/healthscan-backend/pkg/db"
	"github.com/aurelioventura/healthscan-backend/pkg/logger"
	"github.com/aurelioventura/healthscan-backend/pkg/metrics"
	"github.com/aurelioventura/healthscan-backend/pkg/migrate"
	"github.com/aurelioventura/healthscan-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	searchMetrics := metrics.NewSearchMetrics(registry)

	repo := productsvc.NewRepository(dbClient.DB())

	productService, err := productsvc.NewService(repo, logg, searchMetrics, cfg.Search.FetchAttempts)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	notifier := notifications.NewRedisNotifier(redisClient, logg)

	pingers := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	var exporter statsvc.Exporter
	if cfg.GCP.ProjectID != "" {
		bqClient, err := bigquery.NewClient(context.Background(), cfg.GCP, cfg.BigQuery, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap bigquery", err)
			os.Exit(1)
		}
		defer func() {
			if err := bqClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing bigquery", err)
			}
		}()
		exporter = bqClient
		pingers["bigquery"] = bqClient
	}

	statsService, err := statsvc.NewService(repo, notifier, exporter, logg, searchMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create stats service", err)
		os.Exit(1)
	}

	refetch := syncsvc.RefetchFunc(func(ctx context.Context) error {
		productService.Invalidate()
		_, err := statsService.Refresh(ctx)
		return err
	})

	adapter, err := syncsvc.NewAdapter(
		syncsvc.NewRedisSource(redisClient),
		refetch,
		notifier,
		cfg.Sync.DebounceWindow,
		logg,
		searchMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create sync adapter", err)
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := adapter.Start(runCtx); err != nil {
		logg.Error(runCtx, "failed to start sync adapter", err)
		os.Exit(1)
	}
	defer func() {
		if err := adapter.Close(); err != nil {
			logg.Error(context.Background(), "error closing sync adapter", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(runCtx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			ProductService: productService,
			StatsService:   statsService,
			Pingers:        pingers,
			Metrics:        registry,
		}),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case <-runCtx.Done():
		logg.Info(ctx, "shutting down api server")
		if err := server.Shutdown(context.Background()); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	}
}
