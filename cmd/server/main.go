package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/zooguide/backend/internal/config"
	"github.com/zooguide/backend/internal/delivery/http"
	"github.com/zooguide/backend/internal/domain"
	"github.com/zooguide/backend/internal/logging"
	"github.com/zooguide/backend/internal/repository/postgres"
	"github.com/zooguide/backend/internal/repository/seed"
	"github.com/zooguide/backend/internal/service"
)

func main() {
	// Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatal(err)
	}

	logger, closer := logging.New(cfg.LogLevel, cfg.LogFile)
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catalog source
	repo, pool := openCatalog(ctx, cfg, logger)
	if pool != nil {
		defer pool.Close()
	}

	loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	catalog, err := domain.LoadCatalog(loadCtx, repo)
	cancel()
	if err != nil {
		logger.Error("Failed to load catalog", "error", err)
		os.Exit(1)
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := service.NewMetrics(reg)

	// Engine
	guide, err := service.NewEngine(catalog, service.EngineConfig{
		Guide: service.GuideConfig{
			StartFacilityID:  cfg.StartFacilityID,
			UseWaypoints:     cfg.UseWaypoints,
			PositionThrottle: cfg.PositionThrottle,
			Location:         loc,
		},
		Seed:              cfg.SimulationSeed,
		RandomizeVisitors: cfg.RandomizeVisitors,
		RouteCacheSize:    cfg.RouteCacheSize,
	}, logger, metrics)
	if err != nil {
		logger.Error("Failed to start engine", "error", err)
		os.Exit(1)
	}

	// Fiber App
	app := http.NewApp(guide, repo, http.AppOptions{
		AccessLog: !cfg.IsProduction(),
		Gatherer:  reg,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", "port", cfg.Port)
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		return guide.RunCongestionTicker(gctx, cfg.CongestionTick)
	})
	g.Go(func() error {
		// Graceful shutdown
		<-gctx.Done()
		logger.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			logger.Warn("Server forced to shutdown", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server exited gracefully")
}

// openCatalog prefers PostgreSQL when DATABASE_URL is set and falls back
// to the embedded seed catalog when it is unset or unreachable.
func openCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.CatalogRepository, *pgxpool.Pool) {
	if cfg.DatabaseURL != "" {
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
		if err == nil {
			repo := postgres.NewPostgresRepository(pool)
			if err = repo.Health(dbCtx); err == nil {
				logger.Info("Connected to PostgreSQL")
				return repo, pool
			}
			pool.Close()
		}
		logger.Warn("Could not connect to database, using the built-in catalog", "error", err)
	}

	repo, err := seed.New()
	if err != nil {
		logger.Error("Failed to load built-in catalog", "error", err)
		os.Exit(1)
	}
	return repo, nil
}
