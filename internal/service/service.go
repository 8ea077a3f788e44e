package service

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/zooguide/backend/internal/domain"
)

// CatalogRepository is re-exported from domain for convenience
type CatalogRepository = domain.CatalogRepository

// EngineConfig selects how the engine is built from a catalog
type EngineConfig struct {
	Guide             GuideConfig
	Seed              int64
	RandomizeVisitors bool
	RouteCacheSize    int
	Clock             Clock
}

// NewEngine builds the registry, calendar and waypoint graph from catalog and
// returns the guide that drives them.
func NewEngine(catalog domain.Catalog, cfg EngineConfig, logger *slog.Logger, metrics *Metrics) (*GuideService, error) {
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("service: failed to build engine: %w", err)
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = cfg.Clock.Now().UnixNano()
	}

	opts := []RegistryOption{
		WithRand(rand.New(rand.NewSource(seed))),
		WithRegistryClock(cfg.Clock),
		WithRegistryMetrics(metrics),
	}
	if cfg.RandomizeVisitors {
		opts = append(opts, WithRandomizedVisitors())
	}
	registry := NewFacilityRegistry(catalog.Facilities, opts...)

	graph := NewWaypointGraph(catalog.Waypoints, DefaultGraphOptions())
	router, err := NewCachedRouter(graph, cfg.RouteCacheSize)
	if err != nil {
		return nil, fmt.Errorf("service: failed to create route cache: %w", err)
	}

	if logger != nil {
		logger.Info("engine ready",
			"facilities", len(catalog.Facilities),
			"events", len(catalog.Events),
			"waypoints", len(catalog.Waypoints),
			"seed", seed,
			"route_cache", cfg.RouteCacheSize,
			"started_at", cfg.Clock.Now().Format(time.RFC3339))
	}

	return NewGuideService(GuideDeps{
		Registry: registry,
		Calendar: NewEventCalendar(catalog.Events),
		Graph:    graph,
		Router:   router,
		Clock:    cfg.Clock,
		Logger:   logger,
		Metrics:  metrics,
	}, cfg.Guide)
}
