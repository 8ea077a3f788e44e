package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zooguide/backend/internal/domain"
	"github.com/zooguide/backend/internal/service"
)

// AppOptions configures NewApp
type AppOptions struct {
	Name        string
	AccessLog   bool
	Gatherer    prometheus.Gatherer
	CORSOrigins string
}

// NewApp builds the fiber app with middleware and every route mounted
func NewApp(guide *service.GuideService, repo domain.CatalogRepository, opts AppOptions) *fiber.App {
	if opts.Name == "" {
		opts.Name = "ZooGuide API v1.0"
	}
	if opts.CORSOrigins == "" {
		opts.CORSOrigins = "*"
	}

	app := fiber.New(fiber.Config{
		AppName:      opts.Name,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	SetupRoutes(app, guide, repo, opts.Gatherer)
	return app
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, guide *service.GuideService, repo domain.CatalogRepository, gatherer prometheus.Gatherer) {
	handler := NewHandler(guide, repo)

	// Health check
	app.Get("/health", handler.HealthCheck)
	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// API v1 routes
	api := app.Group("/api/v1")
	{
		// Catalog
		api.Get("/facilities", handler.ListFacilities)
		api.Get("/facilities/:id", handler.GetFacility)
		api.Get("/congestion/bands", handler.GetCongestionBands)
		api.Get("/waypoints", handler.GetWaypoints)
		api.Get("/events", handler.ListEvents)
		api.Get("/events/:facilityId/feasibility", handler.GetFeasibility)

		// Visitor position and AR view
		api.Get("/position", handler.GetPosition)
		api.Put("/position", handler.UpdatePosition)
		api.Post("/position/step", handler.StepPosition)
		api.Get("/ar/visible", handler.GetVisible)

		// Selection
		api.Get("/selection", handler.GetSelection)
		api.Delete("/selection", handler.ClearSelection)
		api.Post("/selection/destinations/:id", handler.AddDestination)
		api.Delete("/selection/destinations/:id", handler.RemoveDestination)
		api.Put("/selection/attending/:id", handler.SetAttending)
		api.Post("/selection/forced/:id", handler.ForceRecommend)
		api.Delete("/selection/forced/:id", handler.UnforceRecommend)

		// Routing
		api.Get("/recommendation", handler.GetRecommendation)
		api.Get("/path/:facilityId", handler.GetPath)

		// Navigation
		api.Post("/navigation", handler.StartNavigation)
		api.Get("/navigation", handler.GetNavigation)
		api.Get("/navigation/guidance", handler.GetGuidance)
		api.Post("/navigation/arrival", handler.AcknowledgeArrival)
		api.Post("/navigation/stop", handler.StopNavigation)
		api.Post("/navigation/resume", handler.ResumeNavigation)
	}
}

// ErrorHandler renders every error as {"error": true, "message": ...}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
