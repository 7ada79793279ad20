package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gridstats/gridstats/internal/config"
	"github.com/gridstats/gridstats/internal/handlers"
	"github.com/gridstats/gridstats/internal/logging"
	"github.com/gridstats/gridstats/internal/metrics"
	"github.com/gridstats/gridstats/internal/middleware"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, h *handlers.Handler, m *metrics.Manager, cfg config.Config) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))
	logCfg := logging.DefaultMiddlewareConfig()
	logCfg.SkipPaths = append(logCfg.SkipPaths, metricsPath)
	app.Use(logging.FiberMiddleware(logger, logCfg))
	if m.Enabled() {
		app.Use(m.FiberMiddleware("/health", metricsPath))
		app.Get(metricsPath, m.Handler())
	}

	app.Get("/health", h.Health)

	v1 := app.Group("/api/v1")

	// Season-wide routes
	season := v1.Group("/seasons/:season")
	season.Get("/standings/drivers", h.DriverStandings)
	season.Get("/standings/constructors", h.ConstructorStandings)
	season.Get("/schedule", h.Schedule)
	season.Get("/races/next", h.NextRace)
	season.Get("/races/last", h.LastRace)
	season.Get("/progression", h.Progression)
	season.Get("/grid-probability", h.GridProbability)
	season.Get("/correlation", h.Correlation)
	season.Get("/projection", h.Projection)
	season.Get("/compare", h.Compare)

	// Driver routes. lookup is registered before :id so it is not captured.
	season.Get("/drivers/lookup", h.DriverLookup)
	season.Get("/drivers/:id/stats", h.DriverStats)
	season.Get("/drivers/:id/analytics", h.DriverAnalytics)
	season.Get("/drivers/:id/trends", h.DriverTrend)
	season.Get("/drivers/:id/percentile", h.DriverPercentile)

	// Constructor routes
	season.Get("/constructors/lookup", h.ConstructorLookup)
	season.Get("/constructors/:id/stats", h.ConstructorStats)
	season.Get("/constructors/:id/reliability", h.Reliability)
	season.Get("/constructors/:id/development", h.Development)
	season.Get("/constructors/:id/pairing", h.Pairing)

	// Cross-season routes
	v1.Get("/drivers/:id/seasons", h.DriverSeasons)
	v1.Get("/drivers/:id/circuits/:circuitId", h.DriverCircuit)
	v1.Get("/circuits/difficulty", h.CircuitDifficulty)
	v1.Get("/circuits/:circuitId/difficulty", h.CircuitHistory)

	// Cache administration
	v1.Post("/cache/invalidate", h.InvalidateCache)

	// 404 handler
	app.Use(h.NotFound)
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, h *handlers.Handler, m *metrics.Manager, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Gridstats Dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, h, m, cfg)

	return app
}
