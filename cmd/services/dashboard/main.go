package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gridstats/gridstats/internal/cache"
	"github.com/gridstats/gridstats/internal/config"
	"github.com/gridstats/gridstats/internal/ergast"
	"github.com/gridstats/gridstats/internal/handlers"
	"github.com/gridstats/gridstats/internal/logging"
	"github.com/gridstats/gridstats/internal/metrics"
	"github.com/gridstats/gridstats/internal/queue"
	"github.com/gridstats/gridstats/internal/router"
	"github.com/gridstats/gridstats/internal/services"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Dashboard service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	m := metrics.NewManager(
		metrics.WithNamespace(cfg.Metrics.Namespace),
		metrics.WithMetricsEnabled(cfg.Metrics.Enabled),
	)

	// Response cache
	logger.Info("Opening cache", "backend", cfg.Cache.Backend)
	responseCache, err := cache.New(cfg.Cache, m)
	if err != nil {
		logger.Fatal("Failed to open cache", "error", err)
	}
	defer func() { _ = responseCache.Close() }()

	// Invalidation broadcast (optional)
	logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
	queueClient, err := queue.NewQueue(cfg.Queue)
	if err != nil {
		logger.Fatal("Failed to connect to Queue", "error", err)
	}
	if queueClient != nil {
		defer func() { _ = queueClient.Close() }()
	} else {
		logger.Warn("No invalidation queue configured, invalidations stay local to this instance")
	}

	invalidator := cache.NewInvalidator(responseCache, queueClient, cfg.Queue.Subject, m)
	if err := invalidator.Start(); err != nil {
		logger.Fatal("Failed to start cache invalidator", "error", err)
	}
	defer func() { _ = invalidator.Close() }()

	// Upstream client and services
	upstream := ergast.New(cfg.Upstream,
		ergast.WithMetrics(m),
		ergast.WithLogger(logger.Component("ergast")),
	)
	dataService := services.NewDataService(logger.Component("data"), upstream, responseCache, cfg.Cache)
	analyticsService := services.NewAnalyticsService(logger.Component("analytics"), dataService, responseCache,
		services.AnalyticsOptions{
			TTL:        cfg.Cache.AnalyticsTTL,
			Thresholds: services.ThresholdsFromConfig(cfg.Analytics),
			Location:   cfg.Display.Location(),
		}, m)

	h := handlers.New(logger, Version, cfg.Cache.Backend, dataService, analyticsService, invalidator)
	app := router.New(logger, h, m, *cfg)

	// Start server in goroutine
	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr, "upstream", cfg.Upstream.BaseURL)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
