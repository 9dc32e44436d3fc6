// Package router wires the HTTP API: middleware, routes and the error
// handler.
package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soltixdb/lagforest/internal/config"
	"github.com/soltixdb/lagforest/internal/handlers"
	"github.com/soltixdb/lagforest/internal/logging"
	"github.com/soltixdb/lagforest/internal/metrics"
	"github.com/soltixdb/lagforest/internal/middleware"
	"github.com/soltixdb/lagforest/internal/services"
	"github.com/soltixdb/lagforest/internal/utils"
)

// Dependencies are the services the routes are served from. Metrics and
// Gatherer are optional; /metrics is only mounted when both are set and
// metrics are enabled.
type Dependencies struct {
	Forecast *services.ForecastService
	Metrics  *metrics.Recorder
	Gatherer prometheus.Gatherer
}

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, deps Dependencies, cfg config.Config) *handlers.Handler {
	h := handlers.New(logger, deps.Forecast, utils.Version)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	logCfg := logging.DefaultMiddlewareConfig()
	if cfg.Metrics.Path != "" {
		logCfg.SkipPaths = append(logCfg.SkipPaths, cfg.Metrics.Path)
	}
	app.Use(logging.FiberMiddleware(logger, logCfg))

	if cfg.Metrics.Enabled && deps.Metrics != nil {
		app.Use(deps.Metrics.FiberMiddleware())
		if deps.Gatherer != nil {
			app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
		}
	}

	// Health check (no auth required)
	app.Get("/health", h.Health)

	v1 := app.Group("/v1", middleware.APIKeyAuth(logger, cfg.Auth))

	// Forecasting
	v1.Post("/forecast", h.Forecast)
	v1.Post("/evaluate", h.Evaluate)

	// Model management
	v1.Get("/model", h.ModelInfo)
	v1.Post("/model/reload", h.ReloadModel)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, deps Dependencies, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "lagforest",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		BodyLimit:             cfg.Server.BodyLimit,
	})

	Setup(app, logger, deps, cfg)

	return app
}
