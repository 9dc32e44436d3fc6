package main

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/soltixdb/lagforest/internal/metrics"
	"github.com/soltixdb/lagforest/internal/modelstore"
	"github.com/soltixdb/lagforest/internal/queue"
	"github.com/soltixdb/lagforest/internal/router"
	"github.com/soltixdb/lagforest/internal/services"
	"github.com/soltixdb/lagforest/internal/utils"
)

func newServeCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve forecasts over HTTP and reload models on publish events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), global)
		},
	}
}

func runServe(ctx context.Context, global *globalOptions) error {
	a, err := newApp(global, false)
	if err != nil {
		return err
	}
	cfg, logger := a.cfg, a.logger
	logger.Info("lagforest server starting",
		"version", utils.Version, "commit", GitCommit, "build time", BuildTime)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(cfg.Metrics.Namespace, reg)

	store, err := a.store(modelstore.WithObserver(rec))
	if err != nil {
		return err
	}
	if _, err := store.Get(""); err != nil {
		logger.Warn("Default model not loaded yet, serving will fail until it is trained",
			"dir", store.DefaultDir(), "error", err)
	}

	if cfg.Queue.Enabled {
		logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
		sub, err := queue.NewSubscriber(cfg.Queue)
		if err != nil {
			return err
		}
		defer func() { _ = sub.Close() }()

		err = queue.SubscribeModels(sub, cfg.Queue.Subject, store.HandleModelPublished,
			func(data []byte, err error) {
				logger.Warn("Discarding invalid model event", "bytes", len(data), "error", err)
			})
		if err != nil {
			return err
		}
		logger.Info("Subscribed to model events", "subject", cfg.Queue.Subject)
	}

	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	app := router.New(logger, router.Dependencies{
		Forecast: services.NewForecastService(logger, store, rec, cfg.Data.PredictionColumn),
		Metrics:  rec,
		Gatherer: reg,
	}, *cfg)

	errCh := make(chan error, 1)
	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server forced to shutdown", "error", err)
	}
	logger.Info("Server exited")
	return nil
}
