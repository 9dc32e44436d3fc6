package main

import (
	"fmt"

	"github.com/soltixdb/lagforest/internal/config"
	"github.com/soltixdb/lagforest/internal/logging"
	"github.com/soltixdb/lagforest/internal/modelstore"
	"github.com/soltixdb/lagforest/internal/services"
)

// app holds what every command needs: the validated configuration and
// the logger built from it
type app struct {
	cfg    *config.Config
	logger *logging.Logger
}

// newApp loads configuration and sets up logging. Batch commands write
// their results to stdout, so their logs are moved to stderr.
func newApp(opts *globalOptions, batch bool) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.modelDir != "" {
		cfg.Data.ModelDir = opts.modelDir
	}
	if batch && (cfg.Logging.OutputPath == "" || cfg.Logging.OutputPath == "stdout") {
		cfg.Logging.OutputPath = "stderr"
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.SetGlobal(logger)

	return &app{cfg: cfg, logger: logger}, nil
}

// store opens the model store rooted at the configured model directory
func (a *app) store(opts ...modelstore.Option) (*modelstore.Store, error) {
	opts = append([]modelstore.Option{modelstore.WithLogger(a.logger)}, opts...)
	return modelstore.New(modelstore.Config{
		Size:       a.cfg.Cache.ModelCacheSize,
		DefaultDir: a.cfg.Data.ModelDir,
	}, opts...)
}

// forecastService builds a ForecastService over a fresh model store
func (a *app) forecastService() (*services.ForecastService, error) {
	store, err := a.store()
	if err != nil {
		return nil, err
	}
	return services.NewForecastService(a.logger, store, nil, a.cfg.Data.PredictionColumn), nil
}
