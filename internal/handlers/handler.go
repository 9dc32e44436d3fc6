package handlers

import (
	"github.com/go-playground/validator/v10"

	"github.com/soltixdb/lagforest/internal/logging"
	"github.com/soltixdb/lagforest/internal/services"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger          *logging.Logger
	forecastService *services.ForecastService
	validate        *validator.Validate
	version         string
}

// New creates a new handler instance
func New(logger *logging.Logger, forecastService *services.ForecastService, version string) *Handler {
	return &Handler{
		logger:          logger,
		forecastService: forecastService,
		validate:        validator.New(),
		version:         version,
	}
}
