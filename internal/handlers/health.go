package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/lagforest/internal/models"
)

// Health handles health check requests. The default model is loaded on
// demand, so a missing model reports "degraded" rather than failing.
func (h *Handler) Health(c *fiber.Ctx) error {
	resp := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   h.version,
	}
	if h.forecastService != nil {
		if _, err := h.forecastService.ModelInfo(""); err == nil {
			resp.ModelLoaded = true
		} else {
			resp.Status = "degraded"
		}
		resp.CachedModels = h.forecastService.CachedModels()
	}
	return c.JSON(resp)
}

// NotFound handles 404 errors
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "NOT_FOUND",
			Message: "Route not found",
			Path:    c.Path(),
		},
	})
}
