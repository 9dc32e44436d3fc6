package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/lagforest/internal/models"
	"github.com/soltixdb/lagforest/internal/services"
	"github.com/soltixdb/lagforest/internal/utils"
)

// Forecast handles POST /v1/forecast. The body holds future rows for the
// entities to predict; rows for entities without a trained model are
// dropped from the response.
func (h *Handler) Forecast(c *fiber.Ctx) error {
	var body models.ForecastRequest
	if err := h.parseBody(c, &body); err != nil {
		return h.respondError(c, err)
	}

	dir, err := h.resolveModelDir(body.ModelDir)
	if err != nil {
		return h.respondError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), utils.DefaultRequestTimeout)
	defer cancel()

	resp, err := h.forecastService.Forecast(ctx, &services.ForecastRequest{
		ModelDir:         dir,
		Records:          body.Rows,
		Columns:          body.Columns,
		PredictionColumn: body.PredictionColumn,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(resp)
}

// Evaluate handles POST /v1/evaluate. The body holds future rows together
// with the actual target values.
func (h *Handler) Evaluate(c *fiber.Ctx) error {
	var body models.EvaluateRequest
	if err := h.parseBody(c, &body); err != nil {
		return h.respondError(c, err)
	}

	dir, err := h.resolveModelDir(body.ModelDir)
	if err != nil {
		return h.respondError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), utils.DefaultRequestTimeout)
	defer cancel()

	eval, err := h.forecastService.EvaluateRecords(ctx, dir, body.Rows, body.Columns)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(eval)
}
