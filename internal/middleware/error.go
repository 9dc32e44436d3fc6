package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/lagforest/internal/logging"
	"github.com/soltixdb/lagforest/internal/models"
	"github.com/soltixdb/lagforest/internal/services"
)

// ErrorHandler returns the application error handler. Service errors keep
// their code and details; fiber errors keep their status.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		detail := models.ErrorDetail{
			Code:    services.CodeInternal,
			Message: "Internal Server Error",
		}

		var svcErr *services.ServiceError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &svcErr):
			status = svcErr.HTTPStatus()
			detail.Code = svcErr.Code
			detail.Message = svcErr.Message
			detail.Details = svcErr.Details
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			detail.Code = "ERROR"
			detail.Message = fiberErr.Message
		}

		fields := []interface{}{
			"path", c.Path(),
			"method", c.Method(),
			"status", status,
			"error", err,
		}
		l := logger.WithContext(c.UserContext())
		if status >= fiber.StatusInternalServerError {
			l.Error("Request error", fields...)
		} else {
			l.Warn("Request error", fields...)
		}

		return c.Status(status).JSON(models.ErrorResponse{Error: detail})
	}
}
