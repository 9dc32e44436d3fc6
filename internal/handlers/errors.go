package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/lagforest/internal/models"
	"github.com/soltixdb/lagforest/internal/services"
)

// respondError writes err as an ErrorResponse. Service errors carry their
// own status; anything else is a 500.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	var svcErr *services.ServiceError
	if !errors.As(err, &svcErr) {
		h.logger.Error("Unhandled request error", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    services.CodeInternal,
				Message: "Internal server error",
			},
		})
	}

	status := svcErr.HTTPStatus()
	if status >= fiber.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.Path(), "code", svcErr.Code, "error", err)
	}
	return c.Status(status).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    svcErr.Code,
			Message: svcErr.Message,
			Details: svcErr.Details,
		},
	})
}

// parseBody decodes and validates a JSON request body into v
func (h *Handler) parseBody(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return services.NewServiceErrorWithDetails(services.CodeInvalidRequest, "Failed to parse JSON body",
			map[string]interface{}{"error": err.Error()})
	}
	if err := h.validate.Struct(v); err != nil {
		details := map[string]interface{}{}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details[fe.Field()] = fe.Tag()
			}
		}
		return services.NewServiceErrorWithDetails(services.CodeInvalidRequest, "Request validation failed", details)
	}
	return nil
}
