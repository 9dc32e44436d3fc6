package handlers

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/lagforest/internal/models"
	"github.com/soltixdb/lagforest/internal/services"
)

// resolveModelDir maps a client supplied model directory onto the
// configured model root. Relative names are taken from the root; absolute
// paths must lie inside it. An empty name selects the default model.
func (h *Handler) resolveModelDir(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}
	root := h.forecastService.DefaultModelDir()
	if root == "" {
		return "", services.NewServiceError(services.CodeInvalidRequest, "No model root is configured")
	}

	path := filepath.Clean(dir)
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", services.NewServiceErrorWithDetails(services.CodeInvalidRequest,
			"Model directory is outside the model root",
			map[string]interface{}{"model_dir": dir})
	}
	return path, nil
}

// ModelInfo handles GET /v1/model?model_dir=...
func (h *Handler) ModelInfo(c *fiber.Ctx) error {
	dir, err := h.resolveModelDir(c.Query("model_dir"))
	if err != nil {
		return h.respondError(c, err)
	}
	info, err := h.forecastService.ModelInfo(dir)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(info)
}

// ReloadModel handles POST /v1/model/reload. An empty body reloads the
// default model directory.
func (h *Handler) ReloadModel(c *fiber.Ctx) error {
	var body models.ReloadRequest
	if len(c.Body()) > 0 {
		if err := h.parseBody(c, &body); err != nil {
			return h.respondError(c, err)
		}
	}

	dir, err := h.resolveModelDir(body.ModelDir)
	if err != nil {
		return h.respondError(c, err)
	}
	model, err := h.forecastService.ReloadModel(dir)
	if err != nil {
		return h.respondError(c, err)
	}

	if dir == "" {
		dir = h.forecastService.DefaultModelDir()
	}
	h.logger.Info("Model reloaded via API", "dir", dir, "run_id", model.RunID)
	return c.JSON(models.ReloadResponse{
		Reloaded: true,
		ModelDir: dir,
		RunID:    model.RunID,
		Model:    model.String(),
	})
}
