package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/lagforest/internal/analytics/forecast"
	"github.com/soltixdb/lagforest/internal/frame"
	"github.com/soltixdb/lagforest/internal/logging"
	"github.com/soltixdb/lagforest/internal/modelstore"
	"github.com/soltixdb/lagforest/internal/schema"
	"github.com/soltixdb/lagforest/internal/services"
)

var testSchema = schema.Schema{
	IDColumn:         "store",
	TimeColumn:       "week",
	Target:           "sales",
	FutureCovariates: []string{"promo"},
	ForecastLength:   2,
}

// trainModel fits a small model for stores A and B and saves it in dir
func trainModel(t *testing.T, dir string) {
	t.Helper()
	var ids, weeks []string
	var sales, promo []float64
	for w := 0; w < 10; w++ {
		for s, id := range []string{"A", "B"} {
			ids = append(ids, id)
			weeks = append(weeks, strconv.Itoa(w))
			sales = append(sales, float64(50*(s+1))+5*math.Cos(float64(w)))
			promo = append(promo, float64(w%2))
		}
	}
	history := frame.New()
	require.NoError(t, history.SetStrings("store", ids))
	require.NoError(t, history.SetStrings("week", weeks))
	require.NoError(t, history.SetFloats("sales", sales))
	require.NoError(t, history.SetFloats("promo", promo))

	params := forecast.DefaultParams()
	params.NumTrees = 4
	params.Lags = []int{1, 2}
	params.Seed = 3

	svc := services.NewTrainingService(logging.NewNop(), nil, nil, nil, services.TrainingOptions{Workers: 2})
	_, err := svc.Train(t.Context(), &services.TrainRequest{
		History:  history,
		Schema:   testSchema,
		Params:   params,
		ModelDir: dir,
	})
	require.NoError(t, err)
}

// newHandlerForDir returns a handler whose default model directory is dir
func newHandlerForDir(t *testing.T, dir string) *Handler {
	t.Helper()
	store, err := modelstore.New(modelstore.Config{Size: 2, DefaultDir: dir}, modelstore.WithLogger(logging.NewNop()))
	require.NoError(t, err)
	svc := services.NewForecastService(logging.NewNop(), store, nil, "forecast")
	return New(logging.NewNop(), svc, "test")
}

// newTestHandler trains a model and returns a handler serving it
func newTestHandler(t *testing.T) (*Handler, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "model")
	trainModel(t, dir)
	return newHandlerForDir(t, dir), dir
}

func newTestApp(h *Handler) *fiber.App {
	app := fiber.New()
	app.Post("/v1/forecast", h.Forecast)
	app.Post("/v1/evaluate", h.Evaluate)
	app.Get("/v1/model", h.ModelInfo)
	app.Post("/v1/model/reload", h.ReloadModel)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func futureRows(stores ...string) []map[string]interface{} {
	var rows []map[string]interface{}
	for _, id := range stores {
		for w := 10; w < 12; w++ {
			rows = append(rows, map[string]interface{}{
				"store": id,
				"week":  strconv.Itoa(w),
				"promo": float64(w % 2),
			})
		}
	}
	return rows
}
