package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/lagforest/internal/analytics/forecast"
	"github.com/soltixdb/lagforest/internal/models"
	"github.com/soltixdb/lagforest/internal/services"
)

func jsonReader(s string) io.Reader {
	return strings.NewReader(s)
}

func decodeError(t *testing.T, body io.Reader) models.ErrorResponse {
	t.Helper()
	var errResp models.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&errResp))
	return errResp
}

func TestHandler_Forecast(t *testing.T) {
	h, _ := newTestHandler(t)
	app := newTestApp(h)

	resp := postJSON(t, app, "/v1/forecast", models.ForecastRequest{Rows: futureRows("A", "B", "Z")})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out services.ForecastResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "forecast", out.PredictionColumn)
	assert.Equal(t, 4, out.Count)
	assert.Equal(t, 2, out.Entities)
	for _, row := range out.Rows {
		assert.NotEqual(t, "Z", row["store"])
		assert.NotNil(t, row["forecast"])
	}
}

func TestHandler_Forecast_PredictionColumn(t *testing.T) {
	h, _ := newTestHandler(t)
	app := newTestApp(h)

	resp := postJSON(t, app, "/v1/forecast", models.ForecastRequest{
		Rows:             futureRows("A"),
		PredictionColumn: "yhat",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out services.ForecastResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "yhat", out.PredictionColumn)
	assert.Contains(t, out.Columns, "yhat")
}

func TestHandler_Forecast_Errors(t *testing.T) {
	h, _ := newTestHandler(t)
	app := newTestApp(h)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{
			name:       "no rows",
			body:       models.ForecastRequest{},
			wantStatus: fiber.StatusBadRequest,
			wantCode:   services.CodeInvalidRequest,
		},
		{
			name: "missing identifier column",
			body: models.ForecastRequest{
				Rows: []map[string]interface{}{{"week": "10", "promo": 1.0}},
			},
			wantStatus: fiber.StatusBadRequest,
			wantCode:   services.CodeMissingColumn,
		},
		{
			name: "missing covariate",
			body: models.ForecastRequest{
				Rows: []map[string]interface{}{{"store": "A", "week": "10"}},
			},
			wantStatus: fiber.StatusBadRequest,
			wantCode:   services.CodeMissingColumn,
		},
		{
			name:       "unknown model dir",
			body:       models.ForecastRequest{ModelDir: "nonexistent", Rows: futureRows("A")},
			wantStatus: fiber.StatusNotFound,
			wantCode:   services.CodeModelNotFound,
		},
		{
			name:       "model dir outside the root",
			body:       models.ForecastRequest{ModelDir: "/nonexistent/model", Rows: futureRows("A")},
			wantStatus: fiber.StatusBadRequest,
			wantCode:   services.CodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, app, "/v1/forecast", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, decodeError(t, resp.Body).Error.Code)
		})
	}
}

func TestHandler_Forecast_InvalidJSON(t *testing.T) {
	h, _ := newTestHandler(t)
	app := newTestApp(h)

	req := httptest.NewRequest("POST", "/v1/forecast", jsonReader(`{"rows": [`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, services.CodeInvalidRequest, decodeError(t, resp.Body).Error.Code)
}

func TestHandler_Evaluate(t *testing.T) {
	h, _ := newTestHandler(t)
	app := newTestApp(h)

	rows := futureRows("A", "B")
	for _, r := range rows {
		r["sales"] = 60.0
	}
	resp := postJSON(t, app, "/v1/evaluate", models.EvaluateRequest{Rows: rows})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var eval forecast.Evaluation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&eval))
	assert.Equal(t, []string{"A", "B"}, eval.Entities)
	assert.Equal(t, 4, eval.Overall.Points)
	assert.Contains(t, eval.PerEntity, "A")
}

func TestHandler_Evaluate_MissingTarget(t *testing.T) {
	h, _ := newTestHandler(t)
	app := newTestApp(h)

	resp := postJSON(t, app, "/v1/evaluate", models.EvaluateRequest{Rows: futureRows("A")})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, services.CodeMissingColumn, decodeError(t, resp.Body).Error.Code)
}
