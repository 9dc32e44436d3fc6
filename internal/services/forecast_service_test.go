package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/lagforest/internal/frame"
	"github.com/soltixdb/lagforest/internal/logging"
	"github.com/soltixdb/lagforest/internal/modelstore"
)

type predictionCounter struct {
	calls, failures, rows int
}

func (p *predictionCounter) PredictionServed(rows int, _ time.Duration, err error) {
	p.calls++
	if err != nil {
		p.failures++
	}
	p.rows += rows
}

func TestForecastService_ForecastFromRecords(t *testing.T) {
	store, _ := trainedStore(t, "A", "B")
	obs := &predictionCounter{}
	svc := NewForecastService(logging.NewNop(), store, obs, "forecast")

	resp, err := svc.Forecast(context.Background(), &ForecastRequest{
		Records: futureRecords([]string{"B", "C", "A"}, 3),
	})
	require.NoError(t, err)

	assert.Equal(t, 6, resp.Count)
	assert.Equal(t, 2, resp.Entities)
	assert.Equal(t, "forecast", resp.PredictionColumn)
	assert.Equal(t, "store", resp.Columns[0])
	assert.Contains(t, resp.Columns, "forecast")
	assert.NotContains(t, resp.Columns, "sales")
	assert.Equal(t, "Model name: RandomForest Forecaster", resp.Model)

	// Training order, not request order
	assert.Equal(t, "A", resp.Rows[0]["store"])
	assert.Equal(t, "B", resp.Rows[3]["store"])
	for _, row := range resp.Rows {
		v, ok := row["forecast"].(float64)
		require.True(t, ok)
		assert.False(t, math.IsNaN(v))
	}

	assert.Equal(t, 1, obs.calls)
	assert.Equal(t, 6, obs.rows)
}

func TestForecastService_RequestPredictionColumnWins(t *testing.T) {
	store, _ := trainedStore(t, "A")
	svc := NewForecastService(logging.NewNop(), store, nil, "forecast")

	resp, err := svc.Forecast(context.Background(), &ForecastRequest{
		Records:          futureRecords([]string{"A"}, 3),
		PredictionColumn: "yhat",
	})
	require.NoError(t, err)
	assert.Equal(t, "yhat", resp.PredictionColumn)
	assert.Contains(t, resp.Columns, "yhat")
}

func TestForecastService_DefaultsToTargetName(t *testing.T) {
	store, _ := trainedStore(t, "A")
	svc := NewForecastService(logging.NewNop(), store, nil, "")

	resp, err := svc.Forecast(context.Background(), &ForecastRequest{
		Records: futureRecords([]string{"A"}, 3),
	})
	require.NoError(t, err)
	assert.Equal(t, "sales", resp.PredictionColumn)
}

func TestForecastService_OnlyUnknownEntities(t *testing.T) {
	store, _ := trainedStore(t, "A")
	svc := NewForecastService(logging.NewNop(), store, nil, "forecast")

	resp, err := svc.Forecast(context.Background(), &ForecastRequest{
		Records: futureRecords([]string{"Z"}, 3),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Count)
	assert.Empty(t, resp.Rows)
	assert.Contains(t, resp.Columns, "forecast")
}

func TestForecastService_Errors(t *testing.T) {
	store, _ := trainedStore(t, "A")
	obs := &predictionCounter{}
	svc := NewForecastService(logging.NewNop(), store, obs, "forecast")

	tests := []struct {
		name string
		req  *ForecastRequest
		code string
	}{
		{"no rows", &ForecastRequest{}, CodeInvalidRequest},
		{
			"missing id column",
			&ForecastRequest{Records: []map[string]interface{}{{"promo": 1.0}}, Columns: []string{"promo"}},
			CodeMissingColumn,
		},
		{
			"missing covariate",
			&ForecastRequest{Records: []map[string]interface{}{{"store": "A"}}},
			CodeMissingColumn,
		},
		{
			"unknown model dir",
			&ForecastRequest{ModelDir: t.TempDir(), Records: futureRecords([]string{"A"}, 3)},
			CodeModelNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Forecast(context.Background(), tt.req)
			var se *ServiceError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.code, se.Code)
		})
	}
	assert.Equal(t, len(tests), obs.failures)
}

func TestForecastService_NoDefaultModel(t *testing.T) {
	store, err := modelstore.New(modelstore.Config{Size: 1}, modelstore.WithLogger(logging.NewNop()))
	require.NoError(t, err)
	svc := NewForecastService(logging.NewNop(), store, nil, "")

	_, err = svc.ModelInfo("")
	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, CodeModelNotFound, se.Code)
	assert.True(t, errors.Is(err, modelstore.ErrNoModelDir))
}

func TestForecastService_ForecastFromFrame(t *testing.T) {
	store, _ := trainedStore(t, "A", "B")
	svc := NewForecastService(logging.NewNop(), store, nil, "forecast")

	future, err := frame.FromRecords(futureRecords([]string{"A"}, 3), []string{"store", "week", "promo"}, "store", "week")
	require.NoError(t, err)

	resp, err := svc.Forecast(context.Background(), &ForecastRequest{Future: future})
	require.NoError(t, err)
	require.NotNil(t, resp.Frame)
	assert.Equal(t, 3, resp.Frame.Len())
	assert.Equal(t, []string{"store", "week", "promo", "forecast"}, resp.Columns)
}

func TestForecastService_Evaluate(t *testing.T) {
	store, _ := trainedStore(t, "A", "B")
	svc := NewForecastService(logging.NewNop(), store, nil, "")

	test := historyFrame(t, []string{"A", "B"}, 3)
	eval, err := svc.Evaluate(context.Background(), "", test)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, eval.Entities)
	assert.Equal(t, 6, eval.Overall.Points)
	assert.GreaterOrEqual(t, eval.Overall.RMSE, eval.Overall.MAE)
}

func TestForecastService_EvaluateRecords(t *testing.T) {
	store, _ := trainedStore(t, "A")
	svc := NewForecastService(logging.NewNop(), store, nil, "")

	records := futureRecords([]string{"A"}, 3)
	for i, r := range records {
		r["sales"] = 100.0 + float64(i)
	}
	eval, err := svc.EvaluateRecords(context.Background(), "", records, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, eval.Entities)
	assert.Equal(t, 3, eval.Overall.Points)

	_, err = svc.EvaluateRecords(context.Background(), "", nil, nil)
	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, CodeInvalidRequest, se.Code)
}

func TestForecastService_ModelInfo(t *testing.T) {
	store, _ := trainedStore(t, "A", "B")
	svc := NewForecastService(logging.NewNop(), store, nil, "")

	info, err := svc.ModelInfo("")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, info.Entities)
	assert.Equal(t, []int{1, 2}, info.Lags)
	assert.Equal(t, 3, info.ForecastLength)
	assert.NotEmpty(t, info.RunID)
}

func TestRecordColumns(t *testing.T) {
	cols := recordColumns([]map[string]interface{}{
		{"promo": 1, "store": "A"},
		{"week": "w1", "price": 2.5},
	}, "store")
	assert.Equal(t, []string{"store", "price", "promo", "week"}, cols)
}
