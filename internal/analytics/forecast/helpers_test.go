package forecast

import (
	"math"
	"strconv"
	"testing"

	"github.com/soltixdb/lagforest/internal/frame"
	"github.com/soltixdb/lagforest/internal/schema"
)

// Common test data and helpers for all forecast tests

var testSchema = schema.Schema{
	IDColumn:       "id",
	TimeColumn:     "t",
	Target:         "y",
	ForecastLength: 3,
}

var testCovariateSchema = schema.Schema{
	IDColumn:         "id",
	Target:           "y",
	FutureCovariates: []string{"promo"},
	ForecastLength:   3,
}

// generateHistory creates interleaved rows for the given entities, each with
// n observations of a seasonal-ish pattern offset per entity
func generateHistory(t *testing.T, ids []string, n int) *frame.Frame {
	t.Helper()
	var idCol, tCol []string
	var y, promo []float64
	for step := 0; step < n; step++ {
		for e, id := range ids {
			idCol = append(idCol, id)
			tCol = append(tCol, strconv.Itoa(step))
			y = append(y, float64(10*(e+1))+5*math.Sin(float64(step))+float64(step%4))
			promo = append(promo, float64(step%2))
		}
	}
	return buildFrame(t, idCol, tCol, y, promo)
}

// generateFuture creates h future rows per entity with unknown targets
func generateFuture(t *testing.T, ids []string, h int) *frame.Frame {
	t.Helper()
	var idCol, tCol []string
	var y, promo []float64
	for _, id := range ids {
		for step := 0; step < h; step++ {
			idCol = append(idCol, id)
			tCol = append(tCol, "f"+strconv.Itoa(step))
			y = append(y, math.NaN())
			promo = append(promo, float64(step%2))
		}
	}
	return buildFrame(t, idCol, tCol, y, promo)
}

func buildFrame(t *testing.T, ids, times []string, y, promo []float64) *frame.Frame {
	t.Helper()
	f := frame.New()
	mustNoErr(t, f.SetStrings("id", ids))
	mustNoErr(t, f.SetStrings("t", times))
	mustNoErr(t, f.SetFloats("y", y))
	mustNoErr(t, f.SetFloats("promo", promo))
	return f
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// testParams returns small, fast hyperparameters
func testParams(lags ...int) Params {
	p := DefaultParams()
	p.NumTrees = 8
	p.Seed = 3
	if len(lags) > 0 {
		p.Lags = lags
	}
	return p
}

// stepRegressor predicts the first feature plus one, for checking recursion
type stepRegressor struct {
	width int
}

func (s *stepRegressor) Fit(x [][]float64, y []float64) error { return nil }

func (s *stepRegressor) Predict(x []float64) (float64, error) {
	return x[0] + 1, nil
}

func (s *stepRegressor) NumFeatures() int { return s.width }

func (s *stepRegressor) Validate() error { return nil }
