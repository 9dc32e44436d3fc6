package services

import (
	"math"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soltixdb/lagforest/internal/analytics/forecast"
	"github.com/soltixdb/lagforest/internal/frame"
	"github.com/soltixdb/lagforest/internal/logging"
	"github.com/soltixdb/lagforest/internal/modelstore"
	"github.com/soltixdb/lagforest/internal/schema"
)

var testSchema = schema.Schema{
	IDColumn:         "store",
	TimeColumn:       "week",
	Target:           "sales",
	FutureCovariates: []string{"promo"},
	ForecastLength:   3,
}

func testParams() forecast.Params {
	p := forecast.DefaultParams()
	p.NumTrees = 6
	p.Lags = []int{1, 2}
	p.Seed = 11
	return p
}

// historyFrame builds n weekly rows for each store
func historyFrame(t *testing.T, stores []string, n int) *frame.Frame {
	t.Helper()
	var ids, weeks []string
	var sales, promo []float64
	for w := 0; w < n; w++ {
		for s, id := range stores {
			ids = append(ids, id)
			weeks = append(weeks, strconv.Itoa(w))
			sales = append(sales, float64(100*(s+1))+10*math.Sin(float64(w)))
			promo = append(promo, float64(w%2))
		}
	}
	f := frame.New()
	require.NoError(t, f.SetStrings("store", ids))
	require.NoError(t, f.SetStrings("week", weeks))
	require.NoError(t, f.SetFloats("sales", sales))
	require.NoError(t, f.SetFloats("promo", promo))
	return f
}

// futureRecords builds h JSON-style rows for each store
func futureRecords(stores []string, h int) []map[string]interface{} {
	var out []map[string]interface{}
	for _, id := range stores {
		for w := 0; w < h; w++ {
			out = append(out, map[string]interface{}{
				"store": id,
				"week":  "f" + strconv.Itoa(w),
				"promo": float64(w % 2),
			})
		}
	}
	return out
}

// trainedStore trains a model for stores, saves it and returns a store
// whose default directory holds it
func trainedStore(t *testing.T, stores ...string) (*modelstore.Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "model")
	svc := NewTrainingService(logging.NewNop(), nil, nil, nil, TrainingOptions{Workers: 2})
	_, err := svc.Train(t.Context(), &TrainRequest{
		History:  historyFrame(t, stores, 12),
		Schema:   testSchema,
		Params:   testParams(),
		ModelDir: dir,
	})
	require.NoError(t, err)

	store, err := modelstore.New(modelstore.Config{Size: 2, DefaultDir: dir}, modelstore.WithLogger(logging.NewNop()))
	require.NoError(t, err)
	return store, dir
}
