package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/soltixdb/lagforest/internal/frame"
)

// CalculateMAPE calculates Mean Absolute Percentage Error, skipping zero actuals
func CalculateMAPE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	count := 0
	for i := range actual {
		if actual[i] != 0 {
			sum += math.Abs((actual[i] - predicted[i]) / actual[i])
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return (sum / float64(count)) * 100
}

// CalculateMAE calculates Mean Absolute Error
func CalculateMAE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}
	return floats.Distance(actual, predicted, 1) / float64(len(actual))
}

// CalculateRMSE calculates Root Mean Squared Error
func CalculateRMSE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}
	d := floats.Distance(actual, predicted, 2)
	return d / math.Sqrt(float64(len(actual)))
}

// Score holds error metrics over a set of points
type Score struct {
	MAE    float64 `json:"mae"`
	RMSE   float64 `json:"rmse"`
	MAPE   float64 `json:"mape"`
	Points int     `json:"points"`
}

func newScore(actual, predicted []float64) Score {
	return Score{
		MAE:    CalculateMAE(actual, predicted),
		RMSE:   CalculateRMSE(actual, predicted),
		MAPE:   CalculateMAPE(actual, predicted),
		Points: len(actual),
	}
}

// Evaluation is the result of scoring a model against held-out data
type Evaluation struct {
	Overall   Score            `json:"overall"`
	PerEntity map[string]Score `json:"per_entity"`
	Entities  []string         `json:"entities"`
}

// Evaluate forecasts test (future covariates plus the actual target values)
// and scores the predictions. Rows whose actual value is missing are
// ignored; entities without a trained model are excluded.
func Evaluate(m *Model, test *frame.Frame) (*Evaluation, error) {
	if m == nil || m.Registry.Len() == 0 {
		return nil, ErrNotFitted
	}
	sch := m.Registry.Schema
	if !test.Has(sch.Target) {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, sch.Target)
	}

	const predColumn = "__predicted"
	pred, err := m.Predict(test.Drop(predColumn), predColumn)
	if err != nil {
		return nil, err
	}
	ids, err := pred.Strings(sch.IDColumn)
	if err != nil {
		return nil, err
	}
	predicted, err := pred.Floats(predColumn)
	if err != nil {
		return nil, err
	}

	actualByID, err := actualValues(test, sch.IDColumn, sch.Target)
	if err != nil {
		return nil, err
	}

	eval := &Evaluation{PerEntity: make(map[string]Score)}
	var allActual, allPred []float64
	for start := 0; start < len(ids); {
		id := ids[start]
		end := start
		for end < len(ids) && ids[end] == id {
			end++
		}

		var a, p []float64
		for i, v := range actualByID[id] {
			if math.IsNaN(v) {
				continue
			}
			a = append(a, v)
			p = append(p, predicted[start+i])
		}
		eval.PerEntity[id] = newScore(a, p)
		eval.Entities = append(eval.Entities, id)
		allActual = append(allActual, a...)
		allPred = append(allPred, p...)
		start = end
	}
	eval.Overall = newScore(allActual, allPred)
	return eval, nil
}

// actualValues groups the target column by identifier in row order
func actualValues(f *frame.Frame, idColumn, target string) (map[string][]float64, error) {
	ids, err := f.Strings(idColumn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingColumn, err)
	}
	values, err := f.Floats(target)
	if err != nil {
		return nil, fmt.Errorf("target column: %w", err)
	}
	out := make(map[string][]float64)
	for i, id := range ids {
		out[id] = append(out[id], values[i])
	}
	return out, nil
}
