package forecast

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestCalculateMetrics(t *testing.T) {
	actual := []float64{10, 20, 30, 40}
	predicted := []float64{12, 18, 33, 40}

	if got := CalculateMAE(actual, predicted); math.Abs(got-1.75) > 1e-9 {
		t.Errorf("MAE = %v, want 1.75", got)
	}
	if got := CalculateRMSE(actual, predicted); math.Abs(got-math.Sqrt(17.0/4)) > 1e-9 {
		t.Errorf("RMSE = %v, want %v", got, math.Sqrt(17.0/4))
	}
	wantMAPE := (0.2 + 0.1 + 0.1 + 0) / 4 * 100
	if got := CalculateMAPE(actual, predicted); math.Abs(got-wantMAPE) > 1e-9 {
		t.Errorf("MAPE = %v, want %v", got, wantMAPE)
	}
}

func TestCalculateMetrics_Degenerate(t *testing.T) {
	if CalculateMAE(nil, nil) != 0 || CalculateRMSE([]float64{1}, []float64{1, 2}) != 0 {
		t.Error("Expected zero for empty or mismatched input")
	}
	if CalculateMAPE([]float64{0, 0}, []float64{1, 2}) != 0 {
		t.Error("Expected zero MAPE when all actuals are zero")
	}
}

func TestEvaluate(t *testing.T) {
	m, err := Train(context.Background(), generateHistory(t, []string{"A", "B"}, 12), testSchema, testParams(1, 2))
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	test := generateHistory(t, []string{"B", "A", "Q"}, 3)
	eval, err := Evaluate(m, test)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(eval.Entities) != 2 || eval.Entities[0] != "A" || eval.Entities[1] != "B" {
		t.Errorf("Unexpected entities: %v", eval.Entities)
	}
	if eval.Overall.Points != 6 || eval.PerEntity["A"].Points != 3 {
		t.Errorf("Unexpected point counts: %+v", eval)
	}
	if eval.Overall.RMSE < eval.Overall.MAE {
		t.Errorf("RMSE %v should not be below MAE %v", eval.Overall.RMSE, eval.Overall.MAE)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	if _, err := Evaluate(nil, generateHistory(t, []string{"A"}, 3)); !errors.Is(err, ErrNotFitted) {
		t.Errorf("Expected ErrNotFitted, got %v", err)
	}

	m, err := Train(context.Background(), generateHistory(t, []string{"A"}, 12), testSchema, testParams(1))
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if _, err := Evaluate(m, generateHistory(t, []string{"A"}, 3).Drop("y")); !errors.Is(err, ErrMissingColumn) {
		t.Errorf("Expected ErrMissingColumn, got %v", err)
	}
}
