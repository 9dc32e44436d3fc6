package forecast

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func seriesOf(values ...float64) SeriesHistory {
	return SeriesHistory{ID: "s", Target: values}
}

func TestBuildDesign_Layout(t *testing.T) {
	s := SeriesHistory{
		ID:             "s",
		Target:         []float64{1, 2, 3, 4, 5},
		Covariates:     [][]float64{{10}, {20}, {30}, {40}, {50}},
		CovariateNames: []string{"promo"},
	}
	d, err := BuildDesign(s, MustLagSpec(1, 3), 0)
	if err != nil {
		t.Fatalf("BuildDesign failed: %v", err)
	}

	if !slices.Equal(d.FeatureNames, []string{"lag_1", "lag_3", "promo"}) {
		t.Errorf("Unexpected feature names: %v", d.FeatureNames)
	}
	if d.Rows() != 2 {
		t.Fatalf("Expected 2 rows, got %d", d.Rows())
	}
	// row for t=3: lag1=target[2], lag3=target[0], promo at t
	if !slices.Equal(d.X[0], []float64{3, 1, 40}) || d.Y[0] != 4 {
		t.Errorf("Unexpected first row: %v -> %v", d.X[0], d.Y[0])
	}
	if !slices.Equal(d.X[1], []float64{4, 2, 50}) || d.Y[1] != 5 {
		t.Errorf("Unexpected second row: %v -> %v", d.X[1], d.Y[1])
	}
}

func TestBuildDesign_Boundary(t *testing.T) {
	lags := MustLagSpec(1, 2, 4)

	d, err := BuildDesign(seriesOf(1, 2, 3, 4, 5), lags, 0)
	if err != nil {
		t.Fatalf("Expected max(lag)+1 observations to fit, got %v", err)
	}
	if d.Rows() != 1 {
		t.Errorf("Expected exactly one row, got %d", d.Rows())
	}

	for n := 0; n <= lags.Max(); n++ {
		values := make([]float64, n)
		if _, err := BuildDesign(seriesOf(values...), lags, 0); !errors.Is(err, ErrInsufficientHistory) {
			t.Errorf("n=%d: expected ErrInsufficientHistory, got %v", n, err)
		}
	}
}

func TestBuildDesign_HistoryLimit(t *testing.T) {
	s := seriesOf(1, 2, 3, 4, 5, 6, 7, 8)
	d, err := BuildDesign(s, MustLagSpec(1), 3)
	if err != nil {
		t.Fatalf("BuildDesign failed: %v", err)
	}
	if d.Rows() != 2 {
		t.Fatalf("Expected 2 rows from the last 3 observations, got %d", d.Rows())
	}
	if d.X[0][0] != 6 || d.Y[0] != 7 {
		t.Errorf("Expected truncation before lagging, got %v -> %v", d.X[0], d.Y[0])
	}

	if _, err := BuildDesign(s, MustLagSpec(3), 3); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("Expected truncated history to be insufficient, got %v", err)
	}
}

func TestBuildDesign_MissingValues(t *testing.T) {
	s := seriesOf(1, math.NaN(), 3, 4, 5)
	d, err := BuildDesign(s, MustLagSpec(1), 0)
	if err != nil {
		t.Fatalf("BuildDesign failed: %v", err)
	}
	// t=1 (NaN label) and t=2 (NaN lag) are dropped
	if d.Rows() != 2 {
		t.Errorf("Expected 2 rows, got %d", d.Rows())
	}
}

func TestBuildDesign_MisalignedCovariates(t *testing.T) {
	s := SeriesHistory{ID: "s", Target: []float64{1, 2, 3}, Covariates: [][]float64{{1}}, CovariateNames: []string{"c"}}
	if _, err := BuildDesign(s, MustLagSpec(1), 0); err == nil {
		t.Error("Expected error for misaligned covariates")
	}
}
