package forecast

import (
	"fmt"
	"math"

	"github.com/soltixdb/lagforest/internal/analytics/forest"
)

// Regressor is the fit/predict capability an entity model wraps
type Regressor interface {
	// Fit trains on a design matrix and its labels
	Fit(x [][]float64, y []float64) error
	// Predict returns the prediction for one feature vector
	Predict(x []float64) (float64, error)
	// NumFeatures returns the feature width seen at fit time
	NumFeatures() int
	// Validate checks the fitted state, e.g. after decoding
	Validate() error
}

// NewRegressor creates an unfitted regressor from a tagged configuration
func NewRegressor(cfg forest.Config) (Regressor, error) {
	switch cfg.Kind {
	case forest.RandomForest, forest.ExtraTrees:
		return forest.New(cfg)
	default:
		return nil, fmt.Errorf("unsupported regressor kind: %q", cfg.Kind)
	}
}

// EntityModel is a fitted regressor bound to one entity, with everything
// needed to reproduce its feature layout at prediction time. Exported
// fields exist for persistence; the model is not modified after fitting.
type EntityModel struct {
	ID         string
	Lags       LagSpec
	Covariates []string
	Regressor  Regressor

	// Window holds the last Lags.Max() training targets, oldest first
	Window    []float64
	TrainRows int
	Seed      uint64
}

// FitEntityModel builds the design for a series, fits a regressor with the
// given seed and returns the bound model. The last Lags.Max() targets seed
// the forecast window, so a missing value among them fails with
// ErrInsufficientHistory.
func FitEntityModel(series SeriesHistory, lags LagSpec, cfg forest.Config, historyLimit int) (*EntityModel, error) {
	design, err := BuildDesign(series, lags, historyLimit)
	if err != nil {
		return nil, err
	}

	tail := series.Tail(historyLimit).Target
	window := append([]float64(nil), tail[len(tail)-lags.Max():]...)
	for i, v := range window {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: target %d steps before the forecast start is missing",
				ErrInsufficientHistory, len(window)-i)
		}
	}

	reg, err := NewRegressor(cfg)
	if err != nil {
		return nil, err
	}
	if err := reg.Fit(design.X, design.Y); err != nil {
		return nil, fmt.Errorf("fit failed: %w", err)
	}

	return &EntityModel{
		ID:         series.ID,
		Lags:       LagSpec{Lags: append([]int(nil), lags.Lags...)},
		Covariates: append([]string(nil), series.CovariateNames...),
		Regressor:  reg,
		Window:     window,
		TrainRows:  design.Rows(),
		Seed:       cfg.Seed,
	}, nil
}

// NumFeatures returns the feature width: one per lag plus one per covariate
func (m *EntityModel) NumFeatures() int {
	return m.Lags.Len() + len(m.Covariates)
}
