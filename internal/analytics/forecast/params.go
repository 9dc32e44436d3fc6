package forecast

import (
	"errors"
	"fmt"
	"math"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"github.com/soltixdb/lagforest/internal/analytics/forest"
)

var validate = validator.New()

// Params is the hyperparameter surface of a training run
type Params struct {
	Kind            forest.Kind      `mapstructure:"kind" json:"kind" default:"random_forest" validate:"oneof=random_forest extra_trees"`
	NumTrees        int              `mapstructure:"n_estimators" json:"n_estimators" default:"50" validate:"gte=1"`
	Criterion       forest.Criterion `mapstructure:"criterion" json:"criterion" default:"squared_error" validate:"oneof=squared_error friedman_mse absolute_error poisson"`
	MinSamplesSplit float64          `mapstructure:"min_samples_split" json:"min_samples_split" default:"2" validate:"gt=0"`
	MinSamplesLeaf  float64          `mapstructure:"min_samples_leaf" json:"min_samples_leaf" default:"1" validate:"gt=0"`
	MaxDepth        int              `mapstructure:"max_depth" json:"max_depth,omitempty" validate:"gte=0"`
	MaxFeatures     float64          `mapstructure:"max_features" json:"max_features,omitempty" validate:"gte=0,lte=1"`
	Lags            []int            `mapstructure:"lags" json:"lags" default:"[2,5,7]" validate:"min=1,dive,gte=1"`
	Seed            uint64           `mapstructure:"random_state" json:"random_state"`

	// HistoryForecastRatio bounds each entity's training history to
	// floor(forecast_length * ratio) observations; 0 disables truncation
	HistoryForecastRatio float64 `mapstructure:"history_forecast_ratio" json:"history_forecast_ratio,omitempty" validate:"gte=0"`
}

// DefaultParams returns the default hyperparameters
func DefaultParams() Params {
	var p Params
	_ = defaults.Set(&p)
	return p
}

// SetDefaults fills unset fields with their defaults
func (p *Params) SetDefaults() error {
	return defaults.Set(p)
}

// Validate checks the hyperparameters
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid hyperparameter %s: failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return err
	}
	if _, err := p.LagSpec(); err != nil {
		return err
	}
	return p.Forest(p.Seed).Validate()
}

// LagSpec returns the normalized lag set
func (p Params) LagSpec() (LagSpec, error) {
	return NewLagSpec(p.Lags...)
}

// Forest returns the regressor configuration with the given seed
func (p Params) Forest(seed uint64) forest.Config {
	return forest.Config{
		Kind:            p.Kind,
		NumTrees:        p.NumTrees,
		Criterion:       p.Criterion,
		MinSamplesSplit: p.MinSamplesSplit,
		MinSamplesLeaf:  p.MinSamplesLeaf,
		MaxDepth:        p.MaxDepth,
		MaxFeatures:     p.MaxFeatures,
		Seed:            seed,
	}
}

// HistoryLimit returns the per-entity history window for a horizon. The
// product is floored and never below one observation; 0 means unlimited.
func (p Params) HistoryLimit(forecastLength int) int {
	if p.HistoryForecastRatio <= 0 {
		return 0
	}
	n := int(math.Floor(float64(forecastLength) * p.HistoryForecastRatio))
	return max(n, 1)
}

// DeriveSeed mixes the base seed with an entity's training-time index
// (splitmix64), so every entity gets an independent, reproducible stream
// regardless of which worker fits it
func DeriveSeed(base uint64, index int) uint64 {
	z := base + uint64(index+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
