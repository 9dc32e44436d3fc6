package services

import (
	"github.com/soltixdb/lagforest/internal/analytics/forecast"
	"github.com/soltixdb/lagforest/internal/analytics/forest"
	"github.com/soltixdb/lagforest/internal/config"
)

// ParamsFromConfig maps the configured hyperparameters onto the engine's
// Params. Unset fields take the engine defaults.
func ParamsFromConfig(hp config.HyperparametersConfig) (forecast.Params, error) {
	p := forecast.Params{
		Kind:                 forest.Kind(hp.Kind),
		NumTrees:             hp.NumTrees,
		Criterion:            forest.Criterion(hp.Criterion),
		MinSamplesSplit:      hp.MinSamplesSplit,
		MinSamplesLeaf:       hp.MinSamplesLeaf,
		MaxDepth:             hp.MaxDepth,
		MaxFeatures:          hp.MaxFeatures,
		Lags:                 append([]int(nil), hp.Lags...),
		Seed:                 hp.RandomState,
		HistoryForecastRatio: hp.HistoryForecastRatio,
	}
	if err := p.SetDefaults(); err != nil {
		return forecast.Params{}, NewServiceError(CodeInvalidParameters, err.Error())
	}
	if err := p.Validate(); err != nil {
		return forecast.Params{}, &ServiceError{Code: CodeInvalidParameters, Message: err.Error(), cause: err}
	}
	return p, nil
}
