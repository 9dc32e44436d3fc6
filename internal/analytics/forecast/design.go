package forecast

import (
	"fmt"
	"math"
)

// Design is a supervised design matrix built from one series
type Design struct {
	X            [][]float64
	Y            []float64
	FeatureNames []string
}

// Rows returns the number of usable training rows
func (d Design) Rows() int {
	return len(d.Y)
}

// FeatureNames returns the feature layout for a lag set and covariates:
// one column per lag in ascending order, then the covariates
func FeatureNames(lags LagSpec, covariates []string) []string {
	names := make([]string, 0, lags.Len()+len(covariates))
	for _, lag := range lags.Lags {
		names = append(names, fmt.Sprintf("lag_%d", lag))
	}
	return append(names, covariates...)
}

// BuildDesign builds the lagged design matrix of a series. Row t has the
// features target[t-lag] for every lag followed by the covariates at t, and
// label target[t]. Rows reaching before the start of the series, or touching
// a missing value, are dropped. When historyLimit > 0 only the most recent
// historyLimit observations are used.
func BuildDesign(series SeriesHistory, lags LagSpec, historyLimit int) (Design, error) {
	if err := lags.Validate(); err != nil {
		return Design{}, err
	}
	if series.Covariates != nil && len(series.Covariates) != len(series.Target) {
		return Design{}, fmt.Errorf("series %q has %d targets but %d covariate rows",
			series.ID, len(series.Target), len(series.Covariates))
	}

	s := series.Tail(historyLimit)
	maxLag := lags.Max()
	d := Design{FeatureNames: FeatureNames(lags, s.CovariateNames)}
	width := len(d.FeatureNames)

rows:
	for t := maxLag; t < s.Len(); t++ {
		if math.IsNaN(s.Target[t]) {
			continue
		}
		row := make([]float64, 0, width)
		for _, lag := range lags.Lags {
			v := s.Target[t-lag]
			if math.IsNaN(v) {
				continue rows
			}
			row = append(row, v)
		}
		for _, v := range s.covariatesAt(t) {
			if math.IsNaN(v) {
				continue rows
			}
			row = append(row, v)
		}
		d.X = append(d.X, row)
		d.Y = append(d.Y, s.Target[t])
	}

	if len(d.Y) == 0 {
		return Design{}, fmt.Errorf("%w: %d observations, max lag %d", ErrInsufficientHistory, s.Len(), maxLag)
	}
	return d, nil
}
