package forecast

import (
	"fmt"

	"github.com/soltixdb/lagforest/internal/frame"
)

// SeriesHistory is one entity's ordered observations. Covariates[i] holds
// the covariate values at timestep i, in CovariateNames order.
type SeriesHistory struct {
	ID             string
	Target         []float64
	Covariates     [][]float64
	CovariateNames []string
}

// SeriesFromFrame extracts a series from one entity's partition
func SeriesFromFrame(id string, f *frame.Frame, target string, covariates []string) (SeriesHistory, error) {
	y, err := f.Floats(target)
	if err != nil {
		return SeriesHistory{}, fmt.Errorf("%w: target: %v", ErrMissingColumn, err)
	}

	cols, err := covariateColumns(f, covariates)
	if err != nil {
		return SeriesHistory{}, err
	}

	s := SeriesHistory{
		ID:             id,
		Target:         append([]float64(nil), y...),
		CovariateNames: append([]string(nil), covariates...),
	}
	if len(cols) > 0 {
		s.Covariates = make([][]float64, len(y))
		for i := range y {
			row := make([]float64, len(cols))
			for j, c := range cols {
				row[j] = c[i]
			}
			s.Covariates[i] = row
		}
	}
	return s, nil
}

// covariateColumns resolves the numeric covariate columns of f
func covariateColumns(f *frame.Frame, names []string) ([][]float64, error) {
	cols := make([][]float64, len(names))
	for i, name := range names {
		values, err := f.Floats(name)
		if err != nil {
			return nil, fmt.Errorf("%w: covariate: %v", ErrMissingColumn, err)
		}
		cols[i] = values
	}
	return cols, nil
}

// Len returns the number of observations
func (s SeriesHistory) Len() int {
	return len(s.Target)
}

// Tail returns the most recent n observations. n <= 0 keeps everything.
func (s SeriesHistory) Tail(n int) SeriesHistory {
	if n <= 0 || n >= len(s.Target) {
		return s
	}
	start := len(s.Target) - n
	out := s
	out.Target = s.Target[start:]
	if s.Covariates != nil {
		out.Covariates = s.Covariates[start:]
	}
	return out
}

// covariatesAt returns the covariates of timestep i, or nil without covariates
func (s SeriesHistory) covariatesAt(i int) []float64 {
	if s.Covariates == nil {
		return nil
	}
	return s.Covariates[i]
}
