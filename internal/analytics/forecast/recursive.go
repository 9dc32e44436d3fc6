package forecast

import (
	"fmt"

	"github.com/soltixdb/lagforest/internal/frame"
)

// window is a fixed-capacity ring of the most recent observed or predicted
// target values
type window struct {
	buf  []float64
	head int // index of the oldest value
}

func newWindow(seed []float64) *window {
	return &window{buf: append([]float64(nil), seed...)}
}

// lag returns the value k steps before the next step; lag(1) is the newest
func (w *window) lag(k int) float64 {
	n := len(w.buf)
	return w.buf[((w.head-k)%n+n)%n]
}

// push overwrites the oldest value
func (w *window) push(v float64) {
	w.buf[w.head] = v
	w.head = (w.head + 1) % len(w.buf)
}

// Forecast predicts one value per row of future, in row order. Each step's
// lag features read the window, so later steps depend on earlier
// predictions that fall within the lag range.
func (m *EntityModel) Forecast(future *frame.Frame) ([]float64, error) {
	if m == nil || m.Regressor == nil {
		return nil, ErrNotFitted
	}
	if len(m.Window) != m.Lags.Max() {
		return nil, fmt.Errorf("%w: entity %q window has %d values, expected %d",
			ErrMalformedState, m.ID, len(m.Window), m.Lags.Max())
	}

	covariates, err := covariateColumns(future, m.Covariates)
	if err != nil {
		return nil, err
	}

	h := future.Len()
	out := make([]float64, h)
	w := newWindow(m.Window)
	x := make([]float64, m.NumFeatures())
	for i := 0; i < h; i++ {
		for j, lag := range m.Lags.Lags {
			x[j] = w.lag(lag)
		}
		for j, col := range covariates {
			x[m.Lags.Len()+j] = col[i]
		}

		y, err := m.Regressor.Predict(x)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		out[i] = y
		w.push(y)
	}
	return out, nil
}
