package forecast

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// LagSpec is the sorted, de-duplicated set of lag offsets used as features.
// Lag k refers to the target value k steps before the predicted step.
type LagSpec struct {
	Lags []int
}

// NewLagSpec builds a lag set from explicit offsets
func NewLagSpec(lags ...int) (LagSpec, error) {
	if len(lags) == 0 {
		return LagSpec{}, fmt.Errorf("%w: no lags given", ErrInvalidLags)
	}
	out := slices.Clone(lags)
	slices.Sort(out)
	out = slices.Compact(out)
	if out[0] < 1 {
		return LagSpec{}, fmt.Errorf("%w: lags must be >= 1, got %d", ErrInvalidLags, out[0])
	}
	return LagSpec{Lags: out}, nil
}

// MustLagSpec is like NewLagSpec but panics on invalid input
func MustLagSpec(lags ...int) LagSpec {
	spec, err := NewLagSpec(lags...)
	if err != nil {
		panic(err)
	}
	return spec
}

// Validate checks the lag set invariants
func (l LagSpec) Validate() error {
	if len(l.Lags) == 0 {
		return fmt.Errorf("%w: no lags given", ErrInvalidLags)
	}
	for i, lag := range l.Lags {
		if lag < 1 {
			return fmt.Errorf("%w: lags must be >= 1, got %d", ErrInvalidLags, lag)
		}
		if i > 0 && lag <= l.Lags[i-1] {
			return fmt.Errorf("%w: lags must be strictly increasing", ErrInvalidLags)
		}
	}
	return nil
}

// Max returns the largest lag, which is the history needed before the first
// usable training row
func (l LagSpec) Max() int {
	if len(l.Lags) == 0 {
		return 0
	}
	return l.Lags[len(l.Lags)-1]
}

// Len returns the number of lag features
func (l LagSpec) Len() int {
	return len(l.Lags)
}

func (l LagSpec) String() string {
	parts := make([]string, len(l.Lags))
	for i, lag := range l.Lags {
		parts[i] = strconv.Itoa(lag)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
