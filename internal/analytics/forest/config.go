package forest

import (
	"fmt"
	"math"
	"slices"
)

// Kind selects the ensemble construction strategy
type Kind string

const (
	RandomForest Kind = "random_forest"
	ExtraTrees   Kind = "extra_trees"
)

// Criterion is the split quality function
type Criterion string

const (
	SquaredError  Criterion = "squared_error"
	FriedmanMSE   Criterion = "friedman_mse"
	AbsoluteError Criterion = "absolute_error"
	Poisson       Criterion = "poisson"
)

// Kinds lists the supported ensemble kinds
func Kinds() []Kind {
	return []Kind{RandomForest, ExtraTrees}
}

// Criteria lists the supported split criteria
func Criteria() []Criterion {
	return []Criterion{SquaredError, FriedmanMSE, AbsoluteError, Poisson}
}

// Config is the tagged regressor configuration. MinSamplesSplit and
// MinSamplesLeaf follow the int-or-fraction convention: values >= 1 are
// absolute counts, values in (0, 1) are fractions of the training rows
// (rounded up).
type Config struct {
	Kind            Kind      `json:"kind"`
	NumTrees        int       `json:"n_estimators"`
	Criterion       Criterion `json:"criterion"`
	MinSamplesSplit float64   `json:"min_samples_split"`
	MinSamplesLeaf  float64   `json:"min_samples_leaf"`
	MaxDepth        int       `json:"max_depth,omitempty"`    // 0 means unlimited
	MaxFeatures     float64   `json:"max_features,omitempty"` // 0 or 1 means all features
	Seed            uint64    `json:"seed"`
}

// DefaultConfig returns the default random forest configuration
func DefaultConfig() Config {
	return Config{
		Kind:            RandomForest,
		NumTrees:        50,
		Criterion:       SquaredError,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if !slices.Contains(Kinds(), c.Kind) {
		return fmt.Errorf("unsupported ensemble kind: %q, expected one of %v", c.Kind, Kinds())
	}

	if !slices.Contains(Criteria(), c.Criterion) {
		return fmt.Errorf("unsupported criterion: %q, expected one of %v", c.Criterion, Criteria())
	}

	if c.NumTrees < 1 {
		return fmt.Errorf("n_estimators must be at least 1, got %d", c.NumTrees)
	}

	if c.MinSamplesSplit <= 0 || (c.MinSamplesSplit >= 1 && c.MinSamplesSplit < 2) {
		return fmt.Errorf("min_samples_split must be a fraction in (0,1) or a count >= 2, got %v", c.MinSamplesSplit)
	}

	if c.MinSamplesLeaf <= 0 {
		return fmt.Errorf("min_samples_leaf must be positive, got %v", c.MinSamplesLeaf)
	}

	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth cannot be negative, got %d", c.MaxDepth)
	}

	if c.MaxFeatures < 0 || c.MaxFeatures > 1 {
		return fmt.Errorf("max_features must be in [0,1], got %v", c.MaxFeatures)
	}

	return nil
}

// resolveCount converts an int-or-fraction setting to a row count
func resolveCount(v float64, n int) int {
	if v >= 1 {
		return int(v)
	}
	return int(math.Ceil(v * float64(n)))
}

// resolveFeatures returns how many candidate features each split considers
func (c Config) resolveFeatures(total int) int {
	if c.MaxFeatures <= 0 || c.MaxFeatures >= 1 {
		return total
	}
	k := int(c.MaxFeatures * float64(total))
	if k < 1 {
		k = 1
	}
	return k
}
