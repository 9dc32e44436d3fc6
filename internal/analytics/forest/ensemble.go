package forest

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// ErrNotFitted is returned when predicting with an ensemble that has no trees
var ErrNotFitted = errors.New("forest: ensemble is not fitted")

func init() {
	gob.Register(&Ensemble{})
}

// Ensemble is a fitted tree ensemble. Its prediction is the mean of the
// predictions of its trees.
type Ensemble struct {
	Config    Config
	Trees     []Tree
	Features  int
	TrainRows int
}

// New creates an unfitted ensemble from a validated configuration
func New(cfg Config) (*Ensemble, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Ensemble{Config: cfg}, nil
}

// Fit grows the configured number of trees on the design matrix x and
// labels y. Any previously fitted trees are replaced.
func (e *Ensemble) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 {
		return errors.New("forest: no training rows")
	}
	if len(x) != len(y) {
		return fmt.Errorf("forest: %d feature rows but %d labels", len(x), len(y))
	}
	width := len(x[0])
	if width == 0 {
		return errors.New("forest: feature rows are empty")
	}
	for i, row := range x {
		if len(row) != width {
			return fmt.Errorf("forest: row %d has %d features, expected %d", i, len(row), width)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("forest: row %d feature %d is not finite", i, j)
			}
		}
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return fmt.Errorf("forest: label %d is not finite", i)
		}
		if e.Config.Criterion == Poisson && y[i] < 0 {
			return fmt.Errorf("forest: poisson criterion requires non-negative labels, label %d is %v", i, y[i])
		}
	}

	n := len(y)
	trees := make([]Tree, e.Config.NumTrees)
	for t := range trees {
		rng := rand.New(rand.NewPCG(e.Config.Seed, uint64(t)))
		builder := newTreeBuilder(e.Config, x, y, rng)

		samples := make([]int, n)
		if e.Config.Kind == RandomForest {
			for i := range samples {
				samples[i] = rng.IntN(n)
			}
		} else {
			for i := range samples {
				samples[i] = i
			}
		}
		trees[t] = builder.build(samples)
	}

	e.Trees = trees
	e.Features = width
	e.TrainRows = n
	return nil
}

// Predict returns the ensemble prediction for a single feature vector
func (e *Ensemble) Predict(x []float64) (float64, error) {
	if len(e.Trees) == 0 {
		return 0, ErrNotFitted
	}
	if len(x) != e.Features {
		return 0, fmt.Errorf("forest: expected %d features, got %d", e.Features, len(x))
	}
	sum := 0.0
	for i := range e.Trees {
		sum += e.Trees[i].Predict(x)
	}
	return sum / float64(len(e.Trees)), nil
}

// NumFeatures returns the width of the feature vectors the ensemble was fit on
func (e *Ensemble) NumFeatures() int {
	return e.Features
}

// Validate checks the structure of a fitted ensemble, typically one that
// was decoded rather than fit. Split features must be in range and every
// child index must point forward, so a valid tree cannot cycle.
func (e *Ensemble) Validate() error {
	if len(e.Trees) == 0 {
		return ErrNotFitted
	}
	if e.Features < 1 {
		return fmt.Errorf("forest: feature width %d", e.Features)
	}
	for t := range e.Trees {
		nodes := e.Trees[t].Nodes
		if len(nodes) == 0 {
			return fmt.Errorf("forest: tree %d has no nodes", t)
		}
		for i, n := range nodes {
			if n.Feature == leafFeature {
				continue
			}
			if n.Feature < 0 || n.Feature >= e.Features {
				return fmt.Errorf("forest: tree %d node %d splits on feature %d of %d", t, i, n.Feature, e.Features)
			}
			for _, child := range []int32{n.Left, n.Right} {
				if int(child) <= i || int(child) >= len(nodes) {
					return fmt.Errorf("forest: tree %d node %d has child %d outside (%d, %d)", t, i, child, i, len(nodes))
				}
			}
		}
	}
	return nil
}
