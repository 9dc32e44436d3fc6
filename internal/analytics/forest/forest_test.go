package forest

import (
	"bytes"
	"encoding/gob"
	"errors"
	"math"
	"testing"
)

// generateStepData creates a one-feature dataset with a step at x = 5
func generateStepData(n int) ([][]float64, []float64) {
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		v := float64(i % 10)
		x[i] = []float64{v, float64(i % 3)}
		if v < 5 {
			y[i] = 10
		} else {
			y[i] = 50
		}
	}
	return x, y
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"extra trees", func(c *Config) { c.Kind = ExtraTrees }, false},
		{"unknown kind", func(c *Config) { c.Kind = "gbm" }, true},
		{"unknown criterion", func(c *Config) { c.Criterion = "gini" }, true},
		{"zero trees", func(c *Config) { c.NumTrees = 0 }, true},
		{"split fraction", func(c *Config) { c.MinSamplesSplit = 0.2 }, false},
		{"split count of one", func(c *Config) { c.MinSamplesSplit = 1 }, true},
		{"negative leaf", func(c *Config) { c.MinSamplesLeaf = -1 }, true},
		{"negative depth", func(c *Config) { c.MaxDepth = -2 }, true},
		{"max features above one", func(c *Config) { c.MaxFeatures = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnsemble_FitPredict_AllCriteria(t *testing.T) {
	x, y := generateStepData(60)

	for _, kind := range Kinds() {
		for _, criterion := range Criteria() {
			t.Run(string(kind)+"/"+string(criterion), func(t *testing.T) {
				cfg := DefaultConfig()
				cfg.Kind = kind
				cfg.Criterion = criterion
				cfg.NumTrees = 20
				cfg.Seed = 7

				e, err := New(cfg)
				if err != nil {
					t.Fatalf("New failed: %v", err)
				}
				if err := e.Fit(x, y); err != nil {
					t.Fatalf("Fit failed: %v", err)
				}

				low, err := e.Predict([]float64{1, 0})
				if err != nil {
					t.Fatalf("Predict failed: %v", err)
				}
				high, _ := e.Predict([]float64{8, 0})

				if math.Abs(low-10) > 5 {
					t.Errorf("Expected prediction near 10 for low input, got %v", low)
				}
				if math.Abs(high-50) > 5 {
					t.Errorf("Expected prediction near 50 for high input, got %v", high)
				}
			})
		}
	}
}

func TestEnsemble_Deterministic(t *testing.T) {
	x, y := generateStepData(40)
	for i := range y {
		y[i] += float64(i%7) * 0.3
	}

	fit := func() *Ensemble {
		cfg := DefaultConfig()
		cfg.NumTrees = 10
		cfg.MaxFeatures = 0.5
		cfg.Seed = 42
		e, _ := New(cfg)
		if err := e.Fit(x, y); err != nil {
			t.Fatalf("Fit failed: %v", err)
		}
		return e
	}

	a, b := fit(), fit()
	for i := 0; i < 10; i++ {
		in := []float64{float64(i), float64(i % 3)}
		pa, _ := a.Predict(in)
		pb, _ := b.Predict(in)
		if pa != pb {
			t.Fatalf("Predictions differ for identical seeds: %v vs %v", pa, pb)
		}
	}
}

func TestEnsemble_SingleRow(t *testing.T) {
	e, _ := New(DefaultConfig())
	if err := e.Fit([][]float64{{1, 2}}, []float64{3}); err != nil {
		t.Fatalf("Fit on one row failed: %v", err)
	}
	p, err := e.Predict([]float64{100, -4})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if p != 3 {
		t.Errorf("Expected constant prediction 3, got %v", p)
	}
}

func TestEnsemble_FitErrors(t *testing.T) {
	e, _ := New(DefaultConfig())

	if err := e.Fit(nil, nil); err == nil {
		t.Error("Expected error for empty input")
	}
	if err := e.Fit([][]float64{{1}, {2}}, []float64{1}); err == nil {
		t.Error("Expected error for mismatched label count")
	}
	if err := e.Fit([][]float64{{1}, {2, 3}}, []float64{1, 2}); err == nil {
		t.Error("Expected error for ragged rows")
	}
	if err := e.Fit([][]float64{{math.NaN()}}, []float64{1}); err == nil {
		t.Error("Expected error for NaN feature")
	}

	cfg := DefaultConfig()
	cfg.Criterion = Poisson
	p, _ := New(cfg)
	if err := p.Fit([][]float64{{1}, {2}}, []float64{1, -1}); err == nil {
		t.Error("Expected error for negative labels with poisson criterion")
	}
}

func TestEnsemble_PredictErrors(t *testing.T) {
	e, _ := New(DefaultConfig())
	if _, err := e.Predict([]float64{1}); !errors.Is(err, ErrNotFitted) {
		t.Errorf("Expected ErrNotFitted, got %v", err)
	}

	x, y := generateStepData(20)
	_ = e.Fit(x, y)
	if _, err := e.Predict([]float64{1}); err == nil {
		t.Error("Expected error for wrong feature width")
	}
}

func TestEnsemble_MaxDepthAndMinLeaf(t *testing.T) {
	x, y := generateStepData(50)
	for i := range y {
		y[i] += float64(i)
	}

	cfg := DefaultConfig()
	cfg.NumTrees = 5
	cfg.MaxDepth = 2
	cfg.MinSamplesLeaf = 5
	e, _ := New(cfg)
	if err := e.Fit(x, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	for i, tree := range e.Trees {
		if d := tree.Depth(); d > 2 {
			t.Errorf("Tree %d depth %d exceeds max depth", i, d)
		}
		for _, n := range tree.Nodes {
			if n.Feature == leafFeature && n.Samples < 5 {
				t.Errorf("Tree %d has a leaf with %d samples", i, n.Samples)
			}
		}
	}
}

func TestEnsemble_GobRoundTrip(t *testing.T) {
	x, y := generateStepData(30)
	cfg := DefaultConfig()
	cfg.NumTrees = 4
	e, _ := New(cfg)
	_ = e.Fit(x, y)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	var back Ensemble
	if err := gob.NewDecoder(&buf).Decode(&back); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		in := []float64{float64(i), 1}
		want, _ := e.Predict(in)
		got, _ := back.Predict(in)
		if want != got {
			t.Errorf("Prediction mismatch after round trip: %v vs %v", want, got)
		}
	}
}

func TestResolveCount(t *testing.T) {
	if got := resolveCount(2, 100); got != 2 {
		t.Errorf("Expected 2, got %d", got)
	}
	if got := resolveCount(0.15, 10); got != 2 {
		t.Errorf("Expected ceil(1.5)=2, got %d", got)
	}
}

func TestEnsemble_Validate(t *testing.T) {
	x, y := generateStepData(30)
	fitted := func() *Ensemble {
		cfg := DefaultConfig()
		cfg.NumTrees = 3
		e, _ := New(cfg)
		if err := e.Fit(x, y); err != nil {
			t.Fatalf("Fit failed: %v", err)
		}
		return e
	}

	if err := fitted().Validate(); err != nil {
		t.Fatalf("Fitted ensemble should be valid: %v", err)
	}
	if err := (&Ensemble{}).Validate(); !errors.Is(err, ErrNotFitted) {
		t.Errorf("Expected ErrNotFitted, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(e *Ensemble)
	}{
		{"feature out of range", func(e *Ensemble) { e.Trees[0].Nodes[0].Feature = 99 }},
		{"negative feature", func(e *Ensemble) { e.Trees[0].Nodes[0].Feature = -3 }},
		{"child loops to itself", func(e *Ensemble) { e.Trees[1].Nodes[0].Right = 0 }},
		{"child past the end", func(e *Ensemble) { e.Trees[2].Nodes[0].Left = int32(len(e.Trees[2].Nodes)) }},
		{"tree without nodes", func(e *Ensemble) { e.Trees[0].Nodes = nil }},
		{"zero width", func(e *Ensemble) { e.Features = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := fitted()
			tt.mutate(e)
			if err := e.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
