package forecast

import (
	"errors"
	"slices"
	"testing"
)

func TestNewLagSpec(t *testing.T) {
	spec, err := NewLagSpec(7, 2, 5, 2)
	if err != nil {
		t.Fatalf("NewLagSpec failed: %v", err)
	}
	if !slices.Equal(spec.Lags, []int{2, 5, 7}) {
		t.Errorf("Expected sorted unique lags, got %v", spec.Lags)
	}
	if spec.Max() != 7 || spec.Len() != 3 {
		t.Errorf("Unexpected max/len: %d/%d", spec.Max(), spec.Len())
	}
	if spec.String() != "[2,5,7]" {
		t.Errorf("Unexpected string: %s", spec)
	}
}

func TestNewLagSpec_Invalid(t *testing.T) {
	tests := []struct {
		name string
		lags []int
	}{
		{"empty", nil},
		{"zero", []int{0, 1}},
		{"negative", []int{-3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLagSpec(tt.lags...); !errors.Is(err, ErrInvalidLags) {
				t.Errorf("Expected ErrInvalidLags, got %v", err)
			}
		})
	}
}

func TestLagSpec_Validate(t *testing.T) {
	if err := (LagSpec{Lags: []int{3, 1}}).Validate(); err == nil {
		t.Error("Expected error for unsorted lags")
	}
	if err := (LagSpec{Lags: []int{1, 1}}).Validate(); err == nil {
		t.Error("Expected error for duplicate lags")
	}
	if err := MustLagSpec(1, 3).Validate(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
