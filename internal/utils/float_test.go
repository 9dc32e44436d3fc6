package utils

import (
	"encoding/json"
	"testing"
)

func TestToFloat64(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected float64
		ok       bool
	}{
		{"float64", float64(3.14), 3.14, true},
		{"float32", float32(2.5), 2.5, true},
		{"int", int(42), 42, true},
		{"int64", int64(-64), -64, true},
		{"uint64", uint64(64), 64, true},
		{"json number", json.Number("12.5"), 12.5, true},
		{"numeric string", " 7.25 ", 7.25, true},
		{"bad string", "abc", 0, false},
		{"bad json number", json.Number("x"), 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
		{"slice", []int{1}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat64(tt.input)
			if ok != tt.ok {
				t.Fatalf("ToFloat64(%v) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.expected {
				t.Errorf("ToFloat64(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMustToFloat64(t *testing.T) {
	if got := MustToFloat64("oops"); got != 0 {
		t.Errorf("MustToFloat64 on invalid input = %v, want 0", got)
	}
	if got := MustToFloat64(int32(5)); got != 5 {
		t.Errorf("MustToFloat64(5) = %v, want 5", got)
	}
}
