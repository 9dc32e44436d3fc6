package utils

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ToFloat64 converts numeric values, json.Number and numeric strings to
// float64. Returns false when the value has no numeric reading.
func ToFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// MustToFloat64 converts a value to float64, returning 0 if conversion fails.
func MustToFloat64(v interface{}) float64 {
	f, _ := ToFloat64(v)
	return f
}
