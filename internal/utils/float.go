package utils

import "math"

// ToFloat64 converts any Go numeric kind to float64.
// Returns false for nil and non-numeric values (strings included).
func ToFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	}
	if i, ok := ToInt64(v); ok {
		return float64(i), true
	}
	switch val := v.(type) {
	case uint:
		return float64(val), true
	case uint64:
		return float64(val), true
	}
	return 0, false
}

// ToInt64 converts integer kinds to int64. Unsigned values above
// math.MaxInt64 and all float kinds return false.
func ToInt64(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int8:
		return int64(val), true
	case int16:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case uint8:
		return int64(val), true
	case uint16:
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint:
		if uint64(val) > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	case uint64:
		if val > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	default:
		return 0, false
	}
}
