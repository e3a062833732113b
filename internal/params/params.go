// Package params reads loosely typed fields out of decoded YAML/JSON maps.
// YAML yields int for whole numbers while JSON yields float64, so numeric
// getters accept either.
package params

import (
	"fmt"
	"math"
)

// Float returns m[key] as a float64. ok is false when the key is absent.
func Float(m map[string]any, key string) (v float64, ok bool, err error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	f, err := toFloat(raw)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", key, err)
	}
	return f, true, nil
}

// RequireFloat is Float with absence treated as an error.
func RequireFloat(m map[string]any, key string) (float64, error) {
	v, ok, err := Float(m, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("missing required field %q", key)
	}
	return v, nil
}

// FloatOr returns m[key] or def when absent.
func FloatOr(m map[string]any, key string, def float64) (float64, error) {
	v, ok, err := Float(m, key)
	if err != nil || !ok {
		return def, err
	}
	return v, nil
}

// Int returns m[key] as an int64. Non-integral numbers are rejected.
func Int(m map[string]any, key string) (v int64, ok bool, err error) {
	f, ok, err := Float(m, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	if f != math.Trunc(f) {
		return 0, true, fmt.Errorf("%s: %v is not an integer", key, f)
	}
	return int64(f), true, nil
}

// RequireInt is Int with absence treated as an error.
func RequireInt(m map[string]any, key string) (int64, error) {
	v, ok, err := Int(m, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("missing required field %q", key)
	}
	return v, nil
}

// IntOr returns m[key] or def when absent.
func IntOr(m map[string]any, key string, def int64) (int64, error) {
	v, ok, err := Int(m, key)
	if err != nil || !ok {
		return def, err
	}
	return v, nil
}

// String returns m[key] as a string.
func String(m map[string]any, key string) (v string, ok bool, err error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return "", false, nil
	}
	s, isStr := raw.(string)
	if !isStr {
		return "", true, fmt.Errorf("%s: expected string, got %T", key, raw)
	}
	return s, true, nil
}

// Map returns m[key] as a nested map.
func Map(m map[string]any, key string) (v map[string]any, ok bool, err error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil, false, nil
	}
	switch t := raw.(type) {
	case map[string]any:
		return t, true, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			ks, isStr := k.(string)
			if !isStr {
				return nil, true, fmt.Errorf("%s: non-string key %v", key, k)
			}
			out[ks] = val
		}
		return out, true, nil
	default:
		return nil, true, fmt.Errorf("%s: expected mapping, got %T", key, raw)
	}
}

// IntSlice returns m[key] as a list of integers.
func IntSlice(m map[string]any, key string) ([]int64, bool, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil, false, nil
	}
	list, isList := raw.([]any)
	if !isList {
		return nil, true, fmt.Errorf("%s: expected list, got %T", key, raw)
	}
	out := make([]int64, len(list))
	for i, item := range list {
		f, err := toFloat(item)
		if err != nil {
			return nil, true, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		if f != math.Trunc(f) {
			return nil, true, fmt.Errorf("%s[%d]: %v is not an integer", key, i, f)
		}
		out[i] = int64(f)
	}
	return out, true, nil
}

// ToFloat converts a decoded number to float64.
func ToFloat(raw any) (float64, error) {
	return toFloat(raw)
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", raw)
	}
}
