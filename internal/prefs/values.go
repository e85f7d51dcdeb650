package prefs

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"sync"
)

// values is the in-memory cache shared by the memory and file backends.
// Entries hold native Go values, or json.Number for numbers loaded from disk.
type values struct {
	mu sync.RWMutex
	m  map[string]any
}

func newValues() *values {
	return &values{m: make(map[string]any)}
}

func (v *values) get(key string) (any, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.m[key]
	return val, ok
}

func (v *values) set(key string, val any) {
	v.mu.Lock()
	v.m[key] = val
	v.mu.Unlock()
}

func (v *values) delete(key string) {
	v.mu.Lock()
	delete(v.m, key)
	v.mu.Unlock()
}

func (v *values) replace(m map[string]any) {
	v.mu.Lock()
	v.m = m
	v.mu.Unlock()
}

func (v *values) snapshot() map[string]any {
	v.mu.RLock()
	defer v.mu.RUnlock()
	cp := make(map[string]any, len(v.m))
	for k, val := range v.m {
		cp[k] = val
	}
	return cp
}

func (v *values) getBool(key string) (bool, bool, error) {
	raw, ok := v.get(key)
	if !ok {
		return false, false, nil
	}
	b, isBool := raw.(bool)
	if !isBool {
		return false, true, fmt.Errorf("%w: %s is %T, want bool", ErrTypeMismatch, key, raw)
	}
	return b, true, nil
}

func (v *values) getInt(key string) (int32, bool, error) {
	raw, ok := v.get(key)
	if !ok {
		return 0, false, nil
	}
	switch val := raw.(type) {
	case int32:
		return val, true, nil
	case json.Number:
		i, err := strconv.ParseInt(string(val), 10, 32)
		if err != nil {
			return 0, true, fmt.Errorf("%w: %s=%s is not a 32-bit integer", ErrTypeMismatch, key, val)
		}
		return int32(i), true, nil
	case float64:
		if val != math.Trunc(val) || val < math.MinInt32 || val > math.MaxInt32 {
			return 0, true, fmt.Errorf("%w: %s=%v is not a 32-bit integer", ErrTypeMismatch, key, val)
		}
		return int32(val), true, nil
	default:
		return 0, true, fmt.Errorf("%w: %s is %T, want int", ErrTypeMismatch, key, raw)
	}
}

func (v *values) getFloat(key string) (float32, bool, error) {
	raw, ok := v.get(key)
	if !ok {
		return 0, false, nil
	}
	switch val := raw.(type) {
	case float32:
		return val, true, nil
	case json.Number:
		f, err := strconv.ParseFloat(string(val), 32)
		if err != nil {
			return 0, true, fmt.Errorf("%w: %s=%s is not a float", ErrTypeMismatch, key, val)
		}
		return float32(f), true, nil
	case float64:
		return float32(val), true, nil
	default:
		return 0, true, fmt.Errorf("%w: %s is %T, want float", ErrTypeMismatch, key, raw)
	}
}

func (v *values) getString(key string) (string, bool, error) {
	raw, ok := v.get(key)
	if !ok {
		return "", false, nil
	}
	s, isString := raw.(string)
	if !isString {
		return "", true, fmt.Errorf("%w: %s is %T, want string", ErrTypeMismatch, key, raw)
	}
	return s, true, nil
}
