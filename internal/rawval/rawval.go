// Package rawval coerces loosely typed decoded JSON/YAML values.
//
// Content packs, equipment files and save payloads arrive as untyped
// trees (map[string]any, []any, float64, int, string). These helpers
// are the single place that decides what counts as a finite number,
// an object or a list.
package rawval

import (
	"math"
	"strings"
)

// Map returns v as an object. A nil map is not an object.
func Map(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok || m == nil {
		return nil, false
	}
	return m, true
}

// Slice returns v as a list. A nil slice is not a list.
func Slice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		if s == nil {
			return nil, false
		}
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	default:
		return nil, false
	}
}

// Float returns v as a finite float64.
func Float(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FloatOr returns v as a finite float64 or fallback.
func FloatOr(v any, fallback float64) float64 {
	if f, ok := Float(v); ok {
		return f
	}
	return fallback
}

// Integer returns v as an int when it is a finite whole number.
func Integer(v any) (int, bool) {
	f, ok := Float(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// NonEmptyString returns v as a string that is not blank.
func NonEmptyString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// StringList returns v as a list whose elements are all non-empty strings.
func StringList(v any) ([]string, bool) {
	items, ok := Slice(v)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := NonEmptyString(item)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// CloneMap returns a shallow copy of m.
func CloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
