package utils

import "time"

// Firestore decodes numbers as int64 or float64 and arrays as []interface{},
// while the in-memory store hands back whatever the writer stored. These
// helpers normalize both shapes.

func ToString(v any) string {
	s, _ := v.(string)
	return s
}

func ToInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func ToInt(v any) int {
	return int(ToInt64(v))
}

func ToFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func ToStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		out := make([]string, len(s))
		copy(out, s)
		return out
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

func ToTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	}
	return time.Time{}
}

func ContainsString(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

// SameStringSet reports whether a and b contain the same elements,
// ignoring order and duplicates.
func SameStringSet(a, b []string) bool {
	setA := make(map[string]struct{}, len(a))
	for _, e := range a {
		setA[e] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, e := range b {
		setB[e] = struct{}{}
	}
	if len(setA) != len(setB) {
		return false
	}
	for e := range setA {
		if _, ok := setB[e]; !ok {
			return false
		}
	}
	return true
}
