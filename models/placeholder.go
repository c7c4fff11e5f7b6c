package models

import "strings"

// Number is the set of numeric column types a Car stores
type Number interface {
	~int | ~int64 | ~float64
}

// Known reports the value behind v when it is a real measurement. Nil and
// non-positive values are placeholders for "unknown".
func Known[T Number](v *T) (T, bool) {
	if v == nil || *v <= 0 {
		var zero T
		return zero, false
	}
	return *v, true
}

// KnownString reports the trimmed value behind s, rejecting nil and
// whitespace-only strings.
func KnownString(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return "", false
	}
	return t, true
}
