package model

import (
	"fmt"
	"strconv"
	"strings"
)

// MetaList is an insertion-ordered key/value store, shared by the
// components list and the factors list.
type MetaList []MetaEntry

// Has reports whether key is present.
func (m MetaList) Has(key string) bool {
	_, ok := m.find(key)
	return ok
}

// Get returns the value for key, if present.
func (m MetaList) Get(key string) (string, bool) {
	if i, ok := m.find(key); ok {
		return m[i].Value, true
	}
	return "", false
}

// GetF32 parses the value for key as a float32.
func (m MetaList) GetF32(key string) (float32, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
	if err != nil {
		return 0, false
	}
	return float32(f), true
}

// Update sets key to value, appending a new entry if key is absent.
func (m *MetaList) Update(key, value string) {
	if i, ok := m.find(key); ok {
		(*m)[i].Value = value
		return
	}
	*m = append(*m, MetaEntry{Key: key, Value: value})
}

func (m MetaList) find(key string) (int, bool) {
	for i, e := range m {
		if e.Key == key {
			return i, true
		}
	}
	return 0, false
}

// FormatTriple renders (ren, nren, co2) the way metadata entries such as
// CTE_RED1 store a user-supplied weighting triple: "ren, nren, co2" to
// three decimals.
func FormatTriple(ren, nren, co2 float32) string {
	return fmt.Sprintf("%.3f, %.3f, %.3f", ren, nren, co2)
}

// ParseTriple parses a "ren, nren, co2" metadata value.
func ParseTriple(s string) (ren, nren, co2 float32, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("expected 3 comma-separated values, got %d", len(parts))
	}
	vals := make([]float64, 3)
	for i, p := range parts {
		vals[i], err = strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid numeric value %q: %w", p, err)
		}
	}
	return float32(vals[0]), float32(vals[1]), float32(vals[2]), nil
}
