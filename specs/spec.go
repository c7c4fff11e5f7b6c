// Package specs reconciles a car's canonical columns with the free-form
// raw spec blob it was ingested from.
package specs

import (
	"encoding/json"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Spec is an insertion-ordered mapping of display keys to scalar values. It
// marshals to a JSON object that keeps its key order.
type Spec = orderedmap.OrderedMap[string, any]

// New returns an empty Spec
func New() *Spec {
	return orderedmap.New[string, any]()
}

// ParseRawSpec decodes a stored raw spec. Absent, blank, malformed or
// non-object input yields an empty Spec, never an error.
func ParseRawSpec(raw *string) *Spec {
	out := New()
	if raw == nil {
		return out
	}
	trimmed := strings.TrimSpace(*raw)
	if !strings.HasPrefix(trimmed, "{") {
		return out
	}
	if err := json.Unmarshal([]byte(trimmed), out); err != nil {
		return New()
	}
	return out
}

// SynthesizeRawSpec builds the minimal raw spec stored for cars created
// without one, so they still render on attendee views.
func SynthesizeRawSpec(brand, model string, year int) string {
	s := New()
	s.Set(keyCompany, brand)
	s.Set(keyModel, model)
	s.Set(keyProductionYears, strconv.Itoa(year))
	b, _ := json.Marshal(s)
	return string(b)
}

// Keys returns the keys of s in order
func Keys(s *Spec) []string {
	keys := make([]string, 0, s.Len())
	for pair := s.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}
