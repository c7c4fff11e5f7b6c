package specs

import (
	"strings"

	"github.com/linesmerrill/car-spec-api/models"
)

// Merge builds the attendee view of a car: the raw spec with sensitive keys
// stripped, every known canonical value overlaid under its display key (and
// its raw spellings removed), ordered canonical keys first. Merge does not
// modify car.
func Merge(car *models.Car) *Spec {
	merged := ParseRawSpec(car.RawSpec)

	for _, key := range Keys(merged) {
		if isStripped(key) {
			merged.Delete(key)
		}
	}

	for _, field := range canonicalFields {
		value, ok := field.value(car)
		if !ok {
			continue
		}
		for _, alias := range field.aliases {
			merged.Delete(alias)
		}
		merged.Set(field.key, value)
	}

	out := New()
	for _, field := range canonicalFields {
		if v, ok := merged.Get(field.key); ok {
			out.Set(field.key, v)
		}
	}
	appendRemaining(out, merged)
	return out
}

// Reorder promotes the identifying keys of an already parsed spec to the
// front. Values are copied as-is.
func Reorder(spec *Spec) *Spec {
	out := New()
	for _, key := range displayPriority {
		if v, ok := spec.Get(key); ok {
			out.Set(key, v)
		}
	}
	appendRemaining(out, spec)
	return out
}

func appendRemaining(out, from *Spec) {
	for pair := from.Oldest(); pair != nil; pair = pair.Next() {
		if _, present := out.Get(pair.Key); !present {
			out.Set(pair.Key, pair.Value)
		}
	}
}

func isStripped(key string) bool {
	normalized := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(key)))
	_, ok := strippedKeys[normalized]
	return ok
}
