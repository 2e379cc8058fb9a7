// Package foundation holds small generic helpers shared across packages.
package foundation

import (
	"fmt"
	"sort"
	"strings"
)

// defaultNormalizer provides standard string normalization.
func defaultNormalizer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Normalizer maps case-insensitive user input onto enum values.
type Normalizer[T comparable] struct {
	validValues  map[string]T
	defaultValue T
}

// NewNormalizer creates a normalizer with a map of valid string->value pairs.
// Several spellings may map to the same value.
func NewNormalizer[T comparable](values map[string]T, defaultValue T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	for k, v := range values {
		normalized[defaultNormalizer(k)] = v
	}

	return &Normalizer[T]{
		validValues:  normalized,
		defaultValue: defaultValue,
	}
}

// Normalize converts raw to the enum type, or returns the default value if the
// string is not recognized.
func (n *Normalizer[T]) Normalize(raw string) T {
	if value, ok := n.Lookup(raw); ok {
		return value
	}
	return n.defaultValue
}

// Lookup converts raw to the enum type and reports whether it was recognized.
func (n *Normalizer[T]) Lookup(raw string) (T, bool) {
	value, ok := n.validValues[defaultNormalizer(raw)]
	return value, ok
}

// NormalizeWithError converts raw to the enum type and returns an error naming the
// accepted spellings if it is not recognized.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if value, ok := n.Lookup(raw); ok {
		return value, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q (expected one of %s)", raw, strings.Join(n.ValidKeys(), ", "))
}

// ValidKeys returns the accepted spellings, sorted.
func (n *Normalizer[T]) ValidKeys() []string {
	keys := make([]string, 0, len(n.validValues))
	for k := range n.validValues {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
