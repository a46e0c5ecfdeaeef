package util

import (
	"strings"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// SortedKeys returns the map's keys in ascending order, for
// deterministic iteration.
func SortedKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// DeriveMidPath swaps a .ccmz suffix for .mid, or appends .mid.
func DeriveMidPath(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".ccmz") {
		return path[:len(path)-len(".ccmz")] + ".mid"
	}
	return path + ".mid"
}
