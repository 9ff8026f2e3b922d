// Package utils holds small helpers shared across the IR packages.
package utils

import (
	"cmp"
	"slices"

	"golang.org/x/exp/maps"
)

// SortedKeys returns the keys of a map in ascending order, for deterministic
// traversal.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
