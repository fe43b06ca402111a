package util

import (
	"cmp"
	"slices"

	"github.com/hashicorp/go-set/v3"
)

// SortedSlice returns the items of s in ascending order
func SortedSlice[V cmp.Ordered](s set.Collection[V]) []V {
	return slices.Sorted(s.Items())
}
