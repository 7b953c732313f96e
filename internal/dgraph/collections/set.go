// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

// Package collections holds small generic container helpers shared across
// the dependency graph packages.
package collections

import (
	"fmt"
	"slices"
	"strings"
)

// Set is a container that holds each item at most once with O(1) lookup.
//
// You can define a new set like this:
//
//	var interesting = collections.Set[int]{16: {}, 24: {}, 32: {}}
//
// or build one from a list of members with [NewSet].
type Set[T comparable] map[T]struct{}

// NewSet constructs a new set from the given members.
func NewSet[T comparable](members ...T) Set[T] {
	set := make(Set[T], len(members))
	for _, member := range members {
		set[member] = struct{}{}
	}
	return set
}

// Has returns true if the item exists in the Set.
func (s Set[T]) Has(value T) bool {
	_, ok := s[value]
	return ok
}

// Add inserts value into the set. It is a no-op if the value is already
// present.
func (s Set[T]) Add(value T) {
	s[value] = struct{}{}
}

// Remove deletes value from the set, if present.
func (s Set[T]) Remove(value T) {
	delete(s, value)
}

// Len returns the number of members in the set.
func (s Set[T]) Len() int {
	return len(s)
}

// String creates a comma-separated list of all values in the set, sorted
// for determinism.
func (s Set[T]) String() string {
	parts := make([]string, 0, len(s))
	for v := range s {
		parts = append(parts, fmt.Sprintf("%v", v))
	}
	slices.Sort(parts)
	return strings.Join(parts, ", ")
}
