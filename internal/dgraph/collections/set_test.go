// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package collections

import "testing"

func TestSetAddRemoveLen(t *testing.T) {
	s := NewSet[string]()
	if s.Len() != 0 {
		t.Fatalf("new set: Len() = %d, want 0", s.Len())
	}

	s.Add("a")
	s.Add("b")
	s.Add("a") // duplicate add is a no-op

	if got, want := s.Len(), 2; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	if !s.Has("a") || !s.Has("b") {
		t.Fatalf("expected both a and b present: %v", s)
	}

	s.Remove("a")
	if s.Has("a") {
		t.Fatalf("expected a removed")
	}
	if got, want := s.Len(), 1; got != want {
		t.Fatalf("Len() after remove = %d, want %d", got, want)
	}
}

func TestSetString(t *testing.T) {
	s := NewSet("banana", "apple", "cherry")
	if got, want := s.String(), "apple, banana, cherry"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
