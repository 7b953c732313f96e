// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package physics

import "testing"

func TestCacheGetCallsCreateOnceForSameKey(t *testing.T) {
	c := NewCache()
	calls := 0
	create := func(collection CollectionKey) ([]Relation, error) {
		calls++
		return []Relation{{Object: "effector-1"}}, nil
	}

	first, err := c.Get(Effector, "collection-a", create)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Get(Effector, "collection-a", create)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected create to run once, ran %d times", calls)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected both results to carry the one cached relation")
	}
}

func TestCacheDistinguishesKindAndCollection(t *testing.T) {
	c := NewCache()
	calls := 0
	create := func(collection CollectionKey) ([]Relation, error) {
		calls++
		return nil, nil
	}

	c.Get(Effector, "a", create)
	c.Get(Collision, "a", create)
	c.Get(Effector, "b", create)

	if calls != 3 {
		t.Fatalf("expected 3 distinct cache misses, got %d calls", calls)
	}
}

func TestCacheNilCollectionIsSceneWide(t *testing.T) {
	c := NewCache()
	calls := 0
	create := func(collection CollectionKey) ([]Relation, error) {
		calls++
		return nil, nil
	}
	c.GetEffectorRelations(nil, create)
	c.GetEffectorRelations(nil, create)
	if calls != 1 {
		t.Fatalf("expected nil collection key to be cached like any other key, got %d calls", calls)
	}
}

func TestClearRemovesOnlyRequestedKind(t *testing.T) {
	c := NewCache()
	noop := func(collection CollectionKey) ([]Relation, error) { return nil, nil }
	c.Get(Effector, "a", noop)
	c.Get(Collision, "a", noop)

	freed := 0
	c.Clear(Effector, func([]Relation) { freed++ })

	if freed != 1 {
		t.Fatalf("expected exactly one freed Effector entry, got %d", freed)
	}

	calls := 0
	c.Get(Effector, "a", func(CollectionKey) ([]Relation, error) { calls++; return nil, nil })
	if calls != 1 {
		t.Fatalf("expected Effector/a to be a fresh cache miss after Clear")
	}
	calls = 0
	c.Get(Collision, "a", func(CollectionKey) ([]Relation, error) { calls++; return nil, nil })
	if calls != 0 {
		t.Fatalf("expected Collision/a to remain cached, untouched by Clear(Effector, ...)")
	}
}
