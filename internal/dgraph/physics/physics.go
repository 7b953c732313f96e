// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

// Package physics implements the per-graph physics relation cache: lazily-filled, collection-keyed
// lists of collider/effector relations consumed during evaluation and
// cleared on graph free.
package physics

import "sync"

// Kind is the closed set of physics relation kinds.
type Kind int

const (
	Effector Kind = iota
	Collision
	SmokeCollision
	DynamicBrush

	kindCount
)

func (k Kind) String() string {
	switch k {
	case Effector:
		return "Effector"
	case Collision:
		return "Collision"
	case SmokeCollision:
		return "SmokeCollision"
	case DynamicBrush:
		return "DynamicBrush"
	default:
		return "Kind(?)"
	}
}

// CollectionKey identifies which collection a relation list was built for.
// A nil value is a valid key meaning "scene-wide": the host
// builder is expected to treat that as "all bases in the current view
// layer".
type CollectionKey any

// Relation is one (object, modifier-data pointer) pair contributed by a
// host-provided collider/effector relations builder.
type Relation struct {
	Object       any
	ModifierData any
}

// CreateFunc is the host-provided function invoked on a cache miss.
type CreateFunc func(collection CollectionKey) ([]Relation, error)

// FreeFunc releases resources associated with a cached relation list. The
// appropriate free function depends on the relation-type tag.
type FreeFunc func([]Relation)

type cacheKey struct {
	kind       Kind
	collection CollectionKey
}

// Cache is the per-graph physics relation cache.
type Cache struct {
	mu   sync.Mutex
	byID map[cacheKey][]Relation
}

func NewCache() *Cache {
	return &Cache{byID: make(map[cacheKey][]Relation)}
}

// Get returns the cached relation list for (kind, collection), invoking
// create and inserting the result on a miss.
func (c *Cache) Get(kind Kind, collection CollectionKey, create CreateFunc) ([]Relation, error) {
	key := cacheKey{kind: kind, collection: collection}

	c.mu.Lock()
	if existing, ok := c.byID[key]; ok {
		c.mu.Unlock()
		return existing, nil
	}
	c.mu.Unlock()

	rels, err := create(collection)
	if err != nil {
		// nothing is cached on failure; the graph remains consistent.
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[key] = rels
	return rels, nil
}

// GetEffectorRelations resolves (constructing and caching on first use) the
// effector relations for collection.
func (c *Cache) GetEffectorRelations(collection CollectionKey, create CreateFunc) ([]Relation, error) {
	return c.Get(Effector, collection, create)
}

// GetCollisionRelations is the collision-kind counterpart of
// GetEffectorRelations. modifierType is accepted for call-site symmetry
// with other per-modifier relation lookups, but the cache itself is keyed
// only by collection.
func (c *Cache) GetCollisionRelations(collection CollectionKey, modifierType string, create CreateFunc) ([]Relation, error) {
	return c.Get(Collision, collection, create)
}

// Clear frees every cached list of the given kind via free, then removes
// them from the cache.
func (c *Cache) Clear(kind Kind, free FreeFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, rels := range c.byID {
		if key.kind != kind {
			continue
		}
		if free != nil {
			free(rels)
		}
		delete(c.byID, key)
	}
}

// ClearAll frees every cached list across all kinds using the given
// per-kind free functions, called on graph free.
func (c *Cache) ClearAll(free func(Kind) FreeFunc) {
	for k := Kind(0); k < kindCount; k++ {
		c.Clear(k, free(k))
	}
}
