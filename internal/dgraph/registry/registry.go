// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

// Package registry implements the node factory registry: a
// table, keyed by node-type tag, of constructors plus the ID-recalc bit
// each node-type's tagging contributes. It is populated once (typically by
// [RegisterDefaults], or by a host wanting a custom node set) and
// is otherwise read-only for the lifetime of a process.
package registry

import (
	"fmt"
	"sync"

	"github.com/dune3d/dgraph/internal/dgraph/dnode"
	"github.com/dune3d/dgraph/internal/dgraph/dtype"
)

// ComponentFactory constructs a new ComponentNode for the given owning ID
// and subname (e.g. a bone name).
type ComponentFactory func(id *dnode.IdNode, subname string) *dnode.ComponentNode

// OperationFactory constructs a new OperationNode bound to the given
// component, name/name-tag and evaluation callback.
type OperationFactory func(component *dnode.ComponentNode, name string, nameTag int, cb dnode.EvalCallback) *dnode.OperationNode

// ComponentEntry is one row of the component family of the registry.
type ComponentEntry struct {
	DisplayName string
	RecalcBit   dtype.RecalcFlag
	New         ComponentFactory
}

// OperationEntry is one row of the operation family of the registry.
type OperationEntry struct {
	DisplayName string
	RecalcBit   dtype.RecalcFlag
	New         OperationFactory
}

// Registry is the process-wide node-type-factory table. New returns an
// empty one (the zero value has nil tables and panics on Register*); call
// RegisterDefaults (or Register* individually) before using it to build a
// graph.
type Registry struct {
	mu         sync.RWMutex
	components map[dtype.ComponentType]ComponentEntry
	operations map[dtype.OpCode]OperationEntry
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{
		components: make(map[dtype.ComponentType]ComponentEntry),
		operations: make(map[dtype.OpCode]OperationEntry),
	}
}

// RegisterComponent adds (or replaces) the factory entry for a component
// type. Intended to be called during startup only.
func (r *Registry) RegisterComponent(t dtype.ComponentType, entry ComponentEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.New == nil {
		entry.New = func(id *dnode.IdNode, subname string) *dnode.ComponentNode {
			return dnode.NewComponentNode(id, t, subname)
		}
	}
	r.components[t] = entry
}

// RegisterOperation adds (or replaces) the factory entry for an opcode.
func (r *Registry) RegisterOperation(c dtype.OpCode, entry OperationEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.New == nil {
		entry.New = func(component *dnode.ComponentNode, name string, nameTag int, cb dnode.EvalCallback) *dnode.OperationNode {
			return dnode.NewOperationNode(component, c, name, nameTag, cb)
		}
	}
	r.operations[c] = entry
}

// Component looks up the factory entry for a component type.
func (r *Registry) Component(t dtype.ComponentType) (ComponentEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.components[t]
	return e, ok
}

// Operation looks up the factory entry for an opcode.
func (r *Registry) Operation(c dtype.OpCode) (OperationEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.operations[c]
	return e, ok
}

// NewComponent constructs a new ComponentNode via the registered factory,
// panicking if the type was never registered (a coding-error condition,
// not a recoverable one: RegisterDefaults covers the full closed
// ComponentType set).
func (r *Registry) NewComponent(id *dnode.IdNode, t dtype.ComponentType, subname string) *dnode.ComponentNode {
	entry, ok := r.Component(t)
	if !ok {
		panic(fmt.Sprintf("registry: no factory registered for component type %s", t))
	}
	return entry.New(id, subname)
}

// NewOperation constructs a new OperationNode via the registered factory.
func (r *Registry) NewOperation(component *dnode.ComponentNode, c dtype.OpCode, name string, nameTag int, cb dnode.EvalCallback) *dnode.OperationNode {
	entry, ok := r.Operation(c)
	if !ok {
		panic(fmt.Sprintf("registry: no factory registered for opcode %s", c))
	}
	return entry.New(component, name, nameTag, cb)
}

// RecalcBitFor returns the recalc bit a done component of type t
// contributes to its ID's accumulated recalc flags.
func (r *Registry) RecalcBitFor(t dtype.ComponentType) dtype.RecalcFlag {
	entry, ok := r.Component(t)
	if !ok {
		return 0
	}
	return entry.RecalcBit
}
