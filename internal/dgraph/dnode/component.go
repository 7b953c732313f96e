// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package dnode

import "github.com/dune3d/dgraph/internal/dgraph/dtype"

// ComponentNode is one per (IdNode, ComponentType, subname).
type ComponentNode struct {
	Class dtype.NodeClass

	ID      *IdNode
	Type    dtype.ComponentType
	Name    string // subname, e.g. a bone name for ComponentBone

	Operations []*OperationNode
	// opsMap is transient: built during construction for O(1) lookups and
	// discarded once the graph is fully built.
	opsMap map[OpMapKey]*OperationNode

	EntryOperation *OperationNode
	ExitOperation  *OperationNode

	AffectsDirectlyVisible bool

	DependsOnCoW           bool
	NeedTagCoWBeforeUpdate bool
}

func NewComponentNode(id *IdNode, componentType dtype.ComponentType, name string) *ComponentNode {
	return &ComponentNode{
		Class:  dtype.NodeClassComponent,
		ID:     id,
		Type:   componentType,
		Name:   name,
		opsMap: make(map[OpMapKey]*OperationNode),
	}
}

// FindOrCreateOperation returns the existing operation matching key,
// creating and appending a new one via newOp if none exists yet. After
// DiscardOpsMap the lookup map is rebuilt from Operations first, so a
// rebuild reuses the operations it already has.
func (c *ComponentNode) FindOrCreateOperation(key OpMapKey, newOp func() *OperationNode) *OperationNode {
	if c.opsMap == nil {
		c.opsMap = make(map[OpMapKey]*OperationNode, len(c.Operations))
		for _, op := range c.Operations {
			c.opsMap[OpMapKey{OpCode: op.OpCode, Name: op.Name, NameTag: op.NameTag}] = op
		}
	}
	if existing, ok := c.opsMap[key]; ok {
		return existing
	}
	op := newOp()
	c.opsMap[key] = op
	c.Operations = append(c.Operations, op)
	return op
}

func (c *ComponentNode) FindOperation(key OpMapKey) (*OperationNode, bool) {
	op, ok := c.opsMap[key]
	return op, ok
}

// DiscardOpsMap frees the transient lookup map once the graph is fully
// built.
func (c *ComponentNode) DiscardOpsMap() {
	c.opsMap = nil
}

// Key identifies a component within its owning IdNode.
type ComponentMapKey struct {
	Type dtype.ComponentType
	Name string
}

func (c *ComponentNode) Key() ComponentMapKey {
	return ComponentMapKey{Type: c.Type, Name: c.Name}
}
