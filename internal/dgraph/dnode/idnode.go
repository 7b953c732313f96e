// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package dnode

import "github.com/dune3d/dgraph/internal/dgraph/dtype"

// OrigID is the stable handle the host uses to identify a source
// datablock. The host owns whatever concrete identity this represents; the
// graph only ever compares it for equality and uses it as a map key, so it
// must be comparable.
type OrigID = any

// IdNode is one per original scene datablock that participates in the
// graph.
type IdNode struct {
	Class dtype.NodeClass

	IDType            dtype.IDType
	OrigID            OrigID
	OrigSessionUUID   string
	CowID             OrigID // aliases OrigID when no CoW shadow is needed

	Components map[ComponentMapKey]*ComponentNode

	LinkedState             dtype.LinkedState
	IsDirectlyVisible       bool
	HasBase                 bool
	IsUserModified          bool
	IsCollectionFullyExpanded bool

	VisibleComponentsMask           uint64
	PreviouslyVisibleComponentsMask uint64

	EvalFlags         dtype.EvalFlag
	PreviousEvalFlags dtype.EvalFlag

	CustomDataMasks         uint64
	PreviousCustomDataMasks uint64

	// Recalc is what a flush accumulates and stamps on the evaluated
	// shadow.
	Recalc dtype.RecalcFlag
	// PreviousRecalc preserves the prior flush's recalc bits across
	// ClearRecalc so host tools can inspect "what changed last time",
	// grounded on deg_node_id.cc's id_cow_recalc_backup.
	PreviousRecalc dtype.RecalcFlag

	// custom_flags scratch word used only during the flush walk.
	CustomFlags uint8
}

const (
	IDStateNone     uint8 = 0
	IDStateModified uint8 = 1
)

func NewIdNode(idType dtype.IDType, origID OrigID, sessionUUID string) *IdNode {
	return &IdNode{
		Class:           dtype.NodeClassGeneric,
		IDType:          idType,
		OrigID:          origID,
		OrigSessionUUID: sessionUUID,
		CowID:           origID,
		Components:      make(map[ComponentMapKey]*ComponentNode),
	}
}

// FindComponent looks up a component by type and subname.
func (n *IdNode) FindComponent(componentType dtype.ComponentType, name string) (*ComponentNode, bool) {
	c, ok := n.Components[ComponentMapKey{Type: componentType, Name: name}]
	return c, ok
}

// AddComponent inserts (or returns the existing) component for the given
// type/name pair.
func (n *IdNode) AddComponent(componentType dtype.ComponentType, name string) *ComponentNode {
	key := ComponentMapKey{Type: componentType, Name: name}
	if existing, ok := n.Components[key]; ok {
		return existing
	}
	c := NewComponentNode(n, componentType, name)
	n.Components[key] = c
	return c
}

// NeedsCoW reports whether this ID's type requires a shadow copy at all.
func (n *IdNode) NeedsCoW() bool {
	return !dtype.NoCoWNeeded[n.IDType]
}

// EvalFlagsChanged reports whether the eval flags computed this build
// differ from the previous build's.
func (n *IdNode) EvalFlagsChanged() bool {
	return n.EvalFlags != n.PreviousEvalFlags
}

// CustomDataMasksChanged reports whether the per-attribute-layer masks
// changed since the previous build.
func (n *IdNode) CustomDataMasksChanged() bool {
	return n.CustomDataMasks != n.PreviousCustomDataMasks
}

// FinalizeVisibilityMask recomputes VisibleComponentsMask as the OR of
// every component's type bit where AffectsDirectlyVisible is set.
func (n *IdNode) FinalizeVisibilityMask() {
	n.PreviouslyVisibleComponentsMask = n.VisibleComponentsMask
	var mask uint64
	for _, c := range n.Components {
		if c.AffectsDirectlyVisible {
			mask |= c.Type.Bit()
		}
	}
	n.VisibleComponentsMask = mask
}

// ClearRecalc empties Recalc after evaluation, preserving it in
// PreviousRecalc first.
func (n *IdNode) ClearRecalc() {
	n.PreviousRecalc = n.Recalc
	n.Recalc = 0
}

// TimeSourceNode is unique per graph; all time-dependent operations
// ultimately depend on it.
type TimeSourceNode struct {
	Class dtype.NodeClass
	Op    *OperationNode
}

func NewTimeSourceNode() *TimeSourceNode {
	return &TimeSourceNode{Class: dtype.NodeClassGeneric}
}
