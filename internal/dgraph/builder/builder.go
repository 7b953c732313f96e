// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

// Package builder implements the two-pass graph builder: a Nodes Pass that walks the scene top-down creating
// IdNode/ComponentNode/OperationNode triples, and a Relations Pass that
// connects them, including the rig/IK-chain subroutine and driver/
// constraint relation construction. Entry tags are transferred across a
// rebuild via persistent keys as each object is rebuilt, and a final
// Finalize step computes visibility masks and snapshots the operations.
package builder

import (
	"github.com/dune3d/dgraph/internal/dgraph/dlog"
	"github.com/dune3d/dgraph/internal/dgraph/dnode"
	"github.com/dune3d/dgraph/internal/dgraph/dtype"
	"github.com/dune3d/dgraph/internal/dgraph/graph"
	"github.com/dune3d/dgraph/internal/dgraph/scene"
)

var log = dlog.Named("builder")

// ShadowFactory is re-exported here so callers only need to import one
// package to assemble a Builder; it is forwarded unchanged to the cow
// manager the caller constructs.
type ShadowFactory func(origID dnode.OrigID, idType dtype.IDType) dnode.OrigID

// IDInfo is a snapshot of one existing IdNode's rebuild-relevant state,
// captured before a rebuild discards the old graph shape. It lets the builder carry forward
// bits that must survive a rebuild, such as persistent-key based entry
// tags and CoW shadow identity.
type IDInfo struct {
	OrigSessionUUID string
	CowID           dnode.OrigID
	PersistentTags  map[dnode.PersistentKey]bool
}

// IdInfoMap is built once by New, at the start of a rebuild, from the graph's
// current state, then consulted (never mutated) for the rest of the pass.
type IdInfoMap map[dnode.OrigID]IDInfo

// CaptureIdInfo snapshots g's current id nodes into an IdInfoMap.
func CaptureIdInfo(g *graph.Graph) IdInfoMap {
	m := make(IdInfoMap, len(g.IDNodes()))
	for _, id := range g.IDNodes() {
		tags := make(map[dnode.PersistentKey]bool)
		for _, c := range id.Components {
			for _, op := range c.Operations {
				if op.HasFlag(dtype.OpFlagNeedsUpdate) {
					tags[op.PersistentKeyFor(id.OrigSessionUUID)] = true
				}
			}
		}
		m[id.OrigID] = IDInfo{
			OrigSessionUUID: id.OrigSessionUUID,
			CowID:           id.CowID,
			PersistentTags:  tags,
		}
	}
	return m
}

// Builder drives a single Nodes-Pass + Relations-Pass rebuild against one
// Graph. It is not safe for concurrent use; callers serialize rebuilds
// themselves.
type Builder struct {
	g          *graph.Graph
	preInfo    IdInfoMap
	builderMap map[dnode.OrigID]*dnode.IdNode  // every IdNode built in this rebuild, by OrigID
	objects    map[dnode.OrigID]scene.Object   // reverse map for the Relations Pass
}

// New constructs a Builder bound to g, capturing the pre-rebuild
// IdInfoMap for persistent-key tag transfer.
func New(g *graph.Graph) *Builder {
	return &Builder{
		g:          g,
		preInfo:    CaptureIdInfo(g),
		builderMap: make(map[dnode.OrigID]*dnode.IdNode),
		objects:    make(map[dnode.OrigID]scene.Object),
	}
}

// BuildObject is the Nodes-Pass entry point for one scene object and
// everything it transitively references (parent object, data block,
// armature, particle settings).
//
// It is idempotent per object within a single rebuild: re-visiting the
// same object (e.g. because two other objects both parent to it) returns
// the already-built IdNode.
func (b *Builder) BuildObject(obj scene.Object, viewLayer scene.ViewLayer) *dnode.IdNode {
	origID := obj.OrigID()
	if existing, ok := b.builderMap[origID]; ok {
		return existing
	}

	idNode := b.g.AddIDNode(dtype.IDObject, origID, b.sessionUUIDFor(origID))
	b.builderMap[origID] = idNode
	b.objects[origID] = obj
	b.restorePersistentState(idNode)

	idNode.IsDirectlyVisible = obj.IsDirectlyVisibleIn(viewLayer)
	idNode.LinkedState = dtype.LinkedDirectly

	b.buildParamsComponent(idNode)
	b.buildObjectFromLayerComponent(idNode)
	b.buildTransformComponent(idNode, obj)
	b.buildCopyOnWriteComponent(idNode)

	if obj.HasAnimation() {
		b.buildAnimationComponent(idNode)
	}

	if parent, ok := obj.Parent(); ok {
		b.BuildObject(parent, viewLayer)
	}

	if armature, ok := obj.Armature(); ok {
		b.buildArmature(idNode, armature, obj)
	}

	for _, ps := range obj.ParticleSystems() {
		b.buildParticleSystem(idNode, ps)
	}

	if data := obj.Data(); data != nil {
		b.buildGeometryComponent(idNode, data)
	}

	return idNode
}

// BuildScene is the top-level driver for a full rebuild: it walks every
// base in the view layer's scene, builds each object, then runs the
// Relations Pass over everything it built.
func (b *Builder) BuildScene(viewLayer scene.ViewLayer) {
	for _, base := range viewLayer.Bases() {
		b.BuildObject(base.Object(), viewLayer)
	}

	rp := b.newRelationsPass()
	for _, idNode := range b.builderMap {
		rp.buildObjectRelations(idNode)
	}

	b.pruneRemovedIDs()

	b.Finalize()
}

// pruneRemovedIDs drops every IdNode that existed before this rebuild
// (captured in preInfo) but whose scene object this walk never visited,
// e.g. an object deleted from the scene since the last rebuild. Without
// this, a removed object's IdNode and its CoW shadow would linger forever,
// since BuildObject only ever adds or reuses entries in builderMap.
func (b *Builder) pruneRemovedIDs() {
	for origID := range b.preInfo {
		if _, ok := b.builderMap[origID]; ok {
			continue
		}
		b.g.RemoveIDNode(origID)
	}
}

func (b *Builder) sessionUUIDFor(origID dnode.OrigID) string {
	if info, ok := b.preInfo[origID]; ok && info.OrigSessionUUID != "" {
		return info.OrigSessionUUID
	}
	return newSessionUUID()
}

// restorePersistentState re-applies the prior build's entry tags to the
// matching operations in the newly-built graph, via persistent key rather
// than pointer identity, so an update requested before a rebuild is not
// silently lost by the rebuild.
func (b *Builder) restorePersistentState(idNode *dnode.IdNode) {
	info, ok := b.preInfo[idNode.OrigID]
	if !ok || len(info.PersistentTags) == 0 {
		return
	}
	for _, c := range idNode.Components {
		for _, op := range c.Operations {
			if info.PersistentTags[op.PersistentKeyFor(idNode.OrigSessionUUID)] {
				op.SetFlag(dtype.OpFlagNeedsUpdate)
				b.g.AddEntryTag(op)
			}
		}
	}
}

// Finalize snapshots the built graph's operation list and recomputes
// visibility masks.
func (b *Builder) Finalize() []*dnode.OperationNode {
	return b.g.Finalize()
}
