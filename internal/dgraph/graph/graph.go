// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

// Package graph implements the Graph Store: the object that
// owns all nodes, the ID lookup table, the entry-tag set, the time
// source, per-graph configuration and the CoW mapping.
package graph

import (
	"sync"

	"github.com/dune3d/dgraph/internal/dgraph/collections"
	"github.com/dune3d/dgraph/internal/dgraph/cow"
	"github.com/dune3d/dgraph/internal/dgraph/dlog"
	"github.com/dune3d/dgraph/internal/dgraph/dnode"
	"github.com/dune3d/dgraph/internal/dgraph/dtype"
	"github.com/dune3d/dgraph/internal/dgraph/physics"
	"github.com/dune3d/dgraph/internal/dgraph/registry"
)

var log = dlog.Named("graph")

// Config is the (Scene, ViewLayer, Main, mode, frame, ctime) tuple plus
// the handful of boolean knobs a graph carries for its whole lifetime.
//
// Scene, ViewLayer and Main are opaque host handles: the scene
// loader/editor subsystem that owns their concrete types is out of scope
// for this module.
type Config struct {
	Main      any
	Scene     any
	ViewLayer any

	Mode  dtype.EvalMode
	Frame float64
	Ctime float64

	IsRenderPipeline bool
	UseEditorsUpdate bool
}

// Graph owns every node in a single dependency graph instance.
type Graph struct {
	// mu guards isEvaluating and is held by Finalize and Free. AddIDNode,
	// RemoveIDNode and AddRelation do not take it and do not check
	// IsEvaluating; callers serialize structural mutation themselves.
	// Taggers only need entryMu, a separate lock, so that tagging never
	// blocks on a concurrent evaluation the way structural mutation must.
	mu      sync.Mutex
	entryMu sync.Mutex

	cfg      Config
	Registry *registry.Registry
	CoW      *cow.Manager
	Physics  *physics.Cache

	idHash  map[dnode.OrigID]*dnode.IdNode
	idNodes []*dnode.IdNode // allocation order: deterministic iteration

	// operations is populated at Finalize for the external scheduler.
	operations []*dnode.OperationNode

	entryTags collections.Set[*dnode.OperationNode]

	TimeSource *dnode.TimeSourceNode
	SceneCoW   dnode.OrigID

	NeedUpdate               bool
	NeedVisibilityUpdate     bool
	NeedVisibilityTimeUpdate bool
	IsActive                 bool
	isEvaluating             bool

	idTypeUpdated map[dtype.IDType]bool
	idTypeExist   map[dtype.IDType]bool
}

// New constructs an empty graph bound to cfg, pre-initializing a
// TimeSourceNode and registering with the process-wide live-graph
// registry. liveRegistry may be nil in tests that
// don't care about the process-wide bookkeeping.
func New(cfg Config, reg *registry.Registry, cowMgr *cow.Manager, liveRegistry LiveRegistry) *Graph {
	g := &Graph{
		cfg:           cfg,
		Registry:      reg,
		CoW:           cowMgr,
		Physics:       physics.NewCache(),
		idHash:        make(map[dnode.OrigID]*dnode.IdNode),
		entryTags:     collections.NewSet[*dnode.OperationNode](),
		TimeSource:    dnode.NewTimeSourceNode(),
		IsActive:      true,
		idTypeUpdated: make(map[dtype.IDType]bool),
		idTypeExist:   make(map[dtype.IDType]bool),
	}
	if liveRegistry != nil {
		liveRegistry.Register(g)
	}
	return g
}

// LiveRegistry is the process-wide live-graph registry collaborator
//. Defined here rather than imported from
// runtime to avoid an import cycle; runtime.Registry satisfies it.
type LiveRegistry interface {
	Register(g *Graph)
	Unregister(g *Graph)
}

func (g *Graph) Config() Config { return g.cfg }

// ReplaceOwners switches the context references, used for undo and render
// where the graph structure is reused but its source context differs
//. If Main changed the caller is expected to re-register with
// the live-graph registry; this function only swaps the stored handles.
func (g *Graph) ReplaceOwners(main, scene, viewLayer any) {
	g.cfg.Main = main
	g.cfg.Scene = scene
	g.cfg.ViewLayer = viewLayer
}

// FindIDNode is an O(1) lookup.
func (g *Graph) FindIDNode(origID dnode.OrigID) (*dnode.IdNode, bool) {
	n, ok := g.idHash[origID]
	return n, ok
}

// AddIDNode is idempotent: if origID is already present it is returned
// unchanged, otherwise a new IdNode is constructed, its CoW shadow policy
// applied, and it is appended to both id_hash and id_nodes.
func (g *Graph) AddIDNode(idType dtype.IDType, origID dnode.OrigID, sessionUUID string) *dnode.IdNode {
	if existing, ok := g.idHash[origID]; ok {
		return existing
	}
	n := dnode.NewIdNode(idType, origID, sessionUUID)
	if g.CoW != nil {
		g.CoW.EnsureShadow(n)
	}
	g.idHash[origID] = n
	g.idNodes = append(g.idNodes, n)
	g.idTypeExist[idType] = true
	return n
}

// RemoveIDNode drops origID from both id_hash and id_nodes, used when the
// builder prunes a node that no longer exists in the scene during a
// rebuild.
func (g *Graph) RemoveIDNode(origID dnode.OrigID) {
	n, ok := g.idHash[origID]
	if !ok {
		return
	}
	delete(g.idHash, origID)
	for i, existing := range g.idNodes {
		if existing == n {
			g.idNodes = append(g.idNodes[:i], g.idNodes[i+1:]...)
			break
		}
	}
	if g.CoW != nil {
		g.CoW.Forget(n)
	}
}

// IDNodes returns the id nodes in allocation order.
func (g *Graph) IDNodes() []*dnode.IdNode {
	return g.idNodes
}

// AddRelation implements add_new_relation: with
// CHECK_BEFORE_ADD set it scans from.Outlinks for an identical (to,
// description) pair and merges flags into it if found; otherwise it
// allocates a new relation. It also checks the CoW-layering debug rule
// and logs a violation at debug level (GodMode relations are exempt):
// for operation-to-operation relations, either the source is the target's
// CoW op, or the target is not itself a CoW op.
func (g *Graph) AddRelation(from, to *dnode.OperationNode, description string, flags dtype.RelationFlag) *dnode.Relation {
	if flags&dtype.RelationCheckBeforeAdd != 0 {
		for _, rel := range from.Outlinks {
			if rel.To == to && rel.Description == description {
				rel.Flags |= flags
				return rel
			}
		}
	}
	if to.OpCode.IsCoW() && from.OpCode != dtype.OpCopyOnWrite && flags&dtype.RelationGodMode == 0 {
		log.Debug("relation violates CoW layering rule", "from", from.OpCode.String(), "to", to.OpCode.String())
	}
	return dnode.AddRelation(from, to, description, flags)
}

// EntryTags returns the current entry-tag set. Callers must not mutate it
// directly; use AddEntryTag/ClearEntryTags.
func (g *Graph) EntryTags() collections.Set[*dnode.OperationNode] {
	g.entryMu.Lock()
	defer g.entryMu.Unlock()
	// Return a defensive snapshot copy: the flusher iterates this set
	// while the tagger's lock discipline only guarantees exclusive access
	// during the copy itself.
	out := make(collections.Set[*dnode.OperationNode], len(g.entryTags))
	for op := range g.entryTags {
		out.Add(op)
	}
	return out
}

// AddEntryTag is idempotent set-insertion.
func (g *Graph) AddEntryTag(op *dnode.OperationNode) {
	g.entryMu.Lock()
	defer g.entryMu.Unlock()
	g.entryTags.Add(op)
}

// ClearEntryTags empties the entry-tag set after evaluation.
func (g *Graph) ClearEntryTags() {
	g.entryMu.Lock()
	defer g.entryMu.Unlock()
	g.entryTags = collections.NewSet[*dnode.OperationNode]()
}

// SetEvaluating toggles the structural-mutation gate. Returns a release func.
func (g *Graph) SetEvaluating() func() {
	g.mu.Lock()
	g.isEvaluating = true
	g.mu.Unlock()
	return func() {
		g.mu.Lock()
		g.isEvaluating = false
		g.mu.Unlock()
	}
}

func (g *Graph) IsEvaluating() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isEvaluating
}

// Lock/Unlock expose the structural mutation mutex directly for builders
// that need to hold it across multiple Graph calls.
func (g *Graph) Lock()   { g.mu.Lock() }
func (g *Graph) Unlock() { g.mu.Unlock() }

// Finalize snapshots every operation node reachable from the id/component
// tree into g.operations for the external scheduler to iterate. IDs come
// in allocation order and operations in creation order within their
// component; the order of components within an ID is not defined.
func (g *Graph) Finalize() []*dnode.OperationNode {
	g.mu.Lock()
	defer g.mu.Unlock()

	ops := make([]*dnode.OperationNode, 0, 256)
	if g.TimeSource.Op != nil {
		ops = append(ops, g.TimeSource.Op)
	}
	for _, id := range g.idNodes {
		id.FinalizeVisibilityMask()
		for _, c := range id.Components {
			c.DiscardOpsMap()
			ops = append(ops, c.Operations...)
		}
	}
	for _, op := range ops {
		op.NumLinksPending = countOperationInlinks(op)
	}
	g.operations = ops
	return ops
}

func countOperationInlinks(op *dnode.OperationNode) int {
	n := 0
	for _, rel := range op.Inlinks {
		if rel.From.Class == dtype.NodeClassOperation {
			n++
		}
	}
	return n
}

// Operations returns the finalized operation slice.
func (g *Graph) Operations() []*dnode.OperationNode { return g.operations }

// MarkIDTypeUpdated sets the ID-type-updated bit.
func (g *Graph) MarkIDTypeUpdated(t dtype.IDType) { g.idTypeUpdated[t] = true }

func (g *Graph) IDTypeUpdated(t dtype.IDType) bool { return g.idTypeUpdated[t] }

func (g *Graph) IDTypeExists(t dtype.IDType) bool { return g.idTypeExist[t] }

// idFreeOrder buckets an IdNode for the destruction order free() requires.
func idFreeOrder(n *dnode.IdNode) int {
	switch n.IDType {
	case dtype.IDParticleSettings:
		return 0
	case dtype.IDScene:
		return 2
	default:
		return 1
	}
}

// Free destroys id-nodes in the order free() requires, clears
// physics caches via physicsFree, and unregisters from the live-graph
// registry.
func (g *Graph) Free(liveRegistry LiveRegistry, idFree func(*dnode.IdNode), physicsFree func(physics.Kind) physics.FreeFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ordered := make([]*dnode.IdNode, len(g.idNodes))
	copy(ordered, g.idNodes)
	sortStableByOrder(ordered, idFreeOrder)

	for _, n := range ordered {
		if idFree != nil {
			idFree(n)
		}
		if g.CoW != nil {
			g.CoW.Forget(n)
		}
	}
	if physicsFree != nil {
		g.Physics.ClearAll(physicsFree)
	}
	g.idHash = nil
	g.idNodes = nil
	g.operations = nil

	if liveRegistry != nil {
		liveRegistry.Unregister(g)
	}
}

func sortStableByOrder(nodes []*dnode.IdNode, order func(*dnode.IdNode) int) {
	// Small stable insertion sort: the node counts involved are small
	// (typical scenes have far fewer distinct ID types than nodes) and we
	// need stability to keep same-bucket nodes in allocation order.
	for i := 1; i < len(nodes); i++ {
		j := i
		for j > 0 && order(nodes[j-1]) > order(nodes[j]) {
			nodes[j-1], nodes[j] = nodes[j], nodes[j-1]
			j--
		}
	}
}
