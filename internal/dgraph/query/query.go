// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

// Package query implements the read-only graph traversal API: walking
// outward to dependents or inward to ancestors, at both the operation and
// ID granularity.
//
// Unlike the flush walk, traversal here keeps its own visited set rather
// than reusing OperationNode.CustomFlags, so a query can safely run
// concurrently with another query over the same graph. It must still not
// overlap an in-progress flush, which does reuse CustomFlags as its
// visited marker.
package query

import (
	"github.com/dune3d/dgraph/internal/dgraph/dnode"
	"github.com/dune3d/dgraph/internal/dgraph/dtype"
	"github.com/dune3d/dgraph/internal/dgraph/graph"
)

// ForEachDependentOperation walks outward from op along Outlinks, calling
// fn once for every reachable operation, excluding op itself. If
// ignoreTransformSolvers is set, walking does not cross a RigidbodySim
// operation's outbound edges, so physics solver fan-out doesn't flood
// unrelated dependents.
func ForEachDependentOperation(op *dnode.OperationNode, ignoreTransformSolvers bool, fn func(*dnode.OperationNode)) {
	visited := map[*dnode.OperationNode]bool{op: true}
	queue := []*dnode.OperationNode{op}
	for i := 0; i < len(queue); i++ {
		cur := queue[i]
		if ignoreTransformSolvers && cur.OpCode == dtype.OpRigidbodySim {
			continue
		}
		for _, rel := range cur.Outlinks {
			next := rel.To
			if visited[next] {
				continue
			}
			visited[next] = true
			fn(next)
			queue = append(queue, next)
		}
	}
}

// ForEachAncestorOperation is the inward-walking counterpart, following
// Inlinks instead of Outlinks.
func ForEachAncestorOperation(op *dnode.OperationNode, fn func(*dnode.OperationNode)) {
	visited := map[*dnode.OperationNode]bool{op: true}
	queue := []*dnode.OperationNode{op}
	for i := 0; i < len(queue); i++ {
		cur := queue[i]
		for _, rel := range cur.Inlinks {
			prev := rel.From
			if visited[prev] {
				continue
			}
			visited[prev] = true
			fn(prev)
			queue = append(queue, prev)
		}
	}
}

// ForEachDependentID calls fn once for every distinct IdNode reachable
// from any operation belonging to id, excluding id itself.
func ForEachDependentID(g *graph.Graph, id *dnode.IdNode, flags dtype.ObjectIteratorFlag, fn func(*dnode.IdNode)) {
	seen := map[*dnode.IdNode]bool{id: true}
	ignoreTransformSolvers := flags&dtype.ObjectIterIgnoreTransformSolvers != 0
	for _, c := range id.Components {
		// Visibility is an internal bookkeeping component: it must never
		// seed a walk or be reported as a dependent.
		if c.Type.IsInternal() {
			continue
		}
		for _, op := range c.Operations {
			ForEachDependentOperation(op, ignoreTransformSolvers, func(dep *dnode.OperationNode) {
				if dep.Component == nil || dep.Component.ID == nil {
					return
				}
				if dep.Component.Type.IsInternal() {
					return
				}
				target := dep.Component.ID
				if seen[target] {
					return
				}
				if !passesLinkFilter(target, flags) {
					return
				}
				seen[target] = true
				fn(target)
			})
		}
	}
}

// ForEachAncestorID is the inward-walking counterpart of
// ForEachDependentID.
func ForEachAncestorID(g *graph.Graph, id *dnode.IdNode, fn func(*dnode.IdNode)) {
	seen := map[*dnode.IdNode]bool{id: true}
	for _, c := range id.Components {
		if c.Type.IsInternal() {
			continue
		}
		for _, op := range c.Operations {
			ForEachAncestorOperation(op, func(anc *dnode.OperationNode) {
				if anc.Component == nil || anc.Component.ID == nil {
					return
				}
				if anc.Component.Type.IsInternal() {
					return
				}
				target := anc.Component.ID
				if seen[target] {
					return
				}
				seen[target] = true
				fn(target)
			})
		}
	}
}

// ForEachID iterates every IdNode the graph owns, regardless of
// reachability, in deterministic allocation order.
func ForEachID(g *graph.Graph, flags dtype.ObjectIteratorFlag, fn func(*dnode.IdNode)) {
	for _, id := range g.IDNodes() {
		if !passesLinkFilter(id, flags) {
			continue
		}
		fn(id)
	}
}

func passesLinkFilter(id *dnode.IdNode, flags dtype.ObjectIteratorFlag) bool {
	if flags == 0 {
		return true
	}
	if flags&dtype.ObjectIterVisible != 0 && !id.IsDirectlyVisible {
		return false
	}
	switch id.LinkedState {
	case dtype.LinkedDirectly:
		return flags&dtype.ObjectIterLinkedDirectly != 0
	case dtype.LinkedViaSet:
		return flags&dtype.ObjectIterLinkedViaSet != 0
	case dtype.LinkedIndirectly:
		return flags&dtype.ObjectIterLinkedIndirectly != 0
	default:
		return true
	}
}
