// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

// Package dnode holds the core graph data model: the node/relation types
// that make up a built dependency graph and the key types used
// to address them during relation construction.
//
// Nodes are connected with ordinary Go pointers rather than an
// arena-plus-stable-index scheme, which exists in non-GC'd languages
// mainly to resolve a pointer-cycle concern Go's own tracing garbage
// collector already handles, so reproducing it here would only add an
// indirection with no benefit.
package dnode

import "github.com/dune3d/dgraph/internal/dgraph/dtype"

// Relation is an ordered edge between two operation nodes.
type Relation struct {
	From, To    *OperationNode
	Description string
	Flags       dtype.RelationFlag
}

func (r *Relation) HasFlag(f dtype.RelationFlag) bool {
	return r.Flags&f != 0
}

// AddRelation appends rel to both endpoints' link vectors. Callers that
// want CHECK_BEFORE_ADD de-duplication should use graph.Graph.AddRelation
// instead of calling this directly; this is the low-level primitive that
// establishes the bidirectionality invariant every relation must hold.
func AddRelation(from, to *OperationNode, description string, flags dtype.RelationFlag) *Relation {
	rel := &Relation{From: from, To: to, Description: description, Flags: flags}
	from.Outlinks = append(from.Outlinks, rel)
	to.Inlinks = append(to.Inlinks, rel)
	return rel
}
