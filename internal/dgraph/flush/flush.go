// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

// Package flush implements the flush: propagating NEEDS_UPDATE outward
// from the entry-tagged operations to everything transitively downstream,
// and accumulating each touched ID's recalc bits.
package flush

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dune3d/dgraph/internal/dgraph/dlog"
	"github.com/dune3d/dgraph/internal/dgraph/dnode"
	"github.com/dune3d/dgraph/internal/dgraph/dtype"
	"github.com/dune3d/dgraph/internal/dgraph/graph"
)

var log = dlog.Named("flush")

// EditorNotifier is called once per ID whose recalc bits changed, after
// the walk completes, so the host can redraw/resync editors.
type EditorNotifier func(id *dnode.IdNode)

// Result summarizes one flush for callers that want to avoid re-walking
// the graph themselves (e.g. tests, debug tooling).
type Result struct {
	TouchedOperations int
	TouchedIDs        int
}

// Flush runs the full flush pipeline: Prepare, Seed, Walk, Accumulate and
// Notify, in that order. notify may be nil.
func Flush(ctx context.Context, g *graph.Graph, notify EditorNotifier) (Result, error) {
	ops := g.Operations()
	if err := prepare(ctx, ops); err != nil {
		return Result{}, err
	}

	queue := seed(g)
	touched := walk(queue)

	idsChanged := accumulate(g, touched)

	if notify != nil {
		for id := range idsChanged {
			notify(id)
		}
	}

	return Result{TouchedOperations: len(touched), TouchedIDs: len(idsChanged)}, nil
}

// prepare clears the transient CustomFlags scratch word on every
// operation in parallel: the flush walk uses it as a
// visited marker and must start from a known-zero state every time.
func prepare(ctx context.Context, ops []*dnode.OperationNode) error {
	g, ctx := errgroup.WithContext(ctx)
	const chunkSize = 1024
	for start := 0; start < len(ops); start += chunkSize {
		start := start
		end := start + chunkSize
		if end > len(ops) {
			end = len(ops)
		}
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			for _, op := range ops[start:end] {
				op.CustomFlags = 0
			}
			return nil
		})
	}
	return g.Wait()
}

// seed returns every entry-tagged operation as the initial BFS frontier.
func seed(g *graph.Graph) []*dnode.OperationNode {
	tags := g.EntryTags()
	queue := make([]*dnode.OperationNode, 0, len(tags))
	for op := range tags {
		queue = append(queue, op)
	}
	return queue
}

const (
	visitedFlag uint32 = 1 << 0
)

// walk propagates NEEDS_UPDATE breadth-first from queue along Outlinks,
// honoring NO_FLUSH (never cross it) and FLUSH_USER_EDIT_ONLY (only cross
// it if the source operation was itself user-modified).
func walk(queue []*dnode.OperationNode) []*dnode.OperationNode {
	touched := make([]*dnode.OperationNode, 0, len(queue))
	for i := 0; i < len(queue); i++ {
		op := queue[i]
		if op.CustomFlags&visitedFlag != 0 {
			continue
		}
		op.CustomFlags |= visitedFlag
		op.SetFlag(dtype.OpFlagNeedsUpdate)
		touched = append(touched, op)

		for _, rel := range op.Outlinks {
			if rel.HasFlag(dtype.RelationNoFlush) {
				continue
			}
			if rel.HasFlag(dtype.RelationFlushUserEditOnly) && !op.HasFlag(dtype.OpFlagUserModified) {
				continue
			}
			next := rel.To
			if next.CustomFlags&visitedFlag != 0 {
				continue
			}
			if next.HasFlag(dtype.OpFlagFlushAnimation) && !op.HasFlag(dtype.OpFlagFlushAnimation) {
				next.SetFlag(dtype.OpFlagFlushAnimation)
			}
			if op.HasFlag(dtype.OpFlagUserModified) {
				next.SetFlag(dtype.OpFlagFlushEdit)
			}
			queue = append(queue, next)
		}
	}
	return touched
}

// accumulate ORs each touched operation's component's RecalcBitFor into
// its owning IdNode, merges the CoW-layering consequence (any recalc
// tagged on an ID that needs CoW also forces RecalcCopy unless the ID
// type supports parameter updates without it), and returns the set of IDs
// whose Recalc changed.
func accumulate(g *graph.Graph, touched []*dnode.OperationNode) map[*dnode.IdNode]bool {
	changed := make(map[*dnode.IdNode]bool)
	for _, op := range touched {
		if op.Component == nil {
			continue
		}
		id := op.Component.ID
		if id == nil {
			continue
		}
		bit := g.Registry.RecalcBitFor(op.Component.Type)
		if bit == 0 {
			continue
		}
		before := id.Recalc
		id.Recalc |= bit
		if g.CoW != nil && g.CoW.NeedsCoW(id.IDType) && g.CoW.ParamUpdateNeedsCoW(id.IDType) && bit&dtype.RecalcCopy == 0 {
			id.Recalc |= dtype.RecalcCopy
		}
		if id.Recalc != before {
			changed[id] = true
		}
	}
	return changed
}

// ClearTags resets every operation's NeedsUpdate/UserModified/flush-tag
// flags and empties the graph's entry-tag set, run once the scheduler has
// finished evaluating the tagged operations.
func ClearTags(g *graph.Graph) {
	for _, op := range g.Operations() {
		op.ClearFlag(dtype.OpFlagNeedsUpdate)
		op.ClearFlag(dtype.OpFlagUserModified)
		op.ClearFlag(dtype.OpFlagFlushAnimation)
		op.ClearFlag(dtype.OpFlagFlushEdit)
		op.CustomFlags = 0
	}
	for _, id := range g.IDNodes() {
		id.ClearRecalc()
	}
	g.ClearEntryTags()
	g.NeedVisibilityUpdate = false
	g.NeedVisibilityTimeUpdate = false
	log.Trace("cleared entry tags and operation flags")
}
