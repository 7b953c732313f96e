// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

// Package tagger implements update tagging: turning a
// caller's "this ID changed" notification into one or more entry-tagged
// operations that the flusher will later walk outward from.
package tagger

import (
	"github.com/dune3d/dgraph/internal/dgraph/dlog"
	"github.com/dune3d/dgraph/internal/dgraph/dnode"
	"github.com/dune3d/dgraph/internal/dgraph/dtype"
	"github.com/dune3d/dgraph/internal/dgraph/graph"
)

var log = dlog.Named("tagger")

// entryPoint names the (component, opcode) pair a recalc bit should
// enter the graph at.
type entryPoint struct {
	component dtype.ComponentType
	opCode    dtype.OpCode
}

// dispatch maps each RecalcFlag bit to the entry point(s) it tags. Only
// RecalcCopy tags ComponentCopyOnWrite.
var dispatch = map[dtype.RecalcFlag][]entryPoint{
	dtype.RecalcTransform:      {{dtype.ComponentTransform, dtype.OpTransformInit}},
	dtype.RecalcGeometry:       {{dtype.ComponentGeometry, dtype.OpGeometryEvalInit}},
	dtype.RecalcAnimation:      {{dtype.ComponentAnimation, dtype.OpAnimationEntry}},
	dtype.RecalcShading:        {{dtype.ComponentShading, dtype.OpShading}},
	dtype.RecalcCopy:           {{dtype.ComponentCopyOnWrite, dtype.OpCopyOnWrite}},
	dtype.RecalcParametersEval: {{dtype.ComponentParameters, dtype.OpParamsEntry}},
	dtype.RecalcAudio:          {{dtype.ComponentAudio, dtype.OpSoundEval}},
	dtype.RecalcPoint:          {{dtype.ComponentParticleSystem, dtype.OpParticleSystemInit}},
	dtype.RecalcBase:           {{dtype.ComponentObjectFromLayer, dtype.OpObjectBaseFlags}},
	dtype.RecalcPointCache:     {{dtype.ComponentPointCache, dtype.OpPointCacheReset}},
	dtype.RecalcSequences:      {{dtype.ComponentSequencer, dtype.OpSequencesEval}},
}

// TagIDUpdate is the caller-facing entry point: it ORs flags into id.Recalc, and for each set bit
// tags the matching entry operation(s) across every component the ID
// actually has (an ID without a Geometry component, say, simply
// contributes nothing for RecalcGeometry).
//
// source drives the post-tag sub-flags: UserEdit additionally marks the ID
// user-modified and sets FlushUserEditOnly-respecting operations'
// OpFlagUserModified so FLUSH_USER_EDIT_ONLY relations don't block it.
func TagIDUpdate(g *graph.Graph, id *dnode.IdNode, source dtype.UpdateSource, flags dtype.RecalcFlag) {
	if flags == 0 {
		return
	}
	id.Recalc |= flags

	if source == dtype.UpdateSourceUserEdit {
		id.IsUserModified = true
	}

	for bit, points := range dispatch {
		if flags&bit == 0 {
			continue
		}
		for _, pt := range points {
			tagComponentEntry(g, id, pt, source)
		}
	}
}

// tagComponentEntry finds every ComponentNode of the given type on id
// (there may be several for subname'd components like Bone) and tags its
// entry operation, or failing that the specific opcode requested.
func tagComponentEntry(g *graph.Graph, id *dnode.IdNode, pt entryPoint, source dtype.UpdateSource) {
	found := false
	for _, c := range id.Components {
		if c.Type != pt.component {
			continue
		}
		found = true
		op := c.EntryOperation
		if op == nil {
			if o, ok := c.FindOperation(dnode.OpMapKey{OpCode: pt.opCode}); ok {
				op = o
			}
		}
		if op == nil {
			continue
		}
		tagOperation(g, op, source)
	}
	if !found {
		log.Debug("no matching component for recalc entry point", "id_type", id.IDType.String(), "component", pt.component.String())
	}
}

func tagOperation(g *graph.Graph, op *dnode.OperationNode, source dtype.UpdateSource) {
	op.SetFlag(dtype.OpFlagNeedsUpdate)
	if source == dtype.UpdateSourceUserEdit {
		op.SetFlag(dtype.OpFlagUserModified)
	}
	g.AddEntryTag(op)
}

// TagOperation is the lower-level entry point for callers (e.g. the
// builder's driver/constraint handling) that already hold a specific
// OperationNode reference rather than an (id, recalc-bit) pair.
func TagOperation(g *graph.Graph, op *dnode.OperationNode, source dtype.UpdateSource) {
	tagOperation(g, op, source)
}

// TagIDType tags every ID of a given type with flags and marks the type
// updated, used when a host-level addon or API call changes behavior for
// an entire datablock type at once.
func TagIDType(g *graph.Graph, t dtype.IDType, flags dtype.RecalcFlag) {
	for _, id := range g.IDNodes() {
		if id.IDType != t {
			continue
		}
		TagIDUpdate(g, id, dtype.UpdateSourceRelations, flags)
	}
	g.MarkIDTypeUpdated(t)
}

// TimeTag tags the graph's single TimeSourceNode, the root every
// time-dependent operation is transitively linked to.
func TimeTag(g *graph.Graph) {
	if g.TimeSource == nil || g.TimeSource.Op == nil {
		return
	}
	tagOperation(g, g.TimeSource.Op, dtype.UpdateSourceTime)
}

// TagVisibilityUpdate flags the graph-wide visibility recompute flag.
func TagVisibilityUpdate(g *graph.Graph, timeDependent bool) {
	g.NeedVisibilityUpdate = true
	if timeDependent {
		g.NeedVisibilityTimeUpdate = true
	}
}
