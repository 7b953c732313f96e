// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package tagger

import (
	"testing"

	"github.com/dune3d/dgraph/internal/dgraph/dtype"
	"github.com/dune3d/dgraph/internal/dgraph/graph"
	"github.com/dune3d/dgraph/internal/dgraph/registry"
)

func newTestGraph() *graph.Graph {
	r := registry.New()
	registry.RegisterDefaults(r)
	return graph.New(graph.Config{Mode: dtype.EvalModeViewport}, r, nil, nil)
}

func TestTagIDUpdateSetsRecalcAndEntryTag(t *testing.T) {
	g := newTestGraph()
	id := g.AddIDNode(dtype.IDObject, "obj-a", "s1")
	comp := g.Registry.NewComponent(id, dtype.ComponentTransform, "")
	id.Components[comp.Key()] = comp
	entry := g.Registry.NewOperation(comp, dtype.OpTransformInit, "", 0, nil)
	comp.Operations = append(comp.Operations, entry)
	comp.EntryOperation = entry

	TagIDUpdate(g, id, dtype.UpdateSourceUserEdit, dtype.RecalcTransform)

	if !id.Recalc.Has(dtype.RecalcTransform) {
		t.Fatalf("expected id.Recalc to have RecalcTransform set, got %s", id.Recalc)
	}
	if !id.IsUserModified {
		t.Fatalf("expected UserEdit source to set IsUserModified")
	}
	if !entry.HasFlag(dtype.OpFlagNeedsUpdate) {
		t.Fatalf("expected entry operation to be flagged NeedsUpdate")
	}
	if !entry.HasFlag(dtype.OpFlagUserModified) {
		t.Fatalf("expected entry operation to be flagged UserModified for a UserEdit source")
	}
	if !g.EntryTags().Has(entry) {
		t.Fatalf("expected entry operation to be added to the graph's entry tags")
	}
}

func TestTagIDUpdateIgnoresZeroFlags(t *testing.T) {
	g := newTestGraph()
	id := g.AddIDNode(dtype.IDObject, "obj-a", "s1")

	TagIDUpdate(g, id, dtype.UpdateSourceUserEdit, 0)

	if id.Recalc != 0 {
		t.Fatalf("expected no recalc bits set for a zero-flag tag")
	}
	if g.EntryTags().Len() != 0 {
		t.Fatalf("expected no entry tags for a zero-flag tag")
	}
}

func TestTimeTagTagsTimeSource(t *testing.T) {
	g := newTestGraph()
	timeOp := g.Registry.NewOperation(nil, dtype.OpSceneEval, "time", 0, nil)
	g.TimeSource.Op = timeOp

	TimeTag(g)

	if !timeOp.HasFlag(dtype.OpFlagNeedsUpdate) {
		t.Fatalf("expected time source operation to be flagged NeedsUpdate")
	}
	if !g.EntryTags().Has(timeOp) {
		t.Fatalf("expected time source operation to be entry-tagged")
	}
}
