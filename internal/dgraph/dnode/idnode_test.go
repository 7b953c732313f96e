// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package dnode

import (
	"testing"

	"github.com/dune3d/dgraph/internal/dgraph/dtype"
)

func TestFinalizeVisibilityMaskMonotonic(t *testing.T) {
	id := NewIdNode(dtype.IDObject, "obj-a", "session-1")
	transform := id.AddComponent(dtype.ComponentTransform, "")
	id.AddComponent(dtype.ComponentParameters, "") // does not affect visibility

	id.FinalizeVisibilityMask()
	if id.VisibleComponentsMask != 0 {
		t.Fatalf("expected empty mask before any component affects visibility, got %d", id.VisibleComponentsMask)
	}

	transform.AffectsDirectlyVisible = true
	id.FinalizeVisibilityMask()

	if id.VisibleComponentsMask == 0 {
		t.Fatalf("expected non-zero mask once Transform affects visibility")
	}
	if id.PreviouslyVisibleComponentsMask != 0 {
		t.Fatalf("expected previous mask to be the pre-update value (0), got %d", id.PreviouslyVisibleComponentsMask)
	}

	// Once visible, adding another visibility-affecting component should
	// only ever grow the mask, never clear bits already set.
	geom := id.AddComponent(dtype.ComponentGeometry, "")
	geom.AffectsDirectlyVisible = true
	before := id.VisibleComponentsMask
	id.FinalizeVisibilityMask()
	if id.VisibleComponentsMask&before != before {
		t.Fatalf("mask shrank across rebuild: before=%d after=%d", before, id.VisibleComponentsMask)
	}
}

func TestClearRecalcPreservesPrevious(t *testing.T) {
	id := NewIdNode(dtype.IDObject, "obj-a", "session-1")
	id.Recalc = dtype.RecalcTransform | dtype.RecalcGeometry

	id.ClearRecalc()

	if id.Recalc != 0 {
		t.Fatalf("expected Recalc cleared, got %s", id.Recalc)
	}
	if id.PreviousRecalc != (dtype.RecalcTransform | dtype.RecalcGeometry) {
		t.Fatalf("expected PreviousRecalc to carry the cleared value, got %s", id.PreviousRecalc)
	}
}

func TestEvalFlagsChanged(t *testing.T) {
	id := NewIdNode(dtype.IDMesh, "mesh-a", "session-1")
	if id.EvalFlagsChanged() {
		t.Fatalf("expected no change on a fresh node")
	}
	id.EvalFlags = dtype.EvalFlagNeedCurvePath
	if !id.EvalFlagsChanged() {
		t.Fatalf("expected change once EvalFlags diverges from PreviousEvalFlags")
	}
}

func TestNeedsCoW(t *testing.T) {
	img := NewIdNode(dtype.IDImage, "img-a", "session-1")
	if img.NeedsCoW() {
		t.Fatalf("expected IDImage not to need CoW")
	}
	obj := NewIdNode(dtype.IDObject, "obj-a", "session-1")
	if !obj.NeedsCoW() {
		t.Fatalf("expected IDObject to need CoW")
	}
}
