// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package cow

import (
	"fmt"
	"testing"

	"github.com/dune3d/dgraph/internal/dgraph/dnode"
	"github.com/dune3d/dgraph/internal/dgraph/dtype"
)

func shadowIDFor(origID dnode.OrigID) dnode.OrigID {
	return fmt.Sprintf("shadow(%v)", origID)
}

func TestEnsureShadowAllocatesOnce(t *testing.T) {
	m := NewManager(func(origID dnode.OrigID, idType dtype.IDType) dnode.OrigID {
		return shadowIDFor(origID)
	})
	id := dnode.NewIdNode(dtype.IDObject, "obj-a", "session-1")

	m.EnsureShadow(id)
	if id.CowID == id.OrigID {
		t.Fatalf("expected a distinct shadow id to be allocated")
	}
	first := id.CowID

	m.EnsureShadow(id) // idempotent
	if id.CowID != first {
		t.Fatalf("expected EnsureShadow to be idempotent, got a new shadow id")
	}
}

func TestEnsureShadowSkippedForNoCoWTypes(t *testing.T) {
	m := NewManager(func(origID dnode.OrigID, idType dtype.IDType) dnode.OrigID {
		t.Fatalf("shadow factory should not be called for a NoCoWNeeded type")
		return nil
	})
	id := dnode.NewIdNode(dtype.IDImage, "img-a", "session-1")
	m.EnsureShadow(id)
	if id.CowID != id.OrigID {
		t.Fatalf("expected CowID to alias OrigID for a type that needs no CoW")
	}
}

func TestGetEvaluatedRoundTrip(t *testing.T) {
	m := NewManager(shadowIDForManager)
	id := dnode.NewIdNode(dtype.IDObject, "obj-a", "session-1")
	m.EnsureShadow(id)

	// Unexpanded shadow: GetEvaluated falls back to the original rather
	// than returning a half-populated shadow.
	if got := m.GetEvaluated(id); got != id.OrigID {
		t.Fatalf("GetEvaluated on unexpanded shadow = %v, want original %v", got, id.OrigID)
	}

	m.MarkExpanded(id)
	if got := m.GetEvaluated(id); got != id.CowID {
		t.Fatalf("GetEvaluated on expanded shadow = %v, want shadow %v", got, id.CowID)
	}

	if got := m.GetOriginal(id.CowID); got != id.OrigID {
		t.Fatalf("GetOriginal(shadow) = %v, want original %v", got, id.OrigID)
	}
	if got := m.GetOriginal(id.OrigID); got != id.OrigID {
		t.Fatalf("GetOriginal(original) = %v, want unchanged %v", got, id.OrigID)
	}
}

func shadowIDForManager(origID dnode.OrigID, idType dtype.IDType) dnode.OrigID {
	return shadowIDFor(origID)
}

func TestForgetClearsBookkeeping(t *testing.T) {
	m := NewManager(shadowIDForManager)
	id := dnode.NewIdNode(dtype.IDObject, "obj-a", "session-1")
	m.EnsureShadow(id)
	m.MarkExpanded(id)

	m.Forget(id)

	if m.IsExpanded(id) {
		t.Fatalf("expected IsExpanded to be false after Forget")
	}
	if got := m.GetOriginal(id.CowID); got != id.CowID {
		t.Fatalf("expected GetOriginal to no longer resolve a forgotten shadow")
	}
}
