// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

// Package cow implements the copy-on-write shadow manager: it
// decides which IDs need an evaluated shadow, allocates the shallow
// placeholder on first access, and tracks whether a shadow has since been
// "expanded" (populated with real content by its CoW operation) and is
// therefore safe for the rest of evaluation to read.
package cow

import (
	"sync"

	"github.com/dune3d/dgraph/internal/dgraph/dlog"
	"github.com/dune3d/dgraph/internal/dgraph/dnode"
	"github.com/dune3d/dgraph/internal/dgraph/dtype"
)

var log = dlog.Named("cow")

// ShadowFactory allocates a shallow, type-tagged, empty-body copy of an
// original datablock. The real contents are populated later by the
// per-ID CoW operation.
type ShadowFactory func(origID dnode.OrigID, idType dtype.IDType) dnode.OrigID

// Manager tracks the original/evaluated mapping for a single graph.
type Manager struct {
	mu       sync.Mutex
	shadowOf ShadowFactory
	expanded map[dnode.OrigID]bool
	origOf   map[dnode.OrigID]dnode.OrigID // cow id -> orig id, for GetOriginal
}

// NewManager constructs a CoW manager that allocates shadows with the
// given factory.
func NewManager(shadowOf ShadowFactory) *Manager {
	return &Manager{
		shadowOf: shadowOf,
		expanded: make(map[dnode.OrigID]bool),
		origOf:   make(map[dnode.OrigID]dnode.OrigID),
	}
}

// NeedsCoW reports whether id's type requires a shadow at all.
func (m *Manager) NeedsCoW(idType dtype.IDType) bool {
	return !dtype.NoCoWNeeded[idType]
}

// ParamUpdateNeedsCoW reports whether a change to this ID type's
// Parameters component should force a CoW tag.
func (m *Manager) ParamUpdateNeedsCoW(idType dtype.IDType) bool {
	return !dtype.SupportsParamUpdateWithoutCoW[idType]
}

// EnsureShadow allocates id's evaluated shadow if one is needed and none
// exists yet. Idempotent.
func (m *Manager) EnsureShadow(id *dnode.IdNode) {
	if !m.NeedsCoW(id.IDType) {
		id.CowID = id.OrigID
		return
	}
	if id.CowID != id.OrigID {
		// Already has a shadow (possibly carried over from a previous
		// build via the persistent-key transfer).
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	shadow := m.shadowOf(id.OrigID, id.IDType)
	id.CowID = shadow
	m.origOf[shadow] = id.OrigID
	log.Trace("allocated shallow CoW shadow", "id_type", id.IDType.String())
}

// MarkExpanded records that id's shadow has been populated by its CoW
// operation and is now safe to read.
func (m *Manager) MarkExpanded(id *dnode.IdNode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expanded[id.CowID] = true
}

// IsExpanded reports whether id's shadow is safe to read. An ID that
// doesn't need CoW is trivially "expanded" because it has no shadow to
// populate.
func (m *Manager) IsExpanded(id *dnode.IdNode) bool {
	if !m.NeedsCoW(id.IDType) {
		return true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expanded[id.CowID]
}

// GetEvaluated returns the evaluated shadow for id, mirroring the
// get_cow_id(id_orig) contract: if no shadow is needed, returns the
// original unchanged; if the caller passes an already-shadow ID, it is
// returned unchanged; asserts (in debug callers; this package just logs)
// that an existing shadow is fully expanded.
func (m *Manager) GetEvaluated(id *dnode.IdNode) dnode.OrigID {
	if !m.NeedsCoW(id.IDType) {
		return id.OrigID
	}
	m.mu.Lock()
	_, isShadow := m.origOf[id.CowID]
	expanded := m.expanded[id.CowID]
	m.mu.Unlock()
	if isShadow && !expanded {
		// Ambiguous CoW state: return the original pointer,
		// never fail, and only complain loudly in debug logging.
		log.Debug("requested evaluated copy of an unexpanded shadow", "id_type", id.IDType.String())
		return id.OrigID
	}
	return id.CowID
}

// GetOriginal reverses a shadow ID back to its original, or returns the
// input unchanged if it isn't a known shadow.
func (m *Manager) GetOriginal(anyID dnode.OrigID) dnode.OrigID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if orig, ok := m.origOf[anyID]; ok {
		return orig
	}
	return anyID
}

// Forget drops all bookkeeping for a shadow, used when an IdNode is
// pruned during rebuild or the graph is freed.
func (m *Manager) Forget(id *dnode.IdNode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.expanded, id.CowID)
	delete(m.origOf, id.CowID)
}
