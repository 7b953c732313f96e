// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

// Package runtime holds the process-wide, lazily-initialized state a
// single host process needs exactly one of regardless of how many graphs
// it builds: the live-graph registry used for global invalidation sweeps,
// and the slot for the host's editor-update callback.
package runtime

import (
	"sync"

	"github.com/dune3d/dgraph/internal/dgraph/dlog"
	"github.com/dune3d/dgraph/internal/dgraph/dnode"
	"github.com/dune3d/dgraph/internal/dgraph/errorhandling"
	"github.com/dune3d/dgraph/internal/dgraph/graph"
)

var log = dlog.Named("runtime")

// EditorUpdateFunc is the host callback NotifyEditors invokes for one
// IdNode. NotifyEditors wraps each call in errorhandling.Safe2 so a
// panicking host callback can't unwind into its caller.
type EditorUpdateFunc func(id *dnode.IdNode) error

// Registry is the process-wide live-graph registry: a graph.New call given
// this registry registers the graph here, and graph.Free given it
// unregisters. It satisfies graph.LiveRegistry.
type Registry struct {
	mu          sync.Mutex
	graphs      map[*graph.Graph]bool
	editorHooks []EditorUpdateFunc
}

// global is the process-wide singleton most hosts use; NewRegistry
// remains available for tests that want isolation between cases.
var global = NewRegistry()

// Global returns the process-wide registry singleton.
func Global() *Registry { return global }

// NewRegistry constructs an empty, independent registry.
func NewRegistry() *Registry {
	return &Registry{graphs: make(map[*graph.Graph]bool)}
}

// Register implements graph.LiveRegistry.
func (r *Registry) Register(g *graph.Graph) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.graphs[g] = true
}

// Unregister implements graph.LiveRegistry.
func (r *Registry) Unregister(g *graph.Graph) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.graphs, g)
}

// Graphs returns a snapshot of every currently-live graph, used by
// whole-process invalidation sweeps (e.g. "an add-on was (un)registered,
// tag every graph's affected IDs").
func (r *Registry) Graphs() []*graph.Graph {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*graph.Graph, 0, len(r.graphs))
	for g := range r.graphs {
		out = append(out, g)
	}
	return out
}

// ForEach applies fn to every currently-live graph.
func (r *Registry) ForEach(fn func(*graph.Graph)) {
	for _, g := range r.Graphs() {
		fn(g)
	}
}

// AddEditorHook registers a host editor-update callback, called by
// NotifyEditors; nothing in this package calls NotifyEditors on its own.
func (r *Registry) AddEditorHook(fn EditorUpdateFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.editorHooks = append(r.editorHooks, fn)
}

// NotifyEditors calls every registered editor hook for id, isolating each
// call with errorhandling.Safe2 so one misbehaving hook can't prevent the
// others from running or corrupt the caller's control flow.
func (r *Registry) NotifyEditors(id *dnode.IdNode) {
	r.mu.Lock()
	hooks := make([]EditorUpdateFunc, len(r.editorHooks))
	copy(hooks, r.editorHooks)
	r.mu.Unlock()

	for _, hook := range hooks {
		hook := hook
		_, err := errorhandling.Safe2(func() (struct{}, error) {
			return struct{}{}, hook(id)
		}, func(err error) error { return err })
		if err != nil {
			log.Error("editor update hook failed", "error", err)
		}
	}
}
