// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package debugutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dune3d/dgraph/internal/dgraph/dtype"
	"github.com/dune3d/dgraph/internal/dgraph/graph"
	"github.com/dune3d/dgraph/internal/dgraph/registry"
)

func newTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	r := registry.New()
	registry.RegisterDefaults(r)
	g := graph.New(graph.Config{Mode: dtype.EvalModeViewport}, r, nil, nil)

	id := g.AddIDNode(dtype.IDObject, "obj-a", "s1")
	comp := r.NewComponent(id, dtype.ComponentTransform, "")
	id.Components[comp.Key()] = comp
	a := r.NewOperation(comp, dtype.OpTransformInit, "", 0, nil)
	b := r.NewOperation(comp, dtype.OpTransformLocal, "", 0, nil)
	comp.Operations = append(comp.Operations, a, b)
	g.AddRelation(a, b, "chain", 0)
	g.Finalize()
	return g
}

func TestValidateLinksCleanGraph(t *testing.T) {
	g := newTestGraph(t)
	if issues := ValidateLinks(g); len(issues) != 0 {
		t.Fatalf("expected no issues on a well-formed graph, got %v", issues)
	}
}

func TestValidateLinksCatchesBrokenValency(t *testing.T) {
	g := newTestGraph(t)
	ops := g.Operations()
	ops[1].NumLinksPending = 99 // corrupt it directly

	issues := ValidateLinks(g)
	if len(issues) == 0 {
		t.Fatalf("expected ValidateLinks to catch the corrupted NumLinksPending")
	}
}

func TestComputeStats(t *testing.T) {
	g := newTestGraph(t)
	s := ComputeStats(g)

	want := Stats{
		IDNodes:        1,
		ComponentNodes: 1,
		OperationNodes: 2,
		Relations:      1,
		EntryTags:      0,
		TimeSource:     false,
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("ComputeStats mismatch (-want +got):\n%s", diff)
	}
}

func TestPrettyPrintIncludesIDAndOpcode(t *testing.T) {
	g := newTestGraph(t)
	var buf bytes.Buffer
	PrettyPrint(&buf, g)

	out := buf.String()
	if !strings.Contains(out, "Object") {
		t.Errorf("expected pretty-print output to mention the id type, got:\n%s", out)
	}
	if !strings.Contains(out, "TransformInit") {
		t.Errorf("expected pretty-print output to mention an opcode, got:\n%s", out)
	}
}

func TestIssuesToErrorEmptyIsNil(t *testing.T) {
	if err := IssuesToError(nil); err != nil {
		t.Fatalf("expected nil error for no issues, got %v", err)
	}
}

func TestIssuesToErrorJoinsMessages(t *testing.T) {
	err := IssuesToError([]Issue{{Description: "a"}, {Description: "b"}})
	if err == nil {
		t.Fatalf("expected a non-nil error")
	}
	if !strings.Contains(err.Error(), "a") || !strings.Contains(err.Error(), "b") {
		t.Fatalf("expected combined error to mention both issues, got %q", err.Error())
	}
}
