// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

// Package debugutil implements the graph's debug/diagnostic tooling: a
// structural validator (link bidirectionality, valency consistency),
// aggregate stats, a pretty printer, and a raw dump fallback for when the
// pretty printer itself is the thing under suspicion.
package debugutil

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/hashicorp/go-multierror"
	"github.com/xlab/treeprint"

	"github.com/dune3d/dgraph/internal/dgraph/dnode"
	"github.com/dune3d/dgraph/internal/dgraph/dtype"
	"github.com/dune3d/dgraph/internal/dgraph/graph"
)

// Stats is a counters view of a built graph, grounded on deg_debug_stats:
// simple counts a host can surface in an "about this scene" panel without
// walking the graph itself.
type Stats struct {
	IDNodes        int
	ComponentNodes int
	OperationNodes int
	Relations      int
	EntryTags      int
	TimeSource     bool
}

// ComputeStats walks g once and tallies every node/relation kind.
func ComputeStats(g *graph.Graph) Stats {
	var s Stats
	s.TimeSource = g.TimeSource != nil && g.TimeSource.Op != nil
	s.EntryTags = g.EntryTags().Len()

	seenRel := make(map[*dnode.Relation]bool)
	for _, id := range g.IDNodes() {
		s.IDNodes++
		for _, c := range id.Components {
			s.ComponentNodes++
			for _, op := range c.Operations {
				s.OperationNodes++
				for _, rel := range op.Outlinks {
					if !seenRel[rel] {
						seenRel[rel] = true
						s.Relations++
					}
				}
			}
		}
	}
	return s
}

// Issue is one structural problem the validator found.
type Issue struct {
	Description string
}

// IssuesToError folds a slice of Issues into a single error via
// multierror, so callers that just want a pass/fail (e.g. a test
// assertion) don't need to range over []Issue themselves. Returns nil for
// an empty slice.
func IssuesToError(issues []Issue) error {
	if len(issues) == 0 {
		return nil
	}
	var result *multierror.Error
	for _, issue := range issues {
		result = multierror.Append(result, errors.New(issue.Description))
	}
	return result.ErrorOrNil()
}

// ValidateLinks checks bidirectional-links and valency-consistency: every
// relation must appear in both endpoints' link vectors exactly once, and
// every operation's NumLinksPending (once finalized) must equal its
// number of operation-class inbound relations.
func ValidateLinks(g *graph.Graph) []Issue {
	var issues []Issue

	for _, op := range allOperations(g) {
		for _, rel := range op.Outlinks {
			if rel.From != op {
				issues = append(issues, Issue{fmt.Sprintf("relation %q: From does not match owning operation", rel.Description)})
			}
			if n := countRelation(rel.To.Inlinks, rel); n != 1 {
				issues = append(issues, Issue{fmt.Sprintf("relation %q: %d reciprocal Inlinks entries on %s, want 1", rel.Description, n, opLabel(rel.To))})
			}
		}
		for _, rel := range op.Inlinks {
			if rel.To != op {
				issues = append(issues, Issue{fmt.Sprintf("relation %q: To does not match owning operation", rel.Description)})
			}
			if n := countRelation(rel.From.Outlinks, rel); n != 1 {
				issues = append(issues, Issue{fmt.Sprintf("relation %q: %d reciprocal Outlinks entries on %s, want 1", rel.Description, n, opLabel(rel.From))})
			}
		}
	}

	for _, op := range g.Operations() {
		want := 0
		for _, rel := range op.Inlinks {
			if rel.From.Class == dtype.NodeClassOperation {
				want++
			}
		}
		if op.NumLinksPending != want {
			issues = append(issues, Issue{fmt.Sprintf("%s: NumLinksPending=%d, want %d", opLabel(op), op.NumLinksPending, want)})
		}
	}

	return issues
}

func countRelation(rels []*dnode.Relation, target *dnode.Relation) int {
	n := 0
	for _, r := range rels {
		if r == target {
			n++
		}
	}
	return n
}

func allOperations(g *graph.Graph) []*dnode.OperationNode {
	if ops := g.Operations(); len(ops) > 0 {
		return ops
	}
	var ops []*dnode.OperationNode
	for _, id := range g.IDNodes() {
		for _, c := range id.Components {
			ops = append(ops, c.Operations...)
		}
	}
	return ops
}

func opLabel(op *dnode.OperationNode) string {
	if op.Component == nil {
		return op.OpCode.String()
	}
	return fmt.Sprintf("%s/%s.%s", op.Component.ID.IDType, op.Component.Type, op.OpCode)
}

// PrettyPrint writes a treeprint representation of g: one branch per
// IdNode, one sub-branch per ComponentNode, leaves for each operation.
func PrettyPrint(w io.Writer, g *graph.Graph) {
	root := treeprint.New()
	root.SetValue("graph")

	for _, id := range g.IDNodes() {
		idBranch := root.AddBranch(fmt.Sprintf("%s %v", id.IDType, id.OrigID))
		for _, c := range id.Components {
			compBranch := idBranch.AddBranch(fmt.Sprintf("%s[%s]", c.Type, c.Name))
			for _, op := range c.Operations {
				compBranch.AddNode(fmt.Sprintf("%s (flags=%s)", op.OpCode, op.Flags))
			}
		}
	}
	fmt.Fprintln(w, root.String())
}

// DebugRepr builds a flat string representation directly rather than
// going through reflection, for the common case of "print this one
// operation and its immediate neighbors".
func DebugRepr(op *dnode.OperationNode) string {
	var b strings.Builder
	b.WriteString(opLabel(op))
	b.WriteString(" inlinks=[")
	for i, rel := range op.Inlinks {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(opLabel(rel.From))
	}
	b.WriteString("] outlinks=[")
	for i, rel := range op.Outlinks {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(opLabel(rel.To))
	}
	b.WriteString("]")
	return b.String()
}

// SpewDump is the fallback used when DebugRepr/PrettyPrint themselves are
// suspected of hiding the bug: a raw recursive dump of the node, including
// unexported internals, via go-spew.
func SpewDump(v any) string {
	return spew.Sdump(v)
}

// ValidateAgainstRebuild rebuilds the graph from scratch via rebuild and
// compares per-ID operation counts against the current graph, flagging
// any ID whose operation count changed despite nothing in the scene
// changing. rebuild is expected to populate and
// Finalize a fresh *graph.Graph bound to the same scene data.
func ValidateAgainstRebuild(g *graph.Graph, rebuild func() *graph.Graph) []Issue {
	fresh := rebuild()

	counts := func(gr *graph.Graph) map[dnode.OrigID]int {
		m := make(map[dnode.OrigID]int)
		for _, id := range gr.IDNodes() {
			n := 0
			for _, c := range id.Components {
				n += len(c.Operations)
			}
			m[id.OrigID] = n
		}
		return m
	}

	before, after := counts(g), counts(fresh)
	var issues []Issue
	for origID, n := range before {
		if after[origID] != n {
			issues = append(issues, Issue{fmt.Sprintf("id %v: operation count changed across no-op rebuild: %d -> %d", origID, n, after[origID])})
		}
	}
	return issues
}
