// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package query

import (
	"testing"

	"github.com/dune3d/dgraph/internal/dgraph/dnode"
	"github.com/dune3d/dgraph/internal/dgraph/dtype"
	"github.com/dune3d/dgraph/internal/dgraph/graph"
	"github.com/dune3d/dgraph/internal/dgraph/registry"
)

// buildTwoObjectGraph builds parent -> child, where child's Transform
// depends on parent's Transform.Final.
func buildTwoObjectGraph(t *testing.T) (*graph.Graph, *dnode.IdNode, *dnode.IdNode) {
	t.Helper()
	r := registry.New()
	registry.RegisterDefaults(r)
	g := graph.New(graph.Config{Mode: dtype.EvalModeViewport}, r, nil, nil)

	parent := g.AddIDNode(dtype.IDObject, "parent", "s1")
	parentComp := r.NewComponent(parent, dtype.ComponentTransform, "")
	parent.Components[parentComp.Key()] = parentComp
	parentFinal := r.NewOperation(parentComp, dtype.OpTransformFinal, "", 0, nil)
	parentComp.Operations = append(parentComp.Operations, parentFinal)
	parentComp.ExitOperation = parentFinal

	child := g.AddIDNode(dtype.IDObject, "child", "s2")
	childComp := r.NewComponent(child, dtype.ComponentTransform, "")
	child.Components[childComp.Key()] = childComp
	childParentOp := r.NewOperation(childComp, dtype.OpTransformParent, "", 0, nil)
	childComp.Operations = append(childComp.Operations, childParentOp)
	childComp.EntryOperation = childParentOp

	g.AddRelation(parentFinal, childParentOp, "parent", dtype.RelationCheckBeforeAdd)

	return g, parent, child
}

func TestForEachDependentIDFindsChild(t *testing.T) {
	g, parent, child := buildTwoObjectGraph(t)

	var found []*dnode.IdNode
	ForEachDependentID(g, parent, 0, func(id *dnode.IdNode) {
		found = append(found, id)
	})

	if len(found) != 1 || found[0] != child {
		t.Fatalf("expected to find exactly the child id, got %v", found)
	}
}

func TestForEachDependentIDExcludesSelf(t *testing.T) {
	g, parent, _ := buildTwoObjectGraph(t)

	ForEachDependentID(g, parent, 0, func(id *dnode.IdNode) {
		if id == parent {
			t.Fatalf("traversal must exclude the starting id itself")
		}
	})
}

func TestForEachAncestorIDFindsParent(t *testing.T) {
	g, parent, child := buildTwoObjectGraph(t)

	var found []*dnode.IdNode
	ForEachAncestorID(g, child, func(id *dnode.IdNode) {
		found = append(found, id)
	})

	if len(found) != 1 || found[0] != parent {
		t.Fatalf("expected to find exactly the parent id, got %v", found)
	}
}

func TestForEachIDVisitsEveryNode(t *testing.T) {
	g, parent, child := buildTwoObjectGraph(t)

	seen := map[*dnode.IdNode]bool{}
	ForEachID(g, 0, func(id *dnode.IdNode) { seen[id] = true })

	if !seen[parent] || !seen[child] {
		t.Fatalf("expected ForEachID to visit both parent and child")
	}
}

// TestForEachDependentIDExcludesVisibilityComponent covers the invariant
// that the internal Visibility component never seeds a dependent walk and
// is never reported as one. obj-a's Visibility operation links directly
// to obj-b's Transform, a path that exists only through the internal
// component (obj-a's Geometry component has no such edge), so obj-b must
// not show up as a dependent of obj-a.
func TestForEachDependentIDExcludesVisibilityComponent(t *testing.T) {
	r := registry.New()
	registry.RegisterDefaults(r)
	g := graph.New(graph.Config{Mode: dtype.EvalModeViewport}, r, nil, nil)

	obj := g.AddIDNode(dtype.IDObject, "obj-a", "s1")
	vis := r.NewComponent(obj, dtype.ComponentVisibility, "")
	obj.Components[vis.Key()] = vis
	visOp := r.NewOperation(vis, dtype.OpGeometryVisibility, "", 0, nil)
	vis.Operations = append(vis.Operations, visOp)
	vis.EntryOperation, vis.ExitOperation = visOp, visOp

	geom := r.NewComponent(obj, dtype.ComponentGeometry, "")
	obj.Components[geom.Key()] = geom
	geomInit := r.NewOperation(geom, dtype.OpGeometryEvalInit, "", 0, nil)
	geom.Operations = append(geom.Operations, geomInit)
	geom.EntryOperation = geomInit

	other := g.AddIDNode(dtype.IDObject, "obj-b", "s2")
	otherComp := r.NewComponent(other, dtype.ComponentTransform, "")
	other.Components[otherComp.Key()] = otherComp
	otherOp := r.NewOperation(otherComp, dtype.OpTransformFinal, "", 0, nil)
	otherComp.Operations = append(otherComp.Operations, otherOp)
	otherComp.ExitOperation = otherOp
	g.AddRelation(visOp, otherOp, "visibility reaches obj-b directly", dtype.RelationCheckBeforeAdd)

	var found []*dnode.IdNode
	ForEachDependentID(g, obj, 0, func(id *dnode.IdNode) {
		found = append(found, id)
	})
	if len(found) != 0 {
		t.Fatalf("expected the internal Visibility component not to seed or report a dependent, got %v", found)
	}
}

func TestForEachDependentOperationIgnoresRigidbodySim(t *testing.T) {
	r := registry.New()
	registry.RegisterDefaults(r)
	g := graph.New(graph.Config{Mode: dtype.EvalModeViewport}, r, nil, nil)
	id := g.AddIDNode(dtype.IDObject, "obj-a", "s1")
	comp := r.NewComponent(id, dtype.ComponentTransform, "")
	id.Components[comp.Key()] = comp

	sim := r.NewOperation(comp, dtype.OpRigidbodySim, "", 0, nil)
	downstream := r.NewOperation(comp, dtype.OpRigidbodyTransformCopy, "", 0, nil)
	g.AddRelation(sim, downstream, "sim output", 0)

	var visited []*dnode.OperationNode
	ForEachDependentOperation(sim, true, func(op *dnode.OperationNode) {
		visited = append(visited, op)
	})

	if len(visited) != 0 {
		t.Fatalf("expected IGNORE_TRANSFORM_SOLVERS to stop at the RigidbodySim boundary, got %v", visited)
	}
}
