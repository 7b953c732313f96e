// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package builder

import (
	"testing"

	"github.com/dune3d/dgraph/internal/dgraph/dtype"
	"github.com/dune3d/dgraph/internal/dgraph/scene"
)

// TestPropertyKeyObjectTransform covers rule 7: a plain object-level
// transform-channel path resolves to the Transform component.
func TestPropertyKeyObjectTransform(t *testing.T) {
	g := newTestGraph()
	b := New(g)

	obj := &fakeObject{id: "cube", visible: true}
	b.BuildObject(obj, fakeViewLayer{bases: []scene.Base{fakeBase{obj: obj}}})

	op, ok := b.PropertyKey("cube", "location", dtype.PropertySourceExit)
	if !ok {
		t.Fatalf("expected location to resolve")
	}
	c, _ := b.builderMap["cube"].FindComponent(dtype.ComponentTransform, "")
	if op != c.ExitOperation {
		t.Fatalf("expected location (Exit) to resolve to Transform.Final, got %v", op)
	}
}

// TestPropertyKeyDimensions covers rule 7's dimensions special case.
func TestPropertyKeyDimensions(t *testing.T) {
	g := newTestGraph()
	b := New(g)

	obj := &fakeObject{id: "cube", visible: true, data: "cube-mesh"}
	b.BuildObject(obj, fakeViewLayer{bases: []scene.Base{fakeBase{obj: obj}}})

	op, ok := b.PropertyKey("cube", "dimensions", dtype.PropertySourceEntry)
	if !ok {
		t.Fatalf("expected dimensions to resolve")
	}
	pc, _ := b.builderMap["cube"].FindComponent(dtype.ComponentParameters, "")
	found := false
	for _, o := range pc.Operations {
		if o == op && o.OpCode == dtype.OpDimensions {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected dimensions to resolve to Parameters/Dimensions, got %v", op)
	}
}

// TestPropertyKeyHideViewport covers rule 7's hide_viewport/hide_render
// routing to ObjectFromLayer.
func TestPropertyKeyHideViewport(t *testing.T) {
	g := newTestGraph()
	b := New(g)

	obj := &fakeObject{id: "cube", visible: true}
	b.BuildObject(obj, fakeViewLayer{bases: []scene.Base{fakeBase{obj: obj}}})

	op, ok := b.PropertyKey("cube", "hide_viewport", dtype.PropertySourceExit)
	if !ok {
		t.Fatalf("expected hide_viewport to resolve")
	}
	c, _ := b.builderMap["cube"].FindComponent(dtype.ComponentObjectFromLayer, "")
	if op != c.ExitOperation {
		t.Fatalf("expected hide_viewport to resolve to ObjectFromLayer, got %v", op)
	}
}

// TestPropertyKeyPoseBone covers rule 2's bbone_*/world-space/other
// property-name dispatch on a pose-bone path.
func TestPropertyKeyPoseBone(t *testing.T) {
	g := newTestGraph()
	b := New(g)

	root := &fakeBone{name: "Root"}
	armature := &fakeArmature{id: "arm-data", bones: []*fakeBone{root}}
	rootChan := &fakePoseChannel{bone: root}
	armObj := &rigObject{
		fakeObject: fakeObject{id: "arm", visible: true},
		armature:   armature,
		poseChans:  []scene.PoseChannel{rootChan},
	}
	b.BuildObject(armObj, fakeViewLayer{bases: []scene.Base{fakeBase{obj: armObj}}})

	c, ok := b.builderMap["arm"].FindComponent(dtype.ComponentBone, "Root")
	if !ok {
		t.Fatalf("expected a Root bone component")
	}

	if op, ok := b.PropertyKey("arm", `pose.bones["Root"].location`, dtype.PropertySourceEntry); !ok || op != c.EntryOperation {
		t.Fatalf("expected an unrecognised property to resolve to BoneLocal, got %v ok=%v", op, ok)
	}
	if op, ok := b.PropertyKey("arm", `pose.bones["Root"].head`, dtype.PropertySourceExit); !ok || op != c.ExitOperation {
		t.Fatalf("expected head (Exit) to resolve to BoneDone, got %v ok=%v", op, ok)
	}
	if op, ok := b.PropertyKey("arm", `pose.bones["Root"].head`, dtype.PropertySourceEntry); !ok || op != c.EntryOperation {
		t.Fatalf("expected head (Entry) to resolve to BoneLocal, got %v ok=%v", op, ok)
	}
}

// TestPropertyKeyCustomProperty covers rule 1.
func TestPropertyKeyCustomProperty(t *testing.T) {
	g := newTestGraph()
	b := New(g)

	obj := &fakeObject{id: "cube", visible: true}
	b.BuildObject(obj, fakeViewLayer{bases: []scene.Base{fakeBase{obj: obj}}})

	op, ok := b.PropertyKey("cube", `["my_prop"]`, dtype.PropertySourceExit)
	if !ok {
		t.Fatalf("expected the custom property path to resolve")
	}
	if op.OpCode != dtype.OpIDProperty || op.Name != "my_prop" {
		t.Fatalf("expected an IdProperty op named my_prop, got %v/%v", op.OpCode, op.Name)
	}
}

// TestPropertyKeyCatchAll covers rule 9.
func TestPropertyKeyCatchAll(t *testing.T) {
	g := newTestGraph()
	b := New(g)

	obj := &fakeObject{id: "cube", visible: true}
	b.BuildObject(obj, fakeViewLayer{bases: []scene.Base{fakeBase{obj: obj}}})

	op, ok := b.PropertyKey("cube", "some_unrecognised_path", dtype.PropertySourceEntry)
	if !ok {
		t.Fatalf("expected the catch-all rule to resolve")
	}
	if op.OpCode != dtype.OpParamsEval {
		t.Fatalf("expected the catch-all to resolve to ParamsEval, got %v", op.OpCode)
	}
}
