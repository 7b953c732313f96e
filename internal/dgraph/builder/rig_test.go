// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package builder

import (
	"context"
	"testing"

	"github.com/dune3d/dgraph/internal/dgraph/dnode"
	"github.com/dune3d/dgraph/internal/dgraph/dtype"
	"github.com/dune3d/dgraph/internal/dgraph/flush"
	"github.com/dune3d/dgraph/internal/dgraph/scene"
	"github.com/dune3d/dgraph/internal/dgraph/tagger"
)

type fakeBone struct {
	name   string
	parent *fakeBone
}

func (b *fakeBone) Name() string { return b.name }
func (b *fakeBone) Parent() (scene.Bone, bool) {
	if b.parent == nil {
		return nil, false
	}
	return b.parent, true
}
func (b *fakeBone) IsBBone() bool                  { return false }
func (b *fakeBone) Constraints() []scene.Constraint { return nil }

type fakeArmature struct {
	id    string
	bones []*fakeBone
}

func (a *fakeArmature) OrigID() scene.ID { return a.id }
func (a *fakeArmature) Bones() []scene.Bone {
	out := make([]scene.Bone, len(a.bones))
	for i, b := range a.bones {
		out[i] = b
	}
	return out
}

// fakePoseChannel chains Root -> Mid -> Tip, with an IK constraint on
// Tip targeting an external object with chain length 3.
type fakePoseChannel struct {
	bone       *fakeBone
	parent     *fakePoseChannel
	ikTip      bool
	chainLen   int
	ikTarget   scene.Object
}

func (p *fakePoseChannel) Bone() scene.Bone { return p.bone }
func (p *fakePoseChannel) Parent() (scene.PoseChannel, bool) {
	if p.parent == nil {
		return nil, false
	}
	return p.parent, true
}
func (p *fakePoseChannel) Constraints() []scene.Constraint { return nil }
func (p *fakePoseChannel) IKTarget() (scene.Object, bool) {
	if p.ikTarget == nil {
		return nil, false
	}
	return p.ikTarget, true
}
func (p *fakePoseChannel) IKTargetBoneName() (string, bool)       { return "", false }
func (p *fakePoseChannel) IKTargetCustomDataMask() (uint64, bool) { return 0, false }
func (p *fakePoseChannel) IKPoleTarget() (scene.Object, bool)     { return nil, false }
func (p *fakePoseChannel) IsIKChainTip() bool                     { return p.ikTip }
func (p *fakePoseChannel) IKChainLength() int                     { return p.chainLen }
func (p *fakePoseChannel) HasSplineIK() bool                      { return false }

type rigObject struct {
	fakeObject
	armature  *fakeArmature
	poseChans []scene.PoseChannel
}

func (o *rigObject) Armature() (scene.Armature, bool) {
	if o.armature == nil {
		return nil, false
	}
	return o.armature, true
}
func (o *rigObject) PoseChannels() []scene.PoseChannel { return o.poseChans }

func findOp(ops []*dnode.OperationNode, code dtype.OpCode, name string) *dnode.OperationNode {
	for _, op := range ops {
		if op.OpCode == code && op.Name == name {
			return op
		}
	}
	return nil
}

// TestBuildSceneIKChainTagging covers the IK-chain-tagging scenario: an
// armature "Arm" with pose-bones Root -> Mid -> Tip, an IK constraint on
// Tip targeting an empty "Goal" with chain length 3. Tagging Goal's
// Transform must flow into the IK solver and from there into every chain
// bone's Done and finally PoseDone.
func TestBuildSceneIKChainTagging(t *testing.T) {
	g := newTestGraph()
	b := New(g)

	goal := &fakeObject{id: "goal", visible: true}

	root := &fakeBone{name: "Root"}
	mid := &fakeBone{name: "Mid", parent: root}
	tip := &fakeBone{name: "Tip", parent: mid}
	armature := &fakeArmature{id: "arm-data", bones: []*fakeBone{root, mid, tip}}

	rootChan := &fakePoseChannel{bone: root}
	midChan := &fakePoseChannel{bone: mid, parent: rootChan}
	tipChan := &fakePoseChannel{bone: tip, parent: midChan, ikTip: true, chainLen: 3, ikTarget: goal}

	armObj := &rigObject{
		fakeObject: fakeObject{id: "arm", visible: true},
		armature:   armature,
		poseChans:  []scene.PoseChannel{rootChan, midChan, tipChan},
	}

	vl := fakeViewLayer{bases: []scene.Base{
		fakeBase{obj: goal},
		fakeBase{obj: armObj},
	}}

	b.BuildObject(goal, vl)
	b.BuildObject(armObj, vl)

	rp := b.newRelationsPass()
	for _, idNode := range b.builderMap {
		rp.buildObjectRelations(idNode)
	}
	b.Finalize()

	armID, ok := g.FindIDNode("arm")
	if !ok {
		t.Fatalf("expected arm id node to exist")
	}
	pose, ok := armID.FindComponent(dtype.ComponentEvalPose, "")
	if !ok {
		t.Fatalf("expected arm to have an EvalPose component")
	}
	solver := findOp(pose.Operations, dtype.OpPoseIkSolver, "Root")
	if solver == nil {
		t.Fatalf("expected a PoseIkSolver(Root) operation")
	}

	for _, name := range []string{"Root", "Mid", "Tip"} {
		boneComp, ok := armID.FindComponent(dtype.ComponentBone, name)
		if !ok {
			t.Fatalf("expected a Bone component for %s", name)
		}
		foundResult := false
		for _, rel := range solver.Outlinks {
			if rel.To == boneComp.ExitOperation {
				foundResult = true
			}
		}
		if !foundResult {
			t.Fatalf("expected PoseIkSolver -> %s.BoneDone", name)
		}
	}

	goalID, ok := g.FindIDNode("goal")
	if !ok {
		t.Fatalf("expected goal id node to exist")
	}
	tagger.TagIDUpdate(g, goalID, dtype.UpdateSourceUserEdit, dtype.RecalcTransform)
	if _, err := flush.Flush(context.Background(), g, nil); err != nil {
		t.Fatalf("unexpected flush error: %v", err)
	}

	if !solver.HasFlag(dtype.OpFlagNeedsUpdate) {
		t.Fatalf("expected tagging the IK target to flush into PoseIkSolver")
	}
	for _, name := range []string{"Root", "Mid", "Tip"} {
		boneComp, _ := armID.FindComponent(dtype.ComponentBone, name)
		if !boneComp.ExitOperation.HasFlag(dtype.OpFlagNeedsUpdate) {
			t.Fatalf("expected %s.BoneDone to be flagged after the ik solver flush", name)
		}
	}
	if !pose.ExitOperation.HasFlag(dtype.OpFlagNeedsUpdate) {
		t.Fatalf("expected PoseDone to be flagged after the chain flush")
	}
}
