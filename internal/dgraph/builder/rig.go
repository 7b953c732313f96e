// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package builder

import (
	"github.com/dune3d/dgraph/internal/dgraph/dnode"
	"github.com/dune3d/dgraph/internal/dgraph/dtype"
	"github.com/dune3d/dgraph/internal/dgraph/scene"
)

// buildArmature builds the EvalPose component (PoseInit..PoseDone), one
// Bone component per pose channel, and the Armature component's final
// evaluation. IK-solver wiring and parent-bone linking happen later, in
// the Relations Pass, once every object's bones exist and IK-chain root
// membership can be determined.
func (b *Builder) buildArmature(id *dnode.IdNode, armature scene.Armature, obj scene.Object) {
	pose := b.ensureComponent(id, dtype.ComponentEvalPose, "")
	poseInit := b.ensureOperation(pose, dtype.OpPoseInit, "", 0, nil)
	// PoseInitIk only gets wired in for objects that actually have an IK
	// chain; it still needs to exist now so a bone's BoneLocal can look it
	// up via FindOperation during the Relations Pass.
	b.ensureOperation(pose, dtype.OpPoseInitIk, "", 0, nil)
	poseCleanup := b.ensureOperation(pose, dtype.OpPoseCleanup, "", 0, nil)
	poseDone := b.ensureOperation(pose, dtype.OpPoseDone, "", 0, nil)
	pose.EntryOperation, pose.ExitOperation = poseInit, poseDone

	for _, bone := range armature.Bones() {
		b.buildBone(id, bone, poseInit, poseDone)
	}

	// PoseCleanup's only inbound edges come from IK solvers (added in the
	// Relations Pass, with GODMODE); it still chains unconditionally into
	// PoseDone as the pipeline's tail step.
	b.chain(poseCleanup, poseDone)

	armComponent := b.ensureComponent(id, dtype.ComponentArmature, "")
	armEval := b.ensureOperation(armComponent, dtype.OpArmatureEval, "", 0, nil)
	armComponent.EntryOperation, armComponent.ExitOperation = armEval, armEval
	b.g.AddRelation(poseDone, armEval, "pose before armature eval", 0)
}

// buildBone builds one bone's component pipeline: Local -> PoseParent ->
// Constraints -> Ready -> Done, linked directly into the pose's base
// pipeline (PoseInit before Local, Done before PoseDone), plus Segments
// for B-Bones.
func (b *Builder) buildBone(id *dnode.IdNode, bone scene.Bone, poseInit, poseDone *dnode.OperationNode) {
	name := bone.Name()
	c := b.ensureComponent(id, dtype.ComponentBone, name)

	local := b.ensureOperation(c, dtype.OpBoneLocal, name, 0, nil)
	poseParent := b.ensureOperation(c, dtype.OpBonePoseParent, name, 0, nil)
	constraints := b.ensureOperation(c, dtype.OpBoneConstraints, name, 0, nil)
	ready := b.ensureOperation(c, dtype.OpBoneReady, name, 0, nil)
	done := b.ensureOperation(c, dtype.OpBoneDone, name, 0, nil)
	c.EntryOperation, c.ExitOperation = local, done
	b.chain(local, poseParent, constraints, ready, done)

	b.g.AddRelation(poseInit, local, "pose init before bone local", 0)
	b.g.AddRelation(done, poseDone, "bone done before pose done", 0)

	if bone.IsBBone() {
		segments := b.ensureOperation(c, dtype.OpBoneSegments, name, 0, nil)
		b.g.AddRelation(done, segments, "b-bone segments after done", 0)
	}

	for _, cons := range bone.Constraints() {
		b.linkBoneConstraint(cons, constraints)
	}
}

// linkBoneConstraint wires one constraint's target-object dependency into
// constraintsOp: a bone's BoneConstraints or an object's
// TransformConstraints operation.
func (b *Builder) linkBoneConstraint(cons scene.Constraint, constraintsOp *dnode.OperationNode) {
	target, ok := cons.TargetObject()
	if !ok {
		return
	}
	targetID, ok := b.builderMap[target.OrigID()]
	if !ok {
		return
	}
	tc, ok := targetID.FindComponent(dtype.ComponentTransform, "")
	if !ok || tc.ExitOperation == nil {
		return
	}
	flags := dtype.RelationCheckBeforeAdd
	if cons.IsSpaceRelevant() {
		flags |= dtype.RelationGodMode
	}
	b.g.AddRelation(tc.ExitOperation, constraintsOp, "constraint target", flags)
}

// buildIKChain builds the IK solver operation for one pose channel's IK
// constraint: BoneLocal (of the IK-bearing tip bone) before PoseInitIk,
// PoseInitIk before the solver, the solver before PoseCleanup (GODMODE),
// and for every bone in the chain (tip to root inclusive) BoneReady into
// the solver as an input and the solver back out to BoneDone as its
// result. Every visited bone name is recorded into chainRoot so the
// parent-bone linking pass can tell which bones share an IK root.
//
// This runs from the Relations Pass, once every object's bones exist,
// since an IK target is frequently a different object that must already
// have a BuilderMap entry.
func (b *Builder) buildIKChain(id *dnode.IdNode, tip scene.PoseChannel, rootName string, chainRoot map[string]string) *dnode.OperationNode {
	pose, ok := id.FindComponent(dtype.ComponentEvalPose, "")
	if !ok {
		return nil
	}
	poseInitIk, _ := pose.FindOperation(dnode.OpMapKey{OpCode: dtype.OpPoseInitIk})
	poseCleanup, _ := pose.FindOperation(dnode.OpMapKey{OpCode: dtype.OpPoseCleanup})
	solver := b.ensureOperation(pose, dtype.OpPoseIkSolver, rootName, 0, nil)

	if tipComp, ok := id.FindComponent(dtype.ComponentBone, tip.Bone().Name()); ok && tipComp.EntryOperation != nil && poseInitIk != nil {
		b.g.AddRelation(tipComp.EntryOperation, poseInitIk, "ik-bearing bone local before pose init ik", dtype.RelationCheckBeforeAdd)
	}
	if poseInitIk != nil {
		b.g.AddRelation(poseInitIk, solver, "pose init ik before ik solver", dtype.RelationCheckBeforeAdd)
	}
	if poseCleanup != nil {
		b.g.AddRelation(solver, poseCleanup, "ik solver before pose cleanup", dtype.RelationGodMode)
	}

	for cur := tip; ; {
		name := cur.Bone().Name()
		chainRoot[name] = rootName
		if boneComp, ok := id.FindComponent(dtype.ComponentBone, name); ok {
			if ready, ok := boneComp.FindOperation(dnode.OpMapKey{OpCode: dtype.OpBoneReady, Name: name}); ok {
				b.g.AddRelation(ready, solver, "bone ready feeds ik solver", dtype.RelationCheckBeforeAdd)
			}
			if boneComp.ExitOperation != nil {
				b.g.AddRelation(solver, boneComp.ExitOperation, "ik solver result", dtype.RelationCheckBeforeAdd)
			}
		}
		if name == rootName {
			break
		}
		parent, ok := cur.Parent()
		if !ok {
			break
		}
		cur = parent
	}

	b.buildIKTargetRelations(id, tip, solver, poseInitIk)

	if tip.HasSplineIK() {
		spline := b.ensureOperation(pose, dtype.OpPoseSplineIkSolver, rootName, 0, nil)
		b.g.AddRelation(solver, spline, "ik before spline ik", 0)
	}
	return solver
}

// buildIKTargetRelations wires the IK target and (if present) pole
// target into solver.
func (b *Builder) buildIKTargetRelations(id *dnode.IdNode, pchan scene.PoseChannel, solver, poseInitIk *dnode.OperationNode) {
	if target, ok := pchan.IKTarget(); ok {
		b.linkIKTarget(id, pchan, target, solver, poseInitIk)
	}
	if pole, ok := pchan.IKPoleTarget(); ok {
		b.linkIKTarget(id, nil, pole, solver, poseInitIk)
	}
}

// linkIKTarget handles the three target shapes the rig/IK subroutine
// distinguishes: a same-armature bone subtarget (depends on that bone's
// Done), a mesh/lattice vertex-group target (depends on Geometry and
// registers a custom-data-mask requirement), and the general
// different-object case (transform dependency on the solver plus a
// CoW-ready dependency on the IK init). pchan is nil for a pole target,
// which is always treated as the general case.
func (b *Builder) linkIKTarget(id *dnode.IdNode, pchan scene.PoseChannel, target scene.Object, solver, poseInitIk *dnode.OperationNode) {
	targetID, ok := b.builderMap[target.OrigID()]
	if !ok {
		return
	}

	if pchan != nil {
		if boneName, ok := pchan.IKTargetBoneName(); ok && targetID == id {
			if tbc, ok := targetID.FindComponent(dtype.ComponentBone, boneName); ok && tbc.ExitOperation != nil {
				b.g.AddRelation(tbc.ExitOperation, solver, "ik same-armature subtarget", dtype.RelationCheckBeforeAdd)
			}
			return
		}
		if mask, ok := pchan.IKTargetCustomDataMask(); ok {
			targetID.CustomDataMasks |= mask
			if gc, ok := targetID.FindComponent(dtype.ComponentGeometry, ""); ok && gc.ExitOperation != nil {
				b.g.AddRelation(gc.ExitOperation, solver, "ik mesh/lattice vertex group target", dtype.RelationCheckBeforeAdd)
			}
			return
		}
	}

	if tc, ok := targetID.FindComponent(dtype.ComponentTransform, ""); ok && tc.ExitOperation != nil {
		b.g.AddRelation(tc.ExitOperation, solver, "ik target transform", dtype.RelationGodMode)
	}
	if cow, ok := targetID.FindComponent(dtype.ComponentCopyOnWrite, ""); ok && cow.ExitOperation != nil && poseInitIk != nil {
		b.g.AddRelation(cow.ExitOperation, poseInitIk, "ik target cow-ready", dtype.RelationCheckBeforeAdd)
	}
}
