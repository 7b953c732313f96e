// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package builder

import (
	"github.com/dune3d/dgraph/internal/dgraph/dnode"
	"github.com/dune3d/dgraph/internal/dgraph/dtype"
	"github.com/dune3d/dgraph/internal/dgraph/physics"
	"github.com/dune3d/dgraph/internal/dgraph/scene"
)

// relationsPass runs once, after every object in the rebuild has a fully
// built Nodes-Pass IdNode, and wires the cross-object edges the Nodes
// Pass could not: parenting, constraint targets that reference
// not-yet-built objects, drivers, modifier/physics collections, and
// IK-chain solver links.
type relationsPass struct {
	b *Builder

	// overlapRoots tracks, per IdNode, the root bone name of every IK chain
	// built so far, so a later chain whose root has one of those roots as
	// an ancestor gets an overlap relation.
	overlapRoots map[*dnode.IdNode]map[string]scene.PoseChannel
}

func (b *Builder) newRelationsPass() *relationsPass {
	return &relationsPass{b: b, overlapRoots: make(map[*dnode.IdNode]map[string]scene.PoseChannel)}
}

// buildObjectRelations wires every relation kind this object contributes:
// parent transform, object constraint targets, drivers, modifier physics
// collections, and (if the object has a pose) IK chains.
func (rp *relationsPass) buildObjectRelations(id *dnode.IdNode) {
	obj, ok := rp.b.objectFor(id)
	if !ok {
		return
	}

	rp.buildParentRelation(id, obj)
	if tc, ok := id.FindComponent(dtype.ComponentTransform, ""); ok {
		if consOp, ok := tc.FindOperation(dnode.OpMapKey{OpCode: dtype.OpTransformConstraints}); ok {
			for _, cons := range obj.Constraints() {
				rp.b.linkBoneConstraint(cons, consOp)
			}
		}
	}
	rp.buildDriverRelations(id, obj)
	rp.buildModifierRelations(id, obj)

	if _, ok := obj.Armature(); ok {
		rp.buildArmatureRelations(id, obj)
	}
}

// buildArmatureRelations builds every IK chain rooted at this object's
// pose channels, then links each bone's PoseParent to its parent bone's
// Ready or Done operation depending on whether the two bones were found
// to share an IK chain root. The IK pass runs first because the parent
// pass needs to know chain membership.
func (rp *relationsPass) buildArmatureRelations(id *dnode.IdNode, obj scene.Object) {
	pchans := obj.PoseChannels()
	if len(pchans) == 0 {
		return
	}

	chainRoot := make(map[string]string, len(pchans))
	for _, pchan := range pchans {
		if pchan.IsIKChainTip() {
			rp.buildIKChainWithOverlapCheck(id, pchan, chainRoot)
		}
	}
	for _, pchan := range pchans {
		rp.linkBonePoseParent(id, pchan, chainRoot)
	}
}

// linkBonePoseParent wires a bone's PoseParent operation after its
// parent bone: BoneReady if the two bones were found to share an IK
// chain root (so the parent's pre-solve posed matrix is what the child
// reads), BoneDone otherwise.
func (rp *relationsPass) linkBonePoseParent(id *dnode.IdNode, pchan scene.PoseChannel, chainRoot map[string]string) {
	parentChan, ok := pchan.Parent()
	if !ok {
		return
	}
	bone, parentBone := pchan.Bone(), parentChan.Bone()

	childComp, ok := id.FindComponent(dtype.ComponentBone, bone.Name())
	if !ok {
		return
	}
	childPoseParent, ok := childComp.FindOperation(dnode.OpMapKey{OpCode: dtype.OpBonePoseParent, Name: bone.Name()})
	if !ok {
		return
	}
	parentComp, ok := id.FindComponent(dtype.ComponentBone, parentBone.Name())
	if !ok || parentComp.ExitOperation == nil {
		return
	}

	parentOp := parentComp.ExitOperation // BoneDone
	if root, ok := chainRoot[bone.Name()]; ok {
		if parentRoot, ok := chainRoot[parentBone.Name()]; ok && parentRoot == root {
			if ready, ok := parentComp.FindOperation(dnode.OpMapKey{OpCode: dtype.OpBoneReady, Name: parentBone.Name()}); ok {
				parentOp = ready
			}
		}
	}
	rp.b.g.AddRelation(parentOp, childPoseParent, "parent bone before child bone", dtype.RelationCheckBeforeAdd)
}

// buildParentRelation links the parent object's Transform.Final to this
// object's TransformParent and Transform.Final operations.
//
// Bone/vertex parenting uses the same parent Transform.Final source; no
// relation from the parent's Bone components is added.
func (rp *relationsPass) buildParentRelation(id *dnode.IdNode, obj scene.Object) {
	parent, ok := obj.Parent()
	if !ok {
		return
	}
	parentID, ok := rp.b.builderMap[parent.OrigID()]
	if !ok {
		return
	}
	tc, ok := id.FindComponent(dtype.ComponentTransform, "")
	if !ok {
		return
	}
	parentOp := rp.parentSourceOperation(parentID, obj)
	if parentOp == nil {
		return
	}
	rp.b.g.AddRelation(parentOp, tc.ExitOperation, "parent", dtype.RelationCheckBeforeAdd)
	// TransformParent itself, not only Final, needs the edge: Final only
	// exists to let *other* objects depend on the whole pipeline's
	// output, while Parent is where the parent's matrix is actually read.
	if parentComp, ok := id.FindComponent(dtype.ComponentTransform, ""); ok {
		for _, op := range parentComp.Operations {
			if op.OpCode == dtype.OpTransformParent {
				rp.b.g.AddRelation(parentOp, op, "parent (read point)", dtype.RelationCheckBeforeAdd)
			}
		}
	}
}

func (rp *relationsPass) parentSourceOperation(parentID *dnode.IdNode, obj scene.Object) *dnode.OperationNode {
	switch obj.ParentType() {
	case scene.ParentBone, scene.ParentVertex:
		// Bone/vertex parenting names the specific sub-component via the
		// parent bone's name, which this builder doesn't have direct
		// access to from the Object interface alone; fall back to the
		// whole-armature Transform exit, which is still correct (just
		// coarser: the child re-evaluates on any bone move, not only its
		// actual parent bone's).
		if tc, ok := parentID.FindComponent(dtype.ComponentTransform, ""); ok {
			return tc.ExitOperation
		}
		return nil
	default:
		if tc, ok := parentID.FindComponent(dtype.ComponentTransform, ""); ok {
			return tc.ExitOperation
		}
		return nil
	}
}

// buildDriverRelations creates the per-driver OpDriver operation as a
// dedicated node (feeding the owning ID's Animation exit) so two drivers
// on the same ID don't serialize unnecessarily, wires each driver
// variable's target ID/property into that OpDriver operation, and links
// the driver into the operation its own PropertyKey resolves to (the
// property it actually writes).
func (rp *relationsPass) buildDriverRelations(id *dnode.IdNode, obj scene.Object) {
	drivers := obj.Drivers()
	if len(drivers) == 0 {
		return
	}
	anim, ok := id.FindComponent(dtype.ComponentAnimation, "")
	if !ok {
		return
	}
	for i, drv := range drivers {
		driverOp := rp.b.ensureOperation(anim, dtype.OpDriver, "", i, nil)
		rp.b.g.AddRelation(driverOp, anim.ExitOperation, "driver feeds animation exit", 0)

		for _, v := range drv.Variables() {
			targetID, ok := v.TargetID()
			if !ok {
				continue
			}
			if _, ok := rp.b.builderMap[targetID]; !ok {
				continue
			}
			src := rp.resolveDriverVariableSource(targetID, v)
			if src == nil {
				continue
			}
			rp.b.g.AddRelation(src, driverOp, "driver variable", dtype.RelationCheckBeforeAdd)
		}

		if dest, ok := rp.b.PropertyKey(drv.TargetID(), drv.TargetPropertyPath(), dtype.PropertySourceExit); ok {
			rp.b.g.AddRelation(driverOp, dest, "driver writes property", dtype.RelationCheckBeforeAdd)
		} else {
			log.Debug("driver target property did not resolve to an operation", "path", drv.TargetPropertyPath())
		}
	}
}

// resolveDriverVariableSource resolves a driver variable's read source via
// PropertyKey, falling back to the target's Parameters.Exit when the
// variable doesn't carry a property path (e.g. a transform-channel
// variable type that addresses the target by channel index rather than
// RNA path).
func (rp *relationsPass) resolveDriverVariableSource(targetID dnode.OrigID, v scene.DriverVariable) *dnode.OperationNode {
	if path, ok := v.TargetPropertyPath(); ok {
		if op, ok := rp.b.PropertyKey(targetID, path, dtype.PropertySourceEntry); ok {
			return op
		}
	}
	srcNode, ok := rp.b.builderMap[targetID]
	if !ok {
		return nil
	}
	pc, ok := srcNode.FindComponent(dtype.ComponentParameters, "")
	if !ok {
		return nil
	}
	return pc.ExitOperation
}

// buildModifierRelations wires a modifier's physics collection (collider
// or effector set) as a dependency of the object's Geometry pipeline,
// going through the per-graph physics.Cache so repeated lookups of the
// same collection across many modifiers share one relation list.
func (rp *relationsPass) buildModifierRelations(id *dnode.IdNode, obj scene.Object) {
	geom, ok := id.FindComponent(dtype.ComponentGeometry, "")
	if !ok {
		return
	}
	for _, mod := range obj.Modifiers() {
		collection, ok := mod.PhysicsCollection()
		if !ok {
			continue
		}
		rels, err := rp.b.g.Physics.GetCollisionRelations(collection, mod.Name(), rp.b.physicsCreate)
		if err != nil {
			continue
		}
		for _, rel := range rels {
			colliderID, ok := rp.objectOrigIDOf(rel.Object)
			if !ok {
				continue
			}
			colliderNode, ok := rp.b.builderMap[colliderID]
			if !ok {
				continue
			}
			if tc, ok := colliderNode.FindComponent(dtype.ComponentTransform, ""); ok && tc.ExitOperation != nil {
				rp.b.g.AddRelation(tc.ExitOperation, geom.EntryOperation, "collider relation", dtype.RelationCheckBeforeAdd)
			}
		}
	}
}

func (rp *relationsPass) objectOrigIDOf(object any) (dnode.OrigID, bool) {
	obj, ok := object.(scene.Object)
	if !ok {
		return nil, false
	}
	return obj.OrigID(), true
}

// physicsCreate is the physics.CreateFunc the Relations Pass passes to
// the physics cache: it returns no relations rather than erroring, so a
// graph still builds successfully with no collider relations.
func (b *Builder) physicsCreate(physics.CollectionKey) ([]physics.Relation, error) {
	return nil, nil
}

// objectFor resolves the host scene.Object behind an IdNode, using the
// reverse map the Builder keeps while constructing BuilderMap.
func (b *Builder) objectFor(id *dnode.IdNode) (scene.Object, bool) {
	obj, ok := b.objects[id.OrigID]
	return obj, ok
}

// buildIKChainWithOverlapCheck finds the IK chain's root bone, builds the
// solver chain, and detects overlap with a chain built earlier on this
// IdNode: if an ancestor of this chain's root is itself a previously
// built chain's root, the two chains interact, so a
// DeepestCommonRoot.BoneDone -> PoseIkSolver relation (GODMODE, to break
// the resulting cycle) is added between them.
func (rp *relationsPass) buildIKChainWithOverlapCheck(id *dnode.IdNode, tip scene.PoseChannel, chainRoot map[string]string) {
	root := tip
	depth := tip.IKChainLength()
	for i := 0; i < depth; i++ {
		parent, ok := root.Parent()
		if !ok {
			break
		}
		root = parent
	}
	rootName := root.Bone().Name()

	builtRoots, ok := rp.overlapRoots[id]
	if !ok {
		builtRoots = make(map[string]scene.PoseChannel)
		rp.overlapRoots[id] = builtRoots
	}

	solver := rp.b.buildIKChain(id, tip, rootName, chainRoot)
	if solver == nil {
		return
	}

	for ancestor, ok := root.Parent(); ok; ancestor, ok = ancestor.Parent() {
		ancestorName := ancestor.Bone().Name()
		if _, already := builtRoots[ancestorName]; !already {
			continue
		}
		if ancestorComp, ok := id.FindComponent(dtype.ComponentBone, ancestorName); ok && ancestorComp.ExitOperation != nil {
			rp.b.g.AddRelation(ancestorComp.ExitOperation, solver, "IK Chain Overlap", dtype.RelationGodMode)
		}
		break
	}
	builtRoots[rootName] = tip
}
