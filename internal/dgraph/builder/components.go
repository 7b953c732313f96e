// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package builder

import (
	"github.com/dune3d/dgraph/internal/dgraph/dnode"
	"github.com/dune3d/dgraph/internal/dgraph/dtype"
	"github.com/dune3d/dgraph/internal/dgraph/scene"
)

// ensureComponent returns id's component of the given type/subname,
// constructing it via the registry (rather than dnode.NewComponentNode
// directly) so a host that registered a custom factory for this type
// gets it, and inserting it into id.Components.
func (b *Builder) ensureComponent(id *dnode.IdNode, t dtype.ComponentType, name string) *dnode.ComponentNode {
	key := dnode.ComponentMapKey{Type: t, Name: name}
	if c, ok := id.Components[key]; ok {
		return c
	}
	c := b.g.Registry.NewComponent(id, t, name)
	id.Components[key] = c
	return c
}

// ensureOperation finds or creates an operation under c via the registry
// factory, deduplicating on (opCode, name, nameTag).
func (b *Builder) ensureOperation(c *dnode.ComponentNode, opCode dtype.OpCode, name string, nameTag int, cb dnode.EvalCallback) *dnode.OperationNode {
	key := dnode.OpMapKey{OpCode: opCode, Name: name, NameTag: nameTag}
	return c.FindOrCreateOperation(key, func() *dnode.OperationNode {
		return b.g.Registry.NewOperation(c, opCode, name, nameTag, cb)
	})
}

// chain links a sequence of operations entry -> ... -> exit with plain
// (no-flag) relations, the common "internal component pipeline" shape
// used throughout the Nodes Pass.
func (b *Builder) chain(ops ...*dnode.OperationNode) {
	for i := 1; i < len(ops); i++ {
		b.g.AddRelation(ops[i-1], ops[i], "component chain", 0)
	}
}

// buildParamsComponent builds the generic ID-property/parameters pipeline
// every ID carries.
func (b *Builder) buildParamsComponent(id *dnode.IdNode) {
	c := b.ensureComponent(id, dtype.ComponentParameters, "")
	entry := b.ensureOperation(c, dtype.OpParamsEntry, "", 0, nil)
	eval := b.ensureOperation(c, dtype.OpParamsEval, "", 0, nil)
	exit := b.ensureOperation(c, dtype.OpParamsExit, "", 0, nil)
	dims := b.ensureOperation(c, dtype.OpDimensions, "", 0, nil)
	c.EntryOperation, c.ExitOperation = entry, exit
	b.chain(entry, eval, exit)
	b.g.AddRelation(eval, dims, "dimensions read from evaluated parameters", 0)
}

// buildObjectFromLayerComponent builds the single-op component an
// object's base-flag state (visibility/selectability as seen through a
// view layer) lives on; PropertyKey routes hide_viewport/hide_render
// here rather than to Transform or Geometry.
func (b *Builder) buildObjectFromLayerComponent(id *dnode.IdNode) {
	c := b.ensureComponent(id, dtype.ComponentObjectFromLayer, "")
	op := b.ensureOperation(c, dtype.OpObjectBaseFlags, "", 0, nil)
	c.EntryOperation, c.ExitOperation = op, op
}

// buildCopyOnWriteComponent builds the single CoW operation every ID that
// needs a shadow carries. IDs that never need a
// shadow (dtype.NoCoWNeeded) still get the component so relation
// construction doesn't need a special case, but its operation is a no-op
// at evaluation time.
func (b *Builder) buildCopyOnWriteComponent(id *dnode.IdNode) {
	c := b.ensureComponent(id, dtype.ComponentCopyOnWrite, "")
	op := b.ensureOperation(c, dtype.OpCopyOnWrite, "", 0, nil)
	c.EntryOperation, c.ExitOperation = op, op
	c.DependsOnCoW = false
}

// buildTransformComponent builds the Transform pipeline: Init -> Local ->
// Parent -> Constraints -> Final, the chain used for object transform
// evaluation. Final is the component's exit and the one other components'
// Transform-dependent operations should link to.
func (b *Builder) buildTransformComponent(id *dnode.IdNode, obj scene.Object) {
	c := b.ensureComponent(id, dtype.ComponentTransform, "")
	c.AffectsDirectlyVisible = true

	init := b.ensureOperation(c, dtype.OpTransformInit, "", 0, nil)
	local := b.ensureOperation(c, dtype.OpTransformLocal, "", 0, nil)
	parent := b.ensureOperation(c, dtype.OpTransformParent, "", 0, nil)
	constraints := b.ensureOperation(c, dtype.OpTransformConstraints, "", 0, nil)
	final := b.ensureOperation(c, dtype.OpTransformFinal, "", 0, nil)
	c.EntryOperation, c.ExitOperation = init, final
	b.chain(init, local, parent, constraints, final)

	if len(obj.Constraints()) > 0 {
		// TransformConstraints is flagged NeedsUpdate at build time, so a
		// constraint-target rebuild always re-evaluates it; the actual
		// per-constraint relations are added in the Relations Pass once
		// every object's IdNode exists.
		constraints.SetFlag(dtype.OpFlagNeedsUpdate)
	}
}

// buildAnimationComponent builds the Animation pipeline for an ID that
// has an action or drivers.
func (b *Builder) buildAnimationComponent(id *dnode.IdNode) {
	c := b.ensureComponent(id, dtype.ComponentAnimation, "")
	entry := b.ensureOperation(c, dtype.OpAnimationEntry, "", 0, nil)
	eval := b.ensureOperation(c, dtype.OpAnimationEval, "", 0, nil)
	exit := b.ensureOperation(c, dtype.OpAnimationExit, "", 0, nil)
	c.EntryOperation, c.ExitOperation = entry, exit
	b.chain(entry, eval, exit)

	// Time-dependent by construction: every Animation component's entry
	// links from the graph's single TimeSourceNode operation.
	if b.g.TimeSource.Op != nil {
		b.g.AddRelation(b.g.TimeSource.Op, entry, "time source", 0)
	}
}

// buildGeometryComponent builds the Geometry evaluation pipeline for an
// object's instanced data (mesh, curve, ...).
func (b *Builder) buildGeometryComponent(id *dnode.IdNode, data scene.ID) {
	c := b.ensureComponent(id, dtype.ComponentGeometry, "")
	c.AffectsDirectlyVisible = true

	init := b.ensureOperation(c, dtype.OpGeometryEvalInit, "", 0, nil)
	eval := b.ensureOperation(c, dtype.OpGeometryEval, "", 0, nil)
	done := b.ensureOperation(c, dtype.OpGeometryDone, "", 0, nil)
	c.EntryOperation, c.ExitOperation = init, done
	b.chain(init, eval, done)

	if tc, ok := id.FindComponent(dtype.ComponentTransform, ""); ok && tc.ExitOperation != nil {
		b.g.AddRelation(tc.ExitOperation, init, "transform before geometry", 0)
	}

	if pc, ok := id.FindComponent(dtype.ComponentParameters, ""); ok {
		if dims, ok := pc.FindOperation(dnode.OpMapKey{OpCode: dtype.OpDimensions}); ok {
			b.g.AddRelation(done, dims, "geometry before dimensions", 0)
		}
	}

	b.buildVisibilityComponent(id, init)
}

// buildVisibilityComponent builds the internal Visibility component that
// owns modifier show_viewport/show_render toggles. ComponentVisibility is
// marked internal (dtype.ComponentType.IsInternal) so it's never seeded or
// reported through the public traversal API in package query; its only
// externally visible effect is feeding the object's Geometry pipeline, so
// toggling a modifier's visibility re-evaluates geometry without routing
// through the heavier Parameters/Animation path.
func (b *Builder) buildVisibilityComponent(id *dnode.IdNode, geomInit *dnode.OperationNode) {
	c := b.ensureComponent(id, dtype.ComponentVisibility, "")
	vis := b.ensureOperation(c, dtype.OpGeometryVisibility, "", 0, nil)
	c.EntryOperation, c.ExitOperation = vis, vis
	b.g.AddRelation(vis, geomInit, "modifier visibility before geometry", 0)
}

// buildParticleSystem builds both the per-object ParticleSystem component
// and the shared ParticleSettings IdNode/component it references.
func (b *Builder) buildParticleSystem(id *dnode.IdNode, ps scene.ParticleSystem) {
	c := b.ensureComponent(id, dtype.ComponentParticleSystem, "")
	init := b.ensureOperation(c, dtype.OpParticleSystemInit, "", 0, nil)
	eval := b.ensureOperation(c, dtype.OpParticleSystemEval, "", 0, nil)
	done := b.ensureOperation(c, dtype.OpParticleSystemDone, "", 0, nil)
	c.EntryOperation, c.ExitOperation = init, done
	b.chain(init, eval, done)

	settingsID := ps.Settings()
	if settingsID == nil {
		return
	}
	settingsNode := b.g.AddIDNode(dtype.IDParticleSettings, settingsID, b.sessionUUIDFor(settingsID))
	b.builderMap[settingsID] = settingsNode
	sc := b.ensureComponent(settingsNode, dtype.ComponentParticleSettings, "")
	sInit := b.ensureOperation(sc, dtype.OpParticleSettingsInit, "", 0, nil)
	sEval := b.ensureOperation(sc, dtype.OpParticleSettingsEval, "", 0, nil)
	sReset := b.ensureOperation(sc, dtype.OpParticleSettingsReset, "", 0, nil)
	sc.EntryOperation, sc.ExitOperation = sInit, sReset
	b.chain(sInit, sEval, sReset)

	b.g.AddRelation(sEval, init, "particle settings", 0)
}
