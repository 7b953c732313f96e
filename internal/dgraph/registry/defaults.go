// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package registry

import "github.com/dune3d/dgraph/internal/dgraph/dtype"

// componentRecalcBits maps each component type to the single id.recalc bit
// its tagging contributes.
var componentRecalcBits = map[dtype.ComponentType]dtype.RecalcFlag{
	dtype.ComponentParameters:       dtype.RecalcParametersEval,
	dtype.ComponentAnimation:        dtype.RecalcAnimation,
	dtype.ComponentTransform:        dtype.RecalcTransform,
	dtype.ComponentGeometry:         dtype.RecalcGeometry,
	dtype.ComponentSequencer:        dtype.RecalcSequences,
	dtype.ComponentLayerCollections: dtype.RecalcBase,
	dtype.ComponentCopyOnWrite:      dtype.RecalcCopy,
	dtype.ComponentObjectFromLayer:  dtype.RecalcBase,
	dtype.ComponentEvalPose:         dtype.RecalcGeometry,
	dtype.ComponentBone:             dtype.RecalcGeometry,
	dtype.ComponentParticleSystem:   dtype.RecalcPoint,
	dtype.ComponentParticleSettings: dtype.RecalcPoint,
	dtype.ComponentShading:          dtype.RecalcShading,
	dtype.ComponentCache:            dtype.RecalcPointCache,
	dtype.ComponentPointCache:       dtype.RecalcPointCache,
	dtype.ComponentImageAnimation:   dtype.RecalcAnimation,
	dtype.ComponentBatchCache:       dtype.RecalcGeometry,
	dtype.ComponentDupli:            dtype.RecalcGeometry,
	dtype.ComponentSynchronization:  dtype.RecalcCopy,
	dtype.ComponentAudio:            dtype.RecalcAudio,
	dtype.ComponentArmature:         dtype.RecalcGeometry,
	dtype.ComponentGenericDatablock: dtype.RecalcParametersEval,
	dtype.ComponentVisibility:       dtype.RecalcBase,
	dtype.ComponentSimulation:       dtype.RecalcPointCache,
	dtype.ComponentNTreeOutput:      dtype.RecalcShading,
}

// allComponentTypes lists the full closed ComponentType set so
// RegisterDefaults registers every type, the same way dgraph_type.cc
// registers every node type at startup.
var allComponentTypes = []dtype.ComponentType{
	dtype.ComponentParameters,
	dtype.ComponentAnimation,
	dtype.ComponentTransform,
	dtype.ComponentGeometry,
	dtype.ComponentSequencer,
	dtype.ComponentLayerCollections,
	dtype.ComponentCopyOnWrite,
	dtype.ComponentObjectFromLayer,
	dtype.ComponentEvalPose,
	dtype.ComponentBone,
	dtype.ComponentParticleSystem,
	dtype.ComponentParticleSettings,
	dtype.ComponentShading,
	dtype.ComponentCache,
	dtype.ComponentPointCache,
	dtype.ComponentImageAnimation,
	dtype.ComponentBatchCache,
	dtype.ComponentDupli,
	dtype.ComponentSynchronization,
	dtype.ComponentAudio,
	dtype.ComponentArmature,
	dtype.ComponentGenericDatablock,
	dtype.ComponentVisibility,
	dtype.ComponentSimulation,
	dtype.ComponentNTreeOutput,
}

var allOpCodes = []dtype.OpCode{
	dtype.OpOperation, dtype.OpIDProperty,
	dtype.OpParamsEntry, dtype.OpParamsEval, dtype.OpParamsExit, dtype.OpDimensions,
	dtype.OpAnimationEntry, dtype.OpAnimationEval, dtype.OpAnimationExit, dtype.OpDriver,
	dtype.OpSceneEval, dtype.OpObjectBaseFlags,
	dtype.OpTransformInit, dtype.OpTransformLocal, dtype.OpTransformParent,
	dtype.OpTransformConstraints, dtype.OpTransformFinal, dtype.OpTransformEval,
	dtype.OpTransformSimulationInit,
	dtype.OpRigidbodyRebuild, dtype.OpRigidbodySim, dtype.OpRigidbodyTransformCopy,
	dtype.OpGeometryEvalInit, dtype.OpGeometryEval, dtype.OpGeometryDone,
	dtype.OpGeometryShapekey, dtype.OpGeometrySelectUpdate, dtype.OpGeometryVisibility,
	dtype.OpLightProbeEval, dtype.OpSpeakerEval, dtype.OpSoundEval,
	dtype.OpArmatureEval,
	dtype.OpPoseInit, dtype.OpPoseInitIk, dtype.OpPoseCleanup, dtype.OpPoseDone,
	dtype.OpPoseIkSolver, dtype.OpPoseSplineIkSolver,
	dtype.OpBoneLocal, dtype.OpBonePoseParent, dtype.OpBoneConstraints,
	dtype.OpBoneReady, dtype.OpBoneDone, dtype.OpBoneSegments,
	dtype.OpParticleSystemInit, dtype.OpParticleSystemEval, dtype.OpParticleSystemDone,
	dtype.OpParticleSettingsInit, dtype.OpParticleSettingsEval, dtype.OpParticleSettingsReset,
	dtype.OpPointCacheReset, dtype.OpFileCacheUpdate,
	dtype.OpMaskAnimation, dtype.OpMaskEval,
	dtype.OpViewLayerEval,
	dtype.OpCopyOnWrite,
	dtype.OpShading, dtype.OpMaterialUpdate, dtype.OpLightUpdate, dtype.OpWorldUpdate,
	dtype.OpNTreeOutput,
	dtype.OpMovieClipEval, dtype.OpMovieClipSelectUpdate,
	dtype.OpImageAnimation,
	dtype.OpSynchronizeToOriginal,
	dtype.OpGenericDatablockUpdate,
	dtype.OpSequencesEval,
	dtype.OpDupli,
	dtype.OpSimulationEval,
}

// RegisterDefaults populates r with the full closed set of component and
// operation factories.
func RegisterDefaults(r *Registry) {
	for _, t := range allComponentTypes {
		t := t
		r.RegisterComponent(t, ComponentEntry{
			DisplayName: t.String(),
			RecalcBit:   componentRecalcBits[t],
		})
	}
	for _, c := range allOpCodes {
		c := c
		r.RegisterOperation(c, OperationEntry{
			DisplayName: c.String(),
		})
	}
}
