// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package dtype

// OpCode is the closed set of operation codes an OperationNode can carry.
// Extending this set means also updating the op_code_as_string-equivalent
// opCodeNames table below and registry's allOpCodes list.
type OpCode int

const (
	OpUnknown OpCode = iota
	OpOperation

	OpIDProperty

	OpParamsEntry
	OpParamsEval
	OpParamsExit
	OpDimensions

	OpAnimationEntry
	OpAnimationEval
	OpAnimationExit
	OpDriver

	OpSceneEval
	OpObjectBaseFlags

	OpTransformInit
	OpTransformLocal
	OpTransformParent
	OpTransformConstraints
	OpTransformFinal
	OpTransformEval
	OpTransformSimulationInit

	OpRigidbodyRebuild
	OpRigidbodySim
	OpRigidbodyTransformCopy

	OpGeometryEvalInit
	OpGeometryEval
	OpGeometryDone
	OpGeometryShapekey
	OpGeometrySelectUpdate
	OpGeometryVisibility

	OpLightProbeEval
	OpSpeakerEval
	OpSoundEval

	OpArmatureEval

	OpPoseInit
	OpPoseInitIk
	OpPoseCleanup
	OpPoseDone
	OpPoseIkSolver
	OpPoseSplineIkSolver

	OpBoneLocal
	OpBonePoseParent
	OpBoneConstraints
	OpBoneReady
	OpBoneDone
	OpBoneSegments

	OpParticleSystemInit
	OpParticleSystemEval
	OpParticleSystemDone

	OpParticleSettingsInit
	OpParticleSettingsEval
	OpParticleSettingsReset

	OpPointCacheReset
	OpFileCacheUpdate

	OpMaskAnimation
	OpMaskEval

	OpViewLayerEval

	OpCopyOnWrite

	OpShading
	OpMaterialUpdate
	OpLightUpdate
	OpWorldUpdate

	OpNTreeOutput

	OpMovieClipEval
	OpMovieClipSelectUpdate

	OpImageAnimation

	OpSynchronizeToOriginal

	OpGenericDatablockUpdate

	OpSequencesEval

	OpDupli

	OpSimulationEval

	opCodeCount
)

var opCodeNames = [...]string{
	OpUnknown:                "Unknown",
	OpOperation:              "Operation",
	OpIDProperty:             "IdProperty",
	OpParamsEntry:            "ParamsEntry",
	OpParamsEval:             "ParamsEval",
	OpParamsExit:             "ParamsExit",
	OpDimensions:             "Dimensions",
	OpAnimationEntry:         "AnimationEntry",
	OpAnimationEval:          "AnimationEval",
	OpAnimationExit:          "AnimationExit",
	OpDriver:                 "Driver",
	OpSceneEval:              "SceneEval",
	OpObjectBaseFlags:        "ObjectBaseFlags",
	OpTransformInit:          "TransformInit",
	OpTransformLocal:         "TransformLocal",
	OpTransformParent:        "TransformParent",
	OpTransformConstraints:   "TransformConstraints",
	OpTransformFinal:         "TransformFinal",
	OpTransformEval:          "TransformEval",
	OpTransformSimulationInit: "TransformSimulationInit",
	OpRigidbodyRebuild:       "RigidbodyRebuild",
	OpRigidbodySim:           "RigidbodySim",
	OpRigidbodyTransformCopy: "RigidbodyTransformCopy",
	OpGeometryEvalInit:       "GeometryEvalInit",
	OpGeometryEval:           "GeometryEval",
	OpGeometryDone:           "GeometryDone",
	OpGeometryShapekey:       "GeometryShapekey",
	OpGeometrySelectUpdate:   "GeometrySelectUpdate",
	OpGeometryVisibility:     "GeometryVisibility",
	OpLightProbeEval:         "LightProbeEval",
	OpSpeakerEval:            "SpeakerEval",
	OpSoundEval:              "SoundEval",
	OpArmatureEval:           "ArmatureEval",
	OpPoseInit:               "PoseInit",
	OpPoseInitIk:             "PoseInitIk",
	OpPoseCleanup:            "PoseCleanup",
	OpPoseDone:               "PoseDone",
	OpPoseIkSolver:           "PoseIkSolver",
	OpPoseSplineIkSolver:     "PoseSplineIkSolver",
	OpBoneLocal:              "BoneLocal",
	OpBonePoseParent:         "BonePoseParent",
	OpBoneConstraints:        "BoneConstraints",
	OpBoneReady:              "BoneReady",
	OpBoneDone:               "BoneDone",
	OpBoneSegments:           "BoneSegments",
	OpParticleSystemInit:     "ParticleSystemInit",
	OpParticleSystemEval:     "ParticleSystemEval",
	OpParticleSystemDone:     "ParticleSystemDone",
	OpParticleSettingsInit:   "ParticleSettingsInit",
	OpParticleSettingsEval:   "ParticleSettingsEval",
	OpParticleSettingsReset:  "ParticleSettingsReset",
	OpPointCacheReset:        "PointCacheReset",
	OpFileCacheUpdate:        "FileCacheUpdate",
	OpMaskAnimation:          "MaskAnimation",
	OpMaskEval:               "MaskEval",
	OpViewLayerEval:          "ViewLayerEval",
	OpCopyOnWrite:            "CopyOnWrite",
	OpShading:                "Shading",
	OpMaterialUpdate:         "MaterialUpdate",
	OpLightUpdate:            "LightUpdate",
	OpWorldUpdate:            "WorldUpdate",
	OpNTreeOutput:            "NTreeOutput",
	OpMovieClipEval:          "MovieClipEval",
	OpMovieClipSelectUpdate:  "MovieClipSelectUpdate",
	OpImageAnimation:         "ImageAnimation",
	OpSynchronizeToOriginal:  "SynchronizeToOriginal",
	OpGenericDatablockUpdate: "GenericDatablockUpdate",
	OpSequencesEval:          "SequencesEval",
	OpDupli:                  "Dupli",
	OpSimulationEval:         "SimulationEval",
}

// String implements the op_code_as_string-equivalent pretty printer.
func (c OpCode) String() string {
	if int(c) >= 0 && int(c) < len(opCodeNames) && opCodeNames[c] != "" {
		return opCodeNames[c]
	}
	return "OpCode(?)"
}

// IsCoW reports whether this opcode is the per-ID CoW operation, used by
// the CoW-layering debug assertion in the graph store.
func (c OpCode) IsCoW() bool {
	return c == OpCopyOnWrite
}
