// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

// Package dtype holds the closed enumerations that make up the dependency
// graph's ABI surface: ID types, component types, operation codes, recalc
// bits, eval flags and the handful of small caller-facing enums (update
// source, linked state, relation flags, object-iterator flags, eval mode).
//
// These are modelled as closed `int`-based types with iota-numbered
// constants and a String method, the same shape execgraph.opCode uses for
// its own closed enum, rather than open string enums or bitmask constants
// scattered across call sites.
package dtype

// IDType identifies what kind of source datablock an IdNode wraps.
type IDType int

const (
	IDUnknown IDType = iota
	IDObject
	IDMesh
	IDArmature
	IDAction
	IDMaterial
	IDImage
	IDWorld
	IDScene
	IDCollection
	IDParticleSettings
	IDCamera
	IDLight
	IDSpeaker
	IDSound
	IDMovieClip
	IDMask
	IDNodeTree
	IDCacheFile
	IDKey // shape keys
)

var idTypeNames = [...]string{
	IDUnknown:          "Unknown",
	IDObject:           "Object",
	IDMesh:             "Mesh",
	IDArmature:         "Armature",
	IDAction:           "Action",
	IDMaterial:         "Material",
	IDImage:            "Image",
	IDWorld:            "World",
	IDScene:            "Scene",
	IDCollection:       "Collection",
	IDParticleSettings: "ParticleSettings",
	IDCamera:           "Camera",
	IDLight:            "Light",
	IDSpeaker:          "Speaker",
	IDSound:            "Sound",
	IDMovieClip:        "MovieClip",
	IDMask:             "Mask",
	IDNodeTree:         "NodeTree",
	IDCacheFile:        "CacheFile",
	IDKey:              "Key",
}

func (t IDType) String() string {
	if int(t) >= 0 && int(t) < len(idTypeNames) {
		return idTypeNames[t]
	}
	return "IDType(?)"
}

// NoCoWNeeded is the closed list of ID types for which id_cow == id_orig
// always: no shadow copy is ever allocated for these.
var NoCoWNeeded = map[IDType]bool{
	IDImage:     true,
	IDNodeTree:  false, // node trees embedded in materials still need CoW
	IDCacheFile: true,
}

// SupportsParamUpdateWithoutCoW is the closed list of ID types whose
// Parameters component changes do not force a CoW tag.
var SupportsParamUpdateWithoutCoW = map[IDType]bool{
	IDMaterial: true,
	IDWorld:    true,
	IDImage:    true,
}
