// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

// Package scene declares the interfaces the builder and tagger use to
// read the host's scene data.
//
// A host application implements these against its own scene-graph types.
// Nothing in this package stores or mutates host data; it only describes
// the shape the builder walks.
package scene

// ID is any host datablock that can own dependency-graph components:
// objects, meshes, materials, actions, etc. It is deliberately an empty
// interface — the closed set of concrete kinds is IDType, not
// a Go type hierarchy.
type ID = any

// Object is a scene object: the most common source of Transform,
// Geometry, Animation, Armature and Particle components.
type Object interface {
	OrigID() ID
	Name() string
	Parent() (Object, bool)
	ParentType() ParentType
	Constraints() []Constraint
	Modifiers() []Modifier
	ParticleSystems() []ParticleSystem
	Armature() (Armature, bool)
	PoseChannels() []PoseChannel // empty unless Armature() is present
	Data() ID                    // mesh/curve/armature/etc. datablock this object instances
	HasAnimation() bool
	Drivers() []Driver
	IsDirectlyVisibleIn(viewLayer any) bool
}

// ParentType distinguishes plain parenting from bone/vertex parenting.
// The builder links every parent type through the parent's
// Transform component; it adds no Bone-component relation.
type ParentType int

const (
	ParentNone ParentType = iota
	ParentObject
	ParentBone
	ParentVertex
)

// Armature is the pose/bone collaborator.
type Armature interface {
	OrigID() ID
	Bones() []Bone
}

// Bone is one bone in an armature's rest pose.
type Bone interface {
	Name() string
	Parent() (Bone, bool)
	IsBBone() bool
	Constraints() []Constraint
}

// PoseChannel is the runtime (posed) counterpart of a Bone, one per bone
// per object.
type PoseChannel interface {
	Bone() Bone
	Parent() (PoseChannel, bool)
	Constraints() []Constraint
	IKTarget() (Object, bool)
	// IKTargetBoneName reports the subtarget bone name when the IK
	// target is an armature object (same one or another); the returned
	// Object from IKTarget is that armature.
	IKTargetBoneName() (string, bool)
	// IKTargetCustomDataMask reports the vertex-group custom-data mask
	// to register on the target when the IK target is a mesh/lattice
	// vertex group rather than a bone.
	IKTargetCustomDataMask() (uint64, bool)
	IKPoleTarget() (Object, bool)
	IsIKChainTip() bool
	IKChainLength() int
	HasSplineIK() bool
}

// Constraint is a single constraint stack entry on an object or bone.
type Constraint interface {
	Name() string
	TargetObject() (Object, bool)
	TargetBone() (string, bool)
	IsSpaceRelevant() bool // needs WORLD_MATRIX-style Final rather than Local
}

// Modifier is a single modifier stack entry on an object.
type Modifier interface {
	Name() string
	DependsOnTime() bool
	PhysicsCollection() (any, bool) // collection this modifier samples for collider relations
}

// ParticleSystem ties an object to ParticleSettings and an optional
// collision/effector collection.
type ParticleSystem interface {
	Settings() ID
	TargetCollection() (any, bool)
}

// Driver is an F-curve driver on any RNA-style property path.
type Driver interface {
	TargetID() ID
	TargetPropertyPath() string
	Variables() []DriverVariable
}

// DriverVariable is one input variable of a Driver; it may itself target
// another ID's property.
type DriverVariable interface {
	TargetID() (ID, bool)
	TargetPropertyPath() (string, bool)
}

// ViewLayer is the host's per-layer visibility/selection state.
type ViewLayer interface {
	Name() string
	Bases() []Base
}

// Base pairs an Object with its per-view-layer visibility flags.
type Base interface {
	Object() Object
	IsVisible() bool
	IsSelected() bool
}

// Main is the host's top-level "all datablocks" collaborator, used by the
// builder to enumerate every ID of a given type during a full rebuild.
type Main interface {
	IDsOfType(idType int) []ID
}
