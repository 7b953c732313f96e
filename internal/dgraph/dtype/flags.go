// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package dtype

import "strings"

// RecalcFlag is a bit in the 32-bit flag field stamped onto id.recalc by a
// flush.
type RecalcFlag uint32

const (
	RecalcTransform RecalcFlag = 1 << iota
	RecalcGeometry
	RecalcAnimation
	RecalcShading
	RecalcCopy
	RecalcTimeDep
	RecalcParametersEval
	RecalcAudio
	RecalcPoint
	RecalcBase
	RecalcPointCache
	RecalcSequences
)

var recalcNames = []struct {
	bit  RecalcFlag
	name string
}{
	{RecalcTransform, "Transform"},
	{RecalcGeometry, "Geometry"},
	{RecalcAnimation, "Animation"},
	{RecalcShading, "Shading"},
	{RecalcCopy, "Copy"},
	{RecalcTimeDep, "TimeDep"},
	{RecalcParametersEval, "ParametersEval"},
	{RecalcAudio, "Audio"},
	{RecalcPoint, "Point"},
	{RecalcBase, "Base"},
	{RecalcPointCache, "PointCache"},
	{RecalcSequences, "Sequences"},
}

func (f RecalcFlag) String() string {
	if f == 0 {
		return "(none)"
	}
	var names []string
	for _, e := range recalcNames {
		if f&e.bit != 0 {
			names = append(names, e.name)
		}
	}
	return strings.Join(names, "|")
}

// Has reports whether all bits of other are set in f.
func (f RecalcFlag) Has(other RecalcFlag) bool {
	return f&other == other
}

// EvalFlag is an opaque per-ID-type bit field.
type EvalFlag uint32

const (
	EvalFlagNeedCurvePath EvalFlag = 1 << iota
	EvalFlagNeedShrinkwrapBoundary
)

// LinkedState is an ordered enum; merging two states keeps the maximum.
type LinkedState int

const (
	LinkedIndirectly LinkedState = iota
	LinkedViaSet
	LinkedDirectly
)

func (s LinkedState) String() string {
	switch s {
	case LinkedIndirectly:
		return "Indirectly"
	case LinkedViaSet:
		return "ViaSet"
	case LinkedDirectly:
		return "Directly"
	default:
		return "LinkedState(?)"
	}
}

// MergeLinkedState returns the stronger of a and b.
func MergeLinkedState(a, b LinkedState) LinkedState {
	if b > a {
		return b
	}
	return a
}

// UpdateSource is supplied by the caller of Tagger.TagIDUpdate and
// controls post-tag sub-flags.
type UpdateSource int

const (
	UpdateSourceUserEdit UpdateSource = iota
	UpdateSourceTime
	UpdateSourceRelations
	UpdateSourceVisibility
)

func (s UpdateSource) String() string {
	switch s {
	case UpdateSourceUserEdit:
		return "UserEdit"
	case UpdateSourceTime:
		return "Time"
	case UpdateSourceRelations:
		return "Relations"
	case UpdateSourceVisibility:
		return "Visibility"
	default:
		return "UpdateSource(?)"
	}
}

// RelationFlag is the relation flag bit set.
type RelationFlag uint8

const (
	RelationCheckBeforeAdd RelationFlag = 1 << iota
	RelationGodMode
	RelationNoFlush
	RelationFlushUserEditOnly
)

func (f RelationFlag) String() string {
	var parts []string
	if f&RelationCheckBeforeAdd != 0 {
		parts = append(parts, "CheckBeforeAdd")
	}
	if f&RelationGodMode != 0 {
		parts = append(parts, "GodMode")
	}
	if f&RelationNoFlush != 0 {
		parts = append(parts, "NoFlush")
	}
	if f&RelationFlushUserEditOnly != 0 {
		parts = append(parts, "FlushUserEditOnly")
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, "|")
}

// ObjectIteratorFlag selects which objects an object-iteration API returns.
type ObjectIteratorFlag uint8

const (
	ObjectIterLinkedDirectly ObjectIteratorFlag = 1 << iota
	ObjectIterLinkedIndirectly
	ObjectIterLinkedViaSet
	ObjectIterVisible
	ObjectIterDupli
	ObjectIterIgnoreTransformSolvers
)

// EvalMode is set once at graph construction and is immutable thereafter.
type EvalMode int

const (
	EvalModeViewport EvalMode = iota
	EvalModeRender
)

func (m EvalMode) String() string {
	switch m {
	case EvalModeViewport:
		return "Viewport"
	case EvalModeRender:
		return "Render"
	default:
		return "EvalMode(?)"
	}
}

// PropertySource distinguishes reading a property (Entry) from writing it
// (Exit) when resolving a PropertyKey to the operation it addresses.
type PropertySource int

const (
	PropertySourceEntry PropertySource = iota
	PropertySourceExit
)

func (s PropertySource) String() string {
	if s == PropertySourceExit {
		return "Exit"
	}
	return "Entry"
}

// NodeClass is the class a Node belongs to.
type NodeClass int

const (
	NodeClassGeneric NodeClass = iota
	NodeClassComponent
	NodeClassOperation
)

func (c NodeClass) String() string {
	switch c {
	case NodeClassGeneric:
		return "Generic"
	case NodeClassComponent:
		return "Component"
	case NodeClassOperation:
		return "Operation"
	default:
		return "NodeClass(?)"
	}
}

// OperationFlag is the per-OperationNode flag word.
type OperationFlag uint32

const (
	OpFlagNeedsUpdate OperationFlag = 1 << iota
	OpFlagDirectlyModified
	OpFlagUserModified
	OpFlagFlushAnimation
	OpFlagFlushEdit
)
