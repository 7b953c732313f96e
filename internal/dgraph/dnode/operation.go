// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package dnode

import "github.com/dune3d/dgraph/internal/dgraph/dtype"

// EvalCallback is the host-provided evaluation function bound to an
// OperationNode. It receives an opaque per-evaluation context value
// supplied by the external scheduler.
type EvalCallback func(ctx any) error

// OperationNode is the leaf unit of scheduling.
type OperationNode struct {
	Class dtype.NodeClass

	Component *ComponentNode
	OpCode    dtype.OpCode
	Name      string
	NameTag   int

	EvalCallback EvalCallback

	Flags dtype.OperationFlag

	Inlinks, Outlinks []*Relation

	// CustomFlags is transient scratch space used only by the flush walk,
	// so a flush is not reentrant; package query keeps its own visited set
	// instead.
	CustomFlags uint32
	// NumLinksPending gates the external scheduler's topological walk; it
	// is recomputed at finalize and decremented as the scheduler completes
	// operation-class predecessors (the decrementing itself is the
	// external scheduler's responsibility, out of scope for this package).
	NumLinksPending int
}

func NewOperationNode(component *ComponentNode, opCode dtype.OpCode, name string, nameTag int, cb EvalCallback) *OperationNode {
	return &OperationNode{
		Class:        dtype.NodeClassOperation,
		Component:    component,
		OpCode:       opCode,
		Name:         name,
		NameTag:      nameTag,
		EvalCallback: cb,
	}
}

func (o *OperationNode) HasFlag(f dtype.OperationFlag) bool { return o.Flags&f != 0 }
func (o *OperationNode) SetFlag(f dtype.OperationFlag)      { o.Flags |= f }
func (o *OperationNode) ClearFlag(f dtype.OperationFlag)    { o.Flags &^= f }

// Key returns the (opcode, name, name_tag) identity used for ops_map
// lookups during construction.
type OpMapKey struct {
	OpCode  dtype.OpCode
	Name    string
	NameTag int
}

func (o *OperationNode) Key() OpMapKey {
	return OpMapKey{OpCode: o.OpCode, Name: o.Name, NameTag: o.NameTag}
}

// PersistentKey identifies an operation stably across graph rebuilds.
type PersistentKey struct {
	IDSessionUUID  string
	ComponentType  dtype.ComponentType
	ComponentName  string
	OpCode         dtype.OpCode
	OpName         string
	OpNameTag      int
}

func (o *OperationNode) PersistentKeyFor(idSessionUUID string) PersistentKey {
	ct := dtype.ComponentUnknown
	cn := ""
	if o.Component != nil {
		ct = o.Component.Type
		cn = o.Component.Name
	}
	return PersistentKey{
		IDSessionUUID: idSessionUUID,
		ComponentType: ct,
		ComponentName: cn,
		OpCode:        o.OpCode,
		OpName:        o.Name,
		OpNameTag:     o.NameTag,
	}
}
