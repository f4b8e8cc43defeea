// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ir defines the contract between expression nodes and the engine
// storing the intermediate representation of a tensor program.
//
// The engine owns all the nodes of a compilation unit.
// Everything else only holds references (Ref) to these nodes.
package ir

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/gx-org/tensorexpr/fmterr"
)

type (
	// NodeID is the identity of a node, issued by the engine when the node is created.
	// Two references to the same node have the same identity.
	// Nodes of different compilation units never share an identity.
	NodeID uint64

	// Ref is a reference to a node owned by an engine.
	Ref interface {
		// ID returns the identity of the node.
		ID() NodeID
	}

	// FieldDescriptor describes a persistent field owning a global variable node.
	FieldDescriptor interface {
		// FieldName returns the name of the field.
		FieldName() string
	}

	// FieldShaper is the authority on the static shape of fields.
	FieldShaper interface {
		// StaticShape returns the axis lengths of a field.
		StaticShape(FieldDescriptor) ([]int, error)
	}

	// Engine stores and queries the nodes of an intermediate representation.
	Engine interface {
		// NewIdentifier returns a new identifier node.
		// An empty name returns an anonymous identifier.
		NewIdentifier(name string) (Ref, error)

		// NewConstant returns a new constant node given a literal value.
		NewConstant(val any) (Ref, error)

		// SetTag attaches a source location to a node.
		SetTag(Ref, *Tag) error

		// IsGlobalVar returns true if the node references a persistent field.
		IsGlobalVar(Ref) bool

		// IsExternalVar returns true if the node references an external tensor.
		IsExternalVar(Ref) bool

		// ExternalTensorRank returns the number of axes of an external tensor.
		ExternalTensorRank(Ref) (int, error)

		// ExternalTensorAxisLength returns a node computing the length
		// of an external tensor along an axis.
		ExternalTensorAxisLength(ref Ref, axis int) (Ref, error)

		// FieldOf returns the field owning a global variable node.
		FieldOf(Ref) (FieldDescriptor, error)

		// Fields returns the authority on field shapes.
		Fields() FieldShaper
	}
)

// Tag is the location in the source code from which a node has been built.
type Tag struct {
	FSet *token.FileSet
	Src  ast.Node
}

// Position returns the position of the tag in the source code.
func (t *Tag) Position() token.Position {
	return t.FSet.Position(t.Src.Pos())
}

// Errorf returns an error located at the tag.
func (t *Tag) Errorf(format string, a ...any) error {
	return fmterr.Errorf(t.FSet, t.Src, format, a...)
}

// Wrap attaches the position of the tag to an error.
// A nil tag returns the error unchanged.
func (t *Tag) Wrap(err error) error {
	if t == nil || err == nil {
		return err
	}
	return fmterr.Position(t.FSet, t.Src, err)
}

func (t *Tag) String() string {
	if t == nil {
		return "<no position>"
	}
	return fmt.Sprint(t.Position())
}
