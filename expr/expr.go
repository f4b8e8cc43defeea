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

// Package expr implements handles on scalar expression nodes.
//
// An expression (Expr) references a node owned by an engine (ir.Engine).
// Copying an expression copies the reference, not the node.
// Expressions referencing the same node have the same identity (Hash),
// which is used to key passes working on nodes.
package expr

import (
	"github.com/gx-org/tensorexpr/fmterr"
	"github.com/gx-org/tensorexpr/ir"
	"github.com/gx-org/tensorexpr/matrix"
	"github.com/gx-org/tensorexpr/numeric"
)

// Expr is a handle on a scalar expression node.
type Expr struct {
	ref ir.Ref
	tag *ir.Tag
}

type (
	// Source from which an expression is built.
	Source interface {
		source()
	}

	// FromNativeRef wraps a node reference issued by the engine.
	FromNativeRef struct {
		Ref ir.Ref
	}

	// FromHandle copies an existing expression.
	FromHandle struct {
		Handle Expr
	}

	// FromLiteral builds a new constant node given a literal value.
	FromLiteral struct {
		Value any
	}
)

func (FromNativeRef) source() {}
func (FromHandle) source()    {}
func (FromLiteral) source()   {}

// Classify returns the source to build an expression from a value.
// Node references take precedence over expressions.
// Any other value is a literal.
func Classify(val any) Source {
	switch valT := val.(type) {
	case ir.Ref:
		return FromNativeRef{Ref: valT}
	case Expr:
		return FromHandle{Handle: valT}
	case *Expr:
		if valT == nil {
			return FromHandle{}
		}
		return FromHandle{Handle: *valT}
	}
	return FromLiteral{Value: val}
}

type options struct {
	tag *ir.Tag
}

// Option to build an expression.
type Option func(*options)

// WithTag attaches a source location to the node of the expression.
func WithTag(tag *ir.Tag) Option {
	return func(opts *options) {
		opts.tag = tag
	}
}

// New returns an expression given a source.
//
// An expression built from another expression inherits its tag:
// a tag passed as an option is then ignored.
// If the resulting expression has a tag, the tag is attached to the node.
func New(eng ir.Engine, src Source, opts ...Option) (Expr, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	e := Expr{tag: o.tag}
	switch srcT := src.(type) {
	case FromNativeRef:
		fmterr.Assertf(srcT.Ref != nil, "cannot build an expression from a nil node reference")
		e.ref = srcT.Ref
	case FromHandle:
		fmterr.Assertf(srcT.Handle.ref != nil, "cannot copy an expression without a node")
		e.ref, e.tag = srcT.Handle.ref, srcT.Handle.tag
	case FromLiteral:
		ref, err := newConstant(eng, srcT.Value, o.tag)
		if err != nil {
			return Expr{}, err
		}
		e.ref = ref
	default:
		fmterr.Assertf(false, "expression source %T not supported", src)
	}
	if e.tag != nil {
		if err := eng.SetTag(e.ref, e.tag); err != nil {
			return Expr{}, err
		}
	}
	return e, nil
}

func newConstant(eng ir.Engine, val any, tag *ir.Tag) (ir.Ref, error) {
	if matrix.IsCompound(val) {
		return nil, tag.Wrap(fmterr.InvalidOperandf("cannot initialize scalar expression from compound value %T", val))
	}
	return eng.NewConstant(numeric.Normalize(val))
}

// NewFromArgs returns an expression built from a single positional argument.
// Passing any other number of arguments is a contract violation.
func NewFromArgs(eng ir.Engine, args []any, opts ...Option) (Expr, error) {
	fmterr.Assertf(len(args) == 1, "cannot build an expression from %d arguments: expect exactly one argument", len(args))
	return New(eng, Classify(args[0]), opts...)
}

// Ref returns the reference to the node of the expression.
func (e Expr) Ref() ir.Ref {
	return e.ref
}

// Tag returns the source location of the expression or nil.
func (e Expr) Tag() *ir.Tag {
	return e.tag
}

// Hash returns the identity of the node referenced by the expression.
func (e Expr) Hash() ir.NodeID {
	fmterr.Assertf(e.ref != nil, "cannot hash an expression without a node")
	return e.ref.ID()
}

// Same returns true if both expressions reference the same node.
func (e Expr) Same(other Expr) bool {
	return e.Hash() == other.Hash()
}

// LoopRange returns the expression itself: an expression is a range over itself.
func (e Expr) LoopRange() Expr {
	return e
}

// IsGlobal returns true if the expression references a field or an external tensor.
func (e Expr) IsGlobal(eng ir.Engine) bool {
	return eng.IsGlobalVar(e.ref) || eng.IsExternalVar(e.ref)
}

// String returns a placeholder: the content of a node is only known by its engine.
func (e Expr) String() string {
	return "<tensorexpr.Expr>"
}
