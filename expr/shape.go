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

package expr

import (
	"github.com/gx-org/tensorexpr/fmterr"
	"github.com/gx-org/tensorexpr/ir"
	"github.com/gx-org/tensorexpr/matrix"
)

// Shape of an expression referencing a field or an external tensor.
//
// The axis lengths of an external tensor are only known at runtime:
// they are returned as a column vector of expressions.
// The axis lengths of a field are known statically.
type Shape struct {
	// Axes are the expressions computing the axis lengths of an external tensor.
	Axes *matrix.Matrix
	// Static are the axis lengths of a field.
	Static []int
}

// Dynamic returns true if the axis lengths are only known at runtime.
func (s Shape) Dynamic() bool {
	return s.Axes != nil
}

// Rank returns the number of axes.
func (s Shape) Rank() int {
	if s.Dynamic() {
		return s.Axes.Rows()
	}
	return len(s.Static)
}

// AxisExprs returns the expressions computing the axis lengths of an external tensor.
// Returns nil if the shape is static.
func (s Shape) AxisExprs() []Expr {
	if !s.Dynamic() {
		return nil
	}
	entries := s.Axes.Entries()
	exprs := make([]Expr, len(entries))
	for i, entry := range entries {
		exprs[i] = entry.(Expr)
	}
	return exprs
}

// Shape returns the shape of an expression.
// Querying the shape of an expression that is neither a field nor
// an external tensor is a contract violation.
func (e Expr) Shape(eng ir.Engine) (Shape, error) {
	if eng.IsExternalVar(e.ref) {
		return e.externalShape(eng)
	}
	fmterr.Assertf(eng.IsGlobalVar(e.ref), "expression %d does not reference a field or an external tensor: shape not available", e.Hash())
	desc, err := eng.FieldOf(e.ref)
	if err != nil {
		return Shape{}, err
	}
	static, err := eng.Fields().StaticShape(desc)
	if err != nil {
		return Shape{}, err
	}
	return Shape{Static: static}, nil
}

func (e Expr) externalShape(eng ir.Engine) (Shape, error) {
	rank, err := eng.ExternalTensorRank(e.ref)
	if err != nil {
		return Shape{}, err
	}
	axes := make([]any, rank)
	for i := range rank {
		ref, err := eng.ExternalTensorAxisLength(e.ref, i)
		if err != nil {
			return Shape{}, err
		}
		if axes[i], err = New(eng, FromNativeRef{Ref: ref}); err != nil {
			return Shape{}, err
		}
	}
	return Shape{Axes: matrix.Vector(axes...)}, nil
}
