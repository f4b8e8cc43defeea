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

package graph

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/tensorexpr/config"
	"github.com/gx-org/tensorexpr/field"
	"github.com/gx-org/tensorexpr/ir"
)

// Identifier is a named variable.
type Identifier struct {
	node
	name string
}

var _ graphNode = (*Identifier)(nil)

const anonymousRoot = "_id"

// NewIdentifier returns a new identifier node.
// An empty name is replaced by a name unique in the graph.
func (g *Graph) NewIdentifier(name string) (ir.Ref, error) {
	if name == "" {
		name = g.uniqueName(anonymousRoot)
	}
	n := &Identifier{node: g.newNode(), name: name}
	g.add(n)
	return n, nil
}

func (g *Graph) uniqueName(root string) string {
	next, ok := g.names[root]
	if !ok {
		g.names[root] = 1
		return root
	}
	g.names[root] = next + 1
	return fmt.Sprintf("%s%d", root, next)
}

// Name of the identifier.
func (n *Identifier) Name() string {
	return n.name
}

func (n *Identifier) String() string {
	return "ident " + n.name
}

// Constant is a scalar literal.
type Constant struct {
	node
	value any
	dt    dtype.DataType
}

var _ graphNode = (*Constant)(nil)

// NewConstant returns a new constant node.
// Go int and float64 values are converted to the default data types of the graph.
func (g *Graph) NewConstant(val any) (ir.Ref, error) {
	value, dt, err := g.toScalar(val)
	if err != nil {
		return nil, err
	}
	n := &Constant{node: g.newNode(), value: value, dt: dt}
	g.add(n)
	return n, nil
}

func (g *Graph) toScalar(val any) (any, dtype.DataType, error) {
	switch valT := val.(type) {
	case bool:
		return valT, dtype.Bool, nil
	case int32:
		return valT, dtype.Int32, nil
	case int64:
		return valT, dtype.Int64, nil
	case uint32:
		return valT, dtype.Uint32, nil
	case uint64:
		return valT, dtype.Uint64, nil
	case float32:
		return valT, dtype.Float32, nil
	case float64:
		if g.floatType == dtype.Float32 {
			return float32(valT), dtype.Float32, nil
		}
		return valT, dtype.Float64, nil
	case int:
		return g.defaultInt(valT)
	}
	return nil, dtype.Invalid, errors.Errorf("cannot build a constant from a value of type %T", val)
}

func (g *Graph) defaultInt(val int) (any, dtype.DataType, error) {
	outOfRange := func() (any, dtype.DataType, error) {
		return nil, dtype.Invalid, errors.Errorf("constant %d overflows %s", val, config.DTypeName(g.intType))
	}
	switch g.intType {
	case dtype.Int32:
		if val < math.MinInt32 || val > math.MaxInt32 {
			return outOfRange()
		}
		return int32(val), dtype.Int32, nil
	case dtype.Int64:
		return int64(val), dtype.Int64, nil
	case dtype.Uint32:
		if val < 0 || uint64(val) > math.MaxUint32 {
			return outOfRange()
		}
		return uint32(val), dtype.Uint32, nil
	case dtype.Uint64:
		if val < 0 {
			return outOfRange()
		}
		return uint64(val), dtype.Uint64, nil
	}
	return nil, dtype.Invalid, errors.Errorf("default integer type %s not supported", config.DTypeName(g.intType))
}

// Value returns the value of the constant.
func (n *Constant) Value() any {
	return n.value
}

// DType returns the data type of the constant.
func (n *Constant) DType() dtype.DataType {
	return n.dt
}

func (n *Constant) String() string {
	return fmt.Sprintf("const %v:%s", n.value, config.DTypeName(n.dt))
}

// GlobalVar references a field.
type GlobalVar struct {
	node
	field *field.Field
}

var _ graphNode = (*GlobalVar)(nil)

// NewGlobalVar returns a node referencing a field declared in the registry of the graph.
func (g *Graph) NewGlobalVar(f *field.Field) (ir.Ref, error) {
	if f == nil {
		return nil, errors.Errorf("cannot reference a nil field")
	}
	if declared, ok := g.fields.Lookup(f.FieldName()); !ok || declared != f {
		return nil, errors.Errorf("field %s has not been declared in the registry of the graph", f.FieldName())
	}
	n := &GlobalVar{node: g.newNode(), field: f}
	g.add(n)
	return n, nil
}

// Field returns the field referenced by the node.
func (n *GlobalVar) Field() *field.Field {
	return n.field
}

func (n *GlobalVar) String() string {
	return fmt.Sprintf("global %s %v:%s", n.field.FieldName(), n.field.AxisLengths(), config.DTypeName(n.field.DType()))
}

// ExternalTensor references an array passed to the program at runtime.
// Its axis lengths are only known at runtime.
type ExternalTensor struct {
	node
	name string
	dt   dtype.DataType
	rank int
}

var _ graphNode = (*ExternalTensor)(nil)

// NewExternalTensor returns a node referencing an external array.
func (g *Graph) NewExternalTensor(name string, dt dtype.DataType, rank int) (ir.Ref, error) {
	if rank < 0 {
		return nil, errors.Errorf("invalid rank %d for external tensor %s", rank, name)
	}
	n := &ExternalTensor{node: g.newNode(), name: name, dt: dt, rank: rank}
	g.add(n)
	return n, nil
}

// Name of the external tensor.
func (n *ExternalTensor) Name() string {
	return n.name
}

// DType returns the data type of the elements of the tensor.
func (n *ExternalTensor) DType() dtype.DataType {
	return n.dt
}

// Rank returns the number of axes of the tensor.
func (n *ExternalTensor) Rank() int {
	return n.rank
}

func (n *ExternalTensor) String() string {
	return fmt.Sprintf("external %s rank %d:%s", n.name, n.rank, config.DTypeName(n.dt))
}

// AxisLength is the length of an external tensor along an axis.
type AxisLength struct {
	node
	tensor *ExternalTensor
	axis   int
}

var _ graphNode = (*AxisLength)(nil)

// Tensor returns the external tensor.
func (n *AxisLength) Tensor() *ExternalTensor {
	return n.tensor
}

// Axis returns the index of the axis.
func (n *AxisLength) Axis() int {
	return n.axis
}

func (n *AxisLength) String() string {
	return fmt.Sprintf("axis_length %s %d", n.tensor.ref(), n.axis)
}
