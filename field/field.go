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

// Package field declares persistent fields and reports their static shapes.
package field

import (
	"slices"

	"github.com/pkg/errors"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
	"github.com/gx-org/tensorexpr/ir"
	"go.uber.org/multierr"
)

// Field is a persistent array with a static shape.
type Field struct {
	reg   *Registry
	name  string
	shape shape.Shape
}

var _ ir.FieldDescriptor = (*Field)(nil)

// FieldName returns the name of the field.
func (f *Field) FieldName() string {
	return f.name
}

// DType returns the data type of the elements of the field.
func (f *Field) DType() dtype.DataType {
	return f.shape.DType
}

// AxisLengths returns a copy of the axis lengths of the field.
func (f *Field) AxisLengths() []int {
	return slices.Clone(f.shape.AxisLengths)
}

func (f *Field) String() string {
	return f.name
}

// Registry of fields declared in a compilation unit.
type Registry struct {
	names  map[string]*Field
	fields []*Field
}

var _ ir.FieldShaper = (*Registry)(nil)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]*Field)}
}

// Declare a new field.
// All invalid axis lengths are reported in the returned error.
func (r *Registry) Declare(name string, dt dtype.DataType, axisLengths ...int) (*Field, error) {
	if name == "" {
		return nil, errors.Errorf("cannot declare a field without a name")
	}
	if _, exist := r.names[name]; exist {
		return nil, errors.Errorf("field %s already declared", name)
	}
	var err error
	for i, axisLength := range axisLengths {
		if axisLength <= 0 {
			err = multierr.Append(err, errors.Errorf("field %s: invalid length %d for axis %d", name, axisLength, i))
		}
	}
	if err != nil {
		return nil, err
	}
	f := &Field{
		reg:  r,
		name: name,
		shape: shape.Shape{
			DType:       dt,
			AxisLengths: slices.Clone(axisLengths),
		},
	}
	r.names[name] = f
	r.fields = append(r.fields, f)
	return f, nil
}

// Lookup returns a field given its name.
func (r *Registry) Lookup(name string) (*Field, bool) {
	f, ok := r.names[name]
	return f, ok
}

// Fields returns all the fields in declaration order.
func (r *Registry) Fields() func(func(*Field) bool) {
	return func(yield func(*Field) bool) {
		for _, f := range r.fields {
			if !yield(f) {
				break
			}
		}
	}
}

// StaticShape returns the axis lengths of a field declared in the registry.
func (r *Registry) StaticShape(desc ir.FieldDescriptor) ([]int, error) {
	f, ok := desc.(*Field)
	if !ok {
		return nil, errors.Errorf("field descriptor %T not supported", desc)
	}
	if f.reg != r {
		return nil, errors.Errorf("field %s has not been declared in this registry", f.name)
	}
	return f.AxisLengths(), nil
}
