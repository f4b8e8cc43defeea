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

// Package numeric implements numerical arrays given to the front end as literals.
package numeric

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
)

type (
	// Atomic is a value that may wrap a single scalar.
	Atomic interface {
		// ToAtom returns the atomic value contained in the value.
		// It returns an error if the value contains more than one scalar.
		ToAtom() (any, error)
	}

	// Array is a multi-dimensional array stored by the host.
	Array[T dtype.GoDataType] struct {
		shape  shape.Shape
		values []T
	}
)

var _ Atomic = (*Array[int32])(nil)

// Atom returns a zero-dimensional array storing a single value.
func Atom[T dtype.GoDataType](val T) *Array[T] {
	return &Array[T]{
		shape:  shape.Shape{DType: dtype.Generic[T]()},
		values: []T{val},
	}
}

// New returns an array given its flat values and its axis lengths.
func New[T dtype.GoDataType](values []T, axisLengths ...int) (*Array[T], error) {
	size := 1
	for i, axisLength := range axisLengths {
		if axisLength < 0 {
			return nil, errors.Errorf("invalid length %d for axis %d", axisLength, i)
		}
		size *= axisLength
	}
	if len(values) != size {
		return nil, errors.Errorf("axis lengths %v require %d values but got %d", axisLengths, size, len(values))
	}
	return &Array[T]{
		shape: shape.Shape{
			DType:       dtype.Generic[T](),
			AxisLengths: axisLengths,
		},
		values: values,
	}, nil
}

// Shape of the array.
func (a *Array[T]) Shape() *shape.Shape {
	return &a.shape
}

// Flat values of the array.
func (a *Array[T]) Flat() []T {
	return a.values
}

// ToAtom returns the atomic value contained in the array.
// It returns an error if the array is nil or has at least one axis.
func (a *Array[T]) ToAtom() (any, error) {
	if a == nil {
		return nil, errors.Errorf("nil array")
	}
	if len(a.shape.AxisLengths) > 0 {
		return nil, errors.Errorf("array of shape %v is not atomic", a.shape.AxisLengths)
	}
	return a.values[0], nil
}

// String representation of the array.
func (a *Array[T]) String() string {
	if a == nil {
		return "nil"
	}
	if len(a.shape.AxisLengths) == 0 {
		return fmt.Sprint(a.values[0])
	}
	return fmt.Sprintf("%v%v", a.shape.AxisLengths, a.values)
}

// Normalize returns the scalar wrapped by an atomic value.
// Any other value, or an atomic value for which the scalar cannot be extracted,
// is returned unchanged.
func Normalize(val any) any {
	atomic, ok := val.(Atomic)
	if !ok {
		return val
	}
	atom, err := atomic.ToAtom()
	if err != nil {
		return val
	}
	return atom
}
