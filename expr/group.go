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
	"reflect"

	"github.com/pkg/errors"
	"github.com/gx-org/tensorexpr/ir"
	"github.com/gx-org/tensorexpr/matrix"
)

// Group returns the node references of a list of operands, in order.
//
// A single argument is unpacked if it is a slice, an array,
// or a vector (a compound value with a single column).
// Arguments are never unpacked when more than one argument is given.
func Group(eng ir.Engine, args ...any) ([]ir.Ref, error) {
	if len(args) == 1 {
		args = unpack(args[0])
	}
	refs := make([]ir.Ref, len(args))
	for i, arg := range args {
		e, err := New(eng, Classify(arg))
		if err != nil {
			return nil, err
		}
		refs[i] = e.Ref()
	}
	return refs, nil
}

func unpack(arg any) []any {
	switch argT := arg.(type) {
	case []any:
		return argT
	case matrix.Compound:
		if argT.Cols() == 1 {
			return argT.Entries()
		}
		return []any{arg}
	}
	val := reflect.ValueOf(arg)
	if kind := val.Kind(); kind != reflect.Slice && kind != reflect.Array {
		return []any{arg}
	}
	elements := make([]any, val.Len())
	for i := range elements {
		elements[i] = val.Index(i).Interface()
	}
	return elements
}

// NewVarVector returns a column vector of new anonymous identifiers.
func NewVarVector(eng ir.Engine, size int) (*matrix.Matrix, error) {
	if size < 0 {
		return nil, errors.Errorf("invalid vector size %d", size)
	}
	entries := make([]any, size)
	for i := range entries {
		ref, err := eng.NewIdentifier("")
		if err != nil {
			return nil, err
		}
		if entries[i], err = New(eng, FromNativeRef{Ref: ref}); err != nil {
			return nil, err
		}
	}
	return matrix.Vector(entries...), nil
}
