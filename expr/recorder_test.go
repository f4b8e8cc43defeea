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

package expr_test

import (
	"github.com/pkg/errors"
	"github.com/gx-org/tensorexpr/ir"
)

// recorder is an engine accepting any literal and recording the calls made by expressions.
type recorder struct {
	consts []any
	tags   map[ir.NodeID]*ir.Tag
	next   ir.NodeID
}

var _ ir.Engine = (*recorder)(nil)

type recordedNode struct {
	id ir.NodeID
}

func (n *recordedNode) ID() ir.NodeID {
	return n.id
}

func newRecorder() *recorder {
	return &recorder{tags: make(map[ir.NodeID]*ir.Tag)}
}

func (r *recorder) newNode() *recordedNode {
	r.next++
	return &recordedNode{id: r.next}
}

func (r *recorder) NewIdentifier(name string) (ir.Ref, error) {
	return r.newNode(), nil
}

func (r *recorder) NewConstant(val any) (ir.Ref, error) {
	r.consts = append(r.consts, val)
	return r.newNode(), nil
}

func (r *recorder) SetTag(ref ir.Ref, tag *ir.Tag) error {
	r.tags[ref.ID()] = tag
	return nil
}

func (r *recorder) IsGlobalVar(ir.Ref) bool {
	return false
}

func (r *recorder) IsExternalVar(ir.Ref) bool {
	return false
}

func (r *recorder) ExternalTensorRank(ir.Ref) (int, error) {
	return 0, errors.Errorf("not implemented")
}

func (r *recorder) ExternalTensorAxisLength(ir.Ref, int) (ir.Ref, error) {
	return nil, errors.Errorf("not implemented")
}

func (r *recorder) FieldOf(ir.Ref) (ir.FieldDescriptor, error) {
	return nil, errors.Errorf("not implemented")
}

func (r *recorder) Fields() ir.FieldShaper {
	return nil
}
