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

// Package graph implements an in-process engine storing expression nodes.
//
// A graph is a compilation unit: it owns all its nodes until it is discarded.
// A graph is not safe for concurrent use.
package graph

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/tensorexpr/config"
	"github.com/gx-org/tensorexpr/field"
	"github.com/gx-org/tensorexpr/fmterr"
	"github.com/gx-org/tensorexpr/ir"
)

type (
	// Graph of expression nodes.
	Graph struct {
		id        uuid.UUID
		intType   dtype.DataType
		floatType dtype.DataType
		fields    *field.Registry

		nodes []graphNode
		names map[string]int
		axes  map[axisKey]*AxisLength
	}

	axisKey struct {
		tensor ir.NodeID
		axis   int
	}

	graphNode interface {
		ir.Ref
		base() *node
		String() string
	}
)

var _ ir.Engine = (*Graph)(nil)

// New returns an empty graph.
// A new field registry is created if fields is nil.
func New(cfg config.Config, fields *field.Registry) (*Graph, error) {
	intType, err := cfg.IntType()
	if err != nil {
		return nil, err
	}
	floatType, err := cfg.FloatType()
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = field.NewRegistry()
	}
	return &Graph{
		id:        uuid.New(),
		intType:   intType,
		floatType: floatType,
		fields:    fields,
		names:     make(map[string]int),
		axes:      make(map[axisKey]*AxisLength),
	}, nil
}

// ID returns the unique identifier of the graph.
func (g *Graph) ID() uuid.UUID {
	return g.id
}

// Fields returns the registry of fields used by global variables.
func (g *Graph) Fields() ir.FieldShaper {
	return g.fields
}

// Registry returns the registry in which fields are declared.
func (g *Graph) Registry() *field.Registry {
	return g.fields
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// lastID is the identity of the last node created by any graph.
// Identities are unique across graphs of the same process.
var lastID atomic.Uint64

type node struct {
	g     *Graph
	owner uuid.UUID
	id    ir.NodeID
	index int
	tag   *ir.Tag
}

func (g *Graph) newNode() node {
	return node{
		g:     g,
		owner: g.id,
		id:    ir.NodeID(lastID.Add(1)),
		index: len(g.nodes) + 1,
	}
}

func (g *Graph) add(n graphNode) {
	g.nodes = append(g.nodes, n)
}

func (n *node) base() *node {
	return n
}

// ID returns the identity of the node.
func (n *node) ID() ir.NodeID {
	return n.id
}

// Owner returns the identifier of the graph owning the node.
func (n *node) Owner() uuid.UUID {
	return n.owner
}

// Graph returns the graph owning the node.
func (n *node) Graph() *Graph {
	return n.g
}

// Tag returns the source location attached to the node or nil.
func (n *node) Tag() *ir.Tag {
	return n.tag
}

func (n *node) ref() string {
	return fmt.Sprintf("%%%d", n.index)
}

// Node returns the node given a reference.
// An error is returned if the reference has not been issued by the graph.
func (g *Graph) Node(ref ir.Ref) (ir.Ref, error) {
	return g.lookup(ref)
}

func (g *Graph) lookup(ref ir.Ref) (graphNode, error) {
	if ref == nil {
		return nil, fmterr.Internalf("nil node reference")
	}
	n, ok := ref.(graphNode)
	if !ok {
		return nil, fmterr.Internalf("node reference %T not supported by graph %s", ref, g.id)
	}
	if owner := n.base().owner; owner != g.id {
		return nil, fmterr.Internalf("node %d belongs to graph %s, not to graph %s", n.ID(), owner, g.id)
	}
	return n, nil
}

// SetTag attaches a source location to a node.
func (g *Graph) SetTag(ref ir.Ref, tag *ir.Tag) error {
	n, err := g.lookup(ref)
	if err != nil {
		return err
	}
	n.base().tag = tag
	return nil
}

// IsGlobalVar returns true if the node references a field.
func (g *Graph) IsGlobalVar(ref ir.Ref) bool {
	n, err := g.lookup(ref)
	if err != nil {
		return false
	}
	_, ok := n.(*GlobalVar)
	return ok
}

// IsExternalVar returns true if the node references an external tensor.
func (g *Graph) IsExternalVar(ref ir.Ref) bool {
	n, err := g.lookup(ref)
	if err != nil {
		return false
	}
	_, ok := n.(*ExternalTensor)
	return ok
}

// IsConstant returns true if the node is a constant.
func (g *Graph) IsConstant(ref ir.Ref) bool {
	n, err := g.lookup(ref)
	if err != nil {
		return false
	}
	_, ok := n.(*Constant)
	return ok
}

func (g *Graph) externalTensor(ref ir.Ref) (*ExternalTensor, error) {
	n, err := g.lookup(ref)
	if err != nil {
		return nil, err
	}
	ext, ok := n.(*ExternalTensor)
	if !ok {
		return nil, n.base().tag.Wrap(errors.Errorf("node %s is not an external tensor", n.base().ref()))
	}
	return ext, nil
}

// ExternalTensorRank returns the number of axes of an external tensor.
func (g *Graph) ExternalTensorRank(ref ir.Ref) (int, error) {
	ext, err := g.externalTensor(ref)
	if err != nil {
		return 0, err
	}
	return ext.rank, nil
}

// ExternalTensorAxisLength returns a node computing the length of
// an external tensor along a given axis.
// The same node is returned when the same axis is queried more than once.
func (g *Graph) ExternalTensorAxisLength(ref ir.Ref, axis int) (ir.Ref, error) {
	ext, err := g.externalTensor(ref)
	if err != nil {
		return nil, err
	}
	if axis < 0 || axis >= ext.rank {
		return nil, ext.tag.Wrap(errors.Errorf("axis %d out of range for external tensor %s of rank %d", axis, ext.name, ext.rank))
	}
	key := axisKey{tensor: ext.id, axis: axis}
	if n, ok := g.axes[key]; ok {
		return n, nil
	}
	n := &AxisLength{
		node:   g.newNode(),
		tensor: ext,
		axis:   axis,
	}
	g.add(n)
	g.axes[key] = n
	return n, nil
}

// FieldOf returns the field referenced by a global variable.
func (g *Graph) FieldOf(ref ir.Ref) (ir.FieldDescriptor, error) {
	n, err := g.lookup(ref)
	if err != nil {
		return nil, err
	}
	gv, ok := n.(*GlobalVar)
	if !ok {
		return nil, n.base().tag.Wrap(errors.Errorf("node %s does not reference a field", n.base().ref()))
	}
	return gv.field, nil
}

// String returns all the nodes of the graph, in creation order.
func (g *Graph) String() string {
	var b strings.Builder
	for _, n := range g.nodes {
		b.WriteString(n.base().ref())
		b.WriteString(" = ")
		b.WriteString(n.String())
		if tag := n.base().tag; tag != nil {
			b.WriteString(" @ ")
			b.WriteString(tag.String())
		}
		b.WriteString("\n")
	}
	return b.String()
}
