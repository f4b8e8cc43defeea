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

package graph_test

import (
	"go/ast"
	"go/token"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/tensorexpr/config"
	"github.com/gx-org/tensorexpr/field"
	"github.com/gx-org/tensorexpr/fmterr"
	"github.com/gx-org/tensorexpr/graph"
	"github.com/gx-org/tensorexpr/ir"
	"github.com/sebdah/goldie/v2"
)

func newGraph(t *testing.T, cfg config.Config) *graph.Graph {
	t.Helper()
	g, err := graph.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestConstant(t *testing.T) {
	cfg64 := config.Config{DefaultInt: "int64", DefaultFloat: "float64"}
	cfgUnsigned := config.Config{DefaultInt: "uint32", DefaultFloat: "float32"}
	tests := []struct {
		cfg       config.Config
		val       any
		wantValue any
		wantDType dtype.DataType
		err       bool
	}{
		{cfg: config.Default(), val: 2, wantValue: int32(2), wantDType: dtype.Int32},
		{cfg: config.Default(), val: 1.5, wantValue: float32(1.5), wantDType: dtype.Float32},
		{cfg: config.Default(), val: true, wantValue: true, wantDType: dtype.Bool},
		{cfg: config.Default(), val: int64(3), wantValue: int64(3), wantDType: dtype.Int64},
		{cfg: config.Default(), val: uint64(3), wantValue: uint64(3), wantDType: dtype.Uint64},
		{cfg: config.Default(), val: float64(0.25), wantValue: float32(0.25), wantDType: dtype.Float32},
		{cfg: cfg64, val: 2, wantValue: int64(2), wantDType: dtype.Int64},
		{cfg: cfg64, val: 1.5, wantValue: float64(1.5), wantDType: dtype.Float64},
		{cfg: cfgUnsigned, val: 7, wantValue: uint32(7), wantDType: dtype.Uint32},
		{cfg: cfgUnsigned, val: -7, err: true},
		{cfg: config.Default(), val: 1 << 40, err: true},
		{cfg: config.Default(), val: "a", err: true},
		{cfg: config.Default(), val: []int{1}, err: true},
	}
	for i, test := range tests {
		g := newGraph(t, test.cfg)
		ref, err := g.NewConstant(test.val)
		if test.err {
			if err == nil {
				t.Errorf("test %d: expected an error but got nil", i)
			}
			continue
		}
		if err != nil {
			t.Errorf("test %d: %v", i, err)
			continue
		}
		if !g.IsConstant(ref) {
			t.Errorf("test %d: node %v is not a constant", i, ref)
			continue
		}
		c := ref.(*graph.Constant)
		if c.Value() != test.wantValue || c.DType() != test.wantDType {
			t.Errorf("test %d: got %v (%T) of type %v but want %v (%T) of type %v", i, c.Value(), c.Value(), c.DType(), test.wantValue, test.wantValue, test.wantDType)
		}
	}
}

func TestInvalidConfig(t *testing.T) {
	if _, err := graph.New(config.Config{DefaultInt: "int8", DefaultFloat: "float32"}, nil); err == nil {
		t.Errorf("expected an error for an invalid configuration")
	}
}

func TestIdentity(t *testing.T) {
	g := newGraph(t, config.Default())
	a, err := g.NewIdentifier("")
	if err != nil {
		t.Fatal(err)
	}
	b, err := g.NewIdentifier("")
	if err != nil {
		t.Fatal(err)
	}
	if a.ID() == b.ID() {
		t.Errorf("two nodes share the same identity %d", a.ID())
	}
	if a.(*graph.Identifier).Name() == b.(*graph.Identifier).Name() {
		t.Errorf("two anonymous identifiers share the same name %s", a.(*graph.Identifier).Name())
	}
	if g.Len() != 2 {
		t.Errorf("got %d nodes but want 2", g.Len())
	}
}

func TestIdentityAcrossGraphs(t *testing.T) {
	g1 := newGraph(t, config.Default())
	g2 := newGraph(t, config.Default())
	a, err := g1.NewIdentifier("a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := g2.NewIdentifier("b")
	if err != nil {
		t.Fatal(err)
	}
	if a.ID() == b.ID() {
		t.Errorf("nodes of two graphs share the same identity %d", a.ID())
	}
	if owner := a.(*graph.Identifier).Owner(); owner != g1.ID() {
		t.Errorf("got owner %s but want %s", owner, g1.ID())
	}
	if owner := b.(*graph.Identifier).Owner(); owner != g2.ID() {
		t.Errorf("got owner %s but want %s", owner, g2.ID())
	}
}

func TestForeignNode(t *testing.T) {
	g1 := newGraph(t, config.Default())
	g2 := newGraph(t, config.Default())
	if g1.ID() == g2.ID() {
		t.Fatalf("two graphs share the same identifier %s", g1.ID())
	}
	ref, err := g1.NewExternalTensor("a", dtype.Float32, 1)
	if err != nil {
		t.Fatal(err)
	}
	if g2.IsExternalVar(ref) {
		t.Errorf("graph accepted a node from another graph")
	}
	_, err = g2.ExternalTensorRank(ref)
	if !fmterr.IsInternal(err) {
		t.Errorf("got error %v but want an internal error", err)
	}
	if err := g2.SetTag(ref, nil); err == nil {
		t.Errorf("expected an error when tagging a node from another graph")
	}
	if _, err := g1.Node(ref); err != nil {
		t.Errorf("cannot find node in its own graph: %v", err)
	}
}

func TestExternalTensor(t *testing.T) {
	g := newGraph(t, config.Default())
	ext, err := g.NewExternalTensor("img", dtype.Float32, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !g.IsExternalVar(ext) || g.IsGlobalVar(ext) {
		t.Errorf("external tensor not reported as external")
	}
	rank, err := g.ExternalTensorRank(ext)
	if err != nil {
		t.Fatal(err)
	}
	if rank != 3 {
		t.Errorf("got rank %d but want 3", rank)
	}
	axis0, err := g.ExternalTensorAxisLength(ext, 0)
	if err != nil {
		t.Fatal(err)
	}
	again, err := g.ExternalTensorAxisLength(ext, 0)
	if err != nil {
		t.Fatal(err)
	}
	if axis0.ID() != again.ID() {
		t.Errorf("querying axis 0 twice returned two different nodes")
	}
	axis2, err := g.ExternalTensorAxisLength(ext, 2)
	if err != nil {
		t.Fatal(err)
	}
	if axis2.(*graph.AxisLength).Axis() != 2 || axis2.(*graph.AxisLength).Tensor() != ext {
		t.Errorf("unexpected axis length node %v", axis2)
	}
	for _, axis := range []int{-1, 3} {
		if _, err := g.ExternalTensorAxisLength(ext, axis); err == nil {
			t.Errorf("expected an error for axis %d", axis)
		}
	}
	c, err := g.NewConstant(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.ExternalTensorRank(c); err == nil {
		t.Errorf("expected an error when querying the rank of a constant")
	}
	if _, err := g.NewExternalTensor("bad", dtype.Float32, -1); err == nil {
		t.Errorf("expected an error for a negative rank")
	}
}

func TestGlobalVar(t *testing.T) {
	reg := field.NewRegistry()
	x, err := reg.Declare("x", dtype.Float32, 4, 8)
	if err != nil {
		t.Fatal(err)
	}
	g, err := graph.New(config.Default(), reg)
	if err != nil {
		t.Fatal(err)
	}
	gv, err := g.NewGlobalVar(x)
	if err != nil {
		t.Fatal(err)
	}
	if !g.IsGlobalVar(gv) || g.IsExternalVar(gv) {
		t.Errorf("global variable not reported as global")
	}
	desc, err := g.FieldOf(gv)
	if err != nil {
		t.Fatal(err)
	}
	if desc != ir.FieldDescriptor(x) {
		t.Errorf("got field %v but want %v", desc, x)
	}
	other, err := field.NewRegistry().Declare("x", dtype.Float32, 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.NewGlobalVar(other); err == nil {
		t.Errorf("expected an error for a field declared in another registry")
	}
	c, err := g.NewConstant(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.FieldOf(c); err == nil {
		t.Errorf("expected an error when querying the field of a constant")
	}
}

func TestTaggedError(t *testing.T) {
	fset := token.NewFileSet()
	file := fset.AddFile("main.gx", -1, 100)
	g := newGraph(t, config.Default())
	c, err := g.NewConstant(1)
	if err != nil {
		t.Fatal(err)
	}
	tag := &ir.Tag{FSet: fset, Src: &ast.Ident{NamePos: file.Pos(4), Name: "c"}}
	if err := g.SetTag(c, tag); err != nil {
		t.Fatal(err)
	}
	if got := c.(*graph.Constant).Tag(); got != tag {
		t.Errorf("got tag %v but want %v", got, tag)
	}
	_, err = g.FieldOf(c)
	var posErr fmterr.ErrorWithPos
	if !errors.As(err, &posErr) {
		t.Fatalf("error %v has no position", err)
	}
	if !strings.HasPrefix(err.Error(), "main.gx:1:5:") {
		t.Errorf("error %q does not start with the position of the tag", err.Error())
	}
}

func TestString(t *testing.T) {
	fset := token.NewFileSet()
	file := fset.AddFile("main.gx", -1, 100)
	reg := field.NewRegistry()
	x, err := reg.Declare("x", dtype.Float32, 4, 8)
	if err != nil {
		t.Fatal(err)
	}
	g, err := graph.New(config.Default(), reg)
	if err != nil {
		t.Fatal(err)
	}
	must := func(ref ir.Ref, err error) ir.Ref {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return ref
	}
	must(g.NewIdentifier("i"))
	must(g.NewIdentifier(""))
	must(g.NewIdentifier(""))
	c := must(g.NewConstant(2))
	must(g.NewConstant(1.5))
	must(g.NewConstant(true))
	must(g.NewGlobalVar(x))
	ext := must(g.NewExternalTensor("img", dtype.Float32, 2))
	must(g.ExternalTensorAxisLength(ext, 1))
	if err := g.SetTag(c, &ir.Tag{FSet: fset, Src: &ast.Ident{NamePos: file.Pos(10), Name: "c"}}); err != nil {
		t.Fatal(err)
	}
	goldie.New(t).Assert(t, "dump", []byte(g.String()))
}
