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

import "github.com/gx-org/tensorexpr/ir"

// Map stores values keyed by the identity of expressions.
// Expressions referencing the same node share the same entry.
// Keys are iterated in the order they have been first stored.
type Map[V any] struct {
	keys []Expr
	m    map[ir.NodeID]V
}

// NewMap returns a new empty map.
func NewMap[V any]() *Map[V] {
	return &Map[V]{m: make(map[ir.NodeID]V)}
}

// Store a value for the node of an expression.
func (m *Map[V]) Store(k Expr, v V) {
	id := k.Hash()
	if _, in := m.m[id]; !in {
		m.keys = append(m.keys, k)
	}
	m.m[id] = v
}

// Load the value stored for the node of an expression.
func (m *Map[V]) Load(k Expr) (V, bool) {
	v, ok := m.m[k.Hash()]
	return v, ok
}

// Iter iterates over the entries of the map.
func (m *Map[V]) Iter() func(func(Expr, V) bool) {
	return func(yield func(Expr, V) bool) {
		for _, k := range m.keys {
			if !yield(k, m.m[k.Hash()]) {
				break
			}
		}
	}
}

// Size returns the number of entries in the map.
func (m *Map[V]) Size() int {
	return len(m.keys)
}
