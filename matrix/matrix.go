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

// Package matrix implements compound values grouping scalar entries
// in rows and columns.
package matrix

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Compound is a vector or matrix-like value.
type Compound interface {
	// Rows returns the number of rows.
	Rows() int

	// Cols returns the number of columns.
	Cols() int

	// Entries returns the entries in row-major order.
	Entries() []any
}

// Matrix of entries, stored in row-major order.
// A vector is a matrix with a single column.
// A nil matrix has no rows and no columns.
type Matrix struct {
	n, m    int
	entries []any
}

var _ Compound = (*Matrix)(nil)

// New returns a matrix with n rows and m columns.
func New(n, m int, entries []any) (*Matrix, error) {
	if n < 0 || m < 0 {
		return nil, errors.Errorf("invalid matrix dimensions %dx%d", n, m)
	}
	if len(entries) != n*m {
		return nil, errors.Errorf("a %dx%d matrix requires %d entries but got %d", n, m, n*m, len(entries))
	}
	return &Matrix{n: n, m: m, entries: entries}, nil
}

// Vector returns a column vector.
func Vector(entries ...any) *Matrix {
	return &Matrix{n: len(entries), m: 1, entries: entries}
}

// IsCompound returns true if a value is a vector or a matrix.
func IsCompound(v any) bool {
	_, ok := v.(Compound)
	return ok
}

// Rows returns the number of rows.
func (mat *Matrix) Rows() int {
	if mat == nil {
		return 0
	}
	return mat.n
}

// Cols returns the number of columns.
func (mat *Matrix) Cols() int {
	if mat == nil {
		return 0
	}
	return mat.m
}

// Entries returns the entries of the matrix in row-major order.
func (mat *Matrix) Entries() []any {
	if mat == nil {
		return nil
	}
	return mat.entries
}

// At returns the entry at row i, column j.
func (mat *Matrix) At(i, j int) any {
	return mat.entries[i*mat.m+j]
}

func (mat *Matrix) String() string {
	rows := make([]string, mat.n)
	for i := range mat.n {
		cols := make([]string, mat.m)
		for j := range mat.m {
			cols[j] = fmt.Sprint(mat.At(i, j))
		}
		rows[i] = "[" + strings.Join(cols, ", ") + "]"
	}
	return "[" + strings.Join(rows, ", ") + "]"
}
