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

// Package fmterr formats errors reported while building expression nodes.
//
// Two kinds of failures are reported by the package:
// recoverable errors returned to the caller (such as ErrInvalidOperand)
// and contract violations, raised with a panic, when the front end itself
// is misused.
package fmterr

import (
	"fmt"
	"go/ast"
	"go/token"
	"runtime/debug"

	"github.com/pkg/errors"
)

// ErrInvalidOperand is returned when a value cannot be an operand of a scalar expression.
var ErrInvalidOperand = errors.New("invalid operand")

// InvalidOperandf returns an error wrapping ErrInvalidOperand.
func InvalidOperandf(format string, a ...any) error {
	return errors.Wrapf(ErrInvalidOperand, format, a...)
}

// Internal marks an error as internal, potentially adding additional information.
func Internal(err error) error {
	return internalError{err: err}
}

// Internalf returns a formatted internal error.
func Internalf(format string, a ...any) error {
	return Internal(errors.Errorf(format, a...))
}

// IsInternal returns true if the error, or one of the error it wraps, is internal.
func IsInternal(err error) bool {
	var target internalError
	return errors.As(err, &target)
}

type internalError struct {
	err error
}

func (err internalError) Error() string {
	return "tensorexpr internal error. This is a bug in tensorexpr. Please report it. Error:\n" + err.err.Error()
}

func (err internalError) Unwrap() error {
	return err.err
}

func (err internalError) Format(s fmt.State, verb rune) {
	format(err, s, verb)
}

type (
	// ErrorWithPos is an error attached to a position in the source code.
	ErrorWithPos interface {
		error
		FSet() *token.FileSet
		Src() ast.Node
		Err() error
	}

	errorWithPos struct {
		fset *token.FileSet
		src  ast.Node
		pos  token.Pos
		err  error
	}
)

// Position adds position information to an error.
func Position(fset *token.FileSet, src ast.Node, err error) ErrorWithPos {
	return errorWithPos{
		fset: fset,
		src:  src,
		pos:  src.Pos(), // Cache the position to make sure src is valid.
		err:  err,
	}
}

// Errorf returns a formatted error at a position.
func Errorf(fset *token.FileSet, src ast.Node, format string, a ...any) error {
	return Position(fset, src, errors.Errorf(format, a...))
}

// Error returns a string description of the error.
func (err errorWithPos) Error() (s string) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		s = fmt.Sprintf("recovered from panic when building error message: %T:\n%v", err.err, string(debug.Stack()))
	}()
	if err.fset == nil {
		return err.err.Error()
	}
	return PosString(err.fset, err.pos) + " " + err.err.Error()
}

// Unwrap the error.
func (err errorWithPos) Unwrap() error {
	return err.err
}

// Format writes the error into the state of the formatter.
func (err errorWithPos) Format(s fmt.State, verb rune) {
	format(err, s, verb)
}

// FSet returns the file set in which the position of the error is defined.
func (err errorWithPos) FSet() *token.FileSet {
	return err.fset
}

// Src returns the source node at which the error occurred.
func (err errorWithPos) Src() ast.Node {
	return err.src
}

// Err returns the error without its position.
func (err errorWithPos) Err() error {
	return err.err
}

// PosString returns a position as a string that can be used for an error.
func PosString(fset *token.FileSet, pos token.Pos) string {
	return fset.Position(pos).String() + ":"
}
