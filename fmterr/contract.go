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

package fmterr

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// ContractViolation is the value of the panic raised when
// the front end is called in a way its contract does not allow.
// It is never returned as an error: callers are not expected to recover from it.
type ContractViolation struct {
	err error
}

// Assertf panics with a ContractViolation if cond is false.
func Assertf(cond bool, format string, a ...any) {
	if cond {
		return
	}
	panic(ContractViolation{err: Internal(errors.Errorf(format, a...))})
}

// Error returns the description of the violation.
func (cv ContractViolation) Error() string {
	return cv.err.Error()
}

// Unwrap returns the internal error.
func (cv ContractViolation) Unwrap() error {
	return cv.err
}

// Format writes the violation, including the stack trace with %+v.
func (cv ContractViolation) Format(s fmt.State, verb rune) {
	format(cv, s, verb)
}

func formatVerbose(err error, s fmt.State) {
	fmt.Fprintf(s, "%s", err.Error())
	var withSt interface {
		StackTrace() errors.StackTrace
	}
	if !errors.As(err, &withSt) {
		return
	}
	fmt.Fprintf(s, "\nError generated at:%+v\n", withSt.StackTrace())
}

func format(err error, s fmt.State, verb rune) {
	switch verb {
	case 'w':
		fallthrough
	case 'v':
		if s.Flag('+') {
			formatVerbose(err, s)
			return
		}
		fallthrough
	case 's':
		io.WriteString(s, err.Error())
	case 'q':
		fmt.Fprintf(s, "%q", err.Error())
	}
}
