// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reporter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bufbuild/protoschema/ast"
)

// ErrInvalidSource is a sentinel error matched by every aggregate of syntax
// or link errors, so callers can test for invalid input with errors.Is.
var ErrInvalidSource = errors.New("parse failed: invalid proto source")

// ErrorWithPos is an error about a proto source file that includes information
// about the location in the file that caused the error.
//
// The value of Error() will contain both the Location and Underlying error.
// The value of Unwrap() will only be the Underlying error.
type ErrorWithPos interface {
	error
	GetPosition() ast.Location
	Unwrap() error
}

func Error(pos ast.Location, err error) ErrorWithPos {
	return errorWithLocation{pos: pos, underlying: err}
}

func Errorf(pos ast.Location, format string, args ...interface{}) ErrorWithPos {
	return errorWithLocation{pos: pos, underlying: fmt.Errorf(format, args...)}
}

// errorWithLocation is an error about a proto source file that includes
// information about the location in the file that caused the error.
//
// Calling code that is trying to examine errors with location info should
// look for instances of the ErrorWithPos interface instead of this type.
type errorWithLocation struct {
	underlying error
	pos        ast.Location
}

func (e errorWithLocation) Error() string {
	return fmt.Sprintf("%s: %v", e.pos, e.underlying)
}

// GetPosition implements the ErrorWithPos interface, supplying a location in
// proto source that caused the error.
func (e errorWithLocation) GetPosition() ast.Location {
	return e.pos
}

// Unwrap implements the ErrorWithPos interface, supplying the underlying
// error. This error will not include location information.
func (e errorWithLocation) Unwrap() error {
	return e.underlying
}

var _ ErrorWithPos = errorWithLocation{}

// Errors is the aggregate of every error reported during one operation.
type Errors []ErrorWithPos

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// Is reports whether target is ErrInvalidSource.
func (e Errors) Is(target error) bool {
	return target == ErrInvalidSource
}

// Unwrap lets errors.Is and errors.As look at each entry.
func (e Errors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, err := range e {
		errs[i] = err
	}
	return errs
}
