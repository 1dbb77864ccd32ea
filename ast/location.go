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

package ast

import (
	"strconv"
	"strings"
)

// Location identifies a place in a proto source file. Line and Column are
// 1-based; a zero value means the position within the file is unknown.
type Location struct {
	// Base is the directory or archive that Path is relative to. It may be
	// empty.
	Base string
	// Path is the import path of the file, like "google/protobuf/any.proto".
	Path   string
	Line   int
	Column int
}

// NewLocation returns the location of a whole file.
func NewLocation(base, path string) Location {
	return Location{Base: base, Path: path}
}

// At returns a copy of l pointing at the given line and column.
func (l Location) At(line, column int) Location {
	l.Line, l.Column = line, column
	return l
}

// WithPathOnly strips the base, line and column. Output that embeds locations
// uses this so it does not depend on where the sources were checked out.
func (l Location) WithPathOnly() Location {
	return Location{Path: l.Path}
}

func (l Location) String() string {
	var sb strings.Builder
	if l.Base != "" {
		sb.WriteString(l.Base)
		sb.WriteByte('/')
	}
	sb.WriteString(l.Path)
	if l.Line > 0 {
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(l.Line))
		if l.Column > 0 {
			sb.WriteByte(':')
			sb.WriteString(strconv.Itoa(l.Column))
		}
	}
	return sb.String()
}
