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

package schema

import (
	"github.com/bufbuild/protoschema/ast"
)

// Extend is an extend block. Its fields are extension fields of the
// extended message.
type Extend struct {
	location      ast.Location
	documentation string
	name          string
	fields        []*Field

	// Set by the linker.
	typ ProtoType
}

func newExtends(packageName string, elements []*ast.ExtendElement) []*Extend {
	var extends []*Extend
	for _, element := range elements {
		extends = append(extends, &Extend{
			location:      element.Location,
			documentation: element.Documentation,
			name:          element.Name,
			fields:        newFields(packageName, element.Fields, true),
		})
	}
	return extends
}

func (e *Extend) Location() ast.Location { return e.location }
func (e *Extend) Documentation() string  { return e.documentation }
func (e *Extend) Fields() []*Field       { return e.fields }

// Name returns the extended message as written in the source.
func (e *Extend) Name() string { return e.name }

// Type returns the linked extended message.
func (e *Extend) Type() ProtoType { return e.typ }

// Member returns the member that identifies field on the extended message.
func (e *Extend) Member(field *Field) ProtoMember {
	return NewProtoMember(e.typ, field.QualifiedName())
}

func (e *Extend) retainAll(marks *MarkSet) *Extend {
	if !marks.ContainsType(e.typ) {
		return nil
	}
	fields := retainFields(e.typ, e.fields, marks)
	if len(fields) == 0 {
		return nil
	}
	result := *e
	result.fields = fields
	return &result
}

func (e *Extend) toElement() *ast.ExtendElement {
	return &ast.ExtendElement{
		Location:      e.location,
		Name:          e.name,
		Documentation: e.documentation,
		Fields:        fieldElements(e.fields),
	}
}
