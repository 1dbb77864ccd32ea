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
	"strings"

	"github.com/bufbuild/protoschema/ast"
)

// Field is a message field or an extension field.
type Field struct {
	packageName   string
	location      ast.Location
	label         ast.Label
	name          string
	documentation string
	tag           int
	defaultValue  string
	hasDefault    bool
	jsonName      string
	elementType   string
	options       *Options
	extension     bool

	// Set by the linker.
	typ      ProtoType
	extendee ProtoType
}

func newField(packageName string, element *ast.FieldElement, extension bool) *Field {
	return &Field{
		packageName:   packageName,
		location:      element.Location,
		label:         element.Label,
		name:          element.Name,
		documentation: element.Documentation,
		tag:           element.Tag,
		defaultValue:  element.DefaultValue,
		hasDefault:    element.HasDefault,
		jsonName:      element.JSONName,
		elementType:   element.Type,
		options:       newOptions(FieldOptions, element.Options),
		extension:     extension,
	}
}

func newFields(packageName string, elements []*ast.FieldElement, extension bool) []*Field {
	fields := make([]*Field, len(elements))
	for i, element := range elements {
		fields[i] = newField(packageName, element, extension)
	}
	return fields
}

func (f *Field) Location() ast.Location { return f.location }
func (f *Field) Label() ast.Label       { return f.label }
func (f *Field) Name() string           { return f.name }
func (f *Field) Tag() int               { return f.tag }
func (f *Field) Documentation() string  { return f.documentation }
func (f *Field) Options() *Options      { return f.options }
func (f *Field) IsExtension() bool      { return f.extension }
func (f *Field) PackageName() string    { return f.packageName }

// ElementType returns the type as written in the source.
func (f *Field) ElementType() string { return f.elementType }

// Type returns the linked type. It is the zero ProtoType before linking.
func (f *Field) Type() ProtoType { return f.typ }

// Extendee returns the message an extension field extends.
func (f *Field) Extendee() ProtoType { return f.extendee }

// Default returns the declared default value.
func (f *Field) Default() (string, bool) {
	return f.defaultValue, f.hasDefault
}

// QualifiedName is the package-qualified name for extensions and the plain
// name for other fields.
func (f *Field) QualifiedName() string {
	if f.extension && f.packageName != "" {
		return f.packageName + "." + f.name
	}
	return f.name
}

// Member returns the member that identifies f within owner.
func (f *Field) Member(owner ProtoType) ProtoMember {
	return NewProtoMember(owner, f.QualifiedName())
}

// JSONName returns the declared json_name, or the name converted to
// lowerCamelCase the way protoc does.
func (f *Field) JSONName() string {
	if f.jsonName != "" {
		return f.jsonName
	}
	return jsonName(f.name)
}

// DeclaredJSONName returns the json_name option, or the empty string.
func (f *Field) DeclaredJSONName() string { return f.jsonName }

func jsonName(name string) string {
	var sb strings.Builder
	upperNext := false
	for _, c := range name {
		switch {
		case c == '_':
			upperNext = true
		case upperNext && c >= 'a' && c <= 'z':
			sb.WriteRune(c - 'a' + 'A')
			upperNext = false
		default:
			sb.WriteRune(c)
			upperNext = false
		}
	}
	return sb.String()
}

func (f *Field) IsRepeated() bool {
	return f.label == ast.LabelRepeated || f.label == ast.LabelPacked
}

func (f *Field) IsRequired() bool { return f.label == ast.LabelRequired }
func (f *Field) IsOptional() bool { return f.label == ast.LabelOptional }

// IsPacked reports whether a repeated field uses packed encoding, either
// from its label or from "packed = true".
func (f *Field) IsPacked() bool {
	return f.label == ast.LabelPacked || (f.IsRepeated() && f.options.isTrue("packed"))
}

func (f *Field) IsDeprecated() bool { return f.options.isTrue("deprecated") }

// retainAll returns a copy whose options were pruned, or nil when the field
// itself or its type was pruned.
func (f *Field) retainAll(owner ProtoType, marks *MarkSet) *Field {
	if !marks.ContainsMember(f.Member(owner)) || !marks.containsFieldType(f.typ) {
		return nil
	}
	result := *f
	result.options = f.options.retainAll(marks)
	return &result
}

func retainFields(owner ProtoType, fields []*Field, marks *MarkSet) []*Field {
	var result []*Field
	for _, f := range fields {
		if retained := f.retainAll(owner, marks); retained != nil {
			result = append(result, retained)
		}
	}
	return result
}

func (f *Field) toElement() *ast.FieldElement {
	label := f.label
	if label == ast.LabelOneOf {
		label = ast.LabelNone
	}
	return &ast.FieldElement{
		Location:      f.location,
		Label:         label,
		Type:          f.elementType,
		Name:          f.name,
		DefaultValue:  f.defaultValue,
		HasDefault:    f.hasDefault,
		JSONName:      f.jsonName,
		Tag:           f.tag,
		Documentation: f.documentation,
		Options:       f.options.elements,
	}
}

func fieldElements(fields []*Field) []*ast.FieldElement {
	elements := make([]*ast.FieldElement, len(fields))
	for i, f := range fields {
		elements[i] = f.toElement()
	}
	return elements
}

// OneOf is a set of fields of which at most one is set.
type OneOf struct {
	name          string
	documentation string
	location      ast.Location
	fields        []*Field
	groups        []*ast.GroupElement
	options       *Options
}

func (o *OneOf) Name() string           { return o.name }
func (o *OneOf) Documentation() string  { return o.documentation }
func (o *OneOf) Location() ast.Location { return o.location }
func (o *OneOf) Fields() []*Field       { return o.fields }
func (o *OneOf) Options() *Options      { return o.options }

func (o *OneOf) retainAll(owner ProtoType, marks *MarkSet) *OneOf {
	fields := retainFields(owner, o.fields, marks)
	if len(fields) == 0 {
		return nil
	}
	result := *o
	result.fields = fields
	result.options = o.options.retainAll(marks)
	return &result
}

func (o *OneOf) toElement() *ast.OneOfElement {
	return &ast.OneOfElement{
		Location:      o.location,
		Name:          o.name,
		Documentation: o.documentation,
		Fields:        fieldElements(o.fields),
		Groups:        o.groups,
		Options:       o.options.elements,
	}
}
