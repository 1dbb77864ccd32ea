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

// Type is a declared type: a [*MessageType], an [*EnumType] or an
// [*EnclosingType]. The set is closed.
type Type interface {
	Type() ProtoType
	Location() ast.Location
	Documentation() string
	Options() *Options
	NestedTypes() []Type

	isType()
	retainAll(marks *MarkSet) Type
	toElement() ast.TypeElement
}

var (
	_ Type = (*MessageType)(nil)
	_ Type = (*EnumType)(nil)
	_ Type = (*EnclosingType)(nil)
)

// MessageType is a message declaration.
type MessageType struct {
	typ            ProtoType
	location       ast.Location
	name           string
	documentation  string
	declaredFields []*Field
	oneOfs         []*OneOf
	groups         []*ast.GroupElement
	nestedTypes    []Type
	extensions     []*Extensions
	reserveds      []*Reserved
	options        *Options

	// Extension fields from extend blocks that target this message, added
	// by the linker.
	extensionFields []*Field
	membersLinked   bool
}

func (*MessageType) isType() {}

func (m *MessageType) Type() ProtoType             { return m.typ }
func (m *MessageType) Location() ast.Location      { return m.location }
func (m *MessageType) Name() string                { return m.name }
func (m *MessageType) Documentation() string       { return m.documentation }
func (m *MessageType) Options() *Options           { return m.options }
func (m *MessageType) NestedTypes() []Type         { return m.nestedTypes }
func (m *MessageType) OneOfs() []*OneOf            { return m.oneOfs }
func (m *MessageType) Groups() []*ast.GroupElement { return m.groups }
func (m *MessageType) Extensions() []*Extensions   { return m.extensions }
func (m *MessageType) Reserveds() []*Reserved      { return m.reserveds }

// Fields returns the fields declared outside of oneofs.
func (m *MessageType) Fields() []*Field { return m.declaredFields }

// ExtensionFields returns the extension fields that extend this message.
func (m *MessageType) ExtensionFields() []*Field { return m.extensionFields }

// FieldsAndOneOfFields returns every declared field, oneof fields last.
func (m *MessageType) FieldsAndOneOfFields() []*Field {
	fields := append([]*Field(nil), m.declaredFields...)
	for _, oneOf := range m.oneOfs {
		fields = append(fields, oneOf.fields...)
	}
	return fields
}

// Field returns the declared field called name, including oneof fields.
func (m *MessageType) Field(name string) *Field {
	for _, f := range m.declaredFields {
		if f.name == name {
			return f
		}
	}
	for _, oneOf := range m.oneOfs {
		for _, f := range oneOf.fields {
			if f.name == name {
				return f
			}
		}
	}
	return nil
}

// FieldWithTag returns the declared field with the given tag.
func (m *MessageType) FieldWithTag(tag int) *Field {
	for _, f := range m.FieldsAndOneOfFields() {
		if f.tag == tag {
			return f
		}
	}
	return nil
}

// ExtensionField returns the extension field with the given qualified name.
func (m *MessageType) ExtensionField(qualifiedName string) *Field {
	for _, f := range m.extensionFields {
		if f.QualifiedName() == qualifiedName {
			return f
		}
	}
	return nil
}

// extensionFieldsMap indexes the extension fields by qualified name.
func (m *MessageType) extensionFieldsMap() map[string]*Field {
	result := make(map[string]*Field, len(m.extensionFields))
	for _, f := range m.extensionFields {
		result[f.QualifiedName()] = f
	}
	return result
}

func (m *MessageType) addExtensionField(field *Field) {
	for _, f := range m.extensionFields {
		if f == field {
			return
		}
	}
	m.extensionFields = append(m.extensionFields, field)
}

func (m *MessageType) retainAll(marks *MarkSet) Type {
	nested := retainTypes(m.nestedTypes, marks)
	if !marks.ContainsType(m.typ) {
		if len(nested) == 0 {
			return nil
		}
		return &EnclosingType{
			typ:           m.typ,
			location:      m.location,
			name:          m.name,
			documentation: m.documentation,
			nestedTypes:   nested,
		}
	}
	result := &MessageType{
		typ:            m.typ,
		location:       m.location,
		name:           m.name,
		documentation:  m.documentation,
		declaredFields: retainFields(m.typ, m.declaredFields, marks),
		nestedTypes:    nested,
		extensions:     m.extensions,
		reserveds:      m.reserveds,
		options:        m.options.retainAll(marks),
		groups:         m.groups,
		membersLinked:  m.membersLinked,
	}
	for _, oneOf := range m.oneOfs {
		if retained := oneOf.retainAll(m.typ, marks); retained != nil {
			result.oneOfs = append(result.oneOfs, retained)
		}
	}
	return result
}

func (m *MessageType) toElement() ast.TypeElement {
	element := &ast.MessageElement{
		Location:      m.location,
		Name:          m.name,
		Documentation: m.documentation,
		NestedTypes:   typeElements(m.nestedTypes),
		Options:       m.options.elements,
		Fields:        fieldElements(m.declaredFields),
		Groups:        m.groups,
	}
	for _, reserved := range m.reserveds {
		element.Reserveds = append(element.Reserveds, reserved.toElement())
	}
	for _, oneOf := range m.oneOfs {
		element.OneOfs = append(element.OneOfs, oneOf.toElement())
	}
	for _, extensions := range m.extensions {
		element.Extensions = append(element.Extensions, extensions.toElement())
	}
	return element
}

// EnumType is an enum declaration.
type EnumType struct {
	typ           ProtoType
	location      ast.Location
	name          string
	documentation string
	constants     []*EnumConstant
	reserveds     []*Reserved
	options       *Options
}

func (*EnumType) isType() {}

func (e *EnumType) Type() ProtoType            { return e.typ }
func (e *EnumType) Location() ast.Location     { return e.location }
func (e *EnumType) Name() string               { return e.name }
func (e *EnumType) Documentation() string      { return e.documentation }
func (e *EnumType) Options() *Options          { return e.options }
func (e *EnumType) NestedTypes() []Type        { return nil }
func (e *EnumType) Constants() []*EnumConstant { return e.constants }
func (e *EnumType) Reserveds() []*Reserved     { return e.reserveds }

// AllowAlias reports whether constants may share a value.
func (e *EnumType) AllowAlias() bool { return e.options.isTrue("allow_alias") }

// Constant returns the constant called name.
func (e *EnumType) Constant(name string) *EnumConstant {
	for _, c := range e.constants {
		if c.name == name {
			return c
		}
	}
	return nil
}

// ConstantForTag returns the first constant with the given value.
func (e *EnumType) ConstantForTag(tag int) *EnumConstant {
	for _, c := range e.constants {
		if c.tag == tag {
			return c
		}
	}
	return nil
}

func (e *EnumType) retainAll(marks *MarkSet) Type {
	if !marks.ContainsType(e.typ) {
		return nil
	}
	result := *e
	result.constants = nil
	for _, c := range e.constants {
		if marks.ContainsMember(NewProtoMember(e.typ, c.name)) {
			retained := *c
			retained.options = c.options.retainAll(marks)
			result.constants = append(result.constants, &retained)
		}
	}
	result.options = e.options.retainAll(marks)
	return &result
}

func (e *EnumType) toElement() ast.TypeElement {
	element := &ast.EnumElement{
		Location:      e.location,
		Name:          e.name,
		Documentation: e.documentation,
		Options:       e.options.elements,
	}
	for _, c := range e.constants {
		element.Constants = append(element.Constants, &ast.EnumConstantElement{
			Location:      c.location,
			Name:          c.name,
			Tag:           c.tag,
			Documentation: c.documentation,
			Options:       c.options.elements,
		})
	}
	for _, reserved := range e.reserveds {
		element.Reserveds = append(element.Reserveds, reserved.toElement())
	}
	return element
}

// EnumConstant is one value of an enum.
type EnumConstant struct {
	location      ast.Location
	name          string
	tag           int
	documentation string
	options       *Options
}

func (c *EnumConstant) Location() ast.Location { return c.location }
func (c *EnumConstant) Name() string           { return c.name }
func (c *EnumConstant) Tag() int               { return c.tag }
func (c *EnumConstant) Documentation() string  { return c.documentation }
func (c *EnumConstant) Options() *Options      { return c.options }
func (c *EnumConstant) IsDeprecated() bool     { return c.options.isTrue("deprecated") }

// EnclosingType stands in for a message that was pruned while some of its
// nested types were kept. It has no members.
type EnclosingType struct {
	typ           ProtoType
	location      ast.Location
	name          string
	documentation string
	nestedTypes   []Type
}

func (*EnclosingType) isType() {}

func (e *EnclosingType) Type() ProtoType        { return e.typ }
func (e *EnclosingType) Location() ast.Location { return e.location }
func (e *EnclosingType) Name() string           { return e.name }
func (e *EnclosingType) Documentation() string  { return e.documentation }
func (e *EnclosingType) NestedTypes() []Type    { return e.nestedTypes }

// Options returns empty options; an enclosing type declares none.
func (e *EnclosingType) Options() *Options { return newOptions(MessageOptions, nil) }

func (e *EnclosingType) retainAll(marks *MarkSet) Type {
	nested := retainTypes(e.nestedTypes, marks)
	if len(nested) == 0 {
		return nil
	}
	result := *e
	result.nestedTypes = nested
	return &result
}

func (e *EnclosingType) toElement() ast.TypeElement {
	return &ast.MessageElement{
		Location:      e.location,
		Name:          e.name,
		Documentation: e.documentation,
		NestedTypes:   typeElements(e.nestedTypes),
	}
}

func retainTypes(types []Type, marks *MarkSet) []Type {
	var result []Type
	for _, t := range types {
		if retained := t.retainAll(marks); retained != nil {
			result = append(result, retained)
		}
	}
	return result
}

func typeElements(types []Type) []ast.TypeElement {
	var elements []ast.TypeElement
	for _, t := range types {
		elements = append(elements, t.toElement())
	}
	return elements
}

// Reserved is a reserved declaration in a message or enum.
type Reserved struct {
	location      ast.Location
	documentation string
	values        []ast.ReservedValue
}

func (r *Reserved) Location() ast.Location      { return r.location }
func (r *Reserved) Documentation() string       { return r.documentation }
func (r *Reserved) Values() []ast.ReservedValue { return r.values }

// MatchesTag reports whether tag falls in one of the reserved ranges.
func (r *Reserved) MatchesTag(tag int) bool {
	for _, v := range r.values {
		if v.Range != nil && v.Range.Contains(tag) {
			return true
		}
	}
	return false
}

// MatchesName reports whether name is reserved.
func (r *Reserved) MatchesName(name string) bool {
	for _, v := range r.values {
		if v.Range == nil && v.Name == name {
			return true
		}
	}
	return false
}

func newReserveds(elements []*ast.ReservedElement) []*Reserved {
	var result []*Reserved
	for _, e := range elements {
		result = append(result, &Reserved{location: e.Location, documentation: e.Documentation, values: e.Values})
	}
	return result
}

func (r *Reserved) toElement() *ast.ReservedElement {
	return &ast.ReservedElement{Location: r.location, Documentation: r.documentation, Values: r.values}
}

// Extensions is an extensions declaration: tag ranges that extend blocks
// may use.
type Extensions struct {
	location      ast.Location
	documentation string
	ranges        []ast.TagRange
}

func (e *Extensions) Location() ast.Location { return e.location }
func (e *Extensions) Documentation() string  { return e.documentation }
func (e *Extensions) Ranges() []ast.TagRange { return e.ranges }

func (e *Extensions) toElement() *ast.ExtensionsElement {
	return &ast.ExtensionsElement{Location: e.location, Documentation: e.documentation, Values: e.ranges}
}
