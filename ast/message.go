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
	"fmt"
	"strings"
)

// MessageElement is a message declaration.
type MessageElement struct {
	Location      Location
	Name          string
	Documentation string
	NestedTypes   []TypeElement
	Options       []*OptionElement
	Reserveds     []*ReservedElement
	Fields        []*FieldElement
	OneOfs        []*OneOfElement
	Extensions    []*ExtensionsElement
	Groups        []*GroupElement
}

func (*MessageElement) typeElement() {}

// ToSchema returns proto source for the message and its nested types.
func (m *MessageElement) ToSchema() string {
	var sb strings.Builder
	appendDocumentation(&sb, m.Documentation)
	fmt.Fprintf(&sb, "message %s {", m.Name)
	if len(m.Reserveds) > 0 {
		sb.WriteByte('\n')
		for _, reserved := range m.Reserveds {
			appendIndented(&sb, reserved.ToSchema())
		}
	}
	if len(m.Options) > 0 {
		sb.WriteByte('\n')
		for _, opt := range m.Options {
			appendIndented(&sb, opt.ToSchemaDeclaration())
		}
	}
	if len(m.Fields) > 0 {
		sb.WriteByte('\n')
		for _, field := range m.Fields {
			appendIndented(&sb, field.ToSchema())
		}
	}
	if len(m.OneOfs) > 0 {
		sb.WriteByte('\n')
		for _, oneOf := range m.OneOfs {
			appendIndented(&sb, oneOf.ToSchema())
		}
	}
	if len(m.Groups) > 0 {
		sb.WriteByte('\n')
		for _, group := range m.Groups {
			appendIndented(&sb, group.ToSchema())
		}
	}
	if len(m.Extensions) > 0 {
		sb.WriteByte('\n')
		for _, extensions := range m.Extensions {
			appendIndented(&sb, extensions.ToSchema())
		}
	}
	if len(m.NestedTypes) > 0 {
		sb.WriteByte('\n')
		for _, nested := range m.NestedTypes {
			appendIndented(&sb, nested.ToSchema())
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

// OneOfElement is a oneof block inside a message.
type OneOfElement struct {
	Location      Location
	Name          string
	Documentation string
	Fields        []*FieldElement
	Groups        []*GroupElement
	Options       []*OptionElement
}

func (o *OneOfElement) ToSchema() string {
	var sb strings.Builder
	appendDocumentation(&sb, o.Documentation)
	fmt.Fprintf(&sb, "oneof %s {", o.Name)
	if len(o.Options) > 0 {
		sb.WriteByte('\n')
		for _, opt := range o.Options {
			appendIndented(&sb, opt.ToSchemaDeclaration())
		}
	}
	if len(o.Fields) > 0 {
		sb.WriteByte('\n')
		for _, field := range o.Fields {
			appendIndented(&sb, field.ToSchema())
		}
	}
	if len(o.Groups) > 0 {
		sb.WriteByte('\n')
		for _, group := range o.Groups {
			appendIndented(&sb, group.ToSchema())
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

// GroupElement is a legacy proto2 group: a field and a message type
// declared together.
type GroupElement struct {
	Location      Location
	Label         Label
	Name          string
	Tag           int
	Documentation string
	Fields        []*FieldElement
}

func (g *GroupElement) ToSchema() string {
	var sb strings.Builder
	appendDocumentation(&sb, g.Documentation)
	if g.Label != LabelNone {
		sb.WriteString(g.Label.String())
		sb.WriteByte(' ')
	}
	fmt.Fprintf(&sb, "group %s = %d {", g.Name, g.Tag)
	if len(g.Fields) > 0 {
		sb.WriteByte('\n')
		for _, field := range g.Fields {
			appendIndented(&sb, field.ToSchema())
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

// TagRange is an inclusive range of tags. A single tag has Start == End.
type TagRange struct {
	Start, End int
}

// Contains reports whether tag is in the range.
func (r TagRange) Contains(tag int) bool {
	return tag >= r.Start && tag <= r.End
}

// ReservedValue is one item of a reserved statement: a field name, or a
// tag range when Range is non-nil.
type ReservedValue struct {
	Name  string
	Range *TagRange
}

// ReservedElement is a reserved statement in a message or enum.
type ReservedElement struct {
	Location      Location
	Documentation string
	Values        []ReservedValue
}

func (r *ReservedElement) ToSchema() string {
	var sb strings.Builder
	appendDocumentation(&sb, r.Documentation)
	sb.WriteString("reserved ")
	for i, value := range r.Values {
		if i > 0 {
			sb.WriteString(", ")
		}
		if value.Range != nil {
			sb.WriteString(formatRange(*value.Range))
		} else {
			sb.WriteString(quote(value.Name))
		}
	}
	sb.WriteString(";\n")
	return sb.String()
}

// ExtensionsElement is an extensions statement declaring the tags that
// extend blocks may use.
type ExtensionsElement struct {
	Location      Location
	Documentation string
	Values        []TagRange
}

func (e *ExtensionsElement) ToSchema() string {
	var sb strings.Builder
	appendDocumentation(&sb, e.Documentation)
	sb.WriteString("extensions ")
	for i, value := range e.Values {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(formatRange(value))
	}
	sb.WriteString(";\n")
	return sb.String()
}
