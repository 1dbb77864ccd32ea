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

// Label is the cardinality of a field.
type Label int

const (
	// LabelNone is used by proto3 fields without a label, map fields and
	// fields inside a oneof.
	LabelNone Label = iota
	LabelOptional
	LabelRequired
	LabelRepeated
	// LabelOneOf marks a field that belongs to a oneof. The parser never
	// produces it; the schema model assigns it.
	LabelOneOf
	// LabelPacked marks a repeated scalar field with packed encoding.
	LabelPacked
)

func (l Label) String() string {
	switch l {
	case LabelOptional:
		return "optional"
	case LabelRequired:
		return "required"
	case LabelRepeated, LabelPacked:
		return "repeated"
	case LabelOneOf:
		return "oneof"
	default:
		return ""
	}
}

// FieldElement is a field declared in a message, oneof, group or extend
// block.
type FieldElement struct {
	Location Location
	Label    Label
	// Type is the type as written, like "int32", "Foo.Bar" or
	// "map<string, Foo>".
	Type string
	Name string
	// DefaultValue is the value of the "default" pseudo-option, which the
	// parser removes from Options. HasDefault distinguishes an empty
	// default from none.
	DefaultValue string
	HasDefault   bool
	// JSONName is the value of the "json_name" pseudo-option, if present.
	JSONName      string
	Tag           int
	Documentation string
	Options       []*OptionElement
}

func (f *FieldElement) ToSchema() string {
	var sb strings.Builder
	appendDocumentation(&sb, f.Documentation)
	switch f.Label {
	case LabelOptional, LabelRequired, LabelRepeated, LabelPacked:
		sb.WriteString(f.Label.String())
		sb.WriteByte(' ')
	}
	fmt.Fprintf(&sb, "%s %s = %d", f.Type, f.Name, f.Tag)
	if options := f.optionsWithSpecialValues(); len(options) > 0 {
		sb.WriteByte(' ')
		appendOptions(&sb, options)
	}
	sb.WriteString(";\n")
	return sb.String()
}

// optionsWithSpecialValues puts the default and json_name pseudo-options back
// for printing.
func (f *FieldElement) optionsWithSpecialValues() []*OptionElement {
	if !f.HasDefault && f.JSONName == "" {
		return f.Options
	}
	options := make([]*OptionElement, 0, len(f.Options)+2)
	options = append(options, f.Options...)
	if f.HasDefault {
		options = append(options, NewOption("default", defaultKind(f.Type), f.DefaultValue))
	}
	if f.JSONName != "" {
		options = append(options, NewOption("json_name", OptionKindString, f.JSONName))
	}
	return options
}

func defaultKind(typeName string) OptionKind {
	switch typeName {
	case "string", "bytes":
		return OptionKindString
	case "bool":
		return OptionKindBool
	case "double", "float", "int32", "int64", "uint32", "uint64", "sint32",
		"sint64", "fixed32", "fixed64", "sfixed32", "sfixed64":
		return OptionKindNumber
	default:
		return OptionKindEnum
	}
}

// ExtendElement is an extend block.
type ExtendElement struct {
	Location      Location
	Name          string
	Documentation string
	Fields        []*FieldElement
}

func (e *ExtendElement) ToSchema() string {
	var sb strings.Builder
	appendDocumentation(&sb, e.Documentation)
	fmt.Fprintf(&sb, "extend %s {", e.Name)
	if len(e.Fields) > 0 {
		sb.WriteByte('\n')
		for _, field := range e.Fields {
			appendIndented(&sb, field.ToSchema())
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}
