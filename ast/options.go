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

// OptionKind describes the shape of an option's value.
type OptionKind int

const (
	OptionKindString OptionKind = iota + 1
	OptionKindBool
	OptionKindNumber
	OptionKindEnum
	OptionKindMap
	OptionKindList
	// OptionKindOption is used for "(ext).field = value", where the value is
	// itself an *OptionElement naming the field.
	OptionKindOption
)

func (k OptionKind) String() string {
	switch k {
	case OptionKindString:
		return "string"
	case OptionKindBool:
		return "bool"
	case OptionKindNumber:
		return "number"
	case OptionKindEnum:
		return "enum"
	case OptionKindMap:
		return "map"
	case OptionKindList:
		return "list"
	case OptionKindOption:
		return "option"
	default:
		return fmt.Sprintf("OptionKind(%d)", int(k))
	}
}

// OptionElement is one option, declared either with an "option" statement or
// inside the brackets that follow a field or enum constant.
//
// The type of Value depends on Kind:
//   - string for the string, bool, number and enum kinds
//   - OptionMap for OptionKindMap
//   - []any for OptionKindList, holding OptionPrimitive, OptionMap and []any
//   - *OptionElement for OptionKindOption
type OptionElement struct {
	Name  string
	Kind  OptionKind
	Value any
	// Parenthesized is true when the name was written as "(name)", which
	// marks an extension.
	Parenthesized bool
	// Location is where the option's name starts. It is zero for options
	// that were not parsed.
	Location Location
}

// OptionPrimitive is a scalar value nested inside a list or a message
// literal. It keeps the kind so that strings print with quotes.
type OptionPrimitive struct {
	Kind  OptionKind
	Value string
}

// OptionMap is a message literal, like {a: 1, b: "x"}. Entries keep their
// declaration order. Extension keys keep their brackets ("[pkg.ext]").
type OptionMap []OptionMapEntry

// OptionMapEntry is one key of an OptionMap.
type OptionMapEntry struct {
	Key   string
	Value any
}

// Get returns the value for key.
func (m OptionMap) Get(key string) (any, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// NewOption returns an option with a scalar or composite value.
func NewOption(name string, kind OptionKind, value any) *OptionElement {
	return &OptionElement{Name: name, Kind: kind, Value: value}
}

// ToSchema returns the option as it appears inside brackets, without the
// "option" keyword or trailing semicolon.
func (o *OptionElement) ToSchema() string {
	var sb strings.Builder
	name := o.Name
	if o.Parenthesized {
		name = "(" + name + ")"
	}
	switch o.Kind {
	case OptionKindString:
		fmt.Fprintf(&sb, "%s = %s", name, quote(fmt.Sprint(o.Value)))
	case OptionKindBool, OptionKindNumber, OptionKindEnum:
		fmt.Fprintf(&sb, "%s = %v", name, o.Value)
	case OptionKindOption:
		nested, _ := o.Value.(*OptionElement)
		if nested == nil {
			nested = &OptionElement{}
		}
		fmt.Fprintf(&sb, "%s.%s", name, nested.ToSchema())
	case OptionKindMap, OptionKindList:
		fmt.Fprintf(&sb, "%s = %s", name, formatOptionValue(o.Value))
	}
	return sb.String()
}

// ToSchemaDeclaration returns the option as a statement.
func (o *OptionElement) ToSchemaDeclaration() string {
	return "option " + o.ToSchema() + ";\n"
}

func formatOptionValue(v any) string {
	switch v := v.(type) {
	case OptionPrimitive:
		if v.Kind == OptionKindString {
			return quote(v.Value)
		}
		return v.Value
	case string:
		return quote(v)
	case OptionMap:
		var sb strings.Builder
		sb.WriteString("{\n")
		for i, e := range v {
			line := e.Key + ": " + formatOptionValue(e.Value)
			if i < len(v)-1 {
				line += ","
			}
			appendIndented(&sb, line)
		}
		sb.WriteString("}")
		return sb.String()
	case []any:
		var sb strings.Builder
		sb.WriteString("[\n")
		for i, e := range v {
			line := formatOptionValue(e)
			if i < len(v)-1 {
				line += ","
			}
			appendIndented(&sb, line)
		}
		sb.WriteString("]")
		return sb.String()
	default:
		return fmt.Sprint(v)
	}
}
