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
	"fmt"
	"regexp"
	"strings"

	"github.com/bufbuild/protoschema/ast"
)

// The descriptor messages that options of each kind of declaration are
// fields of.
var (
	FileOptions      = ProtoTypeOf("google.protobuf.FileOptions")
	MessageOptions   = ProtoTypeOf("google.protobuf.MessageOptions")
	FieldOptions     = ProtoTypeOf("google.protobuf.FieldOptions")
	OneofOptions     = ProtoTypeOf("google.protobuf.OneofOptions")
	EnumOptions      = ProtoTypeOf("google.protobuf.EnumOptions")
	EnumValueOptions = ProtoTypeOf("google.protobuf.EnumValueOptions")
	ServiceOptions   = ProtoTypeOf("google.protobuf.ServiceOptions")
	MethodOptions    = ProtoTypeOf("google.protobuf.MethodOptions")
)

// Options are the options of one declaration. Before linking only the
// elements are known; linking resolves each element to the field it sets.
type Options struct {
	optionType ProtoType
	elements   []*ast.OptionElement
	entries    []OptionEntry
	linked     bool
}

// OptionEntry is a linked option: the field it sets and the value.
//
// Value is an [ast.OptionPrimitive], an [OptionValueMap] for message values,
// or a []any holding either for repeated fields.
type OptionEntry struct {
	Member ProtoMember
	Value  any
	// Extension is true when Member is an extension field.
	Extension bool

	element *ast.OptionElement
}

// OptionValueMap is the value of a message-typed option. Each entry's
// Member is a field of that message.
type OptionValueMap []OptionEntry

// Get returns the value set for member.
func (m OptionValueMap) Get(member ProtoMember) (any, bool) {
	for _, e := range m {
		if e.Member == member {
			return e.Value, true
		}
	}
	return nil, false
}

func newOptions(optionType ProtoType, elements []*ast.OptionElement) *Options {
	return &Options{optionType: optionType, elements: elements}
}

// OptionType returns the descriptor message the options are fields of, like
// google.protobuf.FieldOptions.
func (o *Options) OptionType() ProtoType {
	return o.optionType
}

// Elements returns the options as declared.
func (o *Options) Elements() []*ast.OptionElement {
	return o.elements
}

// Entries returns the linked options in declaration order. It is empty for
// options that were never linked.
func (o *Options) Entries() []OptionEntry {
	return o.entries
}

// Get returns the value of the option that sets member. Members of nested
// messages can be reached through the returned [OptionValueMap].
func (o *Options) Get(member ProtoMember) (any, bool) {
	for _, e := range o.entries {
		if e.Member == member {
			return e.Value, true
		}
	}
	return nil, false
}

// GetNamed returns the value of a simple option declared in descriptor.proto,
// like "deprecated" or "java_package", looking at the elements directly so
// it works on unlinked options too.
func (o *Options) GetNamed(name string) (string, bool) {
	if o == nil {
		return "", false
	}
	for _, e := range o.elements {
		if !e.Parenthesized && e.Name == name {
			if s, ok := e.Value.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

// OptionMatches returns the value of the first option whose name matches
// namePattern and whose value matches valuePattern. Both are regular
// expressions that must match the whole text.
func (o *Options) OptionMatches(namePattern, valuePattern string) (string, bool) {
	nameRE, err := regexp.Compile("^(?:" + namePattern + ")$")
	if err != nil {
		return "", false
	}
	valueRE, err := regexp.Compile("^(?:" + valuePattern + ")$")
	if err != nil {
		return "", false
	}
	for _, e := range o.entries {
		value := optionValueString(e.Value)
		if nameRE.MatchString(e.Member.Member) && valueRE.MatchString(value) {
			return value, true
		}
	}
	return "", false
}

func optionValueString(v any) string {
	switch v := v.(type) {
	case ast.OptionPrimitive:
		return v.Value
	case OptionValueMap:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = e.Member.Member + ": " + optionValueString(e.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = optionValueString(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

// isTrue reports whether a simple boolean option is set to true.
func (o *Options) isTrue(name string) bool {
	v, ok := o.GetNamed(name)
	return ok && v == "true"
}

// retainAll returns the options that survive pruning: options declared in
// descriptor.proto always stay, extension options stay when the extension
// field was marked.
func (o *Options) retainAll(marks *MarkSet) *Options {
	if !o.linked {
		return o
	}
	kept := make(map[*ast.OptionElement]bool, len(o.elements))
	result := &Options{optionType: o.optionType, linked: true}
	for _, e := range o.entries {
		if e.Extension && !marks.ContainsMember(e.Member) {
			continue
		}
		result.entries = append(result.entries, e)
		kept[e.element] = true
	}
	linked := make(map[*ast.OptionElement]bool, len(o.entries))
	for _, e := range o.entries {
		linked[e.element] = true
	}
	for _, element := range o.elements {
		// Unresolved options are only possible in imported files; keep
		// the ones that are not extensions.
		if kept[element] || (!linked[element] && !element.Parenthesized) {
			result.elements = append(result.elements, element)
		}
	}
	return result
}
