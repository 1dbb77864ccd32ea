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

// EnumElement is an enum declaration.
type EnumElement struct {
	Location      Location
	Name          string
	Documentation string
	Options       []*OptionElement
	Constants     []*EnumConstantElement
	Reserveds     []*ReservedElement
}

func (*EnumElement) typeElement() {}

func (e *EnumElement) ToSchema() string {
	var sb strings.Builder
	appendDocumentation(&sb, e.Documentation)
	fmt.Fprintf(&sb, "enum %s {", e.Name)
	if len(e.Reserveds)+len(e.Options)+len(e.Constants) > 0 {
		sb.WriteByte('\n')
	}
	for _, reserved := range e.Reserveds {
		appendIndented(&sb, reserved.ToSchema())
	}
	for _, opt := range e.Options {
		appendIndented(&sb, opt.ToSchemaDeclaration())
	}
	for _, constant := range e.Constants {
		appendIndented(&sb, constant.ToSchema())
	}
	sb.WriteString("}\n")
	return sb.String()
}

// EnumConstantElement is one value of an enum.
type EnumConstantElement struct {
	Location      Location
	Name          string
	Tag           int
	Documentation string
	Options       []*OptionElement
}

func (c *EnumConstantElement) ToSchema() string {
	var sb strings.Builder
	appendDocumentation(&sb, c.Documentation)
	fmt.Fprintf(&sb, "%s = %d", c.Name, c.Tag)
	if len(c.Options) > 0 {
		sb.WriteByte(' ')
		appendOptions(&sb, c.Options)
	}
	sb.WriteString(";\n")
	return sb.String()
}
