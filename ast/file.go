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

// Syntax is the value of a file's syntax statement.
type Syntax string

const (
	Proto2 Syntax = "proto2"
	Proto3 Syntax = "proto3"
)

// ParseSyntax validates the quoted value of a syntax statement.
func ParseSyntax(s string) (Syntax, error) {
	switch Syntax(s) {
	case Proto2, Proto3:
		return Syntax(s), nil
	default:
		return "", fmt.Errorf("unexpected syntax: %s", s)
	}
}

// FileElement is the root of the element tree for one .proto file.
type FileElement struct {
	Location    Location
	PackageName string
	// Syntax is empty when the file has no syntax statement, which means
	// proto2.
	Syntax        Syntax
	Imports       []string
	PublicImports []string
	WeakImports   []string
	Types         []TypeElement
	Services      []*ServiceElement
	// Extends holds every extend block in the file, including those that
	// were declared inside a message.
	Extends []*ExtendElement
	Options []*OptionElement
}

// TypeElement is a message or enum declaration: either a *MessageElement or
// an *EnumElement.
type TypeElement interface {
	ToSchema() string
	typeElement()
}

// ToSchema returns proto source for the file.
func (f *FileElement) ToSchema() string {
	var sb strings.Builder
	// Sections are separated by blank lines; the first one has none.
	section := func() {
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
	}
	if f.Syntax != "" {
		section()
		fmt.Fprintf(&sb, "syntax = %q;\n", string(f.Syntax))
	}
	if f.PackageName != "" {
		section()
		fmt.Fprintf(&sb, "package %s;\n", f.PackageName)
	}
	if len(f.Imports)+len(f.PublicImports)+len(f.WeakImports) > 0 {
		section()
		for _, file := range f.Imports {
			fmt.Fprintf(&sb, "import %s;\n", quote(file))
		}
		for _, file := range f.PublicImports {
			fmt.Fprintf(&sb, "import public %s;\n", quote(file))
		}
		for _, file := range f.WeakImports {
			fmt.Fprintf(&sb, "import weak %s;\n", quote(file))
		}
	}
	if len(f.Options) > 0 {
		section()
		for _, opt := range f.Options {
			sb.WriteString(opt.ToSchemaDeclaration())
		}
	}
	for _, typ := range f.Types {
		section()
		sb.WriteString(typ.ToSchema())
	}
	for _, extend := range f.Extends {
		section()
		sb.WriteString(extend.ToSchema())
	}
	for _, svc := range f.Services {
		section()
		sb.WriteString(svc.ToSchema())
	}
	return sb.String()
}
