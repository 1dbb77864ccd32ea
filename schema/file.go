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

// ProtoFile is one .proto file of a schema.
type ProtoFile struct {
	location      ast.Location
	packageName   string
	syntax        ast.Syntax
	imports       []string
	publicImports []string
	weakImports   []string
	types         []Type
	services      []*Service
	extends       []*Extend
	options       *Options
}

// NewProtoFile converts a parsed file into the schema model. The result is
// unlinked: field and rpc types, extendees and options are resolved when the
// file is passed to a [Linker].
func NewProtoFile(element *ast.FileElement) *ProtoFile {
	file := &ProtoFile{
		location:      element.Location,
		packageName:   element.PackageName,
		syntax:        element.Syntax,
		imports:       element.Imports,
		publicImports: element.PublicImports,
		weakImports:   element.WeakImports,
		extends:       newExtends(element.PackageName, element.Extends),
		options:       newOptions(FileOptions, element.Options),
	}
	if file.syntax == "" {
		file.syntax = ast.Proto2
	}
	parent := ProtoType{element.PackageName}
	for _, t := range element.Types {
		file.types = append(file.types, newType(element.PackageName, parent, t))
	}
	for _, s := range element.Services {
		file.services = append(file.services, newService(element.PackageName, s))
	}
	return file
}

func newType(packageName string, parent ProtoType, element ast.TypeElement) Type {
	switch element := element.(type) {
	case *ast.MessageElement:
		return newMessageType(packageName, parent.NestedType(element.Name), element)
	case *ast.EnumElement:
		return newEnumType(parent.NestedType(element.Name), element)
	default:
		panic("protoschema/schema: unexpected type element")
	}
}

func newMessageType(packageName string, typ ProtoType, element *ast.MessageElement) *MessageType {
	m := &MessageType{
		typ:            typ,
		location:       element.Location,
		name:           element.Name,
		documentation:  element.Documentation,
		declaredFields: newFields(packageName, element.Fields, false),
		groups:         element.Groups,
		reserveds:      newReserveds(element.Reserveds),
		options:        newOptions(MessageOptions, element.Options),
	}
	for _, nested := range element.NestedTypes {
		m.nestedTypes = append(m.nestedTypes, newType(packageName, typ, nested))
	}
	for _, oneOf := range element.OneOfs {
		fields := newFields(packageName, oneOf.Fields, false)
		for _, f := range fields {
			f.label = ast.LabelOneOf
		}
		m.oneOfs = append(m.oneOfs, &OneOf{
			name:          oneOf.Name,
			documentation: oneOf.Documentation,
			location:      oneOf.Location,
			fields:        fields,
			groups:        oneOf.Groups,
			options:       newOptions(OneofOptions, oneOf.Options),
		})
	}
	for _, extensions := range element.Extensions {
		m.extensions = append(m.extensions, &Extensions{
			location:      extensions.Location,
			documentation: extensions.Documentation,
			ranges:        extensions.Values,
		})
	}
	return m
}

func newEnumType(typ ProtoType, element *ast.EnumElement) *EnumType {
	e := &EnumType{
		typ:           typ,
		location:      element.Location,
		name:          element.Name,
		documentation: element.Documentation,
		reserveds:     newReserveds(element.Reserveds),
		options:       newOptions(EnumOptions, element.Options),
	}
	for _, c := range element.Constants {
		e.constants = append(e.constants, &EnumConstant{
			location:      c.Location,
			name:          c.Name,
			tag:           c.Tag,
			documentation: c.Documentation,
			options:       newOptions(EnumValueOptions, c.Options),
		})
	}
	return e
}

// Location returns the location of the file, which carries its base
// directory and path.
func (f *ProtoFile) Location() ast.Location { return f.location }

// Path returns the import path of the file, like "squareup/dinosaurs/dinosaur.proto".
func (f *ProtoFile) Path() string { return f.location.Path }

func (f *ProtoFile) PackageName() string     { return f.packageName }
func (f *ProtoFile) Syntax() ast.Syntax      { return f.syntax }
func (f *ProtoFile) Imports() []string       { return f.imports }
func (f *ProtoFile) PublicImports() []string { return f.publicImports }
func (f *ProtoFile) WeakImports() []string   { return f.weakImports }
func (f *ProtoFile) Types() []Type           { return f.types }
func (f *ProtoFile) Services() []*Service    { return f.services }
func (f *ProtoFile) Extends() []*Extend      { return f.extends }
func (f *ProtoFile) Options() *Options       { return f.options }

// AllImports returns the regular, public and weak imports in that order.
func (f *ProtoFile) AllImports() []string {
	all := make([]string, 0, len(f.imports)+len(f.publicImports)+len(f.weakImports))
	all = append(all, f.imports...)
	all = append(all, f.publicImports...)
	return append(all, f.weakImports...)
}

// JavaPackage returns the java_package option, or the empty string.
func (f *ProtoFile) JavaPackage() string {
	v, _ := f.options.GetNamed("java_package")
	return v
}

// GoPackage returns the go_package option, or the empty string.
func (f *ProtoFile) GoPackage() string {
	v, _ := f.options.GetNamed("go_package")
	return v
}

// Walk calls fn for every type in the file, parents before their nested
// types. Walking stops early when fn returns false.
func (f *ProtoFile) Walk(fn func(Type) bool) {
	walkTypes(f.types, fn)
}

func walkTypes(types []Type, fn func(Type) bool) bool {
	for _, t := range types {
		if !fn(t) || !walkTypes(t.NestedTypes(), fn) {
			return false
		}
	}
	return true
}

// ToElement converts the file back into an element tree, which can be
// printed with [ast.FileElement.ToSchema].
func (f *ProtoFile) ToElement() *ast.FileElement {
	element := &ast.FileElement{
		Location:      f.location,
		PackageName:   f.packageName,
		Syntax:        f.syntax,
		Imports:       f.imports,
		PublicImports: f.publicImports,
		WeakImports:   f.weakImports,
		Types:         typeElements(f.types),
		Options:       f.options.elements,
	}
	for _, s := range f.services {
		element.Services = append(element.Services, s.toElement())
	}
	for _, e := range f.extends {
		element.Extends = append(element.Extends, e.toElement())
	}
	return element
}

// ToSchema prints the file as .proto source.
func (f *ProtoFile) ToSchema() string {
	return f.ToElement().ToSchema()
}

// retainAll returns the parts of f that survive pruning, or nil when nothing
// does. Imports are filtered by the caller, which knows the retained files.
func (f *ProtoFile) retainAll(marks *MarkSet) *ProtoFile {
	result := *f
	result.types = retainTypes(f.types, marks)
	result.services = nil
	for _, s := range f.services {
		if retained := s.retainAll(marks); retained != nil {
			result.services = append(result.services, retained)
		}
	}
	result.extends = nil
	for _, e := range f.extends {
		if retained := e.retainAll(marks); retained != nil {
			result.extends = append(result.extends, retained)
		}
	}
	if len(result.types) == 0 && len(result.services) == 0 && len(result.extends) == 0 {
		return nil
	}
	result.options = f.options.retainAll(marks)
	return &result
}

// retainImports drops imports of files that are not in paths.
func (f *ProtoFile) retainImports(paths map[string]bool) {
	filter := func(imports []string) []string {
		var result []string
		for _, i := range imports {
			if paths[i] {
				result = append(result, i)
			}
		}
		return result
	}
	f.imports = filter(f.imports)
	f.publicImports = filter(f.publicImports)
	f.weakImports = filter(f.weakImports)
}
