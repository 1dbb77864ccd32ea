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

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protoschema/ast"
	"github.com/bufbuild/protoschema/internal"
)

// FileDescriptorSet exports the schema as descriptors, each file after the
// files it imports.
func (s *Schema) FileDescriptorSet() *descriptorpb.FileDescriptorSet {
	set := &descriptorpb.FileDescriptorSet{}
	added := map[string]bool{}
	var add func(file *ProtoFile)
	add = func(file *ProtoFile) {
		if added[file.Path()] {
			return
		}
		added[file.Path()] = true
		for _, path := range file.AllImports() {
			if imported := s.fileByPath[path]; imported != nil {
				add(imported)
			}
		}
		set.File = append(set.File, s.FileDescriptorProto(file))
	}
	for _, file := range s.files {
		add(file)
	}
	return set
}

// FileDescriptorProto exports file, which must belong to s. Map fields get
// a synthesized entry message. Groups, source info and options other than
// the common ones from descriptor.proto are not exported.
func (s *Schema) FileDescriptorProto(file *ProtoFile) *descriptorpb.FileDescriptorProto {
	fd := &descriptorpb.FileDescriptorProto{
		Name: proto.String(file.Path()),
	}
	if file.packageName != "" {
		fd.Package = proto.String(file.packageName)
	}
	if file.syntax == ast.Proto3 {
		fd.Syntax = proto.String(string(ast.Proto3))
	}
	for i, path := range file.AllImports() {
		fd.Dependency = append(fd.Dependency, path)
		switch {
		case i >= len(file.imports)+len(file.publicImports):
			fd.WeakDependency = append(fd.WeakDependency, int32(i))
		case i >= len(file.imports):
			fd.PublicDependency = append(fd.PublicDependency, int32(i))
		}
	}
	for _, t := range file.types {
		switch t := t.(type) {
		case *EnumType:
			fd.EnumType = append(fd.EnumType, s.enumDescriptor(t))
		default:
			fd.MessageType = append(fd.MessageType, s.messageDescriptor(t))
		}
	}
	for _, service := range file.services {
		fd.Service = append(fd.Service, s.serviceDescriptor(service))
	}
	for _, extend := range file.extends {
		for _, field := range extend.fields {
			fd.Extension = append(fd.Extension, s.fieldDescriptor(field, extend.typ, nil, ProtoType{}))
		}
	}
	if file.options.elements != nil {
		opts := &descriptorpb.FileOptions{}
		if v, ok := file.options.GetNamed("java_package"); ok {
			opts.JavaPackage = proto.String(v)
		}
		if v, ok := file.options.GetNamed("go_package"); ok {
			opts.GoPackage = proto.String(v)
		}
		if file.options.isTrue("java_multiple_files") {
			opts.JavaMultipleFiles = proto.Bool(true)
		}
		if file.options.isTrue("deprecated") {
			opts.Deprecated = proto.Bool(true)
		}
		fd.Options = opts
	}
	return fd
}

func (s *Schema) messageDescriptor(t Type) *descriptorpb.DescriptorProto {
	md := &descriptorpb.DescriptorProto{
		Name: proto.String(t.Type().SimpleName()),
	}
	for _, nested := range t.NestedTypes() {
		switch nested := nested.(type) {
		case *EnumType:
			md.EnumType = append(md.EnumType, s.enumDescriptor(nested))
		default:
			md.NestedType = append(md.NestedType, s.messageDescriptor(nested))
		}
	}
	m, ok := t.(*MessageType)
	if !ok {
		return md
	}
	for _, field := range m.declaredFields {
		md.Field = append(md.Field, s.fieldDescriptor(field, ProtoType{}, md, m.typ))
	}
	for i, oneOf := range m.oneOfs {
		md.OneofDecl = append(md.OneofDecl, &descriptorpb.OneofDescriptorProto{Name: proto.String(oneOf.name)})
		for _, field := range oneOf.fields {
			fld := s.fieldDescriptor(field, ProtoType{}, md, m.typ)
			fld.OneofIndex = proto.Int32(int32(i))
			md.Field = append(md.Field, fld)
		}
	}
	for _, extensions := range m.extensions {
		for _, r := range extensions.ranges {
			md.ExtensionRange = append(md.ExtensionRange, &descriptorpb.DescriptorProto_ExtensionRange{
				Start: proto.Int32(int32(r.Start)),
				End:   proto.Int32(int32(r.End + 1)),
			})
		}
	}
	for _, reserved := range m.reserveds {
		for _, v := range reserved.values {
			if v.Range == nil {
				md.ReservedName = append(md.ReservedName, v.Name)
				continue
			}
			md.ReservedRange = append(md.ReservedRange, &descriptorpb.DescriptorProto_ReservedRange{
				Start: proto.Int32(int32(v.Range.Start)),
				End:   proto.Int32(int32(v.Range.End + 1)),
			})
		}
	}
	if m.options.isTrue("deprecated") {
		md.Options = &descriptorpb.MessageOptions{Deprecated: proto.Bool(true)}
	}
	return md
}

// fieldDescriptor exports field. extendee is set for extension fields. The
// entry message of a map field is added to owner, whose type is ownerType.
func (s *Schema) fieldDescriptor(
	field *Field,
	extendee ProtoType,
	owner *descriptorpb.DescriptorProto,
	ownerType ProtoType,
) *descriptorpb.FieldDescriptorProto {
	fld := &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(field.name),
		Number:   proto.Int32(int32(field.tag)),
		JsonName: proto.String(field.JSONName()),
	}
	if !extendee.IsZero() {
		fld.Extendee = proto.String("." + extendee.String())
	}
	switch field.label {
	case ast.LabelRequired:
		fld.Label = descriptorpb.FieldDescriptorProto_LABEL_REQUIRED.Enum()
	case ast.LabelRepeated, ast.LabelPacked:
		fld.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	default:
		fld.Label = descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum()
	}
	if field.typ.IsMap() && owner != nil {
		entry := s.mapEntryDescriptor(field)
		owner.NestedType = append(owner.NestedType, entry)
		fld.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
		fld.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
		fld.TypeName = proto.String("." + ownerType.NestedType(entry.GetName()).String())
	} else {
		s.setFieldType(fld, field.typ)
	}
	if field.hasDefault {
		fld.DefaultValue = proto.String(field.defaultValue)
	}
	opts := &descriptorpb.FieldOptions{}
	if field.IsPacked() {
		opts.Packed = proto.Bool(true)
	}
	if field.IsDeprecated() {
		opts.Deprecated = proto.Bool(true)
	}
	if opts.Packed != nil || opts.Deprecated != nil {
		fld.Options = opts
	}
	return fld
}

func (s *Schema) setFieldType(fld *descriptorpb.FieldDescriptorProto, t ProtoType) {
	if scalar, ok := internal.ScalarTypes[t.String()]; ok {
		fld.Type = scalar.Enum()
		return
	}
	fld.TypeName = proto.String("." + t.String())
	if _, ok := s.types[t].(*EnumType); ok {
		fld.Type = descriptorpb.FieldDescriptorProto_TYPE_ENUM.Enum()
	} else {
		fld.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
	}
}

// mapEntryDescriptor returns the entry message protoc generates for a map
// field: "map<K, V> foo_bar" becomes FooBarEntry { K key = 1; V value = 2; }.
func (s *Schema) mapEntryDescriptor(field *Field) *descriptorpb.DescriptorProto {
	key := &descriptorpb.FieldDescriptorProto{
		Name:     proto.String("key"),
		Number:   proto.Int32(1),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		JsonName: proto.String("key"),
	}
	s.setFieldType(key, field.typ.KeyType())
	value := &descriptorpb.FieldDescriptorProto{
		Name:     proto.String("value"),
		Number:   proto.Int32(2),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		JsonName: proto.String("value"),
	}
	s.setFieldType(value, field.typ.ValueType())
	return &descriptorpb.DescriptorProto{
		Name:    proto.String(mapEntryName(field.name)),
		Field:   []*descriptorpb.FieldDescriptorProto{key, value},
		Options: &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)},
	}
}

func mapEntryName(fieldName string) string {
	var sb strings.Builder
	upperNext := true
	for _, c := range fieldName {
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
	return sb.String() + "Entry"
}

func (s *Schema) enumDescriptor(e *EnumType) *descriptorpb.EnumDescriptorProto {
	ed := &descriptorpb.EnumDescriptorProto{
		Name: proto.String(e.name),
	}
	for _, c := range e.constants {
		vd := &descriptorpb.EnumValueDescriptorProto{
			Name:   proto.String(c.name),
			Number: proto.Int32(int32(c.tag)),
		}
		if c.IsDeprecated() {
			vd.Options = &descriptorpb.EnumValueOptions{Deprecated: proto.Bool(true)}
		}
		ed.Value = append(ed.Value, vd)
	}
	for _, reserved := range e.reserveds {
		for _, v := range reserved.values {
			if v.Range == nil {
				ed.ReservedName = append(ed.ReservedName, v.Name)
				continue
			}
			ed.ReservedRange = append(ed.ReservedRange, &descriptorpb.EnumDescriptorProto_EnumReservedRange{
				Start: proto.Int32(int32(v.Range.Start)),
				End:   proto.Int32(int32(v.Range.End)),
			})
		}
	}
	if e.AllowAlias() || e.options.isTrue("deprecated") {
		ed.Options = &descriptorpb.EnumOptions{}
		if e.AllowAlias() {
			ed.Options.AllowAlias = proto.Bool(true)
		}
		if e.options.isTrue("deprecated") {
			ed.Options.Deprecated = proto.Bool(true)
		}
	}
	return ed
}

func (s *Schema) serviceDescriptor(service *Service) *descriptorpb.ServiceDescriptorProto {
	sd := &descriptorpb.ServiceDescriptorProto{
		Name: proto.String(service.name),
	}
	for _, rpc := range service.rpcs {
		md := &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(rpc.name),
			InputType:  proto.String("." + rpc.requestType.String()),
			OutputType: proto.String("." + rpc.responseType.String()),
		}
		if rpc.requestStreaming {
			md.ClientStreaming = proto.Bool(true)
		}
		if rpc.responseStreaming {
			md.ServerStreaming = proto.Bool(true)
		}
		if rpc.IsDeprecated() {
			md.Options = &descriptorpb.MethodOptions{Deprecated: proto.Bool(true)}
		}
		sd.Method = append(sd.Method, md)
	}
	return sd
}
