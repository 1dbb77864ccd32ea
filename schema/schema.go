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

// Schema is a linked set of files. It is immutable and safe for concurrent
// use; [Schema.Prune] returns a new schema.
type Schema struct {
	files           []*ProtoFile
	fileByPath      map[string]*ProtoFile
	fileByType      map[ProtoType]*ProtoFile
	types           map[ProtoType]Type
	services        map[ProtoType]*Service
	extensionFields map[ProtoMember]*Field
}

// newSchema indexes files. The extension fields of each message are
// rebuilt from the extend blocks in files, so that extensions declared in
// files that are not part of the schema do not show up.
func newSchema(files []*ProtoFile) *Schema {
	s := &Schema{
		files:           files,
		fileByPath:      make(map[string]*ProtoFile, len(files)),
		fileByType:      map[ProtoType]*ProtoFile{},
		types:           map[ProtoType]Type{},
		services:        map[ProtoType]*Service{},
		extensionFields: map[ProtoMember]*Field{},
	}
	for _, file := range files {
		s.fileByPath[file.Path()] = file
		file.Walk(func(t Type) bool {
			s.types[t.Type()] = t
			s.fileByType[t.Type()] = file
			if m, ok := t.(*MessageType); ok {
				m.extensionFields = nil
			}
			return true
		})
		for _, service := range file.services {
			s.services[service.typ] = service
			s.fileByType[service.typ] = file
		}
	}
	for _, file := range files {
		for _, extend := range file.extends {
			m, _ := s.types[extend.typ].(*MessageType)
			for _, field := range extend.fields {
				s.extensionFields[extend.Member(field)] = field
				if m != nil {
					m.addExtensionField(field)
				}
			}
		}
	}
	return s
}

// ProtoFiles returns the files of the schema: the linked sources in the
// order they were given, then the imported files that are used.
func (s *Schema) ProtoFiles() []*ProtoFile {
	return s.files
}

// ProtoFile returns the file with the given import path, or nil.
func (s *Schema) ProtoFile(path string) *ProtoFile {
	return s.fileByPath[path]
}

// ProtoFileForType returns the file that declares the type or service t.
func (s *Schema) ProtoFileForType(t ProtoType) *ProtoFile {
	return s.fileByType[t]
}

// Type returns the message or enum t, or nil.
func (s *Schema) Type(t ProtoType) Type {
	return s.types[t]
}

// TypeNamed returns the type with the given fully-qualified name, or nil.
func (s *Schema) TypeNamed(name string) Type {
	return s.types[ProtoTypeOf(name)]
}

// Service returns the service t, or nil.
func (s *Schema) Service(t ProtoType) *Service {
	return s.services[t]
}

// ServiceNamed returns the service with the given fully-qualified name, or
// nil.
func (s *Schema) ServiceNamed(name string) *Service {
	return s.services[ProtoTypeOf(name)]
}

// Field returns the field identified by member. Extension fields are
// identified by their qualified name on the extended message.
func (s *Schema) Field(member ProtoMember) *Field {
	if field, ok := s.extensionFields[member]; ok {
		return field
	}
	if m, ok := s.types[member.Type].(*MessageType); ok {
		return m.Field(member.Member)
	}
	return nil
}

// Prune returns the schema that remains when everything the rules do not
// reach is removed. Pruning does not modify s.
func (s *Schema) Prune(rules *PruningRules) (*Schema, error) {
	p := newPruner(s, rules)
	if err := p.markRoots(); err != nil {
		return nil, err
	}
	p.markReachable()
	p.markFileOptions()
	return p.sweep(), nil
}
