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

// fileLinker links the declarations of one file. Each step runs at most
// once, however many files import the file.
type fileLinker struct {
	linker *Linker
	file   *ProtoFile

	typesRegistered    bool
	importsRegistered  bool
	extendsLinked      bool
	extendFieldsLinked bool
	imports            []*fileLinker
	importsComputed    bool
}

func newFileLinker(linker *Linker, file *ProtoFile) *fileLinker {
	return &fileLinker{linker: linker, file: file}
}

// requireTypesRegistered adds the file's types and services to the
// linker's registry.
func (fl *fileLinker) requireTypesRegistered() {
	if fl.typesRegistered {
		return
	}
	fl.typesRegistered = true
	l := fl.linker
	l.withStack([]any{fl.file}, func() {
		fl.registerTypes(fl.file.types)
		for _, service := range fl.file.services {
			name := service.typ.String()
			if previous, ok := l.fileByType[name]; ok {
				l.withContext(service, func() {
					l.errorf("%s is already defined in %s", name, previous.file.Path())
				})
				continue
			}
			l.services[name] = service
			l.fileByType[name] = fl
		}
	})
}

func (fl *fileLinker) registerTypes(types []Type) {
	l := fl.linker
	for _, t := range types {
		name := t.Type().String()
		if previous, ok := l.fileByType[name]; ok {
			l.withContext(t, func() {
				l.errorf("%s is already defined in %s", name, previous.file.Path())
			})
			continue
		}
		l.types[name] = t
		l.fileByType[name] = fl
		fl.registerTypes(t.NestedTypes())
	}
}

// effectiveImports returns the files this file can see: its direct imports
// and everything they re-export with "import public".
func (fl *fileLinker) effectiveImports() []*fileLinker {
	if fl.importsComputed {
		return fl.imports
	}
	fl.importsComputed = true
	seen := map[*fileLinker]bool{fl: true}
	var visit func(paths []string)
	visit = func(paths []string) {
		for _, path := range paths {
			imported := fl.linker.fileLinker(path)
			if imported == nil || seen[imported] {
				continue
			}
			seen[imported] = true
			fl.imports = append(fl.imports, imported)
			visit(imported.file.publicImports)
		}
	}
	visit(fl.file.AllImports())
	return fl.imports
}

// canSee reports whether declarations of other are visible from this file.
func (fl *fileLinker) canSee(other *fileLinker) bool {
	if other == fl {
		return true
	}
	for _, imported := range fl.effectiveImports() {
		if imported == other {
			return true
		}
	}
	return false
}

// registerImports registers the types of every effective import and links
// their extend blocks. It returns false if that was already done.
func (fl *fileLinker) registerImports() bool {
	if fl.importsRegistered {
		return false
	}
	fl.importsRegistered = true
	for _, imported := range fl.effectiveImports() {
		imported.requireTypesRegistered()
	}
	for _, imported := range fl.effectiveImports() {
		imported.requireExtensionsLinked()
	}
	return true
}

// linkExtendTypes resolves the message each extend block extends and adds
// the extension fields to it.
func (fl *fileLinker) linkExtendTypes() {
	if fl.extendsLinked {
		return
	}
	fl.extendsLinked = true
	l := fl.linker
	l.withStack([]any{fl.file}, func() {
		for _, extend := range fl.file.extends {
			l.withContext(extend, func() {
				extend.typ = l.resolveMessageType(extend.name)
			})
			m := l.messageType(extend.typ)
			for _, field := range extend.fields {
				field.extendee = extend.typ
				if m != nil {
					m.addExtensionField(field)
				}
			}
		}
	})
}

// requireExtensionsLinked links the extend blocks of a file, including the
// types of their fields.
func (fl *fileLinker) requireExtensionsLinked() {
	fl.linkExtendTypes()
	if fl.extendFieldsLinked {
		return
	}
	fl.extendFieldsLinked = true
	l := fl.linker
	l.withStack([]any{fl.file}, func() {
		for _, extend := range fl.file.extends {
			l.withContext(extend, func() {
				fl.linkFields(extend.fields)
			})
		}
	})
}

func (fl *fileLinker) linkFields(fields []*Field) {
	l := fl.linker
	for _, field := range fields {
		l.withContext(field, func() {
			field.typ = l.resolveFieldType(field.elementType)
		})
	}
}

// linkMembers resolves the types of fields, rpcs and extension fields.
func (fl *fileLinker) linkMembers() {
	l := fl.linker
	l.withContext(fl.file, func() {
		for _, t := range fl.file.types {
			fl.linkTypeMembers(t)
		}
		for _, service := range fl.file.services {
			l.withContext(service, func() {
				for _, rpc := range service.rpcs {
					l.withContext(rpc, func() {
						rpc.requestType = l.resolveMessageType(rpc.requestTypeName)
						rpc.responseType = l.resolveMessageType(rpc.responseTypeName)
					})
				}
			})
		}
	})
	fl.requireExtensionsLinked()
}

func (fl *fileLinker) linkTypeMembers(t Type) {
	l := fl.linker
	l.withContext(t, func() {
		if m, ok := t.(*MessageType); ok {
			m.membersLinked = true
			fl.linkFields(m.FieldsAndOneOfFields())
		}
		for _, nested := range t.NestedTypes() {
			fl.linkTypeMembers(nested)
		}
	})
}

// linkOptions links every option declared in the file.
func (fl *fileLinker) linkOptions(validate bool) {
	l := fl.linker
	l.withContext(fl.file, func() {
		l.linkOptions(fl.file.options, validate)
		for _, t := range fl.file.types {
			fl.linkTypeOptions(t, validate, true)
		}
		for _, service := range fl.file.services {
			l.withContext(service, func() {
				l.linkOptions(service.options, validate)
				for _, rpc := range service.rpcs {
					l.withContext(rpc, func() {
						l.linkOptions(rpc.options, validate)
					})
				}
			})
		}
		for _, extend := range fl.file.extends {
			l.withContext(extend, func() {
				for _, field := range extend.fields {
					l.withContext(field, func() {
						l.linkOptions(field.options, validate)
					})
				}
			})
		}
	})
}

// linkTypeOptions links the options of t and its members, and of its
// nested types when nested is set.
func (fl *fileLinker) linkTypeOptions(t Type, validate, nested bool) {
	l := fl.linker
	l.withContext(t, func() {
		l.linkOptions(t.Options(), validate)
		switch t := t.(type) {
		case *MessageType:
			for _, field := range t.FieldsAndOneOfFields() {
				l.withContext(field, func() {
					l.linkOptions(field.options, validate)
				})
			}
			for _, oneOf := range t.oneOfs {
				l.linkOptions(oneOf.options, validate)
			}
		case *EnumType:
			for _, c := range t.constants {
				l.withContext(c, func() {
					l.linkOptions(c.options, validate)
				})
			}
		}
		if nested {
			for _, n := range t.NestedTypes() {
				fl.linkTypeOptions(n, validate, true)
			}
		}
	})
}

// requestUsedTypes requests every type a source file refers to.
func (fl *fileLinker) requestUsedTypes() {
	l := fl.linker
	l.requestOptions(fl.file.options)
	fl.file.Walk(func(t Type) bool {
		l.request(t.Type())
		return true
	})
	for _, service := range fl.file.services {
		l.requestOptions(service.options)
		for _, rpc := range service.rpcs {
			l.request(rpc.requestType)
			l.request(rpc.responseType)
			l.requestOptions(rpc.options)
		}
	}
	for _, extend := range fl.file.extends {
		l.request(extend.typ)
		for _, field := range extend.fields {
			l.request(field.typ)
			l.requestOptions(field.options)
		}
	}
}
