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
	"strings"

	"github.com/bufbuild/protoschema/ast"
	"github.com/bufbuild/protoschema/internal"
	"github.com/bufbuild/protoschema/internal/interval"
)

// validate checks the declarations of a source file. Imported files are
// not validated.
func (fl *fileLinker) validate() {
	l := fl.linker
	l.withContext(fl.file, func() {
		fl.validateEnumConstantScope(fl.file.types)
		for _, t := range fl.file.types {
			fl.validateType(t)
		}
		for _, service := range fl.file.services {
			fl.validateService(service)
		}
		extendees := map[ProtoType]bool{}
		for _, extend := range fl.file.extends {
			fl.validateExtend(extend)
			extendees[extend.typ] = true
		}
		// Extensions of messages in imported files are not covered by
		// validating those messages.
		for extendee := range extendees {
			m := l.messageType(extendee)
			if m == nil || fl.isSource(l.fileByType[extendee.String()]) {
				continue
			}
			l.withContext(m, func() {
				fl.validateTagUniqueness(m.extensionFields, nil)
			})
		}
	})
}

func (fl *fileLinker) isSource(other *fileLinker) bool {
	for _, source := range fl.linker.sources {
		if source == other {
			return true
		}
	}
	return false
}

func (fl *fileLinker) validateType(t Type) {
	l := fl.linker
	l.withContext(t, func() {
		switch t := t.(type) {
		case *MessageType:
			fl.validateMessage(t)
		case *EnumType:
			fl.validateEnum(t)
		}
		fl.validateEnumConstantScope(t.NestedTypes())
		for _, nested := range t.NestedTypes() {
			fl.validateType(nested)
		}
	})
}

func (fl *fileLinker) validateMessage(m *MessageType) {
	l := fl.linker
	reserved := fl.reservedRanges(m.reserveds)
	reservedNames := reservedNames(m.reserveds)
	fields := m.FieldsAndOneOfFields()
	for _, field := range fields {
		l.withContext(field, func() {
			fl.validateField(field)
			if r := reserved.Get(field.tag); r.Value != nil {
				l.errorf("tag %d is reserved (%s)", field.tag, (*r.Value).location)
			}
			if r, ok := reservedNames[field.name]; ok {
				l.errorf("name '%s' is reserved (%s)", field.name, r.location)
			}
		})
	}
	for _, group := range m.groups {
		if !internal.IsValidTag(group.Tag) {
			l.errorf("tag is out of range: %d", group.Tag)
		}
	}
	for _, extensions := range m.extensions {
		l.withContext(extensions, func() {
			for _, r := range extensions.ranges {
				if r.Start < 1 || r.End > internal.MaxNormalTag || r.Start > r.End {
					l.errorf("extension range is out of range: %s", formatRange(r))
				}
			}
		})
	}
	fl.validateTagUniqueness(append(fields, m.extensionFields...), m.groups)

	byName := map[string][]*Field{}
	var names []string
	for _, field := range fields {
		if _, ok := byName[field.name]; !ok {
			names = append(names, field.name)
		}
		byName[field.name] = append(byName[field.name], field)
	}
	for _, name := range names {
		if colliding := byName[name]; len(colliding) > 1 {
			var sb strings.Builder
			for i, field := range colliding {
				fmt.Fprintf(&sb, "\n  %d. %s (%s)", i+1, field.QualifiedName(), field.location)
			}
			l.errorf("multiple fields share name %s:%s", name, sb.String())
		}
	}
}

// validateTagUniqueness reports each tag used by more than one of fields and
// groups, listing every declaration that uses it.
func (fl *fileLinker) validateTagUniqueness(fields []*Field, groups []*ast.GroupElement) {
	type declaration struct {
		name     string
		location ast.Location
	}
	byTag := map[int][]declaration{}
	var tags []int
	add := func(tag int, d declaration) {
		if _, ok := byTag[tag]; !ok {
			tags = append(tags, tag)
		}
		byTag[tag] = append(byTag[tag], d)
	}
	for _, field := range fields {
		add(field.tag, declaration{field.QualifiedName(), field.location})
	}
	for _, group := range groups {
		add(group.Tag, declaration{group.Name, group.Location})
	}
	for _, tag := range tags {
		if colliding := byTag[tag]; len(colliding) > 1 {
			var sb strings.Builder
			for i, d := range colliding {
				fmt.Fprintf(&sb, "\n  %d. %s (%s)", i+1, d.name, d.location)
			}
			fl.linker.errorf("multiple fields share tag %d:%s", tag, sb.String())
		}
	}
}

func (fl *fileLinker) validateField(field *Field) {
	l := fl.linker
	if !internal.IsValidTag(field.tag) {
		l.errorf("tag is out of range: %d", field.tag)
	}
	if field.IsPacked() && !fl.isPackable(field.typ) {
		l.errorf("packed=true not permitted on %s", field.elementType)
	}
	if field.hasDefault && fl.file.syntax == ast.Proto3 {
		l.errorf("user-defined default values are not permitted in proto3")
	}
	if field.extension && field.label == ast.LabelRequired {
		l.errorf("extension fields cannot be required")
	}
	fl.validateImport(field.typ)
}

func (fl *fileLinker) isPackable(t ProtoType) bool {
	if t.IsScalar() {
		return internal.IsPackable(t.String())
	}
	_, ok := fl.linker.types[t.String()].(*EnumType)
	return ok
}

// validateImport checks that the file declaring t is imported by this file,
// directly or through a public import.
func (fl *fileLinker) validateImport(t ProtoType) {
	switch {
	case t.IsZero() || t.IsScalar():
		return
	case t.IsMap():
		fl.validateImport(t.KeyType())
		fl.validateImport(t.ValueType())
		return
	}
	owner := fl.linker.fileByType[t.String()]
	if owner != nil && !fl.canSee(owner) {
		fl.linker.errorf("%s needs to import %s", fl.file.Path(), owner.file.Path())
	}
}

func (fl *fileLinker) validateEnum(e *EnumType) {
	l := fl.linker
	if fl.file.syntax == ast.Proto3 && len(e.constants) > 0 && e.constants[0].tag != 0 {
		l.withContext(e.constants[0], func() {
			l.errorf("the first enum value must be zero in proto3")
		})
	}
	reserved := fl.reservedRanges(e.reserveds)
	reservedNames := reservedNames(e.reserveds)
	for _, c := range e.constants {
		l.withContext(c, func() {
			if r := reserved.Get(c.tag); r.Value != nil {
				l.errorf("tag %d is reserved (%s)", c.tag, (*r.Value).location)
			}
			if r, ok := reservedNames[c.name]; ok {
				l.errorf("name '%s' is reserved (%s)", c.name, r.location)
			}
		})
	}
	if e.AllowAlias() {
		return
	}
	byTag := map[int][]*EnumConstant{}
	var tags []int
	for _, c := range e.constants {
		if _, ok := byTag[c.tag]; !ok {
			tags = append(tags, c.tag)
		}
		byTag[c.tag] = append(byTag[c.tag], c)
	}
	for _, tag := range tags {
		if colliding := byTag[tag]; len(colliding) > 1 {
			var sb strings.Builder
			for i, c := range colliding {
				fmt.Fprintf(&sb, "\n  %d. %s (%s)", i+1, c.name, c.location)
			}
			l.errorf("multiple enum constants share tag %d:%s", tag, sb.String())
		}
	}
}

// validateEnumConstantScope reports constants with the same name in
// sibling enums. Enum constants are scoped like C++ enumerators: they
// belong to the scope that encloses the enum.
func (fl *fileLinker) validateEnumConstantScope(types []Type) {
	type declaration struct {
		enum     *EnumType
		constant *EnumConstant
	}
	byName := map[string][]declaration{}
	var names []string
	for _, t := range types {
		e, ok := t.(*EnumType)
		if !ok {
			continue
		}
		for _, c := range e.constants {
			if _, ok := byName[c.name]; !ok {
				names = append(names, c.name)
			}
			byName[c.name] = append(byName[c.name], declaration{e, c})
		}
	}
	for _, name := range names {
		colliding := byName[name]
		if len(colliding) < 2 {
			continue
		}
		var sb strings.Builder
		for i, d := range colliding {
			fmt.Fprintf(&sb, "\n  %d. %s.%s (%s)", i+1, d.enum.name, d.constant.name, d.constant.location)
		}
		fl.linker.errorf("multiple enums share constant %s:%s"+
			"\n  protobuf uses C++ scoping rules for enum values, so they exist in the scope enclosing the enum",
			name, sb.String())
	}
}

func (fl *fileLinker) validateService(service *Service) {
	l := fl.linker
	l.withContext(service, func() {
		seen := map[string]*RPC{}
		for _, rpc := range service.rpcs {
			l.withContext(rpc, func() {
				if previous, ok := seen[rpc.name]; ok {
					l.errorf("rpc %s is already defined at %s", rpc.name, previous.location)
				} else {
					seen[rpc.name] = rpc
				}
				fl.validateImport(rpc.requestType)
				fl.validateImport(rpc.responseType)
			})
		}
	})
}

func (fl *fileLinker) validateExtend(extend *Extend) {
	l := fl.linker
	l.withContext(extend, func() {
		fl.validateImport(extend.typ)
		m := l.messageType(extend.typ)
		for _, field := range extend.fields {
			l.withContext(field, func() {
				fl.validateField(field)
				if m != nil && internal.IsValidTag(field.tag) && !inExtensionRange(m, field.tag) {
					l.errorf("tag %d is not in an extension range of %s", field.tag, m.typ)
				}
			})
		}
	})
}

func inExtensionRange(m *MessageType, tag int) bool {
	for _, extensions := range m.extensions {
		for _, r := range extensions.ranges {
			if r.Contains(tag) {
				return true
			}
		}
	}
	return false
}

// reservedRanges indexes the reserved tag ranges, reporting ranges that
// overlap.
func (fl *fileLinker) reservedRanges(reserveds []*Reserved) *interval.Map[int, *Reserved] {
	ranges := &interval.Map[int, *Reserved]{}
	for _, r := range reserveds {
		for _, v := range r.values {
			if v.Range == nil {
				continue
			}
			if v.Range.Start > v.Range.End {
				fl.linker.errorf("reserved range is out of range: %d to %d", v.Range.Start, v.Range.End)
				continue
			}
			if overlap := ranges.Insert(v.Range.Start, v.Range.End, r); overlap.Value != nil {
				fl.linker.errorf("reserved range %s overlaps with %s (%s)",
					formatRange(*v.Range), formatRange(ast.TagRange{Start: overlap.Start, End: overlap.End}),
					(*overlap.Value).location)
			}
		}
	}
	return ranges
}

func reservedNames(reserveds []*Reserved) map[string]*Reserved {
	names := map[string]*Reserved{}
	for _, r := range reserveds {
		for _, v := range r.values {
			if v.Range == nil {
				names[v.Name] = r
			}
		}
	}
	return names
}

func formatRange(r ast.TagRange) string {
	if r.Start == r.End {
		return fmt.Sprint(r.Start)
	}
	return fmt.Sprintf("%d to %d", r.Start, r.End)
}
