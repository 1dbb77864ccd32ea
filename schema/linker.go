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
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bufbuild/protoschema/ast"
	"github.com/bufbuild/protoschema/reporter"
)

// DescriptorPath is the import path of descriptor.proto, which declares the
// option types. Every link loads it.
const DescriptorPath = "google/protobuf/descriptor.proto"

// Loader loads the file at an import path like "google/protobuf/any.proto".
// Loading the same path twice must return equivalent files; a [Linker] loads
// each path at most once.
type Loader interface {
	Load(path string) (*ProtoFile, error)
}

// LoaderFunc adapts a function to the [Loader] interface.
type LoaderFunc func(path string) (*ProtoFile, error)

func (f LoaderFunc) Load(path string) (*ProtoFile, error) {
	return f(path)
}

// LinkError is returned by [Linker.Link] when the files have errors. Each
// entry carries the location of the declaration it is about.
type LinkError struct {
	Errors reporter.Errors
}

func (e *LinkError) Error() string {
	return e.Errors.Error()
}

func (e *LinkError) Unwrap() error {
	return e.Errors
}

// Linker resolves the type and option references of a set of source files
// and validates them, loading imported files as they are needed.
//
// A Linker is used for a single call to [Linker.Link] and is not safe for
// concurrent use.
type Linker struct {
	loader  Loader
	handler *reporter.Handler

	fileLinkers map[string]*fileLinker
	sources     []*fileLinker
	types       map[string]Type
	services    map[string]*Service
	fileByType  map[string]*fileLinker

	// The declarations being linked, outermost first. The innermost entry
	// scopes name resolution and every entry is named in errors.
	contextStack []any

	requestedTypes map[ProtoType]bool
	requestQueue   []ProtoType
	usedExtensions map[*Field]bool

	// A loader failure or an abort requested by the reporter. Linking stops
	// at the next phase boundary.
	err error
}

// NewLinker returns a linker that loads imports with loader and reports
// link errors to handler. A nil handler collects every error.
func NewLinker(loader Loader, handler *reporter.Handler) *Linker {
	if handler == nil {
		handler = reporter.NewHandler(nil)
	}
	return &Linker{
		loader:         loader,
		handler:        handler,
		fileLinkers:    map[string]*fileLinker{},
		types:          map[string]Type{},
		services:       map[string]*Service{},
		fileByType:     map[string]*fileLinker{},
		requestedTypes: map[ProtoType]bool{},
		usedExtensions: map[*Field]bool{},
	}
}

// Link links sources into a schema. The schema holds the sources plus the
// parts of imported files they use; imports that nothing references are
// left out.
//
// Link reports every problem it finds before returning. If there were any,
// the returned error is a [*LinkError] (or the error the handler's reporter
// aborted with) and no schema is returned.
func (l *Linker) Link(sources []*ProtoFile) (*Schema, error) {
	for _, file := range sources {
		fl := newFileLinker(l, file)
		l.fileLinkers[file.Path()] = fl
		l.sources = append(l.sources, fl)
	}
	for _, fl := range l.sources {
		fl.requireTypesRegistered()
	}
	if descriptor := l.fileLinker(DescriptorPath); descriptor != nil {
		descriptor.requireTypesRegistered()
	}
	if l.err != nil {
		return nil, l.err
	}

	for _, fl := range l.sources {
		fl.linkExtendTypes()
	}
	for _, fl := range l.sources {
		for _, imported := range fl.effectiveImports() {
			imported.requireTypesRegistered()
			imported.requireExtensionsLinked()
		}
	}
	if l.err != nil {
		return nil, l.err
	}

	for _, fl := range l.sources {
		fl.linkMembers()
	}
	for _, fl := range l.sources {
		fl.linkOptions(true)
	}
	if l.err != nil {
		return nil, l.err
	}

	for _, fl := range l.sources {
		fl.validate()
	}
	if err := l.handler.Error(); err != nil {
		return nil, l.linkError(err)
	}

	schema := l.assemble()
	if l.err != nil {
		return nil, l.err
	}
	if err := l.handler.Error(); err != nil {
		return nil, l.linkError(err)
	}
	return schema, nil
}

func (l *Linker) linkError(err error) error {
	var errs reporter.Errors
	if errors.As(err, &errs) {
		return &LinkError{Errors: errs}
	}
	return err
}

// fileLinker returns the linker for path, loading the file on first use. It
// returns nil when the file could not be loaded; the error aborts the link.
func (l *Linker) fileLinker(path string) *fileLinker {
	if fl, ok := l.fileLinkers[path]; ok {
		return fl
	}
	if l.err != nil {
		return nil
	}
	file, err := l.loader.Load(path)
	if err != nil {
		l.err = fmt.Errorf("failed to load %s: %w", path, err)
		return nil
	}
	fl := newFileLinker(l, file)
	l.fileLinkers[path] = fl
	return fl
}

// withContext runs fn with ctx pushed onto the context stack.
func (l *Linker) withContext(ctx any, fn func()) {
	l.contextStack = append(l.contextStack, ctx)
	defer func() {
		l.contextStack = l.contextStack[:len(l.contextStack)-1]
	}()
	fn()
}

// withStack runs fn with the context stack replaced by stack. It is used to
// link a declaration of another file in that file's scope.
func (l *Linker) withStack(stack []any, fn func()) {
	saved := l.contextStack
	l.contextStack = stack
	defer func() {
		l.contextStack = saved
	}()
	fn()
}

// scope returns the name that unqualified references are resolved relative
// to: the innermost type, or the package for extensions and top-level
// declarations.
func (l *Linker) scope() string {
	for i := len(l.contextStack) - 1; i >= 0; i-- {
		switch ctx := l.contextStack[i].(type) {
		case Type:
			return ctx.Type().String()
		case *Field:
			if ctx.extension {
				return ctx.packageName
			}
		case *ProtoFile:
			return ctx.packageName
		}
	}
	return ""
}

// currentFile returns the linker of the innermost file on the context stack.
func (l *Linker) currentFile() *fileLinker {
	for i := len(l.contextStack) - 1; i >= 0; i-- {
		if file, ok := l.contextStack[i].(*ProtoFile); ok {
			return l.fileLinkers[file.Path()]
		}
	}
	return nil
}

// errorf reports a link error. The message is followed by the context
// chain, innermost first, and the error is positioned at the innermost
// declaration.
func (l *Linker) errorf(format string, args ...any) {
	var sb strings.Builder
	fmt.Fprintf(&sb, format, args...)
	var loc ast.Location
	first := true
	for i := len(l.contextStack) - 1; i >= 0; i-- {
		ctx := l.contextStack[i]
		if file, ok := ctx.(*ProtoFile); ok {
			if first {
				loc = file.location
				first = false
			}
			fmt.Fprintf(&sb, "\n  in file %s", file.Path())
			continue
		}
		what, location := describe(ctx)
		if what == "" {
			continue
		}
		preposition := "in"
		if first {
			loc = location
			preposition = "for"
			first = false
		}
		fmt.Fprintf(&sb, "\n  %s %s (%s)", preposition, what, location)
	}
	if err := l.handler.HandleError(reporter.Error(loc, errors.New(sb.String()))); err != nil && l.err == nil {
		l.err = err
	}
}

func describe(ctx any) (string, ast.Location) {
	switch ctx := ctx.(type) {
	case *MessageType:
		return "message " + ctx.typ.String(), ctx.location
	case *EnumType:
		return "enum " + ctx.typ.String(), ctx.location
	case *Field:
		return "field " + ctx.name, ctx.location
	case *Service:
		return "service " + ctx.typ.String(), ctx.location
	case *RPC:
		return "rpc " + ctx.name, ctx.location
	case *Extend:
		return "extend " + ctx.name, ctx.location
	case *Extensions:
		return "extensions", ctx.location
	case *EnumConstant:
		return "constant " + ctx.name, ctx.location
	case *ast.OptionElement:
		if ctx.Location.Line == 0 {
			return "", ast.Location{}
		}
		return "option " + optionName(ctx), ctx.Location
	default:
		return "", ast.Location{}
	}
}

// resolve looks name up in the registry returned by lookup, trying the
// current scope and then each enclosing one. A leading dot means the name is
// fully qualified. When nothing matches, the imports of the current file are
// registered and the lookup is tried once more.
func resolve[T any](l *Linker, name string, lookup func() map[string]T) (T, bool) {
	if v, ok := resolveIn(l.scope(), name, lookup()); ok {
		return v, true
	}
	if fl := l.currentFile(); fl != nil && fl.registerImports() {
		return resolveIn(l.scope(), name, lookup())
	}
	var zero T
	return zero, false
}

func resolveIn[T any](scope, name string, registry map[string]T) (T, bool) {
	if qualified, ok := strings.CutPrefix(name, "."); ok {
		v, ok := registry[qualified]
		return v, ok
	}
	for prefix := scope; ; {
		candidate := name
		if prefix != "" {
			candidate = prefix + "." + name
		}
		if v, ok := registry[candidate]; ok {
			return v, true
		}
		if prefix == "" {
			break
		}
		if i := strings.LastIndexByte(prefix, '.'); i >= 0 {
			prefix = prefix[:i]
		} else {
			prefix = ""
		}
	}
	var zero T
	return zero, false
}

// resolveType resolves a reference to a message or enum. Unresolved names
// are reported and stand in as bytes so linking can go on.
func (l *Linker) resolveType(name string) ProtoType {
	t, ok := resolve(l, name, func() map[string]Type { return l.types })
	if !ok {
		l.errorf("unable to resolve %s", name)
		return TypeBytes
	}
	return t.Type()
}

// resolveMessageType is like resolveType but only accepts messages.
func (l *Linker) resolveMessageType(name string) ProtoType {
	t, ok := resolve(l, name, func() map[string]Type { return l.types })
	if !ok {
		l.errorf("unable to resolve %s", name)
		return TypeBytes
	}
	if _, ok := t.(*MessageType); !ok {
		l.errorf("expected a message but was %s", name)
	}
	return t.Type()
}

// resolveFieldType resolves the type of a field as written: a scalar, a map
// or a reference.
func (l *Linker) resolveFieldType(name string) ProtoType {
	if inner, ok := strings.CutPrefix(name, "map<"); ok && strings.HasSuffix(inner, ">") {
		key, value, _ := strings.Cut(inner[:len(inner)-1], ",")
		keyType := ProtoTypeOf(strings.TrimSpace(key))
		if !keyType.IsScalar() {
			l.errorf("map key must be a scalar but was %s", strings.TrimSpace(key))
		}
		return NewMapType(keyType, l.resolveFieldType(strings.TrimSpace(value)))
	}
	if t := ProtoTypeOf(name); t.IsScalar() {
		return t
	}
	return l.resolveType(name)
}

// messageType returns the registered message called t, or nil.
func (l *Linker) messageType(t ProtoType) *MessageType {
	m, _ := l.types[t.String()].(*MessageType)
	return m
}

// resolveExtension resolves the name of an extension of m.
func (l *Linker) resolveExtension(m *MessageType, name string) *Field {
	field, ok := resolve(l, name, m.extensionFieldsMap)
	if !ok {
		return nil
	}
	return field
}

// requireMembersLinked links the field types and options of a type declared
// in an imported file. Source files are linked up front.
func (l *Linker) requireMembersLinked(t Type) {
	fl := l.fileByType[t.Type().String()]
	if fl == nil {
		return
	}
	switch t := t.(type) {
	case *MessageType:
		if t.membersLinked {
			return
		}
		t.membersLinked = true
		l.withStack([]any{fl.file}, func() {
			l.withContext(t, func() {
				for _, field := range t.FieldsAndOneOfFields() {
					l.withContext(field, func() {
						field.typ = l.resolveFieldType(field.elementType)
					})
				}
			})
			fl.linkTypeOptions(t, false, false)
		})
	case *EnumType:
		l.withStack([]any{fl.file}, func() {
			fl.linkTypeOptions(t, false, false)
		})
	}
}

// linkOptions resolves each option element to the field it sets. With
// validate set, options that cannot be resolved are reported; otherwise
// they are left unlinked.
func (l *Linker) linkOptions(o *Options, validate bool) {
	if o == nil || o.linked {
		return
	}
	o.linked = true
	optionType := l.messageType(o.optionType)
	if optionType == nil {
		if validate && len(o.elements) > 0 {
			l.errorf("unable to resolve option type %s", o.optionType)
		}
		return
	}
	l.requireMembersLinked(optionType)
	for _, element := range o.elements {
		entry, ok := l.canonicalizeOption(optionType, element)
		if !ok {
			if validate {
				l.withContext(element, func() {
					l.errorf("unable to resolve option %s on %s", optionName(element), o.optionType)
				})
			}
			continue
		}
		entry.element = element
		o.entries = append(o.entries, entry)
	}
}

func optionName(element *ast.OptionElement) string {
	name := element.Name
	if element.Parenthesized {
		name = "(" + name + ")"
	}
	if nested, ok := element.Value.(*ast.OptionElement); ok && element.Kind == ast.OptionKindOption {
		name += "." + optionName(nested)
	}
	return name
}

// canonicalizeOption resolves element against the fields and extensions of
// m, recursing into message values.
func (l *Linker) canonicalizeOption(m *MessageType, element *ast.OptionElement) (OptionEntry, bool) {
	var field *Field
	var path []string
	if element.Parenthesized {
		field = l.resolveExtension(m, element.Name)
	} else {
		segments := strings.Split(element.Name, ".")
		field, path = l.memberNamed(m, segments[0]), segments[1:]
	}
	if field == nil {
		return OptionEntry{}, false
	}
	// "a.b.c = v" sets c of b of a.
	owners := []*MessageType{m}
	fields := []*Field{field}
	for _, segment := range path {
		owner := l.messageType(fields[len(fields)-1].typ)
		if owner == nil {
			return OptionEntry{}, false
		}
		l.requireMembersLinked(owner)
		next := l.memberNamed(owner, segment)
		if next == nil {
			return OptionEntry{}, false
		}
		owners = append(owners, owner)
		fields = append(fields, next)
	}
	value, ok := l.canonicalizeValue(fields[len(fields)-1], element.Kind, element.Value)
	if !ok {
		return OptionEntry{}, false
	}
	for i := len(fields) - 1; i > 0; i-- {
		value = OptionValueMap{l.entry(owners[i], fields[i], value)}
	}
	return l.entry(m, field, value), true
}

func (l *Linker) entry(owner *MessageType, field *Field, value any) OptionEntry {
	if field.extension {
		l.usedExtensions[field] = true
	}
	return OptionEntry{Member: field.Member(owner.typ), Value: value, Extension: field.extension}
}

// memberNamed returns the field of m called name. Bracketed names like
// "[pkg.ext]" and names that are not fields are looked up as extensions.
func (l *Linker) memberNamed(m *MessageType, name string) *Field {
	if inner, ok := strings.CutPrefix(name, "["); ok {
		return l.resolveExtension(m, strings.TrimSuffix(inner, "]"))
	}
	if field := m.Field(name); field != nil {
		return field
	}
	return l.resolveExtension(m, name)
}

func (l *Linker) canonicalizeValue(field *Field, kind ast.OptionKind, value any) (any, bool) {
	switch value := value.(type) {
	case string:
		return ast.OptionPrimitive{Kind: kind, Value: value}, true
	case ast.OptionPrimitive:
		return value, true
	case *ast.OptionElement:
		m := l.messageType(field.typ)
		if m == nil {
			return nil, false
		}
		l.requireMembersLinked(m)
		entry, ok := l.canonicalizeOption(m, value)
		if !ok {
			return nil, false
		}
		return OptionValueMap{entry}, true
	case ast.OptionMap:
		m := l.messageType(field.typ)
		if m == nil {
			return nil, false
		}
		l.requireMembersLinked(m)
		result := make(OptionValueMap, 0, len(value))
		for _, e := range value {
			nested := l.memberNamed(m, e.Key)
			if nested == nil {
				return nil, false
			}
			v, ok := l.canonicalizeValue(nested, kind, e.Value)
			if !ok {
				return nil, false
			}
			result = append(result, l.entry(m, nested, v))
		}
		return result, true
	case []any:
		result := make([]any, 0, len(value))
		for _, e := range value {
			v, ok := l.canonicalizeValue(field, kind, e)
			if !ok {
				return nil, false
			}
			result = append(result, v)
		}
		return result, true
	default:
		return value, true
	}
}

// request records that t is used, so that the file declaring it is kept in
// the schema.
func (l *Linker) request(t ProtoType) {
	switch {
	case t.IsZero() || t.IsScalar():
	case t.IsMap():
		l.request(t.KeyType())
		l.request(t.ValueType())
	case !l.requestedTypes[t]:
		if _, ok := l.types[t.String()]; ok {
			l.requestedTypes[t] = true
			l.requestQueue = append(l.requestQueue, t)
		}
	}
}

// requestOptions requests the types used by linked options: the extension
// fields they set and those fields' types.
func (l *Linker) requestOptions(o *Options) {
	for _, e := range o.entries {
		l.requestOptionEntry(e)
	}
}

func (l *Linker) requestOptionEntry(e OptionEntry) {
	if e.Extension {
		l.request(e.Member.Type)
		if m := l.messageType(e.Member.Type); m != nil {
			if field := m.ExtensionField(e.Member.Member); field != nil {
				l.usedExtensions[field] = true
				l.request(field.typ)
			}
		}
	}
	var values []any
	if list, ok := e.Value.([]any); ok {
		values = list
	} else {
		values = []any{e.Value}
	}
	for _, v := range values {
		if m, ok := v.(OptionValueMap); ok {
			for _, nested := range m {
				l.requestOptionEntry(nested)
			}
		}
	}
}

// assemble builds the schema from the sources and whatever they use from
// imported files, following requested types to a fixed point.
func (l *Linker) assemble() *Schema {
	isSource := map[*fileLinker]bool{}
	for _, fl := range l.sources {
		isSource[fl] = true
		fl.requestUsedTypes()
	}
	for len(l.requestQueue) > 0 {
		t := l.requestQueue[0]
		l.requestQueue = l.requestQueue[1:]
		declared := l.types[t.String()]
		l.requireMembersLinked(declared)
		switch declared := declared.(type) {
		case *MessageType:
			for _, field := range declared.FieldsAndOneOfFields() {
				l.request(field.typ)
				l.requestOptions(field.options)
			}
			for _, oneOf := range declared.oneOfs {
				l.requestOptions(oneOf.options)
			}
		case *EnumType:
			for _, c := range declared.constants {
				l.requestOptions(c.options)
			}
		}
		l.requestOptions(declared.Options())
	}

	files := make([]*ProtoFile, 0, len(l.sources))
	for _, fl := range l.sources {
		files = append(files, fl.file)
	}
	var imported []*ProtoFile
	for path, fl := range l.fileLinkers {
		if isSource[fl] {
			continue
		}
		if retained := l.retainLinked(fl.file); retained != nil {
			imported = append(imported, retained)
		} else {
			delete(l.fileLinkers, path)
		}
	}
	slices.SortFunc(imported, func(a, b *ProtoFile) int {
		return strings.Compare(a.Path(), b.Path())
	})
	return newSchema(append(files, imported...))
}

// retainLinked returns the requested declarations of an imported file, or
// nil if it has none. Services are dropped and extend blocks keep only the
// extension fields that options use.
func (l *Linker) retainLinked(file *ProtoFile) *ProtoFile {
	result := *file
	result.types = l.retainRequested(file.types)
	result.services = nil
	result.extends = nil
	for _, extend := range file.extends {
		var fields []*Field
		for _, field := range extend.fields {
			if l.usedExtensions[field] {
				fields = append(fields, field)
			}
		}
		if len(fields) > 0 {
			retained := *extend
			retained.fields = fields
			result.extends = append(result.extends, &retained)
		}
	}
	if len(result.types) == 0 && len(result.extends) == 0 {
		return nil
	}
	return &result
}

func (l *Linker) retainRequested(types []Type) []Type {
	var result []Type
	for _, t := range types {
		nested := l.retainRequested(t.NestedTypes())
		if !l.requestedTypes[t.Type()] {
			if len(nested) > 0 {
				result = append(result, &EnclosingType{
					typ:           t.Type(),
					location:      t.Location(),
					name:          t.Type().SimpleName(),
					documentation: t.Documentation(),
					nestedTypes:   nested,
				})
			}
			continue
		}
		if m, ok := t.(*MessageType); ok {
			retained := *m
			retained.nestedTypes = nested
			t = &retained
		}
		result = append(result, t)
	}
	return result
}
