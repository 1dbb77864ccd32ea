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

package parser

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/bufbuild/protoschema/ast"
	"github.com/bufbuild/protoschema/internal"
	"github.com/bufbuild/protoschema/reporter"
)

// Parse parses the proto source read from r into an element tree. loc
// identifies the file; it is attached to every element and error.
//
// A syntax error ends the parse: it is passed to handler and returned, and no
// partial tree is produced. A file without a syntax statement is reported as
// an ErrNoSyntax warning. The handler may be nil.
func Parse(loc ast.Location, r io.Reader, handler *reporter.Handler) (*ast.FileElement, error) {
	if handler == nil {
		handler = reporter.NewHandler(nil)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	p := &protoParser{loc: loc, r: NewReader([]rune(string(data)), loc)}
	file, err := p.readProtoFile()
	if err != nil {
		if reporterErr := handler.HandleError(err); reporterErr != nil {
			return nil, reporterErr
		}
		return nil, err
	}
	if file.Syntax == "" {
		handler.HandleWarning(loc, ErrNoSyntax)
	}
	return file, nil
}

// ParseString is a convenience wrapper around Parse for source held in
// memory.
func ParseString(loc ast.Location, source string) (*ast.FileElement, error) {
	return Parse(loc, strings.NewReader(source), nil)
}

type protoParser struct {
	loc  ast.Location
	r    *Reader
	file ast.FileElement
	// declarationCount counts the declarations read so far, so that the
	// syntax statement can be required to come first.
	declarationCount int
}

func (p *protoParser) readProtoFile() (*ast.FileElement, error) {
	p.file.Location = p.loc
	for {
		documentation, err := p.r.ReadDocumentation()
		if err != nil {
			return nil, err
		}
		if p.r.Exhausted() {
			return &p.file, nil
		}
		decl, err := p.readDeclaration(documentation, contextFile)
		if err != nil {
			return nil, err
		}
		switch decl := decl.(type) {
		case ast.TypeElement:
			p.file.Types = append(p.file.Types, decl)
		case *ast.ServiceElement:
			p.file.Services = append(p.file.Services, decl)
		case *ast.OptionElement:
			p.file.Options = append(p.file.Options, decl)
		case *ast.ExtendElement:
			p.file.Extends = append(p.file.Extends, decl)
		}
	}
}

// readDeclaration reads one declaration and returns its element, or nil for
// declarations that only update the file (package, import, syntax).
func (p *protoParser) readDeclaration(documentation string, ctx context) (any, error) {
	index := p.declarationCount
	p.declarationCount++

	// Skip unnecessary semicolons, occasionally used after a nested message declaration.
	if semi, err := p.r.TryChar(';'); err != nil || semi {
		return nil, err
	}

	loc := p.r.Location()
	label, err := p.r.ReadWord()
	if err != nil {
		return nil, err
	}

	switch {
	case label == "package":
		if !ctx.permitsPackage() {
			return nil, errorAt(loc, "'package' in %s", ctx)
		}
		if p.file.PackageName != "" {
			return nil, errorAt(loc, "too many package names")
		}
		if p.file.PackageName, err = p.r.ReadName(); err != nil {
			return nil, err
		}
		return nil, p.r.Require(';')

	case label == "import":
		if !ctx.permitsImport() {
			return nil, errorAt(loc, "'import' in %s", ctx)
		}
		if err := p.readImport(); err != nil {
			return nil, err
		}
		return nil, p.r.Require(';')

	case label == "syntax":
		if !ctx.permitsSyntax() {
			return nil, errorAt(loc, "'syntax' in %s", ctx)
		}
		if err := p.r.Require('='); err != nil {
			return nil, err
		}
		if index != 0 {
			return nil, errorAt(loc, "'syntax' element must be the first declaration in a file")
		}
		value, err := p.r.ReadQuotedString()
		if err != nil {
			return nil, err
		}
		if p.file.Syntax, err = ast.ParseSyntax(value); err != nil {
			return nil, reporter.Error(loc, err)
		}
		return nil, p.r.Require(';')

	case label == "option":
		opt, err := NewOptionReader(p.r).ReadOption('=')
		if err != nil {
			return nil, err
		}
		return opt, p.r.Require(';')

	case label == "reserved":
		if ctx != contextMessage && ctx != contextEnum {
			return nil, errorAt(loc, "'reserved' must be nested in message or enum")
		}
		return p.readReserved(loc, documentation, ctx)

	case label == "message" || label == "enum":
		if !ctx.permitsTypes() {
			return nil, errorAt(loc, "'%s' in %s", label, ctx)
		}
		if label == "message" {
			return p.readMessage(loc, documentation)
		}
		return p.readEnum(loc, documentation)

	case label == "service":
		if ctx != contextFile {
			return nil, errorAt(loc, "'service' in %s", ctx)
		}
		return p.readService(loc, documentation)

	case label == "extend":
		if !ctx.permitsTypes() {
			return nil, errorAt(loc, "'extend' in %s", ctx)
		}
		return p.readExtend(loc, documentation)

	case label == "rpc":
		if !ctx.permitsRPC() {
			return nil, errorAt(loc, "'rpc' in %s", ctx)
		}
		return p.readRPC(loc, documentation)

	case label == "oneof":
		if !ctx.permitsOneOf() {
			return nil, errorAt(loc, "'oneof' must be nested in message")
		}
		return p.readOneOf(loc, documentation)

	case label == "extensions":
		if !ctx.permitsExtensions() {
			return nil, errorAt(loc, "'extensions' must be nested")
		}
		return p.readExtensions(loc, documentation)

	case ctx.permitsFields():
		return p.readField(documentation, loc, label)

	case ctx == contextEnum:
		return p.readEnumConstant(documentation, loc, label)

	default:
		return nil, errorAt(loc, "unexpected label: %s", label)
	}
}

func (p *protoParser) readImport() error {
	path, err := p.r.ReadString()
	if err != nil {
		return err
	}
	switch path {
	case "public":
		if path, err = p.r.ReadString(); err != nil {
			return err
		}
		p.file.PublicImports = append(p.file.PublicImports, path)
	case "weak":
		if path, err = p.r.ReadString(); err != nil {
			return err
		}
		p.file.WeakImports = append(p.file.WeakImports, path)
	default:
		p.file.Imports = append(p.file.Imports, path)
	}
	return nil
}

func (p *protoParser) readMessage(loc ast.Location, documentation string) (*ast.MessageElement, error) {
	name, err := p.r.ReadName()
	if err != nil {
		return nil, err
	}
	msg := &ast.MessageElement{Location: loc, Name: name, Documentation: documentation}
	err = p.readBlock(contextMessage, func(decl any) {
		switch decl := decl.(type) {
		case *ast.FieldElement:
			msg.Fields = append(msg.Fields, decl)
		case *ast.OneOfElement:
			msg.OneOfs = append(msg.OneOfs, decl)
		case *ast.GroupElement:
			msg.Groups = append(msg.Groups, decl)
		case ast.TypeElement:
			msg.NestedTypes = append(msg.NestedTypes, decl)
		case *ast.ExtensionsElement:
			msg.Extensions = append(msg.Extensions, decl)
		case *ast.OptionElement:
			msg.Options = append(msg.Options, decl)
		case *ast.ExtendElement:
			// Extend declarations always add in a global scope regardless of nesting.
			p.file.Extends = append(p.file.Extends, decl)
		case *ast.ReservedElement:
			msg.Reserveds = append(msg.Reserveds, decl)
		}
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// readBlock reads declarations up to and including the closing brace,
// passing each non-nil one to add.
func (p *protoParser) readBlock(ctx context, add func(any)) error {
	if err := p.r.Require('{'); err != nil {
		return err
	}
	for {
		documentation, err := p.r.ReadDocumentation()
		if err != nil {
			return err
		}
		if done, err := p.r.TryChar('}'); err != nil {
			return err
		} else if done {
			return nil
		}
		decl, err := p.readDeclaration(documentation, ctx)
		if err != nil {
			return err
		}
		if decl != nil {
			add(decl)
		}
	}
}

func (p *protoParser) readExtend(loc ast.Location, documentation string) (*ast.ExtendElement, error) {
	name, err := p.r.ReadName()
	if err != nil {
		return nil, err
	}
	extend := &ast.ExtendElement{Location: loc, Name: name, Documentation: documentation}
	err = p.readBlock(contextExtend, func(decl any) {
		if field, ok := decl.(*ast.FieldElement); ok {
			extend.Fields = append(extend.Fields, field)
		}
	})
	if err != nil {
		return nil, err
	}
	return extend, nil
}

func (p *protoParser) readService(loc ast.Location, documentation string) (*ast.ServiceElement, error) {
	name, err := p.r.ReadName()
	if err != nil {
		return nil, err
	}
	svc := &ast.ServiceElement{Location: loc, Name: name, Documentation: documentation}
	err = p.readBlock(contextService, func(decl any) {
		switch decl := decl.(type) {
		case *ast.RPCElement:
			svc.RPCs = append(svc.RPCs, decl)
		case *ast.OptionElement:
			svc.Options = append(svc.Options, decl)
		}
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (p *protoParser) readEnum(loc ast.Location, documentation string) (*ast.EnumElement, error) {
	name, err := p.r.ReadName()
	if err != nil {
		return nil, err
	}
	enum := &ast.EnumElement{Location: loc, Name: name, Documentation: documentation}
	err = p.readBlock(contextEnum, func(decl any) {
		switch decl := decl.(type) {
		case *ast.EnumConstantElement:
			enum.Constants = append(enum.Constants, decl)
		case *ast.OptionElement:
			enum.Options = append(enum.Options, decl)
		case *ast.ReservedElement:
			enum.Reserveds = append(enum.Reserveds, decl)
		}
	})
	if err != nil {
		return nil, err
	}
	return enum, nil
}

// readField reads a field whose first word, either a label or a type, has
// already been read. It returns a *ast.FieldElement or, for groups, a
// *ast.GroupElement.
func (p *protoParser) readField(documentation string, loc ast.Location, word string) (any, error) {
	var label ast.Label
	var typ string
	var err error
	switch word {
	case "required", "optional", "repeated":
		label = map[string]ast.Label{
			"required": ast.LabelRequired,
			"optional": ast.LabelOptional,
			"repeated": ast.LabelRepeated,
		}[word]
		if label != ast.LabelRepeated && p.file.Syntax == ast.Proto3 {
			return nil, errorAt(loc, "'%s' label forbidden in proto3 field declarations", word)
		}
		if typ, err = p.r.ReadDataType(); err != nil {
			return nil, err
		}
	default:
		next, err := p.r.PeekChar()
		if err != nil {
			return nil, err
		}
		if p.file.Syntax != ast.Proto3 && (word != "map" || next != '<') {
			return nil, errorAt(loc, "unexpected label: %s", word)
		}
		if typ, err = p.r.ReadDataTypeNamed(word); err != nil {
			return nil, err
		}
	}
	if strings.HasPrefix(typ, "map<") && label != ast.LabelNone {
		return nil, errorAt(loc, "'map' type cannot have label")
	}
	if typ == "group" {
		return p.readGroup(loc, documentation, label)
	}
	return p.readFieldNamed(loc, documentation, label, typ)
}

func (p *protoParser) readFieldNamed(loc ast.Location, documentation string, label ast.Label, typ string) (*ast.FieldElement, error) {
	name, err := p.r.ReadName()
	if err != nil {
		return nil, err
	}
	if err := p.r.Require('='); err != nil {
		return nil, err
	}
	tag, err := p.r.ReadInt()
	if err != nil {
		return nil, err
	}
	options, err := NewOptionReader(p.r).ReadOptions()
	if err != nil {
		return nil, err
	}
	field := &ast.FieldElement{
		Location: loc,
		Label:    label,
		Type:     typ,
		Name:     name,
		Tag:      tag,
	}
	// Defaults and JSON names aren't options.
	options, field.DefaultValue, field.HasDefault = stripValue("default", options)
	options, field.JSONName, _ = stripValue("json_name", options)
	if len(options) > 0 {
		field.Options = options
	}
	if err := p.r.Require(';'); err != nil {
		return nil, err
	}
	if field.Documentation, err = p.r.TryAppendTrailingDocumentation(documentation); err != nil {
		return nil, err
	}
	return field, nil
}

// stripValue removes the options called name and returns the value of the
// last one.
func stripValue(name string, options []*ast.OptionElement) ([]*ast.OptionElement, string, bool) {
	var value string
	var found bool
	kept := options[:0:0]
	for _, opt := range options {
		if opt.Name == name && !opt.Parenthesized {
			value, found = fmt.Sprint(opt.Value), true
			continue
		}
		kept = append(kept, opt)
	}
	return kept, value, found
}

func (p *protoParser) readOneOf(loc ast.Location, documentation string) (*ast.OneOfElement, error) {
	name, err := p.r.ReadName()
	if err != nil {
		return nil, err
	}
	oneOf := &ast.OneOfElement{Location: loc, Name: name, Documentation: documentation}
	if err := p.r.Require('{'); err != nil {
		return nil, err
	}
	for {
		nestedDocumentation, err := p.r.ReadDocumentation()
		if err != nil {
			return nil, err
		}
		if done, err := p.r.TryChar('}'); err != nil {
			return nil, err
		} else if done {
			return oneOf, nil
		}
		fieldLoc := p.r.Location()
		typ, err := p.r.ReadDataType()
		if err != nil {
			return nil, err
		}
		switch typ {
		case "group":
			group, err := p.readGroup(fieldLoc, nestedDocumentation, ast.LabelNone)
			if err != nil {
				return nil, err
			}
			oneOf.Groups = append(oneOf.Groups, group)
		case "option":
			opt, err := NewOptionReader(p.r).ReadOption('=')
			if err != nil {
				return nil, err
			}
			if err := p.r.Require(';'); err != nil {
				return nil, err
			}
			oneOf.Options = append(oneOf.Options, opt)
		default:
			field, err := p.readFieldNamed(fieldLoc, nestedDocumentation, ast.LabelNone, typ)
			if err != nil {
				return nil, err
			}
			oneOf.Fields = append(oneOf.Fields, field)
		}
	}
}

func (p *protoParser) readGroup(loc ast.Location, documentation string, label ast.Label) (*ast.GroupElement, error) {
	name, err := p.r.ReadWord()
	if err != nil {
		return nil, err
	}
	if err := p.r.Require('='); err != nil {
		return nil, err
	}
	tag, err := p.r.ReadInt()
	if err != nil {
		return nil, err
	}
	group := &ast.GroupElement{Location: loc, Label: label, Name: name, Tag: tag, Documentation: documentation}
	if err := p.r.Require('{'); err != nil {
		return nil, err
	}
	for {
		nestedDocumentation, err := p.r.ReadDocumentation()
		if err != nil {
			return nil, err
		}
		if done, err := p.r.TryChar('}'); err != nil {
			return nil, err
		} else if done {
			return group, nil
		}
		fieldLoc := p.r.Location()
		fieldLabel, err := p.r.ReadWord()
		if err != nil {
			return nil, err
		}
		decl, err := p.readField(nestedDocumentation, fieldLoc, fieldLabel)
		if err != nil {
			return nil, err
		}
		field, ok := decl.(*ast.FieldElement)
		if !ok {
			return nil, errorAt(fieldLoc, "expected field declaration in group %s", name)
		}
		group.Fields = append(group.Fields, field)
	}
}

func (p *protoParser) readReserved(loc ast.Location, documentation string, ctx context) (*ast.ReservedElement, error) {
	maxTag := internal.MaxNormalTag
	if ctx == contextEnum {
		maxTag = math.MaxInt32
	}
	reserved := &ast.ReservedElement{Location: loc}
	for {
		c, err := p.r.PeekChar()
		if err != nil {
			return nil, err
		}
		if c == '"' || c == '\'' {
			name, err := p.r.ReadQuotedString()
			if err != nil {
				return nil, err
			}
			reserved.Values = append(reserved.Values, ast.ReservedValue{Name: name})
		} else {
			tagRange, err := p.readTagRange(loc, maxTag)
			if err != nil {
				return nil, err
			}
			reserved.Values = append(reserved.Values, ast.ReservedValue{Range: &tagRange})
		}
		if done, err := p.readListSeparator(); err != nil {
			return nil, err
		} else if done {
			break
		}
	}
	var err error
	if reserved.Documentation, err = p.r.TryAppendTrailingDocumentation(documentation); err != nil {
		return nil, err
	}
	return reserved, nil
}

func (p *protoParser) readExtensions(loc ast.Location, documentation string) (*ast.ExtensionsElement, error) {
	extensions := &ast.ExtensionsElement{Location: loc}
	for {
		tagRange, err := p.readTagRange(loc, internal.MaxNormalTag)
		if err != nil {
			return nil, err
		}
		extensions.Values = append(extensions.Values, tagRange)
		if done, err := p.readListSeparator(); err != nil {
			return nil, err
		} else if done {
			break
		}
	}
	var err error
	if extensions.Documentation, err = p.r.TryAppendTrailingDocumentation(documentation); err != nil {
		return nil, err
	}
	return extensions, nil
}

// readTagRange reads "5", "5 to 10" or "5 to max".
func (p *protoParser) readTagRange(loc ast.Location, maxTag int) (ast.TagRange, error) {
	start, err := p.r.ReadInt()
	if err != nil {
		return ast.TagRange{}, err
	}
	c, err := p.r.PeekChar()
	if err != nil {
		return ast.TagRange{}, err
	}
	if c == ',' || c == ';' {
		return ast.TagRange{Start: start, End: start}, nil
	}
	if word, err := p.r.ReadWord(); err != nil {
		return ast.TagRange{}, err
	} else if word != "to" {
		return ast.TagRange{}, errorAt(loc, "expected ',', ';', or 'to'")
	}
	endLoc := p.r.Location()
	word, err := p.r.ReadWord()
	if err != nil {
		return ast.TagRange{}, err
	}
	if word == "max" {
		return ast.TagRange{Start: start, End: maxTag}, nil
	}
	end, err := strconv.Atoi(word)
	if err != nil {
		return ast.TagRange{}, errorAt(endLoc, "expected an integer but was %s", word)
	}
	return ast.TagRange{Start: start, End: end}, nil
}

// readListSeparator consumes ',' or ';' and reports whether it was ';'.
func (p *protoParser) readListSeparator() (bool, error) {
	c, err := p.r.ReadChar()
	if err != nil {
		return false, err
	}
	switch c {
	case ';':
		return true, nil
	case ',':
		return false, nil
	default:
		return false, p.r.errorf("expected ',' or ';'")
	}
}

func (p *protoParser) readEnumConstant(documentation string, loc ast.Location, name string) (*ast.EnumConstantElement, error) {
	if err := p.r.Require('='); err != nil {
		return nil, err
	}
	tag, err := p.r.ReadInt()
	if err != nil {
		return nil, err
	}
	options, err := NewOptionReader(p.r).ReadOptions()
	if err != nil {
		return nil, err
	}
	if err := p.r.Require(';'); err != nil {
		return nil, err
	}
	if documentation, err = p.r.TryAppendTrailingDocumentation(documentation); err != nil {
		return nil, err
	}
	return &ast.EnumConstantElement{
		Location:      loc,
		Name:          name,
		Tag:           tag,
		Documentation: documentation,
		Options:       options,
	}, nil
}

func (p *protoParser) readRPC(loc ast.Location, documentation string) (*ast.RPCElement, error) {
	name, err := p.r.ReadName()
	if err != nil {
		return nil, err
	}
	rpc := &ast.RPCElement{Location: loc, Name: name, Documentation: documentation}
	if rpc.RequestType, rpc.RequestStreaming, err = p.readRPCType(); err != nil {
		return nil, err
	}
	if word, err := p.r.ReadWord(); err != nil {
		return nil, err
	} else if word != "returns" {
		return nil, errorAt(loc, "expected 'returns'")
	}
	if rpc.ResponseType, rpc.ResponseStreaming, err = p.readRPCType(); err != nil {
		return nil, err
	}
	if block, err := p.r.TryChar('{'); err != nil {
		return nil, err
	} else if !block {
		return rpc, p.r.Require(';')
	}
	p.r.PushBack('{')
	err = p.readBlock(contextRPC, func(decl any) {
		if opt, ok := decl.(*ast.OptionElement); ok {
			rpc.Options = append(rpc.Options, opt)
		}
	})
	if err != nil {
		return nil, err
	}
	return rpc, nil
}

// readRPCType reads "(Type)" or "(stream Type)".
func (p *protoParser) readRPCType() (string, bool, error) {
	if err := p.r.Require('('); err != nil {
		return "", false, err
	}
	word, err := p.r.ReadWord()
	if err != nil {
		return "", false, err
	}
	streaming := word == "stream"
	if streaming {
		word, err = p.r.ReadDataType()
	} else {
		word, err = p.r.ReadDataTypeNamed(word)
	}
	if err != nil {
		return "", false, err
	}
	return word, streaming, p.r.Require(')')
}
