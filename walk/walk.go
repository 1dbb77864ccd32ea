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

// Package walk provides helper functions for traversing all elements in a
// schema. Each element is visited together with the identifier that pruning
// rules use for it: "pkg.Type" for types and services, and
// "pkg.Type#member" for fields, oneofs, enum constants and rpcs. Extension
// fields are named by their extendee and qualified name, like
// "google.protobuf.FieldOptions#pkg.redacted".
package walk

import (
	"github.com/bufbuild/protoschema/schema"
)

// Schema walks every file in s, in the order the files are in the schema.
func Schema(s *schema.Schema, fn func(name string, element any) error) error {
	for _, file := range s.ProtoFiles() {
		if err := Elements(file, fn); err != nil {
			return err
		}
	}
	return nil
}

// Elements walks all elements in the given file. The walk is performed in
// a depth-first order. Types are visited before the types nested inside
// them, and services are visited before their rpcs.
//
// The element is one of schema.Type, *schema.Field, *schema.OneOf,
// *schema.EnumConstant, *schema.Service or *schema.RPC.
//
// If the given function returns an error, the walk aborts and returns that
// error.
func Elements(file *schema.ProtoFile, fn func(name string, element any) error) error {
	return ElementsEnterAndExit(file, fn, nil)
}

// ElementsEnterAndExit walks all elements in the given file. The enter
// function is called when an element is first visited and the exit
// function after all of the element's children have been visited. The exit
// function may be nil.
func ElementsEnterAndExit(file *schema.ProtoFile, enter, exit func(name string, element any) error) error {
	w := &walker{enter: enter, exit: exit}
	for _, t := range file.Types() {
		if err := w.walkType(t); err != nil {
			return err
		}
	}
	for _, extend := range file.Extends() {
		for _, field := range extend.Fields() {
			if err := w.leaf(extend.Member(field).String(), field); err != nil {
				return err
			}
		}
	}
	for _, service := range file.Services() {
		name := service.Type().String()
		if err := w.enter(name, service); err != nil {
			return err
		}
		for _, rpc := range service.RPCs() {
			if err := w.leaf(schema.NewProtoMember(service.Type(), rpc.Name()).String(), rpc); err != nil {
				return err
			}
		}
		if err := w.doExit(name, service); err != nil {
			return err
		}
	}
	return nil
}

type walker struct {
	enter, exit func(string, any) error
}

func (w *walker) doExit(name string, element any) error {
	if w.exit == nil {
		return nil
	}
	return w.exit(name, element)
}

func (w *walker) leaf(name string, element any) error {
	if err := w.enter(name, element); err != nil {
		return err
	}
	return w.doExit(name, element)
}

func (w *walker) walkType(t schema.Type) error {
	name := t.Type().String()
	if err := w.enter(name, t); err != nil {
		return err
	}
	switch t := t.(type) {
	case *schema.MessageType:
		for _, field := range t.Fields() {
			if err := w.leaf(field.Member(t.Type()).String(), field); err != nil {
				return err
			}
		}
		for _, oneOf := range t.OneOfs() {
			oneOfName := schema.NewProtoMember(t.Type(), oneOf.Name()).String()
			if err := w.enter(oneOfName, oneOf); err != nil {
				return err
			}
			for _, field := range oneOf.Fields() {
				if err := w.leaf(field.Member(t.Type()).String(), field); err != nil {
					return err
				}
			}
			if err := w.doExit(oneOfName, oneOf); err != nil {
				return err
			}
		}
	case *schema.EnumType:
		for _, constant := range t.Constants() {
			if err := w.leaf(schema.NewProtoMember(t.Type(), constant.Name()).String(), constant); err != nil {
				return err
			}
		}
	}
	for _, nested := range t.NestedTypes() {
		if err := w.walkType(nested); err != nil {
			return err
		}
	}
	return w.doExit(name, t)
}
