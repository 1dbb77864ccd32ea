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

package schema_test

import (
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/protoschema/ast"
	"github.com/bufbuild/protoschema/parser"
	"github.com/bufbuild/protoschema/schema"
	"github.com/bufbuild/protoschema/wellknownimports"
)

// mapLoader parses sources held in memory and falls back to the core
// imports.
func mapLoader(srcs map[string]string) schema.Loader {
	return wellknownimports.WithCoreImports(schema.LoaderFunc(func(path string) (*schema.ProtoFile, error) {
		src, ok := srcs[path]
		if !ok {
			return nil, fmt.Errorf("%s: %w", path, fs.ErrNotExist)
		}
		element, err := parser.ParseString(ast.NewLocation("", path), src)
		if err != nil {
			return nil, err
		}
		return schema.NewProtoFile(element), nil
	}))
}

// link links the files named by paths, or every file in srcs in an
// unspecified order when paths is empty.
func link(t *testing.T, srcs map[string]string, paths ...string) (*schema.Schema, error) {
	t.Helper()
	if len(paths) == 0 {
		for path := range srcs {
			paths = append(paths, path)
		}
	}
	loader := mapLoader(srcs)
	sources := make([]*schema.ProtoFile, len(paths))
	for i, path := range paths {
		file, err := loader.Load(path)
		require.NoError(t, err)
		sources[i] = file
	}
	return schema.NewLinker(loader, nil).Link(sources)
}

func mustLink(t *testing.T, srcs map[string]string, paths ...string) *schema.Schema {
	t.Helper()
	s, err := link(t, srcs, paths...)
	require.NoError(t, err)
	return s
}

func message(t *testing.T, s *schema.Schema, name string) *schema.MessageType {
	t.Helper()
	m, ok := s.TypeNamed(name).(*schema.MessageType)
	require.True(t, ok, "%s is not a message", name)
	return m
}

func fieldNames(fields []*schema.Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}
	return names
}

func TestSchemaLookups(t *testing.T) {
	t.Parallel()
	s := mustLink(t, map[string]string{
		"a.proto": `syntax = "proto3";
package p;

message M {
  string name = 1;
  message N {}
}

enum E {
  E_UNSPECIFIED = 0;
}

service S {
  rpc Call (M) returns (M.N);
}
`,
	}, "a.proto")

	file := s.ProtoFile("a.proto")
	require.NotNil(t, file)
	assert.Equal(t, "p", file.PackageName())
	assert.Equal(t, ast.Proto3, file.Syntax())
	assert.Nil(t, s.ProtoFile("b.proto"))

	assert.Same(t, file, s.ProtoFileForType(schema.ProtoTypeOf("p.M.N")))
	assert.Same(t, file, s.ProtoFileForType(schema.ProtoTypeOf("p.S")))
	assert.Nil(t, s.ProtoFileForType(schema.ProtoTypeOf("p.Q")))

	assert.IsType(t, &schema.EnumType{}, s.TypeNamed("p.E"))
	assert.Same(t, s.TypeNamed("p.M.N"), s.Type(schema.ProtoTypeOf("p.M.N")))
	assert.Nil(t, s.TypeNamed("p.S"))

	service := s.ServiceNamed("p.S")
	require.NotNil(t, service)
	assert.Same(t, service, s.Service(schema.ProtoTypeOf("p.S")))
	rpc := service.RPC("Call")
	require.NotNil(t, rpc)
	assert.Equal(t, "p.M", rpc.RequestType().String())
	assert.Equal(t, "p.M.N", rpc.ResponseType().String())

	field := s.Field(schema.NewProtoMember(schema.ProtoTypeOf("p.M"), "name"))
	require.NotNil(t, field)
	assert.Equal(t, schema.TypeString, field.Type())
	assert.Nil(t, s.Field(schema.NewProtoMember(schema.ProtoTypeOf("p.M"), "missing")))
}
