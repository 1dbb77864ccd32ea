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
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/protoschema/ast"
	"github.com/bufbuild/protoschema/reporter"
)

var ignoreLocations = cmpopts.IgnoreTypes(ast.Location{})

func parseForTest(t *testing.T, source string) *ast.FileElement {
	t.Helper()
	file, err := ParseString(ast.NewLocation("", "test.proto"), source)
	require.NoError(t, err)
	return file
}

func TestEmptyParse(t *testing.T) {
	t.Parallel()
	var warnings []reporter.ErrorWithPos
	handler := reporter.NewHandler(reporter.NewReporter(nil, func(err reporter.ErrorWithPos) {
		warnings = append(warnings, err)
	}))
	file, err := Parse(ast.NewLocation("", "foo.proto"), strings.NewReader(""), handler)
	require.NoError(t, err)
	assert.Equal(t, "foo.proto", file.Location.Path)
	assert.Empty(t, file.Types)
	assert.Empty(t, file.Services)
	require.Len(t, warnings, 1)
	assert.ErrorIs(t, warnings[0], ErrNoSyntax)
	assert.Equal(t, "foo.proto", warnings[0].GetPosition().Path)
}

func TestJunkParse(t *testing.T) {
	t.Parallel()
	inputs := map[string]string{
		"quotes":     `'';`,
		"dot":        `.`,
		"brace":      `}`,
		"open":       `message Foo {`,
		"nested":     `message Foo { message`,
		"bare field": `int32 x = 1;`,
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			handler := reporter.NewHandler(nil)
			_, err := Parse(ast.NewLocation("", name+".proto"), strings.NewReader(input), handler)
			require.Error(t, err)
			assert.Len(t, handler.Reported(), 1)
		})
	}
}

func TestParseProto2(t *testing.T) {
	t.Parallel()
	file := parseForTest(t, `
// Leading comment is not documentation for the syntax.
syntax = "proto2";

package squareup.test;

import "a.proto";
import public "b.proto";
import weak "c.proto";

option java_package = "com.squareup.test";

// A message.
message Foo {
  reserved 2, 15, 9 to 11, 40 to max;
  reserved "bar", "baz";
  option deprecated = true;

  required int32 id = 1; // The id.
  optional string name = 3 [default = "x", json_name = "n", (custom) = 1];
  repeated .squareup.test.Foo.Nested children = 4 [packed = false];
  map<string, Nested> by_name = 5;

  oneof choice {
    option (oneof_opt) = 2;
    string a = 6;
    group G = 7 {
      optional int32 g = 8;
    }
  }

  optional group Result = 12 {
    required string url = 13;
  }

  extensions 100 to 199, 500;

  message Nested {
    extend Foo {
      optional int32 nested_ext = 101;
    }
  }
  ;
}

enum Kind {
  option allow_alias = true;
  reserved 3 to max;
  UNKNOWN = 0;
  OTHER = 1 [deprecated = true];
}

extend Foo {
  optional string ext = 100;
}

service Greeter {
  option (svc) = "s";
  rpc Greet (Foo) returns (stream Foo);
  rpc Chat (stream Foo) returns (Foo) {
    option deprecated = true;
  }
}
`)

	want := &ast.FileElement{
		PackageName:   "squareup.test",
		Syntax:        ast.Proto2,
		Imports:       []string{"a.proto"},
		PublicImports: []string{"b.proto"},
		WeakImports:   []string{"c.proto"},
		Options: []*ast.OptionElement{
			ast.NewOption("java_package", ast.OptionKindString, "com.squareup.test"),
		},
		Types: []ast.TypeElement{
			&ast.MessageElement{
				Name:          "Foo",
				Documentation: "A message.",
				Reserveds: []*ast.ReservedElement{
					{Values: []ast.ReservedValue{
						{Range: &ast.TagRange{Start: 2, End: 2}},
						{Range: &ast.TagRange{Start: 15, End: 15}},
						{Range: &ast.TagRange{Start: 9, End: 11}},
						{Range: &ast.TagRange{Start: 40, End: 536870911}},
					}},
					{Values: []ast.ReservedValue{{Name: "bar"}, {Name: "baz"}}},
				},
				Options: []*ast.OptionElement{
					ast.NewOption("deprecated", ast.OptionKindBool, "true"),
				},
				Fields: []*ast.FieldElement{
					{Label: ast.LabelRequired, Type: "int32", Name: "id", Tag: 1, Documentation: "The id."},
					{
						Label: ast.LabelOptional, Type: "string", Name: "name", Tag: 3,
						DefaultValue: "x", HasDefault: true, JSONName: "n",
						Options: []*ast.OptionElement{
							{Name: "custom", Kind: ast.OptionKindNumber, Value: "1", Parenthesized: true},
						},
					},
					{
						Label: ast.LabelRepeated, Type: ".squareup.test.Foo.Nested", Name: "children", Tag: 4,
						Options: []*ast.OptionElement{ast.NewOption("packed", ast.OptionKindBool, "false")},
					},
					{Type: "map<string, Nested>", Name: "by_name", Tag: 5},
				},
				OneOfs: []*ast.OneOfElement{
					{
						Name: "choice",
						Options: []*ast.OptionElement{
							{Name: "oneof_opt", Kind: ast.OptionKindNumber, Value: "2", Parenthesized: true},
						},
						Fields: []*ast.FieldElement{{Type: "string", Name: "a", Tag: 6}},
						Groups: []*ast.GroupElement{
							{
								Name: "G", Tag: 7,
								Fields: []*ast.FieldElement{
									{Label: ast.LabelOptional, Type: "int32", Name: "g", Tag: 8},
								},
							},
						},
					},
				},
				Groups: []*ast.GroupElement{
					{
						Label: ast.LabelOptional, Name: "Result", Tag: 12,
						Fields: []*ast.FieldElement{
							{Label: ast.LabelRequired, Type: "string", Name: "url", Tag: 13},
						},
					},
				},
				Extensions: []*ast.ExtensionsElement{
					{Values: []ast.TagRange{{Start: 100, End: 199}, {Start: 500, End: 500}}},
				},
				NestedTypes: []ast.TypeElement{
					&ast.MessageElement{Name: "Nested"},
				},
			},
			&ast.EnumElement{
				Name: "Kind",
				Options: []*ast.OptionElement{
					ast.NewOption("allow_alias", ast.OptionKindBool, "true"),
				},
				Reserveds: []*ast.ReservedElement{
					{Values: []ast.ReservedValue{{Range: &ast.TagRange{Start: 3, End: 2147483647}}}},
				},
				Constants: []*ast.EnumConstantElement{
					{Name: "UNKNOWN", Tag: 0},
					{Name: "OTHER", Tag: 1, Options: []*ast.OptionElement{
						ast.NewOption("deprecated", ast.OptionKindBool, "true"),
					}},
				},
			},
		},
		Extends: []*ast.ExtendElement{
			{
				Name: "Foo",
				Fields: []*ast.FieldElement{
					{Label: ast.LabelOptional, Type: "int32", Name: "nested_ext", Tag: 101},
				},
			},
			{
				Name: "Foo",
				Fields: []*ast.FieldElement{
					{Label: ast.LabelOptional, Type: "string", Name: "ext", Tag: 100},
				},
			},
		},
		Services: []*ast.ServiceElement{
			{
				Name: "Greeter",
				Options: []*ast.OptionElement{
					{Name: "svc", Kind: ast.OptionKindString, Value: "s", Parenthesized: true},
				},
				RPCs: []*ast.RPCElement{
					{Name: "Greet", RequestType: "Foo", ResponseType: "Foo", ResponseStreaming: true},
					{
						Name: "Chat", RequestType: "Foo", ResponseType: "Foo", RequestStreaming: true,
						Options: []*ast.OptionElement{ast.NewOption("deprecated", ast.OptionKindBool, "true")},
					},
				},
			},
		},
	}
	assert.Empty(t, cmp.Diff(want, file, ignoreLocations, cmpopts.EquateEmpty()))
}

func TestParseProto3(t *testing.T) {
	t.Parallel()
	file := parseForTest(t, `syntax = "proto3";
message Foo {
  string a = 1;
  repeated int64 b = 2;
  map<int32, Foo> c = 3;
  Foo.Bar d = 4;
}
`)
	msg, ok := file.Types[0].(*ast.MessageElement)
	require.True(t, ok)
	assert.Equal(t, ast.Proto3, file.Syntax)
	require.Len(t, msg.Fields, 4)
	assert.Equal(t, ast.LabelNone, msg.Fields[0].Label)
	assert.Equal(t, ast.LabelRepeated, msg.Fields[1].Label)
	assert.Equal(t, "map<int32, Foo>", msg.Fields[2].Type)
	assert.Equal(t, "Foo.Bar", msg.Fields[3].Type)
}

func TestParseLocations(t *testing.T) {
	t.Parallel()
	file, err := ParseString(ast.NewLocation("/src", "a/b.proto"), `syntax = "proto3";

message Foo {
  string a = 1;
  oneof o {
    int32 b = 2;
  }
}
`)
	require.NoError(t, err)
	assert.Equal(t, ast.Location{Base: "/src", Path: "a/b.proto"}, file.Location)
	msg := file.Types[0].(*ast.MessageElement)
	assert.Equal(t, "/src/a/b.proto:3:1", msg.Location.String())
	assert.Equal(t, "/src/a/b.proto:4:3", msg.Fields[0].Location.String())
	assert.Equal(t, "/src/a/b.proto:5:3", msg.OneOfs[0].Location.String())
	assert.Equal(t, "/src/a/b.proto:6:5", msg.OneOfs[0].Fields[0].Location.String())
}

func TestParseDocumentation(t *testing.T) {
	t.Parallel()
	file := parseForTest(t, `syntax = "proto2";
/**
 * Multi-line
 * documentation.
 */
message Foo {
  // Leading.
  optional int32 a = 1; // Trailing.
  optional int32 b = 2; /* Block trailing. */
}
enum E {
  A = 0; // Zero.
}
`)
	msg := file.Types[0].(*ast.MessageElement)
	assert.Equal(t, "Multi-line\ndocumentation.", msg.Documentation)
	assert.Equal(t, "Leading.\nTrailing.", msg.Fields[0].Documentation)
	assert.Equal(t, "Block trailing.", msg.Fields[1].Documentation)
	enum := file.Types[1].(*ast.EnumElement)
	assert.Equal(t, "Zero.", enum.Constants[0].Documentation)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		source  string
		wantErr string
	}{
		{
			name:    "syntax not first",
			source:  "package a;\nsyntax = \"proto2\";",
			wantErr: "test.proto:2:1: 'syntax' element must be the first declaration in a file",
		},
		{
			name:    "unknown syntax",
			source:  `syntax = "proto4";`,
			wantErr: "unexpected syntax: proto4",
		},
		{
			name:    "two packages",
			source:  "package a;\npackage b;",
			wantErr: "test.proto:2:1: too many package names",
		},
		{
			name:    "package in message",
			source:  "message A { package b; }",
			wantErr: "'package' in MESSAGE",
		},
		{
			name:    "import in message",
			source:  `message A { import "b.proto"; }`,
			wantErr: "'import' in MESSAGE",
		},
		{
			name:    "required in proto3",
			source:  "syntax = \"proto3\";\nmessage A { required int32 a = 1; }",
			wantErr: "'required' label forbidden in proto3 field declarations",
		},
		{
			name:    "optional in proto3",
			source:  "syntax = \"proto3\";\nmessage A { optional int32 a = 1; }",
			wantErr: "'optional' label forbidden in proto3 field declarations",
		},
		{
			name:    "missing label in proto2",
			source:  "syntax = \"proto2\";\nmessage A { int32 a = 1; }",
			wantErr: "unexpected label: int32",
		},
		{
			name:    "labeled map",
			source:  "message A { repeated map<string, string> a = 1; }",
			wantErr: "'map' type cannot have label",
		},
		{
			name:    "rpc outside service",
			source:  "message A { rpc Foo (A) returns (A); }",
			wantErr: "'rpc' in MESSAGE",
		},
		{
			name:    "oneof outside message",
			source:  "oneof o { int32 a = 1; }",
			wantErr: "'oneof' must be nested in message",
		},
		{
			name:    "extensions outside message",
			source:  "extensions 1 to 2;",
			wantErr: "'extensions' must be nested",
		},
		{
			name:    "reserved in file",
			source:  "reserved 1;",
			wantErr: "'reserved' must be nested in message or enum",
		},
		{
			name:    "bad reserved range",
			source:  "message A { reserved 1 too 2; }",
			wantErr: "expected ',', ';', or 'to'",
		},
		{
			name:    "bad range end",
			source:  "message A { extensions 1 to many; }",
			wantErr: "expected an integer but was many",
		},
		{
			name:    "missing returns",
			source:  "service S { rpc Foo (A) gives (A); }",
			wantErr: "expected 'returns'",
		},
		{
			name:    "message in enum",
			source:  "enum E { message M {} }",
			wantErr: "'message' in ENUM",
		},
		{
			name:    "unknown top-level label",
			source:  "frobnicate;",
			wantErr: "test.proto:1:1: unexpected label: frobnicate",
		},
		{
			name:    "missing semicolon",
			source:  "message A { optional int32 a = 1 }",
			wantErr: "expected ';'",
		},
		{
			name:    "unterminated message",
			source:  "message A {",
			wantErr: "unexpected end of file",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler := reporter.NewHandler(nil)
			_, err := Parse(ast.NewLocation("", "test.proto"), strings.NewReader(tt.source), handler)
			require.ErrorContains(t, err, tt.wantErr)
			var ewp reporter.ErrorWithPos
			require.True(t, errors.As(err, &ewp))
			assert.Equal(t, "test.proto", ewp.GetPosition().Path)
			assert.Len(t, handler.Reported(), 1)
		})
	}
}

func TestParseReporterAbort(t *testing.T) {
	t.Parallel()
	abort := errors.New("abort")
	handler := reporter.NewHandler(reporter.NewReporter(func(reporter.ErrorWithPos) error {
		return abort
	}, nil))
	_, err := Parse(ast.NewLocation("", "test.proto"), strings.NewReader("message {"), handler)
	require.ErrorIs(t, err, abort)
}
