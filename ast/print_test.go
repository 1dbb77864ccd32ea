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

package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/protoschema/internal"
)

func TestMessageToSchema(t *testing.T) {
	t.Parallel()
	msg := &MessageElement{
		Name:          "Foo",
		Documentation: "Doc.",
		Reserveds: []*ReservedElement{{Values: []ReservedValue{
			{Range: &TagRange{Start: 2, End: 2}},
			{Range: &TagRange{Start: 5, End: internal.MaxNormalTag}},
			{Name: "x"},
		}}},
		Fields: []*FieldElement{
			{
				Label: LabelOptional, Type: "string", Name: "a", Tag: 1,
				HasDefault: true, DefaultValue: `q"`, Documentation: "Field a.",
			},
			{
				Label: LabelRepeated, Type: "int32", Name: "b", Tag: 2,
				Options: []*OptionElement{
					NewOption("packed", OptionKindBool, "true"),
					NewOption("deprecated", OptionKindBool, "true"),
				},
			},
		},
		NestedTypes: []TypeElement{
			&EnumElement{Name: "E", Constants: []*EnumConstantElement{{Name: "Z", Tag: 0}}},
		},
	}
	want := `// Doc.
message Foo {
  reserved 2, 5 to max, "x";

  // Field a.
  optional string a = 1 [default = "q\""];
  repeated int32 b = 2 [
    packed = true,
    deprecated = true
  ];

  enum E {
    Z = 0;
  }
}
`
	assert.Equal(t, want, msg.ToSchema())
	assert.Equal(t, "message Empty {}\n", (&MessageElement{Name: "Empty"}).ToSchema())
}

func TestFileToSchema(t *testing.T) {
	t.Parallel()
	file := &FileElement{
		Syntax:        Proto3,
		PackageName:   "a.b",
		Imports:       []string{"x.proto"},
		PublicImports: []string{"y.proto"},
		Options:       []*OptionElement{NewOption("java_package", OptionKindString, "p")},
		Types:         []TypeElement{&MessageElement{Name: "M"}},
		Services: []*ServiceElement{{
			Name: "S",
			RPCs: []*RPCElement{{Name: "Do", RequestType: "M", ResponseType: "M", ResponseStreaming: true}},
		}},
	}
	want := `syntax = "proto3";

package a.b;

import "x.proto";
import public "y.proto";

option java_package = "p";

message M {}

service S {
  rpc Do (M) returns (stream M);
}
`
	assert.Equal(t, want, file.ToSchema())
	assert.Empty(t, (&FileElement{}).ToSchema())
}

func TestOptionToSchema(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		option *OptionElement
		want   string
	}{
		{
			name:   "string",
			option: NewOption("go_package", OptionKindString, "a\x01b\tc"),
			want:   `option go_package = "a\001b\tc";` + "\n",
		},
		{
			name:   "enum",
			option: NewOption("optimize_for", OptionKindEnum, "SPEED"),
			want:   "option optimize_for = SPEED;\n",
		},
		{
			name: "subfield",
			option: &OptionElement{
				Name: "foo", Kind: OptionKindOption, Parenthesized: true,
				Value: NewOption("bar", OptionKindNumber, "3"),
			},
			want: "option (foo).bar = 3;\n",
		},
		{
			name: "map",
			option: &OptionElement{
				Name: "rules", Kind: OptionKindMap, Parenthesized: true,
				Value: OptionMap{
					{Key: "min", Value: OptionPrimitive{Kind: OptionKindNumber, Value: "1"}},
					{Key: "tags", Value: []any{OptionPrimitive{Kind: OptionKindString, Value: "a"}}},
				},
			},
			want: `option (rules) = {
  min: 1,
  tags: [
    "a"
  ]
};
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.option.ToSchemaDeclaration())
		})
	}
}

func TestFieldToSchemaJSONName(t *testing.T) {
	t.Parallel()
	field := &FieldElement{Type: "int32", Name: "x", Tag: 1, JSONName: "y"}
	assert.Equal(t, "int32 x = 1 [json_name = \"y\"];\n", field.ToSchema())
	field = &FieldElement{Type: "Color", Name: "c", Tag: 2, Label: LabelOptional, HasDefault: true, DefaultValue: "RED"}
	assert.Equal(t, "optional Color c = 2 [default = RED];\n", field.ToSchema())
}

func TestLocationString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a.proto", NewLocation("", "a.proto").String())
	assert.Equal(t, "src/a.proto", NewLocation("src", "a.proto").String())
	assert.Equal(t, "src/a.proto:3:7", NewLocation("src", "a.proto").At(3, 7).String())
	assert.Equal(t, "a.proto:3", NewLocation("", "a.proto").At(3, 0).String())
	assert.Equal(t, Location{Path: "a.proto"}, NewLocation("src", "a.proto").At(1, 1).WithPathOnly())
}

func TestParseSyntax(t *testing.T) {
	t.Parallel()
	syntax, err := ParseSyntax("proto3")
	assert.NoError(t, err)
	assert.Equal(t, Proto3, syntax)
	_, err = ParseSyntax("editions")
	assert.EqualError(t, err, "unexpected syntax: editions")
}
