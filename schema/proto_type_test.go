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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/protoschema/schema"
)

func TestProtoTypeOf(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		want      string
		scalar    bool
		isMap     bool
		simple    string
		enclosing string
	}{
		{name: "int32", want: "int32", scalar: true, simple: "int32"},
		{name: "a.b.T", want: "a.b.T", simple: "T", enclosing: "a.b"},
		{name: ".a.b.T", want: "a.b.T", simple: "T", enclosing: "a.b"},
		{name: "T", want: "T", simple: "T"},
		{name: "map<string,a.V>", want: "map<string, a.V>", isMap: true, simple: "map<string, a.V>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			typ := schema.ProtoTypeOf(tt.name)
			assert.Equal(t, tt.want, typ.String())
			assert.Equal(t, tt.scalar, typ.IsScalar())
			assert.Equal(t, tt.isMap, typ.IsMap())
			assert.Equal(t, tt.simple, typ.SimpleName())
			assert.Equal(t, tt.enclosing, typ.EnclosingTypeOrPackage())
		})
	}
}

func TestProtoTypeMaps(t *testing.T) {
	t.Parallel()
	m := schema.NewMapType(schema.TypeString, schema.ProtoTypeOf("a.V"))
	assert.Equal(t, schema.TypeString, m.KeyType())
	assert.Equal(t, schema.ProtoTypeOf("a.V"), m.ValueType())
	assert.True(t, schema.TypeString.KeyType().IsZero())
}

func TestProtoTypeNestedType(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a.T.N", schema.ProtoTypeOf("a.T").NestedType("N").String())
	assert.Equal(t, "N", schema.ProtoType{}.NestedType("N").String())
}

func TestProtoMember(t *testing.T) {
	t.Parallel()
	m := schema.NewProtoMember(schema.ProtoTypeOf("a.T"), "name")
	assert.Equal(t, "a.T#name", m.String())
	assert.False(t, m.IsZero())
	assert.True(t, schema.ProtoMember{}.IsZero())
}

func TestFieldJSONName(t *testing.T) {
	t.Parallel()
	s := mustLink(t, map[string]string{
		"a.proto": `syntax = "proto3";
package a;
message M {
  string first_name = 1;
  string last_name = 2 [json_name = "surname"];
  string _x__y = 3;
}
`,
	}, "a.proto")
	fields := message(t, s, "a.M").Fields()
	assert.Equal(t, "firstName", fields[0].JSONName())
	assert.Empty(t, fields[0].DeclaredJSONName())
	assert.Equal(t, "surname", fields[1].JSONName())
	assert.Equal(t, "XY", fields[2].JSONName())
}
