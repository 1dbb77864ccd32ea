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
	"strings"

	"github.com/bufbuild/protoschema/internal"
)

// ProtoType names a scalar, a map or a declared message or enum. It is
// comparable; two values are equal when their canonical names are.
//
// Declared types are named by their fully-qualified name without a leading
// dot, like "squareup.dinosaurs.Dinosaur". Map types are written
// "map<K, V>".
type ProtoType struct {
	name string
}

// Scalar types.
var (
	TypeBool     = ProtoType{"bool"}
	TypeBytes    = ProtoType{"bytes"}
	TypeDouble   = ProtoType{"double"}
	TypeFloat    = ProtoType{"float"}
	TypeFixed32  = ProtoType{"fixed32"}
	TypeFixed64  = ProtoType{"fixed64"}
	TypeInt32    = ProtoType{"int32"}
	TypeInt64    = ProtoType{"int64"}
	TypeSfixed32 = ProtoType{"sfixed32"}
	TypeSfixed64 = ProtoType{"sfixed64"}
	TypeSint32   = ProtoType{"sint32"}
	TypeSint64   = ProtoType{"sint64"}
	TypeString   = ProtoType{"string"}
	TypeUint32   = ProtoType{"uint32"}
	TypeUint64   = ProtoType{"uint64"}
)

// ProtoTypeOf returns the type with the given name. Scalar keywords and
// "map<K, V>" forms are recognized; anything else is a declared type, and a
// leading dot is dropped.
func ProtoTypeOf(name string) ProtoType {
	if _, ok := internal.ScalarTypes[name]; ok {
		return ProtoType{name}
	}
	if inner, ok := strings.CutPrefix(name, "map<"); ok && strings.HasSuffix(inner, ">") {
		if key, value, ok := strings.Cut(inner[:len(inner)-1], ","); ok {
			return NewMapType(ProtoTypeOf(strings.TrimSpace(key)), ProtoTypeOf(strings.TrimSpace(value)))
		}
	}
	return ProtoType{strings.TrimPrefix(name, ".")}
}

// NewMapType returns the type of a map field.
func NewMapType(key, value ProtoType) ProtoType {
	return ProtoType{"map<" + key.name + ", " + value.name + ">"}
}

func (t ProtoType) String() string {
	return t.name
}

// IsZero reports whether t is the zero ProtoType.
func (t ProtoType) IsZero() bool {
	return t.name == ""
}

func (t ProtoType) IsScalar() bool {
	_, ok := internal.ScalarTypes[t.name]
	return ok
}

func (t ProtoType) IsMap() bool {
	return strings.HasPrefix(t.name, "map<")
}

// KeyType returns the key type of a map type, or the zero ProtoType.
func (t ProtoType) KeyType() ProtoType {
	key, _ := t.mapTypes()
	return key
}

// ValueType returns the value type of a map type, or the zero ProtoType.
func (t ProtoType) ValueType() ProtoType {
	_, value := t.mapTypes()
	return value
}

func (t ProtoType) mapTypes() (ProtoType, ProtoType) {
	if !t.IsMap() {
		return ProtoType{}, ProtoType{}
	}
	key, value, _ := strings.Cut(t.name[len("map<"):len(t.name)-1], ", ")
	return ProtoType{key}, ProtoType{value}
}

// SimpleName returns the last dotted segment of the name.
func (t ProtoType) SimpleName() string {
	if t.IsMap() {
		return t.name
	}
	return t.name[strings.LastIndexByte(t.name, '.')+1:]
}

// EnclosingTypeOrPackage returns everything before the last dot, which is
// the name of the enclosing type or the package. It is empty for top-level
// types in files without a package.
func (t ProtoType) EnclosingTypeOrPackage() string {
	if t.IsMap() {
		return ""
	}
	if i := strings.LastIndexByte(t.name, '.'); i >= 0 {
		return t.name[:i]
	}
	return ""
}

// NestedType returns the type called name declared inside t.
func (t ProtoType) NestedType(name string) ProtoType {
	if t.name == "" {
		return ProtoType{name}
	}
	return ProtoType{t.name + "." + name}
}

// ProtoMember identifies a field, enum constant or rpc. Extension fields are
// identified by their fully-qualified name, like
// "google.protobuf.FieldOptions#squareup.redacted".
type ProtoMember struct {
	Type   ProtoType
	Member string
}

// NewProtoMember returns the member called member of t.
func NewProtoMember(t ProtoType, member string) ProtoMember {
	return ProtoMember{Type: t, Member: member}
}

// String returns "Type#member".
func (m ProtoMember) String() string {
	return m.Type.name + "#" + m.Member
}

// IsZero reports whether m is the zero ProtoMember.
func (m ProtoMember) IsZero() bool {
	return m.Type.IsZero() && m.Member == ""
}
