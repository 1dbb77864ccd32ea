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
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/types/descriptorpb"
)

var inventorySources = map[string]string{
	"inventory.proto": `syntax = "proto3";
package inventory;
import "common.proto";
message Item {
  string item_id = 1;
  common.Size size = 2;
  map<string, Item> child_items = 3;
  repeated int32 counts = 4;
  oneof origin {
    string vendor = 5;
    int64 batch = 6;
  }
  enum State {
    STATE_UNKNOWN = 0;
    STATE_READY = 1;
  }
  State state = 7;
  reserved 10 to 12;
  reserved "old";
}
service Inventory {
  rpc Watch(Item) returns (stream Item);
}
`,
	"common.proto": `syntax = "proto3";
package common;
enum Size {
  SIZE_UNKNOWN = 0;
  SIZE_LARGE = 1;
}
`,
}

func TestFileDescriptorSetOrdersImportsFirst(t *testing.T) {
	t.Parallel()
	s := mustLink(t, inventorySources, "inventory.proto")
	set := s.FileDescriptorSet()
	require.Len(t, set.GetFile(), 2)
	assert.Equal(t, "common.proto", set.GetFile()[0].GetName())
	assert.Equal(t, "inventory.proto", set.GetFile()[1].GetName())

	_, err := protodesc.NewFiles(set)
	require.NoError(t, err)
}

func TestFileDescriptorProto(t *testing.T) {
	t.Parallel()
	s := mustLink(t, inventorySources, "inventory.proto")
	fd := s.FileDescriptorProto(s.ProtoFile("inventory.proto"))
	assert.Equal(t, "inventory", fd.GetPackage())
	assert.Equal(t, "proto3", fd.GetSyntax())
	assert.Equal(t, []string{"common.proto"}, fd.GetDependency())

	require.Len(t, fd.GetMessageType(), 1)
	item := fd.GetMessageType()[0]
	assert.Equal(t, "Item", item.GetName())

	fields := map[string]*descriptorpb.FieldDescriptorProto{}
	for _, f := range item.GetField() {
		fields[f.GetName()] = f
	}
	assert.Equal(t, "itemId", fields["item_id"].GetJsonName())
	assert.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_STRING, fields["item_id"].GetType())
	assert.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_ENUM, fields["size"].GetType())
	assert.Equal(t, ".common.Size", fields["size"].GetTypeName())
	assert.Equal(t, descriptorpb.FieldDescriptorProto_LABEL_REPEATED, fields["counts"].GetLabel())
	assert.Equal(t, ".inventory.Item.State", fields["state"].GetTypeName())
	assert.Equal(t, int32(0), fields["vendor"].GetOneofIndex())
	assert.Equal(t, int32(0), fields["batch"].GetOneofIndex())
	require.Len(t, item.GetOneofDecl(), 1)
	assert.Equal(t, "origin", item.GetOneofDecl()[0].GetName())

	childItems := fields["child_items"]
	assert.Equal(t, descriptorpb.FieldDescriptorProto_LABEL_REPEATED, childItems.GetLabel())
	assert.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, childItems.GetType())
	assert.Equal(t, ".inventory.Item.ChildItemsEntry", childItems.GetTypeName())

	var entry *descriptorpb.DescriptorProto
	for _, nested := range item.GetNestedType() {
		if nested.GetName() == "ChildItemsEntry" {
			entry = nested
		}
	}
	require.NotNil(t, entry)
	assert.True(t, entry.GetOptions().GetMapEntry())
	require.Len(t, entry.GetField(), 2)
	assert.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_STRING, entry.GetField()[0].GetType())
	assert.Equal(t, ".inventory.Item", entry.GetField()[1].GetTypeName())

	require.Len(t, item.GetEnumType(), 1)
	assert.Equal(t, "State", item.GetEnumType()[0].GetName())

	require.Len(t, item.GetReservedRange(), 1)
	assert.Equal(t, int32(10), item.GetReservedRange()[0].GetStart())
	assert.Equal(t, int32(13), item.GetReservedRange()[0].GetEnd())
	assert.Equal(t, []string{"old"}, item.GetReservedName())

	require.Len(t, fd.GetService(), 1)
	watch := fd.GetService()[0].GetMethod()[0]
	assert.Equal(t, ".inventory.Item", watch.GetInputType())
	assert.False(t, watch.GetClientStreaming())
	assert.True(t, watch.GetServerStreaming())
}

func TestFileDescriptorProtoExtensions(t *testing.T) {
	t.Parallel()
	s := mustLink(t, map[string]string{
		"a.proto": `syntax = "proto2";
package a;
option java_package = "com.example.a";
message Base {
  extensions 100 to max;
}
extend Base {
  optional string note = 100;
}
`,
	}, "a.proto")
	fd := s.FileDescriptorProto(s.ProtoFile("a.proto"))
	assert.Empty(t, fd.GetSyntax())
	assert.Equal(t, "com.example.a", fd.GetOptions().GetJavaPackage())
	require.Len(t, fd.GetExtension(), 1)
	ext := fd.GetExtension()[0]
	assert.Equal(t, ".a.Base", ext.GetExtendee())
	assert.Equal(t, int32(100), ext.GetNumber())
	require.Len(t, fd.GetMessageType()[0].GetExtensionRange(), 1)
	assert.Equal(t, int32(100), fd.GetMessageType()[0].GetExtensionRange()[0].GetStart())
}
