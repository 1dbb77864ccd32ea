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

	"github.com/bufbuild/protoschema/schema"
)

func TestMarkSet(t *testing.T) {
	t.Parallel()
	rules, err := schema.NewPruningRulesBuilder().
		Exclude("p.Hidden", "p.Visible#secret").
		Build()
	require.NoError(t, err)

	visible := schema.ProtoTypeOf("p.Visible")
	hidden := schema.ProtoTypeOf("p.Hidden")
	restricted := schema.ProtoTypeOf("p.Restricted")

	marks := schema.NewMarkSet(rules)
	assert.EqualError(t, marks.RootType(hidden), "cannot include excluded type p.Hidden")
	assert.EqualError(t, marks.RootMember(schema.NewProtoMember(visible, "secret")),
		"cannot include excluded member p.Visible#secret")
	assert.False(t, marks.ContainsType(hidden))

	require.NoError(t, marks.RootType(visible))
	assert.True(t, marks.ContainsType(visible))
	assert.True(t, marks.ContainsMember(schema.NewProtoMember(visible, "name")))
	assert.False(t, marks.ContainsMember(schema.NewProtoMember(visible, "secret")))
	assert.False(t, marks.MarkType(visible), "already marked")
	assert.False(t, marks.MarkMember(schema.NewProtoMember(visible, "name")), "covered by the type")

	require.NoError(t, marks.RootMember(schema.NewProtoMember(restricted, "a")))
	assert.True(t, marks.ContainsType(restricted))
	assert.True(t, marks.ContainsMember(schema.NewProtoMember(restricted, "a")))
	assert.False(t, marks.ContainsMember(schema.NewProtoMember(restricted, "b")))
	assert.True(t, marks.MarkMember(schema.NewProtoMember(restricted, "b")))
	assert.False(t, marks.MarkMember(schema.NewProtoMember(restricted, "b")))

	// Marking the type wholesale lifts the restriction.
	assert.True(t, marks.MarkType(restricted))
	assert.True(t, marks.ContainsMember(schema.NewProtoMember(restricted, "c")))

	assert.False(t, marks.MarkType(schema.TypeString))
	assert.False(t, marks.MarkType(schema.NewMapType(schema.TypeString, visible)))
	assert.False(t, marks.MarkType(hidden))
	assert.False(t, marks.ContainsType(schema.TypeString))
}
