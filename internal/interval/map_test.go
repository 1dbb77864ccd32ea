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

package interval_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/protoschema/internal/interval"
)

func TestInsert(t *testing.T) {
	t.Parallel()

	type r struct {
		start, end int
		value      string
	}

	tests := []struct {
		name   string
		ranges []r
		want   string // If not "", the value of the overlap for the last range.
	}{
		{name: "empty", ranges: []r{{0, 9, "foo"}}},
		{name: "after", ranges: []r{{0, 9, "foo"}, {30, 39, "bar"}}},
		{name: "before", ranges: []r{{30, 39, "bar"}, {0, 9, "foo"}}},
		{name: "between", ranges: []r{{0, 9, "foo"}, {30, 39, "bar"}, {10, 29, "baz"}}},
		{name: "inside", ranges: []r{{0, 9, "foo"}, {1, 2, "baz"}}, want: "foo"},
		{name: "same", ranges: []r{{0, 9, "foo"}, {0, 9, "baz"}}, want: "foo"},
		{name: "touching end", ranges: []r{{0, 9, "foo"}, {30, 39, "bar"}, {9, 12, "baz"}}, want: "foo"},
		{name: "touching start", ranges: []r{{0, 9, "foo"}, {30, 39, "bar"}, {20, 30, "baz"}}, want: "bar"},
		{name: "spanning", ranges: []r{{0, 9, "foo"}, {30, 39, "bar"}, {-2, 40, "baz"}}, want: "foo"},
		{name: "negative", ranges: []r{{0, 10, "foo"}, {-2, 0, "baz"}}, want: "foo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := new(interval.Map[int, string])
			for i, e := range tt.ranges {
				overlap := m.Insert(e.start, e.end, e.value)
				if i < len(tt.ranges)-1 || tt.want == "" {
					require.Nil(t, overlap.Value, "inserting %v into %v", e, m)
					continue
				}
				require.NotNil(t, overlap.Value)
				assert.Equal(t, tt.want, *overlap.Value)
			}
		})
	}
}

func TestGet(t *testing.T) {
	t.Parallel()
	m := new(interval.Map[int, string])
	m.Insert(1, 1, "one")
	m.Insert(5, 10, "five")
	m.Insert(100, 536870911, "max")

	for key, want := range map[int]string{1: "one", 5: "five", 7: "five", 10: "five", 100: "max", 536870911: "max"} {
		got := m.Get(key)
		require.NotNil(t, got.Value, "key %d", key)
		assert.Equal(t, want, *got.Value, "key %d", key)
	}
	for _, key := range []int{0, 2, 4, 11, 99, 536870912} {
		assert.Nil(t, m.Get(key).Value, "key %d", key)
	}

	var ranges []string
	for iv := range m.Intervals() {
		ranges = append(ranges, fmt.Sprintf("%d-%d", iv.Start, iv.End))
	}
	assert.Equal(t, []string{"1-1", "5-10", "100-536870911"}, ranges)
	assert.Equal(t, 3, m.Len())
}
