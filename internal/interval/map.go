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

// Package interval provides a map keyed by disjoint, inclusive integer
// ranges, used for reserved and extension tag ranges.
package interval

import (
	"cmp"
	"fmt"
	"iter"

	"github.com/tidwall/btree"
)

// Map is a collection of disjoint intervals with an associated value.
// The zero value is empty and ready to use.
type Map[K cmp.Ordered, V any] struct {
	// Keys are the ends of the intervals.
	tree btree.Map[K, *entry[K, V]]
}

// Interval is an entry of a [Map]. A nil Value means no interval.
type Interval[K cmp.Ordered, V any] struct {
	Start, End K
	Value      *V
}

type entry[K cmp.Ordered, V any] struct {
	start K
	value V
}

// Get returns the interval that contains key, if one exists.
func (m *Map[K, V]) Get(key K) Interval[K, V] {
	it := m.tree.Iter()
	if !it.Seek(key) || key < it.Value().start {
		return Interval[K, V]{}
	}
	return Interval[K, V]{Start: it.Value().start, End: it.Key(), Value: &it.Value().value}
}

// Insert adds [start, end] with the given value. Both ends are inclusive.
//
// If the new interval overlaps one already in the map, nothing is inserted
// and the overlapping interval with the least start is returned; otherwise
// the returned Interval has a nil Value.
func (m *Map[K, V]) Insert(start, end K, value V) (overlap Interval[K, V]) {
	if start > end {
		panic(fmt.Sprintf("interval: start (%#v) > end (%#v)", start, end))
	}
	// Intervals are disjoint, so the first one ending at or after start is
	// the only candidate with the least start.
	it := m.tree.Iter()
	if it.Seek(start) && it.Value().start <= end {
		return Interval[K, V]{Start: it.Value().start, End: it.Key(), Value: &it.Value().value}
	}
	m.tree.Set(end, &entry[K, V]{start: start, value: value})
	return Interval[K, V]{}
}

// Len returns the number of intervals.
func (m *Map[K, V]) Len() int {
	return m.tree.Len()
}

// Intervals iterates over the intervals in ascending order.
func (m *Map[K, V]) Intervals() iter.Seq[Interval[K, V]] {
	return func(yield func(Interval[K, V]) bool) {
		it := m.tree.Iter()
		for more := it.First(); more; more = it.Next() {
			if !yield(Interval[K, V]{Start: it.Value().start, End: it.Key(), Value: &it.Value().value}) {
				return
			}
		}
	}
}

// Format implements [fmt.Formatter].
func (m *Map[K, V]) Format(s fmt.State, v rune) {
	fmt.Fprint(s, "{")
	first := true
	m.tree.Scan(func(end K, e *entry[K, V]) bool {
		if !first {
			fmt.Fprint(s, ", ")
		}
		first = false
		if e.start == end {
			fmt.Fprintf(s, "%#v: ", e.start)
		} else {
			fmt.Fprintf(s, "[%#v, %#v]: ", e.start, end)
		}
		fmt.Fprintf(s, fmt.FormatString(s, v), e.value)
		return true
	})
	fmt.Fprint(s, "}")
}
