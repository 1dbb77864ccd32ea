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
	"fmt"
)

// MarkSet records what a prune keeps. A type is either marked wholesale,
// keeping all of its members that are not excluded, or restricted to the
// members that were marked one by one.
type MarkSet struct {
	rules *PruningRules

	// The value is true for types marked wholesale.
	types   map[ProtoType]bool
	members map[ProtoType]map[string]bool
}

// NewMarkSet returns an empty mark set that honors the excludes of rules.
func NewMarkSet(rules *PruningRules) *MarkSet {
	return &MarkSet{
		rules:   rules,
		types:   map[ProtoType]bool{},
		members: map[ProtoType]map[string]bool{},
	}
}

// RootType marks t wholesale. It is an error to root an excluded type.
func (m *MarkSet) RootType(t ProtoType) error {
	if m.rules.IsExcluded(t.String()) {
		return fmt.Errorf("cannot include excluded type %s", t)
	}
	m.MarkType(t)
	return nil
}

// RootMember marks member. Unless its type is also marked wholesale, the
// type keeps only the members marked this way. It is an error to root an
// excluded member.
func (m *MarkSet) RootMember(member ProtoMember) error {
	if m.rules.IsExcluded(member.String()) {
		return fmt.Errorf("cannot include excluded member %s", member)
	}
	m.MarkMember(member)
	return nil
}

// MarkType marks t wholesale. It reports whether that is new, either
// because t was not marked or because it was restricted to some members.
// Scalars, maps and excluded types are never marked.
func (m *MarkSet) MarkType(t ProtoType) bool {
	if t.IsZero() || t.IsScalar() || t.IsMap() || m.rules.IsExcluded(t.String()) {
		return false
	}
	if m.types[t] {
		return false
	}
	m.types[t] = true
	delete(m.members, t)
	return true
}

// MarkMember marks member and makes its type present. It reports whether
// the member is newly marked; members of types marked wholesale are
// already marked.
func (m *MarkSet) MarkMember(member ProtoMember) bool {
	if m.rules.IsExcluded(member.String()) {
		return false
	}
	wholesale, present := m.types[member.Type]
	if wholesale {
		return false
	}
	if !present {
		m.types[member.Type] = false
	}
	set := m.members[member.Type]
	if set == nil {
		set = map[string]bool{}
		m.members[member.Type] = set
	}
	if set[member.Member] {
		return false
	}
	set[member.Member] = true
	return true
}

// markPresent makes t present without marking any of its members. It
// reports whether t was absent.
func (m *MarkSet) markPresent(t ProtoType) bool {
	if t.IsZero() || t.IsScalar() || t.IsMap() || m.rules.IsExcluded(t.String()) {
		return false
	}
	if _, ok := m.types[t]; ok {
		return false
	}
	m.types[t] = false
	return true
}

// ContainsType reports whether t is kept.
func (m *MarkSet) ContainsType(t ProtoType) bool {
	_, ok := m.types[t]
	return ok
}

// ContainsMember reports whether member is kept.
func (m *MarkSet) ContainsMember(member ProtoMember) bool {
	wholesale, ok := m.types[member.Type]
	switch {
	case !ok:
		return false
	case wholesale:
		return !m.rules.IsExcluded(member.String())
	default:
		return m.members[member.Type][member.Member]
	}
}

// containsFieldType reports whether a field of type t can be kept: scalars
// always can, maps when their value type is kept.
func (m *MarkSet) containsFieldType(t ProtoType) bool {
	switch {
	case t.IsZero() || t.IsScalar():
		return true
	case t.IsMap():
		return m.containsFieldType(t.KeyType()) && m.containsFieldType(t.ValueType())
	default:
		return m.ContainsType(t)
	}
}

