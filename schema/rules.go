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
	"slices"
	"strings"
	"sync"
)

// Policy is the decision the rules make for one identifier.
type Policy int

const (
	// PolicyUnspecified means no pattern matched and includes were given,
	// so the identifier is kept only if something reachable uses it.
	PolicyUnspecified Policy = iota
	PolicyIncluded
	PolicyExcluded
)

func (p Policy) String() string {
	switch p {
	case PolicyIncluded:
		return "included"
	case PolicyExcluded:
		return "excluded"
	default:
		return "unspecified"
	}
}

// PruningRules decide which types and members survive [Schema.Prune].
//
// Identifiers are type names like "squareup.dinosaurs.Dinosaur" and member
// names like "squareup.dinosaurs.Dinosaur#name". Patterns are one of:
//
//   - "*", matching everything;
//   - "a.b.*", matching everything in package a.b, in packages below it and
//     in types nested in a type a.b;
//   - "a.b.Type", matching the type and its members but not its nested
//     types;
//   - "a.b.Type#member", matching a single member.
//
// Excludes always win over includes. When there are no includes,
// everything that is not excluded is included.
//
// PruningRules are safe for concurrent use.
type PruningRules struct {
	includes []string
	excludes []string

	mu           sync.Mutex
	usedIncludes map[string]bool
	usedExcludes map[string]bool
}

// PruningRulesBuilder collects patterns for [PruningRules].
type PruningRulesBuilder struct {
	includes []string
	excludes []string
}

// NewPruningRulesBuilder returns an empty builder.
func NewPruningRulesBuilder() *PruningRulesBuilder {
	return &PruningRulesBuilder{}
}

// Include adds patterns for the roots of pruning.
func (b *PruningRulesBuilder) Include(patterns ...string) *PruningRulesBuilder {
	b.includes = append(b.includes, patterns...)
	return b
}

// Exclude adds patterns for identifiers to remove.
func (b *PruningRulesBuilder) Exclude(patterns ...string) *PruningRulesBuilder {
	b.excludes = append(b.excludes, patterns...)
	return b
}

// Build validates the patterns. A malformed pattern or a pattern that
// another pattern of the same set already covers is an error. Repeated
// patterns are kept once.
func (b *PruningRulesBuilder) Build() (*PruningRules, error) {
	includes, err := validatePatterns("include", b.includes)
	if err != nil {
		return nil, err
	}
	excludes, err := validatePatterns("exclude", b.excludes)
	if err != nil {
		return nil, err
	}
	return &PruningRules{
		includes:     includes,
		excludes:     excludes,
		usedIncludes: map[string]bool{},
		usedExcludes: map[string]bool{},
	}, nil
}

func validatePatterns(kind string, patterns []string) ([]string, error) {
	var result []string
	set := map[string]bool{}
	for _, pattern := range patterns {
		if err := checkPattern(pattern); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", kind, pattern, err)
		}
		if !set[pattern] {
			set[pattern] = true
			result = append(result, pattern)
		}
	}
	for _, pattern := range result {
		for enclosing := enclosingPattern(pattern); enclosing != ""; enclosing = enclosingPattern(enclosing) {
			if set[enclosing] {
				return nil, fmt.Errorf("redundant %s %q: already matched by %q", kind, pattern, enclosing)
			}
		}
	}
	return result, nil
}

func checkPattern(pattern string) error {
	if pattern == "*" {
		return nil
	}
	typeName, member, hasMember := strings.Cut(pattern, "#")
	if hasMember && (member == "" || strings.ContainsAny(member, "#*")) {
		return fmt.Errorf("malformed member")
	}
	segments := strings.Split(typeName, ".")
	for i, segment := range segments {
		switch {
		case segment == "":
			return fmt.Errorf("empty name segment")
		case segment == "*" && (i != len(segments)-1 || hasMember):
			return fmt.Errorf("'*' must be the last segment")
		case segment != "*" && strings.ContainsAny(segment, "* \t\n"):
			return fmt.Errorf("unexpected character in %q", segment)
		}
	}
	return nil
}

// enclosingPattern returns the next broader pattern that would also match
// identifiers matched by pattern, or the empty string after "*".
//
//	a.b.Type#member -> a.b.Type -> a.b.* -> a.* -> *
func enclosingPattern(pattern string) string {
	if typeName, _, ok := strings.Cut(pattern, "#"); ok {
		return typeName
	}
	if pattern == "*" {
		return ""
	}
	pattern = strings.TrimSuffix(pattern, ".*")
	if i := strings.LastIndexByte(pattern, '.'); i >= 0 {
		return pattern[:i] + ".*"
	}
	return "*"
}

// Includes returns the include patterns.
func (r *PruningRules) Includes() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.includes)
}

// Excludes returns the exclude patterns.
func (r *PruningRules) Excludes() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.excludes)
}

// IsEmpty reports whether there are no patterns, in which case pruning
// keeps everything.
func (r *PruningRules) IsEmpty() bool {
	return r == nil || (len(r.includes) == 0 && len(r.excludes) == 0)
}

// Policy decides identifier: excluded if an exclude matches it or an
// enclosing identifier, else included if an include does, else included
// only when there are no includes at all.
func (r *PruningRules) Policy(identifier string) Policy {
	if r == nil {
		return PolicyIncluded
	}
	if r.IsExcluded(identifier) {
		return PolicyExcluded
	}
	if match := firstMatch(identifier, r.includes); match != "" {
		r.mu.Lock()
		r.usedIncludes[match] = true
		r.mu.Unlock()
		return PolicyIncluded
	}
	if len(r.includes) > 0 {
		return PolicyUnspecified
	}
	return PolicyIncluded
}

// IsExcluded reports whether an exclude matches identifier or an enclosing
// identifier.
func (r *PruningRules) IsExcluded(identifier string) bool {
	if r == nil || len(r.excludes) == 0 {
		return false
	}
	match := firstMatch(identifier, r.excludes)
	if match == "" {
		return false
	}
	r.mu.Lock()
	r.usedExcludes[match] = true
	r.mu.Unlock()
	return true
}

func firstMatch(identifier string, patterns []string) string {
	for candidate := identifier; candidate != ""; candidate = enclosingPattern(candidate) {
		if slices.Contains(patterns, candidate) {
			return candidate
		}
	}
	return ""
}

// UnusedIncludes returns the include patterns that have not matched any
// identifier yet. After a prune these are likely typos.
func (r *PruningRules) UnusedIncludes() []string {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return unused(r.includes, r.usedIncludes)
}

// UnusedExcludes is like [PruningRules.UnusedIncludes] for excludes.
func (r *PruningRules) UnusedExcludes() []string {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return unused(r.excludes, r.usedExcludes)
}

func unused(patterns []string, used map[string]bool) []string {
	var result []string
	for _, pattern := range patterns {
		if !used[pattern] {
			result = append(result, pattern)
		}
	}
	return result
}

func (r *PruningRules) String() string {
	if r.IsEmpty() {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteString("{")
	if len(r.includes) > 0 {
		fmt.Fprintf(&sb, "includes: [%s]", strings.Join(r.includes, ", "))
	}
	if len(r.excludes) > 0 {
		if len(r.includes) > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "excludes: [%s]", strings.Join(r.excludes, ", "))
	}
	sb.WriteString("}")
	return sb.String()
}
