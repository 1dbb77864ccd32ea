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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/bufbuild/protoschema/ast"
	"github.com/bufbuild/protoschema/internal/corpora"
)

// TestRoundTrip parses every file under testdata/roundtrip, prints it and
// parses the output again. Both trees must match apart from locations.
func TestRoundTrip(t *testing.T) {
	t.Parallel()
	corpora.Corpus{
		Root:      "testdata/roundtrip",
		Refresh:   "PROTOSCHEMA_REFRESH",
		Extension: "proto",
		Outputs: []corpora.Output{
			{Extension: "diff"},
		},
		Test: func(t *testing.T, path, text string) []string {
			loc := ast.NewLocation("", path)
			first, err := ParseString(loc, text)
			if err != nil {
				t.Fatalf("parsing %s: %v", path, err)
			}
			printed := first.ToSchema()
			second, err := ParseString(loc, printed)
			if err != nil {
				t.Fatalf("parsing printed %s: %v\n%s", path, err, printed)
			}
			return []string{cmp.Diff(first, second, cmpopts.IgnoreTypes(ast.Location{}), cmpopts.EquateEmpty())}
		},
	}.Run(t)
}
