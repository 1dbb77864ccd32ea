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

// Package corpora runs table-driven tests whose table lives in a testdata
// directory: each input file is a case and its expected outputs sit next to
// it in files with extra extensions.
package corpora

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/bufbuild/protoschema/internal"
)

// Corpus describes a testdata directory.
type Corpus struct {
	// Root is the testdata directory, relative to the test file calling Run.
	Root string

	// Refresh names an environment variable holding a glob. Cases whose
	// names match it have their expected outputs rewritten instead of
	// compared.
	Refresh string

	// Extension selects the input files, like "proto".
	Extension string

	// Outputs lists what Test produces for each case. A missing output file
	// means the output is expected to be empty.
	Outputs []Output

	// Test runs one case and returns one string per entry in Outputs.
	Test func(t *testing.T, path, text string) []string
}

// Output is one result of a test case.
type Output struct {
	// Extension is appended to the input file name to find the expected
	// output, so "roundtrip" maps "foo.proto" to "foo.proto.roundtrip".
	Extension string

	// Compare defaults to an exact comparison that reports a diff.
	Compare Compare
}

// Compare returns the empty string if got matches want and a description of
// the mismatch otherwise.
type Compare func(got, want string) string

// Run executes every case in the corpus as a subtest.
func (c Corpus) Run(t *testing.T) {
	t.Helper()
	testDir := internal.CallerDir(1)
	root := filepath.Join(testDir, c.Root)

	tests, err := doublestar.Glob(os.DirFS(root), "**/*."+c.Extension)
	if err != nil {
		t.Fatalf("corpora: listing %q: %v", root, err)
	}
	if len(tests) == 0 {
		t.Fatalf("corpora: no *.%s files in %q", c.Extension, root)
	}

	var refresh string
	if c.Refresh != "" {
		refresh = os.Getenv(c.Refresh)
		if refresh != "" && !doublestar.ValidatePattern(refresh) {
			t.Fatalf("corpora: invalid glob in %s: %q", c.Refresh, refresh)
		}
	}
	if refresh != "" {
		t.Logf("corpora: refreshing test data because %s=%s", c.Refresh, refresh)
		t.Fail()
	}

	for _, name := range tests {
		path := filepath.Join(root, filepath.FromSlash(name))
		t.Run(name, func(t *testing.T) {
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("corpora: reading %q: %v", path, err)
			}
			results := c.Test(t, name, string(data))
			if len(results) != len(c.Outputs) {
				t.Fatalf("corpora: test returned %d outputs, want %d", len(results), len(c.Outputs))
			}
			rewrite := false
			if refresh != "" {
				rewrite, _ = doublestar.Match(refresh, name)
			}
			for i, output := range c.Outputs {
				outPath := fmt.Sprint(path, ".", output.Extension)
				if rewrite {
					if err := writeOutput(outPath, results[i]); err != nil {
						t.Errorf("corpora: %v", err)
					}
					continue
				}
				want, err := os.ReadFile(outPath)
				if err != nil && !errors.Is(err, os.ErrNotExist) {
					t.Errorf("corpora: reading %q: %v", outPath, err)
					continue
				}
				compare := output.Compare
				if compare == nil {
					compare = defaultCompare
				}
				if msg := compare(results[i], string(want)); msg != "" {
					t.Errorf("output mismatch for %q:\n%s", outPath, msg)
				}
			}
		})
	}
}

func writeOutput(path, content string) error {
	if content == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	return os.WriteFile(path, []byte(content), 0o600)
}

func defaultCompare(got, want string) string {
	if got == want {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	// Colorize lines starting with + or - so the diff is easier to read.
	lines := strings.Split(diff, "\n")
	for i, s := range lines {
		switch {
		case strings.HasPrefix(s, "+"):
			lines[i] = "\033[1;92m" + s + "\033[0m"
		case strings.HasPrefix(s, "-"):
			lines[i] = "\033[1;91m" + s + "\033[0m"
		}
	}
	return strings.Join(lines, "\n")
}
