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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/protoschema/ast"
)

func newTestReader(data string) *Reader {
	return NewReader([]rune(data), ast.NewLocation("", "test.proto"))
}

func TestReaderQuotedString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  string
	}{
		{input: `"abc"`, want: "abc"},
		{input: `'abc'`, want: "abc"},
		{input: `"a\"b"`, want: `a"b`},
		{input: `"a\\b"`, want: `a\b`},
		{input: `"\n\t\r"`, want: "\n\t\r"},
		{input: `"\x41\101"`, want: "AA"},
		{input: `"\007"`, want: "\a"},
		{input: `"ab" 'cd'`, want: "abcd"},
		{input: `"ab"
  "cd"`, want: "abcd"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := newTestReader(tt.input).ReadQuotedString()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReaderQuotedStringErrors(t *testing.T) {
	t.Parallel()
	_, err := newTestReader(`"abc`).ReadQuotedString()
	require.ErrorContains(t, err, "unterminated string")
	_, err = newTestReader(`abc`).ReadQuotedString()
	require.ErrorContains(t, err, "expected a string")
	_, err = newTestReader(`"\xZZ"`).ReadQuotedString()
	require.ErrorContains(t, err, "expected a digit")
}

func TestReaderInt(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input   string
		want    int
		wantErr string
	}{
		{input: "0", want: 0},
		{input: "  42", want: 42},
		{input: "-7", want: -7},
		{input: "0x1F", want: 31},
		{input: "-0x10", want: -16},
		{input: "2147483647", want: 2147483647},
		{input: "-2147483648", want: -2147483648},
		{input: "2147483648", wantErr: "expected an integer but was 2147483648"},
		{input: "abc", wantErr: "expected an integer but was abc"},
		{input: ";", wantErr: "expected a word"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := newTestReader(tt.input).ReadInt()
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReaderDataType(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"int32 x":                   "int32",
		".foo.Bar x":                ".foo.Bar",
		"map<string,Foo> x":         "map<string, Foo>",
		"map < int32 , .a.B > x":    "map<int32, .a.B>",
		"map<string, map_value> x":  "map<string, map_value>",
		"google.protobuf.Any value": "google.protobuf.Any",
	}
	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			got, err := newTestReader(input).ReadDataType()
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestReaderName(t *testing.T) {
	t.Parallel()
	r := newTestReader("(foo.bar) [baz.qux] plain")
	for _, want := range []string{"foo.bar", "baz.qux", "plain"} {
		got, err := r.ReadName()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.True(t, r.Exhausted())

	_, err := newTestReader("(foo").ReadName()
	require.Error(t, err)
}

func TestReaderLocation(t *testing.T) {
	t.Parallel()
	r := newTestReader("a\n  bb\n\tccc")
	_, err := r.ReadWord()
	require.NoError(t, err)
	_, err = r.PeekChar()
	require.NoError(t, err)
	assert.Equal(t, 2, r.Location().Line)
	assert.Equal(t, 3, r.Location().Column)
	_, err = r.ReadWord()
	require.NoError(t, err)
	_, err = r.PeekChar()
	require.NoError(t, err)
	assert.Equal(t, "test.proto:3:2", r.Location().String())
}

func TestReaderByteOrderMark(t *testing.T) {
	t.Parallel()
	r := newTestReader("\uFEFFsyntax")
	word, err := r.ReadWord()
	require.NoError(t, err)
	assert.Equal(t, "syntax", word)
}

func TestReaderDocumentation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "line comments",
			input: "// first\n//   second  \nmessage",
			want:  "first\nsecond",
		},
		{
			name:  "block comment",
			input: "/*\n * one\n * two\n */\nmessage",
			want:  "one\ntwo",
		},
		{
			name:  "mixed",
			input: "/* block */\n// line\nmessage",
			want:  "block\nline",
		},
		{
			name:  "none",
			input: "message",
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := newTestReader(tt.input)
			got, err := r.ReadDocumentation()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			word, err := r.ReadWord()
			require.NoError(t, err)
			assert.Equal(t, "message", word)
		})
	}

	_, err := newTestReader("/* never closed").ReadDocumentation()
	require.ErrorContains(t, err, "unterminated comment")
	_, err = newTestReader("/ x").ReadDocumentation()
	require.ErrorContains(t, err, "unexpected '/'")
}

func TestReaderTrailingDocumentation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		doc     string
		want    string
		wantErr string
	}{
		{name: "line", input: " // trailing\nnext", want: "trailing"},
		{name: "appended", input: "\t// trailing\nnext", doc: "leading", want: "leading\ntrailing"},
		{name: "block", input: " /* trailing */\nnext", want: "trailing"},
		{name: "empty", input: " //\nnext", doc: "leading", want: "leading"},
		{name: "absent", input: "\nnext", doc: "leading", want: "leading"},
		{name: "bad", input: " / x", wantErr: "expected '//' or '/*'"},
		{name: "unclosed", input: " /* x", wantErr: "trailing comment must be closed"},
		{name: "followed", input: " /* x */ y", wantErr: "no syntax may follow trailing comment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := newTestReader(tt.input)
			got, err := r.TryAppendTrailingDocumentation(tt.doc)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			word, err := r.ReadWord()
			require.NoError(t, err)
			assert.Equal(t, "next", word)
		})
	}
}
