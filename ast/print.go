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

package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bufbuild/protoschema/internal"
)

func appendDocumentation(sb *strings.Builder, documentation string) {
	if documentation == "" {
		return
	}
	for _, line := range strings.Split(documentation, "\n") {
		sb.WriteString("// ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
}

// appendIndented writes text with every line indented by two spaces.
func appendIndented(sb *strings.Builder, text string) {
	lines := strings.Split(text, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for _, line := range lines {
		sb.WriteString("  ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
}

func appendOptions(sb *strings.Builder, options []*OptionElement) {
	if len(options) == 1 {
		sb.WriteByte('[')
		sb.WriteString(options[0].ToSchema())
		sb.WriteByte(']')
		return
	}
	sb.WriteString("[\n")
	for i, opt := range options {
		line := opt.ToSchema()
		if i < len(options)-1 {
			line += ","
		}
		appendIndented(sb, line)
	}
	sb.WriteByte(']')
}

func formatRange(r TagRange) string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	if r.End == internal.MaxNormalTag {
		return fmt.Sprintf("%d to max", r.Start)
	}
	return fmt.Sprintf("%d to %d", r.Start, r.End)
}

// quote returns s as a double-quoted proto string literal. Control
// characters are written as octal escapes, which the reader accepts.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&sb, `\%03o`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
