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
	"strconv"
	"strings"

	"github.com/bufbuild/protoschema/ast"
	"github.com/bufbuild/protoschema/reporter"
)

// Reader is a cursor over proto source text. Whitespace and comments are
// skipped transparently, except by the methods that capture documentation.
//
// Every read returns an error that carries the Location of the problem. The
// reader does not recover from errors: once a read fails, the parse of the
// file is over.
type Reader struct {
	data []rune
	loc  ast.Location
	pos  int
	// line is zero-based; lineStart is the offset of its first character.
	line      int
	lineStart int
}

// NewReader returns a reader over data. loc names the file in errors.
func NewReader(data []rune, loc ast.Location) *Reader {
	if len(data) > 0 && data[0] == '\uFEFF' {
		// skip the byte order mark
		data = data[1:]
	}
	return &Reader{data: data, loc: loc}
}

// Exhausted reports whether the whole input has been consumed.
func (r *Reader) Exhausted() bool {
	return r.pos == len(r.data)
}

// Location returns the position of the cursor.
func (r *Reader) Location() ast.Location {
	return r.loc.At(r.line+1, r.pos-r.lineStart+1)
}

// ReadChar consumes and returns the next non-whitespace character.
func (r *Reader) ReadChar() (rune, error) {
	c, err := r.PeekChar()
	if err != nil {
		return 0, err
	}
	r.pos++
	return c, nil
}

// Require consumes the next character, which must be c.
func (r *Reader) Require(c rune) error {
	loc := r.Location()
	got, err := r.ReadChar()
	if err != nil {
		return err
	}
	if got != c {
		return reporter.Errorf(loc, "expected '%c'", c)
	}
	return nil
}

// PeekChar returns the next non-whitespace character without consuming it.
func (r *Reader) PeekChar() (rune, error) {
	if err := r.skipWhitespace(true); err != nil {
		return 0, err
	}
	if r.pos >= len(r.data) {
		return 0, r.errorf("unexpected end of file")
	}
	return r.data[r.pos], nil
}

// TryChar consumes the next character if it is c and reports whether it did.
func (r *Reader) TryChar(c rune) (bool, error) {
	got, err := r.PeekChar()
	if err != nil {
		return false, err
	}
	if got == c {
		r.pos++
		return true, nil
	}
	return false, nil
}

// PushBack un-reads the character c, which must be the one just read.
func (r *Reader) PushBack(c rune) {
	if r.pos == 0 || r.data[r.pos-1] != c {
		panic("parser: pushed back a character that was not just read")
	}
	r.pos--
}

// ReadString reads a quoted string, or a bare word if there is no quote.
func (r *Reader) ReadString() (string, error) {
	c, err := r.PeekChar()
	if err != nil {
		return "", err
	}
	if c == '"' || c == '\'' {
		return r.ReadQuotedString()
	}
	return r.ReadWord()
}

// ReadQuotedString reads a single- or double-quoted string literal and
// decodes its escapes. Adjacent literals are concatenated.
func (r *Reader) ReadQuotedString() (string, error) {
	quote, err := r.ReadChar()
	if err != nil {
		return "", err
	}
	if quote != '"' && quote != '\'' {
		return "", r.errorf("expected a string")
	}
	var sb strings.Builder
	for r.pos < len(r.data) {
		c := r.data[r.pos]
		r.pos++
		if c == quote {
			// Adjacent strings are concatenated.
			next, err := r.PeekChar()
			if err == nil && (next == '"' || next == '\'') {
				quote = next
				r.pos++
				continue
			}
			return sb.String(), nil
		}
		if c == '\\' {
			if r.pos == len(r.data) {
				return "", r.errorf("unexpected end of file")
			}
			c = r.data[r.pos]
			r.pos++
			switch c {
			case 'a':
				c = '\a'
			case 'b':
				c = '\b'
			case 'f':
				c = '\f'
			case 'n':
				c = '\n'
			case 'r':
				c = '\r'
			case 't':
				c = '\t'
			case 'v':
				c = '\v'
			case 'x', 'X':
				c, err = r.readNumericEscape(16, 2)
				if err != nil {
					return "", err
				}
			case '0', '1', '2', '3', '4', '5', '6', '7':
				r.pos--
				c, err = r.readNumericEscape(8, 3)
				if err != nil {
					return "", err
				}
			}
			// Anything else is taken literally, like \" and \\.
		}
		sb.WriteRune(c)
		if c == '\n' {
			r.newline()
		}
	}
	return "", r.errorf("unterminated string")
}

func (r *Reader) readNumericEscape(radix, length int) (rune, error) {
	value := -1
	end := min(r.pos+length, len(r.data))
	for ; r.pos < end; r.pos++ {
		digit := hexDigit(r.data[r.pos])
		if digit == -1 || digit >= radix {
			break
		}
		if value < 0 {
			value = digit
		} else {
			value = value*radix + digit
		}
	}
	if value < 0 {
		return 0, r.errorf("expected a digit after \\x or \\X")
	}
	return rune(value), nil
}

func hexDigit(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}

// ReadName reads a name, which may be wrapped in parentheses (an extension
// option name) or square brackets (an extension key in a message literal).
// The wrapping characters are not part of the result.
func (r *Reader) ReadName() (string, error) {
	c, err := r.PeekChar()
	if err != nil {
		return "", err
	}
	var closing rune
	switch c {
	case '(':
		closing = ')'
	case '[':
		closing = ']'
	default:
		return r.ReadWord()
	}
	r.pos++
	name, err := r.ReadWord()
	if err != nil {
		return "", err
	}
	if err := r.Require(closing); err != nil {
		return "", err
	}
	return name, nil
}

// ReadDataType reads a type name, including map types like
// "map<string, Foo>".
func (r *Reader) ReadDataType() (string, error) {
	name, err := r.ReadWord()
	if err != nil {
		return "", err
	}
	return r.ReadDataTypeNamed(name)
}

// ReadDataTypeNamed finishes reading a type whose first word has already
// been read.
func (r *Reader) ReadDataTypeNamed(name string) (string, error) {
	if name != "map" {
		return name, nil
	}
	if err := r.Require('<'); err != nil {
		return "", err
	}
	keyType, err := r.ReadDataType()
	if err != nil {
		return "", err
	}
	if err := r.Require(','); err != nil {
		return "", err
	}
	valueType, err := r.ReadDataType()
	if err != nil {
		return "", err
	}
	if err := r.Require('>'); err != nil {
		return "", err
	}
	return "map<" + keyType + ", " + valueType + ">", nil
}

// ReadWord reads a run of letters, digits, '_', '-' and '.'.
func (r *Reader) ReadWord() (string, error) {
	if err := r.skipWhitespace(true); err != nil {
		return "", err
	}
	start := r.pos
	for r.pos < len(r.data) && isWordChar(r.data[r.pos]) {
		r.pos++
	}
	if start == r.pos {
		return "", r.errorf("expected a word")
	}
	return string(r.data[start:r.pos]), nil
}

func isWordChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c == '_' || c == '-' || c == '.'
}

// ReadInt reads a decimal or "0x" hexadecimal integer.
func (r *Reader) ReadInt() (int, error) {
	loc := r.Location()
	word, err := r.ReadWord()
	if err != nil {
		return 0, err
	}
	digits, radix := word, 10
	negative := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits, radix = digits[2:], 16
	}
	v, err := strconv.ParseInt(digits, radix, 64)
	if err != nil || v > 1<<31 || (!negative && v > 1<<31-1) {
		return 0, reporter.Errorf(loc, "expected an integer but was %s", word)
	}
	if negative {
		v = -v
	}
	return int(v), nil
}

// ReadDocumentation reads the comments that precede a declaration. Several
// comments are joined with newlines.
func (r *Reader) ReadDocumentation() (string, error) {
	var lines []string
	for {
		if err := r.skipWhitespace(false); err != nil {
			return "", err
		}
		if r.pos == len(r.data) || r.data[r.pos] != '/' {
			return strings.Join(lines, "\n"), nil
		}
		comment, err := r.readComment()
		if err != nil {
			return "", err
		}
		lines = append(lines, comment)
	}
}

func (r *Reader) readComment() (string, error) {
	if r.pos+1 >= len(r.data) {
		return "", r.errorf("unexpected end of file")
	}
	switch r.data[r.pos+1] {
	case '/':
		r.pos += 2
		start, end := r.pos, len(r.data)
		for r.pos < len(r.data) {
			c := r.data[r.pos]
			r.pos++
			if c == '\n' {
				end = r.pos - 1
				r.newline()
				break
			}
		}
		return strings.TrimSpace(string(r.data[start:end])), nil
	case '*':
		loc := r.Location()
		r.pos += 2
		var lines []string
		var sb strings.Builder
		for r.pos+1 < len(r.data) {
			c := r.data[r.pos]
			if c == '*' && r.data[r.pos+1] == '/' {
				r.pos += 2
				lines = append(lines, cleanCommentLine(sb.String()))
				return strings.TrimSpace(strings.Join(lines, "\n")), nil
			}
			r.pos++
			if c == '\n' {
				lines = append(lines, cleanCommentLine(sb.String()))
				sb.Reset()
				r.newline()
				continue
			}
			sb.WriteRune(c)
		}
		return "", reporter.Errorf(loc, "unterminated comment")
	default:
		return "", r.errorf("unexpected '/'")
	}
}

// cleanCommentLine strips the decoration of one line of a block comment,
// like the leading " * " of javadoc-style comments.
func cleanCommentLine(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "*")
	return strings.TrimSpace(line)
}

// TryAppendTrailingDocumentation reads a comment that follows a declaration
// on the same line, and appends it to documentation.
func (r *Reader) TryAppendTrailingDocumentation(documentation string) (string, error) {
	// Search for a '/' character ignoring spaces and tabs.
	for {
		if r.pos == len(r.data) {
			return documentation, nil
		}
		c := r.data[r.pos]
		if c == ' ' || c == '\t' {
			r.pos++
			continue
		}
		if c != '/' {
			return documentation, nil
		}
		r.pos++
		break
	}
	if r.pos == len(r.data) || (r.data[r.pos] != '/' && r.data[r.pos] != '*') {
		r.pos--
		return "", r.errorf("expected '//' or '/*'")
	}
	isStar := r.data[r.pos] == '*'
	r.pos++
	start, end := r.pos, r.pos
	if isStar {
		for {
			if r.pos >= len(r.data) {
				return "", r.errorf("trailing comment must be closed")
			}
			if r.data[r.pos] == '*' && r.pos+1 < len(r.data) && r.data[r.pos+1] == '/' {
				end = r.pos
				r.pos += 2
				break
			}
			if r.data[r.pos] == '\n' {
				r.pos++
				r.newline()
				continue
			}
			r.pos++
		}
		// Nothing may follow a trailing block comment on its line.
		for r.pos < len(r.data) {
			c := r.data[r.pos]
			r.pos++
			if c == '\n' {
				r.newline()
				break
			}
			if c != ' ' && c != '\t' && c != '\r' {
				r.pos--
				return "", r.errorf("no syntax may follow trailing comment")
			}
		}
	} else {
		end = len(r.data)
		for r.pos < len(r.data) {
			c := r.data[r.pos]
			r.pos++
			if c == '\n' {
				end = r.pos - 1
				r.newline()
				break
			}
		}
	}
	trailing := strings.TrimSpace(string(r.data[start:end]))
	if isStar {
		lines := strings.Split(trailing, "\n")
		for i := range lines {
			lines[i] = cleanCommentLine(lines[i])
		}
		trailing = strings.TrimSpace(strings.Join(lines, "\n"))
	}
	switch {
	case trailing == "":
		return documentation, nil
	case documentation == "":
		return trailing, nil
	default:
		return documentation + "\n" + trailing, nil
	}
}

func (r *Reader) skipWhitespace(skipComments bool) error {
	for r.pos < len(r.data) {
		c := r.data[r.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			r.pos++
			if c == '\n' {
				r.newline()
			}
		case skipComments && c == '/':
			if _, err := r.readComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

func (r *Reader) newline() {
	r.line++
	r.lineStart = r.pos
}

func (r *Reader) errorf(format string, args ...interface{}) error {
	return reporter.Errorf(r.Location(), format, args...)
}
