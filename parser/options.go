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
	"unicode"

	"github.com/bufbuild/protoschema/ast"
)

// OptionReader reads options: the bracketed list after a field or enum
// constant, the value of an option statement, and message literals.
type OptionReader struct {
	r *Reader
}

// NewOptionReader returns an OptionReader that reads from r.
func NewOptionReader(r *Reader) OptionReader {
	return OptionReader{r: r}
}

// ReadOptions reads a bracketed option list like "[packed = true, deprecated = true]".
// It returns nil if the next character is not '['.
func (o OptionReader) ReadOptions() ([]*ast.OptionElement, error) {
	if ok, err := o.r.TryChar('['); err != nil || !ok {
		return nil, err
	}
	var result []*ast.OptionElement
	for {
		opt, err := o.ReadOption('=')
		if err != nil {
			return nil, err
		}
		result = append(result, opt)
		// Check for optional ',' or closing ']'
		more, err := o.r.TryChar(',')
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	if err := o.r.Require(']'); err != nil {
		return nil, err
	}
	return result, nil
}

// ReadOption reads one "name = value" pair. keyValueSeparator is '=' for
// options and ':' inside message literals.
func (o OptionReader) ReadOption(keyValueSeparator rune) (*ast.OptionElement, error) {
	c, err := o.r.PeekChar()
	if err != nil {
		return nil, err
	}
	start := o.r.Location()
	isExtension := c == '['
	parenthesized := c == '('
	name, err := o.r.ReadName()
	if err != nil {
		return nil, err
	}
	if isExtension {
		name = "[" + name + "]"
	}
	var subName string
	loc := o.r.Location()
	c, err = o.r.ReadChar()
	if err != nil {
		return nil, err
	}
	if c == '.' {
		// Read nested field name. For example "option (foo).bar = 1;"
		if subName, err = o.r.ReadName(); err != nil {
			return nil, err
		}
		loc = o.r.Location()
		if c, err = o.r.ReadChar(); err != nil {
			return nil, err
		}
	}
	switch {
	case keyValueSeparator == ':' && c == '{':
		// In text format, values which are maps can omit a separator.
		o.r.PushBack('{')
	case c != keyValueSeparator:
		return nil, errorAt(loc, "expected '%c' in option", keyValueSeparator)
	}
	kind, value, err := o.readKindAndValue()
	if err != nil {
		return nil, err
	}
	if subName != "" {
		value = &ast.OptionElement{Name: subName, Kind: kind, Value: value}
		kind = ast.OptionKindOption
	}
	return &ast.OptionElement{
		Name:          name,
		Kind:          kind,
		Value:         value,
		Parenthesized: parenthesized,
		Location:      start,
	}, nil
}

func (o OptionReader) readKindAndValue() (ast.OptionKind, any, error) {
	c, err := o.r.PeekChar()
	if err != nil {
		return 0, nil, err
	}
	switch c {
	case '{':
		m, err := o.readMap('{', '}', ':')
		return ast.OptionKindMap, m, err
	case '[':
		list, err := o.readList()
		return ast.OptionKindList, list, err
	case '"', '\'':
		s, err := o.r.ReadQuotedString()
		return ast.OptionKindString, s, err
	}
	word, err := o.r.ReadWord()
	if err != nil {
		return 0, nil, err
	}
	switch {
	case unicode.IsDigit(c) || c == '-':
		return ast.OptionKindNumber, word, nil
	case word == "true" || word == "false":
		return ast.OptionKindBool, word, nil
	default:
		return ast.OptionKindEnum, word, nil
	}
}

// readMap reads a message literal. Repeated keys collect their values into a
// list, and "[ext].field" keys nest into a map under "[ext]".
func (o OptionReader) readMap(openBrace, closeBrace, keyValueSeparator rune) (ast.OptionMap, error) {
	if err := o.r.Require(openBrace); err != nil {
		return nil, err
	}
	result := ast.OptionMap{}
	for {
		// If we see the close brace, finish immediately. This handles {} and ,} cases.
		if done, err := o.r.TryChar(closeBrace); err != nil || done {
			return result, err
		}
		opt, err := o.ReadOption(keyValueSeparator)
		if err != nil {
			return nil, err
		}
		idx := -1
		for i, e := range result {
			if e.Key == opt.Name {
				idx = i
				break
			}
		}
		if nested, ok := opt.Value.(*ast.OptionElement); ok {
			entry := ast.OptionMapEntry{Key: nested.Name, Value: primitive(nested.Kind, nested.Value)}
			if idx < 0 {
				result = append(result, ast.OptionMapEntry{Key: opt.Name, Value: ast.OptionMap{entry}})
			} else if m, ok := result[idx].Value.(ast.OptionMap); ok {
				result[idx].Value = append(m, entry)
			}
		} else {
			value := primitive(opt.Kind, opt.Value)
			if idx < 0 {
				result = append(result, ast.OptionMapEntry{Key: opt.Name, Value: value})
			} else {
				// Add the value(s) to any previous values with the same key.
				previous, ok := result[idx].Value.([]any)
				if !ok {
					previous = []any{result[idx].Value}
				}
				result[idx].Value = addToList(previous, value)
			}
		}
		// Discard optional separator.
		comma, err := o.r.TryChar(',')
		if err != nil {
			return nil, err
		}
		if !comma {
			if _, err := o.r.TryChar(';'); err != nil {
				return nil, err
			}
		}
	}
}

func (o OptionReader) readList() ([]any, error) {
	if err := o.r.Require('['); err != nil {
		return nil, err
	}
	result := []any{}
	for {
		// If we see the close brace, finish immediately. This handles [] and ,] cases.
		if done, err := o.r.TryChar(']'); err != nil || done {
			return result, err
		}
		kind, value, err := o.readKindAndValue()
		if err != nil {
			return nil, err
		}
		result = append(result, primitive(kind, value))
		if comma, err := o.r.TryChar(','); err != nil {
			return nil, err
		} else if comma {
			continue
		}
		if c, err := o.r.PeekChar(); err != nil {
			return nil, err
		} else if c != ']' {
			return nil, o.r.errorf("expected ',' or ']'")
		}
	}
}

// primitive wraps scalar values so that lists and maps remember their kind.
func primitive(kind ast.OptionKind, value any) any {
	if s, ok := value.(string); ok {
		return ast.OptionPrimitive{Kind: kind, Value: s}
	}
	return value
}

func addToList(list []any, value any) []any {
	if values, ok := value.([]any); ok {
		return append(list, values...)
	}
	return append(list, value)
}
