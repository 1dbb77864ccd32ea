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
	"strings"
)

// ServiceElement is a service declaration.
type ServiceElement struct {
	Location      Location
	Name          string
	Documentation string
	RPCs          []*RPCElement
	Options       []*OptionElement
}

func (s *ServiceElement) ToSchema() string {
	var sb strings.Builder
	appendDocumentation(&sb, s.Documentation)
	fmt.Fprintf(&sb, "service %s {", s.Name)
	if len(s.Options) > 0 {
		sb.WriteByte('\n')
		for _, opt := range s.Options {
			appendIndented(&sb, opt.ToSchemaDeclaration())
		}
	}
	if len(s.RPCs) > 0 {
		sb.WriteByte('\n')
		for _, rpc := range s.RPCs {
			appendIndented(&sb, rpc.ToSchema())
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

// RPCElement is one method of a service.
type RPCElement struct {
	Location          Location
	Name              string
	Documentation     string
	RequestType       string
	ResponseType      string
	RequestStreaming  bool
	ResponseStreaming bool
	Options           []*OptionElement
}

func (r *RPCElement) ToSchema() string {
	var sb strings.Builder
	appendDocumentation(&sb, r.Documentation)
	fmt.Fprintf(&sb, "rpc %s (", r.Name)
	if r.RequestStreaming {
		sb.WriteString("stream ")
	}
	sb.WriteString(r.RequestType)
	sb.WriteString(") returns (")
	if r.ResponseStreaming {
		sb.WriteString("stream ")
	}
	sb.WriteString(r.ResponseType)
	sb.WriteByte(')')
	if len(r.Options) > 0 {
		sb.WriteString(" {\n")
		for _, opt := range r.Options {
			appendIndented(&sb, opt.ToSchemaDeclaration())
		}
		sb.WriteString("}\n")
		return sb.String()
	}
	sb.WriteString(";\n")
	return sb.String()
}
