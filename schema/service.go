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
	"github.com/bufbuild/protoschema/ast"
)

// Service is a service declaration.
type Service struct {
	typ           ProtoType
	location      ast.Location
	name          string
	documentation string
	rpcs          []*RPC
	options       *Options
}

func newService(packageName string, element *ast.ServiceElement) *Service {
	service := &Service{
		typ:           ProtoType{packageName}.NestedType(element.Name),
		location:      element.Location,
		name:          element.Name,
		documentation: element.Documentation,
		options:       newOptions(ServiceOptions, element.Options),
	}
	for _, rpc := range element.RPCs {
		service.rpcs = append(service.rpcs, &RPC{
			location:          rpc.Location,
			name:              rpc.Name,
			documentation:     rpc.Documentation,
			requestTypeName:   rpc.RequestType,
			responseTypeName:  rpc.ResponseType,
			requestStreaming:  rpc.RequestStreaming,
			responseStreaming: rpc.ResponseStreaming,
			options:           newOptions(MethodOptions, rpc.Options),
		})
	}
	return service
}

// Type returns the service's qualified name as a [ProtoType]. Services share
// the namespace of messages and enums.
func (s *Service) Type() ProtoType        { return s.typ }
func (s *Service) Location() ast.Location { return s.location }
func (s *Service) Name() string           { return s.name }
func (s *Service) Documentation() string  { return s.documentation }
func (s *Service) RPCs() []*RPC           { return s.rpcs }
func (s *Service) Options() *Options      { return s.options }

// RPC returns the rpc called name.
func (s *Service) RPC(name string) *RPC {
	for _, rpc := range s.rpcs {
		if rpc.name == name {
			return rpc
		}
	}
	return nil
}

// retainAll keeps the rpcs that were marked and whose request and response
// types survive. A service with no rpcs left is dropped.
func (s *Service) retainAll(marks *MarkSet) *Service {
	if !marks.ContainsType(s.typ) {
		return nil
	}
	var rpcs []*RPC
	for _, rpc := range s.rpcs {
		if !marks.ContainsMember(NewProtoMember(s.typ, rpc.name)) ||
			!marks.ContainsType(rpc.requestType) || !marks.ContainsType(rpc.responseType) {
			continue
		}
		retained := *rpc
		retained.options = rpc.options.retainAll(marks)
		rpcs = append(rpcs, &retained)
	}
	if len(rpcs) == 0 {
		return nil
	}
	result := *s
	result.rpcs = rpcs
	result.options = s.options.retainAll(marks)
	return &result
}

func (s *Service) toElement() *ast.ServiceElement {
	element := &ast.ServiceElement{
		Location:      s.location,
		Name:          s.name,
		Documentation: s.documentation,
		Options:       s.options.elements,
	}
	for _, rpc := range s.rpcs {
		element.RPCs = append(element.RPCs, &ast.RPCElement{
			Location:          rpc.location,
			Name:              rpc.name,
			Documentation:     rpc.documentation,
			RequestType:       rpc.requestTypeName,
			ResponseType:      rpc.responseTypeName,
			RequestStreaming:  rpc.requestStreaming,
			ResponseStreaming: rpc.responseStreaming,
			Options:           rpc.options.elements,
		})
	}
	return element
}

// RPC is one method of a service.
type RPC struct {
	location          ast.Location
	name              string
	documentation     string
	requestTypeName   string
	responseTypeName  string
	requestStreaming  bool
	responseStreaming bool
	options           *Options

	// Set by the linker.
	requestType  ProtoType
	responseType ProtoType
}

func (r *RPC) Location() ast.Location  { return r.location }
func (r *RPC) Name() string            { return r.name }
func (r *RPC) Documentation() string   { return r.documentation }
func (r *RPC) RequestStreaming() bool  { return r.requestStreaming }
func (r *RPC) ResponseStreaming() bool { return r.responseStreaming }
func (r *RPC) Options() *Options       { return r.options }

// RequestType returns the linked request message.
func (r *RPC) RequestType() ProtoType { return r.requestType }

// ResponseType returns the linked response message.
func (r *RPC) ResponseType() ProtoType { return r.responseType }

func (r *RPC) IsDeprecated() bool { return r.options.isTrue("deprecated") }
