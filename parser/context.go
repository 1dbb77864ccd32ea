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

// context is the kind of block a declaration appears in.
type context int

const (
	contextFile context = iota
	contextMessage
	contextEnum
	contextRPC
	contextExtend
	contextService
)

func (c context) String() string {
	switch c {
	case contextFile:
		return "FILE"
	case contextMessage:
		return "MESSAGE"
	case contextEnum:
		return "ENUM"
	case contextRPC:
		return "RPC"
	case contextExtend:
		return "EXTEND"
	case contextService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

func (c context) permitsPackage() bool {
	return c == contextFile
}

func (c context) permitsSyntax() bool {
	return c == contextFile
}

func (c context) permitsImport() bool {
	return c == contextFile
}

func (c context) permitsExtensions() bool {
	return c == contextMessage
}

func (c context) permitsRPC() bool {
	return c == contextService
}

func (c context) permitsOneOf() bool {
	return c == contextMessage
}

func (c context) permitsTypes() bool {
	return c == contextFile || c == contextMessage
}

func (c context) permitsFields() bool {
	return c == contextMessage || c == contextExtend
}
