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

// Package parser turns proto source text into the element tree defined by
// package ast.
//
// The parser is a hand-written recursive descent over a character [Reader].
// It stops at the first syntax error. Everything it accepts can be printed
// back with [ast.FileElement.ToSchema] and parsed again to an equal tree,
// except for locations.
//
// The parser checks only what it must to build the tree: declaration
// placement, proto3 label rules and the position of the syntax statement.
// Name resolution and semantic checks belong to the schema linker.
package parser
