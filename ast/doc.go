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

// Package ast defines the element tree produced by parsing protocol buffers
// source: a *FileElement containing messages, enums, services, extend blocks
// and options, each tagged with the Location where it was declared.
//
// Elements are plain data. They carry unresolved type names exactly as they
// were written; resolution happens when a file is lowered into the schema
// model and linked.
//
// Every element can print itself back to source with ToSchema. Parsing the
// printed text produces an element tree equal to the original one, ignoring
// locations. This makes the printer useful both for debugging and as a check
// on the parser.
package ast
