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

// Package schema holds the linked model of a set of proto files.
//
// A [Linker] lowers parsed element trees into [ProtoFile] values, resolves
// every type and option reference across files, validates the result and
// returns an immutable [Schema]. [Schema.Prune] computes the part of a
// schema reachable from the roots selected by [PruningRules] and returns a
// new, smaller Schema.
//
// Declarations refer to each other by canonical name ([ProtoType] and
// [ProtoMember]) rather than by pointer, so a pruned Schema never shares
// mutable state with the one it was derived from.
package schema
