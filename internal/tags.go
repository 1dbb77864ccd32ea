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

package internal

const (
	// MaxNormalTag is the maximum allowed tag number for a field.
	MaxNormalTag = 536870911 // 2^29 - 1
	// SpecialReservedStart is the first tag in a range reserved by the
	// protobuf implementation for internal use.
	SpecialReservedStart = 19000
	// SpecialReservedEnd is the last tag in that range.
	SpecialReservedEnd = 19999
)

// IsValidTag reports whether tag may be used by a field or an extension.
func IsValidTag(tag int) bool {
	return tag >= 1 && tag <= MaxNormalTag &&
		(tag < SpecialReservedStart || tag > SpecialReservedEnd)
}
