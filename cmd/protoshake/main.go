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

// Command protoshake links protobuf schemas and prunes them down to the
// types, fields and services that a set of include and exclude patterns
// asks for.
//
// Usage:
//
//	protoshake prune -I protos --include squareup.dinosaurs.Dinosaur -o out
//	protoshake check -I protos
//	protoshake list -I protos --include squareup.dinosaurs.*
//
// Settings can also come from a YAML file given with --config; flags
// override the file.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(newGlobalState(ctx), os.Args[1:])
	cancel()
	os.Exit(code)
}
