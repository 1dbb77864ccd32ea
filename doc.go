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

// Package protoschema loads, links and prunes protobuf schemas written in
// the proto2 and proto3 source languages.
//
// The main entry point is [Compiler]. Its Compile method parses the named
// files and everything they import, links them into a [schema.Schema], and
// optionally prunes that schema down to the declarations selected by a set
// of [schema.PruningRules]:
//
//	rules, err := schema.NewPruningRulesBuilder().
//		Include("acme.orders.OrderService").
//		Exclude("acme.orders.Order#internal_notes").
//		Build()
//	if err != nil {
//		return err
//	}
//	compiler := protoschema.Compiler{
//		Loader: &protoschema.SourceLoader{ImportPaths: []string{"proto"}},
//		Rules:  rules,
//	}
//	pruned, err := compiler.Compile(ctx, "acme/orders/service.proto")
//
// # Loaders
//
// A [schema.Loader] turns an import path into a parsed file. [SourceLoader]
// reads source through an [Accessor], which may be backed by the OS, by an
// [afero.Fs] via [FSAccessor], or by a map of strings via
// [SourceAccessorFromMap]. [CompositeLoader] chains loaders. The compiler
// falls back to [wellknownimports.CoreLoader] for descriptor.proto, so it
// never needs to be on disk.
//
// # Errors
//
// Errors that can be attributed to a place in a source file implement
// [reporter.ErrorWithPos]. By default the compiler collects every error and
// returns them together; set Compiler.Reporter to stop at the first one or
// to receive warnings.
//
// [afero.Fs]: https://pkg.go.dev/github.com/spf13/afero#Fs
package protoschema
