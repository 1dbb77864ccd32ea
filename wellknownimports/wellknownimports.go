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

// Package wellknownimports provides source code for the files that every
// schema may import without supplying them: descriptor.proto, which
// declares the option types, wire/extensions.proto, and the well-known
// types that ship with protoc.
package wellknownimports

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"

	"github.com/bufbuild/protoschema/ast"
	"github.com/bufbuild/protoschema/parser"
	"github.com/bufbuild/protoschema/schema"
)

//go:embed google/protobuf/*.proto wire/*.proto
var files embed.FS

// CorePaths are the files [CoreLoader] serves.
var CorePaths = []string{
	schema.DescriptorPath,
	"wire/extensions.proto",
}

// CoreLoader loads the files named by [CorePaths] and fails for any other
// path. Each call parses the file again, because a linker links the files
// it loads in place.
var CoreLoader schema.Loader = schema.LoaderFunc(func(path string) (*schema.ProtoFile, error) {
	if !slices.Contains(CorePaths, path) {
		return nil, fmt.Errorf("%s is not a core import: %w", path, fs.ErrNotExist)
	}
	return load(path)
})

// StandardLoader loads any embedded file: the core files and the
// well-known types like "google/protobuf/timestamp.proto".
var StandardLoader schema.Loader = schema.LoaderFunc(load)

// Open returns the source of an embedded file.
func Open(path string) (io.ReadCloser, error) {
	return files.Open(path)
}

func load(path string) (*schema.ProtoFile, error) {
	f, err := files.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	element, err := parser.Parse(ast.NewLocation("", path), f, nil)
	if err != nil {
		return nil, err
	}
	return schema.NewProtoFile(element), nil
}

// WithCoreImports returns a loader that tries loader first and falls back
// to [CoreLoader] for paths loader does not have.
func WithCoreImports(loader schema.Loader) schema.Loader {
	return withFallback(loader, CoreLoader)
}

// WithStandardImports is like [WithCoreImports] but falls back to
// [StandardLoader].
func WithStandardImports(loader schema.Loader) schema.Loader {
	return withFallback(loader, StandardLoader)
}

func withFallback(loader, fallback schema.Loader) schema.Loader {
	if loader == nil {
		return fallback
	}
	return schema.LoaderFunc(func(path string) (*schema.ProtoFile, error) {
		file, err := loader.Load(path)
		if err == nil || !errors.Is(err, fs.ErrNotExist) {
			return file, err
		}
		if file, fallbackErr := fallback.Load(path); fallbackErr == nil {
			return file, nil
		}
		return nil, err
	})
}
