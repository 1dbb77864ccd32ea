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

package protoschema

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/bufbuild/protoschema/ast"
	"github.com/bufbuild/protoschema/parser"
	"github.com/bufbuild/protoschema/schema"
)

// Accessor opens the file at path. A file that does not exist is reported
// with an error that matches fs.ErrNotExist.
type Accessor func(path string) (io.ReadCloser, error)

// FSAccessor returns an Accessor that reads from fsys.
func FSAccessor(fsys afero.Fs) Accessor {
	return func(path string) (io.ReadCloser, error) {
		return fsys.Open(path)
	}
}

// SourceAccessorFromMap returns an Accessor that serves the given sources,
// keyed by path. It is mostly useful for tests.
func SourceAccessorFromMap(srcs map[string]string) Accessor {
	return func(path string) (io.ReadCloser, error) {
		src, ok := srcs[path]
		if !ok {
			return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
		}
		return io.NopCloser(strings.NewReader(src)), nil
	}
}

// SourceLoader loads proto source files and parses them.
//
// Paths given to Load are relative to one of the ImportPaths. The first
// import path that has the file wins, and the import path becomes the base
// of the file's location so errors name the file as it appears on disk.
type SourceLoader struct {
	// ImportPaths are searched in order. If empty, paths are opened as is.
	ImportPaths []string

	// Accessor opens files. If nil, files are read from the OS file system.
	Accessor Accessor
}

var _ schema.Loader = (*SourceLoader)(nil)

func (l *SourceLoader) Load(path string) (*schema.ProtoFile, error) {
	importPaths := l.ImportPaths
	if len(importPaths) == 0 {
		importPaths = []string{""}
	}
	for _, importPath := range importPaths {
		r, err := l.accessFile(filepath.Join(importPath, path))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		element, err := parseAndClose(ast.NewLocation(importPath, path), r)
		if err != nil {
			return nil, err
		}
		return schema.NewProtoFile(element), nil
	}
	return nil, fmt.Errorf("%s: %w", path, fs.ErrNotExist)
}

func (l *SourceLoader) accessFile(path string) (io.ReadCloser, error) {
	if l.Accessor != nil {
		return l.Accessor(path)
	}
	return FSAccessor(afero.NewOsFs())(path)
}

func parseAndClose(loc ast.Location, r io.ReadCloser) (*ast.FileElement, error) {
	defer func() {
		_ = r.Close()
	}()
	return parser.Parse(loc, r, nil)
}

// CompositeLoader tries each loader in turn and returns the first file
// found. If none has the file, the first error other than fs.ErrNotExist is
// returned, else the first error.
type CompositeLoader []schema.Loader

var _ schema.Loader = CompositeLoader(nil)

func (c CompositeLoader) Load(path string) (*schema.ProtoFile, error) {
	if len(c) == 0 {
		return nil, fmt.Errorf("%s: %w", path, os.ErrNotExist)
	}
	var firstErr, firstNotFound error
	for _, loader := range c {
		file, err := loader.Load(path)
		if err == nil {
			return file, nil
		}
		switch {
		case errors.Is(err, fs.ErrNotExist):
			if firstNotFound == nil {
				firstNotFound = err
			}
		case firstErr == nil:
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, firstNotFound
}
