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

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/bufbuild/protoschema"
	"github.com/bufbuild/protoschema/reporter"
	"github.com/bufbuild/protoschema/schema"
	"github.com/bufbuild/protoschema/wellknownimports"
)

// findSources returns the files under the proto paths that match one of
// the source patterns. Paths are relative to their proto path, use forward
// slashes and are sorted. A file found under more than one proto path is
// returned once.
func findSources(fsys afero.Fs, config *Config) ([]string, error) {
	for _, pattern := range config.Sources {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid source pattern %q", pattern)
		}
	}
	seen := map[string]bool{}
	var files []string
	for _, root := range config.ProtoPaths {
		err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if seen[rel] {
				return nil
			}
			for _, pattern := range config.Sources {
				if ok, _ := doublestar.Match(pattern, rel); ok {
					seen[rel] = true
					files = append(files, rel)
					break
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("proto path %s: %w", root, err)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files match %q", config.Sources)
	}
	sort.Strings(files)
	return files, nil
}

// compilation is the outcome of compiling the configured sources.
type compilation struct {
	schema *schema.Schema
	// unused is the number of pruning patterns that matched nothing.
	unused int
}

// compile links the configured sources, pruning them when prune is set.
// Errors in the sources are printed to stderr as they are found.
func compile(gs *globalState, config *Config, prune bool) (*compilation, error) {
	files, err := findSources(gs.fs, config)
	if err != nil {
		return nil, err
	}
	var rules *schema.PruningRules
	if prune {
		rules, err = schema.NewPruningRulesBuilder().
			Include(config.Includes...).
			Exclude(config.Excludes...).
			Build()
		if err != nil {
			return nil, err
		}
	}

	var errCount int
	result := &compilation{}
	rep := reporter.NewReporter(
		func(err reporter.ErrorWithPos) error {
			errCount++
			fmt.Fprintln(gs.stdErr, err)
			return nil
		},
		func(err reporter.ErrorWithPos) {
			if errors.Is(err, protoschema.ErrUnusedPattern) {
				result.unused++
				return
			}
			gs.logger.WithField("file", err.GetPosition().Path).Warn(err.Unwrap())
		},
	)
	compiler := &protoschema.Compiler{
		Loader: protoschema.CompositeLoader{
			&protoschema.SourceLoader{
				ImportPaths: config.ProtoPaths,
				Accessor:    protoschema.FSAccessor(gs.fs),
			},
			wellknownimports.StandardLoader,
		},
		Reporter: rep,
		Logger:   gs.logger,
		Rules:    rules,
	}
	gs.logger.WithFields(logrus.Fields{
		"files":       len(files),
		"proto_paths": config.ProtoPaths,
	}).Debug("compiling")
	result.schema, err = compiler.Compile(gs.ctx, files...)
	if err != nil {
		if errCount > 0 {
			return nil, fmt.Errorf("%w (%d found)", errSchema, errCount)
		}
		return nil, err
	}
	return result, nil
}

// isWellKnown reports whether path is one of the embedded files, which the
// tool supplies itself and never writes out.
func isWellKnown(path string) bool {
	r, err := wellknownimports.Open(path)
	if err != nil {
		return false
	}
	_ = r.Close()
	return true
}
