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
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/bufbuild/protoschema/ast"
	"github.com/bufbuild/protoschema/reporter"
	"github.com/bufbuild/protoschema/schema"
	"github.com/bufbuild/protoschema/wellknownimports"
)

// ErrUnusedPattern is the warning reported for a pruning pattern that did
// not match anything in the schema. The warning wraps it, so the pattern is
// part of the message.
var ErrUnusedPattern = errors.New("pruning pattern matched nothing")

// Compiler turns proto source files into a linked, and optionally pruned,
// schema.
//
// Compilation has three steps:
//  1. Loading and parsing every file reachable from the requested files.
//     This is done in parallel.
//  2. Linking the requested files against their imports.
//  3. Pruning the linked schema, if Rules are set.
//
// The core imports in [wellknownimports.CorePaths] are always available,
// even when Loader does not supply them.
type Compiler struct {
	// Loader finds and parses files by import path. This is how the compiler
	// loads the files to be compiled as well as their imports. This field is
	// the only required field.
	Loader schema.Loader
	// The maximum number of files parsed at once. If unspecified or set to a
	// non-positive value, then min(runtime.NumCPU(), runtime.GOMAXPROCS(-1))
	// will be used.
	MaxParallelism int
	// A custom error and warning reporter. If unspecified every error is
	// collected and returned together, and warnings are ignored.
	Reporter reporter.Reporter
	// Logger receives debug lines as files are parsed and linked. If nil,
	// nothing is logged.
	Logger logrus.FieldLogger
	// Rules prune the linked schema. Nil or empty rules keep everything.
	Rules *schema.PruningRules
}

// Compile loads, parses and links the given files. Files that are imported
// but not named are linked too, and the returned schema retains the parts of
// them that the named files use.
func (c *Compiler) Compile(ctx context.Context, files ...string) (*schema.Schema, error) {
	if len(files) == 0 {
		return nil, nil
	}

	par := c.MaxParallelism
	if par <= 0 {
		par = runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if par > cpus {
			par = cpus
		}
	}

	h := reporter.NewHandler(c.Reporter)
	log := c.logger()
	g, gctx := errgroup.WithContext(ctx)
	e := &executor{
		ctx:     gctx,
		loader:  wellknownimports.WithCoreImports(c.Loader),
		h:       h,
		s:       semaphore.NewWeighted(int64(par)),
		g:       g,
		log:     log,
		results: map[string]*result{},
	}

	roots := e.schedule(files)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := h.Error(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sources := make([]*schema.ProtoFile, len(roots))
	for i, r := range roots {
		sources[i] = r.file
	}
	linked, err := schema.NewLinker(schema.LoaderFunc(e.load), h).Link(sources)
	if err != nil {
		return nil, err
	}
	log.WithField("files", len(linked.ProtoFiles())).Debug("linked schema")

	if c.Rules == nil || c.Rules.IsEmpty() {
		return linked, nil
	}
	pruned, err := linked.Prune(c.Rules)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"rules": c.Rules.String(),
		"files": len(pruned.ProtoFiles()),
	}).Debug("pruned schema")
	for _, pattern := range c.Rules.UnusedIncludes() {
		h.HandleWarning(ast.Location{}, fmt.Errorf("include %q: %w", pattern, ErrUnusedPattern))
		log.WithField("include", pattern).Warn("unused include")
	}
	for _, pattern := range c.Rules.UnusedExcludes() {
		h.HandleWarning(ast.Location{}, fmt.Errorf("exclude %q: %w", pattern, ErrUnusedPattern))
		log.WithField("exclude", pattern).Warn("unused exclude")
	}
	return pruned, nil
}

func (c *Compiler) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type result struct {
	root bool
	file *schema.ProtoFile
	err  error
}

// executor parses files in parallel. Each file's imports are scheduled as
// soon as the file is parsed, so by the time linking starts every file it
// may ask for has already been loaded.
type executor struct {
	ctx    context.Context
	loader schema.Loader
	h      *reporter.Handler
	s      *semaphore.Weighted
	g      *errgroup.Group
	log    logrus.FieldLogger

	mu      sync.Mutex
	results map[string]*result
}

// schedule starts loading the named files and returns their results, with
// duplicates removed. Roots are recorded before any goroutine runs so that
// an import of a root is never mistaken for a separate file.
func (e *executor) schedule(files []string) []*result {
	e.mu.Lock()
	roots := make([]*result, 0, len(files))
	paths := make([]string, 0, len(files))
	for _, path := range files {
		if _, ok := e.results[path]; ok {
			continue
		}
		r := &result{root: true}
		e.results[path] = r
		roots = append(roots, r)
		paths = append(paths, path)
	}
	e.mu.Unlock()

	for i, path := range paths {
		r := roots[i]
		e.g.Go(func() error {
			return e.doLoad(path, r)
		})
	}
	return roots
}

func (e *executor) prefetch(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.results[path]; ok {
		return
	}
	r := &result{}
	e.results[path] = r
	e.g.Go(func() error {
		return e.doLoad(path, r)
	})
}

func (e *executor) doLoad(path string, r *result) error {
	if err := e.s.Acquire(e.ctx, 1); err != nil {
		return err
	}
	file, err := e.loader.Load(path)
	e.s.Release(1)
	if err != nil {
		if !r.root {
			// Only reported if the linker asks for this file.
			r.err = err
			return nil
		}
		return e.h.HandleError(err)
	}
	r.file = file
	e.log.WithField("path", path).Debug("parsed file")
	for _, imported := range file.AllImports() {
		e.prefetch(imported)
	}
	return nil
}

// load serves the linker. Files that were not prefetched, like
// descriptor.proto when nothing imports it, are loaded on demand.
func (e *executor) load(path string) (*schema.ProtoFile, error) {
	e.mu.Lock()
	r, ok := e.results[path]
	e.mu.Unlock()
	if ok && !r.root {
		return r.file, r.err
	}
	return e.loader.Load(path)
}
