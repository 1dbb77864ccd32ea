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

// Package reporter contains the types used for reporting errors from
// parsing, linking and pruning.
package reporter

import (
	"sync"

	"github.com/bufbuild/protoschema/ast"
)

// ErrorReporter is responsible for reporting the given error. If the reporter
// returns a non-nil error, the operation will abort with that error. If the
// reporter returns nil, linking will continue, allowing the linker to report
// as many errors as it can find.
type ErrorReporter func(err ErrorWithPos) error

// WarningReporter is responsible for reporting the given warning. This is used
// for indicating non-error messages to the calling program for things that do
// not cause the operation to fail, like pruning patterns that matched nothing.
type WarningReporter func(ErrorWithPos)

type Reporter interface {
	Error(ErrorWithPos) error
	Warning(ErrorWithPos)
}

// NewReporter returns a Reporter backed by the given functions. A nil errs
// reports nothing and continues, so a Handler collects every error.
func NewReporter(errs ErrorReporter, warnings WarningReporter) Reporter {
	return reporterFuncs{errs: errs, warnings: warnings}
}

type reporterFuncs struct {
	errs     ErrorReporter
	warnings WarningReporter
}

func (r reporterFuncs) Error(err ErrorWithPos) error {
	if r.errs == nil {
		return nil
	}
	return r.errs(err)
}

func (r reporterFuncs) Warning(err ErrorWithPos) {
	if r.warnings != nil {
		r.warnings(err)
	}
}

// Handler records errors as they are reported and remembers the first one
// the Reporter chose to abort with. It is safe for concurrent use.
type Handler struct {
	reporter Reporter

	mu       sync.Mutex
	reported Errors
	err      error
}

func NewHandler(rep Reporter) *Handler {
	if rep == nil {
		rep = NewReporter(nil, nil)
	}
	return &Handler{reporter: rep}
}

func (h *Handler) HandleErrorf(pos ast.Location, format string, args ...interface{}) error {
	return h.HandleError(Errorf(pos, format, args...))
}

// HandleError reports err. The returned error is non-nil once the Reporter
// has asked to abort, and callers should stop and return it.
func (h *Handler) HandleError(err error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.err != nil {
		return h.err
	}
	if ewp, ok := err.(ErrorWithPos); ok {
		h.reported = append(h.reported, ewp)
		err = h.reporter.Error(ewp)
	}
	h.err = err
	return err
}

func (h *Handler) HandleWarning(pos ast.Location, err error) {
	// no need for lock; warnings don't interact with mutable fields
	h.reporter.Warning(errorWithLocation{pos: pos, underlying: err})
}

// Error returns the outcome: the error the Reporter aborted with, else the
// aggregate of every reported error, else nil.
func (h *Handler) Error() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.err != nil {
		return h.err
	}
	if len(h.reported) > 0 {
		return append(Errors(nil), h.reported...)
	}
	return nil
}

// Reported returns the errors reported so far.
func (h *Handler) Reported() Errors {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append(Errors(nil), h.reported...)
}

func (h *Handler) ReporterError() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.err
}
