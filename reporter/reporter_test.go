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

package reporter_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/protoschema/ast"
	"github.com/bufbuild/protoschema/reporter"
)

func TestErrorWithPos(t *testing.T) {
	t.Parallel()
	underlying := errors.New("boom")
	err := reporter.Error(ast.NewLocation("protos", "a.proto").At(3, 5), underlying)
	assert.Equal(t, "protos/a.proto:3:5: boom", err.Error())
	assert.Equal(t, "a.proto", err.GetPosition().Path)
	assert.ErrorIs(t, err, underlying)

	err = reporter.Errorf(ast.NewLocation("", "b.proto"), "bad tag %d", 7)
	assert.Equal(t, "b.proto: bad tag 7", err.Error())
}

func TestHandlerCollectsErrors(t *testing.T) {
	t.Parallel()
	h := reporter.NewHandler(nil)
	require.NoError(t, h.Error())
	require.NoError(t, h.HandleErrorf(ast.NewLocation("", "a.proto").At(1, 1), "first"))
	require.NoError(t, h.HandleErrorf(ast.NewLocation("", "a.proto").At(2, 1), "second"))

	err := h.Error()
	require.Error(t, err)
	assert.ErrorIs(t, err, reporter.ErrInvalidSource)
	assert.Equal(t, "a.proto:1:1: first\na.proto:2:1: second", err.Error())

	var errs reporter.Errors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 2)
	assert.Len(t, h.Reported(), 2)
	assert.NoError(t, h.ReporterError())
}

func TestHandlerAborts(t *testing.T) {
	t.Parallel()
	abort := errors.New("abort")
	var reported []string
	h := reporter.NewHandler(reporter.NewReporter(
		func(err reporter.ErrorWithPos) error {
			reported = append(reported, err.Unwrap().Error())
			return abort
		},
		nil,
	))
	assert.ErrorIs(t, h.HandleErrorf(ast.Location{}, "first"), abort)
	assert.ErrorIs(t, h.HandleErrorf(ast.Location{}, "second"), abort)
	assert.Equal(t, []string{"first"}, reported)
	assert.ErrorIs(t, h.Error(), abort)
	assert.ErrorIs(t, h.ReporterError(), abort)
}

func TestHandlerNonPositionalError(t *testing.T) {
	t.Parallel()
	failure := errors.New("loader failed")
	h := reporter.NewHandler(nil)
	assert.ErrorIs(t, h.HandleError(failure), failure)
	assert.Empty(t, h.Reported())
	assert.ErrorIs(t, h.Error(), failure)
}

func TestHandlerWarnings(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	var warnings []reporter.ErrorWithPos
	h := reporter.NewHandler(reporter.NewReporter(nil, func(err reporter.ErrorWithPos) {
		mu.Lock()
		defer mu.Unlock()
		warnings = append(warnings, err)
	}))
	unused := errors.New("unused")
	h.HandleWarning(ast.NewLocation("", "a.proto"), unused)
	require.Len(t, warnings, 1)
	assert.ErrorIs(t, warnings[0], unused)
	assert.Equal(t, "a.proto", warnings[0].GetPosition().Path)
	assert.NoError(t, h.Error())
}
