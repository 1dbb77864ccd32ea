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
	"io/fs"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/protoschema/reporter"
	"github.com/bufbuild/protoschema/schema"
)

var orderSources = map[string]string{
	"orders.proto": `syntax = "proto3";
package acme;

import "money.proto";

message Order {
  string id = 1;
  Money total = 2;
}

message Unrelated {
  string note = 1;
}

service OrderService {
  rpc GetOrder (Order) returns (Order);
}
`,
	"money.proto": `syntax = "proto3";
package acme;

message Money {
  int64 units = 1;
  string currency = 2;
}

message Discount {
  Money amount = 1;
}
`,
}

func newCompiler(srcs map[string]string) *Compiler {
	return &Compiler{
		Loader: &SourceLoader{Accessor: SourceAccessorFromMap(srcs)},
	}
}

func filePaths(s *schema.Schema) []string {
	var paths []string
	for _, file := range s.ProtoFiles() {
		paths = append(paths, file.Path())
	}
	return paths
}

func TestCompileEmpty(t *testing.T) {
	t.Parallel()
	s, err := newCompiler(nil).Compile(t.Context())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestCompileKeepsOnlyUsedImports(t *testing.T) {
	t.Parallel()
	s, err := newCompiler(orderSources).Compile(t.Context(), "orders.proto")
	require.NoError(t, err)

	assert.Equal(t, []string{"orders.proto", "money.proto"}, filePaths(s))
	assert.NotNil(t, s.TypeNamed("acme.Order"))
	assert.NotNil(t, s.TypeNamed("acme.Unrelated"))
	assert.NotNil(t, s.TypeNamed("acme.Money"))
	assert.Nil(t, s.TypeNamed("acme.Discount"))
	assert.NotNil(t, s.ServiceNamed("acme.OrderService"))
}

func TestCompileDeduplicatesRoots(t *testing.T) {
	t.Parallel()
	s, err := newCompiler(orderSources).Compile(t.Context(), "money.proto", "orders.proto", "money.proto")
	require.NoError(t, err)
	assert.Equal(t, []string{"money.proto", "orders.proto"}, filePaths(s))
	assert.NotNil(t, s.TypeNamed("acme.Discount"))
}

func TestCompilePrunes(t *testing.T) {
	t.Parallel()
	rules, err := schema.NewPruningRulesBuilder().
		Include("acme.OrderService").
		Exclude("acme.Money#currency").
		Build()
	require.NoError(t, err)

	compiler := newCompiler(orderSources)
	compiler.Rules = rules
	s, err := compiler.Compile(t.Context(), "orders.proto")
	require.NoError(t, err)

	assert.Nil(t, s.TypeNamed("acme.Unrelated"))
	money, ok := s.TypeNamed("acme.Money").(*schema.MessageType)
	require.True(t, ok)
	assert.NotNil(t, money.Field("units"))
	assert.Nil(t, money.Field("currency"))
	assert.Empty(t, rules.UnusedIncludes())
	assert.Empty(t, rules.UnusedExcludes())
}

func TestCompileWarnsAboutUnusedPatterns(t *testing.T) {
	t.Parallel()
	rules, err := schema.NewPruningRulesBuilder().
		Include("acme.Order", "acme.Typo").
		Build()
	require.NoError(t, err)

	var mu sync.Mutex
	var warnings []reporter.ErrorWithPos
	logger, hook := test.NewNullLogger()
	compiler := newCompiler(orderSources)
	compiler.Rules = rules
	compiler.Logger = logger
	compiler.Reporter = reporter.NewReporter(nil, func(err reporter.ErrorWithPos) {
		mu.Lock()
		defer mu.Unlock()
		warnings = append(warnings, err)
	})
	_, err = compiler.Compile(t.Context(), "orders.proto")
	require.NoError(t, err)

	require.Len(t, warnings, 1)
	assert.ErrorIs(t, warnings[0], ErrUnusedPattern)
	assert.Contains(t, warnings[0].Error(), "acme.Typo")
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "acme.Typo", entry.Data["include"])
}

func TestCompileCollectsSyntaxErrors(t *testing.T) {
	t.Parallel()
	srcs := map[string]string{
		"a.proto": "syntax = \"proto3\";\nmessage A {\n  string s = 1\n}\n",
		"b.proto": "syntax = \"proto3\";\nmessage B {\n  string s = 1\n}\n",
	}
	_, err := newCompiler(srcs).Compile(t.Context(), "a.proto", "b.proto")
	require.Error(t, err)
	assert.ErrorIs(t, err, reporter.ErrInvalidSource)
	var errs reporter.Errors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 2)
}

func TestCompileFailFast(t *testing.T) {
	t.Parallel()
	srcs := map[string]string{
		"a.proto": "syntax = \"proto3\";\nmessage A {\n  string s = 1\n}\n",
	}
	compiler := newCompiler(srcs)
	compiler.Reporter = reporter.NewReporter(func(err reporter.ErrorWithPos) error {
		return err
	}, nil)
	_, err := compiler.Compile(t.Context(), "a.proto")
	require.Error(t, err)
	var ewp reporter.ErrorWithPos
	require.ErrorAs(t, err, &ewp)
	assert.Equal(t, "a.proto", ewp.GetPosition().Path)
}

func TestCompileMissingFile(t *testing.T) {
	t.Parallel()
	_, err := newCompiler(orderSources).Compile(t.Context(), "missing.proto")
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCompileMissingImport(t *testing.T) {
	t.Parallel()
	srcs := map[string]string{
		"a.proto": "syntax = \"proto3\";\nimport \"gone.proto\";\nmessage A {}\n",
	}
	_, err := newCompiler(srcs).Compile(t.Context(), "a.proto")
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "gone.proto")
}

func TestCompileLinkError(t *testing.T) {
	t.Parallel()
	srcs := map[string]string{
		"a.proto": "syntax = \"proto3\";\npackage p;\nmessage A {\n  Missing m = 1;\n}\n",
	}
	_, err := newCompiler(srcs).Compile(t.Context(), "a.proto")
	require.Error(t, err)
	var linkErr *schema.LinkError
	require.ErrorAs(t, err, &linkErr)
	require.Len(t, linkErr.Errors, 1)
	assert.Contains(t, linkErr.Errors[0].Error(), "unable to resolve Missing")
	assert.ErrorIs(t, err, reporter.ErrInvalidSource)
}

func TestCompileCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := newCompiler(orderSources).Compile(ctx, "orders.proto")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCompileParallelism(t *testing.T) {
	t.Parallel()
	srcs := map[string]string{}
	var paths []string
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		path := name + ".proto"
		srcs[path] = "syntax = \"proto3\";\npackage " + name + ";\nimport \"money.proto\";\nmessage M { acme.Money m = 1; }\n"
		paths = append(paths, path)
	}
	srcs["money.proto"] = orderSources["money.proto"]

	for _, par := range []int{1, 2, 8} {
		compiler := newCompiler(srcs)
		compiler.MaxParallelism = par
		s, err := compiler.Compile(t.Context(), paths...)
		require.NoError(t, err)
		assert.Len(t, s.ProtoFiles(), len(paths)+1)
	}
}
