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
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// globalState holds everything a command touches outside of its flags, so
// tests can swap in an in-memory file system and buffers.
type globalState struct {
	ctx    context.Context
	fs     afero.Fs
	stdOut io.Writer
	stdErr io.Writer
	logger *logrus.Logger
}

func newGlobalState(ctx context.Context) *globalState {
	return &globalState{
		ctx:    ctx,
		fs:     afero.NewOsFs(),
		stdOut: os.Stdout,
		stdErr: os.Stderr,
		logger: &logrus.Logger{
			Out:       os.Stderr,
			Formatter: new(logrus.TextFormatter),
			Hooks:     make(logrus.LevelHooks),
			Level:     logrus.InfoLevel,
		},
	}
}
