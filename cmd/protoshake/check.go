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
	"fmt"

	"github.com/spf13/cobra"
)

type checkCmd struct {
	gs *globalState
}

func (c *checkCmd) run(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(c.gs, cmd.Flags(), args)
	if err != nil {
		return err
	}
	result, err := compile(c.gs, config, false)
	if err != nil {
		return err
	}
	for _, file := range result.schema.ProtoFiles() {
		fmt.Fprintln(c.gs.stdOut, file.Path())
	}
	return nil
}

func getCheckCmd(gs *globalState) *cobra.Command {
	c := &checkCmd{gs: gs}
	return &cobra.Command{
		Use:   "check [source patterns...]",
		Short: "Link a schema and report every error",
		Long: `Link a schema and report every error.

On success the files of the linked schema are printed, one per line: the
sources followed by the imports they use.`,
		RunE: c.run,
	}
}
