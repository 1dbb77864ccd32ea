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

	"github.com/bufbuild/protoschema/schema"
	"github.com/bufbuild/protoschema/walk"
)

type listCmd struct {
	gs        *globalState
	typesOnly bool
}

func (c *listCmd) run(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(c.gs, cmd.Flags(), args)
	if err != nil {
		return err
	}
	result, err := compile(c.gs, config, true)
	if err != nil {
		return err
	}
	return walk.Schema(result.schema, func(name string, element any) error {
		switch element.(type) {
		case *schema.OneOf:
			return nil
		case schema.Type, *schema.Service:
		default:
			if c.typesOnly {
				return nil
			}
		}
		_, err := fmt.Fprintln(c.gs.stdOut, name)
		return err
	})
}

func getListCmd(gs *globalState) *cobra.Command {
	c := &listCmd{gs: gs}
	cmd := &cobra.Command{
		Use:   "list [source patterns...]",
		Short: "Print the identifiers a schema retains after pruning",
		Long: `Print the identifiers a schema retains after pruning.

Identifiers are printed the way pruning patterns name them: "pkg.Type" for
types and services, "pkg.Type#member" for fields, enum constants and rpcs.`,
		RunE: c.run,
	}
	cmd.Flags().BoolVar(&c.typesOnly, "types", false, "print only types and services")
	return cmd
}
