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

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type rootCommand struct {
	gs       *globalState
	cmd      *cobra.Command
	logLevel string
}

func newRootCommand(gs *globalState) *rootCommand {
	c := &rootCommand{gs: gs}
	c.cmd = &cobra.Command{
		Use:               "protoshake",
		Short:             "link and prune protobuf schemas",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
	}
	c.cmd.PersistentFlags().AddFlagSet(c.rootCmdPersistentFlagSet())
	c.cmd.PersistentFlags().AddFlagSet(configFlagSet())
	c.cmd.SetOut(gs.stdOut)
	c.cmd.SetErr(gs.stdErr)
	c.cmd.AddCommand(
		getPruneCmd(gs),
		getCheckCmd(gs),
		getListCmd(gs),
	)
	return c
}

func (c *rootCommand) rootCmdPersistentFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.StringVar(&c.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	return flags
}

func (c *rootCommand) persistentPreRunE(_ *cobra.Command, _ []string) error {
	level, err := logrus.ParseLevel(c.logLevel)
	if err != nil {
		return err
	}
	c.gs.logger.SetLevel(level)
	return nil
}

// errSchema is returned once the individual problems with a schema have
// been printed.
var errSchema = errors.New("schema has errors")

// execute runs the command line args and returns the process exit code.
func execute(gs *globalState, args []string) int {
	c := newRootCommand(gs)
	c.cmd.SetArgs(args)
	if err := c.cmd.ExecuteContext(gs.ctx); err != nil {
		if errors.Is(err, errSchema) {
			fmt.Fprintln(gs.stdErr, err)
		} else {
			gs.logger.Error(err)
		}
		return 1
	}
	return 0
}
