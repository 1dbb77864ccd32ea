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
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"google.golang.org/protobuf/proto"
)

type pruneCmd struct {
	gs     *globalState
	strict bool
}

func (c *pruneCmd) flagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringP("out", "o", "", "directory to write the pruned .proto files to")
	flags.String("descriptor-set", "", "also write the pruned schema as a serialized FileDescriptorSet")
	flags.BoolVar(&c.strict, "strict", false, "fail when a pruning pattern matches nothing")
	return flags
}

func (c *pruneCmd) run(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(c.gs, cmd.Flags(), args)
	if err != nil {
		return err
	}
	result, err := compile(c.gs, config, true)
	if err != nil {
		return err
	}
	if c.strict && result.unused > 0 {
		return fmt.Errorf("%d pruning patterns matched nothing", result.unused)
	}

	var written int
	for _, file := range result.schema.ProtoFiles() {
		if isWellKnown(file.Path()) {
			continue
		}
		path := filepath.Join(config.Out, filepath.FromSlash(file.Path()))
		if err := c.gs.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := afero.WriteFile(c.gs.fs, path, []byte(file.ToSchema()), 0o644); err != nil {
			return err
		}
		c.gs.logger.WithField("path", path).Debug("wrote file")
		written++
	}
	if config.DescriptorSet != "" {
		data, err := proto.Marshal(result.schema.FileDescriptorSet())
		if err != nil {
			return fmt.Errorf("failed to marshal descriptor set: %w", err)
		}
		if err := c.gs.fs.MkdirAll(filepath.Dir(config.DescriptorSet), 0o755); err != nil {
			return err
		}
		if err := afero.WriteFile(c.gs.fs, config.DescriptorSet, data, 0o644); err != nil {
			return err
		}
	}
	c.gs.logger.WithFields(logrus.Fields{
		"files": written,
		"out":   config.Out,
	}).Info("wrote pruned schema")
	return nil
}

func getPruneCmd(gs *globalState) *cobra.Command {
	c := &pruneCmd{gs: gs}
	cmd := &cobra.Command{
		Use:   "prune [source patterns...]",
		Short: "Prune a schema and write the result",
		Long: `Prune a schema and write the result.

The sources are linked, then everything that is not reachable from the
include patterns, or that matches an exclude pattern, is removed. Each file
that still declares something is written to the output directory.`,
		RunE: c.run,
	}
	cmd.Flags().AddFlagSet(c.flagSet())
	return cmd
}
