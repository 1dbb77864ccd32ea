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
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config is the contents of a protoshake configuration file.
type Config struct {
	// ProtoPaths are the directories imports are resolved against.
	ProtoPaths []string `yaml:"proto_paths"`

	// Sources are doublestar patterns, relative to a proto path, naming the
	// files to link.
	Sources  []string `yaml:"sources"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`

	// Out is the directory pruned files are written to.
	Out string `yaml:"out"`

	// DescriptorSet, if set, is where the pruned schema is written as a
	// serialized google.protobuf.FileDescriptorSet.
	DescriptorSet string `yaml:"descriptor_set"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		ProtoPaths: []string{"."},
		Sources:    []string{"**/*.proto"},
		Out:        "out",
	}
}

// LoadConfig reads the configuration file at path. Keys missing from the
// file keep their default values, and unknown keys are an error.
func LoadConfig(fsys afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	config := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return config, nil
}

func configFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringP("config", "c", "", "YAML configuration file")
	flags.StringSliceP("proto-path", "I", nil, "directory to resolve imports against; may be repeated")
	flags.StringSlice("include", nil, "pruning pattern of an element to keep; may be repeated")
	flags.StringSlice("exclude", nil, "pruning pattern of an element to drop; may be repeated")
	return flags
}

// applyFlags overrides the values of c with the flags that were set on the
// command line. Positional arguments replace the source patterns.
func (c *Config) applyFlags(flags *pflag.FlagSet, args []string) error {
	for name, dst := range map[string]*[]string{
		"proto-path": &c.ProtoPaths,
		"include":    &c.Includes,
		"exclude":    &c.Excludes,
	} {
		if !flags.Changed(name) {
			continue
		}
		values, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = values
	}
	for name, dst := range map[string]*string{
		"out":            &c.Out,
		"descriptor-set": &c.DescriptorSet,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = value
	}
	if len(args) > 0 {
		c.Sources = args
	}
	return nil
}

// loadConfig builds the configuration for a command: the defaults, then the
// file named by --config, then the other flags.
func loadConfig(gs *globalState, flags *pflag.FlagSet, args []string) (*Config, error) {
	config := DefaultConfig()
	path, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	if path != "" {
		if config, err = LoadConfig(gs.fs, path); err != nil {
			return nil, err
		}
	}
	if err := config.applyFlags(flags, args); err != nil {
		return nil, err
	}
	return config, nil
}
