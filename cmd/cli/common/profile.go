/*
 * Copyright (c) 2026, NVIDIA CORPORATION.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package common holds the flags and profile loading shared by every
// radiodeck subcommand.
package common

import (
	"fmt"

	cli "github.com/urfave/cli/v2"

	"github.com/NVIDIA/radiodeck/api/radiodeck/v1alpha1"
	"github.com/NVIDIA/radiodeck/internal/logger"
	"github.com/NVIDIA/radiodeck/internal/state"
	"github.com/NVIDIA/radiodeck/pkg/jyaml"
)

// Global flag names
const (
	FlagProfile     = "profile"
	FlagConfigDir   = "config-dir"
	FlagNoSudo      = "no-sudo"
	FlagMaxAttempts = "max-attempts"
	FlagCachePath   = "cachepath"
	FlagOutput      = "output"
)

// GlobalFlags returns the flags accepted before any subcommand.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FlagProfile,
			Aliases: []string{"f"},
			Usage:   "Path to a NodeProfile file (default: built-in profile)",
			EnvVars: []string{"RADIODECK_PROFILE"},
		},
		&cli.StringFlag{
			Name:  FlagConfigDir,
			Usage: "Directory holding ue.conf, enb.conf and sib.conf",
		},
		&cli.BoolFlag{
			Name:  FlagNoSudo,
			Usage: "Run every command as the invoking user",
		},
		&cli.IntFlag{
			Name:  FlagMaxAttempts,
			Usage: "Give up on a step after this many attempts (0 retries forever)",
		},
		&cli.StringFlag{
			Name:    FlagCachePath,
			Aliases: []string{"c"},
			Usage:   "Path to the cache directory",
			EnvVars: []string{state.EnvCachePath},
		},
	}
}

// OutputFlag is the -o flag of commands that print structured results.
func OutputFlag(dest *string) cli.Flag {
	return &cli.StringFlag{
		Name:        FlagOutput,
		Aliases:     []string{"o"},
		Usage:       "Output format: table, json, yaml",
		Value:       "table",
		Destination: dest,
	}
}

// LoadProfile reads the profile named by the global flags, applies the
// overrides given on the command line, fills defaults and validates it.
func LoadProfile(log *logger.FunLogger, c *cli.Context) (*v1alpha1.NodeProfile, error) {
	profile := v1alpha1.DefaultNodeProfile()

	if path := c.String(FlagProfile); path != "" {
		var err error
		profile, err = jyaml.UnmarshalStrictFromFile[v1alpha1.NodeProfile](path)
		if err != nil {
			return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
		}
		log.Debug("Loaded profile %s from %s", profile.Name, path)
	}

	ApplyOverrides(c, &profile)
	v1alpha1.SetDefaults(&profile)
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", profile.Name, err)
	}
	return &profile, nil
}

// ApplyOverrides copies the global flags that were set onto profile.
func ApplyOverrides(c *cli.Context, profile *v1alpha1.NodeProfile) {
	if c.IsSet(FlagConfigDir) {
		profile.Spec.Channel.ConfigDir = c.String(FlagConfigDir)
	}
	if c.Bool(FlagNoSudo) {
		profile.Spec.Privilege = v1alpha1.PrivilegeNone
	}
	if c.IsSet(FlagMaxAttempts) {
		profile.Spec.Retry.MaxAttempts = c.Int(FlagMaxAttempts)
	}
}
