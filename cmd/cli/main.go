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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/NVIDIA/radiodeck/cmd/cli/common"
	"github.com/NVIDIA/radiodeck/cmd/cli/dryrun"
	"github.com/NVIDIA/radiodeck/cmd/cli/list"
	"github.com/NVIDIA/radiodeck/cmd/cli/provision"
	"github.com/NVIDIA/radiodeck/cmd/cli/render"
	"github.com/NVIDIA/radiodeck/cmd/cli/status"
	"github.com/NVIDIA/radiodeck/cmd/cli/validate"
	"github.com/NVIDIA/radiodeck/internal/logger"

	cli "github.com/urfave/cli/v2"
)

const (
	// ProgramName is the canonical name of this program
	ProgramName = "radiodeck"
)

type config struct {
	Debug   bool
	Verbose bool
	Quiet   bool
}

// verbosity maps the global flags to a logger level. Debug wins over
// verbose, which wins over quiet.
func (c config) verbosity() logger.Verbosity {
	switch {
	case c.Debug:
		return logger.VerbosityDebug
	case c.Verbose:
		return logger.VerbosityVerbose
	case c.Quiet:
		return logger.VerbosityQuiet
	default:
		return logger.VerbosityNormal
	}
}

func init() {
	// -v is the verbose flag
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}
}

func main() {
	log := logger.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp(log).RunContext(ctx, os.Args)
	stop()
	if err != nil {
		log.Error(err)
		log.Exit(1)
	}
}

func newApp(log *logger.FunLogger) *cli.App {
	config := config{}

	// Create the top-level CLI
	c := cli.NewApp()
	c.Name = ProgramName
	c.Usage = "Provision software-defined radio testbed nodes"
	c.Description = `
Radiodeck installs the software-defined radio stack on a testbed node and
writes the radio channel parameters into the srsLTE configuration files.

Provisioning is driven by a list of tokens: the packages to install
(gnuradio, gnuradio-companion, srslte) and an optional
channel_setup-<prb>-<earfcn>-<uplink>-<downlink> token. Unrecognized tokens
are ignored, so an experiment's full parameter list can be passed as is.

Examples:
  # Install srsLTE and configure a 6 PRB cell on EARFCN 2850
  radiodeck provision srslte channel_setup-6-2850-10-20

  # Show what provision would do
  radiodeck plan gnuradio-companion srslte

  # Print the configuration diffs for review
  radiodeck render channel_setup-50-3400-10-20

  # Check a node profile and the host
  radiodeck validate node.yaml

  # Show the last run of a profile
  radiodeck status cellsdr1-ustar

  # Use a node profile and give up on a step after 5 attempts
  radiodeck -f node.yaml --max-attempts 5 provision srslte`
	c.Version = "0.1.0"
	c.EnableBashCompletion = true

	// Setup the flags for this command
	c.Flags = append(common.GlobalFlags(),
		&cli.BoolFlag{
			Name:        "debug",
			Aliases:     []string{"d"},
			Usage:       "Enable debug-level logging",
			Destination: &config.Debug,
			EnvVars:     []string{"DEBUG"},
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Aliases:     []string{"v"},
			Usage:       "Show debug messages and stream command output",
			Destination: &config.Verbose,
		},
		&cli.BoolFlag{
			Name:        "quiet",
			Aliases:     []string{"q"},
			Usage:       "Only print warnings and errors",
			Destination: &config.Quiet,
		},
	)
	c.Before = func(*cli.Context) error {
		log.SetVerbosity(config.verbosity())
		return nil
	}

	// Define the subcommands
	c.Commands = []*cli.Command{
		list.NewCommand(log),
		dryrun.NewCommand(log),
		provision.NewCommand(log),
		render.NewCommand(log),
		status.NewCommand(log),
		validate.NewCommand(log),
	}

	return c
}
