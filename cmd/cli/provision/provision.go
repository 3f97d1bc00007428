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

package provision

import (
	"io"

	"github.com/NVIDIA/radiodeck/cmd/cli/common"
	"github.com/NVIDIA/radiodeck/internal/logger"
	"github.com/NVIDIA/radiodeck/internal/state"
	"github.com/NVIDIA/radiodeck/pkg/actions"
	execcmd "github.com/NVIDIA/radiodeck/pkg/command"
	"github.com/NVIDIA/radiodeck/pkg/provisioner"

	cli "github.com/urfave/cli/v2"
)

type command struct {
	log *logger.FunLogger
	// runner executes the external tools. Nil selects the local host.
	runner execcmd.Runner
}

// NewCommand constructs the provision command with the specified logger
func NewCommand(log *logger.FunLogger) *cli.Command {
	c := command{
		log: log,
	}
	return c.build()
}

func (m *command) build() *cli.Command {
	provisionCmd := cli.Command{
		Name:      "provision",
		Usage:     "Install the radio stacks and configure the channel on this node",
		ArgsUsage: "[gnuradio] [gnuradio-companion] [srslte] [channel_setup-<prb>-<earfcn>-<ul_amp>-<dl_gain>]",
		Description: `Provision the local node.

Tokens may be given in any order; unknown tokens are ignored. The steps always
run in the same order: repository keys, repository, package index, gnuradio,
gnuradio-companion, srslte, firmware images. Every step is retried until it
succeeds (see --max-attempts). When a channel_setup token is present,
ue.conf and enb.conf are patched afterwards, and sib.conf as well for 6 PRB
cells.

Examples:
  # Install srsLTE and configure a 50 PRB cell on EARFCN 3400
  radiodeck provision srslte channel_setup-50-3400-10-20

  # Install everything with a custom profile
  radiodeck -f node.yaml provision gnuradio gnuradio-companion srslte`,
		Action: m.run,
	}

	return &provisionCmd
}

func (m *command) run(c *cli.Context) error {
	tokens := c.Args().Slice()

	plan, err := actions.Parse(tokens)
	if err != nil {
		return err
	}

	profile, err := common.LoadProfile(m.log, c)
	if err != nil {
		return err
	}
	profile.Status.Tokens = tokens

	runner := m.runner
	if runner == nil {
		var stream io.Writer
		if m.log.Verbosity() >= logger.VerbosityVerbose {
			stream = m.log.Out
		}
		runner = execcmd.NewExecRunner(stream)
	}

	m.log.Info("Provisioning %s with %v", profile.Name, plan.Actions())
	runErr := provisioner.New(m.log, runner, profile).Run(c.Context, plan)

	store := state.NewStore(m.log, c.String(common.FlagCachePath))
	if err := store.Save(profile); err != nil {
		m.log.Warning("Failed to record run: %v", err)
	}

	if runErr != nil {
		return runErr
	}
	m.log.Check("Node %s provisioned", profile.Name)
	return nil
}
