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

package dryrun

import (
	"github.com/NVIDIA/radiodeck/cmd/cli/common"
	"github.com/NVIDIA/radiodeck/internal/logger"
	"github.com/NVIDIA/radiodeck/pkg/actions"
	"github.com/NVIDIA/radiodeck/pkg/output"
	"github.com/NVIDIA/radiodeck/pkg/provisioner"

	cli "github.com/urfave/cli/v2"
)

type command struct {
	log          *logger.FunLogger
	outputFormat string
}

// NewCommand constructs the plan command with the specified logger
func NewCommand(log *logger.FunLogger) *cli.Command {
	c := command{
		log: log,
	}
	return c.build()
}

func (m *command) build() *cli.Command {
	// Create the 'plan' command
	plan := cli.Command{
		Name:      "plan",
		Aliases:   []string{"dryrun"},
		Usage:     "Show the steps and patches provision would run, without running them",
		ArgsUsage: "[tokens...]",
		Flags: []cli.Flag{
			common.OutputFlag(&m.outputFormat),
		},
		Action: m.run,
	}

	return &plan
}

func (m *command) run(c *cli.Context) error {
	formatter, err := output.NewFormatter(m.outputFormat, c.App.Writer)
	if err != nil {
		return err
	}

	plan, err := actions.Parse(c.Args().Slice())
	if err != nil {
		return err
	}

	profile, err := common.LoadProfile(m.log, c)
	if err != nil {
		return err
	}

	report, err := provisioner.Dryrun(m.log, plan, *profile)
	if err != nil {
		return err
	}

	for _, token := range report.Ignored {
		m.log.Warning("Ignoring unrecognized token %q", token)
	}
	return formatter.Print(report)
}
