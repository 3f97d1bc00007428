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

package list

import (
	"fmt"

	"github.com/NVIDIA/radiodeck/cmd/cli/common"
	"github.com/NVIDIA/radiodeck/internal/logger"
	"github.com/NVIDIA/radiodeck/internal/state"
	"github.com/NVIDIA/radiodeck/pkg/output"

	cli "github.com/urfave/cli/v2"
)

type command struct {
	log          *logger.FunLogger
	outputFormat string
	quiet        bool
}

// NewCommand constructs the list command with the specified logger
func NewCommand(log *logger.FunLogger) *cli.Command {
	c := command{
		log: log,
	}
	return c.build()
}

func (m *command) build() *cli.Command {
	// Create the 'list' command
	list := cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List the recorded provisioning runs",
		Flags: []cli.Flag{
			common.OutputFlag(&m.outputFormat),
			&cli.BoolFlag{
				Name:        "names",
				Usage:       "Only print profile names",
				Destination: &m.quiet,
			},
		},
		Action: m.run,
	}

	return &list
}

func (m *command) run(c *cli.Context) error {
	formatter, err := output.NewFormatter(m.outputFormat, c.App.Writer)
	if err != nil {
		return err
	}

	records, err := state.NewStore(m.log, c.String(common.FlagCachePath)).List()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if m.quiet {
		for _, r := range records {
			if _, err := fmt.Fprintln(c.App.Writer, r.Name); err != nil {
				return fmt.Errorf("failed to write run name: %w", err)
			}
		}
		return nil
	}

	if len(records) == 0 && formatter.Format() == output.FormatTable {
		m.log.Info("No runs recorded")
		return nil
	}

	return formatter.Print(records)
}
