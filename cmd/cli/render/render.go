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

package render

import (
	"errors"
	"fmt"

	"github.com/NVIDIA/radiodeck/cmd/cli/common"
	"github.com/NVIDIA/radiodeck/internal/logger"
	"github.com/NVIDIA/radiodeck/pkg/actions"
	"github.com/NVIDIA/radiodeck/pkg/patch"

	cli "github.com/urfave/cli/v2"
)

type command struct {
	log *logger.FunLogger
}

// NewCommand constructs the render command with the specified logger
func NewCommand(log *logger.FunLogger) *cli.Command {
	c := command{
		log: log,
	}
	return c.build()
}

func (m *command) build() *cli.Command {
	// Create the 'render' command
	render := cli.Command{
		Name:      "render",
		Usage:     "Print the diffs a channel_setup token would apply",
		ArgsUsage: "channel_setup-<prb>-<earfcn>-<uplink>-<downlink>",
		Description: `Render the configuration patches without touching any file.

The output is a series of unified diffs that patch(1) accepts, so it can
be reviewed or applied by hand:

  radiodeck render channel_setup-6-2850-10-20 > channel.diff
  cd /etc/srslte && patch -p1 --dry-run < channel.diff`,
		Action: m.run,
	}

	return &render
}

func (m *command) run(c *cli.Context) error {
	plan, err := actions.Parse(c.Args().Slice())
	if err != nil {
		return err
	}
	if !plan.WantsConfigure || plan.Channel == nil {
		return errors.New("a channel_setup token is required")
	}
	for _, a := range plan.Installs {
		m.log.Debug("Ignoring install keyword %s", a.Keyword)
	}

	profile, err := common.LoadProfile(m.log, c)
	if err != nil {
		return err
	}

	rendered, err := patch.New(m.log, nil, profile.Spec).Render(*plan.Channel)
	if err != nil {
		return err
	}

	for _, r := range rendered {
		if r.Skipped {
			_, err = fmt.Fprintf(c.App.Writer, "# %s: skipped (%s)\n", r.Target, r.Reason)
		} else {
			_, err = fmt.Fprint(c.App.Writer, r.Diff)
		}
		if err != nil {
			return fmt.Errorf("failed to write %s patch: %w", r.Name, err)
		}
	}
	return nil
}
