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

package status

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/NVIDIA/radiodeck/api/radiodeck/v1alpha1"
	"github.com/NVIDIA/radiodeck/cmd/cli/common"
	"github.com/NVIDIA/radiodeck/internal/logger"
	"github.com/NVIDIA/radiodeck/internal/state"
	"github.com/NVIDIA/radiodeck/pkg/output"

	cli "github.com/urfave/cli/v2"
)

type command struct {
	log          *logger.FunLogger
	outputFormat string
}

// StatusOutput represents a recorded run for JSON/YAML output
type StatusOutput struct {
	Name       string                  `json:"name"`
	RunID      string                  `json:"runID,omitempty"`
	Phase      string                  `json:"phase"`
	Tokens     []string                `json:"tokens,omitempty"`
	Channel    *v1alpha1.ChannelParams `json:"channel,omitempty"`
	UpdatedAt  time.Time               `json:"updatedAt"`
	Age        string                  `json:"age"`
	CacheFile  string                  `json:"cacheFile"`
	Conditions []ConditionOutput       `json:"conditions,omitempty"`
	Steps      []v1alpha1.StepStatus   `json:"steps,omitempty"`
	Patches    []v1alpha1.PatchStatus  `json:"patches,omitempty"`
}

// ConditionOutput is a status condition without its bookkeeping fields
type ConditionOutput struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

// NewCommand constructs the status command with the specified logger
func NewCommand(log *logger.FunLogger) *cli.Command {
	c := command{
		log: log,
	}
	return c.build()
}

func (m *command) build() *cli.Command {
	// Create the 'status' command
	status := cli.Command{
		Name:      "status",
		Usage:     "Show the last provisioning run of a profile",
		ArgsUsage: "<profile-name>",
		Flags: []cli.Flag{
			common.OutputFlag(&m.outputFormat),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("profile name is required")
			}
			return m.run(c, c.Args().Get(0))
		},
	}

	return &status
}

func (m *command) run(c *cli.Context, name string) error {
	formatter, err := output.NewFormatter(m.outputFormat, c.App.Writer)
	if err != nil {
		return err
	}

	store := state.NewStore(m.log, c.String(common.FlagCachePath))
	record, err := store.Get(name)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	profile, err := store.Load(name)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	statusOutput := &StatusOutput{
		Name:      record.Name,
		RunID:     record.RunID,
		Phase:     record.Phase,
		Tokens:    profile.Status.Tokens,
		Channel:   profile.Status.Channel,
		UpdatedAt: record.UpdatedAt,
		Age:       time.Since(record.UpdatedAt).Round(time.Second).String(),
		CacheFile: record.File,
		Steps:     profile.Status.Steps,
		Patches:   profile.Status.Patches,
	}
	for _, cond := range profile.Status.Conditions {
		statusOutput.Conditions = append(statusOutput.Conditions, ConditionOutput{
			Type:    cond.Type,
			Status:  string(cond.Status),
			Reason:  cond.Reason,
			Message: cond.Message,
		})
	}

	// For table format, use custom formatting
	if formatter.Format() == output.FormatTable {
		return printTableFormat(c.App.Writer, statusOutput)
	}

	return formatter.Print(statusOutput)
}

// printTableFormat outputs status in a human-readable format
//
//nolint:errcheck // writer errors surface on flush
func printTableFormat(out io.Writer, s *StatusOutput) error {
	fmt.Fprintf(out, "Name: %s\n", s.Name)
	if s.RunID != "" {
		fmt.Fprintf(out, "Run ID: %s\n", s.RunID)
	}
	fmt.Fprintf(out, "Phase: %s\n", s.Phase)
	if len(s.Tokens) > 0 {
		fmt.Fprintf(out, "Tokens: %s\n", strings.Join(s.Tokens, " "))
	}
	if s.Channel != nil {
		fmt.Fprintf(out, "Channel: %d PRB, EARFCN %d, uplink %g, downlink %g\n",
			s.Channel.NumResourceBlocks, s.Channel.EARFCN, s.Channel.UplinkAmplitude, s.Channel.DownlinkGain)
	}
	fmt.Fprintf(out, "Updated: %s (%s ago)\n", s.UpdatedAt.Format("2006-01-02 15:04:05"), s.Age)
	fmt.Fprintf(out, "Cache File: %s\n", s.CacheFile)

	if len(s.Conditions) > 0 {
		fmt.Fprintf(out, "\n--- Conditions ---\n")
		for _, cond := range s.Conditions {
			fmt.Fprintf(out, "%s=%s (%s)", cond.Type, cond.Status, cond.Reason)
			if cond.Message != "" {
				fmt.Fprintf(out, ": %s", cond.Message)
			}
			fmt.Fprintln(out)
		}
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	if len(s.Steps) > 0 {
		fmt.Fprintf(out, "\n--- Steps ---\n")
		fmt.Fprintln(w, "STEP\tATTEMPTS\tRESULT\tCOMMAND")
		for _, step := range s.Steps {
			result := "failed"
			if step.Succeeded {
				result = "ok"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", step.Name, step.Attempts, result, step.Command)
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("failed to flush output: %w", err)
		}
	}

	if len(s.Patches) > 0 {
		fmt.Fprintf(out, "\n--- Patches ---\n")
		for _, p := range s.Patches {
			icon := "✓"
			if !p.Applied {
				icon = "-"
			}
			fmt.Fprintf(out, "  %s %s", icon, p.Target)
			if p.Reason != "" {
				fmt.Fprintf(out, " (%s)", p.Reason)
			}
			fmt.Fprintln(out)
		}
	}

	return nil
}
