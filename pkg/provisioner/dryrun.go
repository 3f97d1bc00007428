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

package provisioner

import (
	"fmt"
	"strconv"

	"github.com/NVIDIA/radiodeck/api/radiodeck/v1alpha1"
	"github.com/NVIDIA/radiodeck/internal/logger"
	"github.com/NVIDIA/radiodeck/pkg/actions"
	"github.com/NVIDIA/radiodeck/pkg/patch"
)

// PlannedStep is a step as reported by a dry run.
type PlannedStep struct {
	Name    string `json:"name"`
	Command string `json:"command"`
}

// DryrunReport describes what a provisioning run would do.
type DryrunReport struct {
	Steps   []PlannedStep    `json:"steps"`
	Patches []patch.Rendered `json:"patches,omitempty"`
	Ignored []string         `json:"ignored,omitempty"`
}

// Headers implements output.TableData.
func (r *DryrunReport) Headers() []string {
	return []string{"#", "STEP", "ACTION"}
}

// Rows implements output.TableData.
func (r *DryrunReport) Rows() [][]string {
	rows := make([][]string, 0, len(r.Steps)+len(r.Patches))
	for _, s := range r.Steps {
		rows = append(rows, []string{strconv.Itoa(len(rows) + 1), s.Name, s.Command})
	}
	for _, p := range r.Patches {
		action := "patch " + p.Target
		if p.Skipped {
			action = "skip " + p.Target + " (" + p.Reason + ")"
		}
		rows = append(rows, []string{strconv.Itoa(len(rows) + 1), "channel-" + p.Name, action})
	}
	return rows
}

// Dryrun validates the profile and resolves plan without running anything.
func Dryrun(log logger.Logger, plan actions.Plan, profile v1alpha1.NodeProfile) (*DryrunReport, error) {
	done := log.Loading("Resolving provisioning steps \U0001F4E6 ...")

	if err := profile.Validate(); err != nil {
		done(logger.ErrLoadingFailed)
		return nil, fmt.Errorf("invalid profile %s: %w", profile.Name, err)
	}

	report := &DryrunReport{Ignored: plan.Ignored}
	for _, step := range NewDependencies(plan, profile.Spec).Resolve() {
		report.Steps = append(report.Steps, PlannedStep{Name: step.Name, Command: step.Command.String()})
	}

	if plan.WantsConfigure && plan.Channel != nil {
		rendered, err := patch.New(log, nil, profile.Spec).Render(*plan.Channel)
		if err != nil {
			done(logger.ErrLoadingFailed)
			return nil, err
		}
		report.Patches = rendered
	}

	done(nil)
	return report, nil
}
