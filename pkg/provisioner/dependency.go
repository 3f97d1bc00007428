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

	"github.com/NVIDIA/radiodeck/api/radiodeck/v1alpha1"
	"github.com/NVIDIA/radiodeck/pkg/actions"
	"github.com/NVIDIA/radiodeck/pkg/command"
)

const (
	repositoryKeyStep = "repository-key"
	repositoryStep    = "repository"
	packageIndexStep  = "package-index"
	firmwareStep      = "firmware-images"
)

// installOrder is the order packages are installed in, whatever order the
// keywords were given in.
var installOrder = []string{
	actions.KeywordGNURadio,
	actions.KeywordGNURadioCompanion,
	actions.KeywordSrsLTE,
}

// Step is one retried external command.
type Step struct {
	Name        string
	Description string
	Command     command.Command
	// FailureMessage is printed after every failed attempt.
	FailureMessage string
}

// DependencyResolver is a struct that holds the step list
type DependencyResolver struct {
	Steps []Step
	plan  actions.Plan
	spec  v1alpha1.NodeProfileSpec
}

// NewDependencies returns a resolver for plan under the given profile spec.
func NewDependencies(plan actions.Plan, spec v1alpha1.NodeProfileSpec) *DependencyResolver {
	return &DependencyResolver{
		plan: plan.Bind(spec.Packages),
		spec: spec,
	}
}

func (d *DependencyResolver) privilege() command.Privilege {
	return command.Privilege(d.spec.Privilege)
}

func (d *DependencyResolver) withRepository() {
	repo := d.spec.Repository

	args := []string{"adv", "--keyserver", repo.Keyserver}
	if len(repo.KeyIDs) > 0 {
		args = append(append(args, "--recv-keys"), repo.KeyIDs...)
	} else {
		args = append(args, "--refresh-keys")
	}

	d.Steps = append(d.Steps,
		Step{
			Name:           repositoryKeyStep,
			Description:    fmt.Sprintf("Registering repository keys from %s", repo.Keyserver),
			Command:        command.New(d.privilege(), "apt-key", args...),
			FailureMessage: fmt.Sprintf("Failed to import repository keys from %s", repo.Keyserver),
		},
		Step{
			Name:           repositoryStep,
			Description:    fmt.Sprintf("Adding repository %s", repo.PPA),
			Command:        command.New(d.privilege(), "add-apt-repository", "-y", repo.PPA),
			FailureMessage: fmt.Sprintf("Failed to add repository %s", repo.PPA),
		},
		Step{
			Name:           packageIndexStep,
			Description:    "Refreshing package index",
			Command:        command.New(d.privilege(), "apt-get", "update"),
			FailureMessage: "Failed to refresh package index",
		},
	)
}

func (d *DependencyResolver) withPackage(a actions.Action) {
	set := *a.Package
	args := append([]string{"install", "-y", set.Name}, set.ExtraDeps...)
	d.Steps = append(d.Steps, Step{
		Name:           "install-" + a.Keyword,
		Description:    fmt.Sprintf("Installing %s", a.Keyword),
		Command:        command.New(d.privilege(), "apt-get", args...),
		FailureMessage: fmt.Sprintf("Failed to install %s", a.Keyword),
	})
}

func (d *DependencyResolver) withFirmware() {
	fw := d.spec.Firmware
	d.Steps = append(d.Steps, Step{
		Name:           firmwareStep,
		Description:    "Downloading firmware images",
		Command:        command.New(d.privilege(), fw.Command, fw.Args...),
		FailureMessage: "Failed to download firmware images",
	})
}

// Resolve returns the steps in the order they must run: repository setup,
// the requested installs, then the firmware download. The firmware step is
// always present, even when nothing is installed.
func (d *DependencyResolver) Resolve() []Step {
	d.Steps = nil
	d.withRepository()

	for _, keyword := range installOrder {
		for _, a := range d.plan.Installs {
			if a.Keyword == keyword {
				d.withPackage(a)
			}
		}
	}

	d.withFirmware()
	return d.Steps
}
