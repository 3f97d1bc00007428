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

package validate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/NVIDIA/radiodeck/api/radiodeck/v1alpha1"
	"github.com/NVIDIA/radiodeck/cmd/cli/common"
	"github.com/NVIDIA/radiodeck/internal/logger"
	"github.com/NVIDIA/radiodeck/pkg/jyaml"
	"github.com/NVIDIA/radiodeck/pkg/patch"

	cli "github.com/urfave/cli/v2"
)

type command struct {
	log    *logger.FunLogger
	strict bool

	lookPath func(file string) (string, error)
}

// ValidationResult represents the result of a validation check
type ValidationResult struct {
	Check   string
	Passed  bool
	Warning bool
	Message string
}

// NewCommand constructs the validate command with the specified logger
func NewCommand(log *logger.FunLogger) *cli.Command {
	c := command{
		log:      log,
		lookPath: exec.LookPath,
	}
	return c.build()
}

func (m *command) build() *cli.Command {
	validateCmd := cli.Command{
		Name:      "validate",
		Usage:     "Validate a NodeProfile and the host it will provision",
		ArgsUsage: "[profile.yaml]",
		Description: `Validate a profile before running provision.

Checks performed:
  - Profile file is valid YAML with no unknown fields
  - Profile fields are consistent
  - ue.conf, enb.conf and sib.conf exist in the config directory
  - The tools provisioning shells out to are installed

Examples:
  # Validate a profile file
  radiodeck validate node.yaml

  # Validate the built-in profile against a local config directory
  radiodeck --config-dir ./srslte validate

  # Strict mode (fail on warnings)
  radiodeck validate --strict node.yaml`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "strict",
				Usage:       "Fail on warnings (not just errors)",
				Destination: &m.strict,
			},
		},
		Action: m.run,
	}

	return &validateCmd
}

func (m *command) run(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = c.String(common.FlagProfile)
	}

	results := make([]ValidationResult, 0)

	// 1. Validate the profile file
	profile, err := m.validateProfileFile(path)
	if err != nil {
		results = append(results, ValidationResult{
			Check:   "Profile file",
			Message: err.Error(),
		})
		m.printResults(c.App.Writer, results)
		return fmt.Errorf("validation failed")
	}
	source := "Built-in profile"
	if path != "" {
		source = "Valid YAML structure"
	}
	results = append(results, ValidationResult{
		Check:   "Profile file",
		Passed:  true,
		Message: source,
	})

	common.ApplyOverrides(c, profile)
	v1alpha1.SetDefaults(profile)

	// 2. Validate the profile fields
	results = append(results, m.validateFields(profile))

	// 3. Validate the channel configuration files
	results = append(results, m.validateConfigFiles(profile)...)

	// 4. Validate the external tools
	results = append(results, m.validateTools(profile)...)

	m.printResults(c.App.Writer, results)

	hasErrors, hasWarnings := false, false
	for _, r := range results {
		switch {
		case r.Passed:
		case r.Warning:
			hasWarnings = true
		default:
			hasErrors = true
		}
	}

	if hasErrors {
		return fmt.Errorf("validation failed with errors")
	}
	if hasWarnings && m.strict {
		return fmt.Errorf("validation failed with warnings (strict mode)")
	}

	m.log.Check("Validation passed")
	return nil
}

func (m *command) validateProfileFile(path string) (*v1alpha1.NodeProfile, error) {
	if path == "" {
		profile := v1alpha1.DefaultNodeProfile()
		return &profile, nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	profile, err := jyaml.UnmarshalStrictFromFile[v1alpha1.NodeProfile](path)
	if err != nil {
		return nil, fmt.Errorf("invalid YAML: %v", err)
	}
	if profile.Kind != "" && profile.Kind != v1alpha1.Kind {
		return nil, fmt.Errorf("unexpected kind %q, expected %q", profile.Kind, v1alpha1.Kind)
	}

	return &profile, nil
}

func (m *command) validateFields(profile *v1alpha1.NodeProfile) ValidationResult {
	if err := profile.Validate(); err != nil {
		return ValidationResult{
			Check:   "Profile fields",
			Message: err.Error(),
		}
	}
	return ValidationResult{
		Check:   "Profile fields",
		Passed:  true,
		Message: fmt.Sprintf("Profile %s, privilege %s, %s backend", profile.Name, profile.Spec.Privilege, profile.Spec.Channel.Backend),
	}
}

// validateConfigFiles only warns: the files are created by the srslte
// package, which provisioning may be about to install.
func (m *command) validateConfigFiles(profile *v1alpha1.NodeProfile) []ValidationResult {
	results := make([]ValidationResult, 0)

	for _, s := range patch.DefaultSpecs() {
		target := filepath.Join(profile.Spec.Channel.ConfigDir, s.Name)
		info, err := os.Stat(target)
		switch {
		case err != nil:
			results = append(results, ValidationResult{
				Check:   s.Name,
				Warning: true,
				Message: fmt.Sprintf("Warning: %s is not readable: %v", target, err),
			})
		case info.IsDir():
			results = append(results, ValidationResult{
				Check:   s.Name,
				Message: fmt.Sprintf("%s is a directory", target),
			})
		default:
			results = append(results, ValidationResult{
				Check:   s.Name,
				Passed:  true,
				Message: fmt.Sprintf("Found: %s", target),
			})
		}
	}

	return results
}

func (m *command) validateTools(profile *v1alpha1.NodeProfile) []ValidationResult {
	type tool struct {
		name     string
		required bool
		reason   string
	}

	tools := []tool{
		{name: "apt-get", required: true, reason: "installs packages"},
		{name: "apt-key", required: true, reason: "imports repository keys"},
		{name: "add-apt-repository", required: true, reason: "adds the package repository"},
		{name: profile.Spec.Firmware.Command, reason: "downloads firmware images, installed with uhd-host"},
	}
	if profile.Spec.Privilege == v1alpha1.PrivilegeSudo {
		tools = append(tools, tool{name: "sudo", required: true, reason: "privilege is sudo"})
	}
	if profile.Spec.Channel.Backend == v1alpha1.PatchBackendPatch {
		tools = append(tools, tool{name: "patch", required: true, reason: "channel backend is patch"})
	}

	results := make([]ValidationResult, 0, len(tools))
	for _, t := range tools {
		path, err := m.lookPath(t.name)
		if err == nil {
			results = append(results, ValidationResult{
				Check:   t.name,
				Passed:  true,
				Message: fmt.Sprintf("Found: %s", path),
			})
			continue
		}

		r := ValidationResult{
			Check:   t.name,
			Message: fmt.Sprintf("%s not found in PATH (%s)", t.name, t.reason),
		}
		if !t.required {
			r.Warning = true
			r.Message = "Warning: " + r.Message
		}
		results = append(results, r)
	}

	return results
}

func (m *command) printResults(w io.Writer, results []ValidationResult) {
	fmt.Fprintln(w, "\n=== Validation Results ===")
	fmt.Fprintln(w)

	for _, r := range results {
		icon := "✓"
		switch {
		case r.Passed:
		case r.Warning:
			icon = "!"
		default:
			icon = "✗"
		}
		fmt.Fprintf(w, "  %s %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)
	}
}
