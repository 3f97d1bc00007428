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

// Package command is the boundary between radiodeck and the external tools
// it drives: the package manager, the repository tooling, the firmware
// downloader and the patch utility.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Privilege is the capability a command runs with. It is carried on every
// Command explicitly instead of being baked into the command line.
type Privilege string

const (
	// PrivilegeNone runs the command as the invoking user.
	PrivilegeNone Privilege = "none"
	// PrivilegeSudo runs the command through sudo.
	PrivilegeSudo Privilege = "sudo"
)

// Command describes one invocation of an external tool.
type Command struct {
	Name      string
	Args      []string
	Privilege Privilege
	// Stdin, when set, is streamed to the process.
	Stdin io.Reader
	// Quiet keeps the output out of the runner's Stream. It is still
	// captured in the Result.
	Quiet bool
}

// New returns a Command running name with args under privilege p.
func New(p Privilege, name string, args ...string) Command {
	return Command{Name: name, Args: args, Privilege: p}
}

// Argv returns the full argument vector, including the privilege prefix.
func (c Command) Argv() []string {
	argv := make([]string, 0, len(c.Args)+3)
	if c.Privilege == PrivilegeSudo {
		// -E keeps DEBIAN_FRONTEND and proxy settings for apt.
		argv = append(argv, "sudo", "-E")
	}
	argv = append(argv, c.Name)
	return append(argv, c.Args...)
}

// String renders the command the way an operator would type it.
func (c Command) String() string {
	argv := c.Argv()
	quoted := make([]string, len(argv))
	for i, a := range argv {
		if a == "" || strings.ContainsAny(a, " \t\"'$") {
			quoted[i] = fmt.Sprintf("%q", a)
			continue
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}

// Result is the outcome of a finished command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success returns true if the command exited with code 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes commands. A non-zero exit is reported through Result, not
// through the error; the error is reserved for commands that could not be
// started at all or were interrupted.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands on the local host with os/exec.
type ExecRunner struct {
	// Env is appended to the inherited environment.
	Env []string
	// Stream, when set, receives a copy of stdout and stderr while the
	// command runs, unless the command is Quiet.
	Stream io.Writer
}

// NewExecRunner returns an ExecRunner suitable for non-interactive apt use.
func NewExecRunner(stream io.Writer) *ExecRunner {
	return &ExecRunner{
		Env:    []string{"DEBIAN_FRONTEND=noninteractive"},
		Stream: stream,
	}
}

// Run executes cmd and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	argv := cmd.Argv()
	c := exec.CommandContext(ctx, argv[0], argv[1:]...) // nolint:gosec
	c.Env = append(c.Environ(), r.Env...)
	c.Stdin = cmd.Stdin

	var stdout, stderr strings.Builder
	c.Stdout = &stdout
	c.Stderr = &stderr
	if r.Stream != nil && !cmd.Quiet {
		c.Stdout = io.MultiWriter(&stdout, r.Stream)
		c.Stderr = io.MultiWriter(&stderr, r.Stream)
	}

	err := c.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		return result, fmt.Errorf("failed to run %s: %w", cmd.Name, err)
	}
	return result, nil
}

var _ Runner = (*ExecRunner)(nil)

// IsNotFound reports whether err means the executable does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}
