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

package mocks

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/NVIDIA/radiodeck/pkg/command"
)

// Call is one recorded invocation of the fake runner.
type Call struct {
	Command command.Command
	// Stdin holds whatever was streamed to the command.
	Stdin string
}

type rule struct {
	match string
	// failures left before the command starts succeeding; <0 fails forever
	failures int
	code     int
	stdout   string
	stderr   string
}

// Runner is a scripted command.Runner. Commands succeed with no output
// unless a rule registered with Fail or Respond matches the rendered
// command line. The first matching rule wins.
type Runner struct {
	mu    sync.Mutex
	rules []*rule
	calls []Call

	// OnRun, when set, is invoked for every call before rules are applied.
	OnRun func(cmd command.Command, stdin string)
}

// NewRunner returns a Runner where every command succeeds.
func NewRunner() *Runner {
	return &Runner{}
}

// Fail makes the first n invocations of any command whose rendered form
// contains match exit with code. A negative n fails forever.
func (r *Runner) Fail(match string, n, code int, stderr string) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, &rule{match: match, failures: n, code: code, stderr: stderr})
	return r
}

// Respond makes every command containing match succeed with stdout.
func (r *Runner) Respond(match, stdout string) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, &rule{match: match, failures: -1, stdout: stdout})
	return r
}

// Run implements command.Runner.
func (r *Runner) Run(ctx context.Context, cmd command.Command) (command.Result, error) {
	var stdin string
	if cmd.Stdin != nil {
		data, err := io.ReadAll(cmd.Stdin)
		if err != nil {
			return command.Result{}, err
		}
		stdin = string(data)
	}

	r.mu.Lock()
	r.calls = append(r.calls, Call{Command: cmd, Stdin: stdin})
	hook := r.OnRun
	var matched *rule
	line := cmd.String()
	for _, rl := range r.rules {
		if strings.Contains(line, rl.match) && rl.failures != 0 {
			matched = rl
			if rl.failures > 0 {
				rl.failures--
			}
			break
		}
	}
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return command.Result{}, err
	}
	if hook != nil {
		hook(cmd, stdin)
	}
	if matched != nil {
		return command.Result{ExitCode: matched.code, Stdout: matched.stdout, Stderr: matched.stderr}, nil
	}
	return command.Result{}, nil
}

// Calls returns every recorded call in order.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Lines returns the rendered command lines in call order.
func (r *Runner) Lines() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Command.String()
	}
	return out
}

// Count returns how many calls contained match.
func (r *Runner) Count(match string) int {
	n := 0
	for _, l := range r.Lines() {
		if strings.Contains(l, match) {
			n++
		}
	}
	return n
}

var _ command.Runner = (*Runner)(nil)
