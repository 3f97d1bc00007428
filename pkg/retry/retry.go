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

// Package retry runs setup steps until they succeed.
package retry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/NVIDIA/radiodeck/api/radiodeck/v1alpha1"
	"github.com/NVIDIA/radiodeck/internal/logger"
	"github.com/NVIDIA/radiodeck/pkg/command"
)

// ErrAttemptsExhausted is returned when a bounded policy runs out of attempts.
var ErrAttemptsExhausted = errors.New("retry attempts exhausted")

// Permanent marks err as not worth retrying. Do returns it after the first
// attempt whatever the policy.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Policy decides how many times and how often a step is retried.
type Policy struct {
	// MaxAttempts bounds the number of attempts. 0 means unbounded.
	MaxAttempts int
	// NewBackOff returns a fresh backoff for every step.
	NewBackOff func() backoff.BackOff
}

// DefaultPolicy retries forever without pausing between attempts.
func DefaultPolicy() Policy {
	return Policy{
		NewBackOff: func() backoff.BackOff { return &backoff.ZeroBackOff{} },
	}
}

// ExponentialPolicy retries up to maxAttempts times (0 for unbounded) with
// an exponential delay growing from initial up to max.
func ExponentialPolicy(maxAttempts int, initial, max time.Duration) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		NewBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = initial
			if max > 0 {
				b.MaxInterval = max
			}
			// never stop on elapsed time, only on MaxAttempts
			b.MaxElapsedTime = 0
			b.Reset()
			return b
		},
	}
}

// PolicyFor builds the policy described by a profile.
func PolicyFor(r v1alpha1.Retry) Policy {
	if r.InitialInterval.Duration > 0 {
		return ExponentialPolicy(r.MaxAttempts, r.InitialInterval.Duration, r.MaxInterval.Duration)
	}
	p := DefaultPolicy()
	p.MaxAttempts = r.MaxAttempts
	return p
}

// Runner executes operations until they succeed, writing one diagnostic
// line per failed attempt.
type Runner struct {
	exec   command.Runner
	log    logger.Logger
	policy Policy

	// sleep waits between attempts. Replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Runner that executes commands through exec.
func New(log logger.Logger, exec command.Runner, policy Policy) *Runner {
	if policy.NewBackOff == nil {
		policy.NewBackOff = DefaultPolicy().NewBackOff
	}
	return &Runner{
		exec:   exec,
		log:    log,
		policy: policy,
		sleep:  sleepContext,
	}
}

// Run executes cmd until it exits zero. failure names the step in the
// diagnostic printed after each failed attempt. It returns the number of
// attempts made.
func (r *Runner) Run(ctx context.Context, failure string, cmd command.Command) (int, error) {
	return r.Do(ctx, failure, func(ctx context.Context) error {
		res, err := r.exec.Run(ctx, cmd)
		if command.IsNotFound(err) {
			return Permanent(err)
		}
		if err != nil {
			return err
		}
		if !res.Success() {
			return &ExitError{Command: cmd.String(), Code: res.ExitCode, Stderr: res.Stderr}
		}
		return nil
	})
}

// Do calls op until it returns nil. With the default policy it only returns
// early when ctx is cancelled or op returns a Permanent error.
func (r *Runner) Do(ctx context.Context, failure string, op func(context.Context) error) (int, error) {
	b := r.policy.NewBackOff()
	b.Reset()

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		err := op(ctx)
		if err == nil {
			return attempt, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return attempt, ctxErr
		}

		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			r.log.Warning("%s (attempt %d): %s; not retrying", failure, attempt, oneLine(permanent.Err))
			return attempt, fmt.Errorf("%s: %w", failure, permanent.Err)
		}

		if r.policy.MaxAttempts > 0 && attempt >= r.policy.MaxAttempts {
			r.log.Warning("%s (attempt %d/%d): %s; giving up", failure, attempt, r.policy.MaxAttempts, oneLine(err))
			return attempt, fmt.Errorf("%s: %w after %d attempts: %w", failure, ErrAttemptsExhausted, attempt, err)
		}

		delay := b.NextBackOff()
		if delay == backoff.Stop {
			r.log.Warning("%s (attempt %d): %s; giving up", failure, attempt, oneLine(err))
			return attempt, fmt.Errorf("%s: %w after %d attempts: %w", failure, ErrAttemptsExhausted, attempt, err)
		}
		if delay > 0 {
			r.log.Warning("%s (attempt %d): %s; retrying in %s", failure, attempt, oneLine(err), delay.Round(time.Millisecond))
		} else {
			r.log.Warning("%s (attempt %d): %s; retrying", failure, attempt, oneLine(err))
		}

		if err := r.sleep(ctx, delay); err != nil {
			return attempt, err
		}
	}
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
	if last := lastLine(e.Stderr); last != "" {
		msg += ": " + last
	}
	return msg
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// oneLine keeps each diagnostic on a single line of operator output.
func oneLine(err error) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(err.Error(), "\n", " ")), " ")
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
