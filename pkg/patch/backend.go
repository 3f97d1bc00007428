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

package patch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/NVIDIA/radiodeck/pkg/command"
)

// backupSuffix is appended to a target to name its pre-patch copy.
const backupSuffix = ".orig"

type backend interface {
	apply(ctx context.Context, r Rendered) error
}

// builtinBackend applies diffs in-process. Any hunk that does not line up
// exactly with the current file is a context mismatch: there is no offset
// search and no fuzz.
type builtinBackend struct {
	p *Patcher
}

func (b *builtinBackend) apply(ctx context.Context, r Rendered) error {
	files, _, err := gitdiff.Parse(strings.NewReader(r.Diff))
	if err != nil {
		return fmt.Errorf("invalid diff for %s: %w", r.Name, err)
	}
	if len(files) != 1 {
		return fmt.Errorf("diff for %s touches %d files, want 1", r.Name, len(files))
	}

	src, err := b.p.readFile(ctx, r.Target)
	if err != nil {
		return err
	}

	var dst bytes.Buffer
	if err := gitdiff.Apply(&dst, bytes.NewReader(src), files[0]); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrContextMismatch, r.Target, err)
	}
	if err := verify(r.Target, dst.Bytes(), r.settings); err != nil {
		return err
	}

	if b.p.backup {
		if err := b.p.writeFile(ctx, r.Target+backupSuffix, src); err != nil {
			return fmt.Errorf("failed to back up %s: %w", r.Target, err)
		}
	}
	return b.p.writeFile(ctx, r.Target, dst.Bytes())
}

// utilityBackend shells out to patch(1). A dry run goes first so that a
// rejected hunk never leaves a half-patched file or a .rej behind.
type utilityBackend struct {
	p *Patcher
}

func (u *utilityBackend) apply(ctx context.Context, r Rendered) error {
	args := []string{"--forward", "--batch", "--fuzz=0", "--reject-file=-"}

	dry := command.New(u.p.privilege, "patch", append(append([]string{}, args...), "--dry-run", r.Target)...)
	dry.Stdin = strings.NewReader(r.Diff)
	res, err := u.p.exec.Run(ctx, dry)
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("%w: %s: %s", ErrContextMismatch, r.Target, utilityReason(res))
	}

	if u.p.backup {
		args = append(args, "--backup", "--suffix="+backupSuffix)
	}
	run := command.New(u.p.privilege, "patch", append(args, r.Target)...)
	run.Stdin = strings.NewReader(r.Diff)
	res, err = u.p.exec.Run(ctx, run)
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("%s exited with status %d: %s", run, res.ExitCode, utilityReason(res))
	}
	return nil
}

// utilityReason picks the most useful line of patch(1) output.
func utilityReason(res command.Result) string {
	out := strings.TrimSpace(res.Stdout + "\n" + res.Stderr)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.Contains(line, "FAILED") || strings.Contains(line, "previously applied") ||
			strings.Contains(line, "No such file") {
			return line
		}
	}
	if out == "" {
		return fmt.Sprintf("exit status %d", res.ExitCode)
	}
	lines := strings.Split(out, "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// readFile reads target directly when unprivileged, and through the runner
// otherwise.
func (p *Patcher) readFile(ctx context.Context, target string) ([]byte, error) {
	if p.privilege != command.PrivilegeSudo {
		data, err := os.ReadFile(target)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", target, err)
		}
		return data, nil
	}

	cmd := command.New(p.privilege, "cat", target)
	cmd.Quiet = true
	res, err := p.exec.Run(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, fmt.Errorf("failed to read %s: %s", target, strings.TrimSpace(res.Stderr))
	}
	return []byte(res.Stdout), nil
}

// writeFile replaces the content of target, keeping its mode when it
// already exists.
func (p *Patcher) writeFile(ctx context.Context, target string, data []byte) error {
	if p.privilege != command.PrivilegeSudo {
		mode := os.FileMode(0644)
		if fi, err := os.Stat(target); err == nil {
			mode = fi.Mode().Perm()
		}
		if err := os.WriteFile(target, data, mode); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		return nil
	}

	cmd := command.New(p.privilege, "dd", "of="+target, "status=none")
	cmd.Stdin = bytes.NewReader(data)
	res, err := p.exec.Run(ctx, cmd)
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("failed to write %s: %s", target, strings.TrimSpace(res.Stderr))
	}
	return nil
}
