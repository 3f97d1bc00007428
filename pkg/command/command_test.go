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

package command

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandArgv(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want []string
	}{
		{
			name: "unprivileged",
			cmd:  New(PrivilegeNone, "apt-get", "update"),
			want: []string{"apt-get", "update"},
		},
		{
			name: "sudo",
			cmd:  New(PrivilegeSudo, "apt-get", "install", "-y", "srslte"),
			want: []string{"sudo", "-E", "apt-get", "install", "-y", "srslte"},
		},
		{
			name: "empty privilege behaves like none",
			cmd:  Command{Name: "true"},
			want: []string{"true"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.Argv())
		})
	}
}

func TestCommandString(t *testing.T) {
	cmd := New(PrivilegeSudo, "add-apt-repository", "-y", "ppa:srslte/releases")
	assert.Equal(t, "sudo -E add-apt-repository -y ppa:srslte/releases", cmd.String())

	quoted := New(PrivilegeNone, "sh", "-c", "echo hi")
	assert.Equal(t, `sh -c "echo hi"`, quoted.String())
}

func TestExecRunner(t *testing.T) {
	var stream bytes.Buffer
	r := NewExecRunner(&stream)
	ctx := context.Background()

	res, err := r.Run(ctx, New(PrivilegeNone, "sh", "-c", "echo out; echo err >&2"))
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Contains(t, stream.String(), "out")

	res, err = r.Run(ctx, New(PrivilegeNone, "sh", "-c", "exit 7"))
	require.NoError(t, err)
	assert.False(t, res.Success())
	assert.Equal(t, 7, res.ExitCode)
}

func TestExecRunnerQuietCommandIsNotStreamed(t *testing.T) {
	var stream bytes.Buffer
	r := NewExecRunner(&stream)
	cmd := New(PrivilegeNone, "sh", "-c", "echo dl_earfcn = 3400")
	cmd.Quiet = true

	res, err := r.Run(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, "dl_earfcn = 3400\n", res.Stdout)
	assert.Empty(t, stream.String())
}

func TestExecRunnerStdin(t *testing.T) {
	r := NewExecRunner(nil)
	cmd := New(PrivilegeNone, "cat")
	cmd.Stdin = strings.NewReader("n_prb = 6\n")

	res, err := r.Run(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, "n_prb = 6\n", res.Stdout)
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := NewExecRunner(nil)
	_, err := r.Run(context.Background(), New(PrivilegeNone, "radiodeck-no-such-binary"))
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestExecRunnerCancelled(t *testing.T) {
	r := NewExecRunner(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, New(PrivilegeNone, "sleep", "5"))
	require.Error(t, err)
}
