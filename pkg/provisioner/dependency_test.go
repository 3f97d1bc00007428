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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/radiodeck/api/radiodeck/v1alpha1"
	"github.com/NVIDIA/radiodeck/pkg/actions"
)

func resolve(t *testing.T, tokens ...string) []Step {
	t.Helper()
	plan, err := actions.Parse(tokens)
	require.NoError(t, err)
	profile := v1alpha1.DefaultNodeProfile()
	return NewDependencies(plan, profile.Spec).Resolve()
}

func commandLines(steps []Step) []string {
	lines := make([]string, len(steps))
	for i, s := range steps {
		lines[i] = s.Command.String()
	}
	return lines
}

func TestResolveFixedOrder(t *testing.T) {
	want := []string{
		"sudo -E apt-key adv --keyserver hkp://keyserver.ubuntu.com:80 --refresh-keys",
		"sudo -E add-apt-repository -y ppa:srslte/releases",
		"sudo -E apt-get update",
		"sudo -E apt-get install -y gnuradio",
		"sudo -E apt-get install -y gnuradio python-gi python-gi-cairo gir1.2-gtk-3.0",
		"sudo -E apt-get install -y srslte uhd-host",
		"sudo -E uhd_images_downloader",
	}

	orders := [][]string{
		{"gnuradio", "gnuradio-companion", "srslte"},
		{"srslte", "gnuradio-companion", "gnuradio"},
		{"gnuradio-companion", "noise", "srslte", "gnuradio", "srslte"},
	}
	for _, tokens := range orders {
		assert.Equal(t, want, commandLines(resolve(t, tokens...)), "tokens %v", tokens)
	}
}

func TestResolveFirmwareExactlyOnce(t *testing.T) {
	cases := [][]string{
		nil,
		{"unknown-foo-bar"},
		{"channel_setup-50-3400-10-20"},
		{"srslte"},
		{"gnuradio", "gnuradio-companion", "srslte"},
	}
	for _, tokens := range cases {
		steps := resolve(t, tokens...)
		count := 0
		for _, s := range steps {
			if s.Name == firmwareStep {
				count++
			}
		}
		assert.Equal(t, 1, count, "tokens %v", tokens)
		assert.Equal(t, firmwareStep, steps[len(steps)-1].Name, "firmware runs last")
	}
}

func TestResolveWithoutInstalls(t *testing.T) {
	steps := resolve(t)
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	assert.Equal(t, []string{repositoryKeyStep, repositoryStep, packageIndexStep, firmwareStep}, names)
}

func TestResolveUsesProfile(t *testing.T) {
	profile := v1alpha1.DefaultNodeProfile()
	profile.Spec.Privilege = v1alpha1.PrivilegeNone
	profile.Spec.Repository.KeyIDs = []string{"5EB2E7B2F1AC4E7C"}
	profile.Spec.Firmware.Args = []string{"-t", "b2xx"}

	steps := NewDependencies(actions.Plan{}, profile.Spec).Resolve()
	require.Len(t, steps, 4)
	assert.Equal(t, "apt-key adv --keyserver hkp://keyserver.ubuntu.com:80 --recv-keys 5EB2E7B2F1AC4E7C", steps[0].Command.String())
	assert.Equal(t, "uhd_images_downloader -t b2xx", steps[3].Command.String())
}

func TestResolveDistinctFailureMessages(t *testing.T) {
	steps := resolve(t, "gnuradio", "gnuradio-companion", "srslte")
	seen := map[string]bool{}
	for _, s := range steps {
		assert.NotEmpty(t, s.FailureMessage)
		assert.False(t, seen[s.FailureMessage], "duplicate failure message %q", s.FailureMessage)
		seen[s.FailureMessage] = true
	}
}
