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

package provision

import (
	"bytes"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	cli "github.com/urfave/cli/v2"

	"github.com/NVIDIA/radiodeck/cmd/cli/common"
	"github.com/NVIDIA/radiodeck/internal/logger"
	"github.com/NVIDIA/radiodeck/internal/state"
	"github.com/NVIDIA/radiodeck/pkg/actions"
	"github.com/NVIDIA/radiodeck/pkg/patch"
	"github.com/NVIDIA/radiodeck/pkg/retry"
	"github.com/NVIDIA/radiodeck/pkg/testutil"
	"github.com/NVIDIA/radiodeck/pkg/testutil/mocks"
)

func TestProvision(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Provision Command Suite")
}

var _ = Describe("Provision Command", func() {
	var (
		log       *logger.FunLogger
		buf       bytes.Buffer
		runner    *mocks.Runner
		configDir string
		cacheDir  string
		app       *cli.App
	)

	BeforeEach(func() {
		buf.Reset()
		log = logger.NewLogger()
		log.Out = &buf
		log.IsCI = true

		runner = mocks.NewRunner()
		configDir = testutil.SrsLTEConfigDir(GinkgoT())
		cacheDir = GinkgoT().TempDir()

		c := command{log: log, runner: runner}
		app = &cli.App{
			Flags:    common.GlobalFlags(),
			Commands: []*cli.Command{c.build()},
		}
	})

	run := func(args ...string) error {
		base := []string{"radiodeck", "--no-sudo", "--config-dir", configDir, "--cachepath", cacheDir, "provision"}
		return app.Run(append(base, args...))
	}

	It("should create a valid command", func() {
		cmd := NewCommand(log)
		Expect(cmd.Name).To(Equal("provision"))
		Expect(cmd.Usage).NotTo(BeEmpty())
		Expect(cmd.Action).NotTo(BeNil())
	})

	It("rejects a malformed channel_setup before running anything", func() {
		err := run("srslte", "channel_setup-50-3400")
		Expect(err).To(MatchError(actions.ErrMalformedInput))
		Expect(err.Error()).To(ContainSubstring("uplinkAmplitude"))
		Expect(runner.Calls()).To(BeEmpty())
	})

	It("provisions the node and records the run", func() {
		Expect(run("unknown-foo-bar", "srslte", "channel_setup-6-2850-10-20")).To(Succeed())

		Expect(runner.Lines()).To(Equal([]string{
			"apt-key adv --keyserver hkp://keyserver.ubuntu.com:80 --refresh-keys",
			"add-apt-repository -y ppa:srslte/releases",
			"apt-get update",
			"apt-get install -y srslte uhd-host",
			"uhd_images_downloader",
		}))
		Expect(testutil.MustReadFile(GinkgoT(), filepath.Join(configDir, "sib.conf"))).To(ContainSubstring("prach_freq_offset = 0;"))

		rec, err := state.NewStore(log, cacheDir).Get("default")
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Phase).To(Equal(state.PhaseAvailable))
		Expect(rec.Channel.NumResourceBlocks).To(Equal(6))
		Expect(rec.Steps).To(Equal(5))
	})

	It("fails and records a degraded run when the files were already patched", func() {
		Expect(run("channel_setup-50-3400-10-20")).To(Succeed())

		err := run("channel_setup-50-3400-10-20")
		Expect(err).To(MatchError(patch.ErrContextMismatch))

		profile, err := state.NewStore(log, cacheDir).Load("default")
		Expect(err).NotTo(HaveOccurred())
		Expect(state.Phase(profile.Status)).To(Equal(state.PhaseDegraded))
		Expect(profile.Status.Tokens).To(Equal([]string{"channel_setup-50-3400-10-20"}))
	})

	It("honors --max-attempts", func() {
		runner.Fail("apt-get update", -1, 100, "E: Temporary failure resolving 'ppa.launchpad.net'")

		err := app.Run([]string{"radiodeck", "--no-sudo", "--config-dir", configDir, "--cachepath", cacheDir,
			"--max-attempts", "2", "provision", "gnuradio"})
		Expect(err).To(MatchError(retry.ErrAttemptsExhausted))
		Expect(runner.Count("apt-get update")).To(Equal(2))
		Expect(runner.Count("apt-get install")).To(BeZero())
	})
})
