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

package render_test

import (
	"bytes"
	"os/exec"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	cli "github.com/urfave/cli/v2"

	"github.com/NVIDIA/radiodeck/cmd/cli/common"
	"github.com/NVIDIA/radiodeck/cmd/cli/render"
	"github.com/NVIDIA/radiodeck/internal/logger"
	"github.com/NVIDIA/radiodeck/pkg/actions"
	"github.com/NVIDIA/radiodeck/pkg/testutil"
)

func TestRender(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Render Command Suite")
}

var _ = Describe("Render Command", func() {
	var (
		log *logger.FunLogger
		buf bytes.Buffer
		out bytes.Buffer
		app *cli.App
	)

	BeforeEach(func() {
		buf.Reset()
		out.Reset()
		log = logger.NewLogger()
		log.Out = &buf
		log.IsCI = true

		app = &cli.App{
			Flags:    common.GlobalFlags(),
			Commands: []*cli.Command{render.NewCommand(log)},
			Writer:   &out,
		}
	})

	It("should create a valid command", func() {
		cmd := render.NewCommand(log)
		Expect(cmd.Name).To(Equal("render"))
		Expect(cmd.Action).NotTo(BeNil())
	})

	It("requires a channel_setup token", func() {
		err := app.Run([]string{"radiodeck", "render", "srslte"})
		Expect(err).To(MatchError(ContainSubstring("channel_setup token is required")))
		Expect(out.String()).To(BeEmpty())
	})

	It("rejects malformed parameters", func() {
		err := app.Run([]string{"radiodeck", "render", "channel_setup-6-2850"})
		Expect(err).To(MatchError(actions.ErrMalformedInput))
	})

	It("renders all three files for a narrowband cell", func() {
		Expect(app.Run([]string{"radiodeck", "render", "channel_setup-6-2850-10-20.5"})).To(Succeed())

		diff := out.String()
		Expect(diff).To(ContainSubstring("+++ b/ue.conf"))
		Expect(diff).To(ContainSubstring("+++ b/enb.conf"))
		Expect(diff).To(ContainSubstring("+++ b/sib.conf"))
		Expect(diff).To(ContainSubstring("+dl_earfcn = 2850"))
		Expect(diff).To(ContainSubstring("+rx_gain = 20.5"))
		Expect(diff).To(ContainSubstring("+        prach_freq_offset = 0;"))
	})

	It("marks sib.conf skipped for a wideband cell", func() {
		Expect(app.Run([]string{"radiodeck", "--config-dir", "/opt/srslte", "render", "channel_setup-50-3400-10-20"})).To(Succeed())

		Expect(out.String()).To(ContainSubstring("+n_prb = 50"))
		Expect(out.String()).NotTo(ContainSubstring("+++ b/sib.conf"))
		Expect(out.String()).To(ContainSubstring("# /opt/srslte/sib.conf: skipped (only narrowband (6 PRB) cells move the PRACH)"))
	})

	It("produces diffs patch(1) accepts", func() {
		patchBin, err := exec.LookPath("patch")
		if err != nil {
			Skip("patch(1) is not installed")
		}
		dir := testutil.SrsLTEConfigDir(GinkgoT())

		Expect(app.Run([]string{"radiodeck", "render", "channel_setup-6-2850-10-20"})).To(Succeed())
		diffPath := testutil.TempFile(GinkgoT(), "channel.diff", out.String())

		cmd := exec.Command(patchBin, "-p1", "--batch", "--fuzz=0", "-i", diffPath)
		cmd.Dir = dir
		combined, err := cmd.CombinedOutput()
		Expect(err).NotTo(HaveOccurred(), string(combined))
		Expect(testutil.MustReadFile(GinkgoT(), filepath.Join(dir, "sib.conf"))).To(ContainSubstring("prach_freq_offset = 0;"))
	})
})
