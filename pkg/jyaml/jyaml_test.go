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

package jyaml_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/NVIDIA/radiodeck/api/radiodeck/v1alpha1"
	"github.com/NVIDIA/radiodeck/pkg/jyaml"
	"github.com/NVIDIA/radiodeck/pkg/testutil"
)

func TestJYaml(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "JYaml Suite")
}

var _ = Describe("JYaml", func() {

	Describe("Unmarshal", func() {
		It("decodes a node profile", func() {
			profile, err := jyaml.Unmarshal[v1alpha1.NodeProfile](testutil.ProfileYAML)
			Expect(err).NotTo(HaveOccurred())

			Expect(profile.Kind).To(Equal(v1alpha1.Kind))
			Expect(profile.Name).To(Equal("cellsdr1-ustar"))
			Expect(profile.Spec.Privilege).To(Equal(v1alpha1.PrivilegeNone))
			Expect(profile.Spec.Packages.SrsLTE.ExtraDeps).To(Equal([]string{"uhd-host"}))
			Expect(profile.Spec.Firmware.Args).To(Equal([]string{"-t", "x3xx"}))
			Expect(profile.Spec.Channel.Backup).To(BeTrue())
			Expect(profile.Spec.Retry.MaxAttempts).To(Equal(5))
			Expect(profile.Spec.Retry.InitialInterval.Duration).To(Equal(2 * time.Second))
		})

		It("accepts JSON", func() {
			profile, err := jyaml.Unmarshal[v1alpha1.NodeProfile]([]byte(`{"kind":"NodeProfile","metadata":{"name":"n1"}}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Name).To(Equal("n1"))
		})

		It("ignores unknown fields", func() {
			_, err := jyaml.Unmarshal[v1alpha1.NodeProfile]("kind: NodeProfile\nspec:\n  antenna: tx/rx\n")
			Expect(err).NotTo(HaveOccurred())
		})

		It("round-trips structured values", func() {
			in := v1alpha1.ChannelParams{NumResourceBlocks: 6, EARFCN: 2850, UplinkAmplitude: 0.8, DownlinkGain: 60}
			out, err := jyaml.Unmarshal[v1alpha1.ChannelParams](in)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(in))
		})

		It("fails on invalid YAML", func() {
			_, err := jyaml.Unmarshal[v1alpha1.NodeProfile]("kind: [unterminated")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("UnmarshalStrict", func() {
		It("rejects unknown fields", func() {
			_, err := jyaml.UnmarshalStrict[v1alpha1.NodeProfile]("kind: NodeProfile\nspec:\n  antenna: tx/rx\n")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("antenna"))
		})

		It("accepts a complete profile", func() {
			_, err := jyaml.UnmarshalStrict[v1alpha1.NodeProfile](testutil.ProfileYAML)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("files", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("reports a missing file as not existing", func() {
			_, err := jyaml.UnmarshalFromFile[v1alpha1.NodeProfile](filepath.Join(dir, "missing.yaml"))
			Expect(err).To(MatchError(os.ErrNotExist))
		})

		It("names the file on strict decode errors", func() {
			path := testutil.TempFile(GinkgoT(), "bad.yaml", "kind: NodeProfile\nbogus: 1\n")
			_, err := jyaml.UnmarshalStrictFromFile[v1alpha1.NodeProfile](path)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("bad.yaml"))
		})

		It("writes a document that reads back identically", func() {
			profile := v1alpha1.DefaultNodeProfile()
			profile.Status.Tokens = []string{"srslte", "channel_setup-6-2850-10-20"}
			path := filepath.Join(dir, "default.yaml")

			Expect(jyaml.WriteFile(path, profile)).To(Succeed())
			got, err := jyaml.UnmarshalStrictFromFile[v1alpha1.NodeProfile](path)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Spec).To(Equal(profile.Spec))
			Expect(got.Status.Tokens).To(Equal(profile.Status.Tokens))

			entries, err := os.ReadDir(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1), "no temporary files are left behind")
		})

		It("replaces an existing document", func() {
			path := filepath.Join(dir, "p.yaml")
			Expect(jyaml.WriteFile(path, map[string]string{"a": "1"})).To(Succeed())
			Expect(jyaml.WriteFile(path, map[string]string{"b": "2"})).To(Succeed())
			Expect(testutil.MustReadFile(GinkgoT(), path)).To(Equal("b: \"2\"\n"))
		})
	})
})
