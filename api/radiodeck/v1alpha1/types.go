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

package v1alpha1

import (
	"strconv"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// Kind is the kind of the NodeProfile object
	Kind = "NodeProfile"
	// APIVersion is the group/version of the NodeProfile object
	APIVersion = "radiodeck.nvidia.com/v1alpha1"

	// Possible values for the Conditions field
	ConditionProgressing string = "Progressing"
	ConditionDegraded    string = "Degraded"
	ConditionAvailable   string = "Available"
	// ConditionChannelConfigured is set once the srsLTE config files carry
	// the requested channel parameters.
	ConditionChannelConfigured string = "ChannelConfigured"
)

// Privilege is the capability external commands run with.
// +kubebuilder:validation:Enum=none;sudo
type Privilege string

const (
	// PrivilegeNone runs commands as the invoking user
	PrivilegeNone Privilege = "none"
	// PrivilegeSudo runs commands through sudo
	PrivilegeSudo Privilege = "sudo"
)

// PatchBackend selects how unified diffs are applied to the config files.
// +kubebuilder:validation:Enum=builtin;patch
type PatchBackend string

const (
	// PatchBackendBuiltin applies diffs in-process
	PatchBackendBuiltin PatchBackend = "builtin"
	// PatchBackendPatch shells out to the patch(1) utility
	PatchBackendPatch PatchBackend = "patch"
)

// NodeProfileSpec defines how a testbed node is provisioned
type NodeProfileSpec struct {
	// Privilege is applied to every external command.
	// +kubebuilder:default=sudo
	// +optional
	Privilege Privilege `json:"privilege,omitempty"`

	// +optional
	Repository Repository `json:"repository"`
	// +optional
	Packages Packages `json:"packages"`
	// +optional
	Firmware Firmware `json:"firmware"`
	// +optional
	Channel Channel `json:"channel"`
	// +optional
	Retry Retry `json:"retry"`
}

// Repository is the package repository carrying the radio stacks.
type Repository struct {
	// Keyserver used to register the repository signing keys.
	Keyserver string `json:"keyserver,omitempty"`
	// KeyIDs to import. When empty the existing keyring is refreshed.
	// +optional
	KeyIDs []string `json:"keyIds,omitempty"`
	// PPA is passed to add-apt-repository, e.g. ppa:srslte/releases.
	PPA string `json:"ppa,omitempty"`
}

// PackageSet is the apt package installed for one action, with the extra
// packages that must come along with it.
type PackageSet struct {
	Name string `json:"name"`
	// +optional
	ExtraDeps []string `json:"extraDeps,omitempty"`
}

// Packages maps every install keyword to its package set.
type Packages struct {
	GNURadio          PackageSet `json:"gnuradio"`
	GNURadioCompanion PackageSet `json:"gnuradioCompanion"`
	SrsLTE            PackageSet `json:"srslte"`
}

// Firmware describes the firmware image downloader.
type Firmware struct {
	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`
}

// Channel controls where and how the srsLTE configuration is patched.
type Channel struct {
	// ConfigDir holds ue.conf, enb.conf and sib.conf.
	// +kubebuilder:default="/etc/srslte"
	ConfigDir string `json:"configDir,omitempty"`
	// +kubebuilder:default=builtin
	// +optional
	Backend PatchBackend `json:"backend,omitempty"`
	// Backup copies each target to <target>.orig before it is patched.
	// +optional
	Backup bool `json:"backup,omitempty"`
}

// Retry configures how failing setup steps are retried. The zero value
// retries forever without delay.
type Retry struct {
	// MaxAttempts bounds the attempts per step. 0 means unbounded.
	// +optional
	MaxAttempts int `json:"maxAttempts,omitempty"`
	// InitialInterval enables exponential backoff starting at this delay.
	// +optional
	InitialInterval metav1.Duration `json:"initialInterval,omitempty"`
	// MaxInterval caps the exponential backoff delay.
	// +optional
	MaxInterval metav1.Duration `json:"maxInterval,omitempty"`
}

// ChannelParams are the radio parameters written into the srsLTE config.
type ChannelParams struct {
	NumResourceBlocks int     `json:"numResourceBlocks"`
	EARFCN            int     `json:"earfcn"`
	UplinkAmplitude   float64 `json:"uplinkAmplitude"`
	DownlinkGain      float64 `json:"downlinkGain"`
}

// IsNarrowband reports whether the cell uses the 6 PRB (1.4 MHz) layout.
func (c ChannelParams) IsNarrowband() bool {
	return c.NumResourceBlocks == 6
}

// Token renders the parameters back into the channel_setup CLI token.
func (c ChannelParams) Token() string {
	return "channel_setup-" + strconv.Itoa(c.NumResourceBlocks) +
		"-" + strconv.Itoa(c.EARFCN) +
		"-" + strconv.FormatFloat(c.UplinkAmplitude, 'f', -1, 64) +
		"-" + strconv.FormatFloat(c.DownlinkGain, 'f', -1, 64)
}

// StepStatus records the outcome of one provisioning step.
type StepStatus struct {
	Name      string `json:"name"`
	Command   string `json:"command"`
	Attempts  int    `json:"attempts"`
	Succeeded bool   `json:"succeeded"`
	// +optional
	FinishedAt metav1.Time `json:"finishedAt,omitempty"`
}

// PatchStatus records what happened to one configuration file.
type PatchStatus struct {
	Name    string `json:"name"`
	Target  string `json:"target"`
	Applied bool   `json:"applied"`
	// +optional
	Reason string `json:"reason,omitempty"`
}

// NodeProfileStatus defines the observed state of the last provisioning run
type NodeProfileStatus struct {
	// RunID identifies the run that produced this status.
	// +optional
	RunID string `json:"runID,omitempty"`
	// Tokens is the command line the run was started with.
	// +optional
	Tokens []string `json:"tokens,omitempty"`
	// Conditions represents the latest available observations of current state.
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
	// +optional
	Steps []StepStatus `json:"steps,omitempty"`
	// +optional
	Channel *ChannelParams `json:"channel,omitempty"`
	// +optional
	Patches []PatchStatus `json:"patches,omitempty"`
}

//+kubebuilder:object:root=true
//+kubebuilder:subresource:status

// NodeProfile is the Schema for the radiodeck NodeProfile API
type NodeProfile struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata"`

	Spec   NodeProfileSpec   `json:"spec"`
	Status NodeProfileStatus `json:"status"`
}
