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
	"fmt"
	"math"
	"path/filepath"
	"strings"
)

// MaxEARFCN is the highest E-UTRA channel number (TS 36.101).
const MaxEARFCN = 262143

// Validate validates the NodeProfile configuration.
func (p *NodeProfile) Validate() error {
	if p.Kind != "" && p.Kind != Kind {
		return fmt.Errorf("unexpected kind %q, expected %q", p.Kind, Kind)
	}
	if err := p.Spec.Validate(); err != nil {
		return fmt.Errorf("spec validation failed: %w", err)
	}
	return nil
}

// Validate validates the NodeProfileSpec configuration.
func (s *NodeProfileSpec) Validate() error {
	switch s.Privilege {
	case PrivilegeNone, PrivilegeSudo:
	default:
		return fmt.Errorf("unsupported privilege %q, must be one of: none, sudo", s.Privilege)
	}

	if s.Repository.PPA == "" {
		return fmt.Errorf("repository ppa is required")
	}
	if !strings.HasPrefix(s.Repository.PPA, "ppa:") && !strings.HasPrefix(s.Repository.PPA, "deb ") {
		return fmt.Errorf("repository %q must be a ppa: or deb line", s.Repository.PPA)
	}
	if s.Repository.Keyserver == "" {
		return fmt.Errorf("repository keyserver is required")
	}

	for keyword, set := range map[string]PackageSet{
		"gnuradio":           s.Packages.GNURadio,
		"gnuradio-companion": s.Packages.GNURadioCompanion,
		"srslte":             s.Packages.SrsLTE,
	} {
		if err := set.Validate(); err != nil {
			return fmt.Errorf("packages for %s: %w", keyword, err)
		}
	}

	if s.Firmware.Command == "" {
		return fmt.Errorf("firmware command is required")
	}

	if err := s.Channel.Validate(); err != nil {
		return fmt.Errorf("channel: %w", err)
	}
	if err := s.Retry.Validate(); err != nil {
		return fmt.Errorf("retry: %w", err)
	}
	return nil
}

// Validate validates the PackageSet configuration.
func (ps PackageSet) Validate() error {
	if ps.Name == "" {
		return fmt.Errorf("package name is required")
	}
	for _, name := range append([]string{ps.Name}, ps.ExtraDeps...) {
		if strings.HasPrefix(name, "-") || strings.ContainsAny(name, " \t;|&$") {
			return fmt.Errorf("invalid package name %q", name)
		}
	}
	return nil
}

// Validate validates the Channel configuration.
func (c Channel) Validate() error {
	if !filepath.IsAbs(c.ConfigDir) {
		return fmt.Errorf("config directory %q must be an absolute path", c.ConfigDir)
	}
	switch c.Backend {
	case PatchBackendBuiltin, PatchBackendPatch:
	default:
		return fmt.Errorf("unsupported patch backend %q, must be one of: builtin, patch", c.Backend)
	}
	return nil
}

// Validate validates the Retry configuration.
func (r Retry) Validate() error {
	if r.MaxAttempts < 0 {
		return fmt.Errorf("maxAttempts cannot be negative, got %d", r.MaxAttempts)
	}
	if r.InitialInterval.Duration < 0 || r.MaxInterval.Duration < 0 {
		return fmt.Errorf("backoff intervals cannot be negative")
	}
	if r.MaxInterval.Duration > 0 && r.MaxInterval.Duration < r.InitialInterval.Duration {
		return fmt.Errorf("maxInterval %s is shorter than initialInterval %s",
			r.MaxInterval.Duration, r.InitialInterval.Duration)
	}
	return nil
}

// Validate validates the ChannelParams values.
func (c ChannelParams) Validate() error {
	if c.NumResourceBlocks <= 0 {
		return fmt.Errorf("numResourceBlocks must be positive, got %d", c.NumResourceBlocks)
	}
	if c.EARFCN < 0 || c.EARFCN > MaxEARFCN {
		return fmt.Errorf("earfcn must be between 0 and %d, got %d", MaxEARFCN, c.EARFCN)
	}
	if !isFinite(c.UplinkAmplitude) {
		return fmt.Errorf("uplinkAmplitude must be a finite number")
	}
	if !isFinite(c.DownlinkGain) {
		return fmt.Errorf("downlinkGain must be a finite number")
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
