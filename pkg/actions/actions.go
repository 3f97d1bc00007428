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

// Package actions turns the free-form tokens passed to radiodeck into the
// set of provisioning actions to perform.
package actions

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/NVIDIA/radiodeck/api/radiodeck/v1alpha1"
)

// ErrMalformedInput is wrapped by every error caused by a token that names a
// recognized action but carries unusable parameters.
var ErrMalformedInput = errors.New("malformed input")

// Delimiter separates the keyword of a token from its positional fields.
const Delimiter = "-"

// Keywords recognized on the command line.
const (
	KeywordGNURadio          = "gnuradio"
	KeywordGNURadioCompanion = "gnuradio-companion"
	KeywordSrsLTE            = "srslte"
	KeywordChannelSetup      = "channel_setup"
)

// Kind tags the variant carried by an Action.
type Kind string

const (
	KindAddRepository    Kind = "AddRepository"
	KindInstallPackage   Kind = "InstallPackage"
	KindDownloadImages   Kind = "DownloadImages"
	KindConfigureChannel Kind = "ConfigureChannel"
)

// Action is one unit of provisioning work.
type Action struct {
	Kind Kind `json:"kind"`
	// Keyword is the command-line keyword that produced an InstallPackage.
	Keyword string `json:"keyword,omitempty"`
	// Package is set for InstallPackage.
	Package *v1alpha1.PackageSet `json:"package,omitempty"`
	// Channel is set for ConfigureChannel.
	Channel *v1alpha1.ChannelParams `json:"channel,omitempty"`
}

func (a Action) String() string {
	switch a.Kind {
	case KindInstallPackage:
		if a.Package != nil {
			return fmt.Sprintf("%s(%s)", a.Kind, a.Package.Name)
		}
		return fmt.Sprintf("%s(%s)", a.Kind, a.Keyword)
	case KindConfigureChannel:
		if a.Channel != nil {
			return fmt.Sprintf("%s(%d PRB, EARFCN %d)", a.Kind, a.Channel.NumResourceBlocks, a.Channel.EARFCN)
		}
	}
	return string(a.Kind)
}

// AddRepository returns the AddRepository action.
func AddRepository() Action { return Action{Kind: KindAddRepository} }

// DownloadImages returns the DownloadImages action.
func DownloadImages() Action { return Action{Kind: KindDownloadImages} }

// InstallPackage returns an InstallPackage action for keyword.
func InstallPackage(keyword string) Action {
	return Action{Kind: KindInstallPackage, Keyword: keyword}
}

// ConfigureChannel returns a ConfigureChannel action.
func ConfigureChannel(params v1alpha1.ChannelParams) Action {
	return Action{Kind: KindConfigureChannel, Channel: &params}
}

// Plan is the result of parsing a token list.
type Plan struct {
	// Installs holds the distinct InstallPackage actions in the order they
	// first appeared.
	Installs []Action `json:"installs"`
	// Channel is the last channel_setup seen, if any.
	Channel *v1alpha1.ChannelParams `json:"channel,omitempty"`
	// WantsConfigure is true when at least one channel_setup was parsed.
	WantsConfigure bool `json:"wantsConfigure"`
	// Ignored collects tokens whose keyword was not recognized.
	Ignored []string `json:"ignored,omitempty"`
}

// Wants reports whether the plan installs the package for keyword.
func (p Plan) Wants(keyword string) bool {
	for _, a := range p.Installs {
		if a.Keyword == keyword {
			return true
		}
	}
	return false
}

// Actions returns the plan as a flat list of actions: the repository setup,
// the installs, the firmware download and, when requested, the channel
// configuration.
func (p Plan) Actions() []Action {
	out := []Action{AddRepository()}
	out = append(out, p.Installs...)
	out = append(out, DownloadImages())
	if p.WantsConfigure && p.Channel != nil {
		out = append(out, ConfigureChannel(*p.Channel))
	}
	return out
}

// Bind resolves every install keyword to its package set from pkgs.
func (p Plan) Bind(pkgs v1alpha1.Packages) Plan {
	bound := p
	bound.Installs = make([]Action, len(p.Installs))
	for i, a := range p.Installs {
		set := packageFor(pkgs, a.Keyword)
		a.Package = &set
		bound.Installs[i] = a
	}
	return bound
}

func packageFor(pkgs v1alpha1.Packages, keyword string) v1alpha1.PackageSet {
	switch keyword {
	case KeywordGNURadioCompanion:
		return pkgs.GNURadioCompanion
	case KeywordSrsLTE:
		return pkgs.SrsLTE
	default:
		return pkgs.GNURadio
	}
}

// Parse walks tokens once and extracts the recognized actions. Unknown
// keywords are collected in Plan.Ignored and otherwise have no effect.
func Parse(tokens []string) (Plan, error) {
	plan := Plan{}
	seen := map[string]bool{}

	for _, token := range tokens {
		keyword, fields := split(token)
		switch keyword {
		case KeywordGNURadio, KeywordGNURadioCompanion, KeywordSrsLTE:
			if seen[keyword] {
				continue
			}
			seen[keyword] = true
			plan.Installs = append(plan.Installs, InstallPackage(keyword))
		case KeywordChannelSetup:
			params, err := parseChannel(fields)
			if err != nil {
				return Plan{}, fmt.Errorf("token %q: %w", token, err)
			}
			plan.Channel = &params
			plan.WantsConfigure = true
		default:
			plan.Ignored = append(plan.Ignored, token)
		}
	}

	return plan, nil
}

// split separates the keyword from the positional fields. Keywords that
// themselves contain the delimiter are matched before plain splitting.
func split(token string) (string, []string) {
	for _, kw := range []string{KeywordGNURadioCompanion} {
		if token == kw {
			return kw, nil
		}
		if strings.HasPrefix(token, kw+Delimiter) {
			return kw, strings.Split(strings.TrimPrefix(token, kw+Delimiter), Delimiter)
		}
	}
	fields := strings.Split(token, Delimiter)
	return fields[0], fields[1:]
}

var channelFields = []string{"numResourceBlocks", "earfcn", "uplinkAmplitude", "downlinkGain"}

func parseChannel(fields []string) (v1alpha1.ChannelParams, error) {
	var params v1alpha1.ChannelParams

	if len(fields) < len(channelFields) {
		return params, fmt.Errorf("%w: channel_setup is missing %s", ErrMalformedInput,
			strings.Join(channelFields[len(fields):], ", "))
	}
	if len(fields) > len(channelFields) {
		return params, fmt.Errorf("%w: channel_setup takes %d fields, got %d",
			ErrMalformedInput, len(channelFields), len(fields))
	}

	var err error
	if params.NumResourceBlocks, err = parseInt(channelFields[0], fields[0]); err != nil {
		return params, err
	}
	if params.EARFCN, err = parseInt(channelFields[1], fields[1]); err != nil {
		return params, err
	}
	if params.UplinkAmplitude, err = parseFloat(channelFields[2], fields[2]); err != nil {
		return params, err
	}
	if params.DownlinkGain, err = parseFloat(channelFields[3], fields[3]); err != nil {
		return params, err
	}

	if err := params.Validate(); err != nil {
		return params, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return params, nil
}

func parseInt(name, value string) (int, error) {
	if value == "" {
		return 0, fmt.Errorf("%w: %s is empty", ErrMalformedInput, name)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", ErrMalformedInput, name, value)
	}
	return n, nil
}

func parseFloat(name, value string) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("%w: %s is empty", ErrMalformedInput, name)
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrMalformedInput, name, value)
	}
	return f, nil
}
