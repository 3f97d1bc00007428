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

// Package patch writes channel parameters into the srsLTE configuration
// files by applying templated unified diffs.
package patch

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"text/template"

	"github.com/NVIDIA/radiodeck/api/radiodeck/v1alpha1"
	"github.com/NVIDIA/radiodeck/internal/logger"
	"github.com/NVIDIA/radiodeck/pkg/command"
)

// ErrContextMismatch is returned when a target file does not carry the
// content a patch expects, for example because it was already patched.
var ErrContextMismatch = errors.New("patch context mismatch")

//go:embed bundle/*.diff.tmpl
var bundle embed.FS

var templates = template.Must(template.New("bundle").
	Option("missingkey=error").
	Funcs(template.FuncMap{"num": formatNumber}).
	ParseFS(bundle, "bundle/*.diff.tmpl"))

// Spec is one configuration file and the diff that sets its channel
// parameters.
type Spec struct {
	// Name is the file name inside the configuration directory.
	Name string
	// Template names the diff template in the bundle.
	Template string
	// AppliesWhen gates the patch on the requested parameters.
	AppliesWhen func(v1alpha1.ChannelParams) bool
	// Reason is reported when AppliesWhen rejects the parameters.
	Reason string
	// Settings lists the INI values the patched file must carry. Files
	// that are not INI leave it nil.
	Settings func(v1alpha1.ChannelParams) []Setting
}

// Always is the predicate of patches that apply to every channel.
func Always(v1alpha1.ChannelParams) bool { return true }

// DefaultSpecs returns the srsLTE patches in the order they are applied.
func DefaultSpecs() []Spec {
	return []Spec{
		{Name: "ue.conf", Template: "ue.conf.diff.tmpl", AppliesWhen: Always, Settings: ueSettings},
		{Name: "enb.conf", Template: "enb.conf.diff.tmpl", AppliesWhen: Always, Settings: enbSettings},
		{
			Name:        "sib.conf",
			Template:    "sib.conf.diff.tmpl",
			AppliesWhen: v1alpha1.ChannelParams.IsNarrowband,
			Reason:      "only narrowband (6 PRB) cells move the PRACH",
		},
	}
}

// Rendered is a diff bound to concrete parameters.
type Rendered struct {
	Name   string `json:"name"`
	Target string `json:"target"`
	// Skipped is set when its Spec does not apply to the parameters.
	Skipped bool   `json:"skipped,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Diff    string `json:"diff,omitempty"`

	settings []Setting
}

// Result records what Apply did to one file.
type Result struct {
	Name    string
	Target  string
	Applied bool
	Reason  string
}

// Status converts the result into its API representation.
func (r Result) Status() v1alpha1.PatchStatus {
	return v1alpha1.PatchStatus{
		Name:    r.Name,
		Target:  r.Target,
		Applied: r.Applied,
		Reason:  r.Reason,
	}
}

// Patcher applies the channel patches to one configuration directory.
type Patcher struct {
	log       logger.Logger
	exec      command.Runner
	specs     []Spec
	configDir string
	backup    bool
	privilege command.Privilege
	backend   backend
}

// New creates a Patcher for the channel settings of a profile spec.
func New(log logger.Logger, exec command.Runner, spec v1alpha1.NodeProfileSpec) *Patcher {
	p := &Patcher{
		log:       log,
		exec:      exec,
		specs:     DefaultSpecs(),
		configDir: spec.Channel.ConfigDir,
		backup:    spec.Channel.Backup,
		privilege: command.Privilege(spec.Privilege),
	}
	if p.configDir == "" {
		p.configDir = v1alpha1.DefaultConfigDir
	}
	if spec.Channel.Backend == v1alpha1.PatchBackendPatch {
		p.backend = &utilityBackend{p: p}
	} else {
		p.backend = &builtinBackend{p: p}
	}
	return p
}

// Render binds params into every diff without touching any file.
func (p *Patcher) Render(params v1alpha1.ChannelParams) ([]Rendered, error) {
	out := make([]Rendered, 0, len(p.specs))
	for _, s := range p.specs {
		r := Rendered{Name: s.Name, Target: filepath.Join(p.configDir, s.Name)}
		if s.AppliesWhen != nil && !s.AppliesWhen(params) {
			r.Skipped = true
			r.Reason = s.Reason
			out = append(out, r)
			continue
		}

		var buf bytes.Buffer
		if err := templates.ExecuteTemplate(&buf, s.Template, params); err != nil {
			return nil, fmt.Errorf("failed to render %s patch: %w", s.Name, err)
		}
		r.Diff = buf.String()
		if s.Settings != nil {
			r.settings = s.Settings(params)
		}
		out = append(out, r)
	}
	return out, nil
}

// Apply patches every file whose spec applies to params, in order. It does
// nothing unless wantsConfigure is set. The first failure stops the run;
// files patched before it stay patched.
func (p *Patcher) Apply(ctx context.Context, params *v1alpha1.ChannelParams, wantsConfigure bool) ([]Result, error) {
	if !wantsConfigure {
		p.log.Debug("No channel_setup requested, leaving %s untouched", p.configDir)
		return nil, nil
	}
	if params == nil {
		return nil, errors.New("channel_setup requested without channel parameters")
	}

	rendered, err := p.Render(*params)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(rendered))
	for _, r := range rendered {
		res := Result{Name: r.Name, Target: r.Target}
		if r.Skipped {
			res.Reason = r.Reason
			p.log.Debug("Skipping %s: %s", r.Target, r.Reason)
			results = append(results, res)
			continue
		}

		if err := ctx.Err(); err != nil {
			return results, err
		}

		p.log.Trace("Applying patch to %s:\n%s", r.Target, r.Diff)
		if err := p.backend.apply(ctx, r); err != nil {
			res.Reason = err.Error()
			results = append(results, res)
			return results, fmt.Errorf("failed to patch %s: %w", r.Target, err)
		}
		res.Applied = true
		p.log.Check("Patched %s", r.Target)
		results = append(results, res)
	}
	return results, nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
