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

// Package provisioner runs the setup steps of a testbed node in their fixed
// order and then writes the requested channel into the srsLTE config.
package provisioner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/NVIDIA/radiodeck/api/radiodeck/v1alpha1"
	"github.com/NVIDIA/radiodeck/internal/logger"
	"github.com/NVIDIA/radiodeck/pkg/actions"
	"github.com/NVIDIA/radiodeck/pkg/command"
	"github.com/NVIDIA/radiodeck/pkg/patch"
	"github.com/NVIDIA/radiodeck/pkg/retry"
)

// Condition reasons
const (
	ReasonProvisioning     = "Provisioning"
	ReasonStepFailed       = "StepFailed"
	ReasonInterrupted      = "Interrupted"
	ReasonContextMismatch  = "PatchContextMismatch"
	ReasonPatchFailed      = "PatchFailed"
	ReasonProvisioned      = "Provisioned"
	ReasonChannelPatched   = "ChannelPatched"
	ReasonChannelUntouched = "NoChannelRequested"
)

// Provisioner runs the steps of one node profile and records their outcome
// in its status.
type Provisioner struct {
	log     logger.Logger
	retry   *retry.Runner
	patcher *patch.Patcher
	profile *v1alpha1.NodeProfile

	now   func() time.Time
	newID func() string
}

// New returns a Provisioner that runs external commands through exec and
// records progress in profile.Status.
func New(log logger.Logger, exec command.Runner, profile *v1alpha1.NodeProfile) *Provisioner {
	return &Provisioner{
		log:     log,
		retry:   retry.New(log, exec, retry.PolicyFor(profile.Spec.Retry)),
		patcher: patch.New(log, exec, profile.Spec),
		profile: profile,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Run executes every step resolved from plan, one after the other, and then
// applies the channel patches if the plan asks for them. Progress is written
// to the profile status even when Run fails.
func (p *Provisioner) Run(ctx context.Context, plan actions.Plan) error {
	status := &p.profile.Status
	status.RunID = p.newID()
	status.Steps = nil
	status.Patches = nil
	status.Channel = nil
	p.setCondition(v1alpha1.ConditionProgressing, metav1.ConditionTrue, ReasonProvisioning, "Provisioning started")
	meta.RemoveStatusCondition(&status.Conditions, v1alpha1.ConditionDegraded)

	p.log.Debug("Starting run %s of %s", status.RunID, p.profile.Name)
	for _, token := range plan.Ignored {
		p.log.Debug("Ignoring unrecognized token %q", token)
	}

	for _, step := range NewDependencies(plan, p.profile.Spec).Resolve() {
		if err := p.runStep(ctx, step); err != nil {
			reason := ReasonStepFailed
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				reason = ReasonInterrupted
			}
			p.fail(reason, err)
			return fmt.Errorf("%s: %w", step.Name, err)
		}
	}

	results, err := p.patcher.Apply(ctx, plan.Channel, plan.WantsConfigure)
	for _, r := range results {
		status.Patches = append(status.Patches, r.Status())
	}
	if err != nil {
		reason := ReasonPatchFailed
		if errors.Is(err, patch.ErrContextMismatch) {
			reason = ReasonContextMismatch
		}
		p.setCondition(v1alpha1.ConditionChannelConfigured, metav1.ConditionFalse, reason, err.Error())
		p.fail(reason, err)
		return err
	}

	if plan.WantsConfigure {
		params := *plan.Channel
		status.Channel = &params
		p.setCondition(v1alpha1.ConditionChannelConfigured, metav1.ConditionTrue, ReasonChannelPatched,
			fmt.Sprintf("Channel set to %d PRB on EARFCN %d", params.NumResourceBlocks, params.EARFCN))
	} else {
		meta.RemoveStatusCondition(&status.Conditions, v1alpha1.ConditionChannelConfigured)
	}

	p.setCondition(v1alpha1.ConditionProgressing, metav1.ConditionFalse, ReasonProvisioned, "Provisioning finished")
	p.setCondition(v1alpha1.ConditionAvailable, metav1.ConditionTrue, ReasonProvisioned, "Node is provisioned")
	return nil
}

func (p *Provisioner) runStep(ctx context.Context, step Step) error {
	p.log.Trace("Running %s", step.Command)
	done := p.log.Loading("%s", step.Description)

	attempts, err := p.retry.Run(ctx, step.FailureMessage, step.Command)
	p.profile.Status.Steps = append(p.profile.Status.Steps, v1alpha1.StepStatus{
		Name:       step.Name,
		Command:    step.Command.String(),
		Attempts:   attempts,
		Succeeded:  err == nil,
		FinishedAt: metav1.NewTime(p.now()),
	})

	if err != nil {
		done(logger.ErrLoadingFailed)
		return err
	}
	done(nil)
	return nil
}

func (p *Provisioner) fail(reason string, err error) {
	p.setCondition(v1alpha1.ConditionProgressing, metav1.ConditionFalse, reason, err.Error())
	p.setCondition(v1alpha1.ConditionAvailable, metav1.ConditionFalse, reason, err.Error())
	p.setCondition(v1alpha1.ConditionDegraded, metav1.ConditionTrue, reason, err.Error())
}

func (p *Provisioner) setCondition(conditionType string, status metav1.ConditionStatus, reason, message string) {
	meta.SetStatusCondition(&p.profile.Status.Conditions, metav1.Condition{
		Type:               conditionType,
		Status:             status,
		Reason:             reason,
		Message:            message,
		LastTransitionTime: metav1.NewTime(p.now()),
	})
}
