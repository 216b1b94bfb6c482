// SPDX-License-Identifier: Apache-2.0

// Package workflows composes action plans into automa sagas. The saga engine
// provides the same reverse-order compensation as the plain pipeline, plus
// per-step reports and lifecycle notifications for interactive callers.
package workflows

import (
	"context"
	"fmt"
	"strings"

	"github.com/automa-saga/automa"
	"github.com/rs/zerolog"

	"github.com/packforge/packforge/internal/action"
	"github.com/packforge/packforge/internal/workflows/notify"
)

// NewPlanWorkflow builds a saga executing the plan's actions in order. Each
// action becomes one step; on any step failure automa rolls back the steps
// that already succeeded, in reverse order.
func NewPlanWorkflow(id string, reg *action.Registry, plan []action.Action, log *zerolog.Logger) *automa.WorkflowBuilder {
	steps := make([]automa.Builder, 0, len(plan))
	for i, act := range plan {
		steps = append(steps, actionStep(i, reg, act, log))
	}

	return automa.NewWorkflowBuilder().WithId(id).
		Steps(steps...).
		WithExecutionMode(automa.RollbackOnError).
		WithPrepare(func(ctx context.Context, stp automa.Step) (context.Context, error) {
			notify.As().StepStart(ctx, stp, "Executing plan of %d actions", len(plan))
			return ctx, nil
		}).
		WithOnFailure(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepFailure(ctx, stp, rpt, "Plan failed, executed actions were rolled back")
		}).
		WithOnCompletion(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepCompletion(ctx, stp, rpt, "Plan executed successfully")
		})
}

// NewInstallWorkflow builds the canonical download-then-install saga for a
// single package.
func NewInstallWorkflow(reg *action.Registry, download, install action.Action, log *zerolog.Logger) *automa.WorkflowBuilder {
	id := fmt.Sprintf("install-%s", strings.ToLower(install.Identity.ID))
	return NewPlanWorkflow(id, reg, []action.Action{download, install}, log)
}

// NewUninstallWorkflow builds a single-step uninstall saga for a package.
func NewUninstallWorkflow(reg *action.Registry, uninstall action.Action, log *zerolog.Logger) *automa.WorkflowBuilder {
	id := fmt.Sprintf("uninstall-%s", strings.ToLower(uninstall.Identity.ID))
	return NewPlanWorkflow(id, reg, []action.Action{uninstall}, log)
}

func actionStep(ordinal int, reg *action.Registry, act action.Action, log *zerolog.Logger) automa.Builder {
	return automa.NewStepBuilder().WithId(stepId(ordinal, act)).
		WithExecute(func(ctx context.Context, stp automa.Step) *automa.Report {
			h, ok := reg.Lookup(act.Type)
			if !ok {
				// Unregistered types are skipped, not failed, so that plans
				// built for a richer handler set still execute elsewhere.
				return automa.SkippedReport(stp,
					automa.WithDetail(fmt.Sprintf("no handler registered for action type %q", act.Type)))
			}

			meta := stepMetadata(act)
			if err := h.Execute(ctx, act, log); err != nil {
				return automa.FailureReport(stp, automa.WithError(err), automa.WithMetadata(meta))
			}

			return automa.SuccessReport(stp, automa.WithMetadata(meta))
		}).
		WithRollback(func(ctx context.Context, stp automa.Step) *automa.Report {
			h, ok := reg.Lookup(act.Type)
			if !ok {
				return automa.SkippedReport(stp,
					automa.WithDetail(fmt.Sprintf("no handler registered for action type %q", act.Type)))
			}

			if err := h.Rollback(act, log); err != nil {
				return automa.FailureReport(stp, automa.WithError(err))
			}

			return automa.SuccessReport(stp)
		})
}

func stepId(ordinal int, act action.Action) string {
	if act.Identity.ID == "" {
		return fmt.Sprintf("%02d-%s", ordinal, act.Type)
	}
	return fmt.Sprintf("%02d-%s-%s", ordinal, act.Type, strings.ToLower(act.Identity.ID))
}

func stepMetadata(act action.Action) map[string]string {
	meta := map[string]string{"action_type": string(act.Type)}
	if act.Identity.ID != "" {
		meta["package_id"] = act.Identity.ID
	}
	if act.Identity.Version != nil {
		meta["package_version"] = act.Identity.Version.String()
	}
	return meta
}
