// SPDX-License-Identifier: Apache-2.0

package workflows

import (
	"context"

	"github.com/automa-saga/automa"
	"github.com/packforge/packforge/pkg/logx"
)

// Run builds and executes a workflow and returns its report. Build errors are
// returned as-is; execution failures are reported through the report's Error
// and per-step statuses rather than a Go error, matching automa semantics.
func Run(ctx context.Context, b automa.Builder) (*automa.Report, error) {
	wf, err := b.Build()
	if err != nil {
		return nil, err
	}

	report := wf.Execute(ctx)
	for _, stepReport := range report.StepReports {
		if stepReport.Status == automa.StatusFailed {
			logx.As().Error().
				Err(stepReport.Error).
				Str("step_id", stepReport.Id).
				Msg("workflow step failed")
		}
	}

	return report, nil
}
