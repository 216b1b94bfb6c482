// SPDX-License-Identifier: Apache-2.0

package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/automa-saga/automa"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packforge/packforge/internal/action"
	"github.com/packforge/packforge/internal/pack"
	"github.com/packforge/packforge/pkg/logx"
	"github.com/packforge/packforge/pkg/semver"
)

type fakeHandler struct {
	trace       *[]string
	name        string
	executeErr  error
	rollbackErr error
}

func (h *fakeHandler) Execute(_ context.Context, act action.Action, _ *zerolog.Logger) error {
	*h.trace = append(*h.trace, "execute:"+h.name+":"+act.Identity.ID)
	return h.executeErr
}

func (h *fakeHandler) Rollback(act action.Action, _ *zerolog.Logger) error {
	*h.trace = append(*h.trace, "rollback:"+h.name+":"+act.Identity.ID)
	return h.rollbackErr
}

func planAction(t *testing.T, typ action.Type, id string) action.Action {
	t.Helper()
	v, err := semver.Parse("2.1.0")
	require.NoError(t, err)
	return action.Action{Type: typ, Identity: pack.NewIdentity(id, v)}
}

func TestPlanWorkflowAllStepsSucceed(t *testing.T) {
	var trace []string
	registry := action.NewRegistry()
	registry.Register(action.TypeDownload, &fakeHandler{trace: &trace, name: "download"})
	registry.Register(action.TypeInstall, &fakeHandler{trace: &trace, name: "install"})

	plan := []action.Action{
		planAction(t, action.TypeDownload, "tool"),
		planAction(t, action.TypeInstall, "tool"),
	}

	report, err := Run(context.Background(), NewPlanWorkflow("test-plan", registry, plan, logx.Nop()))

	require.NoError(t, err)
	require.Equal(t, automa.StatusSuccess, report.Status)
	assert.Equal(t, []string{
		"execute:download:tool",
		"execute:install:tool",
	}, trace)
	for _, step := range report.StepReports {
		assert.Equal(t, automa.StatusSuccess, step.Status, "step %q failed: %s", step.Id, step.Error)
	}
}

func TestPlanWorkflowRollsBackOnFailure(t *testing.T) {
	var trace []string
	boom := errors.New("checksum mismatch")
	registry := action.NewRegistry()
	registry.Register(action.TypeDownload, &fakeHandler{trace: &trace, name: "download"})
	registry.Register(action.TypeInstall, &fakeHandler{trace: &trace, name: "install", executeErr: boom})

	plan := []action.Action{
		planAction(t, action.TypeDownload, "tool"),
		planAction(t, action.TypeInstall, "tool"),
	}

	report, err := Run(context.Background(), NewPlanWorkflow("test-plan", registry, plan, logx.Nop()))

	require.NoError(t, err, "execution failures surface through the report, not the error")
	assert.NotEqual(t, automa.StatusSuccess, report.Status)
	assert.Equal(t, []string{
		"execute:download:tool",
		"execute:install:tool",
		"rollback:download:tool",
	}, trace, "the successful download must be compensated in reverse order")
}

func TestPlanWorkflowSkipsUnregisteredTypes(t *testing.T) {
	var trace []string
	registry := action.NewRegistry()
	registry.Register(action.TypeInstall, &fakeHandler{trace: &trace, name: "install"})

	plan := []action.Action{
		planAction(t, action.TypeDownload, "tool"), // no handler
		planAction(t, action.TypeInstall, "tool"),
	}

	report, err := Run(context.Background(), NewPlanWorkflow("test-plan", registry, plan, logx.Nop()))

	require.NoError(t, err)
	require.Equal(t, automa.StatusSuccess, report.Status)
	assert.Equal(t, []string{"execute:install:tool"}, trace)
}

func TestInstallWorkflowStepIds(t *testing.T) {
	var trace []string
	registry := action.NewRegistry()
	registry.Register(action.TypeDownload, &fakeHandler{trace: &trace, name: "download"})
	registry.Register(action.TypeInstall, &fakeHandler{trace: &trace, name: "install"})

	download := planAction(t, action.TypeDownload, "MyTool")
	install := planAction(t, action.TypeInstall, "MyTool")

	report, err := Run(context.Background(), NewInstallWorkflow(registry, download, install, logx.Nop()))

	require.NoError(t, err)
	require.Equal(t, automa.StatusSuccess, report.Status)
	require.Len(t, report.StepReports, 2)
	assert.Equal(t, "00-download-mytool", report.StepReports[0].Id)
	assert.Equal(t, "01-install-mytool", report.StepReports[1].Id)
}

func TestUninstallWorkflow(t *testing.T) {
	var trace []string
	registry := action.NewRegistry()
	registry.Register(action.TypeUninstall, &fakeHandler{trace: &trace, name: "uninstall"})

	report, err := Run(context.Background(), NewUninstallWorkflow(registry, planAction(t, action.TypeUninstall, "tool"), logx.Nop()))

	require.NoError(t, err)
	require.Equal(t, automa.StatusSuccess, report.Status)
	assert.Equal(t, []string{"execute:uninstall:tool"}, trace)
}
