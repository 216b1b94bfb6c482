// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/packforge/packforge/internal/action"
	"github.com/packforge/packforge/internal/state"
	"github.com/packforge/packforge/pkg/fsx"
)

// UninstallRequest is the payload of an uninstall action.
type UninstallRequest struct {
	// RemovePaths lists on-disk paths deleted together with the registration.
	// May be empty when only the registration should go.
	RemovePaths []string
}

// UninstallHandler deregisters a package and optionally removes its files.
type UninstallHandler struct {
	state *state.Manager
	fs    fsx.Manager
}

// NewUninstallHandler creates an uninstall handler over the shared state
// manager and file system.
func NewUninstallHandler(st *state.Manager, fs fsx.Manager) *UninstallHandler {
	return &UninstallHandler{state: st, fs: fs}
}

func (h *UninstallHandler) Execute(ctx context.Context, act action.Action, log *zerolog.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	log.Info().Str("package", act.Identity.String()).Msg("uninstalling package")

	if err := h.state.Remove(act.Identity.ID); err != nil {
		return err
	}

	if p, ok := act.Payload.(UninstallRequest); ok {
		for _, path := range p.RemovePaths {
			if err := h.fs.RemoveAll(path); err != nil {
				return err
			}
		}
	}
	return nil
}

// Rollback re-registers the package; its files are assumed untouched or
// restorable by a subsequent install of the same identity.
func (h *UninstallHandler) Rollback(act action.Action, log *zerolog.Logger) error {
	log.Info().Str("package", act.Identity.String()).Msg("rolling back uninstall")
	return h.state.Record(act.Identity)
}
