// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"

	"github.com/joomcode/errorx"
	"github.com/rs/zerolog"

	"github.com/packforge/packforge/internal/action"
	"github.com/packforge/packforge/internal/cache"
	"github.com/packforge/packforge/internal/pack"
	"github.com/packforge/packforge/internal/state"
)

// InstallRequest is the payload of an install action.
type InstallRequest struct {
	// ArchivePath locates the package's backing archive on the file system.
	ArchivePath string
	// Filter decides which archive entries are package content. Nil means all
	// non-directory entries.
	Filter pack.ContentFilter
}

// InstallHandler materializes a package through the folder cache and registers
// it as present.
type InstallHandler struct {
	cache *cache.FolderCache
	state *state.Manager
}

// NewInstallHandler creates an install handler over the shared folder cache
// and state manager.
func NewInstallHandler(c *cache.FolderCache, st *state.Manager) *InstallHandler {
	return &InstallHandler{cache: c, state: st}
}

func (h *InstallHandler) Execute(ctx context.Context, act action.Action, log *zerolog.Logger) error {
	p, ok := act.Payload.(InstallRequest)
	if !ok {
		return errorx.IllegalArgument.New("install action for %q carries no InstallRequest payload", act.Identity)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	log.Info().Str("package", act.Identity.String()).Msg("installing package")

	files, err := h.cache.EnsureExtracted(act.Identity, p.ArchivePath, p.Filter)
	if err != nil {
		return err
	}
	log.Debug().Str("package", act.Identity.String()).Int("files", len(files)).
		Msg("package contents materialized")

	return h.state.Record(act.Identity)
}

// Rollback compensates an install by deregistering the package, the same
// effect an uninstall of the identity has.
func (h *InstallHandler) Rollback(act action.Action, log *zerolog.Logger) error {
	log.Info().Str("package", act.Identity.String()).Msg("rolling back install")
	return h.state.Remove(act.Identity.ID)
}
