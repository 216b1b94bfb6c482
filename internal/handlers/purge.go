// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/packforge/packforge/internal/action"
	"github.com/packforge/packforge/internal/cache"
)

// PurgeHandler clears the expanded-folder cache and its on-disk folders.
type PurgeHandler struct {
	cache *cache.FolderCache
}

// NewPurgeHandler creates a purge handler over the shared folder cache.
func NewPurgeHandler(c *cache.FolderCache) *PurgeHandler {
	return &PurgeHandler{cache: c}
}

func (h *PurgeHandler) Execute(ctx context.Context, act action.Action, log *zerolog.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	log.Info().Str("package", act.Identity.String()).Msg("purging cached package artifacts")
	h.cache.Purge()
	return nil
}

// Rollback is a no-op: deleted expanded folders cannot be restored.
func (h *PurgeHandler) Rollback(act action.Action, log *zerolog.Logger) error {
	log.Warn().Str("package", act.Identity.String()).Msg("purge cannot be rolled back")
	return nil
}
