// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"github.com/packforge/packforge/internal/action"
	"github.com/packforge/packforge/internal/cache"
	"github.com/packforge/packforge/internal/state"
	"github.com/packforge/packforge/pkg/fsx"
)

// NewRegistry returns a registry with the four built-in handlers bound to
// their action types. Callers may re-register any entry afterwards.
func NewRegistry(c *cache.FolderCache, st *state.Manager, fs fsx.Manager) *action.Registry {
	r := action.NewRegistry()
	r.Register(action.TypeDownload, NewDownloadHandler(fs))
	r.Register(action.TypeInstall, NewInstallHandler(c, st))
	r.Register(action.TypeUninstall, NewUninstallHandler(st, fs))
	r.Register(action.TypePurge, NewPurgeHandler(c))
	return r
}
