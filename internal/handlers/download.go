// SPDX-License-Identifier: Apache-2.0

// Package handlers ships the built-in action handlers: download, install,
// uninstall and purge. Each one is an ordinary action.Handler; callers may
// replace any of them in the registry.
package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/joomcode/errorx"
	"github.com/rs/zerolog"

	"github.com/packforge/packforge/internal/action"
	"github.com/packforge/packforge/pkg/fsx"
)

const defaultDownloadTimeout = 30 * time.Minute

// DownloadRequest is the payload of a download action.
type DownloadRequest struct {
	URL         string
	Destination string
}

// DownloadHandler fetches a package archive over HTTP to a destination file.
type DownloadHandler struct {
	client *http.Client
	fs     fsx.Manager
}

// NewDownloadHandler creates a download handler with the default timeout for
// large archives.
func NewDownloadHandler(fs fsx.Manager) *DownloadHandler {
	return NewDownloadHandlerWithTimeout(fs, defaultDownloadTimeout)
}

// NewDownloadHandlerWithTimeout creates a download handler with a custom timeout.
func NewDownloadHandlerWithTimeout(fs fsx.Manager, timeout time.Duration) *DownloadHandler {
	return &DownloadHandler{
		client: &http.Client{Timeout: timeout},
		fs:     fs,
	}
}

func (h *DownloadHandler) Execute(ctx context.Context, act action.Action, log *zerolog.Logger) error {
	p, ok := act.Payload.(DownloadRequest)
	if !ok {
		return errorx.IllegalArgument.New("download action for %q carries no DownloadRequest payload", act.Identity)
	}

	log.Info().Str("package", act.Identity.String()).Str("url", p.URL).Msg("downloading package")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return NewDownloadError(err, p.URL, 0)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return NewDownloadError(err, p.URL, 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NewDownloadError(nil, p.URL, resp.StatusCode)
	}

	out, err := h.fs.CreateWrite(p.Destination)
	if err != nil {
		return NewDownloadError(err, p.URL, 0)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return NewDownloadError(err, p.URL, 0)
	}
	return nil
}

// Rollback deletes whatever was fetched, partial files included.
func (h *DownloadHandler) Rollback(act action.Action, log *zerolog.Logger) error {
	p, ok := act.Payload.(DownloadRequest)
	if !ok {
		return nil
	}

	log.Info().Str("package", act.Identity.String()).Str("destination", p.Destination).
		Msg("removing downloaded archive")
	return h.fs.RemoveAll(p.Destination)
}
