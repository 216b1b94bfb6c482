// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"github.com/joomcode/errorx"
)

var (
	ErrorsNamespace = errorx.NewNamespace("handlers")
	DownloadError   = ErrorsNamespace.NewType("download_error")

	urlProperty    = errorx.RegisterPrintableProperty("url")
	statusProperty = errorx.RegisterPrintableProperty("status")
)

const downloadErrorMsg = "failed to download package [ url = '%s', status = %d ]"

// NewDownloadError builds a typed error for a failed archive download. Status
// is zero when the failure happened before an HTTP response arrived.
func NewDownloadError(cause error, url string, status int) *errorx.Error {
	if cause == nil {
		return DownloadError.New(downloadErrorMsg, url, status).
			WithProperty(urlProperty, url).
			WithProperty(statusProperty, status)
	}
	return DownloadError.Wrap(cause, downloadErrorMsg, url, status).
		WithProperty(urlProperty, url).
		WithProperty(statusProperty, status)
}
