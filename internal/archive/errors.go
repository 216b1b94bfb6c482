// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"github.com/joomcode/errorx"
)

var (
	ErrorsNamespace   = errorx.NewNamespace("archive")
	UnreadableArchive = ErrorsNamespace.NewType("unreadable_archive")

	reasonProperty = errorx.RegisterPrintableProperty("reason")
)

const unreadableArchiveMsg = "archive is not readable [ reason = '%s' ]"

// NewUnreadableArchiveError builds a typed error for a container neither
// reader strategy can process.
func NewUnreadableArchiveError(cause error, reason string) *errorx.Error {
	if cause == nil {
		return UnreadableArchive.New(unreadableArchiveMsg, reason).
			WithProperty(reasonProperty, reason)
	}
	return UnreadableArchive.Wrap(cause, unreadableArchiveMsg, reason).
		WithProperty(reasonProperty, reason)
}
