// SPDX-License-Identifier: Apache-2.0

package pack

import (
	"github.com/packforge/packforge/pkg/fsx"
)

// ManifestFile is one materialized package payload file. It is produced by
// extraction and is read-only to every component other than the package
// instance that extracted it.
type ManifestFile struct {
	// Path is the archive-relative path of the entry, using '/' separators.
	Path string
	// TargetPath is the absolute on-disk path the entry was materialized to.
	TargetPath string

	fs fsx.Manager
}

// NewManifestFile binds an extracted entry to the file system it lives on.
func NewManifestFile(path, targetPath string, fs fsx.Manager) ManifestFile {
	return ManifestFile{Path: path, TargetPath: targetPath, fs: fs}
}

// Open returns a read handle on the materialized file.
func (f ManifestFile) Open() (fsx.File, error) {
	return f.fs.OpenRead(f.TargetPath)
}

// ContentFilter decides whether an archive entry (by archive-relative path) is
// package payload. Directory entries are always excluded before the filter
// runs; the filter exists so callers that understand the package's manifest
// conventions can exclude manifests, signatures and other bookkeeping entries.
type ContentFilter func(path string) bool
