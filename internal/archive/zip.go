// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"archive/zip"
	"io"
	"strings"
)

// zipReader is the primary strategy: the standard central-directory parser.
type zipReader struct {
	zr *zip.Reader
}

func newZipReader(ra io.ReaderAt, size int64) (*zipReader, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, NewUnreadableArchiveError(err, "central directory rejected")
	}
	return &zipReader{zr: zr}, nil
}

func (r *zipReader) Entries() ([]Entry, error) {
	entries := make([]Entry, 0, len(r.zr.File))
	for _, f := range r.zr.File {
		entries = append(entries, Entry{
			Path: f.Name,
			Size: int64(f.UncompressedSize64),
			Dir:  strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir(),
			open: f.Open,
		})
	}
	return entries, nil
}
