// SPDX-License-Identifier: Apache-2.0

// Package archive reads ZIP-compatible package containers. Two interchangeable
// strategies sit behind the Reader interface: the primary reader uses the
// standard central-directory parser, and a lenient fallback walks local file
// headers directly for archives whose central directory some producers emit in
// a shape the primary reader rejects. Open probes the container and selects
// the strategy; callers never assume one.
package archive

import (
	"bytes"
	"io"
)

var (
	localHeaderSignature  = []byte{'P', 'K', 0x03, 0x04}
	emptyArchiveSignature = []byte{'P', 'K', 0x05, 0x06}
)

// Entry is one file or directory inside the container.
type Entry struct {
	// Path is the entry's archive-relative path using '/' separators.
	Path string
	// Size is the uncompressed byte length.
	Size int64
	// Dir reports whether the entry is a directory.
	Dir bool

	open func() (io.ReadCloser, error)
}

// Open returns a reader over the entry's uncompressed bytes.
func (e Entry) Open() (io.ReadCloser, error) {
	return e.open()
}

// Reader enumerates the entries of a package container.
type Reader interface {
	Entries() ([]Entry, error)
}

// Open selects a reader strategy for the container. It sniffs the local file
// header signature first; containers that are not ZIP at all fail immediately.
// When the primary reader rejects the container, the lenient fallback is used.
func Open(ra io.ReaderAt, size int64) (Reader, error) {
	sig := make([]byte, len(localHeaderSignature))
	if _, err := ra.ReadAt(sig, 0); err != nil {
		return nil, NewUnreadableArchiveError(err, "container too short to hold a header")
	}
	if !bytes.Equal(sig, localHeaderSignature) && !bytes.Equal(sig, emptyArchiveSignature) {
		return nil, NewUnreadableArchiveError(nil, "missing local file header signature")
	}

	if r, err := newZipReader(ra, size); err == nil {
		return r, nil
	}

	return newLenientReader(ra, size)
}
