// SPDX-License-Identifier: Apache-2.0

// Package fsx provides an operating system independent interface for the file
// operations the engine performs, so tests can substitute an in-memory
// implementation.
package fsx

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// File is the handle returned for reads and writes. It supports random access
// reads, which the archive readers require.
type File = afero.File

// Manager abstracts the file system operations used by the engine.
type Manager interface {
	// PathExists determines if the path exists. The file info is nil when it does not.
	PathExists(path string) (os.FileInfo, bool, error)
	// OpenRead opens the file at path for reading.
	OpenRead(path string) (File, error)
	// CreateWrite creates (or truncates) the file at path for writing.
	CreateWrite(path string) (File, error)
	// FullPath resolves path to an absolute path.
	FullPath(path string) (string, error)
	// LastModified returns the modification timestamp of the file at path.
	LastModified(path string) (time.Time, error)
	// FileSize returns the byte length of the file at path.
	FileSize(path string) (int64, error)
	// CreateDirectory creates a directory at path. With recursive set, missing
	// parents are created; an existing directory is not an error.
	CreateDirectory(path string, recursive bool) error
	// RemoveAll removes the path and any contents. A missing path is not an error.
	RemoveAll(path string) error
}

type manager struct {
	fs afero.Fs
}

// NewManager returns a Manager backed by the operating system's file system.
func NewManager() Manager {
	return &manager{fs: afero.NewOsFs()}
}

// NewManagerWithFs returns a Manager backed by the given afero file system.
// Tests use this with afero.NewMemMapFs().
func NewManagerWithFs(fs afero.Fs) Manager {
	return &manager{fs: fs}
}

func (m *manager) PathExists(path string) (os.FileInfo, bool, error) {
	fi, err := m.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, NewFileSystemError(err, path)
	}
	return fi, true, nil
}

func (m *manager) OpenRead(path string) (File, error) {
	f, err := m.fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewFileNotFoundError(path)
		}
		return nil, NewFileSystemError(err, path)
	}
	return f, nil
}

func (m *manager) CreateWrite(path string) (File, error) {
	f, err := m.fs.Create(path)
	if err != nil {
		return nil, NewFileSystemError(err, path)
	}
	return f, nil
}

func (m *manager) FullPath(path string) (string, error) {
	full, err := filepath.Abs(path)
	if err != nil {
		return "", NewFileSystemError(err, path)
	}
	return full, nil
}

func (m *manager) LastModified(path string) (time.Time, error) {
	fi, err := m.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, NewFileNotFoundError(path)
		}
		return time.Time{}, NewFileSystemError(err, path)
	}
	return fi.ModTime(), nil
}

func (m *manager) FileSize(path string) (int64, error) {
	fi, err := m.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, NewFileNotFoundError(path)
		}
		return 0, NewFileSystemError(err, path)
	}
	return fi.Size(), nil
}

func (m *manager) CreateDirectory(path string, recursive bool) error {
	fi, err := m.fs.Stat(path)
	if err == nil {
		if fi.IsDir() {
			return nil
		}
		return NewFileSystemError(nil, path)
	}

	if recursive {
		err = m.fs.MkdirAll(path, 0o755)
	} else {
		err = m.fs.Mkdir(path, 0o755)
	}
	if err != nil {
		return NewFileSystemError(err, path)
	}
	return nil
}

func (m *manager) RemoveAll(path string) error {
	if err := m.fs.RemoveAll(path); err != nil {
		return NewFileSystemError(err, path)
	}
	return nil
}
