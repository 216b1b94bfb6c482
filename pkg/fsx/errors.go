// SPDX-License-Identifier: Apache-2.0

package fsx

import (
	"github.com/joomcode/errorx"
)

var (
	ErrorsNamespace = errorx.NewNamespace("fsx")
	FileNotFound    = ErrorsNamespace.NewType("file_not_found")
	FileSystemError = ErrorsNamespace.NewType("filesystem_error")

	pathProperty = errorx.RegisterPrintableProperty("path")
)

const (
	fileNotFoundMsg    = "file not found [ path = '%s' ]"
	fileSystemErrorMsg = "file system operation failed [ path = '%s' ]"
)

// NewFileNotFoundError builds a typed error for a missing file.
func NewFileNotFoundError(path string) *errorx.Error {
	return FileNotFound.New(fileNotFoundMsg, path).WithProperty(pathProperty, path)
}

// NewFileSystemError builds a typed error for a failed file system operation.
// The cause may be nil when the failure is a state violation rather than an
// underlying OS error.
func NewFileSystemError(cause error, path string) *errorx.Error {
	if cause == nil {
		return FileSystemError.New(fileSystemErrorMsg, path).WithProperty(pathProperty, path)
	}
	return FileSystemError.Wrap(cause, fileSystemErrorMsg, path).WithProperty(pathProperty, path)
}
