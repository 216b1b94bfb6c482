// SPDX-License-Identifier: Apache-2.0

// Package pack holds the value types shared by the archive cache and the
// action pipeline: package identities and extracted manifest files.
package pack

import (
	"fmt"

	"golang.org/x/text/cases"

	"github.com/packforge/packforge/pkg/semver"
)

// foldID performs Unicode case folding so package ids compare
// case-insensitively regardless of the producer's casing conventions.
// A Caser is stateful and must not be shared between goroutines, so a fresh
// one is built per call.
func foldID(id string) string {
	return cases.Fold().String(id)
}

// Identity names a package: a case-insensitive id plus a parsed version.
type Identity struct {
	ID      string
	Version *semver.Version
}

// NewIdentity builds an Identity from an id and a parsed version.
func NewIdentity(id string, version *semver.Version) Identity {
	return Identity{ID: id, Version: version}
}

// Key returns a stable string that identifies the package for map lookups.
// The id is case-folded and the version key excludes build metadata, so two
// identities that EqualTo each other always produce the same key.
func (i Identity) Key() string {
	versionKey := ""
	if i.Version != nil {
		versionKey = i.Version.Key()
	}
	return fmt.Sprintf("%s@%s", foldID(i.ID), versionKey)
}

// EqualTo reports whether two identities name the same package version.
func (i Identity) EqualTo(o Identity) bool {
	return i.Key() == o.Key()
}

// String renders the identity for logs and error messages.
func (i Identity) String() string {
	if i.Version == nil {
		return i.ID
	}
	return fmt.Sprintf("%s %s", i.ID, i.Version)
}
