// SPDX-License-Identifier: Apache-2.0

// Package state persists which packages are registered as present on the
// machine. One marker file per package id under the state directory; the
// file's content is the installed version's normalized form.
package state

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/joomcode/errorx"

	"github.com/packforge/packforge/internal/pack"
	"github.com/packforge/packforge/pkg/fsx"
	"github.com/packforge/packforge/pkg/semver"
)

const markerSuffix = "installed"

// Manager reads and writes package registration markers through the injected
// file system.
type Manager struct {
	fs       fsx.Manager
	stateDir string
}

// NewManager creates a state manager rooted at stateDir.
func NewManager(fs fsx.Manager, stateDir string) *Manager {
	return &Manager{fs: fs, stateDir: stateDir}
}

func (m *Manager) markerPath(id string) string {
	folded := strings.ToLower(id)
	return path.Join(m.stateDir, fmt.Sprintf("%s.%s", folded, markerSuffix))
}

// Record registers the package as present, replacing any previously recorded
// version for the same id.
func (m *Manager) Record(identity pack.Identity) error {
	if err := m.fs.CreateDirectory(m.stateDir, true); err != nil {
		return errorx.IllegalState.Wrap(err, "failed to create state directory")
	}

	f, err := m.fs.CreateWrite(m.markerPath(identity.ID))
	if err != nil {
		return errorx.IllegalState.Wrap(err, "failed to create registration marker for %q", identity.ID)
	}
	defer f.Close()

	version := ""
	if identity.Version != nil {
		version = identity.Version.String()
	}
	if _, err := io.WriteString(f, version); err != nil {
		return errorx.IllegalState.Wrap(err, "failed to write registration marker for %q", identity.ID)
	}
	return nil
}

// Remove deregisters the package. Removing an unregistered package is not an
// error.
func (m *Manager) Remove(id string) error {
	return m.fs.RemoveAll(m.markerPath(id))
}

// Installed reports whether a package id is registered and, when it is, the
// recorded version (nil when the marker carries none).
func (m *Manager) Installed(id string) (bool, *semver.Version, error) {
	marker := m.markerPath(id)

	_, exists, err := m.fs.PathExists(marker)
	if err != nil || !exists {
		return false, nil, err
	}

	f, err := m.fs.OpenRead(marker)
	if err != nil {
		return false, nil, err
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return false, nil, errorx.IllegalState.Wrap(err, "failed to read registration marker for %q", id)
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return true, nil, nil
	}

	version, err := semver.Parse(text)
	if err != nil {
		return false, nil, err
	}
	return true, version, nil
}
