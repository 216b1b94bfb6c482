// SPDX-License-Identifier: Apache-2.0

package state

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packforge/packforge/internal/pack"
	"github.com/packforge/packforge/pkg/fsx"
	"github.com/packforge/packforge/pkg/semver"
)

func newTestManager() *Manager {
	return NewManager(fsx.NewManagerWithFs(afero.NewMemMapFs()), "/var/lib/packforge/state")
}

func TestRecordAndInstalled(t *testing.T) {
	req := require.New(t)
	m := newTestManager()

	installed, _, err := m.Installed("acme.tool")
	req.NoError(err)
	req.False(installed)

	req.NoError(m.Record(pack.NewIdentity("Acme.Tool", semver.MustParse("1.2.3"))))

	// Lookups are case-insensitive.
	installed, version, err := m.Installed("ACME.TOOL")
	req.NoError(err)
	assert.True(t, installed)
	require.NotNil(t, version)
	assert.True(t, version.EqualTo(semver.MustParse("1.2.3")))
}

func TestRecordReplacesVersion(t *testing.T) {
	req := require.New(t)
	m := newTestManager()

	req.NoError(m.Record(pack.NewIdentity("acme.tool", semver.MustParse("1.0.0"))))
	req.NoError(m.Record(pack.NewIdentity("acme.tool", semver.MustParse("2.0.0"))))

	_, version, err := m.Installed("acme.tool")
	req.NoError(err)
	require.NotNil(t, version)
	assert.True(t, version.EqualTo(semver.MustParse("2.0.0")))
}

func TestRemove(t *testing.T) {
	req := require.New(t)
	m := newTestManager()

	req.NoError(m.Record(pack.NewIdentity("acme.tool", semver.MustParse("1.0.0"))))
	req.NoError(m.Remove("acme.tool"))

	installed, _, err := m.Installed("acme.tool")
	req.NoError(err)
	assert.False(t, installed)

	// Removing again is harmless.
	req.NoError(m.Remove("acme.tool"))
}

func TestRecordWithoutVersion(t *testing.T) {
	req := require.New(t)
	m := newTestManager()

	req.NoError(m.Record(pack.NewIdentity("acme.tool", nil)))

	installed, version, err := m.Installed("acme.tool")
	req.NoError(err)
	assert.True(t, installed)
	assert.Nil(t, version)
}
