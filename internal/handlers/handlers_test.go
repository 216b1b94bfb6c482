// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joomcode/errorx"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packforge/packforge/internal/action"
	"github.com/packforge/packforge/internal/cache"
	"github.com/packforge/packforge/internal/pack"
	"github.com/packforge/packforge/internal/state"
	"github.com/packforge/packforge/pkg/fsx"
	"github.com/packforge/packforge/pkg/logx"
	"github.com/packforge/packforge/pkg/semver"
)

type fixture struct {
	fs    fsx.Manager
	memFs afero.Fs
	cache *cache.FolderCache
	state *state.Manager
}

func newFixture() *fixture {
	memFs := afero.NewMemMapFs()
	fs := fsx.NewManagerWithFs(memFs)
	return &fixture{
		fs:    fs,
		memFs: memFs,
		cache: cache.New("/scratch", fs, logx.Nop()),
		state: state.NewManager(fs, "/state"),
	}
}

func packageArchive(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("lib/tool.bin")
	require.NoError(t, err)
	_, err = w.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func identity(t *testing.T, version string) pack.Identity {
	t.Helper()
	v, err := semver.Parse(version)
	require.NoError(t, err)
	return pack.NewIdentity("acme.tool", v)
}

func TestDownloadHandler(t *testing.T) {
	req := require.New(t)
	f := newFixture()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("archive bytes"))
	}))
	defer server.Close()

	h := NewDownloadHandler(f.fs)
	act := action.Action{
		Type:     action.TypeDownload,
		Identity: identity(t, "1.0.0"),
		Payload:  DownloadRequest{URL: server.URL, Destination: "/feed/tool.pkg"},
	}

	req.NoError(h.Execute(context.Background(), act, logx.Nop()))
	content, err := afero.ReadFile(f.memFs, "/feed/tool.pkg")
	req.NoError(err)
	assert.Equal(t, "archive bytes", string(content))

	req.NoError(h.Rollback(act, logx.Nop()))
	exists, err := afero.Exists(f.memFs, "/feed/tool.pkg")
	req.NoError(err)
	assert.False(t, exists)
}

func TestDownloadHandlerStatusFailure(t *testing.T) {
	f := newFixture()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	h := NewDownloadHandler(f.fs)
	act := action.Action{
		Type:     action.TypeDownload,
		Identity: identity(t, "1.0.0"),
		Payload:  DownloadRequest{URL: server.URL, Destination: "/feed/tool.pkg"},
	}

	err := h.Execute(context.Background(), act, logx.Nop())
	assert.True(t, errorx.IsOfType(err, DownloadError))
}

func TestInstallHandlerRegistersPackage(t *testing.T) {
	req := require.New(t)
	f := newFixture()
	req.NoError(afero.WriteFile(f.memFs, "/feed/tool.pkg", packageArchive(t), 0o644))

	h := NewInstallHandler(f.cache, f.state)
	act := action.Action{
		Type:     action.TypeInstall,
		Identity: identity(t, "1.2.3"),
		Payload:  InstallRequest{ArchivePath: "/feed/tool.pkg"},
	}

	req.NoError(h.Execute(context.Background(), act, logx.Nop()))

	installed, version, err := f.state.Installed("acme.tool")
	req.NoError(err)
	assert.True(t, installed)
	require.NotNil(t, version)
	assert.True(t, version.EqualTo(semver.MustParse("1.2.3")))

	req.NoError(h.Rollback(act, logx.Nop()))
	installed, _, err = f.state.Installed("acme.tool")
	req.NoError(err)
	assert.False(t, installed)
}

func TestUninstallHandlerRemovesFilesAndRegistration(t *testing.T) {
	req := require.New(t)
	f := newFixture()
	id := identity(t, "1.2.3")
	req.NoError(f.state.Record(id))
	req.NoError(afero.WriteFile(f.memFs, "/opt/acme/tool.bin", []byte("x"), 0o644))

	h := NewUninstallHandler(f.state, f.fs)
	act := action.Action{
		Type:     action.TypeUninstall,
		Identity: id,
		Payload:  UninstallRequest{RemovePaths: []string{"/opt/acme"}},
	}

	req.NoError(h.Execute(context.Background(), act, logx.Nop()))

	installed, _, err := f.state.Installed("acme.tool")
	req.NoError(err)
	assert.False(t, installed)
	exists, err := afero.Exists(f.memFs, "/opt/acme/tool.bin")
	req.NoError(err)
	assert.False(t, exists)

	// Rollback restores the registration.
	req.NoError(h.Rollback(act, logx.Nop()))
	installed, _, err = f.state.Installed("acme.tool")
	req.NoError(err)
	assert.True(t, installed)
}

func TestPurgeHandlerClearsCache(t *testing.T) {
	req := require.New(t)
	f := newFixture()
	req.NoError(afero.WriteFile(f.memFs, "/feed/tool.pkg", packageArchive(t), 0o644))

	_, err := f.cache.EnsureExtracted(identity(t, "1.0.0"), "/feed/tool.pkg", nil)
	req.NoError(err)
	req.Equal(1, f.cache.Size())

	h := NewPurgeHandler(f.cache)
	act := action.Action{Type: action.TypePurge, Identity: identity(t, "1.0.0")}

	req.NoError(h.Execute(context.Background(), act, logx.Nop()))
	assert.Equal(t, 0, f.cache.Size())

	// Purge rollback is a logged no-op.
	req.NoError(h.Rollback(act, logx.Nop()))
}

func TestPipelineWithBuiltInHandlers(t *testing.T) {
	req := require.New(t)
	f := newFixture()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(packageArchive(t))
	}))
	defer server.Close()

	registry := NewRegistry(f.cache, f.state, f.fs)
	pipeline := action.NewPipeline(registry)

	id := identity(t, "1.0.0")
	plan := []action.Action{
		{Type: action.TypeDownload, Identity: id, Payload: DownloadRequest{URL: server.URL, Destination: "/feed/tool.pkg"}},
		{Type: action.TypeInstall, Identity: id, Payload: InstallRequest{ArchivePath: "/feed/tool.pkg"}},
	}

	req.NoError(pipeline.Execute(context.Background(), plan, logx.Nop()))

	installed, _, err := f.state.Installed("acme.tool")
	req.NoError(err)
	assert.True(t, installed)
	assert.Equal(t, 1, f.cache.Size())
}

func TestPipelineRollsBackInstallOnLaterFailure(t *testing.T) {
	req := require.New(t)
	f := newFixture()
	req.NoError(afero.WriteFile(f.memFs, "/feed/tool.pkg", packageArchive(t), 0o644))

	registry := NewRegistry(f.cache, f.state, f.fs)
	pipeline := action.NewPipeline(registry)

	id := identity(t, "1.0.0")
	plan := []action.Action{
		{Type: action.TypeInstall, Identity: id, Payload: InstallRequest{ArchivePath: "/feed/tool.pkg"}},
		// Missing archive: the second install fails and the first rolls back.
		{Type: action.TypeInstall, Identity: identity(t, "2.0.0"), Payload: InstallRequest{ArchivePath: "/feed/missing.pkg"}},
	}

	err := pipeline.Execute(context.Background(), plan, logx.Nop())
	assert.True(t, errorx.IsOfType(err, cache.ExtractionError), "the extraction failure must surface verbatim")

	installed, _, err := f.state.Installed("acme.tool")
	req.NoError(err)
	assert.False(t, installed, "the successful install must have been rolled back")
}
