// SPDX-License-Identifier: Apache-2.0

// Package cache materializes package archives into on-disk expanded folders
// and reuses them across calls. The identity→folder table is shared state: it
// is created once, injected into whoever needs it, and cleared only by Purge.
package cache

import (
	"errors"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/joomcode/errorx"
	"github.com/rs/zerolog"

	"github.com/packforge/packforge/internal/archive"
	"github.com/packforge/packforge/internal/pack"
	"github.com/packforge/packforge/pkg/fsx"
)

type entry struct {
	folder  string
	modTime time.Time
}

// FolderCache maps package identities to expanded folders under a scratch
// root. Lookups and inserts from concurrent callers are safe; concurrent
// extraction of the same identity is resolved as last-writer-wins on the
// table entry, so callers needing single extraction per identity must
// serialize externally.
type FolderCache struct {
	root string
	fs   fsx.Manager
	log  *zerolog.Logger

	mu      sync.RWMutex
	entries map[string]entry

	processLock *flock.Flock
}

// Option configures a FolderCache.
type Option func(*FolderCache)

// WithProcessLock guards Purge with a file lock at the given path, so purges
// and extractions from separate processes sharing one scratch root exclude
// each other. The path must live on a real file system.
func WithProcessLock(path string) Option {
	return func(c *FolderCache) {
		c.processLock = flock.New(path)
	}
}

// New creates a FolderCache rooted at the given scratch directory.
func New(root string, fs fsx.Manager, log *zerolog.Logger, opts ...Option) *FolderCache {
	c := &FolderCache{
		root:    root,
		fs:      fs,
		log:     log,
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnsureExtracted returns the manifest files of the package backed by the
// archive at sourcePath, extracting into a fresh expanded folder unless a
// previously expanded folder is still valid. A folder is valid while the
// source file's modification time is not newer than the recorded one and the
// folder still exists on disk. Directory entries are always excluded; the
// filter (when non-nil) decides which remaining entries are package content.
func (c *FolderCache) EnsureExtracted(id pack.Identity, sourcePath string, filter pack.ContentFilter) (map[string]pack.ManifestFile, error) {
	modTime, err := c.fs.LastModified(sourcePath)
	if err != nil {
		return nil, NewExtractionError(err, id.String(), sourcePath)
	}

	key := id.Key()
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && !modTime.After(e.modTime) {
		if _, exists, _ := c.fs.PathExists(e.folder); exists {
			return c.scan(id, sourcePath, e.folder, filter, false)
		}
	}

	folder := filepath.Join(c.root, uuid.NewString())
	files, err := c.scan(id, sourcePath, folder, filter, true)
	if err != nil {
		// The partially written folder must never become reusable: without a
		// table entry the next call extracts afresh.
		if rmErr := c.fs.RemoveAll(folder); rmErr != nil {
			c.log.Warn().Err(rmErr).Str("folder", folder).Msg("failed to delete partially expanded folder")
		}
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = entry{folder: folder, modTime: modTime}
	c.mu.Unlock()

	return files, nil
}

// Purge deletes every recorded expanded folder and clears the table. When the
// table is empty the whole scratch root is deleted instead, which covers
// folders left behind by an earlier process that never tracked them. Deletion
// failures are logged, never surfaced.
func (c *FolderCache) Purge() {
	if c.processLock != nil {
		if err := c.processLock.Lock(); err != nil {
			c.log.Warn().Err(err).Msg("failed to acquire scratch root lock, purging anyway")
		} else {
			defer func() {
				if err := c.processLock.Unlock(); err != nil {
					c.log.Warn().Err(err).Msg("failed to release scratch root lock")
				}
			}()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) == 0 {
		if err := c.fs.RemoveAll(c.root); err != nil {
			c.log.Warn().Err(err).Str("root", c.root).Msg("failed to delete scratch root")
		}
		return
	}

	for key, e := range c.entries {
		if err := c.fs.RemoveAll(e.folder); err != nil {
			c.log.Warn().Err(err).Str("folder", e.folder).Msg("failed to delete expanded folder")
		}
		delete(c.entries, key)
	}
}

// Size returns the number of tracked expanded folders.
func (c *FolderCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// scan enumerates the archive's content entries and maps them to target paths
// under folder. With copyFiles set it also materializes each entry, skipping
// targets that already exist with the entry's exact byte length.
func (c *FolderCache) scan(id pack.Identity, sourcePath, folder string, filter pack.ContentFilter, copyFiles bool) (map[string]pack.ManifestFile, error) {
	src, err := c.fs.OpenRead(sourcePath)
	if err != nil {
		return nil, NewExtractionError(err, id.String(), sourcePath)
	}
	defer src.Close()

	size, err := c.fs.FileSize(sourcePath)
	if err != nil {
		return nil, NewExtractionError(err, id.String(), sourcePath)
	}

	reader, err := archive.Open(src, size)
	if err != nil {
		return nil, NewExtractionError(err, id.String(), sourcePath)
	}

	archiveEntries, err := reader.Entries()
	if err != nil {
		return nil, NewExtractionError(err, id.String(), sourcePath)
	}

	files := make(map[string]pack.ManifestFile)
	for _, ae := range archiveEntries {
		if ae.Dir {
			continue
		}
		if filter != nil && !filter(ae.Path) {
			continue
		}

		rel, ok := targetRelativePath(ae.Path)
		if !ok {
			c.log.Warn().Str("entry", ae.Path).Msg("skipping entry escaping the expanded folder")
			continue
		}
		target := filepath.Join(folder, rel)

		if copyFiles {
			if err := c.copyEntry(ae, target); err != nil {
				return nil, NewExtractionError(err, id.String(), sourcePath)
			}
		}

		files[ae.Path] = pack.NewManifestFile(ae.Path, target, c.fs)
	}

	return files, nil
}

// copyEntry materializes one archive entry. A target that already exists with
// the entry's byte length is treated as materialized. Targets that cannot be
// opened because another process holds them locked (or permission is denied)
// are skipped: the previously materialized content is assumed usable.
func (c *FolderCache) copyEntry(ae archive.Entry, target string) error {
	if size, err := c.fs.FileSize(target); err == nil && size == ae.Size {
		return nil
	}

	if err := c.fs.CreateDirectory(filepath.Dir(target), true); err != nil {
		return err
	}

	src, err := ae.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := c.fs.CreateWrite(target)
	if err != nil {
		if isContentionError(err) {
			c.log.Debug().Err(err).Str("target", target).Msg("target file busy, keeping existing content")
			return nil
		}
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return nil
}

// targetRelativePath converts an archive entry path to a host-relative path:
// percent-escapes decoded per segment, separators normalized. Entries that
// resolve outside the expanded folder are rejected.
func targetRelativePath(entryPath string) (string, bool) {
	segments := strings.Split(entryPath, "/")
	for i, segment := range segments {
		if decoded, err := url.PathUnescape(segment); err == nil {
			segments[i] = decoded
		}
	}

	joined := path.Join(segments...)
	if joined == "" || joined == ".." || strings.HasPrefix(joined, "../") {
		return "", false
	}
	return filepath.FromSlash(joined), true
}

func isContentionError(err error) bool {
	cause := err
	if ex := errorx.Cast(err); ex != nil && ex.Cause() != nil {
		cause = ex.Cause()
	}

	if errors.Is(cause, os.ErrPermission) {
		return true
	}

	var errno syscall.Errno
	if errors.As(cause, &errno) {
		return errno == syscall.EBUSY || errno == syscall.ETXTBSY
	}
	return false
}
