package core

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
)

// RemoteCache maps content hashes to locally stored copies of fetched
// checklists and templates. The hash table is shared with the ResultCache
// that persists it. RemoteCache is safe for concurrent use.
type RemoteCache struct {
	fs      FileSystem
	fetcher Fetcher
	logger  *log.Logger
	rootDir string

	mu    sync.Mutex
	table map[string]string
}

// NewRemoteCache creates a RemoteCache storing files under
// <rootDir>/remote-checklists and recording them in table.
func NewRemoteCache(fs FileSystem, fetcher Fetcher, logger *log.Logger, rootDir string, table map[string]string) *RemoteCache {
	if logger == nil {
		logger = log.Default()
	}
	return &RemoteCache{
		fs:      fs,
		fetcher: fetcher,
		logger:  logger,
		rootDir: rootDir,
		table:   table,
	}
}

// kindDir returns the directory holding resources of one kind
func (c *RemoteCache) kindDir(kind ResourceKind) string {
	return filepath.Join(c.rootDir, RemoteDir, string(kind))
}

// sanitizeFilename replaces invalid filename characters with underscores
func sanitizeFilename(s string) string {
	result := []rune{}
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '.' || r == '_' {
			result = append(result, r)
		} else {
			result = append(result, '_')
		}
	}
	if len(result) == 0 || string(result) == "." || string(result) == ".." {
		return "_"
	}
	return string(result)
}

// Lookup returns the local path registered for a hash.
func (c *RemoteCache) Lookup(hash string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	path, ok := c.table[hash]
	return path, ok
}

func (c *RemoteCache) register(hash, path string) {
	c.mu.Lock()
	c.table[hash] = path
	c.mu.Unlock()
}

func (c *RemoteCache) forget(hash string) {
	c.mu.Lock()
	delete(c.table, hash)
	c.mu.Unlock()
}

// GetOrFetch returns a local copy of the resource at url.
//
// A pinned hash that is already registered, and whose local copy still hashes
// to the pin, is served without network access. Otherwise the body is
// downloaded, verified against the pin, stored at
// remote-checklists/<kind>/<hash>/<name>, and registered under its computed
// hash. Same-named resources with different content never share a file.
// Pin mismatches return an IntegrityError and leave nothing behind.
func (c *RemoteCache) GetOrFetch(ctx context.Context, name, url, pinnedHash string, kind ResourceKind) (string, error) {
	if pinnedHash != "" {
		if path, ok := c.Lookup(pinnedHash); ok {
			current, err := HashFile(path)
			if err == nil && current == pinnedHash {
				c.logger.Debug("remote cache hit", "url", url, "path", path, "hash", pinnedHash)
				return path, nil
			}
			c.logger.Debug("remote cache entry stale, refetching", "url", url, "path", path)
			c.forget(pinnedHash)
		}
	}

	c.logger.Debug("fetching remote resource", "url", url, "kind", kind)
	body, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	actual := HashBytes(body)
	if pinnedHash != "" && actual != pinnedHash {
		return "", NewIntegrityError(url, pinnedHash, actual)
	}

	path, err := c.store(kind, actual, name, body)
	if err != nil {
		return "", err
	}

	c.register(actual, path)
	c.logger.Debug("remote resource cached", "url", url, "path", path, "hash", actual)
	return path, nil
}

// store writes body to its hash-addressed path. An existing file that
// already holds these bytes is left alone.
func (c *RemoteCache) store(kind ResourceKind, hash, name string, body []byte) (string, error) {
	dir := filepath.Join(c.kindDir(kind), hash)
	path := filepath.Join(dir, sanitizeFilename(name))
	if current, err := HashFile(path); err == nil && current == hash {
		return path, nil
	}
	if err := c.fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create remote cache directory: %w", err)
	}
	if err := c.fs.WriteFileAtomic(path, body, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
