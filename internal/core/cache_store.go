package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/adam-gaia/checklints/internal/types"
)

// CacheEntry is a stored check result plus the content hashes it was
// computed against. Inputs is only recorded for Pass results.
type CacheEntry struct {
	Status types.Status      `json:"status"`
	Inputs map[string]string `json:"inputs,omitempty"` // path -> content hash
}

// ResultCache maps (file content, check definition) to a previously computed
// status. It persists four tables per project: paths, checks, facts, remotes.
type ResultCache struct {
	fs      FileSystem
	logger  *log.Logger
	rootDir string
	project string

	paths   map[string]string     // path -> content hash
	checks  map[string]CacheEntry // fingerprint -> entry
	facts   *types.Facts          // snapshot from the last save
	remotes map[string]string     // content hash -> local path

	fromDisk bool
}

// NewResultCache creates an empty cache for project under cacheRoot.
func NewResultCache(fs FileSystem, logger *log.Logger, cacheRoot, project string) *ResultCache {
	if logger == nil {
		logger = log.Default()
	}
	return &ResultCache{
		fs:      fs,
		logger:  logger,
		rootDir: filepath.Join(cacheRoot, sanitizeFilename(project)),
		project: sanitizeFilename(project),
		paths:   make(map[string]string),
		checks:  make(map[string]CacheEntry),
		facts:   types.NewFacts(),
		remotes: make(map[string]string),
	}
}

// LoadResultCache reads a project's cache tables. It returns nil without an
// error unless both the paths and checks tables exist.
func LoadResultCache(fs FileSystem, logger *log.Logger, cacheRoot, project string) (*ResultCache, error) {
	c := NewResultCache(fs, logger, cacheRoot, project)

	for _, table := range []string{pathsTable, checksTable} {
		if _, err := fs.Stat(c.tablePath(table)); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, nil
			}
			return nil, fmt.Errorf(ErrCacheLoadMsg, table, err)
		}
	}

	if err := c.loadTable(pathsTable, &c.paths, false); err != nil {
		return nil, err
	}
	if err := c.loadTable(checksTable, &c.checks, false); err != nil {
		return nil, err
	}
	if err := c.loadTable(factsTable, c.facts, true); err != nil {
		return nil, err
	}
	if err := c.loadTable(remotesTable, &c.remotes, true); err != nil {
		return nil, err
	}
	c.fromDisk = true
	c.logger.Debug("loaded result cache", "dir", c.rootDir, "paths", len(c.paths), "checks", len(c.checks))
	return c, nil
}

// Dir returns the per-project cache directory.
func (c *ResultCache) Dir() string {
	return c.rootDir
}

// tablePath returns the file path of one table
func (c *ResultCache) tablePath(table string) string {
	return filepath.Join(c.rootDir, fmt.Sprintf("%s-%s.json", c.project, table))
}

func (c *ResultCache) loadTable(table string, out interface{}, allowMissing bool) error {
	data, err := c.fs.ReadFile(c.tablePath(table))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && allowMissing {
			return nil
		}
		return fmt.Errorf(ErrCacheLoadMsg, table, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("corrupted cache file %s: %w", c.tablePath(table), err)
	}
	return nil
}

// Remotes returns the hash -> local path table shared with a RemoteCache.
func (c *ResultCache) Remotes() map[string]string {
	return c.remotes
}

// Facts returns the stored facts snapshot.
func (c *ResultCache) Facts() *types.Facts {
	return c.facts
}

// SetFacts replaces the facts snapshot written by Save.
func (c *ResultCache) SetFacts(facts *types.Facts) {
	c.facts = facts
}

// FactsMatch reports whether a cache loaded from disk was written with the
// given facts. A cache that was never saved matches anything.
func (c *ResultCache) FactsMatch(facts *types.Facts) bool {
	if !c.fromDisk {
		return true
	}
	return c.facts.Equal(facts)
}

// currentHashes hashes every input of a file check. ok is false when any
// input cannot be read.
func (c *ResultCache) currentHashes(fc *types.FileCheck) (map[string]string, bool) {
	hashes := make(map[string]string)
	for _, path := range fc.CachePaths() {
		sum, err := HashFile(path)
		if err != nil {
			c.logger.Debug("cache input unreadable", "path", path, "err", err)
			return nil, false
		}
		hashes[path] = sum
	}
	return hashes, true
}

// Get returns the cached status for a check, or nil on a miss.
//
// Only file checks participate. Directory, command and http checks always
// miss; varset checks are never cached because the environment is volatile.
func (c *ResultCache) Get(check types.CheckType) (*types.Status, error) {
	fc, ok := check.(*types.FileCheck)
	if !ok {
		return nil, nil
	}

	for _, path := range fc.CachePaths() {
		if _, ok := c.paths[path]; !ok {
			return nil, nil
		}
	}
	current, ok := c.currentHashes(fc)
	if !ok {
		return nil, nil
	}
	for path, sum := range current {
		if c.paths[path] != sum {
			c.logger.Debug("cache stale", "path", path)
			return nil, nil
		}
	}

	fp, err := Fingerprint(check)
	if err != nil {
		return nil, err
	}
	entry, ok := c.checks[fp]
	if !ok {
		return nil, nil
	}
	// The path table is shared between checks; the entry must have been
	// computed against exactly these contents.
	for path, sum := range current {
		if entry.Inputs[path] != sum {
			return nil, nil
		}
	}
	// Extra inputs, such as included templates, are only recorded on the entry.
	for path, sum := range entry.Inputs {
		if _, ok := current[path]; ok {
			continue
		}
		if now, err := HashFile(path); err != nil || now != sum {
			c.logger.Debug("cache stale", "path", path)
			return nil, nil
		}
	}

	status := entry.Status.MarkCached()
	c.logger.Debug("cache hit", "check", fc.Path, "hash", fp)
	return &status, nil
}

// Insert stores a status for a check. Only file checks persist. Content
// hashes are refreshed only on Pass so a failure is always re-evaluated.
// extra names further files the Pass depends on; an unreadable one leaves
// the entry without inputs so it never hits.
func (c *ResultCache) Insert(check types.CheckType, status types.Status, extra ...string) error {
	fc, ok := check.(*types.FileCheck)
	if !ok {
		return nil
	}

	fp, err := Fingerprint(check)
	if err != nil {
		return err
	}

	entry := CacheEntry{Status: status.MarkCached()}
	if status.IsPass() {
		if current, ok := c.currentHashes(fc); ok {
			for path, sum := range current {
				c.paths[path] = sum
			}
			entry.Inputs = current
			for _, path := range extra {
				if _, ok := current[path]; ok {
					continue
				}
				sum, err := HashFile(path)
				if err != nil {
					c.logger.Debug("cache input unreadable", "path", path, "err", err)
					entry.Inputs = nil
					break
				}
				entry.Inputs[path] = sum
			}
		}
	}
	c.checks[fp] = entry
	c.logger.Debug("cache insert", "check", fc.Path, "hash", fp, "status", status.Kind)
	return nil
}

// Sweep drops path and fingerprint entries that no current check references.
func (c *ResultCache) Sweep(checks []types.CheckType) {
	livePaths := make(map[string]bool)
	liveChecks := make(map[string]bool)
	for _, check := range checks {
		fc, ok := check.(*types.FileCheck)
		if !ok {
			continue
		}
		if fp, err := Fingerprint(fc); err == nil {
			liveChecks[fp] = true
		}
		for _, path := range fc.CachePaths() {
			livePaths[path] = true
		}
	}

	removed := 0
	for path := range c.paths {
		if !livePaths[path] {
			delete(c.paths, path)
			removed++
		}
	}
	for fp := range c.checks {
		if !liveChecks[fp] {
			delete(c.checks, fp)
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug("swept stale cache entries", "removed", removed)
	}
}

// Wipe deletes the per-project cache directory, including fetched remote
// resources, and resets every table to empty.
func (c *ResultCache) Wipe() error {
	if err := c.fs.RemoveAll(c.rootDir); err != nil {
		return fmt.Errorf("failed to wipe cache directory: %w", err)
	}
	clear(c.paths)
	clear(c.checks)
	clear(c.remotes)
	c.facts = types.NewFacts()
	c.fromDisk = false
	c.logger.Debug("wiped result cache", "dir", c.rootDir)
	return nil
}

// Invalidate drops the result tables after a facts change. Fetched remote
// resources are content-addressed and stay registered.
func (c *ResultCache) Invalidate() error {
	for _, table := range []string{pathsTable, checksTable, factsTable} {
		if err := c.fs.RemoveAll(c.tablePath(table)); err != nil {
			return fmt.Errorf("failed to invalidate cache: %w", err)
		}
	}
	clear(c.paths)
	clear(c.checks)
	c.facts = types.NewFacts()
	c.fromDisk = false
	c.logger.Debug("invalidated result cache", "dir", c.rootDir)
	return nil
}

// Save writes all four tables, creating the cache directory if needed.
func (c *ResultCache) Save() error {
	if err := c.fs.MkdirAll(c.rootDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tables := []struct {
		name string
		data interface{}
	}{
		{pathsTable, c.paths},
		{checksTable, c.checks},
		{factsTable, c.facts},
		{remotesTable, c.remotes},
	}
	for _, t := range tables {
		data, err := json.MarshalIndent(t.data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal %s cache: %w", t.name, err)
		}
		if err := c.fs.WriteFileAtomic(c.tablePath(t.name), data, 0644); err != nil {
			return fmt.Errorf("failed to write cache file: %w", err)
		}
	}
	c.logger.Debug("saved result cache", "dir", c.rootDir)
	return nil
}
