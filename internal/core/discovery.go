package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/adam-gaia/checklints/internal/types"
)

// DiscoveryOptions selects where checklists are loaded from.
type DiscoveryOptions struct {
	ProjectRoot string
	// UserChecklistDir is the user-wide checklist directory; empty disables it.
	UserChecklistDir string
	External         []*types.RemoteFile
	// Extra are additional checklist files or directories, loaded last.
	Extra []string
}

// Discoverer locates and parses checklists.
type Discoverer struct {
	fs      FileSystem
	remotes *RemoteCache
	logger  *log.Logger
}

// NewDiscoverer creates a Discoverer. remotes may be nil when no external
// checklists are configured.
func NewDiscoverer(fs FileSystem, remotes *RemoteCache, logger *log.Logger) *Discoverer {
	if logger == nil {
		logger = log.Default()
	}
	return &Discoverer{fs: fs, remotes: remotes, logger: logger}
}

// Discover returns checklists in evaluation order: external, user-wide,
// project-local, then extras. A path reached twice is loaded once.
func (d *Discoverer) Discover(ctx context.Context, opts DiscoveryOptions) ([]*types.Checklist, error) {
	var paths []string

	if len(opts.External) > 0 {
		if d.remotes == nil {
			return nil, fmt.Errorf("no remote cache configured for %s", opts.External[0])
		}
		reqs := make([]FetchRequest, len(opts.External))
		for i, ref := range opts.External {
			reqs[i] = FetchRequest{Ref: ref, Kind: ResourceChecklist}
		}
		results, err := NewParallelFetcher(d.remotes, 0).FetchAll(ctx, reqs)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			paths = append(paths, r.Path)
		}
	}

	if opts.UserChecklistDir != "" {
		info, err := d.fs.Stat(opts.UserChecklistDir)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("%w: %s", ErrUserChecklistsMissing, opts.UserChecklistDir)
		}
		found, err := d.listDir(opts.UserChecklistDir)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}

	found, err := d.projectChecklists(opts.ProjectRoot)
	if err != nil {
		return nil, err
	}
	paths = append(paths, found...)

	for _, extra := range opts.Extra {
		info, err := d.fs.Stat(extra)
		if err != nil {
			return nil, NewChecklistError(extra, err)
		}
		if info.IsDir() {
			found, err := d.listDir(extra)
			if err != nil {
				return nil, err
			}
			paths = append(paths, found...)
			continue
		}
		paths = append(paths, extra)
	}

	seen := make(map[string]bool, len(paths))
	checklists := make([]*types.Checklist, 0, len(paths))
	for _, path := range paths {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if seen[path] {
			continue
		}
		seen[path] = true

		cl, err := d.load(path, opts.ProjectRoot)
		if err != nil {
			return nil, err
		}
		d.logger.Debug("loaded checklist", "path", path, "checks", len(cl.Checks), "facts", len(cl.Facts))
		checklists = append(checklists, cl)
	}
	return checklists, nil
}

// projectChecklists finds checklist directories and files at the project root.
func (d *Discoverer) projectChecklists(root string) ([]string, error) {
	var paths []string
	for _, name := range ProjectChecklistDirs {
		dir := filepath.Join(root, name)
		info, err := d.fs.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		found, err := d.listDir(dir)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	for _, name := range ProjectChecklistFiles {
		file := filepath.Join(root, name)
		if info, err := d.fs.Stat(file); err == nil && info.Mode().IsRegular() {
			paths = append(paths, file)
		}
	}
	return paths, nil
}

// listDir returns the checklist files directly inside dir, sorted by name.
func (d *Discoverer) listDir(dir string) ([]string, error) {
	names, err := d.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var paths []string
	for _, name := range names {
		if !types.IsChecklistFile(name) {
			continue
		}
		path := filepath.Join(dir, name)
		if info, err := d.fs.Stat(path); err == nil && info.Mode().IsRegular() {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func (d *Discoverer) load(path, projectRoot string) (*types.Checklist, error) {
	data, err := d.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewChecklistError(path, err)
		}
		return nil, fmt.Errorf(ErrReadChecklistMsg, path, err)
	}
	cl, err := types.ParseChecklist(path, data, projectRoot)
	if err != nil {
		return nil, NewChecklistError(path, err)
	}
	return cl, nil
}
