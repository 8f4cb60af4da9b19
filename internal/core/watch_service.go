package core

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of file events into one re-run.
const DefaultDebounce = 300 * time.Millisecond

// WatchOptions configures WatchProject.
type WatchOptions struct {
	Root     string
	Extra    []string // Additional files or directories to watch
	Debounce time.Duration
	Logger   *log.Logger
}

// WatchProject calls run once, then again after every debounced change
// below the project root or extra paths, until ctx is cancelled.
// Hidden directories other than checklist directories are not watched.
func WatchProject(ctx context.Context, opts WatchOptions, run func() error) error {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	delay := opts.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, opts.Root); err != nil {
		return err
	}
	for _, extra := range opts.Extra {
		if err := addTree(watcher, extra); err != nil {
			return err
		}
	}

	if err := run(); err != nil {
		logger.Error("audit failed", "err", err)
	}
	logger.Info("watching for changes", "root", opts.Root)

	// Debounce: the timer channel fires once per quiet period
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				// New directories must be watched too
				_ = addTree(watcher, event.Name)
			}
			logger.Debug("file event", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(delay)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			logger.Info("change detected, re-running checks")
			if err := run(); err != nil {
				logger.Error("audit failed", "err", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		}
	}
}

// addTree watches path and, for directories, every non-hidden subdirectory.
func addTree(watcher *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if p == path {
				return watcher.Add(p)
			}
			return nil
		}
		if p != path && skipWatchDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

func skipWatchDir(name string) bool {
	for _, dir := range ProjectChecklistDirs {
		if name == dir {
			return false
		}
	}
	return strings.HasPrefix(name, ".") || name == "node_modules" || name == "target"
}
