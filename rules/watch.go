package rules

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// HotReloadEnabled reports whether Watch will reload on change: the loader
// flag must be set and the catalog must run in development.
func (c *Catalog) HotReloadEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.HotReloadInDevelopment && c.env == EnvDevelopment
}

// Watch reloads path whenever it changes until ctx is done. It returns nil
// immediately when hot reload is disabled. A reload that fails keeps the
// rules loaded before it.
func (c *Catalog) Watch(ctx context.Context, path string) error {
	if !c.HotReloadEnabled() {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating rule watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files by rename, so the directory is watched.
	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	c.logger.Info("watching rule source", "path", target)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := c.LoadFile(target); err != nil {
				c.logger.Error("rule reload failed, keeping previous rules",
					"path", target,
					"err", err,
				)
				continue
			}
			c.logger.Info("rules reloaded", "path", target, "rules", c.Len())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("rule watcher error", "err", err)
		}
	}
}
