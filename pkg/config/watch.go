package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config whenever its file is written, until ctx is done.
// onReload, if set, runs after every successful reload. A file that fails to
// parse is logged and the previous values are kept.
func (c *Config) Watch(ctx context.Context, onReload func()) error {
	path := c.GetPath()
	if path == "" {
		return fmt.Errorf("config has no file to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	c.log.Info("Watching config file", "path", path)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				c.reload(path, onReload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.log.Error("Config watcher error", err)
			}
		}
	}()

	return nil
}

func (c *Config) reload(path string, onReload func()) {
	// Parse into a scratch config so a half-written file never clobbers
	// the values in use.
	next := New(c.log)
	if err := next.LoadFromFile(path, c.log); err != nil {
		c.log.Warn("Ignoring config change", "path", path, "error", err)
		return
	}

	next.mu.RLock()
	c.mu.Lock()
	c.listA = next.listA
	c.listB = next.listB
	c.delay = next.delay
	c.logOCR = next.logOCR
	c.capture = next.capture
	c.threshold = next.threshold
	c.holdMs = next.holdMs
	c.playDelay = next.playDelay
	c.repeatCount = next.repeatCount
	c.windowClasses = next.windowClasses
	c.notifyCommand = next.notifyCommand
	c.ocrLanguage = next.ocrLanguage
	c.mu.Unlock()
	next.mu.RUnlock()

	c.log.Info("Configuration reloaded", "path", path)
	if onReload != nil {
		onReload()
	}
}
