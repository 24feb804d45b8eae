package templating

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the template set whenever a file under the template directory
// changes, until ctx is cancelled. Bursts of events are debounced into a
// single Refresh. A failed reload is logged and the previous set keeps serving.
func (tm *TemplateManager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create template watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	dir := tm.GetTemplateDir()
	if err = addDirs(watcher, dir); err != nil {
		return fmt.Errorf("failed to watch template directory %s: %w", dir, err)
	}

	debounce := time.Duration(tm.GetConfig().WatchDebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	tm.logger.Info("Watching templates for changes", "dir", dir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			// New subdirectories need their own watch.
			if event.Op&fsnotify.Create == fsnotify.Create {
				_ = addDirs(watcher, event.Name)
			}
			tm.logger.Debug("Template change detected", "file", event.Name, "op", event.Op.String())
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			tm.logger.Error("Template watcher error", "error", err)
		case <-timer.C:
			if err := tm.Refresh(); err != nil {
				tm.logger.Error("Template reload failed, keeping previous templates", "error", err)
				continue
			}
			tm.logger.Info("Templates reloaded")
		}
	}
}

// addDirs adds root and every directory below it to the watcher.
// Paths that are not directories are ignored.
func addDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
