package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/micro-nova/ws281x-go/internal/models"
)

// reloadDelay coalesces the burst of events an editor produces on save.
const reloadDelay = 100 * time.Millisecond

// selfWriter is implemented by stores that write the watched file
// themselves.
type selfWriter interface {
	wrote(data []byte) bool
}

// Watch calls fn with the freshly loaded config every time the store's file
// is written or replaced by someone else, until ctx is cancelled. Content
// the store wrote itself is not reloaded. The parent directory is watched so
// that atomic renames are picked up.
func Watch(ctx context.Context, store Store, fn func(*models.StripConfig)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	path := filepath.Clean(store.Path())
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}
	go watchLoop(ctx, watcher, store, path, fn)
	return nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, store Store, path string, fn func(*models.StripConfig)) {
	defer watcher.Close()

	timer := time.NewTimer(reloadDelay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) == path && (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				timer.Reset(reloadDelay)
			}
		case <-timer.C:
			if sw, ok := store.(selfWriter); ok {
				if data, err := os.ReadFile(path); err == nil && sw.wrote(data) {
					slog.Debug("config: skipping reload of own write", "path", path)
					continue
				}
			}
			cfg, err := store.Load()
			if err != nil {
				slog.Warn("config: failed to reload", "path", path, "err", err)
				continue
			}
			slog.Debug("config: reloaded", "path", path)
			fn(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("config: watcher error", "err", err)
		}
	}
}
