package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
)

// Watch reloads the manifest at path whenever it is written and calls fn with
// the new manifest after applying its runtime settings. It blocks until ctx
// is done. Parse errors are logged and the previous settings kept.
func Watch(ctx context.Context, path string, fn func(*Manifest)) error {
	p, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("expand manifest path: %w", err)
	}
	p, err = filepath.Abs(p)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	// Editors replace files on save, so watch the directory.
	if err := w.Add(filepath.Dir(p)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(p), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != p || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			m, err := Load(p)
			if err != nil {
				slog.Warn("manifest reload failed", "path", p, "err", err)
				continue
			}
			m.Apply()
			slog.Info("manifest reloaded", "path", p)
			if fn != nil {
				fn(m)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("manifest watcher", "err", err)
		}
	}
}
