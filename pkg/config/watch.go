package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/go-drift/arbor/pkg/errors"
)

// Watch resolves the configuration in dir, calls fn with the result and
// calls it again each time arbor.yaml is written, created or removed. A
// failed resolve is passed to fn as err; watching continues. Watch blocks
// until ctx is done.
func Watch(ctx context.Context, dir string, fn func(r *Resolved, err error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	// Editors often replace the file, so watch the directory.
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	notify(fn, dir)

	target := filepath.Join(dir, FileName)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				notify(fn, dir)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			deliver(fn, nil, err)
		}
	}
}

func notify(fn func(*Resolved, error), dir string) {
	r, err := Resolve(dir)
	deliver(fn, r, err)
}

// deliver keeps a panicking callback from ending the watch.
func deliver(fn func(*Resolved, error), r *Resolved, err error) {
	defer errors.Recover("config.Watch")
	fn(r, err)
}
