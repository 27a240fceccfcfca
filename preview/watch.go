package preview

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// WatchFile calls onChange with the content of path now and after every
// write, until ctx ends. The parent directory is watched so editors that
// replace the file on save keep working.
func WatchFile(ctx context.Context, path string, onChange func(content string) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	emit := func() error {
		b, err := os.ReadFile(abs)
		if err != nil {
			return err
		}

		return onChange(string(b))
	}

	if err := emit(); err != nil {
		return err
	}

	l := log.With().Str("component", "preview").Str("file", abs).Logger()
	l.Info().Msg("watching for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			l.Warn().Err(err).Msg("watcher error")
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(ev.Name) != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}

			if err := emit(); err != nil {
				l.Warn().Err(err).Msg("reload failed")
			}
		}
	}
}
