package fileutil

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceInterval is how long Watch waits for a burst of events to settle.
const DebounceInterval = 100 * time.Millisecond

// Watch calls fn with the path of files below dir that are written or
// created, until ctx is cancelled. When exts is non-empty only files with
// one of those extensions (without dot, case-insensitive) are reported.
// Events for the same file arriving within DebounceInterval are merged.
func Watch(ctx context.Context, dir string, exts []string, logger *slog.Logger, fn func(path string)) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, dir); err != nil {
		return err
	}

	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !matchesExt(event.Name, exts) {
				continue
			}
			path := event.Name
			if t, ok := timers[path]; ok {
				t.Stop()
			}
			timers[path] = time.AfterFunc(DebounceInterval, func() {
				logger.Debug("file changed", slog.String("path", path))
				fn(path)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", slog.Any("error", err))
		}
	}
}

func matchesExt(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	e := Ext(path)
	for _, want := range exts {
		if strings.EqualFold(strings.TrimPrefix(want, "."), e) {
			return true
		}
	}
	return false
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
