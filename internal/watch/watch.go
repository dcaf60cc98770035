// Package watch rebuilds a site whenever files under its root change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/elucidator/internal/logfields"
)

// DefaultDebounce is the quiet period after the last event before a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// Options configures Run.
type Options struct {
	// Root is watched recursively.
	Root string
	// Ignore returns directories whose events never trigger a rebuild,
	// typically the output directory. It is consulted for every event, so
	// the result may change between rebuilds.
	Ignore func() []string
	// IgnoreFiles lists files the rebuild itself writes. Files in the same
	// directory whose names start with one of these names are ignored too,
	// which covers temporary files renamed into place.
	IgnoreFiles []string
	Debounce    time.Duration
	Logger      *slog.Logger
}

// Run watches opts.Root and calls rebuild after each burst of changes.
// Rebuilds run one at a time on the calling goroutine; a failed rebuild is
// logged and watching continues. Run returns nil once ctx is done.
func Run(ctx context.Context, opts Options, rebuild func() error) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	f := newFilter(opts.Ignore, opts.IgnoreFiles)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := addDirsRecursive(watcher, f, opts.Root, logger); err != nil {
		return err
	}
	logger.Info("Watching for changes", logfields.Root(opts.Root))

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if f.ignored(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = addDirsRecursive(watcher, f, ev.Name, logger)
				}
			}
			logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", logfields.Error(err))
		case <-timer.C:
			logger.Info("Change detected; rebuilding site")
			if err := rebuild(); err != nil {
				logger.Warn("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

func addDirsRecursive(w *fsnotify.Watcher, f filter, root string, logger *slog.Logger) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("watch %s: %w", root, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && f.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

type filter struct {
	dirs  func() []string
	files []string
}

func newFilter(dirs func() []string, files []string) filter {
	f := filter{dirs: dirs}
	for _, file := range files {
		f.files = append(f.files, filepath.Clean(file))
	}
	return f
}

// ignored reports whether path lies in an ignored directory, is a file the
// build writes, or is a hidden or editor temporary file.
func (f filter) ignored(path string) bool {
	path = filepath.Clean(path)
	if f.dirs != nil {
		for _, dir := range f.dirs() {
			dir = filepath.Clean(dir)
			if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
				return true
			}
		}
	}
	for _, file := range f.files {
		if filepath.Dir(path) == filepath.Dir(file) && strings.HasPrefix(filepath.Base(path), filepath.Base(file)) {
			return true
		}
	}

	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."),
		strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	}
	return false
}
