package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultInterval is the quiet period before a batch is delivered.
const DefaultInterval = 100 * time.Millisecond

// IgnoreChecker decides which inbox paths are skipped.
type IgnoreChecker interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnorePath(absolutePath string) bool
}

// Watcher watches an inbox directory tree and delivers debounced batches
// of file events.
type Watcher struct {
	fsWatcher     *fsnotify.Watcher
	debouncer     *Debouncer
	ignoreChecker IgnoreChecker
	rootDir       string
	logger        *slog.Logger
}

// NewWatcher watches rootDir, creating it when missing.
func NewWatcher(rootDir string, ignoreChecker IgnoreChecker, interval time.Duration, logger *slog.Logger) (*Watcher, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, err
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	w := &Watcher{
		fsWatcher:     fsWatcher,
		debouncer:     NewDebouncer(interval),
		ignoreChecker: ignoreChecker,
		rootDir:       rootDir,
		logger:        logger,
	}
	if err := w.watchTree(rootDir, false); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	return w, nil
}

// RootDir returns the watched directory.
func (w *Watcher) RootDir() string {
	return w.rootDir
}

// Events returns the channel of debounced batches. It is closed by Close.
func (w *Watcher) Events() <-chan []DebouncedEvent {
	return w.debouncer.Output()
}

// Start forwards fsnotify events to the debouncer until the watcher is
// closed. Call it in a goroutine.
func (w *Watcher) Start() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("inbox watcher error", "error", err)
		}
	}
}

// watchTree registers dir and its non-ignored subdirectories. With
// announce set, files already inside are reported as created; they may
// have landed before the directory was watched.
func (w *Watcher) watchTree(dir string, announce bool) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if announce && !w.ignoreChecker.ShouldIgnorePath(path) {
				w.debouncer.Add(path, OpCreate)
			}
			return nil
		}
		if path != w.rootDir && w.ignoreChecker.ShouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			w.logger.Warn("failed to watch inbox directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.ignoreChecker.ShouldIgnoreDir(path) {
				w.watchTree(path, true)
			}
			return
		}
	}

	if w.ignoreChecker.ShouldIgnorePath(path) {
		w.logger.Debug("inbox event ignored", "path", path)
		return
	}
	if op, ok := opFor(event); ok {
		w.debouncer.Add(path, op)
	}
}

// opFor maps an fsnotify event to the op it delivers. Chmod-only events
// carry no content change.
func opFor(event fsnotify.Event) (EventOp, bool) {
	switch {
	case event.Has(fsnotify.Create):
		return OpCreate, true
	case event.Has(fsnotify.Write):
		return OpWrite, true
	case event.Has(fsnotify.Remove):
		return OpRemove, true
	case event.Has(fsnotify.Rename):
		return OpRename, true
	}
	return 0, false
}

// Close stops the watcher and closes the Events channel.
func (w *Watcher) Close() error {
	err := w.fsWatcher.Close()
	w.debouncer.Stop()
	return err
}
