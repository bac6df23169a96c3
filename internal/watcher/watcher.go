// Package watcher re-ingests specification files when they change on disk.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rcliao/specforge/internal/logger"
	"github.com/rcliao/specforge/internal/source"
)

type Config struct {
	Debounce time.Duration
	Ignore   []string
	// WatchHidden includes dot files and dot directories.
	WatchHidden bool
}

// Watcher follows a directory tree and hands debounced batches of changed
// files to onChange.
type Watcher struct {
	config    Config
	fsWatcher *fsnotify.Watcher
	fsMu      sync.Mutex
	debouncer *Debouncer
	log       *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(config Config, onChange func([]string)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if config.Debounce <= 0 {
		config.Debounce = 300 * time.Millisecond
	}

	w := &Watcher{
		config:    config,
		fsWatcher: fsWatcher,
		log:       logger.ForComponent("watcher"),
	}
	w.debouncer = NewDebouncer(config.Debounce, onChange)
	return w, nil
}

// AddRoot watches root and every directory below it that is not ignored.
func (w *Watcher) AddRoot(root string) error {
	w.log.Info("adding root to watch", "path", root)
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := w.add(path); err != nil {
			w.log.Debug("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) add(path string) error {
	w.fsMu.Lock()
	defer w.fsMu.Unlock()
	return w.fsWatcher.Add(path)
}

func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true

	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go w.handleEvents(ctx)
}

func (w *Watcher) handleEvents(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if w.shouldIgnore(event.Name) {
		return
	}
	w.log.Debug("file event", "path", event.Name, "op", event.Op.String())

	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.AddRoot(event.Name); err != nil {
				w.log.Debug("failed to watch new directory", "path", event.Name, "error", err)
			}
		}
		return
	}
	w.debouncer.Add(event.Name)
}

func (w *Watcher) shouldIgnore(path string) bool {
	if !w.config.WatchHidden && strings.HasPrefix(filepath.Base(path), ".") {
		return true
	}
	return source.Ignored(path, w.config.Ignore)
}

// Stop flushes pending changes and closes the underlying watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		w.debouncer.Stop()
		return w.close()
	}
	w.running = false
	w.cancel()
	done := w.done
	w.mu.Unlock()

	<-done
	w.debouncer.Stop()
	return w.close()
}

func (w *Watcher) close() error {
	w.fsMu.Lock()
	defer w.fsMu.Unlock()
	return w.fsWatcher.Close()
}
