package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/randalmurphal/mlkit/document"
)

// DefaultDebounce is the delay between the last file event and the reload.
const DefaultDebounce = 500 * time.Millisecond

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// Logger receives reload messages. Defaults to slog.Default().
	Logger *slog.Logger

	// Debounce delays reloads so bursts of writes trigger one read.
	// Defaults to DefaultDebounce.
	Debounce time.Duration
}

// Watcher keeps a config document current as its file changes on disk.
// A reload that fails to read or validate is logged and the previous
// document is kept.
type Watcher struct {
	path     string
	loader   *Loader
	logger   *slog.Logger
	debounce time.Duration
	fsw      *fsnotify.Watcher

	mu        sync.RWMutex
	current   *document.Document
	callbacks []func(*document.Document)
	timer     *time.Timer
	closed    bool

	stopCh chan struct{}
	done   chan struct{}
}

// NewWatcher reads path and starts watching it. The initial read must
// succeed.
func NewWatcher(path string, opts WatcherOptions) (*Watcher, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	loader := NewLoader(opts.Logger)
	initial, err := loader.Read(abs)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	// Watch the directory so atomic replace-by-rename is seen.
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		loader:   loader,
		logger:   opts.Logger,
		debounce: opts.Debounce,
		fsw:      fsw,
		current:  initial,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}

	go w.watchLoop()

	w.logger.Info("watching config file", "path", abs)
	return w, nil
}

// Current returns the most recently loaded document.
func (w *Watcher) Current() *document.Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback invoked after each successful reload.
func (w *Watcher) OnChange(fn func(*document.Document)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.done
	return w.fsw.Close()
}

func (w *Watcher) watchLoop() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debug("config file changed", "path", w.path, "op", event.Op.String())
			w.scheduleReload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)

		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	doc, err := w.loader.Read(w.path)
	if err != nil {
		w.logger.Error("config reload failed, keeping previous version", "path", w.path, "error", err)
		return
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.current = doc
	callbacks := make([]func(*document.Document), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, fn := range callbacks {
		fn(doc)
	}

	w.logger.Info("config reloaded", "path", w.path, "callbacks_notified", len(callbacks))
}
