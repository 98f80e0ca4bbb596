package watcher

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"odosync/internal/kubeconfig"
	"odosync/pkg/logging"
)

const (
	// DefaultDebounce is how long the watcher waits for more events before reloading.
	DefaultDebounce = 200 * time.Millisecond
	// DefaultPollInterval is the period of the fallback reload.
	DefaultPollInterval = 5 * time.Second
	// DefaultMaxReadFailures is the number of consecutive failed reloads
	// after which the configuration is treated as absent.
	DefaultMaxReadFailures = 3
)

// ConfigListener receives the current context of the watched kubeconfig.
// A nil snapshot means there is no usable current context.
type ConfigListener interface {
	OnConfigUpdate(snapshot *kubeconfig.Snapshot)
}

// Option configures a ConfigWatcher.
type Option func(*ConfigWatcher)

// WithDebounce sets the debounce interval. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *ConfigWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithPollInterval sets the fallback polling interval. Non-positive values are ignored.
func WithPollInterval(d time.Duration) Option {
	return func(w *ConfigWatcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithMaxReadFailures sets the number of tolerated consecutive read failures.
func WithMaxReadFailures(n int) Option {
	return func(w *ConfigWatcher) {
		if n > 0 {
			w.maxReadFailures = n
		}
	}
}

// ConfigWatcher reloads a kubeconfig file when it changes.
type ConfigWatcher struct {
	mu sync.Mutex

	path     string
	listener ConfigListener

	debounce        time.Duration
	pollInterval    time.Duration
	maxReadFailures int

	// fsWatcher is nil while the parent directory is not watched
	fsWatcher *fsnotify.Watcher
	// timer is the pending debounced reload
	timer *time.Timer
	// reloadCh wakes the loop for a debounced reload
	reloadCh chan struct{}
	stopCh   chan struct{}
	done     chan struct{}
	running  bool

	// last is the snapshot most recently delivered to the listener
	last      *kubeconfig.Snapshot
	delivered bool
	failures  int
}

// NewConfigWatcher creates a watcher for the kubeconfig at path.
func NewConfigWatcher(path string, listener ConfigListener, opts ...Option) *ConfigWatcher {
	w := &ConfigWatcher{
		path:            filepath.Clean(path),
		listener:        listener,
		debounce:        DefaultDebounce,
		pollInterval:    DefaultPollInterval,
		maxReadFailures: DefaultMaxReadFailures,
		reloadCh:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the watched kubeconfig path.
func (w *ConfigWatcher) Path() string {
	return w.path
}

// Start loads the kubeconfig once, notifies the listener, and keeps watching
// in the background until ctx is done or Stop is called. It does not block.
func (w *ConfigWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.done = make(chan struct{})
	w.mu.Unlock()

	w.reload(true)

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		// polling alone still converges
		logging.Warn("ConfigWatcher", "Failed to create filesystem watcher, falling back to polling: %v", err)
	} else {
		w.mu.Lock()
		w.fsWatcher = fsWatcher
		w.mu.Unlock()
		w.addWatch()
	}

	go w.run(ctx)

	logging.Info("ConfigWatcher", "Started watching %s", w.path)
	return nil
}

// addWatch watches the parent directory of the kubeconfig.
func (w *ConfigWatcher) addWatch() bool {
	w.mu.Lock()
	fsWatcher := w.fsWatcher
	w.mu.Unlock()
	if fsWatcher == nil {
		return false
	}

	dir := filepath.Dir(w.path)
	if len(fsWatcher.WatchList()) > 0 {
		return true
	}
	if err := fsWatcher.Add(dir); err != nil {
		logging.Debug("ConfigWatcher", "Cannot watch %s yet: %v", dir, err)
		return false
	}
	logging.Debug("ConfigWatcher", "Watching directory: %s", dir)
	return true
}

func (w *ConfigWatcher) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.mu.Lock()
	fsWatcher := w.fsWatcher
	w.mu.Unlock()

	var fsEvents <-chan fsnotify.Event
	var fsErrors <-chan error
	if fsWatcher != nil {
		fsEvents = fsWatcher.Events
		fsErrors = fsWatcher.Errors
	}

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return

		case <-w.stopCh:
			w.stopTimer()
			return

		case <-ticker.C:
			w.addWatch()
			w.reload(false)

		case <-w.reloadCh:
			w.reload(false)

		case event, ok := <-fsEvents:
			if !ok {
				fsEvents = nil
				continue
			}
			w.handleFsEvent(event)

		case err, ok := <-fsErrors:
			if !ok {
				fsErrors = nil
				continue
			}
			logging.Error("ConfigWatcher", err, "Filesystem watcher error")
		}
	}
}

// handleFsEvent schedules a reload for events on the kubeconfig file.
func (w *ConfigWatcher) handleFsEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.scheduleReload()
}

// scheduleReload restarts the debounce timer.
func (w *ConfigWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.reloadCh <- struct{}{}:
		default:
		}
	})
}

func (w *ConfigWatcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// reload reads the kubeconfig and notifies the listener when the result
// differs from what it last received.
func (w *ConfigWatcher) reload(initial bool) {
	snapshot, err := kubeconfig.LoadFile(w.path)
	// A file that never existed has no context. One that disappears after
	// being read is usually being replaced and counts as a failed read.
	if err != nil && errors.Is(err, fs.ErrNotExist) && (initial || w.last == nil) {
		snapshot, err = nil, nil
	}

	if err != nil {
		w.failures++
		logging.Debug("ConfigWatcher", "Failed to read %s (attempt %d/%d): %v", w.path, w.failures, w.maxReadFailures, err)
		if w.failures < w.maxReadFailures && !initial {
			return
		}
		if w.failures == w.maxReadFailures || initial {
			logging.Warn("ConfigWatcher", "Kubeconfig %s is unreadable, treating it as having no current context", w.path)
		}
		snapshot = nil
	} else {
		w.failures = 0
	}

	if w.delivered && w.last.Equal(snapshot) {
		return
	}
	w.last = snapshot
	w.delivered = true

	logging.Debug("ConfigWatcher", "Current context is now %s", snapshot)
	if w.listener != nil {
		w.listener.OnConfigUpdate(snapshot)
	}
}

// Stop ends watching. It is safe to call more than once.
func (w *ConfigWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	done := w.done
	fsWatcher := w.fsWatcher
	w.fsWatcher = nil
	w.mu.Unlock()

	<-done
	if fsWatcher != nil {
		if err := fsWatcher.Close(); err != nil {
			logging.Debug("ConfigWatcher", "Error closing filesystem watcher: %v", err)
		}
	}
	logging.Info("ConfigWatcher", "Stopped watching %s", w.path)
}
