package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"odosync/pkg/logging"
)

// DirWatcher treats every immediate, non-hidden sub-directory of a directory
// as a module root and mirrors them into a Modules set.
type DirWatcher struct {
	mu sync.Mutex

	dir     string
	modules *Modules

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	done    chan struct{}
	running bool
}

// NewDirWatcher creates a watcher for dir feeding modules.
func NewDirWatcher(dir string, modules *Modules) *DirWatcher {
	return &DirWatcher{
		dir:     filepath.Clean(dir),
		modules: modules,
	}
}

// Start scans dir once and then follows sub-directory creation and removal
// until ctx is done or Stop is called.
func (d *DirWatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		d.mu.Unlock()
		return fmt.Errorf("failed to create workspace watcher: %w", err)
	}
	if err := watcher.Add(d.dir); err != nil {
		d.mu.Unlock()
		_ = watcher.Close()
		return fmt.Errorf("failed to watch workspace %s: %w", d.dir, err)
	}

	if err := d.scan(); err != nil {
		d.mu.Unlock()
		_ = watcher.Close()
		return err
	}

	d.watcher = watcher
	d.running = true
	d.stopCh = make(chan struct{})
	d.done = make(chan struct{})
	d.mu.Unlock()

	go d.processEvents(ctx, watcher)

	logging.Info("Workspace", "Watching %s for modules", d.dir)
	return nil
}

// scan adds all current sub-directories and drops roots that vanished.
func (d *DirWatcher) scan() error {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return fmt.Errorf("failed to read workspace %s: %w", d.dir, err)
	}

	present := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || isHidden(entry.Name()) {
			continue
		}
		path := filepath.Join(d.dir, entry.Name())
		present[path] = true
		d.modules.Add(path)
	}
	for _, root := range d.modules.ModuleRoots() {
		if filepath.Dir(root) == d.dir && !present[root] {
			d.modules.Remove(root)
		}
	}
	return nil
}

func (d *DirWatcher) processEvents(ctx context.Context, watcher *fsnotify.Watcher) {
	defer close(d.done)

	for {
		select {
		case <-ctx.Done():
			return

		case <-d.stopCh:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			d.handleFsEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Error("Workspace", err, "Workspace watcher error")
		}
	}
}

func (d *DirWatcher) handleFsEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if filepath.Dir(path) != d.dir || isHidden(filepath.Base(path)) {
		return
	}

	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			return
		}
		if d.modules.Add(path) {
			logging.Debug("Workspace", "Module added: %s", path)
		}
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// a rename is followed by a create for the new name
		if d.modules.Remove(path) {
			logging.Debug("Workspace", "Module removed: %s", path)
		}
	}
}

// Stop ends watching. It is safe to call more than once.
func (d *DirWatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	close(d.stopCh)
	watcher := d.watcher
	d.watcher = nil
	done := d.done
	d.mu.Unlock()

	if err := watcher.Close(); err != nil {
		logging.Debug("Workspace", "Error closing workspace watcher: %v", err)
	}
	<-done
	logging.Info("Workspace", "Stopped watching %s", d.dir)
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
