// Package watcher observes a kubeconfig file and reports the identity of its
// current context to a ConfigListener.
//
// The watcher combines fsnotify events on the kubeconfig's parent directory
// with a polling ticker. Watching the directory instead of the file keeps
// working across editors and tools that replace the file by renaming a
// temporary file over it; the ticker covers directories that do not exist
// yet and watches that were lost.
//
// Bursts of filesystem events are debounced into a single reload, and the
// listener is only called when the loaded snapshot differs from the last one
// it received. Transient read or parse failures are retried; after
// MaxReadFailures consecutive failures the watcher reports "no current
// context" (a nil snapshot).
//
// Listener calls are serialized: the initial call happens in Start, every
// later call on the watcher's own goroutine.
package watcher
