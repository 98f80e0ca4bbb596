package mock

import (
	"sync"

	"odosync/internal/events"
)

// Notifier records notifications.
type Notifier struct {
	mu sync.Mutex

	modelChanged int
	migrated     []string
	failed       []string
	errors       []string
}

// ModelChanged implements events.Notifier.
func (n *Notifier) ModelChanged() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.modelChanged++
}

// MigrationCompleted implements events.Notifier.
func (n *Notifier) MigrationCompleted(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.migrated = append(n.migrated, name)
}

// MigrationFailed implements events.Notifier.
func (n *Notifier) MigrationFailed(name, path string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, name)
}

// Error implements events.Notifier.
func (n *Notifier) Error(message string, severity events.EventType) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

// ModelChangedCount returns the number of ModelChanged calls.
func (n *Notifier) ModelChangedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.modelChanged
}

// Migrated returns the names passed to MigrationCompleted.
func (n *Notifier) Migrated() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.migrated...)
}

// FailedMigrations returns the names passed to MigrationFailed.
func (n *Notifier) FailedMigrations() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.failed...)
}

// Errors returns the messages passed to Error.
func (n *Notifier) Errors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.errors...)
}
