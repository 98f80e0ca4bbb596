package registry

import (
	"context"
	"sort"
	"sync"

	"odosync/internal/events"
	"odosync/internal/handle"
	"odosync/internal/odo"
	"odosync/pkg/logging"
)

// Outcome classifies a discovery attempt.
type Outcome string

const (
	// OutcomeSucceeded means the client returned a result.
	OutcomeSucceeded Outcome = "Succeeded"
	// OutcomeSkipped means no client was available or the caller cancelled.
	OutcomeSkipped Outcome = "Skipped"
	// OutcomeIgnored means discovery failed with an expected error.
	OutcomeIgnored Outcome = "Ignored"
	// OutcomeFailed means discovery failed unexpectedly; the error was logged.
	OutcomeFailed Outcome = "Failed"
)

// DiscoveryResult reports what a single DiscoverAndRegister call did.
type DiscoveryResult struct {
	Root    string
	Found   int
	Added   int
	Outcome Outcome
	Err     error
}

// ClientSource yields the shared client future used for migrations.
type ClientSource interface {
	Get() *handle.Future[odo.Client]
}

// Registry maps component paths to descriptors. All mutations are serialized;
// readers receive copies.
type Registry struct {
	mu         sync.RWMutex
	components map[string]odo.ComponentDescriptor

	notifier events.Notifier
	clients  ClientSource

	// ctx bounds migrations; cancelled by Close
	ctx        context.Context
	cancel     context.CancelFunc
	migrations sync.WaitGroup
	// closed refuses new migrations; guarded by mu
	closed bool
}

// New creates an empty registry. clients may be nil, in which case legacy
// components are registered without migration.
func New(notifier events.Notifier, clients ClientSource) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		components: make(map[string]odo.ComponentDescriptor),
		notifier:   notifier,
		clients:    clients,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// DiscoverAndRegister discovers the components below root with client and
// registers every path not yet present. It never returns an error: expected
// failures are dropped, the rest are logged. Callers decide whether to signal
// a model change based on the result.
func (r *Registry) DiscoverAndRegister(ctx context.Context, client odo.Client, root string) DiscoveryResult {
	result := DiscoveryResult{Root: root}
	if client == nil {
		result.Outcome = OutcomeSkipped
		return result
	}

	descriptors, err := client.Discover(ctx, root)
	if err != nil {
		result.Err = err
		if ctx.Err() != nil {
			// the caller gave up, usually on shutdown
			logging.Debug("Registry", "Discovery of %s cancelled: %v", root, err)
			result.Outcome = OutcomeSkipped
			return result
		}
		if IsExpectedError(err) {
			result.Outcome = OutcomeIgnored
			return result
		}
		result.Outcome = OutcomeFailed
		logging.Error("Registry", err, "Failed to discover components in %s", root)
		return result
	}

	result.Outcome = OutcomeSucceeded
	result.Found = len(descriptors)
	for _, descriptor := range descriptors {
		if r.add(descriptor) {
			result.Added++
		}
	}
	if result.Added > 0 {
		logging.Debug("Registry", "Registered %d of %d components found in %s", result.Added, result.Found, root)
	}
	return result
}

// add inserts descriptor unless its path is already registered.
func (r *Registry) add(descriptor odo.ComponentDescriptor) bool {
	r.mu.Lock()
	if _, exists := r.components[descriptor.Path]; exists {
		r.mu.Unlock()
		return false
	}
	r.components[descriptor.Path] = descriptor
	r.mu.Unlock()

	if descriptor.Legacy {
		r.scheduleMigration(descriptor)
	}
	return true
}

// scheduleMigration migrates a legacy component in the background. Failures
// are reported but never roll back the registration.
func (r *Registry) scheduleMigration(descriptor odo.ComponentDescriptor) {
	if r.clients == nil {
		return
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		logging.Debug("Registry", "Registry closed, not migrating %s", descriptor.Name)
		return
	}
	r.migrations.Add(1)
	r.mu.Unlock()

	future := r.clients.Get()
	go func() {
		defer r.migrations.Done()

		client, ok := future.Wait(r.ctx)
		if !ok || client == nil {
			logging.Debug("Registry", "No client available to migrate %s", descriptor.Name)
			return
		}
		if err := client.MigrateComponent(r.ctx, descriptor.Path, descriptor.Name); err != nil {
			logging.Error("Registry", err, "Failed to migrate component %s at %s", descriptor.Name, descriptor.Path)
			if r.notifier != nil {
				r.notifier.MigrationFailed(descriptor.Name, descriptor.Path, err)
			}
			return
		}
		if r.notifier != nil {
			r.notifier.MigrationCompleted(descriptor.Name)
		}
	}()
}

// Remove unregisters path. It reports whether an entry was removed and only
// then signals a model change.
func (r *Registry) Remove(path string) bool {
	r.mu.Lock()
	_, exists := r.components[path]
	if exists {
		delete(r.components, path)
	}
	r.mu.Unlock()

	if exists && r.notifier != nil {
		r.notifier.ModelChanged()
	}
	return exists
}

// Prune removes every entry for which keep returns false and signals a single
// model change when anything was removed. It returns the number of removals.
func (r *Registry) Prune(keep func(path string) bool) int {
	r.mu.Lock()
	removed := 0
	for path := range r.components {
		if !keep(path) {
			delete(r.components, path)
			removed++
		}
	}
	r.mu.Unlock()

	if removed > 0 && r.notifier != nil {
		r.notifier.ModelChanged()
	}
	return removed
}

// Get returns the descriptor registered for path.
func (r *Registry) Get(path string) (odo.ComponentDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.components[path]
	return descriptor, ok
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.components)
}

// Snapshot returns the registered descriptors ordered by path.
func (r *Registry) Snapshot() []odo.ComponentDescriptor {
	r.mu.RLock()
	out := make([]odo.ComponentDescriptor, 0, len(r.components))
	for _, descriptor := range r.components {
		out = append(out, descriptor)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// WaitMigrations blocks until all scheduled migrations finished.
func (r *Registry) WaitMigrations() {
	r.migrations.Wait()
}

// Close cancels outstanding migrations, waits for them and refuses new ones.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancel()
	r.migrations.Wait()
}
