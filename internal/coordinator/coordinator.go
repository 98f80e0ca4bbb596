package coordinator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"odosync/internal/events"
	"odosync/internal/handle"
	"odosync/internal/kubeconfig"
	"odosync/internal/odo"
	"odosync/internal/registry"
	"odosync/internal/watcher"
	"odosync/internal/workspace"
	"odosync/pkg/logging"
)

// DefaultDiscoveryConcurrency bounds the parallel discoveries of a full pass.
const DefaultDiscoveryConcurrency = 4

const eventBufferSize = 100

// ErrClientUnavailable is returned by user-initiated operations when no
// cluster client could be created.
var ErrClientUnavailable = errors.New("cluster client is not available")

// Config configures a Coordinator.
type Config struct {
	// KubeconfigPath is the file watched for context changes. An empty path
	// disables watching; OnConfigUpdate can still be called directly.
	KubeconfigPath string

	// Factory creates the cluster client.
	Factory odo.Factory

	// Workspace provides the module roots for full discovery passes.
	Workspace workspace.Workspace

	// Session edits credentials for Login and Logout. When nil, a kubeconfig
	// session on KubeconfigPath is used, or the resolved client when no path
	// is set either.
	Session odo.Session

	// Bus receives notifications. A private bus is created when nil.
	Bus *events.Bus

	// DiscoveryConcurrency bounds parallel discoveries; defaults to DefaultDiscoveryConcurrency.
	DiscoveryConcurrency int

	// WatcherOptions are passed to the kubeconfig watcher.
	WatcherOptions []watcher.Option
}

type eventKind int

const (
	eventConfigUpdate eventKind = iota
	eventModuleAdded
	eventModuleRemoved
)

type event struct {
	kind     eventKind
	snapshot *kubeconfig.Snapshot
	path     string
}

// Coordinator keeps the component registry in sync with the current
// kubeconfig context and the workspace module roots.
//
// Config and workspace events are funnelled through one channel and handled
// in order by a single goroutine.
type Coordinator struct {
	mu sync.RWMutex

	config Config

	client   *handle.Handle[odo.Client]
	registry *registry.Registry
	store    *kubeconfig.Store
	bus      *events.Bus
	ownsBus  bool
	watcher  *watcher.ConfigWatcher
	metrics  *Metrics

	logged            bool
	processing        bool
	processingMessage string

	// eventCh feeds the event loop
	eventCh chan event
	// loopDone is closed when the event loop exits
	loopDone chan struct{}

	// ctx bounds background discovery; cancelled by Close
	ctx        context.Context
	cancelFunc context.CancelFunc

	// wg tracks the event loop and background discoveries
	wg sync.WaitGroup

	running bool
	closed  bool
}

// New creates a coordinator. Nothing runs until Start or GetClient is called.
func New(config Config) *Coordinator {
	if config.DiscoveryConcurrency <= 0 {
		config.DiscoveryConcurrency = DefaultDiscoveryConcurrency
	}
	if config.Session == nil && config.KubeconfigPath != "" {
		config.Session = odo.NewKubeconfigSession(config.KubeconfigPath)
	}

	c := &Coordinator{
		config:  config,
		store:   kubeconfig.NewStore(nil),
		bus:     config.Bus,
		metrics: NewMetrics(),
		eventCh: make(chan event, eventBufferSize),
	}
	if c.bus == nil {
		c.bus = events.NewBus()
		c.ownsBus = true
	}
	c.ctx, c.cancelFunc = context.WithCancel(context.Background())

	c.client = handle.New("odo client", c.construct)
	c.client.OnReady(c.onClientReady)
	c.registry = registry.New(c.bus, c.client)

	if config.KubeconfigPath != "" {
		c.watcher = watcher.NewConfigWatcher(config.KubeconfigPath, c, config.WatcherOptions...)
	}
	return c
}

func (c *Coordinator) construct(ctx context.Context) (odo.Client, error) {
	if c.config.Factory == nil {
		return nil, errors.New("no client factory configured")
	}
	return c.config.Factory(ctx)
}

// Start runs the event loop and the kubeconfig watcher until ctx is done or
// Close is called. The watcher's initial load is delivered through the loop.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New("coordinator is closed")
	}
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	c.loopDone = make(chan struct{})
	loopCtx, cancel := context.WithCancel(ctx)
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer cancel()
		c.processEvents(loopCtx)
	}()

	if c.watcher != nil {
		if err := c.watcher.Start(loopCtx); err != nil {
			cancel()
			return fmt.Errorf("failed to start kubeconfig watcher: %w", err)
		}
	}

	logging.Info("Coordinator", "Started")
	return nil
}

func (c *Coordinator) processEvents(ctx context.Context) {
	defer c.wg.Done()

	c.mu.RLock()
	loopDone := c.loopDone
	c.mu.RUnlock()
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		close(loopDone)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.ctx.Done():
			return
		case ev := <-c.eventCh:
			c.handleEvent(ev)
		}
	}
}

// dispatch queues ev for the event loop, or handles it inline when the loop
// is not running.
func (c *Coordinator) dispatch(ev event) {
	c.mu.RLock()
	running := c.running
	loopDone := c.loopDone
	c.mu.RUnlock()

	if !running {
		c.handleEvent(ev)
		return
	}
	select {
	case c.eventCh <- ev:
	case <-loopDone:
		c.handleEvent(ev)
	}
}

func (c *Coordinator) handleEvent(ev event) {
	switch ev.kind {
	case eventConfigUpdate:
		c.handleConfigUpdate(ev.snapshot)
	case eventModuleAdded:
		c.handleModuleAdded(ev.path)
	case eventModuleRemoved:
		c.handleModuleRemoved(ev.path)
	}
}

// OnConfigUpdate implements watcher.ConfigListener.
func (c *Coordinator) OnConfigUpdate(snapshot *kubeconfig.Snapshot) {
	c.dispatch(event{kind: eventConfigUpdate, snapshot: snapshot})
}

// ModuleAdded implements workspace.Listener.
func (c *Coordinator) ModuleAdded(path string) {
	c.dispatch(event{kind: eventModuleAdded, path: path})
}

// ModuleRemoved implements workspace.Listener.
func (c *Coordinator) ModuleRemoved(path string) {
	c.dispatch(event{kind: eventModuleRemoved, path: path})
}

func (c *Coordinator) handleConfigUpdate(next *kubeconfig.Snapshot) {
	prev := c.store.Swap(next)

	// a token that disappears means the user logged out elsewhere
	if prev.HasToken() != next.HasToken() {
		c.SetLogged(next.HasToken())
	}

	if !kubeconfig.HasContextChanged(prev, next) {
		logging.Debug("Coordinator", "Kubeconfig updated without context change")
		return
	}
	logging.Info("Coordinator", "Current context changed to %s", next)
	c.Refresh()
}

func (c *Coordinator) handleModuleAdded(path string) {
	client, ok := c.client.GetIfReady()
	if !ok {
		logging.Debug("Coordinator", "Client not ready, deferring discovery of %s", path)
		return
	}
	c.discoverInBackground(client, path)
}

func (c *Coordinator) handleModuleRemoved(path string) {
	root := filepath.Clean(path)
	removed := c.registry.Prune(func(p string) bool { return !isWithin(root, p) })
	logging.Debug("Coordinator", "Module %s removed, dropped %d components", root, removed)
}

// discoverInBackground discovers root without blocking the caller and
// signals a model change when components were added.
func (c *Coordinator) discoverInBackground(client odo.Client, root string) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return
	}
	c.wg.Add(1)
	c.mu.RUnlock()

	go func() {
		defer c.wg.Done()
		result := c.registry.DiscoverAndRegister(c.ctx, client, root)
		c.metrics.RecordDiscovery(result)
		if result.Added > 0 {
			c.bus.ModelChanged()
		}
	}()
}

// onClientReady runs once per successful client creation, on the handle's
// goroutine. Close waits for it.
func (c *Coordinator) onClientReady(client odo.Client) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return
	}
	c.wg.Add(1)
	c.mu.RUnlock()
	defer c.wg.Done()

	var roots []string
	if c.config.Workspace != nil {
		roots = c.config.Workspace.ModuleRoots()
	}
	logging.Info("Coordinator", "Client ready, discovering %d module roots", len(roots))

	g, ctx := errgroup.WithContext(c.ctx)
	g.SetLimit(c.config.DiscoveryConcurrency)
	for _, root := range roots {
		g.Go(func() error {
			result := c.registry.DiscoverAndRegister(ctx, client, root)
			c.metrics.RecordDiscovery(result)
			return nil
		})
	}
	_ = g.Wait()
	if c.ctx.Err() != nil {
		logging.Debug("Coordinator", "Discovery pass interrupted by shutdown")
		return
	}

	keep := func(p string) bool {
		for _, root := range roots {
			if isWithin(filepath.Clean(root), p) {
				return true
			}
		}
		return false
	}
	c.metrics.RecordFullPass()
	// Prune signals the change itself when it removed anything
	if c.registry.Prune(keep) == 0 {
		c.bus.ModelChanged()
	}
}

// GetClient returns the shared client future, creating the client if needed.
func (c *Coordinator) GetClient() *handle.Future[odo.Client] {
	return c.client.Get()
}

// State reports the client lifecycle state.
func (c *Coordinator) State() handle.State {
	return c.client.State()
}

// Refresh discards the current client and creates a new one. A full
// discovery pass and a model change follow once it is ready.
func (c *Coordinator) Refresh() {
	c.metrics.RecordRefresh()
	c.client.Invalidate()
	c.client.Get()
}

// AddContext discovers components below path if the client is ready.
func (c *Coordinator) AddContext(path string) {
	c.handleModuleAdded(path)
}

// RemoveContext unregisters the component at path. Paths that no longer
// exist on disk are left to the next full pass.
func (c *Coordinator) RemoveContext(path string) bool {
	if _, err := os.Stat(path); err != nil {
		logging.Debug("Coordinator", "Not removing %s: %v", path, err)
		return false
	}
	return c.registry.Remove(filepath.Clean(path))
}

// session returns the credential editor. It only waits for the client when
// no session is configured.
func (c *Coordinator) session(ctx context.Context) (odo.Session, bool) {
	if c.config.Session != nil {
		return c.config.Session, true
	}
	client, ok := c.client.Get().Wait(ctx)
	if !ok {
		return nil, false
	}
	return client, true
}

// Login stores token (and server, when not empty) for the current context
// and recreates the client. It does not need a working client, so it
// recovers from an expired token.
func (c *Coordinator) Login(ctx context.Context, server, token string) error {
	session, ok := c.session(ctx)
	if !ok {
		return c.userError("login", ErrClientUnavailable)
	}
	if err := session.Login(ctx, server, token); err != nil {
		return c.userError("login", err)
	}

	c.SetLogged(true)
	c.Refresh()
	c.bus.ModelChanged()
	c.bus.Emit(events.ReasonLoginSucceeded, events.EventData{Server: server})
	return nil
}

// Logout removes the token of the current context user and recreates the client.
func (c *Coordinator) Logout(ctx context.Context) error {
	session, ok := c.session(ctx)
	if !ok {
		return c.userError("logout", ErrClientUnavailable)
	}
	if err := session.Logout(ctx); err != nil {
		return c.userError("logout", err)
	}

	c.SetLogged(false)
	c.Refresh()
	c.bus.ModelChanged()
	c.bus.Emit(events.ReasonLogoutSucceeded, events.EventData{})
	return nil
}

func (c *Coordinator) userError(action string, err error) error {
	wrapped := fmt.Errorf("%s failed: %w", action, err)
	logging.Error("Coordinator", err, "User %s failed", action)
	c.bus.Error(wrapped.Error(), events.EventTypeWarning)
	return wrapped
}

// IsLogged reports whether the user is considered authenticated.
func (c *Coordinator) IsLogged() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logged
}

// SetLogged sets the authenticated flag.
func (c *Coordinator) SetLogged(logged bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logged = logged
}

// StartProcessing marks a long running user operation with message.
func (c *Coordinator) StartProcessing(message string) {
	c.mu.Lock()
	c.processing = true
	c.processingMessage = message
	c.mu.Unlock()
	c.bus.ModelChanged()
}

// StopProcessing clears the processing marker.
func (c *Coordinator) StopProcessing() {
	c.mu.Lock()
	wasProcessing := c.processing
	c.processing = false
	c.processingMessage = ""
	c.mu.Unlock()
	if wasProcessing {
		c.bus.ModelChanged()
	}
}

// Processing returns the current processing message.
func (c *Coordinator) Processing() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.processingMessage, c.processing
}

// Components returns the registered components ordered by path.
func (c *Coordinator) Components() []odo.ComponentDescriptor {
	return c.registry.Snapshot()
}

// CurrentContext returns the last kubeconfig snapshot seen.
func (c *Coordinator) CurrentContext() *kubeconfig.Snapshot {
	return c.store.Load()
}

// Bus returns the notification bus.
func (c *Coordinator) Bus() *events.Bus {
	return c.bus
}

// Metrics returns a copy of the coordinator metrics.
func (c *Coordinator) Metrics() MetricsSummary {
	return c.metrics.Summary()
}

// Close stops the watcher and the event loop, discards the client and waits
// for background work. It is safe to call more than once.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	logging.Info("Coordinator", "Stopping coordinator...")

	if c.watcher != nil {
		c.watcher.Stop()
	}
	c.cancelFunc()
	c.client.Close()
	c.wg.Wait()
	c.registry.Close()
	if c.ownsBus {
		c.bus.Close()
	}

	logging.Info("Coordinator", "Coordinator stopped")
}

// isWithin reports whether p is root or below it.
func isWithin(root, p string) bool {
	return p == root || strings.HasPrefix(p, root+string(filepath.Separator))
}
