package mock

import (
	"context"
	"sync"

	"odosync/internal/odo"
)

// OdoClient is a configurable odo.Client that records its calls.
type OdoClient struct {
	mu sync.Mutex

	// Components maps a root to the descriptors Discover returns for it.
	Components map[string][]odo.ComponentDescriptor
	// DiscoverErr, when set, is returned by every Discover call.
	DiscoverErr error
	// MigrateErr, when set, is returned by every MigrateComponent call.
	MigrateErr error
	// LoginErr and LogoutErr are returned by Login and Logout.
	LoginErr  error
	LogoutErr error
	// Namespace is returned by CurrentNamespace.
	Namespace string
	// DiscoverHook runs before every Discover outside the lock; a non-nil
	// error is returned from Discover.
	DiscoverHook func(ctx context.Context, root string) error

	discovered []string
	migrated   []string
	logins     int
	logouts    int
}

// NewOdoClient creates a mock client returning components per root.
func NewOdoClient(components map[string][]odo.ComponentDescriptor) *OdoClient {
	if components == nil {
		components = make(map[string][]odo.ComponentDescriptor)
	}
	return &OdoClient{Components: components, Namespace: "default"}
}

// SetComponents replaces the descriptors returned for root.
func (c *OdoClient) SetComponents(root string, descriptors ...odo.ComponentDescriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Components[root] = descriptors
}

// SetDiscoverErr changes the error returned by Discover.
func (c *OdoClient) SetDiscoverErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DiscoverErr = err
}

// Discover implements odo.Client.
func (c *OdoClient) Discover(ctx context.Context, root string) ([]odo.ComponentDescriptor, error) {
	c.mu.Lock()
	c.discovered = append(c.discovered, root)
	hook := c.DiscoverHook
	c.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, root); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.DiscoverErr != nil {
		return nil, c.DiscoverErr
	}
	return append([]odo.ComponentDescriptor(nil), c.Components[root]...), nil
}

// MigrateComponent implements odo.Client.
func (c *OdoClient) MigrateComponent(ctx context.Context, path, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.migrated = append(c.migrated, path)
	return c.MigrateErr
}

// Login implements odo.Client.
func (c *OdoClient) Login(ctx context.Context, server, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logins++
	return c.LoginErr
}

// Logout implements odo.Client.
func (c *OdoClient) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logouts++
	return c.LogoutErr
}

// CurrentNamespace implements odo.Client.
func (c *OdoClient) CurrentNamespace() string {
	return c.Namespace
}

// Discovered returns the roots passed to Discover, in call order.
func (c *OdoClient) Discovered() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.discovered...)
}

// Migrated returns the paths passed to MigrateComponent, in call order.
func (c *OdoClient) Migrated() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.migrated...)
}

// Logins returns the number of Login calls.
func (c *OdoClient) Logins() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logins
}

// Logouts returns the number of Logout calls.
func (c *OdoClient) Logouts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logouts
}
