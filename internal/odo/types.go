package odo

import (
	"context"
)

// ComponentDescriptor identifies a component discovered below a workspace root.
// Descriptors are never mutated after discovery.
type ComponentDescriptor struct {
	// Path is the absolute component directory; it is the registry key.
	Path string

	// Name is the logical component name.
	Name string

	// Legacy marks components created by odo 2.x that need a one-time migration.
	Legacy bool

	// Deployed reports whether the component has a deployment in the current namespace.
	Deployed bool
}

// Session edits the credentials of the current context. It works without a
// reachable cluster.
type Session interface {
	// Login stores token (and server, when not empty) for the current context.
	Login(ctx context.Context, server, token string) error

	// Logout removes the token of the current context user.
	Logout(ctx context.Context) error
}

// Client is the capability set the synchronization core consumes from the
// cluster CLI collaborator. Errors carry a human-readable message.
type Client interface {
	Session

	// Discover returns the components found below root.
	Discover(ctx context.Context, root string) ([]ComponentDescriptor, error)

	// MigrateComponent converts a legacy component in place.
	MigrateComponent(ctx context.Context, path, name string) error

	// CurrentNamespace is the namespace the client operates in.
	CurrentNamespace() string
}

// Factory constructs a Client for the current kubeconfig.
type Factory func(ctx context.Context) (Client, error)
