package kubeconfig

import (
	"fmt"
)

// Snapshot is the identity of the current context of a kubeconfig at the
// moment it was read. Snapshots are never mutated once captured.
type Snapshot struct {
	// ContextName is the value of current-context.
	ContextName string
	// Cluster is the cluster name referenced by the context.
	Cluster string
	// Server is the API server URL of that cluster, if the cluster is defined.
	Server string
	// User is the auth-info name referenced by the context.
	User string
	// Namespace is the context namespace; empty means the server default.
	Namespace string
	// Token is the bearer token of the context user, empty when absent.
	Token string
}

// Equal reports whether two snapshots carry identical values.
// Two nil snapshots are equal.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if s == nil || o == nil {
		return s == nil && o == nil
	}
	return *s == *o
}

// HasToken reports whether the context user carries a bearer token.
func (s *Snapshot) HasToken() bool {
	return s != nil && s.Token != ""
}

// String renders the snapshot without the token.
func (s *Snapshot) String() string {
	if s == nil {
		return "<no current context>"
	}
	ns := s.Namespace
	if ns == "" {
		ns = "default"
	}
	return fmt.Sprintf("%s (cluster=%s user=%s namespace=%s)", s.ContextName, s.Cluster, s.User, ns)
}
