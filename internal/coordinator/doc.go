// Package coordinator ties the kubeconfig watcher, the shared cluster client
// and the component registry together.
//
// The Coordinator follows the client lifecycle
//
//	Uninitialized -> Resolving -> Ready | Unavailable
//
// and reconciles it with the workspace module roots:
//
//   - a meaningful kubeconfig change invalidates the client and creates a
//     new one; rapid changes collapse because every invalidation discards the
//     stale construction
//   - once a client is ready all module roots are discovered (bounded by
//     Config.DiscoveryConcurrency), components of vanished roots are pruned,
//     and a single model change is published
//   - an added module is discovered right away when the client is ready and
//     is otherwise picked up by the next full pass
//   - a removed module drops its components immediately, whatever the client
//     state
//
// Background reconciliation never returns errors. Only the user-initiated
// Login and Logout do, and they also publish an Error event.
package coordinator
