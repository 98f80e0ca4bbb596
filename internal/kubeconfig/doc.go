// Package kubeconfig captures the current context of a kubeconfig file as an
// immutable Snapshot and decides whether two snapshots differ in a way that
// requires the cluster client to be rebuilt.
//
// A nil *Snapshot stands for "no current context": the file is missing,
// unreadable, or its current-context points nowhere.
//
// The change policy (HasContextChanged) is:
//
//   - a context appearing or disappearing is a change;
//   - a different cluster, user or namespace is a change;
//   - a new, non-empty token that differs from the previous one is a change;
//   - a token that disappears is not a change on its own, since logout
//     refreshes the client explicitly.
package kubeconfig
