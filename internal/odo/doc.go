// Package odo is the cluster client collaborator of the synchronization core.
//
// Client is the capability set the core consumes: component discovery below a
// workspace root, one-time migration of odo 2.x components, and login/logout
// of the current kubeconfig context. NewKubeClient implements it from a
// kubeconfig: components are found on disk (devfile.yaml or the legacy
// .odo/env/env.yaml) and matched against odo deployments in the current
// namespace through a controller-runtime client.
//
// Errors returned by the client are opaque to callers; they only carry a
// human-readable message and, for API errors, the Kubernetes status reason.
package odo
