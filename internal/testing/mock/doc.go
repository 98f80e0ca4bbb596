// Package mock provides test doubles for the odosync collaborators.
//
// OdoClient stands in for the cluster client: it returns configured
// components per root, fails on demand, and records every call. Notifier
// records the notifications emitted by the registry.
package mock
